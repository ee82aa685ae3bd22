package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// Schema is applied by EnsureSchema; kept idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS attorneys (
	id              TEXT PRIMARY KEY,
	uid             TEXT NOT NULL,
	document_type   TEXT NOT NULL DEFAULT '',
	document_number TEXT NOT NULL DEFAULT '',
	names           TEXT NOT NULL DEFAULT '',
	surnames        TEXT NOT NULL DEFAULT '',
	sex             TEXT NOT NULL DEFAULT '',
	birth_date      DATE,
	baptism         DATE,
	first_communion DATE,
	confirmation    DATE,
	marriage        DATE,
	relationship    TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	password        TEXT NOT NULL DEFAULT '',
	cellphone       TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL,
	status          TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS attorneys_uid_key ON attorneys (uid);
CREATE INDEX IF NOT EXISTS attorneys_status_idx ON attorneys (status);
CREATE INDEX IF NOT EXISTS attorneys_document_number_idx ON attorneys (document_number);
CREATE INDEX IF NOT EXISTS attorneys_email_idx ON attorneys (email);
`

const attorneyColumns = `id, uid, document_type, document_number, names, surnames, sex,
	birth_date, baptism, first_communion, confirmation, marriage,
	relationship, email, password, cellphone, address, role, status, created_at, updated_at`

// PostgresStore persists attorneys in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed attorney store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply attorney schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, a *models.Attorney) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO attorneys (` + attorneyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date, $9::date, $10::date, $11::date, $12::date,
			$13, $14, $15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			uid = EXCLUDED.uid,
			document_type = EXCLUDED.document_type,
			document_number = EXCLUDED.document_number,
			names = EXCLUDED.names,
			surnames = EXCLUDED.surnames,
			sex = EXCLUDED.sex,
			birth_date = EXCLUDED.birth_date,
			baptism = EXCLUDED.baptism,
			first_communion = EXCLUDED.first_communion,
			confirmation = EXCLUDED.confirmation,
			marriage = EXCLUDED.marriage,
			relationship = EXCLUDED.relationship,
			email = EXCLUDED.email,
			password = EXCLUDED.password,
			cellphone = EXCLUDED.cellphone,
			address = EXCLUDED.address,
			role = EXCLUDED.role,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.UID, a.DocumentType, a.DocumentNumber, a.Names, a.Surnames, a.Sex,
		dateParam(&a.BirthDate), dateParam(a.Baptism), dateParam(a.FirstCommunion),
		dateParam(a.Confirmation), dateParam(a.Marriage),
		a.Relationship, a.Email, a.Password, a.Cellphone, a.Address,
		a.Role, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save attorney: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Attorney, error) {
	return s.findOne(ctx, "id", id, "find attorney by id")
}

func (s *PostgresStore) FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error) {
	return s.findOne(ctx, "document_number", documentNumber, "find attorney by document")
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Attorney, error) {
	return s.findOne(ctx, "email", email, "find attorney by email")
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error) {
	query := `SELECT ` + attorneyColumns + ` FROM attorneys WHERE status = $1 ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list attorneys by status: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Attorney, 0)
	for rows.Next() {
		a, err := scanAttorney(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attorney: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attorneys: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// findOne looks up the oldest row where column = value. column is always a
// package constant, never caller input.
func (s *PostgresStore) findOne(ctx context.Context, column, value, op string) (*models.Attorney, error) {
	query := `SELECT ` + attorneyColumns + ` FROM attorneys WHERE ` + column + ` = $1 ORDER BY created_at LIMIT 1`
	a, err := scanAttorney(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttorney(row rowScanner) (*models.Attorney, error) {
	var (
		a                                                  models.Attorney
		status                                             string
		birth, baptism, communion, confirmation, marriage sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.UID, &a.DocumentType, &a.DocumentNumber, &a.Names, &a.Surnames, &a.Sex,
		&birth, &baptism, &communion, &confirmation, &marriage,
		&a.Relationship, &a.Email, &a.Password, &a.Cellphone, &a.Address,
		&a.Role, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = models.Status(status)
	if birth.Valid {
		a.BirthDate = models.DateFromTime(birth.Time)
	}
	a.Baptism = dateFromNull(baptism)
	a.FirstCommunion = dateFromNull(communion)
	a.Confirmation = dateFromNull(confirmation)
	a.Marriage = dateFromNull(marriage)
	return &a, nil
}

func dateParam(d *models.Date) sql.NullString {
	if d == nil || strings.TrimSpace(string(*d)) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*d), Valid: true}
}

func dateFromNull(t sql.NullTime) *models.Date {
	if !t.Valid {
		return nil
	}
	d := models.DateFromTime(t.Time)
	return &d
}
