package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/metrics"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/internal/attorney/secrets"
	"github.com/angeljunes/vg-ms-attorney/internal/authclient"
	"github.com/angeljunes/vg-ms-attorney/internal/identity"
	dErrors "github.com/angeljunes/vg-ms-attorney/pkg/domain-errors"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/audit"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

// WelcomeMessage is served by the public router's greeting endpoint.
const WelcomeMessage = "Bienvenidos al microservicio de apoderados"

type AttorneyStore interface {
	Save(ctx context.Context, attorney *models.Attorney) error
	FindByID(ctx context.Context, id string) (*models.Attorney, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error)
	FindByEmail(ctx context.Context, email string) (*models.Attorney, error)
	ListByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error)
}

type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SetRoleClaim(ctx context.Context, uid, role string) error
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
	UpdatePassword(ctx context.Context, uid, password string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}

type TokenValidator interface {
	Validate(ctx context.Context, token string) (authclient.Result, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// HTTPDoer issues outbound requests for the URL gate.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service orchestrates attorney records and their identity-provider accounts.
//
// Every mutation is two-phase: the identity-provider call runs first and the
// record is persisted only after it succeeds. A persistence failure after the
// provider call is not compensated.
type Service struct {
	attorneys      AttorneyStore
	identity       IdentityProvider
	validator      TokenValidator
	outbound       HTTPDoer
	allowedOrigins map[string]struct{}
	passwords      secrets.Encoder
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOutbound sets the client and allow-list used by SafeExternalRequest.
// Origins are compared as lowercase "scheme://host[:port]".
func WithOutbound(client HTTPDoer, allowedOrigins []string) Option {
	return func(s *Service) {
		s.outbound = client
		s.allowedOrigins = make(map[string]struct{}, len(allowedOrigins))
		for _, o := range allowedOrigins {
			o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
			if o != "" {
				s.allowedOrigins[o] = struct{}{}
			}
		}
	}
}

// WithPasswordEncoder selects how the password mirror is stored.
func WithPasswordEncoder(enc secrets.Encoder) Option {
	return func(s *Service) {
		s.passwords = enc
	}
}

// New constructs a Service. The password mirror defaults to plaintext.
func New(attorneys AttorneyStore, idp IdentityProvider, validator TokenValidator, opts ...Option) *Service {
	s := &Service{
		attorneys:      attorneys,
		identity:       idp,
		validator:      validator,
		outbound:       http.DefaultClient,
		allowedOrigins: map[string]struct{}{},
		passwords:      secrets.NewEncoder(string(secrets.ModePlaintext)),
		logger:         slog.Default(),
		tracer:         otel.Tracer("github.com/angeljunes/vg-ms-attorney/internal/attorney/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WelcomeMessage returns the public greeting.
func (s *Service) WelcomeMessage() string {
	return WelcomeMessage
}

func (s *Service) ListActive(ctx context.Context) ([]*models.Attorney, error) {
	return s.listByStatus(ctx, models.StatusActive)
}

func (s *Service) ListInactive(ctx context.Context) ([]*models.Attorney, error) {
	return s.listByStatus(ctx, models.StatusInactive)
}

func (s *Service) listByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error) {
	list, err := s.attorneys.ListByStatus(ctx, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attorneys")
	}
	return list, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*models.Attorney, error) {
	a, err := s.attorneys.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, storeError(err, "failed to load attorney")
	}
	return a, nil
}

func (s *Service) FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error) {
	a, err := s.attorneys.FindByDocumentNumber(ctx, strings.TrimSpace(documentNumber))
	if err != nil {
		return nil, storeError(err, "failed to load attorney")
	}
	return a, nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.Attorney, error) {
	a, err := s.attorneys.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, storeError(err, "failed to load attorney")
	}
	return a, nil
}

// storeError translates store facts into coded domain errors.
func storeError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "attorney not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "identity account already linked to another attorney")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// identityError translates provider failures into coded domain errors.
func identityError(err error) error {
	switch identity.KindOf(err) {
	case identity.KindEmailExists:
		return dErrors.Wrap(err, dErrors.CodeConflict, "email is already registered")
	case identity.KindInvalidArgument:
		return dErrors.Wrap(err, dErrors.CodeValidation, "identity provider rejected the request")
	default:
		return dErrors.Wrap(err, dErrors.CodeUpstream, "identity provider request failed")
	}
}

func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := s.tracer.Start(ctx, "attorney."+op, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

func (s *Service) endSpan(span trace.Span, op string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
	s.metrics.ObserveOperation(op, start)
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, a *models.Attorney) {
	s.metrics.IncrementLifecycle(string(event))
	if s.auditPublisher == nil {
		return
	}
	s.auditPublisher.Emit(ctx, audit.Enrich(ctx, audit.Event{
		Action:     event,
		AttorneyID: a.ID,
		UID:        a.UID,
		Email:      a.Email,
	}))
}
