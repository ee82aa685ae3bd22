package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

// MongoStore persists attorneys as documents keyed by their string ID.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongo constructs a MongoDB-backed attorney store.
func NewMongo(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{coll: db.Collection(collection)}
}

// EnsureIndexes creates the lookup indexes. Safe to call on every start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uid_unique")},
		{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("status")},
		{Keys: bson.D{{Key: "documentNumber", Value: 1}}, Options: options.Index().SetName("document_number")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email")},
	})
	if err != nil {
		return fmt.Errorf("create attorney indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, a *models.Attorney) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: a.ID}}, a, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save attorney: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Attorney, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}}, "find attorney by id")
}

func (s *MongoStore) FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error) {
	return s.findOne(ctx, bson.D{{Key: "documentNumber", Value: documentNumber}}, "find attorney by document")
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.Attorney, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}}, "find attorney by email")
}

func (s *MongoStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{{Key: "status", Value: status}}, opts)
	if err != nil {
		return nil, fmt.Errorf("list attorneys by status: %w", err)
	}
	out := make([]*models.Attorney, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode attorneys: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D, op string) (*models.Attorney, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	var a models.Attorney
	if err := s.coll.FindOne(ctx, filter, opts).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}
