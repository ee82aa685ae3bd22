package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/angeljunes/vg-ms-attorney/internal/platform/config"
)

// Client owns the driver connection and the database the service writes to.
type Client struct {
	client   *mongo.Client
	Database *mongo.Database
}

// New connects and pings the primary before returning.
func New(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return &Client{client: client, Database: client.Database(cfg.Database)}, nil
}

// Close disconnects the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
