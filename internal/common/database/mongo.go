// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"driverpro-notifier/internal/common/config"
)

// MongoClient wraps the MongoDB client and the configured database handle.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo creates a new MongoDB client for the configured store.
// The caller is expected to Ping before use; connection retries live in the
// bootstrap, matching the other capability clients.
func NewMongo(cfg config.StoreConfig) (*MongoClient, error) {
	client, err := mongo.Connect(
		options.Client().
			ApplyURI(cfg.URI).
			SetConnectTimeout(config.GetDuration(cfg.ConnectTimeout)).
			SetRetryReads(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Ping tests the store connection.
func (c *MongoClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects from the store.
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}

// Collection returns a handle to the named collection in the configured database.
func (c *MongoClient) Collection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}
