package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"merchant-notification-service/pkg/config"
)

// MongoStore wraps the Mongo client and the notification collection.
type MongoStore struct {
	Client     *mongo.Client
	Collection *mongo.Collection
}

// NewMongoStore connects to cfg.URI and pings the primary.
func NewMongoStore(cfg *config.MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{
		Client:     client,
		Collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close disconnects the client, waiting at most five seconds.
func (s *MongoStore) Close() {
	if s == nil || s.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.Client.Disconnect(ctx)
}
