package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbTimeout = 10 * time.Second

// ConnectDB connects to MongoDB and pings it.
func ConnectDB(cfg *Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")
	return client, nil
}

// GetCollection returns a collection of the configured database.
func GetCollection(client *mongo.Client, cfg *Config, collectionName string) *mongo.Collection {
	return client.Database(cfg.DatabaseName).Collection(collectionName)
}

// DisconnectDB closes the MongoDB connection
func DisconnectDB(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close MongoDB connection")
		return
	}
	log.Info().Msg("MongoDB connection closed")
}
