package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/config"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB opens a client to MongoDB, pings it and returns the configured database.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Log.WithField("db", cfg.DBName).Info("Connected to MongoDB")
	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the repositories rely on. The unique activity index
// rejects exact duplicate log entries for the same user, target, action and instant.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"activities": {
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "action", Value: 1}}},
			{Keys: bson.D{{Key: "user", Value: 1}}},
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "target", Value: 1},
					{Key: "action", Value: 1},
					{Key: "createdAt", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		"notifications": {
			{
				Keys: bson.D{
					{Key: "user", Value: 1},
					{Key: "target", Value: 1},
					{Key: "action", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "activities", Value: 1}}},
		},
		"watchers": {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "target", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "status", Value: 1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "page", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
