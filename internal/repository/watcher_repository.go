package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WatcherRepository struct {
	collection *mongo.Collection
}

func NewWatcherRepository(db *mongo.Database) *WatcherRepository {
	return &WatcherRepository{
		collection: db.Collection("watchers"),
	}
}

// Watch sets the user's subscription state for the target, replacing any previous state.
func (r *WatcherRepository) Watch(ctx context.Context, userID primitive.ObjectID, targetModel models.TargetModel, targetID primitive.ObjectID, status models.WatchStatus) (*models.Watcher, error) {
	filter := bson.M{"user": userID, "target": targetID}
	update := bson.M{
		"$set": bson.M{
			"targetModel": targetModel,
			"status":      status,
		},
		"$setOnInsert": bson.M{"createdAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var watcher models.Watcher
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&watcher); err != nil {
		return nil, fmt.Errorf("failed to update watcher: %w", err)
	}
	return &watcher, nil
}

// UsersByStatus returns the users whose state for the target is status.
func (r *WatcherRepository) UsersByStatus(ctx context.Context, targetID primitive.ObjectID, status models.WatchStatus) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "user", bson.M{"target": targetID, "status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s users: %w", status, err)
	}
	return objectIDs(values), nil
}

// DeleteByTarget removes every watcher record for the target.
func (r *WatcherRepository) DeleteByTarget(ctx context.Context, targetID primitive.ObjectID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"target": targetID}); err != nil {
		return fmt.Errorf("failed to delete watchers: %w", err)
	}
	return nil
}
