package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)
		}
		logger.Log.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// ActiveUsersAmong returns the ids from the list whose account status is active.
func (r *UserRepository) ActiveUsersAmong(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return []primitive.ObjectID{}, nil
	}
	filter := bson.M{
		"_id":    bson.M{"$in": ids},
		"status": models.UserStatusActive,
	}
	values, err := r.collection.Distinct(ctx, "_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active users: %w", err)
	}
	return objectIDs(values), nil
}
