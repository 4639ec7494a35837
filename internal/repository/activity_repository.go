package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SameActivitiesLimit caps how many activities GetSameActivities returns.
const SameActivitiesLimit = 1000

type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// CreateActivity inserts a new activity log entry and sets its ID.
func (r *ActivityRepository) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID.IsZero() {
		activity.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &models.ConflictError{Resource: "activity", Err: err}
		}
		logger.Log.WithError(err).Error("Failed to insert activity")
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// FindByUser returns a user's activities, most recent first.
func (r *ActivityRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"user": userID}, opts)
}

// GetSameActivities returns up to SameActivitiesLimit activities on the same target and action,
// most recent first. A non-zero excludeID is left out of the result.
func (r *ActivityRepository) GetSameActivities(ctx context.Context, targetID primitive.ObjectID, action models.Action, excludeID primitive.ObjectID) ([]models.Activity, error) {
	filter := bson.M{"target": targetID, "action": action}
	if !excludeID.IsZero() {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(SameActivitiesLimit)
	return r.find(ctx, filter, opts)
}

// FindMatching returns every activity matching the filter.
func (r *ActivityRepository) FindMatching(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error) {
	return r.find(ctx, activityFilterToBSON(filter), options.Find())
}

// DeleteByIDs removes the given activities and returns how many were deleted.
func (r *ActivityRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to delete activities")
		return 0, fmt.Errorf("failed to delete activities: %w", err)
	}
	return result.DeletedCount, nil
}

// ExistingIDs returns the subset of ids that still have an activity record.
func (r *ActivityRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := r.collection.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to look up activity ids: %w", err)
	}
	return objectIDs(values), nil
}

func (r *ActivityRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Activity, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("failed to decode activities: %w", err)
	}
	return activities, nil
}

func activityFilterToBSON(f models.ActivityFilter) bson.M {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["user"] = f.UserID
	}
	if f.TargetModel != "" {
		filter["targetModel"] = f.TargetModel
	}
	if !f.TargetID.IsZero() {
		filter["target"] = f.TargetID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	return filter
}

func objectIDs(values []interface{}) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
