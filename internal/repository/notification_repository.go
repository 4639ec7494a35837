package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// NotificationActivitiesLimit caps the activity ids kept on one notification:
// the source plus a full batch of same activities.
const NotificationActivitiesLimit = SameActivitiesLimit + 1

// Upsert atomically creates the recipient's notification for the source activity's
// (target, action) or merges activityIDs into it, resetting it to unread. The given ids
// go to the front in order; ids already stored and not given are kept behind them, so
// overlapping upserts never drop each other's activities.
func (r *NotificationRepository) Upsert(ctx context.Context, userID primitive.ObjectID, source *models.Activity, activityIDs []primitive.ObjectID) (*models.Notification, error) {
	filter := bson.M{
		"user":        userID,
		"targetModel": source.TargetModel,
		"target":      source.TargetID,
		"action":      source.Action,
	}
	ids := activityIDs
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	kept := bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$activities", bson.A{}}},
		"cond":  bson.M{"$not": bson.A{bson.M{"$in": bson.A{"$$this", ids}}}},
	}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"activities": bson.M{"$slice": bson.A{
				bson.M{"$concatArrays": bson.A{ids, kept}},
				NotificationActivitiesLimit,
			}},
			"status":    models.NotificationUnread,
			"createdAt": time.Now(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var notif models.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&notif)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted the document first; the retry matches it
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&notif)
	}
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID.Hex()).Error("Failed to upsert notification")
		return nil, fmt.Errorf("failed to upsert notification: %w", err)
	}
	return &notif, nil
}

// RecipientsOf returns the users holding a notification that references any of the activities.
func (r *NotificationRepository) RecipientsOf(ctx context.Context, activityIDs ...primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(activityIDs) == 0 {
		return []primitive.ObjectID{}, nil
	}
	values, err := r.collection.Distinct(ctx, "user", bson.M{"activities": bson.M{"$in": activityIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notification recipients: %w", err)
	}
	return objectIDs(values), nil
}

// PullActivities removes the activity ids from every notification and deletes the
// notifications left without any activity.
func (r *NotificationRepository) PullActivities(ctx context.Context, activityIDs []primitive.ObjectID) (int64, error) {
	if len(activityIDs) == 0 {
		return 0, nil
	}
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"activities": bson.M{"$in": activityIDs}},
		bson.M{"$pull": bson.M{"activities": bson.M{"$in": activityIDs}}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to pull activities from notifications: %w", err)
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"activities": bson.M{"$size": 0}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete empty notifications: %w", err)
	}
	if result.DeletedCount > 0 {
		logger.Log.WithField("count", result.DeletedCount).Info("Deleted notifications left without activities")
	}
	return result.DeletedCount, nil
}

// ReferencedActivityIDs returns up to limit distinct activity ids referenced by some
// notification, in ascending order and greater than after. Pass primitive.NilObjectID
// to start from the beginning.
func (r *NotificationRepository) ReferencedActivityIDs(ctx context.Context, after primitive.ObjectID, limit int64) ([]primitive.ObjectID, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$activities"}},
		{{Key: "$match", Value: bson.M{"activities": bson.M{"$gt": after}}}},
		{{Key: "$group", Value: bson.M{"_id": "$activities"}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referenced activities: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode referenced activities: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts a user's unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"user": userID, "status": models.NotificationUnread})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// MarkAsOpened sets a notification owned by the user to OPENED.
func (r *NotificationRepository) MarkAsOpened(ctx context.Context, id, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "user": userID},
		bson.M{"$set": bson.M{"status": models.NotificationOpened}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification as opened: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}
	return nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
