package services

import (
	"context"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository contracts. The concrete types live in internal/repository.

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *models.Activity) error
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error)
	GetSameActivities(ctx context.Context, targetID primitive.ObjectID, action models.Action, excludeID primitive.ObjectID) ([]models.Activity, error)
	FindMatching(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

type NotificationRepository interface {
	Upsert(ctx context.Context, userID primitive.ObjectID, source *models.Activity, activityIDs []primitive.ObjectID) (*models.Notification, error)
	RecipientsOf(ctx context.Context, activityIDs ...primitive.ObjectID) ([]primitive.ObjectID, error)
	PullActivities(ctx context.Context, activityIDs []primitive.ObjectID) (int64, error)
	ReferencedActivityIDs(ctx context.Context, after primitive.ObjectID, limit int64) ([]primitive.ObjectID, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsOpened(ctx context.Context, id, userID primitive.ObjectID) error
}

type WatcherRepository interface {
	Watch(ctx context.Context, userID primitive.ObjectID, targetModel models.TargetModel, targetID primitive.ObjectID, status models.WatchStatus) (*models.Watcher, error)
	UsersByStatus(ctx context.Context, targetID primitive.ObjectID, status models.WatchStatus) ([]primitive.ObjectID, error)
	DeleteByTarget(ctx context.Context, targetID primitive.ObjectID) error
}

type PageRepository interface {
	CreatePage(ctx context.Context, page *models.Page) (*models.Page, error)
	GetPageByID(ctx context.Context, id primitive.ObjectID) (*models.Page, error)
	DeletePage(ctx context.Context, id primitive.ObjectID) error
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	CreatorsByPage(ctx context.Context, pageID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByPage(ctx context.Context, pageID primitive.ObjectID) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// Collaborators consumed by the audience resolver and the fan-out coordinator.

// WatcherDirectory reports explicit per-target subscription state.
type WatcherDirectory interface {
	Watchers(ctx context.Context, targetID primitive.ObjectID) ([]primitive.ObjectID, error)
	Ignorers(ctx context.Context, targetID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// UserDirectory filters user ids down to active accounts.
type UserDirectory interface {
	ActiveUsersAmong(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// NotificationStore merges activities into per-recipient notifications.
// Upsert must be atomic per (recipient, target, action).
type NotificationStore interface {
	Upsert(ctx context.Context, recipient primitive.ObjectID, sameActivities []models.Activity, source *models.Activity) error
	Retract(ctx context.Context, activity *models.Activity) error
}

// TargetResolver loads the entity an activity points at.
type TargetResolver interface {
	Load(ctx context.Context, model models.TargetModel, id primitive.ObjectID) (Target, error)
}

// Target is a loaded entity that knows who is interested in it.
type Target interface {
	InterestedParties(ctx context.Context) ([]primitive.ObjectID, error)
}
