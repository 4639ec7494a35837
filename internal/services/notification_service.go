package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/activity_notifier/internal/cache"
	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService persists merged notifications and keeps the unread cache in step.
type NotificationService struct {
	repo       NotificationRepository
	activities ActivityRepository
	unread     cache.UnreadCounter
	batchSize  int64
}

func NewNotificationService(repo NotificationRepository, activities ActivityRepository, unread cache.UnreadCounter) *NotificationService {
	if unread == nil {
		unread = cache.Nop{}
	}
	return &NotificationService{
		repo:       repo,
		activities: activities,
		unread:     unread,
		batchSize:  reconcileBatchSize,
	}
}

// Upsert merges the source activity and the recipient's view of the same activities
// into the recipient's notification for (target, action).
func (s *NotificationService) Upsert(ctx context.Context, recipient primitive.ObjectID, sameActivities []models.Activity, source *models.Activity) error {
	ids := make([]primitive.ObjectID, 0, len(sameActivities)+1)
	ids = append(ids, source.ID)
	for _, a := range sameActivities {
		if a.ID != source.ID {
			ids = append(ids, a.ID)
		}
	}

	if _, err := s.repo.Upsert(ctx, recipient, source, ids); err != nil {
		return err
	}
	s.invalidate(ctx, recipient)
	return nil
}

// Retract removes the activity from every notification that references it.
func (s *NotificationService) Retract(ctx context.Context, activity *models.Activity) error {
	recipients, err := s.repo.RecipientsOf(ctx, activity.ID)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}
	if _, err := s.repo.PullActivities(ctx, []primitive.ObjectID{activity.ID}); err != nil {
		return err
	}
	s.invalidate(ctx, recipients...)
	return nil
}

// reconcileBatchSize is how many referenced activity ids ReconcileOrphans checks per round trip.
const reconcileBatchSize = 1000

// ReconcileOrphans drops references to activities that no longer exist, which a crash
// between retraction and deletion can leave behind. It returns the number of orphans removed.
func (s *NotificationService) ReconcileOrphans(ctx context.Context) (int, error) {
	total := 0
	after := primitive.NilObjectID
	for {
		referenced, err := s.repo.ReferencedActivityIDs(ctx, after, s.batchSize)
		if err != nil {
			return total, err
		}
		if len(referenced) == 0 {
			break
		}

		n, err := s.reconcileBatch(ctx, referenced)
		total += n
		if err != nil {
			return total, err
		}
		if int64(len(referenced)) < s.batchSize {
			break
		}
		after = referenced[len(referenced)-1]
	}

	if total > 0 {
		logger.Log.WithField("orphans", total).Info("Reconciled orphaned notification activities")
	}
	return total, nil
}

func (s *NotificationService) reconcileBatch(ctx context.Context, referenced []primitive.ObjectID) (int, error) {
	existing, err := s.activities.ExistingIDs(ctx, referenced)
	if err != nil {
		return 0, err
	}
	alive := newIDSet(existing...)

	var orphans []primitive.ObjectID
	for _, id := range referenced {
		if !alive.has(id) {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	recipients, err := s.repo.RecipientsOf(ctx, orphans...)
	if err != nil {
		return 0, err
	}
	if _, err := s.repo.PullActivities(ctx, orphans); err != nil {
		return 0, fmt.Errorf("failed to reconcile notifications: %w", err)
	}
	s.invalidate(ctx, recipients...)
	return len(orphans), nil
}

// GetUserNotifications returns a user's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

// MarkNotificationAsRead opens a notification owned by the user.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id, userID primitive.ObjectID) error {
	if err := s.repo.MarkAsOpened(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// UnreadCount returns the user's unread count, served from the cache when possible.
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if n, ok, err := s.unread.Get(ctx, userID); err == nil && ok {
		return n, nil
	} else if err != nil {
		logger.Log.WithError(err).Warn("Unread count cache lookup failed")
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.unread.Set(ctx, userID, n); err != nil {
		logger.Log.WithError(err).Warn("Failed to cache unread count")
	}
	return n, nil
}

func (s *NotificationService) invalidate(ctx context.Context, userIDs ...primitive.ObjectID) {
	if err := s.unread.Invalidate(ctx, userIDs...); err != nil {
		logger.Log.WithError(err).Warn("Failed to invalidate unread count cache")
	}
}
