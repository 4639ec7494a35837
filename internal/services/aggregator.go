package services

import (
	"context"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SameActivityAggregator collects earlier activities on the same (target, action) so
// several actors can be batched into one notification per recipient.
type SameActivityAggregator struct {
	repo ActivityRepository
}

func NewSameActivityAggregator(repo ActivityRepository) *SameActivityAggregator {
	return &SameActivityAggregator{repo: repo}
}

// Collect returns up to 1000 other activities on the activity's target and action, newest first.
func (a *SameActivityAggregator) Collect(ctx context.Context, activity *models.Activity) ([]models.Activity, error) {
	return a.repo.GetSameActivities(ctx, activity.TargetID, activity.Action, activity.ID)
}

// ForRecipient drops the recipient's own activities from the batch, keeping order.
func ForRecipient(same []models.Activity, recipient primitive.ObjectID) []models.Activity {
	filtered := make([]models.Activity, 0, len(same))
	for _, a := range same {
		if a.UserID != recipient {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
