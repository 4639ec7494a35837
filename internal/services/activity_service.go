package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityHook observes the activity lifecycle. AfterCreate runs once per successful
// create; BeforeRemove runs for every matched activity before it is deleted.
type ActivityHook interface {
	AfterCreate(ctx context.Context, activity *models.Activity)
	BeforeRemove(ctx context.Context, activity *models.Activity)
}

// ActivityParams are the caller-supplied fields of a new activity.
type ActivityParams struct {
	UserID      primitive.ObjectID
	TargetModel models.TargetModel
	TargetID    primitive.ObjectID
	Action      models.Action
	EventID     *primitive.ObjectID
	EventModel  models.EventModel
	// CreatedAt defaults to now. It is stored truncated to milliseconds in UTC, and the
	// returned Activity carries the truncated value.
	CreatedAt time.Time
}

// ActivityService is the append-only activity log.
type ActivityService struct {
	repo  ActivityRepository
	hooks []ActivityHook
	now   func() time.Time
}

func NewActivityService(repo ActivityRepository, hooks ...ActivityHook) *ActivityService {
	return &ActivityService{
		repo:  repo,
		hooks: hooks,
		now:   time.Now,
	}
}

// AddHook registers a lifecycle hook. Not safe to call concurrently with Create or RemoveMatching.
func (s *ActivityService) AddHook(h ActivityHook) {
	if h != nil {
		s.hooks = append(s.hooks, h)
	}
}

// Create validates and persists a new activity, then fires AfterCreate. A nil-valued
// EventID is treated as no event.
func (s *ActivityService) Create(ctx context.Context, params ActivityParams) (*models.Activity, error) {
	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	eventID := params.EventID
	if eventID != nil && eventID.IsZero() {
		eventID = nil
	}

	activity := &models.Activity{
		UserID:      params.UserID,
		TargetModel: params.TargetModel,
		TargetID:    params.TargetID,
		Action:      params.Action,
		EventID:     eventID,
		EventModel:  params.EventModel,
		// MongoDB stores milliseconds
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
	if err := activity.Validate(); err != nil {
		logger.Log.WithError(err).Warn("Rejected invalid activity")
		return nil, err
	}

	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"activity_id": activity.ID.Hex(),
		"user_id":     activity.UserID.Hex(),
		"action":      activity.Action,
	}).Info("Activity logged successfully")

	for _, h := range s.hooks {
		h.AfterCreate(ctx, activity)
	}
	return activity, nil
}

// RemoveMatching deletes every activity matching filter, firing BeforeRemove for each first.
// It returns the number of deleted activities.
func (s *ActivityService) RemoveMatching(ctx context.Context, filter models.ActivityFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, models.NewValidationError("filter", "must not be empty")
	}
	if filter.TargetModel != "" && !filter.TargetModel.IsValid() {
		return 0, models.NewValidationError("targetModel", "`"+string(filter.TargetModel)+"` is not a supported target model")
	}
	if filter.Action != "" && !filter.Action.IsValid() {
		return 0, models.NewValidationError("action", "`"+string(filter.Action)+"` is not a supported action")
	}

	activities, err := s.repo.FindMatching(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(activities) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(activities))
	for i := range activities {
		for _, h := range s.hooks {
			h.BeforeRemove(ctx, &activities[i])
		}
		ids = append(ids, activities[i].ID)
	}

	n, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to remove activities: %w", err)
	}
	logger.Log.WithField("count", n).Info("Activities removed")
	return n, nil
}

// FindByUser returns the user's activities, most recent first.
func (s *ActivityService) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Activity, error) {
	return s.repo.FindByUser(ctx, userID)
}

// GetSameActivities returns up to 1000 activities on (target, action), most recent first.
// A non-zero excludeID is omitted from the result.
func (s *ActivityService) GetSameActivities(ctx context.Context, targetID primitive.ObjectID, action models.Action, excludeID primitive.ObjectID) ([]models.Activity, error) {
	return s.repo.GetSameActivities(ctx, targetID, action, excludeID)
}

func (s *ActivityService) CreateByPageComment(ctx context.Context, comment *models.Comment) (*models.Activity, error) {
	eventID := comment.ID
	return s.Create(ctx, ActivityParams{
		UserID:      comment.Creator,
		TargetModel: models.TargetModelPage,
		TargetID:    comment.PageID,
		Action:      models.ActionComment,
		EventID:     &eventID,
		EventModel:  models.EventModelComment,
	})
}

func (s *ActivityService) CreateByPageLike(ctx context.Context, pageID, userID primitive.ObjectID) (*models.Activity, error) {
	return s.Create(ctx, ActivityParams{
		UserID:      userID,
		TargetModel: models.TargetModelPage,
		TargetID:    pageID,
		Action:      models.ActionLike,
	})
}

func (s *ActivityService) RemoveByPageUnlike(ctx context.Context, pageID, userID primitive.ObjectID) (int64, error) {
	return s.RemoveMatching(ctx, models.ActivityFilter{
		UserID:      userID,
		TargetModel: models.TargetModelPage,
		TargetID:    pageID,
		Action:      models.ActionLike,
	})
}

// RemoveByPage removes every activity on the page; used when the page is deleted.
func (s *ActivityService) RemoveByPage(ctx context.Context, pageID primitive.ObjectID) (int64, error) {
	return s.RemoveMatching(ctx, models.ActivityFilter{TargetID: pageID})
}

// GetActionUsersFromActivities returns the distinct actors in first-seen order.
func GetActionUsersFromActivities(activities []models.Activity) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(activities))
	users := make([]primitive.ObjectID, 0, len(activities))
	for _, a := range activities {
		if _, ok := seen[a.UserID]; ok {
			continue
		}
		seen[a.UserID] = struct{}{}
		users = append(users, a.UserID)
	}
	return users
}
