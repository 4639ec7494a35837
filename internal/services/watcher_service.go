package services

import (
	"context"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WatcherService manages per-user watch/ignore state and serves as the WatcherDirectory.
type WatcherService struct {
	repo WatcherRepository
}

func NewWatcherService(repo WatcherRepository) *WatcherService {
	return &WatcherService{repo: repo}
}

// Watch sets the user's state for the target.
func (s *WatcherService) Watch(ctx context.Context, userID primitive.ObjectID, targetModel models.TargetModel, targetID primitive.ObjectID, status models.WatchStatus) (*models.Watcher, error) {
	if !targetModel.IsValid() {
		return nil, models.NewValidationError("targetModel", "`"+string(targetModel)+"` is not a supported target model")
	}
	if !status.IsValid() {
		return nil, models.NewValidationError("status", "`"+string(status)+"` is not a supported watch status")
	}

	watcher, err := s.repo.Watch(ctx, userID, targetModel, targetID, status)
	if err != nil {
		return nil, err
	}
	logger.Log.WithFields(logrus.Fields{
		"user_id": userID.Hex(),
		"target":  targetID.Hex(),
		"status":  status,
	}).Info("Watch status updated")
	return watcher, nil
}

func (s *WatcherService) Watchers(ctx context.Context, targetID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.repo.UsersByStatus(ctx, targetID, models.WatchStatusWatch)
}

func (s *WatcherService) Ignorers(ctx context.Context, targetID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.repo.UsersByStatus(ctx, targetID, models.WatchStatusIgnore)
}
