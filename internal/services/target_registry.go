package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetLoader loads one kind of target by id.
type TargetLoader interface {
	Load(ctx context.Context, id primitive.ObjectID) (Target, error)
}

// TargetLoaderFunc adapts a function to TargetLoader.
type TargetLoaderFunc func(ctx context.Context, id primitive.ObjectID) (Target, error)

func (f TargetLoaderFunc) Load(ctx context.Context, id primitive.ObjectID) (Target, error) {
	return f(ctx, id)
}

// TargetRegistry maps target kinds to their loaders.
type TargetRegistry struct {
	mu      sync.RWMutex
	loaders map[models.TargetModel]TargetLoader
}

func NewTargetRegistry() *TargetRegistry {
	return &TargetRegistry{loaders: make(map[models.TargetModel]TargetLoader)}
}

// Register binds a loader to a target kind, replacing any previous one.
func (r *TargetRegistry) Register(model models.TargetModel, loader TargetLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[model] = loader
}

// Load resolves the target. Unknown kinds and missing entities yield a *models.TargetNotFoundError.
func (r *TargetRegistry) Load(ctx context.Context, model models.TargetModel, id primitive.ObjectID) (Target, error) {
	r.mu.RLock()
	loader, ok := r.loaders[model]
	r.mu.RUnlock()
	if !ok {
		return nil, &models.TargetNotFoundError{Model: model, ID: id, Err: errors.New("no loader registered")}
	}

	target, err := loader.Load(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.TargetNotFoundError{Model: model, ID: id, Err: err}
		}
		return nil, err
	}
	if target == nil {
		return nil, &models.TargetNotFoundError{Model: model, ID: id}
	}
	return target, nil
}
