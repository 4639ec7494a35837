package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// FanoutState is a step in an activity's notification lifecycle.
type FanoutState string

const (
	StateCreated                 FanoutState = "Created"
	StateNotificationsDispatched FanoutState = "NotificationsDispatched"
	StateDispatchFailed          FanoutState = "DispatchFailed"
	StateRemovalRequested        FanoutState = "RemovalRequested"
	StateNotificationsRetracted  FanoutState = "NotificationsRetracted"
	StateRetractFailed           FanoutState = "RetractFailed"
)

// Audience resolves the recipients of an activity.
type Audience interface {
	Resolve(ctx context.Context, activity *models.Activity) ([]primitive.ObjectID, error)
}

// SameActivitySource returns the activities an activity is batched with.
type SameActivitySource interface {
	Collect(ctx context.Context, activity *models.Activity) ([]models.Activity, error)
}

// FanoutCoordinator turns created activities into notification upserts and removed
// activities into retractions. Its failures are logged and never reach the writer.
type FanoutCoordinator struct {
	audience    Audience
	same        SameActivitySource
	store       NotificationStore
	concurrency int

	wg       sync.WaitGroup
	mu       sync.RWMutex
	listener func(activity *models.Activity, state FanoutState)
}

func NewFanoutCoordinator(audience Audience, same SameActivitySource, store NotificationStore, concurrency int) *FanoutCoordinator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FanoutCoordinator{
		audience:    audience,
		same:        same,
		store:       store,
		concurrency: concurrency,
	}
}

// OnStateChange registers a callback invoked on every lifecycle transition.
func (c *FanoutCoordinator) OnStateChange(fn func(activity *models.Activity, state FanoutState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = fn
}

// AfterCreate dispatches notifications in the background and returns immediately.
func (c *FanoutCoordinator) AfterCreate(ctx context.Context, activity *models.Activity) {
	snapshot := *activity
	ctx = context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.fail(&snapshot, StateDispatchFailed, fmt.Errorf("panic: %v", r))
			}
		}()

		c.transition(&snapshot, StateCreated)
		if err := c.Dispatch(ctx, &snapshot); err != nil {
			c.fail(&snapshot, StateDispatchFailed, err)
			return
		}
		c.transition(&snapshot, StateNotificationsDispatched)
	}()
}

// BeforeRemove retracts the activity's notification contribution. It runs synchronously
// so the retraction happens before the activity record is deleted.
func (c *FanoutCoordinator) BeforeRemove(ctx context.Context, activity *models.Activity) {
	c.transition(activity, StateRemovalRequested)
	if err := c.store.Retract(ctx, activity); err != nil {
		c.fail(activity, StateRetractFailed, err)
		return
	}
	c.transition(activity, StateNotificationsRetracted)
}

// Wait blocks until every background dispatch started so far has finished.
func (c *FanoutCoordinator) Wait() {
	c.wg.Wait()
}

// Dispatch resolves the audience and same activities concurrently, then upserts one
// notification per recipient. Per-recipient failures don't stop the others.
func (c *FanoutCoordinator) Dispatch(ctx context.Context, activity *models.Activity) error {
	var (
		recipients []primitive.ObjectID
		same       []models.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recipients, err = c.audience.Resolve(gctx, activity)
		return err
	})
	g.Go(func() error {
		var err error
		same, err = c.same.Collect(gctx, activity)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	var upserts errgroup.Group
	upserts.SetLimit(c.concurrency)
	for _, recipient := range recipients {
		upserts.Go(func() error {
			if err := c.store.Upsert(ctx, recipient, ForRecipient(same, recipient), activity); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("recipient %s: %w", recipient.Hex(), err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = upserts.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d upserts failed: %w", len(errs), len(recipients), errors.Join(errs...))
	}

	logger.Log.WithFields(logrus.Fields{
		"activity_id": activity.ID.Hex(),
		"recipients":  len(recipients),
		"batched":     len(same),
	}).Debug("Notifications upserted")
	return nil
}

func (c *FanoutCoordinator) transition(activity *models.Activity, state FanoutState) {
	entry := logger.Log.WithFields(logrus.Fields{
		"activity_id": activity.ID.Hex(),
		"action":      activity.Action,
		"state":       state,
	})
	switch state {
	case StateNotificationsDispatched, StateNotificationsRetracted:
		entry.Info("Fan-out finished")
	default:
		entry.Debug("Fan-out state changed")
	}
	c.notify(activity, state)
}

func (c *FanoutCoordinator) fail(activity *models.Activity, state FanoutState, err error) {
	logger.Log.WithError(err).WithFields(logrus.Fields{
		"activity_id": activity.ID.Hex(),
		"target":      activity.TargetID.Hex(),
		"action":      activity.Action,
		"state":       state,
	}).Error("Notification fan-out failed")
	c.notify(activity, state)
}

func (c *FanoutCoordinator) notify(activity *models.Activity, state FanoutState) {
	c.mu.RLock()
	fn := c.listener
	c.mu.RUnlock()
	if fn != nil {
		fn(activity, state)
	}
}
