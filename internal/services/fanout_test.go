package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Dias221467/activity_notifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stateRecorder struct {
	mu     sync.Mutex
	states []FanoutState
}

func (r *stateRecorder) record(_ *models.Activity, state FanoutState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *stateRecorder) get() []FanoutState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FanoutState(nil), r.states...)
}

func newCommentActivity(actor, pageID primitive.ObjectID) *models.Activity {
	return &models.Activity{
		ID:          primitive.NewObjectID(),
		UserID:      actor,
		TargetModel: models.TargetModelPage,
		TargetID:    pageID,
		Action:      models.ActionComment,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestFanoutCoordinator_AfterCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Upserts one batch per recipient", func(t *testing.T) {
		actor, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		source := newCommentActivity(actor, primitive.NewObjectID())
		byB := models.Activity{ID: primitive.NewObjectID(), UserID: b, TargetID: source.TargetID, Action: models.ActionComment}
		byC := models.Activity{ID: primitive.NewObjectID(), UserID: c, TargetID: source.TargetID, Action: models.ActionComment}

		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, source).Return([]primitive.ObjectID{b, c}, nil).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{byC, byB}, nil).Once()
		store.On("Upsert", mock.Anything, b, []models.Activity{byC}, source).Return(nil).Once()
		store.On("Upsert", mock.Anything, c, []models.Activity{byB}, source).Return(nil).Once()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(audience, same, store, 4)
		coordinator.OnStateChange(rec.record)

		coordinator.AfterCreate(ctx, source)
		coordinator.Wait()

		assert.Equal(t, []FanoutState{StateCreated, StateNotificationsDispatched}, rec.get())
		audience.AssertExpectations(t)
		same.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("No recipients", func(t *testing.T) {
		source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, source).Return([]primitive.ObjectID{}, nil).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{}, nil).Once()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(audience, same, store, 1)
		coordinator.OnStateChange(rec.record)

		coordinator.AfterCreate(ctx, source)
		coordinator.Wait()

		assert.Equal(t, []FanoutState{StateCreated, StateNotificationsDispatched}, rec.get())
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Audience failure skips upserts", func(t *testing.T) {
		source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, source).
			Return(nil, &models.TargetNotFoundError{Model: source.TargetModel, ID: source.TargetID}).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{}, nil).Maybe()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(audience, same, store, 2)
		coordinator.OnStateChange(rec.record)

		coordinator.AfterCreate(ctx, source)
		coordinator.Wait()

		assert.Equal(t, []FanoutState{StateCreated, StateDispatchFailed}, rec.get())
		store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("One failed upsert does not stop the rest", func(t *testing.T) {
		b, c, d := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, source).Return([]primitive.ObjectID{b, c, d}, nil).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{}, nil).Once()
		store.On("Upsert", mock.Anything, b, mock.Anything, source).Return(nil).Once()
		store.On("Upsert", mock.Anything, c, mock.Anything, source).Return(errors.New("write timeout")).Once()
		store.On("Upsert", mock.Anything, d, mock.Anything, source).Return(nil).Once()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(audience, same, store, 1)
		coordinator.OnStateChange(rec.record)

		coordinator.AfterCreate(ctx, source)
		coordinator.Wait()

		assert.Equal(t, []FanoutState{StateCreated, StateDispatchFailed}, rec.get())
		store.AssertExpectations(t)
	})

	t.Run("Writer is not blocked by dispatch", func(t *testing.T) {
		release := make(chan struct{})
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { <-release }).
			Return([]primitive.ObjectID{}, nil).Once()
		same.On("Collect", mock.Anything, mock.Anything).Return([]models.Activity{}, nil).Once()

		repo := new(mockActivityRepo)
		repo.On("CreateActivity", mock.Anything, mock.Anything).Return(nil).Once()

		coordinator := NewFanoutCoordinator(audience, same, store, 1)
		svc := NewActivityService(repo, coordinator)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := svc.Create(ctx, ActivityParams{
				UserID:      primitive.NewObjectID(),
				TargetModel: models.TargetModelPage,
				TargetID:    primitive.NewObjectID(),
				Action:      models.ActionLike,
			})
			assert.NoError(t, err)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Create blocked on notification dispatch")
		}
		close(release)
		coordinator.Wait()
		audience.AssertExpectations(t)
	})

	t.Run("Cancelled request context does not abort dispatch", func(t *testing.T) {
		source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		recipient := primitive.NewObjectID()
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil }), source).
			Return([]primitive.ObjectID{recipient}, nil).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{}, nil).Once()
		store.On("Upsert", mock.Anything, recipient, []models.Activity{}, source).Return(nil).Once()

		reqCtx, cancel := context.WithCancel(ctx)
		coordinator := NewFanoutCoordinator(audience, same, store, 1)
		coordinator.AfterCreate(reqCtx, source)
		cancel()
		coordinator.Wait()

		store.AssertExpectations(t)
	})

	t.Run("Respects the concurrency limit", func(t *testing.T) {
		source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		recipients := make([]primitive.ObjectID, 8)
		for i := range recipients {
			recipients[i] = primitive.NewObjectID()
		}

		var inFlight, peak atomic.Int32
		audience := new(mockAudience)
		same := new(mockSameSource)
		store := new(mockNotificationStore)
		audience.On("Resolve", mock.Anything, source).Return(recipients, nil).Once()
		same.On("Collect", mock.Anything, source).Return([]models.Activity{}, nil).Once()
		store.On("Upsert", mock.Anything, mock.Anything, mock.Anything, source).
			Run(func(mock.Arguments) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
			}).
			Return(nil).Times(len(recipients))

		coordinator := NewFanoutCoordinator(audience, same, store, 2)
		require.NoError(t, coordinator.Dispatch(ctx, source))

		assert.LessOrEqual(t, peak.Load(), int32(2))
		store.AssertExpectations(t)
	})
}

func TestFanoutCoordinator_BeforeRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("Retracts synchronously", func(t *testing.T) {
		activity := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		store := new(mockNotificationStore)
		store.On("Retract", ctx, activity).Return(nil).Once()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(new(mockAudience), new(mockSameSource), store, 1)
		coordinator.OnStateChange(rec.record)

		coordinator.BeforeRemove(ctx, activity)

		assert.Equal(t, []FanoutState{StateRemovalRequested, StateNotificationsRetracted}, rec.get())
		store.AssertExpectations(t)
	})

	t.Run("Retract failure is swallowed", func(t *testing.T) {
		activity := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		store := new(mockNotificationStore)
		store.On("Retract", ctx, activity).Return(errors.New("db down")).Once()

		rec := &stateRecorder{}
		coordinator := NewFanoutCoordinator(new(mockAudience), new(mockSameSource), store, 1)
		coordinator.OnStateChange(rec.record)

		coordinator.BeforeRemove(ctx, activity)

		assert.Equal(t, []FanoutState{StateRemovalRequested, StateRetractFailed}, rec.get())
	})

	t.Run("RemoveMatching still deletes after a failed retraction", func(t *testing.T) {
		activity := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
		filter := models.ActivityFilter{TargetID: activity.TargetID}
		store := new(mockNotificationStore)
		store.On("Retract", ctx, mock.Anything).Return(errors.New("db down")).Once()
		repo := new(mockActivityRepo)
		repo.On("FindMatching", ctx, filter).Return([]models.Activity{*activity}, nil).Once()
		repo.On("DeleteByIDs", ctx, []primitive.ObjectID{activity.ID}).Return(int64(1), nil).Once()

		svc := NewActivityService(repo, NewFanoutCoordinator(new(mockAudience), new(mockSameSource), store, 1))
		n, err := svc.RemoveMatching(ctx, filter)

		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		repo.AssertExpectations(t)
	})
}

func TestForRecipient(t *testing.T) {
	b, c := primitive.NewObjectID(), primitive.NewObjectID()
	same := []models.Activity{
		{ID: primitive.NewObjectID(), UserID: b},
		{ID: primitive.NewObjectID(), UserID: c},
		{ID: primitive.NewObjectID(), UserID: b},
	}

	assert.Equal(t, []models.Activity{same[1]}, ForRecipient(same, b))
	assert.Equal(t, same, ForRecipient(same, primitive.NewObjectID()))
	assert.Empty(t, ForRecipient(nil, b))
}

func TestSameActivityAggregator_Collect(t *testing.T) {
	ctx := context.Background()
	repo := new(mockActivityRepo)
	source := newCommentActivity(primitive.NewObjectID(), primitive.NewObjectID())
	earlier := []models.Activity{{ID: primitive.NewObjectID()}}
	repo.On("GetSameActivities", ctx, source.TargetID, source.Action, source.ID).Return(earlier, nil).Once()

	got, err := NewSameActivityAggregator(repo).Collect(ctx, source)

	require.NoError(t, err)
	assert.Equal(t, earlier, got)
	repo.AssertExpectations(t)
}
