package services

import (
	"context"
	"fmt"

	"github.com/Dias221467/activity_notifier/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// AudienceResolver computes who should be notified about an activity.
type AudienceResolver struct {
	targets  TargetResolver
	watchers WatcherDirectory
	users    UserDirectory
}

func NewAudienceResolver(targets TargetResolver, watchers WatcherDirectory, users UserDirectory) *AudienceResolver {
	return &AudienceResolver{
		targets:  targets,
		watchers: watchers,
		users:    users,
	}
}

// Resolve returns the active users among the target's interested parties and watchers,
// minus ignorers and the actor. Order is not significant.
func (r *AudienceResolver) Resolve(ctx context.Context, activity *models.Activity) ([]primitive.ObjectID, error) {
	target, err := r.targets.Load(ctx, activity.TargetModel, activity.TargetID)
	if err != nil {
		return nil, err
	}

	var targetUsers, watchUsers, ignoreUsers []primitive.ObjectID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if targetUsers, err = target.InterestedParties(gctx); err != nil {
			return fmt.Errorf("failed to get interested parties: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if watchUsers, err = r.watchers.Watchers(gctx, activity.TargetID); err != nil {
			return fmt.Errorf("failed to get watchers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ignoreUsers, err = r.watchers.Ignorers(gctx, activity.TargetID); err != nil {
			return fmt.Errorf("failed to get ignorers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	excluded := newIDSet(ignoreUsers...)
	excluded.add(activity.UserID)

	candidates := newIDSet()
	eligible := make([]primitive.ObjectID, 0, len(targetUsers)+len(watchUsers))
	for _, list := range [][]primitive.ObjectID{targetUsers, watchUsers} {
		for _, id := range list {
			if id.IsZero() || candidates.has(id) || excluded.has(id) {
				continue
			}
			candidates.add(id)
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		return []primitive.ObjectID{}, nil
	}

	active, err := r.users.ActiveUsersAmong(ctx, eligible)
	if err != nil {
		return nil, fmt.Errorf("failed to filter active users: %w", err)
	}

	// the directory is trusted only to narrow the set
	audience := make([]primitive.ObjectID, 0, len(active))
	for _, id := range active {
		if candidates.has(id) {
			audience = append(audience, id)
			candidates.remove(id)
		}
	}
	return audience, nil
}

type idSet map[primitive.ObjectID]struct{}

func newIDSet(ids ...primitive.ObjectID) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s idSet) add(id primitive.ObjectID) { s[id] = struct{}{} }

func (s idSet) remove(id primitive.ObjectID) { delete(s, id) }

func (s idSet) has(id primitive.ObjectID) bool {
	_, ok := s[id]
	return ok
}
