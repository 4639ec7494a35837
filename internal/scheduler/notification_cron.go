package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/activity_notifier/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Reconciler removes notification references to activities that no longer exist.
type Reconciler interface {
	ReconcileOrphans(ctx context.Context) (int, error)
}

const reconcileTimeout = 5 * time.Minute

// StartNotificationCronJobs schedules orphan reconciliation and starts the scheduler.
// The caller stops it with Stop() on shutdown.
func StartNotificationCronJobs(schedule string, reconciler Reconciler) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(schedule, func() { RunReconcile(reconciler) }); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Log.WithField("schedule", schedule).Info("Notification cron jobs started")
	return c, nil
}

// RunReconcile runs one reconciliation pass and logs the outcome.
func RunReconcile(reconciler Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	n, err := reconciler.ReconcileOrphans(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("ReconcileOrphans failed")
		return
	}
	logger.Log.WithField("orphans", n).Info("Notification reconciliation completed")
}
