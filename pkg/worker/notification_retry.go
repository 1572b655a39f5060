package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

// NotificationRetrier redelivers failed notifications that are due again.
type NotificationRetrier interface {
	RetryDue(ctx context.Context, limit int) (int, error)
}

// NotificationRetryWorker sweeps due notification retries on an interval.
type NotificationRetryWorker struct {
	retrier   NotificationRetrier
	batchSize int
	interval  time.Duration
	logger    *logger.Logger
}

func NewNotificationRetryWorker(retrier NotificationRetrier, batchSize int, interval time.Duration, logger *logger.Logger) *NotificationRetryWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &NotificationRetryWorker{
		retrier:   retrier,
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
	}
}

func (w *NotificationRetryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce drains due retries a batch at a time and returns how many were
// attempted.
func (w *NotificationRetryWorker) RunOnce(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := w.retrier.RetryDue(ctx, w.batchSize)
		if err != nil {
			w.logger.Error(err, "Failed to retry notifications")
			break
		}
		total += n
		if n < w.batchSize {
			break
		}
	}
	if total > 0 {
		w.logger.Info("Retried notifications", "count", total)
	}
	return total
}
