package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

type fakeRetrier struct {
	batches []int
	err     error
	limits  []int
}

func (f *fakeRetrier) RetryDue(_ context.Context, limit int) (int, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return 0, f.err
	}
	if len(f.batches) == 0 {
		return 0, nil
	}
	n := f.batches[0]
	f.batches = f.batches[1:]
	return n, nil
}

func TestNotificationRetryWorkerDrainsFullBatches(t *testing.T) {
	r := &fakeRetrier{batches: []int{2, 2, 1}}
	w := NewNotificationRetryWorker(r, 2, 0, logger.Nop())

	assert.Equal(t, 5, w.RunOnce(context.Background()))
	assert.Equal(t, []int{2, 2, 2}, r.limits)
}

func TestNotificationRetryWorkerStopsOnError(t *testing.T) {
	r := &fakeRetrier{err: errors.New("db down")}
	w := NewNotificationRetryWorker(r, 0, 0, logger.Nop())

	assert.Zero(t, w.RunOnce(context.Background()))
	assert.Equal(t, []int{50}, r.limits)
}
