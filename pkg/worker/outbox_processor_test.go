package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/messaging"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

type statusUpdate struct {
	status  model.OutboxStatus
	errMsg  *string
	retryAt *time.Time
}

type fakeOutbox struct {
	mu      sync.Mutex
	pending []*model.OutboxEvent
	updates map[uuid.UUID]statusUpdate
	purged  time.Time
}

func newFakeOutbox(events ...*model.OutboxEvent) *fakeOutbox {
	return &fakeOutbox{pending: events, updates: map[uuid.UUID]statusUpdate{}}
}

func (f *fakeOutbox) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutbox) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates[id] = statusUpdate{status: status, errMsg: errMsg, retryAt: retryAt}
	return nil
}

func (f *fakeOutbox) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	f.purged = before
	return 3, nil
}

type recordingBroker struct {
	messaging.Nop
	fail      error
	published []messaging.Message
	topics    []string
}

func (b *recordingBroker) Publish(_ context.Context, topic string, message interface{}) error {
	if b.fail != nil {
		return b.fail
	}
	b.topics = append(b.topics, topic)
	b.published = append(b.published, message.(messaging.Message))
	return nil
}

func newEvent(t *testing.T, retries int) *model.OutboxEvent {
	t.Helper()
	evt, err := model.NewOutboxEvent(model.EventShiftScheduled, uuid.New(), map[string]string{"date": "2024-03-04"})
	require.NoError(t, err)
	evt.ID = uuid.New()
	evt.RetryCount = retries
	return evt
}

func newProcessor(t *testing.T, repo *fakeOutbox, broker messaging.Broker) (*OutboxProcessor, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics(prometheus.NewRegistry(), "clinic", "worker_test")
	p, err := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		Topic:         "clinic.schedule",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
	}, logger.Nop(), m)
	require.NoError(t, err)
	return p, m
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	evt := newEvent(t, 0)
	repo := newFakeOutbox(evt)
	broker := &recordingBroker{}
	p, m := newProcessor(t, repo, broker)

	require.NoError(t, p.ProcessBatch(context.Background()))

	require.Len(t, broker.published, 1)
	assert.Equal(t, "clinic.schedule", broker.topics[0])
	got := broker.published[0]
	assert.Equal(t, evt.ID.String(), got.ID)
	assert.Equal(t, model.EventShiftScheduled, got.Type)
	assert.Equal(t, evt.AggregateID.String(), got.Key)
	assert.JSONEq(t, `{"date":"2024-03-04"}`, string(got.Payload))

	assert.Equal(t, model.OutboxStatusProcessed, repo.updates[evt.ID].status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsProcessed))
}

func TestProcessBatchSchedulesRetry(t *testing.T) {
	evt := newEvent(t, 0)
	repo := newFakeOutbox(evt)
	p, m := newProcessor(t, repo, &recordingBroker{fail: errors.New("broker down")})
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	require.NoError(t, p.ProcessBatch(context.Background()))

	u := repo.updates[evt.ID]
	assert.Equal(t, model.OutboxStatusRetry, u.status)
	require.NotNil(t, u.errMsg)
	assert.Equal(t, "broker down", *u.errMsg)
	require.NotNil(t, u.retryAt)
	assert.Equal(t, now.Add(time.Second), *u.retryAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
}

func TestProcessBatchGivesUpAfterMaxRetries(t *testing.T) {
	evt := newEvent(t, 4)
	repo := newFakeOutbox(evt)
	p, _ := newProcessor(t, repo, &recordingBroker{fail: errors.New("broker down")})

	require.NoError(t, p.ProcessBatch(context.Background()))

	u := repo.updates[evt.ID]
	assert.Equal(t, model.OutboxStatusFailed, u.status)
	assert.Nil(t, u.retryAt)
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(newFakeOutbox(), messaging.Nop{}, OutboxProcessorConfig{}, logger.Nop(), nil)
	assert.Error(t, err)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 5*time.Second, backoff(5*time.Second, 1))
	assert.Equal(t, 20*time.Second, backoff(5*time.Second, 3))
	assert.Equal(t, time.Hour, backoff(time.Minute, 20))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCleanupWorker(t *testing.T) {
	repo := newFakeOutbox()
	w := NewOutboxCleanupWorker(repo, 24*time.Hour, time.Hour, logger.Nop())
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	assert.Equal(t, int64(3), w.RunOnce(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), repo.purged)
}

func TestNewOutboxEventPayload(t *testing.T) {
	evt := newEvent(t, 0)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(evt.Payload, &payload))
	assert.Equal(t, "2024-03-04", payload["date"])
	assert.Equal(t, model.OutboxStatusPending, evt.Status)
}
