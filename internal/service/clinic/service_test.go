package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository/repotest"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *repotest.Store, *model.Clinic) {
	t.Helper()
	store := repotest.NewStore()
	c := store.AddClinic("north")
	svc := NewService(store.ClinicRepository(), store.WindowRepository(), ttl, logger.Nop())
	return svc, store, c
}

func TestAddWindowNormalizesTimes(t *testing.T) {
	svc, _, c := newTestService(t, 0)

	w, err := svc.AddWindow(context.Background(), c.ID, &model.CreateWindowRequest{
		OpenDay:   "monday",
		StartTime: "8:00",
		EndTime:   "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, scheduling.Monday, w.OpenDay)
	assert.Equal(t, "08:00", w.StartTime)
	assert.Equal(t, "12:00", w.EndTime)
	assert.NotEqual(t, uuid.Nil, w.ID)
}

func TestAddWindowRejectsBadInput(t *testing.T) {
	svc, _, c := newTestService(t, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.CreateWindowRequest
		want error
	}{
		{"reversed", model.CreateWindowRequest{OpenDay: "MONDAY", StartTime: "12:00", EndTime: "08:00"}, scheduling.ErrInvalidShiftRange},
		{"empty", model.CreateWindowRequest{OpenDay: "MONDAY", StartTime: "08:00", EndTime: "08:00"}, scheduling.ErrInvalidShiftRange},
		{"bad time", model.CreateWindowRequest{OpenDay: "MONDAY", StartTime: "8am", EndTime: "12:00"}, scheduling.ErrInvalidTimeFormat},
		{"bad day", model.CreateWindowRequest{OpenDay: "FUNDAY", StartTime: "08:00", EndTime: "12:00"}, scheduling.ErrInvalidWeekday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddWindow(ctx, c.ID, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAddWindowUnknownClinic(t *testing.T) {
	svc, _, _ := newTestService(t, 0)
	_, err := svc.AddWindow(context.Background(), uuid.New(), &model.CreateWindowRequest{
		OpenDay: "MONDAY", StartTime: "08:00", EndTime: "12:00",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestCachedWindowsInvalidatedOnWrite(t *testing.T) {
	svc, store, c := newTestService(t, time.Minute)
	ctx := context.Background()
	store.AddWindow(c.ID, scheduling.Monday, "08:00", "12:00")

	got, err := svc.CachedWindows(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// a write behind the service's back is not visible until the entry expires
	store.AddWindow(c.ID, scheduling.Tuesday, "08:00", "12:00")
	got, err = svc.CachedWindows(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	authoritative, err := svc.ListWindows(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, authoritative, 2)

	added, err := svc.AddWindow(ctx, c.ID, &model.CreateWindowRequest{OpenDay: "FRIDAY", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	got, err = svc.CachedWindows(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	require.NoError(t, svc.RemoveWindow(ctx, c.ID, added.ID))
	got, err = svc.CachedWindows(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRemoveWindowOfOtherClinic(t *testing.T) {
	svc, store, c := newTestService(t, 0)
	other := store.AddClinic("south")
	w := store.AddWindow(other.ID, scheduling.Monday, "08:00", "12:00")

	err := svc.RemoveWindow(context.Background(), c.ID, w.ID)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)

	_, stillThere := store.Windows[w.ID]
	assert.True(t, stillThere)
}
