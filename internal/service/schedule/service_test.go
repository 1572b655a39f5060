package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository/repotest"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	"github.com/jwalitptl/clinic-scheduler/internal/service/clinic"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

type fakeNotifier struct {
	err  error
	sent []*model.Notification
}

func (f *fakeNotifier) Send(_ context.Context, n *model.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

// Monday 2024-03-04, 10:00.
var now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

var (
	today    = scheduling.DateOf(now)
	nextMon  = today.AddDays(7)
	tuesday  = today.AddDays(1)
	mondayAM = "2024-03-11"
)

type fixture struct {
	svc      *Service
	store    *repotest.Store
	notifier *fakeNotifier
	metrics  *metrics.Metrics
	clinic   *model.Clinic
	doctor   *model.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	c := store.AddClinic("north")
	d := store.AddDoctor("house")
	store.AddWindow(c.ID, scheduling.Monday, "08:00", "12:00")

	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "schedule")
	n := &fakeNotifier{}
	windows := clinic.NewService(store.ClinicRepository(), store.WindowRepository(), 0, logger.Nop())

	svc := NewService(Deps{
		Shifts:   store.ShiftRepository(),
		Clinics:  store.ClinicRepository(),
		Doctors:  store.DoctorRepository(),
		Outbox:   store.OutboxRepository(),
		Windows:  windows,
		Notifier: n,
		Metrics:  m,
		Logger:   logger.Nop(),
	}, Settings{Step: 30}, WithClock(func() time.Time { return now }))

	return &fixture{svc: svc, store: store, notifier: n, metrics: m, clinic: c, doctor: d}
}

func (f *fixture) request(date, start, end string) *model.CreateShiftRequest {
	return &model.CreateShiftRequest{
		ClinicID:   f.clinic.ID.String(),
		DoctorID:   f.doctor.ID.String(),
		Date:       date,
		StartShift: start,
		EndShift:   end,
	}
}

func TestCreateShift(t *testing.T) {
	f := newFixture(t)

	shift, err := f.svc.CreateShift(context.Background(), f.request(mondayAM, "8:00", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "08:00", shift.StartShift)
	assert.Equal(t, nextMon, shift.Date)
	assert.Contains(t, f.store.Shifts, shift.ID)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventShiftScheduled, events[0].EventType)
	assert.Equal(t, shift.ID, events[0].AggregateID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.doctor.Email, f.notifier.sent[0].Recipient)
	assert.Equal(t, model.NotificationChannelEmail, f.notifier.sent[0].Channel)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScheduleChecks.WithLabelValues("shift", "accepted")))
}

func TestCreateShiftRejected(t *testing.T) {
	f := newFixture(t)
	f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "08:00", "10:00")

	tests := []struct {
		name string
		req  *model.CreateShiftRequest
		want error
	}{
		{"overlap", f.request(mondayAM, "09:00", "11:00"), scheduling.ErrShiftOverlap},
		{"outside window", f.request(mondayAM, "11:00", "13:00"), scheduling.ErrShiftOutsideWindow},
		{"closed day", f.request(tuesday.Key(), "09:00", "10:00"), scheduling.ErrNoOperatingWindow},
		{"reversed", f.request(mondayAM, "11:00", "10:00"), scheduling.ErrInvalidShiftRange},
		{"bad date", f.request("2024-02-30", "09:00", "10:00"), scheduling.ErrInvalidDateKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateShift(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Len(t, f.store.Shifts, 1, "nothing persisted")
	assert.Empty(t, f.store.OutboxEvents())
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ScheduleChecks.WithLabelValues("shift", "ShiftOverlap")))
}

func TestCreateShiftUnknownDoctor(t *testing.T) {
	f := newFixture(t)
	req := f.request(mondayAM, "08:00", "10:00")
	req.DoctorID = uuid.NewString()

	_, err := f.svc.CreateShift(context.Background(), req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestCreateShiftSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	f.store.Fail["outbox.create"] = errors.New("outbox down")

	shift, err := f.svc.CreateShift(context.Background(), f.request(mondayAM, "08:00", "12:00"))
	require.NoError(t, err)
	assert.Contains(t, f.store.Shifts, shift.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NotificationsLost))
}

func TestUpdateShiftExcludesItself(t *testing.T) {
	f := newFixture(t)
	existing := f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "08:00", "10:00")

	updated, err := f.svc.UpdateShift(context.Background(), existing.ID, &model.UpdateShiftRequest{
		Date: mondayAM, StartShift: "09:00", EndShift: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartShift)
	assert.Equal(t, "11:00", f.store.Shifts[existing.ID].EndShift)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventShiftRescheduled, events[0].EventType)
}

func TestUpdateShiftStillChecksOthers(t *testing.T) {
	f := newFixture(t)
	existing := f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "08:00", "10:00")
	f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "10:00", "12:00")

	_, err := f.svc.UpdateShift(context.Background(), existing.ID, &model.UpdateShiftRequest{
		Date: mondayAM, StartShift: "09:00", EndShift: "11:00",
	})
	assert.ErrorIs(t, err, scheduling.ErrShiftOverlap)
	assert.Equal(t, "10:00", f.store.Shifts[existing.ID].EndShift, "unchanged")
}

func TestUpdateShiftNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.UpdateShift(context.Background(), uuid.New(), &model.UpdateShiftRequest{
		Date: mondayAM, StartShift: "09:00", EndShift: "11:00",
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestDeleteShiftRecordsCancellation(t *testing.T) {
	f := newFixture(t)
	existing := f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "08:00", "10:00")

	require.NoError(t, f.svc.DeleteShift(context.Background(), existing.ID))
	assert.NotContains(t, f.store.Shifts, existing.ID)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventShiftCancelled, events[0].EventType)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Shift cancelled", f.notifier.sent[0].Subject)
}

func TestNextAvailableDateSkipsFullyBookedDay(t *testing.T) {
	f := newFixture(t)
	f.store.AddShift(f.clinic.ID, f.doctor.ID, today, "08:00", "10:00")
	f.store.AddShift(f.clinic.ID, f.doctor.ID, today, "10:00", "12:00")

	next, err := f.svc.NextAvailableDate(context.Background(), f.clinic.ID, scheduling.Monday)
	require.NoError(t, err)
	assert.Equal(t, nextMon, next.Date)
	assert.Equal(t, []scheduling.Date{today}, next.BookedDates)

	_, err = f.svc.NextAvailableDate(context.Background(), f.clinic.ID, scheduling.Tuesday)
	assert.ErrorIs(t, err, scheduling.ErrNoAvailableDate)

	_, err = f.svc.NextAvailableDate(context.Background(), f.clinic.ID, scheduling.Weekday("NOPE"))
	assert.ErrorIs(t, err, scheduling.ErrInvalidWeekday)
}

func TestDayAvailability(t *testing.T) {
	f := newFixture(t)
	f.store.AddShift(f.clinic.ID, f.doctor.ID, nextMon, "10:00", "11:00")

	got, err := f.svc.DayAvailability(context.Background(), f.clinic.ID, nextMon, "9:00")
	require.NoError(t, err)
	assert.True(t, got.Allowed)
	assert.False(t, got.FullyBooked)
	assert.Equal(t, scheduling.Monday, got.Weekday)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30", "11:00", "11:30"}, got.StartOptions)
	assert.Equal(t, []string{"09:30", "10:00"}, got.EndOptions)

	closed, err := f.svc.DayAvailability(context.Background(), f.clinic.ID, tuesday, "")
	require.NoError(t, err)
	assert.False(t, closed.Allowed)
	assert.Empty(t, closed.StartOptions)
	assert.Nil(t, closed.EndOptions)

	_, err = f.svc.DayAvailability(context.Background(), f.clinic.ID, nextMon, "9am")
	assert.ErrorIs(t, err, scheduling.ErrInvalidTimeFormat)
}
