package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	"github.com/jwalitptl/clinic-scheduler/internal/service/notification"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

// WindowSource serves operating windows for previews.
type WindowSource interface {
	CachedWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
}

type ScheduleServicer interface {
	CreateShift(ctx context.Context, req *model.CreateShiftRequest) (*model.ScheduledShift, error)
	UpdateShift(ctx context.Context, id uuid.UUID, req *model.UpdateShiftRequest) (*model.ScheduledShift, error)
	DeleteShift(ctx context.Context, id uuid.UUID) error
	GetShift(ctx context.Context, id uuid.UUID) (*model.ScheduledShift, error)
	ListShifts(ctx context.Context, filters *model.ShiftFilters) ([]*model.ScheduledShift, error)
	NextAvailableDate(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday) (*model.NextDate, error)
	DayAvailability(ctx context.Context, clinicID uuid.UUID, date scheduling.Date, start string) (*model.DayAvailability, error)
}

type Settings struct {
	Step            int
	Horizon         int
	BookedLookahead int
}

type Deps struct {
	Shifts   repository.ShiftRepository
	Clinics  repository.ClinicRepository
	Doctors  repository.DoctorRepository
	Outbox   repository.OutboxRepository
	Windows  WindowSource
	Notifier notification.Service
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

type Service struct {
	Deps
	settings Settings
	now      func() time.Time
	logger   *logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(deps Deps, settings Settings, opts ...Option) *Service {
	if settings.Horizon <= 0 {
		settings.Horizon = scheduling.DefaultSearchHorizon
	}
	if settings.BookedLookahead <= 0 {
		settings.BookedLookahead = 28
	}
	s := &Service{
		Deps:     deps,
		settings: settings,
		now:      time.Now,
		logger:   deps.Logger.WithFields(map[string]interface{}{"service": "schedule"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateShift(ctx context.Context, req *model.CreateShiftRequest) (*model.ScheduledShift, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic ID", err)
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}
	date, err := scheduling.ParseDateKey(req.Date)
	if err != nil {
		return nil, err
	}

	clinic, err := s.getClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	shift := &model.ScheduledShift{
		ClinicID:   clinicID,
		DoctorID:   doctorID,
		Date:       date,
		StartShift: normalize(req.StartShift),
		EndShift:   normalize(req.EndShift),
	}

	if err := s.Shifts.Schedule(ctx, shift, s.check(shift)); err != nil {
		return nil, s.writeError("schedule", err)
	}

	s.logger.Info("Shift scheduled",
		"shift_id", shift.ID.String(),
		"clinic_id", clinicID.String(),
		"doctor_id", doctorID.String(),
		"date", date.Key(),
		"start", shift.StartShift,
		"end", shift.EndShift)

	s.afterWrite(ctx, model.EventShiftScheduled, shift, clinic, doctor)
	return shift, nil
}

// UpdateShift runs the same checks as CreateShift; the shift never conflicts
// with its own previous placement.
func (s *Service) UpdateShift(ctx context.Context, id uuid.UUID, req *model.UpdateShiftRequest) (*model.ScheduledShift, error) {
	shift, err := s.GetShift(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := scheduling.ParseDateKey(req.Date)
	if err != nil {
		return nil, err
	}
	if req.DoctorID != "" {
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid doctor ID", err)
		}
		shift.DoctorID = doctorID
	}

	clinic, err := s.getClinic(ctx, shift.ClinicID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.getDoctor(ctx, shift.DoctorID)
	if err != nil {
		return nil, err
	}

	shift.Date = date
	shift.StartShift = normalize(req.StartShift)
	shift.EndShift = normalize(req.EndShift)

	if err := s.Shifts.Reschedule(ctx, shift, s.check(shift)); err != nil {
		return nil, s.writeError("reschedule", err)
	}

	s.logger.Info("Shift rescheduled",
		"shift_id", shift.ID.String(),
		"date", date.Key(),
		"start", shift.StartShift,
		"end", shift.EndShift)

	s.afterWrite(ctx, model.EventShiftRescheduled, shift, clinic, doctor)
	return shift, nil
}

func (s *Service) DeleteShift(ctx context.Context, id uuid.UUID) error {
	shift, err := s.GetShift(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Shifts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("shift", err)
		}
		return fmt.Errorf("failed to delete shift: %w", err)
	}

	clinic, cerr := s.Clinics.Get(ctx, shift.ClinicID)
	doctor, derr := s.Doctors.Get(ctx, shift.DoctorID)
	if cerr != nil || derr != nil {
		s.logger.Warn("Shift cancelled without notification",
			"shift_id", shift.ID.String(),
			"error", errors.Join(cerr, derr).Error())
		s.recordEvent(ctx, model.EventShiftCancelled, shift)
		return nil
	}
	s.afterWrite(ctx, model.EventShiftCancelled, shift, clinic, doctor)
	return nil
}

func (s *Service) GetShift(ctx context.Context, id uuid.UUID) (*model.ScheduledShift, error) {
	shift, err := s.Shifts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("shift", err)
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

func (s *Service) ListShifts(ctx context.Context, filters *model.ShiftFilters) ([]*model.ScheduledShift, error) {
	shifts, err := s.Shifts.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// NextAvailableDate is the first date on day, from today, that can still take
// a shift, plus the open-but-full dates of the coming weeks.
func (s *Service) NextAvailableDate(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday) (*model.NextDate, error) {
	if !day.Valid() {
		return nil, fmt.Errorf("%w: %q", scheduling.ErrInvalidWeekday, day)
	}
	planner, err := s.planner(ctx, clinicID, max(s.settings.Horizon, s.settings.BookedLookahead))
	if err != nil {
		return nil, err
	}
	s.Metrics.ObserveAvailability("shift_next_date")

	date, err := planner.NextAvailableDate(day)
	if err != nil {
		return nil, err
	}

	booked := planner.FullyBookedDates(planner.Today, s.settings.BookedLookahead)
	if booked == nil {
		booked = []scheduling.Date{}
	}
	return &model.NextDate{Weekday: day, Date: date, BookedDates: booked}, nil
}

// DayAvailability lists what the shift form can offer on date. End options
// are included when start is given.
func (s *Service) DayAvailability(ctx context.Context, clinicID uuid.UUID, date scheduling.Date, start string) (*model.DayAvailability, error) {
	if !date.Valid() {
		return nil, scheduling.ErrInvalidDateKey
	}
	if start != "" {
		m, err := scheduling.ParseTime(start)
		if err != nil {
			return nil, err
		}
		start = scheduling.FormatTime(m)
	}

	planner, err := s.plannerFor(ctx, clinicID, date, date.AddDays(1))
	if err != nil {
		return nil, err
	}
	s.Metrics.ObserveAvailability("shift_day")

	day := scheduling.WeekdayOf(date)
	out := &model.DayAvailability{
		Date:         date,
		Weekday:      day,
		Allowed:      planner.IsDateAllowed(date, day),
		FullyBooked:  planner.IsFullyBooked(date),
		StartOptions: []string{},
	}
	if !out.Allowed {
		return out, nil
	}
	if opts := planner.StartOptions(date); opts != nil {
		out.StartOptions = opts
	}
	if start != "" {
		out.EndOptions = planner.EndOptions(date, start)
		if out.EndOptions == nil {
			out.EndOptions = []string{}
		}
	}
	return out, nil
}

func (s *Service) planner(ctx context.Context, clinicID uuid.UUID, days int) (*scheduling.ShiftPlanner, error) {
	today := scheduling.DateOf(s.now())
	return s.plannerFor(ctx, clinicID, today, today.AddDays(days))
}

func (s *Service) plannerFor(ctx context.Context, clinicID uuid.UUID, from, to scheduling.Date) (*scheduling.ShiftPlanner, error) {
	if _, err := s.getClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	windows, err := s.Windows.CachedWindows(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.Shifts.ListByClinicRange(ctx, clinicID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	today := scheduling.DateOf(s.now())
	return scheduling.NewShiftPlanner(model.Windows(windows), model.Spans(shifts, uuid.Nil), today, s.settings.Step, s.settings.Horizon), nil
}

// check runs inside the repository transaction against freshly read rows.
func (s *Service) check(shift *model.ScheduledShift) repository.ShiftCheck {
	return func(windows []*model.OperatingWindow, sameDay []*model.ScheduledShift) error {
		err := scheduling.CheckShift(shift.Span(), model.Windows(windows), model.Spans(sameDay, shift.ID))
		s.Metrics.ObserveCheck("shift", string(scheduling.CodeOf(err)))
		return err
	}
}

func (s *Service) writeError(op string, err error) error {
	switch {
	case scheduling.CodeOf(err) != "":
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("shift", err)
	case errors.Is(err, repository.ErrConflict):
		s.Metrics.ObserveCheck("shift", "Conflict")
		return err
	}
	return fmt.Errorf("failed to %s shift: %w", op, err)
}

func (s *Service) getClinic(ctx context.Context, id uuid.UUID) (*model.Clinic, error) {
	clinic, err := s.Clinics.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("clinic", err)
		}
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

func (s *Service) getDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.Doctors.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doctor, nil
}

// normalize zero-pads well-formed times and leaves the rest for the guard.
func normalize(value string) string {
	m, err := scheduling.ParseTime(value)
	if err != nil {
		return value
	}
	return scheduling.FormatTime(m)
}
