package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/clinic-scheduler/pkg/errors"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

// WindowSource serves a clinic's operating windows. ListWindows must read the
// store; CachedWindows may lag.
type WindowSource interface {
	ListWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
	CachedWindows(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
}

type AppointmentServicer interface {
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	Options(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday, date *scheduling.Date) (*model.AppointmentOptions, error)
}

type Settings struct {
	Step     int
	LeadTime time.Duration
	Horizon  int
}

type Service struct {
	repo    repository.AppointmentRepository
	clinics repository.ClinicRepository
	doctors repository.DoctorRepository
	outbox  repository.OutboxRepository
	windows WindowSource
	metrics *metrics.Metrics
	logger  *logger.Logger

	settings Settings
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	repo repository.AppointmentRepository,
	clinics repository.ClinicRepository,
	doctors repository.DoctorRepository,
	outbox repository.OutboxRepository,
	windows WindowSource,
	m *metrics.Metrics,
	log *logger.Logger,
	settings Settings,
	opts ...Option,
) *Service {
	s := &Service{
		repo:     repo,
		clinics:  clinics,
		doctors:  doctors,
		outbox:   outbox,
		windows:  windows,
		metrics:  m,
		logger:   log.WithFields(map[string]interface{}{"service": "appointment"}),
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) resolver(windows []*model.OperatingWindow) *scheduling.AppointmentResolver {
	return scheduling.NewAppointmentResolver(model.Windows(windows), s.now(), s.settings.LeadTime, s.settings.Step, s.settings.Horizon)
}

// Options is what the booking form offers for day. With date set it reports
// that date instead of searching for the next valid one.
func (s *Service) Options(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday, date *scheduling.Date) (*model.AppointmentOptions, error) {
	if err := s.ensureClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	windows, err := s.windows.CachedWindows(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	r := s.resolver(windows)
	s.metrics.ObserveAvailability("appointment_options")

	out := &model.AppointmentOptions{MinDate: r.MinDate(), Times: []string{}}
	if date != nil {
		if !date.Valid() {
			return nil, scheduling.ErrInvalidDateKey
		}
		out.Date = *date
		out.Weekday = scheduling.WeekdayOf(*date)
	} else {
		if !day.Valid() {
			return nil, fmt.Errorf("%w: %q", scheduling.ErrInvalidWeekday, day)
		}
		next, err := r.NextValidDate(day)
		if err != nil {
			return nil, err
		}
		out.Date = next
		out.Weekday = day
	}

	out.Allowed = r.IsDateAllowed(out.Date, out.Weekday)
	if out.Allowed {
		out.Times = r.CandidateTimeOptions(out.Date)
	}
	return out, nil
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid clinic ID", err)
	}
	setDay, err := scheduling.ParseDateKey(req.SetDay)
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		ClinicID:     clinicID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		SetDay:       setDay,
		SetTime:      req.SetTime,
		Status:       model.AppointmentStatusScheduled,
		Notes:        req.Notes,
	}
	if req.DoctorID != "" {
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid doctor ID", err)
		}
		if _, err := s.doctors.Get(ctx, doctorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound("doctor", err)
			}
			return nil, fmt.Errorf("failed to get doctor: %w", err)
		}
		apt.DoctorID = &doctorID
	}

	if err := s.ensureClinic(ctx, clinicID); err != nil {
		return nil, err
	}
	if err := s.validateSlot(ctx, apt); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info("Appointment booked",
		"appointment_id", apt.ID.String(),
		"clinic_id", clinicID.String(),
		"set_day", setDay.Key(),
		"set_time", apt.SetTime)

	s.recordEvent(ctx, model.EventAppointmentBooked, apt)
	return apt, nil
}

// UpdateAppointment re-validates the slot whenever the day or time moves.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Unprocessable("appointment is cancelled", "AppointmentCancelled", nil)
	}

	moved := false
	if req.SetDay != nil {
		setDay, err := scheduling.ParseDateKey(*req.SetDay)
		if err != nil {
			return nil, err
		}
		moved = moved || setDay != apt.SetDay
		apt.SetDay = setDay
	}
	if req.SetTime != nil {
		moved = moved || *req.SetTime != apt.SetTime
		apt.SetTime = *req.SetTime
	}
	if req.Status != nil {
		if !req.Status.Valid() || *req.Status == model.AppointmentStatusCancelled {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		apt.Status = *req.Status
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if moved {
		if err := s.validateSlot(ctx, apt); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.recordEvent(ctx, model.EventAppointmentUpdated, apt)
	return apt, nil
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	apt, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return apt, nil
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.Unprocessable("completed appointments cannot be cancelled", "AppointmentCompleted", nil)
	}

	apt.Status = model.AppointmentStatusCancelled
	if reason != "" {
		apt.CancelReason = &reason
	}
	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.recordEvent(ctx, model.EventAppointmentCancelled, apt)
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	apts, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return apts, nil
}

// validateSlot is the server-side authority; it always reads fresh windows.
func (s *Service) validateSlot(ctx context.Context, apt *model.Appointment) error {
	windows, err := s.windows.ListWindows(ctx, apt.ClinicID)
	if err != nil {
		return err
	}
	err = s.resolver(windows).ValidateAppointment(apt.SetDay, apt.SetTime)
	s.metrics.ObserveCheck("appointment", string(scheduling.CodeOf(err)))
	if err != nil {
		return err
	}

	m, _ := scheduling.ParseTime(apt.SetTime)
	apt.SetTime = scheduling.FormatTime(m)
	return nil
}

func (s *Service) ensureClinic(ctx context.Context, id uuid.UUID) error {
	if _, err := s.clinics.Get(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("clinic", err)
		}
		return fmt.Errorf("failed to get clinic: %w", err)
	}
	return nil
}

func (s *Service) recordEvent(ctx context.Context, eventType string, apt *model.Appointment) {
	event, err := model.NewOutboxEvent(eventType, apt.ID, apt)
	if err == nil {
		err = s.outbox.Create(ctx, event)
	}
	if err != nil {
		s.logger.Error(err, "Failed to record appointment event",
			"appointment_id", apt.ID.String(),
			"event_type", eventType)
	}
}
