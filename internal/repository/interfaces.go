package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when the database rejects a write that raced
	// another one (exclusion constraint or serialization failure).
	ErrConflict = errors.New("conflicting write")
)

// ShiftCheck validates a proposed shift against the clinic's windows and the
// shifts already booked on the same date, as read inside the write transaction.
type ShiftCheck func(windows []*model.OperatingWindow, sameDay []*model.ScheduledShift) error

// All repository interfaces in one file
type (
	ClinicRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Clinic, error)
		List(ctx context.Context, p model.Pagination) ([]*model.Clinic, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	}

	OperatingWindowRepository interface {
		Create(ctx context.Context, window *model.OperatingWindow) error
		Get(ctx context.Context, id uuid.UUID) (*model.OperatingWindow, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error)
		ListByClinicDay(ctx context.Context, clinicID uuid.UUID, day scheduling.Weekday) ([]*model.OperatingWindow, error)
	}

	ShiftRepository interface {
		// Schedule runs check and inserts shift in one serializable transaction.
		Schedule(ctx context.Context, shift *model.ScheduledShift, check ShiftCheck) error
		// Reschedule is Schedule for an existing shift; sameDay excludes shift itself.
		Reschedule(ctx context.Context, shift *model.ScheduledShift, check ShiftCheck) error
		Get(ctx context.Context, id uuid.UUID) (*model.ScheduledShift, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ListByClinicDate(ctx context.Context, clinicID uuid.UUID, date scheduling.Date) ([]*model.ScheduledShift, error)
		ListByClinicRange(ctx context.Context, clinicID uuid.UUID, from, to scheduling.Date) ([]*model.ScheduledShift, error)
		List(ctx context.Context, filters *model.ShiftFilters) ([]*model.ScheduledShift, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Update(ctx context.Context, notification *model.Notification) error
		// ClaimDueRetries moves up to limit retrying notifications whose next
		// attempt is due at now back to pending and returns them.
		ClaimDueRetries(ctx context.Context, now time.Time, limit int) ([]*model.Notification, error)
	}
)
