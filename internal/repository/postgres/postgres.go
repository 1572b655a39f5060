package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-scheduler/internal/repository"
)

// Repositories bundles every postgres-backed repository over one pool.
type Repositories struct {
	Clinics       repository.ClinicRepository
	Doctors       repository.DoctorRepository
	Windows       repository.OperatingWindowRepository
	Shifts        repository.ShiftRepository
	Appointments  repository.AppointmentRepository
	Outbox        repository.OutboxRepository
	Notifications repository.NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	base := NewBaseRepository(db)
	return &Repositories{
		Clinics:       NewClinicRepository(base),
		Doctors:       NewDoctorRepository(base),
		Windows:       NewOperatingWindowRepository(base),
		Shifts:        NewShiftRepository(base),
		Appointments:  NewAppointmentRepository(base),
		Outbox:        NewOutboxRepository(base),
		Notifications: NewNotificationRepository(base),
	}
}
