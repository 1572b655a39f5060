// Package repotest holds in-memory repositories for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

// Store backs every repository below with one mutex, so Schedule behaves like
// a serializable transaction.
type Store struct {
	mu            sync.Mutex
	Clinics       map[uuid.UUID]*model.Clinic
	Doctors       map[uuid.UUID]*model.Doctor
	Windows       map[uuid.UUID]*model.OperatingWindow
	Shifts        map[uuid.UUID]*model.ScheduledShift
	Appointments  map[uuid.UUID]*model.Appointment
	Events        []*model.OutboxEvent
	Notifications map[uuid.UUID]*model.Notification

	// Fail, when set, is returned by the named operation, e.g. "outbox.create".
	Fail map[string]error
}

func NewStore() *Store {
	return &Store{
		Clinics:       map[uuid.UUID]*model.Clinic{},
		Doctors:       map[uuid.UUID]*model.Doctor{},
		Windows:       map[uuid.UUID]*model.OperatingWindow{},
		Shifts:        map[uuid.UUID]*model.ScheduledShift{},
		Appointments:  map[uuid.UUID]*model.Appointment{},
		Notifications: map[uuid.UUID]*model.Notification{},
		Fail:          map[string]error{},
	}
}

func (s *Store) failure(op string) error {
	return s.Fail[op]
}

// AddClinic seeds a clinic and returns it.
func (s *Store) AddClinic(name string) *model.Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Clinic{Name: name, Email: name + "@clinic.test", Status: "active"}
	c.ID = uuid.New()
	s.Clinics[c.ID] = c
	return c
}

func (s *Store) AddDoctor(name string) *model.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := &model.Doctor{Name: name, Email: name + "@doctor.test", Status: "active"}
	d.ID = uuid.New()
	s.Doctors[d.ID] = d
	return d
}

func (s *Store) AddWindow(clinicID uuid.UUID, day scheduling.Weekday, start, end string) *model.OperatingWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &model.OperatingWindow{ID: uuid.New(), ClinicID: clinicID, OpenDay: day, StartTime: start, EndTime: end}
	s.Windows[w.ID] = w
	return w
}

func (s *Store) AddShift(clinicID, doctorID uuid.UUID, date scheduling.Date, start, end string) *model.ScheduledShift {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh := &model.ScheduledShift{ID: uuid.New(), ClinicID: clinicID, DoctorID: doctorID, Date: date, StartShift: start, EndShift: end}
	s.Shifts[sh.ID] = sh
	return sh
}

// OutboxEvents returns a snapshot of the written events.
func (s *Store) OutboxEvents() []*model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.OutboxEvent(nil), s.Events...)
}

func (s *Store) ClinicRepository() repository.ClinicRepository { return clinicRepo{s} }

func (s *Store) DoctorRepository() repository.DoctorRepository { return doctorRepo{s} }

func (s *Store) WindowRepository() repository.OperatingWindowRepository { return windowRepo{s} }

func (s *Store) ShiftRepository() repository.ShiftRepository { return shiftRepo{s} }

func (s *Store) AppointmentRepository() repository.AppointmentRepository { return appointmentRepo{s} }

func (s *Store) OutboxRepository() repository.OutboxRepository { return outboxRepo{s} }

func (s *Store) NotificationRepository() repository.NotificationRepository {
	return notificationRepo{s}
}

type clinicRepo struct{ s *Store }

func (r clinicRepo) Get(_ context.Context, id uuid.UUID) (*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.Clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r clinicRepo) List(_ context.Context, p model.Pagination) ([]*model.Clinic, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Clinic, 0, len(r.s.Clinics))
	for _, c := range r.s.Clinics {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, p), nil
}

type doctorRepo struct{ s *Store }

func (r doctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.Doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

type windowRepo struct{ s *Store }

func (r windowRepo) Create(_ context.Context, w *model.OperatingWindow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("window.create"); err != nil {
		return err
	}
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	cp := *w
	r.s.Windows[w.ID] = &cp
	return nil
}

func (r windowRepo) Get(_ context.Context, id uuid.UUID) (*model.OperatingWindow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.Windows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r windowRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Windows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Windows, id)
	return nil
}

func (r windowRepo) ListByClinic(_ context.Context, clinicID uuid.UUID) ([]*model.OperatingWindow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.windowsLocked(clinicID, ""), nil
}

func (r windowRepo) ListByClinicDay(_ context.Context, clinicID uuid.UUID, day scheduling.Weekday) ([]*model.OperatingWindow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.windowsLocked(clinicID, day), nil
}

func (s *Store) windowsLocked(clinicID uuid.UUID, day scheduling.Weekday) []*model.OperatingWindow {
	out := []*model.OperatingWindow{}
	for _, w := range s.Windows {
		if w.ClinicID != clinicID || (day != "" && w.OpenDay != day) {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenDay != out[j].OpenDay {
			return out[i].OpenDay.Index() < out[j].OpenDay.Index()
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

type shiftRepo struct{ s *Store }

func (r shiftRepo) Schedule(ctx context.Context, shift *model.ScheduledShift, check repository.ShiftCheck) error {
	return r.write(shift, check, true)
}

func (r shiftRepo) Reschedule(ctx context.Context, shift *model.ScheduledShift, check repository.ShiftCheck) error {
	return r.write(shift, check, false)
}

func (r shiftRepo) write(shift *model.ScheduledShift, check repository.ShiftCheck, insert bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !insert {
		if _, ok := r.s.Shifts[shift.ID]; !ok {
			return repository.ErrNotFound
		}
	}

	sameDay := []*model.ScheduledShift{}
	for _, sh := range r.s.Shifts {
		if sh.ClinicID == shift.ClinicID && sh.Date == shift.Date && sh.ID != shift.ID {
			cp := *sh
			sameDay = append(sameDay, &cp)
		}
	}
	if err := check(r.s.windowsLocked(shift.ClinicID, ""), sameDay); err != nil {
		return err
	}
	if err := r.s.failure("shift.write"); err != nil {
		return err
	}

	now := time.Now()
	if insert {
		shift.ID = uuid.New()
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now
	cp := *shift
	r.s.Shifts[shift.ID] = &cp
	return nil
}

func (r shiftRepo) Get(_ context.Context, id uuid.UUID) (*model.ScheduledShift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.Shifts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *sh
	return &cp, nil
}

func (r shiftRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Shifts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Shifts, id)
	return nil
}

func (r shiftRepo) ListByClinicDate(ctx context.Context, clinicID uuid.UUID, date scheduling.Date) ([]*model.ScheduledShift, error) {
	return r.ListByClinicRange(ctx, clinicID, date, date.AddDays(1))
}

func (r shiftRepo) ListByClinicRange(_ context.Context, clinicID uuid.UUID, from, to scheduling.Date) ([]*model.ScheduledShift, error) {
	return r.filter(func(sh *model.ScheduledShift) bool {
		return sh.ClinicID == clinicID && !sh.Date.Before(from) && sh.Date.Before(to)
	}, nil), nil
}

func (r shiftRepo) List(_ context.Context, f *model.ShiftFilters) ([]*model.ScheduledShift, error) {
	return r.filter(func(sh *model.ScheduledShift) bool {
		switch {
		case f.ClinicID != uuid.Nil && sh.ClinicID != f.ClinicID:
			return false
		case f.DoctorID != uuid.Nil && sh.DoctorID != f.DoctorID:
			return false
		case f.From.Valid() && sh.Date.Before(f.From):
			return false
		case f.To.Valid() && !sh.Date.Before(f.To):
			return false
		}
		return true
	}, &f.Pagination), nil
}

func (r shiftRepo) filter(keep func(*model.ScheduledShift) bool, p *model.Pagination) []*model.ScheduledShift {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.ScheduledShift{}
	for _, sh := range r.s.Shifts {
		if keep(sh) {
			cp := *sh
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartShift < out[j].StartShift
	})
	if p == nil {
		return out
	}
	return page(out, *p)
}

type appointmentRepo struct{ s *Store }

func (r appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	r.s.Appointments[a.ID] = &cp
	return nil
}

func (r appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.Appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	r.s.Appointments[a.ID] = &cp
	return nil
}

func (r appointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.Appointments, id)
	return nil
}

func (r appointmentRepo) List(_ context.Context, f *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Appointment{}
	for _, a := range r.s.Appointments {
		switch {
		case f.ClinicID != uuid.Nil && a.ClinicID != f.ClinicID:
			continue
		case f.DoctorID != uuid.Nil && (a.DoctorID == nil || *a.DoctorID != f.DoctorID):
			continue
		case f.Status != "" && a.Status != f.Status:
			continue
		case f.From.Valid() && a.SetDay.Before(f.From):
			continue
		case f.To.Valid() && !a.SetDay.Before(f.To):
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SetDay != out[j].SetDay {
			return out[i].SetDay.Before(out[j].SetDay)
		}
		return out[i].SetTime < out[j].SetTime
	})
	return page(out, f.Pagination), nil
}

type outboxRepo struct{ s *Store }

func (r outboxRepo) Create(_ context.Context, e *model.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.create"); err != nil {
		return err
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.Events = append(r.s.Events, e)
	return nil
}

func (r outboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.OutboxEvent{}
	for _, e := range r.s.Events {
		if len(out) == limit {
			break
		}
		if e.Status == model.OutboxStatusPending || e.Status == model.OutboxStatusRetry {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r outboxRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string, retryAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.Events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			e.RetryAt = retryAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r outboxRepo) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.Events[:0]
	var n int64
	for _, e := range r.s.Events {
		if e.Status == model.OutboxStatusProcessed && e.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.Events = kept
	return n, nil
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("notification.create"); err != nil {
		return err
	}
	cp := *n
	r.s.Notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) Update(_ context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.Notifications[n.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *n
	r.s.Notifications[n.ID] = &cp
	return nil
}

func (r notificationRepo) ClaimDueRetries(_ context.Context, now time.Time, limit int) ([]*model.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	due := []*model.Notification{}
	for _, n := range r.s.Notifications {
		if n.Status == model.NotificationStatusRetrying && n.NextRetryAt != nil && !n.NextRetryAt.After(now) {
			due = append(due, n)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRetryAt.Before(*due[j].NextRetryAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]*model.Notification, 0, len(due))
	for _, n := range due {
		n.Status = model.NotificationStatusPending
		n.NextRetryAt = nil
		n.UpdatedAt = now
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

// Notification returns a copy of the stored notification.
func (s *Store) Notification(id uuid.UUID) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.Notifications[id]
	if !ok {
		return model.Notification{}, false
	}
	return *n, true
}

func page[T any](items []T, p model.Pagination) []T {
	off := p.Offset()
	if off >= len(items) {
		return items[:0]
	}
	end := min(off+p.Limit(), len(items))
	return items[off:end]
}
