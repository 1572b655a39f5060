package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

// ScheduledShift assigns a doctor to a clinic for [StartShift, EndShift) on Date.
type ScheduledShift struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ClinicID   uuid.UUID       `db:"clinic_id" json:"clinic_id"`
	DoctorID   uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	Date       scheduling.Date `db:"shift_date" json:"date"`
	StartShift string          `db:"start_shift" json:"start_shift"`
	EndShift   string          `db:"end_shift" json:"end_shift"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

func (s *ScheduledShift) Span() scheduling.Span {
	return scheduling.Span{Date: s.Date, Start: s.StartShift, End: s.EndShift}
}

// Spans converts shifts to engine spans, leaving out the shift with id skip.
func Spans(shifts []*ScheduledShift, skip uuid.UUID) []scheduling.Span {
	out := make([]scheduling.Span, 0, len(shifts))
	for _, s := range shifts {
		if skip != uuid.Nil && s.ID == skip {
			continue
		}
		out = append(out, s.Span())
	}
	return out
}

type CreateShiftRequest struct {
	ClinicID   string `json:"clinic_id" binding:"required,uuid"`
	DoctorID   string `json:"doctor_id" binding:"required,uuid"`
	Date       string `json:"date" binding:"required,datekey"`
	StartShift string `json:"start_shift" binding:"required,hhmm"`
	EndShift   string `json:"end_shift" binding:"required,hhmm"`
}

type UpdateShiftRequest struct {
	DoctorID   string `json:"doctor_id" binding:"omitempty,uuid"`
	Date       string `json:"date" binding:"required,datekey"`
	StartShift string `json:"start_shift" binding:"required,hhmm"`
	EndShift   string `json:"end_shift" binding:"required,hhmm"`
}

type ShiftFilters struct {
	ClinicID uuid.UUID
	DoctorID uuid.UUID
	From     scheduling.Date
	To       scheduling.Date
	Pagination
}

// DayAvailability is the shift form's view of one date.
type DayAvailability struct {
	Date         scheduling.Date    `json:"date"`
	Weekday      scheduling.Weekday `json:"weekday"`
	Allowed      bool               `json:"allowed"`
	FullyBooked  bool               `json:"fully_booked"`
	StartOptions []string           `json:"start_options"`
	EndOptions   []string           `json:"end_options,omitempty"`
}

// NextDate answers "which date should the form jump to" for a weekday.
type NextDate struct {
	Weekday     scheduling.Weekday `json:"weekday"`
	Date        scheduling.Date    `json:"date"`
	BookedDates []scheduling.Date  `json:"booked_dates"`
}
