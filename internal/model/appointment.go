package model

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	Base
	ClinicID     uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	DoctorID     *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	PatientName  string            `db:"patient_name" json:"patient_name"`
	PatientEmail string            `db:"patient_email" json:"patient_email,omitempty"`
	SetDay       scheduling.Date   `db:"set_day" json:"set_day"`
	SetTime      string            `db:"set_time" json:"set_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	ClinicID     string `json:"clinic_id" binding:"required,uuid"`
	DoctorID     string `json:"doctor_id" binding:"omitempty,uuid"`
	PatientName  string `json:"patient_name" binding:"required,max=200"`
	PatientEmail string `json:"patient_email" binding:"omitempty,email"`
	SetDay       string `json:"set_day" binding:"required,datekey"`
	SetTime      string `json:"set_time" binding:"required,hhmm"`
	Notes        string `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	SetDay  *string            `json:"set_day" binding:"omitempty,datekey"`
	SetTime *string            `json:"set_time" binding:"omitempty,hhmm"`
	Status  *AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled confirmed completed"`
	Notes   *string            `json:"notes" binding:"omitempty,max=1000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type AppointmentFilters struct {
	ClinicID uuid.UUID
	DoctorID uuid.UUID
	Status   AppointmentStatus
	From     scheduling.Date
	To       scheduling.Date
	Pagination
}

// AppointmentOptions is what the booking form offers for one weekday.
type AppointmentOptions struct {
	Weekday scheduling.Weekday `json:"weekday"`
	Date    scheduling.Date    `json:"date"`
	MinDate scheduling.Date    `json:"min_date"`
	Allowed bool               `json:"allowed"`
	Times   []string           `json:"times"`
}
