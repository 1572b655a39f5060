package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

// ShiftEvent is the outbox payload for shift changes.
type ShiftEvent struct {
	ShiftID    uuid.UUID       `json:"shift_id"`
	ClinicID   uuid.UUID       `json:"clinic_id"`
	DoctorID   uuid.UUID       `json:"doctor_id"`
	Date       scheduling.Date `json:"date"`
	StartShift string          `json:"start_shift"`
	EndShift   string          `json:"end_shift"`
}

var subjects = map[string]string{
	model.EventShiftScheduled:   "New shift scheduled",
	model.EventShiftRescheduled: "Shift rescheduled",
	model.EventShiftCancelled:   "Shift cancelled",
}

// afterWrite runs once the shift is committed. Nothing here can fail the write.
func (s *Service) afterWrite(ctx context.Context, eventType string, shift *model.ScheduledShift, clinic *model.Clinic, doctor *model.Doctor) {
	s.recordEvent(ctx, eventType, shift)
	s.notifyDoctor(ctx, eventType, shift, clinic, doctor)
}

func (s *Service) recordEvent(ctx context.Context, eventType string, shift *model.ScheduledShift) {
	event, err := model.NewOutboxEvent(eventType, shift.ID, ShiftEvent{
		ShiftID:    shift.ID,
		ClinicID:   shift.ClinicID,
		DoctorID:   shift.DoctorID,
		Date:       shift.Date,
		StartShift: shift.StartShift,
		EndShift:   shift.EndShift,
	})
	if err == nil {
		err = s.Outbox.Create(ctx, event)
	}
	if err != nil {
		s.logger.Error(err, "Failed to record shift event",
			"shift_id", shift.ID.String(),
			"event_type", eventType)
	}
}

func (s *Service) notifyDoctor(ctx context.Context, eventType string, shift *model.ScheduledShift, clinic *model.Clinic, doctor *model.Doctor) {
	if s.Notifier == nil {
		return
	}

	n := &model.Notification{
		RecipientID: doctor.ID,
		ClinicID:    clinic.ID,
		Channel:     model.NotificationChannelEmail,
		Recipient:   doctor.Email,
		Subject:     subjects[eventType],
		Content: fmt.Sprintf("%s at %s on %s (%s), %s-%s.",
			subjects[eventType], clinic.Name, shift.Date.Key(),
			scheduling.WeekdayOf(shift.Date).Label(), shift.StartShift, shift.EndShift),
	}
	if doctor.Email == "" {
		n.Channel = model.NotificationChannelInApp
	}

	if err := s.Notifier.Send(ctx, n); err != nil {
		s.Metrics.ObserveNotificationLost()
		s.logger.Error(err, "Failed to notify doctor",
			"shift_id", shift.ID.String(),
			"doctor_id", doctor.ID.String())
	}
}
