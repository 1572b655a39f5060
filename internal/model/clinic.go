package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-scheduler/internal/scheduling"
)

type Clinic struct {
	Base
	Name     string `db:"name" json:"name"`
	Location string `db:"location" json:"location"`
	Email    string `db:"email" json:"email"`
	Status   string `db:"status" json:"status"`
}

// OperatingWindow is one weekly opening period of a clinic. Times are "HH:MM".
type OperatingWindow struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	ClinicID  uuid.UUID          `db:"clinic_id" json:"clinic_id"`
	OpenDay   scheduling.Weekday `db:"open_day" json:"open_day"`
	StartTime string             `db:"start_time" json:"start_time"`
	EndTime   string             `db:"end_time" json:"end_time"`
	CreatedAt time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
}

func (w *OperatingWindow) ToWindow() scheduling.Window {
	return scheduling.Window{Day: w.OpenDay, Start: w.StartTime, End: w.EndTime}
}

// Windows converts stored windows to engine windows.
func Windows(windows []*OperatingWindow) []scheduling.Window {
	out := make([]scheduling.Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, w.ToWindow())
	}
	return out
}

type CreateWindowRequest struct {
	OpenDay   string `json:"open_day" binding:"required,weekday"`
	StartTime string `json:"start_time" binding:"required,hhmm"`
	EndTime   string `json:"end_time" binding:"required,hhmm"`
}
