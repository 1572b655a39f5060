package scheduling

import (
	"fmt"
	"time"
)

// DefaultLeadTime is the minimum distance between now and a booked appointment.
const DefaultLeadTime = 24 * time.Hour

// AppointmentResolver answers which dates and times a clinic can still accept
// appointments on. It is a snapshot: Windows holds every operating window of
// the clinic and Now is read once by the caller.
type AppointmentResolver struct {
	Windows  []Window
	Now      time.Time
	LeadTime time.Duration
	Step     int
	Horizon  int
}

// NewAppointmentResolver fills unset parameters with their defaults.
func NewAppointmentResolver(windows []Window, now time.Time, lead time.Duration, step, horizon int) *AppointmentResolver {
	if lead < 0 {
		lead = DefaultLeadTime
	}
	if step <= 0 {
		step = DefaultSlotStep
	}
	if horizon <= 0 {
		horizon = DefaultSearchHorizon
	}
	return &AppointmentResolver{
		Windows:  windows,
		Now:      now,
		LeadTime: lead,
		Step:     step,
		Horizon:  horizon,
	}
}

// LeadBoundary is the earliest instant a booking may start at.
func (r *AppointmentResolver) LeadBoundary() time.Time {
	return r.Now.Add(r.LeadTime)
}

// MinDate is the calendar date of the lead boundary.
func (r *AppointmentResolver) MinDate() Date {
	return DateOf(r.LeadBoundary())
}

func (r *AppointmentResolver) leadMinutes() int {
	return MinutesOfDay(r.LeadBoundary())
}

// IsDateAllowed reports whether date falls on day, the clinic is open that
// weekday and date is far enough ahead. On the lead-boundary date some window
// of the day must still end at or after the boundary's time of day.
func (r *AppointmentResolver) IsDateAllowed(date Date, day Weekday) bool {
	if !date.Valid() || int(date.Weekday()) != day.Index() {
		return false
	}
	windows := WindowsFor(r.Windows, day)
	if len(windows) == 0 {
		return false
	}

	minDate := r.MinDate()
	switch date.Compare(minDate) {
	case -1:
		return false
	case 0:
		cutoff := r.leadMinutes()
		for _, w := range windows {
			iv, ok := w.Interval()
			if ok && iv.End >= cutoff {
				return true
			}
		}
		return false
	}
	return true
}

// CandidateTimeOptions lists the selectable start times on date. On the
// lead-boundary date times before the boundary are dropped.
func (r *AppointmentResolver) CandidateTimeOptions(date Date) []string {
	minDate := r.MinDate()
	if !date.Valid() || date.Before(minDate) {
		return nil
	}

	options := BuildTimeOptions(WindowsFor(r.Windows, WeekdayOf(date)), r.Step)
	if !date.Equal(minDate) {
		return options
	}

	cutoff := r.leadMinutes()
	filtered := options[:0]
	for _, opt := range options {
		m, err := ParseTime(opt)
		if err == nil && m >= cutoff {
			filtered = append(filtered, opt)
		}
	}
	return filtered
}

// NextValidDate finds the first allowed date on day, starting today.
func (r *AppointmentResolver) NextValidDate(day Weekday) (Date, error) {
	if !day.Valid() {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
	}
	if len(WindowsFor(r.Windows, day)) == 0 {
		return Date{}, fmt.Errorf("%w: clinic closed on %s", ErrNoAvailableDate, day.Label())
	}
	date, ok := NextDateForWeekdayWithin(DateOf(r.Now), day, r.Horizon, func(d Date) bool {
		return r.IsDateAllowed(d, day)
	})
	if !ok {
		return Date{}, ErrNoAvailableDate
	}
	return date, nil
}

// ValidateAppointment is the authoritative check run before an appointment is
// stored.
func (r *AppointmentResolver) ValidateAppointment(setDay Date, setTime string) error {
	if !setDay.Valid() {
		return ErrInvalidDateKey
	}
	minutes, err := ParseTime(setTime)
	if err != nil {
		return err
	}

	day := WeekdayOf(setDay)
	if len(WindowsFor(r.Windows, day)) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOperatingWindow, day.Label())
	}

	minDate := r.MinDate()
	if setDay.Before(minDate) || (setDay.Equal(minDate) && minutes < r.leadMinutes()) {
		return fmt.Errorf("%w: earliest is %s %s", ErrLeadTimeViolation, minDate.Key(), FormatTime(r.leadMinutes()))
	}

	for _, opt := range r.CandidateTimeOptions(setDay) {
		if opt == FormatTime(minutes) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s on %s", ErrSlotUnavailable, FormatTime(minutes), setDay.Key())
}
