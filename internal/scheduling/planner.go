package scheduling

import (
	"fmt"
)

// Span is a booked or proposed shift on a calendar date.
type Span struct {
	Date  Date
	Start string
	End   string
}

// Interval parses the span's times. ok is false when either time is malformed
// or the span is empty.
func (s Span) Interval() (Interval, bool) {
	start, err := ParseTime(s.Start)
	if err != nil {
		return Interval{}, false
	}
	end, err := ParseTime(s.End)
	if err != nil || start >= end {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// ShiftPlanner is the scheduling-form view of one clinic: which dates still
// have uncovered operating time and which start/end times remain on them.
type ShiftPlanner struct {
	Windows []Window
	Shifts  []Span
	Today   Date
	Step    int
	Horizon int

	byDate map[Date][]Interval
}

func NewShiftPlanner(windows []Window, shifts []Span, today Date, step, horizon int) *ShiftPlanner {
	if step <= 0 {
		step = DefaultSlotStep
	}
	if horizon <= 0 {
		horizon = DefaultSearchHorizon
	}
	p := &ShiftPlanner{
		Windows: windows,
		Shifts:  shifts,
		Today:   today,
		Step:    step,
		Horizon: horizon,
		byDate:  make(map[Date][]Interval),
	}
	for _, s := range shifts {
		if iv, ok := s.Interval(); ok {
			p.byDate[s.Date] = append(p.byDate[s.Date], iv)
		}
	}
	return p
}

func (p *ShiftPlanner) windowIntervals(date Date) []Interval {
	var out []Interval
	for _, w := range WindowsFor(p.Windows, WeekdayOf(date)) {
		if iv, ok := w.Interval(); ok {
			out = append(out, iv)
		}
	}
	return out
}

// IsFullyBooked reports whether booked shifts cover every operating window of
// date. A date with no windows has no capacity and counts as fully booked.
func (p *ShiftPlanner) IsFullyBooked(date Date) bool {
	busy := p.byDate[date]
	for _, w := range p.windowIntervals(date) {
		if !IsWindowCovered(w, busy) {
			return false
		}
	}
	return true
}

// IsDateAllowed reports whether a new shift could still be placed on date.
func (p *ShiftPlanner) IsDateAllowed(date Date, day Weekday) bool {
	if !date.Valid() || int(date.Weekday()) != day.Index() {
		return false
	}
	if date.Before(p.Today) {
		return false
	}
	if len(p.windowIntervals(date)) == 0 {
		return false
	}
	return !p.IsFullyBooked(date)
}

// NextAvailableDate returns the first date on day, from Today, with uncovered
// operating time.
func (p *ShiftPlanner) NextAvailableDate(day Weekday) (Date, error) {
	if !day.Valid() {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
	}
	date, ok := NextDateForWeekdayWithin(p.Today, day, p.Horizon, func(d Date) bool {
		return p.IsDateAllowed(d, day)
	})
	if !ok {
		return Date{}, ErrNoAvailableDate
	}
	return date, nil
}

// FullyBookedDates lists dates in [from, from+days) that cannot take a new
// shift even though the clinic is open on them.
func (p *ShiftPlanner) FullyBookedDates(from Date, days int) []Date {
	var out []Date
	for i := 0; i < days; i++ {
		d := from.AddDays(i)
		if len(p.windowIntervals(d)) > 0 && p.IsFullyBooked(d) {
			out = append(out, d)
		}
	}
	return out
}

// StartOptions lists start times on date that are not inside a booked shift
// and still leave at least one end time.
func (p *ShiftPlanner) StartOptions(date Date) []string {
	windows := WindowsFor(p.Windows, WeekdayOf(date))
	var out []string
	for _, opt := range BuildTimeOptions(windows, p.Step) {
		if len(p.EndOptions(date, opt)) > 0 {
			out = append(out, opt)
		}
	}
	return out
}

// EndOptions lists end times after start that keep [start, end) inside one
// window and clear of booked shifts.
func (p *ShiftPlanner) EndOptions(date Date, start string) []string {
	startMin, err := ParseTime(start)
	if err != nil {
		return nil
	}
	busy := p.byDate[date]

	var out []string
	for _, opt := range BuildEndTimeOptions(start, WindowsFor(p.Windows, WeekdayOf(date)), p.Step) {
		end, err := ParseTime(opt)
		if err != nil {
			continue
		}
		if overlapsAny(Interval{Start: startMin, End: end}, busy) {
			// later ends only grow the span
			break
		}
		out = append(out, opt)
	}
	return out
}

func overlapsAny(iv Interval, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(iv, b) {
			return true
		}
	}
	return false
}
