package scheduling

import (
	"fmt"
)

// CheckShift is the server-side authority for a proposed shift. windows must
// be the clinic's windows (any weekday) and existing the shifts already booked
// for the clinic on proposal.Date, excluding the proposal itself when it is an
// update. Malformed existing rows are skipped.
func CheckShift(proposal Span, windows []Window, existing []Span) error {
	start, err := ParseTime(proposal.Start)
	if err != nil {
		return err
	}
	end, err := ParseTime(proposal.End)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("%w: %s-%s", ErrInvalidShiftRange, proposal.Start, proposal.End)
	}
	if !proposal.Date.Valid() {
		return ErrInvalidDateKey
	}
	want := Interval{Start: start, End: end}

	day := WeekdayOf(proposal.Date)
	dayWindows := WindowsFor(windows, day)
	if len(dayWindows) == 0 {
		return fmt.Errorf("%w: %s", ErrNoOperatingWindow, day.Label())
	}

	contained := false
	for _, w := range dayWindows {
		iv, ok := w.Interval()
		if ok && Contains(iv, want) {
			contained = true
			break
		}
	}
	if !contained {
		return fmt.Errorf("%w: %s-%s on %s", ErrShiftOutsideWindow, proposal.Start, proposal.End, day.Label())
	}

	for _, s := range existing {
		if !s.Date.Equal(proposal.Date) {
			continue
		}
		iv, ok := s.Interval()
		if !ok {
			continue
		}
		if Overlaps(want, iv) {
			return fmt.Errorf("%w: %s-%s", ErrShiftOverlap, s.Start, s.End)
		}
	}

	return nil
}
