package scheduling

import (
	"sort"
)

// DefaultSlotStep is the quantum, in minutes, of selectable times.
const DefaultSlotStep = 30

// Window is one operating window of a clinic on a weekday.
type Window struct {
	Day   Weekday
	Start string
	End   string
}

// Interval parses the window. ok is false for malformed windows or windows
// whose start is not before their end.
func (w Window) Interval() (Interval, bool) {
	start, err := ParseTime(w.Start)
	if err != nil {
		return Interval{}, false
	}
	end, err := ParseTime(w.End)
	if err != nil {
		return Interval{}, false
	}
	if start >= end {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// WindowsFor filters windows down to those open on day.
func WindowsFor(windows []Window, day Weekday) []Window {
	var out []Window
	for _, w := range windows {
		if w.Day == day {
			out = append(out, w)
		}
	}
	return out
}

// BuildTimeOptions enumerates start, start+step, ... up to and including end
// for every window and returns the deduplicated union in time order.
func BuildTimeOptions(windows []Window, step int) []string {
	if step <= 0 {
		step = DefaultSlotStep
	}
	set := make(map[int]struct{})
	for _, w := range windows {
		iv, ok := w.Interval()
		if !ok {
			continue
		}
		for t := iv.Start; t <= iv.End; t += step {
			set[t] = struct{}{}
		}
	}
	return formatSorted(set)
}

// BuildEndTimeOptions enumerates the end times available after chosenStart,
// staying inside the window(s) that contain it.
func BuildEndTimeOptions(chosenStart string, windows []Window, step int) []string {
	if step <= 0 {
		step = DefaultSlotStep
	}
	start, err := ParseTime(chosenStart)
	if err != nil {
		return nil
	}

	set := make(map[int]struct{})
	for _, w := range windows {
		iv, ok := w.Interval()
		if !ok || start < iv.Start || start >= iv.End {
			continue
		}
		for t := start + step; t <= iv.End; t += step {
			set[t] = struct{}{}
		}
	}
	return formatSorted(set)
}

func formatSorted(set map[int]struct{}) []string {
	minutes := make([]int, 0, len(set))
	for m := range set {
		minutes = append(minutes, m)
	}
	sort.Ints(minutes)

	out := make([]string, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, FormatTime(m))
	}
	return out
}
