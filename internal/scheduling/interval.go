package scheduling

import (
	"sort"
)

// Interval is a [Start, End) span in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// Overlaps reports whether a and b share any minute.
func Overlaps(a, b Interval) bool {
	return RangesOverlap(a.Start, a.End, b.Start, b.End)
}

// Contains reports whether inner lies entirely within outer.
func Contains(outer, inner Interval) bool {
	return inner.Start >= outer.Start && inner.End <= outer.End
}

// IsWindowCovered reports whether the busy intervals leave no gap inside window.
func IsWindowCovered(window Interval, busy []Interval) bool {
	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !Overlaps(window, b) {
			continue
		}
		clipped = append(clipped, Interval{
			Start: max(b.Start, window.Start),
			End:   min(b.End, window.End),
		})
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start < clipped[j].Start
	})

	cursor := window.Start
	for _, iv := range clipped {
		if iv.Start > cursor {
			return false
		}
		cursor = max(cursor, iv.End)
	}

	return cursor >= window.End
}
