package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the symbolic day a clinic is open on.
type Weekday string

const (
	Sunday    Weekday = "SUNDAY"
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
)

// DefaultSearchHorizon bounds the next-date search to one year of candidates.
const DefaultSearchHorizon = 366

// DayInfo is one row of the weekday table. Index follows time.Weekday, so
// Sunday is 0.
type DayInfo struct {
	Value Weekday `json:"value"`
	Index int     `json:"index"`
	Label string  `json:"label"`
}

var dayTable = [7]DayInfo{
	{Value: Sunday, Index: 0, Label: "Sunday"},
	{Value: Monday, Index: 1, Label: "Monday"},
	{Value: Tuesday, Index: 2, Label: "Tuesday"},
	{Value: Wednesday, Index: 3, Label: "Wednesday"},
	{Value: Thursday, Index: 4, Label: "Thursday"},
	{Value: Friday, Index: 5, Label: "Friday"},
	{Value: Saturday, Index: 6, Label: "Saturday"},
}

// Weekdays returns a copy of the weekday table ordered by index.
func Weekdays() []DayInfo {
	out := make([]DayInfo, len(dayTable))
	copy(out, dayTable[:])
	return out
}

// ParseWeekday accepts a weekday value in any letter case.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToUpper(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
	}
	return w, nil
}

// WeekdayFromIndex maps 0..6 (Sunday first) to a weekday value.
func WeekdayFromIndex(i int) (Weekday, bool) {
	if i < 0 || i >= len(dayTable) {
		return "", false
	}
	return dayTable[i].Value, true
}

// WeekdayOf returns the symbolic weekday of a calendar date.
func WeekdayOf(d Date) Weekday {
	return dayTable[int(d.Weekday())].Value
}

// Index returns the numeric weekday, or -1 for unknown values.
func (w Weekday) Index() int {
	for _, info := range dayTable {
		if info.Value == w {
			return info.Index
		}
	}
	return -1
}

func (w Weekday) Valid() bool {
	return w.Index() >= 0
}

func (w Weekday) Label() string {
	if i := w.Index(); i >= 0 {
		return dayTable[i].Label
	}
	return ""
}

// TimeWeekday converts to the standard library weekday.
func (w Weekday) TimeWeekday() time.Weekday {
	return time.Weekday(w.Index())
}

// NextDateForWeekday walks forward from lowerBound and returns the first date
// falling on day for which accept holds, searching DefaultSearchHorizon days.
func NextDateForWeekday(lowerBound Date, day Weekday, accept func(Date) bool) (Date, bool) {
	return NextDateForWeekdayWithin(lowerBound, day, DefaultSearchHorizon, accept)
}

// NextDateForWeekdayWithin is NextDateForWeekday with an explicit horizon in days.
// A false result means no availability, not a failure.
func NextDateForWeekdayWithin(lowerBound Date, day Weekday, horizon int, accept func(Date) bool) (Date, bool) {
	target := day.Index()
	if target < 0 || !lowerBound.Valid() {
		return Date{}, false
	}
	if horizon <= 0 {
		horizon = DefaultSearchHorizon
	}

	candidate := lowerBound
	for i := 0; i < horizon; i++ {
		if int(candidate.Weekday()) == target && (accept == nil || accept(candidate)) {
			return candidate, true
		}
		candidate = candidate.AddDays(1)
	}
	return Date{}, false
}
