package scheduling

import (
	"fmt"
	"strings"
)

const minutesPerDay = 24 * 60

// ParseTime converts an "HH:MM" string to minutes since midnight.
func ParseTime(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	hours, ok := parseClockField(parts[0])
	if !ok || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}
	minutes, ok := parseClockField(parts[1])
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, value)
	}

	return hours*60 + minutes, nil
}

// parseClockField accepts one or two ASCII digits.
func parseClockField(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// FormatTime renders minutes since midnight as "HH:MM". Negative input is
// clamped to midnight.
func FormatTime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// IsValidTime reports whether value parses as "HH:MM".
func IsValidTime(value string) bool {
	_, err := ParseTime(value)
	return err == nil
}

// RangesOverlap reports whether [startA, endA) and [startB, endB) share any
// minute. Touching endpoints do not overlap.
func RangesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}
