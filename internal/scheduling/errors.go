package scheduling

import (
	"errors"
)

// Code identifies a scheduling validation outcome
type Code string

const (
	CodeInvalidTimeFormat  Code = "InvalidTimeFormat"
	CodeInvalidShiftRange  Code = "InvalidShiftRange"
	CodeNoOperatingWindow  Code = "NoOperatingWindow"
	CodeShiftOutsideWindow Code = "ShiftOutsideWindow"
	CodeShiftOverlap       Code = "ShiftOverlap"
	CodeLeadTimeViolation  Code = "LeadTimeViolation"
	CodeNoAvailableDate    Code = "NoAvailableDate"
	CodeInvalidDateKey     Code = "InvalidDateKey"
	CodeInvalidWeekday     Code = "InvalidWeekday"
	CodeSlotUnavailable    Code = "SlotUnavailable"
)

// Error is a recoverable, user-facing validation outcome
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrInvalidTimeFormat  = &Error{Code: CodeInvalidTimeFormat, Message: "time must be in HH:MM format"}
	ErrInvalidShiftRange  = &Error{Code: CodeInvalidShiftRange, Message: "shift start must be before shift end"}
	ErrNoOperatingWindow  = &Error{Code: CodeNoOperatingWindow, Message: "clinic is not open on this day"}
	ErrShiftOutsideWindow = &Error{Code: CodeShiftOutsideWindow, Message: "shift is outside the clinic operating hours"}
	ErrShiftOverlap       = &Error{Code: CodeShiftOverlap, Message: "shift overlaps an existing shift"}
	ErrLeadTimeViolation  = &Error{Code: CodeLeadTimeViolation, Message: "booking is inside the minimum lead time"}
	ErrNoAvailableDate    = &Error{Code: CodeNoAvailableDate, Message: "no available date within the search horizon"}
	ErrInvalidDateKey     = &Error{Code: CodeInvalidDateKey, Message: "date must be in YYYY-MM-DD format"}
	ErrInvalidWeekday     = &Error{Code: CodeInvalidWeekday, Message: "unknown weekday"}
	ErrSlotUnavailable    = &Error{Code: CodeSlotUnavailable, Message: "time is not an offered slot for this day"}
)

// CodeOf returns the scheduling code carried by err, or "" when err is not a
// scheduling error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
