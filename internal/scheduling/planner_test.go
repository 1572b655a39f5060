package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mondayMorning() []Window {
	return []Window{{Day: Monday, Start: "08:00", End: "12:00"}}
}

func TestShiftPlannerFullyBookedMonday(t *testing.T) {
	shifts := []Span{{Date: mon, Start: "08:00", End: "12:00"}}
	p := NewShiftPlanner(mondayMorning(), shifts, mon, 30, 0)

	assert.True(t, p.IsFullyBooked(mon))
	assert.False(t, p.IsDateAllowed(mon, Monday))

	next, err := p.NextAvailableDate(Monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", next.Key())

	assert.Equal(t, []Date{mon}, p.FullyBookedDates(mon, 14))
	assert.Empty(t, p.StartOptions(mon))
}

func TestShiftPlannerCoverageAcrossSplitShifts(t *testing.T) {
	shifts := []Span{
		{Date: mon, Start: "10:00", End: "12:00"},
		{Date: mon, Start: "08:00", End: "10:00"},
	}
	p := NewShiftPlanner(mondayMorning(), shifts, mon, 30, 0)
	assert.True(t, p.IsFullyBooked(mon))
}

func TestShiftPlannerPartialDay(t *testing.T) {
	shifts := []Span{{Date: mon, Start: "08:00", End: "10:00"}}
	p := NewShiftPlanner(mondayMorning(), shifts, mon, 30, 0)

	assert.False(t, p.IsFullyBooked(mon))
	assert.True(t, p.IsDateAllowed(mon, Monday))
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, p.StartOptions(mon))
	assert.Equal(t, []string{"10:30", "11:00", "11:30", "12:00"}, p.EndOptions(mon, "10:00"))
}

func TestShiftPlannerEndOptionsStopAtNextShift(t *testing.T) {
	shifts := []Span{{Date: mon, Start: "10:00", End: "11:00"}}
	p := NewShiftPlanner(mondayMorning(), shifts, mon, 30, 0)

	assert.Equal(t, []string{"09:30", "10:00"}, p.EndOptions(mon, "09:00"))
	assert.Empty(t, p.EndOptions(mon, "10:30"), "start inside a booked shift")
	assert.Equal(t, []string{"11:30", "12:00"}, p.EndOptions(mon, "11:00"))
}

func TestShiftPlannerRejectsPastAndClosedDays(t *testing.T) {
	p := NewShiftPlanner(mondayMorning(), nil, tue, 30, 0)

	assert.False(t, p.IsDateAllowed(mon, Monday), "before today")
	assert.False(t, p.IsDateAllowed(wed, Wednesday), "clinic closed")

	_, err := p.NextAvailableDate(Wednesday)
	assert.ErrorIs(t, err, ErrNoAvailableDate)
}

func TestShiftPlannerIgnoresMalformedShifts(t *testing.T) {
	shifts := []Span{{Date: mon, Start: "8am", End: "12:00"}}
	p := NewShiftPlanner(mondayMorning(), shifts, mon, 30, 0)
	assert.False(t, p.IsFullyBooked(mon))
}
