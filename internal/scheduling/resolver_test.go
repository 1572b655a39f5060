package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-03-04 is a Monday.
var (
	mon = NewDate(2024, time.March, 4)
	tue = mon.AddDays(1)
	wed = mon.AddDays(2)
)

func clinicWindows() []Window {
	return []Window{
		{Day: Monday, Start: "08:00", End: "12:00"},
		{Day: Tuesday, Start: "08:00", End: "12:00"},
		{Day: Tuesday, Start: "14:00", End: "17:00"},
	}
}

func at(d Date, clock string) time.Time {
	m := hm(clock)
	return time.Date(d.Year, d.Month, d.Day, m/60, m%60, 0, 0, time.UTC)
}

func TestAppointmentResolverLeadBoundary(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 0)

	assert.Equal(t, tue, r.MinDate())

	// same weekday as now: today is inside the lead window, next week is fine
	assert.False(t, r.IsDateAllowed(mon, Monday))
	next, err := r.NextValidDate(Monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11", next.Key())

	assert.Empty(t, r.CandidateTimeOptions(mon))
	assert.Equal(t,
		[]string{"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00"},
		r.CandidateTimeOptions(next))
}

func TestAppointmentResolverExcludesSlotsBeforeBoundary(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 0)

	assert.True(t, r.IsDateAllowed(tue, Tuesday))
	options := r.CandidateTimeOptions(tue)
	assert.Equal(t, []string{
		"10:00", "10:30", "11:00", "11:30", "12:00",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
	}, options)
	for _, early := range []string{"08:00", "08:30", "09:00", "09:30"} {
		assert.NotContains(t, options, early)
	}

	next, err := r.NextValidDate(Tuesday)
	require.NoError(t, err)
	assert.Equal(t, tue, next)
}

func TestAppointmentResolverBoundaryDayWithoutTimeLeft(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "18:00"), DefaultLeadTime, 30, 0)

	assert.False(t, r.IsDateAllowed(tue, Tuesday), "all Tuesday windows end before 18:00")
	next, err := r.NextValidDate(Tuesday)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-12", next.Key())
}

func TestAppointmentResolverWeekdayMismatch(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 0)
	assert.False(t, r.IsDateAllowed(wed, Tuesday))
	assert.False(t, r.IsDateAllowed(Date{}, Tuesday))
}

func TestAppointmentResolverClosedWeekday(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 0)

	thursday := mon.AddDays(3)
	assert.False(t, r.IsDateAllowed(thursday, Thursday), "no window on thursdays")
	assert.False(t, r.IsDateAllowed(thursday.AddDays(7), Thursday))

	_, err := r.NextValidDate(Thursday)
	assert.ErrorIs(t, err, ErrNoAvailableDate)

	_, err = NewAppointmentResolver(nil, at(mon, "10:00"), DefaultLeadTime, 30, 0).NextValidDate(Wednesday)
	assert.ErrorIs(t, err, ErrNoAvailableDate)
}

func TestAppointmentResolverNoAvailableDate(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 1)

	_, err := r.NextValidDate(Monday)
	assert.ErrorIs(t, err, ErrNoAvailableDate)

	_, err = r.NextValidDate(Weekday("NOPE"))
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestValidateAppointment(t *testing.T) {
	r := NewAppointmentResolver(clinicWindows(), at(mon, "10:00"), DefaultLeadTime, 30, 0)

	tests := []struct {
		name string
		day  Date
		time string
		want error
	}{
		{"first slot after boundary", tue, "10:00", nil},
		{"afternoon window", tue, "15:30", nil},
		{"before boundary", tue, "09:30", ErrLeadTimeViolation},
		{"today", mon, "11:00", ErrLeadTimeViolation},
		{"off quantum", tue, "10:15", ErrSlotUnavailable},
		{"between windows", tue, "13:00", ErrSlotUnavailable},
		{"closed day", wed, "10:00", ErrNoOperatingWindow},
		{"malformed", tue, "10am", ErrInvalidTimeFormat},
		{"invalid date", Date{}, "10:00", ErrInvalidDateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.ValidateAppointment(tt.day, tt.time)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
