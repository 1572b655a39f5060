package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTimeOptions(t *testing.T) {
	windows := []Window{{Day: Monday, Start: "08:00", End: "10:00"}}
	assert.Equal(t,
		[]string{"08:00", "08:30", "09:00", "09:30", "10:00"},
		BuildTimeOptions(windows, 30))
}

func TestBuildTimeOptionsMergesWindows(t *testing.T) {
	windows := []Window{
		{Day: Monday, Start: "13:00", End: "14:00"},
		{Day: Monday, Start: "08:00", End: "09:00"},
		{Day: Monday, Start: "08:30", End: "09:30"},
		{Day: Monday, Start: "bad", End: "10:00"},
		{Day: Monday, Start: "12:00", End: "11:00"},
	}
	assert.Equal(t,
		[]string{"08:00", "08:30", "09:00", "09:30", "13:00", "13:30", "14:00"},
		BuildTimeOptions(windows, 30))
}

func TestBuildTimeOptionsDefaultStep(t *testing.T) {
	windows := []Window{{Day: Monday, Start: "08:00", End: "09:00"}}
	assert.Equal(t, []string{"08:00", "08:30", "09:00"}, BuildTimeOptions(windows, 0))
}

func TestBuildEndTimeOptions(t *testing.T) {
	windows := []Window{{Day: Monday, Start: "08:00", End: "10:00"}}
	assert.Equal(t, []string{"09:30", "10:00"}, BuildEndTimeOptions("09:00", windows, 30))
}

func TestBuildEndTimeOptionsStaysInsideWindow(t *testing.T) {
	windows := []Window{
		{Day: Monday, Start: "08:00", End: "10:00"},
		{Day: Monday, Start: "13:00", End: "15:00"},
	}
	assert.Equal(t, []string{"10:00"}, BuildEndTimeOptions("09:30", windows, 30))
	assert.Empty(t, BuildEndTimeOptions("10:00", windows, 30), "window end is not a valid start")
	assert.Empty(t, BuildEndTimeOptions("11:00", windows, 30))
	assert.Empty(t, BuildEndTimeOptions("nope", windows, 30))
}
