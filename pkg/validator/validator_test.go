package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftForm struct {
	Day   string `json:"day" binding:"required,weekday"`
	Date  string `json:"date" binding:"required,datekey"`
	Start string `json:"start_shift" binding:"required,hhmm"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(shiftForm{Day: "monday", Date: "2024-03-04", Start: "8:00"}))

	err := v.Struct(shiftForm{Day: "funday", Date: "2024-02-30", Start: "24:00"})
	require.Error(t, err)

	fields, ok := Translate(err)
	require.True(t, ok)
	assert.ElementsMatch(t, []FieldError{
		{Field: "day", Message: "Unknown weekday"},
		{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
		{Field: "start_shift", Message: "Time must be in HH:MM format"},
	}, fields)
}

func TestTranslateRequired(t *testing.T) {
	fields, ok := Translate(New().Struct(shiftForm{}))
	require.True(t, ok)
	require.Len(t, fields, 3)
	assert.Equal(t, "Field is required", fields[0].Message)
}

func TestTranslateOtherError(t *testing.T) {
	_, ok := Translate(assert.AnError)
	assert.False(t, ok)
}
