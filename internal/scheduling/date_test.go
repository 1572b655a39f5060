package scheduling

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyRoundTrip(t *testing.T) {
	for _, key := range []string{"2024-03-05", "2024-02-29", "1999-12-31", "2030-01-01"} {
		d, err := ParseDateKey(key)
		require.NoError(t, err)
		assert.True(t, d.Valid())
		assert.Equal(t, key, d.Key())
	}
}

func TestParseDateKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "2024-3-5", "2024-02-30", "2023-02-29", "05/03/2024", "2024-03-05T00:00:00Z"} {
		d, err := ParseDateKey(key)
		require.Error(t, err, key)
		assert.True(t, errors.Is(err, ErrInvalidDateKey))
		assert.False(t, d.Valid())
	}
}

func TestDateOfUsesLocalFields(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 01:30 on the 5th at UTC+10 is still the 4th in UTC
	ts := time.Date(2024, time.March, 5, 1, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-05", DateOf(ts).Key())
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).Key())
	assert.Equal(t, "2024-03-01", d.AddDays(2).Key())
	assert.Equal(t, "2023-12-31", NewDate(2024, time.January, 1).AddDays(-1).Key())

	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(NewDate(2024, time.February, 28)))
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.Equal(t, time.Tuesday, NewDate(2024, time.March, 5).Weekday())
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-03-05"}`), &payload))
	assert.Equal(t, NewDate(2024, time.March, 5), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024-13-01"}`), &payload))
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-05", d.Key())

	require.NoError(t, d.Scan([]byte("2024-04-01")))
	assert.Equal(t, "2024-04-01", d.Key())

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01", v)

	assert.Error(t, d.Scan(42))
}
