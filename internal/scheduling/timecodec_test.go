package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "08:30", want: 510},
		{in: "23:59", want: 1439},
		{in: "9:05", want: 545},
		{in: "09:5", want: 545},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12", wantErr: true},
		{in: "12:00:00", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "", wantErr: true},
		{in: "123:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTimeFormat))
				assert.Equal(t, CodeInvalidTimeFormat, CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "00:00", FormatTime(0))
	assert.Equal(t, "00:00", FormatTime(-15))
	assert.Equal(t, "08:05", FormatTime(485))
	assert.Equal(t, "23:59", FormatTime(1439))
}

func TestFormatParseRoundTrip(t *testing.T) {
	for m := 0; m < minutesPerDay; m++ {
		s := FormatTime(m)
		got, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, FormatTime(got))
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name       string
		a, b, c, d int
		want       bool
	}{
		{"disjoint", 480, 600, 660, 720, false},
		{"touching", 480, 720, 720, 780, false},
		{"partial", 480, 720, 700, 780, true},
		{"nested", 480, 1020, 600, 660, true},
		{"identical", 480, 720, 480, 720, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RangesOverlap(tc.a, tc.b, tc.c, tc.d))
			assert.Equal(t, tc.want, RangesOverlap(tc.c, tc.d, tc.a, tc.b), "overlap must be symmetric")
		})
	}
}
