package scheduling

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateKeyLayout is the wire format of a calendar date.
const DateKeyLayout = "2006-01-02"

// Date is a calendar date with no time of day and no zone. The zero value is
// not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf takes the calendar fields of t as they read in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate normalises out-of-range fields the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDateKey parses a "YYYY-MM-DD" key. Keys naming dates that do not exist
// (2024-02-30) are rejected rather than rolled over.
func ParseDateKey(key string) (Date, error) {
	if len(key) != len(DateKeyLayout) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return DateOf(t), nil
}

// Key renders the date as "YYYY-MM-DD" from its own fields.
func (d Date) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) String() string {
	return d.Key()
}

// Valid reports whether d names an existing calendar day.
func (d Date) Valid() bool {
	if d.Year < 1 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return NewDate(d.Year, d.Month, d.Day) == d
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

// DaysUntil returns the number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time(time.UTC).Sub(d.Time(time.UTC)).Hours() / 24)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Key())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDateKey, data)
	}
	parsed, err := ParseDateKey(key)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		// lib/pq returns DATE columns as midnight UTC
		*d = DateOf(v)
		return nil
	case string:
		return d.scanKey(v)
	case []byte:
		return d.scanKey(string(v))
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanKey(s string) error {
	if len(s) > len(DateKeyLayout) {
		s = s[:len(DateKeyLayout)]
	}
	parsed, err := ParseDateKey(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, nil
	}
	return d.Key(), nil
}

// MinutesOfDay returns the wall-clock minutes since midnight of t.
func MinutesOfDay(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) % minutesPerDay
}
