// Package calendar buckets entities by local calendar day, week and month.
//
// All day arithmetic goes through Date, a civil date without a clock or zone,
// so month and year rollovers and DST transitions never shift a day.
package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the canonical day-string format.
const DateLayout = "2006-01-02"

// Date is a civil calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateIn returns the calendar date of t as seen from loc.
func DateIn(t time.Time, loc *time.Location) Date {
	if loc == nil {
		return DateOf(t)
	}
	return DateOf(t.In(loc))
}

// NewDate returns the normalized date for y-m-d, so NewDate(2026, 1, 32) is
// February 1st.
func NewDate(y int, m time.Month, d int) Date {
	return DateOf(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD day string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// In returns midnight at the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.Compare(o) < 0
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.Compare(o) > 0
}

// Compare returns -1, 0 or +1 ordering d against o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Weekday returns the Go weekday of d.
func (d Date) Weekday() time.Weekday {
	return d.noonUTC().Weekday()
}

// DaysBetween returns the number of calendar days from a to b; negative when
// b is earlier. Both dates are anchored at noon UTC so the result is exact
// regardless of DST in the caller's zone.
func DaysBetween(a, b Date) int {
	return int(b.noonUTC().Sub(a.noonUTC()).Hours() / 24)
}

// ISOWeekday returns the ISO-8601 weekday number, Monday=1 through Sunday=7.
func ISOWeekday(d Date) int {
	if wd := d.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

// StartOfWeek returns the Monday on or before d.
func StartOfWeek(d Date) Date {
	return d.AddDays(1 - ISOWeekday(d))
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return NewDate(year, month+1, 0).Day
}

func (d Date) noonUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
