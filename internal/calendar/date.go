// Package calendar holds local wall-clock date and time-of-day helpers.
//
// Dates are time.Time values at the first instant of a day in a caller-chosen
// location, usually midnight. They are never produced through a UTC round
// trip, so a date string always maps to the same calendar day regardless of
// the host offset or daylight saving gaps.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the persisted date format.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not a real YYYY-MM-DD date.
var ErrInvalidDate = errors.New("calendar: invalid date")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a YYYY-MM-DD string into local midnight of that day in loc.
// A nil loc means time.Local. On failure the zero time is returned together
// with ErrInvalidDate; callers must check before use.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	year, _ := strconv.Atoi(value[0:4])
	month, _ := strconv.Atoi(value[5:7])
	day, _ := strconv.Atoi(value[8:10])
	if month < 1 || month > 12 || day < 1 || day > DaysInMonth(year, time.Month(month)) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Day(year, time.Month(month), day, location(loc)), nil
}

// Day returns the first instant of the civil day year-month-day in loc.
// Out of range months and days are normalised the way time.Date does. When
// loc skips midnight of that day, the result is the end of the gap rather
// than an instant on the previous day.
func Day(year int, month time.Month, day int, loc *time.Location) time.Time {
	loc = location(loc)
	year, month, day = time.Date(year, month, day, 12, 0, 0, 0, time.UTC).Date()
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if dayKey(t) < year*10000+int(month)*100+day {
		if _, end := t.ZoneBounds(); !end.IsZero() {
			t = end
		}
	}
	return t
}

// AddDays moves a date by n calendar days, keeping its location.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d+n, t.Location())
}

// DaysInMonth reports the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(value string, loc *time.Location) time.Time {
	t, err := ParseDate(value, loc)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate renders t as YYYY-MM-DD in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to the first instant of its day in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d, t.Location())
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return Day(y, m, 1, t.Location())
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return Day(y, m+1, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day. Both values
// are read in their own locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Before reports whether day a is strictly earlier than day b.
func Before(a, b time.Time) bool {
	return dayKey(a) < dayKey(b)
}

// After reports whether day a is strictly later than day b.
func After(a, b time.Time) bool {
	return dayKey(a) > dayKey(b)
}

// Within reports whether day falls in [start, end], compared by calendar day.
func Within(day, start, end time.Time) bool {
	k := dayKey(day)
	return k >= dayKey(start) && k <= dayKey(end)
}

// DaysBetween counts calendar days from start to end; negative when end is
// earlier.
func DaysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
