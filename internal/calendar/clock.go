package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ClockLayout is the persisted time-of-day format.
const ClockLayout = "15:04"

// ErrInvalidClock is returned for anything other than a zero padded HH:MM.
var ErrInvalidClock = errors.New("calendar: invalid time of day")

// Clock is a local wall-clock time of day in minutes since midnight.
type Clock int

// NewClock builds a Clock from hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses a 24-hour zero padded "HH:MM".
func ParseClock(value string) (Clock, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	h, okH := twoDigits(value[0:2])
	m, okM := twoDigits(value[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return NewClock(h, m), nil
}

// MustParseClock is ParseClock for literals known to be valid.
func MustParseClock(value string) Clock {
	c, err := ParseClock(value)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String renders HH:MM. Values past midnight wrap around.
func (c Clock) String() string {
	m := int(c) % (24 * 60)
	if m < 0 {
		m += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Add shifts the clock by the given minutes without wrapping.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// On anchors the clock to the given day in the day's location.
func (c Clock) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

// ClockOf extracts the wall-clock time of day from t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}
