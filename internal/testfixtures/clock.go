package testfixtures

import (
	"sync"
	"time"

	"github.com/example/court-booking/internal/calendar"
)

// Clock is a settable time source that also answers in venue dates.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

// NewClockAt starts the clock at hh:mm on a YYYY-MM-DD date in loc.
func NewClockAt(date, hhmm string, loc *time.Location) *Clock {
	c := &Clock{}
	c.SetAt(date, hhmm, loc)
	return c
}

// Now returns the clock time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc is Now for injection into services. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// SetAt moves the clock to hh:mm of a YYYY-MM-DD date in loc. It panics on
// malformed literals.
func (c *Clock) SetAt(date, hhmm string, loc *time.Location) {
	day := calendar.MustParseDate(date, loc)
	c.Set(calendar.MustParseClock(hhmm).On(day))
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays moves the clock by whole calendar days, keeping the wall time.
func (c *Clock) AdvanceDays(n int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	day := calendar.AddDays(c.now, n)
	c.now = calendar.ClockOf(c.now).On(day)
	return c.now
}

// Today is the clock's current date in its own location.
func (c *Clock) Today() time.Time {
	return calendar.StartOfDay(c.Now())
}
