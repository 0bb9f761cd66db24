package application

import (
	"strings"
	"sync"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

// calendarCache keeps recently expanded calendars so repeated reads of the
// same window skip the expansion while the venue is unchanged. Every write to
// a venue drops that venue's entries.
type calendarCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]calendarCacheEntry
}

type calendarCacheEntry struct {
	occurrences []booking.Occurrence
	expiresAt   time.Time
}

func newCalendarCache(ttl time.Duration, maxEntries int, now func() time.Time) *calendarCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &calendarCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]calendarCacheEntry),
	}
}

func (c *calendarCache) Get(key string) ([]booking.Occurrence, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneOccurrences(entry.occurrences), true
}

func (c *calendarCache) Store(key string, occurrences []booking.Occurrence) {
	if c == nil {
		return
	}
	cloned := cloneOccurrences(occurrences)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = calendarCacheEntry{occurrences: cloned, expiresAt: expiry}
}

// InvalidateVenue drops every window cached for venueID.
func (c *calendarCache) InvalidateVenue(venueID string) {
	if c == nil {
		return
	}
	prefix := venueID + "|"
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *calendarCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *calendarCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneOccurrences(occurrences []booking.Occurrence) []booking.Occurrence {
	if len(occurrences) == 0 {
		return nil
	}
	out := make([]booking.Occurrence, len(occurrences))
	for i, o := range occurrences {
		out[i] = booking.Occurrence{Reservation: o.Reservation.Clone(), Origin: o.Origin}
	}
	return out
}

func calendarCacheKey(venueID string, from, to time.Time) string {
	return venueID + "|" + calendar.FormatDate(from) + "|" + calendar.FormatDate(to)
}
