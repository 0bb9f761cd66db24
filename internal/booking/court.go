// Package booking defines the court and reservation records shared by the
// expansion, conflict and occupancy packages.
package booking

import (
	"fmt"
	"strings"
	"time"
)

// CourtStatus is the operating status of a court. Only active courts are
// schedulable.
type CourtStatus string

const (
	CourtActive      CourtStatus = "active"
	CourtInactive    CourtStatus = "inactive"
	CourtMaintenance CourtStatus = "maintenance"
)

// ParseCourtStatus validates a persisted status value.
func ParseCourtStatus(value string) (CourtStatus, error) {
	switch s := CourtStatus(strings.TrimSpace(value)); s {
	case CourtActive, CourtInactive, CourtMaintenance:
		return s, nil
	default:
		return "", fmt.Errorf("booking: unknown court status %q", value)
	}
}

// WeekdayFlags holds one open flag per weekday, indexed by time.Weekday.
type WeekdayFlags [7]bool

// OpenWeekdays returns the flagged weekdays in Sunday-first order.
func (f WeekdayFlags) OpenWeekdays() []time.Weekday {
	var days []time.Weekday
	for i, open := range f {
		if open {
			days = append(days, time.Weekday(i))
		}
	}
	return days
}

// Court is a bookable resource of a venue.
type Court struct {
	ID       string
	VenueID  string
	Name     string
	Status   CourtStatus
	OpenDays WeekdayFlags
	// WeekdayHours and WeekendHours are comma separated HH:MM-HH:MM lists.
	WeekdayHours string
	WeekendHours string
	SlotMinutes  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive reports whether the court can take bookings.
func (c Court) IsActive() bool {
	return c.Status == CourtActive
}

// OpenOn reports the per-weekday open flag for day's weekday.
func (c Court) OpenOn(day time.Time) bool {
	return c.OpenDays[day.Weekday()]
}

// CourtIndex looks courts up by id.
type CourtIndex map[string]Court

// IndexCourts builds a CourtIndex; later duplicates win.
func IndexCourts(courts []Court) CourtIndex {
	idx := make(CourtIndex, len(courts))
	for _, c := range courts {
		idx[c.ID] = c
	}
	return idx
}
