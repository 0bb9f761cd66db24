// Package occupancy aggregates expanded occurrences against court capacity.
package occupancy

import (
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/schedule"
)

// AllCourts selects every active court.
const AllCourts = "all"

// Daily is the occupancy of one calendar day.
type Daily struct {
	// Rate is Booked/Total as a percentage, capped at 100.
	Rate   float64
	Booked int
	Total  int
}

// DailyOccupancy counts non-cancelled occurrences on date against the slot
// capacity of the active courts selected by filter, which is a court id or
// AllCourts.
func DailyOccupancy(date time.Time, occurrences []booking.Occurrence, courts []booking.Court, filter string) Daily {
	relevant := selectCourts(courts, filter)
	if len(relevant) == 0 {
		return Daily{}
	}

	total := 0
	for _, c := range relevant {
		total += schedule.AvailableSlotCount(c, date)
	}

	booked := 0
	for _, o := range occurrences {
		if o.IsCancelled() || !calendar.SameDay(o.Date, date) {
			continue
		}
		if _, ok := relevant[o.CourtID]; ok {
			booked++
		}
	}

	if total == 0 {
		return Daily{Booked: booked}
	}
	rate := float64(booked) / float64(total) * 100
	if rate > 100 {
		rate = 100
	}
	return Daily{Rate: rate, Booked: booked, Total: total}
}

func selectCourts(courts []booking.Court, filter string) map[string]booking.Court {
	out := make(map[string]booking.Court)
	for _, c := range courts {
		if !c.IsActive() {
			continue
		}
		if filter == AllCourts || filter == "" || c.ID == filter {
			out[c.ID] = c
		}
	}
	return out
}
