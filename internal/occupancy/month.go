package occupancy

import (
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

// GridDay is one cell of a Sunday-first month grid.
type GridDay struct {
	Date time.Time
	// InMonth is false for the padding days of adjacent months.
	InMonth   bool
	Occupancy Daily
}

// Month is the occupancy heatmap of a calendar month.
type Month struct {
	Month       time.Time
	Days        []GridDay
	AverageRate float64
	Bookings    int
}

// GridBounds returns the first and last day shown for month: the Sunday on
// or before the 1st and the Saturday on or after the last day.
func GridBounds(month time.Time) (time.Time, time.Time) {
	first := calendar.StartOfMonth(month)
	last := calendar.EndOfMonth(month)
	start := calendar.AddDays(first, -int(first.Weekday()))
	end := calendar.AddDays(last, int(time.Saturday-last.Weekday()))
	return start, end
}

// MonthGrid evaluates DailyOccupancy for every cell of month's grid. The
// occurrences should cover GridBounds(month). Averages and booking totals
// only count days inside the month.
func MonthGrid(month time.Time, occurrences []booking.Occurrence, courts []booking.Court, filter string) Month {
	first := calendar.StartOfMonth(month)
	start, end := GridBounds(month)

	out := Month{Month: first}
	var rateSum float64
	inMonth := 0
	for d := start; !d.After(end); d = calendar.AddDays(d, 1) {
		occ := DailyOccupancy(d, occurrences, courts, filter)
		cell := GridDay{Date: d, InMonth: d.Month() == first.Month(), Occupancy: occ}
		out.Days = append(out.Days, cell)
		if cell.InMonth {
			rateSum += occ.Rate
			out.Bookings += occ.Booked
			inMonth++
		}
	}
	if inMonth > 0 {
		out.AverageRate = rateSum / float64(inMonth)
	}
	return out
}
