// Package schedule resolves a court's operating hours on a given date into
// bookable slots.
package schedule

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

// DefaultSlotMinutes applies when a court has no positive slot duration.
const DefaultSlotMinutes = 60

// Range is one HH:MM-HH:MM operating window.
type Range struct {
	Start calendar.Clock
	End   calendar.Clock
}

// Minutes returns the length of the range, or zero when end is not after start.
func (r Range) Minutes() int {
	if r.End <= r.Start {
		return 0
	}
	return int(r.End - r.Start)
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// ParseRanges splits a comma separated list of ranges. Malformed entries are
// reported and left out; the well formed ones are still returned.
func ParseRanges(hours string) ([]Range, []error) {
	var (
		ranges []Range
		errs   []error
	)
	if strings.TrimSpace(hours) == "" {
		return nil, nil
	}
	for _, part := range strings.Split(hours, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			errs = append(errs, fmt.Errorf("schedule: malformed range %q", part))
			continue
		}
		start, err := calendar.ParseClock(strings.TrimSpace(bounds[0]))
		if err != nil {
			errs = append(errs, fmt.Errorf("schedule: range %q: %w", part, err))
			continue
		}
		end, err := calendar.ParseClock(strings.TrimSpace(bounds[1]))
		if err != nil {
			errs = append(errs, fmt.Errorf("schedule: range %q: %w", part, err))
			continue
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges, errs
}

// SlotMinutes returns the court's slot duration with the default applied.
func SlotMinutes(court booking.Court) int {
	if court.SlotMinutes <= 0 {
		return DefaultSlotMinutes
	}
	return court.SlotMinutes
}

// HoursFor selects the weekday or weekend hour string for date.
func HoursFor(court booking.Court, date time.Time) string {
	if calendar.IsWeekend(date.Weekday()) {
		return court.WeekendHours
	}
	return court.WeekdayHours
}

// Resolver answers slot questions for courts. Malformed hour ranges are
// logged through its logger and skipped.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver builds a Resolver. A nil logger falls back to slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

var defaultResolver = NewResolver(nil)

// AvailableSlotCount uses the default resolver.
func AvailableSlotCount(court booking.Court, date time.Time) int {
	return defaultResolver.AvailableSlotCount(court, date)
}

// TimeSlotsForDate uses the default resolver.
func TimeSlotsForDate(court booking.Court, date time.Time) []string {
	return defaultResolver.TimeSlotsForDate(court, date)
}

// AvailableSlotCount sums floor(range length / slot duration) over the ranges
// that apply to date. Inactive courts and closed weekdays have no slots.
func (r *Resolver) AvailableSlotCount(court booking.Court, date time.Time) int {
	ranges, ok := r.rangesFor(court, date)
	if !ok {
		return 0
	}
	interval := SlotMinutes(court)
	total := 0
	for _, rg := range ranges {
		total += rg.Minutes() / interval
	}
	return total
}

// TimeSlotsForDate lists the quantised start times, start then start+interval
// and so on while before the range end, across all ranges in order.
func (r *Resolver) TimeSlotsForDate(court booking.Court, date time.Time) []string {
	ranges, ok := r.rangesFor(court, date)
	if !ok {
		return nil
	}
	interval := SlotMinutes(court)
	var labels []string
	for _, rg := range ranges {
		for slot := rg.Start; slot < rg.End; slot = slot.Add(interval) {
			labels = append(labels, slot.String())
		}
	}
	return labels
}

func (r *Resolver) rangesFor(court booking.Court, date time.Time) ([]Range, bool) {
	if !court.IsActive() || !court.OpenOn(date) {
		return nil, false
	}
	ranges, errs := ParseRanges(HoursFor(court, date))
	for _, err := range errs {
		r.log().Warn("skipping malformed operating hours",
			"court_id", court.ID,
			"date", calendar.FormatDate(date),
			"error", err,
		)
	}
	return ranges, true
}

func (r *Resolver) log() *slog.Logger {
	if r == nil || r.logger == nil {
		return slog.Default()
	}
	return r.logger
}
