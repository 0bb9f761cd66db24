package scheduler

import (
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/recurrence"
)

// Conflict is the first clashing pair found for a candidate.
type Conflict struct {
	// Candidate is the candidate's occurrence that clashes.
	Candidate booking.Occurrence
	// Existing is the stored series occurrence it clashes with.
	Existing booking.Occurrence
}

// Detector decides whether a candidate reservation can be placed.
type Detector struct {
	engine *recurrence.Engine
}

// NewDetector builds a Detector. A nil engine uses the default horizon.
func NewDetector(engine *recurrence.Engine) *Detector {
	if engine == nil {
		engine = recurrence.NewEngine()
	}
	return &Detector{engine: engine}
}

var defaultDetector = NewDetector(nil)

// HasConflict runs the default detector.
func HasConflict(candidate booking.Reservation, existing []booking.Reservation, courts []booking.Court) bool {
	return defaultDetector.HasConflict(candidate, existing, courts)
}

// HasConflict reports whether candidate would overlap any occurrence of the
// existing masters on the same court.
func (d *Detector) HasConflict(candidate booking.Reservation, existing []booking.Reservation, courts []booking.Court) bool {
	_, found := d.FindConflict(candidate, existing, courts)
	return found
}

// FindConflict returns the first clashing pair. The candidate's own id is
// excluded from existing so an edited master never clashes with itself.
//
// A one-off candidate is checked against existing occurrences on its own date.
// A recurring candidate is expanded from its anchor to its series end and
// every one of its occurrences is checked against existing occurrences over
// the same span.
func (d *Detector) FindConflict(candidate booking.Reservation, existing []booking.Reservation, courts []booking.Court) (Conflict, bool) {
	others := make([]booking.Reservation, 0, len(existing))
	for _, r := range existing {
		if candidate.ID != "" && r.ID == candidate.ID {
			continue
		}
		others = append(others, r)
	}

	if !candidate.IsRecurring() {
		occ := booking.AsOccurrence(candidate)
		for _, other := range d.engine.Expand(others, candidate.Date, candidate.Date, courts) {
			if Overlaps(occ, other) {
				return Conflict{Candidate: occ, Existing: other}, true
			}
		}
		return Conflict{}, false
	}

	from := calendar.StartOfDay(candidate.Date)
	to := d.engine.SeriesEnd(candidate)
	mine := d.engine.Expand([]booking.Reservation{candidate}, from, to, courts)
	if len(mine) == 0 {
		return Conflict{}, false
	}
	theirs := groupByDay(d.engine.Expand(others, from, to, courts))
	for _, occ := range mine {
		for _, other := range theirs[dayKey(occ.Date)] {
			if Overlaps(occ, other) {
				return Conflict{Candidate: occ, Existing: other}, true
			}
		}
	}
	return Conflict{}, false
}

// Overlaps is the pairwise test: same court, same calendar date, neither
// cancelled, and half-open intervals that intersect. Back-to-back bookings do
// not overlap. An end at or before the start spans midnight.
func Overlaps(a, b booking.Occurrence) bool {
	if a.CourtID != b.CourtID {
		return false
	}
	if !calendar.SameDay(a.Date, b.Date) {
		return false
	}
	if a.IsCancelled() || b.IsCancelled() {
		return false
	}
	aStart, aEnd := a.Interval()
	bStart, bEnd := b.Interval()
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// groupByDay indexes occurrences by calendar day. Pairs on different days
// never overlap, so this only narrows the pairwise scan.
func groupByDay(occs []booking.Occurrence) map[string][]booking.Occurrence {
	out := make(map[string][]booking.Occurrence)
	for _, o := range occs {
		k := dayKey(o.Date)
		out[k] = append(out[k], o)
	}
	return out
}

func dayKey(t time.Time) string {
	return calendar.FormatDate(t)
}
