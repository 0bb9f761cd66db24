package scheduler

import (
	"testing"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/recurrence"
)

var everyDay = booking.WeekdayFlags{true, true, true, true, true, true, true}

func courts() []booking.Court {
	return []booking.Court{
		{ID: "court-c", Status: booking.CourtActive, OpenDays: everyDay, WeekdayHours: "06:00-23:00", SlotMinutes: 60},
		{ID: "court-d", Status: booking.CourtActive, OpenDays: everyDay, WeekdayHours: "06:00-23:00", SlotMinutes: 60},
	}
}

func reservation(id, courtID, date, start, end string) booking.Reservation {
	return booking.Reservation{
		ID:      id,
		CourtID: courtID,
		VenueID: "venue-1",
		Date:    calendar.MustParseDate(date, time.UTC),
		Start:   calendar.MustParseClock(start),
		End:     calendar.MustParseClock(end),
		Status:  booking.StatusConfirmed,
		Kind:    booking.KindNormal,
	}
}

func weekly(r booking.Reservation, until string) booking.Reservation {
	r.Recurrence = &booking.Recurrence{Frequency: booking.FrequencyWeekly}
	if until != "" {
		end := calendar.MustParseDate(until, time.UTC)
		r.Recurrence.EndDate = &end
	}
	return r
}

func daily(r booking.Reservation) booking.Reservation {
	r.Recurrence = &booking.Recurrence{Frequency: booking.FrequencyDaily}
	return r
}

func TestHasConflictSingle(t *testing.T) {
	existing := []booking.Reservation{reservation("e1", "court-c", "2024-06-10", "10:00", "11:00")}

	tests := []struct {
		name      string
		candidate booking.Reservation
		want      bool
	}{
		{"simple overlap", reservation("", "court-c", "2024-06-10", "10:30", "11:30"), true},
		{"contained", reservation("", "court-c", "2024-06-10", "10:15", "10:45"), true},
		{"enclosing", reservation("", "court-c", "2024-06-10", "09:00", "12:00"), true},
		{"identical", reservation("", "court-c", "2024-06-10", "10:00", "11:00"), true},
		{"back to back after", reservation("", "court-c", "2024-06-10", "11:00", "12:00"), false},
		{"back to back before", reservation("", "court-c", "2024-06-10", "09:00", "10:00"), false},
		{"other court", reservation("", "court-d", "2024-06-10", "10:30", "11:30"), false},
		{"other date", reservation("", "court-c", "2024-06-11", "10:30", "11:30"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(tt.candidate, existing, courts()); got != tt.want {
				t.Fatalf("HasConflict = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasConflictBackToBackScenario(t *testing.T) {
	existing := []booking.Reservation{reservation("e1", "court-c", "2024-06-10", "13:00", "14:00")}

	if HasConflict(reservation("", "court-c", "2024-06-10", "14:00", "15:00"), existing, courts()) {
		t.Fatal("14:00-15:00 after 13:00-14:00 must not conflict")
	}
	if !HasConflict(reservation("", "court-c", "2024-06-10", "13:30", "14:30"), existing, courts()) {
		t.Fatal("13:30-14:30 against 13:00-14:00 must conflict")
	}
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	cancelled := reservation("e1", "court-c", "2024-06-10", "10:00", "11:00")
	cancelled.Status = booking.StatusCancelled
	if HasConflict(reservation("", "court-c", "2024-06-10", "10:00", "11:00"), []booking.Reservation{cancelled}, courts()) {
		t.Fatal("cancelled reservations must not block a slot")
	}

	series := weekly(reservation("s1", "court-c", "2024-06-03", "18:00", "19:00"), "")
	series.Status = booking.StatusCancelled
	if HasConflict(reservation("", "court-c", "2024-06-17", "18:00", "19:00"), []booking.Reservation{series}, courts()) {
		t.Fatal("a cancelled series must not block its former dates")
	}

	candidate := reservation("", "court-c", "2024-06-10", "10:00", "11:00")
	candidate.Status = booking.StatusCancelled
	active := reservation("e2", "court-c", "2024-06-10", "10:00", "11:00")
	if HasConflict(candidate, []booking.Reservation{active}, courts()) {
		t.Fatal("a cancelled candidate occupies nothing")
	}
}

func TestHasConflictRecurringExisting(t *testing.T) {
	// 2024-06-03 and 2024-07-01 are Mondays.
	existing := []booking.Reservation{weekly(reservation("s1", "court-c", "2024-06-03", "18:00", "19:00"), "")}

	if !HasConflict(reservation("", "court-c", "2024-07-01", "18:00", "18:30"), existing, courts()) {
		t.Fatal("a single booking on a later Monday must clash with the open-ended weekly series")
	}
	if HasConflict(reservation("", "court-c", "2024-07-02", "18:00", "18:30"), existing, courts()) {
		t.Fatal("a Tuesday booking must not clash with a Monday series")
	}
	if HasConflict(reservation("", "court-c", "2025-06-09", "18:00", "18:30"), existing, courts()) {
		t.Fatal("a booking past the one-year horizon must not clash")
	}

	bounded := []booking.Reservation{weekly(reservation("s1", "court-c", "2024-06-03", "18:00", "19:00"), "2024-06-24")}
	if HasConflict(reservation("", "court-c", "2024-07-01", "18:00", "18:30"), bounded, courts()) {
		t.Fatal("a booking after the series end date must not clash")
	}
}

func TestHasConflictRecurringCandidate(t *testing.T) {
	t.Run("weekly candidate hits a later single booking", func(t *testing.T) {
		existing := []booking.Reservation{reservation("e1", "court-c", "2024-08-05", "18:30", "19:30")}
		candidate := weekly(reservation("", "court-c", "2024-06-03", "18:00", "19:00"), "")
		if !HasConflict(candidate, existing, courts()) {
			t.Fatal("expected conflict on 2024-08-05")
		}
	})

	t.Run("weekly candidate ending before the booking", func(t *testing.T) {
		existing := []booking.Reservation{reservation("e1", "court-c", "2024-08-05", "18:30", "19:30")}
		candidate := weekly(reservation("", "court-c", "2024-06-03", "18:00", "19:00"), "2024-07-29")
		if HasConflict(candidate, existing, courts()) {
			t.Fatal("series ends before the booking")
		}
	})

	t.Run("daily candidate against weekly series", func(t *testing.T) {
		existing := []booking.Reservation{weekly(reservation("s1", "court-c", "2024-06-07", "07:00", "08:00"), "")}
		candidate := daily(reservation("", "court-c", "2024-06-03", "07:30", "08:30"))
		found, ok := NewDetector(nil).FindConflict(candidate, existing, courts())
		if !ok {
			t.Fatal("expected conflict")
		}
		if got := calendar.FormatDate(found.Candidate.Date); got != "2024-06-07" {
			t.Fatalf("first conflict on %s, want 2024-06-07", got)
		}
		if found.Existing.ID != "s1" {
			t.Fatalf("expected clash with the series anchor, got %s", found.Existing.ID)
		}
	})

	t.Run("existing series before candidate anchor is ignored", func(t *testing.T) {
		existing := []booking.Reservation{reservation("e1", "court-c", "2024-05-27", "18:00", "19:00")}
		candidate := weekly(reservation("", "court-c", "2024-06-03", "18:00", "19:00"), "")
		if HasConflict(candidate, existing, courts()) {
			t.Fatal("bookings before the anchor must not clash")
		}
	})

	t.Run("horizon is configurable", func(t *testing.T) {
		existing := []booking.Reservation{reservation("e1", "court-c", "2024-08-05", "18:30", "19:30")}
		candidate := weekly(reservation("", "court-c", "2024-06-03", "18:00", "19:00"), "")
		short := NewDetector(recurrence.NewEngine(recurrence.WithHorizon(recurrence.Horizon{Months: 1})))
		if short.HasConflict(candidate, existing, courts()) {
			t.Fatal("booking lies beyond a one-month horizon")
		}
	})
}

func TestHasConflictSelfExclusion(t *testing.T) {
	series := weekly(reservation("s1", "court-c", "2024-06-03", "18:00", "19:00"), "")
	edited := series
	edited.Start = calendar.MustParseClock("18:30")
	edited.End = calendar.MustParseClock("19:30")

	if HasConflict(edited, []booking.Reservation{series}, courts()) {
		t.Fatal("editing a series must not clash with its own occurrences")
	}

	single := reservation("r1", "court-c", "2024-06-10", "10:00", "11:00")
	moved := single
	moved.Start = calendar.MustParseClock("10:30")
	moved.End = calendar.MustParseClock("11:30")
	if HasConflict(moved, []booking.Reservation{single}, courts()) {
		t.Fatal("editing a booking must not clash with itself")
	}

	other := reservation("r2", "court-c", "2024-06-10", "11:00", "12:00")
	if !HasConflict(moved, []booking.Reservation{single, other}, courts()) {
		t.Fatal("self exclusion must not hide other bookings")
	}
}

func TestOverlapsOvernight(t *testing.T) {
	block := booking.AsOccurrence(reservation("b1", "court-c", "2024-06-10", "22:00", "02:00"))
	late := booking.AsOccurrence(reservation("r1", "court-c", "2024-06-10", "23:00", "23:30"))
	early := booking.AsOccurrence(reservation("r2", "court-c", "2024-06-10", "20:00", "22:00"))

	if !Overlaps(block, late) || !Overlaps(late, block) {
		t.Fatal("overnight block must cover the late evening")
	}
	if Overlaps(block, early) {
		t.Fatal("booking ending when the block starts must not overlap")
	}
}

func TestHasConflictUnknownCourtSeries(t *testing.T) {
	orphan := weekly(reservation("s1", "court-x", "2024-06-03", "18:00", "19:00"), "")
	if HasConflict(reservation("", "court-x", "2024-06-10", "18:00", "19:00"), []booking.Reservation{orphan}, courts()) {
		t.Fatal("a series on an unknown court expands to nothing")
	}
}
