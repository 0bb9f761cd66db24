package booking

import (
	"testing"
	"time"

	"github.com/example/court-booking/internal/calendar"
)

func TestParseEnums(t *testing.T) {
	if s, err := ParseStatus("confirmed"); err != nil || s != StatusConfirmed {
		t.Fatalf("ParseStatus = %v, %v", s, err)
	}
	if _, err := ParseStatus("confirmada"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if k, err := ParseKind(" block "); err != nil || k != KindBlock {
		t.Fatalf("ParseKind = %v, %v", k, err)
	}
	if _, err := ParseKind("tournament"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if f, err := ParseFrequency("daily"); err != nil || f != FrequencyDaily {
		t.Fatalf("ParseFrequency = %v, %v", f, err)
	}
	if _, err := ParseFrequency("monthly"); err == nil {
		t.Fatal("expected error for unsupported frequency")
	}
	if c, err := ParseCourtStatus("maintenance"); err != nil || c != CourtMaintenance {
		t.Fatalf("ParseCourtStatus = %v, %v", c, err)
	}
}

func TestRecurrenceDefaultsToWeekly(t *testing.T) {
	if got := (Recurrence{}).EffectiveFrequency(); got != FrequencyWeekly {
		t.Fatalf("EffectiveFrequency = %s", got)
	}
	if got := (Recurrence{Frequency: FrequencyDaily}).EffectiveFrequency(); got != FrequencyDaily {
		t.Fatalf("EffectiveFrequency = %s", got)
	}
}

func TestReservationInterval(t *testing.T) {
	day := calendar.MustParseDate("2024-06-10", time.UTC)

	r := Reservation{Date: day, Start: calendar.MustParseClock("10:00"), End: calendar.MustParseClock("11:30")}
	start, end := r.Interval()
	if end.Sub(start) != 90*time.Minute {
		t.Fatalf("unexpected span %v", end.Sub(start))
	}

	overnight := Reservation{Date: day, Start: calendar.MustParseClock("22:00"), End: calendar.MustParseClock("02:00")}
	start, end = overnight.Interval()
	if end.Sub(start) != 4*time.Hour || !calendar.SameDay(start, day) {
		t.Fatalf("expected overnight span of 4h starting on the date, got %v..%v", start, end)
	}

	zero := Reservation{Date: day, Start: calendar.MustParseClock("09:00"), End: calendar.MustParseClock("09:00")}
	start, end = zero.Interval()
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("expected equal start and end to span a full day, got %v", end.Sub(start))
	}
}

func TestCloneDoesNotShareRecurrence(t *testing.T) {
	endDate := calendar.MustParseDate("2024-12-31", time.UTC)
	original := Reservation{ID: "r1", Recurrence: &Recurrence{Frequency: FrequencyWeekly, EndDate: &endDate}}

	copies := CloneReservations([]Reservation{original})
	copies[0].Recurrence.Frequency = FrequencyDaily
	*copies[0].Recurrence.EndDate = endDate.AddDate(1, 0, 0)

	if original.Recurrence.Frequency != FrequencyWeekly {
		t.Fatal("clone shares recurrence")
	}
	if !original.Recurrence.EndDate.Equal(endDate) {
		t.Fatal("clone shares end date")
	}
	if CloneReservations(nil) != nil {
		t.Fatal("expected nil clone of nil")
	}
}

func TestOrigin(t *testing.T) {
	anchor := AsOccurrence(Reservation{ID: "m1"})
	if anchor.MasterID() != "m1" {
		t.Fatalf("anchor MasterID = %s", anchor.MasterID())
	}
	if _, ok := anchor.Origin.Derived(); ok {
		t.Fatal("anchor must not carry a back-reference")
	}
	if (Origin{}).Kind() != OriginAnchor {
		t.Fatal("zero origin must be an anchor")
	}

	derived := Occurrence{Reservation: Reservation{ID: "m1_2024-06-17"}, Origin: DerivedFrom("m1")}
	if derived.MasterID() != "m1" || derived.Origin.Kind().String() != "derived" {
		t.Fatalf("derived occurrence resolved to %s", derived.MasterID())
	}
}

func TestCourtHelpers(t *testing.T) {
	court := Court{ID: "c1", Status: CourtActive, OpenDays: WeekdayFlags{false, true, true, true, true, true, false}}
	if !court.IsActive() {
		t.Fatal("expected active")
	}
	monday := calendar.MustParseDate("2024-06-03", time.UTC)
	if !court.OpenOn(monday) || court.OpenOn(monday.AddDate(0, 0, 6)) {
		t.Fatal("OpenOn mismatch")
	}
	days := court.OpenDays.OpenWeekdays()
	if len(days) != 5 || days[0] != time.Monday || days[4] != time.Friday {
		t.Fatalf("OpenWeekdays = %v", days)
	}
	idx := IndexCourts([]Court{court})
	if _, ok := idx["c1"]; !ok {
		t.Fatal("expected court in index")
	}
}
