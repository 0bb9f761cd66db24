package testfixtures

import (
	"testing"
	"time"

	"github.com/example/court-booking/internal/calendar"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockSetAtAndAdvance(t *testing.T) {
	clock := NewClockAt("2024-07-01", "08:30", time.UTC)
	if want := time.Date(2024, time.July, 1, 8, 30, 0, 0, time.UTC); !clock.Now().Equal(want) {
		t.Fatalf("expected %v, got %v", want, clock.Now())
	}

	if got := clock.Advance(90 * time.Minute); got.Hour() != 10 || got.Minute() != 0 {
		t.Fatalf("advance returned %v", got)
	}

	got := clock.AdvanceDays(3)
	if calendar.FormatDate(got) != "2024-07-04" || calendar.ClockOf(got).String() != "10:00" {
		t.Fatalf("AdvanceDays returned %v", got)
	}
	if calendar.FormatDate(clock.Today()) != "2024-07-04" || clock.Today().Hour() != 0 {
		t.Fatalf("Today = %v", clock.Today())
	}
}

func TestClockNowFunc(t *testing.T) {
	clock := NewClockAt("2024-01-01", "00:00", time.UTC)
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(clock.Now()) {
		t.Fatalf("expected updated time %v, got %v", clock.Now(), got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatal("nil clock must still provide a time source")
	}
}
