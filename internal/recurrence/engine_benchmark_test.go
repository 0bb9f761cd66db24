package recurrence

import (
	"fmt"
	"testing"

	"github.com/example/court-booking/internal/booking"
)

func BenchmarkEngineExpandMonth(b *testing.B) {
	engine := NewEngine()
	courts := []booking.Court{court("court-1", notSundays)}

	masters := make([]booking.Reservation, 0, 50)
	for i := 0; i < 50; i++ {
		freq := booking.FrequencyWeekly
		if i%2 == 0 {
			freq = booking.FrequencyDaily
		}
		masters = append(masters, master(fmt.Sprintf("m%d", i), "2024-01-02", freq, ""))
	}
	from, to := day("2024-06-01"), day("2024-06-30")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if occs := engine.Expand(masters, from, to, courts); len(occs) == 0 {
			b.Fatal("expected occurrences to be generated")
		}
	}
}
