package recurrence

import (
	"strings"
	"time"

	"github.com/example/court-booking/internal/calendar"
)

const idSeparator = "_"

// OccurrenceID names a generated occurrence: master id, underscore, date.
func OccurrenceID(masterID string, date time.Time) string {
	return masterID + idSeparator + calendar.FormatDate(date)
}

// SplitOccurrenceID reverses OccurrenceID. ok is false for ids without a
// well formed date suffix, which are master ids.
func SplitOccurrenceID(id string) (masterID string, date string, ok bool) {
	i := strings.LastIndex(id, idSeparator)
	if i <= 0 {
		return "", "", false
	}
	suffix := id[i+1:]
	if _, err := calendar.ParseDate(suffix, time.UTC); err != nil {
		return "", "", false
	}
	return id[:i], suffix, true
}
