package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/court-booking/internal/calendar"
)

// Status is the lifecycle status of a reservation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a persisted status value.
func ParseStatus(value string) (Status, error) {
	switch s := Status(strings.TrimSpace(value)); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("booking: unknown reservation status %q", value)
	}
}

// Kind carries display semantics only; every kind occupies its slot.
type Kind string

const (
	KindNormal Kind = "normal"
	KindLesson Kind = "lesson"
	KindEvent  Kind = "event"
	KindBlock  Kind = "block"
)

// ParseKind validates a persisted kind value.
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(value)); k {
	case KindNormal, KindLesson, KindEvent, KindBlock:
		return k, nil
	default:
		return "", fmt.Errorf("booking: unknown reservation kind %q", value)
	}
}

// Frequency is the repetition unit of a recurring reservation.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// ParseFrequency validates a persisted frequency value.
func ParseFrequency(value string) (Frequency, error) {
	switch f := Frequency(strings.TrimSpace(value)); f {
	case FrequencyDaily, FrequencyWeekly:
		return f, nil
	default:
		return "", fmt.Errorf("booking: unknown recurrence frequency %q", value)
	}
}

// Recurrence describes how a master repeats after its anchor date.
type Recurrence struct {
	Frequency Frequency
	// EndDate is inclusive; nil means the series runs to the horizon.
	EndDate *time.Time
}

// EffectiveFrequency treats an unset frequency as weekly.
func (r Recurrence) EffectiveFrequency() Frequency {
	if r.Frequency == "" {
		return FrequencyWeekly
	}
	return r.Frequency
}

// Reservation is a stored master record. Date is the anchor date at local
// midnight; Start and End are wall-clock times on that date.
type Reservation struct {
	ID          string
	CourtID     string
	VenueID     string
	ProfileID   string
	Date        time.Time
	Start       calendar.Clock
	End         calendar.Clock
	Status      Status
	Kind        Kind
	ClientName  string
	ClientPhone string
	Notes       string
	Recurrence  *Recurrence
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRecurring reports whether the record repeats.
func (r Reservation) IsRecurring() bool {
	return r.Recurrence != nil
}

// IsCancelled reports the terminal status.
func (r Reservation) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// Interval returns the wall-clock instants of the reservation on its date.
// An end at or before the start is read as crossing midnight.
func (r Reservation) Interval() (time.Time, time.Time) {
	start := r.Start.On(r.Date)
	end := r.End.On(r.Date)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

// Clone returns a copy that shares no pointers with r.
func (r Reservation) Clone() Reservation {
	out := r
	if r.Recurrence != nil {
		rec := *r.Recurrence
		if rec.EndDate != nil {
			end := *rec.EndDate
			rec.EndDate = &end
		}
		out.Recurrence = &rec
	}
	return out
}

// CloneReservations deep copies a collection.
func CloneReservations(in []Reservation) []Reservation {
	if in == nil {
		return nil
	}
	out := make([]Reservation, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
