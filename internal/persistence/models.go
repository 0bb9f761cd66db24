package persistence

import (
	"fmt"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

// CourtRecord is the persisted shape of a court. OpenDays is a bitmask with
// bit n set when time.Weekday(n) is open.
type CourtRecord struct {
	ID           string `json:"id"`
	VenueID      string `json:"venue_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	OpenDays     int    `json:"open_days"`
	WeekdayHours string `json:"weekday_hours"`
	WeekendHours string `json:"weekend_hours"`
	SlotMinutes  int    `json:"slot_minutes"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ReservationRecord is the persisted shape of a master reservation. Dates are
// YYYY-MM-DD and times HH:MM.
type ReservationRecord struct {
	ID                  string  `json:"id"`
	CourtID             string  `json:"court_id"`
	VenueID             string  `json:"venue_id"`
	ProfileID           string  `json:"profile_id,omitempty"`
	Date                string  `json:"date"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	Status              string  `json:"status"`
	Kind                string  `json:"kind"`
	ClientName          string  `json:"client_name,omitempty"`
	ClientPhone         string  `json:"client_phone,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	IsRecurring         bool    `json:"is_recurring"`
	RecurrenceFrequency string  `json:"recurrence_frequency,omitempty"`
	RecurrenceEndDate   *string `json:"recurrence_end_date,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// EncodeWeekdays packs open flags into a bitmask.
func EncodeWeekdays(flags booking.WeekdayFlags) int {
	mask := 0
	for i, open := range flags {
		if open {
			mask |= 1 << i
		}
	}
	return mask
}

// DecodeWeekdays unpacks a bitmask produced by EncodeWeekdays.
func DecodeWeekdays(mask int) booking.WeekdayFlags {
	var flags booking.WeekdayFlags
	for i := range flags {
		flags[i] = mask&(1<<i) != 0
	}
	return flags
}

// NewCourtRecord converts a court for storage.
func NewCourtRecord(c booking.Court) CourtRecord {
	return CourtRecord{
		ID:           c.ID,
		VenueID:      c.VenueID,
		Name:         c.Name,
		Status:       string(c.Status),
		OpenDays:     EncodeWeekdays(c.OpenDays),
		WeekdayHours: c.WeekdayHours,
		WeekendHours: c.WeekendHours,
		SlotMinutes:  c.SlotMinutes,
		CreatedAt:    formatTimestamp(c.CreatedAt),
		UpdatedAt:    formatTimestamp(c.UpdatedAt),
	}
}

// Court decodes the record.
func (r CourtRecord) Court() (booking.Court, error) {
	status, err := booking.ParseCourtStatus(r.Status)
	if err != nil {
		return booking.Court{}, corrupt("court", r.ID, err)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return booking.Court{}, corrupt("court", r.ID, err)
	}
	updated, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return booking.Court{}, corrupt("court", r.ID, err)
	}
	return booking.Court{
		ID:           r.ID,
		VenueID:      r.VenueID,
		Name:         r.Name,
		Status:       status,
		OpenDays:     DecodeWeekdays(r.OpenDays),
		WeekdayHours: r.WeekdayHours,
		WeekendHours: r.WeekendHours,
		SlotMinutes:  r.SlotMinutes,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}, nil
}

// NewReservationRecord converts a master reservation for storage.
func NewReservationRecord(r booking.Reservation) ReservationRecord {
	rec := ReservationRecord{
		ID:          r.ID,
		CourtID:     r.CourtID,
		VenueID:     r.VenueID,
		ProfileID:   r.ProfileID,
		Date:        calendar.FormatDate(r.Date),
		StartTime:   r.Start.String(),
		EndTime:     r.End.String(),
		Status:      string(r.Status),
		Kind:        string(r.Kind),
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Notes:       r.Notes,
		CreatedAt:   formatTimestamp(r.CreatedAt),
		UpdatedAt:   formatTimestamp(r.UpdatedAt),
	}
	if r.Recurrence != nil {
		rec.IsRecurring = true
		rec.RecurrenceFrequency = string(r.Recurrence.Frequency)
		if r.Recurrence.EndDate != nil {
			end := calendar.FormatDate(*r.Recurrence.EndDate)
			rec.RecurrenceEndDate = &end
		}
	}
	return rec
}

// Reservation decodes the record with dates at midnight in loc.
func (r ReservationRecord) Reservation(loc *time.Location) (booking.Reservation, error) {
	date, err := calendar.ParseDate(r.Date, loc)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	start, err := calendar.ParseClock(r.StartTime)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	end, err := calendar.ParseClock(r.EndTime)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	status, err := booking.ParseStatus(r.Status)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	kind, err := booking.ParseKind(r.Kind)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	created, err := parseTimestamp(r.CreatedAt)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}
	updated, err := parseTimestamp(r.UpdatedAt)
	if err != nil {
		return booking.Reservation{}, corrupt("reservation", r.ID, err)
	}

	out := booking.Reservation{
		ID:          r.ID,
		CourtID:     r.CourtID,
		VenueID:     r.VenueID,
		ProfileID:   r.ProfileID,
		Date:        date,
		Start:       start,
		End:         end,
		Status:      status,
		Kind:        kind,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Notes:       r.Notes,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
	if r.IsRecurring {
		rec := &booking.Recurrence{}
		if r.RecurrenceFrequency != "" {
			if rec.Frequency, err = booking.ParseFrequency(r.RecurrenceFrequency); err != nil {
				return booking.Reservation{}, corrupt("reservation", r.ID, err)
			}
		}
		if r.RecurrenceEndDate != nil && *r.RecurrenceEndDate != "" {
			endDate, err := calendar.ParseDate(*r.RecurrenceEndDate, loc)
			if err != nil {
				return booking.Reservation{}, corrupt("reservation", r.ID, err)
			}
			rec.EndDate = &endDate
		}
		out.Recurrence = rec
	}
	return out, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func corrupt(kind, id string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", ErrCorruptRecord, kind, id, err)
}
