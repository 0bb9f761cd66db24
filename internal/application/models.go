package application

import (
	"time"

	"github.com/example/court-booking/internal/booking"
)

// Principal is the identity acting on a venue. The zero value is anonymous.
type Principal struct {
	ProfileID string
	IsAdmin   bool
}

// IsAnonymous reports whether the principal carries no identity.
func (p Principal) IsAnonymous() bool {
	return !p.IsAdmin && p.ProfileID == ""
}

// RecurrenceInput describes a repeating series. EndDate is YYYY-MM-DD and
// optional.
type RecurrenceInput struct {
	Frequency string
	EndDate   string
}

// ReservationInput carries user supplied reservation fields in their wire
// formats: Date as YYYY-MM-DD, Start and End as HH:MM.
type ReservationInput struct {
	CourtID     string
	Date        string
	Start       string
	End         string
	Status      string
	Kind        string
	ProfileID   string
	ClientName  string
	ClientPhone string
	Notes       string
	Recurrence  *RecurrenceInput
}

// CreateReservationParams bundles the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	VenueID   string
	Input     ReservationInput
}

// UpdateReservationParams bundles the data required to edit a reservation.
// ReservationID may name the master or one of its occurrences.
type UpdateReservationParams struct {
	Principal     Principal
	VenueID       string
	ReservationID string
	Input         ReservationInput
}

// ListCalendarParams selects the occurrences shown on a calendar.
type ListCalendarParams struct {
	Principal Principal
	VenueID   string
	From      time.Time
	To        time.Time
	// CourtID narrows the result to one court when set.
	CourtID string
}

// SlotStatus is the bookability of one slot.
type SlotStatus string

const (
	SlotPast      SlotStatus = "past"
	SlotBooked    SlotStatus = "booked"
	SlotAvailable SlotStatus = "available"
)

// Slot is one quantised start time of a court's day. ReservationID names
// the occurrence holding a booked slot.
type Slot struct {
	Start         string
	Status        SlotStatus
	ReservationID string
}

// DayAvailability lists the slots of a court on one date.
type DayAvailability struct {
	Date  time.Time
	Slots []Slot
}

// CourtInput carries the administrable fields of a court.
type CourtInput struct {
	Name         string
	Status       string
	OpenDays     []string
	WeekdayHours string
	WeekendHours string
	SlotMinutes  int
}

// UpsertCourtParams bundles the data required to create or replace a court.
type UpsertCourtParams struct {
	Principal Principal
	VenueID   string
	CourtID   string
	Input     CourtInput
}

// Calendar is an expanded, sorted occurrence list for a window.
type Calendar struct {
	From        time.Time
	To          time.Time
	Occurrences []booking.Occurrence
}
