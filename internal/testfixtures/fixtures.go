package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/court-booking/internal/application"
	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
)

var (
	courtCounter       uint64
	reservationCounter uint64
)

// VenueID is the venue every fixture belongs to unless overridden.
const VenueID = "venue-001"

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Court fixtures -----------------------------

// CourtFixture is a deterministic court: active, open every day, 08:00-22:00
// on weekdays and 08:00-20:00 on weekends, hourly slots.
type CourtFixture struct {
	Court booking.Court
}

// CourtOption configures the generated court fixture.
type CourtOption func(*CourtFixture)

// NewCourtFixture returns a deterministic court fixture with optional overrides.
func NewCourtFixture(opts ...CourtOption) CourtFixture {
	idx := atomic.AddUint64(&courtCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := CourtFixture{Court: booking.Court{
		ID:           fmt.Sprintf("court-%03d", idx),
		VenueID:      VenueID,
		Name:         fmt.Sprintf("Court %03d", idx),
		Status:       booking.CourtActive,
		OpenDays:     booking.WeekdayFlags{true, true, true, true, true, true, true},
		WeekdayHours: "08:00-22:00",
		WeekendHours: "08:00-20:00",
		SlotMinutes:  60,
		CreatedAt:    created,
		UpdatedAt:    created,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCourtID overrides the generated court ID.
func WithCourtID(id string) CourtOption {
	return func(f *CourtFixture) { f.Court.ID = id }
}

// WithCourtVenue overrides the venue.
func WithCourtVenue(venueID string) CourtOption {
	return func(f *CourtFixture) { f.Court.VenueID = venueID }
}

// WithCourtStatus overrides the operating status.
func WithCourtStatus(status booking.CourtStatus) CourtOption {
	return func(f *CourtFixture) { f.Court.Status = status }
}

// WithCourtOpenDays opens only the given weekdays.
func WithCourtOpenDays(days ...time.Weekday) CourtOption {
	return func(f *CourtFixture) {
		f.Court.OpenDays = booking.WeekdayFlags{}
		for _, d := range days {
			f.Court.OpenDays[d] = true
		}
	}
}

// WithCourtHours overrides the weekday and weekend hour strings.
func WithCourtHours(weekday, weekend string) CourtOption {
	return func(f *CourtFixture) {
		f.Court.WeekdayHours = weekday
		f.Court.WeekendHours = weekend
	}
}

// WithCourtSlotMinutes overrides the slot duration.
func WithCourtSlotMinutes(minutes int) CourtOption {
	return func(f *CourtFixture) { f.Court.SlotMinutes = minutes }
}

// Domain returns the booking representation.
func (f CourtFixture) Domain() booking.Court {
	return f.Court
}

// Input returns the application input that would produce the court.
func (f CourtFixture) Input() application.CourtInput {
	var open []string
	for _, d := range f.Court.OpenDays.OpenWeekdays() {
		open = append(open, calendar.WeekdayName(d))
	}
	return application.CourtInput{
		Name:         f.Court.Name,
		Status:       string(f.Court.Status),
		OpenDays:     open,
		WeekdayHours: f.Court.WeekdayHours,
		WeekendHours: f.Court.WeekendHours,
		SlotMinutes:  f.Court.SlotMinutes,
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture is a deterministic confirmed one-off booking on
// 2024-07-01 from 10:00 to 11:00.
type ReservationFixture struct {
	Reservation booking.Reservation
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with optional overrides.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ReservationFixture{Reservation: booking.Reservation{
		ID:         fmt.Sprintf("reservation-%03d", idx),
		CourtID:    "court-001",
		VenueID:    VenueID,
		ProfileID:  fmt.Sprintf("profile-%03d", idx),
		Date:       calendar.MustParseDate("2024-07-01", time.UTC),
		Start:      calendar.MustParseClock("10:00"),
		End:        calendar.MustParseClock("11:00"),
		Status:     booking.StatusConfirmed,
		Kind:       booking.KindNormal,
		ClientName: fmt.Sprintf("Client %03d", idx),
		CreatedAt:  created,
		UpdatedAt:  created,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.Reservation.ID = id }
}

// WithReservationCourt overrides the court.
func WithReservationCourt(courtID string) ReservationOption {
	return func(f *ReservationFixture) { f.Reservation.CourtID = courtID }
}

// WithReservationProfile overrides the owning profile.
func WithReservationProfile(profileID string) ReservationOption {
	return func(f *ReservationFixture) { f.Reservation.ProfileID = profileID }
}

// WithReservationSlot sets date (YYYY-MM-DD) and times (HH:MM) in loc.
func WithReservationSlot(date, start, end string, loc *time.Location) ReservationOption {
	return func(f *ReservationFixture) {
		f.Reservation.Date = calendar.MustParseDate(date, loc)
		f.Reservation.Start = calendar.MustParseClock(start)
		f.Reservation.End = calendar.MustParseClock(end)
	}
}

// WithReservationStatus overrides the status.
func WithReservationStatus(status booking.Status) ReservationOption {
	return func(f *ReservationFixture) { f.Reservation.Status = status }
}

// WithReservationKind overrides the kind.
func WithReservationKind(kind booking.Kind) ReservationOption {
	return func(f *ReservationFixture) { f.Reservation.Kind = kind }
}

// WithRecurrence makes the reservation a series. An empty until leaves it
// open ended.
func WithRecurrence(freq booking.Frequency, until string) ReservationOption {
	return func(f *ReservationFixture) {
		rec := &booking.Recurrence{Frequency: freq}
		if until != "" {
			end := calendar.MustParseDate(until, f.Reservation.Date.Location())
			rec.EndDate = &end
		}
		f.Reservation.Recurrence = rec
	}
}

// Domain returns the booking representation.
func (f ReservationFixture) Domain() booking.Reservation {
	return f.Reservation.Clone()
}

// Input returns the application input that would produce the reservation.
func (f ReservationFixture) Input() application.ReservationInput {
	r := f.Reservation
	in := application.ReservationInput{
		CourtID:     r.CourtID,
		Date:        calendar.FormatDate(r.Date),
		Start:       r.Start.String(),
		End:         r.End.String(),
		Status:      string(r.Status),
		Kind:        string(r.Kind),
		ProfileID:   r.ProfileID,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		Notes:       r.Notes,
	}
	if r.Recurrence != nil {
		in.Recurrence = &application.RecurrenceInput{Frequency: string(r.Recurrence.Frequency)}
		if r.Recurrence.EndDate != nil {
			in.Recurrence.EndDate = calendar.FormatDate(*r.Recurrence.EndDate)
		}
	}
	return in
}
