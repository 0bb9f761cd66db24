package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/persistence"
)

type reservationRepoStub struct {
	mu      sync.Mutex
	byVenue map[string][]booking.Reservation
	saves   int
	listErr error
	saveErr error
}

func (r *reservationRepoStub) ListByVenue(ctx context.Context, venueID string) ([]booking.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return booking.CloneReservations(r.byVenue[venueID]), nil
}

func (r *reservationRepoStub) Save(ctx context.Context, venueID string, reservations []booking.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.byVenue == nil {
		r.byVenue = make(map[string][]booking.Reservation)
	}
	r.byVenue[venueID] = booking.CloneReservations(reservations)
	r.saves++
	return nil
}

type courtRepoStub struct {
	courts   []booking.Court
	upserted []booking.Court
	err      error
}

func (c *courtRepoStub) ListCourts(ctx context.Context, venueID string) ([]booking.Court, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []booking.Court
	for _, court := range c.courts {
		if court.VenueID == venueID {
			out = append(out, court)
		}
	}
	return out, nil
}

func (c *courtRepoStub) GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error) {
	if c.err != nil {
		return booking.Court{}, c.err
	}
	for _, court := range c.courts {
		if court.VenueID == venueID && court.ID == courtID {
			return court, nil
		}
	}
	return booking.Court{}, persistence.ErrNotFound
}

func (c *courtRepoStub) UpsertCourt(ctx context.Context, court booking.Court) error {
	if c.err != nil {
		return c.err
	}
	c.upserted = append(c.upserted, court)
	return nil
}

const venue = "venue-1"

var (
	allWeek  = booking.WeekdayFlags{true, true, true, true, true, true, true}
	weekdays = booking.WeekdayFlags{false, true, true, true, true, true, false}
)

func testCourts() []booking.Court {
	return []booking.Court{
		{ID: "court-1", VenueID: venue, Name: "Quadra 1", Status: booking.CourtActive, OpenDays: allWeek,
			WeekdayHours: "08:00-22:00", WeekendHours: "08:00-20:00", SlotMinutes: 60},
		{ID: "court-2", VenueID: venue, Name: "Quadra 2", Status: booking.CourtActive, OpenDays: weekdays,
			WeekdayHours: "18:00-22:00", SlotMinutes: 60},
	}
}

func date(s string) time.Time { return calendar.MustParseDate(s, time.UTC) }

// weeklyMaster is confirmed every Monday 10:00-11:00 on court-1 from 2024-06-03.
func weeklyMaster() booking.Reservation {
	return booking.Reservation{
		ID:         "m1",
		CourtID:    "court-1",
		VenueID:    venue,
		ProfileID:  "profile-owner",
		Date:       date("2024-06-03"),
		Start:      calendar.MustParseClock("10:00"),
		End:        calendar.MustParseClock("11:00"),
		Status:     booking.StatusConfirmed,
		Kind:       booking.KindLesson,
		ClientName: "Ana",
		Recurrence: &booking.Recurrence{Frequency: booking.FrequencyWeekly},
	}
}

type serviceHarness struct {
	svc          *ReservationService
	reservations *reservationRepoStub
	courts       *courtRepoStub
	now          time.Time
}

// newHarness builds a service whose clock reads 2024-07-01 08:30 UTC, a Monday.
func newHarness(t *testing.T, existing ...booking.Reservation) *serviceHarness {
	t.Helper()
	h := &serviceHarness{
		reservations: &reservationRepoStub{byVenue: map[string][]booking.Reservation{venue: existing}},
		courts:       &courtRepoStub{courts: testCourts()},
		now:          time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC),
	}
	counter := 0
	ids := func() string {
		counter++
		return "res-" + string(rune('0'+counter))
	}
	h.svc = NewReservationService(h.reservations, h.courts, ids, func() time.Time { return h.now },
		ReservationServiceConfig{Location: time.UTC, MaxWindowDays: 62, CacheTTL: time.Minute})
	return h
}

var (
	admin  = Principal{IsAdmin: true}
	client = Principal{ProfileID: "profile-client"}
	owner  = Principal{ProfileID: "profile-owner"}
)

func expectValidation(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors[field]; !ok {
		t.Fatalf("expected field error for %s, got %v", field, vErr.FieldErrors)
	}
}

func TestCreateReservation_ClientBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.svc.CreateReservation(ctx, CreateReservationParams{
		Principal: client,
		VenueID:   venue,
		Input: ReservationInput{
			CourtID:    "court-1",
			Date:       "2024-07-01",
			Start:      "10:00",
			Status:     "confirmed",
			Kind:       "event",
			Recurrence: &RecurrenceInput{Frequency: "weekly"},
		},
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}

	if created.ID != "res-1" || created.ProfileID != "profile-client" || created.VenueID != venue {
		t.Fatalf("unexpected identity fields %+v", created)
	}
	if created.Status != booking.StatusPending || created.Kind != booking.KindNormal || created.IsRecurring() {
		t.Fatalf("client bookings must be pending normal one-offs, got %+v", created)
	}
	if created.End != calendar.MustParseClock("11:00") {
		t.Fatalf("expected end to default to one slot, got %s", created.End)
	}
	if !created.CreatedAt.Equal(h.now) {
		t.Fatalf("expected CreatedAt %v, got %v", h.now, created.CreatedAt)
	}
	if h.reservations.saves != 1 || len(h.reservations.byVenue[venue]) != 1 {
		t.Fatalf("expected the collection to be saved once with one entry")
	}
}

func TestCreateReservation_Rejections(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		principal Principal
		input     ReservationInput
		field     string
		sentinel  error
	}{
		{name: "anonymous", principal: Principal{}, input: ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "10:00"}, sentinel: ErrUnauthorized},
		{name: "missing fields", principal: admin, input: ReservationInput{}, field: "court_id"},
		{name: "bad date", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "01/07/2024", Start: "10:00"}, field: "date"},
		{name: "bad time", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "10h"}, field: "start_time"},
		{name: "unknown court", principal: admin, input: ReservationInput{CourtID: "court-9", Date: "2024-07-01", Start: "10:00"}, field: "court_id"},
		{name: "end before start", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "10:00", End: "09:00"}, field: "end_time"},
		{name: "past", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-06-30", Start: "10:00"}, field: "start_time"},
		{name: "earlier today", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "08:00"}, field: "start_time"},
		{name: "client off slot", principal: client, input: ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "10:30"}, field: "start_time"},
		{name: "recurrence end before anchor", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-07-02", Start: "10:00",
			Recurrence: &RecurrenceInput{Frequency: "weekly", EndDate: "2024-07-01"}}, field: "recurrence_end_date"},
		{name: "recurring on closed weekday", principal: admin, input: ReservationInput{CourtID: "court-2", Date: "2024-07-06", Start: "18:00",
			Recurrence: &RecurrenceInput{Frequency: "weekly"}}, field: "date"},
		{name: "bad frequency", principal: admin, input: ReservationInput{CourtID: "court-1", Date: "2024-07-02", Start: "10:00",
			Recurrence: &RecurrenceInput{Frequency: "monthly"}}, field: "recurrence_frequency"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			_, err := h.svc.CreateReservation(ctx, CreateReservationParams{Principal: tc.principal, VenueID: venue, Input: tc.input})
			if tc.sentinel != nil {
				if !errors.Is(err, tc.sentinel) {
					t.Fatalf("expected %v, got %v", tc.sentinel, err)
				}
			} else {
				expectValidation(t, err, tc.field)
			}
			if h.reservations.saves != 0 {
				t.Fatalf("rejected request must not be saved")
			}
		})
	}
}

func TestCreateReservation_ConflictWithSeries(t *testing.T) {
	h := newHarness(t, weeklyMaster())

	_, err := h.svc.CreateReservation(context.Background(), CreateReservationParams{
		Principal: client,
		VenueID:   venue,
		Input:     ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "10:00"},
	})

	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cErr.Existing.ID != "m1_2024-07-01" || cErr.Existing.MasterID() != "m1" {
		t.Fatalf("expected clash with m1_2024-07-01, got %s", cErr.Existing.ID)
	}

	// The next slot is free.
	if _, err := h.svc.CreateReservation(context.Background(), CreateReservationParams{
		Principal: client,
		VenueID:   venue,
		Input:     ReservationInput{CourtID: "court-1", Date: "2024-07-01", Start: "11:00"},
	}); err != nil {
		t.Fatalf("expected back-to-back booking to succeed, got %v", err)
	}
}

func TestCreateReservation_AdminRecurringSeries(t *testing.T) {
	h := newHarness(t)

	created, err := h.svc.CreateReservation(context.Background(), CreateReservationParams{
		Principal: admin,
		VenueID:   venue,
		Input: ReservationInput{
			CourtID:    "court-2",
			Date:       "2024-07-02",
			Start:      "19:00",
			End:        "20:30",
			Kind:       "block",
			Recurrence: &RecurrenceInput{Frequency: "daily", EndDate: "2024-07-31"},
		},
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if created.Status != booking.StatusConfirmed || created.Kind != booking.KindBlock {
		t.Fatalf("unexpected status or kind %+v", created)
	}
	if !created.IsRecurring() || created.Recurrence.Frequency != booking.FrequencyDaily || !created.Recurrence.EndDate.Equal(date("2024-07-31")) {
		t.Fatalf("unexpected recurrence %+v", created.Recurrence)
	}
}

func TestUpdateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("occurrence id edits the series", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		updated, err := h.svc.UpdateReservation(ctx, UpdateReservationParams{
			Principal:     admin,
			VenueID:       venue,
			ReservationID: "m1_2024-07-08",
			Input:         ReservationInput{Start: "10:30", End: "11:30"},
		})
		if err != nil {
			t.Fatalf("UpdateReservation: %v", err)
		}
		if updated.ID != "m1" || updated.Start != calendar.MustParseClock("10:30") {
			t.Fatalf("expected master m1 moved to 10:30, got %+v", updated)
		}
		if updated.ClientName != "Ana" || !updated.IsRecurring() {
			t.Fatalf("untouched fields must be kept, got %+v", updated)
		}
		stored := h.reservations.byVenue[venue][0]
		if stored.Start != updated.Start || !stored.UpdatedAt.Equal(h.now) {
			t.Fatalf("update not persisted: %+v", stored)
		}
	})

	t.Run("conflict with another master", func(t *testing.T) {
		other := weeklyMaster()
		other.ID = "m2"
		other.Start = calendar.MustParseClock("12:00")
		other.End = calendar.MustParseClock("13:00")
		h := newHarness(t, weeklyMaster(), other)

		_, err := h.svc.UpdateReservation(ctx, UpdateReservationParams{
			Principal:     admin,
			VenueID:       venue,
			ReservationID: "m2",
			Input:         ReservationInput{Start: "10:30", End: "11:30"},
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("clients cannot edit", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		_, err := h.svc.UpdateReservation(ctx, UpdateReservationParams{Principal: owner, VenueID: venue, ReservationID: "m1"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		_, err := h.svc.UpdateReservation(ctx, UpdateReservationParams{Principal: admin, VenueID: venue, ReservationID: "nope_2024-07-08"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("frequency none ends the series", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		updated, err := h.svc.UpdateReservation(ctx, UpdateReservationParams{
			Principal:     admin,
			VenueID:       venue,
			ReservationID: "m1",
			Input:         ReservationInput{Recurrence: &RecurrenceInput{Frequency: "none"}},
		})
		if err != nil {
			t.Fatalf("UpdateReservation: %v", err)
		}
		if updated.IsRecurring() {
			t.Fatalf("expected one-off booking, got %+v", updated.Recurrence)
		}
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("other clients are forbidden", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		if _, err := h.svc.CancelReservation(ctx, client, venue, "m1"); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("owner cancels the series through an occurrence", func(t *testing.T) {
		h := newHarness(t, weeklyMaster())
		cancelled, err := h.svc.CancelReservation(ctx, owner, venue, "m1_2024-07-15")
		if err != nil {
			t.Fatalf("CancelReservation: %v", err)
		}
		if cancelled.ID != "m1" || !cancelled.IsCancelled() {
			t.Fatalf("expected cancelled master, got %+v", cancelled)
		}

		again, err := h.svc.CancelReservation(ctx, admin, venue, "m1")
		if err != nil || !again.IsCancelled() {
			t.Fatalf("second cancel should be a no-op, got %+v, %v", again, err)
		}
		if h.reservations.saves != 1 {
			t.Fatalf("expected a single save, got %d", h.reservations.saves)
		}

		slots, err := h.svc.SlotAvailability(ctx, venue, "court-1", date("2024-07-15"))
		if err != nil {
			t.Fatalf("SlotAvailability: %v", err)
		}
		for _, slot := range slots.Slots {
			if slot.Status == SlotBooked {
				t.Fatalf("cancelled series must free its slots, %s is booked", slot.Start)
			}
		}
	})
}

func TestGetReservation(t *testing.T) {
	h := newHarness(t, weeklyMaster())
	ctx := context.Background()

	if _, err := h.svc.GetReservation(ctx, Principal{}, venue, "m1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := h.svc.GetReservation(ctx, client, venue, "m1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	got, err := h.svc.GetReservation(ctx, owner, venue, "m1_2024-06-10")
	if err != nil || got.ID != "m1" {
		t.Fatalf("expected master m1, got %+v, %v", got, err)
	}
}

func TestListCalendar(t *testing.T) {
	single := booking.Reservation{
		ID: "s1", CourtID: "court-2", VenueID: venue, ProfileID: "profile-client",
		Date: date("2024-07-08"), Start: calendar.MustParseClock("10:00"), End: calendar.MustParseClock("11:00"),
		Status: booking.StatusPending, Kind: booking.KindNormal, ClientName: "Bia",
	}
	h := newHarness(t, weeklyMaster(), single)
	ctx := context.Background()

	cal, err := h.svc.ListCalendar(ctx, ListCalendarParams{Principal: client, VenueID: venue, From: date("2024-07-01"), To: date("2024-07-14")})
	if err != nil {
		t.Fatalf("ListCalendar: %v", err)
	}
	var ids []string
	for _, o := range cal.Occurrences {
		ids = append(ids, o.ID)
	}
	want := []string{"m1_2024-07-01", "m1_2024-07-08", "s1"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
	if cal.Occurrences[0].ClientName != "" {
		t.Fatalf("other clients' names must be hidden")
	}
	if cal.Occurrences[2].ClientName != "Bia" {
		t.Fatalf("own booking details must be visible")
	}

	t.Run("court filter", func(t *testing.T) {
		cal, err := h.svc.ListCalendar(ctx, ListCalendarParams{Principal: admin, VenueID: venue, From: date("2024-07-01"), To: date("2024-07-14"), CourtID: "court-2"})
		if err != nil || len(cal.Occurrences) != 1 || cal.Occurrences[0].ID != "s1" {
			t.Fatalf("expected only s1, got %+v, %v", cal.Occurrences, err)
		}
	})

	t.Run("window bounds", func(t *testing.T) {
		_, err := h.svc.ListCalendar(ctx, ListCalendarParams{VenueID: venue, From: date("2024-07-01"), To: date("2024-09-30")})
		expectValidation(t, err, "to")
		_, err = h.svc.ListCalendar(ctx, ListCalendarParams{VenueID: venue, From: date("2024-07-10"), To: date("2024-07-01")})
		expectValidation(t, err, "to")
	})

	t.Run("writes invalidate the cache", func(t *testing.T) {
		if _, err := h.svc.CreateReservation(ctx, CreateReservationParams{
			Principal: client,
			VenueID:   venue,
			Input:     ReservationInput{CourtID: "court-1", Date: "2024-07-02", Start: "09:00"},
		}); err != nil {
			t.Fatalf("CreateReservation: %v", err)
		}
		cal, err := h.svc.ListCalendar(ctx, ListCalendarParams{Principal: admin, VenueID: venue, From: date("2024-07-01"), To: date("2024-07-14")})
		if err != nil || len(cal.Occurrences) != 4 {
			t.Fatalf("expected the new booking to show up, got %d occurrences, %v", len(cal.Occurrences), err)
		}
	})
}

func TestUpcomingForProfile(t *testing.T) {
	pending := booking.Reservation{
		ID: "p1", CourtID: "court-1", VenueID: venue, ProfileID: "profile-owner",
		Date: date("2024-07-03"), Start: calendar.MustParseClock("09:00"), End: calendar.MustParseClock("10:00"),
		Status: booking.StatusPending, Kind: booking.KindNormal,
	}
	h := newHarness(t, weeklyMaster(), pending)
	ctx := context.Background()

	if _, err := h.svc.UpcomingForProfile(ctx, client, venue, "profile-owner"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	upcoming, err := h.svc.UpcomingForProfile(ctx, owner, venue, "profile-owner")
	if err != nil {
		t.Fatalf("UpcomingForProfile: %v", err)
	}
	if len(upcoming) == 0 || upcoming[0].ID != "m1_2024-07-01" {
		t.Fatalf("expected the series to start today, got %+v", upcoming)
	}
	for _, o := range upcoming {
		if o.Status != booking.StatusConfirmed || o.ID == "p1" {
			t.Fatalf("only confirmed occurrences are upcoming, got %s", o.ID)
		}
	}
}

func TestSlotAvailability(t *testing.T) {
	h := newHarness(t, weeklyMaster())
	ctx := context.Background()

	day, err := h.svc.SlotAvailability(ctx, venue, "court-1", date("2024-07-01"))
	if err != nil {
		t.Fatalf("SlotAvailability: %v", err)
	}
	if len(day.Slots) != 14 {
		t.Fatalf("expected 14 slots, got %d", len(day.Slots))
	}
	expect := map[string]SlotStatus{"08:00": SlotPast, "09:00": SlotAvailable, "10:00": SlotBooked, "11:00": SlotAvailable}
	for _, slot := range day.Slots {
		if want, ok := expect[slot.Start]; ok && slot.Status != want {
			t.Errorf("slot %s: expected %s, got %s", slot.Start, want, slot.Status)
		}
		if slot.Start == "10:00" && slot.ReservationID != "m1_2024-07-01" {
			t.Errorf("booked slot should name its occurrence, got %q", slot.ReservationID)
		}
	}

	if _, err := h.svc.SlotAvailability(ctx, venue, "court-9", date("2024-07-01")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown court, got %v", err)
	}
}

func TestPublicAvailability(t *testing.T) {
	h := newHarness(t)

	days, err := h.svc.PublicAvailability(context.Background(), venue, "court-2")
	if err != nil {
		t.Fatalf("PublicAvailability: %v", err)
	}
	if len(days) != PublicHorizonDays {
		t.Fatalf("expected %d days, got %d", PublicHorizonDays, len(days))
	}
	if !calendar.SameDay(days[0].Date, h.now) {
		t.Fatalf("expected the horizon to start today, got %s", calendar.FormatDate(days[0].Date))
	}
	// court-2 is closed on weekends: 2024-07-06 and 2024-07-07.
	if len(days[5].Slots) != 0 || len(days[6].Slots) != 0 {
		t.Fatalf("expected no weekend slots")
	}
	if len(days[1].Slots) != 4 {
		t.Fatalf("expected 4 evening slots on Tuesday, got %d", len(days[1].Slots))
	}
}

func TestOccupancy(t *testing.T) {
	h := newHarness(t, weeklyMaster())
	ctx := context.Background()

	daily, err := h.svc.DailyOccupancy(ctx, venue, date("2024-07-01"), "court-1")
	if err != nil {
		t.Fatalf("DailyOccupancy: %v", err)
	}
	if daily.Booked != 1 || daily.Total != 14 || math.Abs(daily.Rate-100.0/14) > 1e-9 {
		t.Fatalf("unexpected daily occupancy %+v", daily)
	}

	month, err := h.svc.MonthlyOccupancy(ctx, venue, date("2024-07-15"), "all")
	if err != nil {
		t.Fatalf("MonthlyOccupancy: %v", err)
	}
	// Mondays in July 2024: 1, 8, 15, 22, 29.
	if month.Bookings != 5 {
		t.Fatalf("expected 5 bookings in July, got %d", month.Bookings)
	}
	if len(month.Days)%7 != 0 {
		t.Fatalf("grid must hold whole weeks, got %d days", len(month.Days))
	}
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("disk on fire")
	h.reservations.saveErr = boom

	_, err := h.svc.CreateReservation(context.Background(), CreateReservationParams{
		Principal: admin,
		VenueID:   venue,
		Input:     ReservationInput{CourtID: "court-1", Date: "2024-07-02", Start: "10:00"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected repository error, got %v", err)
	}
	if ErrorKind(err) != "unexpected" {
		t.Fatalf("expected unexpected error kind, got %q", ErrorKind(err))
	}
}
