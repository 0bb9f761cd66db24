package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/calendar"
	"github.com/example/court-booking/internal/occupancy"
	"github.com/example/court-booking/internal/persistence"
	"github.com/example/court-booking/internal/recurrence"
	"github.com/example/court-booking/internal/schedule"
	"github.com/example/court-booking/internal/scheduler"
)

const (
	// DefaultMaxWindowDays bounds calendar reads when no limit is configured.
	DefaultMaxWindowDays = 366
	// PublicHorizonDays is how many days, today included, the public
	// availability view covers.
	PublicHorizonDays = 7

	pastTolerance = time.Minute
)

var tracer = otel.Tracer("github.com/example/court-booking/internal/application")

// ReservationRepository captures the persistence interactions needed by the service.
type ReservationRepository interface {
	ListByVenue(ctx context.Context, venueID string) ([]booking.Reservation, error)
	Save(ctx context.Context, venueID string, reservations []booking.Reservation) error
}

// CourtRepository exposes court lookup and storage.
type CourtRepository interface {
	ListCourts(ctx context.Context, venueID string) ([]booking.Court, error)
	GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error)
	UpsertCourt(ctx context.Context, court booking.Court) error
}

// ReservationServiceConfig tunes a ReservationService. Zero values select
// the defaults.
type ReservationServiceConfig struct {
	Location      *time.Location
	Horizon       recurrence.Horizon
	MaxWindowDays int
	CacheTTL      time.Duration
	// DisableCache turns off the calendar cache; CacheTTL is then ignored.
	DisableCache  bool
	Logger        *slog.Logger
}

// ReservationService orchestrates validation, conflict detection and
// persistence for reservations. Each write reads the venue's whole
// collection, checks it and writes it back while holding the venue lock.
type ReservationService struct {
	reservations ReservationRepository
	courts       CourtRepository
	engine       *recurrence.Engine
	detector     *scheduler.Detector
	resolver     *schedule.Resolver
	idGenerator  func() string
	now          func() time.Time
	loc          *time.Location
	maxWindow    int
	cache        *calendarCache
	locks        venueLocks
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, courts CourtRepository, idGenerator func() string, now func() time.Time, cfg ReservationServiceConfig) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = DefaultMaxWindowDays
	}
	logger := defaultLogger(cfg.Logger)

	engineOpts := []recurrence.Option{recurrence.WithLogger(logger)}
	if cfg.Horizon != (recurrence.Horizon{}) {
		engineOpts = append(engineOpts, recurrence.WithHorizon(cfg.Horizon))
	}
	engine := recurrence.NewEngine(engineOpts...)

	var cache *calendarCache
	if !cfg.DisableCache {
		cache = newCalendarCache(cfg.CacheTTL, 0, now)
	}

	return &ReservationService{
		reservations: reservations,
		courts:       courts,
		engine:       engine,
		detector:     scheduler.NewDetector(engine),
		resolver:     schedule.NewResolver(logger),
		idGenerator:  idGenerator,
		now:          now,
		loc:          cfg.Location,
		maxWindow:    cfg.MaxWindowDays,
		cache:        cache,
		logger:       logger,
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// CreateReservation validates the request, rejects overlaps and stores the
// new master. Clients can only book a pending, normal, one-off slot for
// themselves.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (created booking.Reservation, err error) {
	if s == nil {
		return booking.Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	ctx, span := startSpan(ctx, "ReservationService.CreateReservation", params.VenueID)
	started := time.Now()
	logger := s.loggerWith(ctx, "CreateReservation",
		"venue_id", params.VenueID,
		"court_id", params.Input.CourtID,
		"admin", params.Principal.IsAdmin,
	)
	defer func() {
		finish(ctx, logger, span, started, err, "reservation created", "reservation_id", created.ID)
	}()

	principal := params.Principal
	if principal.IsAnonymous() {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if !principal.IsAdmin {
		input.Status = string(booking.StatusPending)
		input.Kind = string(booking.KindNormal)
		input.Recurrence = nil
		input.ProfileID = principal.ProfileID
	}

	vErr := &ValidationError{}
	requireField(vErr, "venue_id", params.VenueID)
	requireField(vErr, "court_id", input.CourtID)
	requireField(vErr, "date", input.Date)
	requireField(vErr, "start_time", input.Start)

	base := booking.Reservation{Status: booking.StatusConfirmed, Kind: booking.KindNormal}
	candidate, endGiven := applyInput(base, input, s.loc, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	unlock := s.locks.lock(params.VenueID)
	defer unlock()

	courts, existing, err := s.loadVenue(ctx, params.VenueID)
	if err != nil {
		return
	}
	court, ok := booking.IndexCourts(courts)[candidate.CourtID]
	if !ok {
		vErr.add("court_id", "court does not exist in this venue")
		err = vErr
		return
	}

	now := s.now()
	candidate.ID = s.idGenerator()
	candidate.VenueID = params.VenueID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if !endGiven {
		candidate.End = candidate.Start.Add(schedule.SlotMinutes(court))
	}

	s.validateTiming(candidate, court, true, vErr)
	if !principal.IsAdmin && !slices.Contains(s.resolver.TimeSlotsForDate(court, candidate.Date), candidate.Start.String()) {
		vErr.add("start_time", "not a bookable slot for this court")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if conflict, found := s.detector.FindConflict(candidate, existing, courts); found {
		err = &ConflictError{Existing: conflict.Existing}
		return
	}

	if err = s.save(ctx, params.VenueID, append(booking.CloneReservations(existing), candidate)); err != nil {
		return
	}
	created = candidate
	return
}

// UpdateReservation edits a master. ReservationID may be an occurrence id, in
// which case its whole series is edited. Empty input fields keep their values.
func (s *ReservationService) UpdateReservation(ctx context.Context, params UpdateReservationParams) (updated booking.Reservation, err error) {
	if s == nil {
		return booking.Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	ctx, span := startSpan(ctx, "ReservationService.UpdateReservation", params.VenueID)
	started := time.Now()
	logger := s.loggerWith(ctx, "UpdateReservation",
		"venue_id", params.VenueID,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		finish(ctx, logger, span, started, err, "reservation updated", "master_id", updated.ID)
	}()

	if err = requireAdmin(params.Principal); err != nil {
		return
	}

	unlock := s.locks.lock(params.VenueID)
	defer unlock()

	courts, existing, err := s.loadVenue(ctx, params.VenueID)
	if err != nil {
		return
	}
	idx, ok := findMaster(existing, params.ReservationID)
	if !ok {
		err = ErrNotFound
		return
	}
	master := existing[idx]

	vErr := &ValidationError{}
	candidate, _ := applyInput(master, params.Input, s.loc, vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	court, ok := booking.IndexCourts(courts)[candidate.CourtID]
	if !ok {
		vErr.add("court_id", "court does not exist in this venue")
		err = vErr
		return
	}
	moved := !calendar.SameDay(candidate.Date, master.Date) || candidate.Start != master.Start
	s.validateTiming(candidate, court, moved && !candidate.IsRecurring(), vErr)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if conflict, found := s.detector.FindConflict(candidate, existing, courts); found {
		err = &ConflictError{Existing: conflict.Existing}
		return
	}

	candidate.UpdatedAt = s.now()
	next := booking.CloneReservations(existing)
	next[idx] = candidate
	if err = s.save(ctx, params.VenueID, next); err != nil {
		return
	}
	updated = candidate
	return
}

// CancelReservation cancels a master and with it every occurrence of its
// series. Clients may only cancel their own bookings. Cancelling twice is a
// no-op.
func (s *ReservationService) CancelReservation(ctx context.Context, principal Principal, venueID, reservationID string) (cancelled booking.Reservation, err error) {
	if s == nil {
		return booking.Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	ctx, span := startSpan(ctx, "ReservationService.CancelReservation", venueID)
	started := time.Now()
	logger := s.loggerWith(ctx, "CancelReservation",
		"venue_id", venueID,
		"reservation_id", reservationID,
	)
	defer func() {
		finish(ctx, logger, span, started, err, "reservation cancelled", "master_id", cancelled.ID)
	}()

	if principal.IsAnonymous() {
		err = ErrUnauthorized
		return
	}

	unlock := s.locks.lock(venueID)
	defer unlock()

	existing, err := s.listReservations(ctx, venueID)
	if err != nil {
		return
	}
	idx, ok := findMaster(existing, reservationID)
	if !ok {
		err = ErrNotFound
		return
	}
	master := existing[idx]
	if !principal.IsAdmin && master.ProfileID != principal.ProfileID {
		err = ErrForbidden
		return
	}
	if master.IsCancelled() {
		cancelled = master
		return
	}

	master.Status = booking.StatusCancelled
	master.UpdatedAt = s.now()
	next := booking.CloneReservations(existing)
	next[idx] = master
	if err = s.save(ctx, venueID, next); err != nil {
		return
	}
	cancelled = master
	return
}

// GetReservation returns the master behind a master or occurrence id.
func (s *ReservationService) GetReservation(ctx context.Context, principal Principal, venueID, reservationID string) (booking.Reservation, error) {
	if s == nil {
		return booking.Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	if principal.IsAnonymous() {
		return booking.Reservation{}, ErrUnauthorized
	}

	unlock := s.locks.rlock(venueID)
	defer unlock()

	existing, err := s.listReservations(ctx, venueID)
	if err != nil {
		return booking.Reservation{}, err
	}
	idx, ok := findMaster(existing, reservationID)
	if !ok {
		return booking.Reservation{}, ErrNotFound
	}
	master := existing[idx]
	if !principal.IsAdmin && master.ProfileID != principal.ProfileID {
		return booking.Reservation{}, ErrForbidden
	}
	return master, nil
}

// ListCalendar expands the venue's reservations over [From, To], both days
// included, sorted by date, start time and court. Other clients' contact
// details are hidden from non-admin principals.
func (s *ReservationService) ListCalendar(ctx context.Context, params ListCalendarParams) (result Calendar, err error) {
	if s == nil {
		return Calendar{}, fmt.Errorf("ReservationService is nil")
	}
	ctx, span := startSpan(ctx, "ReservationService.ListCalendar", params.VenueID)
	started := time.Now()
	logger := s.loggerWith(ctx, "ListCalendar", "venue_id", params.VenueID, "court_id", params.CourtID)
	defer func() {
		finish(ctx, logger, span, started, err, "calendar listed", "occurrences", len(result.Occurrences))
	}()

	from := calendar.StartOfDay(params.From.In(s.loc))
	to := calendar.StartOfDay(params.To.In(s.loc))
	vErr := &ValidationError{}
	switch {
	case params.From.IsZero():
		vErr.add("from", "is required")
	case params.To.IsZero():
		vErr.add("to", "is required")
	case calendar.Before(to, from):
		vErr.add("to", "must not be before from")
	case calendar.DaysBetween(from, to)+1 > s.maxWindow:
		vErr.add("to", fmt.Sprintf("window cannot exceed %d days", s.maxWindow))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	occurrences, err := s.expand(ctx, params.VenueID, from, to)
	if err != nil {
		return
	}

	filtered := occurrences[:0]
	for _, o := range occurrences {
		if params.CourtID != "" && params.CourtID != occupancy.AllCourts && o.CourtID != params.CourtID {
			continue
		}
		filtered = append(filtered, redact(o, params.Principal))
	}
	sortOccurrences(filtered, true)

	result = Calendar{From: from, To: to, Occurrences: filtered}
	return
}

// UpcomingForProfile lists the profile's confirmed occurrences from today
// on, sorted by date then start time.
func (s *ReservationService) UpcomingForProfile(ctx context.Context, principal Principal, venueID, profileID string) ([]booking.Occurrence, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if principal.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	if !principal.IsAdmin && principal.ProfileID != profileID {
		return nil, ErrForbidden
	}

	today := s.today()
	occurrences, err := s.expand(ctx, venueID, today, calendar.AddDays(today, s.maxWindow-1))
	if err != nil {
		return nil, err
	}

	var upcoming []booking.Occurrence
	for _, o := range occurrences {
		if o.ProfileID == profileID && o.Status == booking.StatusConfirmed {
			upcoming = append(upcoming, o)
		}
	}
	sortOccurrences(upcoming, false)
	return upcoming, nil
}

// SlotAvailability classifies each slot of court on date as past, booked or
// available.
func (s *ReservationService) SlotAvailability(ctx context.Context, venueID, courtID string, date time.Time) (DayAvailability, error) {
	if s == nil {
		return DayAvailability{}, fmt.Errorf("ReservationService is nil")
	}
	court, err := s.getCourt(ctx, venueID, courtID)
	if err != nil {
		return DayAvailability{}, err
	}
	day := calendar.StartOfDay(date.In(s.loc))
	occurrences, err := s.expand(ctx, venueID, day, day)
	if err != nil {
		return DayAvailability{}, err
	}
	return s.availability(court, day, occurrences), nil
}

// PublicAvailability returns slot availability for court over the public
// booking horizon starting today.
func (s *ReservationService) PublicAvailability(ctx context.Context, venueID, courtID string) ([]DayAvailability, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	court, err := s.getCourt(ctx, venueID, courtID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	last := calendar.AddDays(today, PublicHorizonDays-1)
	occurrences, err := s.expand(ctx, venueID, today, last)
	if err != nil {
		return nil, err
	}

	days := make([]DayAvailability, 0, PublicHorizonDays)
	for day := today; !calendar.After(day, last); day = calendar.AddDays(day, 1) {
		days = append(days, s.availability(court, day, occurrences))
	}
	return days, nil
}

// DailyOccupancy aggregates date's occurrences for the selected courts.
func (s *ReservationService) DailyOccupancy(ctx context.Context, venueID string, date time.Time, courtFilter string) (occupancy.Daily, error) {
	if s == nil {
		return occupancy.Daily{}, fmt.Errorf("ReservationService is nil")
	}
	day := calendar.StartOfDay(date.In(s.loc))
	courts, err := s.listCourts(ctx, venueID)
	if err != nil {
		return occupancy.Daily{}, err
	}
	occurrences, err := s.expand(ctx, venueID, day, day)
	if err != nil {
		return occupancy.Daily{}, err
	}
	return occupancy.DailyOccupancy(day, occurrences, courts, courtFilter), nil
}

// MonthlyOccupancy builds the month heatmap for the selected courts.
func (s *ReservationService) MonthlyOccupancy(ctx context.Context, venueID string, month time.Time, courtFilter string) (occupancy.Month, error) {
	if s == nil {
		return occupancy.Month{}, fmt.Errorf("ReservationService is nil")
	}
	first := calendar.StartOfMonth(month.In(s.loc))
	courts, err := s.listCourts(ctx, venueID)
	if err != nil {
		return occupancy.Month{}, err
	}
	start, end := occupancy.GridBounds(first)
	occurrences, err := s.expand(ctx, venueID, start, end)
	if err != nil {
		return occupancy.Month{}, err
	}
	return occupancy.MonthGrid(first, occurrences, courts, courtFilter), nil
}

// expand returns the venue's occurrences over [from, to], served from the
// calendar cache when possible.
func (s *ReservationService) expand(ctx context.Context, venueID string, from, to time.Time) ([]booking.Occurrence, error) {
	unlock := s.locks.rlock(venueID)
	defer unlock()

	key := calendarCacheKey(venueID, from, to)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	courts, masters, err := s.loadVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}
	occurrences := s.engine.Expand(masters, from, to, courts)
	s.cache.Store(key, occurrences)
	return occurrences, nil
}

func (s *ReservationService) availability(court booking.Court, day time.Time, occurrences []booking.Occurrence) DayAvailability {
	now := s.now().In(s.loc)
	interval := time.Duration(schedule.SlotMinutes(court)) * time.Minute

	out := DayAvailability{Date: day}
	for _, label := range s.resolver.TimeSlotsForDate(court, day) {
		start, err := calendar.ParseClock(label)
		if err != nil {
			continue
		}
		slotStart := start.On(day)
		slotEnd := slotStart.Add(interval)

		slot := Slot{Start: label, Status: SlotAvailable}
		switch {
		case slotStart.Before(now):
			slot.Status = SlotPast
		default:
			for _, o := range occurrences {
				if o.CourtID != court.ID || o.IsCancelled() || !calendar.SameDay(o.Date, day) {
					continue
				}
				oStart, oEnd := o.Interval()
				if oStart.Before(slotEnd) && slotStart.Before(oEnd) {
					slot.Status = SlotBooked
					slot.ReservationID = o.ID
					break
				}
			}
		}
		out.Slots = append(out.Slots, slot)
	}
	return out
}

// validateTiming applies the time rules shared by create and update. Updates
// only run the past check when a one-off booking is moved, so running series
// stay editable.
func (s *ReservationService) validateTiming(r booking.Reservation, court booking.Court, checkPast bool, vErr *ValidationError) {
	if r.End <= r.Start {
		vErr.add("end_time", "must be after start_time")
	}
	if checkPast && r.Start.On(r.Date).Before(s.now().Add(-pastTolerance)) {
		vErr.add("start_time", "cannot be in the past")
	}
	if !r.IsRecurring() {
		return
	}
	if end := r.Recurrence.EndDate; end != nil && calendar.Before(*end, r.Date) {
		vErr.add("recurrence_end_date", "must not be before date")
	}
	if !court.OpenOn(r.Date) {
		vErr.add("date", "court is closed on this weekday")
	}
}

func (s *ReservationService) today() time.Time {
	return calendar.StartOfDay(s.now().In(s.loc))
}

func (s *ReservationService) loadVenue(ctx context.Context, venueID string) ([]booking.Court, []booking.Reservation, error) {
	courts, err := s.listCourts(ctx, venueID)
	if err != nil {
		return nil, nil, err
	}
	reservations, err := s.listReservations(ctx, venueID)
	if err != nil {
		return nil, nil, err
	}
	return courts, reservations, nil
}

func (s *ReservationService) listCourts(ctx context.Context, venueID string) ([]booking.Court, error) {
	if s.courts == nil {
		return nil, fmt.Errorf("court repository not configured")
	}
	courts, err := s.courts.ListCourts(ctx, venueID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return courts, nil
}

func (s *ReservationService) getCourt(ctx context.Context, venueID, courtID string) (booking.Court, error) {
	if s.courts == nil {
		return booking.Court{}, fmt.Errorf("court repository not configured")
	}
	court, err := s.courts.GetCourt(ctx, venueID, courtID)
	if err != nil {
		return booking.Court{}, mapRepoError(err)
	}
	return court, nil
}

func (s *ReservationService) listReservations(ctx context.Context, venueID string) ([]booking.Reservation, error) {
	if s.reservations == nil {
		return nil, fmt.Errorf("reservation repository not configured")
	}
	reservations, err := s.reservations.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// InvalidateVenue drops the calendars cached for venueID. Court changes call
// it since open days decide which daily occurrences exist.
func (s *ReservationService) InvalidateVenue(venueID string) {
	s.cache.InvalidateVenue(venueID)
}

func (s *ReservationService) save(ctx context.Context, venueID string, reservations []booking.Reservation) error {
	if err := s.reservations.Save(ctx, venueID, reservations); err != nil {
		return mapRepoError(err)
	}
	s.cache.InvalidateVenue(venueID)
	return nil
}

// venueLocks hands out one RWMutex per venue. Writers hold it for the whole
// read-check-write cycle.
type venueLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func (v *venueLocks) get(venueID string) *sync.RWMutex {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.locks == nil {
		v.locks = make(map[string]*sync.RWMutex)
	}
	l, ok := v.locks[venueID]
	if !ok {
		l = &sync.RWMutex{}
		v.locks[venueID] = l
	}
	return l
}

func (v *venueLocks) lock(venueID string) func() {
	l := v.get(venueID)
	l.Lock()
	return l.Unlock
}

func (v *venueLocks) rlock(venueID string) func() {
	l := v.get(venueID)
	l.RLock()
	return l.RUnlock
}

// applyInput overlays the non-empty input fields on base. It reports whether
// an end time was supplied.
func applyInput(base booking.Reservation, in ReservationInput, loc *time.Location, vErr *ValidationError) (booking.Reservation, bool) {
	r := base.Clone()
	endGiven := false

	if v := strings.TrimSpace(in.CourtID); v != "" {
		r.CourtID = v
	}
	if v := strings.TrimSpace(in.Date); v != "" {
		if d, err := calendar.ParseDate(v, loc); err != nil {
			vErr.add("date", "must be a valid YYYY-MM-DD date")
		} else {
			r.Date = d
		}
	}
	if v := strings.TrimSpace(in.Start); v != "" {
		if c, err := calendar.ParseClock(v); err != nil {
			vErr.add("start_time", "must be HH:MM")
		} else {
			r.Start = c
		}
	}
	if v := strings.TrimSpace(in.End); v != "" {
		endGiven = true
		if c, err := calendar.ParseClock(v); err != nil {
			vErr.add("end_time", "must be HH:MM")
		} else {
			r.End = c
		}
	}
	if v := strings.TrimSpace(in.Status); v != "" {
		if st, err := booking.ParseStatus(v); err != nil {
			vErr.add("status", "must be one of pending, confirmed, cancelled")
		} else {
			r.Status = st
		}
	}
	if v := strings.TrimSpace(in.Kind); v != "" {
		if k, err := booking.ParseKind(v); err != nil {
			vErr.add("kind", "must be one of normal, lesson, event, block")
		} else {
			r.Kind = k
		}
	}
	if v := strings.TrimSpace(in.ProfileID); v != "" {
		r.ProfileID = v
	}
	if v := strings.TrimSpace(in.ClientName); v != "" {
		r.ClientName = v
	}
	if v := strings.TrimSpace(in.ClientPhone); v != "" {
		r.ClientPhone = v
	}
	if in.Notes != "" {
		r.Notes = in.Notes
	}
	if in.Recurrence != nil {
		r.Recurrence = parseRecurrence(*in.Recurrence, loc, vErr)
	}
	return r, endGiven
}

// parseRecurrence returns nil for the frequency "none", which turns a series
// back into a one-off booking.
func parseRecurrence(in RecurrenceInput, loc *time.Location, vErr *ValidationError) *booking.Recurrence {
	freq := strings.ToLower(strings.TrimSpace(in.Frequency))
	if freq == "none" {
		return nil
	}
	rec := &booking.Recurrence{}
	if freq != "" {
		f, err := booking.ParseFrequency(freq)
		if err != nil {
			vErr.add("recurrence_frequency", "must be daily, weekly or none")
		}
		rec.Frequency = f
	}
	if v := strings.TrimSpace(in.EndDate); v != "" {
		end, err := calendar.ParseDate(v, loc)
		if err != nil {
			vErr.add("recurrence_end_date", "must be a valid YYYY-MM-DD date")
		} else {
			rec.EndDate = &end
		}
	}
	return rec
}

// findMaster locates a master by its own id or by one of its occurrence ids.
func findMaster(reservations []booking.Reservation, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, r := range reservations {
		if r.ID == id {
			return i, true
		}
	}
	masterID, _, ok := recurrence.SplitOccurrenceID(id)
	if !ok {
		return -1, false
	}
	for i, r := range reservations {
		if r.ID == masterID && r.IsRecurring() {
			return i, true
		}
	}
	return -1, false
}

func redact(o booking.Occurrence, principal Principal) booking.Occurrence {
	if principal.IsAdmin || (principal.ProfileID != "" && o.ProfileID == principal.ProfileID) {
		return o
	}
	o.ProfileID = ""
	o.ClientName = ""
	o.ClientPhone = ""
	o.Notes = ""
	return o
}

func sortOccurrences(occurrences []booking.Occurrence, byCourt bool) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		a, b := occurrences[i], occurrences[j]
		if !calendar.SameDay(a.Date, b.Date) {
			return calendar.Before(a.Date, b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if byCourt {
			return a.CourtID < b.CourtID
		}
		return false
	})
}

func requireField(vErr *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		vErr.add(field, "is required")
	}
}

func requireAdmin(principal Principal) error {
	switch {
	case principal.IsAdmin:
		return nil
	case principal.IsAnonymous():
		return ErrUnauthorized
	default:
		return ErrForbidden
	}
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func startSpan(ctx context.Context, name, venueID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("venue.id", venueID)))
}

// finish ends the span and writes the operation's single log line.
func finish(ctx context.Context, logger *slog.Logger, span trace.Span, started time.Time, err error, msg string, attrs ...any) {
	defer span.End()
	elapsed := time.Since(started).Milliseconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrorKind(err))
		level := slog.LevelWarn
		if ErrorKind(err) == "unexpected" {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "operation failed", "error", err, "error_kind", ErrorKind(err), "duration_ms", elapsed)
		return
	}
	logger.With(attrs...).InfoContext(ctx, msg, "duration_ms", elapsed)
}
