// Package redisstore keeps each venue's courts and reservations as JSON
// arrays under one Redis key per collection.
package redisstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/persistence"
)

const keyPrefix = "courtbooking"

// ReservationsKey names the key holding a venue's reservation masters.
func ReservationsKey(venueID string) string {
	return fmt.Sprintf("%s:reservations:%s", keyPrefix, venueID)
}

// CourtsKey names the key holding a venue's courts.
func CourtsKey(venueID string) string {
	return fmt.Sprintf("%s:courts:%s", keyPrefix, venueID)
}

// Commander is the subset of the go-redis client the store needs.
type Commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store implements both persistence repositories on Redis.
type Store struct {
	client Commander
	closer func() error
	loc    *time.Location
}

var (
	_ persistence.CourtRepository       = (*Store)(nil)
	_ persistence.ReservationRepository = (*Store)(nil)
)

// New connects to Redis. Dates are decoded in loc.
func New(opts Options, loc *time.Location) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := NewWithClient(rdb, loc)
	s.closer = rdb.Close
	return s
}

// NewWithClient wraps an existing client.
func NewWithClient(client Commander, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{client: client, loc: loc}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the connection when the store owns it.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// ListByVenue returns the venue's masters ordered by date and start time.
func (s *Store) ListByVenue(ctx context.Context, venueID string) ([]booking.Reservation, error) {
	var records []persistence.ReservationRecord
	if err := s.load(ctx, ReservationsKey(venueID), &records); err != nil {
		return nil, err
	}
	out := make([]booking.Reservation, 0, len(records))
	for _, rec := range records {
		r, err := rec.Reservation(s.loc)
		if err != nil {
			return nil, err
		}
		r.VenueID = venueID
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b booking.Reservation) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Save overwrites the venue's reservation collection.
func (s *Store) Save(ctx context.Context, venueID string, reservations []booking.Reservation) error {
	records := make([]persistence.ReservationRecord, 0, len(reservations))
	for _, r := range reservations {
		rec := persistence.NewReservationRecord(r)
		rec.VenueID = venueID
		records = append(records, rec)
	}
	return s.store(ctx, ReservationsKey(venueID), records)
}

// ListCourts returns the venue's courts ordered by name.
func (s *Store) ListCourts(ctx context.Context, venueID string) ([]booking.Court, error) {
	records, err := s.courtRecords(ctx, venueID)
	if err != nil {
		return nil, err
	}
	courts := make([]booking.Court, 0, len(records))
	for _, rec := range records {
		c, err := rec.Court()
		if err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	slices.SortStableFunc(courts, func(a, b booking.Court) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return courts, nil
}

// GetCourt returns persistence.ErrNotFound when the court does not exist.
func (s *Store) GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error) {
	records, err := s.courtRecords(ctx, venueID)
	if err != nil {
		return booking.Court{}, err
	}
	for _, rec := range records {
		if rec.ID == courtID {
			return rec.Court()
		}
	}
	return booking.Court{}, persistence.ErrNotFound
}

// UpsertCourt inserts the court or replaces it, keeping the stored created_at.
func (s *Store) UpsertCourt(ctx context.Context, court booking.Court) error {
	if court.ID == "" || court.VenueID == "" {
		return persistence.ErrConstraintViolation
	}
	records, err := s.courtRecords(ctx, court.VenueID)
	if err != nil {
		return err
	}
	rec := persistence.NewCourtRecord(court)
	idx := slices.IndexFunc(records, func(r persistence.CourtRecord) bool { return r.ID == court.ID })
	if idx >= 0 {
		rec.CreatedAt = records[idx].CreatedAt
		records[idx] = rec
	} else {
		records = append(records, rec)
	}
	return s.store(ctx, CourtsKey(court.VenueID), records)
}

func (s *Store) courtRecords(ctx context.Context, venueID string) ([]persistence.CourtRecord, error) {
	var records []persistence.CourtRecord
	if err := s.load(ctx, CourtsKey(venueID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// load leaves dst untouched when the key is absent.
func (s *Store) load(ctx context.Context, key string, dst any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", persistence.ErrCorruptRecord, key, err)
	}
	return nil
}

func (s *Store) store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
