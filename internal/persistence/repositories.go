package persistence

import (
	"context"

	"github.com/example/court-booking/internal/booking"
)

// CourtRepository stores the courts of each venue.
type CourtRepository interface {
	ListCourts(ctx context.Context, venueID string) ([]booking.Court, error)
	GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error)
	UpsertCourt(ctx context.Context, court booking.Court) error
}

// ReservationRepository stores a venue's master reservations as one
// collection. Save replaces the whole collection.
type ReservationRepository interface {
	ListByVenue(ctx context.Context, venueID string) ([]booking.Reservation, error)
	Save(ctx context.Context, venueID string, reservations []booking.Reservation) error
}
