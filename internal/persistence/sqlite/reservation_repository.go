package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Only master reservations are stored.
type ReservationRepository struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
	loc    *time.Location
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool, retry *RetryHelper, loc *time.Location) *ReservationRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ReservationRepository{pool: pool, retry: retry, mapper: NewErrorMapper(), loc: loc}
}

const reservationColumns = `id, venue_id, court_id, profile_id, date, start_time, end_time, status, kind,
	client_name, client_phone, notes, is_recurring, recurrence_frequency, recurrence_end_date, created_at, updated_at`

// ListByVenue returns the venue's masters ordered by date and start time.
func (r *ReservationRepository) ListByVenue(ctx context.Context, venueID string) ([]booking.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE venue_id = ? ORDER BY date, start_time, id`
	rows, err := r.pool.DB().QueryContext(ctx, query, venueID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		var (
			rec       persistence.ReservationRecord
			frequency sql.NullString
			endDate   sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.VenueID, &rec.CourtID, &rec.ProfileID, &rec.Date, &rec.StartTime, &rec.EndTime,
			&rec.Status, &rec.Kind, &rec.ClientName, &rec.ClientPhone, &rec.Notes,
			&rec.IsRecurring, &frequency, &endDate, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		rec.RecurrenceFrequency = frequency.String
		if endDate.Valid {
			rec.RecurrenceEndDate = &endDate.String
		}
		reservation, err := rec.Reservation(r.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// Save replaces the venue's whole collection in one transaction.
func (r *ReservationRepository) Save(ctx context.Context, venueID string, reservations []booking.Reservation) error {
	const insert = `INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE venue_id = ?`, venueID); err != nil {
				return err
			}
			stmt, err := tx.PrepareContext(ctx, insert)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for _, reservation := range reservations {
				rec := persistence.NewReservationRecord(reservation)
				rec.VenueID = venueID
				var frequency, endDate sql.NullString
				if rec.IsRecurring {
					frequency = sql.NullString{String: rec.RecurrenceFrequency, Valid: rec.RecurrenceFrequency != ""}
				}
				if rec.RecurrenceEndDate != nil {
					endDate = sql.NullString{String: *rec.RecurrenceEndDate, Valid: true}
				}
				if _, err := stmt.ExecContext(ctx,
					rec.ID, rec.VenueID, rec.CourtID, rec.ProfileID, rec.Date, rec.StartTime, rec.EndTime,
					rec.Status, rec.Kind, rec.ClientName, rec.ClientPhone, rec.Notes,
					rec.IsRecurring, frequency, endDate, rec.CreatedAt, rec.UpdatedAt,
				); err != nil {
					return fmt.Errorf("insert reservation %s: %w", rec.ID, err)
				}
			}
			return nil
		})
	})
}
