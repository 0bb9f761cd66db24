package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/court-booking/internal/booking"
	"github.com/example/court-booking/internal/persistence"
)

// CourtRepository implements persistence.CourtRepository using SQLite.
type CourtRepository struct {
	pool   *ConnectionPool
	retry  *RetryHelper
	mapper *ErrorMapper
}

// NewCourtRepository creates a new SQLite court repository.
func NewCourtRepository(pool *ConnectionPool, retry *RetryHelper) *CourtRepository {
	return &CourtRepository{pool: pool, retry: retry, mapper: NewErrorMapper()}
}

const courtColumns = `id, venue_id, name, status, open_days, weekday_hours, weekend_hours, slot_minutes, created_at, updated_at`

// ListCourts returns the venue's courts ordered by name.
func (r *CourtRepository) ListCourts(ctx context.Context, venueID string) ([]booking.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE venue_id = ? ORDER BY name, id`
	rows, err := r.pool.DB().QueryContext(ctx, query, venueID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var courts []booking.Court
	for rows.Next() {
		court, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		courts = append(courts, court)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return courts, nil
}

// GetCourt returns persistence.ErrNotFound when the court does not exist.
func (r *CourtRepository) GetCourt(ctx context.Context, venueID, courtID string) (booking.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE venue_id = ? AND id = ?`
	court, err := scanCourt(r.pool.DB().QueryRowContext(ctx, query, venueID, courtID))
	if errors.Is(err, sql.ErrNoRows) {
		return booking.Court{}, persistence.ErrNotFound
	}
	return court, err
}

// UpsertCourt inserts the court or replaces every column but created_at.
func (r *CourtRepository) UpsertCourt(ctx context.Context, court booking.Court) error {
	if court.ID == "" || court.VenueID == "" {
		return persistence.ErrConstraintViolation
	}
	rec := persistence.NewCourtRecord(court)
	const query = `
		INSERT INTO courts (` + courtColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (venue_id, id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			open_days = excluded.open_days,
			weekday_hours = excluded.weekday_hours,
			weekend_hours = excluded.weekend_hours,
			slot_minutes = excluded.slot_minutes,
			updated_at = excluded.updated_at`

	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			rec.ID, rec.VenueID, rec.Name, rec.Status, rec.OpenDays,
			rec.WeekdayHours, rec.WeekendHours, rec.SlotMinutes,
			rec.CreatedAt, rec.UpdatedAt,
		)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourt(row rowScanner) (booking.Court, error) {
	var rec persistence.CourtRecord
	err := row.Scan(
		&rec.ID, &rec.VenueID, &rec.Name, &rec.Status, &rec.OpenDays,
		&rec.WeekdayHours, &rec.WeekendHours, &rec.SlotMinutes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.Court{}, err
		}
		return booking.Court{}, fmt.Errorf("scan court: %w", err)
	}
	return rec.Court()
}
