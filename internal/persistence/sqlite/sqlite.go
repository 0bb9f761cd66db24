package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/court-booking/internal/persistence"
	"github.com/example/court-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage is the SQLite backed store for courts and reservations.
type Storage struct {
	pool         *ConnectionPool
	logger       *slog.Logger
	courts       *CourtRepository
	reservations *ReservationRepository
}

var (
	_ persistence.CourtRepository       = (*CourtRepository)(nil)
	_ persistence.ReservationRepository = (*ReservationRepository)(nil)
)

// Open connects to the database. Dates read back are placed at midnight in
// loc; a nil loc means time.Local. Call Migrate before first use.
func Open(ctx context.Context, cfg migration.SQLiteConfig, loc *time.Location, logger *slog.Logger) (*Storage, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	retry := NewRetryHelper(DefaultRetryConfig())
	return &Storage{
		pool:         pool,
		logger:       logger.With("component", "sqlite"),
		courts:       NewCourtRepository(pool, retry),
		reservations: NewReservationRepository(pool, retry, loc),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewScanner(migrationFiles, "migrations"),
		migration.NewSQLiteExecutor(s.pool.DB()),
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Courts returns the court repository.
func (s *Storage) Courts() *CourtRepository { return s.courts }

// Reservations returns the reservation repository.
func (s *Storage) Reservations() *ReservationRepository { return s.reservations }

// Ping checks the connection.
func (s *Storage) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close releases the connection pool.
func (s *Storage) Close() error { return s.pool.Close() }
