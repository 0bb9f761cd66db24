package testfixtures

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/court-booking/internal/persistence/sqlite"
	"github.com/example/court-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style persistence tests.
type SQLiteHarness struct {
	Storage      *sqlite.Storage
	Courts       *sqlite.CourtRepository
	Reservations *sqlite.ReservationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Dates are read back in UTC. Callers may optionally
// invoke Close, but the helper will also register a cleanup callback with
// the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "courtbooking.db")
	ctx := context.Background()

	storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(path), time.UTC, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:      storage,
		Courts:       storage.Courts(),
		Reservations: storage.Reservations(),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
