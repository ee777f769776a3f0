package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Organizations persistence.OrganizationRepository
	Users         persistence.UserRepository
	Facilities    persistence.FacilityRepository
	Rooms         persistence.RoomRepository
	Events        persistence.EventRepository
	Exceptions    persistence.ExceptionRepository
	Invitations   persistence.InvitationRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but the
// helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	manager := migration.NewManager(pool.DB(), nil)
	if err := manager.Run(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Organizations: sqlite.NewOrganizationRepository(pool),
		Users:         sqlite.NewUserRepository(pool),
		Facilities:    sqlite.NewFacilityRepository(pool),
		Rooms:         sqlite.NewRoomRepository(pool),
		Events:        sqlite.NewEventRepository(pool),
		Exceptions:    sqlite.NewExceptionRepository(pool),
		Invitations:   sqlite.NewInvitationRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
