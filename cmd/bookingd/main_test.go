package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

func TestMigrationsApplyOnStartup(t *testing.T) {
	pool, err := sqlite.Open(filepath.Join(t.TempDir(), "booking.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() {
		if cerr := pool.Close(); cerr != nil {
			t.Errorf("close storage: %v", cerr)
		}
	})

	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))
	manager := migration.NewManager(pool.DB(), logger)

	ctx := context.Background()
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	applied, err := manager.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("list applied migrations: %v", err)
	}
	if len(applied) == 0 {
		t.Fatal("expected at least one applied migration")
	}

	// A second run must be a no-op.
	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
	again, err := manager.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("list applied migrations after rerun: %v", err)
	}
	if len(again) != len(applied) {
		t.Fatalf("expected %d applied migrations after rerun, got %d", len(applied), len(again))
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "info", want: slog.LevelInfo},
		{name: "warn", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "unknown", want: slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := logLevel(tc.name); got != tc.want {
			t.Errorf("logLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
