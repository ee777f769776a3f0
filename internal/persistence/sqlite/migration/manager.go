package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Manager orchestrates the migration process against one database handle.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewManager creates a migration manager. A nil logger discards output.
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{db: db, logger: logger}
}

// Run applies all pending embedded migrations in version order. Each
// migration executes inside its own transaction; already applied versions
// are verified against their recorded checksums and skipped.
func (m *Manager) Run(ctx context.Context) error {
	migrations, err := Load()
	if err != nil {
		return err
	}

	if err := m.initVersionTable(ctx); err != nil {
		return err
	}

	applied, err := m.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	appliedByVersion := make(map[int]AppliedMigration, len(applied))
	for _, record := range applied {
		appliedByVersion[record.Version] = record
	}

	pending := 0
	for _, migration := range migrations {
		if record, ok := appliedByVersion[migration.Version]; ok {
			if record.Checksum != migration.Checksum {
				return fmt.Errorf("%w: version %d was applied with a different content", ErrChecksumMismatch, migration.Version)
			}
			continue
		}

		started := time.Now()
		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Description, err)
		}
		pending++
		m.logger.InfoContext(ctx, "applied migration",
			slog.Int("version", migration.Version),
			slog.String("description", migration.Description),
			slog.Duration("duration", time.Since(started)),
		)
	}

	m.logger.InfoContext(ctx, "migrations up to date",
		slog.Int("applied", pending),
		slog.Int("total", len(migrations)),
	)
	return nil
}

// AppliedMigrations returns the applied migration records ordered by version.
func (m *Manager) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT version, checksum, applied_at, execution_ms FROM schema_migrations ORDER BY version ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var record AppliedMigration
		var appliedAt string
		var executionMs int64
		if err := rows.Scan(&record.Version, &record.Checksum, &appliedAt, &executionMs); err != nil {
			return nil, fmt.Errorf("failed to scan schema_migrations row: %w", err)
		}
		if record.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt); err != nil {
			return nil, fmt.Errorf("failed to parse applied_at: %w", err)
		}
		record.ExecutionTime = time.Duration(executionMs) * time.Millisecond
		applied = append(applied, record)
	}
	return applied, rows.Err()
}

func (m *Manager) initVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version      INTEGER PRIMARY KEY,
			checksum     TEXT NOT NULL,
			applied_at   TEXT NOT NULL,
			execution_ms INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func (m *Manager) apply(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	started := time.Now()
	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, checksum, applied_at, execution_ms) VALUES (?, ?, ?, ?)",
		migration.Version,
		migration.Checksum,
		time.Now().UTC().Format(time.RFC3339Nano),
		time.Since(started).Milliseconds(),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
