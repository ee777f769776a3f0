package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// ExceptionRepository implements persistence.ExceptionRepository using SQLite.
type ExceptionRepository struct {
	pool *ConnectionPool
}

// NewExceptionRepository creates a new SQLite exception repository.
func NewExceptionRepository(pool *ConnectionPool) *ExceptionRepository {
	return &ExceptionRepository{pool: pool}
}

const exceptionColumns = "event_id, original_start, original_end, kind, new_start, new_end, " +
	"frequency, interval_value, weekday_mask, month_day_mask, month_mask, recurrence_end, occurrence_count, " +
	"created_at, updated_at"

// UpsertException creates or replaces the override for one occurrence slot.
// The record keyed by (event_id, original_start) keeps its creation time
// across replacements.
func (r *ExceptionRepository) UpsertException(ctx context.Context, exception persistence.EventException) error {
	if exception.EventID == "" || exception.OriginalStart.IsZero() {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	pattern := encodePattern(exception.Recurrence)

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var existingCreatedAt sql.NullString
		err := tx.QueryRow(
			"SELECT created_at FROM event_exceptions WHERE event_id = ? AND original_start = ?",
			exception.EventID, formatTime(exception.OriginalStart)).Scan(&existingCreatedAt)
		if err != nil && err != sql.ErrNoRows {
			return mapError(err)
		}

		createdAt := formatTime(now)
		if existingCreatedAt.Valid {
			createdAt = existingCreatedAt.String
		}

		_, err = tx.Exec(
			"INSERT OR REPLACE INTO event_exceptions ("+exceptionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			exception.EventID,
			formatTime(exception.OriginalStart),
			formatTime(exception.OriginalEnd),
			exception.Kind.String(),
			nullTime(exception.NewStart),
			nullTime(exception.NewEnd),
			pattern.Frequency,
			pattern.Interval,
			pattern.WeekdayMask,
			pattern.MonthDayMask,
			pattern.MonthMask,
			pattern.EndDate,
			pattern.Count,
			createdAt,
			formatTime(now),
		)
		return mapError(err)
	})
}

// GetException retrieves the override for one occurrence slot.
func (r *ExceptionRepository) GetException(ctx context.Context, eventID string, originalStart time.Time) (persistence.EventException, error) {
	if eventID == "" {
		return persistence.EventException{}, persistence.ErrNotFound
	}
	return r.scanException(r.pool.db.QueryRowContext(ctx,
		"SELECT "+exceptionColumns+" FROM event_exceptions WHERE event_id = ? AND original_start = ?",
		eventID, formatTime(originalStart)))
}

// ListExceptions lists an event's overrides ordered by original start.
func (r *ExceptionRepository) ListExceptions(ctx context.Context, eventID string) ([]persistence.EventException, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+exceptionColumns+" FROM event_exceptions WHERE event_id = ? ORDER BY original_start ASC",
		eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var exceptions []persistence.EventException
	for rows.Next() {
		exception, err := r.scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exception)
	}
	return exceptions, rows.Err()
}

// DeleteException removes the override for one occurrence slot.
func (r *ExceptionRepository) DeleteException(ctx context.Context, eventID string, originalStart time.Time) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM event_exceptions WHERE event_id = ? AND original_start = ?",
		eventID, formatTime(originalStart))
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// DeleteExceptionsForEvent removes every override attached to an event.
func (r *ExceptionRepository) DeleteExceptionsForEvent(ctx context.Context, eventID string) error {
	_, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM event_exceptions WHERE event_id = ?", eventID)
	return mapError(err)
}

func (r *ExceptionRepository) scanException(row rowScanner) (persistence.EventException, error) {
	var exception persistence.EventException
	var originalStart, originalEnd, kind, createdAt, updatedAt string
	var newStart, newEnd sql.NullString
	var pattern patternColumns

	err := row.Scan(
		&exception.EventID,
		&originalStart,
		&originalEnd,
		&kind,
		&newStart,
		&newEnd,
		&pattern.Frequency,
		&pattern.Interval,
		&pattern.WeekdayMask,
		&pattern.MonthDayMask,
		&pattern.MonthMask,
		&pattern.EndDate,
		&pattern.Count,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.EventException{}, mapError(err)
	}

	if exception.Kind, err = recurrence.ParseExceptionKind(kind); err != nil {
		return persistence.EventException{}, err
	}
	if exception.OriginalStart, err = parseTime(originalStart); err != nil {
		return persistence.EventException{}, err
	}
	if exception.OriginalEnd, err = parseTime(originalEnd); err != nil {
		return persistence.EventException{}, err
	}
	if newStart.Valid {
		start, err := parseTime(newStart.String)
		if err != nil {
			return persistence.EventException{}, err
		}
		exception.NewStart = &start
	}
	if newEnd.Valid {
		end, err := parseTime(newEnd.String)
		if err != nil {
			return persistence.EventException{}, err
		}
		exception.NewEnd = &end
	}
	if exception.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.EventException{}, err
	}
	if exception.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.EventException{}, err
	}
	if exception.Recurrence, err = decodePattern(pattern); err != nil {
		return persistence.EventException{}, err
	}
	return exception, nil
}
