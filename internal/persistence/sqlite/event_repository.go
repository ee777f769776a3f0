package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = "id, organization_id, creator_id, title, description, start_time, end_time, " +
	"extendable, status, approval, approved_by, approved_at, " +
	"frequency, interval_value, weekday_mask, month_day_mask, month_mask, " +
	"recurrence_end, occurrence_count, created_at, updated_at"

// CreateEvent inserts a new event.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.CreatorID == "" {
		return persistence.ErrConstraintViolation
	}
	if !event.End.After(event.Start) {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	pattern := encodePattern(event.Recurrence)

	var organizationID sql.NullString
	if event.OrganizationID != "" {
		organizationID = sql.NullString{String: event.OrganizationID, Valid: true}
	}

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID,
		organizationID,
		event.CreatorID,
		event.Title,
		nullString(event.Description),
		formatTime(event.Start),
		formatTime(event.End),
		event.Extendable,
		string(event.Status),
		string(event.Approval),
		nullString(event.ApproverID),
		nullTime(event.ApprovedAt),
		pattern.Frequency,
		pattern.Interval,
		pattern.WeekdayMask,
		pattern.MonthDayMask,
		pattern.MonthMask,
		pattern.EndDate,
		pattern.Count,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent updates an event's mutable fields. The creator never changes.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrNotFound
	}
	if !event.End.After(event.Start) {
		return persistence.ErrConstraintViolation
	}

	pattern := encodePattern(event.Recurrence)

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, start_time = ?, end_time = ?, extendable = ?,
			status = ?, approval = ?, approved_by = ?, approved_at = ?,
			frequency = ?, interval_value = ?, weekday_mask = ?, month_day_mask = ?, month_mask = ?,
			recurrence_end = ?, occurrence_count = ?, updated_at = ?
		WHERE id = ?`,
		event.Title,
		nullString(event.Description),
		formatTime(event.Start),
		formatTime(event.End),
		event.Extendable,
		string(event.Status),
		string(event.Approval),
		nullString(event.ApproverID),
		nullTime(event.ApprovedAt),
		pattern.Frequency,
		pattern.Interval,
		pattern.WeekdayMask,
		pattern.MonthDayMask,
		pattern.MonthMask,
		pattern.EndDate,
		pattern.Count,
		formatTime(time.Now().UTC()),
		event.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return r.scanEvent(r.pool.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id))
}

// ListEvents lists events matching the filter ordered by start time.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query, args := buildEventListQuery(filter)
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteEvent removes an event and its exceptions, participants, room links
// and invitations.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// LinkRoom reserves a room for an event.
func (r *EventRepository) LinkRoom(ctx context.Context, link persistence.RoomLink) error {
	if link.EventID == "" || link.ID == "" || link.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO event_room_links (event_id, id, room_id, created_at) VALUES (?, ?, ?, ?)",
		link.EventID, link.ID, link.RoomID, formatTime(time.Now().UTC()))
	return mapError(err)
}

// UnlinkRoom releases an event's room reservation.
func (r *EventRepository) UnlinkRoom(ctx context.Context, eventID, roomID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM event_room_links WHERE event_id = ? AND room_id = ?", eventID, roomID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// ListRoomLinks lists an event's room reservations.
func (r *EventRepository) ListRoomLinks(ctx context.Context, eventID string) ([]persistence.RoomLink, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT event_id, id, room_id, created_at FROM event_room_links WHERE event_id = ? ORDER BY room_id ASC, id ASC",
		eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var links []persistence.RoomLink
	for rows.Next() {
		var link persistence.RoomLink
		var createdAt string
		if err := rows.Scan(&link.EventID, &link.ID, &link.RoomID, &createdAt); err != nil {
			return nil, mapError(err)
		}
		if link.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// ListEventsForRoom lists the events holding a reservation on the room,
// ordered by start time.
func (r *EventRepository) ListEventsForRoom(ctx context.Context, roomID string) ([]persistence.Event, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+prefixedEventColumns("e")+`
		FROM events e
		JOIN event_room_links l ON l.event_id = e.id
		WHERE l.room_id = ?
		ORDER BY e.start_time ASC, e.id ASC`,
		roomID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// AddParticipant attaches a participant record to an event. Each record
// carries its own ID so a user may hold several records over the event's
// lifecycle.
func (r *EventRepository) AddParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.EventID == "" || participant.UserID == "" || participant.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if len(participant.Permissions) == 0 {
		participant.Permissions = []persistence.ParticipantPermission{persistence.PermissionRead}
	}
	if participant.Status == "" {
		participant.Status = persistence.ParticipantActive
	}
	permissions, err := encodePermissions(participant.Permissions)
	if err != nil {
		return err
	}
	now := formatTime(time.Now().UTC())
	_, err = r.pool.db.ExecContext(ctx,
		"INSERT INTO event_participants (event_id, user_id, id, permissions, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		participant.EventID, participant.UserID, participant.ID, permissions, string(participant.Status), now, now)
	return mapError(err)
}

// RemoveParticipant removes every participant record a user holds on an
// event.
func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM event_participants WHERE event_id = ? AND user_id = ?", eventID, userID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// ListParticipants lists an event's participant records ordered by user ID.
func (r *EventRepository) ListParticipants(ctx context.Context, eventID string) ([]persistence.Participant, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT event_id, user_id, id, permissions, status, created_at, updated_at FROM event_participants WHERE event_id = ? ORDER BY user_id ASC, id ASC",
		eventID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		var participant persistence.Participant
		var permissions, status, createdAt, updatedAt string
		if err := rows.Scan(&participant.EventID, &participant.UserID, &participant.ID, &permissions, &status, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		if participant.Permissions, err = decodePermissions(permissions); err != nil {
			return nil, err
		}
		participant.Status = persistence.ParticipantStatus(status)
		if participant.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if participant.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, rows.Err()
}

func encodePermissions(permissions []persistence.ParticipantPermission) (string, error) {
	values := make([]string, 0, len(permissions))
	for _, permission := range permissions {
		values = append(values, string(permission))
	}
	return encodeStrings(values)
}

func decodePermissions(value string) ([]persistence.ParticipantPermission, error) {
	values, err := decodeStrings(value)
	if err != nil {
		return nil, err
	}
	permissions := make([]persistence.ParticipantPermission, 0, len(values))
	for _, value := range values {
		permissions = append(permissions, persistence.ParticipantPermission(value))
	}
	return permissions, nil
}

// buildEventListQuery assembles the filtered list query. Time bounds match
// events whose base interval intersects the range; recurring events also
// match while their series has not terminated before the range.
func buildEventListQuery(filter persistence.EventFilter) (string, []any) {
	query := "SELECT DISTINCT " + prefixedEventColumns("e") + " FROM events e"
	var conditions []string
	var args []any

	if filter.RoomID != "" {
		query += " JOIN event_room_links l ON l.event_id = e.id"
		conditions = append(conditions, "l.room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.ParticipantID != "" {
		query += " LEFT JOIN event_participants p ON p.event_id = e.id"
		conditions = append(conditions, "(p.user_id = ? OR e.creator_id = ?)")
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}
	if filter.OrganizationID != "" {
		conditions = append(conditions, "e.organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if filter.CreatorID != "" {
		conditions = append(conditions, "e.creator_id = ?")
		args = append(args, filter.CreatorID)
	}
	if filter.StartsBefore != nil {
		conditions = append(conditions, "e.start_time < ?")
		args = append(args, formatTime(*filter.StartsBefore))
	}
	if filter.EndsAfter != nil {
		bound := formatTime(*filter.EndsAfter)
		conditions = append(conditions,
			"(e.end_time > ? OR (e.frequency IS NOT NULL AND (e.recurrence_end IS NULL OR e.recurrence_end > ?)))")
		args = append(args, bound, bound)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.start_time ASC, e.id ASC"
	return query, args
}

func prefixedEventColumns(alias string) string {
	parts := strings.Split(eventColumns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func (r *EventRepository) scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var organizationID, description, approvedBy, approvedAt sql.NullString
	var status, approval string
	var startTime, endTime, createdAt, updatedAt string
	var pattern patternColumns

	err := row.Scan(
		&event.ID,
		&organizationID,
		&event.CreatorID,
		&event.Title,
		&description,
		&startTime,
		&endTime,
		&event.Extendable,
		&status,
		&approval,
		&approvedBy,
		&approvedAt,
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
		return persistence.Event{}, mapError(err)
	}

	if organizationID.Valid {
		event.OrganizationID = organizationID.String
	}
	event.Description = stringPtr(description)
	event.Status = persistence.EventStatus(status)
	event.Approval = persistence.ApprovalStatus(approval)
	event.ApproverID = stringPtr(approvedBy)
	if approvedAt.Valid {
		decided, err := parseTime(approvedAt.String)
		if err != nil {
			return persistence.Event{}, err
		}
		event.ApprovedAt = &decided
	}

	if event.Start, err = parseTime(startTime); err != nil {
		return persistence.Event{}, err
	}
	if event.End, err = parseTime(endTime); err != nil {
		return persistence.Event{}, err
	}
	if event.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Event{}, err
	}
	if event.Recurrence, err = decodePattern(pattern); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}
