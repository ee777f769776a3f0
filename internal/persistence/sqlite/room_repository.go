package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool *ConnectionPool
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomColumns = "id, organization_id, floor_id, name, description, amenities, capacity, enabled, room_type, status, metadata, created_at, updated_at"

// CreateRoom inserts a new room. An empty type or status falls back to the
// schema defaults.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.OrganizationID == "" || room.FloorID == "" {
		return persistence.ErrConstraintViolation
	}
	if room.Type == "" {
		room.Type = persistence.RoomTypeMeeting
	}
	if room.Status == "" {
		room.Status = persistence.RoomActive
	}
	amenities, err := encodeAmenities(room.Amenities)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = r.pool.db.ExecContext(ctx,
		"INSERT INTO rooms ("+roomColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		room.ID,
		room.OrganizationID,
		room.FloorID,
		room.Name,
		room.Description,
		amenities,
		room.Capacity,
		room.Enabled,
		string(room.Type),
		string(room.Status),
		nullString(room.Metadata),
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateRoom updates a room's mutable fields.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" {
		return persistence.ErrNotFound
	}
	amenities, err := encodeAmenities(room.Amenities)
	if err != nil {
		return err
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE rooms
		SET floor_id = ?, name = ?, description = ?, amenities = ?, capacity = ?, enabled = ?,
			room_type = ?, status = ?, metadata = ?, updated_at = ?
		WHERE id = ?`,
		room.FloorID,
		room.Name,
		room.Description,
		amenities,
		room.Capacity,
		room.Enabled,
		string(room.Type),
		string(room.Status),
		nullString(room.Metadata),
		formatTime(time.Now().UTC()),
		room.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return r.scanRoom(r.pool.db.QueryRowContext(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE id = ?", id))
}

// ListRooms lists an organization's rooms ordered by name.
func (r *RoomRepository) ListRooms(ctx context.Context, organizationID string) ([]persistence.Room, error) {
	return r.listRooms(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE organization_id = ? ORDER BY name ASC, id ASC",
		organizationID)
}

// ListRoomsForFloor lists the rooms on a floor ordered by name.
func (r *RoomRepository) ListRoomsForFloor(ctx context.Context, floorID string) ([]persistence.Room, error) {
	return r.listRooms(ctx,
		"SELECT "+roomColumns+" FROM rooms WHERE floor_id = ? ORDER BY name ASC, id ASC",
		floorID)
}

// DeleteRoom removes a room and its rules and reservations.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// CreateRoomRule inserts a usage rule for a room.
func (r *RoomRepository) CreateRoomRule(ctx context.Context, rule persistence.RoomRule) error {
	if rule.ID == "" || rule.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if rule.StartMinute < 0 || rule.EndMinute > 24*60 || rule.StartMinute >= rule.EndMinute {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO room_rules (id, room_id, weekday, start_minute, end_minute, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rule.ID,
		rule.RoomID,
		int(rule.Weekday),
		rule.StartMinute,
		rule.EndMinute,
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// ListRoomRules lists a room's rules ordered by weekday then start.
func (r *RoomRepository) ListRoomRules(ctx context.Context, roomID string) ([]persistence.RoomRule, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, room_id, weekday, start_minute, end_minute, created_at, updated_at FROM room_rules WHERE room_id = ? ORDER BY weekday ASC, start_minute ASC",
		roomID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rules []persistence.RoomRule
	for rows.Next() {
		var rule persistence.RoomRule
		var weekday int
		var createdAt, updatedAt string
		if err := rows.Scan(&rule.ID, &rule.RoomID, &weekday, &rule.StartMinute, &rule.EndMinute, &createdAt, &updatedAt); err != nil {
			return nil, mapError(err)
		}
		rule.Weekday = time.Weekday(weekday)
		if rule.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if rule.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// DeleteRoomRule removes a usage rule by ID.
func (r *RoomRepository) DeleteRoomRule(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM room_rules WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

func (r *RoomRepository) listRooms(ctx context.Context, query, arg string) ([]persistence.Room, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepository) scanRoom(row rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var amenities, metadata sql.NullString
	var roomType, status string
	var createdAt, updatedAt string
	err := row.Scan(
		&room.ID,
		&room.OrganizationID,
		&room.FloorID,
		&room.Name,
		&room.Description,
		&amenities,
		&room.Capacity,
		&room.Enabled,
		&roomType,
		&status,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	room.Type = persistence.RoomType(roomType)
	room.Status = persistence.RoomStatus(status)
	room.Metadata = stringPtr(metadata)
	if amenities.Valid {
		if room.Amenities, err = decodeStrings(amenities.String); err != nil {
			return persistence.Room{}, err
		}
	}
	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// encodeAmenities stores a nil amenity set as NULL and anything else as JSON.
func encodeAmenities(amenities []string) (sql.NullString, error) {
	if amenities == nil {
		return sql.NullString{}, nil
	}
	encoded, err := encodeStrings(amenities)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: encoded, Valid: true}, nil
}
