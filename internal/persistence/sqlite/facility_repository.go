package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// FacilityRepository implements persistence.FacilityRepository using SQLite.
type FacilityRepository struct {
	pool *ConnectionPool
}

// NewFacilityRepository creates a new SQLite facility repository.
func NewFacilityRepository(pool *ConnectionPool) *FacilityRepository {
	return &FacilityRepository{pool: pool}
}

const buildingColumns = "id, organization_id, name, address, metadata, created_at, updated_at"

// CreateBuilding inserts a new building.
func (r *FacilityRepository) CreateBuilding(ctx context.Context, building persistence.Building) error {
	if building.ID == "" || building.OrganizationID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO buildings ("+buildingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		building.ID,
		building.OrganizationID,
		building.Name,
		nullString(building.Address),
		nullString(building.Metadata),
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateBuilding updates a building's mutable fields.
func (r *FacilityRepository) UpdateBuilding(ctx context.Context, building persistence.Building) error {
	if building.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE buildings SET name = ?, address = ?, metadata = ?, updated_at = ? WHERE id = ?",
		building.Name,
		nullString(building.Address),
		nullString(building.Metadata),
		formatTime(time.Now().UTC()),
		building.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetBuilding retrieves a building by ID.
func (r *FacilityRepository) GetBuilding(ctx context.Context, id string) (persistence.Building, error) {
	if id == "" {
		return persistence.Building{}, persistence.ErrNotFound
	}
	return r.scanBuilding(r.pool.db.QueryRowContext(ctx,
		"SELECT "+buildingColumns+" FROM buildings WHERE id = ?", id))
}

// ListBuildings lists an organization's buildings ordered by name.
func (r *FacilityRepository) ListBuildings(ctx context.Context, organizationID string) ([]persistence.Building, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+buildingColumns+" FROM buildings WHERE organization_id = ? ORDER BY name ASC, id ASC",
		organizationID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var buildings []persistence.Building
	for rows.Next() {
		building, err := r.scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, building)
	}
	return buildings, rows.Err()
}

// DeleteBuilding removes a building and its floors and rooms.
func (r *FacilityRepository) DeleteBuilding(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM buildings WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

const floorColumns = "id, building_id, name, level, created_at, updated_at"

// CreateFloor inserts a new floor.
func (r *FacilityRepository) CreateFloor(ctx context.Context, floor persistence.Floor) error {
	if floor.ID == "" || floor.BuildingID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO floors ("+floorColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		floor.ID, floor.BuildingID, floor.Name, floor.Level, formatTime(now), formatTime(now))
	return mapError(err)
}

// UpdateFloor updates a floor's mutable fields.
func (r *FacilityRepository) UpdateFloor(ctx context.Context, floor persistence.Floor) error {
	if floor.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE floors SET name = ?, level = ?, updated_at = ? WHERE id = ?",
		floor.Name, floor.Level, formatTime(time.Now().UTC()), floor.ID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetFloor retrieves a floor by ID.
func (r *FacilityRepository) GetFloor(ctx context.Context, id string) (persistence.Floor, error) {
	if id == "" {
		return persistence.Floor{}, persistence.ErrNotFound
	}
	return r.scanFloor(r.pool.db.QueryRowContext(ctx,
		"SELECT "+floorColumns+" FROM floors WHERE id = ?", id))
}

// ListFloors lists a building's floors ordered by level.
func (r *FacilityRepository) ListFloors(ctx context.Context, buildingID string) ([]persistence.Floor, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+floorColumns+" FROM floors WHERE building_id = ? ORDER BY level ASC, id ASC",
		buildingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var floors []persistence.Floor
	for rows.Next() {
		floor, err := r.scanFloor(rows)
		if err != nil {
			return nil, err
		}
		floors = append(floors, floor)
	}
	return floors, rows.Err()
}

// DeleteFloor removes a floor and its rooms.
func (r *FacilityRepository) DeleteFloor(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM floors WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

func (r *FacilityRepository) scanBuilding(row rowScanner) (persistence.Building, error) {
	var building persistence.Building
	var address, metadata sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(
		&building.ID,
		&building.OrganizationID,
		&building.Name,
		&address,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Building{}, mapError(err)
	}
	building.Address = stringPtr(address)
	building.Metadata = stringPtr(metadata)
	if building.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Building{}, err
	}
	if building.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Building{}, err
	}
	return building, nil
}

func (r *FacilityRepository) scanFloor(row rowScanner) (persistence.Floor, error) {
	var floor persistence.Floor
	var createdAt, updatedAt string
	err := row.Scan(&floor.ID, &floor.BuildingID, &floor.Name, &floor.Level, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Floor{}, mapError(err)
	}
	if floor.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Floor{}, err
	}
	if floor.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Floor{}, err
	}
	return floor, nil
}
