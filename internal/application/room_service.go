package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomService manages buildings, floors, rooms and room usage rules.
type RoomService struct {
	facilities  persistence.FacilityRepository
	rooms       persistence.RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(facilities persistence.FacilityRepository, rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(facilities, rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(facilities persistence.FacilityRepository, rooms persistence.RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{
		facilities:  facilities,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateBuilding validates input and persists a new building for administrators.
func (s *RoomService) CreateBuilding(ctx context.Context, principal Principal, input BuildingInput) (building persistence.Building, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBuilding",
		"principal_id", principal.UserID,
		"organization_id", input.OrganizationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("building_id", building.ID).InfoContext(ctx, "building created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.OrganizationID) == "" {
		vErr.add("organization_id", "organization is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	building = persistence.Building{
		ID:             s.idGenerator(),
		OrganizationID: input.OrganizationID,
		Name:           strings.TrimSpace(input.Name),
		Address:        input.Address,
		Metadata:       input.Metadata,
	}
	if err = s.facilities.CreateBuilding(ctx, building); err != nil {
		err = mapRepoError(err)
		building = persistence.Building{}
		return
	}

	building, err = s.facilities.GetBuilding(ctx, building.ID)
	err = mapRepoError(err)
	return
}

// UpdateBuilding updates a building's mutable fields for administrators. The
// owning organization never changes.
func (s *RoomService) UpdateBuilding(ctx context.Context, principal Principal, buildingID string, input BuildingInput) (building persistence.Building, err error) {
	logger := s.loggerWith(ctx, "UpdateBuilding",
		"principal_id", principal.UserID,
		"building_id", buildingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update building", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "building updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	var existing persistence.Building
	existing, err = s.facilities.GetBuilding(ctx, buildingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Address = input.Address
	existing.Metadata = input.Metadata
	if err = s.facilities.UpdateBuilding(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}

	building, err = s.facilities.GetBuilding(ctx, buildingID)
	err = mapRepoError(err)
	return
}

// GetBuilding retrieves a building by ID.
func (s *RoomService) GetBuilding(ctx context.Context, principal Principal, buildingID string) (persistence.Building, error) {
	building, err := s.facilities.GetBuilding(ctx, buildingID)
	return building, mapRepoError(err)
}

// ListBuildings lists the buildings of one organization.
func (s *RoomService) ListBuildings(ctx context.Context, principal Principal, organizationID string) ([]persistence.Building, error) {
	buildings, err := s.facilities.ListBuildings(ctx, organizationID)
	return buildings, mapRepoError(err)
}

// DeleteBuilding removes a building and everything below it.
func (s *RoomService) DeleteBuilding(ctx context.Context, principal Principal, buildingID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteBuilding",
		"principal_id", principal.UserID,
		"building_id", buildingID,
	)
	if err := s.facilities.DeleteBuilding(ctx, buildingID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete building", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "building deleted")
	return nil
}

// CreateFloor validates input and persists a new floor for administrators.
func (s *RoomService) CreateFloor(ctx context.Context, principal Principal, input FloorInput) (floor persistence.Floor, err error) {
	logger := s.loggerWith(ctx, "CreateFloor",
		"principal_id", principal.UserID,
		"building_id", input.BuildingID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create floor", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("floor_id", floor.ID).InfoContext(ctx, "floor created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.BuildingID) == "" {
		vErr.add("building_id", "building is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	floor = persistence.Floor{
		ID:         s.idGenerator(),
		BuildingID: input.BuildingID,
		Name:       strings.TrimSpace(input.Name),
		Level:      input.Level,
	}
	if err = s.facilities.CreateFloor(ctx, floor); err != nil {
		err = mapRepoError(err)
		floor = persistence.Floor{}
		return
	}

	floor, err = s.facilities.GetFloor(ctx, floor.ID)
	err = mapRepoError(err)
	return
}

// UpdateFloor updates a floor's name and level for administrators.
func (s *RoomService) UpdateFloor(ctx context.Context, principal Principal, floorID string, input FloorInput) (floor persistence.Floor, err error) {
	logger := s.loggerWith(ctx, "UpdateFloor",
		"principal_id", principal.UserID,
		"floor_id", floorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update floor", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "floor updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	var existing persistence.Floor
	existing, err = s.facilities.GetFloor(ctx, floorID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Level = input.Level
	if err = s.facilities.UpdateFloor(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}

	floor, err = s.facilities.GetFloor(ctx, floorID)
	err = mapRepoError(err)
	return
}

// GetFloor retrieves a floor by ID.
func (s *RoomService) GetFloor(ctx context.Context, principal Principal, floorID string) (persistence.Floor, error) {
	floor, err := s.facilities.GetFloor(ctx, floorID)
	return floor, mapRepoError(err)
}

// ListFloors lists the floors of one building.
func (s *RoomService) ListFloors(ctx context.Context, principal Principal, buildingID string) ([]persistence.Floor, error) {
	floors, err := s.facilities.ListFloors(ctx, buildingID)
	return floors, mapRepoError(err)
}

// DeleteFloor removes a floor and its rooms.
func (s *RoomService) DeleteFloor(ctx context.Context, principal Principal, floorID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteFloor",
		"principal_id", principal.UserID,
		"floor_id", floorID,
	)
	if err := s.facilities.DeleteFloor(ctx, floorID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete floor", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "floor deleted")
	return nil
}

// CreateRoom validates input and persists a new room for administrators. The
// room's floor must belong to a building of the room's organization.
func (s *RoomService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room persistence.Room, err error) {
	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", principal.UserID,
		"organization_id", input.OrganizationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = s.checkFloorOrganization(ctx, input.FloorID, input.OrganizationID); err != nil {
		return
	}

	room = persistence.Room{
		ID:             s.idGenerator(),
		OrganizationID: input.OrganizationID,
		FloorID:        input.FloorID,
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Amenities:      input.Amenities,
		Capacity:       input.Capacity,
		Enabled:        roomEnabled(input.Enabled),
		Type:           roomType(input.Type),
		Status:         roomStatus(input.Status),
		Metadata:       input.Metadata,
	}
	if err = s.rooms.CreateRoom(ctx, room); err != nil {
		err = mapRepoError(err)
		room = persistence.Room{}
		return
	}

	room, err = s.rooms.GetRoom(ctx, room.ID)
	err = mapRepoError(err)
	return
}

// UpdateRoom updates a room's mutable fields for administrators. The owning
// organization never changes; moving a room to another floor requires that
// floor to sit inside the same organization.
func (s *RoomService) UpdateRoom(ctx context.Context, principal Principal, roomID string, input RoomInput) (room persistence.Room, err error) {
	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Room
	existing, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	check := input
	check.OrganizationID = existing.OrganizationID
	vErr := validateRoomInput(check)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if input.FloorID != existing.FloorID {
		if err = s.checkFloorOrganization(ctx, input.FloorID, existing.OrganizationID); err != nil {
			return
		}
	}

	existing.FloorID = input.FloorID
	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = strings.TrimSpace(input.Description)
	existing.Amenities = input.Amenities
	existing.Capacity = input.Capacity
	existing.Enabled = roomEnabled(input.Enabled)
	existing.Type = roomType(input.Type)
	existing.Status = roomStatus(input.Status)
	existing.Metadata = input.Metadata
	if err = s.rooms.UpdateRoom(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}

	room, err = s.rooms.GetRoom(ctx, roomID)
	err = mapRepoError(err)
	return
}

// GetRoom retrieves a room by ID.
func (s *RoomService) GetRoom(ctx context.Context, principal Principal, roomID string) (persistence.Room, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	return room, mapRepoError(err)
}

// ListRooms lists the rooms of one organization.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal, organizationID string) ([]persistence.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx, organizationID)
	return rooms, mapRepoError(err)
}

// ListRoomsForFloor lists the rooms on one floor.
func (s *RoomService) ListRoomsForFloor(ctx context.Context, principal Principal, floorID string) ([]persistence.Room, error) {
	rooms, err := s.rooms.ListRoomsForFloor(ctx, floorID)
	return rooms, mapRepoError(err)
}

// DeleteRoom removes a room, its rules and its reservations.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)
	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "room deleted")
	return nil
}

// CreateRoomRule validates and persists an allowed usage window for a room.
func (s *RoomService) CreateRoomRule(ctx context.Context, principal Principal, input RoomRuleInput) (rule persistence.RoomRule, err error) {
	logger := s.loggerWith(ctx, "CreateRoomRule",
		"principal_id", principal.UserID,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_id", rule.ID).InfoContext(ctx, "room rule created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room is required")
	}
	if input.Weekday < time.Sunday || input.Weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between 0 and 6")
	}
	if input.StartMinute < 0 || input.StartMinute >= 1440 {
		vErr.add("start_minute", "start minute must be between 0 and 1439")
	}
	if input.EndMinute <= 0 || input.EndMinute > 1440 {
		vErr.add("end_minute", "end minute must be between 1 and 1440")
	}
	if input.StartMinute >= input.EndMinute {
		vErr.add("end_minute", "end minute must be after start minute")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	rule = persistence.RoomRule{
		ID:          s.idGenerator(),
		RoomID:      input.RoomID,
		Weekday:     input.Weekday,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
	}
	if err = s.rooms.CreateRoomRule(ctx, rule); err != nil {
		err = mapRepoError(err)
		rule = persistence.RoomRule{}
		return
	}
	return
}

// ListRoomRules lists the allowed usage windows of one room.
func (s *RoomService) ListRoomRules(ctx context.Context, principal Principal, roomID string) ([]persistence.RoomRule, error) {
	rules, err := s.rooms.ListRoomRules(ctx, roomID)
	return rules, mapRepoError(err)
}

// DeleteRoomRule removes one allowed usage window.
func (s *RoomService) DeleteRoomRule(ctx context.Context, principal Principal, ruleID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRoomRule",
		"principal_id", principal.UserID,
		"rule_id", ruleID,
	)
	if err := s.rooms.DeleteRoomRule(ctx, ruleID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete room rule", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "room rule deleted")
	return nil
}

// checkFloorOrganization verifies that a floor sits inside a building of the
// given organization.
func (s *RoomService) checkFloorOrganization(ctx context.Context, floorID, organizationID string) error {
	floor, err := s.facilities.GetFloor(ctx, floorID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			vErr := &ValidationError{}
			vErr.add("floor_id", "floor does not exist")
			return vErr
		}
		return mapRepoError(err)
	}
	building, err := s.facilities.GetBuilding(ctx, floor.BuildingID)
	if err != nil {
		return mapRepoError(err)
	}
	if building.OrganizationID != organizationID {
		vErr := &ValidationError{}
		vErr.add("floor_id", "floor belongs to another organization")
		return vErr
	}
	return nil
}

var validRoomTypes = map[persistence.RoomType]struct{}{
	persistence.RoomTypeMeeting:  {},
	persistence.RoomTypeClass:    {},
	persistence.RoomTypeTraining: {},
	persistence.RoomTypeStudio:   {},
	persistence.RoomTypeLounge:   {},
	persistence.RoomTypeGame:     {},
	persistence.RoomTypeBreak:    {},
	persistence.RoomTypeLab:      {},
	persistence.RoomTypeLibrary:  {},
	persistence.RoomTypeWorkshop: {},
	persistence.RoomTypeOther:    {},
}

var validRoomStatuses = map[persistence.RoomStatus]struct{}{
	persistence.RoomActive:      {},
	persistence.RoomInactive:    {},
	persistence.RoomMaintenance: {},
	persistence.RoomArchived:    {},
	persistence.RoomDeleted:     {},
	persistence.RoomRemodelling: {},
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.OrganizationID) == "" {
		vErr.add("organization_id", "organization is required")
	}
	if strings.TrimSpace(input.FloorID) == "" {
		vErr.add("floor_id", "floor is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must not be negative")
	}
	if input.Type != "" {
		if _, ok := validRoomTypes[persistence.RoomType(input.Type)]; !ok {
			vErr.add("type", "type must be one of meeting, class, training, studio, lounge, game, break, lab, library, workshop, other")
		}
	}
	if input.Status != "" {
		if _, ok := validRoomStatuses[persistence.RoomStatus(input.Status)]; !ok {
			vErr.add("status", "status must be one of active, inactive, maintenance, archived, deleted, remodelling")
		}
	}
	return vErr
}

func roomEnabled(enabled *bool) bool {
	if enabled == nil {
		return true
	}
	return *enabled
}

func roomType(value string) persistence.RoomType {
	if value == "" {
		return persistence.RoomTypeMeeting
	}
	return persistence.RoomType(value)
}

func roomStatus(value string) persistence.RoomStatus {
	if value == "" {
		return persistence.RoomActive
	}
	return persistence.RoomStatus(value)
}
