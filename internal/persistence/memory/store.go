// Package memory provides an in-memory implementation of the persistence
// repositories. It backs service and handler tests and keeps the same error
// and ordering semantics as the SQLite implementation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// Store holds every aggregate in process memory guarded by one lock.
type Store struct {
	mu sync.RWMutex

	organizations map[string]persistence.Organization
	memberships   map[string]persistence.Membership
	users         map[string]persistence.User
	buildings     map[string]persistence.Building
	floors        map[string]persistence.Floor
	rooms         map[string]persistence.Room
	roomRules     map[string]persistence.RoomRule
	events        map[string]persistence.Event
	exceptions    map[string]persistence.EventException
	participants  map[string]persistence.Participant
	roomLinks     map[string]persistence.RoomLink
	invitations   map[string]persistence.Invitation
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		organizations: make(map[string]persistence.Organization),
		memberships:   make(map[string]persistence.Membership),
		users:         make(map[string]persistence.User),
		buildings:     make(map[string]persistence.Building),
		floors:        make(map[string]persistence.Floor),
		rooms:         make(map[string]persistence.Room),
		roomRules:     make(map[string]persistence.RoomRule),
		events:        make(map[string]persistence.Event),
		exceptions:    make(map[string]persistence.EventException),
		participants:  make(map[string]persistence.Participant),
		roomLinks:     make(map[string]persistence.RoomLink),
		invitations:   make(map[string]persistence.Invitation),
	}
}

func pairKey(a, b string) string { return a + "\x00" + b }

func tripleKey(a, b, c string) string { return a + "\x00" + b + "\x00" + c }

func exceptionKey(eventID string, originalStart time.Time) string {
	return eventID + "\x00" + originalStart.UTC().Format(time.RFC3339Nano)
}

// CreateOrganization inserts a new organization.
func (s *Store) CreateOrganization(ctx context.Context, org persistence.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if org.ID == "" || org.Slug == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.organizations[org.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.organizations {
		if existing.Slug == org.Slug {
			return persistence.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now
	s.organizations[org.ID] = org
	return nil
}

// UpdateOrganization updates an existing organization.
func (s *Store) UpdateOrganization(ctx context.Context, org persistence.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.organizations[org.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = time.Now().UTC()
	s.organizations[org.ID] = org
	return nil
}

// GetOrganization retrieves an organization by ID.
func (s *Store) GetOrganization(ctx context.Context, id string) (persistence.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[id]
	if !ok {
		return persistence.Organization{}, persistence.ErrNotFound
	}
	return org, nil
}

// GetOrganizationBySlug retrieves an organization by its slug.
func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (persistence.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, org := range s.organizations {
		if org.Slug == slug {
			return org, nil
		}
	}
	return persistence.Organization{}, persistence.ErrNotFound
}

// ListOrganizations lists all organizations ordered by name.
func (s *Store) ListOrganizations(ctx context.Context) ([]persistence.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]persistence.Organization, 0, len(s.organizations))
	for _, org := range s.organizations {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool {
		if orgs[i].Name != orgs[j].Name {
			return orgs[i].Name < orgs[j].Name
		}
		return orgs[i].ID < orgs[j].ID
	})
	return orgs, nil
}

// DeleteOrganization removes an organization and everything scoped to it.
func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.organizations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.organizations, id)
	for key, membership := range s.memberships {
		if membership.OrganizationID == id {
			delete(s.memberships, key)
		}
	}
	for buildingID, building := range s.buildings {
		if building.OrganizationID == id {
			s.deleteBuildingLocked(buildingID)
		}
	}
	for eventID, event := range s.events {
		if event.OrganizationID == id {
			s.deleteEventLocked(eventID)
		}
	}
	return nil
}

// AddMember links a user to an organization.
func (s *Store) AddMember(ctx context.Context, membership persistence.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if membership.OrganizationID == "" || membership.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.organizations[membership.OrganizationID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.users[membership.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	key := pairKey(membership.OrganizationID, membership.UserID)
	if _, ok := s.memberships[key]; ok {
		return persistence.ErrDuplicate
	}
	if membership.Role == "" {
		membership.Role = persistence.RoleMember
	}
	membership.CreatedAt = time.Now().UTC()
	s.memberships[key] = membership
	return nil
}

// RemoveMember unlinks a user from an organization.
func (s *Store) RemoveMember(ctx context.Context, organizationID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(organizationID, userID)
	if _, ok := s.memberships[key]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.memberships, key)
	return nil
}

// ListMembers lists an organization's memberships ordered by user ID.
func (s *Store) ListMembers(ctx context.Context, organizationID string) ([]persistence.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []persistence.Membership
	for _, membership := range s.memberships {
		if membership.OrganizationID == organizationID {
			members = append(members, membership)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].UserID < members[j].UserID })
	return members, nil
}

// ListMembershipsForUser lists the organizations a user belongs to.
func (s *Store) ListMembershipsForUser(ctx context.Context, userID string) ([]persistence.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var memberships []persistence.Membership
	for _, membership := range s.memberships {
		if membership.UserID == userID {
			memberships = append(memberships, membership)
		}
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].OrganizationID < memberships[j].OrganizationID
	})
	return memberships, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" || user.Email == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.users[user.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return persistence.ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return nil
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

// ListUsers lists all users ordered by email.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]persistence.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// DeleteUser removes a user by ID.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.users, id)
	for key, membership := range s.memberships {
		if membership.UserID == id {
			delete(s.memberships, key)
		}
	}
	return nil
}

// CreateBuilding inserts a new building.
func (s *Store) CreateBuilding(ctx context.Context, building persistence.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if building.ID == "" || building.OrganizationID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.organizations[building.OrganizationID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.buildings[building.ID]; ok {
		return persistence.ErrDuplicate
	}

	now := time.Now().UTC()
	building.CreatedAt = now
	building.UpdatedAt = now
	s.buildings[building.ID] = building
	return nil
}

// UpdateBuilding updates a building's mutable fields.
func (s *Store) UpdateBuilding(ctx context.Context, building persistence.Building) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.buildings[building.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	building.OrganizationID = existing.OrganizationID
	building.CreatedAt = existing.CreatedAt
	building.UpdatedAt = time.Now().UTC()
	s.buildings[building.ID] = building
	return nil
}

// GetBuilding retrieves a building by ID.
func (s *Store) GetBuilding(ctx context.Context, id string) (persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	building, ok := s.buildings[id]
	if !ok {
		return persistence.Building{}, persistence.ErrNotFound
	}
	return building, nil
}

// ListBuildings lists an organization's buildings ordered by name.
func (s *Store) ListBuildings(ctx context.Context, organizationID string) ([]persistence.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buildings []persistence.Building
	for _, building := range s.buildings {
		if building.OrganizationID == organizationID {
			buildings = append(buildings, building)
		}
	}
	sort.Slice(buildings, func(i, j int) bool {
		if buildings[i].Name != buildings[j].Name {
			return buildings[i].Name < buildings[j].Name
		}
		return buildings[i].ID < buildings[j].ID
	})
	return buildings, nil
}

// DeleteBuilding removes a building and its floors and rooms.
func (s *Store) DeleteBuilding(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buildings[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteBuildingLocked(id)
	return nil
}

func (s *Store) deleteBuildingLocked(id string) {
	delete(s.buildings, id)
	for floorID, floor := range s.floors {
		if floor.BuildingID == id {
			s.deleteFloorLocked(floorID)
		}
	}
}

// CreateFloor inserts a new floor.
func (s *Store) CreateFloor(ctx context.Context, floor persistence.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if floor.ID == "" || floor.BuildingID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.buildings[floor.BuildingID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.floors[floor.ID]; ok {
		return persistence.ErrDuplicate
	}

	now := time.Now().UTC()
	floor.CreatedAt = now
	floor.UpdatedAt = now
	s.floors[floor.ID] = floor
	return nil
}

// UpdateFloor updates a floor's mutable fields.
func (s *Store) UpdateFloor(ctx context.Context, floor persistence.Floor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.floors[floor.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	floor.BuildingID = existing.BuildingID
	floor.CreatedAt = existing.CreatedAt
	floor.UpdatedAt = time.Now().UTC()
	s.floors[floor.ID] = floor
	return nil
}

// GetFloor retrieves a floor by ID.
func (s *Store) GetFloor(ctx context.Context, id string) (persistence.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	floor, ok := s.floors[id]
	if !ok {
		return persistence.Floor{}, persistence.ErrNotFound
	}
	return floor, nil
}

// ListFloors lists a building's floors ordered by level.
func (s *Store) ListFloors(ctx context.Context, buildingID string) ([]persistence.Floor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var floors []persistence.Floor
	for _, floor := range s.floors {
		if floor.BuildingID == buildingID {
			floors = append(floors, floor)
		}
	}
	sort.Slice(floors, func(i, j int) bool {
		if floors[i].Level != floors[j].Level {
			return floors[i].Level < floors[j].Level
		}
		return floors[i].ID < floors[j].ID
	})
	return floors, nil
}

// DeleteFloor removes a floor and its rooms.
func (s *Store) DeleteFloor(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.floors[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteFloorLocked(id)
	return nil
}

func (s *Store) deleteFloorLocked(id string) {
	delete(s.floors, id)
	for roomID, room := range s.rooms {
		if room.FloorID == id {
			s.deleteRoomLocked(roomID)
		}
	}
}

// CreateRoom inserts a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if room.ID == "" || room.OrganizationID == "" || room.FloorID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.organizations[room.OrganizationID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.floors[room.FloorID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrDuplicate
	}
	if room.Type == "" {
		room.Type = persistence.RoomTypeMeeting
	}
	if room.Status == "" {
		room.Status = persistence.RoomActive
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	room.Amenities = cloneStrings(room.Amenities)
	s.rooms[room.ID] = room
	return nil
}

// UpdateRoom updates a room's mutable fields.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if room.FloorID != existing.FloorID {
		if _, ok := s.floors[room.FloorID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	room.OrganizationID = existing.OrganizationID
	room.CreatedAt = existing.CreatedAt
	room.UpdatedAt = time.Now().UTC()
	room.Amenities = cloneStrings(room.Amenities)
	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// ListRooms lists an organization's rooms ordered by name.
func (s *Store) ListRooms(ctx context.Context, organizationID string) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listRoomsLocked(func(room persistence.Room) bool {
		return room.OrganizationID == organizationID
	}), nil
}

// ListRoomsForFloor lists the rooms on a floor ordered by name.
func (s *Store) ListRoomsForFloor(ctx context.Context, floorID string) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listRoomsLocked(func(room persistence.Room) bool {
		return room.FloorID == floorID
	}), nil
}

func (s *Store) listRoomsLocked(match func(persistence.Room) bool) []persistence.Room {
	var rooms []persistence.Room
	for _, room := range s.rooms {
		if match(room) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name != rooms[j].Name {
			return rooms[i].Name < rooms[j].Name
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

// DeleteRoom removes a room and its rules and reservations.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteRoomLocked(id)
	return nil
}

func (s *Store) deleteRoomLocked(id string) {
	delete(s.rooms, id)
	for ruleID, rule := range s.roomRules {
		if rule.RoomID == id {
			delete(s.roomRules, ruleID)
		}
	}
	for key, link := range s.roomLinks {
		if link.RoomID == id {
			delete(s.roomLinks, key)
		}
	}
}

// CreateRoomRule inserts a usage rule for a room.
func (s *Store) CreateRoomRule(ctx context.Context, rule persistence.RoomRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == "" || rule.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if rule.StartMinute < 0 || rule.EndMinute > 24*60 || rule.StartMinute >= rule.EndMinute {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.rooms[rule.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.roomRules[rule.ID]; ok {
		return persistence.ErrDuplicate
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	s.roomRules[rule.ID] = rule
	return nil
}

// ListRoomRules lists a room's rules ordered by weekday then start.
func (s *Store) ListRoomRules(ctx context.Context, roomID string) ([]persistence.RoomRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rules []persistence.RoomRule
	for _, rule := range s.roomRules {
		if rule.RoomID == roomID {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Weekday != rules[j].Weekday {
			return rules[i].Weekday < rules[j].Weekday
		}
		return rules[i].StartMinute < rules[j].StartMinute
	})
	return rules, nil
}

// DeleteRoomRule removes a usage rule by ID.
func (s *Store) DeleteRoomRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roomRules[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.roomRules, id)
	return nil
}

// CreateEvent inserts a new event.
func (s *Store) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" || event.CreatorID == "" {
		return persistence.ErrConstraintViolation
	}
	if !event.End.After(event.Start) {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.users[event.CreatorID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if event.OrganizationID != "" {
		if _, ok := s.organizations[event.OrganizationID]; !ok {
			return persistence.ErrForeignKeyViolation
		}
	}
	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Recurrence = event.Recurrence.Clone()
	s.events[event.ID] = event
	return nil
}

// UpdateEvent updates an event's mutable fields. The creator never changes.
func (s *Store) UpdateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if !event.End.After(event.Start) {
		return persistence.ErrConstraintViolation
	}
	event.CreatorID = existing.CreatorID
	event.OrganizationID = existing.OrganizationID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now().UTC()
	event.Recurrence = event.Recurrence.Clone()
	s.events[event.ID] = event
	return nil
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	event.Recurrence = event.Recurrence.Clone()
	return event, nil
}

// ListEvents lists events matching the filter ordered by start time.
func (s *Store) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []persistence.Event
	for _, event := range s.events {
		if !s.matchesFilterLocked(event, filter) {
			continue
		}
		event.Recurrence = event.Recurrence.Clone()
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

func (s *Store) matchesFilterLocked(event persistence.Event, filter persistence.EventFilter) bool {
	if filter.OrganizationID != "" && event.OrganizationID != filter.OrganizationID {
		return false
	}
	if filter.CreatorID != "" && event.CreatorID != filter.CreatorID {
		return false
	}
	if filter.RoomID != "" {
		linked := false
		for _, link := range s.roomLinks {
			if link.EventID == event.ID && link.RoomID == filter.RoomID {
				linked = true
				break
			}
		}
		if !linked {
			return false
		}
	}
	if filter.ParticipantID != "" {
		isParticipant := false
		for _, participant := range s.participants {
			if participant.EventID == event.ID && participant.UserID == filter.ParticipantID {
				isParticipant = true
				break
			}
		}
		if !isParticipant && event.CreatorID != filter.ParticipantID {
			return false
		}
	}
	if filter.StartsBefore != nil && !event.Start.Before(*filter.StartsBefore) {
		return false
	}
	if filter.EndsAfter != nil && !event.End.After(*filter.EndsAfter) {
		// A recurring series keeps matching until it has terminated.
		if event.Recurrence == nil {
			return false
		}
		if event.Recurrence.EndDate != nil && !event.Recurrence.EndDate.After(*filter.EndsAfter) {
			return false
		}
	}
	return true
}

// DeleteEvent removes an event and its exceptions, participants, room links
// and invitations.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteEventLocked(id)
	return nil
}

func (s *Store) deleteEventLocked(id string) {
	delete(s.events, id)
	for key, exception := range s.exceptions {
		if exception.EventID == id {
			delete(s.exceptions, key)
		}
	}
	for key, participant := range s.participants {
		if participant.EventID == id {
			delete(s.participants, key)
		}
	}
	for key, link := range s.roomLinks {
		if link.EventID == id {
			delete(s.roomLinks, key)
		}
	}
	for invitationID, invitation := range s.invitations {
		if invitation.EventID == id {
			delete(s.invitations, invitationID)
		}
	}
}

// LinkRoom reserves a room for an event. Each reservation row carries its own
// identity next to the pair.
func (s *Store) LinkRoom(ctx context.Context, link persistence.RoomLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if link.EventID == "" || link.ID == "" || link.RoomID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.events[link.EventID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.rooms[link.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	key := tripleKey(link.EventID, link.ID, link.RoomID)
	if _, ok := s.roomLinks[key]; ok {
		return persistence.ErrDuplicate
	}
	link.CreatedAt = time.Now().UTC()
	s.roomLinks[key] = link
	return nil
}

// UnlinkRoom releases every reservation an event holds on a room.
func (s *Store) UnlinkRoom(ctx context.Context, eventID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for key, link := range s.roomLinks {
		if link.EventID == eventID && link.RoomID == roomID {
			delete(s.roomLinks, key)
			found = true
		}
	}
	if !found {
		return persistence.ErrNotFound
	}
	return nil
}

// ListRoomLinks lists an event's room reservations.
func (s *Store) ListRoomLinks(ctx context.Context, eventID string) ([]persistence.RoomLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var links []persistence.RoomLink
	for _, link := range s.roomLinks {
		if link.EventID == eventID {
			links = append(links, link)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].RoomID != links[j].RoomID {
			return links[i].RoomID < links[j].RoomID
		}
		return links[i].ID < links[j].ID
	})
	return links, nil
}

// ListEventsForRoom lists the events holding a reservation on the room.
func (s *Store) ListEventsForRoom(ctx context.Context, roomID string) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []persistence.Event
	for _, link := range s.roomLinks {
		if link.RoomID != roomID {
			continue
		}
		event, ok := s.events[link.EventID]
		if !ok {
			continue
		}
		event.Recurrence = event.Recurrence.Clone()
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// AddParticipant attaches a participant record to an event. Records are
// addressed by (event, user, record ID), so a user may hold several records
// over the event's lifecycle.
func (s *Store) AddParticipant(ctx context.Context, participant persistence.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if participant.EventID == "" || participant.UserID == "" || participant.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.events[participant.EventID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.users[participant.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	key := tripleKey(participant.EventID, participant.UserID, participant.ID)
	if _, ok := s.participants[key]; ok {
		return persistence.ErrDuplicate
	}
	if len(participant.Permissions) == 0 {
		participant.Permissions = []persistence.ParticipantPermission{persistence.PermissionRead}
	}
	if participant.Status == "" {
		participant.Status = persistence.ParticipantActive
	}
	now := time.Now().UTC()
	participant.CreatedAt = now
	participant.UpdatedAt = now
	participant.Permissions = clonePermissions(participant.Permissions)
	s.participants[key] = participant
	return nil
}

// RemoveParticipant removes every participant record a user holds on an event.
func (s *Store) RemoveParticipant(ctx context.Context, eventID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for key, participant := range s.participants {
		if participant.EventID == eventID && participant.UserID == userID {
			delete(s.participants, key)
			found = true
		}
	}
	if !found {
		return persistence.ErrNotFound
	}
	return nil
}

// ListParticipants lists an event's participant records ordered by user ID.
func (s *Store) ListParticipants(ctx context.Context, eventID string) ([]persistence.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var participants []persistence.Participant
	for _, participant := range s.participants {
		if participant.EventID == eventID {
			participants = append(participants, participant)
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		if participants[i].UserID != participants[j].UserID {
			return participants[i].UserID < participants[j].UserID
		}
		return participants[i].ID < participants[j].ID
	})
	return participants, nil
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string(nil), values...)
}

func clonePermissions(permissions []persistence.ParticipantPermission) []persistence.ParticipantPermission {
	if permissions == nil {
		return nil
	}
	return append([]persistence.ParticipantPermission(nil), permissions...)
}

// UpsertException creates or replaces the override for one occurrence slot.
func (s *Store) UpsertException(ctx context.Context, exception persistence.EventException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exception.EventID == "" || exception.OriginalStart.IsZero() {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.events[exception.EventID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	now := time.Now().UTC()
	key := exceptionKey(exception.EventID, exception.OriginalStart)
	if existing, ok := s.exceptions[key]; ok {
		exception.CreatedAt = existing.CreatedAt
	} else {
		exception.CreatedAt = now
	}
	exception.UpdatedAt = now
	exception.Recurrence = exception.Recurrence.Clone()
	s.exceptions[key] = exception
	return nil
}

// GetException retrieves the override for one occurrence slot.
func (s *Store) GetException(ctx context.Context, eventID string, originalStart time.Time) (persistence.EventException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exception, ok := s.exceptions[exceptionKey(eventID, originalStart)]
	if !ok {
		return persistence.EventException{}, persistence.ErrNotFound
	}
	exception.Recurrence = exception.Recurrence.Clone()
	return exception, nil
}

// ListExceptions lists an event's overrides ordered by original start.
func (s *Store) ListExceptions(ctx context.Context, eventID string) ([]persistence.EventException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exceptions []persistence.EventException
	for _, exception := range s.exceptions {
		if exception.EventID == eventID {
			exception.Recurrence = exception.Recurrence.Clone()
			exceptions = append(exceptions, exception)
		}
	}
	sort.Slice(exceptions, func(i, j int) bool {
		return exceptions[i].OriginalStart.Before(exceptions[j].OriginalStart)
	})
	return exceptions, nil
}

// DeleteException removes the override for one occurrence slot.
func (s *Store) DeleteException(ctx context.Context, eventID string, originalStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := exceptionKey(eventID, originalStart)
	if _, ok := s.exceptions[key]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.exceptions, key)
	return nil
}

// DeleteExceptionsForEvent removes every override attached to an event.
func (s *Store) DeleteExceptionsForEvent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, exception := range s.exceptions {
		if exception.EventID == eventID {
			delete(s.exceptions, key)
		}
	}
	return nil
}

// CreateInvitation inserts a new invitation.
func (s *Store) CreateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if invitation.ID == "" || invitation.EventID == "" || invitation.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.events[invitation.EventID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.users[invitation.UserID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.invitations[invitation.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.invitations {
		if existing.EventID == invitation.EventID && existing.UserID == invitation.UserID {
			return persistence.ErrDuplicate
		}
	}
	if invitation.Status == "" {
		invitation.Status = persistence.InvitationPending
	}

	now := time.Now().UTC()
	invitation.CreatedAt = now
	invitation.UpdatedAt = now
	s.invitations[invitation.ID] = invitation
	return nil
}

// UpdateInvitation updates an invitation's status.
func (s *Store) UpdateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.invitations[invitation.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	existing.Status = invitation.Status
	existing.UpdatedAt = time.Now().UTC()
	s.invitations[invitation.ID] = existing
	return nil
}

// GetInvitation retrieves an invitation by ID.
func (s *Store) GetInvitation(ctx context.Context, id string) (persistence.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invitation, ok := s.invitations[id]
	if !ok {
		return persistence.Invitation{}, persistence.ErrNotFound
	}
	return invitation, nil
}

// ListInvitationsForEvent lists an event's invitations ordered by user ID.
func (s *Store) ListInvitationsForEvent(ctx context.Context, eventID string) ([]persistence.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invitations []persistence.Invitation
	for _, invitation := range s.invitations {
		if invitation.EventID == eventID {
			invitations = append(invitations, invitation)
		}
	}
	sort.Slice(invitations, func(i, j int) bool { return invitations[i].UserID < invitations[j].UserID })
	return invitations, nil
}

// ListInvitationsForUser lists a user's invitations ordered by creation time.
func (s *Store) ListInvitationsForUser(ctx context.Context, userID string) ([]persistence.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var invitations []persistence.Invitation
	for _, invitation := range s.invitations {
		if invitation.UserID == userID {
			invitations = append(invitations, invitation)
		}
	}
	sort.Slice(invitations, func(i, j int) bool {
		if !invitations[i].CreatedAt.Equal(invitations[j].CreatedAt) {
			return invitations[i].CreatedAt.Before(invitations[j].CreatedAt)
		}
		return invitations[i].ID < invitations[j].ID
	})
	return invitations, nil
}

// DeleteInvitation removes an invitation by ID.
func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invitations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.invitations, id)
	return nil
}

var (
	_ persistence.OrganizationRepository = (*Store)(nil)
	_ persistence.UserRepository         = (*Store)(nil)
	_ persistence.FacilityRepository     = (*Store)(nil)
	_ persistence.RoomRepository         = (*Store)(nil)
	_ persistence.EventRepository        = (*Store)(nil)
	_ persistence.ExceptionRepository    = (*Store)(nil)
	_ persistence.InvitationRepository   = (*Store)(nil)
)
