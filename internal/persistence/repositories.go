package persistence

import (
	"context"
	"time"
)

// OrganizationRepository exposes CRUD operations for organizations and their
// memberships.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, org Organization) error
	UpdateOrganization(ctx context.Context, org Organization) error
	GetOrganization(ctx context.Context, id string) (Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	DeleteOrganization(ctx context.Context, id string) error

	AddMember(ctx context.Context, membership Membership) error
	RemoveMember(ctx context.Context, organizationID, userID string) error
	ListMembers(ctx context.Context, organizationID string) ([]Membership, error)
	ListMembershipsForUser(ctx context.Context, userID string) ([]Membership, error)
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// FacilityRepository stores buildings and floors.
type FacilityRepository interface {
	CreateBuilding(ctx context.Context, building Building) error
	UpdateBuilding(ctx context.Context, building Building) error
	GetBuilding(ctx context.Context, id string) (Building, error)
	ListBuildings(ctx context.Context, organizationID string) ([]Building, error)
	DeleteBuilding(ctx context.Context, id string) error

	CreateFloor(ctx context.Context, floor Floor) error
	UpdateFloor(ctx context.Context, floor Floor) error
	GetFloor(ctx context.Context, id string) (Floor, error)
	ListFloors(ctx context.Context, buildingID string) ([]Floor, error)
	DeleteFloor(ctx context.Context, id string) error
}

// RoomRepository stores rooms and their usage rules.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, organizationID string) ([]Room, error)
	ListRoomsForFloor(ctx context.Context, floorID string) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error

	CreateRoomRule(ctx context.Context, rule RoomRule) error
	ListRoomRules(ctx context.Context, roomID string) ([]RoomRule, error)
	DeleteRoomRule(ctx context.Context, id string) error
}

// EventFilter narrows event queries. Time bounds match events whose base
// interval intersects (StartsBefore, EndsAfter); recurring events additionally
// match whenever their series has not terminated before EndsAfter.
type EventFilter struct {
	OrganizationID string
	CreatorID      string
	RoomID         string
	ParticipantID  string
	StartsBefore   *time.Time
	EndsAfter      *time.Time
}

// EventRepository stores events, their participants and room reservations.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error

	LinkRoom(ctx context.Context, link RoomLink) error
	UnlinkRoom(ctx context.Context, eventID, roomID string) error
	ListRoomLinks(ctx context.Context, eventID string) ([]RoomLink, error)
	ListEventsForRoom(ctx context.Context, roomID string) ([]Event, error)

	AddParticipant(ctx context.Context, participant Participant) error
	RemoveParticipant(ctx context.Context, eventID, userID string) error
	ListParticipants(ctx context.Context, eventID string) ([]Participant, error)
}

// ExceptionRepository stores per-occurrence overrides for recurring events.
type ExceptionRepository interface {
	UpsertException(ctx context.Context, exception EventException) error
	GetException(ctx context.Context, eventID string, originalStart time.Time) (EventException, error)
	ListExceptions(ctx context.Context, eventID string) ([]EventException, error)
	DeleteException(ctx context.Context, eventID string, originalStart time.Time) error
	DeleteExceptionsForEvent(ctx context.Context, eventID string) error
}

// InvitationRepository stores event invitations.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation Invitation) error
	UpdateInvitation(ctx context.Context, invitation Invitation) error
	GetInvitation(ctx context.Context, id string) (Invitation, error)
	ListInvitationsForEvent(ctx context.Context, eventID string) ([]Invitation, error)
	ListInvitationsForUser(ctx context.Context, userID string) ([]Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
}
