package persistence

import (
	"time"

	"github.com/example/room-booking/internal/recurrence"
)

// Organization represents a tenant. Every building, room and membership is
// scoped to exactly one organization.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberRole describes a user's role inside an organization.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Membership links a user to an organization with a role.
type Membership struct {
	OrganizationID string
	UserID         string
	Role           MemberRole
	CreatedAt      time.Time
}

// User represents an account in the booking domain.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Building represents a physical site belonging to an organization.
type Building struct {
	ID             string
	OrganizationID string
	Name           string
	Address        *string
	Metadata       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Floor represents one level of a building.
type Floor struct {
	ID         string
	BuildingID string
	Name       string
	Level      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RoomType tags a room with its intended use.
type RoomType string

const (
	RoomTypeMeeting  RoomType = "meeting"
	RoomTypeClass    RoomType = "class"
	RoomTypeTraining RoomType = "training"
	RoomTypeStudio   RoomType = "studio"
	RoomTypeLounge   RoomType = "lounge"
	RoomTypeGame     RoomType = "game"
	RoomTypeBreak    RoomType = "break"
	RoomTypeLab      RoomType = "lab"
	RoomTypeLibrary  RoomType = "library"
	RoomTypeWorkshop RoomType = "workshop"
	RoomTypeOther    RoomType = "other"
)

// RoomStatus describes a room's lifecycle state.
type RoomStatus string

const (
	RoomActive      RoomStatus = "active"
	RoomInactive    RoomStatus = "inactive"
	RoomMaintenance RoomStatus = "maintenance"
	RoomArchived    RoomStatus = "archived"
	RoomDeleted     RoomStatus = "deleted"
	RoomRemodelling RoomStatus = "remodelling"
)

// Room represents a bookable room on a floor.
type Room struct {
	ID             string
	OrganizationID string
	FloorID        string
	Name           string
	Description    string
	Amenities      []string
	Capacity       int
	Enabled        bool
	Type           RoomType
	Status         RoomStatus
	Metadata       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RoomRule declares an allowed usage window for a room on one weekday.
// Minutes count from midnight in the organization's timezone.
type RoomRule struct {
	ID          string
	RoomID      string
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventStatus describes the lifecycle state of an event.
type EventStatus string

const (
	EventStatusActive    EventStatus = "active"
	EventStatusCancelled EventStatus = "cancelled"
)

// ApprovalStatus describes the approval sub-state of an event that requires
// sign-off before its room reservation takes effect.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "none"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Event represents a calendar entry. A nil Recurrence means the event occurs
// exactly once at [Start, End). OrganizationID is empty for personal events
// that reserve no room. ApproverID and ApprovedAt record who decided a
// pending approval and when; both are nil while no decision has been made.
type Event struct {
	ID             string
	OrganizationID string
	CreatorID      string
	Title          string
	Description    *string
	Start          time.Time
	End            time.Time
	Extendable     bool
	Status         EventStatus
	Approval       ApprovalStatus
	ApproverID     *string
	ApprovedAt     *time.Time
	Recurrence     *recurrence.Pattern
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EventException overrides one occurrence slot of a recurring event. The
// record is addressed by (EventID, OriginalStart).
type EventException struct {
	EventID       string
	OriginalStart time.Time
	OriginalEnd   time.Time
	Kind          recurrence.ExceptionKind
	NewStart      *time.Time
	NewEnd        *time.Time
	Recurrence    *recurrence.Pattern
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ParticipantPermission grants a participant one capability on the event.
type ParticipantPermission string

const (
	PermissionRead   ParticipantPermission = "read"
	PermissionWrite  ParticipantPermission = "write"
	PermissionManage ParticipantPermission = "manage"
	PermissionOwner  ParticipantPermission = "owner"
	PermissionInvite ParticipantPermission = "invite"
)

// ParticipantStatus describes a participant record's lifecycle state.
type ParticipantStatus string

const (
	ParticipantActive   ParticipantStatus = "active"
	ParticipantInactive ParticipantStatus = "inactive"
	ParticipantArchived ParticipantStatus = "archived"
)

// Participant links a user to an event with a permission set. The record is
// addressed by (EventID, UserID, ID): a user may accumulate several records
// over the event's lifecycle, each with its own identity.
type Participant struct {
	EventID     string
	UserID      string
	ID          string
	Permissions []ParticipantPermission
	Status      ParticipantStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvitationStatus describes a pending invitation's answer.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Invitation asks a user to join an event.
type Invitation struct {
	ID        string
	EventID   string
	UserID    string
	Status    InvitationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomLink reserves a room for an event. An event may reserve several rooms
// and a room serves many events. The row carries its own identity next to the
// pair, so distinct reservations of the same room over the event's lifecycle
// stay distinguishable.
type RoomLink struct {
	EventID   string
	ID        string
	RoomID    string
	CreatedAt time.Time
}
