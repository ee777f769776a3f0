package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

var (
	orgCounter   uint64
	userCounter  uint64
	roomCounter  uint64
	eventCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ------------------------- Organization fixtures -------------------------

// OrganizationFixture represents a deterministic tenant record.
type OrganizationFixture struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrganizationOption configures the generated organization fixture.
type OrganizationOption func(*OrganizationFixture)

// NewOrganizationFixture returns a deterministic tenant fixture with optional overrides.
func NewOrganizationFixture(opts ...OrganizationOption) OrganizationFixture {
	idx := atomic.AddUint64(&orgCounter, 1)
	id := fmt.Sprintf("org-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := OrganizationFixture{
		ID:        id,
		Name:      fmt.Sprintf("Organization %03d", idx),
		Slug:      id,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithOrganizationID overrides the generated organization ID.
func WithOrganizationID(id string) OrganizationOption {
	return func(f *OrganizationFixture) {
		f.ID = id
	}
}

// WithOrganizationSlug overrides the generated slug.
func WithOrganizationSlug(slug string) OrganizationOption {
	return func(f *OrganizationFixture) {
		f.Slug = slug
	}
}

// Persistence returns the fixture as a persistence.Organization value.
func (f OrganizationFixture) Persistence() persistence.Organization {
	return persistence.Organization{
		ID:        f.ID,
		Name:      f.Name,
		Slug:      f.Slug,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.OrganizationInput.
func (f OrganizationFixture) Input() application.OrganizationInput {
	return application.OrganizationInput{Name: f.Name, Slug: f.Slug}
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record together with the
// building and floor it sits in.
type RoomFixture struct {
	OrganizationID string
	BuildingID     string
	FloorID        string
	ID             string
	Name           string
	Capacity       int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(organizationID string, opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		OrganizationID: organizationID,
		BuildingID:     fmt.Sprintf("building-%03d", idx),
		FloorID:        fmt.Sprintf("floor-%03d", idx),
		ID:             id,
		Name:           fmt.Sprintf("Room %03d", idx),
		Capacity:       int(4 + idx%4),
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomFloor overrides the generated building and floor identifiers.
func WithRoomFloor(buildingID, floorID string) RoomOption {
	return func(f *RoomFixture) {
		f.BuildingID = buildingID
		f.FloorID = floorID
	}
}

// Building returns the fixture's building as a persistence value.
func (f RoomFixture) Building() persistence.Building {
	return persistence.Building{
		ID:             f.BuildingID,
		OrganizationID: f.OrganizationID,
		Name:           "Building " + f.BuildingID,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Floor returns the fixture's floor as a persistence value.
func (f RoomFixture) Floor() persistence.Floor {
	return persistence.Floor{
		ID:         f.FloorID,
		BuildingID: f.BuildingID,
		Name:       "Floor " + f.FloorID,
		Level:      1,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:             f.ID,
		OrganizationID: f.OrganizationID,
		FloorID:        f.FloorID,
		Name:           f.Name,
		Capacity:       f.Capacity,
		Enabled:        true,
		Type:           persistence.RoomTypeMeeting,
		Status:         persistence.RoomActive,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic event record.
type EventFixture struct {
	ID             string
	OrganizationID string
	CreatorID      string
	Title          string
	Start          time.Time
	End            time.Time
	Status         persistence.EventStatus
	Approval       persistence.ApprovalStatus
	Recurrence     *recurrence.Pattern
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. The base interval is one hour starting at the reference time.
func NewEventFixture(creatorID string, opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := EventFixture{
		ID:        id,
		CreatorID: creatorID,
		Title:     fmt.Sprintf("Event %03d", idx),
		Start:     start,
		End:       start.Add(time.Hour),
		Status:    persistence.EventStatusActive,
		Approval:  persistence.ApprovalNone,
		CreatedAt: start,
		UpdatedAt: start,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventOrganization scopes the event to a tenant.
func WithEventOrganization(organizationID string) EventOption {
	return func(f *EventFixture) {
		f.OrganizationID = organizationID
	}
}

// WithEventInterval overrides the base interval.
func WithEventInterval(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEventRecurrence attaches a recurrence pattern.
func WithEventRecurrence(pattern *recurrence.Pattern) EventOption {
	return func(f *EventFixture) {
		f.Recurrence = pattern
	}
}

// WithEventStatus overrides the lifecycle status.
func WithEventStatus(status persistence.EventStatus) EventOption {
	return func(f *EventFixture) {
		f.Status = status
	}
}

// WithEventApproval overrides the approval status.
func WithEventApproval(approval persistence.ApprovalStatus) EventOption {
	return func(f *EventFixture) {
		f.Approval = approval
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:             f.ID,
		OrganizationID: f.OrganizationID,
		CreatorID:      f.CreatorID,
		Title:          f.Title,
		Start:          f.Start,
		End:            f.End,
		Status:         f.Status,
		Approval:       f.Approval,
		Recurrence:     f.Recurrence,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}
