package application_test

import (
	. "github.com/example/room-booking/internal/application"

	"context"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
	"github.com/example/room-booking/internal/testfixtures"
)

// serviceHarness wires every service against a shared in-memory store with a
// deterministic clock and ID sequence.
type serviceHarness struct {
	store         *memory.Store
	clock         *testfixtures.Clock
	organizations *OrganizationService
	users         *UserService
	rooms         *RoomService
	events        *EventService
	availability  *AvailabilityService
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	store := memory.NewStore()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("gen")

	return &serviceHarness{
		store:         store,
		clock:         clock,
		organizations: NewOrganizationService(store, ids.NextFunc(), clock.NowFunc()),
		users:         NewUserService(store, ids.NextFunc(), clock.NowFunc()),
		rooms:         NewRoomService(store, store, ids.NextFunc(), clock.NowFunc()),
		events:        NewEventService(store, store, store, store, ids.NextFunc(), clock.NowFunc()),
		availability:  NewAvailabilityService(store, store, store, clock.NowFunc()),
	}
}

// seedUser inserts a user fixture directly into the store.
func (h *serviceHarness) seedUser(t *testing.T, fixture testfixtures.UserFixture) persistence.User {
	t.Helper()
	user := fixture.Persistence()
	if err := h.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedOrganization inserts a tenant fixture directly into the store.
func (h *serviceHarness) seedOrganization(t *testing.T, fixture testfixtures.OrganizationFixture) persistence.Organization {
	t.Helper()
	org := fixture.Persistence()
	if err := h.store.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

// seedRoom inserts a room fixture with its building and floor.
func (h *serviceHarness) seedRoom(t *testing.T, fixture testfixtures.RoomFixture) persistence.Room {
	t.Helper()
	ctx := context.Background()
	if err := h.store.CreateBuilding(ctx, fixture.Building()); err != nil {
		t.Fatalf("seed building: %v", err)
	}
	if err := h.store.CreateFloor(ctx, fixture.Floor()); err != nil {
		t.Fatalf("seed floor: %v", err)
	}
	room := fixture.Persistence()
	if err := h.store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}
