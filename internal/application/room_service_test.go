package application_test

import (
	. "github.com/example/room-booking/internal/application"

	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

func TestRoomService_CreateBuilding(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.rooms.CreateBuilding(context.Background(), Principal{UserID: "user"}, BuildingInput{
			OrganizationID: "org",
			Name:           "HQ",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("persists under the organization", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		admin := Principal{UserID: "admin", IsAdmin: true}

		building, err := h.rooms.CreateBuilding(context.Background(), admin, BuildingInput{
			OrganizationID: org.ID,
			Name:           "Headquarters",
		})
		if err != nil {
			t.Fatalf("CreateBuilding returned %v", err)
		}

		listed, err := h.rooms.ListBuildings(context.Background(), admin, org.ID)
		if err != nil {
			t.Fatalf("ListBuildings returned %v", err)
		}
		if len(listed) != 1 || listed[0].ID != building.ID {
			t.Fatalf("expected building %s, got %+v", building.ID, listed)
		}
	})

	t.Run("rejects unknown organizations", func(t *testing.T) {
		h := newServiceHarness(t)

		_, err := h.rooms.CreateBuilding(context.Background(), Principal{UserID: "admin", IsAdmin: true}, BuildingInput{
			OrganizationID: "missing",
			Name:           "HQ",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Run("persists on the floor", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		admin := Principal{UserID: "admin", IsAdmin: true}

		building, err := h.rooms.CreateBuilding(context.Background(), admin, BuildingInput{OrganizationID: org.ID, Name: "HQ"})
		if err != nil {
			t.Fatalf("CreateBuilding returned %v", err)
		}
		floor, err := h.rooms.CreateFloor(context.Background(), admin, FloorInput{BuildingID: building.ID, Name: "Third", Level: 3})
		if err != nil {
			t.Fatalf("CreateFloor returned %v", err)
		}

		room, err := h.rooms.CreateRoom(context.Background(), admin, RoomInput{
			OrganizationID: org.ID,
			FloorID:        floor.ID,
			Name:           "Boardroom",
			Capacity:       12,
		})
		if err != nil {
			t.Fatalf("CreateRoom returned %v", err)
		}

		onFloor, err := h.rooms.ListRoomsForFloor(context.Background(), admin, floor.ID)
		if err != nil {
			t.Fatalf("ListRoomsForFloor returned %v", err)
		}
		if len(onFloor) != 1 || onFloor[0].ID != room.ID {
			t.Fatalf("expected room %s on floor, got %+v", room.ID, onFloor)
		}
	})

	t.Run("applies profile defaults", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		admin := Principal{UserID: "admin", IsAdmin: true}

		building, err := h.rooms.CreateBuilding(context.Background(), admin, BuildingInput{OrganizationID: org.ID, Name: "HQ"})
		if err != nil {
			t.Fatalf("CreateBuilding returned %v", err)
		}
		floor, err := h.rooms.CreateFloor(context.Background(), admin, FloorInput{BuildingID: building.ID, Name: "Ground"})
		if err != nil {
			t.Fatalf("CreateFloor returned %v", err)
		}

		room, err := h.rooms.CreateRoom(context.Background(), admin, RoomInput{
			OrganizationID: org.ID,
			FloorID:        floor.ID,
			Name:           "Quiet corner",
			Description:    "Focus space by the window",
			Amenities:      []string{"whiteboard"},
			Capacity:       2,
		})
		if err != nil {
			t.Fatalf("CreateRoom returned %v", err)
		}
		if !room.Enabled {
			t.Fatal("expected the room to default to enabled")
		}
		if room.Type != persistence.RoomTypeMeeting || room.Status != persistence.RoomActive {
			t.Fatalf("unexpected defaults %v/%v", room.Type, room.Status)
		}
		if room.Description != "Focus space by the window" || len(room.Amenities) != 1 {
			t.Fatalf("unexpected profile %+v", room)
		}
	})

	t.Run("rejects unknown type and status", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		admin := Principal{UserID: "admin", IsAdmin: true}

		building, err := h.rooms.CreateBuilding(context.Background(), admin, BuildingInput{OrganizationID: org.ID, Name: "HQ"})
		if err != nil {
			t.Fatalf("CreateBuilding returned %v", err)
		}
		floor, err := h.rooms.CreateFloor(context.Background(), admin, FloorInput{BuildingID: building.ID, Name: "Ground"})
		if err != nil {
			t.Fatalf("CreateFloor returned %v", err)
		}

		_, err = h.rooms.CreateRoom(context.Background(), admin, RoomInput{
			OrganizationID: org.ID,
			FloorID:        floor.ID,
			Name:           "Mislabelled",
			Type:           "hangar",
			Status:         "condemned",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["type"]; !ok {
			t.Fatalf("expected type validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["status"]; !ok {
			t.Fatalf("expected status validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects floors of other organizations", func(t *testing.T) {
		h := newServiceHarness(t)
		admin := Principal{UserID: "admin", IsAdmin: true}
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		other := h.seedOrganization(t, testfixtures.NewOrganizationFixture())

		building, err := h.rooms.CreateBuilding(context.Background(), admin, BuildingInput{OrganizationID: other.ID, Name: "Elsewhere"})
		if err != nil {
			t.Fatalf("CreateBuilding returned %v", err)
		}
		floor, err := h.rooms.CreateFloor(context.Background(), admin, FloorInput{BuildingID: building.ID, Name: "Ground"})
		if err != nil {
			t.Fatalf("CreateFloor returned %v", err)
		}

		_, err = h.rooms.CreateRoom(context.Background(), admin, RoomInput{
			OrganizationID: org.ID,
			FloorID:        floor.ID,
			Name:           "Borrowed",
			Capacity:       4,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["floor_id"]; !ok {
			t.Fatalf("expected floor_id validation error, got %v", vErr.FieldErrors)
		}
	})
}

func TestRoomService_RoomRules(t *testing.T) {
	h := newServiceHarness(t)
	ctx := context.Background()
	admin := Principal{UserID: "admin", IsAdmin: true}
	org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
	room := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))

	t.Run("validates the window", func(t *testing.T) {
		_, err := h.rooms.CreateRoomRule(ctx, admin, RoomRuleInput{
			RoomID:      room.ID,
			Weekday:     time.Monday,
			StartMinute: 18 * 60,
			EndMinute:   9 * 60,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["end_minute"]; !ok {
			t.Fatalf("expected end_minute validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists, lists and deletes", func(t *testing.T) {
		rule, err := h.rooms.CreateRoomRule(ctx, admin, RoomRuleInput{
			RoomID:      room.ID,
			Weekday:     time.Monday,
			StartMinute: 9 * 60,
			EndMinute:   18 * 60,
		})
		if err != nil {
			t.Fatalf("CreateRoomRule returned %v", err)
		}

		rules, err := h.rooms.ListRoomRules(ctx, admin, room.ID)
		if err != nil {
			t.Fatalf("ListRoomRules returned %v", err)
		}
		if len(rules) != 1 || rules[0].ID != rule.ID {
			t.Fatalf("expected rule %s, got %+v", rule.ID, rules)
		}

		if err := h.rooms.DeleteRoomRule(ctx, admin, rule.ID); err != nil {
			t.Fatalf("DeleteRoomRule returned %v", err)
		}
		rules, err = h.rooms.ListRoomRules(ctx, admin, room.ID)
		if err != nil {
			t.Fatalf("ListRoomRules returned %v", err)
		}
		if len(rules) != 0 {
			t.Fatalf("expected no rules, got %+v", rules)
		}
	})
}
