package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
	"github.com/example/room-booking/internal/testfixtures"
)

func seedUser(t *testing.T, h *testfixtures.SQLiteHarness) persistence.User {
	t.Helper()
	user := testfixtures.NewUserFixture().Persistence()
	if err := h.Users.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedOrganization(t *testing.T, h *testfixtures.SQLiteHarness) persistence.Organization {
	t.Helper()
	org := testfixtures.NewOrganizationFixture().Persistence()
	if err := h.Organizations.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return org
}

func seedRoom(t *testing.T, h *testfixtures.SQLiteHarness, organizationID string) persistence.Room {
	t.Helper()
	ctx := context.Background()
	fixture := testfixtures.NewRoomFixture(organizationID)
	if err := h.Facilities.CreateBuilding(ctx, fixture.Building()); err != nil {
		t.Fatalf("seed building: %v", err)
	}
	if err := h.Facilities.CreateFloor(ctx, fixture.Floor()); err != nil {
		t.Fatalf("seed floor: %v", err)
	}
	room := fixture.Persistence()
	if err := h.Rooms.CreateRoom(ctx, room); err != nil {
		t.Fatalf("seed room: %v", err)
	}
	return room
}

func TestUserRepository(t *testing.T) {
	t.Run("rejects duplicate emails", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		alice := seedUser(t, h)

		clone := testfixtures.NewUserFixture(testfixtures.WithUserEmail(alice.Email)).Persistence()
		err := h.Users.CreateUser(context.Background(), clone)
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("looks up accounts by email", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		alice := seedUser(t, h)

		found, err := h.Users.GetUserByEmail(context.Background(), alice.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail returned %v", err)
		}
		if found.ID != alice.ID {
			t.Fatalf("expected %s, got %s", alice.ID, found.ID)
		}

		if _, err := h.Users.GetUserByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestOrganizationRepository(t *testing.T) {
	t.Run("rejects duplicate slugs", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		org := seedOrganization(t, h)

		clone := testfixtures.NewOrganizationFixture(testfixtures.WithOrganizationSlug(org.Slug)).Persistence()
		err := h.Organizations.CreateOrganization(context.Background(), clone)
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("manages memberships", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)
		alice := seedUser(t, h)

		membership := persistence.Membership{OrganizationID: org.ID, UserID: alice.ID, Role: persistence.RoleMember}
		if err := h.Organizations.AddMember(ctx, membership); err != nil {
			t.Fatalf("AddMember returned %v", err)
		}

		members, err := h.Organizations.ListMembers(ctx, org.ID)
		if err != nil {
			t.Fatalf("ListMembers returned %v", err)
		}
		if len(members) != 1 || members[0].UserID != alice.ID || members[0].Role != persistence.RoleMember {
			t.Fatalf("expected one member for %s, got %+v", alice.ID, members)
		}

		if err := h.Organizations.RemoveMember(ctx, org.ID, alice.ID); err != nil {
			t.Fatalf("RemoveMember returned %v", err)
		}
		members, err = h.Organizations.ListMembers(ctx, org.ID)
		if err != nil {
			t.Fatalf("ListMembers after removal returned %v", err)
		}
		if len(members) != 0 {
			t.Fatalf("expected no members, got %+v", members)
		}
	})
}

func TestRoomRepository(t *testing.T) {
	t.Run("requires an existing floor", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		org := seedOrganization(t, h)

		room := testfixtures.NewRoomFixture(org.ID).Persistence()
		err := h.Rooms.CreateRoom(context.Background(), room)
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})

	t.Run("round trips profile fields", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)

		fixture := testfixtures.NewRoomFixture(org.ID)
		if err := h.Facilities.CreateBuilding(ctx, fixture.Building()); err != nil {
			t.Fatalf("seed building: %v", err)
		}
		if err := h.Facilities.CreateFloor(ctx, fixture.Floor()); err != nil {
			t.Fatalf("seed floor: %v", err)
		}
		room := fixture.Persistence()
		room.Description = "Projector room on the third floor"
		room.Amenities = []string{"projector", "whiteboard"}
		room.Enabled = false
		room.Type = persistence.RoomTypeTraining
		room.Status = persistence.RoomMaintenance
		if err := h.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom returned %v", err)
		}

		stored, err := h.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom returned %v", err)
		}
		if stored.Description != room.Description {
			t.Fatalf("expected description %q, got %q", room.Description, stored.Description)
		}
		if len(stored.Amenities) != 2 || stored.Amenities[0] != "projector" || stored.Amenities[1] != "whiteboard" {
			t.Fatalf("unexpected amenities %v", stored.Amenities)
		}
		if stored.Enabled {
			t.Fatal("expected a disabled room")
		}
		if stored.Type != persistence.RoomTypeTraining || stored.Status != persistence.RoomMaintenance {
			t.Fatalf("unexpected type/status %v/%v", stored.Type, stored.Status)
		}
	})

	t.Run("defaults type and status on empty values", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)

		fixture := testfixtures.NewRoomFixture(org.ID)
		if err := h.Facilities.CreateBuilding(ctx, fixture.Building()); err != nil {
			t.Fatalf("seed building: %v", err)
		}
		if err := h.Facilities.CreateFloor(ctx, fixture.Floor()); err != nil {
			t.Fatalf("seed floor: %v", err)
		}
		room := fixture.Persistence()
		room.Type = ""
		room.Status = ""
		if err := h.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("CreateRoom returned %v", err)
		}

		stored, err := h.Rooms.GetRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("GetRoom returned %v", err)
		}
		if stored.Type != persistence.RoomTypeMeeting || stored.Status != persistence.RoomActive {
			t.Fatalf("unexpected defaults %v/%v", stored.Type, stored.Status)
		}
	})

	t.Run("stores usage rules per room", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)
		room := seedRoom(t, h, org.ID)

		rules := []persistence.RoomRule{
			{ID: "rule-b", RoomID: room.ID, Weekday: time.Wednesday, StartMinute: 8 * 60, EndMinute: 12 * 60},
			{ID: "rule-a", RoomID: room.ID, Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 18 * 60},
		}
		for _, rule := range rules {
			if err := h.Rooms.CreateRoomRule(ctx, rule); err != nil {
				t.Fatalf("CreateRoomRule(%s) returned %v", rule.ID, err)
			}
		}

		stored, err := h.Rooms.ListRoomRules(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListRoomRules returned %v", err)
		}
		if len(stored) != 2 {
			t.Fatalf("expected two rules, got %+v", stored)
		}

		if err := h.Rooms.DeleteRoomRule(ctx, "rule-a"); err != nil {
			t.Fatalf("DeleteRoomRule returned %v", err)
		}
		stored, err = h.Rooms.ListRoomRules(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListRoomRules after delete returned %v", err)
		}
		if len(stored) != 1 || stored[0].ID != "rule-b" {
			t.Fatalf("expected rule-b to remain, got %+v", stored)
		}
	})
}

func TestEventRepository(t *testing.T) {
	t.Run("round trips recurrence patterns", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)

		count := 5
		pattern := &recurrence.Pattern{
			Frequency:  recurrence.FrequencyWeekly,
			Interval:   2,
			DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
			Count:      &count,
		}
		event := testfixtures.NewEventFixture(alice.ID, testfixtures.WithEventRecurrence(pattern)).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		stored, err := h.Events.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent returned %v", err)
		}
		if stored.Recurrence == nil {
			t.Fatal("expected a recurrence pattern")
		}
		if stored.Recurrence.Frequency != recurrence.FrequencyWeekly || stored.Recurrence.Interval != 2 {
			t.Fatalf("unexpected pattern %+v", stored.Recurrence)
		}
		if len(stored.Recurrence.DaysOfWeek) != 2 {
			t.Fatalf("expected two weekdays, got %v", stored.Recurrence.DaysOfWeek)
		}
		if stored.Recurrence.Count == nil || *stored.Recurrence.Count != count {
			t.Fatalf("expected count %d, got %v", count, stored.Recurrence.Count)
		}
	})

	t.Run("rejects duplicate identifiers", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)

		event := testfixtures.NewEventFixture(alice.ID).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		clone := event
		clone.Title = "Copy"
		if err := h.Events.CreateEvent(ctx, clone); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("round trips extendable and approval metadata", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)
		admin := seedUser(t, h)

		decidedAt := testfixtures.ReferenceTime().Add(48 * time.Hour)
		event := testfixtures.NewEventFixture(alice.ID).Persistence()
		event.Extendable = true
		event.Approval = persistence.ApprovalApproved
		event.ApproverID = &admin.ID
		event.ApprovedAt = &decidedAt
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		stored, err := h.Events.GetEvent(ctx, event.ID)
		if err != nil {
			t.Fatalf("GetEvent returned %v", err)
		}
		if !stored.Extendable {
			t.Fatal("expected an extendable event")
		}
		if stored.ApproverID == nil || *stored.ApproverID != admin.ID {
			t.Fatalf("expected approver %s, got %v", admin.ID, stored.ApproverID)
		}
		if stored.ApprovedAt == nil || !stored.ApprovedAt.Equal(decidedAt) {
			t.Fatalf("expected approval time %v, got %v", decidedAt, stored.ApprovedAt)
		}
	})

	t.Run("allows repeat participant records per user", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)
		bob := seedUser(t, h)

		event := testfixtures.NewEventFixture(alice.ID).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		first := persistence.Participant{
			EventID:     event.ID,
			UserID:      bob.ID,
			ID:          "participant-1",
			Permissions: []persistence.ParticipantPermission{persistence.PermissionRead},
			Status:      persistence.ParticipantArchived,
		}
		if err := h.Events.AddParticipant(ctx, first); err != nil {
			t.Fatalf("AddParticipant returned %v", err)
		}
		second := persistence.Participant{
			EventID:     event.ID,
			UserID:      bob.ID,
			ID:          "participant-2",
			Permissions: []persistence.ParticipantPermission{persistence.PermissionRead, persistence.PermissionWrite},
		}
		if err := h.Events.AddParticipant(ctx, second); err != nil {
			t.Fatalf("second AddParticipant returned %v", err)
		}

		participants, err := h.Events.ListParticipants(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListParticipants returned %v", err)
		}
		if len(participants) != 2 {
			t.Fatalf("expected two records for %s, got %+v", bob.ID, participants)
		}
		if participants[0].ID != "participant-1" || participants[0].Status != persistence.ParticipantArchived {
			t.Fatalf("unexpected first record %+v", participants[0])
		}
		if participants[1].ID != "participant-2" || participants[1].Status != persistence.ParticipantActive {
			t.Fatalf("unexpected second record %+v", participants[1])
		}
		if len(participants[1].Permissions) != 2 || participants[1].Permissions[1] != persistence.PermissionWrite {
			t.Fatalf("unexpected permissions %v", participants[1].Permissions)
		}
	})

	t.Run("keeps distinct links to the same room", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)
		alice := seedUser(t, h)
		room := seedRoom(t, h, org.ID)

		event := testfixtures.NewEventFixture(alice.ID, testfixtures.WithEventOrganization(org.ID)).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		for _, id := range []string{"link-1", "link-2"} {
			if err := h.Events.LinkRoom(ctx, persistence.RoomLink{EventID: event.ID, ID: id, RoomID: room.ID}); err != nil {
				t.Fatalf("LinkRoom(%s) returned %v", id, err)
			}
		}

		links, err := h.Events.ListRoomLinks(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListRoomLinks returned %v", err)
		}
		if len(links) != 2 || links[0].ID != "link-1" || links[1].ID != "link-2" {
			t.Fatalf("expected both links, got %+v", links)
		}
	})

	t.Run("filters by participant including the creator", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)
		bob := seedUser(t, h)

		created := testfixtures.NewEventFixture(alice.ID).Persistence()
		if err := h.Events.CreateEvent(ctx, created); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		invited := testfixtures.NewEventFixture(bob.ID).Persistence()
		if err := h.Events.CreateEvent(ctx, invited); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		if err := h.Events.AddParticipant(ctx, persistence.Participant{
			EventID:     invited.ID,
			UserID:      alice.ID,
			ID:          "participant-1",
			Permissions: []persistence.ParticipantPermission{persistence.PermissionRead},
		}); err != nil {
			t.Fatalf("AddParticipant returned %v", err)
		}

		events, err := h.Events.ListEvents(ctx, persistence.EventFilter{ParticipantID: alice.ID})
		if err != nil {
			t.Fatalf("ListEvents returned %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected both events, got %+v", events)
		}
	})

	t.Run("open ended recurring events survive the ends-after filter", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)

		base := testfixtures.ReferenceTime()
		oneOff := testfixtures.NewEventFixture(alice.ID,
			testfixtures.WithEventInterval(base, base.Add(time.Hour)),
		).Persistence()
		if err := h.Events.CreateEvent(ctx, oneOff); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		repeating := testfixtures.NewEventFixture(alice.ID,
			testfixtures.WithEventInterval(base, base.Add(time.Hour)),
			testfixtures.WithEventRecurrence(&recurrence.Pattern{Frequency: recurrence.FrequencyDaily}),
		).Persistence()
		if err := h.Events.CreateEvent(ctx, repeating); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		bound := base.AddDate(0, 0, 7)
		events, err := h.Events.ListEvents(ctx, persistence.EventFilter{EndsAfter: &bound})
		if err != nil {
			t.Fatalf("ListEvents returned %v", err)
		}
		if len(events) != 1 || events[0].ID != repeating.ID {
			t.Fatalf("expected only the recurring event, got %+v", events)
		}
	})

	t.Run("manages room reservations", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)
		alice := seedUser(t, h)
		room := seedRoom(t, h, org.ID)

		event := testfixtures.NewEventFixture(alice.ID, testfixtures.WithEventOrganization(org.ID)).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		if err := h.Events.LinkRoom(ctx, persistence.RoomLink{EventID: event.ID, ID: "link-1", RoomID: room.ID}); err != nil {
			t.Fatalf("LinkRoom returned %v", err)
		}

		events, err := h.Events.ListEventsForRoom(ctx, room.ID)
		if err != nil {
			t.Fatalf("ListEventsForRoom returned %v", err)
		}
		if len(events) != 1 || events[0].ID != event.ID {
			t.Fatalf("expected the reserved event, got %+v", events)
		}

		if err := h.Events.UnlinkRoom(ctx, event.ID, room.ID); err != nil {
			t.Fatalf("UnlinkRoom returned %v", err)
		}
		links, err := h.Events.ListRoomLinks(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListRoomLinks returned %v", err)
		}
		if len(links) != 0 {
			t.Fatalf("expected no links, got %+v", links)
		}
	})

	t.Run("deleting an event removes its dependents", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		org := seedOrganization(t, h)
		alice := seedUser(t, h)
		bob := seedUser(t, h)
		room := seedRoom(t, h, org.ID)

		event := testfixtures.NewEventFixture(alice.ID,
			testfixtures.WithEventOrganization(org.ID),
			testfixtures.WithEventRecurrence(&recurrence.Pattern{Frequency: recurrence.FrequencyDaily}),
		).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		if err := h.Events.LinkRoom(ctx, persistence.RoomLink{EventID: event.ID, ID: "link-1", RoomID: room.ID}); err != nil {
			t.Fatalf("LinkRoom returned %v", err)
		}
		if err := h.Events.AddParticipant(ctx, persistence.Participant{EventID: event.ID, UserID: bob.ID, ID: "participant-1"}); err != nil {
			t.Fatalf("AddParticipant returned %v", err)
		}
		if err := h.Exceptions.UpsertException(ctx, persistence.EventException{
			EventID:       event.ID,
			OriginalStart: event.Start,
			OriginalEnd:   event.End,
			Kind:          recurrence.ExceptionCancelled,
		}); err != nil {
			t.Fatalf("UpsertException returned %v", err)
		}
		if err := h.Invitations.CreateInvitation(ctx, persistence.Invitation{
			ID:      "invite-1",
			EventID: event.ID,
			UserID:  bob.ID,
			Status:  persistence.InvitationPending,
		}); err != nil {
			t.Fatalf("CreateInvitation returned %v", err)
		}

		if err := h.Events.DeleteEvent(ctx, event.ID); err != nil {
			t.Fatalf("DeleteEvent returned %v", err)
		}

		if participants, err := h.Events.ListParticipants(ctx, event.ID); err != nil || len(participants) != 0 {
			t.Fatalf("expected no participants, got %v (%v)", participants, err)
		}
		if exceptions, err := h.Exceptions.ListExceptions(ctx, event.ID); err != nil || len(exceptions) != 0 {
			t.Fatalf("expected no exceptions, got %v (%v)", exceptions, err)
		}
		if _, err := h.Invitations.GetInvitation(ctx, "invite-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for invitation, got %v", err)
		}
		if links, err := h.Events.ListRoomLinks(ctx, event.ID); err != nil || len(links) != 0 {
			t.Fatalf("expected no room links, got %v (%v)", links, err)
		}
	})
}

func TestExceptionRepository(t *testing.T) {
	t.Run("upsert preserves creation time", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)

		event := testfixtures.NewEventFixture(alice.ID,
			testfixtures.WithEventRecurrence(&recurrence.Pattern{Frequency: recurrence.FrequencyDaily}),
		).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		exception := persistence.EventException{
			EventID:       event.ID,
			OriginalStart: event.Start,
			OriginalEnd:   event.End,
			Kind:          recurrence.ExceptionCancelled,
		}
		if err := h.Exceptions.UpsertException(ctx, exception); err != nil {
			t.Fatalf("UpsertException returned %v", err)
		}
		first, err := h.Exceptions.GetException(ctx, event.ID, event.Start)
		if err != nil {
			t.Fatalf("GetException returned %v", err)
		}

		newStart := event.Start.Add(2 * time.Hour)
		newEnd := event.End.Add(2 * time.Hour)
		exception.Kind = recurrence.ExceptionRescheduled
		exception.NewStart = &newStart
		exception.NewEnd = &newEnd
		if err := h.Exceptions.UpsertException(ctx, exception); err != nil {
			t.Fatalf("second UpsertException returned %v", err)
		}

		second, err := h.Exceptions.GetException(ctx, event.ID, event.Start)
		if err != nil {
			t.Fatalf("GetException after upsert returned %v", err)
		}
		if second.Kind != recurrence.ExceptionRescheduled {
			t.Fatalf("expected rescheduled kind, got %v", second.Kind)
		}
		if second.NewStart == nil || !second.NewStart.Equal(newStart) {
			t.Fatalf("expected new start %v, got %v", newStart, second.NewStart)
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("expected creation time %v preserved, got %v", first.CreatedAt, second.CreatedAt)
		}
	})

	t.Run("lists by original start and deletes", func(t *testing.T) {
		h := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, h)

		event := testfixtures.NewEventFixture(alice.ID,
			testfixtures.WithEventRecurrence(&recurrence.Pattern{Frequency: recurrence.FrequencyDaily}),
		).Persistence()
		if err := h.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		later := event.Start.AddDate(0, 0, 2)
		for _, originalStart := range []time.Time{later, event.Start} {
			if err := h.Exceptions.UpsertException(ctx, persistence.EventException{
				EventID:       event.ID,
				OriginalStart: originalStart,
				OriginalEnd:   originalStart.Add(time.Hour),
				Kind:          recurrence.ExceptionCancelled,
			}); err != nil {
				t.Fatalf("UpsertException(%v) returned %v", originalStart, err)
			}
		}

		exceptions, err := h.Exceptions.ListExceptions(ctx, event.ID)
		if err != nil {
			t.Fatalf("ListExceptions returned %v", err)
		}
		if len(exceptions) != 2 || !exceptions[0].OriginalStart.Before(exceptions[1].OriginalStart) {
			t.Fatalf("expected two exceptions ordered by original start, got %+v", exceptions)
		}

		if err := h.Exceptions.DeleteException(ctx, event.ID, event.Start); err != nil {
			t.Fatalf("DeleteException returned %v", err)
		}
		if _, err := h.Exceptions.GetException(ctx, event.ID, event.Start); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
