package application_test

import (
	. "github.com/example/room-booking/internal/application"

	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/testfixtures"
)

func permissionsByUser(participants []persistence.Participant) map[string][]persistence.ParticipantPermission {
	byUser := make(map[string][]persistence.ParticipantPermission, len(participants))
	for _, participant := range participants {
		byUser[participant.UserID] = participant.Permissions
	}
	return byUser
}

func hasPermission(permissions []persistence.ParticipantPermission, want persistence.ParticipantPermission) bool {
	for _, permission := range permissions {
		if permission == want {
			return true
		}
	}
	return false
}

func conflictsOfType(warnings []booking.Conflict, kind booking.ConflictType) []booking.Conflict {
	matched := make([]booking.Conflict, 0, len(warnings))
	for _, warning := range warnings {
		if warning.Type == kind {
			matched = append(matched, warning)
		}
	}
	return matched
}

func TestEventService_CreateEvent(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	t.Run("validates required attributes", func(t *testing.T) {
		h := newServiceHarness(t)
		alice := h.seedUser(t, testfixtures.NewUserFixture())

		_, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				Title: "  ",
				Start: start,
				End:   start.Add(-time.Hour),
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["title"]; !ok {
			t.Fatalf("expected title validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["end"]; !ok {
			t.Fatalf("expected end validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("requires an organization for room reservations", func(t *testing.T) {
		h := newServiceHarness(t)
		alice := h.seedUser(t, testfixtures.NewUserFixture())

		_, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				Title:   "Standup",
				Start:   start,
				End:     start.Add(time.Hour),
				RoomIDs: []string{"room-x"},
			},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["organization_id"]; !ok {
			t.Fatalf("expected organization_id validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists with rooms and participants", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		alice := h.seedUser(t, testfixtures.NewUserFixture())
		bob := h.seedUser(t, testfixtures.NewUserFixture())
		room := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))

		result, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "Planning",
				Start:          start,
				End:            start.Add(time.Hour),
				RoomIDs:        []string{room.ID},
				ParticipantIDs: []string{bob.ID},
			},
		})
		if err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}
		if len(result.Warnings) != 0 {
			t.Fatalf("expected no warnings on an empty calendar, got %+v", result.Warnings)
		}
		if len(result.RoomIDs) != 1 || result.RoomIDs[0] != room.ID {
			t.Fatalf("expected room %s, got %v", room.ID, result.RoomIDs)
		}

		permissions := permissionsByUser(result.Participants)
		if !hasPermission(permissions[alice.ID], persistence.PermissionOwner) {
			t.Fatalf("expected creator to own the event, got %v", permissions)
		}
		if !hasPermission(permissions[bob.ID], persistence.PermissionWrite) {
			t.Fatalf("expected invited participant to hold write permission, got %v", permissions)
		}
	})

	t.Run("warns about a double booked room", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		alice := h.seedUser(t, testfixtures.NewUserFixture())
		bob := h.seedUser(t, testfixtures.NewUserFixture())
		room := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))

		first, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "First",
				Start:          start,
				End:            start.Add(time.Hour),
				RoomIDs:        []string{room.ID},
			},
		})
		if err != nil {
			t.Fatalf("first CreateEvent returned %v", err)
		}

		second, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: bob.ID},
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "Second",
				Start:          start.Add(30 * time.Minute),
				End:            start.Add(90 * time.Minute),
				RoomIDs:        []string{room.ID},
			},
		})
		if err != nil {
			t.Fatalf("second CreateEvent returned %v", err)
		}

		roomConflicts := conflictsOfType(second.Warnings, booking.ConflictTypeRoom)
		if len(roomConflicts) != 1 {
			t.Fatalf("expected one room conflict, got %+v", second.Warnings)
		}
		if roomConflicts[0].WithEventID != first.Event.ID {
			t.Fatalf("expected conflict with %s, got %+v", first.Event.ID, roomConflicts[0])
		}

		stored, err := h.events.GetEvent(context.Background(), Principal{UserID: bob.ID}, second.Event.ID)
		if err != nil {
			t.Fatalf("GetEvent returned %v", err)
		}
		if len(stored.RoomIDs) != 1 {
			t.Fatal("expected the conflicting write to persist anyway")
		}
	})

	t.Run("warns when a booking falls outside the allowed hours", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		alice := h.seedUser(t, testfixtures.NewUserFixture())
		room := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))

		admin := Principal{UserID: "admin", IsAdmin: true}
		if _, err := h.rooms.CreateRoomRule(context.Background(), admin, RoomRuleInput{
			RoomID:      room.ID,
			Weekday:     time.Monday,
			StartMinute: 9 * 60,
			EndMinute:   18 * 60,
		}); err != nil {
			t.Fatalf("CreateRoomRule returned %v", err)
		}

		late := time.Date(2024, time.January, 8, 20, 0, 0, 0, time.UTC)
		result, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "Late session",
				Start:          late,
				End:            late.Add(time.Hour),
				RoomIDs:        []string{room.ID},
			},
		})
		if err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		ruleConflicts := conflictsOfType(result.Warnings, booking.ConflictTypeRoomRule)
		if len(ruleConflicts) != 1 {
			t.Fatalf("expected one room rule warning, got %+v", result.Warnings)
		}
		if ruleConflicts[0].RoomID != room.ID {
			t.Fatalf("expected warning for %s, got %+v", room.ID, ruleConflicts[0])
		}
	})

	t.Run("warns about double booked participants", func(t *testing.T) {
		h := newServiceHarness(t)
		alice := h.seedUser(t, testfixtures.NewUserFixture())

		first, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				Title: "Focus time",
				Start: start,
				End:   start.Add(time.Hour),
			},
		})
		if err != nil {
			t.Fatalf("first CreateEvent returned %v", err)
		}

		second, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				Title: "Interview",
				Start: start.Add(30 * time.Minute),
				End:   start.Add(90 * time.Minute),
			},
		})
		if err != nil {
			t.Fatalf("second CreateEvent returned %v", err)
		}

		participantConflicts := conflictsOfType(second.Warnings, booking.ConflictTypeParticipant)
		if len(participantConflicts) != 1 {
			t.Fatalf("expected one participant conflict, got %+v", second.Warnings)
		}
		if participantConflicts[0].WithEventID != first.Event.ID || participantConflicts[0].Participant != alice.ID {
			t.Fatalf("unexpected conflict %+v", participantConflicts[0])
		}
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	t.Run("only the creator or an administrator may update", func(t *testing.T) {
		h := newServiceHarness(t)
		alice := h.seedUser(t, testfixtures.NewUserFixture())
		mallory := h.seedUser(t, testfixtures.NewUserFixture())

		created, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input:     EventInput{Title: "Private", Start: start, End: start.Add(time.Hour)},
		})
		if err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		_, err = h.events.UpdateEvent(context.Background(), UpdateEventParams{
			Principal: Principal{UserID: mallory.ID},
			EventID:   created.Event.ID,
			Input:     EventInput{Title: "Hijacked", Start: start, End: start.Add(time.Hour)},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("reconciles rooms and participants", func(t *testing.T) {
		h := newServiceHarness(t)
		org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
		alice := h.seedUser(t, testfixtures.NewUserFixture())
		bob := h.seedUser(t, testfixtures.NewUserFixture())
		carol := h.seedUser(t, testfixtures.NewUserFixture())
		roomOne := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))
		roomTwo := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))

		created, err := h.events.CreateEvent(context.Background(), CreateEventParams{
			Principal: Principal{UserID: alice.ID},
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "Kickoff",
				Start:          start,
				End:            start.Add(time.Hour),
				RoomIDs:        []string{roomOne.ID},
				ParticipantIDs: []string{bob.ID},
			},
		})
		if err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		updated, err := h.events.UpdateEvent(context.Background(), UpdateEventParams{
			Principal: Principal{UserID: alice.ID},
			EventID:   created.Event.ID,
			Input: EventInput{
				OrganizationID: org.ID,
				Title:          "Kickoff (moved)",
				Start:          start.Add(time.Hour),
				End:            start.Add(2 * time.Hour),
				RoomIDs:        []string{roomTwo.ID},
				ParticipantIDs: []string{carol.ID},
			},
		})
		if err != nil {
			t.Fatalf("UpdateEvent returned %v", err)
		}

		if len(updated.RoomIDs) != 1 || updated.RoomIDs[0] != roomTwo.ID {
			t.Fatalf("expected room %s, got %v", roomTwo.ID, updated.RoomIDs)
		}

		permissions := permissionsByUser(updated.Participants)
		if !hasPermission(permissions[alice.ID], persistence.PermissionOwner) {
			t.Fatalf("expected the creator to stay owner, got %v", permissions)
		}
		if _, ok := permissions[bob.ID]; ok {
			t.Fatalf("expected %s to be removed, got %v", bob.ID, permissions)
		}
		if !hasPermission(permissions[carol.ID], persistence.PermissionWrite) {
			t.Fatalf("expected %s to hold write permission, got %v", carol.ID, permissions)
		}
	})
}

func TestEventService_SetApproval(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	h := newServiceHarness(t)
	ctx := context.Background()
	org := h.seedOrganization(t, testfixtures.NewOrganizationFixture())
	alice := h.seedUser(t, testfixtures.NewUserFixture())
	room := h.seedRoom(t, testfixtures.NewRoomFixture(org.ID))
	admin := Principal{UserID: "admin", IsAdmin: true}

	created, err := h.events.CreateEvent(ctx, CreateEventParams{
		Principal: Principal{UserID: alice.ID},
		Input: EventInput{
			OrganizationID:   org.ID,
			Title:            "Needs sign-off",
			Start:            start,
			End:              start.Add(time.Hour),
			RoomIDs:          []string{room.ID},
			RequiresApproval: true,
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned %v", err)
	}
	if created.Event.Approval != persistence.ApprovalPending {
		t.Fatalf("expected pending approval, got %s", created.Event.Approval)
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		if _, err := h.events.SetApproval(ctx, Principal{UserID: alice.ID}, created.Event.ID, persistence.ApprovalApproved); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects targets other than approved or rejected", func(t *testing.T) {
		if _, err := h.events.SetApproval(ctx, admin, created.Event.ID, persistence.ApprovalPending); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("approves a pending event exactly once", func(t *testing.T) {
		decidedAt := h.clock.Advance(30 * time.Minute)
		event, err := h.events.SetApproval(ctx, admin, created.Event.ID, persistence.ApprovalApproved)
		if err != nil {
			t.Fatalf("SetApproval returned %v", err)
		}
		if event.Approval != persistence.ApprovalApproved {
			t.Fatalf("expected approved, got %s", event.Approval)
		}
		if event.ApproverID == nil || *event.ApproverID != admin.UserID {
			t.Fatalf("expected approver %s, got %v", admin.UserID, event.ApproverID)
		}
		if event.ApprovedAt == nil || !event.ApprovedAt.Equal(decidedAt) {
			t.Fatalf("expected approval time %v, got %v", decidedAt, event.ApprovedAt)
		}

		if _, err := h.events.SetApproval(ctx, admin, created.Event.ID, persistence.ApprovalRejected); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on a settled event, got %v", err)
		}
	})
}

func TestEventService_Occurrences(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	h := newServiceHarness(t)
	ctx := context.Background()
	alice := h.seedUser(t, testfixtures.NewUserFixture())
	principal := Principal{UserID: alice.ID}

	count := 3
	created, err := h.events.CreateEvent(ctx, CreateEventParams{
		Principal: principal,
		Input: EventInput{
			Title: "Daily sync",
			Start: start,
			End:   start.Add(30 * time.Minute),
			Recurrence: &RecurrenceInput{
				Frequency: "daily",
				Interval:  1,
				Count:     &count,
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned %v", err)
	}
	eventID := created.Event.ID

	t.Run("lists the expanded series in the default window", func(t *testing.T) {
		occurrences, err := h.events.ListOccurrences(ctx, principal, eventID, OccurrenceWindow{})
		if err != nil {
			t.Fatalf("ListOccurrences returned %v", err)
		}
		if len(occurrences) != 3 {
			t.Fatalf("expected 3 occurrences, got %d", len(occurrences))
		}
		for i, occurrence := range occurrences {
			want := start.AddDate(0, 0, i)
			if !occurrence.Start.Equal(want) {
				t.Fatalf("occurrence %d: expected %v, got %v", i, want, occurrence.Start)
			}
		}
	})

	t.Run("rejects overrides with an unknown kind", func(t *testing.T) {
		_, err := h.events.PutException(ctx, PutExceptionParams{
			Principal: principal,
			EventID:   eventID,
			Input:     ExceptionInput{OriginalStart: start, Kind: "skipped"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects reschedules without a replacement interval", func(t *testing.T) {
		_, err := h.events.PutException(ctx, PutExceptionParams{
			Principal: principal,
			EventID:   eventID,
			Input:     ExceptionInput{OriginalStart: start, Kind: "rescheduled"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("a cancellation drops its slot", func(t *testing.T) {
		cancelled := start.AddDate(0, 0, 1)
		if _, err := h.events.PutException(ctx, PutExceptionParams{
			Principal: principal,
			EventID:   eventID,
			Input:     ExceptionInput{OriginalStart: cancelled, Kind: "cancelled"},
		}); err != nil {
			t.Fatalf("PutException returned %v", err)
		}

		occurrences, err := h.events.ListOccurrences(ctx, principal, eventID, OccurrenceWindow{})
		if err != nil {
			t.Fatalf("ListOccurrences returned %v", err)
		}
		if len(occurrences) != 2 {
			t.Fatalf("expected 2 occurrences after cancellation, got %d", len(occurrences))
		}
		for _, occurrence := range occurrences {
			if occurrence.Start.Equal(cancelled) {
				t.Fatalf("cancelled slot still present: %v", occurrence)
			}
		}
	})

	t.Run("deleting the override restores the slot", func(t *testing.T) {
		cancelled := start.AddDate(0, 0, 1)
		if err := h.events.DeleteException(ctx, principal, eventID, cancelled); err != nil {
			t.Fatalf("DeleteException returned %v", err)
		}

		occurrences, err := h.events.ListOccurrences(ctx, principal, eventID, OccurrenceWindow{})
		if err != nil {
			t.Fatalf("ListOccurrences returned %v", err)
		}
		if len(occurrences) != 3 {
			t.Fatalf("expected 3 occurrences after restore, got %d", len(occurrences))
		}
	})

	t.Run("rejects overrides on non-recurring events", func(t *testing.T) {
		single, err := h.events.CreateEvent(ctx, CreateEventParams{
			Principal: principal,
			Input:     EventInput{Title: "One-off", Start: start.AddDate(0, 0, 5), End: start.AddDate(0, 0, 5).Add(time.Hour)},
		})
		if err != nil {
			t.Fatalf("CreateEvent returned %v", err)
		}

		_, err = h.events.PutException(ctx, PutExceptionParams{
			Principal: principal,
			EventID:   single.Event.ID,
			Input:     ExceptionInput{OriginalStart: single.Event.Start, Kind: "cancelled"},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestEventService_Invitations(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	h := newServiceHarness(t)
	ctx := context.Background()
	alice := h.seedUser(t, testfixtures.NewUserFixture())
	dave := h.seedUser(t, testfixtures.NewUserFixture())
	mallory := h.seedUser(t, testfixtures.NewUserFixture())

	created, err := h.events.CreateEvent(ctx, CreateEventParams{
		Principal: Principal{UserID: alice.ID},
		Input:     EventInput{Title: "Offsite", Start: start, End: start.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned %v", err)
	}
	eventID := created.Event.ID

	t.Run("only the creator or an administrator may invite", func(t *testing.T) {
		if _, err := h.events.Invite(ctx, Principal{UserID: mallory.ID}, eventID, dave.ID); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	invitation, err := h.events.Invite(ctx, Principal{UserID: alice.ID}, eventID, dave.ID)
	if err != nil {
		t.Fatalf("Invite returned %v", err)
	}
	if invitation.Status != persistence.InvitationPending {
		t.Fatalf("expected pending invitation, got %s", invitation.Status)
	}

	t.Run("only the invitee may answer", func(t *testing.T) {
		if _, err := h.events.RespondToInvitation(ctx, Principal{UserID: mallory.ID}, invitation.ID, true); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("accepting joins the event", func(t *testing.T) {
		answered, err := h.events.RespondToInvitation(ctx, Principal{UserID: dave.ID}, invitation.ID, true)
		if err != nil {
			t.Fatalf("RespondToInvitation returned %v", err)
		}
		if answered.Status != persistence.InvitationAccepted {
			t.Fatalf("expected accepted, got %s", answered.Status)
		}

		result, err := h.events.GetEvent(ctx, Principal{UserID: alice.ID}, eventID)
		if err != nil {
			t.Fatalf("GetEvent returned %v", err)
		}
		found := false
		for _, participant := range result.Participants {
			if participant.UserID == dave.ID && hasPermission(participant.Permissions, persistence.PermissionRead) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s as a reading participant, got %+v", dave.ID, result.Participants)
		}
	})

	t.Run("an answered invitation stays answered", func(t *testing.T) {
		if _, err := h.events.RespondToInvitation(ctx, Principal{UserID: dave.ID}, invitation.ID, false); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestEventService_Participants(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	h := newServiceHarness(t)
	ctx := context.Background()
	alice := h.seedUser(t, testfixtures.NewUserFixture())
	bob := h.seedUser(t, testfixtures.NewUserFixture())
	mallory := h.seedUser(t, testfixtures.NewUserFixture())
	creator := Principal{UserID: alice.ID}

	created, err := h.events.CreateEvent(ctx, CreateEventParams{
		Principal: creator,
		Input:     EventInput{Title: "Working group", Start: start, End: start.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned %v", err)
	}
	eventID := created.Event.ID

	t.Run("only the creator or an administrator may add", func(t *testing.T) {
		err := h.events.AddParticipant(ctx, Principal{UserID: mallory.ID}, eventID, bob.ID, nil)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects unknown permissions", func(t *testing.T) {
		err := h.events.AddParticipant(ctx, creator, eventID, bob.ID, []persistence.ParticipantPermission{"superuser"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects adding an existing participant", func(t *testing.T) {
		if err := h.events.AddParticipant(ctx, creator, eventID, bob.ID, []persistence.ParticipantPermission{persistence.PermissionRead}); err != nil {
			t.Fatalf("AddParticipant returned %v", err)
		}
		err := h.events.AddParticipant(ctx, creator, eventID, bob.ID, []persistence.ParticipantPermission{persistence.PermissionWrite})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("a removed participant may be added again", func(t *testing.T) {
		if err := h.events.RemoveParticipant(ctx, creator, eventID, bob.ID); err != nil {
			t.Fatalf("RemoveParticipant returned %v", err)
		}
		if err := h.events.AddParticipant(ctx, creator, eventID, bob.ID, []persistence.ParticipantPermission{persistence.PermissionRead, persistence.PermissionInvite}); err != nil {
			t.Fatalf("AddParticipant after removal returned %v", err)
		}

		result, err := h.events.GetEvent(ctx, creator, eventID)
		if err != nil {
			t.Fatalf("GetEvent returned %v", err)
		}
		permissions := permissionsByUser(result.Participants)
		if !hasPermission(permissions[bob.ID], persistence.PermissionInvite) {
			t.Fatalf("expected %s to hold invite permission, got %v", bob.ID, permissions)
		}
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	h := newServiceHarness(t)
	ctx := context.Background()
	alice := h.seedUser(t, testfixtures.NewUserFixture())
	mallory := h.seedUser(t, testfixtures.NewUserFixture())

	created, err := h.events.CreateEvent(ctx, CreateEventParams{
		Principal: Principal{UserID: alice.ID},
		Input:     EventInput{Title: "Doomed", Start: start, End: start.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("CreateEvent returned %v", err)
	}

	if err := h.events.DeleteEvent(ctx, Principal{UserID: mallory.ID}, created.Event.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := h.events.DeleteEvent(ctx, Principal{UserID: alice.ID}, created.Event.ID); err != nil {
		t.Fatalf("DeleteEvent returned %v", err)
	}
	if _, err := h.events.GetEvent(ctx, Principal{UserID: alice.ID}, created.Event.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
