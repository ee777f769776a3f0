package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/availability"
	"github.com/example/room-booking/internal/booking"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

// EventService manages events, their recurrence exceptions, participants and
// invitations. Conflict detection on writes is advisory: detected overlaps
// come back as warnings, never as errors.
type EventService struct {
	events      persistence.EventRepository
	exceptions  persistence.ExceptionRepository
	invitations persistence.InvitationRepository
	rooms       persistence.RoomRepository
	engine      *recurrence.Engine
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService constructs an event service with the provided dependencies.
func NewEventService(
	events persistence.EventRepository,
	exceptions persistence.ExceptionRepository,
	invitations persistence.InvitationRepository,
	rooms persistence.RoomRepository,
	idGenerator func() string,
	now func() time.Time,
) *EventService {
	return NewEventServiceWithLogger(events, exceptions, invitations, rooms, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(
	events persistence.EventRepository,
	exceptions persistence.ExceptionRepository,
	invitations persistence.InvitationRepository,
	rooms persistence.RoomRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		exceptions:  exceptions,
		invitations: invitations,
		rooms:       rooms,
		engine:      recurrence.NewEngine(time.UTC),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates input, persists the event with its room reservations
// and participants, and reports advisory conflict warnings.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (result EventResult, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", result.Event.ID, "warnings", len(result.Warnings)).InfoContext(ctx, "event created")
	}()

	var pattern *recurrence.Pattern
	pattern, err = validateEventInput(params.Input)
	if err != nil {
		return
	}

	approval := persistence.ApprovalNone
	if params.Input.RequiresApproval {
		approval = persistence.ApprovalPending
	}
	event := persistence.Event{
		ID:             s.idGenerator(),
		OrganizationID: strings.TrimSpace(params.Input.OrganizationID),
		CreatorID:      params.Principal.UserID,
		Title:          strings.TrimSpace(params.Input.Title),
		Description:    params.Input.Description,
		Start:          params.Input.Start,
		End:            params.Input.End,
		Extendable:     params.Input.Extendable,
		Status:         persistence.EventStatusActive,
		Approval:       approval,
		Recurrence:     pattern,
	}
	if err = s.events.CreateEvent(ctx, event); err != nil {
		err = mapRepoError(err)
		return
	}

	roomIDs := dedupeIDs(params.Input.RoomIDs)
	for _, roomID := range roomIDs {
		if err = s.events.LinkRoom(ctx, persistence.RoomLink{EventID: event.ID, ID: s.idGenerator(), RoomID: roomID}); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	if err = s.events.AddParticipant(ctx, persistence.Participant{
		EventID:     event.ID,
		UserID:      params.Principal.UserID,
		ID:          s.idGenerator(),
		Permissions: []persistence.ParticipantPermission{persistence.PermissionOwner},
	}); err != nil {
		err = mapRepoError(err)
		return
	}
	for _, userID := range dedupeIDs(params.Input.ParticipantIDs) {
		if userID == params.Principal.UserID {
			continue
		}
		if err = s.events.AddParticipant(ctx, persistence.Participant{
			EventID:     event.ID,
			UserID:      userID,
			ID:          s.idGenerator(),
			Permissions: []persistence.ParticipantPermission{persistence.PermissionRead, persistence.PermissionWrite},
		}); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var warnings []booking.Conflict
	warnings, err = s.detectWarnings(ctx, event, roomIDs)
	if err != nil {
		return
	}
	result, err = s.loadResult(ctx, event.ID, warnings)
	return
}

// UpdateEvent validates input and rewrites an event's fields, room
// reservations and invited participants. Only the creator or an administrator
// may update an event; the creator and organization never change.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (result EventResult, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("warnings", len(result.Warnings)).InfoContext(ctx, "event updated")
	}()

	var existing persistence.Event
	existing, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !params.Principal.IsAdmin && existing.CreatorID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}

	var pattern *recurrence.Pattern
	pattern, err = validateEventInput(params.Input)
	if err != nil {
		return
	}

	updated := existing
	updated.Title = strings.TrimSpace(params.Input.Title)
	updated.Description = params.Input.Description
	updated.Start = params.Input.Start
	updated.End = params.Input.End
	updated.Extendable = params.Input.Extendable
	updated.Recurrence = pattern
	if err = s.events.UpdateEvent(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}

	roomIDs := dedupeIDs(params.Input.RoomIDs)
	if err = s.syncRoomLinks(ctx, updated.ID, roomIDs); err != nil {
		return
	}
	if err = s.syncParticipants(ctx, updated.ID, existing.CreatorID, dedupeIDs(params.Input.ParticipantIDs)); err != nil {
		return
	}

	var warnings []booking.Conflict
	warnings, err = s.detectWarnings(ctx, updated, roomIDs)
	if err != nil {
		return
	}
	result, err = s.loadResult(ctx, updated.ID, warnings)
	return
}

// GetEvent retrieves an event with its room reservations and participants.
func (s *EventService) GetEvent(ctx context.Context, principal Principal, eventID string) (EventResult, error) {
	return s.loadResult(ctx, eventID, nil)
}

// ListEvents lists events matching the filter, ordered by start ascending.
func (s *EventService) ListEvents(ctx context.Context, principal Principal, filter persistence.EventFilter) ([]persistence.Event, error) {
	events, err := s.events.ListEvents(ctx, filter)
	return events, mapRepoError(err)
}

// DeleteEvent removes an event with its reservations, participants and
// overrides. Only the creator or an administrator may delete an event.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	logger := s.loggerWith(ctx, "DeleteEvent",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !principal.IsAdmin && event.CreatorID != principal.UserID {
		logger.ErrorContext(ctx, "failed to delete event", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "event deleted")
	return nil
}

// SetApproval moves an event's approval state, recording who decided and
// when. Only administrators decide, and only pending events can be approved
// or rejected.
func (s *EventService) SetApproval(ctx context.Context, principal Principal, eventID string, status persistence.ApprovalStatus) (event persistence.Event, err error) {
	logger := s.loggerWith(ctx, "SetApproval",
		"principal_id", principal.UserID,
		"event_id", eventID,
		"approval", string(status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set approval", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "approval updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if status != persistence.ApprovalApproved && status != persistence.ApprovalRejected {
		err = ErrInvalidTransition
		return
	}

	var existing persistence.Event
	existing, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if existing.Approval != persistence.ApprovalPending {
		err = ErrInvalidTransition
		return
	}

	decidedAt := s.now().UTC()
	existing.Approval = status
	existing.ApproverID = &principal.UserID
	existing.ApprovedAt = &decidedAt
	if err = s.events.UpdateEvent(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}
	event, err = s.events.GetEvent(ctx, eventID)
	err = mapRepoError(err)
	return
}

// ListOccurrences resolves an event's effective occurrences within the
// window, with stored overrides applied. Nil bounds fall back to the default
// window around the current time.
func (s *EventService) ListOccurrences(ctx context.Context, principal Principal, eventID string, window OccurrenceWindow) ([]recurrence.Occurrence, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	stored, err := s.exceptions.ListExceptions(ctx, eventID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	bounds := availability.DefaultWindow(s.now(), time.UTC)
	if window.From != nil {
		bounds.From = *window.From
	}
	if window.To != nil {
		bounds.To = *window.To
	}

	exceptions := make([]recurrence.Exception, 0, len(stored))
	for _, exception := range stored {
		exceptions = append(exceptions, toEngineException(exception))
	}
	return s.engine.Resolve(event.ID, event.Start, event.End, event.Recurrence, exceptions, bounds)
}

// PutException writes or replaces an occurrence override for a recurring
// event. Only the creator or an administrator may write overrides.
func (s *EventService) PutException(ctx context.Context, params PutExceptionParams) (stored persistence.EventException, err error) {
	logger := s.loggerWith(ctx, "PutException",
		"principal_id", params.Principal.UserID,
		"event_id", params.EventID,
		"kind", params.Input.Kind,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to put exception", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "exception stored")
	}()

	var event persistence.Event
	event, err = s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !params.Principal.IsAdmin && event.CreatorID != params.Principal.UserID {
		err = ErrUnauthorized
		return
	}
	if event.Recurrence == nil {
		vErr := &ValidationError{}
		vErr.add("event_id", "event does not recur")
		err = vErr
		return
	}

	kind, kindErr := recurrence.ParseExceptionKind(params.Input.Kind)
	if kindErr != nil {
		vErr := &ValidationError{}
		vErr.add("kind", "kind must be one of cancelled, rescheduled, superseded")
		err = vErr
		return
	}
	pattern, vErr := toPattern(params.Input.Recurrence)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	exception := recurrence.Exception{
		EventID:       params.EventID,
		OriginalStart: params.Input.OriginalStart,
		OriginalEnd:   params.Input.OriginalStart.Add(event.End.Sub(event.Start)),
		Kind:          kind,
		Pattern:       pattern,
	}
	if params.Input.NewStart != nil {
		exception.Start = *params.Input.NewStart
	}
	if params.Input.NewEnd != nil {
		exception.End = *params.Input.NewEnd
	}
	if validateErr := exception.Validate(); validateErr != nil {
		vErr := &ValidationError{}
		vErr.add("exception", validateErr.Error())
		err = vErr
		return
	}

	stored = persistence.EventException{
		EventID:       exception.EventID,
		OriginalStart: exception.OriginalStart,
		OriginalEnd:   exception.OriginalEnd,
		Kind:          exception.Kind,
		NewStart:      params.Input.NewStart,
		NewEnd:        params.Input.NewEnd,
		Recurrence:    pattern,
	}
	if err = s.exceptions.UpsertException(ctx, stored); err != nil {
		err = mapRepoError(err)
		stored = persistence.EventException{}
		return
	}
	stored, err = s.exceptions.GetException(ctx, params.EventID, params.Input.OriginalStart)
	err = mapRepoError(err)
	return
}

// ListExceptions lists an event's stored occurrence overrides.
func (s *EventService) ListExceptions(ctx context.Context, principal Principal, eventID string) ([]persistence.EventException, error) {
	exceptions, err := s.exceptions.ListExceptions(ctx, eventID)
	return exceptions, mapRepoError(err)
}

// DeleteException removes one occurrence override. Only the creator or an
// administrator may delete overrides.
func (s *EventService) DeleteException(ctx context.Context, principal Principal, eventID string, originalStart time.Time) error {
	logger := s.loggerWith(ctx, "DeleteException",
		"principal_id", principal.UserID,
		"event_id", eventID,
	)

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete exception", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if !principal.IsAdmin && event.CreatorID != principal.UserID {
		logger.ErrorContext(ctx, "failed to delete exception", "error", ErrUnauthorized, "error_kind", ErrorKind(ErrUnauthorized))
		return ErrUnauthorized
	}

	if err := s.exceptions.DeleteException(ctx, eventID, originalStart); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete exception", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "exception deleted")
	return nil
}

// AddParticipant attaches a user to an event with a permission set. Only the
// creator or an administrator may add participants; an empty set grants read.
func (s *EventService) AddParticipant(ctx context.Context, principal Principal, eventID, userID string, permissions []persistence.ParticipantPermission) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return mapRepoError(err)
	}
	if !principal.IsAdmin && event.CreatorID != principal.UserID {
		return ErrUnauthorized
	}
	if vErr := validatePermissions(permissions); vErr != nil {
		return vErr
	}
	joined, err := s.isParticipant(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if joined {
		return ErrAlreadyExists
	}
	return mapRepoError(s.events.AddParticipant(ctx, persistence.Participant{
		EventID:     eventID,
		UserID:      userID,
		ID:          s.idGenerator(),
		Permissions: permissions,
	}))
}

// RemoveParticipant detaches a user from an event. The creator, an
// administrator or the participant themselves may remove the link.
func (s *EventService) RemoveParticipant(ctx context.Context, principal Principal, eventID, userID string) error {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return mapRepoError(err)
	}
	if !principal.IsAdmin && event.CreatorID != principal.UserID && principal.UserID != userID {
		return ErrUnauthorized
	}
	return mapRepoError(s.events.RemoveParticipant(ctx, eventID, userID))
}

// Invite asks a user to join an event. Only the creator or an administrator
// may send invitations.
func (s *EventService) Invite(ctx context.Context, principal Principal, eventID, userID string) (invitation persistence.Invitation, err error) {
	logger := s.loggerWith(ctx, "Invite",
		"principal_id", principal.UserID,
		"event_id", eventID,
		"user_id", userID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to invite", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("invitation_id", invitation.ID).InfoContext(ctx, "invitation created")
	}()

	var event persistence.Event
	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !principal.IsAdmin && event.CreatorID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	invitation = persistence.Invitation{
		ID:      s.idGenerator(),
		EventID: eventID,
		UserID:  userID,
		Status:  persistence.InvitationPending,
	}
	if err = s.invitations.CreateInvitation(ctx, invitation); err != nil {
		err = mapRepoError(err)
		invitation = persistence.Invitation{}
		return
	}
	invitation, err = s.invitations.GetInvitation(ctx, invitation.ID)
	err = mapRepoError(err)
	return
}

// RespondToInvitation answers a pending invitation. Only the invitee may
// answer; accepting joins the event with read permission.
func (s *EventService) RespondToInvitation(ctx context.Context, principal Principal, invitationID string, accept bool) (invitation persistence.Invitation, err error) {
	logger := s.loggerWith(ctx, "RespondToInvitation",
		"principal_id", principal.UserID,
		"invitation_id", invitationID,
		"accept", accept,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to respond to invitation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "invitation answered")
	}()

	var existing persistence.Invitation
	existing, err = s.invitations.GetInvitation(ctx, invitationID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if existing.UserID != principal.UserID {
		err = ErrUnauthorized
		return
	}
	if existing.Status != persistence.InvitationPending {
		err = ErrInvalidTransition
		return
	}

	existing.Status = persistence.InvitationDeclined
	if accept {
		existing.Status = persistence.InvitationAccepted
	}
	if err = s.invitations.UpdateInvitation(ctx, existing); err != nil {
		err = mapRepoError(err)
		return
	}
	if accept {
		var joined bool
		joined, err = s.isParticipant(ctx, existing.EventID, existing.UserID)
		if err != nil {
			return
		}
		if !joined {
			if addErr := s.events.AddParticipant(ctx, persistence.Participant{
				EventID:     existing.EventID,
				UserID:      existing.UserID,
				ID:          s.idGenerator(),
				Permissions: []persistence.ParticipantPermission{persistence.PermissionRead},
			}); addErr != nil {
				err = mapRepoError(addErr)
				return
			}
		}
	}
	invitation, err = s.invitations.GetInvitation(ctx, invitationID)
	err = mapRepoError(err)
	return
}

// ListInvitationsForEvent lists an event's invitations.
func (s *EventService) ListInvitationsForEvent(ctx context.Context, principal Principal, eventID string) ([]persistence.Invitation, error) {
	invitations, err := s.invitations.ListInvitationsForEvent(ctx, eventID)
	return invitations, mapRepoError(err)
}

// ListInvitationsForUser lists the invitations addressed to one user.
func (s *EventService) ListInvitationsForUser(ctx context.Context, principal Principal, userID string) ([]persistence.Invitation, error) {
	invitations, err := s.invitations.ListInvitationsForUser(ctx, userID)
	return invitations, mapRepoError(err)
}

// detectWarnings expands the event within the default window and checks its
// occurrences against room reservations, room rules and the participants'
// other events. Detected conflicts are returned as advisory warnings.
func (s *EventService) detectWarnings(ctx context.Context, event persistence.Event, roomIDs []string) ([]booking.Conflict, error) {
	window := availability.DefaultWindow(s.now(), time.UTC)
	candidates, err := s.engine.Expand(event.ID, event.Start, event.End, event.Recurrence, window)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	warnings := make([]booking.Conflict, 0)

	for _, roomID := range roomIDs {
		existing, rules, err := s.roomBookings(ctx, roomID, event.ID, window)
		if err != nil {
			return nil, err
		}
		for _, occurrence := range candidates {
			candidate := booking.Booking{
				EventID: event.ID,
				RoomID:  roomID,
				Start:   occurrence.Start,
				End:     occurrence.End,
			}
			warnings = append(warnings, booking.DetectConflicts(existing, candidate)...)
			warnings = append(warnings, booking.CheckRules(rules, candidate)...)
		}
	}

	participantIDs, existing, err := s.participantBookings(ctx, event.ID, window)
	if err != nil {
		return nil, err
	}
	if len(participantIDs) > 0 {
		for _, occurrence := range candidates {
			candidate := booking.Booking{
				EventID:      event.ID,
				Participants: participantIDs,
				Start:        occurrence.Start,
				End:          occurrence.End,
			}
			warnings = append(warnings, booking.DetectConflicts(existing, candidate)...)
		}
	}

	return warnings, nil
}

// roomBookings resolves the effective occurrences of every active event
// reserving the room into concrete bookings, along with the room's usage
// rules. Cancelled and rejected events occupy nothing.
func (s *EventService) roomBookings(ctx context.Context, roomID, excludeEventID string, window recurrence.Window) ([]booking.Booking, []booking.RoomRule, error) {
	stored, err := s.rooms.ListRoomRules(ctx, roomID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	rules := make([]booking.RoomRule, 0, len(stored))
	for _, rule := range stored {
		rules = append(rules, booking.RoomRule{
			RoomID:      rule.RoomID,
			Weekday:     rule.Weekday,
			StartMinute: rule.StartMinute,
			EndMinute:   rule.EndMinute,
		})
	}

	events, err := s.events.ListEventsForRoom(ctx, roomID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	bookings := make([]booking.Booking, 0)
	for _, other := range events {
		if other.ID == excludeEventID || !occupiesRoom(other) {
			continue
		}
		occurrences, err := s.resolveOccurrences(ctx, other, window)
		if err != nil {
			return nil, nil, err
		}
		for _, occurrence := range occurrences {
			bookings = append(bookings, booking.Booking{
				EventID: other.ID,
				RoomID:  roomID,
				Start:   occurrence.Start,
				End:     occurrence.End,
			})
		}
	}
	return bookings, rules, nil
}

// participantBookings collects the event's participants and the resolved
// occurrences of their other events within the window.
func (s *EventService) participantBookings(ctx context.Context, eventID string, window recurrence.Window) ([]string, []booking.Booking, error) {
	participants, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return nil, nil, mapRepoError(err)
	}
	participantIDs := make([]string, 0, len(participants))
	for _, participant := range participants {
		participantIDs = append(participantIDs, participant.UserID)
	}

	seen := map[string]struct{}{eventID: {}}
	bookings := make([]booking.Booking, 0)
	for _, userID := range participantIDs {
		events, err := s.events.ListEvents(ctx, persistence.EventFilter{
			ParticipantID: userID,
			StartsBefore:  &window.To,
			EndsAfter:     &window.From,
		})
		if err != nil {
			return nil, nil, mapRepoError(err)
		}
		for _, other := range events {
			if _, ok := seen[other.ID]; ok {
				continue
			}
			seen[other.ID] = struct{}{}
			if other.Status == persistence.EventStatusCancelled {
				continue
			}
			otherParticipants, err := s.events.ListParticipants(ctx, other.ID)
			if err != nil {
				return nil, nil, mapRepoError(err)
			}
			otherIDs := make([]string, 0, len(otherParticipants))
			for _, participant := range otherParticipants {
				otherIDs = append(otherIDs, participant.UserID)
			}
			occurrences, err := s.resolveOccurrences(ctx, other, window)
			if err != nil {
				return nil, nil, err
			}
			for _, occurrence := range occurrences {
				bookings = append(bookings, booking.Booking{
					EventID:      other.ID,
					Participants: otherIDs,
					Start:        occurrence.Start,
					End:          occurrence.End,
				})
			}
		}
	}
	return participantIDs, bookings, nil
}

// resolveOccurrences loads an event's overrides and resolves its effective
// occurrences within the window.
func (s *EventService) resolveOccurrences(ctx context.Context, event persistence.Event, window recurrence.Window) ([]recurrence.Occurrence, error) {
	stored, err := s.exceptions.ListExceptions(ctx, event.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	exceptions := make([]recurrence.Exception, 0, len(stored))
	for _, exception := range stored {
		exceptions = append(exceptions, toEngineException(exception))
	}
	return s.engine.Resolve(event.ID, event.Start, event.End, event.Recurrence, exceptions, window)
}

// syncRoomLinks reconciles the stored room reservations with the desired set.
func (s *EventService) syncRoomLinks(ctx context.Context, eventID string, roomIDs []string) error {
	links, err := s.events.ListRoomLinks(ctx, eventID)
	if err != nil {
		return mapRepoError(err)
	}
	desired := make(map[string]struct{}, len(roomIDs))
	for _, roomID := range roomIDs {
		desired[roomID] = struct{}{}
	}
	current := make(map[string]struct{}, len(links))
	for _, link := range links {
		current[link.RoomID] = struct{}{}
		if _, ok := desired[link.RoomID]; !ok {
			if err := s.events.UnlinkRoom(ctx, eventID, link.RoomID); err != nil {
				return mapRepoError(err)
			}
		}
	}
	for _, roomID := range roomIDs {
		if _, ok := current[roomID]; ok {
			continue
		}
		if err := s.events.LinkRoom(ctx, persistence.RoomLink{EventID: eventID, ID: s.idGenerator(), RoomID: roomID}); err != nil {
			return mapRepoError(err)
		}
	}
	return nil
}

// syncParticipants reconciles the stored participants with the desired set.
// The creator keeps the owner record and is never removed.
func (s *EventService) syncParticipants(ctx context.Context, eventID, creatorID string, userIDs []string) error {
	participants, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return mapRepoError(err)
	}
	desired := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		desired[userID] = struct{}{}
	}
	current := make(map[string]struct{}, len(participants))
	for _, participant := range participants {
		current[participant.UserID] = struct{}{}
		if participant.UserID == creatorID {
			continue
		}
		if _, ok := desired[participant.UserID]; !ok {
			if err := s.events.RemoveParticipant(ctx, eventID, participant.UserID); err != nil {
				return mapRepoError(err)
			}
		}
	}
	for _, userID := range userIDs {
		if userID == creatorID {
			continue
		}
		if _, ok := current[userID]; ok {
			continue
		}
		if err := s.events.AddParticipant(ctx, persistence.Participant{
			EventID:     eventID,
			UserID:      userID,
			ID:          s.idGenerator(),
			Permissions: []persistence.ParticipantPermission{persistence.PermissionRead, persistence.PermissionWrite},
		}); err != nil {
			return mapRepoError(err)
		}
	}
	return nil
}

// isParticipant reports whether the user already holds a participant record
// on the event.
func (s *EventService) isParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	participants, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return false, mapRepoError(err)
	}
	for _, participant := range participants {
		if participant.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

var validPermissions = map[persistence.ParticipantPermission]struct{}{
	persistence.PermissionRead:   {},
	persistence.PermissionWrite:  {},
	persistence.PermissionManage: {},
	persistence.PermissionOwner:  {},
	persistence.PermissionInvite: {},
}

func validatePermissions(permissions []persistence.ParticipantPermission) *ValidationError {
	for _, permission := range permissions {
		if _, ok := validPermissions[permission]; !ok {
			vErr := &ValidationError{}
			vErr.add("permissions", "permissions must be a subset of read, write, manage, owner, invite")
			return vErr
		}
	}
	return nil
}

// loadResult assembles an event with its reservations and participants.
func (s *EventService) loadResult(ctx context.Context, eventID string, warnings []booking.Conflict) (EventResult, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return EventResult{}, mapRepoError(err)
	}
	links, err := s.events.ListRoomLinks(ctx, eventID)
	if err != nil {
		return EventResult{}, mapRepoError(err)
	}
	roomIDs := make([]string, 0, len(links))
	for _, link := range links {
		roomIDs = append(roomIDs, link.RoomID)
	}
	participants, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return EventResult{}, mapRepoError(err)
	}
	return EventResult{
		Event:        event,
		RoomIDs:      roomIDs,
		Participants: participants,
		Warnings:     warnings,
	}, nil
}

// occupiesRoom reports whether the event blocks its reserved rooms.
// Cancelled events and events whose approval was rejected occupy nothing.
func occupiesRoom(event persistence.Event) bool {
	if event.Status == persistence.EventStatusCancelled {
		return false
	}
	return event.Approval != persistence.ApprovalRejected
}

// validateEventInput validates the caller supplied fields and converts the
// recurrence configuration.
func validateEventInput(input EventInput) (*recurrence.Pattern, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if !input.End.After(input.Start) {
		vErr.add("end", "end must be after start")
	}
	if len(input.RoomIDs) > 0 && strings.TrimSpace(input.OrganizationID) == "" {
		vErr.add("organization_id", "room reservations require an organization")
	}

	pattern, patternErr := toPattern(input.Recurrence)
	vErr.merge(patternErr)
	if pattern != nil {
		if validateErr := pattern.Validate(); validateErr != nil {
			vErr.add("recurrence", validateErr.Error())
		}
	}

	if vErr.HasErrors() {
		return nil, vErr
	}
	return pattern, nil
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
