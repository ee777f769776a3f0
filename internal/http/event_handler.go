package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/recurrence"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.EventResult, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.EventResult, error)
	GetEvent(ctx context.Context, principal application.Principal, eventID string) (application.EventResult, error)
	ListEvents(ctx context.Context, principal application.Principal, filter persistence.EventFilter) ([]persistence.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
	SetApproval(ctx context.Context, principal application.Principal, eventID string, status persistence.ApprovalStatus) (persistence.Event, error)
	ListOccurrences(ctx context.Context, principal application.Principal, eventID string, window application.OccurrenceWindow) ([]recurrence.Occurrence, error)
	PutException(ctx context.Context, params application.PutExceptionParams) (persistence.EventException, error)
	ListExceptions(ctx context.Context, principal application.Principal, eventID string) ([]persistence.EventException, error)
	DeleteException(ctx context.Context, principal application.Principal, eventID string, originalStart time.Time) error
	AddParticipant(ctx context.Context, principal application.Principal, eventID, userID string, permissions []persistence.ParticipantPermission) error
	RemoveParticipant(ctx context.Context, principal application.Principal, eventID, userID string) error
	Invite(ctx context.Context, principal application.Principal, eventID, userID string) (persistence.Invitation, error)
	RespondToInvitation(ctx context.Context, principal application.Principal, invitationID string, accept bool) (persistence.Invitation, error)
	ListInvitationsForEvent(ctx context.Context, principal application.Principal, eventID string) ([]persistence.Invitation, error)
	ListInvitationsForUser(ctx context.Context, principal application.Principal, userID string) ([]persistence.Invitation, error)
}

// EventHandler exposes event, occurrence, exception and invitation endpoints.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

type eventRequest struct {
	OrganizationID   string         `json:"organization_id,omitempty"`
	Title            string         `json:"title"`
	Description      *string        `json:"description,omitempty"`
	Start            time.Time      `json:"start"`
	End              time.Time      `json:"end"`
	Extendable       bool           `json:"extendable,omitempty"`
	RoomIDs          []string       `json:"room_ids,omitempty"`
	ParticipantIDs   []string       `json:"participant_ids,omitempty"`
	Recurrence       *recurrenceDTO `json:"recurrence,omitempty"`
	RequiresApproval bool           `json:"requires_approval,omitempty"`
}

func (r eventRequest) toInput() application.EventInput {
	return application.EventInput{
		OrganizationID:   r.OrganizationID,
		Title:            r.Title,
		Description:      r.Description,
		Start:            r.Start,
		End:              r.End,
		Extendable:       r.Extendable,
		RoomIDs:          r.RoomIDs,
		ParticipantIDs:   r.ParticipantIDs,
		Recurrence:       r.Recurrence.toInput(),
		RequiresApproval: r.RequiresApproval,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)
	result, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", result.Event.ID, "warnings", len(result.Warnings)).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventResultDTO(result))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID)
	result, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{Principal: principal, EventID: eventID, Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("warnings", len(result.Warnings)).InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventResultDTO(result))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	result, err := h.service.GetEvent(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventResultDTO(result))
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	filter, err := parseEventFilter(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	events, err := h.service.ListEvents(r.Context(), principal, filter)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func parseEventFilter(r *http.Request) (persistence.EventFilter, error) {
	query := r.URL.Query()
	filter := persistence.EventFilter{
		OrganizationID: query.Get("organization_id"),
		CreatorID:      query.Get("creator_id"),
		RoomID:         query.Get("room_id"),
		ParticipantID:  query.Get("participant_id"),
	}
	if raw := query.Get("starts_before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return persistence.EventFilter{}, fmt.Errorf("invalid starts_before parameter: %w", err)
		}
		filter.StartsBefore = &parsed
	}
	if raw := query.Get("ends_after"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return persistence.EventFilter{}, fmt.Errorf("invalid ends_after parameter: %w", err)
		}
		filter.EndsAfter = &parsed
	}
	return filter, nil
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "event_id", eventID)
	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type approvalRequest struct {
	Status string `json:"status"`
}

func (h *EventHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "SetApproval", "principal_id", principal.UserID, "event_id", eventID, "status", req.Status)
	event, err := h.service.SetApproval(r.Context(), principal, eventID, persistence.ApprovalStatus(req.Status))
	if err != nil {
		logger.ErrorContext(r.Context(), "approval change failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "approval changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	window, err := parseOccurrenceWindow(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	occurrences, err := h.service.ListOccurrences(r.Context(), principal, eventID, window)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOccurrenceDTOs(occurrences))
}

type exceptionRequest struct {
	OriginalStart time.Time      `json:"original_start"`
	Kind          string         `json:"kind"`
	NewStart      *time.Time     `json:"new_start,omitempty"`
	NewEnd        *time.Time     `json:"new_end,omitempty"`
	Recurrence    *recurrenceDTO `json:"recurrence,omitempty"`
}

func (h *EventHandler) PutException(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	var req exceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "PutException", "principal_id", principal.UserID, "event_id", eventID, "kind", req.Kind)
	exception, err := h.service.PutException(r.Context(), application.PutExceptionParams{
		Principal: principal,
		EventID:   eventID,
		Input: application.ExceptionInput{
			OriginalStart: req.OriginalStart,
			Kind:          req.Kind,
			NewStart:      req.NewStart,
			NewEnd:        req.NewEnd,
			Recurrence:    req.Recurrence.toInput(),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "exception write failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "exception stored")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toExceptionDTO(exception))
}

func (h *EventHandler) ListExceptions(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	exceptions, err := h.service.ListExceptions(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]exceptionDTO, 0, len(exceptions))
	for _, exception := range exceptions {
		dtos = append(dtos, toExceptionDTO(exception))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *EventHandler) DeleteException(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	raw := r.URL.Query().Get("original_start")
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("missing original_start parameter"))
		return
	}
	originalStart, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("invalid original_start parameter: %w", err))
		return
	}

	logger := h.log(r.Context(), "DeleteException", "principal_id", principal.UserID, "event_id", eventID)
	if err := h.service.DeleteException(r.Context(), principal, eventID, originalStart); err != nil {
		logger.ErrorContext(r.Context(), "exception delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "exception deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type participantRequest struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
}

func (r participantRequest) toPermissions() []persistence.ParticipantPermission {
	permissions := make([]persistence.ParticipantPermission, 0, len(r.Permissions))
	for _, permission := range r.Permissions {
		permissions = append(permissions, persistence.ParticipantPermission(permission))
	}
	return permissions
}

func (h *EventHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddParticipant", "principal_id", principal.UserID, "event_id", eventID, "user_id", req.UserID)
	if err := h.service.AddParticipant(r.Context(), principal, eventID, req.UserID, req.toPermissions()); err != nil {
		logger.ErrorContext(r.Context(), "participant addition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant added")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")
	userID := r.PathValue("userID")

	logger := h.log(r.Context(), "RemoveParticipant", "principal_id", principal.UserID, "event_id", eventID, "user_id", userID)
	if err := h.service.RemoveParticipant(r.Context(), principal, eventID, userID); err != nil {
		logger.ErrorContext(r.Context(), "participant removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type invitationRequest struct {
	UserID string `json:"user_id"`
}

func (h *EventHandler) Invite(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	eventID := r.PathValue("id")

	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Invite", "principal_id", principal.UserID, "event_id", eventID, "user_id", req.UserID)
	invitation, err := h.service.Invite(r.Context(), principal, eventID, req.UserID)
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("invitation_id", invitation.ID).InfoContext(r.Context(), "invitation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toInvitationDTO(invitation))
}

func (h *EventHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	invitations, err := h.service.ListInvitationsForEvent(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeInvitations(r.Context(), w, invitations)
}

func (h *EventHandler) ListUserInvitations(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	invitations, err := h.service.ListInvitationsForUser(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeInvitations(r.Context(), w, invitations)
}

func (h *EventHandler) writeInvitations(ctx context.Context, w http.ResponseWriter, invitations []persistence.Invitation) {
	dtos := make([]invitationDTO, 0, len(invitations))
	for _, invitation := range invitations {
		dtos = append(dtos, toInvitationDTO(invitation))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

type invitationResponseRequest struct {
	Accept bool `json:"accept"`
}

func (h *EventHandler) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	invitationID := r.PathValue("id")

	var req invitationResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "RespondToInvitation", "principal_id", principal.UserID, "invitation_id", invitationID, "accept", req.Accept)
	invitation, err := h.service.RespondToInvitation(r.Context(), principal, invitationID, req.Accept)
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation response failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "invitation answered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toInvitationDTO(invitation))
}
