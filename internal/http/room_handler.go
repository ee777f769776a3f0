package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type roomService interface {
	CreateRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (persistence.Room, error)
	UpdateRoom(ctx context.Context, principal application.Principal, roomID string, input application.RoomInput) (persistence.Room, error)
	GetRoom(ctx context.Context, principal application.Principal, roomID string) (persistence.Room, error)
	ListRooms(ctx context.Context, principal application.Principal, organizationID string) ([]persistence.Room, error)
	ListRoomsForFloor(ctx context.Context, principal application.Principal, floorID string) ([]persistence.Room, error)
	DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error

	CreateRoomRule(ctx context.Context, principal application.Principal, input application.RoomRuleInput) (persistence.RoomRule, error)
	ListRoomRules(ctx context.Context, principal application.Principal, roomID string) ([]persistence.RoomRule, error)
	DeleteRoomRule(ctx context.Context, principal application.Principal, ruleID string) error
}

type availabilityService interface {
	RoomAvailability(ctx context.Context, principal application.Principal, roomID string, window application.OccurrenceWindow) (application.RoomAvailabilityResult, error)
	OrganizationAvailability(ctx context.Context, principal application.Principal, organizationID string, window application.OccurrenceWindow) ([]application.RoomAvailabilityResult, error)
}

// RoomHandler exposes room, usage rule and availability endpoints.
type RoomHandler struct {
	rooms        roomService
	availability availabilityService
	responder    responder
	logger       *slog.Logger
}

func NewRoomHandler(rooms roomService, availability availabilityService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{rooms: rooms, availability: availability, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

type roomRequest struct {
	FloorID     string   `json:"floor_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities,omitempty"`
	Capacity    int      `json:"capacity"`
	Enabled     *bool    `json:"enabled,omitempty"`
	Type        string   `json:"type,omitempty"`
	Status      string   `json:"status,omitempty"`
	Metadata    *string  `json:"metadata,omitempty"`
}

func (r roomRequest) toInput(organizationID string) application.RoomInput {
	return application.RoomInput{
		OrganizationID: organizationID,
		FloorID:        r.FloorID,
		Name:           r.Name,
		Description:    r.Description,
		Amenities:      r.Amenities,
		Capacity:       r.Capacity,
		Enabled:        r.Enabled,
		Type:           r.Type,
		Status:         r.Status,
		Metadata:       r.Metadata,
	}
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "organization_id", organizationID)
	room, err := h.rooms.CreateRoom(r.Context(), principal, req.toInput(organizationID))
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomDTO(room))
}

func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	roomID := r.PathValue("id")

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "room_id", roomID)
	room, err := h.rooms.UpdateRoom(r.Context(), principal, roomID, req.toInput(""))
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	room, err := h.rooms.GetRoom(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomDTO(room))
}

func (h *RoomHandler) ListForOrganization(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	rooms, err := h.rooms.ListRooms(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeRooms(r.Context(), w, rooms)
}

func (h *RoomHandler) ListForFloor(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	rooms, err := h.rooms.ListRoomsForFloor(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeRooms(r.Context(), w, rooms)
}

func (h *RoomHandler) writeRooms(ctx context.Context, w http.ResponseWriter, rooms []persistence.Room) {
	dtos := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	roomID := r.PathValue("id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "room_id", roomID)
	if err := h.rooms.DeleteRoom(r.Context(), principal, roomID); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roomRuleRequest struct {
	Weekday     int `json:"weekday"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

func (h *RoomHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	roomID := r.PathValue("id")

	var req roomRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRule", "principal_id", principal.UserID, "room_id", roomID)
	rule, err := h.rooms.CreateRoomRule(r.Context(), principal, application.RoomRuleInput{
		RoomID:      roomID,
		Weekday:     time.Weekday(req.Weekday),
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "room rule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("rule_id", rule.ID).InfoContext(r.Context(), "room rule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRoomRuleDTO(rule))
}

func (h *RoomHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	rules, err := h.rooms.ListRoomRules(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]roomRuleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, toRoomRuleDTO(rule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *RoomHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	ruleID := r.PathValue("ruleID")

	logger := h.log(r.Context(), "DeleteRule", "principal_id", principal.UserID, "rule_id", ruleID)
	if err := h.rooms.DeleteRoomRule(r.Context(), principal, ruleID); err != nil {
		logger.ErrorContext(r.Context(), "room rule delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room rule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	roomID := r.PathValue("id")

	window, err := parseOccurrenceWindow(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.availability.RoomAvailability(r.Context(), principal, roomID, window)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRoomAvailabilityDTO(result))
}

func (h *RoomHandler) OrganizationAvailability(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	window, err := parseOccurrenceWindow(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	results, err := h.availability.OrganizationAvailability(r.Context(), principal, organizationID, window)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]roomAvailabilityDTO, 0, len(results))
	for _, result := range results {
		dtos = append(dtos, toRoomAvailabilityDTO(result))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

// parseOccurrenceWindow reads optional RFC 3339 "from" and "to" query
// parameters. Absent bounds stay nil so the service applies its default
// window.
func parseOccurrenceWindow(r *http.Request) (application.OccurrenceWindow, error) {
	var window application.OccurrenceWindow
	query := r.URL.Query()
	for name, bound := range map[string]**time.Time{"from": &window.From, "to": &window.To} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return application.OccurrenceWindow{}, fmt.Errorf("invalid %s parameter: %w", name, err)
		}
		value := parsed
		*bound = &value
	}
	return window, nil
}
