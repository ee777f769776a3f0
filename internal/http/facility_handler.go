package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type facilityService interface {
	CreateBuilding(ctx context.Context, principal application.Principal, input application.BuildingInput) (persistence.Building, error)
	UpdateBuilding(ctx context.Context, principal application.Principal, buildingID string, input application.BuildingInput) (persistence.Building, error)
	GetBuilding(ctx context.Context, principal application.Principal, buildingID string) (persistence.Building, error)
	ListBuildings(ctx context.Context, principal application.Principal, organizationID string) ([]persistence.Building, error)
	DeleteBuilding(ctx context.Context, principal application.Principal, buildingID string) error

	CreateFloor(ctx context.Context, principal application.Principal, input application.FloorInput) (persistence.Floor, error)
	UpdateFloor(ctx context.Context, principal application.Principal, floorID string, input application.FloorInput) (persistence.Floor, error)
	GetFloor(ctx context.Context, principal application.Principal, floorID string) (persistence.Floor, error)
	ListFloors(ctx context.Context, principal application.Principal, buildingID string) ([]persistence.Floor, error)
	DeleteFloor(ctx context.Context, principal application.Principal, floorID string) error
}

// FacilityHandler exposes building and floor management endpoints.
type FacilityHandler struct {
	service   facilityService
	responder responder
	logger    *slog.Logger
}

func NewFacilityHandler(service facilityService, logger *slog.Logger) *FacilityHandler {
	base := defaultLogger(logger)
	return &FacilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FacilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FacilityHandler", operation, attrs...)
}

type buildingRequest struct {
	Name     string  `json:"name"`
	Address  *string `json:"address,omitempty"`
	Metadata *string `json:"metadata,omitempty"`
}

func (h *FacilityHandler) CreateBuilding(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	var req buildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateBuilding", "principal_id", principal.UserID, "organization_id", organizationID)
	building, err := h.service.CreateBuilding(r.Context(), principal, application.BuildingInput{
		OrganizationID: organizationID,
		Name:           req.Name,
		Address:        req.Address,
		Metadata:       req.Metadata,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "building creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("building_id", building.ID).InfoContext(r.Context(), "building created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBuildingDTO(building))
}

func (h *FacilityHandler) UpdateBuilding(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	buildingID := r.PathValue("id")

	var req buildingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateBuilding", "principal_id", principal.UserID, "building_id", buildingID)
	building, err := h.service.UpdateBuilding(r.Context(), principal, buildingID, application.BuildingInput{
		Name:     req.Name,
		Address:  req.Address,
		Metadata: req.Metadata,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "building update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "building updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBuildingDTO(building))
}

func (h *FacilityHandler) GetBuilding(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	building, err := h.service.GetBuilding(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBuildingDTO(building))
}

func (h *FacilityHandler) ListBuildings(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	buildings, err := h.service.ListBuildings(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]buildingDTO, 0, len(buildings))
	for _, building := range buildings {
		dtos = append(dtos, toBuildingDTO(building))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *FacilityHandler) DeleteBuilding(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	buildingID := r.PathValue("id")

	logger := h.log(r.Context(), "DeleteBuilding", "principal_id", principal.UserID, "building_id", buildingID)
	if err := h.service.DeleteBuilding(r.Context(), principal, buildingID); err != nil {
		logger.ErrorContext(r.Context(), "building delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "building deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type floorRequest struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func (h *FacilityHandler) CreateFloor(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	buildingID := r.PathValue("id")

	var req floorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateFloor", "principal_id", principal.UserID, "building_id", buildingID)
	floor, err := h.service.CreateFloor(r.Context(), principal, application.FloorInput{
		BuildingID: buildingID,
		Name:       req.Name,
		Level:      req.Level,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "floor creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("floor_id", floor.ID).InfoContext(r.Context(), "floor created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toFloorDTO(floor))
}

func (h *FacilityHandler) UpdateFloor(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	floorID := r.PathValue("id")

	var req floorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateFloor", "principal_id", principal.UserID, "floor_id", floorID)
	floor, err := h.service.UpdateFloor(r.Context(), principal, floorID, application.FloorInput{
		Name:  req.Name,
		Level: req.Level,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "floor update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "floor updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toFloorDTO(floor))
}

func (h *FacilityHandler) GetFloor(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	floor, err := h.service.GetFloor(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toFloorDTO(floor))
}

func (h *FacilityHandler) ListFloors(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	floors, err := h.service.ListFloors(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]floorDTO, 0, len(floors))
	for _, floor := range floors {
		dtos = append(dtos, toFloorDTO(floor))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *FacilityHandler) DeleteFloor(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	floorID := r.PathValue("id")

	logger := h.log(r.Context(), "DeleteFloor", "principal_id", principal.UserID, "floor_id", floorID)
	if err := h.service.DeleteFloor(r.Context(), principal, floorID); err != nil {
		logger.ErrorContext(r.Context(), "floor delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "floor deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
