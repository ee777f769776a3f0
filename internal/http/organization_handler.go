package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type organizationService interface {
	CreateOrganization(ctx context.Context, principal application.Principal, input application.OrganizationInput) (persistence.Organization, error)
	UpdateOrganization(ctx context.Context, principal application.Principal, organizationID string, input application.OrganizationInput) (persistence.Organization, error)
	GetOrganization(ctx context.Context, principal application.Principal, organizationID string) (persistence.Organization, error)
	ListOrganizations(ctx context.Context, principal application.Principal) ([]persistence.Organization, error)
	DeleteOrganization(ctx context.Context, principal application.Principal, organizationID string) error
	AddMember(ctx context.Context, principal application.Principal, membership persistence.Membership) error
	RemoveMember(ctx context.Context, principal application.Principal, organizationID, userID string) error
	ListMembers(ctx context.Context, principal application.Principal, organizationID string) ([]persistence.Membership, error)
}

// OrganizationHandler exposes tenant management endpoints.
type OrganizationHandler struct {
	service   organizationService
	responder responder
	logger    *slog.Logger
}

func NewOrganizationHandler(service organizationService, logger *slog.Logger) *OrganizationHandler {
	base := defaultLogger(logger)
	return &OrganizationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *OrganizationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OrganizationHandler", operation, attrs...)
}

type organizationRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req organizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)
	org, err := h.service.CreateOrganization(r.Context(), principal, application.OrganizationInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		logger.ErrorContext(r.Context(), "organization creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("organization_id", org.ID).InfoContext(r.Context(), "organization created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toOrganizationDTO(org))
}

func (h *OrganizationHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	var req organizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "organization_id", organizationID)
	org, err := h.service.UpdateOrganization(r.Context(), principal, organizationID, application.OrganizationInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		logger.ErrorContext(r.Context(), "organization update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "organization updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOrganizationDTO(org))
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	org, err := h.service.GetOrganization(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toOrganizationDTO(org))
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	orgs, err := h.service.ListOrganizations(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]organizationDTO, 0, len(orgs))
	for _, org := range orgs {
		dtos = append(dtos, toOrganizationDTO(org))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *OrganizationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "organization_id", organizationID)
	if err := h.service.DeleteOrganization(r.Context(), principal, organizationID); err != nil {
		logger.ErrorContext(r.Context(), "organization delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "organization deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type membershipRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddMember", "principal_id", principal.UserID, "organization_id", organizationID, "user_id", req.UserID)
	err := h.service.AddMember(r.Context(), principal, persistence.Membership{
		OrganizationID: organizationID,
		UserID:         req.UserID,
		Role:           persistence.MemberRole(req.Role),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "member addition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member added")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	organizationID := r.PathValue("id")
	userID := r.PathValue("userID")

	logger := h.log(r.Context(), "RemoveMember", "principal_id", principal.UserID, "organization_id", organizationID, "user_id", userID)
	if err := h.service.RemoveMember(r.Context(), principal, organizationID, userID); err != nil {
		logger.ErrorContext(r.Context(), "member removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *OrganizationHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	members, err := h.service.ListMembers(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]membershipDTO, 0, len(members))
	for _, member := range members {
		dtos = append(dtos, toMembershipDTO(member))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}
