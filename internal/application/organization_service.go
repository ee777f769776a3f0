package application

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// OrganizationService orchestrates validation, authorization and persistence
// for tenants and their memberships.
type OrganizationService struct {
	organizations persistence.OrganizationRepository
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewOrganizationService constructs an organization service with the provided dependencies.
func NewOrganizationService(organizations persistence.OrganizationRepository, idGenerator func() string, now func() time.Time) *OrganizationService {
	return NewOrganizationServiceWithLogger(organizations, idGenerator, now, nil)
}

// NewOrganizationServiceWithLogger constructs an organization service with a specified logger.
func NewOrganizationServiceWithLogger(organizations persistence.OrganizationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *OrganizationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &OrganizationService{
		organizations: organizations,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *OrganizationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OrganizationService", operation, attrs...)
}

// CreateOrganization validates input and persists a new tenant for administrators.
func (s *OrganizationService) CreateOrganization(ctx context.Context, principal Principal, input OrganizationInput) (org persistence.Organization, err error) {
	if s == nil {
		err = fmt.Errorf("OrganizationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateOrganization", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create organization", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("organization_id", org.ID).InfoContext(ctx, "organization created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateOrganizationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	org = persistence.Organization{
		ID:   s.idGenerator(),
		Name: strings.TrimSpace(input.Name),
		Slug: strings.TrimSpace(input.Slug),
	}
	if err = s.organizations.CreateOrganization(ctx, org); err != nil {
		err = mapRepoError(err)
		org = persistence.Organization{}
		return
	}

	org, err = s.organizations.GetOrganization(ctx, org.ID)
	err = mapRepoError(err)
	return
}

// UpdateOrganization validates input and updates an existing tenant for administrators.
func (s *OrganizationService) UpdateOrganization(ctx context.Context, principal Principal, organizationID string, input OrganizationInput) (org persistence.Organization, err error) {
	if s == nil {
		err = fmt.Errorf("OrganizationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateOrganization",
		"principal_id", principal.UserID,
		"organization_id", organizationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update organization", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "organization updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateOrganizationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := persistence.Organization{
		ID:   organizationID,
		Name: strings.TrimSpace(input.Name),
		Slug: strings.TrimSpace(input.Slug),
	}
	if err = s.organizations.UpdateOrganization(ctx, updated); err != nil {
		err = mapRepoError(err)
		return
	}

	org, err = s.organizations.GetOrganization(ctx, organizationID)
	err = mapRepoError(err)
	return
}

// GetOrganization retrieves a tenant by ID.
func (s *OrganizationService) GetOrganization(ctx context.Context, principal Principal, organizationID string) (persistence.Organization, error) {
	org, err := s.organizations.GetOrganization(ctx, organizationID)
	return org, mapRepoError(err)
}

// ListOrganizations lists all tenants.
func (s *OrganizationService) ListOrganizations(ctx context.Context, principal Principal) ([]persistence.Organization, error) {
	orgs, err := s.organizations.ListOrganizations(ctx)
	return orgs, mapRepoError(err)
}

// DeleteOrganization removes a tenant and everything scoped to it.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, principal Principal, organizationID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteOrganization",
		"principal_id", principal.UserID,
		"organization_id", organizationID,
	)
	if err := s.organizations.DeleteOrganization(ctx, organizationID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete organization", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "organization deleted")
	return nil
}

// AddMember links a user to a tenant for administrators.
func (s *OrganizationService) AddMember(ctx context.Context, principal Principal, membership persistence.Membership) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if membership.Role != "" && membership.Role != persistence.RoleAdmin && membership.Role != persistence.RoleMember {
		vErr := &ValidationError{}
		vErr.add("role", "role must be admin or member")
		return vErr
	}

	logger := s.loggerWith(ctx, "AddMember",
		"principal_id", principal.UserID,
		"organization_id", membership.OrganizationID,
		"user_id", membership.UserID,
	)
	if err := s.organizations.AddMember(ctx, membership); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to add member", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "member added")
	return nil
}

// RemoveMember unlinks a user from a tenant for administrators.
func (s *OrganizationService) RemoveMember(ctx context.Context, principal Principal, organizationID, userID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "RemoveMember",
		"principal_id", principal.UserID,
		"organization_id", organizationID,
		"user_id", userID,
	)
	if err := s.organizations.RemoveMember(ctx, organizationID, userID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to remove member", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "member removed")
	return nil
}

// ListMembers lists a tenant's memberships.
func (s *OrganizationService) ListMembers(ctx context.Context, principal Principal, organizationID string) ([]persistence.Membership, error) {
	members, err := s.organizations.ListMembers(ctx, organizationID)
	return members, mapRepoError(err)
}

func validateOrganizationInput(input OrganizationInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		vErr.add("slug", "slug is required")
	} else if !slugPattern.MatchString(slug) {
		vErr.add("slug", "slug must contain lowercase letters, digits and hyphens only")
	}
	return vErr
}
