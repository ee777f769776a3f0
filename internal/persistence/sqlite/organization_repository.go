package sqlite

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// OrganizationRepository implements persistence.OrganizationRepository using SQLite.
type OrganizationRepository struct {
	pool *ConnectionPool
}

// NewOrganizationRepository creates a new SQLite organization repository.
func NewOrganizationRepository(pool *ConnectionPool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

const organizationColumns = "id, name, slug, created_at, updated_at"

// CreateOrganization inserts a new organization.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org persistence.Organization) error {
	if org.ID == "" || org.Slug == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO organizations ("+organizationColumns+") VALUES (?, ?, ?, ?, ?)",
		org.ID, org.Name, org.Slug, formatTime(org.CreatedAt), formatTime(org.UpdatedAt))
	return mapError(err)
}

// UpdateOrganization updates an existing organization.
func (r *OrganizationRepository) UpdateOrganization(ctx context.Context, org persistence.Organization) error {
	if org.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE organizations SET name = ?, slug = ?, updated_at = ? WHERE id = ?",
		org.Name, org.Slug, formatTime(time.Now().UTC()), org.ID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetOrganization retrieves an organization by ID.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id string) (persistence.Organization, error) {
	if id == "" {
		return persistence.Organization{}, persistence.ErrNotFound
	}
	return r.scanOrganization(r.pool.db.QueryRowContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE id = ?", id))
}

// GetOrganizationBySlug retrieves an organization by its slug.
func (r *OrganizationRepository) GetOrganizationBySlug(ctx context.Context, slug string) (persistence.Organization, error) {
	if slug == "" {
		return persistence.Organization{}, persistence.ErrNotFound
	}
	return r.scanOrganization(r.pool.db.QueryRowContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE slug = ?", slug))
}

// ListOrganizations lists all organizations ordered by name.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]persistence.Organization, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var orgs []persistence.Organization
	for rows.Next() {
		org, err := r.scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// DeleteOrganization removes an organization and, via cascading foreign keys,
// everything scoped to it.
func (r *OrganizationRepository) DeleteOrganization(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM organizations WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// AddMember links a user to an organization.
func (r *OrganizationRepository) AddMember(ctx context.Context, membership persistence.Membership) error {
	if membership.OrganizationID == "" || membership.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if membership.Role == "" {
		membership.Role = persistence.RoleMember
	}

	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO organization_members (organization_id, user_id, role, created_at) VALUES (?, ?, ?, ?)",
		membership.OrganizationID, membership.UserID, string(membership.Role), formatTime(time.Now().UTC()))
	return mapError(err)
}

// RemoveMember unlinks a user from an organization.
func (r *OrganizationRepository) RemoveMember(ctx context.Context, organizationID, userID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		"DELETE FROM organization_members WHERE organization_id = ? AND user_id = ?",
		organizationID, userID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// ListMembers lists an organization's memberships ordered by user ID.
func (r *OrganizationRepository) ListMembers(ctx context.Context, organizationID string) ([]persistence.Membership, error) {
	return r.listMemberships(ctx,
		"SELECT organization_id, user_id, role, created_at FROM organization_members WHERE organization_id = ? ORDER BY user_id ASC",
		organizationID)
}

// ListMembershipsForUser lists the organizations a user belongs to.
func (r *OrganizationRepository) ListMembershipsForUser(ctx context.Context, userID string) ([]persistence.Membership, error) {
	return r.listMemberships(ctx,
		"SELECT organization_id, user_id, role, created_at FROM organization_members WHERE user_id = ? ORDER BY organization_id ASC",
		userID)
}

func (r *OrganizationRepository) listMemberships(ctx context.Context, query string, arg string) ([]persistence.Membership, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var memberships []persistence.Membership
	for rows.Next() {
		var membership persistence.Membership
		var role, createdAt string
		if err := rows.Scan(&membership.OrganizationID, &membership.UserID, &role, &createdAt); err != nil {
			return nil, mapError(err)
		}
		membership.Role = persistence.MemberRole(role)
		if membership.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	return memberships, rows.Err()
}

func (r *OrganizationRepository) scanOrganization(row rowScanner) (persistence.Organization, error) {
	var org persistence.Organization
	var createdAt, updatedAt string
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Organization{}, mapError(err)
	}
	if org.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Organization{}, err
	}
	if org.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Organization{}, err
	}
	return org, nil
}
