package sqlite

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// InvitationRepository implements persistence.InvitationRepository using SQLite.
type InvitationRepository struct {
	pool *ConnectionPool
}

// NewInvitationRepository creates a new SQLite invitation repository.
func NewInvitationRepository(pool *ConnectionPool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

const invitationColumns = "id, event_id, user_id, status, created_at, updated_at"

// CreateInvitation inserts a new invitation.
func (r *InvitationRepository) CreateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	if invitation.ID == "" || invitation.EventID == "" || invitation.UserID == "" {
		return persistence.ErrConstraintViolation
	}
	if invitation.Status == "" {
		invitation.Status = persistence.InvitationPending
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO invitations ("+invitationColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		invitation.ID,
		invitation.EventID,
		invitation.UserID,
		string(invitation.Status),
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateInvitation updates an invitation's status.
func (r *InvitationRepository) UpdateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	if invitation.ID == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE invitations SET status = ?, updated_at = ? WHERE id = ?",
		string(invitation.Status), formatTime(time.Now().UTC()), invitation.ID)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

// GetInvitation retrieves an invitation by ID.
func (r *InvitationRepository) GetInvitation(ctx context.Context, id string) (persistence.Invitation, error) {
	if id == "" {
		return persistence.Invitation{}, persistence.ErrNotFound
	}
	return r.scanInvitation(r.pool.db.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE id = ?", id))
}

// ListInvitationsForEvent lists an event's invitations ordered by user ID.
func (r *InvitationRepository) ListInvitationsForEvent(ctx context.Context, eventID string) ([]persistence.Invitation, error) {
	return r.listInvitations(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE event_id = ? ORDER BY user_id ASC",
		eventID)
}

// ListInvitationsForUser lists a user's invitations ordered by creation time.
func (r *InvitationRepository) ListInvitationsForUser(ctx context.Context, userID string) ([]persistence.Invitation, error) {
	return r.listInvitations(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE user_id = ? ORDER BY created_at ASC, id ASC",
		userID)
}

// DeleteInvitation removes an invitation by ID.
func (r *InvitationRepository) DeleteInvitation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM invitations WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireRowsAffected(result)
}

func (r *InvitationRepository) listInvitations(ctx context.Context, query, arg string) ([]persistence.Invitation, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var invitations []persistence.Invitation
	for rows.Next() {
		invitation, err := r.scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}

func (r *InvitationRepository) scanInvitation(row rowScanner) (persistence.Invitation, error) {
	var invitation persistence.Invitation
	var status, createdAt, updatedAt string
	err := row.Scan(&invitation.ID, &invitation.EventID, &invitation.UserID, &status, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Invitation{}, mapError(err)
	}
	invitation.Status = persistence.InvitationStatus(status)
	if invitation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Invitation{}, err
	}
	if invitation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Invitation{}, err
	}
	return invitation, nil
}
