package teams

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vizboard/vizboard/pkg/plans"
)

// SaveTeamInvite creates a pending invitation. Free-tier teams cannot invite;
// the plan is resolved first and a community nickname rejects the invite with
// ErrInviteNotAllowed. The invitee email is stored encrypted and the token is
// a random uuid.
func (s *PostgresService) SaveTeamInvite(ctx context.Context, teamID, userID int64, email string) (*TeamInvite, error) {
	sub, err := s.ResolvePlan(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if plans.IsCommunity(sub.Plan.Nickname) {
		return nil, ErrInviteNotAllowed
	}

	encrypted, err := s.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}

	query := `
		INSERT INTO team_invites (team_id, user_id, email, token)
		VALUES ($1, $2, $3, $4)
		RETURNING id, team_id, user_id, email, token, created_at
	`
	invite := &TeamInvite{}
	err = s.db.QueryRowContext(ctx, query, teamID, userID, encrypted, uuid.NewString()).
		Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.Email, &invite.Token, &invite.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return invite, nil
}

// GetTeamInvite retrieves an invitation by its token
func (s *PostgresService) GetTeamInvite(ctx context.Context, token string) (*TeamInvite, error) {
	query := `
		SELECT id, team_id, user_id, email, token, created_at
		FROM team_invites
		WHERE token = $1
	`
	invite := &TeamInvite{}
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.Email, &invite.Token, &invite.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// GetTeamInvitesByTeam lists the pending invitations of a team
func (s *PostgresService) GetTeamInvitesByTeam(ctx context.Context, teamID int64) ([]*TeamInvite, error) {
	query := `
		SELECT id, team_id, user_id, email, token, created_at
		FROM team_invites
		WHERE team_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*TeamInvite
	for rows.Next() {
		invite := &TeamInvite{}
		if err := rows.Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.Email, &invite.Token, &invite.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

// GetInviteByEmail finds a team's pending invitation for an email address.
// Emails are matched on their encrypted form, which works because the cipher
// is deterministic.
func (s *PostgresService) GetInviteByEmail(ctx context.Context, teamID int64, email string) (*TeamInvite, error) {
	encrypted, err := s.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}

	query := `
		SELECT id, team_id, user_id, email, token, created_at
		FROM team_invites
		WHERE team_id = $1 AND email = $2
	`
	invite := &TeamInvite{}
	err = s.db.QueryRowContext(ctx, query, teamID, encrypted).
		Scan(&invite.ID, &invite.TeamID, &invite.UserID, &invite.Email, &invite.Token, &invite.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// DeleteTeamInvite removes an invitation by its token
func (s *PostgresService) DeleteTeamInvite(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM team_invites WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invite: %w", ErrNotFound)
	}
	return nil
}
