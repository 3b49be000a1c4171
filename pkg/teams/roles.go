package teams

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// findRolesWithUsers loads all roles for a team with their user linkage, so
// the seat math can reach the owner's subscription identifier.
func (s *PostgresService) findRolesWithUsers(ctx context.Context, teamID int64) ([]*TeamRole, error) {
	query := `
		SELECT tr.id, tr.team_id, tr.user_id, tr.role, tr.created_at,
		       u.id, u.name, u.email, u.subscription_id, u.plan
		FROM team_roles tr
		JOIN users u ON u.id = tr.user_id
		WHERE tr.team_id = $1
		ORDER BY tr.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*TeamRole
	for rows.Next() {
		role := &TeamRole{User: &User{}}
		var subscriptionID, plan sql.NullString
		if err := rows.Scan(
			&role.ID, &role.TeamID, &role.UserID, &role.Role, &role.CreatedAt,
			&role.User.ID, &role.User.Name, &role.User.Email, &subscriptionID, &plan,
		); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		if subscriptionID.Valid {
			role.User.SubscriptionID = subscriptionID.String
		}
		if plan.Valid {
			role.User.Plan = plan.String
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// GetTeamRole retrieves the role a user holds within a team
func (s *PostgresService) GetTeamRole(ctx context.Context, teamID, userID int64) (*TeamRole, error) {
	query := `
		SELECT id, team_id, user_id, role, created_at
		FROM team_roles
		WHERE team_id = $1 AND user_id = $2
	`
	role := &TeamRole{}
	err := s.db.QueryRowContext(ctx, query, teamID, userID).
		Scan(&role.ID, &role.TeamID, &role.UserID, &role.Role, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role for user %d in team %d: %w", userID, teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

// GetAllTeamRoles lists all roles of a team
func (s *PostgresService) GetAllTeamRoles(ctx context.Context, teamID int64) ([]*TeamRole, error) {
	query := `
		SELECT id, team_id, user_id, role, created_at
		FROM team_roles
		WHERE team_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*TeamRole
	for rows.Next() {
		role := &TeamRole{}
		if err := rows.Scan(&role.ID, &role.TeamID, &role.UserID, &role.Role, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

// GetTeamMemberIDs lists the user ids of a team's members
func (s *PostgresService) GetTeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error) {
	roles, err := s.GetAllTeamRoles(ctx, teamID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.UserID)
	}
	return ids, nil
}

// UpdateTeamRole changes the role a user holds within a team
func (s *PostgresService) UpdateTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*TeamRole, error) {
	query := `UPDATE team_roles SET role = $1 WHERE team_id = $2 AND user_id = $3`
	result, err := s.db.ExecContext(ctx, query, roleName, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("role for user %d in team %d: %w", userID, teamID, ErrNotFound)
	}
	return s.GetTeamRole(ctx, teamID, userID)
}

// IsUserInTeam reports the team ids (restricted to teamID) the user behind
// an email already belongs to. An unknown email yields an empty set, not an
// error.
func (s *PostgresService) IsUserInTeam(ctx context.Context, teamID int64, email string) ([]int64, error) {
	encrypted, err := s.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt email: %w", err)
	}

	user, err := s.findUserByEmail(ctx, encrypted)
	if errors.Is(err, ErrNotFound) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, err
	}

	query := `SELECT team_id FROM team_roles WHERE user_id = $1`
	rows, err := s.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		if id == teamID {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return ids, nil
}

func (s *PostgresService) createRole(ctx context.Context, teamID, userID int64, roleName string) (*TeamRole, error) {
	query := `
		INSERT INTO team_roles (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, team_id, user_id, role, created_at
	`
	role := &TeamRole{}
	err := s.db.QueryRowContext(ctx, query, teamID, userID, roleName).
		Scan(&role.ID, &role.TeamID, &role.UserID, &role.Role, &role.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return role, nil
}

func (s *PostgresService) findRoleByID(ctx context.Context, id int64) (*TeamRole, error) {
	query := `SELECT id, team_id, user_id, role, created_at FROM team_roles WHERE id = $1`
	role := &TeamRole{}
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&role.ID, &role.TeamID, &role.UserID, &role.Role, &role.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (s *PostgresService) deleteRole(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM team_roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("role %d: %w", id, ErrNotFound)
	}
	return nil
}
