package teams

import (
	"context"
	"errors"
	"fmt"
)

// AddTeamRole adds a user to a team, buying an extra seat first when the team
// is already at its plan's member capacity.
//
// When the plan cannot be resolved because the team, its owner role or the
// owner account is missing, the member is added anyway with no quota check.
// Billing failures during resolution are not forgiven and abort the add.
func (s *PostgresService) AddTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*TeamRole, error) {
	sub, err := s.ResolvePlan(ctx, teamID)
	if errors.Is(err, ErrNotFound) {
		s.logger.WithField("team_id", teamID).
			Warn("adding member without quota check, team plan could not be resolved")
		return s.createRole(ctx, teamID, userID, roleName)
	}
	if err != nil {
		return nil, err
	}

	features, err := s.catalog.MustGet(sub.Plan.Nickname)
	if err != nil {
		return nil, err
	}

	roles, err := s.findRolesWithUsers(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if len(roles) >= features.Members {
		subscriptionID, err := s.ownerSubscriptionID(roles)
		if err != nil {
			return nil, fmt.Errorf("team %d is at capacity and cannot add seats: %w", teamID, err)
		}
		if err := s.gateway.UpdateMembers(ctx, subscriptionID, 1); err != nil {
			return nil, err
		}
	}

	return s.createRole(ctx, teamID, userID, roleName)
}

// DeleteTeamMember removes a role by id and releases a billed seat when the
// team still sits at or above its plan capacity after the removal. The seat
// check runs against the post-deletion member count, so dropping from
// capacity to one below it does not release a seat.
//
// Nothing stops the last owner from being removed here; the team then fails
// plan resolution until a new owner role is written.
func (s *PostgresService) DeleteTeamMember(ctx context.Context, roleID int64) error {
	role, err := s.findRoleByID(ctx, roleID)
	if err != nil {
		return err
	}

	if err := s.deleteRole(ctx, roleID); err != nil {
		return err
	}

	sub, err := s.ResolvePlan(ctx, role.TeamID)
	if err != nil {
		return fmt.Errorf("member removed but seat release failed: %w", err)
	}

	features, err := s.catalog.MustGet(sub.Plan.Nickname)
	if err != nil {
		return fmt.Errorf("member removed but seat release failed: %w", err)
	}

	roles, err := s.findRolesWithUsers(ctx, role.TeamID)
	if err != nil {
		return fmt.Errorf("member removed but seat release failed: %w", err)
	}

	if len(roles) >= features.Members {
		subscriptionID, err := s.ownerSubscriptionID(roles)
		if err != nil {
			return fmt.Errorf("member removed but seat release failed: %w", err)
		}
		if err := s.gateway.UpdateMembers(ctx, subscriptionID, -1); err != nil {
			return fmt.Errorf("member removed but seat release failed: %w", err)
		}
	}

	return nil
}

// ownerSubscriptionID finds the owner among the loaded roles and decrypts
// their subscription identifier.
func (s *PostgresService) ownerSubscriptionID(roles []*TeamRole) (string, error) {
	for _, role := range roles {
		if role.Role != RoleOwner || role.User == nil {
			continue
		}
		if role.User.SubscriptionID == "" {
			return "", fmt.Errorf("owner %d has no subscription", role.UserID)
		}
		subscriptionID, err := s.cipher.Decrypt(role.User.SubscriptionID)
		if err != nil {
			return "", fmt.Errorf("failed to decrypt subscription id for user %d: %w", role.UserID, err)
		}
		return subscriptionID, nil
	}
	return "", errors.New("team has no owner role")
}
