package teams

import (
	"context"
	"fmt"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/observability"
	"github.com/vizboard/vizboard/pkg/plans"
)

// ResolvePlan computes the team's current subscription record from its
// owner. Nothing is cached: every call re-reads the role store and, when the
// owner carries a subscription identifier, the billing gateway.
//
// Teams without roles and teams without an owner role both fail with
// ErrNotFound. Duplicate owners are not defended against; the first one
// wins.
func (s *PostgresService) ResolvePlan(ctx context.Context, teamID int64) (*billing.Subscription, error) {
	roles, err := s.findRolesWithUsers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("team %d has no roles: %w", teamID, ErrNotFound)
	}

	var owner *TeamRole
	for _, role := range roles {
		if role.Role == RoleOwner {
			owner = role
			break
		}
	}
	if owner == nil {
		return nil, fmt.Errorf("team %d has no owner: %w", teamID, ErrNotFound)
	}

	user, err := s.findUserByID(ctx, owner.UserID)
	if err != nil {
		return nil, err
	}

	if user.SubscriptionID == "" {
		// Manually assigned plans let users access paid tiers for free, but
		// only when the name actually exists in the catalog.
		if user.Plan != "" && s.catalog.Has(user.Plan) {
			s.countResolution(observability.ResolutionSourceManual)
			return &billing.Subscription{
				TeamID: teamID,
				Plan:   &billing.Plan{Nickname: user.Plan},
			}, nil
		}
		s.countResolution(observability.ResolutionSourceFallback)
		return &billing.Subscription{
			TeamID: teamID,
			Plan:   &billing.Plan{Nickname: plans.CommunityPlan},
		}, nil
	}

	subscriptionID, err := s.cipher.Decrypt(user.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt subscription id for user %d: %w", user.ID, err)
	}

	sub, err := s.gateway.GetSubscriptionDetails(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	sub.TeamID = teamID
	if sub.Plan == nil && len(sub.Items.Data) > 0 {
		sub.Plan = sub.Items.Data[0].Plan
	}
	if sub.Plan == nil {
		return nil, fmt.Errorf("subscription for team %d carries no plan", teamID)
	}

	s.countResolution(observability.ResolutionSourceBilling)
	return sub, nil
}
