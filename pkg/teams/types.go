package teams

import (
	"context"
	"time"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/plans"
)

// Team is a tenant grouping of users and projects
type Team struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Plan      *plans.Features `json:"plan,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// User is the directory view of a user account the engine needs: the
// subscription identifier (encrypted at rest) and an optional manually
// assigned plan name. Email is stored encrypted.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"-"`
	SubscriptionID string `json:"-"`
	Plan           string `json:"plan,omitempty"`
}

// TeamRole maps a user to their permission tier within a team. Unique per
// (team, user). The User linkage is populated when roles are loaded with
// their owners for seat math.
type TeamRole struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	User      *User     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamInvite is a pending invitation into a team. The email is stored
// encrypted; the token is a random uuid. Invites never expire on their own.
type TeamInvite struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"-"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleOwner is the role whose user account carries the team's billing
// subscription identifier.
const RoleOwner = "owner"

// Service is the engine's operation surface, consumed by the route layer
type Service interface {
	// Teams
	CreateTeam(ctx context.Context, name string) (*Team, error)
	FindTeamByID(ctx context.Context, id int64) (*Team, error)
	UpdateTeam(ctx context.Context, id int64, name string) (*Team, error)
	DeleteTeam(ctx context.Context, id int64) error
	GetUserTeams(ctx context.Context, userID int64) ([]*Team, error)

	// Plan resolution
	ResolvePlan(ctx context.Context, teamID int64) (*billing.Subscription, error)

	// Roles
	GetTeamRole(ctx context.Context, teamID, userID int64) (*TeamRole, error)
	GetAllTeamRoles(ctx context.Context, teamID int64) ([]*TeamRole, error)
	GetTeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error)
	AddTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*TeamRole, error)
	UpdateTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*TeamRole, error)
	DeleteTeamMember(ctx context.Context, roleID int64) error
	IsUserInTeam(ctx context.Context, teamID int64, email string) ([]int64, error)

	// Invites
	SaveTeamInvite(ctx context.Context, teamID, userID int64, email string) (*TeamInvite, error)
	GetTeamInvite(ctx context.Context, token string) (*TeamInvite, error)
	GetTeamInvitesByTeam(ctx context.Context, teamID int64) ([]*TeamInvite, error)
	GetInviteByEmail(ctx context.Context, teamID int64, email string) (*TeamInvite, error)
	DeleteTeamInvite(ctx context.Context, token string) error

	// Directory
	FindUserByToken(ctx context.Context, token string) (*User, error)
}
