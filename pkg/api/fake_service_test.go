package api

import (
	"context"
	"errors"

	"github.com/vizboard/vizboard/pkg/billing"
	"github.com/vizboard/vizboard/pkg/teams"
)

// fakeService is a function-field fake of teams.Service; unset operations
// fail loudly so tests only stub what they exercise
type fakeService struct {
	createTeam   func(ctx context.Context, name string) (*teams.Team, error)
	findTeamByID func(ctx context.Context, id int64) (*teams.Team, error)
	updateTeam   func(ctx context.Context, id int64, name string) (*teams.Team, error)
	deleteTeam   func(ctx context.Context, id int64) error
	getUserTeams func(ctx context.Context, userID int64) ([]*teams.Team, error)

	resolvePlan func(ctx context.Context, teamID int64) (*billing.Subscription, error)

	getTeamRole      func(ctx context.Context, teamID, userID int64) (*teams.TeamRole, error)
	getAllTeamRoles  func(ctx context.Context, teamID int64) ([]*teams.TeamRole, error)
	getTeamMemberIDs func(ctx context.Context, teamID int64) ([]int64, error)
	addTeamRole      func(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error)
	updateTeamRole   func(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error)
	deleteTeamMember func(ctx context.Context, roleID int64) error
	isUserInTeam     func(ctx context.Context, teamID int64, email string) ([]int64, error)

	saveTeamInvite       func(ctx context.Context, teamID, userID int64, email string) (*teams.TeamInvite, error)
	getTeamInvite        func(ctx context.Context, token string) (*teams.TeamInvite, error)
	getTeamInvitesByTeam func(ctx context.Context, teamID int64) ([]*teams.TeamInvite, error)
	getInviteByEmail     func(ctx context.Context, teamID int64, email string) (*teams.TeamInvite, error)
	deleteTeamInvite     func(ctx context.Context, token string) error

	findUserByToken func(ctx context.Context, token string) (*teams.User, error)
}

var _ teams.Service = (*fakeService)(nil)

var errNotStubbed = errors.New("not stubbed")

func (f *fakeService) CreateTeam(ctx context.Context, name string) (*teams.Team, error) {
	if f.createTeam == nil {
		return nil, errNotStubbed
	}
	return f.createTeam(ctx, name)
}

func (f *fakeService) FindTeamByID(ctx context.Context, id int64) (*teams.Team, error) {
	if f.findTeamByID == nil {
		return nil, errNotStubbed
	}
	return f.findTeamByID(ctx, id)
}

func (f *fakeService) UpdateTeam(ctx context.Context, id int64, name string) (*teams.Team, error) {
	if f.updateTeam == nil {
		return nil, errNotStubbed
	}
	return f.updateTeam(ctx, id, name)
}

func (f *fakeService) DeleteTeam(ctx context.Context, id int64) error {
	if f.deleteTeam == nil {
		return errNotStubbed
	}
	return f.deleteTeam(ctx, id)
}

func (f *fakeService) GetUserTeams(ctx context.Context, userID int64) ([]*teams.Team, error) {
	if f.getUserTeams == nil {
		return nil, errNotStubbed
	}
	return f.getUserTeams(ctx, userID)
}

func (f *fakeService) ResolvePlan(ctx context.Context, teamID int64) (*billing.Subscription, error) {
	if f.resolvePlan == nil {
		return nil, errNotStubbed
	}
	return f.resolvePlan(ctx, teamID)
}

func (f *fakeService) GetTeamRole(ctx context.Context, teamID, userID int64) (*teams.TeamRole, error) {
	if f.getTeamRole == nil {
		return nil, errNotStubbed
	}
	return f.getTeamRole(ctx, teamID, userID)
}

func (f *fakeService) GetAllTeamRoles(ctx context.Context, teamID int64) ([]*teams.TeamRole, error) {
	if f.getAllTeamRoles == nil {
		return nil, errNotStubbed
	}
	return f.getAllTeamRoles(ctx, teamID)
}

func (f *fakeService) GetTeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error) {
	if f.getTeamMemberIDs == nil {
		return nil, errNotStubbed
	}
	return f.getTeamMemberIDs(ctx, teamID)
}

func (f *fakeService) AddTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error) {
	if f.addTeamRole == nil {
		return nil, errNotStubbed
	}
	return f.addTeamRole(ctx, teamID, userID, roleName)
}

func (f *fakeService) UpdateTeamRole(ctx context.Context, teamID, userID int64, roleName string) (*teams.TeamRole, error) {
	if f.updateTeamRole == nil {
		return nil, errNotStubbed
	}
	return f.updateTeamRole(ctx, teamID, userID, roleName)
}

func (f *fakeService) DeleteTeamMember(ctx context.Context, roleID int64) error {
	if f.deleteTeamMember == nil {
		return errNotStubbed
	}
	return f.deleteTeamMember(ctx, roleID)
}

func (f *fakeService) IsUserInTeam(ctx context.Context, teamID int64, email string) ([]int64, error) {
	if f.isUserInTeam == nil {
		return nil, errNotStubbed
	}
	return f.isUserInTeam(ctx, teamID, email)
}

func (f *fakeService) SaveTeamInvite(ctx context.Context, teamID, userID int64, email string) (*teams.TeamInvite, error) {
	if f.saveTeamInvite == nil {
		return nil, errNotStubbed
	}
	return f.saveTeamInvite(ctx, teamID, userID, email)
}

func (f *fakeService) GetTeamInvite(ctx context.Context, token string) (*teams.TeamInvite, error) {
	if f.getTeamInvite == nil {
		return nil, errNotStubbed
	}
	return f.getTeamInvite(ctx, token)
}

func (f *fakeService) GetTeamInvitesByTeam(ctx context.Context, teamID int64) ([]*teams.TeamInvite, error) {
	if f.getTeamInvitesByTeam == nil {
		return nil, errNotStubbed
	}
	return f.getTeamInvitesByTeam(ctx, teamID)
}

func (f *fakeService) GetInviteByEmail(ctx context.Context, teamID int64, email string) (*teams.TeamInvite, error) {
	if f.getInviteByEmail == nil {
		return nil, errNotStubbed
	}
	return f.getInviteByEmail(ctx, teamID, email)
}

func (f *fakeService) DeleteTeamInvite(ctx context.Context, token string) error {
	if f.deleteTeamInvite == nil {
		return errNotStubbed
	}
	return f.deleteTeamInvite(ctx, token)
}

func (f *fakeService) FindUserByToken(ctx context.Context, token string) (*teams.User, error) {
	if f.findUserByToken == nil {
		return nil, errNotStubbed
	}
	return f.findUserByToken(ctx, token)
}
