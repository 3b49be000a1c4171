package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnerHasFullAccess(t *testing.T) {
	checker := NewChecker()

	for _, resource := range []Resource{
		ResourceTeam, ResourceTeamRole, ResourceTeamInvite,
		ResourceProject, ResourceChart, ResourceConnection,
	} {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			assert.True(t, checker.Can(RoleOwner, action, resource).Granted,
				"owner should %s %s", action, resource)
		}
	}
}

func TestAdminCannotDeleteTeam(t *testing.T) {
	checker := NewChecker()

	assert.False(t, checker.CanDelete(RoleAdmin, ResourceTeam).Granted)
	assert.True(t, checker.CanUpdate(RoleAdmin, ResourceTeam).Granted)
	assert.True(t, checker.CanDelete(RoleAdmin, ResourceTeamRole).Granted)
}

func TestHierarchyIsMonotone(t *testing.T) {
	// Every grant a lower tier holds must also be held by the tiers above it.
	checker := NewChecker()
	order := []Role{RoleMember, RoleEditor, RoleAdmin, RoleOwner}

	resources := []Resource{
		ResourceTeam, ResourceTeamRole, ResourceTeamInvite,
		ResourceProject, ResourceChart, ResourceConnection,
	}
	actions := []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

	for i := 0; i < len(order)-1; i++ {
		lower, higher := order[i], order[i+1]
		for _, res := range resources {
			for _, act := range actions {
				if checker.Can(lower, act, res).Granted {
					assert.True(t, checker.Can(higher, act, res).Granted,
						"%s can %s %s but %s cannot", lower, act, res, higher)
				}
			}
		}
	}
}

func TestUnknownRoleAndResourceDenied(t *testing.T) {
	checker := NewChecker()

	assert.False(t, checker.Can(Role("superuser"), ActionRead, ResourceTeam).Granted)
	assert.False(t, checker.Can(RoleOwner, ActionRead, Resource("dashboard")).Granted)
	assert.False(t, checker.Can(RoleMember, Action("publish"), ResourceChart).Granted)
	assert.False(t, checker.Can("", "", "").Granted)
}

func TestMemberIsReadOnly(t *testing.T) {
	checker := NewChecker()

	assert.True(t, checker.CanRead(RoleMember, ResourceChart).Granted)
	assert.False(t, checker.CanCreate(RoleMember, ResourceChart).Granted)
	assert.False(t, checker.CanCreate(RoleMember, ResourceTeamInvite).Granted)
}
