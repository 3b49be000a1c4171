// Package access maps team roles to coarse CRUD permissions per resource
// type. The grant matrix is static configuration; callers look up a role and
// forward the check. Unknown roles or resources are never granted and never
// produce an error.
package access

// Role is a named permission tier a user holds within a team
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleMember Role = "member"
)

// Resource is a resource type permissions apply to
type Resource string

const (
	ResourceTeam       Resource = "team"
	ResourceTeamRole   Resource = "teamRole"
	ResourceTeamInvite Resource = "teamInvite"
	ResourceProject    Resource = "project"
	ResourceChart      Resource = "chart"
	ResourceConnection Resource = "connection"
)

// Action is a coarse CRUD action
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Grant is the result of a permission check
type Grant struct {
	Granted bool `json:"granted"`
}

// matrix maps role -> resource -> set of allowed actions
type matrix map[Role]map[Resource]map[Action]bool

func allActions() map[Action]bool {
	return map[Action]bool{
		ActionCreate: true,
		ActionRead:   true,
		ActionUpdate: true,
		ActionDelete: true,
	}
}

func readOnly() map[Action]bool {
	return map[Action]bool{ActionRead: true}
}

func readWrite() map[Action]bool {
	return map[Action]bool{
		ActionCreate: true,
		ActionRead:   true,
		ActionUpdate: true,
	}
}

// defaultMatrix encodes the hierarchical grants: owner includes admin includes
// editor includes member
func defaultMatrix() matrix {
	return matrix{
		RoleOwner: {
			ResourceTeam:       allActions(),
			ResourceTeamRole:   allActions(),
			ResourceTeamInvite: allActions(),
			ResourceProject:    allActions(),
			ResourceChart:      allActions(),
			ResourceConnection: allActions(),
		},
		RoleAdmin: {
			ResourceTeam:       readWrite(),
			ResourceTeamRole:   allActions(),
			ResourceTeamInvite: allActions(),
			ResourceProject:    allActions(),
			ResourceChart:      allActions(),
			ResourceConnection: allActions(),
		},
		RoleEditor: {
			ResourceTeam:       readOnly(),
			ResourceTeamRole:   readOnly(),
			ResourceTeamInvite: readOnly(),
			ResourceProject:    readWrite(),
			ResourceChart:      allActions(),
			ResourceConnection: readWrite(),
		},
		RoleMember: {
			ResourceTeam:       readOnly(),
			ResourceTeamRole:   readOnly(),
			ResourceProject:    readOnly(),
			ResourceChart:      readOnly(),
			ResourceConnection: readOnly(),
		},
	}
}
