package access

// Checker evaluates role permissions against the grant matrix
type Checker struct {
	grants matrix
}

// NewChecker creates a checker with the default grant matrix
func NewChecker() *Checker {
	return &Checker{grants: defaultMatrix()}
}

// Can reports whether role may perform action on resource. Unknown roles,
// resources or actions yield an ungranted result, never an error.
func (c *Checker) Can(role Role, action Action, resource Resource) Grant {
	resources, ok := c.grants[role]
	if !ok {
		return Grant{}
	}
	actions, ok := resources[resource]
	if !ok {
		return Grant{}
	}
	return Grant{Granted: actions[action]}
}

// CanCreate is shorthand for Can(role, ActionCreate, resource)
func (c *Checker) CanCreate(role Role, resource Resource) Grant {
	return c.Can(role, ActionCreate, resource)
}

// CanRead is shorthand for Can(role, ActionRead, resource)
func (c *Checker) CanRead(role Role, resource Resource) Grant {
	return c.Can(role, ActionRead, resource)
}

// CanUpdate is shorthand for Can(role, ActionUpdate, resource)
func (c *Checker) CanUpdate(role Role, resource Resource) Grant {
	return c.Can(role, ActionUpdate, resource)
}

// CanDelete is shorthand for Can(role, ActionDelete, resource)
func (c *Checker) CanDelete(role Role, resource Resource) Grant {
	return c.Can(role, ActionDelete, resource)
}
