package domain

// Actor identifies who is performing an action.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

// IsManager reports whether the actor holds a manager-level role.
func (a Actor) IsManager() bool {
	switch a.Role {
	case RoleAdmin, RoleProjectManager, RoleSuperintendent:
		return true
	}
	return false
}
