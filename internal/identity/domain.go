package identity

import "strings"

// Role is one of the fixed set of institute roles.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSecretary Role = "secretary"
	RoleTrainer   Role = "trainer"
	RoleFinance   Role = "finance"
	RoleStudent   Role = "student"
	RoleIT        Role = "it"
)

// DefaultRole is the documented policy default applied whenever an actor's
// role set is empty. It is a policy decision kept for backward
// compatibility, not a derived fact.
const DefaultRole = RoleStudent

// AllRoles returns the fixed role set in canonical order.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleSecretary, RoleTrainer, RoleFinance, RoleStudent, RoleIT}
}

// ParseRole validates a role name against the fixed set.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleSecretary, RoleTrainer, RoleFinance, RoleStudent, RoleIT:
		return r, true
	}
	return "", false
}

// Actor is the authenticated identity performing a request. It is resolved
// once per request and immutable afterwards; every query and mutation call
// site receives it explicitly.
type Actor struct {
	ID        int64
	Email     string
	FullName  string
	Roles     []Role
	ClassIDs  []int64
	StudentID int64
}

// PrimaryRole returns the first role, or DefaultRole for an empty set.
func (a Actor) PrimaryRole() Role {
	if len(a.Roles) == 0 {
		return DefaultRole
	}
	return a.Roles[0]
}

// HasRole reports whether the actor holds the given role.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny reports whether the actor holds at least one of the given roles.
func (a Actor) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}

// IsOnly reports whether the actor's entire role set is the given role.
// Role logic must operate on the union of roles, so "only" checks are the
// correct way to express the most restrictive rules.
func (a Actor) IsOnly(role Role) bool {
	return len(a.Roles) == 1 && a.Roles[0] == role
}
