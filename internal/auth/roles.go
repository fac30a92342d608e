package auth

import "strings"

// Role is one of the two flat roles issued by the users backend.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
)

// roleLevels is the dominance order: a higher level satisfies every lower one.
var roleLevels = map[Role]int{
	RoleUser:    1,
	RoleManager: 2,
}

// Principal is anything that carries a subject id and a role.
type Principal interface {
	GetSubjectID() string
	GetRole() Role
}

// ParseRole maps a raw role string onto the closed role set.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimSpace(raw))
	return role, role.IsValid()
}

// IsValid reports whether r belongs to the closed role set.
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Dominates reports whether r satisfies checks that require other.
func (r Role) Dominates(other Role) bool {
	current, ok := roleLevels[r]
	if !ok {
		return false
	}
	required, ok := roleLevels[other]
	if !ok {
		return false
	}
	return current >= required
}

func (r Role) String() string {
	return string(r)
}

// HasRole is the single role check used across the console.
// A nil principal never satisfies any role.
func HasRole(p Principal, required Role) bool {
	if p == nil {
		return false
	}
	return p.GetRole().Dominates(required)
}

// AnyRole reports whether p satisfies at least one of roles.
func AnyRole(p Principal, roles ...Role) bool {
	for _, role := range roles {
		if HasRole(p, role) {
			return true
		}
	}
	return false
}

// AllRoles reports whether p satisfies every role. With no roles it only
// requires p to hold a valid role.
func AllRoles(p Principal, roles ...Role) bool {
	if p == nil || !p.GetRole().IsValid() {
		return false
	}
	for _, role := range roles {
		if !HasRole(p, role) {
			return false
		}
	}
	return true
}

// Switch picks the variant matching the principal's highest role.
func Switch[T any](p Principal, manager, user, fallback T) T {
	switch {
	case HasRole(p, RoleManager):
		return manager
	case HasRole(p, RoleUser):
		return user
	default:
		return fallback
	}
}
