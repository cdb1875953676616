package auth

// Role is one of the closed set of authorization roles. Roles are compared by
// set membership only: there is no hierarchy, so ADMIN does not satisfy a
// MANAGER requirement.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleHR:       {},
	RoleManager:  {},
	RoleEmployee: {},
}

// ParseRole maps a role name onto the closed enumeration.
func ParseRole(name string) (Role, bool) {
	role := Role(name)
	_, ok := knownRoles[role]
	return role, ok
}

// ParseRoles converts role names into known roles, silently dropping names
// outside the enumeration. Tokens minted by newer deployments may carry roles
// this build does not know yet; those must not invalidate the whole token.
func ParseRoles(names []string) []Role {
	var roles []Role
	seen := make(map[Role]struct{}, len(names))
	for _, name := range names {
		role, ok := ParseRole(name)
		if !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}

// RoleNames returns the string form of the given roles.
func RoleNames(roles []Role) []string {
	if len(roles) == 0 {
		return nil
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return names
}
