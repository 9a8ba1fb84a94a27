package authz

// Role is the closed set of membership roles. SuperAdmin is stored on a
// per-organization membership row but consumed as a global capability.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAdmin      Role = "admin"
	RoleOwner      Role = "owner"
	RoleSuperAdmin Role = "super_admin"
)

func ValidRole(role string) bool {
	switch Role(role) {
	case RoleViewer, RoleAdmin, RoleOwner, RoleSuperAdmin:
		return true
	}
	return false
}

// AssignableRole reports whether the role may be granted through an ordinary
// invitation. super_admin is excluded: only the bootstrap procedure mints it.
func AssignableRole(role string) bool {
	switch Role(role) {
	case RoleViewer, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// canEditContent reports whether the role may create or modify prompts,
// variants and arguments within its organization.
func canEditContent(role Role) bool {
	return role == RoleAdmin || role == RoleOwner
}
