package authz

import (
	"promptdeck/internal/platform/repositories"
)

// Resolver answers role questions from membership rows. It is a pure lookup
// with no side effects, kept separate from the policy predicates so that
// policy evaluation can never recurse into itself.
type Resolver struct {
	memberships *repositories.MembershipRepository
}

func NewResolver(memberships *repositories.MembershipRepository) *Resolver {
	return &Resolver{memberships: memberships}
}

// RoleOf returns the user's effective role in the organization. The second
// return is false when the user is not a member. At most one role exists per
// (organization, user) pair; the membership table enforces uniqueness.
func (r *Resolver) RoleOf(userID, orgID string) (Role, bool, error) {
	if userID == "" || orgID == "" {
		return "", false, nil
	}
	m, err := r.memberships.GetByUserAndOrg(userID, orgID)
	if err != nil {
		return "", false, err
	}
	if m == nil {
		return "", false, nil
	}
	return Role(m.Role), true, nil
}

func (r *Resolver) IsMember(userID, orgID string) (bool, error) {
	_, ok, err := r.RoleOf(userID, orgID)
	return ok, err
}

// IsSuperAdmin is true when any membership row for the user carries the
// super_admin role, regardless of which organization holds it.
func (r *Resolver) IsSuperAdmin(userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return r.memberships.HasRoleAnywhere(userID, string(RoleSuperAdmin))
}
