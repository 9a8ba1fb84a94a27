package authz

import (
	"promptdeck/internal/platform/models"
)

// Policy is the predicate table gating every data operation. Each method
// answers (allowed, error) for a caller against a target; callers must check
// the predicate before applying any mutation. Denials carry no detail about
// the target so a denied caller learns nothing from the response shape.
type Policy struct {
	resolver *Resolver
}

func NewPolicy(resolver *Resolver) *Policy {
	return &Policy{resolver: resolver}
}

func (p *Policy) Resolver() *Resolver {
	return p.resolver
}

func (p *Policy) CanCreateOrganization(userID string) (bool, error) {
	return p.resolver.IsSuperAdmin(userID)
}

func (p *Policy) CanReadOrganization(userID string, org *models.Organization) (bool, error) {
	if org == nil {
		return false, nil
	}
	if org.IsPublic {
		return true, nil
	}
	if super, err := p.resolver.IsSuperAdmin(userID); err != nil || super {
		return super, err
	}
	return p.resolver.IsMember(userID, org.ID)
}

func (p *Policy) CanUpdateOrganization(userID, orgID string) (bool, error) {
	if super, err := p.resolver.IsSuperAdmin(userID); err != nil || super {
		return super, err
	}
	role, ok, err := p.resolver.RoleOf(userID, orgID)
	if err != nil || !ok {
		return false, err
	}
	return role == RoleOwner, nil
}

func (p *Policy) CanReadMemberships(userID, orgID string) (bool, error) {
	if super, err := p.resolver.IsSuperAdmin(userID); err != nil || super {
		return super, err
	}
	return p.resolver.IsMember(userID, orgID)
}

func (p *Policy) CanWriteMemberships(userID, orgID string) (bool, error) {
	if super, err := p.resolver.IsSuperAdmin(userID); err != nil || super {
		return super, err
	}
	role, ok, err := p.resolver.RoleOf(userID, orgID)
	if err != nil || !ok {
		return false, err
	}
	return role == RoleOwner, nil
}

// CanCreatePrompt additionally requires the caller to be the declared
// creator, so prompts cannot be planted under another member's name.
func (p *Policy) CanCreatePrompt(userID, orgID, createdBy string) (bool, error) {
	if createdBy != userID {
		return false, nil
	}
	return p.CanEditPrompt(userID, orgID)
}

func (p *Policy) CanEditPrompt(userID, orgID string) (bool, error) {
	if super, err := p.resolver.IsSuperAdmin(userID); err != nil || super {
		return super, err
	}
	role, ok, err := p.resolver.RoleOf(userID, orgID)
	if err != nil || !ok {
		return false, err
	}
	return canEditContent(role), nil
}

func (p *Policy) CanReadPrompt(userID, orgID string) (bool, error) {
	return p.resolver.IsMember(userID, orgID)
}

// Variants and arguments inherit the parent prompt's organization.
func (p *Policy) CanEditPromptContent(userID, promptOrgID string) (bool, error) {
	return p.CanEditPrompt(userID, promptOrgID)
}

func (p *Policy) CanReadPromptContent(userID, promptOrgID string) (bool, error) {
	return p.resolver.IsMember(userID, promptOrgID)
}

// CanManageInvitations is super-admin exclusive: create, read, revoke.
func (p *Policy) CanManageInvitations(userID string) (bool, error) {
	return p.resolver.IsSuperAdmin(userID)
}

// CanUseAPIKey is strictly owner-scoped. There is deliberately no super-admin
// override here; see DESIGN.md.
func (p *Policy) CanUseAPIKey(userID string, key *models.APIKey) bool {
	return key != nil && key.UserID == userID
}
