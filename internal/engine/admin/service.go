package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptdeck/internal/engine/authz"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/audit"
	"promptdeck/internal/platform/models"
	"promptdeck/internal/platform/repositories"
)

// Service is the super-admin command surface. Every operation re-checks
// IsSuperAdmin at entry even though the HTTP layer gates it too; the storage
// layer is the backstop, not the check.
type Service struct {
	orgs        *repositories.OrganizationRepository
	profiles    *repositories.ProfileRepository
	memberships *repositories.MembershipRepository
	policy      *authz.Policy
	resolver    *authz.Resolver
	audit       *audit.Logger
}

func NewService(
	orgs *repositories.OrganizationRepository,
	profiles *repositories.ProfileRepository,
	memberships *repositories.MembershipRepository,
	policy *authz.Policy,
	auditLog *audit.Logger,
) *Service {
	return &Service{
		orgs:        orgs,
		profiles:    profiles,
		memberships: memberships,
		policy:      policy,
		resolver:    policy.Resolver(),
		audit:       auditLog,
	}
}

func (s *Service) requireSuperAdmin(callerID string) error {
	super, err := s.resolver.IsSuperAdmin(callerID)
	if err != nil {
		return err
	}
	if !super {
		return fmt.Errorf("%w: super admin required", errors.ErrPermissionDenied)
	}
	return nil
}

// CreateOrganization creates the organization and grants the caller an owner
// membership in the same transaction; either both rows exist or neither does.
func (s *Service) CreateOrganization(callerID, name string, isPublic bool) (*models.Organization, error) {
	if err := s.requireSuperAdmin(callerID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: organization name is required", errors.ErrInvalidInput)
	}

	now := time.Now().Unix()
	org := &models.Organization{
		ID:        "org_" + uuid.NewString(),
		Name:      name,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &models.Membership{
		ID:             "mem_" + uuid.NewString(),
		OrganizationID: org.ID,
		UserID:         callerID,
		Role:           string(authz.RoleOwner),
		CreatedAt:      now,
	}

	tx, err := s.orgs.BeginTx()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.orgs.CreateTx(tx, org); err != nil {
		return nil, err
	}
	if err := s.memberships.CreateTx(tx, membership); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: caller already a member", errors.ErrConflict)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.audit.Record(callerID, "organization.create", "organization", org.ID, map[string]interface{}{
		"name":      name,
		"is_public": isPublic,
	})
	return org, nil
}

// PromoteUserToOwner returns false when the user has no membership in the
// organization; nothing is created implicitly.
func (s *Service) PromoteUserToOwner(callerID, userID, orgID string) (bool, error) {
	if err := s.requireSuperAdmin(callerID); err != nil {
		return false, err
	}
	if userID == "" || orgID == "" {
		return false, fmt.Errorf("%w: user_id and organization_id are required", errors.ErrInvalidInput)
	}

	promoted, err := s.memberships.UpdateRole(userID, orgID, string(authz.RoleOwner))
	if err != nil {
		return false, err
	}
	if promoted {
		s.audit.Record(callerID, "membership.promote_owner", "membership", userID, map[string]interface{}{
			"organization_id": orgID,
		})
	}
	return promoted, nil
}

func (s *Service) ListAllUsersWithRoles(callerID string) ([]*models.UserWithRoles, error) {
	if err := s.requireSuperAdmin(callerID); err != nil {
		return nil, err
	}
	return s.profiles.ListWithRoles()
}

type SuperAdminStatus struct {
	IsSuperAdmin bool   `json:"is_super_admin"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

// CurrentUserSuperAdminStatus is self-inspection; any authenticated caller
// may ask about themselves.
func (s *Service) CurrentUserSuperAdminStatus(callerID, email string) (*SuperAdminStatus, error) {
	super, err := s.resolver.IsSuperAdmin(callerID)
	if err != nil {
		return nil, err
	}
	return &SuperAdminStatus{IsSuperAdmin: super, UserID: callerID, Email: email}, nil
}

// GetOrganization applies the organization read predicate before returning.
func (s *Service) GetOrganization(callerID, orgID string) (*models.Organization, error) {
	org, err := s.orgs.GetByID(orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("%w: organization %s", errors.ErrNotFound, orgID)
	}
	allowed, err := s.policy.CanReadOrganization(callerID, org)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot read organization", errors.ErrPermissionDenied)
	}
	return org, nil
}

// ListMemberships applies the membership read predicate before returning.
func (s *Service) ListMemberships(callerID, orgID string) ([]*models.Membership, error) {
	allowed, err := s.policy.CanReadMemberships(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot read memberships", errors.ErrPermissionDenied)
	}
	return s.memberships.ListByOrg(orgID)
}

// ListAudit exposes the audit trail to super admins.
func (s *Service) ListAudit(callerID string, limit int) ([]*audit.Entry, error) {
	if err := s.requireSuperAdmin(callerID); err != nil {
		return nil, err
	}
	return s.audit.List(limit)
}
