package invites

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"promptdeck/internal/engine/authz"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/pkg/validator"
	"promptdeck/internal/platform/audit"
	"promptdeck/internal/platform/models"
	"promptdeck/internal/platform/repositories"
)

// SignupEvent is the identity provider's post-signup notification. The core
// receives it synchronously from the integration layer and decides, via the
// invitation table, what the new principal becomes.
type SignupEvent struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Service struct {
	invitations *repositories.InvitationRepository
	profiles    *repositories.ProfileRepository
	memberships *repositories.MembershipRepository
	orgs        *repositories.OrganizationRepository
	resolver    *authz.Resolver
	audit       *audit.Logger

	ttlDays       int
	publicOrgName string
}

func NewService(
	invitations *repositories.InvitationRepository,
	profiles *repositories.ProfileRepository,
	memberships *repositories.MembershipRepository,
	orgs *repositories.OrganizationRepository,
	resolver *authz.Resolver,
	auditLog *audit.Logger,
	ttlDays int,
	publicOrgName string,
) *Service {
	if ttlDays <= 0 {
		ttlDays = 7
	}
	if publicOrgName == "" {
		publicOrgName = "Public"
	}
	return &Service{
		invitations:   invitations,
		profiles:      profiles,
		memberships:   memberships,
		orgs:          orgs,
		resolver:      resolver,
		audit:         auditLog,
		ttlDays:       ttlDays,
		publicOrgName: publicOrgName,
	}
}

// Create issues an invitation. Super-admin only; super_admin-role invitations
// are refused here, the bootstrap procedure is the single path that mints one.
func (s *Service) Create(callerID, email, role string, orgID *string) (*models.Invitation, error) {
	super, err := s.resolver.IsSuperAdmin(callerID)
	if err != nil {
		return nil, err
	}
	if !super {
		return nil, fmt.Errorf("%w: only a super admin may create invitations", errors.ErrPermissionDenied)
	}

	email = validator.NormalizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidInput, err.Error())
	}

	if !authz.AssignableRole(role) {
		return nil, fmt.Errorf("%w: role %q cannot be granted by invitation", errors.ErrInvalidInput, role)
	}

	if orgID != nil {
		org, err := s.orgs.GetByID(*orgID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, fmt.Errorf("%w: organization %s", errors.ErrNotFound, *orgID)
		}
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	inv := &models.Invitation{
		ID:             "inv_" + uuid.NewString(),
		Email:          email,
		Token:          token,
		Role:           role,
		OrganizationID: orgID,
		InvitedBy:      callerID,
		ExpiresAt:      now + int64(s.ttlDays)*86400,
		CreatedAt:      now,
	}

	if err := s.invitations.Create(inv); err != nil {
		return nil, err
	}

	s.audit.Record(callerID, "invitation.create", "invitation", inv.ID, map[string]interface{}{
		"email": email,
		"role":  role,
	})
	return inv, nil
}

// Revoke soft-expires a pending invitation. Returns false, with no state
// change, when the invitation is absent, consumed, or already expired.
func (s *Service) Revoke(callerID, invitationID string) (bool, error) {
	super, err := s.resolver.IsSuperAdmin(callerID)
	if err != nil {
		return false, err
	}
	if !super {
		return false, fmt.Errorf("%w: only a super admin may revoke invitations", errors.ErrPermissionDenied)
	}

	revoked, err := s.invitations.Expire(invitationID, time.Now().Unix())
	if err != nil {
		return false, err
	}
	if revoked {
		s.audit.Record(callerID, "invitation.revoke", "invitation", invitationID, nil)
	}
	return revoked, nil
}

func (s *Service) ListPending(callerID string) ([]*models.Invitation, error) {
	super, err := s.resolver.IsSuperAdmin(callerID)
	if err != nil {
		return nil, err
	}
	if !super {
		return nil, fmt.Errorf("%w: only a super admin may list invitations", errors.ErrPermissionDenied)
	}
	return s.invitations.ListPending(time.Now().Unix())
}

// OnPrincipalCreated consumes the newest pending invitation for the signup
// email, or falls back to the self-serve path: viewer of the public
// organization. Profile and membership land in one transaction with the
// consumption, so a half-redeemed signup cannot exist.
func (s *Service) OnPrincipalCreated(event SignupEvent) error {
	if event.UserID == "" {
		return fmt.Errorf("%w: signup event missing user id", errors.ErrInvalidInput)
	}
	email := validator.NormalizeEmail(event.Email)
	if err := validator.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidInput, err.Error())
	}

	// Redelivered events are a no-op once the profile exists.
	existing, err := s.profiles.GetByID(event.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now().Unix()

	tx, err := s.invitations.BeginTx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	role := string(authz.RoleViewer)
	var orgID string

	inv, err := s.invitations.FindLatestPendingByEmailTx(tx, email, now)
	if err != nil {
		return err
	}

	if inv != nil {
		consumed, err := s.invitations.ConsumeTx(tx, inv.ID, now)
		if err != nil {
			return err
		}
		// A concurrent redemption won the row; treat this signup as
		// self-serve rather than double-binding the invitation.
		if consumed {
			role = inv.Role
			if inv.OrganizationID != nil {
				orgID = *inv.OrganizationID
			}
		} else {
			inv = nil
		}
	}

	if orgID == "" {
		org, err := s.ensurePublicOrgTx(tx, now)
		if err != nil {
			return err
		}
		orgID = org.ID
	}

	profile := &models.Profile{
		ID:          event.UserID,
		Email:       email,
		DisplayName: event.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Only the principal id can collide here; emails are not unique across
	// profiles, so a re-registered address lands as a fresh principal.
	if err := s.profiles.CreateTx(tx, profile); err != nil {
		if repositories.IsUniqueViolation(err) {
			return fmt.Errorf("%w: principal %s already registered", errors.ErrConflict, event.UserID)
		}
		return err
	}

	membership := &models.Membership{
		ID:             "mem_" + uuid.NewString(),
		OrganizationID: orgID,
		UserID:         event.UserID,
		Role:           role,
		CreatedAt:      now,
	}
	if err := s.memberships.CreateTx(tx, membership); err != nil {
		if repositories.IsUniqueViolation(err) {
			return fmt.Errorf("%w: user already a member of organization", errors.ErrConflict)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	if inv != nil {
		log.Info().Str("user_id", event.UserID).Str("invitation_id", inv.ID).
			Str("role", role).Msg("invitation redeemed at signup")
	} else {
		log.Info().Str("user_id", event.UserID).Msg("self-serve signup attached to public organization")
	}
	return nil
}

// ensurePublicOrgTx returns the canonical public organization, creating it
// inside the caller's transaction on first use.
func (s *Service) ensurePublicOrgTx(tx *sql.Tx, now int64) (*models.Organization, error) {
	org, err := s.orgs.GetPublicDefaultTx(tx)
	if err != nil {
		return nil, err
	}
	if org != nil {
		return org, nil
	}

	org = &models.Organization{
		ID:        "org_" + uuid.NewString(),
		Name:      s.publicOrgName,
		IsPublic:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orgs.CreateTx(tx, org); err != nil {
		return nil, err
	}
	return org, nil
}
