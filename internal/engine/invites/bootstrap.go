package invites

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"promptdeck/internal/engine/authz"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/pkg/validator"
	"promptdeck/internal/platform/models"
)

const bootstrapTTLDays = 365

// Bootstrap seeds the single super-admin invitation. This is a trusted
// operation: it is the only code path allowed to mint a super_admin-role
// invitation without an existing super-admin caller, because at first
// deployment no super admin exists yet. The upsert is keyed by the configured
// token, so rerunning only re-extends the expiry.
func (s *Service) Bootstrap(email, token string) (*models.Invitation, error) {
	email = validator.NormalizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidInput, err.Error())
	}
	if token == "" {
		return nil, fmt.Errorf("%w: bootstrap token is required", errors.ErrInvalidInput)
	}

	now := time.Now().Unix()
	inv := &models.Invitation{
		ID:        "inv_" + uuid.NewString(),
		Email:     email,
		Token:     token,
		Role:      string(authz.RoleSuperAdmin),
		InvitedBy: "system",
		ExpiresAt: now + bootstrapTTLDays*86400,
		CreatedAt: now,
	}

	if err := s.invitations.UpsertByToken(inv); err != nil {
		return nil, err
	}

	// The upsert may have kept an earlier row; read back by token so the
	// caller sees the row that is actually live.
	stored, err := s.invitations.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: bootstrap invitation for token not found after upsert", errors.ErrNotFound)
	}

	log.Info().Str("email", email).Str("invitation_id", stored.ID).
		Msg("super-admin bootstrap invitation ensured")
	return stored, nil
}
