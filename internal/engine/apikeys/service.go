package apikeys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/models"
	"promptdeck/internal/platform/repositories"
)

// KeyPrefix marks every raw key this service mints; the auth middleware uses
// it to tell an API key from a principal token.
const KeyPrefix = "pd_live_"

const keyPrefixLen = 12

// Service manages API keys. Every operation is scoped to the key's owning
// user; there is no super-admin override for keys.
type Service struct {
	repo *repositories.APIKeyRepository
}

func NewService(repo *repositories.APIKeyRepository) *Service {
	return &Service{repo: repo}
}

type CreatedKey struct {
	Key    *models.APIKey `json:"api_key"`
	RawKey string         `json:"key"`
}

// Create mints a key of the form pd_live_<random>. The raw key is returned
// exactly once; only its bcrypt hash and lookup prefix are stored.
func (s *Service) Create(callerID, name string) (*CreatedKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: key name is required", errors.ErrInvalidInput)
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	rawKey := KeyPrefix + base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	key := &models.APIKey{
		ID:        "key_" + uuid.NewString(),
		UserID:    callerID,
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:keyPrefixLen],
		CreatedAt: time.Now().Unix(),
	}
	if err := s.repo.Create(key); err != nil {
		return nil, err
	}

	return &CreatedKey{Key: key, RawKey: rawKey}, nil
}

func (s *Service) List(callerID string) ([]*models.APIKey, error) {
	return s.repo.ListByUser(callerID)
}

// Revoke only touches keys the caller owns; revoking someone else's key is a
// denial, not a silent miss.
func (s *Service) Revoke(callerID, keyID string) (bool, error) {
	key, err := s.repo.GetByID(keyID)
	if err != nil {
		return false, err
	}
	if key == nil {
		return false, nil
	}
	if key.UserID != callerID {
		return false, fmt.Errorf("%w: not the key owner", errors.ErrPermissionDenied)
	}
	return s.repo.Revoke(keyID)
}

// Verify resolves a raw key to its owning user, or reports no match. Lookup
// narrows by prefix, then bcrypt-compares against the surviving candidates.
func (s *Service) Verify(rawKey string) (*models.APIKey, error) {
	if len(rawKey) < keyPrefixLen {
		return nil, nil
	}
	candidates, err := s.repo.ListByPrefix(rawKey[:keyPrefixLen])
	if err != nil {
		return nil, err
	}
	for _, key := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(key.KeyHash), []byte(rawKey)) == nil {
			// The stamp is advisory; a failed write must not fail the auth.
			if err := s.repo.UpdateLastUsed(key.ID); err != nil {
				log.Error().Err(err).Str("key_id", key.ID).Msg("failed to stamp api key last use")
			}
			return key, nil
		}
	}
	return nil, nil
}
