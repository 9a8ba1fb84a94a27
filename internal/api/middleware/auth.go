package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/apikeys"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
	"promptdeck/internal/platform/repositories"
)

// AuthMiddleware authenticates both credentials the platform accepts: the
// identity provider's JWT, and a pd_live_ API key minted by the key service.
// Either way the request carries the same claims shape downstream, so
// handlers never care which credential arrived.
type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	keySvc   *apikeys.Service
	profiles *repositories.ProfileRepository
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, keySvc *apikeys.Service, profiles *repositories.ProfileRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, keySvc: keySvc, profiles: profiles}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		var claims *auth.Claims
		var err error
		if strings.HasPrefix(parts[1], apikeys.KeyPrefix) {
			claims, err = m.authenticateKey(parts[1])
		} else {
			claims, err = m.tokenSvc.ValidateToken(parts[1])
		}
		if err != nil || claims == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired credentials", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

// authenticateKey resolves a raw API key to principal claims. Revoked and
// unknown keys return nil claims, which the caller treats as a 401.
func (m *AuthMiddleware) authenticateKey(rawKey string) (*auth.Claims, error) {
	key, err := m.keySvc.Verify(rawKey)
	if err != nil || key == nil {
		return nil, err
	}

	var email string
	profile, err := m.profiles.GetByID(key.UserID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		email = profile.Email
	}

	return &auth.Claims{UserID: key.UserID, Email: email}, nil
}
