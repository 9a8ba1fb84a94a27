package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"promptdeck/internal/engine/invites"
	"promptdeck/internal/pkg/errors"
)

// SignupHandler receives the identity provider's post-signup callback and
// hands the event to the invitation lifecycle. The provider authenticates
// with a shared secret, not a user token: at signup time the principal has no
// session yet.
type SignupHandler struct {
	inviteSvc *invites.Service
	secret    string
}

func NewSignupHandler(inviteSvc *invites.Service, secret string) *SignupHandler {
	return &SignupHandler{inviteSvc: inviteSvc, secret: secret}
}

func (h *SignupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	provided := r.Header.Get("X-Hook-Secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid hook secret", nil)
		return
	}

	var event invites.SignupEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.inviteSvc.OnPrincipalCreated(event); err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
