package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/invites"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
)

type InviteHandler struct {
	inviteSvc *invites.Service
}

func NewInviteHandler(inviteSvc *invites.Service) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

type CreateInviteRequest struct {
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organization_id,omitempty"`
}

func (h *InviteHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	inv, err := h.inviteSvc.Create(claims.UserID, req.Email, req.Role, req.OrganizationID)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

func (h *InviteHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	invitations, err := h.inviteSvc.ListPending(claims.UserID)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(invitations)
}

func (h *InviteHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	revoked, err := h.inviteSvc.Revoke(claims.UserID, params.ByName("invitation_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"revoked": revoked})
}
