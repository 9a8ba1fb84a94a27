package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/apikeys"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
)

type APIKeyHandler struct {
	keySvc *apikeys.Service
}

func NewAPIKeyHandler(keySvc *apikeys.Service) *APIKeyHandler {
	return &APIKeyHandler{keySvc: keySvc}
}

func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	created, err := h.keySvc.Create(claims.UserID, req.Name)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	// The raw key appears in this response and nowhere else.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	keys, err := h.keySvc.List(claims.UserID)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	revoked, err := h.keySvc.Revoke(claims.UserID, params.ByName("key_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"revoked": revoked})
}
