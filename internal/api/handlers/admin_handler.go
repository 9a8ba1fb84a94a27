package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/admin"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
)

type AdminHandler struct {
	adminSvc *admin.Service
}

func NewAdminHandler(adminSvc *admin.Service) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

type CreateOrgRequest struct {
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

func (h *AdminHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	org, err := h.adminSvc.CreateOrganization(claims.UserID, req.Name, req.IsPublic)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(org)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	users, err := h.adminSvc.ListAllUsersWithRoles(claims.UserID)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *AdminHandler) PromoteToOwner(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	promoted, err := h.adminSvc.PromoteUserToOwner(claims.UserID, params.ByName("user_id"), params.ByName("org_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"promoted": promoted})
}

func (h *AdminHandler) SuperAdminStatus(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	status, err := h.adminSvc.CurrentUserSuperAdminStatus(claims.UserID, claims.Email)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.adminSvc.ListAudit(claims.UserID, limit)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
