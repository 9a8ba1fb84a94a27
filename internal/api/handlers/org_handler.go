package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/admin"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
)

type OrgHandler struct {
	adminSvc *admin.Service
}

func NewOrgHandler(adminSvc *admin.Service) *OrgHandler {
	return &OrgHandler{adminSvc: adminSvc}
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	org, err := h.adminSvc.GetOrganization(claims.UserID, params.ByName("org_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(org)
}

func (h *OrgHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)

	memberships, err := h.adminSvc.ListMemberships(claims.UserID, params.ByName("org_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(memberships)
}
