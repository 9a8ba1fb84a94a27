package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/prompts"
	"promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/auth"
)

type PromptHandler struct {
	promptSvc *prompts.Service
}

func NewPromptHandler(promptSvc *prompts.Service) *PromptHandler {
	return &PromptHandler{promptSvc: promptSvc}
}

func requestIdentity(r *http.Request) (*auth.Claims, httprouter.Params) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	return claims, params
}

type promptRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *PromptHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	prompt, err := h.promptSvc.Create(claims.UserID, params.ByName("org_id"), req.Name, req.Description)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(prompt)
}

func (h *PromptHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	result, err := h.promptSvc.List(claims.UserID, params.ByName("org_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *PromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	prompt, err := h.promptSvc.Get(claims.UserID, params.ByName("prompt_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prompt)
}

func (h *PromptHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	prompt, err := h.promptSvc.Update(claims.UserID, params.ByName("prompt_id"), req.Name, req.Description)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prompt)
}

func (h *PromptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	deleted, err := h.promptSvc.Delete(claims.UserID, params.ByName("prompt_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"deleted": deleted})
}

type variantRequest struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Model     string `json:"model"`
	IsDefault *bool  `json:"is_default,omitempty"`
}

func (h *PromptHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	isDefault := req.IsDefault != nil && *req.IsDefault
	variant, err := h.promptSvc.CreateVariant(claims.UserID, params.ByName("prompt_id"), req.Name, req.Content, req.Model, isDefault)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(variant)
}

func (h *PromptHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	variants, err := h.promptSvc.ListVariants(claims.UserID, params.ByName("prompt_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(variants)
}

func (h *PromptHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	variant, err := h.promptSvc.UpdateVariant(claims.UserID, params.ByName("variant_id"), req.Name, req.Content, req.Model, req.IsDefault)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(variant)
}

func (h *PromptHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	deleted, err := h.promptSvc.DeleteVariant(claims.UserID, params.ByName("variant_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"deleted": deleted})
}

type argumentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DefaultValue string `json:"default_value"`
	Required     bool   `json:"required"`
}

func (h *PromptHandler) CreateArgument(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	var req argumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	arg, err := h.promptSvc.CreateArgument(claims.UserID, params.ByName("prompt_id"), req.Name, req.Description, req.DefaultValue, req.Required)
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(arg)
}

func (h *PromptHandler) ListArguments(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	args, err := h.promptSvc.ListArguments(claims.UserID, params.ByName("prompt_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(args)
}

func (h *PromptHandler) DeleteArgument(w http.ResponseWriter, r *http.Request) {
	claims, params := requestIdentity(r)

	deleted, err := h.promptSvc.DeleteArgument(claims.UserID, params.ByName("prompt_id"), params.ByName("argument_id"))
	if err != nil {
		errors.WriteTaxonomyError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"deleted": deleted})
}
