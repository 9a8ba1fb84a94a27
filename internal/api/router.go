package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/api/handlers"
	"promptdeck/internal/api/middleware"
)

type Dependencies struct {
	SignupHandler  *handlers.SignupHandler
	AdminHandler   *handlers.AdminHandler
	OrgHandler     *handlers.OrgHandler
	InviteHandler  *handlers.InviteHandler
	PromptHandler  *handlers.PromptHandler
	APIKeyHandler  *handlers.APIKeyHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
	RateLimiter    *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Identity provider callback; authenticated by shared secret, not a user
	// token, since the principal has no session at signup time.
	router.POST("/api/v1/hooks/signup", wrap(deps.SignupHandler.Handle))

	authMid := deps.AuthMiddleware
	read := deps.RateLimiter.Handle("api_read")
	write := deps.RateLimiter.Handle("api_write")

	// Caller self-inspection
	router.GET("/api/v1/me/super-admin-status",
		chain(deps.AdminHandler.SuperAdminStatus, authMid.Handle, read))

	// Administrative command surface; each operation re-checks the
	// super-admin gate inside the engine.
	router.POST("/api/v1/admin/organizations",
		chain(deps.AdminHandler.CreateOrganization, authMid.Handle, write))
	router.GET("/api/v1/admin/users",
		chain(deps.AdminHandler.ListUsers, authMid.Handle, read))
	router.POST("/api/v1/admin/organizations/:org_id/members/:user_id/promote",
		chain(deps.AdminHandler.PromoteToOwner, authMid.Handle, write))
	router.GET("/api/v1/admin/audit",
		chain(deps.AdminHandler.ListAudit, authMid.Handle, read))

	// Invitation lifecycle
	router.POST("/api/v1/admin/invitations",
		chain(deps.InviteHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/admin/invitations",
		chain(deps.InviteHandler.ListPending, authMid.Handle, read))
	router.DELETE("/api/v1/admin/invitations/:invitation_id",
		chain(deps.InviteHandler.Revoke, authMid.Handle, write))

	// Organizations
	router.GET("/api/v1/organizations/:org_id",
		chain(deps.OrgHandler.Get, authMid.Handle, read))
	router.GET("/api/v1/organizations/:org_id/members",
		chain(deps.OrgHandler.ListMembers, authMid.Handle, read))

	// Prompts
	router.POST("/api/v1/organizations/:org_id/prompts",
		chain(deps.PromptHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/organizations/:org_id/prompts",
		chain(deps.PromptHandler.List, authMid.Handle, read))
	router.GET("/api/v1/prompts/:prompt_id",
		chain(deps.PromptHandler.Get, authMid.Handle, read))
	router.PATCH("/api/v1/prompts/:prompt_id",
		chain(deps.PromptHandler.Update, authMid.Handle, write))
	router.DELETE("/api/v1/prompts/:prompt_id",
		chain(deps.PromptHandler.Delete, authMid.Handle, write))

	// Prompt variants
	router.POST("/api/v1/prompts/:prompt_id/variants",
		chain(deps.PromptHandler.CreateVariant, authMid.Handle, write))
	router.GET("/api/v1/prompts/:prompt_id/variants",
		chain(deps.PromptHandler.ListVariants, authMid.Handle, read))
	router.PATCH("/api/v1/variants/:variant_id",
		chain(deps.PromptHandler.UpdateVariant, authMid.Handle, write))
	router.DELETE("/api/v1/variants/:variant_id",
		chain(deps.PromptHandler.DeleteVariant, authMid.Handle, write))

	// Prompt arguments
	router.POST("/api/v1/prompts/:prompt_id/arguments",
		chain(deps.PromptHandler.CreateArgument, authMid.Handle, write))
	router.GET("/api/v1/prompts/:prompt_id/arguments",
		chain(deps.PromptHandler.ListArguments, authMid.Handle, read))
	router.DELETE("/api/v1/prompts/:prompt_id/arguments/:argument_id",
		chain(deps.PromptHandler.DeleteArgument, authMid.Handle, write))

	// API keys, strictly owner-scoped
	router.POST("/api/v1/keys",
		chain(deps.APIKeyHandler.Create, authMid.Handle, write))
	router.GET("/api/v1/keys",
		chain(deps.APIKeyHandler.List, authMid.Handle, read))
	router.DELETE("/api/v1/keys/:key_id",
		chain(deps.APIKeyHandler.Revoke, authMid.Handle, write))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
