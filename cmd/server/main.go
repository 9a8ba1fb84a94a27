package main

import (
	"fmt"
	"log"
	"net/http"

	"promptdeck/internal/api"
	"promptdeck/internal/api/handlers"
	"promptdeck/internal/api/middleware"
	"promptdeck/internal/engine/admin"
	"promptdeck/internal/engine/apikeys"
	"promptdeck/internal/engine/authz"
	"promptdeck/internal/engine/invites"
	"promptdeck/internal/engine/prompts"
	"promptdeck/internal/pkg/logger"
	"promptdeck/internal/platform/audit"
	"promptdeck/internal/platform/auth"
	"promptdeck/internal/platform/config"
	"promptdeck/internal/platform/database"
	"promptdeck/internal/platform/repositories"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	store := database.NewStore(db)

	// Repositories
	orgRepo := repositories.NewOrganizationRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)
	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	promptRepo := prompts.NewRepository(db)

	// Authorization core
	resolver := authz.NewResolver(membershipRepo)
	policy := authz.NewPolicy(resolver)

	auditLog := audit.NewLogger(db)

	// Services
	tokenSvc := auth.NewTokenService(cfg.JWT)
	inviteSvc := invites.NewService(invitationRepo, profileRepo, membershipRepo, orgRepo,
		resolver, auditLog, cfg.Invites.TTLDays, cfg.Bootstrap.PublicOrgName)
	adminSvc := admin.NewService(orgRepo, profileRepo, membershipRepo, policy, auditLog)
	promptSvc := prompts.NewService(promptRepo, policy)
	keySvc := apikeys.NewService(apiKeyRepo)

	// Handlers
	signupHandler := handlers.NewSignupHandler(inviteSvc, cfg.Hooks.SignupSecret)
	adminHandler := handlers.NewAdminHandler(adminSvc)
	orgHandler := handlers.NewOrgHandler(adminSvc)
	inviteHandler := handlers.NewInviteHandler(inviteSvc)
	promptHandler := handlers.NewPromptHandler(promptSvc)
	apiKeyHandler := handlers.NewAPIKeyHandler(keySvc)
	healthHandler := handlers.NewHealthHandler(store)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenSvc, keySvc, profileRepo)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	deps := &api.Dependencies{
		SignupHandler:  signupHandler,
		AdminHandler:   adminHandler,
		OrgHandler:     orgHandler,
		InviteHandler:  inviteHandler,
		PromptHandler:  promptHandler,
		APIKeyHandler:  apiKeyHandler,
		HealthHandler:  healthHandler,
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
	}
	router := api.NewRouter(deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
