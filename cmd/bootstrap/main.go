package main

import (
	"flag"
	"fmt"
	"log"

	"promptdeck/internal/engine/authz"
	"promptdeck/internal/engine/invites"
	"promptdeck/internal/platform/audit"
	"promptdeck/internal/platform/config"
	"promptdeck/internal/platform/database"
	"promptdeck/internal/platform/repositories"
)

// Seeds the super-admin invitation. Safe to rerun: the invitation is keyed by
// the configured token, so repeated runs only re-extend its expiry.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	email := flag.String("email", "", "Super admin email (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	adminEmail := cfg.Bootstrap.SuperAdminEmail
	if *email != "" {
		adminEmail = *email
	}
	if adminEmail == "" {
		log.Fatal("Super admin email not configured; set bootstrap.super_admin_email or pass --email")
	}
	if cfg.Bootstrap.Token == "" {
		log.Fatal("Bootstrap token not configured; set bootstrap.token")
	}

	orgRepo := repositories.NewOrganizationRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	membershipRepo := repositories.NewMembershipRepository(db)
	invitationRepo := repositories.NewInvitationRepository(db)

	resolver := authz.NewResolver(membershipRepo)
	auditLog := audit.NewLogger(db)

	inviteSvc := invites.NewService(invitationRepo, profileRepo, membershipRepo, orgRepo,
		resolver, auditLog, cfg.Invites.TTLDays, cfg.Bootstrap.PublicOrgName)

	inv, err := inviteSvc.Bootstrap(adminEmail, cfg.Bootstrap.Token)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	fmt.Printf("Super-admin invitation ready: id=%s email=%s expires_at=%d\n", inv.ID, inv.Email, inv.ExpiresAt)
}
