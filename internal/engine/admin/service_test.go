package admin

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"promptdeck/internal/engine/authz"
	pkgerrors "promptdeck/internal/pkg/errors"
	"promptdeck/internal/platform/audit"
	"promptdeck/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE memberships (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (organization_id, user_id)
	);
	CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *sql.DB) *Service {
	t.Helper()
	memberships := repositories.NewMembershipRepository(db)
	policy := authz.NewPolicy(authz.NewResolver(memberships))
	return NewService(
		repositories.NewOrganizationRepository(db),
		repositories.NewProfileRepository(db),
		memberships,
		policy,
		audit.NewLogger(db),
	)
}

func seedMembership(t *testing.T, db *sql.DB, id, orgID, userID, role string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO memberships (id, organization_id, user_id, role, created_at) VALUES (?, ?, ?, ?, 1000)`,
		id, orgID, userID, role)
	if err != nil {
		t.Fatalf("Failed to seed membership: %v", err)
	}
}

func seedSuperAdmin(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO organizations (id, name, is_public, created_at, updated_at) VALUES ('org_root', 'HQ', 0, 1000, 1000)
		ON CONFLICT(id) DO NOTHING`); err != nil {
		t.Fatal(err)
	}
	seedMembership(t, db, "mem_"+userID, "org_root", userID, "super_admin")
}

func TestCreateOrganization(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")

	org, err := svc.CreateOrganization("root", "  Acme  ", false)
	if err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	if org.Name != "Acme" {
		t.Errorf("Expected trimmed name, got %q", org.Name)
	}

	// The creator lands as owner in the same transaction.
	var role string
	if err := db.QueryRow(`SELECT role FROM memberships WHERE user_id = 'root' AND organization_id = ?`, org.ID).Scan(&role); err != nil {
		t.Fatalf("Expected owner membership: %v", err)
	}
	if role != "owner" {
		t.Errorf("Expected owner role, got %s", role)
	}

	var action string
	if err := db.QueryRow(`SELECT action FROM audit_logs WHERE resource_id = ?`, org.ID).Scan(&action); err != nil {
		t.Fatalf("Expected audit entry: %v", err)
	}
	if action != "organization.create" {
		t.Errorf("Unexpected audit action %s", action)
	}
}

func TestCreateOrganization_Denied(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedMembership(t, db, "m1", "org1", "owner1", "owner")

	if _, err := svc.CreateOrganization("owner1", "Acme", false); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied for non super admin, got %v", err)
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM organizations`).Scan(&count)
	if count != 0 {
		t.Errorf("Denied create must not insert rows, found %d", count)
	}
}

func TestCreateOrganization_EmptyName(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")

	if _, err := svc.CreateOrganization("root", "   ", false); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("Expected invalid input for blank name, got %v", err)
	}
}

func TestPromoteUserToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")
	if _, err := db.Exec(`INSERT INTO organizations (id, name, is_public, created_at, updated_at) VALUES ('org1', 'Acme', 0, 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	seedMembership(t, db, "m1", "org1", "user1", "viewer")

	promoted, err := svc.PromoteUserToOwner("root", "user1", "org1")
	if err != nil {
		t.Fatalf("PromoteUserToOwner failed: %v", err)
	}
	if !promoted {
		t.Fatal("Expected promotion to apply")
	}

	var role string
	db.QueryRow(`SELECT role FROM memberships WHERE id = 'm1'`).Scan(&role)
	if role != "owner" {
		t.Errorf("Expected owner role after promotion, got %s", role)
	}

	// Promotion never creates a membership out of thin air.
	promoted, err = svc.PromoteUserToOwner("root", "stranger", "org1")
	if err != nil {
		t.Fatalf("PromoteUserToOwner failed: %v", err)
	}
	if promoted {
		t.Error("Expected false for user with no membership")
	}
	var count int
	db.QueryRow(`SELECT COUNT(*) FROM memberships WHERE user_id = 'stranger'`).Scan(&count)
	if count != 0 {
		t.Errorf("No membership must be created, found %d", count)
	}
}

func TestPromoteUserToOwner_Denied(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedMembership(t, db, "m1", "org1", "user1", "viewer")
	seedMembership(t, db, "m2", "org1", "owner1", "owner")

	if _, err := svc.PromoteUserToOwner("owner1", "user1", "org1"); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied, got %v", err)
	}

	var role string
	db.QueryRow(`SELECT role FROM memberships WHERE id = 'm1'`).Scan(&role)
	if role != "viewer" {
		t.Errorf("Denied promotion must not change role, got %s", role)
	}
}

func TestListAllUsersWithRoles(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")

	if _, err := db.Exec(`INSERT INTO profiles (id, email, display_name, created_at, updated_at) VALUES
		('user1', 'a@x.com', 'A', 1000, 1000),
		('user2', 'b@x.com', 'B', 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO organizations (id, name, is_public, created_at, updated_at) VALUES ('org1', 'Acme', 0, 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	seedMembership(t, db, "m1", "org1", "user1", "admin")

	users, err := svc.ListAllUsersWithRoles("root")
	if err != nil {
		t.Fatalf("ListAllUsersWithRoles failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}

	byID := make(map[string]int)
	for i, u := range users {
		byID[u.UserID] = i
	}
	u1 := users[byID["user1"]]
	if len(u1.Organizations) != 1 || u1.Organizations[0].Role != "admin" || u1.Organizations[0].OrgID != "org1" {
		t.Errorf("Unexpected roles for user1: %+v", u1.Organizations)
	}
	u2 := users[byID["user2"]]
	if len(u2.Organizations) != 0 {
		t.Errorf("Expected no roles for user2, got %+v", u2.Organizations)
	}

	if _, err := svc.ListAllUsersWithRoles("user1"); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied for non super admin, got %v", err)
	}
}

func TestCurrentUserSuperAdminStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")
	seedMembership(t, db, "m1", "org_root", "user1", "viewer")

	status, err := svc.CurrentUserSuperAdminStatus("root", "root@x.com")
	if err != nil {
		t.Fatalf("CurrentUserSuperAdminStatus failed: %v", err)
	}
	if !status.IsSuperAdmin || status.UserID != "root" || status.Email != "root@x.com" {
		t.Errorf("Unexpected status: %+v", status)
	}

	status, err = svc.CurrentUserSuperAdminStatus("user1", "u@x.com")
	if err != nil {
		t.Fatalf("CurrentUserSuperAdminStatus failed: %v", err)
	}
	if status.IsSuperAdmin {
		t.Error("Viewer must not report super admin")
	}
}

func TestGetOrganization(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	if _, err := db.Exec(`INSERT INTO organizations (id, name, is_public, created_at, updated_at) VALUES ('org1', 'Acme', 0, 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	seedMembership(t, db, "m1", "org1", "user1", "viewer")

	org, err := svc.GetOrganization("user1", "org1")
	if err != nil {
		t.Fatalf("GetOrganization failed: %v", err)
	}
	if org.Name != "Acme" {
		t.Errorf("Unexpected org: %+v", org)
	}

	if _, err := svc.GetOrganization("nobody", "org1"); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied for outsider, got %v", err)
	}
	if _, err := svc.GetOrganization("user1", "org_missing"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Expected not found for missing org, got %v", err)
	}
}

func TestListMemberships(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	if _, err := db.Exec(`INSERT INTO organizations (id, name, is_public, created_at, updated_at) VALUES ('org1', 'Acme', 0, 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	seedMembership(t, db, "m1", "org1", "user1", "viewer")
	seedMembership(t, db, "m2", "org1", "user2", "owner")

	members, err := svc.ListMemberships("user1", "org1")
	if err != nil {
		t.Fatalf("ListMemberships failed: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}

	if _, err := svc.ListMemberships("nobody", "org1"); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied, got %v", err)
	}
}

func TestListAudit(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)
	seedSuperAdmin(t, db, "root")

	if _, err := svc.CreateOrganization("root", "Acme", false); err != nil {
		t.Fatal(err)
	}

	entries, err := svc.ListAudit("root", 0)
	if err != nil {
		t.Fatalf("ListAudit failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "organization.create" {
		t.Errorf("Unexpected audit entries: %+v", entries)
	}

	if _, err := svc.ListAudit("nobody", 0); !errors.Is(err, pkgerrors.ErrPermissionDenied) {
		t.Errorf("Expected permission denied, got %v", err)
	}
}
