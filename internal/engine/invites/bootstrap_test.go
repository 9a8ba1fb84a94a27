package invites

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	pkgerrors "promptdeck/internal/pkg/errors"
)

func TestBootstrap_SeedsSuperAdminInvitation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	inv, err := svc.Bootstrap("Admin@Example.com", "boot-token")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if inv.Email != "admin@example.com" {
		t.Errorf("Expected normalized email, got %s", inv.Email)
	}
	if inv.Role != "super_admin" || inv.InvitedBy != "system" {
		t.Errorf("Unexpected bootstrap invitation: %+v", inv)
	}
	if inv.OrganizationID != nil {
		t.Error("Bootstrap invitation must not be bound to an organization")
	}
	if inv.UsedAt != nil {
		t.Error("Bootstrap invitation must be pending")
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	first, err := svc.Bootstrap("admin@example.com", "boot-token")
	if err != nil {
		t.Fatalf("First bootstrap failed: %v", err)
	}

	// Age the row so a rerun's expiry extension is observable.
	if _, err := db.Exec(`UPDATE invitations SET expires_at = expires_at - 1000 WHERE id = ?`, first.ID); err != nil {
		t.Fatal(err)
	}
	var aged int64
	db.QueryRow(`SELECT expires_at FROM invitations WHERE id = ?`, first.ID).Scan(&aged)

	second, err := svc.Bootstrap("admin@example.com", "boot-token")
	if err != nil {
		t.Fatalf("Rerun failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Rerun must keep the original row, got %s vs %s", second.ID, first.ID)
	}
	if second.ExpiresAt <= aged {
		t.Error("Rerun must re-extend the expiry")
	}

	var count int
	db.QueryRow(`SELECT COUNT(*) FROM invitations`).Scan(&count)
	if count != 1 {
		t.Errorf("Expected a single bootstrap row, got %d", count)
	}
}

func TestBootstrap_Validation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.Bootstrap("bad-email", "boot-token"); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("Expected invalid input for bad email, got %v", err)
	}
	if _, err := svc.Bootstrap("admin@example.com", ""); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("Expected invalid input for empty token, got %v", err)
	}
}

// A concurrent delete between the upsert and the read-back must surface as an
// error, not a panic on the missing row.
func TestBootstrap_RowGoneAfterUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO invitations").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id, email, token, role, organization_id").
		WithArgs("boot-token").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "token", "role", "organization_id", "invited_by", "expires_at", "used_at", "created_at"}))

	svc := newTestService(t, db)
	if _, err := svc.Bootstrap("admin@example.com", "boot-token"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Expected not found for vanished row, got %v", err)
	}
}

func TestBootstrap_RedeemGrantsSuperAdmin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.Bootstrap("admin@example.com", "boot-token"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if err := svc.OnPrincipalCreated(SignupEvent{UserID: "usr_root", Email: "admin@example.com"}); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	role, ok := membershipRole(t, db, "usr_root", publicOrgID(t, db))
	if !ok || role != "super_admin" {
		t.Errorf("Expected super_admin on public org, got ok=%v role=%s", ok, role)
	}

	var usedAt sql.NullInt64
	db.QueryRow(`SELECT used_at FROM invitations WHERE token = 'boot-token'`).Scan(&usedAt)
	if !usedAt.Valid {
		t.Error("Bootstrap invitation must be consumed after redemption")
	}
}
