package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apiContext "promptdeck/internal/api/context"
	"promptdeck/internal/engine/apikeys"
	"promptdeck/internal/platform/auth"
	"promptdeck/internal/platform/config"
	"promptdeck/internal/platform/repositories"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	query := `
	CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		key_hash TEXT NOT NULL,
		key_prefix TEXT NOT NULL,
		last_used_at INTEGER,
		created_at INTEGER NOT NULL,
		revoked_at INTEGER
	);
	`
	if _, err := db.Exec(query); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}
	return db
}

func testTokenService() *auth.TokenService {
	return auth.NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "test"})
}

func newTestMiddleware(t *testing.T, db *sql.DB) (*AuthMiddleware, *apikeys.Service) {
	t.Helper()
	keySvc := apikeys.NewService(repositories.NewAPIKeyRepository(db))
	mw := NewAuthMiddleware(testTokenService(), keySvc, repositories.NewProfileRepository(db))
	return mw, keySvc
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	db := setupTestDB(t)
	mw, _ := newTestMiddleware(t, db)

	token, err := testTokenService().GenerateToken("user1", "a@x.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var seen *auth.Claims
	handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(apiContext.Claims).(*auth.Claims)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/me/super-admin-status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != "user1" || seen.Email != "a@x.com" {
		t.Errorf("Expected claims in context, got %+v", seen)
	}
}

func TestAuthMiddleware_ValidAPIKey(t *testing.T) {
	db := setupTestDB(t)
	mw, keySvc := newTestMiddleware(t, db)

	if _, err := db.Exec(`INSERT INTO profiles (id, email, display_name, created_at, updated_at)
		VALUES ('user1', 'a@x.com', 'A', 1000, 1000)`); err != nil {
		t.Fatal(err)
	}
	created, err := keySvc.Create("user1", "ci key")
	if err != nil {
		t.Fatalf("Create key failed: %v", err)
	}

	var seen *auth.Claims
	handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(apiContext.Claims).(*auth.Claims)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/organizations/org1/prompts", nil)
	req.Header.Set("Authorization", "Bearer "+created.RawKey)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.UserID != "user1" || seen.Email != "a@x.com" {
		t.Errorf("Expected key owner's claims, got %+v", seen)
	}
}

func TestAuthMiddleware_RevokedAPIKey(t *testing.T) {
	db := setupTestDB(t)
	mw, keySvc := newTestMiddleware(t, db)

	created, err := keySvc.Create("user1", "ci key")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := keySvc.Revoke("user1", created.Key.ID); err != nil {
		t.Fatal(err)
	}

	handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not run for a revoked key")
	})

	req := httptest.NewRequest("GET", "/api/v1/keys", nil)
	req.Header.Set("Authorization", "Bearer "+created.RawKey)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	db := setupTestDB(t)
	mw, _ := newTestMiddleware(t, db)
	handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not run for rejected requests")
	})

	tokenSvc := testTokenService()
	expired, err := tokenSvc.GenerateToken("user1", "a@x.com", -time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	otherSvc := auth.NewTokenService(config.JWTConfig{Secret: "other-secret"})
	foreign, err := otherSvc.GenerateToken("user1", "a@x.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
		{"unknown api key", "Bearer pd_live_AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"},
		{"truncated api key", "Bearer pd_live_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/keys", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_EmptySubject(t *testing.T) {
	db := setupTestDB(t)
	mw, _ := newTestMiddleware(t, db)

	token, err := testTokenService().GenerateToken("", "a@x.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	handler := mw.Handle(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler must not run for a token without a subject")
	})

	req := httptest.NewRequest("GET", "/api/v1/keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}
