package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kigurumiya/reserve-backend/pkg/config"
	"github.com/kigurumiya/reserve-backend/pkg/security"
)

func adminAuthConfig(t *testing.T, password string) config.AdminAuthConfig {
	t.Helper()
	cfg := config.AdminAuthConfig{
		Enabled:          true,
		Username:         "staff",
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	cfg.PasswordHash = hash
	return cfg
}

func TestBasicAuthAcceptsValidCredentials(t *testing.T) {
	cfg := adminAuthConfig(t, "correct horse")
	handler := BasicAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/items", nil)
	req.SetBasicAuth("staff", "correct horse")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBasicAuthRejectsWrongPassword(t *testing.T) {
	cfg := adminAuthConfig(t, "correct horse")
	handler := BasicAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/items", nil)
	req.SetBasicAuth("staff", "wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected challenge header")
	}
}

func TestBasicAuthRejectsMissingHeader(t *testing.T) {
	cfg := adminAuthConfig(t, "correct horse")
	handler := BasicAuth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestBasicAuthDisabledPassesThrough(t *testing.T) {
	handler := BasicAuth(config.AdminAuthConfig{Enabled: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
