package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/larderhq/larder/internal/config"
	"github.com/larderhq/larder/internal/database"
)

func setupServerTest(t *testing.T) http.Handler {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "server-test-secret"
	cfg.Auth.TokenTTL = time.Hour

	srv := New(cfg, db, slog.Default())
	return srv.Router()
}

func TestHealthIsPublic(t *testing.T) {
	router := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("responses should carry a request id")
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	router := setupServerTest(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/grocery"},
		{http.MethodGet, "/api/fridge"},
		{http.MethodGet, "/api/recipes"},
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/ai/recipes/generate"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", p.method, p.path, w.Code)
		}
	}
}

func TestRegisterThenUseAPI(t *testing.T) {
	router := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email": "router@example.com", "name": "R", "password": "longenough"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/grocery", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authed list status = %d: %s", w.Code, w.Body.String())
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty list body = %q, want []", body)
	}

	// Full round trip: create shows up in the list.
	req = httptest.NewRequest(http.MethodPost, "/api/grocery",
		strings.NewReader(`{"name": "Milk"}`))
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/grocery", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var items []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || items[0]["name"] != "Milk" {
		t.Errorf("list = %v", items)
	}
}

func TestUnconfiguredFeaturesReport503(t *testing.T) {
	router := setupServerTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email": "f@example.com", "password": "longenough"}`)))
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	for _, p := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/ai/recipes/generate", `{"mode": "random"}`},
		{http.MethodGet, "/api/push/vapid-key", ""},
	} {
		req := httptest.NewRequest(p.method, p.path, strings.NewReader(p.body))
		req.Header.Set("Authorization", "Bearer "+reg.Token)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s status = %d, want 503", p.method, p.path, w.Code)
		}
	}
}
