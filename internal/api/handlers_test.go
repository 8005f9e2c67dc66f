// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/waymark-app/waymark/internal/config"
	"github.com/waymark-app/waymark/internal/logging"
	"github.com/waymark-app/waymark/internal/media"
	"github.com/waymark-app/waymark/internal/models"
	"github.com/waymark-app/waymark/internal/store"
	ws "github.com/waymark-app/waymark/internal/websocket"
)

func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type testEnv struct {
	handler *Handler
	router  http.Handler
	store   *store.Store
	hub     *ws.Hub
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	st := store.NewWithDB(db)

	mediaStorage, err := media.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: 5000, Host: "127.0.0.1", Timeout: 30 * time.Second},
		Database: config.DatabaseConfig{Path: "unused"},
		Media:    config.MediaConfig{Dir: mediaStorage.Dir(), MaxUploadMB: 32, MaxPhotos: 10, MaxVideos: 10},
		Security: config.SecurityConfig{CORSOrigins: []string{"*"}},
		Logging:  config.LoggingConfig{Level: "info", Format: "console"},
	}

	hub := ws.NewHub(st)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.RunWithContext(ctx) }()
	t.Cleanup(cancel)

	handler := NewHandler(st, cfg, hub, mediaStorage)
	router := NewRouter(handler).Setup()

	return &testEnv{handler: handler, router: router, store: st, hub: hub}
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRoot(t *testing.T) {
	env := setupEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("running")) {
		t.Errorf("body = %q, want liveness text", rec.Body.String())
	}
}

func TestRegisterSuccess(t *testing.T) {
	env := setupEnv(t)

	rec := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID == "" {
		t.Error("expected user id in response")
	}
	if resp.User.Name != "Alice" {
		t.Errorf("name = %q, want Alice", resp.User.Name)
	}

	// The stored hash must not round-trip the plaintext.
	user, err := env.store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Error("password stored in plaintext or empty")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupEnv(t)

	first := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", first.Code)
	}

	second := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Imposter", Email: "alice@example.com", Password: "other",
	})
	if second.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", second.Code)
	}
	if resp := decodeError(t, second); resp.Error.Code != "DUPLICATE_EMAIL" {
		t.Errorf("code = %q, want DUPLICATE_EMAIL", resp.Error.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupEnv(t)

	rec := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "not-an-email", Password: "s3cret",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", resp.Error.Code)
	}
}

func TestLoginFailureModesAreIdentical(t *testing.T) {
	env := setupEnv(t)

	rec := env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	unknownEmail := env.postJSON(t, "/login", models.LoginRequest{
		Email: "nobody@example.com", Password: "s3cret",
	})
	wrongPassword := env.postJSON(t, "/login", models.LoginRequest{
		Email: "alice@example.com", Password: "wrong",
	})

	if unknownEmail.Code != http.StatusBadRequest || wrongPassword.Code != http.StatusBadRequest {
		t.Fatalf("statuses = (%d, %d), want both 400", unknownEmail.Code, wrongPassword.Code)
	}
	// Both failure modes must be byte-identical so callers cannot tell
	// which accounts exist.
	if unknownEmail.Body.String() != wrongPassword.Body.String() {
		t.Errorf("bodies differ: %q vs %q", unknownEmail.Body.String(), wrongPassword.Body.String())
	}
}

func TestLoginSuccess(t *testing.T) {
	env := setupEnv(t)

	env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})

	rec := env.postJSON(t, "/login", models.LoginRequest{
		Email: "alice@example.com", Password: "s3cret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var resp models.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.Name != "Alice" || resp.User.ID == "" {
		t.Errorf("user = %+v, want id and name", resp.User)
	}
}

func TestUsersListExcludesPasswordHash(t *testing.T) {
	env := setupEnv(t)

	env.postJSON(t, "/register", models.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "s3cret",
	})

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("passwordHash")) {
		t.Error("users listing leaks password hashes")
	}

	var users []models.PublicUser
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}
	if users[0].Email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", users[0].Email)
	}
}
