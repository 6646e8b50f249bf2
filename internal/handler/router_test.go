package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/eventman/internal/auth"
	"github.com/hitoshi/eventman/internal/middleware"
	"github.com/hitoshi/eventman/internal/model"
	"github.com/hitoshi/eventman/internal/validation"
)

// --- モック定義 ---

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

type mockFinder struct {
	identities map[string]*model.Identity
}

func (m *mockFinder) FindIdentityBySessionID(ctx context.Context, sessionID string) (*model.Identity, error) {
	return m.identities[sessionID], nil
}

func newTestRouter(t *testing.T, authSvc AuthServiceInterface, eventSvc EventServiceInterface, finder middleware.IdentityFinder) http.Handler {
	t.Helper()
	if finder == nil {
		finder = &mockFinder{}
	}
	return NewRouter(&RouterDeps{
		SessionFinder:     finder,
		CORSAllowedOrigin: "http://localhost:3000",
		CSRFConfig:        middleware.CSRFConfig{},
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:       authSvc,
		AuthConfig:        AuthHandlerConfig{SessionMaxAge: 86400},
		EventService:      eventSvc,
		Validator:         validation.NewValidator(),
		DB:                &mockPinger{},
	})
}

// --- テスト ---

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockEventService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRouter_Healthz_StorageDown_Returns503(t *testing.T) {
	router := NewRouter(&RouterDeps{
		SessionFinder: &mockFinder{},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		AuthService:   &mockAuthService{},
		EventService:  &mockEventService{},
		Validator:     validation.NewValidator(),
		DB:            &mockPinger{err: errors.New("connection refused")},
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestRouter_ProtectedRoute_WithoutSession_Returns401(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockEventService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["statusMessage"] != "Unauthorized" {
		t.Errorf("statusMessage = %v", body["statusMessage"])
	}
}

func TestRouter_ProtectedRoute_WithValidSession_ResolvesIdentity(t *testing.T) {
	finder := &mockFinder{identities: map[string]*model.Identity{
		"session-abc": {ID: "user-1", Email: "alice@example.com"},
	}}
	eventSvc := &mockEventService{
		listFn: func(ctx context.Context, ownerID string) ([]*model.Event, error) {
			if ownerID != "user-1" {
				t.Errorf("ownerID = %q, want user-1", ownerID)
			}
			return []*model.Event{}, nil
		},
	}
	router := newTestRouter(t, &mockAuthService{}, eventSvc, finder)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

// CSRFトークン取得→サインアップの一連のフローを検証
func TestRouter_SignUpFlow_WithCSRFToken(t *testing.T) {
	authSvc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password string) (*auth.Result, error) {
			return testResult("user-1", email), nil
		},
	}
	router := newTestRouter(t, authSvc, &mockEventService{}, nil)

	// 1. CSRFトークンを取得
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/csrf-token", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("csrf-token status = %d, want 200", w.Code)
	}
	var tokenBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&tokenBody); err != nil {
		t.Fatalf("failed to decode token body: %v", err)
	}
	token := tokenBody["token"]
	if token == "" {
		t.Fatal("expected non-empty csrf token")
	}

	// 2. トークンなしのサインアップは403
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-up",
		strings.NewReader(`{"email":"alice@example.com","password":"Passw0rd"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("sign-up without token: status = %d, want 403", w.Code)
	}

	// 3. Cookie + ヘッダーの両方にトークンを載せたサインアップは成功
	req = httptest.NewRequest(http.MethodPost, "/auth/sign-up",
		strings.NewReader(`{"email":"alice@example.com","password":"Passw0rd"}`))
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: token})
	req.Header.Set("X-CSRF-Token", token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body authResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !body.Success || body.User.Email != "alice@example.com" {
		t.Errorf("body = %+v", body)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockEventService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_Preflight_Returns204(t *testing.T) {
	router := newTestRouter(t, &mockAuthService{}, &mockEventService{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/events", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
