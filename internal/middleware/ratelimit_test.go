package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/eventman/internal/model"
)

func newTestRateLimiter(generalBurst, authBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中の補充を事実上無効化
		GeneralBurst:    generalBurst,
		AuthRate:        rate.Limit(0.001),
		AuthBurst:       authBurst,
		CleanupInterval: time.Hour,
	})
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	ctx := ContextWithIdentity(req.Context(), &model.Identity{ID: userID, Email: userID + "@example.com"})
	return req.WithContext(ctx)
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Result().StatusCode)
		}
	}
}

func TestGeneralMiddleware_ExceedingBurst_Returns429(t *testing.T) {
	rl := newTestRateLimiter(2, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-1"))

	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Result().StatusCode)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestGeneralMiddleware_SeparateUsersHaveSeparateBudgets(t *testing.T) {
	rl := newTestRateLimiter(1, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, authedRequest("user-1"))

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, authedRequest("user-2"))

	if w1.Result().StatusCode != http.StatusOK || w2.Result().StatusCode != http.StatusOK {
		t.Errorf("statuses = %d, %d, want 200 for both users",
			w1.Result().StatusCode, w2.Result().StatusCode)
	}
	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}

func TestGeneralMiddleware_NoIdentity_Returns401(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Result().StatusCode)
	}
}

func TestAuthMiddleware_KeyedByClientIP(t *testing.T) {
	rl := newTestRateLimiter(10, 1)
	defer rl.Stop()

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req1.RemoteAddr = "10.0.0.1:54321"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req1)
	if w1.Result().StatusCode != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w1.Result().StatusCode)
	}

	// 同一IPの2回目はバースト超過
	req2 := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req2.RemoteAddr = "10.0.0.1:54322"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)
	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want 429", w2.Result().StatusCode)
	}

	// 別IPは独立した予算を持つ
	req3 := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req3.RemoteAddr = "10.0.0.2:54321"
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req3)
	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP: status = %d, want 200", w3.Result().StatusCode)
	}
}

func TestAuthMiddleware_PrefersForwardedFor(t *testing.T) {
	rl := newTestRateLimiter(10, 1)
	defer rl.Stop()

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if rl.AuthLimiterCount() != 1 {
		t.Fatalf("limiter count = %d, want 1", rl.AuthLimiterCount())
	}
	rl.authMu.RLock()
	_, ok := rl.authLimiters["203.0.113.7"]
	rl.authMu.RUnlock()
	if !ok {
		t.Error("expected limiter keyed by first X-Forwarded-For entry")
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1),
		GeneralBurst:    1,
		AuthRate:        rate.Limit(1),
		AuthBurst:       1,
		CleanupInterval: time.Millisecond,
	})
	defer rl.Stop()

	rl.getOrCreate(&rl.generalMu, rl.generalLimiters, "user-1", rl.config.GeneralRate, rl.config.GeneralBurst)

	rl.generalMu.Lock()
	rl.generalLimiters["user-1"].lastAccess = time.Now().Add(-time.Hour)
	rl.generalMu.Unlock()

	rl.cleanup()

	if rl.GeneralLimiterCount() != 0 {
		t.Errorf("limiter count = %d, want 0 after cleanup", rl.GeneralLimiterCount())
	}
}
