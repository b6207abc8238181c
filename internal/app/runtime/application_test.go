package runtime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/landscape-hq/underwriter/internal/config"
	"github.com/landscape-hq/underwriter/internal/logging"
	"github.com/landscape-hq/underwriter/internal/middleware"
)

const chainSecret = "middleware-chain-secret"

func signChainToken(t *testing.T, userID string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(chainSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Callers behind one address must not share a rate limit bucket: the auth
// layer runs first, so the limiter keys on the authenticated user id.
func TestMiddlewareRateLimitsPerUser(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = chainSecret
	cfg.Server.RateLimitPerSec = 1
	cfg.Server.RateLimitBurst = 1

	var lastUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastUser = logging.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := buildMiddleware(cfg, logging.NewDefault("test"), next)

	do := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("Authorization", "Bearer "+signChainToken(t, user))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := do("alice"); code != http.StatusOK {
		t.Fatalf("alice first request: got %d, want 200", code)
	}
	if lastUser != "alice" {
		t.Fatalf("user id not propagated to the handler, got %q", lastUser)
	}
	if code := do("bob"); code != http.StatusOK {
		t.Fatalf("bob throttled by alice's bucket: got %d, want 200", code)
	}
	if lastUser != "bob" {
		t.Fatalf("user id not propagated to the handler, got %q", lastUser)
	}
	if code := do("alice"); code != http.StatusTooManyRequests {
		t.Fatalf("alice second request: got %d, want 429", code)
	}
}

func TestMiddlewareUnauthenticatedRejectedBeforeLimiter(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.JWTSecret = chainSecret
	cfg.Server.RateLimitPerSec = 1
	cfg.Server.RateLimitBurst = 1

	handler := buildMiddleware(cfg, logging.NewDefault("test"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous requests never reach the limiter, so they cannot drain a
	// shared bucket for the address.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: got %d, want 401", i, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("Authorization", "Bearer "+signChainToken(t, "carol"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("carol after anonymous burst: got %d, want 200", rec.Code)
	}
}
