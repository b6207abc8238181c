package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/landscape-hq/underwriter/internal/logging"
)

var testSecret = []byte("underwriter-test-secret")

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func userClaims(userID, role string, expiresIn time.Duration) Claims {
	return Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func authedHandler(t *testing.T) (http.Handler, *string, *string) {
	t.Helper()
	var gotUser, gotRole string
	m := NewAuthMiddleware(testSecret, nil, []string{"/healthz"})
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = logging.GetUserID(r.Context())
		gotRole = logging.GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &gotUser, &gotRole
}

func TestAuthValidToken(t *testing.T) {
	h, gotUser, gotRole := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, userClaims("analyst@example.com", "admin", time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *gotUser != "analyst@example.com" || *gotRole != "admin" {
		t.Fatalf("context carried user=%q role=%q", *gotUser, *gotRole)
	}
}

func TestAuthRejects(t *testing.T) {
	h, _, _ := authedHandler(t)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + signToken(t, testSecret, userClaims("analyst@example.com", "", -time.Hour))},
		{"wrong secret", "Bearer " + signToken(t, []byte("other-secret"), userClaims("analyst@example.com", "", time.Hour))},
		{"no user id", "Bearer " + signToken(t, testSecret, userClaims("", "", time.Hour))},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", c.name, rec.Code)
		}
	}
}

func TestAuthSkipPaths(t *testing.T) {
	h, _, _ := authedHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("skip path status = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	gate := RequireRole(RoleAdmin, nil)
	h := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/1/purge", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("without role: %d, want 403", rec.Code)
	}

	ctx := context.WithValue(req.Context(), logging.RoleKey, RoleAdmin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Fatalf("with role: %d, want 200", rec.Code)
	}
}
