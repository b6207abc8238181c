// Package middleware provides the HTTP middleware chain: authentication,
// role gating, rate limiting, CORS, and request tracing.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/landscape-hq/underwriter/internal/errors"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Claims are the JWT claims carried by user bearer tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RoleAdmin gates destructive and administrative routes.
const RoleAdmin = "admin"

// AuthMiddleware validates bearer tokens and loads the caller's identity
// into the request context.
type AuthMiddleware struct {
	secret    []byte
	log       *logging.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates an authentication middleware. Requests to the
// listed paths pass through unauthenticated.
func NewAuthMiddleware(secret []byte, log *logging.Logger, skipPaths []string) *AuthMiddleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = true
	}
	if log == nil {
		log = logging.NewDefault("auth")
	}
	return &AuthMiddleware{secret: secret, log: log, skipPaths: skip}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.deny(w, r, errors.Unauthorized("missing authorization header"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.deny(w, r, errors.Unauthorized("authorization header must be a bearer token"))
			return
		}

		claims, err := m.validateToken(parts[1])
		if err != nil {
			m.log.WithContext(r.Context()).WithError(err).Warn("token validation failed")
			m.deny(w, r, errors.Unauthorized("invalid token"))
			return
		}

		ctx := logging.WithUserID(r.Context(), claims.UserID)
		if claims.Role != "" {
			ctx = context.WithValue(ctx, logging.RoleKey, claims.Role)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("token claims invalid")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("token carries no user id")
	}
	return claims, nil
}

func (m *AuthMiddleware) deny(w http.ResponseWriter, r *http.Request, err error) {
	m.log.WithContext(r.Context()).
		WithField("path", r.URL.Path).
		WithField("method", r.Method).
		Warn("authentication failed")
	writeJSONError(w, errors.HTTPStatusOf(err), err)
}

// RequireRole rejects requests whose authenticated caller lacks the role.
func RequireRole(role string, log *logging.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logging.NewDefault("auth")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logging.GetRole(r.Context()) != role {
				log.LogSecurityEvent(r.Context(), "role_denied", map[string]interface{}{
					"path":     r.URL.Path,
					"required": role,
				})
				writeJSONError(w, http.StatusForbidden, errors.Forbidden("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
