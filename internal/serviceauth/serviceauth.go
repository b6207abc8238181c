// Package serviceauth issues and verifies short-lived JWTs for
// service-to-service calls to the Django backend.
package serviceauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Header names attached to outbound backend requests.
const (
	ServiceTokenHeader = "X-Service-Token"
	UserIDHeader       = "X-User-ID"
)

// ServiceClaims identify the calling service.
type ServiceClaims struct {
	ServiceID string `json:"service_id"`
	jwt.RegisteredClaims
}

// TokenGenerator mints HMAC-signed service tokens.
type TokenGenerator struct {
	secret    []byte
	serviceID string
	ttl       time.Duration
}

// NewTokenGenerator creates a generator for the given service identity.
func NewTokenGenerator(secret []byte, serviceID string, ttl time.Duration) *TokenGenerator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenGenerator{secret: secret, serviceID: serviceID, ttl: ttl}
}

// GenerateToken returns a signed token valid for the generator's TTL.
func (g *TokenGenerator) GenerateToken() (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		ServiceID: g.serviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   g.serviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// VerifyToken parses and validates a service token.
func VerifyToken(tokenString string, secret []byte) (*ServiceClaims, error) {
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid service token")
	}
	return claims, nil
}
