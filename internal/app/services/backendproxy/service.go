// Package backendproxy relays API calls to the Django backend with service
// authentication attached.
package backendproxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/landscape-hq/underwriter/internal/app/metrics"
	"github.com/landscape-hq/underwriter/internal/httputil"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// allowedPrefixes lists the backend path namespaces the proxy will relay.
var allowedPrefixes = []string{
	"/api/chat/",
	"/api/valuation/",
	"/api/multifamily/",
	"/api/admin/users/",
}

// adminPrefixes require the caller to hold the admin role.
var adminPrefixes = []string{
	"/api/admin/",
}

// Result is the upstream reply relayed back to the caller.
type Result struct {
	Status int
	Body   json.RawMessage
}

// Service forwards requests to the Django backend.
type Service struct {
	client *httputil.ServiceClient
	log    *logging.Logger
}

// New creates a configured proxy service.
func New(client *httputil.ServiceClient, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("backend-proxy")
	}
	return &Service{client: client, log: log}
}

// Allowed reports whether the path may be relayed, and whether it needs the
// admin role.
func Allowed(path string) (ok bool, adminOnly bool) {
	for _, prefix := range allowedPrefixes {
		if strings.HasPrefix(path, prefix) {
			ok = true
			break
		}
	}
	if !ok {
		return false, false
	}
	for _, prefix := range adminPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true, true
		}
	}
	return true, false
}

// Forward relays method, path, and body to the backend and returns the
// upstream status and JSON body. The service client retries once on
// 401/403 with a fresh service token before the reply comes back here.
func (s *Service) Forward(ctx context.Context, method, path string, query string, body json.RawMessage) (Result, error) {
	if s.client == nil {
		return Result{}, fmt.Errorf("backend is not configured")
	}
	ok, _ := Allowed(path)
	if !ok {
		return Result{}, fmt.Errorf("path %s is not proxied", path)
	}

	target := path
	if query != "" {
		target += "?" + query
	}

	var payload interface{}
	if len(body) > 0 {
		payload = body
	}

	start := time.Now()
	resp, err := s.client.Do(ctx, method, target, payload)
	if err != nil {
		s.log.WithError(err).
			WithField("method", method).
			WithField("path", path).
			Error("backend request failed")
		return Result{}, fmt.Errorf("backend unavailable: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordBackendRequest(method, resp.StatusCode, time.Since(start))

	raw, truncated, err := httputil.ReadAllWithLimit(resp.Body, 8<<20)
	if err != nil {
		return Result{}, fmt.Errorf("read backend response: %w", err)
	}
	if truncated {
		return Result{}, fmt.Errorf("backend response exceeds relay limit")
	}

	if len(raw) == 0 {
		raw = []byte(`{}`)
	} else if !json.Valid(raw) {
		s.log.WithField("status", resp.StatusCode).
			WithField("path", path).
			Warn("backend returned non-JSON body")
		encoded, _ := json.Marshal(map[string]string{"raw": string(raw)})
		raw = encoded
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		s.log.WithField("status", resp.StatusCode).
			WithField("path", path).
			Warn("backend returned server error")
	}
	return Result{Status: resp.StatusCode, Body: raw}, nil
}
