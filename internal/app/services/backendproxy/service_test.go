package backendproxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/landscape-hq/underwriter/internal/httputil"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		path      string
		ok        bool
		adminOnly bool
	}{
		{"/api/chat/sessions", true, false},
		{"/api/valuation/run", true, false},
		{"/api/multifamily/parcels", true, false},
		{"/api/admin/users/", true, true},
		{"/api/admin/users/42", true, true},
		{"/api/admin/secrets", false, false},
		{"/api/projects", false, false},
		{"/etc/passwd", false, false},
		{"", false, false},
	}
	for _, c := range cases {
		ok, adminOnly := Allowed(c.path)
		if ok != c.ok || adminOnly != c.adminOnly {
			t.Fatalf("Allowed(%q) = (%v, %v), want (%v, %v)", c.path, ok, adminOnly, c.ok, c.adminOnly)
		}
	}
}

func backendServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Service) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := httputil.NewServiceClient(httputil.ServiceClientConfig{
		ServiceKey: []byte("backend-secret"),
		ServiceID:  "underwriter",
		BaseURL:    server.URL,
	})
	return server, New(client, nil)
}

func TestForward(t *testing.T) {
	server, svc := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Service-Token") == "" {
			t.Fatal("expected a service token header")
		}
		if r.URL.Path != "/api/chat/sessions" || r.URL.RawQuery != "page=2" {
			t.Fatalf("unexpected target: %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["topic"] != "underwriting" {
			t.Fatalf("body not relayed: %v", payload)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "abc"}`))
	})
	defer server.Close()

	res, err := svc.Forward(context.Background(), http.MethodPost, "/api/chat/sessions", "page=2", json.RawMessage(`{"topic":"underwriting"}`))
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.Status)
	}
	var reply map[string]string
	if err := json.Unmarshal(res.Body, &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply["id"] != "abc" {
		t.Fatalf("reply = %v", reply)
	}
}

func TestForwardEmptyBody(t *testing.T) {
	server, svc := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	res, err := svc.Forward(context.Background(), http.MethodGet, "/api/valuation/run", "", nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if string(res.Body) != "{}" {
		t.Fatalf("empty upstream body should become {}, got %s", res.Body)
	}
}

func TestForwardNonJSONBody(t *testing.T) {
	server, svc := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})
	defer server.Close()

	res, err := svc.Forward(context.Background(), http.MethodGet, "/api/multifamily/parcels", "", nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if res.Status != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", res.Status)
	}
	var wrapped map[string]string
	if err := json.Unmarshal(res.Body, &wrapped); err != nil {
		t.Fatalf("unmarshal wrapped body: %v", err)
	}
	if wrapped["raw"] != "upstream exploded" {
		t.Fatalf("wrapped = %v", wrapped)
	}
}

func TestForwardDisallowedPath(t *testing.T) {
	server, svc := backendServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("disallowed path must not reach the backend")
	})
	defer server.Close()

	if _, err := svc.Forward(context.Background(), http.MethodGet, "/api/projects", "", nil); err == nil {
		t.Fatal("expected error for a path outside the allow list")
	}
}

func TestForwardNotConfigured(t *testing.T) {
	svc := New(nil, nil)
	if _, err := svc.Forward(context.Background(), http.MethodGet, "/api/chat/sessions", "", nil); err == nil {
		t.Fatal("expected error when no backend client is configured")
	}
}
