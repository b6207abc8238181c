package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/landscape-hq/underwriter/internal/app/domain/document"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("expected bearer auth, got %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(payload.Messages) != 2 || payload.Messages[0].Role != "system" {
			t.Fatalf("unexpected messages: %+v", payload.Messages)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func fieldByKey(fields []document.ExtractedField, key string) (document.ExtractedField, bool) {
	for _, f := range fields {
		if f.FieldKey == key {
			return f, true
		}
	}
	return document.ExtractedField{}, false
}

func TestExtract(t *testing.T) {
	reply := "```json\n" + `{
		"tenant_name": "Acme Dental",
		"rentable_sf": "2,400",
		"base_rent_psf": 28.5,
		"escalation_pct": 3,
		"free_rent_months": 2,
		"commencement": "03/01/2026",
		"expiration": "2031-03-01",
		"recovery_type": "Modified Gross",
		"_confidence": {"tenant_name": 0.95, "rentable_sf": 0.8}
	}` + "\n```"
	server := completionServer(t, reply)
	defer server.Close()

	extractor, err := NewExtractor(server.Client(), server.URL, "test-key", "", nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	fields, err := extractor.Extract(context.Background(), document.KindLease, "LEASE AGREEMENT ...")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	tenant, ok := fieldByKey(fields, "tenant_name")
	if !ok || tenant.TypedValue != "Acme Dental" || tenant.Confidence != 0.95 {
		t.Fatalf("tenant field wrong: %+v", tenant)
	}

	sf, ok := fieldByKey(fields, "rentable_sf")
	if !ok || sf.TypedValue != "2400" {
		t.Fatalf("rentable_sf should parse %q to 2400: %+v", sf.RawValue, sf)
	}

	commence, ok := fieldByKey(fields, "commencement")
	if !ok || commence.TypedValue != "2026-03-01" {
		t.Fatalf("commencement date not normalised: %+v", commence)
	}
	// No stated confidence defaults to 0.6.
	if commence.Confidence != 0.6 {
		t.Fatalf("default confidence = %v, want 0.6", commence.Confidence)
	}

	recovery, ok := fieldByKey(fields, "recovery_type")
	if !ok || recovery.TypedValue != "modified_gross" {
		t.Fatalf("recovery type not normalised: %+v", recovery)
	}
}

func TestExtractMissingRequired(t *testing.T) {
	reply := `{"base_rent_psf": 30, "_confidence": {"base_rent_psf": 0.9}}`
	server := completionServer(t, reply)
	defer server.Close()

	extractor, err := NewExtractor(server.Client(), server.URL, "test-key", "", nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	fields, err := extractor.Extract(context.Background(), document.KindLease, "some text")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	tenant, ok := fieldByKey(fields, "tenant_name")
	if !ok {
		t.Fatalf("missing required field should still be reported")
	}
	if tenant.Confidence != 0 || len(tenant.Warnings) == 0 {
		t.Fatalf("missing required field should carry zero confidence and a warning: %+v", tenant)
	}
}

func TestExtractWarningsCapConfidence(t *testing.T) {
	reply := `{
		"tenant_name": "Acme",
		"rentable_sf": 2400,
		"base_rent_psf": 5000,
		"commencement": "2026-01-01",
		"expiration": "2031-01-01",
		"_confidence": {"base_rent_psf": 0.99}
	}`
	server := completionServer(t, reply)
	defer server.Close()

	extractor, err := NewExtractor(server.Client(), server.URL, "test-key", "", nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	fields, err := extractor.Extract(context.Background(), document.KindLease, "some text")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	rent, ok := fieldByKey(fields, "base_rent_psf")
	if !ok {
		t.Fatalf("base_rent_psf absent")
	}
	if len(rent.Warnings) == 0 {
		t.Fatalf("out-of-range rent should warn")
	}
	if rent.Confidence > 0.5 {
		t.Fatalf("warned field confidence = %v, want <= 0.5", rent.Confidence)
	}
}

func TestExtractRejectsNonJSON(t *testing.T) {
	server := completionServer(t, "I could not find any fields, sorry!")
	defer server.Close()

	extractor, err := NewExtractor(server.Client(), server.URL, "test-key", "", nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	if _, err := extractor.Extract(context.Background(), document.KindLease, "text"); err == nil {
		t.Fatalf("expected error for non-JSON reply")
	}
}

func TestExtractEmptyText(t *testing.T) {
	extractor, err := NewExtractor(nil, "http://localhost:1", "", "", nil)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	if _, err := extractor.Extract(context.Background(), document.KindLease, "   "); err == nil {
		t.Fatalf("expected error for empty text")
	}
}

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"{\"a\":1}":                   `{"a":1}`,
		"```json\n{\"a\":1}\n```":     `{"a":1}`,
		"```\n{\"a\":1}\n```":         `{"a":1}`,
		"  ```json\n{\"a\":1}\n```  ": `{"a":1}`,
	}
	for in, want := range cases {
		if got := stripFences(in); got != want {
			t.Fatalf("stripFences(%q) = %q, want %q", in, got, want)
		}
	}
}
