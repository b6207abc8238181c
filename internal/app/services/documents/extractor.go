package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tidwall/gjson"

	"github.com/landscape-hq/underwriter/internal/app/domain/document"
	"github.com/landscape-hq/underwriter/internal/logging"
)

// Extractor turns document text into typed fields by prompting a hosted
// language model and mapping its JSON reply.
type Extractor struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
	log      *logging.Logger
}

// NewExtractor constructs an extractor for the given model endpoint.
func NewExtractor(client *http.Client, endpoint, apiKey, model string, log *logging.Logger) (*Extractor, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint required")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if log == nil {
		log = logging.NewDefault("extractor")
	}
	return &Extractor{
		client:   client,
		endpoint: endpoint,
		apiKey:   strings.TrimSpace(apiKey),
		model:    model,
		log:      log,
	}, nil
}

func promptFor(kind document.Kind) string {
	var fields []string
	for _, r := range rulesFor(kind) {
		fields = append(fields, strings.TrimPrefix(r.Path, "$."))
	}
	return fmt.Sprintf(
		"Extract the following fields from the %s document below and reply with a single JSON object "+
			"using exactly these keys: %s. Use numbers for numeric fields and ISO 8601 dates (YYYY-MM-DD). "+
			"Add a \"_confidence\" object mapping each key to your confidence between 0 and 1. "+
			"Use null for fields not present in the document. Reply with JSON only.",
		kind, strings.Join(fields, ", "))
}

// Extract prompts the model with the document text and maps the reply into
// extracted fields. A non-nil error means the document could not be
// processed at all; per-field problems surface as warnings instead.
func (e *Extractor) Extract(ctx context.Context, kind document.Kind, text string) ([]document.ExtractedField, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("document has no extractable text")
	}

	content, err := e.complete(ctx, promptFor(kind), text)
	if err != nil {
		return nil, err
	}
	return mapFields(kind, content)
}

func (e *Extractor) complete(ctx context.Context, prompt, text string) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "system", "content": prompt},
			{"role": "user", "content": text},
		},
		"temperature": 0,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion status %d", resp.StatusCode)
	}

	content := gjson.GetBytes(body, "choices.0.message.content").String()
	if content == "" {
		return "", fmt.Errorf("completion response has no content")
	}
	return content, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(s[:i]); tag == "" || !strings.ContainsAny(tag, "{}[]") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func mapFields(kind document.Kind, content string) ([]document.ExtractedField, error) {
	content = stripFences(content)
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("model reply is not valid JSON")
	}
	parsed := gjson.Parse(content)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("model reply is not a JSON object")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}

	var out []document.ExtractedField
	for _, rule := range rulesFor(kind) {
		field := document.ExtractedField{FieldKey: rule.Key}

		raw, err := jsonpath.Get(rule.Path, doc)
		missing := err != nil || raw == nil
		if missing {
			if rule.Required {
				field.Warnings = append(field.Warnings, "missing required field")
				field.Confidence = 0
				out = append(out, field)
			}
			continue
		}

		field.RawValue = fmt.Sprintf("%v", raw)
		field.TypedValue, field.Warnings = normalize(rule, raw)
		field.Confidence = clamp(parsed.Get("_confidence." + rule.Key))
		if len(field.Warnings) > 0 && field.Confidence > 0.5 {
			field.Confidence = 0.5
		}
		out = append(out, field)
	}
	return out, nil
}

func clamp(r gjson.Result) float64 {
	if !r.Exists() {
		return 0.6
	}
	c := r.Float()
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006", "January 2, 2006"}

func normalize(rule fieldRule, raw interface{}) (string, []string) {
	var warnings []string
	switch rule.Type {
	case fieldNumber:
		var v float64
		switch n := raw.(type) {
		case float64:
			v = n
		case string:
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(n), "$"), ",", ""), 64)
			if err != nil {
				return "", append(warnings, "value is not numeric")
			}
			v = parsed
		default:
			return "", append(warnings, "value is not numeric")
		}
		if rule.Min != nil && v < *rule.Min {
			warnings = append(warnings, fmt.Sprintf("value below minimum %g", *rule.Min))
		}
		if rule.Max != nil && v > *rule.Max {
			warnings = append(warnings, fmt.Sprintf("value above maximum %g", *rule.Max))
		}
		return strconv.FormatFloat(v, 'f', -1, 64), warnings

	case fieldDate:
		s, ok := raw.(string)
		if !ok {
			return "", append(warnings, "value is not a date")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return t.Format("2006-01-02"), warnings
			}
		}
		return "", append(warnings, "unparseable date")

	default:
		s, ok := raw.(string)
		if !ok {
			s = fmt.Sprintf("%v", raw)
		}
		s = strings.TrimSpace(s)
		if len(rule.Enum) > 0 {
			lowered := strings.ToLower(strings.ReplaceAll(s, " ", "_"))
			for _, allowed := range rule.Enum {
				if lowered == allowed {
					return lowered, warnings
				}
			}
			return s, append(warnings, fmt.Sprintf("value %q not in %s", s, strings.Join(rule.Enum, "/")))
		}
		return s, warnings
	}
}
