// Package document models ingested files and their AI extraction results.
package document

import "time"

// Kind classifies what a document contains, which selects the extraction
// prompt and field mapping.
type Kind string

const (
	KindLease            Kind = "lease"
	KindRentRoll         Kind = "rent_roll"
	KindExpenseStatement Kind = "expense_statement"
	KindOther            Kind = "other"
)

// ValidKind reports whether k is a known document kind.
func ValidKind(k Kind) bool {
	switch k {
	case KindLease, KindRentRoll, KindExpenseStatement, KindOther:
		return true
	}
	return false
}

// Status is the document's position in the extraction lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusExtracted  Status = "extracted"
	StatusFailed     Status = "failed"
)

// Document is an ingested file registered with the DMS.
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id,omitempty"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	ByteSize    int64     `json:"byte_size"`
	SHA256      string    `json:"sha256"`
	StorageKey  string    `json:"storage_key"`
	Kind        Kind      `json:"kind"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExtractedField is one field pulled from a document by the extraction
// pipeline.
type ExtractedField struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	FieldKey   string    `json:"field_key"`
	RawValue   string    `json:"raw_value"`
	TypedValue string    `json:"typed_value,omitempty"` // normalized representation
	Confidence float64   `json:"confidence"`
	Warnings   []string  `json:"warnings,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Extraction bundles a document's extracted fields with aggregate quality
// measures.
type Extraction struct {
	DocumentID    string           `json:"document_id"`
	Fields        []ExtractedField `json:"fields"`
	MinConfidence float64          `json:"min_confidence"`
	WarningCount  int              `json:"warning_count"`
}
