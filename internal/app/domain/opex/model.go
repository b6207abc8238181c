// Package opex models operating-expense entries and the multifamily field
// taxonomy they key into.
package opex

import "time"

// Basis describes how an amount scales with the property.
type Basis string

const (
	BasisPerUnit Basis = "per_unit"
	BasisPerSF   Basis = "per_sf"
	BasisPctEGI  Basis = "pct_egi"
	BasisFixed   Basis = "fixed"
)

// ValidBasis reports whether b is a known expense basis.
func ValidBasis(b Basis) bool {
	switch b {
	case BasisPerUnit, BasisPerSF, BasisPctEGI, BasisFixed:
		return true
	}
	return false
}

// Entry is one operating-expense line for a project, keyed into the field
// taxonomy. Amounts are annual in the entry's basis.
type Entry struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	FieldKey  string    `json:"field_key"`
	Amount    float64   `json:"amount"`
	Basis     Basis     `json:"basis"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SummaryNode is one node of the rolled-up expense tree returned to callers.
type SummaryNode struct {
	Key      string        `json:"key"`
	Label    string        `json:"label"`
	Level    int           `json:"level"`
	Amount   float64       `json:"amount"` // annualized total for this node
	Direct   bool          `json:"direct"` // amount entered directly on a leaf
	Children []SummaryNode `json:"children,omitempty"`
}

// Summary is the project-level expense rollup.
type Summary struct {
	ProjectID    string        `json:"project_id"`
	Total        float64       `json:"total"`
	TotalPerUnit float64       `json:"total_per_unit,omitempty"`
	TotalPerSF   float64       `json:"total_per_sf,omitempty"`
	Tree         []SummaryNode `json:"tree"`
}
