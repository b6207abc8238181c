// Package benchmark models the central cost and growth-rate library shared
// across projects.
package benchmark

import "time"

// Unit is the measurement basis for a unit-cost benchmark.
type Unit string

const (
	UnitSF      Unit = "sf"
	UnitPerUnit Unit = "unit"
	UnitAcre    Unit = "acre"
	UnitLumpSum Unit = "ls"
)

// ValidUnit reports whether u is a known cost unit.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitSF, UnitPerUnit, UnitAcre, UnitLumpSum:
		return true
	}
	return false
}

// UnitCost is a reusable reference cost stored centrally.
type UnitCost struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	CostCode      string    `json:"cost_code"`
	Description   string    `json:"description"`
	Unit          Unit      `json:"unit"`
	LowValue      float64   `json:"low_value"`
	TypicalValue  float64   `json:"typical_value"`
	HighValue     float64   `json:"high_value"`
	Source        string    `json:"source,omitempty"`
	EffectiveYear int       `json:"effective_year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GrowthKind classifies what a growth-rate set escalates.
type GrowthKind string

const (
	GrowthRent      GrowthKind = "rent"
	GrowthExpense   GrowthKind = "expense"
	GrowthInflation GrowthKind = "inflation"
)

// ValidGrowthKind reports whether k is a known growth category.
func ValidGrowthKind(k GrowthKind) bool {
	switch k {
	case GrowthRent, GrowthExpense, GrowthInflation:
		return true
	}
	return false
}

// OpenEnded is the sentinel thru-period marking a terminal, unbounded step.
const OpenEnded = "E"

// GrowthStep is one contiguous span of annual growth. ThruPeriod is either a
// positive integer (inclusive) or the OpenEnded sentinel on the final step.
type GrowthStep struct {
	ID         string  `json:"id"`
	SetID      string  `json:"set_id"`
	StepOrder  int     `json:"step_order"`
	FromPeriod int     `json:"from_period"`
	ThruPeriod string  `json:"thru_period"`
	AnnualRate float64 `json:"annual_rate"` // percent, e.g. 3 for 3%/yr
}

// GrowthRateSet is a named, ordered sequence of growth steps.
type GrowthRateSet struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Kind      GrowthKind   `json:"kind"`
	Steps     []GrowthStep `json:"steps"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SuggestionStatus tracks the review state of an AI benchmark suggestion.
type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a unit-cost candidate extracted from a source document,
// awaiting reviewer approval before entering the benchmark library.
type Suggestion struct {
	ID              string           `json:"id"`
	DocumentID      string           `json:"document_id,omitempty"`
	Category        string           `json:"category"`
	CostCode        string           `json:"cost_code"`
	Description     string           `json:"description"`
	Unit            Unit             `json:"unit"`
	TypicalValue    float64          `json:"typical_value"`
	Confidence      float64          `json:"confidence"`
	Status          SuggestionStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	BenchmarkID     string           `json:"benchmark_id,omitempty"` // set on approval
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
