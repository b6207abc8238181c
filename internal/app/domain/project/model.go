package project

import "time"

// Type classifies the asset class under analysis.
type Type string

const (
	TypeMultifamily Type = "multifamily"
	TypeOffice      Type = "office"
	TypeRetail      Type = "retail"
	TypeIndustrial  Type = "industrial"
	TypeMixedUse    Type = "mixed_use"
	TypeLand        Type = "land"
)

// Status tracks a project's position in the underwriting workflow.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// ValidTypes lists the accepted project types.
var ValidTypes = []Type{TypeMultifamily, TypeOffice, TypeRetail, TypeIndustrial, TypeMixedUse, TypeLand}

// ValidType reports whether t is an accepted project type.
func ValidType(t Type) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidStatuses lists the accepted workflow statuses.
var ValidStatuses = []Status{StatusDraft, StatusActive, StatusArchived}

// ValidStatus reports whether s is an accepted workflow status.
func ValidStatus(s Status) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Project is an underwriting engagement for a single asset or development.
type Project struct {
	ID              string     `json:"id"`
	Owner           string     `json:"owner"`
	Name            string     `json:"name"`
	Type            Type       `json:"project_type"`
	Status          Status     `json:"status"`
	Address         string     `json:"address,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	Zip             string     `json:"zip,omitempty"`
	AnalysisStart   time.Time  `json:"analysis_start"`
	HoldPeriodYears int        `json:"hold_period_years"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the project has been soft deleted.
func (p Project) Deleted() bool { return p.DeletedAt != nil }
