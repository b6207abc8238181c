// Package costs models reusable cost templates and per-project budgets
// derived from them.
package costs

import "time"

// TemplateLine is one cost line inside a template. A line may reference a
// unit-cost benchmark it was sourced from.
type TemplateLine struct {
	ID             string  `json:"id"`
	TemplateID     string  `json:"template_id"`
	LineOrder      int     `json:"line_order"`
	Category       string  `json:"category"`
	CostCode       string  `json:"cost_code"`
	Description    string  `json:"description"`
	Unit           string  `json:"unit"`
	Quantity       float64 `json:"quantity"`
	UnitCost       float64 `json:"unit_cost"`
	BenchmarkID    string  `json:"benchmark_id,omitempty"`
	ContingencyPct float64 `json:"contingency_pct"`
}

// Total returns the line total including contingency.
func (l TemplateLine) Total() float64 {
	base := l.Quantity * l.UnitCost
	return base * (1 + l.ContingencyPct/100)
}

// Template is a reusable cost breakdown for a project type.
type Template struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ProjectType string         `json:"project_type"`
	Lines       []TemplateLine `json:"lines"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BudgetLine is a cost line cloned into a specific project's budget.
type BudgetLine struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	TemplateID     string    `json:"template_id,omitempty"`
	LineOrder      int       `json:"line_order"`
	Category       string    `json:"category"`
	CostCode       string    `json:"cost_code"`
	Description    string    `json:"description"`
	Unit           string    `json:"unit"`
	Quantity       float64   `json:"quantity"`
	UnitCost       float64   `json:"unit_cost"`
	ContingencyPct float64   `json:"contingency_pct"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Total returns the line total including contingency.
func (l BudgetLine) Total() float64 {
	base := l.Quantity * l.UnitCost
	return base * (1 + l.ContingencyPct/100)
}

// CategoryTotal is a budget rollup bucket.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// BudgetSummary is the per-project budget rollup.
type BudgetSummary struct {
	ProjectID  string          `json:"project_id"`
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}
