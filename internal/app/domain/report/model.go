// Package report models the financial report payloads built per project.
package report

// Assumptions are the run parameters for a projection, supplied with the
// report request.
type Assumptions struct {
	Units              int     `json:"units"`
	TotalRentableSF    float64 `json:"total_rentable_sf"`
	MarketRentPSF      float64 `json:"market_rent_psf"` // annual $/SF for vacant space
	VacancyPct         float64 `json:"vacancy_pct"`     // economic vacancy + collection loss
	RentGrowthSetID    string  `json:"rent_growth_set_id,omitempty"`
	ExpenseGrowthSetID string  `json:"expense_growth_set_id,omitempty"`
	ExitCapRate        float64 `json:"exit_cap_rate"` // percent
	SellingCostPct     float64 `json:"selling_cost_pct"`
	DiscountRate       float64 `json:"discount_rate"` // percent, for NPV and DCF
}

// CashFlowYear is one annual period of the projection.
type CashFlowYear struct {
	Year                 int     `json:"year"` // 1-based from analysis start
	LeaseRevenue         float64 `json:"lease_revenue"`
	MarketRevenue        float64 `json:"market_revenue"`
	GrossRevenue         float64 `json:"gross_revenue"`
	VacancyLoss          float64 `json:"vacancy_loss"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"`
	OperatingExpenses    float64 `json:"operating_expenses"`
	NOI                  float64 `json:"noi"`
	CapitalCosts         float64 `json:"capital_costs"`
	NetCashFlow          float64 `json:"net_cash_flow"`
	Cumulative           float64 `json:"cumulative"`
}

// CashFlow is the full annual projection for a project.
type CashFlow struct {
	ProjectID   string         `json:"project_id"`
	HoldYears   int            `json:"hold_years"`
	BudgetTotal float64        `json:"budget_total"`
	Years       []CashFlowYear `json:"years"`
}

// Returns carries the return metrics computed on the net cash-flow series.
type Returns struct {
	ProjectID      string    `json:"project_id"`
	Flows          []float64 `json:"flows"` // year 0 outlay through exit year
	TerminalValue  float64   `json:"terminal_value"`
	IRRPct         *float64  `json:"irr_pct,omitempty"` // nil when no root exists
	NPV            float64   `json:"npv"`
	EquityMultiple float64   `json:"equity_multiple"`
	CashOnCash     []float64 `json:"cash_on_cash"` // percent by year
}

// Valuation carries the value conclusions for a project.
type Valuation struct {
	ProjectID      string  `json:"project_id"`
	StabilizedNOI  float64 `json:"stabilized_noi"`
	ExitCapRate    float64 `json:"exit_cap_rate"`
	DirectCapValue float64 `json:"direct_cap_value"`
	DCFValue       float64 `json:"dcf_value"`
}
