package documents

import "github.com/landscape-hq/underwriter/internal/app/domain/document"

// fieldType selects the normalization applied to an extracted value.
type fieldType int

const (
	fieldString fieldType = iota
	fieldNumber
	fieldDate
)

// fieldRule maps one output field to a JSONPath in the model response and
// the validation applied to it.
type fieldRule struct {
	Key      string
	Path     string
	Type     fieldType
	Required bool
	Min      *float64
	Max      *float64
	Enum     []string
}

func limit(v float64) *float64 { return &v }

var leaseRules = []fieldRule{
	{Key: "tenant_name", Path: "$.tenant_name", Type: fieldString, Required: true},
	{Key: "suite", Path: "$.suite", Type: fieldString},
	{Key: "rentable_sf", Path: "$.rentable_sf", Type: fieldNumber, Required: true, Min: limit(1)},
	{Key: "base_rent_psf", Path: "$.base_rent_psf", Type: fieldNumber, Required: true, Min: limit(0), Max: limit(1000)},
	{Key: "escalation_pct", Path: "$.escalation_pct", Type: fieldNumber, Min: limit(0), Max: limit(100)},
	{Key: "free_rent_months", Path: "$.free_rent_months", Type: fieldNumber, Min: limit(0), Max: limit(36)},
	{Key: "commencement", Path: "$.commencement", Type: fieldDate, Required: true},
	{Key: "expiration", Path: "$.expiration", Type: fieldDate, Required: true},
	{Key: "recovery_type", Path: "$.recovery_type", Type: fieldString, Enum: []string{"nnn", "gross", "modified_gross"}},
}

var rentRollRules = []fieldRule{
	{Key: "unit_count", Path: "$.unit_count", Type: fieldNumber, Required: true, Min: limit(1)},
	{Key: "occupied_units", Path: "$.occupied_units", Type: fieldNumber, Min: limit(0)},
	{Key: "avg_unit_sf", Path: "$.avg_unit_sf", Type: fieldNumber, Min: limit(0)},
	{Key: "avg_monthly_rent", Path: "$.avg_monthly_rent", Type: fieldNumber, Min: limit(0)},
	{Key: "total_monthly_rent", Path: "$.total_monthly_rent", Type: fieldNumber, Min: limit(0)},
	{Key: "as_of_date", Path: "$.as_of_date", Type: fieldDate},
}

var expenseRules = []fieldRule{
	{Key: "statement_year", Path: "$.statement_year", Type: fieldNumber, Min: limit(1980), Max: limit(2100)},
	{Key: "real_estate_taxes", Path: "$.real_estate_taxes", Type: fieldNumber, Min: limit(0)},
	{Key: "property_insurance", Path: "$.property_insurance", Type: fieldNumber, Min: limit(0)},
	{Key: "utilities_total", Path: "$.utilities_total", Type: fieldNumber, Min: limit(0)},
	{Key: "payroll_total", Path: "$.payroll_total", Type: fieldNumber, Min: limit(0)},
	{Key: "repairs_maintenance_total", Path: "$.repairs_maintenance_total", Type: fieldNumber, Min: limit(0)},
	{Key: "management_fee", Path: "$.management_fee", Type: fieldNumber, Min: limit(0)},
	{Key: "total_operating_expenses", Path: "$.total_operating_expenses", Type: fieldNumber, Required: true, Min: limit(0)},
}

var otherRules = []fieldRule{
	{Key: "title", Path: "$.title", Type: fieldString, Required: true},
	{Key: "summary", Path: "$.summary", Type: fieldString},
	{Key: "document_date", Path: "$.document_date", Type: fieldDate},
}

func rulesFor(kind document.Kind) []fieldRule {
	switch kind {
	case document.KindLease:
		return leaseRules
	case document.KindRentRoll:
		return rentRollRules
	case document.KindExpenseStatement:
		return expenseRules
	default:
		return otherRules
	}
}
