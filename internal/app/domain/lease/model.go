package lease

import "time"

// RecoveryType describes how operating expenses pass through to the tenant.
type RecoveryType string

const (
	RecoveryNNN           RecoveryType = "nnn"
	RecoveryGross         RecoveryType = "gross"
	RecoveryModifiedGross RecoveryType = "modified_gross"
)

// Status tracks a lease through its lifecycle.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusExpired    Status = "expired"
	StatusTerminated Status = "terminated"
)

// ValidRecoveryType reports whether rt is a known recovery structure.
func ValidRecoveryType(rt RecoveryType) bool {
	switch rt {
	case RecoveryNNN, RecoveryGross, RecoveryModifiedGross:
		return true
	}
	return false
}

// Lease is a tenant lease under administration for a project.
type Lease struct {
	ID                string       `json:"id"`
	ProjectID         string       `json:"project_id"`
	TenantName        string       `json:"tenant_name"`
	Suite             string       `json:"suite,omitempty"`
	RentableSF        float64      `json:"rentable_sf"`
	Commencement      time.Time    `json:"commencement"`
	Expiration        time.Time    `json:"expiration"`
	BaseRentPSF       float64      `json:"base_rent_psf"` // annual $ per rentable SF
	EscalationPct     float64      `json:"escalation_pct"`
	RecoveryType      RecoveryType `json:"recovery_type"`
	FreeRentMonths    int          `json:"free_rent_months"`
	Status            Status       `json:"status"`
	TerminationDate   *time.Time   `json:"termination_date,omitempty"`
	TerminationReason string       `json:"termination_reason,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// MonthlyRent is one month of the lease revenue schedule.
type MonthlyRent struct {
	Period int       `json:"period"` // 1-based month from commencement
	Month  time.Time `json:"month"`
	Amount float64   `json:"amount"`
	Free   bool      `json:"free,omitempty"`
}

// TermMonths returns the number of whole months between commencement and
// expiration.
func (l Lease) TermMonths() int {
	if l.Expiration.Before(l.Commencement) {
		return 0
	}
	years := l.Expiration.Year() - l.Commencement.Year()
	months := int(l.Expiration.Month()) - int(l.Commencement.Month())
	return years*12 + months
}

// Schedule returns the monthly base rent schedule for the lease term.
// Escalation compounds on each anniversary of commencement; free-rent months
// zero out the earliest periods.
func (l Lease) Schedule() []MonthlyRent {
	term := l.TermMonths()
	if term <= 0 || l.RentableSF <= 0 {
		return nil
	}

	monthly := l.BaseRentPSF * l.RentableSF / 12
	out := make([]MonthlyRent, 0, term)
	for m := 0; m < term; m++ {
		yearIndex := m / 12
		amount := monthly
		for i := 0; i < yearIndex; i++ {
			amount *= 1 + l.EscalationPct/100
		}
		entry := MonthlyRent{
			Period: m + 1,
			Month:  l.Commencement.AddDate(0, m, 0),
			Amount: amount,
		}
		if m < l.FreeRentMonths {
			entry.Amount = 0
			entry.Free = true
		}
		out = append(out, entry)
	}
	return out
}

// AnnualRent returns total scheduled rent for the 1-based lease year,
// ignoring free rent.
func (l Lease) AnnualRent(year int) float64 {
	if year < 1 || l.RentableSF <= 0 {
		return 0
	}
	annual := l.BaseRentPSF * l.RentableSF
	for i := 1; i < year; i++ {
		annual *= 1 + l.EscalationPct/100
	}
	return annual
}
