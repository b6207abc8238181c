package marketcomp

import "time"

// Comp is a market comparable property tracked for rent benchmarking.
type Comp struct {
	ID            string    `json:"id"`
	PropertyName  string    `json:"property_name"`
	Market        string    `json:"market"`
	Submarket     string    `json:"submarket,omitempty"`
	PropertyType  string    `json:"property_type"`
	YearBuilt     int       `json:"year_built,omitempty"`
	Units         int       `json:"units"`
	AvgUnitSF     float64   `json:"avg_unit_sf"`
	AskingRent    float64   `json:"asking_rent"` // monthly $ per unit
	OccupancyPct  float64   `json:"occupancy_pct"`
	DistanceMiles float64   `json:"distance_miles,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RentPSF returns the monthly asking rent per square foot, or 0 when unit
// size is unknown.
func (c Comp) RentPSF() float64 {
	if c.AvgUnitSF <= 0 {
		return 0
	}
	return c.AskingRent / c.AvgUnitSF
}

// MarketSummary aggregates comparable statistics for one market.
type MarketSummary struct {
	Market        string  `json:"market"`
	Count         int     `json:"count"`
	MeanRent      float64 `json:"mean_rent"`
	MedianRent    float64 `json:"median_rent"`
	P25Rent       float64 `json:"p25_rent"`
	P75Rent       float64 `json:"p75_rent"`
	MeanRentPSF   float64 `json:"mean_rent_psf"`
	MeanOccupancy float64 `json:"mean_occupancy"`
}
