package parcel

import "time"

// Parcel is a legal land parcel attached to a project site.
type Parcel struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id"`
	APN               string    `json:"apn"`
	Acreage           float64   `json:"acreage"`
	Zoning            string    `json:"zoning,omitempty"`
	LandUse           string    `json:"land_use,omitempty"`
	EntitlementStatus string    `json:"entitlement_status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
