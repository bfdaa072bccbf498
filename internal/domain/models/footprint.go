package models

import "time"

type Sector string

const (
	SectorTechnology     Sector = "technology"
	SectorManufacturing  Sector = "manufacturing"
	SectorRetail         Sector = "retail"
	SectorFinance        Sector = "finance"
	SectorEnergy         Sector = "energy"
	SectorTransportation Sector = "transportation"
	SectorOther          Sector = "other"
)

type Compliance struct {
	CSRD bool `json:"csrd"`
	TCFD bool `json:"tcfd"`
	GDPR bool `json:"gdpr"`
}

// CompanyProfile is the carbon footprint summary of one company.
// Emissions are in tonnes CO2, percentages in 0..100.
type CompanyProfile struct {
	CompanyID        string     `json:"company_id" validate:"required"`
	CompanyName      string     `json:"company_name" validate:"required"`
	Sector           Sector     `json:"sector" validate:"required,oneof=technology manufacturing retail finance energy transportation other"`
	TotalEmissions   float64    `json:"total_emissions" validate:"gte=0"`
	Scope1           float64    `json:"scope1" validate:"gte=0"`
	Scope2           float64    `json:"scope2" validate:"gte=0"`
	Scope3           float64    `json:"scope3" validate:"gte=0"`
	ReductionTarget  float64    `json:"reduction_target" validate:"gte=0,lte=100"`
	CurrentReduction float64    `json:"current_reduction" validate:"gte=0"`
	Employees        int        `json:"employees" validate:"gte=1"`
	Revenue          float64    `json:"revenue" validate:"gte=0"`
	Compliance       Compliance `json:"compliance"`
	LastUpdated      time.Time  `json:"last_updated"`
}

// FootprintMetrics are ratios derived from a CompanyProfile.
type FootprintMetrics struct {
	CarbonIntensity float64    `json:"carbon_intensity"` // tonnes per unit of revenue
	PerEmployee     float64    `json:"per_employee"`
	ScopeShares     [3]float64 `json:"scope_shares"`
	ReductionGap    float64    `json:"reduction_gap"`
}

type SectorAverage struct {
	Sector       Sector  `json:"sector"`
	AvgEmissions float64 `json:"avg_emissions"`
	AvgReduction float64 `json:"avg_reduction"`
	Count        uint64  `json:"count"`
}

type Footprint struct {
	Profile CompanyProfile   `json:"profile"`
	Metrics FootprintMetrics `json:"metrics"`
}
