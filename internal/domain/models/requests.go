package models

// Requests for the HTTP endpoints. Defined in domain for consistency and reuse.

type FootprintRequest struct {
	CompanyID string `param:"company_id" validate:"required"`
}

type InsightsRequest struct {
	CompanyID string `query:"company_id" json:"company_id" validate:"required"`
	Months    int    `query:"months" json:"months" default:"24" validate:"gte=1,lte=240"`
}

type SampleInput struct {
	Date      string  `json:"date" validate:"required"`
	Emissions float64 `json:"emissions" validate:"gte=0"`
}

type AnalyzeRequest struct {
	Samples  []SampleInput `json:"samples" validate:"required,dive"`
	Horizons []int         `json:"horizons" validate:"omitempty,max=24,dive,gte=1,lte=120"`
}
