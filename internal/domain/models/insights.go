package models

import "time"

// Insights represents a consolidated view of the analytics for one company.
// Note: no transport (http) concerns here beyond json names.
type Insights struct {
	CompanyID       string            `json:"company_id"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Samples         int               `json:"samples"`
	Trend           TrendModel        `json:"trend"`
	Forecasts       []Forecast        `json:"forecasts"`
	Anomalies       []Anomaly         `json:"anomalies"`
	Recommendations RecommendationSet `json:"recommendations"`
	Metrics         *FootprintMetrics `json:"metrics,omitempty"`
	Errors          map[string]string `json:"errors,omitempty"`
}
