package models

import "time"

// Sample is a single emissions observation for one company, in tonnes CO2.
type Sample struct {
	Timestamp time.Time `json:"date"`
	Emissions float64   `json:"emissions"`
}

// TrendModel is a least-squares line over sample index (not calendar time).
type TrendModel struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Forecast is a point estimate HorizonMonths past the start of the fitted series.
type Forecast struct {
	HorizonMonths      int     `json:"horizon_months"`
	PredictedEmissions float64 `json:"predicted_emissions"`
}

type Severity string

const (
	SeverityLow    Severity = "low" // reserved, never produced by the z-score detector
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const AnomalyTypeEmissionSpike = "emission_spike"

type Anomaly struct {
	Type        string    `json:"type"`
	SampleDate  time.Time `json:"sample_date"`
	Severity    Severity  `json:"severity"`
	ZScore      float64   `json:"z_score"`
	Value       float64   `json:"value"`
	Description string    `json:"description"`
}

// Analysis is the engine output for one series.
type Analysis struct {
	Trend     TrendModel `json:"trend"`
	Forecasts []Forecast `json:"forecasts"`
	Anomalies []Anomaly  `json:"anomalies"`
}

// AnomalyAlert is published when a company's series contains anomalies.
type AnomalyAlert struct {
	CompanyID  string    `json:"company_id"`
	DetectedAt time.Time `json:"detected_at"`
	Anomalies  []Anomaly `json:"anomalies"`
}

// Reading is a raw emissions measurement as ingested from Kafka.
type Reading struct {
	CompanyID string
	Timestamp time.Time
	Emissions float64
	Scope     int    // 1, 2, 3; 0 when unknown
	Source    string // e.g. "meter", "invoice", "manual"
}
