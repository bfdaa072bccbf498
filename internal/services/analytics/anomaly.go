package analytics

import (
	"fmt"
	"math"

	"EcoTrack/internal/domain/models"
)

// DetectorConfig holds the z-score thresholds for anomaly flagging.
type DetectorConfig struct {
	// DetectThreshold: samples with z strictly above it are anomalies.
	DetectThreshold float64
	// HighThreshold: anomalies with z strictly above it are high severity.
	HighThreshold float64
}

// DefaultDetectorConfig returns the 2σ / 3σ thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		DetectThreshold: 2.0,
		HighThreshold:   3.0,
	}
}

// DetectAnomalies flags samples using the default thresholds.
func DetectAnomalies(samples []models.Sample) []models.Anomaly {
	return DefaultDetectorConfig().Detect(samples)
}

// Detect flags samples whose |y-mean|/σ exceeds DetectThreshold, using the
// population standard deviation. The result keeps input order and is empty
// (never nil) when σ is zero or the series has fewer than two samples.
func (c DetectorConfig) Detect(samples []models.Sample) []models.Anomaly {
	anomalies := make([]models.Anomaly, 0)
	if len(samples) < 2 {
		return anomalies
	}

	mean := Mean(samples)
	stdDev := PopulationStdDev(samples, mean)
	if stdDev == 0 || math.IsNaN(stdDev) {
		return anomalies
	}

	for _, s := range samples {
		z := math.Abs(s.Emissions-mean) / stdDev
		if z <= c.DetectThreshold {
			continue
		}
		severity := models.SeverityMedium
		if z > c.HighThreshold {
			severity = models.SeverityHigh
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:        models.AnomalyTypeEmissionSpike,
			SampleDate:  s.Timestamp,
			Severity:    severity,
			ZScore:      round2(z),
			Value:       s.Emissions,
			Description: fmt.Sprintf("Emission spike detected: %.2f tonnes CO2 (z-score %.2f)", s.Emissions, z),
		})
	}
	return anomalies
}
