package analytics

import "EcoTrack/internal/domain/models"

// FitTrend fits emissions ≈ slope*i + intercept by ordinary least squares,
// where i is the 0-based position in the series.
// Fewer than two samples give the zero model; a flat series gives {0, y0} exactly.
func FitTrend(samples []models.Sample) models.TrendModel {
	if len(samples) < 2 {
		return models.TrendModel{}
	}

	first := samples[0].Emissions
	flat := true
	sumY := 0.0
	for _, s := range samples {
		sumY += s.Emissions
		if s.Emissions != first {
			flat = false
		}
	}
	if flat {
		return models.TrendModel{Slope: 0, Intercept: first}
	}

	n := float64(len(samples))
	meanX := (n - 1) / 2
	meanY := sumY / n

	sxy, sxx := 0.0, 0.0
	for i, s := range samples {
		dx := float64(i) - meanX
		sxy += dx * (s.Emissions - meanY)
		sxx += dx * dx
	}

	slope := sxy / sxx
	return models.TrendModel{Slope: slope, Intercept: meanY - slope*meanX}
}
