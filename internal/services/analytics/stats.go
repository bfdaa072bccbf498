// Package analytics implements the emissions trend and anomaly engine.
// All functions are pure: they read the caller's samples and return fresh values.
package analytics

import (
	"math"

	"EcoTrack/internal/domain/models"
)

// Mean returns the arithmetic mean of the emissions, or 0 for an empty series.
func Mean(samples []models.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.Emissions
	}
	return sum / float64(len(samples))
}

// PopulationStdDev returns sqrt(Σ(y-mean)²/N). Series shorter than 2 yield 0.
func PopulationStdDev(samples []models.Sample, mean float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, s := range samples {
		d := s.Emissions - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
