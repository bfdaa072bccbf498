package analytics

import (
	"time"

	"EcoTrack/internal/domain/models"
)

func monthlySeries(values ...float64) []models.Sample {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Sample, len(values))
	for i, v := range values {
		out[i] = models.Sample{Timestamp: base.AddDate(0, i, 0), Emissions: v}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
