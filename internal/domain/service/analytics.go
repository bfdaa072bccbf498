package service

import (
	"context"

	"EcoTrack/internal/domain/models"
)

// TextGenerator is the optional external capability used to draft recommendations.
// Implementations may fail freely; callers fall back to the built-in catalog.
type TextGenerator interface {
	GenerateRecommendations(ctx context.Context, profile models.CompanyProfile) ([]models.Recommendation, error)
}

// RecommendationProvider always yields a non-empty recommendation set.
type RecommendationProvider interface {
	GetRecommendations(ctx context.Context, profile models.CompanyProfile) models.RecommendationSet
}

// Analyzer runs the trend, forecast and anomaly computations over one series.
type Analyzer interface {
	Analyze(samples []models.Sample, horizons ...int) models.Analysis
}
