package recommendation

import "EcoTrack/internal/domain/models"

// FallbackCatalog returns the built-in recommendations served whenever the
// text generator is unavailable. Each call returns a fresh slice.
func FallbackCatalog() []models.Recommendation {
	return []models.Recommendation{
		{
			ID:                        "rec_fallback_001",
			Title:                     "Comprehensive energy audit",
			Impact:                    models.LevelHigh,
			PotentialReductionPercent: 10.0,
			Cost:                      models.LevelMedium,
			Timeframe:                 "3 months",
			ROI:                       2.5,
		},
		{
			ID:                        "rec_fallback_002",
			Title:                     "Staff eco-gesture training",
			Impact:                    models.LevelMedium,
			PotentialReductionPercent: 3.0,
			Cost:                      models.LevelLow,
			Timeframe:                 "1 month",
			ROI:                       4.0,
		},
	}
}
