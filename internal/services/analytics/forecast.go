package analytics

import (
	"math"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
)

// Forecast extrapolates the trend line to horizonMonths and clamps at zero.
func Forecast(model models.TrendModel, horizonMonths int) float64 {
	predicted := model.Slope*float64(horizonMonths) + model.Intercept
	return math.Max(0, predicted)
}

// Forecasts evaluates Forecast at each horizon, in the given order.
func Forecasts(model models.TrendModel, horizons ...int) []models.Forecast {
	out := make([]models.Forecast, 0, len(horizons))
	for _, h := range horizons {
		out = append(out, models.Forecast{
			HorizonMonths:      h,
			PredictedEmissions: Forecast(model, h),
		})
	}
	return out
}

// StandardForecasts returns next month, next quarter and next year.
func StandardForecasts(model models.TrendModel) []models.Forecast {
	return Forecasts(model, domrepo.StandardHorizons()...)
}
