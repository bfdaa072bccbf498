package analytics

import (
	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	domsvc "EcoTrack/internal/domain/service"
)

// Engine bundles trend fitting, forecasting and anomaly detection behind
// fixed thresholds. The zero value is not useful; use NewEngine.
// An Engine holds no mutable state and is safe for concurrent use.
type Engine struct {
	detector DetectorConfig
}

func NewEngine(cfg DetectorConfig) Engine {
	def := DefaultDetectorConfig()
	if cfg.DetectThreshold <= 0 {
		cfg.DetectThreshold = def.DetectThreshold
	}
	if cfg.HighThreshold < cfg.DetectThreshold {
		cfg.HighThreshold = def.HighThreshold
		if cfg.HighThreshold < cfg.DetectThreshold {
			cfg.HighThreshold = cfg.DetectThreshold
		}
	}
	return Engine{detector: cfg}
}

// Config returns the thresholds in effect.
func (e Engine) Config() DetectorConfig { return e.detector }

// Analyze fits the trend, forecasts each horizon (the standard 1/3/12 months
// when none are given) and flags anomalies.
func (e Engine) Analyze(samples []models.Sample, horizons ...int) models.Analysis {
	trend := FitTrend(samples)
	return models.Analysis{
		Trend:     trend,
		Forecasts: Forecasts(trend, domrepo.NormalizeHorizons(horizons)...),
		Anomalies: e.detector.Detect(samples),
	}
}

var _ domsvc.Analyzer = Engine{}
