package repository

import (
	"context"
	"errors"
	"time"

	"EcoTrack/internal/domain/models"
)

// ErrNotFound is returned by stores when the requested company does not exist.
var ErrNotFound = errors.New("not found")

// EmissionsStore provides access to company profiles and their emissions history.
type EmissionsStore interface {
	GetProfile(ctx context.Context, companyID string) (models.CompanyProfile, error)
	ListCompanyIDs(ctx context.Context) ([]string, error)
	// GetMonthlySamples returns up to `months` calendar-month totals ending at `until`, oldest first.
	GetMonthlySamples(ctx context.Context, companyID string, months int, until time.Time) ([]models.Sample, error)
	SectorAverages(ctx context.Context) ([]models.SectorAverage, error)
	StoreReadings(ctx context.Context, readings []models.Reading) error
	Health(ctx context.Context) error
}

// AlertPublisher emits anomaly alerts to downstream consumers.
type AlertPublisher interface {
	PublishAnomalies(ctx context.Context, alert models.AnomalyAlert) error
	Close() error
}

type Metrics interface {
	RecordReadingIngested(source string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordAnomaly(severity string)
	RecordRecommendationSource(source string)
}
