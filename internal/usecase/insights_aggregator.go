package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	domsvc "EcoTrack/internal/domain/service"
	"EcoTrack/internal/services/features"
	applogger "EcoTrack/pkg/logger"
)

const defaultHistoryMonths = 24

// InsightsAggregator combines the stored history of a company with the
// analytics engine and the recommendation adapter.
type InsightsAggregator struct {
	store       domrepo.EmissionsStore
	analyzer    domsvc.Analyzer
	recommender domsvc.RecommendationProvider
	publisher   domrepo.AlertPublisher
	metrics     domrepo.Metrics
	l           *applogger.Logger
	timeout     time.Duration
	now         func() time.Time
}

func NewInsightsAggregator(
	store domrepo.EmissionsStore,
	analyzer domsvc.Analyzer,
	recommender domsvc.RecommendationProvider,
	publisher domrepo.AlertPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	timeout time.Duration,
) *InsightsAggregator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &InsightsAggregator{
		store:       store,
		analyzer:    analyzer,
		recommender: recommender,
		publisher:   publisher,
		metrics:     metrics,
		l:           l,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Insights builds the consolidated view for companyID over the last `months`
// calendar months. A missing company yields domrepo.ErrNotFound; a failed
// history read is reported in Insights.Errors and analysed as an empty series.
func (uc *InsightsAggregator) Insights(ctx context.Context, companyID string, months int) (*models.Insights, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, fmt.Errorf("company id required")
	}
	if months <= 0 {
		months = defaultHistoryMonths
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	profile, err := uc.store.GetProfile(ctx, companyID)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNotFound) {
			uc.metrics.RecordError("store_profile")
		}
		return nil, err
	}

	now := uc.now().UTC()
	res := &models.Insights{
		CompanyID:   companyID,
		GeneratedAt: now,
		Errors:      map[string]string{},
	}

	samples, err := uc.store.GetMonthlySamples(ctx, companyID, months, now)
	if err != nil {
		uc.metrics.RecordError("store_samples")
		uc.l.Warn("insights history unavailable",
			applogger.String("company_id", companyID),
			applogger.Error(err),
		)
		res.Errors["samples"] = err.Error()
		samples = nil
	}
	res.Samples = len(samples)

	var (
		wg       sync.WaitGroup
		analysis models.Analysis
		recs     models.RecommendationSet
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		analysis = uc.analyzer.Analyze(samples)
	}()
	go func() {
		defer wg.Done()
		recs = uc.recommender.GetRecommendations(ctx, profile)
	}()
	wg.Wait()

	metrics := features.Compute(profile)
	res.Trend = analysis.Trend
	res.Forecasts = analysis.Forecasts
	res.Anomalies = analysis.Anomalies
	res.Recommendations = recs
	res.Metrics = &metrics

	for _, a := range res.Anomalies {
		uc.metrics.RecordAnomaly(string(a.Severity))
	}
	if len(res.Anomalies) > 0 {
		uc.publishAlert(ctx, companyID, now, res.Anomalies)
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	uc.metrics.RecordLatency("insights", time.Since(start).Seconds())
	return res, nil
}

// Analyze runs the engine on caller-supplied samples; input order is kept.
func (uc *InsightsAggregator) Analyze(samples []models.Sample, horizons ...int) models.Analysis {
	start := time.Now()
	out := uc.analyzer.Analyze(samples, horizons...)
	for _, a := range out.Anomalies {
		uc.metrics.RecordAnomaly(string(a.Severity))
	}
	uc.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	return out
}

// SectorAverages passes through to the store.
func (uc *InsightsAggregator) SectorAverages(ctx context.Context) ([]models.SectorAverage, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	out, err := uc.store.SectorAverages(ctx)
	if err != nil {
		uc.metrics.RecordError("store_sectors")
		return nil, err
	}
	return out, nil
}

// Footprint loads a profile and derives its ratios.
func (uc *InsightsAggregator) Footprint(ctx context.Context, companyID string) (*models.Footprint, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	p, err := uc.store.GetProfile(ctx, companyID)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNotFound) {
			uc.metrics.RecordError("store_profile")
		}
		return nil, err
	}
	return &models.Footprint{Profile: p, Metrics: features.Compute(p)}, nil
}

// Recommendations never fails; see RecommendationProvider.
func (uc *InsightsAggregator) Recommendations(ctx context.Context, p models.CompanyProfile) models.RecommendationSet {
	return uc.recommender.GetRecommendations(ctx, p)
}

func (uc *InsightsAggregator) publishAlert(ctx context.Context, companyID string, at time.Time, anomalies []models.Anomaly) {
	if uc.publisher == nil {
		return
	}
	err := uc.publisher.PublishAnomalies(ctx, models.AnomalyAlert{
		CompanyID:  companyID,
		DetectedAt: at,
		Anomalies:  anomalies,
	})
	if err != nil {
		uc.metrics.RecordError("alert_publish")
		uc.l.Warn("anomaly alert not published",
			applogger.String("company_id", companyID),
			applogger.Int("anomalies", len(anomalies)),
			applogger.Error(err),
		)
	}
}
