package usecase

import (
	"context"
	"sync"
	"time"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
)

type fakeStore struct {
	mu        sync.Mutex
	profiles  map[string]models.CompanyProfile
	samples   map[string][]models.Sample
	samplesEr error
	listErr   error
	stored    []models.Reading
	storeErr  error
	gotMonths int
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[string]models.CompanyProfile{}, samples: map[string][]models.Sample{}}
}

func (s *fakeStore) GetProfile(_ context.Context, id string) (models.CompanyProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.CompanyProfile{}, domrepo.ErrNotFound
	}
	return p, nil
}

func (s *fakeStore) ListCompanyIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeStore) GetMonthlySamples(_ context.Context, id string, months int, _ time.Time) ([]models.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotMonths = months
	if s.samplesEr != nil {
		return nil, s.samplesEr
	}
	return s.samples[id], nil
}

func (s *fakeStore) SectorAverages(context.Context) ([]models.SectorAverage, error) {
	return []models.SectorAverage{{Sector: models.SectorRetail, AvgEmissions: 10, Count: 1}}, nil
}

func (s *fakeStore) StoreReadings(_ context.Context, rs []models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = append(s.stored, rs...)
	return nil
}

func (s *fakeStore) Health(context.Context) error { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	alerts []models.AnomalyAlert
	err    error
}

func (p *fakePublisher) PublishAnomalies(_ context.Context, a models.AnomalyAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.alerts = append(p.alerts, a)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeRecommender struct{}

func (fakeRecommender) GetRecommendations(context.Context, models.CompanyProfile) models.RecommendationSet {
	return models.RecommendationSet{
		Source: models.SourceFallback,
		Data:   []models.Recommendation{{ID: "rec_001", Title: "LED retrofit", Impact: models.LevelLow, Cost: models.LevelLow}},
	}
}

type fakeMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	anomalies map[string]int
	ingested  map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: map[string]int{}, anomalies: map[string]int{}, ingested: map[string]int{}}
}

func (m *fakeMetrics) RecordReadingIngested(source string) {
	m.mu.Lock()
	m.ingested[source]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordAnomaly(severity string) {
	m.mu.Lock()
	m.anomalies[severity]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRecommendationSource(string) {}

func monthly(values ...float64) []models.Sample {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Sample, len(values))
	for i, v := range values {
		out[i] = models.Sample{Timestamp: start.AddDate(0, i, 0), Emissions: v}
	}
	return out
}

func acmeProfile() models.CompanyProfile {
	return models.CompanyProfile{
		CompanyID:        "acme",
		CompanyName:      "Acme Corp",
		Sector:           models.SectorManufacturing,
		TotalEmissions:   1200,
		Scope1:           600,
		Scope2:           400,
		Scope3:           200,
		ReductionTarget:  40,
		CurrentReduction: 10,
		Employees:        120,
		Revenue:          4_000_000,
	}
}
