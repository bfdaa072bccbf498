package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	icache "EcoTrack/internal/service/cache"
	"EcoTrack/internal/service/ratelimit"
	"EcoTrack/internal/services/analytics"
	xhttp "EcoTrack/pkg/http"
)

type fakeService struct {
	insightsCalls int
	months        int
	insightsErr   error
}

func (f *fakeService) Insights(_ context.Context, id string, months int) (*models.Insights, error) {
	f.insightsCalls++
	f.months = months
	if f.insightsErr != nil {
		return nil, f.insightsErr
	}
	if id != "acme" {
		return nil, domrepo.ErrNotFound
	}
	return &models.Insights{CompanyID: id, Samples: 3}, nil
}

func (f *fakeService) Analyze(samples []models.Sample, horizons ...int) models.Analysis {
	return analytics.NewEngine(analytics.DefaultDetectorConfig()).Analyze(samples, horizons...)
}

func (f *fakeService) Footprint(_ context.Context, id string) (*models.Footprint, error) {
	if id != "acme" {
		return nil, domrepo.ErrNotFound
	}
	return &models.Footprint{Profile: models.CompanyProfile{CompanyID: id}, Metrics: models.FootprintMetrics{PerEmployee: 10}}, nil
}

func (f *fakeService) Recommendations(context.Context, models.CompanyProfile) models.RecommendationSet {
	return models.RecommendationSet{Source: models.SourceFallback, Data: []models.Recommendation{{ID: "rec_001"}}}
}

func (f *fakeService) SectorAverages(context.Context) ([]models.SectorAverage, error) {
	return []models.SectorAverage{{Sector: models.SectorEnergy, AvgEmissions: 5000, Count: 2}}, nil
}

func newTestEcho(h *FootprintHandler) *echo.Echo {
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dest != nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}

func TestFootprint(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))

	rec := do(e, http.MethodGet, "/api/footprint/acme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fp models.Footprint
	decode(t, rec, &fp)
	assert.Equal(t, "acme", fp.Profile.CompanyID)
	assert.Equal(t, 10.0, fp.Metrics.PerEmployee)

	rec = do(e, http.MethodGet, "/api/footprint/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")
}

func TestInsights_DefaultsAndValidation(t *testing.T) {
	svc := &fakeService{}
	e := newTestEcho(NewFootprintHandler(nil, svc))

	rec := do(e, http.MethodGet, "/api/insights?company_id=acme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24, svc.months)

	rec = do(e, http.MethodGet, "/api/insights", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var verrs []xhttp.ValidationError
	decode(t, rec, &verrs)
	require.NotEmpty(t, verrs)
	assert.Equal(t, "company_id", verrs[0].Field)

	rec = do(e, http.MethodGet, "/api/insights?company_id=acme&months=999", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsights_CacheReadThrough(t *testing.T) {
	svc := &fakeService{}
	h := NewFootprintHandler(nil, svc)
	c := icache.NewTTLCache()
	h.SetCache(c, time.Minute)
	e := newTestEcho(h)

	for i := 0; i < 3; i++ {
		rec := do(e, http.MethodGet, "/api/insights?company_id=acme&months=12", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var ins models.Insights
		decode(t, rec, &ins)
		assert.Equal(t, "acme", ins.CompanyID)
	}
	assert.Equal(t, 1, svc.insightsCalls)
	assert.Equal(t, 1, c.Len())
}

func TestInsights_Errors(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))
	rec := do(e, http.MethodGet, "/api/insights?company_id=ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e = newTestEcho(NewFootprintHandler(nil, &fakeService{insightsErr: errors.New("boom")}))
	rec = do(e, http.MethodGet, "/api/insights?company_id=acme", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_INTERNAL")

	e = newTestEcho(NewFootprintHandler(nil, &fakeService{insightsErr: context.DeadlineExceeded}))
	rec = do(e, http.MethodGet, "/api/insights?company_id=acme", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyze(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))

	body := `{"samples":[
		{"date":"2024-01","emissions":10},{"date":"2024-02","emissions":12},
		{"date":"2024-03","emissions":11},{"date":"2024-04","emissions":13},
		{"date":"2024-05","emissions":12},{"date":"2024-06","emissions":10},
		{"date":"2024-07","emissions":11},{"date":"2024-08","emissions":12},
		{"date":"2024-09","emissions":13},{"date":"2024-10-01","emissions":30}]}`
	rec := do(e, http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out models.Analysis
	decode(t, rec, &out)
	assert.Len(t, out.Forecasts, 3)
	require.Len(t, out.Anomalies, 1)
	assert.Equal(t, models.SeverityMedium, out.Anomalies[0].Severity)
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), out.Anomalies[0].SampleDate)
}

func TestAnalyze_CustomHorizonsAndBadInput(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))

	rec := do(e, http.MethodPost, "/api/analyze", `{"samples":[{"date":"2024-01","emissions":5}],"horizons":[6]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out models.Analysis
	decode(t, rec, &out)
	require.Len(t, out.Forecasts, 1)
	assert.Equal(t, 6, out.Forecasts[0].HorizonMonths)

	rec = do(e, http.MethodPost, "/api/analyze", `{"samples":[{"date":"last tuesday","emissions":5}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "samples[0].date")

	rec = do(e, http.MethodPost, "/api/analyze", `{"samples":[{"date":"2024-01","emissions":-5}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_RateLimited(t *testing.T) {
	h := NewFootprintHandler(nil, &fakeService{})
	h.SetRateRules(RateRules{Analyze: ratelimit.PerSecond(1)})
	e := newTestEcho(h)

	body := `{"samples":[{"date":"2024-01","emissions":5}]}`
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/analyze", body).Code)
	rec := do(e, http.MethodPost, "/api/analyze", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
}

func TestRecommendations(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))

	body := `{"company_id":"acme","company_name":"Acme","sector":"retail","total_emissions":100,
		"scope1":50,"scope2":30,"scope3":20,"reduction_target":20,"current_reduction":5,"employees":10,"revenue":1000}`
	rec := do(e, http.MethodPost, "/api/recommendations", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var set models.RecommendationSet
	decode(t, rec, &set)
	assert.Equal(t, models.SourceFallback, set.Source)
	assert.NotEmpty(t, set.Data)

	rec = do(e, http.MethodPost, "/api/recommendations", `{"company_id":"acme","sector":"spaceflight","employees":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSectorAverages(t *testing.T) {
	e := newTestEcho(NewFootprintHandler(nil, &fakeService{}))
	rec := do(e, http.MethodGet, "/api/sectors/averages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Rows  []models.SectorAverage `json:"rows"`
		Total int64                  `json:"total"`
	}
	decode(t, rec, &list)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, models.SectorEnergy, list.Rows[0].Sector)
}

func TestRootAndHealth(t *testing.T) {
	h := NewFootprintHandler(nil, &fakeService{})
	h.AddHealthCheck("cache", func(context.Context) error { return nil })
	e := newTestEcho(h)

	rec := do(e, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), Version)

	rec = do(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, rec, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["cache"])

	h.AddHealthCheck("clickhouse", func(context.Context) error { return errors.New("connection refused") })
	rec = do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	decode(t, rec, &health)
	assert.Equal(t, "degraded", health.Status)
	assert.Contains(t, health.Checks["clickhouse"], "connection refused")
}

func TestToSamples(t *testing.T) {
	got, verrs := toSamples([]models.SampleInput{
		{Date: "2024-01", Emissions: 1},
		{Date: "2024-02-15", Emissions: 2},
		{Date: "2024-03-01T10:00:00Z", Emissions: 3},
		{Date: "03/2024", Emissions: 4},
	})
	require.Len(t, verrs, 1)
	assert.Equal(t, "samples[3].date", verrs[0].Field)
	require.Len(t, got, 3)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].Timestamp)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), got[1].Timestamp)
	assert.Equal(t, 3.0, got[2].Emissions)
}
