package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	icache "EcoTrack/internal/service/cache"
	"EcoTrack/internal/service/metrics"
	"EcoTrack/internal/service/ratelimit"
	xhttp "EcoTrack/pkg/http"
	xlogger "EcoTrack/pkg/logger"
	xutil "EcoTrack/pkg/util"
)

const Version = "1.0.0"

// InsightsService is what the HTTP layer needs from the usecase layer.
type InsightsService interface {
	Insights(ctx context.Context, companyID string, months int) (*models.Insights, error)
	Analyze(samples []models.Sample, horizons ...int) models.Analysis
	Footprint(ctx context.Context, companyID string) (*models.Footprint, error)
	Recommendations(ctx context.Context, p models.CompanyProfile) models.RecommendationSet
	SectorAverages(ctx context.Context) ([]models.SectorAverage, error)
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error

type RateRules struct {
	Insights   ratelimit.Rule
	Analyze    ratelimit.Rule
	Recommends ratelimit.Rule
}

// FootprintHandler serves the carbon analytics API.
type FootprintHandler struct {
	logger   *xlogger.Logger
	svc      InsightsService
	cache    icache.BytesCache
	cacheTTL time.Duration
	rl       *ratelimit.Limiter
	rules    RateRules
	checks   map[string]HealthCheck
	started  time.Time
	now      func() time.Time
}

func NewFootprintHandler(logger *xlogger.Logger, svc InsightsService) *FootprintHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &FootprintHandler{
		logger:   logger,
		svc:      svc,
		cacheTTL: 15 * time.Minute,
		rl:       ratelimit.New(),
		checks:   map[string]HealthCheck{},
		started:  time.Now(),
		now:      time.Now,
	}
}

// SetCache enables the insights read-through cache.
func (h *FootprintHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

func (h *FootprintHandler) SetRateRules(r RateRules) { h.rules = r }

// AddHealthCheck registers a dependency reported by /health.
func (h *FootprintHandler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *FootprintHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/footprint/:company_id", h.Footprint)
	g.GET("/insights", h.Insights)
	g.POST("/analyze", h.Analyze)
	g.POST("/recommendations", h.Recommendations)
	g.GET("/sectors/averages", h.SectorAverages)
}

func (h *FootprintHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"message":   "EcoTrack carbon analytics API",
		"version":   Version,
		"status":    "running",
		"timestamp": h.now().UTC(),
	})
}

func (h *FootprintHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = "unavailable: " + err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, code, map[string]interface{}{
		"status":         status,
		"uptime_seconds": int64(h.now().Sub(h.started).Seconds()),
		"timestamp":      h.now().UTC(),
		"checks":         checks,
	})
}

func (h *FootprintHandler) Footprint(c echo.Context) error {
	const endpoint = "footprint"
	defer metrics.ObserveSince(endpoint, time.Now())

	req := &models.FootprintRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.svc.Footprint(c.Request().Context(), req.CompanyID)
	if err != nil {
		return h.serviceError(c, endpoint, req.CompanyID, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FootprintHandler) Insights(c echo.Context) error {
	const endpoint = "insights"
	defer metrics.ObserveSince(endpoint, time.Now())

	if !h.allow(c, endpoint, h.rules.Insights) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()
	key := icache.InsightsKey(req.CompanyID, req.Months)
	if h.cache != nil {
		var cached models.Insights
		ok, err := icache.GetJSON(ctx, h.cache, key, &cached)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("insights cache_get_error", xlogger.String("key", key), xlogger.Error(err))
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
			return xhttp.SuccessResponse(c, &cached)
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	res, err := h.svc.Insights(ctx, req.CompanyID, req.Months)
	if err != nil {
		return h.serviceError(c, endpoint, req.CompanyID, err)
	}
	if h.cache != nil {
		if err := icache.SetJSON(ctx, h.cache, key, res, h.cacheTTL); err != nil {
			h.logger.Warn("insights cache_set_error", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *FootprintHandler) Analyze(c echo.Context) error {
	const endpoint = "analyze"
	defer metrics.ObserveSince(endpoint, time.Now())

	if !h.allow(c, endpoint, h.rules.Analyze) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	samples, verrs := toSamples(req.Samples)
	if len(verrs) > 0 {
		metrics.EndpointErrors.WithLabelValues(endpoint, "bad_date").Inc()
		return xhttp.BadRequestResponse(c, verrs)
	}
	return xhttp.SuccessResponse(c, h.svc.Analyze(samples, req.Horizons...))
}

func (h *FootprintHandler) Recommendations(c echo.Context) error {
	const endpoint = "recommendations"
	defer metrics.ObserveSince(endpoint, time.Now())

	if !h.allow(c, endpoint, h.rules.Recommends) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
	}
	req := &models.CompanyProfile{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.svc.Recommendations(c.Request().Context(), *req))
}

func (h *FootprintHandler) SectorAverages(c echo.Context) error {
	const endpoint = "sectors"
	defer metrics.ObserveSince(endpoint, time.Now())

	res, err := h.svc.SectorAverages(c.Request().Context())
	if err != nil {
		return h.serviceError(c, endpoint, "", err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *FootprintHandler) allow(c echo.Context, endpoint string, rule ratelimit.Rule) bool {
	if h.rl.Allow(c.RealIP()+":"+endpoint, rule) {
		return true
	}
	metrics.EndpointErrors.WithLabelValues(endpoint, "rate_limited").Inc()
	h.logger.Warn("rate_limited",
		xlogger.String("endpoint", endpoint),
		xlogger.String("remote", c.RealIP()),
	)
	return false
}

func (h *FootprintHandler) serviceError(c echo.Context, endpoint, companyID string, err error) error {
	if errors.Is(err, domrepo.ErrNotFound) {
		metrics.EndpointErrors.WithLabelValues(endpoint, "not_found").Inc()
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("company %q not found", companyID))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		metrics.EndpointErrors.WithLabelValues(endpoint, "timeout").Inc()
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("upstream timed out").WithError(err))
	}
	metrics.EndpointErrors.WithLabelValues(endpoint, "internal").Inc()
	h.logger.Error(endpoint+" usecase error",
		xlogger.String("company_id", companyID),
		xlogger.Error(err),
	)
	return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to load data").WithError(err))
}

func toSamples(in []models.SampleInput) ([]models.Sample, []xhttp.ValidationError) {
	out := make([]models.Sample, 0, len(in))
	var verrs []xhttp.ValidationError
	for i, s := range in {
		ts, ok := xutil.ParseSampleDate(s.Date)
		if !ok {
			verrs = append(verrs, xhttp.ValidationError{
				Code:    "ERR_DATE",
				Field:   fmt.Sprintf("samples[%d].date", i),
				Message: "date must be YYYY-MM, YYYY-MM-DD or RFC3339",
			})
			continue
		}
		out = append(out, models.Sample{Timestamp: ts, Emissions: s.Emissions})
	}
	return out, verrs
}
