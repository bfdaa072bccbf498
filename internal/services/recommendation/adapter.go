// Package recommendation wraps the optional text generator with a timeout and
// a deterministic fallback, so callers always get a usable set.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EcoTrack/internal/domain/models"
	"EcoTrack/internal/domain/repository"
	domsvc "EcoTrack/internal/domain/service"
	applogger "EcoTrack/pkg/logger"
)

const defaultTimeout = 5 * time.Second

type Adapter struct {
	gen     domsvc.TextGenerator // nil means fallback only
	timeout time.Duration
	logger  *applogger.Logger
	metrics repository.Metrics
}

// NewAdapter builds an adapter. gen may be nil; timeout <= 0 uses 5s.
func NewAdapter(gen domsvc.TextGenerator, timeout time.Duration, l *applogger.Logger, m repository.Metrics) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Adapter{gen: gen, timeout: timeout, logger: l, metrics: m}
}

// GetRecommendations makes one bounded attempt at the generator and falls back
// to the catalog on any failure. It never returns an empty set.
func (a *Adapter) GetRecommendations(ctx context.Context, profile models.CompanyProfile) models.RecommendationSet {
	set := a.generate(ctx, profile)
	if a.metrics != nil {
		a.metrics.RecordRecommendationSource(string(set.Source))
	}
	return set
}

type generated struct {
	recs []models.Recommendation
	err  error
}

// errGeneratorPanic marks a generator that panicked instead of returning.
var errGeneratorPanic = errors.New("generator panicked")

func (a *Adapter) generate(ctx context.Context, profile models.CompanyProfile) models.RecommendationSet {
	fallback := models.RecommendationSet{Source: models.SourceFallback, Data: FallbackCatalog()}
	if a.gen == nil {
		return fallback
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	// Buffered so a generator that ignores cctx can still finish and exit.
	done := make(chan generated, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generated{err: fmt.Errorf("%w: %v", errGeneratorPanic, r)}
			}
		}()
		recs, err := a.gen.GenerateRecommendations(cctx, profile)
		done <- generated{recs: recs, err: err}
	}()

	var res generated
	select {
	case res = <-done:
	case <-cctx.Done():
		res = generated{err: cctx.Err()}
	}
	if a.metrics != nil {
		a.metrics.RecordLatency("textgen", time.Since(start).Seconds())
	}

	err := res.err
	if err == nil && len(res.recs) == 0 {
		err = errors.New("generator returned no recommendations")
	}
	if err != nil {
		kind := "textgen"
		switch {
		case errors.Is(err, errGeneratorPanic):
			kind = "textgen_panic"
		case errors.Is(err, context.DeadlineExceeded):
			kind = "textgen_timeout"
		}
		if a.metrics != nil {
			a.metrics.RecordError(kind)
		}
		a.logger.Warn("recommendations: using fallback catalog",
			applogger.String("company_id", profile.CompanyID),
			applogger.String("reason", kind),
			applogger.Error(err),
		)
		return fallback
	}

	return models.RecommendationSet{Source: models.SourceExternal, Data: res.recs}
}

var _ domsvc.RecommendationProvider = (*Adapter)(nil)
