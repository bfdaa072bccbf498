package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	"EcoTrack/internal/service/cache"
	applogger "EcoTrack/pkg/logger"
)

type insightsSource interface {
	Insights(ctx context.Context, companyID string, months int) (*models.Insights, error)
}

type companyLister interface {
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// InsightsRefresher periodically recomputes insights for every known company
// and writes them to the cache read by the HTTP layer.
type InsightsRefresher struct {
	source  insightsSource
	lister  companyLister
	cache   cache.BytesCache
	metrics domrepo.Metrics
	l       *applogger.Logger

	spec   string
	months int
	ttl    time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewInsightsRefresher(
	source insightsSource,
	lister companyLister,
	c cache.BytesCache,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	spec string,
	months int,
	ttl time.Duration,
) *InsightsRefresher {
	if spec == "" {
		spec = "@every 15m"
	}
	if months <= 0 {
		months = defaultHistoryMonths
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &InsightsRefresher{
		source:  source,
		lister:  lister,
		cache:   c,
		metrics: metrics,
		l:       l,
		spec:    spec,
		months:  months,
		ttl:     ttl,
	}
}

// Start schedules the refresh job. Overlapping runs are skipped.
func (r *InsightsRefresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(r.spec, func() { r.RefreshAll(context.Background()) }); err != nil {
		return fmt.Errorf("schedule insights refresh %q: %w", r.spec, err)
	}
	c.Start()
	r.cron = c
	r.running = true
	r.l.Info("insights refresher started", applogger.String("schedule", r.spec))
	return nil
}

// Stop halts scheduling and waits for an in-flight run or ctx expiry.
func (r *InsightsRefresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	c := r.cron
	r.running = false
	r.mu.Unlock()

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshAll recomputes and caches insights for every company. It returns
// the number of companies refreshed.
func (r *InsightsRefresher) RefreshAll(ctx context.Context) int {
	start := time.Now()
	ids, err := r.lister.ListCompanyIDs(ctx)
	if err != nil {
		r.metrics.RecordError("refresh_list")
		r.l.Error("insights refresh: list companies failed", applogger.Error(err))
		return 0
	}

	ok := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if err := r.RefreshOne(ctx, id); err != nil {
			r.metrics.RecordError("refresh_company")
			r.l.Warn("insights refresh failed",
				applogger.String("company_id", id),
				applogger.Error(err),
			)
			continue
		}
		ok++
	}
	r.metrics.RecordLatency("insights_refresh", time.Since(start).Seconds())
	r.l.Info("insights refresh done",
		applogger.Int("companies", len(ids)),
		applogger.Int("refreshed", ok),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return ok
}

func (r *InsightsRefresher) RefreshOne(ctx context.Context, companyID string) error {
	ins, err := r.source.Insights(ctx, companyID, r.months)
	if err != nil {
		return err
	}
	return cache.SetJSON(ctx, r.cache, cache.InsightsKey(companyID, r.months), ins, r.ttl)
}
