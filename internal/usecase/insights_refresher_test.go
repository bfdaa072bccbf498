package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoTrack/internal/domain/models"
	"EcoTrack/internal/service/cache"
	applogger "EcoTrack/pkg/logger"
)

func TestInsightsRefresher_RefreshAll(t *testing.T) {
	store := newFakeStore()
	store.profiles["acme"] = acmeProfile()
	store.samples["acme"] = monthly(100, 110, 120, 300)
	other := acmeProfile()
	other.CompanyID = "globex"
	store.profiles["globex"] = other

	m := newFakeMetrics()
	c := cache.NewTTLCache()
	agg := newAggregator(store, &fakePublisher{}, m)
	r := NewInsightsRefresher(agg, store, c, m, applogger.Nop(), "", 12, time.Minute)

	assert.Equal(t, 2, r.RefreshAll(context.Background()))

	var got models.Insights
	ok, err := cache.GetJSON(context.Background(), c, cache.InsightsKey("acme", 12), &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acme", got.CompanyID)
	assert.Equal(t, 4, got.Samples)

	ok, err = cache.GetJSON(context.Background(), c, cache.InsightsKey("globex", 12), &got)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInsightsRefresher_ListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("boom")
	m := newFakeMetrics()
	r := NewInsightsRefresher(newAggregator(store, &fakePublisher{}, m), store, cache.NewTTLCache(), m, nil, "", 0, 0)

	assert.Zero(t, r.RefreshAll(context.Background()))
	assert.Equal(t, 1, m.errors["refresh_list"])
}

func TestInsightsRefresher_StartStop(t *testing.T) {
	store := newFakeStore()
	m := newFakeMetrics()
	r := NewInsightsRefresher(newAggregator(store, &fakePublisher{}, m), store, cache.NewTTLCache(), m, nil, "@every 1h", 12, time.Minute)

	require.NoError(t, r.Start())
	require.NoError(t, r.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
	assert.NoError(t, r.Stop(ctx))
}

func TestInsightsRefresher_BadSchedule(t *testing.T) {
	store := newFakeStore()
	m := newFakeMetrics()
	r := NewInsightsRefresher(newAggregator(store, &fakePublisher{}, m), store, cache.NewTTLCache(), m, nil, "not a schedule", 12, time.Minute)
	assert.Error(t, r.Start())
}
