package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("f"), 0))

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetBytes(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete(ctx, "forever"))
	assert.Equal(t, 0, c.Len())
}

func TestSnappyCache_RoundTripAndCompression(t *testing.T) {
	ctx := context.Background()
	inner := NewTTLCache()
	c := NewSnappyCache(inner)

	payload := bytes.Repeat([]byte(`{"horizon_months":12,"predicted_emissions":1250.5}`), 50)
	require.NoError(t, c.SetBytes(ctx, "k", payload, time.Minute))

	raw, ok, err := inner.GetBytes(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Less(t, len(raw), len(payload))
	decoded, err := snappy.Decode(nil, raw)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	got, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	_, ok, err = c.GetBytes(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSnappyCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	inner := NewTTLCache()
	require.NoError(t, inner.SetBytes(ctx, "k", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 0))

	_, ok, err := NewSnappyCache(inner).GetBytes(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewSnappyCache(NewTTLCache())

	type doc struct {
		CompanyID string  `json:"company_id"`
		Slope     float64 `json:"slope"`
	}
	key := InsightsKey("c-1", 24)
	assert.Equal(t, "ecotrack:insights:c-1:24", key)

	require.NoError(t, SetJSON(ctx, c, key, doc{CompanyID: "c-1", Slope: 2.5}, time.Minute))

	var got doc
	ok, err := GetJSON(ctx, c, key, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, doc{CompanyID: "c-1", Slope: 2.5}, got)

	ok, err = GetJSON(ctx, c, InsightsKey("c-2", 24), &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}
