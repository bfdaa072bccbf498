package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/snappy"
)

// SnappyCache compresses values with snappy before handing them to the inner cache.
type SnappyCache struct {
	inner BytesCache
}

func NewSnappyCache(inner BytesCache) *SnappyCache {
	return &SnappyCache{inner: inner}
}

func (s *SnappyCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok, err := s.inner.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	out, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, false, fmt.Errorf("snappy decode %s: %w", key, err)
	}
	return out, true, nil
}

func (s *SnappyCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.inner.SetBytes(ctx, key, snappy.Encode(nil, value), ttl)
}

func (s *SnappyCache) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *SnappyCache) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}
