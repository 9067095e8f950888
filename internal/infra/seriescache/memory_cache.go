package seriescache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/internal/domain/outlook"
)

type entry struct {
	series    forecast.Series
	expiresAt time.Time
}

// MemoryCache is an in-process history cache for tests and single-node runs.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get returns a copy of the cached series unless it has expired.
func (c *MemoryCache) Get(_ context.Context, key string) (forecast.Series, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append(forecast.Series(nil), e.series...), true, nil
}

// Set stores series; a non-positive ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, series forecast.Series, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry{series: append(forecast.Series(nil), series...), expiresAt: exp}
	c.mu.Unlock()
	return nil
}

var _ outlook.SeriesCache = (*MemoryCache)(nil)
