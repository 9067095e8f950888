package seriescache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// ValkeyCache keeps history windows in a Valkey-compatible database.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache constructs a cache whose keys live under prefix.
func NewValkeyCache(client valkey.Client, prefix string) *ValkeyCache {
	if prefix == "" {
		prefix = "tempcast:history"
	}
	return &ValkeyCache{client: client, prefix: prefix}
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (forecast.Series, bool, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.entryKey(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("valkey get: %w", err)
	}
	var series forecast.Series
	if err := json.Unmarshal([]byte(payload), &series); err != nil {
		return nil, false, fmt.Errorf("decode cached series: %w", err)
	}
	return series, true, nil
}

func (c *ValkeyCache) Set(ctx context.Context, key string, series forecast.Series, ttl time.Duration) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return err
	}
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

func (c *ValkeyCache) entryKey(key string) string {
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

var _ outlook.SeriesCache = (*ValkeyCache)(nil)
