package throttle

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/internal/domain/outlook"
)

// History wraps a HistoryClient with a token bucket.
type History struct {
	client  outlook.HistoryClient
	limiter *rate.Limiter
}

// NewHistory limits client to rps requests per second with the given burst.
// A non-positive rps leaves the client unthrottled.
func NewHistory(client outlook.HistoryClient, rps float64, burst int) *History {
	return &History{client: client, limiter: newLimiter(rps, burst)}
}

// Fetch waits for a token or ctx cancellation before delegating.
func (h *History) Fetch(ctx context.Context, loc outlook.Location, start, end time.Time) (forecast.Series, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return h.client.Fetch(ctx, loc, start, end)
}

// Conditions wraps a ConditionsClient with a token bucket.
type Conditions struct {
	client  outlook.ConditionsClient
	limiter *rate.Limiter
}

// NewConditions limits client to rps requests per second with the given burst.
func NewConditions(client outlook.ConditionsClient, rps float64, burst int) *Conditions {
	return &Conditions{client: client, limiter: newLimiter(rps, burst)}
}

// Current waits for a token or ctx cancellation before delegating.
func (c *Conditions) Current(ctx context.Context, loc outlook.Location) (outlook.Conditions, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return outlook.Conditions{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return c.client.Current(ctx, loc)
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

var (
	_ outlook.HistoryClient    = (*History)(nil)
	_ outlook.ConditionsClient = (*Conditions)(nil)
)
