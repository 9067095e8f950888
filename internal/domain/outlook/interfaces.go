package outlook

import (
	"context"
	"time"

	"github.com/yanqian/tempcast/internal/domain/forecast"
)

// HistoryClient supplies daily average temperatures for an inclusive date range.
type HistoryClient interface {
	Fetch(ctx context.Context, loc Location, start, end time.Time) (forecast.Series, error)
}

// ConditionsClient supplies today's observed weather.
type ConditionsClient interface {
	Current(ctx context.Context, loc Location) (Conditions, error)
}

// Narrator speaks or relays a line of forecast text.
type Narrator interface {
	Narrate(ctx context.Context, text string) error
}

// SeriesCache keeps fetched history windows.
type SeriesCache interface {
	Get(ctx context.Context, key string) (forecast.Series, bool, error)
	Set(ctx context.Context, key string, series forecast.Series, ttl time.Duration) error
}

// ReportRepository persists generated reports.
type ReportRepository interface {
	Save(ctx context.Context, report Report) error
	Get(ctx context.Context, id string) (Report, bool, error)
	Latest(ctx context.Context, location string) (Report, bool, error)
	List(ctx context.Context, limit int) ([]Report, error)
}

// CurveArchive stores exported chart data and returns the stored key.
type CurveArchive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
