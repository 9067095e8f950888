package outlook

import (
	"time"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/pkg/metrics"
)

// Location identifies where a forecast is made.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Conditions are the current weather observations for today.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// Request captures the payload accepted by Forecast. Coordinates default to the
// configured location when both are omitted.
type Request struct {
	Location  string   `json:"location"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	Seed      *int64   `json:"seed"`
	Narrate   bool     `json:"narrate"`
}

// PreviewRequest runs the forecasting pipeline over caller supplied history.
type PreviewRequest struct {
	Location  string          `json:"location"`
	History   forecast.Series `json:"history"`
	Condition string          `json:"condition"`
	Seed      *int64          `json:"seed"`
}

// Report is serialized back to API consumers and persisted per run.
type Report struct {
	ID          string                 `json:"id"`
	Location    Location               `json:"location"`
	GeneratedAt time.Time              `json:"generatedAt"`
	WindowStart string                 `json:"windowStart"`
	WindowEnd   string                 `json:"windowEnd"`
	History     forecast.Series        `json:"history"`
	Current     *Conditions            `json:"current,omitempty"`
	Days        []ReportDay            `json:"days"`
	Hourly      []HourlyReading        `json:"hourly"`
	Weekly      forecast.WeeklySummary `json:"weekly"`
	Fit         metrics.FitQuality     `json:"fit"`
	Seed        int64                  `json:"seed"`
	ArchiveKey  string                 `json:"archiveKey,omitempty"`
}

// ReportDay joins a forecast day with its description.
type ReportDay struct {
	Date        string         `json:"date"`
	Index       int            `json:"index"`
	Prediction  float64        `json:"prediction"`
	Lower       float64        `json:"lower"`
	Upper       float64        `json:"upper"`
	Margin      float64        `json:"margin"`
	Tier        forecast.Tier  `json:"tier"`
	Trend       forecast.Trend `json:"trend"`
	Description string         `json:"description"`
}

// HourlyReading is one point of the synthetic curve for the first forecast day.
type HourlyReading struct {
	Hour        string  `json:"hour"`
	Temperature float64 `json:"temperature"`
}

// Config wires runtime knobs for the outlook domain.
type Config struct {
	Location   Location
	WindowDays int
	HourlySeed int64
	CacheTTL   time.Duration
}
