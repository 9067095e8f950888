package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/pkg/util"
)

const defaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// Client fetches daily temperature history from the Open-Meteo archive.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an archive client. An empty baseURL targets the public API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns one observation per day in [start, end], averaging the daily max and min.
func (c *Client) Fetch(ctx context.Context, loc outlook.Location, start, end time.Time) (forecast.Series, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	params.Set("start_date", util.FormatDate(start))
	params.Set("end_date", util.FormatDate(end))
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	tz := strings.TrimSpace(loc.Timezone)
	if tz == "" {
		tz = "auto"
	}
	params.Set("timezone", tz)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build archive request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("archive request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode archive response: %w", err)
	}
	if raw.Error {
		return nil, fmt.Errorf("archive api error: %s", raw.Reason)
	}
	return normalizeDaily(raw.Daily)
}

type apiResponse struct {
	Error  bool     `json:"error"`
	Reason string   `json:"reason"`
	Daily  apiDaily `json:"daily"`
}

type apiDaily struct {
	Time []string   `json:"time"`
	Max  []*float64 `json:"temperature_2m_max"`
	Min  []*float64 `json:"temperature_2m_min"`
}

// normalizeDaily pairs the columns by position. Days where the archive has not
// published both extremes yet come back as null and are skipped.
func normalizeDaily(daily apiDaily) (forecast.Series, error) {
	if len(daily.Max) != len(daily.Time) || len(daily.Min) != len(daily.Time) {
		return nil, fmt.Errorf("archive response columns disagree: time=%d max=%d min=%d", len(daily.Time), len(daily.Max), len(daily.Min))
	}
	series := make(forecast.Series, 0, len(daily.Time))
	for i, date := range daily.Time {
		hi, lo := daily.Max[i], daily.Min[i]
		if hi == nil || lo == nil {
			continue
		}
		series = append(series, forecast.Observation{
			Date:        date,
			Temperature: (*hi + *lo) / 2,
		})
	}
	return series, nil
}
