package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/tempcast/internal/domain/outlook"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ErrMissingAPIKey is returned when no OpenWeatherMap key is configured.
var ErrMissingAPIKey = errors.New("openweather api key not configured")

// Client reads current conditions from OpenWeatherMap.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a current-weather client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Current fetches today's temperature and weather label for loc.
func (c *Client) Current(ctx context.Context, loc outlook.Location) (outlook.Conditions, error) {
	if c.apiKey == "" {
		return outlook.Conditions{}, ErrMissingAPIKey
	}
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	params.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return outlook.Conditions{}, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return outlook.Conditions{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return outlook.Conditions{}, fmt.Errorf("read weather response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return outlook.Conditions{}, fmt.Errorf("weather request error: status=%d body=%s", resp.StatusCode, truncate(body, 512))
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return outlook.Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}

	conditions := outlook.Conditions{
		Temperature: raw.Main.Temp,
		Min:         raw.Main.TempMin,
		Max:         raw.Main.TempMax,
	}
	if len(raw.Weather) > 0 {
		conditions.Description = raw.Weather[0].Description
	}
	return conditions, nil
}

type apiResponse struct {
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n])
	}
	return string(body)
}
