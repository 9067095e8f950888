package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/internal/infra/config"
	"github.com/yanqian/tempcast/pkg/authtoken"
	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

func TestRouter_CreateForecastSuccess(t *testing.T) {
	svc := &stubOutlook{
		forecastFn: func(ctx context.Context, req outlook.Request) (outlook.Report, error) {
			require.NotNil(t, req.Latitude)
			require.InDelta(t, 1.35, *req.Latitude, 1e-9)
			return outlook.Report{ID: "r1", Days: []outlook.ReportDay{{Date: "2024-07-08", Prediction: 31.8}}}, nil
		},
	}

	rec := performRequest(http.MethodPost, "/api/v1/forecasts", `{"latitude":1.35,"longitude":103.8}`, nil, newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got outlook.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "r1", got.ID)
	require.InDelta(t, 31.8, got.Days[0].Prediction, 1e-9)
}

func TestRouter_CreateForecastEmptyBodyUsesDefaults(t *testing.T) {
	svc := &stubOutlook{
		forecastFn: func(ctx context.Context, req outlook.Request) (outlook.Report, error) {
			require.Nil(t, req.Latitude)
			return outlook.Report{ID: "r1"}, nil
		},
	}
	rec := performRequest(http.MethodPost, "/api/v1/forecasts", "", nil, newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestRouter_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", apperrors.New(apperrors.CodeInvalidInput, "latitude out of range"), http.StatusBadRequest, "invalid_input"},
		{"insufficient", apperrors.Wrap(forecast.CodeInsufficientData, "need 2", forecast.ErrInsufficientData), http.StatusUnprocessableEntity, "insufficient_data"},
		{"history", apperrors.New(apperrors.CodeHistory, "archive down"), http.StatusBadGateway, "history_error"},
		{"storage", apperrors.New(apperrors.CodeStorage, "disk full"), http.StatusInternalServerError, "storage_error"},
		{"uncoded", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubOutlook{
				forecastFn: func(ctx context.Context, req outlook.Request) (outlook.Report, error) {
					return outlook.Report{}, tc.err
				},
			}
			rec := performRequest(http.MethodPost, "/api/v1/forecasts", `{}`, nil, newRouterUnderTest(t, svc, nil))
			require.Equal(t, tc.status, rec.Code)
			body := decodeErrorBody(t, rec.Body.Bytes())
			require.Equal(t, tc.code, body["error"]["code"])
		})
	}
}

func TestRouter_CreateForecastInvalidJSON(t *testing.T) {
	rec := performRequest(http.MethodPost, "/api/v1/forecasts", `{"latitude":"north"}`, nil, newRouterUnderTest(t, &stubOutlook{}, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesUpstreamFailures(t *testing.T) {
	calls := 0
	svc := &stubOutlook{
		forecastFn: func(ctx context.Context, req outlook.Request) (outlook.Report, error) {
			calls++
			if calls < 2 {
				return outlook.Report{}, apperrors.New(apperrors.CodeHistory, "archive down")
			}
			return outlook.Report{ID: "r2"}, nil
		},
	}
	mutate := func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	}

	rec := performRequest(http.MethodPost, "/api/v1/forecasts", `{}`, nil, newRouterUnderTest(t, svc, mutate))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, calls)
	require.Equal(t, "2", rec.Header().Get("X-Attempts"))
}

func TestRouter_AuthRequiredWhenSecretSet(t *testing.T) {
	svc := &stubOutlook{}
	mutate := func(cfg *config.Config) { cfg.Auth.Secret = "s3cret" }
	server := newRouterUnderTest(t, svc, mutate)

	rec := performRequest(http.MethodPost, "/api/v1/forecasts", `{}`, nil, server)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(http.MethodPost, "/api/v1/forecasts", `{}`, map[string]string{"Authorization": "Bearer junk"}, server)
	require.Equal(t, http.StatusForbidden, rec.Code)

	token, err := authtoken.Issue("s3cret", "ops", time.Minute)
	require.NoError(t, err)
	rec = performRequest(http.MethodPost, "/api/v1/forecasts", `{}`, map[string]string{"Authorization": "Bearer " + token}, server)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(http.MethodGet, "/api/v1/forecasts", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Preview(t *testing.T) {
	svc := &stubOutlook{
		previewFn: func(ctx context.Context, req outlook.PreviewRequest) (outlook.Report, error) {
			require.Len(t, req.History, 2)
			require.Equal(t, "light rain", req.Condition)
			return outlook.Report{Weekly: forecast.WeeklySummary{Direction: "warming"}}, nil
		},
	}
	body := `{"history":[{"date":"2024-07-01","temperature":27},{"date":"2024-07-02","temperature":28}],"condition":"light rain"}`
	rec := performRequest(http.MethodPost, "/api/v1/forecasts/preview", body, nil, newRouterUnderTest(t, svc, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"direction":"warming"`)
}

func TestRouter_ReadEndpoints(t *testing.T) {
	svc := &stubOutlook{
		getFn: func(ctx context.Context, id string) (outlook.Report, error) {
			if id == "r1" {
				return outlook.Report{ID: "r1"}, nil
			}
			return outlook.Report{}, apperrors.New(apperrors.CodeNotFound, "forecast report not found")
		},
		latestFn: func(ctx context.Context, location string) (outlook.Report, error) {
			require.Equal(t, "Cavite", location)
			return outlook.Report{ID: "latest"}, nil
		},
		listFn: func(ctx context.Context, limit int) ([]outlook.Report, error) {
			require.Equal(t, 5, limit)
			return []outlook.Report{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	server := newRouterUnderTest(t, svc, nil)

	rec := performRequest(http.MethodGet, "/api/v1/forecasts/r1", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(http.MethodGet, "/api/v1/forecasts/nope", "", nil, server)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "not_found", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(http.MethodGet, "/api/v1/forecasts/latest?location=Cavite", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"id":"latest"`)

	rec = performRequest(http.MethodGet, "/api/v1/forecasts?limit=5", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Reports []outlook.Report `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Reports, 2)

	rec = performRequest(http.MethodGet, "/api/v1/forecasts?limit=-1", "", nil, server)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(http.MethodGet, "/healthz", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	mutate := func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	}
	server := newRouterUnderTest(t, &stubOutlook{}, mutate)

	rec := performRequest(http.MethodGet, "/api/v1/forecasts", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(http.MethodGet, "/api/v1/forecasts", "", nil, server)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(http.MethodGet, "/healthz", "", nil, server)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	mutate := func(cfg *config.Config) { cfg.HTTP.AllowedOrigins = []string{"https://dash.example"} }
	rec := performRequest(http.MethodOptions, "/api/v1/forecasts", "", map[string]string{"Origin": "https://dash.example"}, newRouterUnderTest(t, &stubOutlook{}, mutate))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Attempts", rec.Header().Get("Access-Control-Expose-Headers"))

	rec = performRequest(http.MethodOptions, "/api/v1/forecasts", "", map[string]string{"Origin": "https://evil.example"}, newRouterUnderTest(t, &stubOutlook{}, mutate))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(method, path, body string, headers map[string]string, server *http.Server) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc outlook.Service, mutate func(*config.Config)) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	return NewRouter(cfg, NewHandler(svc, newTestLogger()))
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubOutlook struct {
	forecastFn func(ctx context.Context, req outlook.Request) (outlook.Report, error)
	previewFn  func(ctx context.Context, req outlook.PreviewRequest) (outlook.Report, error)
	getFn      func(ctx context.Context, id string) (outlook.Report, error)
	latestFn   func(ctx context.Context, location string) (outlook.Report, error)
	listFn     func(ctx context.Context, limit int) ([]outlook.Report, error)
}

func (s *stubOutlook) Forecast(ctx context.Context, req outlook.Request) (outlook.Report, error) {
	if s.forecastFn != nil {
		return s.forecastFn(ctx, req)
	}
	return outlook.Report{ID: "default"}, nil
}

func (s *stubOutlook) Preview(ctx context.Context, req outlook.PreviewRequest) (outlook.Report, error) {
	if s.previewFn != nil {
		return s.previewFn(ctx, req)
	}
	return outlook.Report{}, nil
}

func (s *stubOutlook) Get(ctx context.Context, id string) (outlook.Report, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return outlook.Report{}, nil
}

func (s *stubOutlook) Latest(ctx context.Context, location string) (outlook.Report, error) {
	if s.latestFn != nil {
		return s.latestFn(ctx, location)
	}
	return outlook.Report{}, nil
}

func (s *stubOutlook) List(ctx context.Context, limit int) ([]outlook.Report, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit)
	}
	return nil, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
