package outlook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	apperrors "github.com/yanqian/tempcast/pkg/errors"
)

func TestServiceForecastSuccess(t *testing.T) {
	history := &stubHistory{series: linearHistory()}
	conditions := &stubConditions{current: Conditions{Temperature: 27.5, Min: 26, Max: 29, Description: "light rain"}}
	narrator := &stubNarrator{}
	cache := newStubCache()
	repo := newStubRepo()
	archive := &stubArchive{}
	svc := newServiceUnderTest(history, conditions, narrator, cache, repo, archive)

	report, err := svc.Forecast(context.Background(), Request{Narrate: true})
	require.NoError(t, err)

	require.Equal(t, "report-1", report.ID)
	require.Equal(t, "Test Town", report.Location.Name)
	require.Equal(t, "2024-07-01", report.WindowStart)
	require.Equal(t, "2024-07-07", report.WindowEnd)
	require.Equal(t, "2024-07-01", history.lastStart)
	require.Equal(t, "2024-07-07", history.lastEnd)
	require.Len(t, report.Days, forecast.HorizonDays)
	require.Equal(t, "2024-07-08", report.Days[0].Date)
	require.Equal(t, "2024-07-14", report.Days[6].Date)
	require.InDelta(t, 34.0, report.Days[0].Prediction, 1e-9)
	require.InDelta(t, 0.0, report.Days[0].Margin, 1e-9)
	require.Equal(t, forecast.TierHot, report.Days[0].Tier)
	require.Equal(t, forecast.TrendInitial, report.Days[0].Trend)
	require.Equal(t, "Expect hot temperatures with a chance of continued rain", report.Days[0].Description)
	require.Equal(t, forecast.TrendRising, report.Days[1].Trend)
	require.Len(t, report.Hourly, 24)
	require.Equal(t, "00:00", report.Hourly[0].Hour)
	require.Equal(t, "warming", report.Weekly.Direction)
	require.InDelta(t, 40.0, report.Weekly.Average, 1e-9)
	require.Equal(t, 7, report.Fit.Observations)
	require.InDelta(t, 2.0, report.Fit.Slope, 1e-9)
	require.Equal(t, forecast.DefaultSeed, report.Seed)
	require.NotNil(t, report.Current)
	require.Equal(t, "light rain", report.Current.Description)

	require.Equal(t, "curves/2024-07-08/report-1.csv", report.ArchiveKey)
	require.True(t, strings.HasPrefix(string(archive.data), "hour,temperature,lower,upper\n00:00,"))
	require.Equal(t, "text/csv", archive.contentType)

	require.Contains(t, repo.reports, "report-1")
	require.Len(t, cache.entries, 1)

	require.Equal(t, []string{
		"Today's weather is light rain with a temperature of 27.50°C.",
		"The predicted temperatures for the next 7 days are as follows:",
		"Tomorrow's forecast: Expect hot temperatures with a chance of continued rain",
		"For the week ahead, expect a warming trend with an average temperature of 40.0 degrees Celsius.",
	}, narrator.lines)
}

func TestServiceForecastUsesCachedHistory(t *testing.T) {
	history := &stubHistory{err: errors.New("should not be called")}
	cache := newStubCache()
	svc := newServiceUnderTest(history, nil, nil, cache, newStubRepo(), nil)
	start, _ := time.Parse("2006-01-02", "2024-07-01")
	end, _ := time.Parse("2006-01-02", "2024-07-07")
	cache.entries[cacheKey(svc.cfg.Location, start, end)] = linearHistory()

	report, err := svc.Forecast(context.Background(), Request{})
	require.NoError(t, err)
	require.Zero(t, history.calls)
	require.InDelta(t, 46.0, report.Days[6].Prediction, 1e-9)
	require.Nil(t, report.Current)
	require.Equal(t, "Expect a hot day. Stay hydrated and use sun protection", report.Days[0].Description)
}

func TestServiceForecastDatesFromLastObservation(t *testing.T) {
	// the archive has not published 2024-07-06 and 2024-07-07 yet
	history := &stubHistory{series: linearHistory()[:5]}
	cache := newStubCache()
	svc := newServiceUnderTest(history, nil, nil, cache, newStubRepo(), nil)

	report, err := svc.Forecast(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, "2024-07-01", report.WindowStart)
	require.Equal(t, "2024-07-05", report.WindowEnd)
	require.Equal(t, "2024-07-06", report.Days[0].Date)
	require.InDelta(t, 30.0, report.Days[0].Prediction, 1e-9)
	require.Equal(t, "2024-07-12", report.Days[6].Date)
	require.Empty(t, cache.entries)

	preview, err := svc.Preview(context.Background(), PreviewRequest{History: linearHistory()[:5]})
	require.NoError(t, err)
	require.Equal(t, report.WindowEnd, preview.WindowEnd)
	for i := range report.Days {
		require.Equal(t, preview.Days[i].Date, report.Days[i].Date)
	}

	_, err = svc.Forecast(context.Background(), Request{})
	require.NoError(t, err)
	require.Equal(t, 2, history.calls)
}

func TestServiceForecastInsufficientData(t *testing.T) {
	history := &stubHistory{series: forecast.Series{{Date: "2024-07-07", Temperature: 30}}}
	repo := newStubRepo()
	archive := &stubArchive{}
	narrator := &stubNarrator{}
	svc := newServiceUnderTest(history, nil, narrator, newStubCache(), repo, archive)

	_, err := svc.Forecast(context.Background(), Request{Narrate: true})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, forecast.CodeInsufficientData))
	require.ErrorIs(t, err, forecast.ErrInsufficientData)
	require.Empty(t, repo.reports)
	require.Nil(t, archive.data)
	require.Empty(t, narrator.lines)
}

func TestServiceForecastHistoryError(t *testing.T) {
	svc := newServiceUnderTest(&stubHistory{err: errors.New("upstream down")}, nil, nil, newStubCache(), newStubRepo(), nil)

	_, err := svc.Forecast(context.Background(), Request{})
	require.True(t, apperrors.IsCode(err, "history_error"))
}

func TestServiceForecastToleratesCollaboratorFailures(t *testing.T) {
	conditions := &stubConditions{err: errors.New("no api key")}
	narrator := &stubNarrator{err: errors.New("speaker unplugged")}
	archive := &stubArchive{err: errors.New("bucket gone")}
	repo := newStubRepo()
	svc := newServiceUnderTest(&stubHistory{series: linearHistory()}, conditions, narrator, newStubCache(), repo, archive)

	report, err := svc.Forecast(context.Background(), Request{Narrate: true})
	require.NoError(t, err)
	require.Nil(t, report.Current)
	require.Empty(t, report.ArchiveKey)
	require.Contains(t, repo.reports, report.ID)
}

func TestServiceForecastStorageError(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("disk full")
	svc := newServiceUnderTest(&stubHistory{series: linearHistory()}, nil, nil, newStubCache(), repo, nil)

	_, err := svc.Forecast(context.Background(), Request{})
	require.True(t, apperrors.IsCode(err, "storage_error"))
}

func TestServiceForecastCustomLocation(t *testing.T) {
	history := &stubHistory{series: linearHistory()}
	svc := newServiceUnderTest(history, nil, nil, newStubCache(), newStubRepo(), nil)
	lat, lon := 1.3521, 103.8198
	seed := int64(7)

	report, err := svc.Forecast(context.Background(), Request{Latitude: &lat, Longitude: &lon, Seed: &seed})
	require.NoError(t, err)
	require.Equal(t, "1.3521,103.8198", report.Location.Name)
	require.Equal(t, lat, history.lastLocation.Latitude)
	require.Equal(t, int64(7), report.Seed)
}

func TestServiceForecastInvalidLocation(t *testing.T) {
	svc := newServiceUnderTest(&stubHistory{}, nil, nil, newStubCache(), newStubRepo(), nil)
	lat, lon := 95.0, 10.0

	_, err := svc.Forecast(context.Background(), Request{Latitude: &lat, Longitude: &lon})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Forecast(context.Background(), Request{Latitude: &lon})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Forecast(context.Background(), Request{Timezone: "Mars/Olympus"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServicePreview(t *testing.T) {
	repo := newStubRepo()
	svc := newServiceUnderTest(&stubHistory{}, nil, nil, newStubCache(), repo, nil)

	report, err := svc.Preview(context.Background(), PreviewRequest{History: linearHistory(), Condition: "clear sky"})
	require.NoError(t, err)
	require.Equal(t, "2024-07-01", report.WindowStart)
	require.Equal(t, "2024-07-08", report.Days[0].Date)
	require.Equal(t, "Expect hot temperatures with continued sunshine", report.Days[0].Description)
	require.Empty(t, repo.reports)

	again, err := svc.Preview(context.Background(), PreviewRequest{History: linearHistory(), Condition: "clear sky"})
	require.NoError(t, err)
	require.Equal(t, report.Hourly, again.Hourly)

	_, err = svc.Preview(context.Background(), PreviewRequest{History: linearHistory()[:1]})
	require.True(t, apperrors.IsCode(err, forecast.CodeInsufficientData))
}

func TestServiceReadPaths(t *testing.T) {
	repo := newStubRepo()
	svc := newServiceUnderTest(&stubHistory{series: linearHistory()}, nil, nil, newStubCache(), repo, nil)

	_, err := svc.Latest(context.Background(), "")
	require.True(t, apperrors.IsCode(err, "not_found"))

	saved, err := svc.Forecast(context.Background(), Request{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)

	latest, err := svc.Latest(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, saved.ID, latest.ID)

	list, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, defaultListLimit, repo.lastLimit)

	_, err = svc.Get(context.Background(), "missing")
	require.True(t, apperrors.IsCode(err, "not_found"))
	_, err = svc.Get(context.Background(), " ")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func newServiceUnderTest(history HistoryClient, conditions ConditionsClient, narrator Narrator, cache SeriesCache, repo ReportRepository, archive CurveArchive) *service {
	ids := 0
	return &service{
		cfg: Config{
			Location:   Location{Name: "Test Town", Latitude: 14.5995, Longitude: 120.8970, Timezone: "UTC"},
			WindowDays: 7,
			HourlySeed: forecast.DefaultSeed,
			CacheTTL:   time.Hour,
		},
		history:    history,
		conditions: conditions,
		narrator:   narrator,
		cache:      cache,
		repo:       repo,
		archive:    archive,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2024, 7, 8, 9, 0, 0, 0, time.UTC)
		},
		newID: func() string {
			ids++
			return "report-" + strconv.Itoa(ids)
		},
	}
}

func linearHistory() forecast.Series {
	return forecast.Series{
		{Date: "2024-07-01", Temperature: 20},
		{Date: "2024-07-02", Temperature: 22},
		{Date: "2024-07-03", Temperature: 24},
		{Date: "2024-07-04", Temperature: 26},
		{Date: "2024-07-05", Temperature: 28},
		{Date: "2024-07-06", Temperature: 30},
		{Date: "2024-07-07", Temperature: 32},
	}
}

type stubHistory struct {
	series       forecast.Series
	err          error
	calls        int
	lastStart    string
	lastEnd      string
	lastLocation Location
}

func (s *stubHistory) Fetch(ctx context.Context, loc Location, start, end time.Time) (forecast.Series, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	s.lastLocation = loc
	s.lastStart = start.Format("2006-01-02")
	s.lastEnd = end.Format("2006-01-02")
	return s.series, nil
}

type stubConditions struct {
	current Conditions
	err     error
}

func (s *stubConditions) Current(ctx context.Context, loc Location) (Conditions, error) {
	if s.err != nil {
		return Conditions{}, s.err
	}
	return s.current, nil
}

type stubNarrator struct {
	lines []string
	err   error
}

func (s *stubNarrator) Narrate(ctx context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.lines = append(s.lines, text)
	return nil
}

type stubCache struct {
	entries map[string]forecast.Series
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]forecast.Series)}
}

func (s *stubCache) Get(ctx context.Context, key string) (forecast.Series, bool, error) {
	series, ok := s.entries[key]
	return series, ok, nil
}

func (s *stubCache) Set(ctx context.Context, key string, series forecast.Series, ttl time.Duration) error {
	s.entries[key] = series
	return nil
}

type stubRepo struct {
	reports   map[string]Report
	order     []string
	err       error
	lastLimit int
}

func newStubRepo() *stubRepo {
	return &stubRepo{reports: make(map[string]Report)}
}

func (s *stubRepo) Save(ctx context.Context, report Report) error {
	if s.err != nil {
		return s.err
	}
	s.reports[report.ID] = report
	s.order = append(s.order, report.ID)
	return nil
}

func (s *stubRepo) Get(ctx context.Context, id string) (Report, bool, error) {
	report, ok := s.reports[id]
	return report, ok, nil
}

func (s *stubRepo) Latest(ctx context.Context, location string) (Report, bool, error) {
	for i := len(s.order) - 1; i >= 0; i-- {
		if r := s.reports[s.order[i]]; r.Location.Name == location {
			return r, true, nil
		}
	}
	return Report{}, false, nil
}

func (s *stubRepo) List(ctx context.Context, limit int) ([]Report, error) {
	s.lastLimit = limit
	out := make([]Report, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.reports[id])
	}
	return out, nil
}

type stubArchive struct {
	data        []byte
	contentType string
	err         error
}

func (s *stubArchive) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.data = data
	s.contentType = contentType
	return key, nil
}
