package outlook

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/tempcast/internal/domain/forecast"
	apperrors "github.com/yanqian/tempcast/pkg/errors"
	"github.com/yanqian/tempcast/pkg/util"
)

const defaultListLimit = 20

// Service exposes the forecasting workflow and report history.
type Service interface {
	Forecast(ctx context.Context, req Request) (Report, error)
	Preview(ctx context.Context, req PreviewRequest) (Report, error)
	Get(ctx context.Context, id string) (Report, error)
	Latest(ctx context.Context, location string) (Report, error)
	List(ctx context.Context, limit int) ([]Report, error)
}

type service struct {
	cfg        Config
	history    HistoryClient
	conditions ConditionsClient
	narrator   Narrator
	cache      SeriesCache
	repo       ReportRepository
	archive    CurveArchive
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewService wires up the outlook domain. conditions may be nil when no current
// weather provider is configured.
func NewService(cfg Config, history HistoryClient, conditions ConditionsClient, narrator Narrator, cache SeriesCache, repo ReportRepository, archive CurveArchive, logger *slog.Logger) Service {
	if cfg.WindowDays < forecast.MinObservations {
		cfg.WindowDays = forecast.HorizonDays
	}
	return &service{
		cfg:        cfg,
		history:    history,
		conditions: conditions,
		narrator:   narrator,
		cache:      cache,
		repo:       repo,
		archive:    archive,
		logger:     logger.With("component", "outlook.service"),
		now:        util.NowUTC,
		newID:      func() string { return uuid.NewString() },
	}
}

func (s *service) Forecast(ctx context.Context, req Request) (Report, error) {
	loc, tz, err := s.resolveLocation(req)
	if err != nil {
		return Report{}, apperrors.New(apperrors.CodeInvalidInput, err.Error())
	}

	now := s.now()
	start, end := util.TrailingWindow(now, tz, s.cfg.WindowDays)
	series, err := s.loadHistory(ctx, loc, start, end)
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeHistory, "failed to fetch historical temperatures", err)
	}
	s.logger.Info("outlook history fetched", "location", loc.Name, "start", util.FormatDate(start), "end", util.FormatDate(end), "observations", len(series))

	current := s.currentConditions(ctx, loc)
	if req.Narrate && current != nil {
		s.narrate(ctx, fmt.Sprintf("Today's weather is %s with a temperature of %.2f°C.", current.Description, current.Temperature))
	}

	label := ""
	if current != nil {
		label = current.Description
	}
	report, err := s.run(loc, series, label, s.seed(req.Seed), now)
	if err != nil {
		return Report{}, err
	}
	report.Current = current
	labelWindow(&report, series, end)

	if req.Narrate {
		s.narrateReport(ctx, report)
	}

	if s.archive != nil {
		key := fmt.Sprintf("curves/%s/%s.csv", report.Days[0].Date, report.ID)
		if stored, err := s.archive.Put(ctx, key, encodeCurve(report), "text/csv"); err != nil {
			s.logger.Warn("curve archive failed", "key", key, "error", err)
		} else {
			report.ArchiveKey = stored
		}
	}

	if err := s.repo.Save(ctx, report); err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store forecast report", err)
	}
	s.logger.Info("outlook forecast stored", "id", report.ID, "location", loc.Name, "tomorrow", report.Days[0].Prediction, "margin", report.Fit.Margin)
	return report, nil
}

func (s *service) Preview(_ context.Context, req PreviewRequest) (Report, error) {
	loc := s.cfg.Location
	if name := strings.TrimSpace(req.Location); name != "" {
		loc.Name = name
	}
	report, err := s.run(loc, req.History, req.Condition, s.seed(req.Seed), s.now())
	if err != nil {
		return Report{}, err
	}
	labelWindow(&report, req.History, time.Time{})
	return report, nil
}

// labelWindow dates the report from the observations actually used, since the
// archive may omit days at either end of the requested window. Day 0 is the day
// after the last observation; fallback is used when that date does not parse.
func labelWindow(report *Report, series forecast.Series, fallback time.Time) {
	n := len(series)
	if n == 0 {
		return
	}
	report.WindowStart = series[0].Date
	report.WindowEnd = series[n-1].Date
	last, err := util.ParseDate(series[n-1].Date, nil)
	if err != nil {
		if fallback.IsZero() {
			return
		}
		last = fallback
		report.WindowEnd = util.FormatDate(fallback)
	}
	report.Days = withDates(report.Days, last)
}

func (s *service) Get(ctx context.Context, id string) (Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Report{}, apperrors.New(apperrors.CodeInvalidInput, "id cannot be empty")
	}
	report, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load forecast report", err)
	}
	if !ok {
		return Report{}, apperrors.New(apperrors.CodeNotFound, "forecast report not found")
	}
	return report, nil
}

func (s *service) Latest(ctx context.Context, location string) (Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.cfg.Location.Name
	}
	report, ok, err := s.repo.Latest(ctx, location)
	if err != nil {
		return Report{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load forecast report", err)
	}
	if !ok {
		return Report{}, apperrors.New(apperrors.CodeNotFound, "no forecast report for "+location)
	}
	return report, nil
}

func (s *service) List(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	reports, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to list forecast reports", err)
	}
	return reports, nil
}

// run executes the pure pipeline: forecast, then description and hourly curve.
func (s *service) run(loc Location, series forecast.Series, condition string, seed int64, now time.Time) (Report, error) {
	result, err := forecast.Forecast(series)
	if err != nil {
		return Report{}, err
	}
	descriptions, err := forecast.Describe(result.Days, condition)
	if err != nil {
		return Report{}, err
	}
	hourly, err := forecast.SynthesizeHourly(result.Days[0], seed)
	if err != nil {
		return Report{}, err
	}
	return buildReport(s.newID(), loc, now, series, result, descriptions, hourly, seed), nil
}

func (s *service) loadHistory(ctx context.Context, loc Location, start, end time.Time) (forecast.Series, error) {
	key := cacheKey(loc, start, end)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("history cache read failed", "key", key, "error", err)
		} else if ok {
			s.logger.Debug("history cache hit", "key", key)
			return cached, nil
		}
	}

	series, err := s.history.Fetch(ctx, loc, start, end)
	if err != nil {
		return nil, err
	}

	// an incomplete window is usually the archive lagging; fetch it again next time
	if s.cache != nil && complete(series, end) {
		if err := s.cache.Set(ctx, key, series, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("history cache write failed", "key", key, "error", err)
		}
	}
	return series, nil
}

func (s *service) currentConditions(ctx context.Context, loc Location) *Conditions {
	if s.conditions == nil {
		return nil
	}
	current, err := s.conditions.Current(ctx, loc)
	if err != nil {
		s.logger.Warn("current conditions unavailable", "location", loc.Name, "error", err)
		return nil
	}
	return &current
}

func (s *service) narrateReport(ctx context.Context, report Report) {
	s.narrate(ctx, "The predicted temperatures for the next 7 days are as follows:")
	if len(report.Days) > 0 {
		s.narrate(ctx, "Tomorrow's forecast: "+report.Days[0].Description)
	}
	s.narrate(ctx, fmt.Sprintf("For the week ahead, expect a %s trend with an average temperature of %.1f degrees Celsius.", report.Weekly.Direction, report.Weekly.Average))
}

func (s *service) narrate(ctx context.Context, text string) {
	if s.narrator == nil {
		return
	}
	if err := s.narrator.Narrate(ctx, text); err != nil {
		s.logger.Warn("narration failed", "error", err)
	}
}

func (s *service) seed(override *int64) int64 {
	if override != nil {
		return *override
	}
	return s.cfg.HourlySeed
}

func (s *service) resolveLocation(req Request) (Location, *time.Location, error) {
	loc := s.cfg.Location
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		lat, lon := *req.Latitude, *req.Longitude
		if math.IsNaN(lat) || lat < -90 || lat > 90 {
			return Location{}, nil, fmt.Errorf("latitude %v out of range", lat)
		}
		if math.IsNaN(lon) || lon < -180 || lon > 180 {
			return Location{}, nil, fmt.Errorf("longitude %v out of range", lon)
		}
		loc.Latitude, loc.Longitude = lat, lon
		loc.Name = fmt.Sprintf("%.4f,%.4f", lat, lon)
	case req.Latitude != nil || req.Longitude != nil:
		return Location{}, nil, fmt.Errorf("latitude and longitude must be provided together")
	}
	if name := strings.TrimSpace(req.Location); name != "" {
		loc.Name = name
	}
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		loc.Timezone = tz
	}

	tz := time.UTC
	if loc.Timezone != "" {
		parsed, err := time.LoadLocation(loc.Timezone)
		if err != nil {
			return Location{}, nil, fmt.Errorf("unknown timezone %q", loc.Timezone)
		}
		tz = parsed
	}
	return loc, tz, nil
}

// cacheKey rounds coordinates to two decimals (~1.1km) so nearby requests share a window.
func cacheKey(loc Location, start, end time.Time) string {
	return fmt.Sprintf("%.2f:%.2f:%s:%s", loc.Latitude, loc.Longitude, util.FormatDate(start), util.FormatDate(end))
}

func complete(series forecast.Series, end time.Time) bool {
	n := len(series)
	return n > 0 && series[n-1].Date == util.FormatDate(end)
}
