package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tempcast/internal/infra/archive"
	"github.com/yanqian/tempcast/internal/infra/config"
	"github.com/yanqian/tempcast/internal/infra/narration"
	"github.com/yanqian/tempcast/internal/infra/reportrepo"
	"github.com/yanqian/tempcast/internal/infra/seriescache"
	"github.com/yanqian/tempcast/internal/infra/weather/throttle"
)

func TestProvidersFallBackToMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Storage.Postgres.DSN = "://not-a-dsn"

	require.IsType(t, &reportrepo.MemoryRepository{}, provideReportRepository(cfg, logger))
	require.IsType(t, &seriescache.MemoryCache{}, provideSeriesCache(cfg, logger))
	require.IsType(t, &archive.MemoryArchive{}, provideCurveArchive(cfg, logger))
	require.IsType(t, &narration.LogNarrator{}, provideNarrator(cfg, archive.NewMemoryArchive(), logger))
	require.Nil(t, provideConditionsClient(cfg, logger))

	sched, err := provideScheduler(cfg, nil, logger)
	require.NoError(t, err)
	require.Nil(t, sched)
}

func TestProvidersSelectConfiguredBackends(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{}
	cfg.Storage.SQLite.Path = filepath.Join(t.TempDir(), "reports.db")
	cfg.Conditions.APIKey = "owm"
	cfg.Conditions.RequestsPerSecond = 1
	cfg.Narration.Mode = config.NarrationSpeech
	cfg.Narration.Speech.APIKey = "sk-test"

	repo := provideReportRepository(cfg, logger)
	require.IsType(t, &reportrepo.SQLiteRepository{}, repo)
	t.Cleanup(func() { _ = repo.(*reportrepo.SQLiteRepository).Close() })

	require.IsType(t, &throttle.Conditions{}, provideConditionsClient(cfg, logger))
	require.IsType(t, &throttle.History{}, provideHistoryClient(cfg))
	require.IsType(t, &narration.SpeechNarrator{}, provideNarrator(cfg, archive.NewMemoryArchive(), logger))

	outlookCfg := provideOutlookConfig(&config.Config{Location: config.LocationConfig{Name: "Cavite", Latitude: 14.5995}, History: config.HistoryConfig{WindowDays: 7}})
	require.Equal(t, "Cavite", outlookCfg.Location.Name)
	require.Equal(t, 7, outlookCfg.WindowDays)
}
