package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/internal/infra/archive"
	"github.com/yanqian/tempcast/internal/infra/config"
	"github.com/yanqian/tempcast/internal/infra/llm/openai"
	"github.com/yanqian/tempcast/internal/infra/narration"
	"github.com/yanqian/tempcast/internal/infra/reportrepo"
	"github.com/yanqian/tempcast/internal/infra/scheduler"
	"github.com/yanqian/tempcast/internal/infra/seriescache"
	"github.com/yanqian/tempcast/internal/infra/weather/openmeteo"
	"github.com/yanqian/tempcast/internal/infra/weather/openweather"
	"github.com/yanqian/tempcast/internal/infra/weather/throttle"
)

func provideOutlookConfig(cfg *config.Config) outlook.Config {
	return outlook.Config{
		Location:   provideDefaultLocation(cfg),
		WindowDays: cfg.History.WindowDays,
		HourlySeed: cfg.Forecast.HourlySeed,
		CacheTTL:   cfg.History.CacheTTL,
	}
}

func provideDefaultLocation(cfg *config.Config) outlook.Location {
	return outlook.Location{
		Name:      cfg.Location.Name,
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Timezone:  cfg.Location.Timezone,
	}
}

func provideHistoryClient(cfg *config.Config) outlook.HistoryClient {
	client := openmeteo.NewClient(cfg.History.BaseURL, cfg.History.Timeout)
	return throttle.NewHistory(client, cfg.History.RequestsPerSecond, cfg.History.Burst)
}

func provideConditionsClient(cfg *config.Config, logger *slog.Logger) outlook.ConditionsClient {
	if strings.TrimSpace(cfg.Conditions.APIKey) == "" {
		logger.Info("openweather api key not set, forecasts will run without current conditions")
		return nil
	}
	client := openweather.NewClient(cfg.Conditions.BaseURL, cfg.Conditions.APIKey, cfg.Conditions.Timeout)
	return throttle.NewConditions(client, cfg.Conditions.RequestsPerSecond, cfg.Conditions.Burst)
}

func provideSeriesCache(cfg *config.Config, logger *slog.Logger) outlook.SeriesCache {
	if cfg.Storage.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg.Storage.Redis.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return seriescache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return seriescache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("history valkey cache enabled", "addr", cfg.Storage.Redis.Addr)
			return seriescache.NewValkeyCache(client, cfg.Storage.Redis.Prefix)
		}
	}
	return seriescache.NewMemoryCache()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideReportRepository(cfg *config.Config, logger *slog.Logger) outlook.ReportRepository {
	if dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN); dsn != "" {
		if repo, err := newPostgresRepository(cfg.Storage.Postgres); err != nil {
			logger.Error("postgres unavailable, falling back", "error", err)
		} else {
			logger.Info("postgres report repository enabled")
			return repo
		}
	}
	if path := strings.TrimSpace(cfg.Storage.SQLite.Path); path != "" {
		repo, err := reportrepo.NewSQLiteRepository(path)
		if err != nil {
			logger.Error("sqlite unavailable, using memory repository", "path", path, "error", err)
		} else {
			logger.Info("sqlite report repository enabled", "path", path)
			return repo
		}
	}
	logger.Info("no report database configured, using memory repository")
	return reportrepo.NewMemoryRepository()
}

func newPostgresRepository(cfg config.PostgresConfig) (*reportrepo.PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	repo := reportrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func provideCurveArchive(cfg *config.Config, logger *slog.Logger) outlook.CurveArchive {
	ac := cfg.Storage.Archive
	if strings.TrimSpace(ac.Endpoint) == "" {
		logger.Info("archive endpoint not set, using memory archive")
		return archive.NewMemoryArchive()
	}
	store, err := archive.NewS3Archive(ac.Endpoint, ac.AccessKey, ac.SecretKey, ac.Bucket, ac.Region, logger)
	if err != nil {
		logger.Error("failed to initialize s3 archive, using memory archive", "error", err)
		return archive.NewMemoryArchive()
	}
	logger.Info("s3 archive enabled", "bucket", ac.Bucket)
	return store
}

func provideNarrator(cfg *config.Config, store outlook.CurveArchive, logger *slog.Logger) outlook.Narrator {
	fallback := narration.NewLogNarrator(logger)
	switch cfg.Narration.Mode {
	case config.NarrationTelegram:
		bot, err := tgbotapi.NewBotAPI(cfg.Narration.Telegram.Token)
		if err != nil {
			logger.Error("failed to initialize telegram bot, narrating to log", "error", err)
			return fallback
		}
		logger.Info("telegram narration enabled", "bot", bot.Self.UserName)
		return narration.NewTelegramNarrator(bot, cfg.Narration.Telegram.ChatID)
	case config.NarrationSpeech:
		client, err := openai.NewClient(cfg.Narration.Speech.APIKey, cfg.Narration.Speech.BaseURL)
		if err != nil {
			logger.Error("failed to initialize speech client, narrating to log", "error", err)
			return fallback
		}
		logger.Info("speech narration enabled", "model", cfg.Narration.Speech.Model, "voice", cfg.Narration.Speech.Voice)
		return narration.NewSpeechNarrator(client, store, cfg.Narration.Speech.Model, cfg.Narration.Speech.Voice, logger)
	default:
		return fallback
	}
}

func provideScheduler(cfg *config.Config, svc outlook.Service, logger *slog.Logger) (*scheduler.Scheduler, error) {
	if !cfg.Schedule.Enabled {
		return nil, nil
	}
	req := outlook.Request{Narrate: cfg.Schedule.Narrate}
	return scheduler.New(cfg.Schedule.Cron, cfg.Location.Timezone, svc, req, logger)
}
