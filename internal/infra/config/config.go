package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Location   LocationConfig   `yaml:"location"`
	History    HistoryConfig    `yaml:"history"`
	Conditions ConditionsConfig `yaml:"conditions"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Storage    StorageConfig    `yaml:"storage"`
	Narration  NarrationConfig  `yaml:"narration"`
	Auth       AuthConfig       `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the per-client request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures retries of forecast requests that failed upstream.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LocationConfig is the default forecast location.
type LocationConfig struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`
}

// HistoryConfig points at the daily temperature archive.
type HistoryConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	WindowDays        int           `yaml:"windowDays"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
	CacheTTL          time.Duration `yaml:"cacheTtl"`
}

// ConditionsConfig points at the current weather provider.
type ConditionsConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	APIKey            string        `yaml:"apiKey"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Burst             int           `yaml:"burst"`
}

// ForecastConfig holds per-run knobs outside the model itself.
type ForecastConfig struct {
	HourlySeed int64 `yaml:"hourlySeed"`
}

// ScheduleConfig enables the daily background forecast.
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Narrate bool   `yaml:"narrate"`
}

// StorageConfig selects report, cache and archive backends.
type StorageConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Redis    RedisConfig    `yaml:"redis"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig stores reports in a local file when Postgres is not configured.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig contains connection information for the history cache.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ArchiveConfig configures the S3-compatible bucket for curves and audio.
type ArchiveConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// NarrationConfig selects where narration lines go.
type NarrationConfig struct {
	Mode     string         `yaml:"mode"`
	Telegram TelegramConfig `yaml:"telegram"`
	Speech   SpeechConfig   `yaml:"speech"`
}

// TelegramConfig holds bot credentials for chat narration.
type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chatId"`
}

// SpeechConfig holds OpenAI text-to-speech settings.
type SpeechConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	Voice   string `yaml:"voice"`
}

// AuthConfig protects forecast creation when Secret is set.
type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// Narration modes.
const (
	NarrationLog      = "log"
	NarrationTelegram = "telegram"
	NarrationSpeech   = "speech"
)

// Load reads .env, the YAML file and environment variables, in that order.
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	envInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	envDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	envString("LOCATION_NAME", &cfg.Location.Name)
	envFloat("LOCATION_LATITUDE", &cfg.Location.Latitude)
	envFloat("LOCATION_LONGITUDE", &cfg.Location.Longitude)
	envString("LOCATION_TIMEZONE", &cfg.Location.Timezone)

	envString("HISTORY_BASE_URL", &cfg.History.BaseURL)
	envInt("HISTORY_WINDOW_DAYS", &cfg.History.WindowDays)
	envDuration("HISTORY_CACHE_TTL", &cfg.History.CacheTTL)

	envString("OPENWEATHER_BASE_URL", &cfg.Conditions.BaseURL)
	envString("OPENWEATHER_API_KEY", &cfg.Conditions.APIKey)

	if v := os.Getenv("FORECAST_HOURLY_SEED"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Forecast.HourlySeed = parsed
		}
	}

	envBool("SCHEDULE_ENABLED", &cfg.Schedule.Enabled)
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)
	envBool("SCHEDULE_NARRATE", &cfg.Schedule.Narrate)

	envString("POSTGRES_DSN", &cfg.Storage.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	envString("SQLITE_PATH", &cfg.Storage.SQLite.Path)
	envBool("REDIS_ENABLED", &cfg.Storage.Redis.Enabled)
	envString("REDIS_ADDR", &cfg.Storage.Redis.Addr)
	envString("ARCHIVE_ENDPOINT", &cfg.Storage.Archive.Endpoint)
	envString("ARCHIVE_ACCESS_KEY", &cfg.Storage.Archive.AccessKey)
	envString("ARCHIVE_SECRET_KEY", &cfg.Storage.Archive.SecretKey)
	envString("ARCHIVE_BUCKET", &cfg.Storage.Archive.Bucket)
	envString("ARCHIVE_REGION", &cfg.Storage.Archive.Region)

	envString("NARRATION_MODE", &cfg.Narration.Mode)
	envString("TELEGRAM_TOKEN", &cfg.Narration.Telegram.Token)
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Narration.Telegram.ChatID = parsed
		}
	}
	envString("OPENAI_API_KEY", &cfg.Narration.Speech.APIKey)
	envString("OPENAI_BASE_URL", &cfg.Narration.Speech.BaseURL)
	envString("SPEECH_MODEL", &cfg.Narration.Speech.Model)
	envString("SPEECH_VOICE", &cfg.Narration.Speech.Voice)

	envString("AUTH_SECRET", &cfg.Auth.Secret)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 200 * time.Millisecond,
				Exclude: []string{
					"/api/v1/forecasts/preview",
				},
			},
		},
		Location: LocationConfig{
			Name:      "Cavite",
			Latitude:  14.5995,
			Longitude: 120.8970,
			Timezone:  "Asia/Manila",
		},
		History: HistoryConfig{
			BaseURL:           "https://archive-api.open-meteo.com/v1/archive",
			WindowDays:        7,
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             2,
			CacheTTL:          time.Hour,
		},
		Conditions: ConditionsConfig{
			BaseURL:           "https://api.openweathermap.org/data/2.5",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 1,
			Burst:             1,
		},
		Forecast: ForecastConfig{
			HourlySeed: 42,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "0 6 * * *",
		},
		Storage: StorageConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Redis: RedisConfig{
				Prefix: "tempcast:history",
			},
			Archive: ArchiveConfig{
				Bucket: "tempcast",
				Region: "auto",
			},
		},
		Narration: NarrationConfig{
			Mode: NarrationLog,
			Speech: SpeechConfig{
				Model: "tts-1",
				Voice: "alloy",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.Location.Name) == "" {
		return errors.New("location.name cannot be empty")
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return errors.New("location.latitude must be within [-90, 90]")
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return errors.New("location.longitude must be within [-180, 180]")
	}
	if c.Location.Timezone != "" {
		if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
			return fmt.Errorf("location.timezone: %w", err)
		}
	}
	if c.History.WindowDays < 2 {
		return errors.New("history.windowDays must be at least 2")
	}
	if c.History.CacheTTL < 0 {
		return errors.New("history.cacheTtl cannot be negative")
	}
	if c.History.RequestsPerSecond < 0 || c.Conditions.RequestsPerSecond < 0 {
		return errors.New("requestsPerSecond cannot be negative")
	}
	if c.Schedule.Enabled && strings.TrimSpace(c.Schedule.Cron) == "" {
		return errors.New("schedule.cron cannot be empty when the schedule is enabled")
	}
	if c.Storage.Redis.Enabled && strings.TrimSpace(c.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Storage.Archive.Endpoint != "" && strings.TrimSpace(c.Storage.Archive.Bucket) == "" {
		return errors.New("storage.archive.bucket cannot be empty when an endpoint is set")
	}
	switch c.Narration.Mode {
	case "", NarrationLog:
	case NarrationTelegram:
		if c.Narration.Telegram.Token == "" || c.Narration.Telegram.ChatID == 0 {
			return errors.New("narration.telegram requires token and chatId")
		}
	case NarrationSpeech:
		if c.Narration.Speech.APIKey == "" {
			return errors.New("narration.speech.apiKey cannot be empty")
		}
	default:
		return fmt.Errorf("narration.mode %q is not one of log, telegram, speech", c.Narration.Mode)
	}
	return nil
}
