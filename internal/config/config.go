package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Upstream feed. STREAM_URL empty means the service runs without a
	// producer (records can still arrive through tests or future inputs).
	StreamURL         string `env:"STREAM_URL"`
	StreamBearerToken string `env:"STREAM_BEARER_TOKEN"`

	// RedisURL empty selects the in-memory retention store.
	RedisURL string `env:"REDIS_URL"`

	RetentionTTL   time.Duration `env:"RETENTION_TTL" default:"60s"`
	TickInterval   time.Duration `env:"TICK_INTERVAL" default:"2s"`
	WindowLength   int           `env:"WINDOW_LENGTH" default:"30"`
	TrendTopN      int           `env:"TREND_TOP_N" default:"5"`
	ComparisonTopN int           `env:"COMPARISON_TOP_N" default:"10"`

	// Comma-separated keyword categories to track, e.g. "fortnite,fifa".
	TrackedKeywordsRaw string `env:"TRACKED_KEYWORDS"`
	// Comma-separated additions to the built-in stopword set.
	ExtraStopwordsRaw string `env:"EXTRA_STOPWORDS"`

	MaxWebSocketClients int `env:"MAX_WEBSOCKET_CLIENTS" default:"512"`

	// Parsed forms, populated by Load. No env tags: go-simpler/env skips
	// untagged fields.
	TrackedKeywords []string
	ExtraStopwords  []string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.TrackedKeywords = splitList(cfg.TrackedKeywordsRaw)
	cfg.ExtraStopwords = splitList(cfg.ExtraStopwordsRaw)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if len(cfg.TrackedKeywords) == 0 {
		return errors.New("TRACKED_KEYWORDS is required")
	}
	if cfg.RetentionTTL <= 0 {
		return errors.New("RETENTION_TTL must be positive")
	}
	if cfg.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	if cfg.WindowLength <= 0 {
		return errors.New("WINDOW_LENGTH must be positive")
	}
	if cfg.TrendTopN <= 0 || cfg.ComparisonTopN <= 0 {
		return errors.New("TREND_TOP_N and COMPARISON_TOP_N must be positive")
	}
	if cfg.TrendTopN > cfg.ComparisonTopN {
		return fmt.Errorf("TREND_TOP_N (%d) must not exceed COMPARISON_TOP_N (%d)", cfg.TrendTopN, cfg.ComparisonTopN)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
