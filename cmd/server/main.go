package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jishubasak/tweetpulse/internal/config"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/feed"
	"github.com/jishubasak/tweetpulse/internal/logging"
	"github.com/jishubasak/tweetpulse/internal/metrics"
	"github.com/jishubasak/tweetpulse/internal/sentiment"
	"github.com/jishubasak/tweetpulse/internal/server"
	"github.com/jishubasak/tweetpulse/internal/store"
	"github.com/jishubasak/tweetpulse/internal/text"
	"github.com/jishubasak/tweetpulse/internal/trends"
	"github.com/jishubasak/tweetpulse/internal/version"
	"github.com/jishubasak/tweetpulse/internal/websocket"
	"github.com/jonboulle/clockwork"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config, clock clockwork.Clock) domain.RecordStore {
	if cfg.RedisURL == "" {
		slog.Info("Using in-memory retention store", "ttl", cfg.RetentionTTL)
		return store.NewMemoryStore(clock, cfg.RetentionTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := store.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	slog.Info("Using Redis retention store", "ttl", cfg.RetentionTTL)
	return store.NewRedisStore(client, clock, cfg.RetentionTTL)
}

func runGracefulShutdown(cancel context.CancelFunc, srv *server.Server, hub *websocket.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// Stop the feed and the aggregator first so no tick starts while
		// the server drains.
		cancel()

		shutdownCtx, cancelTimeout := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelTimeout()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", info.Version,
		"tracked_keywords", cfg.TrackedKeywords,
	)

	recordStore := setupStore(cfg, clock)

	normalizer := text.NewNormalizer(cfg.ExtraStopwords...)
	keywords := text.NewKeywordSet(cfg.TrackedKeywords)
	scorer := sentiment.NewGuardedScorer(sentiment.NewLexicon())

	hub := websocket.NewHub(cfg.MaxWebSocketClients)

	aggregator := trends.NewAggregator(recordStore, scorer, normalizer, keywords, hub, clock, trends.Config{
		Interval:       cfg.TickInterval,
		TrendTopN:      cfg.TrendTopN,
		ComparisonTopN: cfg.ComparisonTopN,
		WindowLength:   cfg.WindowLength,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go aggregator.Run(ctx)

	if cfg.StreamURL != "" {
		client := feed.NewClient(cfg.StreamURL, cfg.StreamBearerToken, recordStore, clock)
		go client.Run(ctx)
	} else {
		slog.Warn("STREAM_URL not set, running without an upstream feed")
	}

	srv := server.NewServer(cfg, aggregator, hub)

	done := runGracefulShutdown(cancel, srv, hub)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
