package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed Metrics
var (
	// FeedRecordsIngested tracks records accepted into the retention store
	FeedRecordsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_records_ingested_total",
			Help: "Total records accepted into the retention store",
		},
	)

	// FeedRecordsDropped tracks records rejected at the boundary by reason
	FeedRecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_records_dropped_total",
			Help: "Total records dropped at the feed boundary by reason (empty_text/bad_timestamp/decode_error)",
		},
		[]string{"reason"},
	)

	// FeedReconnects tracks stream reconnection attempts
	FeedReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_reconnects_total",
			Help: "Total stream reconnection attempts after disconnect",
		},
	)

	// FeedConnectionState tracks the feed state machine (0=backoff, 1=reconnecting, 2=connected)
	FeedConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_connection_state",
			Help: "Current feed connection state (0=backoff, 1=reconnecting, 2=connected)",
		},
	)
)

// Retention Store Metrics
var (
	// StoreRecords tracks the number of records currently retained
	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_records_current",
			Help: "Number of records currently inside the retention window",
		},
	)

	// StoreEvictions tracks records removed by TTL eviction
	StoreEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_evictions_total",
			Help: "Total records evicted after aging past the retention TTL",
		},
	)

	// StoreMalformedDropped tracks malformed records dropped by the store itself
	StoreMalformedDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_malformed_dropped_total",
			Help: "Total malformed records dropped at insert",
		},
	)
)

// Aggregation Metrics
var (
	// TicksTotal tracks aggregation ticks by result
	TicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aggregator_ticks_total",
			Help: "Total aggregation ticks by result (ok/stale/error)",
		},
		[]string{"result"},
	)

	// TickDuration tracks how long one full aggregation pass takes
	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aggregator_tick_duration_seconds",
			Help:    "Aggregation tick duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// LiveSeries tracks the number of keyword series currently on display
	LiveSeries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aggregator_live_series",
			Help: "Number of keyword series currently inside the display window",
		},
	)

	// ScorerFailures tracks sentiment scorer failures (record skipped, tick continues)
	ScorerFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_scorer_failures_total",
			Help: "Total sentiment scorer failures; affected records skip their sentiment contribution",
		},
	)

	// ScorerBreakerState tracks the scorer circuit breaker state (0=closed, 1=half-open, 2=open)
	ScorerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_scorer_breaker_state",
			Help: "Current sentiment scorer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// WebSocket Metrics
var (
	// WebSocketClientsCurrent tracks currently connected dashboard clients
	WebSocketClientsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients_current",
			Help: "Current number of connected WebSocket clients",
		},
	)

	// WebSocketSlowClientsEvicted tracks slow clients dropped during fan-out
	WebSocketSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_slow_clients_evicted_total",
			Help: "Total slow WebSocket clients evicted due to a full send buffer",
		},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
