package domain

import (
	"context"
	"time"
)

// --- Model types ---

// Record is a single ingested tweet. Immutable once stored; the retention
// store drops it when it ages past the TTL.
type Record struct {
	CreatedAt time.Time
	Text      string
}

// KeywordCount is one row of a top-N frequency table.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// SeriesPoint is a single sample of a keyword series.
type SeriesPoint struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// KeywordSeries holds the bounded count and sentiment histories for one
// keyword. A keyword absent from a tick has no point for that tick; gaps are
// never filled.
type KeywordSeries struct {
	Keyword   string        `json:"keyword"`
	Counts    []SeriesPoint `json:"counts"`
	Sentiment []SeriesPoint `json:"sentiment"`
}

// TrendFrame is the complete result of one aggregation tick. Frames are
// built in full before they are published; consumers never observe a
// partially updated tick.
type TrendFrame struct {
	At         time.Time       `json:"at"`
	Trend      []KeywordCount  `json:"trend"`
	Comparison []KeywordCount  `json:"comparison"`
	Series     []KeywordSeries `json:"series"`
	Axis       []time.Time     `json:"axis"`
}

// --- Interfaces ---

// RecordStore is the retention store shared by the feed (producer path) and
// the aggregator (consumer path). Implementations must be safe for
// concurrent use: Insert never waits for an in-progress tick, and Snapshot
// is atomic with respect to concurrent inserts and evictions.
type RecordStore interface {
	// Insert appends a record. It never blocks and never rejects a
	// well-formed record; malformed records (empty text, zero timestamp)
	// are dropped, not stored.
	Insert(ctx context.Context, r Record) error

	// EvictExpired removes every record older than the TTL relative to now
	// and reports how many were removed.
	EvictExpired(ctx context.Context, now time.Time) (int, error)

	// Snapshot returns an immutable copy of the current records.
	Snapshot(ctx context.Context) ([]Record, error)

	// Len reports the number of currently retained records.
	Len(ctx context.Context) (int, error)
}

// Scorer maps a text to a compound polarity score in [-1, 1], higher being
// more positive. A scorer failure skips that record's sentiment
// contribution for the current tick; it never aborts the tick.
type Scorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// FramePublisher receives each completed tick frame for fan-out to
// downstream consumers.
type FramePublisher interface {
	Publish(frame *TrendFrame)
}
