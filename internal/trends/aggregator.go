package trends

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jishubasak/tweetpulse/internal/correlation"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
	"github.com/jishubasak/tweetpulse/internal/text"
	"github.com/jonboulle/clockwork"
)

// Config carries the aggregation cadence and ranking sizes.
type Config struct {
	Interval       time.Duration
	TrendTopN      int
	ComparisonTopN int
	WindowLength   int
}

// Aggregator drives the periodic recomputation: on every tick it evicts the
// retention store, snapshots it, recounts token frequencies, averages
// per-keyword sentiment, and merges the results into the series window. The
// last completed frame is held for read-side consumers; a tick either
// completes fully or leaves the previous frame in place.
type Aggregator struct {
	store      domain.RecordStore
	scorer     domain.Scorer
	normalizer *text.Normalizer
	keywords   text.KeywordSet
	publisher  domain.FramePublisher
	clock      clockwork.Clock
	cfg        Config

	// window is mutated only by the tick goroutine.
	window *SeriesWindow

	mu    sync.RWMutex
	frame *domain.TrendFrame
}

// NewAggregator wires an aggregator. publisher may be nil when no push
// consumer is attached.
func NewAggregator(store domain.RecordStore, scorer domain.Scorer, normalizer *text.Normalizer, keywords text.KeywordSet, publisher domain.FramePublisher, clock clockwork.Clock, cfg Config) *Aggregator {
	return &Aggregator{
		store:      store,
		scorer:     scorer,
		normalizer: normalizer,
		keywords:   keywords,
		publisher:  publisher,
		clock:      clock,
		cfg:        cfg,
		window:     NewSeriesWindow(cfg.WindowLength),
	}
}

// Run executes ticks on the configured interval until ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := a.clock.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			tickCtx := correlation.WithID(ctx, correlation.NewID())
			if err := a.Tick(tickCtx); err != nil {
				if errors.Is(err, ErrStaleTick) {
					metrics.TicksTotal.WithLabelValues("stale").Inc()
					slog.WarnContext(tickCtx, "Tick rejected: timestamp not after previous tick")
					continue
				}
				metrics.TicksTotal.WithLabelValues("error").Inc()
				slog.WarnContext(tickCtx, "Tick failed", "error", err)
				continue
			}
			metrics.TicksTotal.WithLabelValues("ok").Inc()
		}
	}
}

// Tick runs one full aggregation pass. It is exported for deterministic
// driving in tests and returns ErrStaleTick when the series window rejects
// the tick timestamp.
func (a *Aggregator) Tick(ctx context.Context) error {
	now := a.clock.Now()

	if _, err := a.store.EvictExpired(ctx, now); err != nil {
		return fmt.Errorf("evict: %w", err)
	}
	records, err := a.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	bag := NewCounter()
	type sentimentAcc struct {
		sum float64
		n   int
	}
	sums := make(map[string]*sentimentAcc)

	for _, r := range records {
		tokens := a.normalizer.Normalize(r.Text)
		for _, tok := range tokens {
			bag.Add(tok)
		}

		matched := a.keywords.Match(tokens)
		if len(matched) == 0 {
			continue
		}
		score, err := a.scorer.Score(ctx, r.Text)
		if err != nil {
			metrics.ScorerFailures.Inc()
			slog.DebugContext(ctx, "Scorer failed, skipping record sentiment", "error", err)
			continue
		}
		// One sentiment contribution per category per record, even when the
		// keyword repeats within the text.
		seen := make(map[string]struct{}, len(matched))
		for _, kw := range matched {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}
			acc, ok := sums[kw]
			if !ok {
				acc = &sentimentAcc{}
				sums[kw] = acc
			}
			acc.sum += score
			acc.n++
		}
	}

	comparison := bag.TopN(a.cfg.ComparisonTopN)
	// Tracked keywords display in their configured casing; trend shares
	// comparison's backing array, so rewriting here covers both tables and
	// keeps series keyed consistently with the sentiment accumulators.
	for i, kc := range comparison {
		if kw, tracked := a.keywords.Contains(kc.Keyword); tracked {
			comparison[i].Keyword = kw
		}
	}
	trend := comparison
	if len(trend) > a.cfg.TrendTopN {
		trend = trend[:a.cfg.TrendTopN]
	}

	samples := make([]TickSample, 0, len(trend))
	for _, kc := range trend {
		sample := TickSample{Keyword: kc.Keyword, Count: kc.Count}
		if kw, tracked := a.keywords.Contains(kc.Keyword); tracked {
			if acc, ok := sums[kw]; ok && acc.n > 0 {
				sample.Sentiment = acc.sum / float64(acc.n)
				sample.HasSentiment = true
			}
		}
		samples = append(samples, sample)
	}

	// Abandon before any series mutation if the loop is shutting down.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := a.window.Merge(samples, now); err != nil {
		return err
	}

	frame := &domain.TrendFrame{
		At:         now,
		Trend:      trend,
		Comparison: comparison,
		Series:     a.window.Series(),
		Axis:       a.window.Axis(),
	}

	a.mu.Lock()
	a.frame = frame
	a.mu.Unlock()

	if a.publisher != nil {
		a.publisher.Publish(frame)
	}

	metrics.StoreRecords.Set(float64(len(records)))
	metrics.LiveSeries.Set(float64(a.window.Len()))
	metrics.TickDuration.Observe(a.clock.Since(now).Seconds())

	slog.DebugContext(ctx, "Tick complete",
		"records", len(records),
		"distinct_tokens", bag.Len(),
		"live_series", a.window.Len(),
	)
	return nil
}

// Frame returns the most recently completed frame, or nil before the first
// tick. Frames are immutable once published.
func (a *Aggregator) Frame() *domain.TrendFrame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame
}
