package trends

import (
	"errors"
	"time"

	"github.com/jishubasak/tweetpulse/internal/domain"
)

// ErrStaleTick is returned by Merge when the tick timestamp is not strictly
// after the newest axis timestamp. Duplicate and out-of-order ticks are
// rejected whole rather than double-counted.
var ErrStaleTick = errors.New("tick timestamp not after newest axis timestamp")

type seriesEntry struct {
	counts    []domain.SeriesPoint
	sentiment []domain.SeriesPoint
	lastAt    time.Time
}

// TickSample carries one keyword's results for a single tick. HasSentiment
// is false when no record matching the keyword produced a score this tick;
// a missing sample stays missing, it is never recorded as zero.
type TickSample struct {
	Keyword      string
	Count        int
	Sentiment    float64
	HasSentiment bool
}

// SeriesWindow maintains the shared axis of the last W tick timestamps and
// the per-keyword count/sentiment histories hanging off it. Series are
// created when a keyword first ranks, and evicted once their newest sample
// falls behind the oldest retained axis timestamp — absence from a single
// tick is not enough.
//
// SeriesWindow is not safe for concurrent use; the aggregator owns it and
// mutates it from a single goroutine.
type SeriesWindow struct {
	capacity int
	axis     []time.Time
	order    []string
	series   map[string]*seriesEntry
}

// NewSeriesWindow creates a window retaining the last capacity ticks.
func NewSeriesWindow(capacity int) *SeriesWindow {
	return &SeriesWindow{
		capacity: capacity,
		series:   make(map[string]*seriesEntry),
	}
}

// Merge applies one tick's ranked samples at timestamp now: pushes now onto
// the axis, appends a count point (and a sentiment point when present) for
// every sample, and evicts series that produced no sample for a full
// window's worth of ticks. Applying the same now twice is rejected with
// ErrStaleTick, leaving all series untouched.
func (w *SeriesWindow) Merge(samples []TickSample, now time.Time) error {
	if len(w.axis) > 0 && !now.After(w.axis[len(w.axis)-1]) {
		return ErrStaleTick
	}

	w.axis = append(w.axis, now)
	if len(w.axis) > w.capacity {
		w.axis = w.axis[len(w.axis)-w.capacity:]
	}

	for _, s := range samples {
		entry, ok := w.series[s.Keyword]
		if !ok {
			entry = &seriesEntry{}
			w.series[s.Keyword] = entry
			w.order = append(w.order, s.Keyword)
		}
		entry.counts = appendBounded(entry.counts, domain.SeriesPoint{At: now, Value: float64(s.Count)}, w.capacity)
		if s.HasSentiment {
			entry.sentiment = appendBounded(entry.sentiment, domain.SeriesPoint{At: now, Value: s.Sentiment}, w.capacity)
		}
		entry.lastAt = now
	}

	// Surviving series also drop individual points that fell behind the
	// axis minimum, so every retained timestamp stays on the shared axis.
	oldest := w.axis[0]
	kept := w.order[:0]
	for _, kw := range w.order {
		entry := w.series[kw]
		if entry.lastAt.Before(oldest) {
			delete(w.series, kw)
			continue
		}
		entry.counts = trimBefore(entry.counts, oldest)
		entry.sentiment = trimBefore(entry.sentiment, oldest)
		kept = append(kept, kw)
	}
	w.order = kept

	return nil
}

func trimBefore(points []domain.SeriesPoint, oldest time.Time) []domain.SeriesPoint {
	i := 0
	for i < len(points) && points[i].At.Before(oldest) {
		i++
	}
	return points[i:]
}

func appendBounded(points []domain.SeriesPoint, p domain.SeriesPoint, capacity int) []domain.SeriesPoint {
	points = append(points, p)
	if len(points) > capacity {
		points = points[len(points)-capacity:]
	}
	return points
}

// Axis returns a copy of the retained tick timestamps, oldest first.
func (w *SeriesWindow) Axis() []time.Time {
	out := make([]time.Time, len(w.axis))
	copy(out, w.axis)
	return out
}

// Series returns copies of the live keyword series in creation order.
func (w *SeriesWindow) Series() []domain.KeywordSeries {
	out := make([]domain.KeywordSeries, 0, len(w.order))
	for _, kw := range w.order {
		entry := w.series[kw]
		s := domain.KeywordSeries{
			Keyword:   kw,
			Counts:    make([]domain.SeriesPoint, len(entry.counts)),
			Sentiment: make([]domain.SeriesPoint, len(entry.sentiment)),
		}
		copy(s.Counts, entry.counts)
		copy(s.Sentiment, entry.sentiment)
		out = append(out, s)
	}
	return out
}

// Len reports the number of live keyword series.
func (w *SeriesWindow) Len() int {
	return len(w.order)
}
