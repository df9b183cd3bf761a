package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
	"github.com/jonboulle/clockwork"
)

// MemoryStore is the in-memory retention store for single-instance mode: an
// append log of records guarded by a single mutex. Record volume between
// ticks is small, so the lock is never contended for long; Snapshot copies
// out under the lock so readers never see a half-evicted state.
type MemoryStore struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	records []domain.Record
}

var _ domain.RecordStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store that retains records for ttl.
func NewMemoryStore(clock clockwork.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{clock: clock, ttl: ttl}
}

// Insert appends a record and runs an eviction pass, keeping memory
// proportional to arrival rate times TTL even if no tick runs for a while.
// Malformed records are dropped and logged, never stored.
func (s *MemoryStore) Insert(_ context.Context, r domain.Record) error {
	if r.Text == "" || r.CreatedAt.IsZero() {
		metrics.StoreMalformedDropped.Inc()
		slog.Warn("Dropping malformed record", "has_text", r.Text != "", "has_timestamp", !r.CreatedAt.IsZero())
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	s.evictLocked(s.clock.Now())
	return nil
}

// EvictExpired removes every record with now - created_at >= TTL.
func (s *MemoryStore) EvictExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(now), nil
}

func (s *MemoryStore) evictLocked(now time.Time) int {
	kept := s.records[:0]
	for _, r := range s.records {
		if now.Sub(r.CreatedAt) < s.ttl {
			kept = append(kept, r)
		}
	}
	evicted := len(s.records) - len(kept)
	// Clear the tail so evicted records are collectable.
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = domain.Record{}
	}
	s.records = kept
	if evicted > 0 {
		metrics.StoreEvictions.Add(float64(evicted))
	}
	metrics.StoreRecords.Set(float64(len(s.records)))
	return evicted
}

// Snapshot returns an immutable copy of the retained records.
func (s *MemoryStore) Snapshot(_ context.Context) ([]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Len reports the number of currently retained records.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}
