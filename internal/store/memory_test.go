package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTTL = 60 * time.Second

func newTestStore() (*MemoryStore, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewMemoryStore(clock, testTTL), clock
}

func record(clock clockwork.Clock, text string) domain.Record {
	return domain.Record{CreatedAt: clock.Now(), Text: text}
}

func TestMemoryStore_InsertAndSnapshot(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, record(clock, "play fortnite now")))
	require.NoError(t, s.Insert(ctx, record(clock, "fortnite is great")))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "play fortnite now", snap[0].Text)
	assert.Equal(t, "fortnite is great", snap[1].Text)
}

func TestMemoryStore_TTLInvariant(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, record(clock, "old message")))
	clock.Advance(testTTL)

	evicted, err := s.EvictExpired(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestMemoryStore_RecordJustInsideTTLSurvives(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, record(clock, "fresh enough")))
	clock.Advance(testTTL - time.Millisecond)

	evicted, err := s.EvictExpired(ctx, clock.Now())
	require.NoError(t, err)
	assert.Zero(t, evicted)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStore_EvictionRunsOnInsert(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, record(clock, "first")))
	clock.Advance(testTTL + time.Second)

	// No explicit eviction call: the insert itself must prune, keeping
	// memory bounded even when no tick runs.
	require.NoError(t, s.Insert(ctx, record(clock, "second")))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "second", snap[0].Text)
}

func TestMemoryStore_DropsMalformedRecords(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, domain.Record{CreatedAt: clock.Now()}))
	require.NoError(t, s.Insert(ctx, domain.Record{Text: "no timestamp"}))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStore_SnapshotIsImmutable(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, record(clock, "original")))

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snap[0].Text = "mutated"

	again, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Text)
}

func TestMemoryStore_BoundedMemoryUnderSustainedInput(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	// Ten "seconds" of arrivals at 5/s with a 2s TTL equivalent: use the
	// real TTL and insert across 3x its span, checking the store never
	// exceeds one TTL's worth of arrivals.
	perStep := 5
	step := time.Second
	maxRetained := perStep * int(testTTL/step)

	for i := 0; i < 3*int(testTTL/step); i++ {
		for j := 0; j < perStep; j++ {
			require.NoError(t, s.Insert(ctx, record(clock, fmt.Sprintf("msg-%d-%d", i, j))))
		}
		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, maxRetained)
		clock.Advance(step)
	}
}

func TestMemoryStore_ConcurrentInsertAndSnapshot(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Insert(ctx, domain.Record{CreatedAt: clock.Now(), Text: fmt.Sprintf("w%d-%d", w, i)})
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			snap, err := s.Snapshot(ctx)
			assert.NoError(t, err)
			for _, r := range snap {
				// No torn reads: every snapshotted record is fully populated.
				assert.NotEmpty(t, r.Text)
				assert.False(t, r.CreatedAt.IsZero())
			}
			_, _ = s.EvictExpired(ctx, clock.Now())
		}
	}()
	wg.Wait()

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 400, n)
}

func TestMemoryStore_EndToEndEvictionScenario(t *testing.T) {
	s, clock := newTestStore()
	ctx := context.Background()
	t0 := clock.Now()

	require.NoError(t, s.Insert(ctx, domain.Record{CreatedAt: t0, Text: "play fortnite now"}))
	require.NoError(t, s.Insert(ctx, domain.Record{CreatedAt: t0.Add(time.Second), Text: "fortnite is great"}))

	// Tick at t0+5s: both records visible.
	_, err := s.EvictExpired(ctx, t0.Add(5*time.Second))
	require.NoError(t, err)
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)

	// A late record created at t0+61s, then a tick at t0+65s: the two
	// early records are past the TTL, only the late one survives.
	require.NoError(t, s.Insert(ctx, domain.Record{CreatedAt: t0.Add(61 * time.Second), Text: "old message"}))
	_, err = s.EvictExpired(ctx, t0.Add(65*time.Second))
	require.NoError(t, err)
	snap, err = s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, "old message", snap[0].Text)
}
