package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const windowKey = "tweetpulse:window"

// RedisStore keeps the retention window in a sorted set scored by the record
// timestamp in unix milliseconds, so TTL eviction is a single
// ZREMRANGEBYSCORE. Members carry a per-instance sequence number so
// identical texts arriving in the same millisecond stay distinct entries.
type RedisStore struct {
	rdb   *goredis.Client
	clock clockwork.Clock
	ttl   time.Duration
	seq   atomic.Uint64
}

var _ domain.RecordStore = (*RedisStore)(nil)

// NewRedisStore creates a store that retains records for ttl.
func NewRedisStore(rdb *goredis.Client, clock clockwork.Clock, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, clock: clock, ttl: ttl}
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Insert appends a record and trims the window inline, so memory on the
// Redis side stays bounded even between ticks.
func (s *RedisStore) Insert(ctx context.Context, r domain.Record) error {
	if r.Text == "" || r.CreatedAt.IsZero() {
		metrics.StoreMalformedDropped.Inc()
		slog.Warn("Dropping malformed record", "has_text", r.Text != "", "has_timestamp", !r.CreatedAt.IsZero())
		return nil
	}

	ms := r.CreatedAt.UnixMilli()
	member := fmt.Sprintf("%d:%d:%s", ms, s.seq.Add(1), r.Text)
	if err := s.rdb.ZAdd(ctx, windowKey, goredis.Z{Score: float64(ms), Member: member}).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	if _, err := s.EvictExpired(ctx, s.clock.Now()); err != nil {
		return err
	}
	return nil
}

// EvictExpired removes every record with now - created_at >= TTL.
func (s *RedisStore) EvictExpired(ctx context.Context, now time.Time) (int, error) {
	// Inclusive upper bound: a record aged exactly TTL is expired.
	cutoff := now.Add(-s.ttl).UnixMilli()
	removed, err := s.rdb.ZRemRangeByScore(ctx, windowKey, "-inf", strconv.FormatInt(cutoff, 10)).Result()
	if err != nil {
		return 0, fmt.Errorf("zremrangebyscore failed: %w", err)
	}
	if removed > 0 {
		metrics.StoreEvictions.Add(float64(removed))
	}
	return int(removed), nil
}

// Snapshot returns the retained records ordered by timestamp.
func (s *RedisStore) Snapshot(ctx context.Context) ([]domain.Record, error) {
	members, err := s.rdb.ZRange(ctx, windowKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	records := make([]domain.Record, 0, len(members))
	for _, m := range members {
		parts := strings.SplitN(m, ":", 3)
		if len(parts) != 3 {
			continue // corrupt member, skip
		}
		ms, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		records = append(records, domain.Record{
			CreatedAt: time.UnixMilli(ms),
			Text:      parts[2],
		})
	}
	metrics.StoreRecords.Set(float64(len(records)))
	return records, nil
}

// Len reports the number of currently retained records.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	n, err := s.rdb.ZCard(ctx, windowKey).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(n), nil
}
