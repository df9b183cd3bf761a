package feed

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jishubasak/tweetpulse/internal/correlation"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// State is the feed connection state machine. The client cycles
// Reconnecting -> Connected -> Backoff -> Reconnecting until its context is
// cancelled.
type State int

const (
	StateBackoff State = iota
	StateReconnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateBackoff:
		return "backoff"
	case StateReconnecting:
		return "reconnecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

const (
	defaultBaseBackoff = 1 * time.Second
	defaultMaxBackoff  = 60 * time.Second
	maxLineBytes       = 1 << 20
)

// Client consumes a newline-delimited JSON tweet stream and inserts valid
// records into the retention store. Transport failures never propagate past
// the client: it reconnects forever with exponential backoff, additionally
// paced by a rate limiter so a tight failure loop cannot hammer the
// upstream.
type Client struct {
	url     string
	token   string
	store   domain.RecordStore
	httpc   *http.Client
	clock   clockwork.Clock
	limiter *rate.Limiter

	baseBackoff time.Duration
	maxBackoff  time.Duration

	mu    sync.Mutex
	state State
}

// NewClient creates a stream client. token may be empty for unauthenticated
// endpoints.
func NewClient(url, token string, store domain.RecordStore, clock clockwork.Clock) *Client {
	return &Client{
		url:         url,
		token:       token,
		store:       store,
		httpc:       &http.Client{},
		clock:       clock,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 3),
		baseBackoff: defaultBaseBackoff,
		maxBackoff:  defaultMaxBackoff,
		state:       StateBackoff,
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	metrics.FeedConnectionState.Set(float64(s))
}

// Run blocks until ctx is cancelled, maintaining the stream connection.
func (c *Client) Run(ctx context.Context) {
	backoff := c.baseBackoff
	for {
		c.setState(StateReconnecting)
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		connCtx := correlation.WithID(ctx, correlation.NewID())
		ingested, err := c.consume(connCtx)
		if ctx.Err() != nil {
			return
		}
		if ingested > 0 {
			// The connection did useful work before dropping; start the
			// backoff ladder over.
			backoff = c.baseBackoff
		}

		c.setState(StateBackoff)
		metrics.FeedReconnects.Inc()
		slog.WarnContext(connCtx, "Stream disconnected, backing off",
			"backoff", backoff,
			"records_ingested", ingested,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(backoff):
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// consume opens the stream and inserts records until the connection drops.
// It returns the number of records ingested on this connection.
func (c *Client) consume(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	c.setState(StateConnected)
	slog.InfoContext(ctx, "Stream connected", "url", c.url)

	ingested := 0
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue // keep-alive newline
		}

		record, err := ParseRecord(line)
		if err != nil {
			metrics.FeedRecordsDropped.WithLabelValues(dropReason(err)).Inc()
			slog.DebugContext(ctx, "Dropping stream payload", "error", err)
			continue
		}
		if err := c.store.Insert(ctx, record); err != nil {
			slog.WarnContext(ctx, "Insert failed", "error", err)
			continue
		}
		metrics.FeedRecordsIngested.Inc()
		ingested++
	}

	if err := scanner.Err(); err != nil {
		return ingested, fmt.Errorf("read stream: %w", err)
	}
	return ingested, errors.New("stream closed by upstream")
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyText):
		return "empty_text"
	case errors.Is(err, ErrBadTimestamp):
		return "bad_timestamp"
	default:
		return "decode_error"
	}
}
