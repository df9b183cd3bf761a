package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/jishubasak/tweetpulse/internal/domain"
	"github.com/jishubasak/tweetpulse/internal/metrics"
)

// ErrScorerUnavailable is returned while the circuit is open. Callers treat
// it like any scorer failure: the record's sentiment contribution is skipped
// and the tick continues.
var ErrScorerUnavailable = errors.New("sentiment scorer unavailable")

// GuardedScorer wraps a Scorer with a circuit breaker so a failing or slow
// external scorer degrades to skipped sentiment samples instead of stalling
// every tick on repeated failing calls.
type GuardedScorer struct {
	inner domain.Scorer
	cb    circuitbreaker.CircuitBreaker[any]
}

var _ domain.Scorer = (*GuardedScorer)(nil)

// NewGuardedScorer wraps inner with a breaker:
// - 50% failure rate over min 10 requests in a 10s rolling window opens it
// - 15s delay before transitioning from open to half-open
// - 2 successful half-open requests close it again
func NewGuardedScorer(inner domain.Scorer) *GuardedScorer {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.5, 10, 10*time.Second).
		WithDelay(15 * time.Second).
		WithSuccessThreshold(2).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Sentiment scorer circuit breaker state changed",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			metrics.ScorerBreakerState.Set(stateToFloat(e.NewState))
		}).
		Build()

	return &GuardedScorer{inner: inner, cb: cb}
}

func (g *GuardedScorer) Score(ctx context.Context, text string) (float64, error) {
	if !g.cb.TryAcquirePermit() {
		return 0, fmt.Errorf("circuit open: %w", ErrScorerUnavailable)
	}

	value, err := g.inner.Score(ctx, text)
	if err != nil {
		g.cb.RecordError(err)
		return 0, fmt.Errorf("scorer call failed: %w", err)
	}
	g.cb.RecordSuccess()
	return value, nil
}

// State returns the current breaker state (for testing/monitoring).
func (g *GuardedScorer) State() circuitbreaker.State {
	return g.cb.State()
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}
