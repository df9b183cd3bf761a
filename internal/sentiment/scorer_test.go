package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicon_PositiveText(t *testing.T) {
	l := NewLexicon()

	score, err := l.Score(context.Background(), "this game is great, I love it")

	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestLexicon_NegativeText(t *testing.T) {
	l := NewLexicon()

	score, err := l.Score(context.Background(), "terrible update, the lag is awful")

	require.NoError(t, err)
	assert.Less(t, score, 0.0)
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestLexicon_NeutralTextScoresZero(t *testing.T) {
	l := NewLexicon()

	score, err := l.Score(context.Background(), "the patch notes are out today")

	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestLexicon_NegationFlipsValence(t *testing.T) {
	l := NewLexicon()

	positive, err := l.Score(context.Background(), "this is good")
	require.NoError(t, err)
	negated, err := l.Score(context.Background(), "this is not good")
	require.NoError(t, err)

	assert.Greater(t, positive, 0.0)
	assert.Less(t, negated, 0.0)
	assert.InDelta(t, -positive, negated, 1e-9)
}

func TestLexicon_StripsPunctuation(t *testing.T) {
	l := NewLexicon()

	bare, err := l.Score(context.Background(), "awesome")
	require.NoError(t, err)
	punctuated, err := l.Score(context.Background(), "awesome!!!")
	require.NoError(t, err)

	assert.Equal(t, bare, punctuated)
}

func TestLexicon_Deterministic(t *testing.T) {
	l := NewLexicon()

	first, err := l.Score(context.Background(), "I love this but the lag is terrible")
	require.NoError(t, err)
	second, err := l.Score(context.Background(), "I love this but the lag is terrible")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// --- GuardedScorer ---

type failingScorer struct {
	err   error
	calls int
}

func (f *failingScorer) Score(_ context.Context, _ string) (float64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return 0.5, nil
}

func TestGuardedScorer_PassesThroughSuccess(t *testing.T) {
	inner := &failingScorer{}
	g := NewGuardedScorer(inner)

	score, err := g.Score(context.Background(), "nice")

	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, circuitbreaker.ClosedState, g.State())
}

func TestGuardedScorer_OpensAfterRepeatedFailures(t *testing.T) {
	inner := &failingScorer{err: errors.New("upstream down")}
	g := NewGuardedScorer(inner)

	// Drive enough failures through the rolling window to trip the breaker.
	for i := 0; i < 20; i++ {
		_, _ = g.Score(context.Background(), "anything")
	}

	assert.Equal(t, circuitbreaker.OpenState, g.State())

	callsBefore := inner.calls
	_, err := g.Score(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScorerUnavailable)
	assert.Equal(t, callsBefore, inner.calls, "open breaker should not call the inner scorer")
}

func TestGuardedScorer_WrapsInnerError(t *testing.T) {
	innerErr := errors.New("boom")
	g := NewGuardedScorer(&failingScorer{err: innerErr})

	_, err := g.Score(context.Background(), "anything")

	require.Error(t, err)
	assert.ErrorIs(t, err, innerErr)
}
