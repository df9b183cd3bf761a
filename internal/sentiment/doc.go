// Package sentiment implements the polarity scoring contract used by the
// aggregator.
//
// Lexicon is the built-in pure scorer; GuardedScorer adds a circuit breaker
// for deployments that swap in an external scoring service. Scorer failures
// are always partial degradation: the affected record skips its sentiment
// contribution and the tick completes.
package sentiment
