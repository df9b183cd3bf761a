// Package store implements the retention store: the only mutable state
// shared between the feed (producer path) and the aggregator (consumer
// path).
//
// MemoryStore is the default single-instance backend; RedisStore keeps the
// window in a sorted set for deployments that already run Redis. Both
// enforce the TTL on every insert and on every tick, so retained volume is
// bounded by arrival rate times TTL regardless of total lifetime input.
package store
