// Package feed is the upstream producer boundary: it consumes the tweet
// stream, validates payloads, and pushes well-formed records into the
// retention store. Reconnection is the feed's own concern; the aggregation
// core never sees transport failures.
package feed
