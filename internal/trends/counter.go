package trends

import (
	"sort"

	"github.com/jishubasak/tweetpulse/internal/domain"
)

// Counter counts token frequencies while remembering first-seen order, so
// equal counts rank deterministically instead of following map iteration
// order.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add records one occurrence of token.
func (c *Counter) Add(token string) {
	if _, seen := c.counts[token]; !seen {
		c.order = append(c.order, token)
	}
	c.counts[token]++
}

// Count returns the current count for token.
func (c *Counter) Count(token string) int {
	return c.counts[token]
}

// Len returns the number of distinct tokens.
func (c *Counter) Len() int {
	return len(c.order)
}

// TopN returns the n most frequent tokens. Ties resolve to the token seen
// first; the result is deterministic for a given insertion sequence.
func (c *Counter) TopN(n int) []domain.KeywordCount {
	ranked := make([]domain.KeywordCount, 0, len(c.order))
	for _, token := range c.order {
		ranked = append(ranked, domain.KeywordCount{Keyword: token, Count: c.counts[token]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
