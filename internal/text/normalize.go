// Package text implements tokenization, stopword filtering, and tracked
// keyword matching for the aggregation pipeline. Everything here is pure:
// same input, same output, no state beyond the configured word sets.
package text

import (
	"regexp"
	"strings"
)

// tokenPattern splits on word boundaries after lowercasing. Pure punctuation
// and whitespace never produce a token.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// denylist removes URL-scheme fragments and retweet noise that survive
// tokenization but carry no signal.
var denylist = []string{
	"http", "https", "www", "t", "co", "rt", "amp",
}

// defaultStopwords is a compact English stopword set. Extend per deployment
// through EXTRA_STOPWORDS rather than editing this list.
var defaultStopwords = []string{
	"a", "about", "after", "again", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "but",
	"by", "can", "could", "did", "do", "does", "doing", "down", "during",
	"each", "few", "for", "from", "further", "had", "has", "have", "having",
	"he", "her", "here", "hers", "him", "his", "how", "i", "if", "in",
	"into", "is", "it", "its", "just", "me", "more", "most", "my", "no",
	"nor", "not", "now", "of", "off", "on", "once", "only", "or", "other",
	"our", "out", "over", "own", "same", "she", "so", "some", "such", "than",
	"that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very", "was",
	"we", "were", "what", "when", "where", "which", "while", "who", "whom",
	"why", "will", "with", "you", "your", "yours",
}

// Normalizer turns raw text into a filtered token sequence.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer builds a normalizer from the built-in stopword set, the
// denylist, and any deployment-specific extras.
func NewNormalizer(extraStopwords ...string) *Normalizer {
	stop := make(map[string]struct{}, len(defaultStopwords)+len(denylist)+len(extraStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range denylist {
		stop[w] = struct{}{}
	}
	for _, w := range extraStopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stop}
}

// Normalize lowercases, tokenizes on word boundaries, and drops stopword and
// denylisted tokens. Token order follows the input text.
func (n *Normalizer) Normalize(s string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(s), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, skip := n.stopwords[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// KeywordSet matches normalized tokens against the configured tracked
// keyword categories, case-insensitively.
type KeywordSet struct {
	canonical map[string]string
}

// NewKeywordSet builds a keyword set. The original casing of each keyword is
// kept as the canonical display form.
func NewKeywordSet(keywords []string) KeywordSet {
	canonical := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		canonical[strings.ToLower(kw)] = kw
	}
	return KeywordSet{canonical: canonical}
}

// Match returns the multiset of tracked keywords present in tokens: one
// entry per occurrence, so a record can contribute to several categories
// and a repeated keyword counts repeatedly.
func (k KeywordSet) Match(tokens []string) []string {
	var matched []string
	for _, tok := range tokens {
		if kw, ok := k.canonical[tok]; ok {
			matched = append(matched, kw)
		}
	}
	return matched
}

// Contains reports whether token is a tracked keyword and returns its
// canonical form.
func (k KeywordSet) Contains(token string) (string, bool) {
	kw, ok := k.canonical[strings.ToLower(token)]
	return kw, ok
}

// Len reports the number of tracked keyword categories.
func (k KeywordSet) Len() int {
	return len(k.canonical)
}
