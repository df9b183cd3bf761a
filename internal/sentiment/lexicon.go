package sentiment

import (
	"context"
	"math"
	"strings"
)

// lexiconWeights maps sentiment-bearing words to valence weights on the
// usual -5..+5 scale. Compact subset tuned for short social-media text.
var lexiconWeights = map[string]float64{
	"amazing": 4, "awesome": 4, "best": 3, "brilliant": 4, "cool": 1,
	"enjoy": 2, "excellent": 3, "excited": 3, "fantastic": 4, "fun": 4,
	"glad": 3, "good": 3, "great": 3, "happy": 3, "like": 2, "love": 3,
	"loved": 3, "nice": 3, "perfect": 3, "win": 4, "wins": 4, "won": 3,
	"wonderful": 4, "wow": 4, "yes": 1,

	"angry": -3, "annoying": -2, "awful": -3, "bad": -3, "boring": -3,
	"broken": -1, "bug": -2, "crash": -2, "disappointed": -2, "fail": -2,
	"hate": -3, "hated": -3, "horrible": -3, "lag": -2, "lose": -3,
	"lost": -3, "mad": -3, "poor": -2, "sad": -2, "scam": -2, "terrible": -3,
	"toxic": -3, "trash": -2, "ugly": -3, "worst": -3, "wrong": -2,
}

// negations flip the valence of the word that follows them.
var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "cannot": {},
	"cant": {}, "dont": {}, "wont": {}, "isnt": {}, "wasnt": {},
	"didnt": {}, "doesnt": {},
}

// normalizationAlpha dampens the compound score so that a handful of strong
// words approaches but never reaches +/-1.
const normalizationAlpha = 15

// Lexicon is a self-contained valence-lexicon scorer. It is deterministic
// and allocation-light, suitable for per-record invocation inside a tick.
type Lexicon struct{}

// NewLexicon returns the built-in lexicon scorer.
func NewLexicon() *Lexicon {
	return &Lexicon{}
}

// Score returns a compound polarity score in [-1, 1], higher being more
// positive. Text with no sentiment-bearing words scores exactly 0.
func (l *Lexicon) Score(_ context.Context, text string) (float64, error) {
	var sum float64
	negated := false
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?;:'\"()#@")
		word = strings.ReplaceAll(word, "'", "")
		if _, ok := negations[word]; ok {
			negated = true
			continue
		}
		if weight, ok := lexiconWeights[word]; ok {
			if negated {
				weight = -weight
			}
			sum += weight
		}
		negated = false
	}
	if sum == 0 {
		return 0, nil
	}
	return sum / math.Sqrt(sum*sum+normalizationAlpha), nil
}
