package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jishubasak/tweetpulse/internal/domain"
)

// ErrMalformedRecord marks payloads rejected at the feed boundary: empty
// text or an unparsable created_at never reach the retention store.
var ErrMalformedRecord = errors.New("malformed record")

var (
	// ErrEmptyText means no candidate text field carried any content.
	ErrEmptyText = fmt.Errorf("%w: empty text", ErrMalformedRecord)
	// ErrBadTimestamp means created_at did not parse.
	ErrBadTimestamp = fmt.Errorf("%w: unparsable created_at", ErrMalformedRecord)
)

// createdAtLayout is Twitter's legacy timestamp format,
// e.g. "Wed Aug 27 13:08:45 +0000 2008".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// rawTweet mirrors the subset of the stream payload we read. Truncated
// tweets carry their full text in extended_tweet; retweets and quotes nest a
// further payload with its own candidates.
type rawTweet struct {
	CreatedAt     string `json:"created_at"`
	Text          string `json:"text"`
	ExtendedTweet *struct {
		FullText string `json:"full_text"`
	} `json:"extended_tweet"`
	RetweetedStatus *rawTweet `json:"retweeted_status"`
	QuotedStatus    *rawTweet `json:"quoted_status"`
}

func (t *rawTweet) candidateTexts() []string {
	candidates := []string{t.Text}
	if t.ExtendedTweet != nil {
		candidates = append(candidates, t.ExtendedTweet.FullText)
	}
	if t.RetweetedStatus != nil {
		candidates = append(candidates, t.RetweetedStatus.candidateTexts()...)
	}
	if t.QuotedStatus != nil {
		candidates = append(candidates, t.QuotedStatus.candidateTexts()...)
	}
	return candidates
}

// ParseRecord validates and converts one raw stream payload into a Record.
// Among the candidate text fields the longest wins; on equal length the
// earlier candidate is kept, so selection depends on length alone, not on
// which field a text came from.
func ParseRecord(data []byte) (domain.Record, error) {
	var raw rawTweet
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Record{}, fmt.Errorf("%w: decode: %v", ErrMalformedRecord, err)
	}

	text := ""
	for _, candidate := range raw.candidateTexts() {
		if len(candidate) > len(text) {
			text = candidate
		}
	}
	if text == "" {
		return domain.Record{}, ErrEmptyText
	}

	createdAt, err := time.Parse(createdAtLayout, raw.CreatedAt)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w %q: %v", ErrBadTimestamp, raw.CreatedAt, err)
	}

	return domain.Record{CreatedAt: createdAt, Text: text}, nil
}
