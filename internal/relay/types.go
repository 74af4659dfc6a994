package relay

import (
	"context"
	"errors"
)

// ErrFeedFailed marks a feed that could not be fetched or parsed
var ErrFeedFailed = errors.New("feed failed")

// FeedSource is a single configured feed
type FeedSource struct {
	Label string
	URL   string
}

// FeedItem is one entry of a fetched feed. Absent fields are nil.
type FeedItem struct {
	Title       *string
	Description *string
	Link        *string
}

// PreparedPost is a status ready to be published
type PreparedPost struct {
	Body        string
	SpoilerText *string
	Sensitive   bool
	Language    string
}

// PendingPost is a prepared post together with the entry it was built from
type PendingPost struct {
	Feed FeedSource
	Link string
	Post PreparedPost
}

// SkipReason describes why an entry was not posted
type SkipReason string

// Skip reasons
const (
	SkipMissingLink        SkipReason = "missing_link"
	SkipAlreadyPosted      SkipReason = "already_posted"
	SkipMissingTitle       SkipReason = "missing_title"
	SkipMissingDescription SkipReason = "missing_description"
)

// Summary counts the outcome of a run
type Summary struct {
	Posted      int
	Skipped     map[SkipReason]int
	FeedsFailed int
}

// TotalSkipped returns the number of skipped entries across all reasons
func (s Summary) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// DedupStore remembers which links have been published
type DedupStore interface {
	WasPosted(ctx context.Context, url string) (bool, error)
	MarkPosted(ctx context.Context, url string) error
}

// Publisher sends a prepared post to the target account
type Publisher interface {
	Publish(ctx context.Context, post PreparedPost) error
}

// FeedFetcher retrieves and parses a feed
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]FeedItem, error)
}

// Recorder receives per-item outcomes, e.g. for metrics
type Recorder interface {
	Posted(feed string)
	Skipped(feed string, reason SkipReason)
	FeedFailed(feed string)
}

type nopRecorder struct{}

func (nopRecorder) Posted(string) {}
func (nopRecorder) Skipped(string, SkipReason) {}
func (nopRecorder) FeedFailed(string) {}
