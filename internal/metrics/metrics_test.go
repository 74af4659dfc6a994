package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lepinkainen/feed-relay/internal/relay"
)

var _ relay.Recorder = (*Collector)(nil)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.Posted("Example")
	c.Posted("Example")
	c.Skipped("Example", relay.SkipAlreadyPosted)
	c.Skipped("Other", relay.SkipMissingLink)
	c.FeedFailed("Broken")

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"posted", testutil.ToFloat64(c.posted.WithLabelValues("Example")), 2},
		{"skipped already posted", testutil.ToFloat64(c.skipped.WithLabelValues("Example", "already_posted")), 1},
		{"skipped missing link", testutil.ToFloat64(c.skipped.WithLabelValues("Other", "missing_link")), 1},
		{"feed failures", testutil.ToFloat64(c.feedFailures.WithLabelValues("Broken")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestRunFinished(t *testing.T) {
	c := NewCollector()
	at := time.Unix(1700000000, 0)

	c.RunFinished(at, nil)
	if got := testutil.ToFloat64(c.lastRun); got != 1700000000 {
		t.Errorf("last run = %v, expected 1700000000", got)
	}
	if got := testutil.ToFloat64(c.lastRunOK); got != 1 {
		t.Errorf("last run success = %v, expected 1", got)
	}

	c.RunFinished(at, errors.New("feed failed"))
	if got := testutil.ToFloat64(c.lastRunOK); got != 0 {
		t.Errorf("last run success = %v, expected 0", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector()
	c.Posted("Example")

	path := filepath.Join(t.TempDir(), "textfile", "feed_relay.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), `feed_relay_posts_published_total{feed="Example"} 1`) {
		t.Errorf("textfile does not contain the posted counter:\n%s", data)
	}
}
