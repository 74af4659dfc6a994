// Package metrics counts relay outcomes and writes them in the Prometheus text format
// for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lepinkainen/feed-relay/internal/relay"
	"github.com/lepinkainen/feed-relay/pkg/filesystem"
)

const namespace = "feed_relay"

// Collector implements relay.Recorder on top of a private Prometheus registry
type Collector struct {
	registry *prometheus.Registry

	posted       *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	feedFailures *prometheus.CounterVec
	lastRun      prometheus.Gauge
	lastRunOK    prometheus.Gauge
}

// NewCollector creates a collector with all relay metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		posted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_published_total",
			Help:      "Entries published to the target account.",
		}, []string{"feed"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Entries skipped, by reason.",
		}, []string{"feed", "reason"}),
		feedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_failures_total",
			Help:      "Feeds that could not be fetched or parsed.",
		}, []string{"feed"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		lastRunOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run finished without errors.",
		}),
	}

	c.registry.MustRegister(c.posted, c.skipped, c.feedFailures, c.lastRun, c.lastRunOK)
	return c
}

// Posted implements relay.Recorder
func (c *Collector) Posted(feed string) {
	c.posted.WithLabelValues(feed).Inc()
}

// Skipped implements relay.Recorder
func (c *Collector) Skipped(feed string, reason relay.SkipReason) {
	c.skipped.WithLabelValues(feed, string(reason)).Inc()
}

// FeedFailed implements relay.Recorder
func (c *Collector) FeedFailed(feed string) {
	c.feedFailures.WithLabelValues(feed).Inc()
}

// RunFinished stamps the end of a run
func (c *Collector) RunFinished(at time.Time, err error) {
	c.lastRun.Set(float64(at.Unix()))
	if err != nil {
		c.lastRunOK.Set(0)
		return
	}
	c.lastRunOK.Set(1)
}

// WriteTextfile atomically writes all metrics to path
func (c *Collector) WriteTextfile(path string) error {
	if err := filesystem.EnsureDirectoryExists(path); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
