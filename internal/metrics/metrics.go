// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records catalog and search activity.
type Collector struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	searches        prometheus.Counter
	searchDuration  prometheus.Histogram
	historyRecorded prometheus.Counter
	persistFailures prometheus.Counter
}

// NewCollector creates a Collector backed by its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "findr_catalog_mutations_total",
			Help: "Catalog mutations by entity and action.",
		}, []string{"entity", "action"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findr_searches_total",
			Help: "Search requests evaluated.",
		}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "findr_search_duration_seconds",
			Help:    "Search evaluation latency.",
			Buckets: prometheus.DefBuckets,
		}),
		historyRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findr_history_recorded_total",
			Help: "Search history entries recorded.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "findr_persist_failures_total",
			Help: "Backing-store writes that failed after the in-memory mutation applied.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		c.mutations,
		c.searches,
		c.searchDuration,
		c.historyRecorded,
		c.persistFailures,
	)
	return c
}

// RecordMutation counts a committed catalog mutation.
func (c *Collector) RecordMutation(entity, action string) {
	c.mutations.WithLabelValues(entity, action).Inc()
}

// RecordSearch counts one search and its evaluation latency.
func (c *Collector) RecordSearch(d time.Duration) {
	c.searches.Inc()
	c.searchDuration.Observe(d.Seconds())
}

// RecordHistory counts a recorded history entry.
func (c *Collector) RecordHistory() {
	c.historyRecorded.Inc()
}

// RecordPersistFailure counts a surfaced persistence error.
func (c *Collector) RecordPersistFailure() {
	c.persistFailures.Inc()
}

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
