// Package metrics exposes build and search counters for venuefinder.
//
// Collectors live on a private registry owned by each Metrics value, so
// several engines in one process (or one test binary) never collide. The
// CLI is short-lived and has nothing to scrape it; it dumps the registry in
// the node_exporter textfile format with WriteToTextfile instead.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Build outcomes.
const (
	OutcomeBuilt   = "built"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Search outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeNoIndex = "no_index"
	OutcomeError   = "error"
)

// BuildBuckets covers builds from a few seconds to several hours.
var BuildBuckets = []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200, 14400}

// SearchBuckets covers model-bound query latencies from 10ms to 30s.
var SearchBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Metrics holds the collectors of one engine.
type Metrics struct {
	registry *prometheus.Registry

	// BuildsTotal counts build attempts by outcome.
	BuildsTotal *prometheus.CounterVec

	// BuildReviewsTotal counts dataset reviews seen by builds, by status
	// (accepted, rejected, filtered).
	BuildReviewsTotal *prometheus.CounterVec

	// BuildDuration records the wall time of builds that ran.
	BuildDuration prometheus.Histogram

	// SearchesTotal counts searches by outcome.
	SearchesTotal *prometheus.CounterVec

	// SearchDuration records end-to-end search latency.
	SearchDuration prometheus.Histogram

	// SearchStageDuration records latency per search stage
	// (embedding, retrieval, sentiment, ranking).
	SearchStageDuration *prometheus.HistogramVec

	// IndexReviews is the number of reviews in the active index.
	IndexReviews prometheus.Gauge

	// IndexVenues is the number of venues in the active index.
	IndexVenues prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuefinder_builds_total",
				Help: "Index builds",
			},
			[]string{"outcome"},
		),
		BuildReviewsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuefinder_build_reviews_total",
				Help: "Reviews processed by builds",
			},
			[]string{"status"},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "venuefinder_build_duration_seconds",
				Help:    "Build duration",
				Buckets: BuildBuckets,
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venuefinder_searches_total",
				Help: "Searches",
			},
			[]string{"outcome"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "venuefinder_search_duration_seconds",
				Help:    "Search duration",
				Buckets: SearchBuckets,
			},
		),
		SearchStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venuefinder_search_stage_duration_seconds",
				Help:    "Search duration per stage",
				Buckets: SearchBuckets,
			},
			[]string{"stage"},
		),
		IndexReviews: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "venuefinder_index_reviews",
				Help: "Reviews in the active index",
			},
		),
		IndexVenues: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "venuefinder_index_venues",
				Help: "Venues in the active index",
			},
		),
	}

	m.registry.MustRegister(
		m.BuildsTotal,
		m.BuildReviewsTotal,
		m.BuildDuration,
		m.SearchesTotal,
		m.SearchDuration,
		m.SearchStageDuration,
		m.IndexReviews,
		m.IndexVenues,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BuildStats is what a build reports to ObserveBuild.
type BuildStats struct {
	Outcome  string
	Accepted int
	Rejected int
	Filtered int
	Duration time.Duration
}

// ObserveBuild records one build attempt. Duration is only observed for
// builds that ran to completion.
func (m *Metrics) ObserveBuild(s BuildStats) {
	m.BuildsTotal.WithLabelValues(s.Outcome).Inc()
	m.BuildReviewsTotal.WithLabelValues("accepted").Add(float64(s.Accepted))
	m.BuildReviewsTotal.WithLabelValues("rejected").Add(float64(s.Rejected))
	m.BuildReviewsTotal.WithLabelValues("filtered").Add(float64(s.Filtered))
	if s.Outcome == OutcomeBuilt {
		m.BuildDuration.Observe(s.Duration.Seconds())
	}
}

// ObserveSearch records one search.
func (m *Metrics) ObserveSearch(outcome string, d time.Duration) {
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	m.SearchDuration.Observe(d.Seconds())
}

// SetIndexSize publishes the size of the active index.
func (m *Metrics) SetIndexSize(reviews, venues int) {
	m.IndexReviews.Set(float64(reviews))
	m.IndexVenues.Set(float64(venues))
}

// WriteToTextfile writes every collector to path in the text exposition
// format, atomically replacing any previous file.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
