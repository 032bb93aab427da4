package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/venuefinder/core"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count of a histogram.
func histogramCount(t *testing.T, h prometheus.Observer) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, h.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestNew_RegistersEverything(t *testing.T) {
	m := New()
	m.ObserveBuild(BuildStats{Outcome: OutcomeBuilt, Accepted: 1, Duration: time.Second})
	m.ObserveSearch(OutcomeOK, time.Millisecond)
	m.SearchStageDuration.WithLabelValues(StageEmbedding).Observe(0.1)
	m.SetIndexSize(1, 1)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	for _, name := range []string{
		"venuefinder_builds_total",
		"venuefinder_build_reviews_total",
		"venuefinder_build_duration_seconds",
		"venuefinder_searches_total",
		"venuefinder_search_duration_seconds",
		"venuefinder_search_stage_duration_seconds",
		"venuefinder_index_reviews",
		"venuefinder_index_venues",
	} {
		assert.True(t, names[name], name)
	}

	// Private registries never collide.
	assert.NotPanics(t, func() { New() })
}

func TestObserveBuild(t *testing.T) {
	m := New()

	m.ObserveBuild(BuildStats{Outcome: OutcomeBuilt, Accepted: 90, Rejected: 5, Filtered: 3, Duration: 2 * time.Second})
	m.ObserveBuild(BuildStats{Outcome: OutcomeSkipped, Accepted: 90})
	m.ObserveBuild(BuildStats{Outcome: OutcomeFailed, Rejected: 40})

	assert.Equal(t, 1.0, counterValue(t, m.BuildsTotal, OutcomeBuilt))
	assert.Equal(t, 1.0, counterValue(t, m.BuildsTotal, OutcomeSkipped))
	assert.Equal(t, 1.0, counterValue(t, m.BuildsTotal, OutcomeFailed))
	assert.Equal(t, 180.0, counterValue(t, m.BuildReviewsTotal, "accepted"))
	assert.Equal(t, 45.0, counterValue(t, m.BuildReviewsTotal, "rejected"))
	assert.Equal(t, 3.0, counterValue(t, m.BuildReviewsTotal, "filtered"))
	assert.Equal(t, uint64(1), histogramCount(t, m.BuildDuration), "only completed builds are timed")
}

func TestObserveSearch(t *testing.T) {
	m := New()
	m.ObserveSearch(OutcomeOK, 10*time.Millisecond)
	m.ObserveSearch(OutcomeOK, 20*time.Millisecond)
	m.ObserveSearch(OutcomeNoIndex, 0)

	assert.Equal(t, 2.0, counterValue(t, m.SearchesTotal, OutcomeOK))
	assert.Equal(t, 1.0, counterValue(t, m.SearchesTotal, OutcomeNoIndex))
	assert.Equal(t, uint64(3), histogramCount(t, m.SearchDuration))

	m.SetIndexSize(1200, 40)
	assert.Equal(t, 1200.0, gaugeValue(t, m.IndexReviews))
	assert.Equal(t, 40.0, gaugeValue(t, m.IndexVenues))
}

func TestStageTimer(t *testing.T) {
	m := New()
	timer := m.NewStageTimer()

	clock := time.Unix(0, 0)
	timer.now = func() time.Time {
		clock = clock.Add(100 * time.Millisecond)
		return clock
	}

	timer.Start("кофе")
	timer.AfterEmbedding(nil)
	timer.AfterRetrieval(nil)
	timer.AfterSentiment(nil)
	timer.Finish([]core.RankedResult{})

	for _, stage := range []string{StageEmbedding, StageRetrieval, StageSentiment, StageRanking} {
		h := m.SearchStageDuration.WithLabelValues(stage)
		assert.Equal(t, uint64(1), histogramCount(t, h), stage)
	}

	empty := m.NewStageTimer()
	empty.Start("кофе")
	empty.Finish(nil)
	assert.Equal(t, uint64(1), histogramCount(t, m.SearchStageDuration.WithLabelValues(StageRanking)),
		"search that ended early records no ranking stage")
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveSearch(OutcomeOK, time.Millisecond)

	path := filepath.Join(t.TempDir(), "venuefinder.prom")
	require.NoError(t, m.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `venuefinder_searches_total{outcome="ok"} 1`))
}
