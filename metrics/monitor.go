package metrics

import (
	"time"

	"github.com/poiesic/venuefinder/ann"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Search stages timed by StageTimer.
const (
	StageEmbedding = "embedding"
	StageRetrieval = "retrieval"
	StageSentiment = "sentiment"
	StageRanking   = "ranking"
)

// StageTimer is a search.SearchMonitor that observes the time spent in each
// search stage. Use one per search.
type StageTimer struct {
	hist *prometheus.HistogramVec
	last time.Time
	now  func() time.Time
}

var _ search.SearchMonitor = (*StageTimer)(nil)

// NewStageTimer returns a monitor feeding SearchStageDuration.
func (m *Metrics) NewStageTimer() *StageTimer {
	return &StageTimer{hist: m.SearchStageDuration, now: time.Now}
}

func (t *StageTimer) mark(stage string) {
	now := t.now()
	t.hist.WithLabelValues(stage).Observe(now.Sub(t.last).Seconds())
	t.last = now
}

func (t *StageTimer) Start(_ string)                    { t.last = t.now() }
func (t *StageTimer) AfterEmbedding(_ []float32)        { t.mark(StageEmbedding) }
func (t *StageTimer) AfterRetrieval(_ []ann.Hit)        { t.mark(StageRetrieval) }
func (t *StageTimer) AfterSentiment(_ []core.Sentiment) { t.mark(StageSentiment) }

// Finish observes the ranking stage unless the search ended before
// embedding, as it does for an empty index.
func (t *StageTimer) Finish(results []core.RankedResult) {
	if results == nil {
		return
	}
	t.mark(StageRanking)
}
