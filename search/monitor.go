package search

import (
	"github.com/poiesic/venuefinder/ann"
	"github.com/poiesic/venuefinder/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterRetrieval(hits []ann.Hit)
	AfterSentiment(sentiments []core.Sentiment)
	Finish(results []core.RankedResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterEmbedding(_ []float32)        {}
func (n *noopMonitor) AfterRetrieval(_ []ann.Hit)        {}
func (n *noopMonitor) AfterSentiment(_ []core.Sentiment) {}
func (n *noopMonitor) Finish(_ []core.RankedResult)      {}
