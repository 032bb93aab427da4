package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/venuefinder/core"
)

// MockSentimentScorer is a test double for ai.SentimentScorer.
// By default it labels text with a small Russian/Kazakh polarity lexicon.
type MockSentimentScorer struct {
	// ScoreTextsFunc is called by Score and ScoreTexts if set.
	ScoreTextsFunc func(ctx context.Context, texts []string) ([]core.Sentiment, error)

	callCount atomic.Int64
}

// NewMockSentimentScorer creates a mock scorer with lexicon behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSentimentScorer() *MockSentimentScorer {
	return &MockSentimentScorer{}
}

// ModelName identifies the mock.
func (m *MockSentimentScorer) ModelName() string {
	return "mock-sentiment"
}

// Score classifies a single text.
func (m *MockSentimentScorer) Score(ctx context.Context, text string) (core.Sentiment, error) {
	out, err := m.ScoreTexts(ctx, []string{text})
	if err != nil {
		return core.Sentiment{}, err
	}
	return out[0], nil
}

// ScoreTexts classifies each text, preserving order.
func (m *MockSentimentScorer) ScoreTexts(ctx context.Context, texts []string) ([]core.Sentiment, error) {
	m.callCount.Add(1)

	if m.ScoreTextsFunc != nil {
		return m.ScoreTextsFunc(ctx, texts)
	}

	out := make([]core.Sentiment, len(texts))
	for i, t := range texts {
		out[i] = LexiconSentiment(t)
	}
	return out, nil
}

// CallCount returns the number of ScoreTexts calls, including those made via Score.
func (m *MockSentimentScorer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockSentimentScorer) Reset() {
	m.callCount.Store(0)
	m.ScoreTextsFunc = nil
}

// LexiconSentiment labels text by counting polarity words. Confidence grows
// with the margin between positive and negative hits.
func LexiconSentiment(text string) core.Sentiment {
	pos, neg := polarityCounts(text)
	switch {
	case pos > neg:
		return core.Sentiment{Label: core.SentimentPositive, Confidence: margin(pos - neg)}
	case neg > pos:
		return core.Sentiment{Label: core.SentimentNegative, Confidence: margin(neg - pos)}
	default:
		return core.Sentiment{Label: core.SentimentNeutral, Confidence: 0.6}
	}
}

func margin(diff int) float32 {
	return min(1, 0.6+0.2*float32(diff))
}
