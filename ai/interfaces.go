package ai

import (
	"context"

	"github.com/poiesic/venuefinder/core"
)

// TextEncoder maps text to fixed-dimension vectors for semantic similarity.
// Every returned vector is L2-normalized so that cosine similarity equals the
// inner product. Implementations must be thread-safe for concurrent use.
type TextEncoder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping core.ErrModel if the encoder fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple texts in one call.
	// The returned slice has the same length and order as texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the encoder. It is persisted with every index so a
	// later load can detect a model change.
	ModelName() string
}

// SentimentScorer classifies text polarity.
// Implementations must be thread-safe for concurrent use.
type SentimentScorer interface {
	// Score classifies a single text.
	Score(ctx context.Context, text string) (core.Sentiment, error)

	// ScoreTexts classifies multiple texts, preserving order.
	ScoreTexts(ctx context.Context, texts []string) ([]core.Sentiment, error)

	// ModelName identifies the classifier.
	ModelName() string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Encoder returns the text embedding service.
	Encoder() TextEncoder

	// SentimentScorer returns the sentiment classification service.
	SentimentScorer() SentimentScorer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
