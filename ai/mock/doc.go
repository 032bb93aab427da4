// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.TextEncoder,
// ai.SentimentScorer, and ai.AIProvider for use in unit tests. The mocks run
// without external services and behave deterministically.
//
// # Usage in Tests
//
//	provider := mock.NewMockProvider()
//	vec, err := provider.Encoder().EmbedText(ctx, "вкусный кофе")
//
//	// Custom behavior injection
//	enc := mock.NewMockEncoder()
//	enc.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, core.ErrModel
//	}
//
//	// Check call counts
//	count := enc.CallCount()
//
// # Default Behavior
//
//   - MockEncoder: bag-of-stems vectors; texts sharing word stems are similar
//   - MockSentimentScorer: polarity lexicon with simple "не" negation
//   - MockProvider: aggregates the two
package mock
