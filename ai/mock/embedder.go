package mock

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/poiesic/venuefinder/core"
)

// DefaultDim is the dimension of vectors produced by MockEncoder.
const DefaultDim = 64

// MockEncoder is a test double for ai.TextEncoder.
// By default it produces bag-of-stems vectors: texts sharing word stems get
// high cosine similarity, unrelated texts get similarity near zero.
// It allows custom behavior injection via function fields.
type MockEncoder struct {
	// EmbedTextFunc is called by EmbedText if set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	Model string
	Dim   int

	callCount atomic.Int64
	mu        sync.Mutex
	embedded  []string
}

// NewMockEncoder creates a mock encoder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEncoder() *MockEncoder {
	return &MockEncoder{Model: "mock-encoder", Dim: DefaultDim}
}

// ModelName returns the configured model name.
func (m *MockEncoder) ModelName() string {
	return m.Model
}

// EmbedText generates a deterministic embedding for a single text.
func (m *MockEncoder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount.Add(1)
	m.record(text)

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return StemVector(text, m.Dim), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEncoder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount.Add(1)
	m.record(texts...)

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = StemVector(text, m.Dim)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEncoder) CallCount() int {
	return int(m.callCount.Load())
}

// EmbeddedTexts returns every text passed to the encoder, in call order.
func (m *MockEncoder) EmbeddedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.embedded...)
}

// Reset clears the call count, recorded texts and custom functions.
func (m *MockEncoder) Reset() {
	m.callCount.Store(0)
	m.mu.Lock()
	m.embedded = nil
	m.mu.Unlock()
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

func (m *MockEncoder) record(texts ...string) {
	m.mu.Lock()
	m.embedded = append(m.embedded, texts...)
	m.mu.Unlock()
}

// StemVector sums one pseudo-random direction per word stem and normalizes
// the result. Text without words maps to the direction of the empty stem.
func StemVector(text string, dim int) []float32 {
	words := tokenize(text)
	if len(words) == 0 {
		words = []string{""}
	}

	sum := make([]float32, dim)
	for _, w := range words {
		for i, x := range stemDirection(stem(w), dim) {
			sum[i] += x
		}
	}
	return core.NormalizeVector(sum)
}

// stemDirection derives a deterministic vector with zero-centered
// components from an FNV hash of the stem.
func stemDirection(s string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return vector
}
