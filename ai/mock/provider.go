// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import "github.com/poiesic/venuefinder/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	encoder *MockEncoder
	scorer  *MockSentimentScorer
	closed  bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEncoder()/GetMockScorer() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		encoder: NewMockEncoder(),
		scorer:  NewMockSentimentScorer(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
func NewMockProviderWithServices(encoder *MockEncoder, scorer *MockSentimentScorer) ai.AIProvider {
	return &MockProvider{
		encoder: encoder,
		scorer:  scorer,
	}
}

// Encoder returns the mock encoder.
func (p *MockProvider) Encoder() ai.TextEncoder {
	return p.encoder
}

// SentimentScorer returns the mock sentiment scorer.
func (p *MockProvider) SentimentScorer() ai.SentimentScorer {
	return p.scorer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEncoder returns the underlying mock encoder for test assertions.
func (p *MockProvider) GetMockEncoder() *MockEncoder {
	return p.encoder
}

// GetMockScorer returns the underlying mock scorer for test assertions.
func (p *MockProvider) GetMockScorer() *MockSentimentScorer {
	return p.scorer
}
