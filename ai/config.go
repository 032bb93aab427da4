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

package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:8080/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// SentimentHost is the base URL for the sentiment classification API.
	SentimentHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "sentence-transformers/LaBSE", "text-embedding-3-small"
	EmbeddingModel string

	// SentimentModel is the chat model identifier used for sentiment classification.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	SentimentModel string

	// APIToken is sent as the bearer token. Local servers accept "none".
	APIToken string

	// EmbeddingDim pins the expected embedding dimension. 0 accepts whatever
	// the model returns.
	EmbeddingDim int

	// MaxEmbeddingRunes is the truncation window applied to encoder input.
	// Default: 2000
	MaxEmbeddingRunes int

	// MaxSentimentRunes is the truncation window applied to classifier input.
	// Default: 512
	MaxSentimentRunes int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithSentimentHost sets the sentiment service host URL.
func WithSentimentHost(host string) ConfigOption {
	return func(c *Config) {
		c.SentimentHost = host
	}
}

// WithHost sets both embedding and sentiment hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.SentimentHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithSentimentModel sets the sentiment model identifier.
func WithSentimentModel(model string) ConfigOption {
	return func(c *Config) {
		c.SentimentModel = model
	}
}

// WithAPIToken sets the bearer token for both services.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithEmbeddingDim pins the expected embedding dimension.
func WithEmbeddingDim(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbeddingDim = dim
	}
}

// WithMaxRunes sets the truncation windows for encoder and classifier input.
func WithMaxRunes(embedding, sentiment int) ConfigOption {
	return func(c *Config) {
		c.MaxEmbeddingRunes = embedding
		c.MaxSentimentRunes = sentiment
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:8080/v1"
	return &Config{
		EmbeddingHost:     defaultHost,
		SentimentHost:     defaultHost,
		EmbeddingModel:    "sentence-transformers/LaBSE",
		SentimentModel:    "qwen2.5:3b",
		APIToken:          "none",
		MaxEmbeddingRunes: 2000,
		MaxSentimentRunes: 512,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("bge-m3"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, TEI).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.SentimentHost = normalizeHost(c.SentimentHost)
	if c.APIToken == "" {
		c.APIToken = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.SentimentHost == "" {
		return errors.New("ai config: SentimentHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.SentimentModel == "" {
		return errors.New("ai config: SentimentModel is required")
	}
	if c.EmbeddingDim < 0 {
		return errors.New("ai config: EmbeddingDim cannot be negative")
	}
	if c.MaxEmbeddingRunes < 1 || c.MaxSentimentRunes < 1 {
		return errors.New("ai config: truncation windows must be positive")
	}
	return nil
}
