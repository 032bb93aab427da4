package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "http://localhost:8080/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:8080/v1", cfg.SentimentHost)
	assert.Equal(t, "sentence-transformers/LaBSE", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.SentimentModel)
	assert.Equal(t, 2000, cfg.MaxEmbeddingRunes)
	assert.Equal(t, 512, cfg.MaxSentimentRunes)
	assert.Zero(t, cfg.EmbeddingDim)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.SentimentHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithSentimentHost("http://classify:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://classify:9090/v1", cfg.SentimentHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("bge-m3"),
			WithSentimentModel("gpt-4o-mini"),
			WithEmbeddingDim(1024),
			WithMaxRunes(1000, 256),
			WithAPIToken("sk-test"),
		)

		assert.Equal(t, "bge-m3", cfg.EmbeddingModel)
		assert.Equal(t, "gpt-4o-mini", cfg.SentimentModel)
		assert.Equal(t, 1024, cfg.EmbeddingDim)
		assert.Equal(t, 1000, cfg.MaxEmbeddingRunes)
		assert.Equal(t, 256, cfg.MaxSentimentRunes)
		assert.Equal(t, "sk-test", cfg.APIToken)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"already has /v1", "http://localhost:8080/v1", "http://localhost:8080/v1"},
		{"missing /v1", "http://localhost:8080", "http://localhost:8080/v1"},
		{"has trailing slash", "http://localhost:8080/", "http://localhost:8080/v1"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, SentimentHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, tt.expected, cfg.SentimentHost)
			assert.Equal(t, "none", cfg.APIToken)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, "EmbeddingHost"},
		{"missing sentiment host", func(c *Config) { c.SentimentHost = "" }, "SentimentHost"},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, "EmbeddingModel"},
		{"missing sentiment model", func(c *Config) { c.SentimentModel = "" }, "SentimentModel"},
		{"negative dim", func(c *Config) { c.EmbeddingDim = -1 }, "EmbeddingDim"},
		{"zero window", func(c *Config) { c.MaxSentimentRunes = 0 }, "truncation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
