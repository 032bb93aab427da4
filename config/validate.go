package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/venuefinder/search"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.AI.EmbeddingHost == "" {
		errs = append(errs, fmt.Errorf("ai.embedding_host is required"))
	}
	if c.AI.SentimentHost == "" {
		errs = append(errs, fmt.Errorf("ai.sentiment_host is required"))
	}
	if c.AI.EmbeddingModel == "" {
		errs = append(errs, fmt.Errorf("ai.embedding_model is required"))
	}
	if c.AI.SentimentModel == "" {
		errs = append(errs, fmt.Errorf("ai.sentiment_model is required"))
	}
	if c.AI.EmbeddingDim < 0 {
		errs = append(errs, fmt.Errorf("ai.embedding_dim must be >= 0, got %d", c.AI.EmbeddingDim))
	}
	if c.AI.MaxEmbeddingRunes <= 0 {
		errs = append(errs, fmt.Errorf("ai.max_embedding_runes must be > 0, got %d", c.AI.MaxEmbeddingRunes))
	}
	if c.AI.MaxSentimentRunes <= 0 {
		errs = append(errs, fmt.Errorf("ai.max_sentiment_runes must be > 0, got %d", c.AI.MaxSentimentRunes))
	}

	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}

	if c.Dataset.MinTextRunes < 0 {
		errs = append(errs, fmt.Errorf("dataset.min_text_runes must be >= 0, got %d", c.Dataset.MinTextRunes))
	}
	if c.Dataset.Columns.ReviewVenueID == "" {
		errs = append(errs, fmt.Errorf("dataset.columns.review_venue_id is required"))
	}
	if c.Dataset.Columns.ReviewText == "" && c.Dataset.Columns.ReviewTextFallback == "" {
		errs = append(errs, fmt.Errorf("dataset.columns.review_text or dataset.columns.review_text_fallback is required"))
	}

	if c.Build.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("build.batch_size must be > 0, got %d", c.Build.BatchSize))
	}
	if c.Build.Workers < 0 {
		errs = append(errs, fmt.Errorf("build.workers must be >= 0, got %d", c.Build.Workers))
	}
	if c.Build.MaxSkipRatio < 0 || c.Build.MaxSkipRatio > 1 {
		errs = append(errs, fmt.Errorf("build.max_skip_ratio must be within [0, 1], got %g", c.Build.MaxSkipRatio))
	}
	if c.Build.HNSWThreshold < 0 {
		errs = append(errs, fmt.Errorf("build.hnsw_threshold must be >= 0, got %d", c.Build.HNSWThreshold))
	}
	if c.Build.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("build.max_retries must be >= 0, got %d", c.Build.MaxRetries))
	}
	if c.Build.RetryDelay < 0 {
		errs = append(errs, fmt.Errorf("build.retry_delay must be >= 0, got %s", c.Build.RetryDelay))
	}

	if c.Search.TopK <= 0 {
		errs = append(errs, fmt.Errorf("search.top_k must be > 0, got %d", c.Search.TopK))
	}
	if c.Search.TopN <= 0 {
		errs = append(errs, fmt.Errorf("search.top_n must be > 0, got %d", c.Search.TopN))
	}
	if agg, err := search.ParseAggregation(c.Search.Aggregation); err != nil {
		errs = append(errs, fmt.Errorf("search.aggregation must be \"max\", \"mean\", or \"weighted\", got %q", c.Search.Aggregation))
	} else {
		c.Search.Aggregation = string(agg)
	}
	if c.Search.MinMatches < 1 {
		errs = append(errs, fmt.Errorf("search.min_matches must be >= 1, got %d", c.Search.MinMatches))
	}
	if c.Search.MaxEvidence < 0 {
		errs = append(errs, fmt.Errorf("search.max_evidence must be >= 0, got %d", c.Search.MaxEvidence))
	}
	if c.Search.MaxReviewsPerVenue < 0 {
		errs = append(errs, fmt.Errorf("search.max_reviews_per_venue must be >= 0, got %d", c.Search.MaxReviewsPerVenue))
	}
	polarity := search.Polarity{
		PositiveBoost:   c.Search.PositiveBoost,
		NegativePenalty: c.Search.NegativePenalty,
	}
	if err := polarity.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search.positive_boost/negative_penalty: %w", err))
	}

	if c.Metrics.Textfile != "" && !strings.HasSuffix(c.Metrics.Textfile, ".prom") {
		errs = append(errs, fmt.Errorf("metrics.textfile must end in .prom, got %q", c.Metrics.Textfile))
	}

	return errors.Join(errs...)
}
