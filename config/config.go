// Package config provides file-based configuration for venuefinder.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (VENUEFINDER_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
//
// The typed sections convert to the functional options of the packages they
// configure, so the rest of the module never sees YAML.
package config

import (
	"time"

	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/ann"
	"github.com/poiesic/venuefinder/dataset"
	"github.com/poiesic/venuefinder/indexer"
	"github.com/poiesic/venuefinder/search"
)

// Config holds all configuration for venuefinder.
type Config struct {
	AI      AIConfig      `yaml:"ai"`
	Store   StoreConfig   `yaml:"store"`
	Dataset DatasetConfig `yaml:"dataset"`
	Build   BuildConfig   `yaml:"build"`
	Search  SearchConfig  `yaml:"search"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AIConfig holds model endpoint settings.
type AIConfig struct {
	EmbeddingHost     string `yaml:"embedding_host"`
	SentimentHost     string `yaml:"sentiment_host"`
	EmbeddingModel    string `yaml:"embedding_model"`
	SentimentModel    string `yaml:"sentiment_model"`
	APIToken          string `yaml:"api_token"`
	APITokenFile      string `yaml:"api_token_file"`      // _file variant for api_token
	EmbeddingDim      int    `yaml:"embedding_dim"`       // 0: accept the model's dimension
	MaxEmbeddingRunes int    `yaml:"max_embedding_runes"` // default: 2000
	MaxSentimentRunes int    `yaml:"max_sentiment_runes"` // default: 512
}

// StoreConfig holds artifact store settings.
type StoreConfig struct {
	Path string `yaml:"path"` // default: "./venuefinder_db"
}

// DatasetConfig describes the CSV input.
type DatasetConfig struct {
	Venues       string        `yaml:"venues"` // optional; venues are derived from reviews when empty
	Reviews      string        `yaml:"reviews"`
	MinTextRunes int           `yaml:"min_text_runes"` // default: 10
	Columns      ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps dataset fields to CSV header names.
type ColumnsConfig struct {
	VenueID       string `yaml:"venue_id"`
	VenueName     string `yaml:"venue_name"`
	VenueAddress  string `yaml:"venue_address"`
	VenueCategory string `yaml:"venue_category"`
	VenueRating   string `yaml:"venue_rating"`

	ReviewVenueID      string `yaml:"review_venue_id"`
	ReviewText         string `yaml:"review_text"`
	ReviewTextFallback string `yaml:"review_text_fallback"`
	ReviewRating       string `yaml:"review_rating"`
	ReviewDate         string `yaml:"review_date"`

	ReviewVenueName     string `yaml:"review_venue_name"`
	ReviewVenueAddress  string `yaml:"review_venue_address"`
	ReviewVenueCategory string `yaml:"review_venue_category"`
	ReviewVenueRating   string `yaml:"review_venue_rating"`
}

// BuildConfig holds index builder settings.
type BuildConfig struct {
	BatchSize          int           `yaml:"batch_size"`     // default: 64
	Workers            int           `yaml:"workers"`        // 0: NumCPU/2
	MaxSkipRatio       float64       `yaml:"max_skip_ratio"` // default: 0.2
	HNSWThreshold      int           `yaml:"hnsw_threshold"` // default: 100000
	HNSWM              int           `yaml:"hnsw_m"`
	HNSWEfConstruction int           `yaml:"hnsw_ef_construction"`
	HNSWEfSearch       int           `yaml:"hnsw_ef_search"`
	MaxRetries         int           `yaml:"max_retries"` // attempts after the first; default: 0
	RetryDelay         time.Duration `yaml:"retry_delay"` // default: 2s
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	TopK               int     `yaml:"top_k"` // reviews retrieved; default: 300
	TopN               int     `yaml:"top_n"` // venues returned; default: 10
	Aggregation        string  `yaml:"aggregation"`
	MinMatches         int     `yaml:"min_matches"`
	MaxEvidence        int     `yaml:"max_evidence"`
	MaxReviewsPerVenue int     `yaml:"max_reviews_per_venue"`
	PositiveBoost      float32 `yaml:"positive_boost"`
	NegativePenalty    float32 `yaml:"negative_penalty"`
	MinReviewScore     float32 `yaml:"min_review_score"`
}

// MetricsConfig holds metrics output settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // optional .prom file written after each command
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	aiDefaults := ai.DefaultConfig()
	cols := dataset.DefaultColumns()
	hnsw := ann.DefaultHNSWConfig()
	polarity := search.DefaultPolarity()

	return Config{
		AI: AIConfig{
			EmbeddingHost:     aiDefaults.EmbeddingHost,
			SentimentHost:     aiDefaults.SentimentHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			SentimentModel:    aiDefaults.SentimentModel,
			APIToken:          aiDefaults.APIToken,
			MaxEmbeddingRunes: aiDefaults.MaxEmbeddingRunes,
			MaxSentimentRunes: aiDefaults.MaxSentimentRunes,
		},
		Store: StoreConfig{
			Path: "./venuefinder_db",
		},
		Dataset: DatasetConfig{
			MinTextRunes: dataset.DefaultMinTextRunes,
			Columns: ColumnsConfig{
				VenueID:             cols.VenueID,
				VenueName:           cols.VenueName,
				VenueAddress:        cols.VenueAddress,
				VenueCategory:       cols.VenueCategory,
				VenueRating:         cols.VenueRating,
				ReviewVenueID:       cols.ReviewVenueID,
				ReviewText:          cols.ReviewText,
				ReviewTextFallback:  cols.ReviewTextFallback,
				ReviewRating:        cols.ReviewRating,
				ReviewDate:          cols.ReviewDate,
				ReviewVenueName:     cols.ReviewVenueName,
				ReviewVenueAddress:  cols.ReviewVenueAddress,
				ReviewVenueCategory: cols.ReviewVenueCategory,
				ReviewVenueRating:   cols.ReviewVenueRating,
			},
		},
		Build: BuildConfig{
			BatchSize:          indexer.DefaultBatchSize,
			MaxSkipRatio:       indexer.DefaultMaxSkipRatio,
			HNSWThreshold:      ann.DefaultHNSWThreshold,
			HNSWM:              hnsw.M,
			HNSWEfConstruction: hnsw.EfConstruction,
			HNSWEfSearch:       hnsw.EfSearch,
			RetryDelay:         2 * time.Second,
		},
		Search: SearchConfig{
			TopK:            300,
			TopN:            10,
			Aggregation:     string(search.AggregateMax),
			MinMatches:      1,
			MaxEvidence:     3,
			PositiveBoost:   polarity.PositiveBoost,
			NegativePenalty: polarity.NegativePenalty,
		},
	}
}

// AIProviderConfig converts the ai section.
func (c *Config) AIProviderConfig() *ai.Config {
	return &ai.Config{
		EmbeddingHost:     c.AI.EmbeddingHost,
		SentimentHost:     c.AI.SentimentHost,
		EmbeddingModel:    c.AI.EmbeddingModel,
		SentimentModel:    c.AI.SentimentModel,
		APIToken:          c.AI.APIToken,
		EmbeddingDim:      c.AI.EmbeddingDim,
		MaxEmbeddingRunes: c.AI.MaxEmbeddingRunes,
		MaxSentimentRunes: c.AI.MaxSentimentRunes,
	}
}

// DatasetOptions converts the dataset section into loader options.
func (c *Config) DatasetOptions() []dataset.Option {
	cols := c.Dataset.Columns
	return []dataset.Option{
		dataset.WithColumns(dataset.Columns{
			VenueID:             cols.VenueID,
			VenueName:           cols.VenueName,
			VenueAddress:        cols.VenueAddress,
			VenueCategory:       cols.VenueCategory,
			VenueRating:         cols.VenueRating,
			ReviewVenueID:       cols.ReviewVenueID,
			ReviewText:          cols.ReviewText,
			ReviewTextFallback:  cols.ReviewTextFallback,
			ReviewRating:        cols.ReviewRating,
			ReviewDate:          cols.ReviewDate,
			ReviewVenueName:     cols.ReviewVenueName,
			ReviewVenueAddress:  cols.ReviewVenueAddress,
			ReviewVenueCategory: cols.ReviewVenueCategory,
			ReviewVenueRating:   cols.ReviewVenueRating,
		}),
		dataset.WithMinTextRunes(c.Dataset.MinTextRunes),
	}
}

// IndexOptions converts the ANN settings of the build section.
func (c *Config) IndexOptions() ann.Options {
	return ann.Options{
		HNSWThreshold: c.Build.HNSWThreshold,
		HNSW: ann.HNSWConfig{
			M:              c.Build.HNSWM,
			EfConstruction: c.Build.HNSWEfConstruction,
			EfSearch:       c.Build.HNSWEfSearch,
		},
	}
}

// BuilderOptions converts the build section into indexer options.
func (c *Config) BuilderOptions() []indexer.Option {
	opts := []indexer.Option{
		indexer.WithBatchSize(c.Build.BatchSize),
		indexer.WithMaxSkipRatio(c.Build.MaxSkipRatio),
		indexer.WithIndexOptions(c.IndexOptions()),
	}
	if c.Build.Workers > 0 {
		opts = append(opts, indexer.WithWorkers(c.Build.Workers))
	}
	return opts
}

// SearchOptions converts the search section into searcher options.
func (c *Config) SearchOptions() []search.Option {
	return []search.Option{
		search.WithAggregation(search.Aggregation(c.Search.Aggregation)),
		search.WithPolarity(search.Polarity{
			PositiveBoost:   c.Search.PositiveBoost,
			NegativePenalty: c.Search.NegativePenalty,
		}),
		search.WithMinMatches(c.Search.MinMatches),
		search.WithMaxEvidence(c.Search.MaxEvidence),
		search.WithMaxReviewsPerVenue(c.Search.MaxReviewsPerVenue),
		search.WithMinReviewScore(c.Search.MinReviewScore),
	}
}
