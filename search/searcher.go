package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/core"
)

// Searcher ranks venues over a Snapshot.
type Searcher struct {
	encoder ai.TextEncoder
	scorer  ai.SentimentScorer

	polarity       Polarity
	aggregation    Aggregation
	minReviewScore float32
	minMatches     int
	maxEvidence    int
	maxPerVenue    int
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// WithAggregation selects how review scores reduce to a venue score.
// Default is AggregateMax.
func WithAggregation(agg Aggregation) Option {
	return func(s *Searcher) error {
		parsed, err := ParseAggregation(string(agg))
		if err != nil {
			return err
		}
		s.aggregation = parsed
		return nil
	}
}

// WithPolarity sets the sentiment boost and penalty.
func WithPolarity(p Polarity) Option {
	return func(s *Searcher) error {
		if err := p.Validate(); err != nil {
			return err
		}
		s.polarity = p
		return nil
	}
}

// WithMinReviewScore drops reviews scoring below score before grouping.
// Default is 0, which keeps every retrieved review.
func WithMinReviewScore(score float32) Option {
	return func(s *Searcher) error {
		s.minReviewScore = score
		return nil
	}
}

// WithMinMatches drops venues with fewer matching reviews. Default is 1.
func WithMinMatches(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("min matches must be at least 1, got %d", n)
		}
		s.minMatches = n
		return nil
	}
}

// WithMaxEvidence sets how many reviews are attached to each result.
// Default is 3.
func WithMaxEvidence(n int) Option {
	return func(s *Searcher) error {
		if n < 0 {
			return fmt.Errorf("max evidence cannot be negative, got %d", n)
		}
		s.maxEvidence = n
		return nil
	}
}

// WithMaxReviewsPerVenue keeps only a venue's n best reviews before
// aggregating. Default is 0, meaning no limit.
func WithMaxReviewsPerVenue(n int) Option {
	return func(s *Searcher) error {
		if n < 0 {
			return fmt.Errorf("max reviews per venue cannot be negative, got %d", n)
		}
		s.maxPerVenue = n
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(encoder ai.TextEncoder, scorer ai.SentimentScorer, opts ...Option) (*Searcher, error) {
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	if scorer == nil {
		return nil, ErrScorerRequired
	}

	s := &Searcher{
		encoder:     encoder,
		scorer:      scorer,
		polarity:    DefaultPolarity(),
		aggregation: AggregateMax,
		minMatches:  1,
		maxEvidence: 3,
		logger:      slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Aggregation returns the configured aggregation rule.
func (s *Searcher) Aggregation() Aggregation {
	return s.aggregation
}

// Search returns up to topNVenues venues ranked for query, considering the
// topKReviews reviews nearest to it.
func (s *Searcher) Search(ctx context.Context, snap *Snapshot, query string, topKReviews, topNVenues int) ([]core.RankedResult, error) {
	return s.SearchWithMonitor(ctx, snap, query, topKReviews, topNVenues, nil)
}

// SearchWithMonitor is Search with a monitor receiving callbacks at each stage.
//
// Non-positive limits and queries that are empty after normalization return
// an empty result without touching the index or any model. A nil snapshot
// returns core.ErrNoIndex.
func (s *Searcher) SearchWithMonitor(ctx context.Context, snap *Snapshot, query string, topKReviews, topNVenues int, monitor SearchMonitor) ([]core.RankedResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if topKReviews <= 0 || topNVenues <= 0 {
		return []core.RankedResult{}, nil
	}
	query = ai.NormalizeText(query)
	if query == "" {
		return []core.RankedResult{}, nil
	}
	if snap == nil {
		return nil, core.ErrNoIndex
	}

	monitor.Start(query)
	if snap.Len() == 0 {
		monitor.Finish(nil)
		return []core.RankedResult{}, nil
	}

	// 1. Embed the query
	vector, err := s.encoder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, modelError(err)
	}
	if len(vector) != snap.Index.Dim() {
		return nil, fmt.Errorf("%w: query embedding has dimension %d, index has %d",
			core.ErrConfigMismatch, len(vector), snap.Index.Dim())
	}
	monitor.AfterEmbedding(vector)

	// 2. Retrieve nearest reviews
	hits, err := snap.Index.QueryTopK(vector, min(topKReviews, snap.Len()))
	if err != nil {
		s.logger.Error("error querying index", "err", err)
		return nil, err
	}
	monitor.AfterRetrieval(hits)

	// 3. Classify them in one call
	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = snap.Rows[hit.Position].Text
	}
	sentiments, err := s.scorer.ScoreTexts(ctx, texts)
	if err != nil {
		s.logger.Error("error scoring review sentiment", "reviews", len(texts), "err", err)
		return nil, modelError(err)
	}
	if len(sentiments) != len(hits) {
		return nil, fmt.Errorf("%w: scorer returned %d results for %d texts",
			core.ErrModel, len(sentiments), len(hits))
	}
	monitor.AfterSentiment(sentiments)

	// 4. Score reviews and group by venue
	groups := make(map[core.VenueID]*venueGroup)
	for i, hit := range hits {
		row := snap.Rows[hit.Position]
		factor := s.polarity.Factor(sentiments[i])
		score := hit.Similarity * factor
		if s.minReviewScore > 0 && score < s.minReviewScore {
			continue
		}

		g, ok := groups[row.VenueId]
		if !ok {
			g = newVenueGroup(snap.Venues[row.VenueId])
			groups[row.VenueId] = g
		}
		g.add(core.Evidence{
			Position:   hit.Position,
			Text:       row.Text,
			Rating:     row.Rating,
			Similarity: hit.Similarity,
			Sentiment:  sentiments[i],
			Score:      score,
		})
	}

	// 5. Aggregate, rank and truncate
	results := make([]core.RankedResult, 0, len(groups))
	for _, g := range groups {
		g.sortEvidence()
		if s.maxPerVenue > 0 && len(g.evidence) > s.maxPerVenue {
			g.evidence = g.evidence[:s.maxPerVenue]
		}
		if len(g.evidence) < s.minMatches {
			continue
		}
		results = append(results, g.result(s.aggregation, s.maxEvidence))
	}
	slices.SortFunc(results, compareResults)
	if len(results) > topNVenues {
		results = results[:topNVenues]
	}

	s.logger.Debug("search complete",
		"reviews", len(hits),
		"venues", len(groups),
		"results", len(results))
	monitor.Finish(results)

	return results, nil
}

// modelError marks provider failures as core.ErrModel, leaving context
// errors recognizable.
func modelError(err error) error {
	if errors.Is(err, core.ErrModel) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrModel, err)
}
