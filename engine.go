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

// Package venuefinder ties the artifact store, the model providers, the
// index builder and the searcher into one process-wide Engine.
package venuefinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/ai/openai"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/dataset"
	"github.com/poiesic/venuefinder/indexer"
	"github.com/poiesic/venuefinder/metrics"
	"github.com/poiesic/venuefinder/search"
	"github.com/poiesic/venuefinder/storage"
	"github.com/poiesic/venuefinder/storage/badger"
)

// Engine owns the active index snapshot. Searches run concurrently against
// an immutable snapshot; builds are serialized.
type Engine struct {
	store     storage.ArtifactStore
	journal   storage.BuildJournal
	provider  ai.AIProvider
	builder   *indexer.Builder
	searcher  *search.Searcher
	metrics   *metrics.Metrics
	pinnedDim int
	logger    *slog.Logger

	// encoderDim caches the probed encoder dimension; guarded by loadMu.
	encoderDim int

	snapshot atomic.Pointer[search.Snapshot]
	loadMu   sync.Mutex
	buildMu  sync.Mutex
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	store        storage.ArtifactStore
	builderOpts  []indexer.Option
	searcherOpts []search.Option
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// WithAIConfig sets the provider configuration. A pinned EmbeddingDim is
// also checked against the persisted manifest.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses p instead of opening an OpenAI-compatible provider.
// The engine closes p on Close.
func WithProvider(p ai.AIProvider) Option {
	return func(o *engineOptions) {
		o.provider = p
	}
}

// WithStore uses store instead of opening one at the engine path. Build
// records are journaled when store also implements storage.BuildJournal.
func WithStore(store storage.ArtifactStore) Option {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithBuilderOptions passes options to the index builder.
func WithBuilderOptions(opts ...indexer.Option) Option {
	return func(o *engineOptions) {
		o.builderOpts = append(o.builderOpts, opts...)
	}
}

// WithSearchOptions passes options to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *engineOptions) {
		o.searcherOpts = append(o.searcherOpts, opts...)
	}
}

// WithMetrics records into m instead of a fresh collector set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// Open opens the artifact store at path and the configured AI provider.
// The active index is loaded on the first search, or eagerly with Load.
// Open owns the store and provider passed as options and closes them if it fails.
func Open(path string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "engine")

	store := options.store
	if store == nil {
		var err error
		if store, err = badger.OpenArtifactStore(path); err != nil {
			if options.provider != nil {
				if cerr := options.provider.Close(); cerr != nil {
					logger.Error("error closing AI provider", "err", cerr)
				}
			}
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		if provider, err = openai.NewProvider(options.aiConfig); err != nil {
			store.Close()
			return nil, err
		}
	}

	closeAll := func() {
		if err := provider.Close(); err != nil {
			logger.Error("error closing AI provider", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing artifact store", "err", err)
		}
	}

	builder, err := indexer.NewBuilder(store, provider.Encoder(),
		append([]indexer.Option{indexer.WithLogger(logger)}, options.builderOpts...)...)
	if err != nil {
		closeAll()
		return nil, err
	}

	searcher, err := search.NewSearcher(provider.Encoder(), provider.SentimentScorer(),
		append([]search.Option{search.WithLogger(logger)}, options.searcherOpts...)...)
	if err != nil {
		builder.Release()
		closeAll()
		return nil, err
	}

	m := options.metrics
	if m == nil {
		m = metrics.New()
	}
	journal, _ := store.(storage.BuildJournal)

	return &Engine{
		store:     store,
		journal:   journal,
		provider:  provider,
		builder:   builder,
		searcher:  searcher,
		metrics:   m,
		pinnedDim: options.aiConfig.EmbeddingDim,
		logger:    logger,
	}, nil
}

// Close releases the builder pool, the provider and the store.
func (e *Engine) Close() error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	e.builder.Release()
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing artifact store", "err", err)
		return err
	}
	return nil
}

// Metrics returns the engine's collectors.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Load reads the active version from the store and makes it the search
// snapshot. Returns core.ErrNoIndex if nothing was ever built and
// core.ErrConfigMismatch if the index was built with another encoder.
func (e *Engine) Load(ctx context.Context) (*search.Snapshot, error) {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.load(ctx)
}

func (e *Engine) load(ctx context.Context) (*search.Snapshot, error) {
	artifacts, err := e.store.LoadActive(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, core.ErrNoIndex
	}
	if err != nil {
		return nil, err
	}
	if err := e.checkCompatible(ctx, artifacts.Manifest); err != nil {
		return nil, err
	}
	snap, err := search.NewSnapshot(artifacts)
	if err != nil {
		return nil, err
	}

	e.snapshot.Store(snap)
	e.metrics.SetIndexSize(snap.Manifest.ReviewCount, snap.Manifest.VenueCount)
	e.logger.Info("index loaded",
		"version", snap.Manifest.Version,
		"kind", snap.Manifest.IndexKind,
		"reviews", snap.Manifest.ReviewCount)
	return snap, nil
}

// current returns the snapshot, loading it on first use.
func (e *Engine) current(ctx context.Context) (*search.Snapshot, error) {
	if snap := e.snapshot.Load(); snap != nil {
		return snap, nil
	}
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if snap := e.snapshot.Load(); snap != nil {
		return snap, nil
	}
	return e.load(ctx)
}

func (e *Engine) checkCompatible(ctx context.Context, m *core.Manifest) error {
	if model := e.provider.Encoder().ModelName(); m.EmbeddingModel != model {
		return fmt.Errorf("%w: index %s was built with %q, configured encoder is %q",
			core.ErrConfigMismatch, m.Version, m.EmbeddingModel, model)
	}
	if m.Metric != core.MetricCosine {
		return fmt.Errorf("%w: index %s uses metric %q, expected %q",
			core.ErrConfigMismatch, m.Version, m.Metric, core.MetricCosine)
	}
	dim, err := e.dimension(ctx)
	if err != nil {
		return err
	}
	if m.Dim != dim {
		return fmt.Errorf("%w: index %s has dimension %d, configured encoder produces %d",
			core.ErrConfigMismatch, m.Version, m.Dim, dim)
	}
	return nil
}

// dimension returns the pinned embedding dimension, or probes the encoder
// once when none is configured.
func (e *Engine) dimension(ctx context.Context) (int, error) {
	if e.pinnedDim > 0 {
		return e.pinnedDim, nil
	}
	if e.encoderDim > 0 {
		return e.encoderDim, nil
	}
	probe, err := e.provider.Encoder().EmbedText(ctx, " ")
	if err != nil {
		if errors.Is(err, core.ErrModel) || ctx.Err() != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: probing encoder dimension: %w", core.ErrModel, err)
	}
	if len(probe) == 0 {
		return 0, fmt.Errorf("%w: encoder returned an empty vector", core.ErrModel)
	}
	e.encoderDim = len(probe)
	return e.encoderDim, nil
}

// Invalidate drops the in-memory snapshot so the next search reloads it.
func (e *Engine) Invalidate() {
	e.snapshot.Store(nil)
}

// Build indexes ds and swaps the search snapshot once the new version is
// active. Searches already running finish on the previous snapshot. Every
// attempt is journaled.
func (e *Engine) Build(ctx context.Context, ds *dataset.Dataset, opts ...indexer.BuildOption) (*indexer.BuildReport, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	started := time.Now().UTC()
	report, err := e.builder.Build(ctx, ds, opts...)
	e.record(ctx, ds, started, report, err)
	if err != nil {
		return nil, err
	}
	if report.Skipped && e.snapshot.Load() != nil {
		return report, nil
	}

	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if _, err := e.load(ctx); err != nil {
		e.snapshot.Store(nil)
		return report, fmt.Errorf("index %s activated but not loaded: %w", report.Manifest.Version, err)
	}
	return report, nil
}

func (e *Engine) record(ctx context.Context, ds *dataset.Dataset, started time.Time, report *indexer.BuildReport, buildErr error) {
	rec := &core.BuildRecord{
		StartedAt:  started.Truncate(time.Microsecond),
		FinishedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if ds != nil {
		rec.DatasetID = ds.ID
	}
	stats := metrics.BuildStats{Duration: rec.FinishedAt.Sub(rec.StartedAt)}

	switch {
	case buildErr != nil:
		rec.Outcome = core.BuildOutcomeFailed
		rec.Error = buildErr.Error()
	case report.Skipped:
		rec.Outcome = core.BuildOutcomeSkipped
	default:
		rec.Outcome = core.BuildOutcomeBuilt
		rec.Version = report.Manifest.Version
	}
	if report != nil {
		rec.Accepted = report.Accepted
		rec.Rejected = report.RejectedTotal()
		stats.Accepted = rec.Accepted
		stats.Rejected = rec.Rejected
		stats.Filtered = report.Filtered
		stats.Duration = report.Duration
	}
	stats.Outcome = rec.Outcome
	e.metrics.ObserveBuild(stats)

	if e.journal == nil {
		return
	}
	if err := e.journal.SaveBuildRecord(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Warn("failed to journal build", "outcome", rec.Outcome, "err", err)
	}
}

// Search ranks venues for query against the active index. topK bounds the
// reviews retrieved, topN the venues returned.
func (e *Engine) Search(ctx context.Context, query string, topK, topN int) ([]core.RankedResult, error) {
	start := time.Now()
	results, err := e.search(ctx, query, topK, topN)

	outcome := metrics.OutcomeOK
	switch {
	case errors.Is(err, core.ErrNoIndex):
		outcome = metrics.OutcomeNoIndex
	case err != nil:
		outcome = metrics.OutcomeError
	case len(results) == 0:
		outcome = metrics.OutcomeEmpty
	}
	e.metrics.ObserveSearch(outcome, time.Since(start))
	return results, err
}

func (e *Engine) search(ctx context.Context, query string, topK, topN int) ([]core.RankedResult, error) {
	snap, err := e.current(ctx)
	if err != nil && !errors.Is(err, core.ErrNoIndex) {
		return nil, err
	}
	// A nil snapshot still lets the searcher answer degenerate queries
	// before reporting ErrNoIndex.
	return e.searcher.SearchWithMonitor(ctx, snap, query, topK, topN, e.metrics.NewStageTimer())
}

// Status describes the active index and the most recent build attempt.
type Status struct {
	// Active is nil when no version was ever activated.
	Active *core.Manifest

	// LastBuild is nil when no build was journaled.
	LastBuild *core.BuildRecord

	// Loaded reports whether a snapshot is held in memory.
	Loaded bool
}

// Status reads the active manifest and the build journal.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	active, err := e.store.ActiveManifest(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{Active: active, Loaded: e.snapshot.Load() != nil}
	if e.journal != nil {
		if st.LastBuild, err = e.journal.LastBuildRecord(ctx); err != nil {
			return nil, err
		}
	}
	return st, nil
}
