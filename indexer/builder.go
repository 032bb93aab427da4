package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/venuefinder/ai"
	"github.com/poiesic/venuefinder/ann"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/dataset"
	"github.com/poiesic/venuefinder/storage"
)

const (
	// DefaultBatchSize is the number of reviews sent to the encoder per call.
	DefaultBatchSize = 64

	// DefaultMaxSkipRatio is the share of rejected reviews above which a
	// build fails.
	DefaultMaxSkipRatio = 0.2
)

// Builder turns datasets into activated index versions.
type Builder struct {
	store        storage.ArtifactStore
	encoder      ai.TextEncoder
	pool         *ants.Pool
	batchSize    int
	maxSkipRatio float64
	indexOpts    ann.Options
	logger       *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithBatchSize sets how many reviews are embedded per encoder call.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		b.batchSize = size
		return nil
	}
}

// WithWorkers sets the number of concurrent embedding batches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(n int) Option {
	return func(b *Builder) error {
		if n < 1 {
			n = 1
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		if b.pool != nil {
			b.pool.Release()
		}
		b.pool = pool
		return nil
	}
}

// WithMaxSkipRatio sets the tolerated share of rejected reviews, in [0,1].
func WithMaxSkipRatio(ratio float64) Option {
	return func(b *Builder) error {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("max skip ratio must be within [0,1], got %v", ratio)
		}
		b.maxSkipRatio = ratio
		return nil
	}
}

// WithIndexOptions sets the ANN kind threshold and HNSW parameters.
func WithIndexOptions(opts ann.Options) Option {
	return func(b *Builder) error {
		b.indexOpts = opts
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "indexer")
		return nil
	}
}

// NewBuilder creates a builder that embeds with encoder and persists to store.
// Call Release when done to stop the worker pool.
func NewBuilder(store storage.ArtifactStore, encoder ai.TextEncoder, opts ...Option) (*Builder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		store:        store,
		encoder:      encoder,
		pool:         pool,
		batchSize:    DefaultBatchSize,
		maxSkipRatio: DefaultMaxSkipRatio,
		indexOpts:    ann.DefaultOptions(),
		logger:       slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}
	return b, nil
}

// Release stops the worker pool. The builder must not be used afterwards.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// BuildReport summarizes one build.
type BuildReport struct {
	// Manifest is the newly activated manifest, or the active one when the
	// build was skipped.
	Manifest *core.Manifest

	// Skipped is true when the active version already matched the dataset.
	Skipped bool

	Accepted int
	Rejected map[string]int

	// Filtered counts reviews the loader dropped for short text.
	Filtered int

	Duration time.Duration
}

// RejectedTotal sums rejected rows over all reasons.
func (r *BuildReport) RejectedTotal() int {
	total := 0
	for _, n := range r.Rejected {
		total += n
	}
	return total
}

type buildConfig struct {
	force    bool
	progress io.Writer
}

// BuildOption adjusts a single Build call.
type BuildOption func(*buildConfig)

// Force rebuilds even when the active version has the same identity.
func Force() BuildOption {
	return func(c *buildConfig) {
		c.force = true
	}
}

// WithProgress reports embedding progress to w.
func WithProgress(w io.Writer) BuildOption {
	return func(c *buildConfig) {
		c.progress = w
	}
}

// Build validates ds, embeds the accepted reviews, and activates the result
// as a new version. On any error the previously active version is left in
// place and staged data is removed.
func (b *Builder) Build(ctx context.Context, ds *dataset.Dataset, opts ...BuildOption) (*BuildReport, error) {
	if ds == nil {
		return nil, ErrDatasetRequired
	}
	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	v := validate(ds)
	report := &BuildReport{
		Accepted: len(v.reviews),
		Rejected: v.rejected,
		Filtered: ds.Filtered,
	}
	b.logRejections(ds.ID, v)

	if ratio := v.skipRatio(); ratio > b.maxSkipRatio {
		return nil, fmt.Errorf("%w: %d of %d reviews rejected (%.1f%% > %.1f%%)",
			core.ErrData, v.rejectedReviews, v.rejectedReviews+len(v.reviews),
			ratio*100, b.maxSkipRatio*100)
	}

	identity := &core.Manifest{
		DatasetID:      ds.ID,
		EmbeddingModel: b.encoder.ModelName(),
		Metric:         core.MetricCosine,
		IndexKind:      ann.Choose(len(v.reviews), b.indexOpts),
	}

	active, err := b.store.ActiveManifest(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.force && identity.SameIdentity(active) {
		b.logger.Info("index is up to date, skipping build", "version", active.Version, "dataset_id", ds.ID)
		report.Manifest = active
		report.Skipped = true
		report.Duration = time.Since(start)
		return report, nil
	}

	texts := make([]string, len(v.reviews))
	for i, r := range v.reviews {
		texts[i] = r.Text
	}

	var progress *ProgressTracker
	if cfg.progress != nil {
		progress = NewProgressTracker(cfg.progress, len(texts), max(len(texts)/100, b.batchSize))
		progress.Start()
	}
	vectors, err := b.embed(ctx, texts, progress)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return nil, err
	}

	dim, err := b.dimension(ctx, vectors)
	if err != nil {
		return nil, err
	}

	index, err := ann.New(identity.IndexKind, dim, b.indexOpts)
	if err != nil {
		return nil, err
	}
	if err := index.InsertBatch(vectors); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrModel, err)
	}
	blob, err := index.MarshalBinary()
	if err != nil {
		return nil, err
	}

	manifest := *identity
	manifest.Version = uuid.NewString()
	manifest.Dim = dim
	manifest.ReviewCount = len(v.reviews)
	manifest.VenueCount = len(v.venues)
	manifest.SkippedRows = v.rejectedReviews
	manifest.BuiltAt = time.Now().UTC().Truncate(time.Microsecond)

	artifacts := &storage.Artifacts{
		Manifest: &manifest,
		Rows:     rowsFor(v.reviews),
		Venues:   v.venues,
		Index:    blob,
	}
	if err := b.persist(ctx, artifacts); err != nil {
		return nil, err
	}

	report.Manifest = &manifest
	report.Duration = time.Since(start)
	b.logger.Info("index built",
		"version", manifest.Version,
		"kind", manifest.IndexKind,
		"reviews", manifest.ReviewCount,
		"venues", manifest.VenueCount,
		"duration", report.Duration)
	return report, nil
}

// embed runs encoder batches on the pool. Results land at their batch
// offset so vectors[i] always belongs to texts[i]. The first failure
// cancels the batches still waiting.
func (b *Builder) embed(ctx context.Context, texts []string, progress *ProgressTracker) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var wg sync.WaitGroup
	for start := 0; start < len(texts); start += b.batchSize {
		end := min(start+b.batchSize, len(texts))
		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			out, err := b.encoder.EmbedTexts(ctx, texts[start:end])
			if err != nil {
				cancel(err)
				return
			}
			if len(out) != end-start {
				cancel(fmt.Errorf("%w: encoder returned %d vectors for %d texts", core.ErrModel, len(out), end-start))
				return
			}
			copy(vectors[start:end], out)
			if progress != nil {
				progress.Increment(end - start)
			}
		})
		if submitErr != nil {
			wg.Done()
			cancel(submitErr)
			break
		}
	}
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, core.ErrModel) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrModel, err)
	}
	return vectors, nil
}

// dimension returns the common vector length. An empty corpus probes the
// encoder once so the stored index still records the model's dimension.
func (b *Builder) dimension(ctx context.Context, vectors [][]float32) (int, error) {
	if len(vectors) == 0 {
		probe, err := b.encoder.EmbedText(ctx, " ")
		if err != nil {
			if errors.Is(err, core.ErrModel) {
				return 0, err
			}
			return 0, fmt.Errorf("%w: %w", core.ErrModel, err)
		}
		if len(probe) == 0 {
			return 0, fmt.Errorf("%w: encoder returned an empty vector", core.ErrModel)
		}
		return len(probe), nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: encoder returned an empty vector", core.ErrModel)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return 0, fmt.Errorf("%w: vector %d has dimension %d, expected %d", core.ErrModel, i, len(vec), dim)
		}
	}
	return dim, nil
}

// persist stages the artifacts and activates them. Anything staged is
// discarded if activation does not happen.
func (b *Builder) persist(ctx context.Context, a *storage.Artifacts) error {
	version := a.Manifest.Version
	activated := false
	defer func() {
		if activated {
			return
		}
		if err := b.store.Discard(context.WithoutCancel(ctx), version); err != nil {
			b.logger.Warn("failed to discard staged version", "version", version, "err", err)
		}
	}()

	if err := b.store.Stage(ctx, a); err != nil {
		return fmt.Errorf("staging version %s: %w", version, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.store.Activate(ctx, version); err != nil {
		return fmt.Errorf("activating version %s: %w", version, err)
	}
	activated = true
	return nil
}

func (b *Builder) logRejections(datasetID string, v *validated) {
	if len(v.rejected) == 0 {
		return
	}
	attrs := []any{"dataset_id", datasetID, "accepted", len(v.reviews)}
	for reason, n := range v.rejected {
		attrs = append(attrs, reason, n)
	}
	b.logger.Warn("rows rejected during validation", attrs...)
}

func rowsFor(reviews []*core.Review) []*core.ReviewRow {
	rows := make([]*core.ReviewRow, len(reviews))
	for i, r := range reviews {
		rows[i] = &core.ReviewRow{
			Position:  uint32(i),
			VenueId:   r.VenueId,
			Text:      r.Text,
			Rating:    r.Rating,
			Timestamp: r.Timestamp,
		}
	}
	return rows
}
