// Package indexer builds searchable index versions from a loaded dataset.
//
// A build validates every review against the venue table, embeds the accepted
// reviews in parallel batches on a worker pool, inserts the vectors into an
// ANN index in dataset order, and hands the result to an ArtifactStore. The
// new version becomes visible only when the store activates it, so a failed
// or canceled build never disturbs the index that is already serving.
//
// Builds are skipped when the active version was produced from the same
// dataset with the same encoder and index layout, unless forced.
//
// RetryWithBackoff and ProgressTracker are exported for callers that drive
// builds interactively; the builder itself never retries a model failure.
package indexer
