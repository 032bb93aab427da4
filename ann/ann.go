// Package ann provides the nearest-neighbor indexes used to retrieve reviews
// by embedding similarity.
//
// Vectors are identified by their insertion position: the first vector
// inserted has id 0, the next id 1, and so on. Positions double as keys into
// the review metadata table, so indexes are append-only.
//
// Similarity is the inner product, which equals cosine similarity for the
// L2-normalized vectors produced by every ai.TextEncoder. Results are ordered
// by similarity descending with ties broken by ascending position, so equal
// inputs always produce identical output.
//
// Two implementations exist: Flat performs exact search and suits small
// corpora; HNSW trades a little recall for sublinear query time on large
// ones. Choose picks between them by corpus size.
package ann

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
)

// Index kinds as persisted in manifests.
const (
	KindFlat = "flat"
	KindHNSW = "hnsw"
)

// DefaultHNSWThreshold is the corpus size at which Choose switches from
// exact search to HNSW.
const DefaultHNSWThreshold = 100_000

var (
	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("ann: dimension mismatch")

	// ErrCorrupt indicates serialized index data that cannot be decoded.
	ErrCorrupt = errors.New("ann: corrupt index data")

	// ErrUnknownKind indicates an index kind other than flat or hnsw.
	ErrUnknownKind = errors.New("ann: unknown index kind")
)

// Hit is a single query result.
type Hit struct {
	Position   uint32
	Similarity float32
}

// Index is an append-only nearest-neighbor index over unit vectors.
// All implementations are safe for concurrent queries; inserts must not
// race with each other.
type Index interface {
	// Kind returns KindFlat or KindHNSW.
	Kind() string

	// Dim returns the vector dimension.
	Dim() int

	// Len returns the number of indexed vectors.
	Len() int

	// InsertBatch appends vectors, assigning consecutive positions starting at Len().
	InsertBatch(vectors [][]float32) error

	// QueryTopK returns up to k hits ordered by similarity descending,
	// ties by position ascending. k larger than Len() returns Len() hits.
	QueryTopK(query []float32, k int) ([]Hit, error)

	// MarshalBinary serializes the index. Load restores an index that
	// returns identical results.
	MarshalBinary() ([]byte, error)
}

// Options configures index construction.
type Options struct {
	// HNSWThreshold is the minimum corpus size that selects HNSW.
	HNSWThreshold int

	// HNSW holds graph parameters when HNSW is selected. Dim is filled in by New.
	HNSW HNSWConfig
}

// DefaultOptions returns the defaults used when building indexes.
func DefaultOptions() Options {
	return Options{HNSWThreshold: DefaultHNSWThreshold}
}

// Choose returns the index kind for a corpus of n vectors.
func Choose(n int, opts Options) string {
	threshold := opts.HNSWThreshold
	if threshold <= 0 {
		threshold = DefaultHNSWThreshold
	}
	if n >= threshold {
		return KindHNSW
	}
	return KindFlat
}

// New creates an empty index of the given kind.
func New(kind string, dim int, opts Options) (Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrDimensionMismatch, dim)
	}
	switch kind {
	case KindFlat:
		return NewFlat(dim), nil
	case KindHNSW:
		cfg := opts.HNSW
		cfg.Dim = dim
		return NewHNSW(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Load restores an index serialized with MarshalBinary, dispatching on the
// leading magic bytes.
func Load(data []byte) (Index, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	switch {
	case bytes.Equal(data[:4], flatMagic[:]):
		return loadFlat(bytes.NewReader(data))
	case bytes.Equal(data[:4], hnswMagic[:]):
		return loadHNSW(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: invalid magic %q", ErrCorrupt, data[:4])
	}
}

// compareHits orders hits by similarity descending, then position ascending.
func compareHits(a, b Hit) int {
	if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
		return c
	}
	return cmp.Compare(a.Position, b.Position)
}

// worse reports whether a ranks after b.
func worse(a, b Hit) bool {
	return compareHits(a, b) > 0
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
