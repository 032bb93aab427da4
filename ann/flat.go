package ann

import (
	"container/heap"
	"fmt"
	"slices"
	"sync"
)

// Flat is an exact index: every query scores every vector.
type Flat struct {
	mu   sync.RWMutex
	dim  int
	data []float32 // row-major, Len()*dim values
}

var _ Index = (*Flat)(nil)

// NewFlat creates an empty exact index.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

func (f *Flat) Kind() string { return KindFlat }

func (f *Flat) Dim() int { return f.dim }

func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.data) / f.dim
}

// InsertBatch appends vectors in order.
func (f *Flat) InsertBatch(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), f.dim)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = slices.Grow(f.data, len(vectors)*f.dim)
	for _, v := range vectors {
		f.data = append(f.data, v...)
	}
	return nil
}

// QueryTopK scores every vector and keeps the best k.
func (f *Flat) QueryTopK(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d dims, want %d", ErrDimensionMismatch, len(query), f.dim)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.data) / f.dim
	if k <= 0 || n == 0 {
		return []Hit{}, nil
	}
	k = min(k, n)

	top := make(worstFirst, 0, k)
	for p := 0; p < n; p++ {
		h := Hit{Position: uint32(p), Similarity: dot(query, f.vector(p))}
		if len(top) < k {
			heap.Push(&top, h)
		} else if worse(top[0], h) {
			top[0] = h
			heap.Fix(&top, 0)
		}
	}

	out := []Hit(top)
	slices.SortFunc(out, compareHits)
	return out, nil
}

// vector returns the stored vector at position p. Caller holds the lock.
func (f *Flat) vector(p int) []float32 {
	return f.data[p*f.dim : (p+1)*f.dim]
}

// worstFirst is a heap whose root is the lowest-ranked hit.
type worstFirst []Hit

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Hit)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
