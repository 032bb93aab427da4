package ann

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
)

// HNSWConfig configures a new HNSW index.
type HNSWConfig struct {
	// Dim is the vector dimension. Required; must be positive.
	Dim int

	// M is the maximum number of connections per node per layer (except
	// layer 0, which allows 2*M). Default: 16.
	M int

	// EfConstruction is the size of the dynamic candidate list during
	// index building. Default: 200.
	EfConstruction int

	// EfSearch is the size of the dynamic candidate list during queries.
	// Raised to k when a query asks for more. Default: 64.
	EfSearch int

	// Seed drives level assignment. Equal seeds and equal insertion order
	// produce identical graphs. Default: 42.
	Seed uint64
}

// DefaultHNSWConfig returns the graph parameters used when none are set.
func DefaultHNSWConfig() HNSWConfig {
	var c HNSWConfig
	c.setDefaults()
	return c
}

func (c *HNSWConfig) setDefaults() {
	if c.M < 2 {
		c.M = 16
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = 200
	}
	if c.EfSearch <= 0 {
		c.EfSearch = 64
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

// maxConns returns the maximum number of connections at the given layer.
func (c *HNSWConfig) maxConns(layer int) int {
	if layer == 0 {
		return c.M * 2
	}
	return c.M
}

// candidate pairs a node id with its similarity to the query.
type candidate struct {
	id  uint32
	sim float32
}

// closer reports whether a ranks before b: higher similarity, then lower id.
func closer(a, b candidate) bool {
	if a.sim != b.sim {
		return a.sim > b.sim
	}
	return a.id < b.id
}

// bestFirst pops the closest candidate first.
type bestFirst []candidate

func (h bestFirst) Len() int           { return len(h) }
func (h bestFirst) Less(i, j int) bool { return closer(h[i], h[j]) }
func (h bestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *bestFirst) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *bestFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// farthestFirst pops the farthest candidate first.
type farthestFirst []candidate

func (h farthestFirst) Len() int           { return len(h) }
func (h farthestFirst) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h farthestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *farthestFirst) Push(x any)        { *h = append(*h, x.(candidate)) }
func (h *farthestFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type hnswNode struct {
	vector  []float32
	level   int
	friends [][]uint32 // friends[layer] = neighbor ids at that layer
}

// HNSW is a Hierarchical Navigable Small World graph index.
//
// Higher layers contain exponentially fewer nodes and act as express lanes
// for a greedy descent; layer 0 holds every node for the final beam search.
type HNSW struct {
	mu       sync.RWMutex
	cfg      HNSWConfig
	nodes    []*hnswNode // position → node
	entryID  int32       // -1 if empty
	maxLevel int
	levelMul float64 // 1/ln(M)
	rng      *rand.Rand
}

var _ Index = (*HNSW)(nil)

// NewHNSW creates an empty HNSW index with the given configuration.
// Panics if cfg.Dim is not positive.
func NewHNSW(cfg HNSWConfig) *HNSW {
	if cfg.Dim <= 0 {
		panic("ann: HNSWConfig.Dim must be positive")
	}
	cfg.setDefaults()
	return &HNSW{
		cfg:      cfg,
		entryID:  -1,
		levelMul: 1.0 / math.Log(float64(cfg.M)),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

func (h *HNSW) Kind() string { return KindHNSW }

func (h *HNSW) Dim() int { return h.cfg.Dim }

func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// Config returns the effective configuration.
func (h *HNSW) Config() HNSWConfig {
	return h.cfg
}

// InsertBatch appends vectors in order.
func (h *HNSW) InsertBatch(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != h.cfg.Dim {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), h.cfg.Dim)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range vectors {
		h.insertLocked(slices.Clone(v))
	}
	return nil
}

func (h *HNSW) insertLocked(vec []float32) {
	idx := uint32(len(h.nodes))
	level := h.randomLevel()
	nd := &hnswNode{
		vector:  vec,
		level:   level,
		friends: make([][]uint32, level+1),
	}
	h.nodes = append(h.nodes, nd)

	if h.entryID < 0 {
		h.entryID = int32(idx)
		h.maxLevel = level
		return
	}

	// Greedy descent through the layers above the new node's level.
	cur := h.greedyDescend(vec, level)

	ep := []uint32{cur}
	for lev := min(level, h.maxLevel); lev >= 0; lev-- {
		candidates := h.searchLayer(vec, ep, h.cfg.EfConstruction, lev)

		maxC := h.cfg.maxConns(lev)
		neighbors := h.selectClosest(vec, candidates, maxC)
		nd.friends[lev] = neighbors

		for _, nID := range neighbors {
			nn := h.nodes[nID]
			if lev >= len(nn.friends) {
				continue
			}
			nn.friends[lev] = append(nn.friends[lev], idx)
			if len(nn.friends[lev]) > maxC {
				nn.friends[lev] = h.selectClosest(nn.vector, nn.friends[lev], maxC)
			}
		}
		ep = candidates
	}

	if level > h.maxLevel {
		h.entryID = int32(idx)
		h.maxLevel = level
	}
}

// QueryTopK runs a greedy descent to layer 0 followed by a beam search of
// width max(EfSearch, k).
func (h *HNSW) QueryTopK(query []float32, k int) ([]Hit, error) {
	if len(query) != h.cfg.Dim {
		return nil, fmt.Errorf("%w: query has %d dims, want %d", ErrDimensionMismatch, len(query), h.cfg.Dim)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.nodes) == 0 || k <= 0 {
		return []Hit{}, nil
	}
	k = min(k, len(h.nodes))
	ef := max(h.cfg.EfSearch, k)

	cur := h.greedyDescend(query, 0)
	ids := h.searchLayer(query, []uint32{cur}, ef, 0)

	hits := make([]Hit, len(ids))
	for i, id := range ids {
		hits[i] = Hit{Position: id, Similarity: dot(query, h.nodes[id].vector)}
	}
	slices.SortFunc(hits, compareHits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// greedyDescend walks from the entry point down to layer stop+1, moving to
// the closest neighbor at each layer, and returns the node reached.
func (h *HNSW) greedyDescend(query []float32, stop int) uint32 {
	cur := uint32(h.entryID)
	best := candidate{id: cur, sim: dot(query, h.nodes[cur].vector)}

	for lev := h.maxLevel; lev > stop; lev-- {
		changed := true
		for changed {
			changed = false
			nd := h.nodes[best.id]
			if lev >= len(nd.friends) {
				break
			}
			for _, fID := range nd.friends[lev] {
				c := candidate{id: fID, sim: dot(query, h.nodes[fID].vector)}
				if closer(c, best) {
					best = c
					changed = true
				}
			}
		}
	}
	return best.id
}

// randomLevel draws a layer from an exponential distribution:
// P(level >= l) = exp(-l * ln(M)).
func (h *HNSW) randomLevel() int {
	r := max(h.rng.Float64(), math.SmallestNonzeroFloat64)
	return min(int(-math.Log(r)*h.levelMul), maxNodeLevel)
}

// searchLayer performs a beam search on a single layer and returns up to ef
// node ids closest to the query.
func (h *HNSW) searchLayer(query []float32, entryPoints []uint32, ef int, layer int) []uint32 {
	visited := make(map[uint32]struct{}, ef*2)

	var candidates bestFirst
	var results farthestFirst

	for _, ep := range entryPoints {
		if _, seen := visited[ep]; seen {
			continue
		}
		visited[ep] = struct{}{}
		c := candidate{id: ep, sim: dot(query, h.nodes[ep].vector)}
		heap.Push(&candidates, c)
		heap.Push(&results, c)
		if results.Len() > ef {
			heap.Pop(&results)
		}
	}

	for candidates.Len() > 0 {
		nearest := heap.Pop(&candidates).(candidate)
		if results.Len() >= ef && closer(results[0], nearest) {
			break
		}

		nd := h.nodes[nearest.id]
		if layer >= len(nd.friends) {
			continue
		}
		for _, fID := range nd.friends[layer] {
			if _, seen := visited[fID]; seen {
				continue
			}
			visited[fID] = struct{}{}

			c := candidate{id: fID, sim: dot(query, h.nodes[fID].vector)}
			if results.Len() < ef || closer(c, results[0]) {
				heap.Push(&candidates, c)
				heap.Push(&results, c)
				if results.Len() > ef {
					heap.Pop(&results)
				}
			}
		}
	}

	out := make([]uint32, results.Len())
	for i := range out {
		out[i] = results[i].id
	}
	return out
}

// selectClosest returns up to maxN ids from candidates closest to the query.
func (h *HNSW) selectClosest(query []float32, ids []uint32, maxN int) []uint32 {
	if len(ids) <= maxN {
		return slices.Clone(ids)
	}

	items := make([]candidate, len(ids))
	for i, id := range ids {
		items[i] = candidate{id: id, sim: dot(query, h.nodes[id].vector)}
	}
	slices.SortFunc(items, func(a, b candidate) int {
		return compareHits(Hit{Position: a.id, Similarity: a.sim}, Hit{Position: b.id, Similarity: b.sim})
	})

	out := make([]uint32, maxN)
	for i := range out {
		out[i] = items[i].id
	}
	return out
}
