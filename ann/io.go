package ann

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

var (
	flatMagic = [4]byte{'F', 'L', 'A', 'T'}
	hnswMagic = [4]byte{'H', 'N', 'S', 'W'}
)

const (
	flatVersion uint32 = 1
	hnswVersion uint32 = 1

	// maxNodeLevel bounds node levels in both randomLevel and decoding.
	maxNodeLevel = 31
)

// MarshalBinary serializes the flat index.
//
// Format:
//
//	[4B magic "FLAT"] [4B version] [4B dim] [4B count]
//	[count × dim × 4B float32]
func (f *Flat) MarshalBinary() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var buf bytes.Buffer
	buf.Grow(16 + len(f.data)*4)
	buf.Write(flatMagic[:])

	le := binary.LittleEndian
	for _, v := range []uint32{flatVersion, uint32(f.dim), uint32(len(f.data) / f.dim)} {
		if err := binary.Write(&buf, le, v); err != nil {
			return nil, fmt.Errorf("ann: marshal flat header: %w", err)
		}
	}
	if err := binary.Write(&buf, le, f.data); err != nil {
		return nil, fmt.Errorf("ann: marshal flat vectors: %w", err)
	}
	return buf.Bytes(), nil
}

func loadFlat(r io.Reader) (*Flat, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || magic != flatMagic {
		return nil, fmt.Errorf("%w: flat magic", ErrCorrupt)
	}

	var hdr [3]uint32
	if err := binary.Read(br, le, &hdr); err != nil {
		return nil, fmt.Errorf("%w: flat header: %w", ErrCorrupt, err)
	}
	version, dim, count := hdr[0], hdr[1], hdr[2]
	if version != flatVersion {
		return nil, fmt.Errorf("%w: unsupported flat version %d", ErrCorrupt, version)
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrCorrupt)
	}
	total := uint64(dim) * uint64(count)
	if total > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d vectors of %d dims", ErrCorrupt, count, dim)
	}

	data := make([]float32, total)
	if err := binary.Read(br, le, data); err != nil {
		return nil, fmt.Errorf("%w: flat vectors: %w", ErrCorrupt, err)
	}
	return &Flat{dim: int(dim), data: data}, nil
}

// MarshalBinary serializes the graph including every neighbor list, so a
// loaded index answers queries identically without rebuilding.
//
// Format:
//
//	[4B magic "HNSW"] [4B version]
//	[4B dim] [4B M] [4B efConstruction] [4B efSearch] [8B seed]
//	[4B count] [4B maxLevel] [4B entryID]
//	For each node:
//	  [4B level] [dim × 4B float32 vector]
//	  For each layer 0..level:
//	    [4B numFriends] [numFriends × 4B friend positions]
func (h *HNSW) MarshalBinary() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	le := binary.LittleEndian
	write := func(v any) error { return binary.Write(bw, le, v) }

	if _, err := bw.Write(hnswMagic[:]); err != nil {
		return nil, fmt.Errorf("ann: marshal hnsw magic: %w", err)
	}
	if err := write(hnswVersion); err != nil {
		return nil, fmt.Errorf("ann: marshal hnsw version: %w", err)
	}

	for _, v := range []uint32{
		uint32(h.cfg.Dim),
		uint32(h.cfg.M),
		uint32(h.cfg.EfConstruction),
		uint32(h.cfg.EfSearch),
	} {
		if err := write(v); err != nil {
			return nil, fmt.Errorf("ann: marshal hnsw config: %w", err)
		}
	}
	if err := write(h.cfg.Seed); err != nil {
		return nil, fmt.Errorf("ann: marshal hnsw config: %w", err)
	}

	if err := write([3]int32{int32(len(h.nodes)), int32(h.maxLevel), h.entryID}); err != nil {
		return nil, fmt.Errorf("ann: marshal hnsw metadata: %w", err)
	}

	for _, nd := range h.nodes {
		if err := write(uint32(nd.level)); err != nil {
			return nil, err
		}
		if err := write(nd.vector); err != nil {
			return nil, err
		}
		for lev := 0; lev <= nd.level; lev++ {
			friends := nd.friends[lev]
			if err := write(uint32(len(friends))); err != nil {
				return nil, err
			}
			if err := write(friends); err != nil {
				return nil, err
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadHNSW(r io.Reader) (*HNSW, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian
	read := func(v any) error { return binary.Read(br, le, v) }

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil || magic != hnswMagic {
		return nil, fmt.Errorf("%w: hnsw magic", ErrCorrupt)
	}

	var version uint32
	if err := read(&version); err != nil {
		return nil, fmt.Errorf("%w: hnsw version: %w", ErrCorrupt, err)
	}
	if version != hnswVersion {
		return nil, fmt.Errorf("%w: unsupported hnsw version %d", ErrCorrupt, version)
	}

	var cfgVals [4]uint32
	if err := read(&cfgVals); err != nil {
		return nil, fmt.Errorf("%w: hnsw config: %w", ErrCorrupt, err)
	}
	var seed uint64
	if err := read(&seed); err != nil {
		return nil, fmt.Errorf("%w: hnsw config: %w", ErrCorrupt, err)
	}
	if cfgVals[0] == 0 || cfgVals[0] > math.MaxInt32 {
		return nil, fmt.Errorf("%w: hnsw dimension %d", ErrCorrupt, cfgVals[0])
	}

	h := NewHNSW(HNSWConfig{
		Dim:            int(cfgVals[0]),
		M:              int(cfgVals[1]),
		EfConstruction: int(cfgVals[2]),
		EfSearch:       int(cfgVals[3]),
		Seed:           seed,
	})

	var meta [3]int32
	if err := read(&meta); err != nil {
		return nil, fmt.Errorf("%w: hnsw metadata: %w", ErrCorrupt, err)
	}
	count, top, entry := meta[0], meta[1], meta[2]
	switch {
	case count < 0, top < 0, top > maxNodeLevel:
		return nil, fmt.Errorf("%w: hnsw metadata count=%d maxLevel=%d", ErrCorrupt, count, top)
	case count == 0 && entry != -1, count > 0 && (entry < 0 || entry >= count):
		return nil, fmt.Errorf("%w: hnsw entry point %d of %d", ErrCorrupt, entry, count)
	}
	h.maxLevel = int(top)
	h.entryID = entry

	h.nodes = make([]*hnswNode, 0, min(int(count), 1<<16))
	for i := int32(0); i < count; i++ {
		var level uint32
		if err := read(&level); err != nil {
			return nil, fmt.Errorf("%w: node %d level: %w", ErrCorrupt, i, err)
		}
		if level > uint32(top) {
			return nil, fmt.Errorf("%w: node %d level %d above max %d", ErrCorrupt, i, level, top)
		}

		nd := &hnswNode{
			vector:  make([]float32, h.cfg.Dim),
			level:   int(level),
			friends: make([][]uint32, level+1),
		}
		if err := read(nd.vector); err != nil {
			return nil, fmt.Errorf("%w: node %d vector: %w", ErrCorrupt, i, err)
		}

		for lev := range nd.friends {
			var n uint32
			if err := read(&n); err != nil {
				return nil, fmt.Errorf("%w: node %d layer %d: %w", ErrCorrupt, i, lev, err)
			}
			if n > uint32(count) {
				return nil, fmt.Errorf("%w: node %d layer %d has %d friends", ErrCorrupt, i, lev, n)
			}
			friends := make([]uint32, n)
			if err := read(friends); err != nil {
				return nil, fmt.Errorf("%w: node %d layer %d: %w", ErrCorrupt, i, lev, err)
			}
			for _, f := range friends {
				if f >= uint32(count) {
					return nil, fmt.Errorf("%w: node %d references position %d", ErrCorrupt, i, f)
				}
			}
			nd.friends[lev] = friends
		}
		h.nodes = append(h.nodes, nd)
	}

	if count > 0 && h.nodes[entry].level != int(top) {
		return nil, fmt.Errorf("%w: entry point %d below max level %d", ErrCorrupt, entry, top)
	}
	// Every link must land on a node that reaches the link's layer.
	for i, nd := range h.nodes {
		for lev, friends := range nd.friends {
			for _, f := range friends {
				if h.nodes[f].level < lev {
					return nil, fmt.Errorf("%w: node %d links to %d above its level", ErrCorrupt, i, f)
				}
			}
		}
	}

	return h, nil
}
