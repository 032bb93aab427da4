package search

import (
	"fmt"

	"github.com/poiesic/venuefinder/ann"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/storage"
)

// Snapshot is one loaded index version. It is immutable and safe to share
// between concurrent searches.
type Snapshot struct {
	Manifest *core.Manifest
	Index    ann.Index
	Rows     []*core.ReviewRow
	Venues   map[core.VenueID]*core.Venue
}

// NewSnapshot decodes the index in a and checks that it agrees with the
// manifest and metadata rows. Disagreement is reported as storage.ErrCorrupt.
func NewSnapshot(a *storage.Artifacts) (*Snapshot, error) {
	if a == nil || a.Manifest == nil {
		return nil, fmt.Errorf("%w: artifacts without manifest", storage.ErrCorrupt)
	}
	m := a.Manifest

	index, err := ann.Load(a.Index)
	if err != nil {
		return nil, fmt.Errorf("%w: version %s: %w", storage.ErrCorrupt, m.Version, err)
	}
	switch {
	case index.Len() != len(a.Rows):
		return nil, fmt.Errorf("%w: version %s: index holds %d vectors for %d rows",
			storage.ErrCorrupt, m.Version, index.Len(), len(a.Rows))
	case index.Dim() != m.Dim:
		return nil, fmt.Errorf("%w: version %s: index dimension %d, manifest %d",
			storage.ErrCorrupt, m.Version, index.Dim(), m.Dim)
	case index.Kind() != m.IndexKind:
		return nil, fmt.Errorf("%w: version %s: index kind %s, manifest %s",
			storage.ErrCorrupt, m.Version, index.Kind(), m.IndexKind)
	}

	venues := make(map[core.VenueID]*core.Venue, len(a.Venues))
	for _, v := range a.Venues {
		venues[v.Id] = v
	}
	for _, row := range a.Rows {
		if _, ok := venues[row.VenueId]; !ok {
			return nil, fmt.Errorf("%w: version %s: row %d references unknown venue %q",
				storage.ErrCorrupt, m.Version, row.Position, row.VenueId)
		}
	}

	return &Snapshot{
		Manifest: m,
		Index:    index,
		Rows:     a.Rows,
		Venues:   venues,
	}, nil
}

// Len returns the number of indexed reviews.
func (s *Snapshot) Len() int {
	return s.Index.Len()
}
