package storage

import (
	"context"

	"github.com/poiesic/venuefinder/core"
)

// Artifacts is everything a search needs from one built index version.
type Artifacts struct {
	// Manifest describes the version; Manifest.Version keys every other artifact.
	Manifest *core.Manifest

	// Rows is the metadata table ordered by Position, which runs 0..N-1.
	Rows []*core.ReviewRow

	// Venues holds every venue referenced by Rows.
	Venues []*core.Venue

	// Index is the serialized ANN index (ann.Index.MarshalBinary).
	Index []byte
}

// ArtifactStore persists built index versions and tracks which one is active.
// Implementations must be thread-safe and support concurrent access.
//
// Writes go to a staging area keyed by version and become visible only when
// Activate flips the active pointer, so readers never observe a partially
// written version.
type ArtifactStore interface {
	// ActiveManifest returns the manifest of the active version, or nil, nil
	// when nothing has been activated yet.
	ActiveManifest(ctx context.Context) (*core.Manifest, error)

	// LoadActive reads every artifact of the active version.
	// Returns ErrNotFound when no version is active and ErrCorrupt when the
	// stored rows do not form positions 0..N-1.
	LoadActive(ctx context.Context) (*Artifacts, error)

	// Stage writes artifacts under a.Manifest.Version without making them
	// visible. Staging an existing version replaces it.
	Stage(ctx context.Context, a *Artifacts) error

	// Activate atomically makes a staged version active, then removes the
	// previously active version. Returns ErrNotFound if the version was
	// never staged.
	Activate(ctx context.Context, version string) error

	// Discard removes a staged version. Discarding the active version is an
	// error; discarding an unknown version is a no-op.
	Discard(ctx context.Context, version string) error

	// Close releases resources.
	Close() error
}

// BuildJournal records the outcome of the most recent build attempt.
type BuildJournal interface {
	// SaveBuildRecord replaces the stored record.
	SaveBuildRecord(ctx context.Context, record *core.BuildRecord) error

	// LastBuildRecord returns the stored record, or nil, nil if no build
	// has been recorded.
	LastBuildRecord(ctx context.Context) (*core.BuildRecord, error)
}
