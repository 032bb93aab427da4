package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/storage"
)

// ArtifactRepository implements storage.ArtifactStore and
// storage.BuildJournal for BadgerDB.
type ArtifactRepository struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var (
	_ storage.ArtifactStore = (*ArtifactRepository)(nil)
	_ storage.BuildJournal  = (*ArtifactRepository)(nil)
)

// NewArtifactRepository creates an ArtifactRepository on a shared backend.
// Closing the repository leaves the backend open.
func NewArtifactRepository(backend *Backend) *ArtifactRepository {
	return &ArtifactRepository{
		backend: backend,
		logger:  slog.Default().With("component", "artifact-store"),
	}
}

// OpenArtifactStore opens (or creates) an artifact store in the directory
// at path. Closing the store closes the database.
func OpenArtifactStore(path string) (storage.ArtifactStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo := NewArtifactRepository(backend)
	repo.ownsBackend = true
	return repo, nil
}

// Close closes the backend if the repository opened it.
func (r *ArtifactRepository) Close() error {
	if r.ownsBackend && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

// ActiveManifest returns the manifest of the active version, or nil, nil.
func (r *ArtifactRepository) ActiveManifest(ctx context.Context) (*core.Manifest, error) {
	var manifest *core.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		version, err := readActiveVersion(tx)
		if err != nil || version == "" {
			return err
		}
		manifest, err = readManifest(tx, version)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// LoadActive reads every artifact of the active version in one read
// transaction, so a concurrent Activate cannot mix two versions.
func (r *ArtifactRepository) LoadActive(ctx context.Context) (*storage.Artifacts, error) {
	var out *storage.Artifacts
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		version, err := readActiveVersion(tx)
		if err != nil {
			return err
		}
		if version == "" {
			return storage.ErrNotFound
		}

		manifest, err := readManifest(tx, version)
		if err != nil {
			return err
		}
		if manifest == nil {
			return fmt.Errorf("%w: active version %s has no manifest", storage.ErrCorrupt, version)
		}

		rows, err := readRows(ctx, tx, version)
		if err != nil {
			return err
		}
		if len(rows) != manifest.ReviewCount {
			return fmt.Errorf("%w: manifest lists %d reviews, found %d rows",
				storage.ErrCorrupt, manifest.ReviewCount, len(rows))
		}

		venues, err := readVenues(ctx, tx, version)
		if err != nil {
			return err
		}
		if len(venues) != manifest.VenueCount {
			return fmt.Errorf("%w: manifest lists %d venues, found %d",
				storage.ErrCorrupt, manifest.VenueCount, len(venues))
		}

		index, err := readIndex(ctx, tx, version)
		if err != nil {
			return err
		}

		out = &storage.Artifacts{
			Manifest: manifest,
			Rows:     rows,
			Venues:   venues,
			Index:    index,
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stage writes artifacts under a.Manifest.Version. Rows must be ordered by
// position 0..N-1. Nothing staged is visible until Activate.
func (r *ArtifactRepository) Stage(ctx context.Context, a *storage.Artifacts) error {
	if a == nil || a.Manifest == nil {
		return errors.New("stage: artifacts without manifest")
	}
	version := a.Manifest.Version
	if err := validateVersion(version); err != nil {
		return err
	}
	for i, row := range a.Rows {
		if row.Position != uint32(i) {
			return fmt.Errorf("stage: row %d has position %d", i, row.Position)
		}
	}

	// Staging a version twice replaces it.
	if _, err := r.backend.deletePrefix(makeVersionPrefix(version)); err != nil {
		return err
	}

	err := r.backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for i, row := range a.Rows {
			if i%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := wb.Set(makeRowKey(version, row.Position), storage.MarshalReviewRow(row)); err != nil {
				return err
			}
		}
		for _, venue := range a.Venues {
			if err := wb.Set(makeVenueKey(version, venue.Id), storage.MarshalVenue(venue)); err != nil {
				return err
			}
		}
		for chunk := 0; chunk*annChunkSize < len(a.Index); chunk++ {
			start := chunk * annChunkSize
			end := min(start+annChunkSize, len(a.Index))
			if err := wb.Set(makeANNKey(version, uint32(chunk)), a.Index[start:end]); err != nil {
				return err
			}
		}
		// The manifest goes last: a version without one is incomplete.
		return wb.Set(makeManifestKey(version), storage.MarshalManifest(a.Manifest))
	})
	if err != nil {
		return fmt.Errorf("stage version %s: %w", version, err)
	}

	r.logger.Debug("staged version",
		"version", version,
		"rows", len(a.Rows),
		"venues", len(a.Venues),
		"index_bytes", len(a.Index))
	return nil
}

// Activate flips the active pointer to version in a single transaction and
// then deletes the previously active version.
func (r *ArtifactRepository) Activate(ctx context.Context, version string) error {
	if err := validateVersion(version); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var previous string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(makeManifestKey(version)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: version %s was not staged", storage.ErrNotFound, version)
			}
			return err
		}
		var err error
		previous, err = readActiveVersion(tx)
		if err != nil {
			return err
		}
		if err := tx.Set([]byte(activeKey), []byte(version)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	r.logger.Info("activated version", "version", version, "previous", previous)

	if previous != "" && previous != version {
		n, err := r.backend.deletePrefix(makeVersionPrefix(previous))
		if err != nil {
			// The new version is already active; leftovers are removed by
			// the next Discard or Activate of that id.
			r.logger.Warn("failed to remove previous version", "version", previous, "error", err)
			return nil
		}
		r.logger.Debug("removed previous version", "version", previous, "keys", n)
	}
	return nil
}

// Discard removes a staged version that was never activated.
func (r *ArtifactRepository) Discard(ctx context.Context, version string) error {
	if err := validateVersion(version); err != nil {
		return err
	}

	var active string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		active, err = readActiveVersion(tx)
		return err
	}, false)
	if err != nil {
		return err
	}
	if active == version {
		return fmt.Errorf("%w: cannot discard %s", storage.ErrActiveVersion, version)
	}

	n, err := r.backend.deletePrefix(makeVersionPrefix(version))
	if err != nil {
		return err
	}
	if n > 0 {
		r.logger.Debug("discarded staged version", "version", version, "keys", n)
	}
	return nil
}

// SaveBuildRecord replaces the stored build record.
func (r *ArtifactRepository) SaveBuildRecord(ctx context.Context, record *core.BuildRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(buildRecordKey), storage.MarshalBuildRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LastBuildRecord returns the stored build record, or nil, nil.
func (r *ArtifactRepository) LastBuildRecord(ctx context.Context) (*core.BuildRecord, error) {
	var record *core.BuildRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(buildRecordKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalBuildRecord(val)
			return unmarshalErr
		})
	}, false)
	return record, err
}

// readActiveVersion returns the active version id, or "" if none.
func readActiveVersion(tx *badger.Txn) (string, error) {
	item, err := tx.Get([]byte(activeKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// readManifest returns nil, nil if the version has no manifest.
func readManifest(tx *badger.Txn, version string) (*core.Manifest, error) {
	item, err := tx.Get(makeManifestKey(version))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var manifest *core.Manifest
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		manifest, unmarshalErr = storage.UnmarshalManifest(val)
		return unmarshalErr
	})
	return manifest, err
}

// readRows reads a version's metadata rows and checks that keys and row
// positions both run 0..N-1 without gaps.
func readRows(ctx context.Context, tx *badger.Txn, version string) ([]*core.ReviewRow, error) {
	prefix := makeRowPrefix(version)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var rows []*core.ReviewRow
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if len(rows)%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		item := iter.Item()
		want := uint32(len(rows))
		pos, ok := suffixUint32(item.Key(), prefix)
		if !ok || pos != want {
			return nil, fmt.Errorf("%w: expected row %d, found key %q", storage.ErrCorrupt, want, item.Key())
		}

		var row *core.ReviewRow
		err := item.Value(func(val []byte) error {
			var unmarshalErr error
			row, unmarshalErr = storage.UnmarshalReviewRow(val)
			return unmarshalErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", storage.ErrCorrupt, want, err)
		}
		if row.Position != want {
			return nil, fmt.Errorf("%w: row %d records position %d", storage.ErrCorrupt, want, row.Position)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readVenues(ctx context.Context, tx *badger.Txn, version string) ([]*core.Venue, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeVenuePrefix(version)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var venues []*core.Venue
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var venue *core.Venue
		err := iter.Item().Value(func(val []byte) error {
			var unmarshalErr error
			venue, unmarshalErr = storage.UnmarshalVenue(val)
			return unmarshalErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrCorrupt, err)
		}
		venues = append(venues, venue)
	}
	return venues, nil
}

// readIndex concatenates a version's index chunks.
func readIndex(ctx context.Context, tx *badger.Txn, version string) ([]byte, error) {
	prefix := makeANNPrefix(version)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var data []byte
	var next uint32
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := iter.Item()
		chunk, ok := suffixUint32(item.Key(), prefix)
		if !ok || chunk != next {
			return nil, fmt.Errorf("%w: expected index chunk %d, found key %q", storage.ErrCorrupt, next, item.Key())
		}
		err := item.Value(func(val []byte) error {
			data = append(data, val...)
			return nil
		})
		if err != nil {
			return nil, err
		}
		next++
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: version %s has no index data", storage.ErrCorrupt, version)
	}
	return data, nil
}
