package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/poiesic/venuefinder/core"
)

// Key prefixes for different data types
const (
	activeKey      = "act"
	buildRecordKey = "build:last"
	versionPrefix  = "v"

	manifestSuffix = "man"
	rowSegment     = "row"
	venueSegment   = "ven"
	annSegment     = "ann"
)

// annChunkSize bounds the size of one stored slice of the serialized index.
// It stays below valueThreshold so chunks are kept inline in the LSM tree,
// which in-memory stores require.
const annChunkSize = 512 << 10

// validateVersion rejects version ids that would collide with the key layout.
func validateVersion(version string) error {
	if version == "" || strings.ContainsRune(version, ':') {
		return fmt.Errorf("invalid version id %q", version)
	}
	return nil
}

// makeVersionPrefix returns the prefix shared by every key of a version.
// Format: v:version:
func makeVersionPrefix(version string) []byte {
	return []byte(versionPrefix + ":" + version + ":")
}

// makeManifestKey generates the key of a version's manifest.
func makeManifestKey(version string) []byte {
	return append(makeVersionPrefix(version), manifestSuffix...)
}

// makeRowPrefix generates the prefix of a version's metadata rows.
// Format: v:version:row:
func makeRowPrefix(version string) []byte {
	return append(makeVersionPrefix(version), rowSegment+":"...)
}

// makeRowKey generates the key for the row at position.
// Format: v:version:row:position (BigEndian so rows iterate in position order)
func makeRowKey(version string, position uint32) []byte {
	return binary.BigEndian.AppendUint32(makeRowPrefix(version), position)
}

// makeVenuePrefix generates the prefix of a version's venues.
func makeVenuePrefix(version string) []byte {
	return append(makeVersionPrefix(version), venueSegment+":"...)
}

// makeVenueKey generates the key for one venue.
// Format: v:version:ven:id
func makeVenueKey(version string, id core.VenueID) []byte {
	return append(makeVenuePrefix(version), id...)
}

// makeANNPrefix generates the prefix of a version's index chunks.
func makeANNPrefix(version string) []byte {
	return append(makeVersionPrefix(version), annSegment+":"...)
}

// makeANNKey generates the key for one chunk of the serialized index.
// Format: v:version:ann:chunk (BigEndian so chunks iterate in order)
func makeANNKey(version string, chunk uint32) []byte {
	return binary.BigEndian.AppendUint32(makeANNPrefix(version), chunk)
}

// suffixUint32 decodes the big-endian counter at the end of a row or chunk key.
func suffixUint32(key, prefix []byte) (uint32, bool) {
	if len(key) != len(prefix)+4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(key[len(prefix):]), true
}
