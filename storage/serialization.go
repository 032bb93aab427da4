// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/poiesic/venuefinder/core"
)

// MarshalVenue serializes a Venue to bytes.
func MarshalVenue(venue *core.Venue) []byte {
	buf := make([]byte, core.VenueMUS.Size(*venue))
	core.VenueMUS.Marshal(*venue, buf)
	return buf
}

// UnmarshalVenue deserializes a Venue from bytes.
func UnmarshalVenue(data []byte) (*core.Venue, error) {
	venue, _, err := core.VenueMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: venue: %w", ErrSerializationFailed, err)
	}
	return &venue, nil
}

// MarshalReviewRow serializes a ReviewRow to bytes.
func MarshalReviewRow(row *core.ReviewRow) []byte {
	buf := make([]byte, core.ReviewRowMUS.Size(*row))
	core.ReviewRowMUS.Marshal(*row, buf)
	return buf
}

// UnmarshalReviewRow deserializes a ReviewRow from bytes.
func UnmarshalReviewRow(data []byte) (*core.ReviewRow, error) {
	row, _, err := core.ReviewRowMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: review row: %w", ErrSerializationFailed, err)
	}
	return &row, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, core.ManifestMUS.Size(*manifest))
	core.ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := core.ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}

// MarshalBuildRecord serializes a BuildRecord to bytes.
func MarshalBuildRecord(record *core.BuildRecord) []byte {
	buf := make([]byte, core.BuildRecordMUS.Size(*record))
	core.BuildRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalBuildRecord deserializes a BuildRecord from bytes.
func UnmarshalBuildRecord(data []byte) (*core.BuildRecord, error) {
	record, _, err := core.BuildRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: build record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
