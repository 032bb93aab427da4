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

package core

import "errors"

// Error taxonomy shared by every package. Callers test with errors.Is.
var (
	// ErrData indicates the input dataset is unusable: unreadable files or
	// too many rejected rows.
	ErrData = errors.New("dataset error")

	// ErrModel indicates an embedding or sentiment provider failed or returned
	// malformed output. Not retried internally.
	ErrModel = errors.New("model error")

	// ErrNoIndex indicates a search was attempted before any index was built.
	ErrNoIndex = errors.New("no index has been built")

	// ErrConfigMismatch indicates the persisted index was built with a
	// different encoder than the one configured.
	ErrConfigMismatch = errors.New("index incompatible with configuration")
)

// Domain validation errors
var (
	// ErrInvalidVenue indicates a Venue failed validation.
	ErrInvalidVenue = errors.New("invalid venue")

	// ErrInvalidReview indicates a Review failed validation.
	ErrInvalidReview = errors.New("invalid review")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyText indicates the review text is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptyVenueID indicates a missing venue id.
	ErrEmptyVenueID = errors.New("venue id cannot be empty")

	// ErrEmptyVenueName indicates a missing venue name.
	ErrEmptyVenueName = errors.New("venue name cannot be empty")

	// ErrInvalidRating indicates a review rating outside 0..5.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
)
