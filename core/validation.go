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

import (
	"fmt"
	"strings"
	"time"
)

// ValidateVenue validates a Venue according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Name must not be empty
//
// Address, Category and Rating are optional.
func ValidateVenue(venue *Venue) error {
	if venue == nil {
		return fmt.Errorf("%w: venue is nil", ErrInvalidVenue)
	}

	if strings.TrimSpace(string(venue.Id)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVenue, ErrEmptyVenueID)
	}

	if strings.TrimSpace(venue.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVenue, ErrEmptyVenueName)
	}

	return nil
}

// ValidateReview validates a Review according to domain rules.
//
// Validation rules:
//   - VenueId must not be empty
//   - Text must not be blank
//   - Rating must be 0 (absent) or 1..5
//   - Timestamp must not be in the future
//
// Whether VenueId refers to a known venue is checked by the index builder.
func ValidateReview(review *Review) error {
	if review == nil {
		return fmt.Errorf("%w: review is nil", ErrInvalidReview)
	}

	if strings.TrimSpace(string(review.VenueId)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidReview, ErrEmptyVenueID)
	}

	if strings.TrimSpace(review.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidReview, ErrEmptyText)
	}

	if review.Rating < 0 || review.Rating > 5 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidReview, ErrInvalidRating, review.Rating)
	}

	if !IsValidTimestamp(review.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidReview, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
