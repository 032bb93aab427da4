package indexer

import (
	"github.com/poiesic/venuefinder/core"
	"github.com/poiesic/venuefinder/dataset"
)

// Reasons a dataset row is rejected.
const (
	RejectInvalidVenue   = "invalid_venue"
	RejectDuplicateVenue = "duplicate_venue"
	RejectInvalidReview  = "invalid_review"
	RejectUnknownVenue   = "unknown_venue"
)

// validated is the accepted subset of a dataset in original order.
type validated struct {
	venues   []*core.Venue
	reviews  []*core.Review
	rejected map[string]int

	// rejectedReviews counts review rows only; venue rejections surface as
	// unknown_venue on the reviews that referenced them.
	rejectedReviews int
}

// validate checks every venue and review. The first venue with a given id
// wins; later duplicates are rejected.
func validate(ds *dataset.Dataset) *validated {
	v := &validated{rejected: map[string]int{}}

	byID := make(map[core.VenueID]bool, len(ds.Venues))
	for _, venue := range ds.Venues {
		if err := core.ValidateVenue(venue); err != nil {
			v.rejected[RejectInvalidVenue]++
			continue
		}
		if byID[venue.Id] {
			v.rejected[RejectDuplicateVenue]++
			continue
		}
		byID[venue.Id] = true
		v.venues = append(v.venues, venue)
	}

	v.reviews = make([]*core.Review, 0, len(ds.Reviews))
	for _, review := range ds.Reviews {
		if err := core.ValidateReview(review); err != nil {
			v.rejected[RejectInvalidReview]++
			v.rejectedReviews++
			continue
		}
		if !byID[review.VenueId] {
			v.rejected[RejectUnknownVenue]++
			v.rejectedReviews++
			continue
		}
		v.reviews = append(v.reviews, review)
	}
	return v
}

// skipRatio is the share of review rows rejected.
func (v *validated) skipRatio() float64 {
	total := len(v.reviews) + v.rejectedReviews
	if total == 0 {
		return 0
	}
	return float64(v.rejectedReviews) / float64(total)
}
