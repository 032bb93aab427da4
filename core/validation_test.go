package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateVenue(t *testing.T) {
	tests := []struct {
		name    string
		venue   *Venue
		wantErr error
	}{
		{
			name:    "valid venue",
			venue:   &Venue{Id: "70000001", Name: "Кофейня Март"},
			wantErr: nil,
		},
		{
			name:    "nil venue",
			venue:   nil,
			wantErr: ErrInvalidVenue,
		},
		{
			name:    "blank id",
			venue:   &Venue{Id: "  ", Name: "Кофейня"},
			wantErr: ErrEmptyVenueID,
		},
		{
			name:    "missing name",
			venue:   &Venue{Id: "1"},
			wantErr: ErrEmptyVenueName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVenue(tt.venue)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateVenue() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateVenue() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidVenue) {
				t.Errorf("ValidateVenue() error = %v, should wrap ErrInvalidVenue", err)
			}
		})
	}
}

func TestValidateReview(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		review  *Review
		wantErr error
	}{
		{
			name:   "valid review",
			review: &Review{VenueId: "1", Text: "Отличное место", Rating: 5, Timestamp: past},
		},
		{
			name:   "valid review without rating or timestamp",
			review: &Review{VenueId: "1", Text: "Нормально"},
		},
		{
			name:    "nil review",
			review:  nil,
			wantErr: ErrInvalidReview,
		},
		{
			name:    "missing venue",
			review:  &Review{Text: "Отлично"},
			wantErr: ErrEmptyVenueID,
		},
		{
			name:    "blank text",
			review:  &Review{VenueId: "1", Text: " \t\n"},
			wantErr: ErrEmptyText,
		},
		{
			name:    "rating out of range",
			review:  &Review{VenueId: "1", Text: "Отлично", Rating: 6},
			wantErr: ErrInvalidRating,
		},
		{
			name:    "future timestamp",
			review:  &Review{VenueId: "1", Text: "Отлично", Timestamp: future},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReview(tt.review)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateReview() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateReview() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Time{}) {
		t.Error("zero timestamp should be valid")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Error("future timestamp should be invalid")
	}
}
