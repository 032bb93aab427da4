// Package dataset loads the venue and review tables that an index is built
// from.
//
// Input is two CSV files with header rows: one venue per row, and one review
// per row referencing its venue by id. Column names are configurable through
// Columns; the defaults match the places.csv/reviews.csv layout written by the
// 2GIS export converter. When no venues file is given, venues are derived
// from the place_* columns that the converter also writes into reviews.csv.
//
// Reviews whose text is too short to carry meaning are filtered here and
// never reach the index builder. Everything else, including reviews that fail
// validation, is passed through so the builder can account for it.
package dataset

import (
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/venuefinder/core"
)

// DefaultMinTextRunes is the default length at or below which review texts
// are dropped.
const DefaultMinTextRunes = 10

// Columns maps dataset fields to CSV header names. Empty names mark an
// optional column as absent.
type Columns struct {
	VenueID       string
	VenueName     string
	VenueAddress  string
	VenueCategory string
	VenueRating   string

	ReviewVenueID      string
	ReviewText         string
	ReviewTextFallback string
	ReviewRating       string
	ReviewDate         string

	// Venue attributes repeated on review rows, used when no venues file is given.
	ReviewVenueName     string
	ReviewVenueAddress  string
	ReviewVenueCategory string
	ReviewVenueRating   string
}

// DefaultColumns returns the converter's column layout.
func DefaultColumns() Columns {
	return Columns{
		VenueID:       "firm_id",
		VenueName:     "name",
		VenueAddress:  "address",
		VenueCategory: "category",
		VenueRating:   "rating",

		ReviewVenueID:      "place_firm_id",
		ReviewText:         "text",
		ReviewTextFallback: "review_text",
		ReviewRating:       "rating",
		ReviewDate:         "date",

		ReviewVenueName:     "place_name",
		ReviewVenueAddress:  "place_address",
		ReviewVenueCategory: "place_category",
		ReviewVenueRating:   "place_rating",
	}
}

// Dataset is an immutable, loaded pair of venue and review tables.
type Dataset struct {
	// ID fingerprints the canonical content. Equal content yields equal ids
	// regardless of file names or column layout.
	ID string

	Venues  []*core.Venue
	Reviews []*core.Review

	// Filtered counts reviews dropped for short text.
	Filtered int

	// Problems counts tolerated field-level parse problems by kind,
	// e.g. "bad_review_rating". Rows with problems are kept.
	Problems map[string]int
}

// New assembles a Dataset from in-memory tables and computes its ID.
// The slices are retained, not copied.
func New(venues []*core.Venue, reviews []*core.Review) *Dataset {
	return &Dataset{
		ID:       Fingerprint(venues, reviews),
		Venues:   venues,
		Reviews:  reviews,
		Problems: map[string]int{},
	}
}

// Fingerprint hashes the canonical serialization of both tables in order.
func Fingerprint(venues []*core.Venue, reviews []*core.Review) string {
	h := core.NewDigest()
	field := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	field("venues")
	field(strconv.Itoa(len(venues)))
	for _, v := range venues {
		field(string(v.Id))
		field(v.Name)
		field(v.Address)
		field(v.Category)
		field(strconv.FormatFloat(v.Rating, 'g', -1, 64))
	}

	field("reviews")
	field(strconv.Itoa(len(reviews)))
	for _, r := range reviews {
		field(string(r.VenueId))
		field(r.Text)
		field(strconv.Itoa(r.Rating))
		if r.Timestamp.IsZero() {
			field("")
		} else {
			field(r.Timestamp.UTC().Format(time.RFC3339Nano))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Option configures loading.
type Option func(*loader) error

// WithColumns overrides the column layout.
func WithColumns(c Columns) Option {
	return func(l *loader) error {
		l.columns = c
		return nil
	}
}

// WithMinTextRunes sets the text length at or below which reviews are
// dropped. Zero keeps every non-empty review.
func WithMinTextRunes(n int) Option {
	return func(l *loader) error {
		if n < 0 {
			return errNegativeMinText
		}
		l.minTextRunes = n
		return nil
	}
}

// WithLogger sets the logger for load summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) error {
		l.logger = logger
		return nil
	}
}
