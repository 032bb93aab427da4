package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/poiesic/venuefinder/core"
)

var (
	// ErrMissingColumn indicates a required column is absent from a header row.
	ErrMissingColumn = errors.New("missing required column")

	errNegativeMinText = errors.New("min text runes cannot be negative")
)

// Accepted review timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006",
}

type loader struct {
	columns      Columns
	minTextRunes int
	logger       *slog.Logger
	problems     map[string]int
}

func newLoader(opts []Option) (*loader, error) {
	l := &loader{
		columns:      DefaultColumns(),
		minTextRunes: DefaultMinTextRunes,
		logger:       slog.Default().With("component", "dataset"),
		problems:     map[string]int{},
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Load reads the venues and reviews CSV files. venuesPath may be empty, in
// which case venues are derived from the reviews file.
// Unreadable files or missing required columns are reported as core.ErrData.
func Load(venuesPath, reviewsPath string, opts ...Option) (*Dataset, error) {
	var venues io.Reader
	if venuesPath != "" {
		f, err := os.Open(venuesPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrData, err)
		}
		defer f.Close()
		venues = f
	}

	reviews, err := os.Open(reviewsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrData, err)
	}
	defer reviews.Close()

	return LoadFrom(venues, reviews, opts...)
}

// LoadFrom reads venues and reviews from CSV streams. venues may be nil.
func LoadFrom(venues, reviews io.Reader, opts ...Option) (*Dataset, error) {
	l, err := newLoader(opts)
	if err != nil {
		return nil, err
	}

	var venueList []*core.Venue
	if venues != nil {
		venueList, err = l.readVenues(venues)
		if err != nil {
			return nil, fmt.Errorf("%w: venues: %w", core.ErrData, err)
		}
	}

	reviewList, derived, filtered, err := l.readReviews(reviews, venues == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: reviews: %w", core.ErrData, err)
	}
	if venues == nil {
		venueList = derived
	}

	ds := New(venueList, reviewList)
	ds.Filtered = filtered
	ds.Problems = l.problems

	attrs := []any{
		"venues", len(venueList),
		"reviews", len(reviewList),
		"filtered_short", filtered,
		"dataset_id", ds.ID,
	}
	for kind, n := range l.problems {
		attrs = append(attrs, kind, n)
	}
	l.logger.Info("dataset loaded", attrs...)
	return ds, nil
}

// table is a CSV stream with its header resolved to column indices.
type table struct {
	r      *csv.Reader
	index  map[string]int
	record []string
}

func openTable(src io.Reader) (*table, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row")
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &table{r: r, index: index}, nil
}

func (t *table) has(column string) bool {
	if column == "" {
		return false
	}
	_, ok := t.index[column]
	return ok
}

func (t *table) require(columns ...string) error {
	for _, c := range columns {
		if !t.has(c) {
			return fmt.Errorf("%w: %q", ErrMissingColumn, c)
		}
	}
	return nil
}

// next advances to the next record. Returns io.EOF at the end.
func (t *table) next() error {
	rec, err := t.r.Read()
	if err != nil {
		return err
	}
	t.record = rec
	return nil
}

// get returns the trimmed cell for column, or "" if the column or cell is absent.
func (t *table) get(column string) string {
	i, ok := t.index[column]
	if !ok || column == "" || i >= len(t.record) {
		return ""
	}
	return strings.TrimSpace(t.record[i])
}

func (t *table) line() int {
	line, _ := t.r.FieldPos(0)
	return line
}

func (l *loader) readVenues(src io.Reader) ([]*core.Venue, error) {
	t, err := openTable(src)
	if err != nil {
		return nil, err
	}
	c := l.columns
	if err := t.require(c.VenueID, c.VenueName); err != nil {
		return nil, err
	}

	var venues []*core.Venue
	for {
		if err := t.next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		venues = append(venues, &core.Venue{
			Id:       core.VenueID(t.get(c.VenueID)),
			Name:     t.get(c.VenueName),
			Address:  t.get(c.VenueAddress),
			Category: t.get(c.VenueCategory),
			Rating:   l.parseFloat(t.get(c.VenueRating), "bad_venue_rating"),
		})
	}
	return venues, nil
}

func (l *loader) readReviews(src io.Reader, deriveVenues bool) (reviews []*core.Review, venues []*core.Venue, filtered int, err error) {
	t, err := openTable(src)
	if err != nil {
		return nil, nil, 0, err
	}
	c := l.columns
	if err := t.require(c.ReviewVenueID); err != nil {
		return nil, nil, 0, err
	}

	textColumn := c.ReviewText
	if !t.has(textColumn) {
		if !t.has(c.ReviewTextFallback) {
			return nil, nil, 0, fmt.Errorf("%w: %q or %q", ErrMissingColumn, c.ReviewText, c.ReviewTextFallback)
		}
		textColumn = c.ReviewTextFallback
	}

	seen := map[core.VenueID]bool{}
	for {
		if err := t.next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, 0, err
		}

		venueID := core.VenueID(t.get(c.ReviewVenueID))
		if deriveVenues && venueID != "" && !seen[venueID] {
			seen[venueID] = true
			name := t.get(c.ReviewVenueName)
			if name == "" {
				name = string(venueID)
			}
			venues = append(venues, &core.Venue{
				Id:       venueID,
				Name:     name,
				Address:  t.get(c.ReviewVenueAddress),
				Category: t.get(c.ReviewVenueCategory),
				Rating:   l.parseFloat(t.get(c.ReviewVenueRating), "bad_venue_rating"),
			})
		}

		text := t.get(textColumn)
		if text == "" && textColumn != c.ReviewTextFallback {
			text = t.get(c.ReviewTextFallback)
		}
		if text == "" || utf8.RuneCountInString(text) <= l.minTextRunes {
			filtered++
			continue
		}

		reviews = append(reviews, &core.Review{
			VenueId:   venueID,
			Text:      text,
			Rating:    l.parseRating(t.get(c.ReviewRating)),
			Timestamp: l.parseTime(t.get(c.ReviewDate), t.line()),
		})
	}
	return reviews, venues, filtered, nil
}

func (l *loader) parseFloat(s, problem string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		l.problems[problem]++
		return 0
	}
	return f
}

// parseRating accepts integer or decimal ratings and rounds to the nearest
// integer. Out-of-range values are kept for validation to reject.
func (l *loader) parseRating(s string) int {
	f := l.parseFloat(s, "bad_review_rating")
	return int(math.Round(f))
}

func (l *loader) parseTime(s string, line int) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	l.problems["bad_review_date"]++
	l.logger.Debug("unparseable review date", "line", line, "value", s)
	return time.Time{}
}
