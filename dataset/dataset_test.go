package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/venuefinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const venuesCSV = "\ufefffirm_id,name,category,category_search,address,rating,reviews_count\n" +
	"70000001,Кофейня Зерно,Кофейни,кофе,\"Алматы, Абая 10\",4.8,120\n" +
	"70000002,Барбершоп Борода,Барбершопы,барбер,\"Алматы, Достык 5\",\"4,2\",40\n"

const reviewsCSV = "place_firm_id,place_name,place_category,place_rating,place_address,author,rating,text,date\n" +
	"70000001,Кофейня Зерно,Кофейни,4.8,\"Алматы, Абая 10\",Алия,5,Очень вкусный кофе и уютная атмосфера,2024-03-15T18:30:00+06:00\n" +
	"70000001,Кофейня Зерно,Кофейни,4.8,\"Алматы, Абая 10\",Иван,4,Норм,2024-03-16\n" +
	"70000002,Барбершоп Борода,Барбершопы,4.2,\"Алматы, Достык 5\",Ержан,1,\"Грубый мастер, ужасная стрижка\",вчера\n" +
	"70000002,Барбершоп Борода,Барбершопы,4.2,\"Алматы, Достык 5\",Марат,5.0,\"Керемет орын, мастера профессионалы\",2024-01-02 10:00:00\n"

func TestLoadFrom_DefaultColumns(t *testing.T) {
	ds, err := LoadFrom(strings.NewReader(venuesCSV), strings.NewReader(reviewsCSV))
	require.NoError(t, err)

	require.Len(t, ds.Venues, 2)
	assert.Equal(t, core.VenueID("70000001"), ds.Venues[0].Id)
	assert.Equal(t, "Кофейня Зерно", ds.Venues[0].Name)
	assert.Equal(t, "Алматы, Абая 10", ds.Venues[0].Address)
	assert.InDelta(t, 4.8, ds.Venues[0].Rating, 1e-9)
	assert.InDelta(t, 4.2, ds.Venues[1].Rating, 1e-9, "decimal comma")

	// "Норм" is at or below the minimum length.
	require.Len(t, ds.Reviews, 3)
	assert.Equal(t, 1, ds.Filtered)

	first := ds.Reviews[0]
	assert.Equal(t, core.VenueID("70000001"), first.VenueId)
	assert.Equal(t, 5, first.Rating)
	assert.True(t, first.Timestamp.Equal(time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)))

	assert.True(t, ds.Reviews[1].Timestamp.IsZero(), "unparseable date becomes zero")
	assert.Equal(t, 1, ds.Problems["bad_review_date"])

	assert.Equal(t, "Керемет орын, мастера профессионалы", ds.Reviews[2].Text)
	assert.Equal(t, 5, ds.Reviews[2].Rating)

	assert.Len(t, ds.ID, 32)
}

func TestLoadFrom_DerivedVenues(t *testing.T) {
	ds, err := LoadFrom(nil, strings.NewReader(reviewsCSV))
	require.NoError(t, err)

	require.Len(t, ds.Venues, 2)
	assert.Equal(t, "Барбершоп Борода", ds.Venues[1].Name)
	assert.Equal(t, "Барбершопы", ds.Venues[1].Category)
	assert.Len(t, ds.Reviews, 3)
}

func TestLoadFrom_CustomColumns(t *testing.T) {
	reviews := "venue,review_text\n1,Прекрасное место для ужина\n"
	venues := "id,title\n1,Ресторан\n"

	cols := DefaultColumns()
	cols.VenueID = "id"
	cols.VenueName = "title"
	cols.ReviewVenueID = "venue"

	ds, err := LoadFrom(strings.NewReader(venues), strings.NewReader(reviews),
		WithColumns(cols), WithMinTextRunes(0))
	require.NoError(t, err)
	require.Len(t, ds.Reviews, 1)
	assert.Equal(t, "Прекрасное место для ужина", ds.Reviews[0].Text, "falls back to review_text")
	assert.Equal(t, "Ресторан", ds.Venues[0].Name)
}

func TestLoadFrom_MinTextRunes(t *testing.T) {
	reviews := "place_firm_id,text\n1,Хорошо\n1,\n1,Очень хорошо\n"

	ds, err := LoadFrom(nil, strings.NewReader(reviews), WithMinTextRunes(0))
	require.NoError(t, err)
	assert.Len(t, ds.Reviews, 2)
	assert.Equal(t, 1, ds.Filtered)

	ds, err = LoadFrom(nil, strings.NewReader(reviews), WithMinTextRunes(6))
	require.NoError(t, err)
	assert.Len(t, ds.Reviews, 1, "exactly six runes is filtered")

	_, err = LoadFrom(nil, strings.NewReader(reviews), WithMinTextRunes(-1))
	assert.Error(t, err)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		venues  string
		reviews string
	}{
		{"empty reviews", "", ""},
		{"no venue column", "", "text\nsomething long enough\n"},
		{"no text column", "", "place_firm_id,body\n1,something long enough\n"},
		{"venues missing name", "firm_id\n1\n", "place_firm_id,text\n1,something long enough\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.venues == "" {
				_, err = LoadFrom(nil, strings.NewReader(tt.reviews))
			} else {
				_, err = LoadFrom(strings.NewReader(tt.venues), strings.NewReader(tt.reviews))
			}
			assert.ErrorIs(t, err, core.ErrData)
		})
	}
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	venuesPath := filepath.Join(dir, "places.csv")
	reviewsPath := filepath.Join(dir, "reviews.csv")
	require.NoError(t, os.WriteFile(venuesPath, []byte(venuesCSV), 0644))
	require.NoError(t, os.WriteFile(reviewsPath, []byte(reviewsCSV), 0644))

	ds, err := Load(venuesPath, reviewsPath)
	require.NoError(t, err)
	assert.Len(t, ds.Venues, 2)

	_, err = Load(venuesPath, filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, core.ErrData)
}

func TestFingerprint(t *testing.T) {
	venues := []*core.Venue{{Id: "1", Name: "A"}}
	reviews := []*core.Review{{VenueId: "1", Text: "первый отзыв"}}

	a := New(venues, reviews)
	b := New([]*core.Venue{{Id: "1", Name: "A"}}, []*core.Review{{VenueId: "1", Text: "первый отзыв"}})
	assert.Equal(t, a.ID, b.ID)

	changed := New(venues, []*core.Review{{VenueId: "1", Text: "первый отзыв", Rating: 5}})
	assert.NotEqual(t, a.ID, changed.ID)

	reordered := New(venues, []*core.Review{
		{VenueId: "1", Text: "b"}, {VenueId: "1", Text: "a"},
	})
	original := New(venues, []*core.Review{
		{VenueId: "1", Text: "a"}, {VenueId: "1", Text: "b"},
	})
	assert.NotEqual(t, original.ID, reordered.ID, "order defines positions")
}
