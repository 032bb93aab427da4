package core

import (
	"testing"
	"time"
)

func TestFingerprintFromContent(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		same bool
	}{
		{
			name: "same fields produce same fingerprint",
			a:    []string{"venues.csv", "reviews.csv"},
			b:    []string{"venues.csv", "reviews.csv"},
			same: true,
		},
		{
			name: "field boundaries matter",
			a:    []string{"ab", "c"},
			b:    []string{"a", "bc"},
			same: false,
		},
		{
			name: "order matters",
			a:    []string{"x", "y"},
			b:    []string{"y", "x"},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := FingerprintFromContent(tt.a...)
			fb := FingerprintFromContent(tt.b...)
			if (fa == fb) != tt.same {
				t.Errorf("FingerprintFromContent() same=%v, want %v (%s vs %s)", fa == fb, tt.same, fa, fb)
			}
			if len(fa) != 32 {
				t.Errorf("fingerprint length = %d, want 32 hex chars", len(fa))
			}
		})
	}
}

func TestParseSentimentLabel(t *testing.T) {
	tests := []struct {
		in     string
		want   SentimentLabel
		wantOK bool
	}{
		{"positive", SentimentPositive, true},
		{" POS ", SentimentPositive, true},
		{"Negative", SentimentNegative, true},
		{"neu", SentimentNeutral, true},
		{"mixed", SentimentNeutral, false},
		{"", SentimentNeutral, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseSentimentLabel(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseSentimentLabel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestManifest_SameIdentity(t *testing.T) {
	base := &Manifest{
		Version:        "v1",
		DatasetID:      "abc",
		EmbeddingModel: "labse",
		Dim:            768,
		Metric:         MetricCosine,
		IndexKind:      "flat",
		BuiltAt:        time.Now(),
	}

	other := *base
	other.Version = "v2"
	other.BuiltAt = time.Now().Add(time.Hour)
	if !base.SameIdentity(&other) {
		t.Error("manifests differing only in version and build time should share identity")
	}

	other.EmbeddingModel = "e5"
	if base.SameIdentity(&other) {
		t.Error("manifests with different models must not share identity")
	}

	if base.SameIdentity(nil) {
		t.Error("nil manifest must not share identity")
	}
}

func TestManifestMUS_RoundTrip(t *testing.T) {
	m := Manifest{
		Version:        "b0b8c7a2",
		DatasetID:      "f00d",
		EmbeddingModel: "labse",
		Dim:            768,
		Metric:         MetricCosine,
		IndexKind:      "hnsw",
		ReviewCount:    120000,
		VenueCount:     3400,
		SkippedRows:    17,
		BuiltAt:        time.Date(2025, 3, 1, 12, 0, 0, 123000, time.UTC),
	}

	bs := make([]byte, ManifestMUS.Size(m))
	ManifestMUS.Marshal(m, bs)
	got, n, err := ManifestMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if n != len(bs) {
		t.Errorf("Unmarshal() consumed %d bytes, want %d", n, len(bs))
	}
	if !got.BuiltAt.Equal(m.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", got.BuiltAt, m.BuiltAt)
	}
	got.BuiltAt = m.BuiltAt
	if got != m {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}

func TestReviewRowMUS_ZeroTimestamp(t *testing.T) {
	row := ReviewRow{Position: 7, VenueId: "70000001", Text: "Очень вкусный кофе"}

	bs := make([]byte, ReviewRowMUS.Size(row))
	ReviewRowMUS.Marshal(row, bs)
	got, _, err := ReviewRowMUS.Unmarshal(bs)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !got.Timestamp.IsZero() {
		t.Errorf("zero timestamp did not survive round trip: %v", got.Timestamp)
	}
	if got.Text != row.Text || got.Position != row.Position || got.VenueId != row.VenueId {
		t.Errorf("round trip = %+v, want %+v", got, row)
	}
}
