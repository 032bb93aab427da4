package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"hash"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// MetricCosine is the only similarity metric supported by the index.
// Vectors are L2-normalized so cosine similarity equals the inner product.
const MetricCosine = "cosine"

// VenueID identifies a venue. Upstream datasets use 2GIS firm ids, which are
// kept verbatim as strings.
type VenueID string

// Venue is immutable reference data describing a business.
type Venue struct {
	Id       VenueID
	Name     string
	Address  string
	Category string
	Rating   float64 // 0 when unknown
}

// Review is a single piece of user-written text about one venue.
type Review struct {
	VenueId   VenueID
	Text      string
	Rating    int       // 0 when absent
	Timestamp time.Time // zero when absent
}

// ReviewRow is the metadata row stored alongside every indexed vector.
// Position is the vector's internal id in the ANN index; rows and vectors
// are in bijection over positions 0..N-1.
type ReviewRow struct {
	Position  uint32
	VenueId   VenueID
	Text      string
	Rating    int
	Timestamp time.Time
}

// SentimentLabel is the polarity assigned to a text.
type SentimentLabel int

const (
	SentimentNegative SentimentLabel = iota
	SentimentNeutral
	SentimentPositive
)

func (l SentimentLabel) String() string {
	switch l {
	case SentimentNegative:
		return "negative"
	case SentimentNeutral:
		return "neutral"
	case SentimentPositive:
		return "positive"
	default:
		return "unknown"
	}
}

// ParseSentimentLabel maps common model label spellings onto a SentimentLabel.
func ParseSentimentLabel(s string) (SentimentLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "negative", "neg", "label_2":
		return SentimentNegative, true
	case "neutral", "neu", "label_0":
		return SentimentNeutral, true
	case "positive", "pos", "label_1":
		return SentimentPositive, true
	}
	return SentimentNeutral, false
}

// Sentiment is computed per review at query time and never persisted.
type Sentiment struct {
	Label      SentimentLabel
	Confidence float32 // in [0,1]
}

// Evidence is one review supporting a ranked venue.
type Evidence struct {
	Position   uint32
	Text       string
	Rating     int
	Similarity float32
	Sentiment  Sentiment
	Score      float32
}

// RankedResult is one venue in a search response.
type RankedResult struct {
	Venue      *Venue
	Score      float32
	Evidence   []Evidence
	MatchCount int
	Positive   int
	Neutral    int
	Negative   int
}

// Manifest describes one built index version.
type Manifest struct {
	Version        string
	DatasetID      string
	EmbeddingModel string
	Dim            int
	Metric         string
	IndexKind      string
	ReviewCount    int
	VenueCount     int
	SkippedRows    int
	BuiltAt        time.Time
}

// SameIdentity reports whether two manifests were produced from the same
// dataset with the same encoder and index layout. A build whose identity
// matches the active manifest does not need to run.
func (m *Manifest) SameIdentity(other *Manifest) bool {
	if m == nil || other == nil {
		return false
	}
	return m.DatasetID == other.DatasetID &&
		m.EmbeddingModel == other.EmbeddingModel &&
		m.Metric == other.Metric &&
		m.IndexKind == other.IndexKind
}

// NewDigest returns the hash used for dataset fingerprints.
func NewDigest() hash.Hash {
	h, _ := blake2b.New(16, nil) // 128 bits
	return h
}

// FingerprintFromContent hashes a sequence of fields into a hex fingerprint.
// Fields are NUL-separated so ("ab","c") and ("a","bc") differ.
func FingerprintFromContent(fields ...string) string {
	h := NewDigest()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Build outcomes recorded in a BuildRecord.
const (
	BuildOutcomeBuilt   = "built"
	BuildOutcomeSkipped = "skipped"
	BuildOutcomeFailed  = "failed"
)

// BuildRecord is the journal entry written after every build attempt,
// successful or not.
type BuildRecord struct {
	Version    string // empty unless a version was activated
	Outcome    string
	DatasetID  string
	Accepted   int
	Rejected   int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
