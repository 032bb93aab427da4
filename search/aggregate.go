package search

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/poiesic/venuefinder/core"
)

// Aggregation reduces the review scores of one venue to the venue score.
type Aggregation string

const (
	// AggregateMax takes the best review score. A venue cannot climb by
	// accumulating weak matches.
	AggregateMax Aggregation = "max"

	// AggregateMean averages the review scores.
	AggregateMean Aggregation = "mean"

	// AggregateWeighted is mean * log1p(matches) * sqrt((positive+1)/(negative+1)),
	// favoring venues with many matching reviews that lean positive.
	AggregateWeighted Aggregation = "weighted"
)

// ParseAggregation accepts the aggregation names case-insensitively.
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case AggregateMax, AggregateMean, AggregateWeighted:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAggregation, s)
}

// venueGroup collects the scored reviews of one venue.
type venueGroup struct {
	venue    *core.Venue
	evidence []core.Evidence
	seen     map[uint32]struct{}
}

func newVenueGroup(venue *core.Venue) *venueGroup {
	return &venueGroup{venue: venue, seen: map[uint32]struct{}{}}
}

// add records e unless its position was already counted.
func (g *venueGroup) add(e core.Evidence) {
	if _, dup := g.seen[e.Position]; dup {
		return
	}
	g.seen[e.Position] = struct{}{}
	g.evidence = append(g.evidence, e)
}

// sortEvidence orders evidence by score descending, then position ascending.
func (g *venueGroup) sortEvidence() {
	slices.SortFunc(g.evidence, func(a, b core.Evidence) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
}

// result reduces the group. Evidence must already be sorted.
func (g *venueGroup) result(agg Aggregation, maxEvidence int) core.RankedResult {
	r := core.RankedResult{
		Venue:      g.venue,
		MatchCount: len(g.evidence),
	}

	var sum, best float64
	for i, e := range g.evidence {
		score := float64(e.Score)
		sum += score
		if i == 0 || score > best {
			best = score
		}
		switch e.Sentiment.Label {
		case core.SentimentPositive:
			r.Positive++
		case core.SentimentNegative:
			r.Negative++
		default:
			r.Neutral++
		}
	}

	mean := 0.0
	if n := len(g.evidence); n > 0 {
		mean = sum / float64(n)
	}
	switch agg {
	case AggregateMean:
		r.Score = float32(mean)
	case AggregateWeighted:
		ratio := float64(r.Positive+1) / float64(r.Negative+1)
		r.Score = float32(mean * math.Log1p(float64(r.MatchCount)) * math.Sqrt(ratio))
	default:
		r.Score = float32(best)
	}

	r.Evidence = slices.Clone(g.evidence[:min(maxEvidence, len(g.evidence))])
	return r
}

// compareResults orders by score descending, then venue id ascending.
func compareResults(a, b core.RankedResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Venue.Id, b.Venue.Id)
}
