package search

import (
	"fmt"
	"math"

	"github.com/poiesic/venuefinder/core"
)

// Polarity turns a review's sentiment into a multiplicative factor on its
// similarity. With confidence c in [0,1]:
//
//	negative: 1 - NegativePenalty*c
//	neutral:  1
//	positive: 1 + PositiveBoost*c
type Polarity struct {
	PositiveBoost   float32
	NegativePenalty float32
}

// DefaultPolarity maps negative reviews into [0.3, 1) and positive ones
// into (1, 1.2].
func DefaultPolarity() Polarity {
	return Polarity{PositiveBoost: 0.2, NegativePenalty: 0.7}
}

// Validate reports whether the factor stays positive for every input.
func (p Polarity) Validate() error {
	if p.PositiveBoost < 0 || math.IsNaN(float64(p.PositiveBoost)) {
		return fmt.Errorf("positive boost must be non-negative, got %v", p.PositiveBoost)
	}
	if p.NegativePenalty < 0 || p.NegativePenalty >= 1 || math.IsNaN(float64(p.NegativePenalty)) {
		return fmt.Errorf("negative penalty must be within [0,1), got %v", p.NegativePenalty)
	}
	return nil
}

// Factor returns the multiplier for s.
func (p Polarity) Factor(s core.Sentiment) float32 {
	c := clampConfidence(s.Confidence)
	switch s.Label {
	case core.SentimentPositive:
		return 1 + p.PositiveBoost*c
	case core.SentimentNegative:
		return 1 - p.NegativePenalty*c
	default:
		return 1
	}
}

// PolarityFactor is Factor with DefaultPolarity.
func PolarityFactor(s core.Sentiment) float32 {
	return DefaultPolarity().Factor(s)
}

func clampConfidence(c float32) float32 {
	switch {
	case math.IsNaN(float64(c)), c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
