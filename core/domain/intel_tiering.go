package domain

import (
	"fmt"
	"strings"
)

// Tier represents a discrete banding of a shop score.
//
// Tiers are totally ordered XXL > XL > L > M > S > XS. Each tier owns a
// half-open score range; the ranges partition [0,100] with no gaps or
// overlaps (XXL alone includes the upper bound 100).
//
// This file is the single source of truth for score<->tier conversion.
// Ranking filters, badges and alerting all go through ScoreToTier /
// TierToScoreRange instead of inlining range checks.
type Tier string

const (
	TierXXL Tier = "XXL"
	TierXL  Tier = "XL"
	TierL   Tier = "L"
	TierM   Tier = "M"
	TierS   Tier = "S"
	TierXS  Tier = "XS"
)

// TiersOrdered lists tiers from best (XXL) to worst (XS).
var TiersOrdered = []Tier{TierXXL, TierXL, TierL, TierM, TierS, TierXS}

// tierRanges maps each tier to its (min inclusive, max exclusive) range.
// XXL is special: its max is inclusive at 100.
var tierRanges = map[Tier][2]float64{
	TierXXL: {85.0, 100.0},
	TierXL:  {70.0, 85.0},
	TierL:   {55.0, 70.0},
	TierM:   {40.0, 55.0},
	TierS:   {25.0, 40.0},
	TierXS:  {0.0, 25.0},
}

// ScoreToTier converts a numeric score to its tier.
//
// Scores outside [0,100] return ErrInvalidScore: a calculator producing an
// out-of-range value is a programming error upstream, not a data-quality
// condition. Callers are expected to clamp first.
func ScoreToTier(score float64) (Tier, error) {
	if score < 0.0 || score > 100.0 {
		return "", fmt.Errorf("%w: %.2f", ErrInvalidScore, score)
	}

	switch {
	case score >= 85.0:
		return TierXXL, nil
	case score >= 70.0:
		return TierXL, nil
	case score >= 55.0:
		return TierL, nil
	case score >= 40.0:
		return TierM, nil
	case score >= 25.0:
		return TierS, nil
	default:
		return TierXS, nil
	}
}

// TierForClampedScore clamps the score to [0,100] and converts it.
// Never fails; for use where the input is already a persisted score.
func TierForClampedScore(score float64) Tier {
	tier, _ := ScoreToTier(Clamp(score, 0.0, 100.0))
	return tier
}

// TierToScoreRange returns the (min, max) score range for a tier.
// Min is inclusive; max is exclusive except for XXL where it is inclusive.
// The enumeration is closed, so there is no failure case for Tier values
// produced by ParseTier or ScoreToTier.
func TierToScoreRange(tier Tier) (float64, float64) {
	r, ok := tierRanges[tier]
	if !ok {
		// Unknown tier can only come from unvalidated external input.
		return 0.0, 0.0
	}
	return r[0], r[1]
}

// ParseTier normalizes a tier label (case-insensitive) into a Tier.
func ParseTier(label string) (Tier, bool) {
	normalized := Tier(strings.ToUpper(strings.TrimSpace(label)))
	if _, ok := tierRanges[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// IsValidTier reports whether the label names a known tier.
func IsValidTier(label string) bool {
	_, ok := ParseTier(label)
	return ok
}

// Ordinal returns the tier's position in TiersOrdered (0 = XXL, 5 = XS).
// Lower ordinal means better tier. Unknown tiers sort last.
func (t Tier) Ordinal() int {
	for i, tier := range TiersOrdered {
		if tier == t {
			return i
		}
	}
	return len(TiersOrdered)
}

// Clamp bounds value to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
