package domain

import (
	"errors"
	"testing"
)

// TestScoreToTierBoundaries tests the half-open range boundaries.
func TestScoreToTierBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{0, TierXS},
		{24.9, TierXS},
		{25, TierS},
		{39.9, TierS},
		{40, TierM},
		{54.9, TierM},
		{55, TierL},
		{69.9, TierL},
		{70, TierXL},
		{84.9, TierXL},
		{85, TierXXL},
		{100, TierXXL},
	}

	for _, tt := range tests {
		got, err := ScoreToTier(tt.score)
		if err != nil {
			t.Errorf("ScoreToTier(%v) error = %v", tt.score, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ScoreToTier(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

// TestScoreToTierOutOfRange tests the defensive failure for scores
// outside [0, 100].
func TestScoreToTierOutOfRange(t *testing.T) {
	for _, score := range []float64{-0.1, 100.1, -50, 1000} {
		if _, err := ScoreToTier(score); !errors.Is(err, ErrInvalidScore) {
			t.Errorf("ScoreToTier(%v) error = %v, want ErrInvalidScore", score, err)
		}
	}
}

// TestTieringTotality sweeps [0, 100] at 0.1 granularity and checks
// every score maps to exactly one tier whose range contains it.
func TestTieringTotality(t *testing.T) {
	for i := 0; i <= 1000; i++ {
		score := float64(i) / 10.0

		tier, err := ScoreToTier(score)
		if err != nil {
			t.Fatalf("ScoreToTier(%v) error = %v", score, err)
		}

		low, high := TierToScoreRange(tier)
		inRange := score >= low && (score < high || (tier == TierXXL && score <= high))
		if !inRange {
			t.Fatalf("score %v mapped to %v but is outside its range [%v, %v)", score, tier, low, high)
		}
	}
}

// TestTierRangePartition tests that the ranges are contiguous with no
// gaps or overlaps.
func TestTierRangePartition(t *testing.T) {
	prevLow := 100.0
	for i, tier := range TiersOrdered {
		low, high := TierToScoreRange(tier)
		if low >= high {
			t.Errorf("%v: degenerate range [%v, %v)", tier, low, high)
		}
		if i == 0 {
			if high != 100.0 {
				t.Errorf("top tier upper bound = %v, want 100", high)
			}
		} else if high != prevLow {
			t.Errorf("gap or overlap between %v and %v: %v != %v", TiersOrdered[i-1], tier, prevLow, high)
		}
		prevLow = low
	}
	if prevLow != 0.0 {
		t.Errorf("bottom tier lower bound = %v, want 0", prevLow)
	}
}

// TestTierForClampedScore tests the total conversion used on already
// clamped values.
func TestTierForClampedScore(t *testing.T) {
	if got := TierForClampedScore(-5); got != TierXS {
		t.Errorf("TierForClampedScore(-5) = %v, want %v", got, TierXS)
	}
	if got := TierForClampedScore(250); got != TierXXL {
		t.Errorf("TierForClampedScore(250) = %v, want %v", got, TierXXL)
	}
}

// TestParseTier tests label parsing and validation.
func TestParseTier(t *testing.T) {
	tests := []struct {
		label  string
		want   Tier
		wantOK bool
	}{
		{"XXL", TierXXL, true},
		{"xl", TierXL, true},
		{" m ", TierM, true},
		{"xs", TierXS, true},
		{"XXXL", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseTier(tt.label)
		if ok != tt.wantOK {
			t.Errorf("ParseTier(%q) ok = %v, want %v", tt.label, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParseTier(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}

	if IsValidTier("XXXL") {
		t.Error("IsValidTier(XXXL) = true, want false")
	}
	if !IsValidTier("l") {
		t.Error("IsValidTier(l) = false, want true")
	}
}

// TestTierOrdinal tests the total order used for tier comparisons.
func TestTierOrdinal(t *testing.T) {
	for i, tier := range TiersOrdered {
		if tier.Ordinal() != i {
			t.Errorf("%v.Ordinal() = %d, want %d", tier, tier.Ordinal(), i)
		}
	}
	if !(TierXXL.Ordinal() < TierXS.Ordinal()) {
		t.Error("ordinal order inverted: XXL must rank before XS")
	}
}
