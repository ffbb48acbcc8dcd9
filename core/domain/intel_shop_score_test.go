package domain

import (
	"math"
	"testing"
)

// TestWeightedSum tests the fixed component weighting.
func TestWeightedSum(t *testing.T) {
	tests := []struct {
		name       string
		components ScoreComponents
		want       float64
	}{
		{
			name:       "all zero",
			components: ScoreComponents{},
			want:       0.0,
		},
		{
			name:       "all maxed",
			components: ScoreComponents{AdsActivity: 100, Shopify: 100, CreativeQuality: 100, Catalog: 100},
			want:       100.0,
		},
		{
			name:       "mixed components",
			components: ScoreComponents{AdsActivity: 100, Shopify: 100, CreativeQuality: 40, Catalog: 50},
			want:       83.0, // 40 + 30 + 8 + 5
		},
		{
			name:       "overshoot is clamped",
			components: ScoreComponents{AdsActivity: 150, Shopify: 150, CreativeQuality: 150, Catalog: 150},
			want:       100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.components.WeightedSum()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("WeightedSum() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestNewShopScoreClamps tests that snapshots never carry out-of-range
// scores.
func TestNewShopScoreClamps(t *testing.T) {
	s := NewShopScore("id", "page", 150.0, ScoreComponents{}, 3)
	if s.Score != 100.0 {
		t.Errorf("score = %v, want clamped 100", s.Score)
	}
	if s.Tier() != TierXXL {
		t.Errorf("tier = %v, want %v", s.Tier(), TierXXL)
	}

	s = NewShopScore("id", "page", -10.0, ScoreComponents{}, 0)
	if s.Score != 0.0 {
		t.Errorf("score = %v, want clamped 0", s.Score)
	}
	if s.Tier() != TierXS {
		t.Errorf("tier = %v, want %v", s.Tier(), TierXS)
	}
}

// TestScenarioScoring tests the canonical scoring example: activity 100,
// shopify 100, creative 40, catalog 50 lands in tier XL.
func TestScenarioScoring(t *testing.T) {
	s := NewShopScore("id", "page", ScoreComponents{
		AdsActivity: 100, Shopify: 100, CreativeQuality: 40, Catalog: 50,
	}.WeightedSum(), ScoreComponents{
		AdsActivity: 100, Shopify: 100, CreativeQuality: 40, Catalog: 50,
	}, 60)

	if math.Abs(s.Score-83.0) > 1e-9 {
		t.Errorf("score = %v, want 83", s.Score)
	}
	if s.Tier() != TierXL {
		t.Errorf("tier = %v, want %v", s.Tier(), TierXL)
	}
}
