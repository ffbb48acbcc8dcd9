package alerting

import (
	"testing"

	"intel_server/config"
	"intel_server/core/domain"
)

func snapshot(score float64, activeAds int) *domain.ShopScore {
	return domain.NewShopScore("snap", "page-1", score, domain.ScoreComponents{}, activeAds)
}

// TestDetectNoBaseline tests that nothing fires without a prior snapshot.
func TestDetectNoBaseline(t *testing.T) {
	alerts := Detect(nil, snapshot(90, 10), config.DefaultAlertThresholds())
	if len(alerts) != 0 {
		t.Errorf("Detect() with nil baseline returned %d alerts, want 0", len(alerts))
	}
}

// TestDetectScoreChange tests SCORE_JUMP and SCORE_DROP thresholds and
// severity escalation.
func TestDetectScoreChange(t *testing.T) {
	thresholds := config.DefaultAlertThresholds()

	tests := []struct {
		name         string
		oldScore     float64
		newScore     float64
		wantType     domain.AlertType
		wantSeverity domain.AlertSeverity
		wantNone     bool
	}{
		{
			name:     "delta below threshold is silent",
			oldScore: 50, newScore: 59.9,
			wantNone: true,
		},
		{
			name:     "jump at threshold fires warning",
			oldScore: 50, newScore: 60,
			wantType: domain.AlertScoreJump, wantSeverity: domain.SeverityWarning,
		},
		{
			name:     "jump at critical threshold escalates",
			oldScore: 50, newScore: 75,
			wantType: domain.AlertScoreJump, wantSeverity: domain.SeverityCritical,
		},
		{
			name:     "drop mirrors jump thresholds",
			oldScore: 60, newScore: 50,
			wantType: domain.AlertScoreDrop, wantSeverity: domain.SeverityWarning,
		},
		{
			name:     "large drop escalates to critical",
			oldScore: 90, newScore: 60,
			wantType: domain.AlertScoreDrop, wantSeverity: domain.SeverityCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectScoreChange(snapshot(tt.oldScore, 5), snapshot(tt.newScore, 5), thresholds)
			if tt.wantNone {
				if got != nil {
					t.Errorf("detectScoreChange() = %v, want nil", got.Type)
				}
				return
			}
			if got == nil {
				t.Fatal("detectScoreChange() = nil, want alert")
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %v, want %v", got.Severity, tt.wantSeverity)
			}
		})
	}
}

// TestDetectTierChange tests ordinal tier comparison in both directions.
func TestDetectTierChange(t *testing.T) {
	tests := []struct {
		name     string
		oldScore float64
		newScore float64
		wantType domain.AlertType
		wantNone bool
	}{
		{
			name:     "same tier is silent even when score moved",
			oldScore: 56, newScore: 69,
			wantNone: true,
		},
		{
			name:     "crossing a boundary upward",
			oldScore: 68, newScore: 72,
			wantType: domain.AlertTierUp,
		},
		{
			name:     "crossing a boundary downward",
			oldScore: 40, newScore: 39.9,
			wantType: domain.AlertTierDown,
		},
		{
			name:     "multi-tier climb is a single alert",
			oldScore: 10, newScore: 90,
			wantType: domain.AlertTierUp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectTierChange(snapshot(tt.oldScore, 5), snapshot(tt.newScore, 5))
			if tt.wantNone {
				if got != nil {
					t.Errorf("detectTierChange() = %v, want nil", got.Type)
				}
				return
			}
			if got == nil {
				t.Fatal("detectTierChange() = nil, want alert")
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

// TestDetectAdsBoost tests the boost ratio, the zero-ads baseline guard
// and the increase-only rule.
func TestDetectAdsBoost(t *testing.T) {
	thresholds := config.DefaultAlertThresholds()

	tests := []struct {
		name     string
		oldAds   int
		newAds   int
		wantFire bool
	}{
		{name: "exact doubling fires", oldAds: 5, newAds: 10, wantFire: true},
		{name: "below the ratio is silent", oldAds: 5, newAds: 9, wantFire: false},
		{name: "zero baseline uses floor of one", oldAds: 0, newAds: 2, wantFire: true},
		{name: "zero baseline below floor ratio is silent", oldAds: 0, newAds: 1, wantFire: false},
		{name: "decrease never fires", oldAds: 10, newAds: 2, wantFire: false},
		{name: "unchanged never fires", oldAds: 5, newAds: 5, wantFire: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectAdsBoost(snapshot(50, tt.oldAds), snapshot(50, tt.newAds), thresholds)
			if tt.wantFire && got == nil {
				t.Fatal("detectAdsBoost() = nil, want alert")
			}
			if !tt.wantFire && got != nil {
				t.Errorf("detectAdsBoost() = %v, want nil", got.Type)
			}
			if got != nil && got.Type != domain.AlertNewAdsBoost {
				t.Errorf("type = %v, want %v", got.Type, domain.AlertNewAdsBoost)
			}
		})
	}
}

// TestDetectCombined tests that independent rules can fire together on
// one transition.
func TestDetectCombined(t *testing.T) {
	prev := snapshot(17.5, 2)
	curr := snapshot(99.0, 50)

	alerts := Detect(prev, curr, config.DefaultAlertThresholds())

	types := make(map[domain.AlertType]bool)
	for _, a := range alerts {
		types[a.Type] = true
	}
	for _, want := range []domain.AlertType{domain.AlertScoreJump, domain.AlertTierUp, domain.AlertNewAdsBoost} {
		if !types[want] {
			t.Errorf("missing %v in %v", want, alerts)
		}
	}
	if len(alerts) != 3 {
		t.Errorf("Detect() returned %d alerts, want 3", len(alerts))
	}
}
