// Package alerting detects notable changes between consecutive score
// snapshots and serves persisted alerts.
package alerting

import (
	"math"

	"github.com/google/uuid"

	"intel_server/config"
	"intel_server/core/domain"
)

// Detect compares two consecutive snapshots of the same page and returns
// the alerts the transition triggers. A nil previous snapshot means this
// is the first scoring run; no baseline exists so nothing fires.
//
// The comparison is pure: both snapshots carry everything needed
// (score, components, active ads count), so the detector never touches
// storage and stays trivially testable.
func Detect(prev, curr *domain.ShopScore, thresholds config.AlertThresholds) []*domain.Alert {
	if prev == nil || curr == nil {
		return nil
	}

	var alerts []*domain.Alert

	if a := detectScoreChange(prev, curr, thresholds); a != nil {
		alerts = append(alerts, a)
	}
	if a := detectTierChange(prev, curr); a != nil {
		alerts = append(alerts, a)
	}
	if a := detectAdsBoost(prev, curr, thresholds); a != nil {
		alerts = append(alerts, a)
	}

	return alerts
}

func detectScoreChange(prev, curr *domain.ShopScore, thresholds config.AlertThresholds) *domain.Alert {
	delta := curr.Score - prev.Score
	if math.Abs(delta) < thresholds.ScoreChange {
		return nil
	}

	severity := domain.SeverityWarning
	if math.Abs(delta) >= thresholds.ScoreChangeCritical {
		severity = domain.SeverityCritical
	}

	if delta > 0 {
		return domain.NewScoreJumpAlert(uuid.NewString(), curr.PageID, prev.Score, curr.Score, severity)
	}
	return domain.NewScoreDropAlert(uuid.NewString(), curr.PageID, prev.Score, curr.Score, severity)
}

func detectTierChange(prev, curr *domain.ShopScore) *domain.Alert {
	prevTier, currTier := prev.Tier(), curr.Tier()
	if prevTier == currTier {
		return nil
	}

	// Ordinal 0 is the top tier, so moving up means a smaller ordinal.
	if currTier.Ordinal() < prevTier.Ordinal() {
		return domain.NewTierUpAlert(uuid.NewString(), curr.PageID, prevTier, currTier)
	}
	return domain.NewTierDownAlert(uuid.NewString(), curr.PageID, prevTier, currTier)
}

func detectAdsBoost(prev, curr *domain.ShopScore, thresholds config.AlertThresholds) *domain.Alert {
	if curr.ActiveAdsCount <= prev.ActiveAdsCount {
		return nil
	}

	// Guard against division by zero when the baseline had no active ads.
	baseline := math.Max(float64(prev.ActiveAdsCount), 1)
	ratio := float64(curr.ActiveAdsCount) / baseline
	if ratio < thresholds.AdsBoostRatio {
		return nil
	}

	return domain.NewAdsBoostAlert(uuid.NewString(), curr.PageID, prev.ActiveAdsCount, curr.ActiveAdsCount)
}
