package domain

import (
	"fmt"
	"time"
)

// AlertType enumerates the detectable change kinds between two snapshots.
type AlertType string

const (
	AlertNewAdsBoost AlertType = "NEW_ADS_BOOST"
	AlertScoreJump   AlertType = "SCORE_JUMP"
	AlertScoreDrop   AlertType = "SCORE_DROP"
	AlertTierUp      AlertType = "TIER_UP"
	AlertTierDown    AlertType = "TIER_DOWN"
)

// AlertSeverity is derived from the magnitude of the detected change.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// Alert records a detected change between two ShopScore snapshots of the
// same page. Immutable once created; retention is an external concern.
type Alert struct {
	ID       string        `json:"id" db:"id"`
	PageID   string        `json:"page_id" db:"page_id"`
	Type     AlertType     `json:"type" db:"type"`
	Message  string        `json:"message" db:"message"`
	Severity AlertSeverity `json:"severity" db:"severity"`

	OldScore    *float64 `json:"old_score,omitempty" db:"old_score"`
	NewScore    *float64 `json:"new_score,omitempty" db:"new_score"`
	OldTier     *Tier    `json:"old_tier,omitempty" db:"old_tier"`
	NewTier     *Tier    `json:"new_tier,omitempty" db:"new_tier"`
	OldAdsCount *int     `json:"old_ads_count,omitempty" db:"old_ads_count"`
	NewAdsCount *int     `json:"new_ads_count,omitempty" db:"new_ads_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewAdsBoostAlert creates a NEW_ADS_BOOST alert.
func NewAdsBoostAlert(id, pageID string, oldCount, newCount int) *Alert {
	return &Alert{
		ID:          id,
		PageID:      pageID,
		Type:        AlertNewAdsBoost,
		Message:     fmt.Sprintf("Ads count increased from %d to %d (+%d)", oldCount, newCount, newCount-oldCount),
		Severity:    SeverityWarning,
		OldAdsCount: &oldCount,
		NewAdsCount: &newCount,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewScoreJumpAlert creates a SCORE_JUMP alert with severity scaled to the
// delta magnitude.
func NewScoreJumpAlert(id, pageID string, oldScore, newScore float64, severity AlertSeverity) *Alert {
	return &Alert{
		ID:        id,
		PageID:    pageID,
		Type:      AlertScoreJump,
		Message:   fmt.Sprintf("Score jumped from %.1f to %.1f (+%.1f)", oldScore, newScore, newScore-oldScore),
		Severity:  severity,
		OldScore:  &oldScore,
		NewScore:  &newScore,
		CreatedAt: time.Now().UTC(),
	}
}

// NewScoreDropAlert creates a SCORE_DROP alert with severity scaled to the
// delta magnitude.
func NewScoreDropAlert(id, pageID string, oldScore, newScore float64, severity AlertSeverity) *Alert {
	return &Alert{
		ID:        id,
		PageID:    pageID,
		Type:      AlertScoreDrop,
		Message:   fmt.Sprintf("Score dropped from %.1f to %.1f (%.1f)", oldScore, newScore, newScore-oldScore),
		Severity:  severity,
		OldScore:  &oldScore,
		NewScore:  &newScore,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTierUpAlert creates a TIER_UP alert.
func NewTierUpAlert(id, pageID string, oldTier, newTier Tier) *Alert {
	return &Alert{
		ID:        id,
		PageID:    pageID,
		Type:      AlertTierUp,
		Message:   fmt.Sprintf("Tier upgraded from %s to %s", oldTier, newTier),
		Severity:  SeverityInfo,
		OldTier:   &oldTier,
		NewTier:   &newTier,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTierDownAlert creates a TIER_DOWN alert.
func NewTierDownAlert(id, pageID string, oldTier, newTier Tier) *Alert {
	return &Alert{
		ID:        id,
		PageID:    pageID,
		Type:      AlertTierDown,
		Message:   fmt.Sprintf("Tier downgraded from %s to %s", oldTier, newTier),
		Severity:  SeverityWarning,
		OldTier:   &oldTier,
		NewTier:   &newTier,
		CreatedAt: time.Now().UTC(),
	}
}
