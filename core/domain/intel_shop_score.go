package domain

import "time"

// Fixed component weights for the global score.
const (
	WeightAdsActivity     = 0.40
	WeightShopify         = 0.30
	WeightCreativeQuality = 0.20
	WeightCatalog         = 0.10
)

// ScoreComponents holds the four sub-scores contributing to the global
// score. Every component is bounded to [0,100].
type ScoreComponents struct {
	AdsActivity     float64 `json:"ads_activity"`
	Shopify         float64 `json:"shopify"`
	CreativeQuality float64 `json:"creative_quality"`
	Catalog         float64 `json:"catalog"`
}

// WeightedSum combines the components with the fixed weights, clamped to
// [0,100] to guard against floating-point overshoot.
func (c ScoreComponents) WeightedSum() float64 {
	raw := WeightAdsActivity*c.AdsActivity +
		WeightShopify*c.Shopify +
		WeightCreativeQuality*c.CreativeQuality +
		WeightCatalog*c.Catalog
	return Clamp(raw, 0.0, 100.0)
}

// ShopScore is one immutable scored snapshot of a page. New scoring runs
// create new snapshots, never mutate existing ones; the snapshots for a
// page form a time series ordered by ComputedAt.
//
// ActiveAdsCount is captured at scoring time so that alert detection can
// be a pure comparison of two snapshots.
type ShopScore struct {
	ID             string          `json:"id" db:"id"`
	PageID         string          `json:"page_id" db:"page_id"`
	Score          float64         `json:"score" db:"score"`
	Components     ScoreComponents `json:"components"`
	ActiveAdsCount int             `json:"active_ads_count" db:"active_ads_count"`
	ComputedAt     time.Time       `json:"computed_at" db:"computed_at"`
}

// NewShopScore creates a snapshot, clamping the score to [0,100].
func NewShopScore(id, pageID string, score float64, components ScoreComponents, activeAds int) *ShopScore {
	return &ShopScore{
		ID:             id,
		PageID:         pageID,
		Score:          Clamp(score, 0.0, 100.0),
		Components:     components,
		ActiveAdsCount: activeAds,
		ComputedAt:     time.Now().UTC(),
	}
}

// Tier derives the snapshot's tier from its score. The tier is never
// stored independently; recomputing here keeps score and tier from
// drifting apart.
func (s *ShopScore) Tier() Tier {
	return TierForClampedScore(s.Score)
}
