package domain

import "time"

// MatchStrength classifies the confidence of a product-ad match.
type MatchStrength string

const (
	MatchStrong MatchStrength = "strong"
	MatchMedium MatchStrength = "medium"
	MatchWeak   MatchStrength = "weak"
	MatchNone   MatchStrength = "none"
)

// AdMatch is the result of matching one product against one ad.
// Computed fresh on every insights build; never persisted on its own.
type AdMatch struct {
	Ad       *Ad           `json:"ad"`
	Score    float64       `json:"score"`
	Strength MatchStrength `json:"strength"`

	// Reasons explains which signals fired, in cascade order
	// (URL, handle, text similarity). Audit output, never re-parsed.
	Reasons []string `json:"reasons,omitempty"`
}

// ProductInsights aggregates all AdMatch results for one product.
type ProductInsights struct {
	Product *Product  `json:"product"`
	Matches []AdMatch `json:"matches,omitempty"`

	AdsCount               int `json:"ads_count"`
	DistinctCreativesCount int `json:"distinct_creatives_count"`

	// MatchScore is the best (maximum) match score across all matched
	// ads: the "is this product being promoted" signal.
	MatchScore float64 `json:"match_score"`

	// IsPromoted is true when at least one match is strong.
	IsPromoted bool `json:"is_promoted"`

	StrongCount int `json:"strong_count"`
	MediumCount int `json:"medium_count"`
	WeakCount   int `json:"weak_count"`

	// First/last time a matched ad was seen; nil when no matches exist.
	FirstSeenAt *time.Time `json:"first_seen_at,omitempty"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`

	TotalAdsAnalyzed int       `json:"total_ads_analyzed"`
	ComputedAt       time.Time `json:"computed_at"`
}

// HasMatches reports whether any ad matched this product.
func (p *ProductInsights) HasMatches() bool {
	return len(p.Matches) > 0
}

// PageProductInsights is the page-level aggregation across all products.
type PageProductInsights struct {
	PageID   string            `json:"page_id"`
	Products []ProductInsights `json:"products"`

	TotalProducts int `json:"total_products"`
	TotalAds      int `json:"total_ads"`

	ProductsWithMatches int `json:"products_with_matches"`
	PromotedProducts    int `json:"promoted_products"`

	// CoverageRatio = products-with-any-match / total-products.
	CoverageRatio float64 `json:"coverage_ratio"`
	// PromotionRatio = promoted-products / total-products.
	PromotionRatio float64 `json:"promotion_ratio"`

	ComputedAt time.Time `json:"computed_at"`
}
