package in

import (
	"context"
	"time"

	"intel_server/core/domain"
	"intel_server/core/port/out"
)

// ComputeScoreResult is the outcome of one scoring run.
type ComputeScoreResult struct {
	Snapshot   *domain.ShopScore `json:"snapshot"`
	Tier       domain.Tier       `json:"tier"`
	Alerts     []*domain.Alert   `json:"alerts,omitempty"`
	ComputedAt time.Time         `json:"computed_at"`
}

// ScoringService computes and reads shop score snapshots.
type ScoringService interface {
	// Compute runs a full scoring pass for the page: calculators,
	// weighted aggregation, snapshot persistence, then alert detection
	// against the previous snapshot (skipped on the first run).
	Compute(ctx context.Context, pageID string) (*ComputeScoreResult, error)

	Latest(ctx context.Context, pageID string) (*domain.ShopScore, error)
	History(ctx context.Context, pageID string, limit int) ([]*domain.ShopScore, error)
}

// InsightsSort names the supported orderings of the insights listing.
type InsightsSort string

const (
	SortByAdsCount   InsightsSort = "ads_count"
	SortByMatchScore InsightsSort = "match_score"
	SortByLastSeenAt InsightsSort = "last_seen_at"
)

// InsightsOptions narrows and orders the insights listing.
type InsightsOptions struct {
	SortBy InsightsSort
	Limit  int
	Offset int
}

// InsightsService builds product-ad attribution insights.
type InsightsService interface {
	BuildForPage(ctx context.Context, pageID string, opts InsightsOptions) (*domain.PageProductInsights, error)
	BuildForProduct(ctx context.Context, pageID, productID string) (*domain.ProductInsights, error)
}

// AlertService reads persisted alerts.
type AlertService interface {
	ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.Alert, error)
}

// RankingService lists shops ordered by their latest score.
type RankingService interface {
	RankedShops(ctx context.Context, tier *domain.Tier, limit, offset int) ([]*out.RankedShop, int, error)
}
