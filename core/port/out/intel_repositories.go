package out

import (
	"context"

	"intel_server/core/domain"
)

// PageRepository loads tracked pages. Implementations return (nil, nil)
// when the page does not exist; services translate that to a not-found
// error at the use-case boundary.
type PageRepository interface {
	Get(ctx context.Context, id string) (*domain.Page, error)
	Count(ctx context.Context) (int, error)
}

// AdsRepository loads advertisements for a page.
type AdsRepository interface {
	ListByPage(ctx context.Context, pageID string) ([]*domain.Ad, error)
	CountActiveByPage(ctx context.Context, pageID string) (int, error)
}

// ProductRepository loads catalog products.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByPage(ctx context.Context, pageID string, limit, offset int) ([]*domain.Product, error)
}

// RankedShop is one row of the ranked-shops listing: a page joined with
// its most recent score snapshot.
type RankedShop struct {
	Page     *domain.Page     `json:"page"`
	Snapshot *domain.ShopScore `json:"snapshot"`
}

// RankedShopsFilter narrows the ranked-shops listing.
type RankedShopsFilter struct {
	// MinScore/MaxScore bound the latest snapshot score; derived from a
	// tier via the tiering module, never inlined range checks.
	MinScore *float64
	MaxScore *float64
	Limit    int
	Offset   int
}

// ScoringRepository persists and reads ShopScore snapshots.
// Snapshots are create-only; there is no update operation by design.
type ScoringRepository interface {
	Save(ctx context.Context, score *domain.ShopScore) error
	Latest(ctx context.Context, pageID string) (*domain.ShopScore, error)
	ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.ShopScore, error)
	ListRanked(ctx context.Context, filter *RankedShopsFilter) ([]*RankedShop, int, error)
}

// AlertRepository persists and reads alerts. Alerts are create-only;
// retention/cleanup is an external concern.
type AlertRepository interface {
	Save(ctx context.Context, alert *domain.Alert) error
	ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.Alert, error)
}
