package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"intel_server/core/domain"
	"intel_server/core/port/out"
)

// PageRepository implements out.PageRepository
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new PageRepository
func NewPageRepository(db *sqlx.DB) out.PageRepository {
	return &PageRepository{db: db}
}

func (r *PageRepository) Get(ctx context.Context, id string) (*domain.Page, error) {
	query := `
		SELECT id, url, domain, state, country, language, currency, category,
		       product_count, is_shopify, active_ads_count, total_ads_count,
		       score, first_seen_at, last_scanned_at, created_at, updated_at
		FROM pages
		WHERE id = $1`

	var row pageRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get page: %w", err)
	}

	return row.toDomain(), nil
}

func (r *PageRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM pages"); err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return count, nil
}

type pageRow struct {
	ID             string         `db:"id"`
	URL            string         `db:"url"`
	Domain         string         `db:"domain"`
	State          string         `db:"state"`
	Country        sql.NullString `db:"country"`
	Language       sql.NullString `db:"language"`
	Currency       sql.NullString `db:"currency"`
	Category       sql.NullString `db:"category"`
	ProductCount   sql.NullInt64  `db:"product_count"`
	IsShopify      bool           `db:"is_shopify"`
	ActiveAdsCount int            `db:"active_ads_count"`
	TotalAdsCount  int            `db:"total_ads_count"`
	Score          float64        `db:"score"`
	FirstSeenAt    sql.NullTime   `db:"first_seen_at"`
	LastScannedAt  sql.NullTime   `db:"last_scanned_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *pageRow) toDomain() *domain.Page {
	page := &domain.Page{
		ID:             r.ID,
		URL:            r.URL,
		Domain:         r.Domain,
		State:          domain.PageState(r.State),
		IsShopify:      r.IsShopify,
		ActiveAdsCount: r.ActiveAdsCount,
		TotalAdsCount:  r.TotalAdsCount,
		Score:          r.Score,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}

	if r.Country.Valid {
		page.Country = &r.Country.String
	}
	if r.Language.Valid {
		page.Language = &r.Language.String
	}
	if r.Currency.Valid {
		page.Currency = &r.Currency.String
	}
	if r.Category.Valid {
		page.Category = &r.Category.String
	}
	if r.ProductCount.Valid {
		count := int(r.ProductCount.Int64)
		page.ProductCount = &count
	}
	if r.FirstSeenAt.Valid {
		page.FirstSeenAt = &r.FirstSeenAt.Time
	}
	if r.LastScannedAt.Valid {
		page.LastScannedAt = &r.LastScannedAt.Time
	}

	return page
}
