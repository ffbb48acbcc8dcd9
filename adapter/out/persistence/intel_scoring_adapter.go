package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"

	"intel_server/core/domain"
	"intel_server/core/port/out"
)

// ScoringRepository implements out.ScoringRepository. Snapshots are
// create-only; the time series per page is ordered by computed_at.
type ScoringRepository struct {
	db *sqlx.DB
}

// NewScoringRepository creates a new ScoringRepository
func NewScoringRepository(db *sqlx.DB) out.ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) Save(ctx context.Context, score *domain.ShopScore) error {
	components, err := json.Marshal(score.Components)
	if err != nil {
		return fmt.Errorf("marshal components: %w", err)
	}

	query := `
		INSERT INTO shop_scores (id, page_id, score, components, active_ads_count, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		score.ID, score.PageID, score.Score, components,
		score.ActiveAdsCount, score.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("save shop score: %w", err)
	}
	return nil
}

func (r *ScoringRepository) Latest(ctx context.Context, pageID string) (*domain.ShopScore, error) {
	query := `
		SELECT id, page_id, score, components, active_ads_count, computed_at
		FROM shop_scores
		WHERE page_id = $1
		ORDER BY computed_at DESC
		LIMIT 1`

	var row scoreRow
	if err := r.db.GetContext(ctx, &row, query, pageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest shop score: %w", err)
	}

	return row.toDomain()
}

func (r *ScoringRepository) ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.ShopScore, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, page_id, score, components, active_ads_count, computed_at
		FROM shop_scores
		WHERE page_id = $1
		ORDER BY computed_at DESC
		LIMIT $2`

	var rows []scoreRow
	if err := r.db.SelectContext(ctx, &rows, query, pageID, limit); err != nil {
		return nil, fmt.Errorf("list shop scores: %w", err)
	}

	scores := make([]*domain.ShopScore, len(rows))
	for i, row := range rows {
		score, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// ListRanked joins each page with its most recent snapshot and orders by
// that score. Score bounds are min-inclusive, max-exclusive; the filter
// for the top tier simply omits the upper bound.
func (r *ScoringRepository) ListRanked(ctx context.Context, filter *out.RankedShopsFilter) ([]*out.RankedShop, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argIdx := 1

	if filter.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("l.score >= $%d", argIdx))
		args = append(args, *filter.MinScore)
		argIdx++
	}
	if filter.MaxScore != nil {
		conditions = append(conditions, fmt.Sprintf("l.score < $%d", argIdx))
		args = append(args, *filter.MaxScore)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	latestCTE := `
		WITH latest AS (
			SELECT DISTINCT ON (page_id)
			       id, page_id, score, components, active_ads_count, computed_at
			FROM shop_scores
			ORDER BY page_id, computed_at DESC
		)`

	countQuery := fmt.Sprintf(`%s
		SELECT COUNT(*)
		FROM latest l
		JOIN pages p ON p.id = l.page_id
		WHERE %s`, latestCTE, whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count ranked shops: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`%s
		SELECT p.id AS page_id, p.url, p.domain, p.state, p.country, p.language,
		       p.currency, p.category, p.product_count, p.is_shopify,
		       p.active_ads_count AS page_active_ads_count, p.total_ads_count,
		       p.score AS page_score, p.first_seen_at, p.last_scanned_at,
		       p.created_at, p.updated_at,
		       l.id AS snapshot_id, l.score AS snapshot_score, l.components,
		       l.active_ads_count AS snapshot_active_ads_count, l.computed_at
		FROM latest l
		JOIN pages p ON p.id = l.page_id
		WHERE %s
		ORDER BY l.score DESC, l.computed_at DESC
		LIMIT $%d OFFSET $%d`, latestCTE, whereClause, argIdx, argIdx+1)

	args = append(args, limit, filter.Offset)

	var rows []rankedRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list ranked shops: %w", err)
	}

	shops := make([]*out.RankedShop, len(rows))
	for i, row := range rows {
		shop, err := row.toDomain()
		if err != nil {
			return nil, 0, err
		}
		shops[i] = shop
	}
	return shops, total, nil
}

// =============================================================================
// Row Types
// =============================================================================

type scoreRow struct {
	ID             string    `db:"id"`
	PageID         string    `db:"page_id"`
	Score          float64   `db:"score"`
	Components     []byte    `db:"components"`
	ActiveAdsCount int       `db:"active_ads_count"`
	ComputedAt     time.Time `db:"computed_at"`
}

func (r *scoreRow) toDomain() (*domain.ShopScore, error) {
	var components domain.ScoreComponents
	if len(r.Components) > 0 {
		if err := json.Unmarshal(r.Components, &components); err != nil {
			return nil, fmt.Errorf("unmarshal components: %w", err)
		}
	}

	return &domain.ShopScore{
		ID:             r.ID,
		PageID:         r.PageID,
		Score:          r.Score,
		Components:     components,
		ActiveAdsCount: r.ActiveAdsCount,
		ComputedAt:     r.ComputedAt,
	}, nil
}

type rankedRow struct {
	PageID             string         `db:"page_id"`
	URL                string         `db:"url"`
	Domain             string         `db:"domain"`
	State              string         `db:"state"`
	Country            sql.NullString `db:"country"`
	Language           sql.NullString `db:"language"`
	Currency           sql.NullString `db:"currency"`
	Category           sql.NullString `db:"category"`
	ProductCount       sql.NullInt64  `db:"product_count"`
	IsShopify          bool           `db:"is_shopify"`
	PageActiveAdsCount int            `db:"page_active_ads_count"`
	TotalAdsCount      int            `db:"total_ads_count"`
	PageScore          float64        `db:"page_score"`
	FirstSeenAt        sql.NullTime   `db:"first_seen_at"`
	LastScannedAt      sql.NullTime   `db:"last_scanned_at"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`

	SnapshotID             string    `db:"snapshot_id"`
	SnapshotScore          float64   `db:"snapshot_score"`
	Components             []byte    `db:"components"`
	SnapshotActiveAdsCount int       `db:"snapshot_active_ads_count"`
	ComputedAt             time.Time `db:"computed_at"`
}

func (r *rankedRow) toDomain() (*out.RankedShop, error) {
	page := &domain.Page{
		ID:             r.PageID,
		URL:            r.URL,
		Domain:         r.Domain,
		State:          domain.PageState(r.State),
		IsShopify:      r.IsShopify,
		ActiveAdsCount: r.PageActiveAdsCount,
		TotalAdsCount:  r.TotalAdsCount,
		Score:          r.PageScore,
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

	var components domain.ScoreComponents
	if len(r.Components) > 0 {
		if err := json.Unmarshal(r.Components, &components); err != nil {
			return nil, fmt.Errorf("unmarshal ranked components: %w", err)
		}
	}

	return &out.RankedShop{
		Page: page,
		Snapshot: &domain.ShopScore{
			ID:             r.SnapshotID,
			PageID:         r.PageID,
			Score:          r.SnapshotScore,
			Components:     components,
			ActiveAdsCount: r.SnapshotActiveAdsCount,
			ComputedAt:     r.ComputedAt,
		},
	}, nil
}
