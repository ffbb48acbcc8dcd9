package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"intel_server/core/domain"
	"intel_server/core/port/out"
)

// AdsRepository implements out.AdsRepository
type AdsRepository struct {
	db *sqlx.DB
}

// NewAdsRepository creates a new AdsRepository
func NewAdsRepository(db *sqlx.DB) out.AdsRepository {
	return &AdsRepository{db: db}
}

func (r *AdsRepository) ListByPage(ctx context.Context, pageID string) ([]*domain.Ad, error) {
	query := `
		SELECT id, page_id, meta_page_id, meta_ad_id, title, body, link_url,
		       image_url, video_url, cta_type, status, platforms, countries,
		       started_at, ended_at, first_seen_at, last_seen_at,
		       created_at, updated_at
		FROM ads
		WHERE page_id = $1
		ORDER BY first_seen_at DESC NULLS LAST, created_at DESC`

	var rows []adRow
	if err := r.db.SelectContext(ctx, &rows, query, pageID); err != nil {
		return nil, fmt.Errorf("list ads by page: %w", err)
	}

	ads := make([]*domain.Ad, len(rows))
	for i, row := range rows {
		ads[i] = row.toDomain()
	}
	return ads, nil
}

func (r *AdsRepository) CountActiveByPage(ctx context.Context, pageID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM ads WHERE page_id = $1 AND status = 'active'",
		pageID)
	if err != nil {
		return 0, fmt.Errorf("count active ads: %w", err)
	}
	return count, nil
}

type adRow struct {
	ID          string         `db:"id"`
	PageID      string         `db:"page_id"`
	MetaPageID  sql.NullString `db:"meta_page_id"`
	MetaAdID    sql.NullString `db:"meta_ad_id"`
	Title       sql.NullString `db:"title"`
	Body        sql.NullString `db:"body"`
	LinkURL     sql.NullString `db:"link_url"`
	ImageURL    sql.NullString `db:"image_url"`
	VideoURL    sql.NullString `db:"video_url"`
	CTAType     sql.NullString `db:"cta_type"`
	Status      string         `db:"status"`
	Platforms   pq.StringArray `db:"platforms"`
	Countries   pq.StringArray `db:"countries"`
	StartedAt   sql.NullTime   `db:"started_at"`
	EndedAt     sql.NullTime   `db:"ended_at"`
	FirstSeenAt sql.NullTime   `db:"first_seen_at"`
	LastSeenAt  sql.NullTime   `db:"last_seen_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r *adRow) toDomain() *domain.Ad {
	ad := &domain.Ad{
		ID:         r.ID,
		PageID:     r.PageID,
		MetaPageID: r.MetaPageID.String,
		MetaAdID:   r.MetaAdID.String,
		Title:      r.Title.String,
		Body:       r.Body.String,
		LinkURL:    r.LinkURL.String,
		ImageURL:   r.ImageURL.String,
		VideoURL:   r.VideoURL.String,
		CTAType:    r.CTAType.String,
		Status:     domain.AdStatus(r.Status),
		Platforms:  r.Platforms,
		Countries:  r.Countries,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.StartedAt.Valid {
		ad.StartedAt = &r.StartedAt.Time
	}
	if r.EndedAt.Valid {
		ad.EndedAt = &r.EndedAt.Time
	}
	if r.FirstSeenAt.Valid {
		ad.FirstSeenAt = &r.FirstSeenAt.Time
	}
	if r.LastSeenAt.Valid {
		ad.LastSeenAt = &r.LastSeenAt.Time
	}

	return ad
}
