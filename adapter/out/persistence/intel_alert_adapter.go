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

// AlertRepository implements out.AlertRepository
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *sqlx.DB) out.AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (
			id, page_id, type, message, severity,
			old_score, new_score, old_tier, new_tier,
			old_ads_count, new_ads_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.PageID, alert.Type, alert.Message, alert.Severity,
		alert.OldScore, alert.NewScore, alert.OldTier, alert.NewTier,
		alert.OldAdsCount, alert.NewAdsCount, alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, page_id, type, message, severity,
		       old_score, new_score, old_tier, new_tier,
		       old_ads_count, new_ads_count, created_at
		FROM alerts
		WHERE page_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var rows []alertRow
	if err := r.db.SelectContext(ctx, &rows, query, pageID, limit); err != nil {
		return nil, fmt.Errorf("list alerts by page: %w", err)
	}

	alerts := make([]*domain.Alert, len(rows))
	for i, row := range rows {
		alerts[i] = row.toDomain()
	}
	return alerts, nil
}

type alertRow struct {
	ID          string          `db:"id"`
	PageID      string          `db:"page_id"`
	Type        string          `db:"type"`
	Message     string          `db:"message"`
	Severity    string          `db:"severity"`
	OldScore    sql.NullFloat64 `db:"old_score"`
	NewScore    sql.NullFloat64 `db:"new_score"`
	OldTier     sql.NullString  `db:"old_tier"`
	NewTier     sql.NullString  `db:"new_tier"`
	OldAdsCount sql.NullInt64   `db:"old_ads_count"`
	NewAdsCount sql.NullInt64   `db:"new_ads_count"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r *alertRow) toDomain() *domain.Alert {
	alert := &domain.Alert{
		ID:        r.ID,
		PageID:    r.PageID,
		Type:      domain.AlertType(r.Type),
		Message:   r.Message,
		Severity:  domain.AlertSeverity(r.Severity),
		CreatedAt: r.CreatedAt,
	}

	if r.OldScore.Valid {
		alert.OldScore = &r.OldScore.Float64
	}
	if r.NewScore.Valid {
		alert.NewScore = &r.NewScore.Float64
	}
	if r.OldTier.Valid {
		tier := domain.Tier(r.OldTier.String)
		alert.OldTier = &tier
	}
	if r.NewTier.Valid {
		tier := domain.Tier(r.NewTier.String)
		alert.NewTier = &tier
	}
	if r.OldAdsCount.Valid {
		count := int(r.OldAdsCount.Int64)
		alert.OldAdsCount = &count
	}
	if r.NewAdsCount.Valid {
		count := int(r.NewAdsCount.Int64)
		alert.NewAdsCount = &count
	}

	return alert
}
