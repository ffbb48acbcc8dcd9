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

// ProductRepository implements out.ProductRepository
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *sqlx.DB) out.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, page_id, handle, title, url, price_min, price_max, currency,
		       available, tags, vendor, image_url, product_type, raw_data,
		       created_at, updated_at
		FROM products
		WHERE id = $1`

	var row productRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return row.toDomain(), nil
}

func (r *ProductRepository) ListByPage(ctx context.Context, pageID string, limit, offset int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, page_id, handle, title, url, price_min, price_max, currency,
		       available, tags, vendor, image_url, product_type, raw_data,
		       created_at, updated_at
		FROM products
		WHERE page_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3`

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, pageID, limit, offset); err != nil {
		return nil, fmt.Errorf("list products by page: %w", err)
	}

	products := make([]*domain.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toDomain()
	}
	return products, nil
}

type productRow struct {
	ID          string          `db:"id"`
	PageID      string          `db:"page_id"`
	Handle      string          `db:"handle"`
	Title       string          `db:"title"`
	URL         string          `db:"url"`
	PriceMin    sql.NullFloat64 `db:"price_min"`
	PriceMax    sql.NullFloat64 `db:"price_max"`
	Currency    sql.NullString  `db:"currency"`
	Available   bool            `db:"available"`
	Tags        pq.StringArray  `db:"tags"`
	Vendor      sql.NullString  `db:"vendor"`
	ImageURL    sql.NullString  `db:"image_url"`
	ProductType sql.NullString  `db:"product_type"`
	RawData     []byte          `db:"raw_data"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r *productRow) toDomain() *domain.Product {
	product := &domain.Product{
		ID:          r.ID,
		PageID:      r.PageID,
		Handle:      r.Handle,
		Title:       r.Title,
		URL:         r.URL,
		Currency:    r.Currency.String,
		Available:   r.Available,
		Tags:        r.Tags,
		Vendor:      r.Vendor.String,
		ImageURL:    r.ImageURL.String,
		ProductType: r.ProductType.String,
		RawData:     r.RawData,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.PriceMin.Valid {
		product.PriceMin = &r.PriceMin.Float64
	}
	if r.PriceMax.Valid {
		product.PriceMax = &r.PriceMax.Float64
	}

	return product
}
