package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// Product represents an item from a storefront's catalog that can be
// attributed to advertising campaigns.
type Product struct {
	ID     string `json:"id" db:"id"`
	PageID string `json:"page_id" db:"page_id"`

	// Handle is the URL-safe slug identifying the product
	// (e.g. "blue-widget" in /products/blue-widget). Primary matching signal.
	Handle string `json:"handle" db:"handle"`
	Title  string `json:"title" db:"title"`
	URL    string `json:"url" db:"url"`

	PriceMin *float64 `json:"price_min,omitempty" db:"price_min"`
	PriceMax *float64 `json:"price_max,omitempty" db:"price_max"`
	Currency string   `json:"currency,omitempty" db:"currency"`

	Available   bool     `json:"available" db:"available"`
	Tags        []string `json:"tags,omitempty"`
	Vendor      string   `json:"vendor,omitempty" db:"vendor"`
	ImageURL    string   `json:"image_url,omitempty" db:"image_url"`
	ProductType string   `json:"product_type,omitempty" db:"product_type"`

	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
	RawData   json.RawMessage `json:"-" db:"raw_data"`
}
