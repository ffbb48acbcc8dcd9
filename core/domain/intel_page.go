package domain

import "time"

// PageState represents the page's position in the tracking pipeline.
type PageState string

const (
	PageStateDiscovered PageState = "discovered"
	PageStateScanned    PageState = "scanned"
	PageStateScored     PageState = "scored"
	PageStateBlacklist  PageState = "blacklisted"
)

// StrongCurrencies are currencies that indicate premium markets.
var StrongCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
	"AUD": true,
}

// Page represents a tracked storefront (typically a Shopify store) being
// monitored for advertising activity and competitive intelligence.
type Page struct {
	ID     string    `json:"id" db:"id"`
	URL    string    `json:"url" db:"url"`
	Domain string    `json:"domain" db:"domain"`
	State  PageState `json:"state" db:"state"`

	Country  *string `json:"country,omitempty" db:"country"`
	Language *string `json:"language,omitempty" db:"language"`
	Currency *string `json:"currency,omitempty" db:"currency"`
	Category *string `json:"category,omitempty" db:"category"`

	// ProductCount is nil when product extraction has not run or failed.
	// That is a distinct state from "legitimately zero products" and is
	// surfaced as a data-quality warning by the catalog calculator.
	ProductCount *int `json:"product_count,omitempty" db:"product_count"`

	IsShopify      bool `json:"is_shopify" db:"is_shopify"`
	ActiveAdsCount int  `json:"active_ads_count" db:"active_ads_count"`
	TotalAdsCount  int  `json:"total_ads_count" db:"total_ads_count"`

	Score float64 `json:"score" db:"score"`

	FirstSeenAt   *time.Time `json:"first_seen_at,omitempty" db:"first_seen_at"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty" db:"last_scanned_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// HasStrongCurrency reports whether the page sells in a premium-market
// currency.
func (p *Page) HasStrongCurrency() bool {
	return p.Currency != nil && StrongCurrencies[*p.Currency]
}
