package domain

import "time"

// AdStatus represents the ad's delivery status.
type AdStatus string

const (
	AdStatusActive   AdStatus = "active"
	AdStatusInactive AdStatus = "inactive"
	AdStatusUnknown  AdStatus = "unknown"
)

// Ad represents a single advertisement detected in an ads library,
// associated with a tracked page.
type Ad struct {
	ID         string `json:"id" db:"id"`
	PageID     string `json:"page_id" db:"page_id"`
	MetaPageID string `json:"meta_page_id" db:"meta_page_id"`
	MetaAdID   string `json:"meta_ad_id" db:"meta_ad_id"`

	Title    string `json:"title,omitempty" db:"title"`
	Body     string `json:"body,omitempty" db:"body"`
	LinkURL  string `json:"link_url,omitempty" db:"link_url"`
	ImageURL string `json:"image_url,omitempty" db:"image_url"`
	VideoURL string `json:"video_url,omitempty" db:"video_url"`
	CTAType  string `json:"cta_type,omitempty" db:"cta_type"`

	Status    AdStatus `json:"status" db:"status"`
	Platforms []string `json:"platforms,omitempty"`
	Countries []string `json:"countries,omitempty"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	FirstSeenAt *time.Time `json:"first_seen_at,omitempty" db:"first_seen_at"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the ad is currently delivering.
func (a *Ad) IsActive() bool {
	return a.Status == AdStatusActive
}

// CreativeKey identifies the ad's creative asset for distinct-creative
// counting. Image wins over video; ads with no asset count individually.
func (a *Ad) CreativeKey() string {
	if a.ImageURL != "" {
		return "img:" + a.ImageURL
	}
	if a.VideoURL != "" {
		return "vid:" + a.VideoURL
	}
	return "ad:" + a.ID
}
