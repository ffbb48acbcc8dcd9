// Package scoring implements the weighted shop scoring engine.
package scoring

import (
	"fmt"
	"strings"

	"intel_server/core/domain"
)

// Normalization ceilings. Linear scaling min(100, 100*value/ceiling);
// deliberately simple and auditable, no smoothing or outlier handling.
const (
	adsCountCeiling     = 50.0
	countryCeiling      = 5.0
	platformCeiling     = 3.0
	productCountCeiling = 200.0
)

// Ads activity sub-weights: volume dominates, diversity adjusts.
const (
	adsVolumeWeight        = 0.6
	countryDiversityWeight = 0.2
	platformDiversity      = 0.2
)

// Shopify indicator point values.
const (
	shopifyBasePoints           = 20.0
	shopifyConfirmedPoints      = 30.0
	shopifyStrongCurrencyPoints = 20.0
	shopifyActiveAdsPoints      = 20.0
	shopifyEstablishedPoints    = 10.0

	establishedAdsCount = 10
)

// Creative quality indicator point values.
const (
	creativeTextPoints     = 20.0
	creativeDiscountPoints = 20.0
	creativeEmojiPoints    = 15.0
	creativeCTAPhrase      = 25.0
	creativeCTATypePoints  = 20.0
)

// ctaPhrases are call-to-action phrases looked for in ad text.
var ctaPhrases = []string{
	"buy now", "shop now", "order now", "shop", "get yours", "grab yours",
}

// AdsActivityScore normalizes raw ad volume against the 50-ad ceiling and
// blends in country and platform diversity. Zero ads degrade to 0.
func AdsActivityScore(ads []*domain.Ad) float64 {
	if len(ads) == 0 {
		return 0.0
	}

	countries := make(map[string]struct{})
	platforms := make(map[string]struct{})
	for _, ad := range ads {
		for _, c := range ad.Countries {
			countries[strings.ToUpper(c)] = struct{}{}
		}
		for _, p := range ad.Platforms {
			platforms[strings.ToLower(p)] = struct{}{}
		}
	}

	volume := capAt1(float64(len(ads)) / adsCountCeiling)
	countryDiversity := capAt1(float64(len(countries)) / countryCeiling)
	platformDiv := capAt1(float64(len(platforms)) / platformCeiling)

	raw := adsVolumeWeight*volume +
		countryDiversityWeight*countryDiversity +
		platformDiversity*platformDiv

	return domain.Clamp(raw*100.0, 0.0, 100.0)
}

// ShopifyScore combines boolean storefront indicators into a weighted
// indicator sum, capped at 100.
func ShopifyScore(page *domain.Page) float64 {
	score := shopifyBasePoints

	if page.IsShopify {
		score += shopifyConfirmedPoints
	}
	if page.HasStrongCurrency() {
		score += shopifyStrongCurrencyPoints
	}
	if page.ActiveAdsCount > 0 {
		score += shopifyActiveAdsPoints
	}
	if page.TotalAdsCount >= establishedAdsCount {
		score += shopifyEstablishedPoints
	}

	return domain.Clamp(score, 0.0, 100.0)
}

// CreativeQualityScore analyzes ad creative text for fixed quality
// indicators. Zero ads with text degrade to 0.
func CreativeQualityScore(ads []*domain.Ad) float64 {
	if len(ads) == 0 {
		return 0.0
	}

	var hasText, hasDiscount, hasEmoji, hasCTAPhrase, hasCTAType bool

	for _, ad := range ads {
		text := strings.TrimSpace(strings.ToLower(ad.Title + " " + ad.Body))

		if text != "" {
			hasText = true

			if strings.Contains(text, "%") || strings.Contains(text, "off") || strings.Contains(text, "sale") {
				hasDiscount = true
			}
			if containsEmoji(text) {
				hasEmoji = true
			}
			for _, cta := range ctaPhrases {
				if strings.Contains(text, cta) {
					hasCTAPhrase = true
					break
				}
			}
		}

		if strings.TrimSpace(ad.CTAType) != "" {
			hasCTAType = true
		}
	}

	score := 0.0
	if hasText {
		score += creativeTextPoints
	}
	if hasDiscount {
		score += creativeDiscountPoints
	}
	if hasEmoji {
		score += creativeEmojiPoints
	}
	if hasCTAPhrase {
		score += creativeCTAPhrase
	}
	if hasCTAType {
		score += creativeCTATypePoints
	}

	return domain.Clamp(score, 0.0, 100.0)
}

// CatalogScore normalizes the product count against the 200-product
// ceiling. A missing or non-positive count returns score 0 with a
// warning: that signals an upstream data-collection gap, distinct from
// "legitimately zero products", and must be logged rather than dropped.
func CatalogScore(page *domain.Page) (float64, string) {
	if page.ProductCount == nil {
		return 0.0, fmt.Sprintf("page %s has no product count; catalog score degraded to 0", page.ID)
	}

	count := *page.ProductCount
	if count <= 0 {
		return 0.0, fmt.Sprintf("page %s has non-positive product count %d; catalog score degraded to 0", page.ID, count)
	}

	normalized := capAt1(float64(count) / productCountCeiling)
	return domain.Clamp(normalized*100.0, 0.0, 100.0), ""
}

// containsEmoji reports whether the text includes a pictographic rune in
// the common emoji blocks.
func containsEmoji(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1F9FF, // symbols & pictographs
			r >= 0x1FA00 && r <= 0x1FAFF, // extended pictographs
			r >= 0x1F600 && r <= 0x1F64F, // emoticons
			r >= 0x2702 && r <= 0x27B0: // dingbats
			return true
		}
	}
	return false
}

func capAt1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
