// Package matching attributes advertisements to catalog products using a
// three-signal heuristic: URL containment, handle presence in ad text,
// and fuzzy text similarity.
package matching

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"intel_server/config"
	"intel_server/core/domain"
)

// Raw signal scores before weighting. URL evidence grades from direct
// containment down to a loose substring hit; handle-in-text evidence
// grades by how literally the handle appears.
const (
	urlDirectScore          = 1.0
	urlProductsPathScore    = 1.0
	urlHandleEqualScore     = 0.95
	urlHandleSubstringScore = 0.9

	handleExactScore   = 0.8
	handleOrderedScore = 0.75
	handleSpacedScore  = 0.7

	// Similarity contributes at half value; it is the weakest evidence.
	textSimilarityScale = 0.5
)

var (
	urlPattern         = regexp.MustCompile(`https?://\S+`)
	nonWordPattern     = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	productsPathRegexp = regexp.MustCompile(`(?i)/products/([^/?#]+)`)
	lastSegmentRegexp  = regexp.MustCompile(`/([^/?#]+)/?(?:\?|#|$)`)
)

// normalizeText lowercases, strips URLs and punctuation, and collapses
// whitespace for comparison.
func normalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = nonWordPattern.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// extractHandleFromURL pulls the product handle out of a storefront URL.
// Shopify URLs carry it under /products/<handle>; otherwise the last
// path segment is used as a fallback.
func extractHandleFromURL(url string) string {
	if url == "" {
		return ""
	}
	if m := productsPathRegexp.FindStringSubmatch(url); m != nil {
		return strings.ToLower(m[1])
	}
	if m := lastSegmentRegexp.FindStringSubmatch(url); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// Matcher computes product-ad match results with injected weights and
// thresholds so tuning is a single-point change.
type Matcher struct {
	cfg config.MatchConfig
}

func NewMatcher(cfg config.MatchConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match evaluates all three signals for one product-ad pair and combines
// them into a weighted sum clamped to [0, 1]. Signals reinforce each
// other rather than short-circuiting, so a weak text match can lift a
// borderline handle match. Returns nil when the combined score falls
// below the weak threshold.
func (m *Matcher) Match(product *domain.Product, ad *domain.Ad) *domain.AdMatch {
	var reasons []string
	total := 0.0

	if ok, score, reason := m.checkURLMatch(product, ad); ok {
		total += score * m.cfg.URLWeight
		reasons = append(reasons, reason)
	}
	if ok, score, reason := m.checkHandleMatch(product, ad); ok {
		total += score * m.cfg.HandleWeight
		reasons = append(reasons, reason)
	}
	if ok, score, reason := m.checkTextSimilarity(product, ad); ok {
		total += score * m.cfg.TextSimilarityWeight
		reasons = append(reasons, reason)
	}

	total = domain.Clamp(total, 0.0, 1.0)

	strength := m.strengthFor(total)
	if strength == domain.MatchNone {
		return nil
	}

	return &domain.AdMatch{
		Ad:       ad,
		Score:    total,
		Strength: strength,
		Reasons:  reasons,
	}
}

// MatchAll matches one product against every ad, sorted by score
// descending.
func (m *Matcher) MatchAll(product *domain.Product, ads []*domain.Ad) []domain.AdMatch {
	var matches []domain.AdMatch
	for _, ad := range ads {
		if match := m.Match(product, ad); match != nil {
			matches = append(matches, *match)
		}
	}
	sortMatchesByScore(matches)
	return matches
}

// strengthFor thresholds the combined score against the configured cut
// points. Boundaries are inclusive at the upper bucket.
func (m *Matcher) strengthFor(score float64) domain.MatchStrength {
	switch {
	case score >= m.cfg.StrongThreshold:
		return domain.MatchStrong
	case score >= m.cfg.MediumThreshold:
		return domain.MatchMedium
	case score >= m.cfg.WeakThreshold:
		return domain.MatchWeak
	default:
		return domain.MatchNone
	}
}

func (m *Matcher) checkURLMatch(product *domain.Product, ad *domain.Ad) (bool, float64, string) {
	if ad.LinkURL == "" {
		return false, 0.0, ""
	}

	adURL := strings.ToLower(ad.LinkURL)
	productURL := strings.ToLower(product.URL)
	handle := strings.ToLower(product.Handle)

	if productURL != "" && (strings.Contains(adURL, productURL) || strings.Contains(productURL, adURL)) {
		return true, urlDirectScore, "URL direct match"
	}

	if handle != "" && strings.Contains(adURL, handle) {
		if strings.Contains(adURL, "/products/"+handle) {
			return true, urlProductsPathScore, "Product handle in ad URL path"
		}
		return true, urlHandleSubstringScore, "Product handle found in ad URL"
	}

	if adHandle := extractHandleFromURL(adURL); adHandle != "" && adHandle == handle {
		return true, urlHandleEqualScore, "URL handles match"
	}

	return false, 0.0, ""
}

func (m *Matcher) checkHandleMatch(product *domain.Product, ad *domain.Ad) (bool, float64, string) {
	handle := strings.ToLower(product.Handle)
	if handle == "" {
		return false, 0.0, ""
	}

	adText := strings.TrimSpace(strings.ToLower(strings.TrimSpace(ad.Title) + " " + strings.TrimSpace(ad.Body)))
	if adText == "" {
		return false, 0.0, ""
	}

	if strings.Contains(adText, handle) {
		return true, handleExactScore, "Product handle in ad text"
	}

	parts := strings.Fields(strings.ReplaceAll(handle, "-", " "))
	if len(parts) > 1 {
		escaped := make([]string, len(parts))
		for i, p := range parts {
			escaped[i] = regexp.QuoteMeta(p)
		}
		pattern := `\b` + strings.Join(escaped, `\s+`) + `\b`
		if matched, _ := regexp.MatchString(pattern, adText); matched {
			return true, handleOrderedScore, "Product handle words in ad text"
		}
	}

	if spaced := strings.ReplaceAll(handle, "-", " "); strings.Contains(adText, spaced) {
		return true, handleSpacedScore, "Product handle (no hyphens) in ad text"
	}

	return false, 0.0, ""
}

func (m *Matcher) checkTextSimilarity(product *domain.Product, ad *domain.Ad) (bool, float64, string) {
	if product.Title == "" {
		return false, 0.0, ""
	}

	fields := []struct {
		name string
		text string
	}{
		{"title", ad.Title},
		{"body", ad.Body},
	}

	bestSimilarity, bestField := 0.0, ""
	normTitle := normalizeText(product.Title)

	for _, f := range fields {
		if f.text == "" {
			continue
		}
		similarity := textSimilarity(normTitle, normalizeText(f.text))
		if similarity > bestSimilarity {
			bestSimilarity, bestField = similarity, f.name
		}
	}

	// Below the floor, coincidental short-string overlap is noise.
	if bestSimilarity < m.cfg.TextSimilarityFloor {
		return false, 0.0, ""
	}

	score := bestSimilarity * textSimilarityScale
	reason := fmt.Sprintf("Text similarity (%.0f%%) in ad %s", bestSimilarity*100, bestField)
	return true, score, reason
}

func sortMatchesByScore(matches []domain.AdMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}
