package matching

import (
	"math"
	"strings"
	"testing"

	"intel_server/config"
	"intel_server/core/domain"
)

func defaultMatcher() *Matcher {
	return NewMatcher(config.DefaultMatchConfig())
}

func product(handle, title, url string) *domain.Product {
	return &domain.Product{
		ID:     "prod-" + handle,
		PageID: "page-1",
		Handle: handle,
		Title:  title,
		URL:    url,
	}
}

// TestNormalizeText tests lowercasing, URL stripping and whitespace
// collapsing.
func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lowercases and strips punctuation", in: "Blue Widget!!! 50% OFF", want: "blue widget 50 off"},
		{name: "removes urls", in: "Shop here https://shop.com/products/x now", want: "shop here now"},
		{name: "collapses whitespace", in: "  blue \t widget  ", want: "blue widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeText(tt.in); got != tt.want {
				t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestExtractHandleFromURL tests the /products/ path pattern and the
// last-segment fallback.
func TestExtractHandleFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "empty url", url: "", want: ""},
		{name: "products path", url: "https://shop.com/products/blue-widget", want: "blue-widget"},
		{name: "products path with query", url: "https://shop.com/products/Blue-Widget?ref=fb", want: "blue-widget"},
		{name: "last segment fallback", url: "https://shop.com/collections/blue-widget", want: "blue-widget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractHandleFromURL(tt.url); got != tt.want {
				t.Errorf("extractHandleFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestTextSimilarity tests the sequence-similarity ratio bounds.
func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 0.0},
		{name: "identical", a: "blue widget", b: "blue widget", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "shared prefix", a: "abcd", b: "abxy", want: 0.5}, // 2*2/(4+4)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("textSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}

	t.Run("symmetric-ish overlap stays in range", func(t *testing.T) {
		got := textSimilarity("premium blue widget", "blue widget deluxe")
		if got <= 0.0 || got > 1.0 {
			t.Errorf("textSimilarity() = %v, out of (0, 1]", got)
		}
	})
}

// TestMatchURLSignal tests the URL cascade: path match, substring,
// extracted-handle equality.
func TestMatchURLSignal(t *testing.T) {
	m := defaultMatcher()

	tests := []struct {
		name         string
		product      *domain.Product
		ad           *domain.Ad
		wantStrength domain.MatchStrength
		wantReason   string
	}{
		{
			name:         "handle in products path",
			product:      product("blue-widget", "Blue Widget", ""),
			ad:           &domain.Ad{ID: "a1", LinkURL: "https://shop.com/products/blue-widget?ref=fb"},
			wantStrength: domain.MatchStrong,
			wantReason:   "Product handle in ad URL path",
		},
		{
			name:         "direct product url containment",
			product:      product("blue-widget", "Blue Widget", "https://shop.com/products/blue-widget"),
			ad:           &domain.Ad{ID: "a2", LinkURL: "https://shop.com/products/blue-widget?utm_source=fb"},
			wantStrength: domain.MatchStrong,
			wantReason:   "URL direct match",
		},
		{
			name:         "handle elsewhere in url",
			product:      product("blue-widget", "Blue Widget", "https://shop.com/products/blue-widget"),
			ad:           &domain.Ad{ID: "a3", LinkURL: "https://lp.example.com/blue-widget-promo"},
			wantStrength: domain.MatchStrong, // 0.9 * 1.0 = 0.9 >= 0.8
			wantReason:   "Product handle found in ad URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.product, tt.ad)
			if got == nil {
				t.Fatal("Match() = nil, want match")
			}
			if got.Strength != tt.wantStrength {
				t.Errorf("strength = %v, want %v", got.Strength, tt.wantStrength)
			}
			found := false
			for _, r := range got.Reasons {
				if r == tt.wantReason {
					found = true
				}
			}
			if !found {
				t.Errorf("reasons = %v, want to include %q", got.Reasons, tt.wantReason)
			}
		})
	}
}

// TestMatchHandleSignal tests handle presence in ad text without URL
// evidence.
func TestMatchHandleSignal(t *testing.T) {
	m := defaultMatcher()
	p := product("blue-widget", "Blue Widget", "")

	got := m.Match(p, &domain.Ad{ID: "a1", Body: "our famous blue-widget is back"})
	if got == nil {
		t.Fatal("Match() = nil, want match")
	}
	// 0.8 * 0.7 = 0.56, medium band.
	if got.Strength != domain.MatchMedium {
		t.Errorf("strength = %v, want %v", got.Strength, domain.MatchMedium)
	}
	if math.Abs(got.Score-0.56) > 1e-9 {
		t.Errorf("score = %v, want 0.56", got.Score)
	}

	spaced := m.Match(p, &domain.Ad{ID: "a2", Title: "The blue widget everyone loves"})
	if spaced == nil {
		t.Fatal("Match() with spaced handle = nil, want match")
	}
	if spaced.Score >= got.Score {
		t.Errorf("spaced handle score %v should rank below exact handle score %v", spaced.Score, got.Score)
	}
}

// TestMatchSignalsCombine tests that signals reinforce via the weighted
// sum instead of first-match-wins.
func TestMatchSignalsCombine(t *testing.T) {
	m := defaultMatcher()
	p := product("blue-widget", "Blue Widget", "https://shop.com/products/blue-widget")

	handleOnly := m.Match(p, &domain.Ad{ID: "a1", Body: "our famous blue-widget is back"})
	both := m.Match(p, &domain.Ad{
		ID:      "a2",
		Body:    "our famous blue-widget is back",
		LinkURL: "https://lp.example.com/blue-widget-promo",
	})

	if handleOnly == nil || both == nil {
		t.Fatal("expected both variants to match")
	}
	if both.Score <= handleOnly.Score {
		t.Errorf("combined score %v should exceed handle-only score %v", both.Score, handleOnly.Score)
	}
	if len(both.Reasons) != 2 {
		t.Errorf("combined reasons = %v, want two entries", both.Reasons)
	}
	if both.Score > 1.0 {
		t.Errorf("score = %v, exceeds 1.0", both.Score)
	}
}

// TestMatchMonotonicity tests that adding a stronger signal never
// decreases the score.
func TestMatchMonotonicity(t *testing.T) {
	m := defaultMatcher()
	p := product("blue-widget", "Blue Widget", "https://shop.com/products/blue-widget")

	base := &domain.Ad{ID: "a1", Title: "Blue Widget", Body: "get yours today"}
	withURL := &domain.Ad{ID: "a2", Title: "Blue Widget", Body: "get yours today", LinkURL: "https://shop.com/products/blue-widget"}

	baseScore := 0.0
	if match := m.Match(p, base); match != nil {
		baseScore = match.Score
	}
	upgraded := m.Match(p, withURL)
	if upgraded == nil {
		t.Fatal("Match() with URL signal = nil, want match")
	}
	if upgraded.Score < baseScore {
		t.Errorf("adding URL signal decreased score: %v -> %v", baseScore, upgraded.Score)
	}
}

// TestMatchTextSimilarityAlone tests that similarity alone cannot clear
// the weak threshold; it only reinforces other signals.
func TestMatchTextSimilarityAlone(t *testing.T) {
	m := defaultMatcher()
	p := product("", "Blue Widget", "")

	got := m.Match(p, &domain.Ad{ID: "a1", Title: "Blue Widget"})
	if got != nil {
		t.Errorf("Match() = %+v, want nil: similarity tops out at %v which is below the weak threshold",
			got, 1.0*textSimilarityScale*config.DefaultMatchConfig().TextSimilarityWeight)
	}
}

// TestMatchBelowFloorIsSilent tests the similarity noise floor: a
// partial title overlap under the floor must not add a reason or score.
func TestMatchBelowFloorIsSilent(t *testing.T) {
	m := defaultMatcher()
	p := product("blue-widget", "Blue Widget", "")

	got := m.Match(p, &domain.Ad{ID: "a1", Title: "The blue widget everyone loves"})
	if got == nil {
		t.Fatal("Match() = nil, want match")
	}
	for _, r := range got.Reasons {
		if strings.HasPrefix(r, "Text similarity") {
			t.Errorf("similarity below floor contributed reason %q", r)
		}
	}
	if math.Abs(got.Score-0.75*0.7) > 1e-9 {
		t.Errorf("score = %v, want handle-only contribution %v", got.Score, 0.75*0.7)
	}
}

// TestMatchAllSorted tests descending score order.
func TestMatchAllSorted(t *testing.T) {
	m := defaultMatcher()
	p := product("blue-widget", "Blue Widget", "https://shop.com/products/blue-widget")

	ads := []*domain.Ad{
		{ID: "weak", Title: "The blue widget everyone loves"},
		{ID: "strong", LinkURL: "https://shop.com/products/blue-widget"},
		{ID: "none", Title: "unrelated"},
	}

	matches := m.MatchAll(p, ads)
	if len(matches) != 2 {
		t.Fatalf("MatchAll() returned %d matches, want 2", len(matches))
	}
	if matches[0].Ad.ID != "strong" {
		t.Errorf("first match = %s, want strong", matches[0].Ad.ID)
	}
	if matches[0].Score < matches[1].Score {
		t.Error("MatchAll() not sorted by score descending")
	}
}
