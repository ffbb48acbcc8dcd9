package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"intel_server/config"
	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/pkg/logger"
)

type stubPageRepo struct {
	pages map[string]*domain.Page
}

func (s *stubPageRepo) Get(_ context.Context, id string) (*domain.Page, error) {
	return s.pages[id], nil
}

func (s *stubPageRepo) Count(_ context.Context) (int, error) {
	return len(s.pages), nil
}

type stubProductRepo struct {
	products []*domain.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *stubProductRepo) ListByPage(_ context.Context, pageID string, limit, offset int) ([]*domain.Product, error) {
	var res []*domain.Product
	for _, p := range s.products {
		if p.PageID == pageID {
			res = append(res, p)
		}
	}
	if offset < len(res) {
		res = res[offset:]
	} else {
		res = nil
	}
	if limit > 0 && limit < len(res) {
		res = res[:limit]
	}
	return res, nil
}

type stubAdsRepo struct {
	ads []*domain.Ad
}

func (s *stubAdsRepo) ListByPage(_ context.Context, pageID string) ([]*domain.Ad, error) {
	var res []*domain.Ad
	for _, ad := range s.ads {
		if ad.PageID == pageID {
			res = append(res, ad)
		}
	}
	return res, nil
}

func (s *stubAdsRepo) CountActiveByPage(_ context.Context, pageID string) (int, error) {
	n := 0
	for _, ad := range s.ads {
		if ad.PageID == pageID && ad.IsActive() {
			n++
		}
	}
	return n, nil
}

type memoryCache struct {
	data    map[string][]byte
	gets    int
	sets    int
	deletes int
	fail    bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	if c.fail {
		return false, errors.New("cache unavailable")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.sets++
	if c.fail {
		return errors.New("cache unavailable")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.deletes++
	delete(c.data, key)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Match:               config.DefaultMatchConfig(),
		InsightsMaxProducts: 500,
		InsightsCacheTTLMin: 15,
	}
}

func newBuilder(pages *stubPageRepo, products *stubProductRepo, ads *stubAdsRepo, cache *memoryCache) *InsightsBuilder {
	log := logger.New(logger.Config{Level: logger.LevelError, Service: "test"})
	return NewInsightsBuilder(pages, products, ads, cache, testConfig(), log)
}

func seedCatalogFixture() (*stubPageRepo, *stubProductRepo, *stubAdsRepo) {
	now := time.Now().UTC()
	earlier := now.Add(-72 * time.Hour)

	pages := &stubPageRepo{pages: map[string]*domain.Page{
		"page-1": {ID: "page-1", URL: "https://shop.com"},
	}}
	products := &stubProductRepo{products: []*domain.Product{
		{ID: "prod-1", PageID: "page-1", Handle: "blue-widget", Title: "Blue Widget", URL: "https://shop.com/products/blue-widget"},
		{ID: "prod-2", PageID: "page-1", Handle: "red-gadget", Title: "Red Gadget", URL: "https://shop.com/products/red-gadget"},
		{ID: "prod-3", PageID: "page-1", Handle: "green-thing", Title: "Green Thing", URL: "https://shop.com/products/green-thing"},
	}}
	ads := &stubAdsRepo{ads: []*domain.Ad{
		{
			ID: "ad-1", PageID: "page-1", Status: domain.AdStatusActive,
			LinkURL: "https://shop.com/products/blue-widget?ref=fb", ImageURL: "https://cdn.shop.com/bw.jpg",
			FirstSeenAt: &earlier, LastSeenAt: &now,
		},
		{
			ID: "ad-2", PageID: "page-1", Status: domain.AdStatusActive,
			Body: "our famous blue-widget is back", ImageURL: "https://cdn.shop.com/bw.jpg",
		},
		{
			ID: "ad-3", PageID: "page-1", Status: domain.AdStatusInactive,
			Body: "the red gadget everyone loves",
		},
		{
			ID: "ad-4", PageID: "page-1", Status: domain.AdStatusActive,
			Title: "unrelated brand campaign",
		},
	}}
	return pages, products, ads
}

// TestBuildForPage tests the full matrix build and page-level
// aggregation.
func TestBuildForPage(t *testing.T) {
	pages, products, ads := seedCatalogFixture()
	builder := newBuilder(pages, products, ads, newMemoryCache())

	insights, err := builder.BuildForPage(context.Background(), "page-1", portin.InsightsOptions{})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}

	if insights.TotalProducts != 3 || insights.TotalAds != 4 {
		t.Errorf("totals = (%d products, %d ads), want (3, 4)", insights.TotalProducts, insights.TotalAds)
	}
	if insights.ProductsWithMatches != 2 {
		t.Errorf("products with matches = %d, want 2", insights.ProductsWithMatches)
	}
	// Only blue-widget has a strong (URL) match.
	if insights.PromotedProducts != 1 {
		t.Errorf("promoted products = %d, want 1", insights.PromotedProducts)
	}
	if insights.CoverageRatio <= 0 || insights.CoverageRatio > 1 {
		t.Errorf("coverage ratio = %v, out of (0, 1]", insights.CoverageRatio)
	}

	var blue *domain.ProductInsights
	for i := range insights.Products {
		if insights.Products[i].Product.ID == "prod-1" {
			blue = &insights.Products[i]
		}
	}
	if blue == nil {
		t.Fatal("missing insights for prod-1")
	}
	if blue.AdsCount != 2 {
		t.Errorf("blue-widget ads count = %d, want 2", blue.AdsCount)
	}
	// ad-1 and ad-2 share one creative image.
	if blue.DistinctCreativesCount != 1 {
		t.Errorf("distinct creatives = %d, want 1", blue.DistinctCreativesCount)
	}
	if !blue.IsPromoted {
		t.Error("blue-widget should be promoted via its strong URL match")
	}
	if blue.FirstSeenAt == nil || blue.LastSeenAt == nil {
		t.Error("seen-at window should be derived from matched ads")
	} else if blue.FirstSeenAt.After(*blue.LastSeenAt) {
		t.Error("first_seen_at after last_seen_at")
	}
	if blue.MatchScore < blue.Matches[len(blue.Matches)-1].Score {
		t.Error("match_score should be the maximum across matches")
	}
}

// TestBuildForPageSorting tests each supported sort key and pagination.
func TestBuildForPageSorting(t *testing.T) {
	pages, products, ads := seedCatalogFixture()
	builder := newBuilder(pages, products, ads, newMemoryCache())
	ctx := context.Background()

	byScore, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{SortBy: portin.SortByMatchScore})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	for i := 1; i < len(byScore.Products); i++ {
		if byScore.Products[i].MatchScore > byScore.Products[i-1].MatchScore {
			t.Fatal("products not sorted by match score descending")
		}
	}

	byAds, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{SortBy: portin.SortByAdsCount})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	for i := 1; i < len(byAds.Products); i++ {
		if byAds.Products[i].AdsCount > byAds.Products[i-1].AdsCount {
			t.Fatal("products not sorted by ads count descending")
		}
	}

	paged, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	if len(paged.Products) != 1 {
		t.Errorf("paginated products = %d, want 1", len(paged.Products))
	}
	if paged.TotalProducts != 3 {
		t.Errorf("pagination must not change total_products: got %d", paged.TotalProducts)
	}

	past, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{Offset: 50})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	if len(past.Products) != 0 {
		t.Errorf("offset past the end returned %d products, want 0", len(past.Products))
	}
}

// TestBuildForPageCaching tests that a second build is served from cache
// and that invalidation forces recomputation.
func TestBuildForPageCaching(t *testing.T) {
	pages, products, ads := seedCatalogFixture()
	cache := newMemoryCache()
	builder := newBuilder(pages, products, ads, cache)
	ctx := context.Background()

	if _, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{}); err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	if _, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{Limit: 2}); err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	if cache.sets != 1 {
		t.Errorf("second build recomputed: cache sets = %d, want 1", cache.sets)
	}

	builder.Invalidate(ctx, "page-1")
	if _, err := builder.BuildForPage(ctx, "page-1", portin.InsightsOptions{}); err != nil {
		t.Fatalf("BuildForPage() after invalidation error = %v", err)
	}
	if cache.sets != 2 {
		t.Errorf("invalidation did not force recomputation: cache sets = %d, want 2", cache.sets)
	}
}

// TestBuildForPageCacheFailure tests graceful degradation when the cache
// backend is down.
func TestBuildForPageCacheFailure(t *testing.T) {
	pages, products, ads := seedCatalogFixture()
	cache := newMemoryCache()
	cache.fail = true
	builder := newBuilder(pages, products, ads, cache)

	insights, err := builder.BuildForPage(context.Background(), "page-1", portin.InsightsOptions{})
	if err != nil {
		t.Fatalf("BuildForPage() with failing cache error = %v", err)
	}
	if insights.TotalProducts != 3 {
		t.Errorf("total products = %d, want 3", insights.TotalProducts)
	}
}

// TestBuildForProduct tests the single-product path and its ownership
// check.
func TestBuildForProduct(t *testing.T) {
	pages, products, ads := seedCatalogFixture()
	builder := newBuilder(pages, products, ads, newMemoryCache())
	ctx := context.Background()

	insight, err := builder.BuildForProduct(ctx, "page-1", "prod-1")
	if err != nil {
		t.Fatalf("BuildForProduct() error = %v", err)
	}
	if insight.AdsCount != 2 {
		t.Errorf("ads count = %d, want 2", insight.AdsCount)
	}
	if insight.TotalAdsAnalyzed != 4 {
		t.Errorf("total ads analyzed = %d, want 4", insight.TotalAdsAnalyzed)
	}

	if _, err := builder.BuildForProduct(ctx, "page-1", "missing"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("unknown product: error = %v, want ErrEntityNotFound", err)
	}
	if _, err := builder.BuildForProduct(ctx, "missing", "prod-1"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("unknown page: error = %v, want ErrEntityNotFound", err)
	}
}

// TestBuildForPageEmptyCatalog tests that a page with no products builds
// an empty summary instead of failing.
func TestBuildForPageEmptyCatalog(t *testing.T) {
	pages := &stubPageRepo{pages: map[string]*domain.Page{"page-2": {ID: "page-2"}}}
	builder := newBuilder(pages, &stubProductRepo{}, &stubAdsRepo{}, newMemoryCache())

	insights, err := builder.BuildForPage(context.Background(), "page-2", portin.InsightsOptions{})
	if err != nil {
		t.Fatalf("BuildForPage() error = %v", err)
	}
	if insights.TotalProducts != 0 || insights.CoverageRatio != 0 {
		t.Errorf("empty catalog: totals = (%d, %v), want (0, 0)", insights.TotalProducts, insights.CoverageRatio)
	}
}
