package scoring

import (
	"context"
	"errors"
	"testing"

	"intel_server/config"
	"intel_server/core/domain"
	"intel_server/core/port/out"
	"intel_server/pkg/logger"
)

type fakePageRepo struct {
	pages map[string]*domain.Page
}

func (f *fakePageRepo) Get(_ context.Context, id string) (*domain.Page, error) {
	return f.pages[id], nil
}

func (f *fakePageRepo) Count(_ context.Context) (int, error) {
	return len(f.pages), nil
}

type fakeAdsRepo struct {
	ads map[string][]*domain.Ad
}

func (f *fakeAdsRepo) ListByPage(_ context.Context, pageID string) ([]*domain.Ad, error) {
	return f.ads[pageID], nil
}

func (f *fakeAdsRepo) CountActiveByPage(_ context.Context, pageID string) (int, error) {
	n := 0
	for _, ad := range f.ads[pageID] {
		if ad.IsActive() {
			n++
		}
	}
	return n, nil
}

type fakeScoreRepo struct {
	snapshots map[string][]*domain.ShopScore
	saveErr   error
}

func (f *fakeScoreRepo) Save(_ context.Context, score *domain.ShopScore) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.snapshots[score.PageID] = append(f.snapshots[score.PageID], score)
	return nil
}

func (f *fakeScoreRepo) Latest(_ context.Context, pageID string) (*domain.ShopScore, error) {
	list := f.snapshots[pageID]
	if len(list) == 0 {
		return nil, nil
	}
	return list[len(list)-1], nil
}

func (f *fakeScoreRepo) ListByPage(_ context.Context, pageID string, limit int) ([]*domain.ShopScore, error) {
	list := f.snapshots[pageID]
	if limit < len(list) {
		list = list[len(list)-limit:]
	}
	res := make([]*domain.ShopScore, len(list))
	for i, s := range list {
		res[len(list)-1-i] = s
	}
	return res, nil
}

func (f *fakeScoreRepo) ListRanked(_ context.Context, _ *out.RankedShopsFilter) ([]*out.RankedShop, int, error) {
	return nil, 0, nil
}

type fakeAlertRepo struct {
	saved []*domain.Alert
}

func (f *fakeAlertRepo) Save(_ context.Context, alert *domain.Alert) error {
	f.saved = append(f.saved, alert)
	return nil
}

func (f *fakeAlertRepo) ListByPage(_ context.Context, pageID string, _ int) ([]*domain.Alert, error) {
	var alerts []*domain.Alert
	for _, a := range f.saved {
		if a.PageID == pageID {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

func newTestService(pages *fakePageRepo, ads *fakeAdsRepo, scores *fakeScoreRepo, alerts *fakeAlertRepo) *Service {
	log := logger.New(logger.Config{Level: logger.LevelError, Service: "test"})
	return NewService(pages, ads, scores, alerts, config.DefaultAlertThresholds(), log)
}

// TestComputeHighPerformer tests a full scoring pass for a shop with
// every positive signal present.
func TestComputeHighPerformer(t *testing.T) {
	eur := "EUR"
	productCount := 180
	page := &domain.Page{
		ID:             "page-1",
		IsShopify:      true,
		Currency:       &eur,
		ProductCount:   &productCount,
		ActiveAdsCount: 12,
		TotalAdsCount:  15,
	}

	ads := makeAds(50,
		[]string{"US", "FR", "DE", "GB", "AU"},
		[]string{"facebook", "instagram", "messenger"},
		"Summer sale 50% off \U0001F525", "Buy now before it's gone", "SHOP_NOW")
	for _, ad := range ads {
		ad.PageID = "page-1"
		ad.Status = domain.AdStatusActive
	}

	scores := &fakeScoreRepo{snapshots: make(map[string][]*domain.ShopScore)}
	alerts := &fakeAlertRepo{}
	svc := newTestService(
		&fakePageRepo{pages: map[string]*domain.Page{"page-1": page}},
		&fakeAdsRepo{ads: map[string][]*domain.Ad{"page-1": ads}},
		scores, alerts,
	)

	result, err := svc.Compute(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// 0.4*100 + 0.3*100 + 0.2*100 + 0.1*90 = 99.
	if !floatEq(result.Snapshot.Score, 99.0) {
		t.Errorf("score = %v, want 99.0", result.Snapshot.Score)
	}
	if result.Tier != domain.TierXXL {
		t.Errorf("tier = %v, want %v", result.Tier, domain.TierXXL)
	}
	if result.Snapshot.ActiveAdsCount != 50 {
		t.Errorf("active ads = %d, want 50", result.Snapshot.ActiveAdsCount)
	}
	if len(scores.snapshots["page-1"]) != 1 {
		t.Fatalf("saved snapshots = %d, want 1", len(scores.snapshots["page-1"]))
	}
	if len(result.Alerts) != 0 {
		t.Errorf("first run produced %d alerts, want 0", len(result.Alerts))
	}
}

// TestComputeMissingProductCount tests that a missing product count
// degrades the catalog component to zero without failing the run.
func TestComputeMissingProductCount(t *testing.T) {
	page := &domain.Page{ID: "page-2", IsShopify: true}

	scores := &fakeScoreRepo{snapshots: make(map[string][]*domain.ShopScore)}
	svc := newTestService(
		&fakePageRepo{pages: map[string]*domain.Page{"page-2": page}},
		&fakeAdsRepo{ads: map[string][]*domain.Ad{}},
		scores, &fakeAlertRepo{},
	)

	result, err := svc.Compute(context.Background(), "page-2")
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !floatEq(result.Snapshot.Components.Catalog, 0.0) {
		t.Errorf("catalog component = %v, want 0", result.Snapshot.Components.Catalog)
	}
	if result.Snapshot.Score < 0.0 || result.Snapshot.Score > 100.0 {
		t.Errorf("score = %v, out of [0, 100]", result.Snapshot.Score)
	}
}

// TestComputeUnknownPage tests not-found translation at the use-case
// boundary.
func TestComputeUnknownPage(t *testing.T) {
	svc := newTestService(
		&fakePageRepo{pages: map[string]*domain.Page{}},
		&fakeAdsRepo{ads: map[string][]*domain.Ad{}},
		&fakeScoreRepo{snapshots: make(map[string][]*domain.ShopScore)},
		&fakeAlertRepo{},
	)

	_, err := svc.Compute(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("Compute() error = %v, want ErrEntityNotFound", err)
	}
}

// TestComputeSecondRunDetectsAlerts tests that a second scoring pass
// compares against the prior snapshot and fires alerts.
func TestComputeSecondRunDetectsAlerts(t *testing.T) {
	jpy := "JPY"
	smallCatalog := 10
	page := &domain.Page{
		ID:             "page-3",
		Currency:       &jpy,
		ProductCount:   &smallCatalog,
		ActiveAdsCount: 2,
		TotalAdsCount:  2,
	}

	weakAds := makeAds(2, nil, nil, "Our new product", "", "")
	for _, ad := range weakAds {
		ad.PageID = "page-3"
		ad.Status = domain.AdStatusActive
	}

	pages := &fakePageRepo{pages: map[string]*domain.Page{"page-3": page}}
	adsRepo := &fakeAdsRepo{ads: map[string][]*domain.Ad{"page-3": weakAds}}
	scores := &fakeScoreRepo{snapshots: make(map[string][]*domain.ShopScore)}
	alerts := &fakeAlertRepo{}
	svc := newTestService(pages, adsRepo, scores, alerts)

	first, err := svc.Compute(context.Background(), "page-3")
	if err != nil {
		t.Fatalf("first Compute() error = %v", err)
	}
	if len(first.Alerts) != 0 {
		t.Fatalf("first run produced %d alerts, want 0", len(first.Alerts))
	}

	// The shop scales up: confirmed shopify, strong currency, 50 rich
	// active ads, a full catalog.
	eur := "EUR"
	bigCatalog := 180
	page.IsShopify = true
	page.Currency = &eur
	page.ProductCount = &bigCatalog
	page.ActiveAdsCount = 50
	page.TotalAdsCount = 52

	strongAds := makeAds(50,
		[]string{"US", "FR", "DE", "GB", "AU"},
		[]string{"facebook", "instagram", "messenger"},
		"Summer sale 50% off \U0001F525", "Buy now", "SHOP_NOW")
	for _, ad := range strongAds {
		ad.PageID = "page-3"
		ad.Status = domain.AdStatusActive
	}
	adsRepo.ads["page-3"] = strongAds

	second, err := svc.Compute(context.Background(), "page-3")
	if err != nil {
		t.Fatalf("second Compute() error = %v", err)
	}

	types := make(map[domain.AlertType]*domain.Alert)
	for _, a := range second.Alerts {
		types[a.Type] = a
	}

	jump, ok := types[domain.AlertScoreJump]
	if !ok {
		t.Fatal("expected SCORE_JUMP alert")
	}
	if jump.Severity != domain.SeverityCritical {
		t.Errorf("score jump severity = %v, want critical", jump.Severity)
	}
	if _, ok := types[domain.AlertTierUp]; !ok {
		t.Error("expected TIER_UP alert")
	}
	if _, ok := types[domain.AlertNewAdsBoost]; !ok {
		t.Error("expected NEW_ADS_BOOST alert")
	}
	if len(alerts.saved) != len(second.Alerts) {
		t.Errorf("persisted %d alerts, want %d", len(alerts.saved), len(second.Alerts))
	}
}

// TestLatestAndHistory tests the read paths over saved snapshots.
func TestLatestAndHistory(t *testing.T) {
	page := &domain.Page{ID: "page-4"}
	scores := &fakeScoreRepo{snapshots: make(map[string][]*domain.ShopScore)}
	svc := newTestService(
		&fakePageRepo{pages: map[string]*domain.Page{"page-4": page}},
		&fakeAdsRepo{ads: map[string][]*domain.Ad{}},
		scores, &fakeAlertRepo{},
	)

	ctx := context.Background()
	if _, err := svc.Latest(ctx, "page-4"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("Latest() before any run: error = %v, want ErrEntityNotFound", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Compute(ctx, "page-4"); err != nil {
			t.Fatalf("Compute() error = %v", err)
		}
	}

	latest, err := svc.Latest(ctx, "page-4")
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest == nil {
		t.Fatal("Latest() returned nil snapshot")
	}

	history, err := svc.History(ctx, "page-4", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("History() returned %d snapshots, want 2", len(history))
	}
	if history[0].ID != latest.ID {
		t.Errorf("History() first entry = %s, want latest %s", history[0].ID, latest.ID)
	}
}
