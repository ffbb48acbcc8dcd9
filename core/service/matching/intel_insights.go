package matching

import (
	"context"
	"sort"
	"time"

	"intel_server/config"
	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/pkg/logger"
)

const insightsCacheKeyPrefix = "insights:page:"

// InsightsCacheKey is the cache key holding the full built insights for
// a page. Rescoring invalidates it.
func InsightsCacheKey(pageID string) string {
	return insightsCacheKeyPrefix + pageID
}

// InsightsBuilder computes the full product x ad match matrix for a page
// and aggregates per-product and page-level summaries. Results are
// cached whole per page; sorting and pagination happen per request on
// the cached value.
type InsightsBuilder struct {
	pages    out.PageRepository
	products out.ProductRepository
	ads      out.AdsRepository
	cache    out.InsightsCache
	matcher  *Matcher

	maxProducts int
	cacheTTL    time.Duration
	log         *logger.Logger
}

var _ portin.InsightsService = (*InsightsBuilder)(nil)

func NewInsightsBuilder(
	pages out.PageRepository,
	products out.ProductRepository,
	ads out.AdsRepository,
	cache out.InsightsCache,
	cfg *config.Config,
	log *logger.Logger,
) *InsightsBuilder {
	return &InsightsBuilder{
		pages:       pages,
		products:    products,
		ads:         ads,
		cache:       cache,
		matcher:     NewMatcher(cfg.Match),
		maxProducts: cfg.InsightsMaxProducts,
		cacheTTL:    time.Duration(cfg.InsightsCacheTTLMin) * time.Minute,
		log:         log,
	}
}

// BuildForPage returns page insights, sorted and paginated per the
// options. Cache failures degrade to direct computation.
func (b *InsightsBuilder) BuildForPage(ctx context.Context, pageID string, opts portin.InsightsOptions) (*domain.PageProductInsights, error) {
	log := b.log.WithContext(ctx).WithField("page_id", pageID)

	insights, err := b.loadOrBuild(ctx, pageID, log)
	if err != nil {
		return nil, err
	}

	view := *insights
	view.Products = paginate(sortInsights(insights.Products, opts.SortBy), opts.Limit, opts.Offset)
	return &view, nil
}

// BuildForProduct matches a single product against the page's ads.
func (b *InsightsBuilder) BuildForProduct(ctx context.Context, pageID, productID string) (*domain.ProductInsights, error) {
	page, err := b.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	product, err := b.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.PageID != pageID {
		return nil, domain.NewEntityNotFound("product", productID)
	}

	ads, err := b.ads.ListByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	insight := b.buildProductInsight(product, ads)
	return &insight, nil
}

// Invalidate drops the cached insights for a page. Called after a
// rescore so stale attribution is never served.
func (b *InsightsBuilder) Invalidate(ctx context.Context, pageID string) {
	if err := b.cache.Delete(ctx, InsightsCacheKey(pageID)); err != nil {
		b.log.WithContext(ctx).WithError(err).WithField("page_id", pageID).Warn("failed to invalidate insights cache")
	}
}

func (b *InsightsBuilder) loadOrBuild(ctx context.Context, pageID string, log *logger.Logger) (*domain.PageProductInsights, error) {
	key := InsightsCacheKey(pageID)

	var cached domain.PageProductInsights
	found, err := b.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		log.WithError(err).Warn("insights cache read failed, computing directly")
	} else if found {
		return &cached, nil
	}

	insights, err := b.build(ctx, pageID, log)
	if err != nil {
		return nil, err
	}

	if err := b.cache.SetJSON(ctx, key, insights, b.cacheTTL); err != nil {
		log.WithError(err).Warn("insights cache write failed")
	}
	return insights, nil
}

func (b *InsightsBuilder) build(ctx context.Context, pageID string, log *logger.Logger) (*domain.PageProductInsights, error) {
	page, err := b.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	products, err := b.products.ListByPage(ctx, pageID, b.maxProducts, 0)
	if err != nil {
		return nil, err
	}

	ads, err := b.ads.ListByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	insights := &domain.PageProductInsights{
		PageID:        pageID,
		Products:      make([]domain.ProductInsights, 0, len(products)),
		TotalProducts: len(products),
		TotalAds:      len(ads),
		ComputedAt:    now,
	}

	totalMatches := 0
	for _, product := range products {
		insight := b.buildProductInsight(product, ads)
		totalMatches += len(insight.Matches)

		if insight.HasMatches() {
			insights.ProductsWithMatches++
		}
		if insight.IsPromoted {
			insights.PromotedProducts++
		}
		insights.Products = append(insights.Products, insight)
	}

	if insights.TotalProducts > 0 {
		insights.CoverageRatio = float64(insights.ProductsWithMatches) / float64(insights.TotalProducts)
		insights.PromotionRatio = float64(insights.PromotedProducts) / float64(insights.TotalProducts)
	}

	log.WithFields(map[string]any{
		"products_analyzed": len(products),
		"ads_analyzed":      len(ads),
		"matches_found":     totalMatches,
	}).Info("product insights built")

	return insights, nil
}

// buildProductInsight aggregates the match results for one product:
// strength bucket counts, distinct creatives, and the seen-at window
// over matched ads.
func (b *InsightsBuilder) buildProductInsight(product *domain.Product, ads []*domain.Ad) domain.ProductInsights {
	matches := b.matcher.MatchAll(product, ads)

	insight := domain.ProductInsights{
		Product:          product,
		Matches:          matches,
		AdsCount:         len(matches),
		TotalAdsAnalyzed: len(ads),
		ComputedAt:       time.Now().UTC(),
	}

	creatives := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		creatives[match.Ad.CreativeKey()] = struct{}{}

		if match.Score > insight.MatchScore {
			insight.MatchScore = match.Score
		}
		switch match.Strength {
		case domain.MatchStrong:
			insight.StrongCount++
			insight.IsPromoted = true
		case domain.MatchMedium:
			insight.MediumCount++
		case domain.MatchWeak:
			insight.WeakCount++
		}

		if match.Ad.FirstSeenAt != nil {
			if insight.FirstSeenAt == nil || match.Ad.FirstSeenAt.Before(*insight.FirstSeenAt) {
				insight.FirstSeenAt = match.Ad.FirstSeenAt
			}
		}
		if match.Ad.LastSeenAt != nil {
			if insight.LastSeenAt == nil || match.Ad.LastSeenAt.After(*insight.LastSeenAt) {
				insight.LastSeenAt = match.Ad.LastSeenAt
			}
		}
	}
	insight.DistinctCreativesCount = len(creatives)

	return insight
}

func sortInsights(products []domain.ProductInsights, sortBy portin.InsightsSort) []domain.ProductInsights {
	sorted := make([]domain.ProductInsights, len(products))
	copy(sorted, products)

	less := func(i, j int) bool { return sorted[i].MatchScore > sorted[j].MatchScore }
	switch sortBy {
	case portin.SortByAdsCount:
		less = func(i, j int) bool { return sorted[i].AdsCount > sorted[j].AdsCount }
	case portin.SortByLastSeenAt:
		less = func(i, j int) bool {
			li, lj := sorted[i].LastSeenAt, sorted[j].LastSeenAt
			switch {
			case li == nil:
				return false
			case lj == nil:
				return true
			default:
				return li.After(*lj)
			}
		}
	case portin.SortByMatchScore, "":
		// default
	default:
		// Unknown sort keys fall back to match score.
	}

	sort.SliceStable(sorted, less)
	return sorted
}

func paginate(products []domain.ProductInsights, limit, offset int) []domain.ProductInsights {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) {
		return []domain.ProductInsights{}
	}
	end := len(products)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return products[offset:end]
}
