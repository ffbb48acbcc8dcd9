package scoring

import (
	"context"

	"github.com/google/uuid"

	"intel_server/config"
	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/core/service/alerting"
	"intel_server/pkg/logger"
)

const defaultHistoryLimit = 30

// Service runs the scoring pipeline: component calculators, weighted
// aggregation, snapshot persistence, then alert detection against the
// previous snapshot.
type Service struct {
	pages      out.PageRepository
	ads        out.AdsRepository
	scores     out.ScoringRepository
	alerts     out.AlertRepository
	thresholds config.AlertThresholds
	log        *logger.Logger
}

var _ portin.ScoringService = (*Service)(nil)

func NewService(
	pages out.PageRepository,
	ads out.AdsRepository,
	scores out.ScoringRepository,
	alerts out.AlertRepository,
	thresholds config.AlertThresholds,
	log *logger.Logger,
) *Service {
	return &Service{
		pages:      pages,
		ads:        ads,
		scores:     scores,
		alerts:     alerts,
		thresholds: thresholds,
		log:        log,
	}
}

// Compute scores the page end to end. The previous snapshot is loaded
// before the new one is saved so alert detection compares against the
// correct baseline. Alert persistence failures are logged but do not
// fail the run; the snapshot is already durable at that point.
func (s *Service) Compute(ctx context.Context, pageID string) (*portin.ComputeScoreResult, error) {
	log := s.log.WithContext(ctx).WithField("page_id", pageID)

	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	ads, err := s.ads.ListByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	activeAds, err := s.ads.CountActiveByPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	prev, err := s.scores.Latest(ctx, pageID)
	if err != nil {
		return nil, err
	}

	catalogScore, warning := CatalogScore(page)
	if warning != "" {
		log.Warn("%s", warning)
	}

	components := domain.ScoreComponents{
		AdsActivity:     AdsActivityScore(ads),
		Shopify:         ShopifyScore(page),
		CreativeQuality: CreativeQualityScore(ads),
		Catalog:         catalogScore,
	}

	snapshot := domain.NewShopScore(uuid.NewString(), pageID, components.WeightedSum(), components, activeAds)

	if err := s.scores.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	alerts := alerting.Detect(prev, snapshot, s.thresholds)
	for _, alert := range alerts {
		if err := s.alerts.Save(ctx, alert); err != nil {
			log.WithError(err).WithField("alert_type", string(alert.Type)).Error("failed to persist alert")
		}
	}

	log.WithFields(map[string]any{
		"score":       snapshot.Score,
		"tier":        string(snapshot.Tier()),
		"ads_count":   len(ads),
		"alert_count": len(alerts),
	}).Info("score computed")

	return &portin.ComputeScoreResult{
		Snapshot:   snapshot,
		Tier:       snapshot.Tier(),
		Alerts:     alerts,
		ComputedAt: snapshot.ComputedAt,
	}, nil
}

// Latest returns the most recent snapshot for the page.
func (s *Service) Latest(ctx context.Context, pageID string) (*domain.ShopScore, error) {
	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	snapshot, err := s.scores.Latest(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, domain.NewEntityNotFound("score", pageID)
	}
	return snapshot, nil
}

// History returns snapshots for the page, newest first.
func (s *Service) History(ctx context.Context, pageID string, limit int) ([]*domain.ShopScore, error) {
	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.scores.ListByPage(ctx, pageID, limit)
}
