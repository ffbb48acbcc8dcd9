package worker

import (
	"context"
	"fmt"
	"time"

	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/core/service/matching"
	"intel_server/pkg/cache"
	"intel_server/pkg/logger"
)

// defaultRescoreLockTTL bounds how long a stuck worker can hold a page lock.
const defaultRescoreLockTTL = 2 * time.Minute

// ScoreProcessor handles score recompute jobs. One rescore runs per page
// at a time; concurrent requests are collapsed via a Redis lock.
type ScoreProcessor struct {
	scoring  portin.ScoringService
	insights *matching.InsightsBuilder
	archive  out.CreativeArchive
	ads      out.AdsRepository
	locks    *cache.RedisCache
	producer out.MessageProducer
	lockTTL  time.Duration
	log      *logger.Logger
}

// NewScoreProcessor creates a new score processor.
func NewScoreProcessor(
	scoring portin.ScoringService,
	insights *matching.InsightsBuilder,
	archive out.CreativeArchive,
	ads out.AdsRepository,
	locks *cache.RedisCache,
	producer out.MessageProducer,
	lockTTL time.Duration,
	log *logger.Logger,
) *ScoreProcessor {
	if lockTTL <= 0 {
		lockTTL = defaultRescoreLockTTL
	}
	return &ScoreProcessor{
		scoring:  scoring,
		insights: insights,
		archive:  archive,
		ads:      ads,
		locks:    locks,
		producer: producer,
		lockTTL:  lockTTL,
		log:      log,
	}
}

// ProcessCompute recomputes the score for one page, invalidates its
// cached insights and archives the creatives seen during the run.
func (p *ScoreProcessor) ProcessCompute(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[ScoreComputePayload](msg)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if payload.PageID == "" {
		return fmt.Errorf("score compute job missing page_id")
	}

	log := p.log.WithField("page_id", payload.PageID)

	// Without Redis the job arrived by direct submission; run unlocked.
	if p.locks != nil {
		lockKey := "lock:rescore:" + payload.PageID
		acquired, err := p.locks.AcquireLock(ctx, lockKey, p.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire rescore lock: %w", err)
		}
		if !acquired {
			// Another worker is already rescoring this page.
			log.Debug("rescore already in progress, skipping")
			return nil
		}
		defer func() {
			if err := p.locks.ReleaseLock(context.Background(), lockKey); err != nil {
				log.WithError(err).Warn("failed to release rescore lock")
			}
		}()
	}

	result, err := p.scoring.Compute(ctx, payload.PageID)
	if err != nil {
		return fmt.Errorf("failed to compute score: %w", err)
	}

	// The catalog or the ads library may have changed since the cache
	// was last built, so drop it and ask for a warm rebuild.
	p.insights.Invalidate(ctx, payload.PageID)
	if p.producer != nil {
		if err := p.producer.PublishInsightsWarm(ctx, &out.InsightsWarmJob{PageID: payload.PageID}); err != nil {
			log.WithError(err).Warn("failed to enqueue insights warm job")
		}
	}

	p.archiveCreatives(ctx, payload.PageID, log)

	log.WithFields(map[string]any{
		"score":        result.Snapshot.Score,
		"tier":         string(result.Tier),
		"alerts":       len(result.Alerts),
		"requested_by": payload.RequestedBy,
	}).Info("score recompute finished")

	return nil
}

// archiveCreatives snapshots the page's current creatives. Archive
// failures are logged but never fail the rescore itself.
func (p *ScoreProcessor) archiveCreatives(ctx context.Context, pageID string, log *logger.Logger) {
	if p.archive == nil {
		return
	}
	ads, err := p.ads.ListByPage(ctx, pageID)
	if err != nil {
		log.WithError(err).Warn("failed to list ads for creative archive")
		return
	}
	if len(ads) == 0 {
		return
	}

	if err := p.archive.ArchiveAds(ctx, pageID, ads); err != nil {
		log.WithError(err).Warn("failed to archive creatives")
		return
	}
	log.Debug("archived %d creatives", len(ads))
}
