package worker

import (
	"context"
	"fmt"

	portin "intel_server/core/port/in"
	"intel_server/core/service/matching"
	"intel_server/pkg/logger"
)

// InsightsProcessor handles insights cache warm jobs.
type InsightsProcessor struct {
	insights *matching.InsightsBuilder
	log      *logger.Logger
}

// NewInsightsProcessor creates a new insights processor.
func NewInsightsProcessor(insights *matching.InsightsBuilder, log *logger.Logger) *InsightsProcessor {
	return &InsightsProcessor{insights: insights, log: log}
}

// ProcessWarm rebuilds a page's product insights so the next read hits
// the cache. The built result is discarded; the side effect is the
// cache write inside the builder.
func (p *InsightsProcessor) ProcessWarm(ctx context.Context, msg *Message) error {
	payload, err := ParsePayload[InsightsWarmPayload](msg)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	if payload.PageID == "" {
		return fmt.Errorf("insights warm job missing page_id")
	}

	if _, err := p.insights.BuildForPage(ctx, payload.PageID, portin.InsightsOptions{}); err != nil {
		return fmt.Errorf("failed to warm insights for page %s: %w", payload.PageID, err)
	}

	p.log.WithField("page_id", payload.PageID).Debug("insights cache warmed")
	return nil
}
