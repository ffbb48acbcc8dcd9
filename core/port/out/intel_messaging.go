package out

import "context"

// ScoreComputeJob asks the worker to recompute the score for one page.
type ScoreComputeJob struct {
	PageID      string `json:"page_id"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// InsightsWarmJob asks the worker to pre-warm the insights cache for a page.
type InsightsWarmJob struct {
	PageID string `json:"page_id"`
}

// MessageProducer dispatches background jobs. The engine itself is
// synchronous; this is the "trigger recompute" boundary.
type MessageProducer interface {
	PublishScoreCompute(ctx context.Context, job *ScoreComputeJob) error
	PublishInsightsWarm(ctx context.Context, job *InsightsWarmJob) error
}
