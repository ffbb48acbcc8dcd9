// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"intel_server/core/port/out"
)

// Stream names
const (
	StreamScoreCompute = "score:compute"
	StreamInsightsWarm = "insights:warm"
)

// RedisProducer implements out.MessageProducer using Redis Streams.
type RedisProducer struct {
	client *redis.Client
}

// NewRedisProducer creates a new RedisProducer.
func NewRedisProducer(client *redis.Client) *RedisProducer {
	return &RedisProducer{client: client}
}

// PublishScoreCompute publishes a score recompute job.
func (p *RedisProducer) PublishScoreCompute(ctx context.Context, job *out.ScoreComputeJob) error {
	return p.publish(ctx, StreamScoreCompute, job)
}

// PublishInsightsWarm publishes an insights cache warm job.
func (p *RedisProducer) PublishInsightsWarm(ctx context.Context, job *out.InsightsWarmJob) error {
	return p.publish(ctx, StreamInsightsWarm, job)
}

// publish publishes a job to a stream using go-redis.
func (p *RedisProducer) publish(ctx context.Context, stream string, job interface{}) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	return nil
}

// Ensure RedisProducer implements out.MessageProducer
var _ out.MessageProducer = (*RedisProducer)(nil)
