// Package rediscache provides the Redis-backed insights cache with a
// circuit breaker in front of it.
package rediscache

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"intel_server/core/port/out"
	"intel_server/pkg/cache"
	"intel_server/pkg/logger"
)

// InsightsCacheAdapter implements out.InsightsCache on top of Redis.
// All calls go through a circuit breaker so a degraded Redis does not
// stall every insights request; callers treat errors as cache misses.
type InsightsCacheAdapter struct {
	redis *cache.RedisCache
	cb    *gobreaker.CircuitBreaker
	log   *logger.Logger
}

// NewInsightsCacheAdapter creates a new insights cache adapter.
func NewInsightsCacheAdapter(redis *cache.RedisCache, log *logger.Logger) *InsightsCacheAdapter {
	cbSettings := gobreaker.Settings{
		Name:        "insights-cache",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &InsightsCacheAdapter{
		redis: redis,
		cb:    gobreaker.NewCircuitBreaker(cbSettings),
		log:   log,
	}
}

// GetJSON returns the cached value for key, unmarshalled into dest.
// Returns (false, nil) on a plain miss and (false, err) when Redis or
// the breaker rejects the call.
func (a *InsightsCacheAdapter) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	result, err := a.cb.Execute(func() (interface{}, error) {
		return a.redis.GetJSON(ctx, key, dest)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// SetJSON stores value under key with a TTL.
func (a *InsightsCacheAdapter) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		return nil, a.redis.SetJSON(ctx, key, value, ttl)
	})
	return err
}

// Delete removes a key.
func (a *InsightsCacheAdapter) Delete(ctx context.Context, key string) error {
	_, err := a.cb.Execute(func() (interface{}, error) {
		return nil, a.redis.Delete(ctx, key)
	})
	return err
}

// Ensure InsightsCacheAdapter implements out.InsightsCache
var _ out.InsightsCache = (*InsightsCacheAdapter)(nil)
