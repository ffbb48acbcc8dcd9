package out

import (
	"context"
	"time"
)

// InsightsCache caches built page insights. A failing cache degrades to
// direct computation; it never fails an insights build.
type InsightsCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
