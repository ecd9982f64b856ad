package cache

import (
	"context"
	"time"

	"github.com/matzehuels/printframe/pkg/observability"
)

// Instrumented reports hits, misses and writes of a cache to the registered
// observability hooks, tagged with keyType.
type Instrumented struct {
	Cache
	keyType string
}

// NewInstrumented wraps c.
func NewInstrumented(c Cache, keyType string) *Instrumented {
	return &Instrumented{Cache: c, keyType: keyType}
}

// Get implements Cache.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

// Set implements Cache.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}
