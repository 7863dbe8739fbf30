package cache

import (
	"context"
	"time"

	"github.com/matzehuels/markstack/pkg/observability"
)

// Instrumented reports hits, misses and writes to the registered
// [observability.CacheHooks], tagged with keyType.
type Instrumented struct {
	Cache
	keyType string
}

// Instrument wraps c so every Get and Set emits a cache hook event.
func Instrument(c Cache, keyType string) Cache {
	return &Instrumented{Cache: c, keyType: keyType}
}

// Get forwards to the wrapped cache and records a hit or miss.
func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		return data, ok, err
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, c.keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, c.keyType)
	}
	return data, ok, nil
}

// Set forwards to the wrapped cache and records the write size.
func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}
