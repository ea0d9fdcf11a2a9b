package cache

import (
	"context"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
)

type memoryCache struct {
	store *TTLCache
}

// NewMemoryCache returns a ResponseCache backed by a bounded in-process
// TTL cache. Suitable for single-instance deployments.
func NewMemoryCache(maxSize int, ttl time.Duration, clk clock.Clock) ResponseCache {
	return &memoryCache{store: NewTTLCache(maxSize, ttl, clk)}
}

func (c *memoryCache) Get(_ context.Context, model, message string) (string, bool, error) {
	answer, ok := c.store.Get(Key(model, message))
	return answer, ok, nil
}

func (c *memoryCache) Set(_ context.Context, model, message, answer string) error {
	c.store.Set(Key(model, message), answer)
	return nil
}
