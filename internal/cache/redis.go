package cache

import (
	"context"
	"errors"
	"time"

	"github.com/golang/snappy"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lexora:answer:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a ResponseCache backed by redis, for deployments
// running more than one instance. Answers are snappy-compressed on the
// wire since legal answers routinely run to several kilobytes.
func NewRedisCache(client *redis.Client, ttl time.Duration) ResponseCache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, model, message string) (string, bool, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+Key(model, message)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	decoded, err := snappy.Decode(nil, raw)
	if err != nil {
		// A corrupt entry is treated as a miss and overwritten on the
		// next Set.
		return "", false, nil
	}
	return string(decoded), true, nil
}

func (c *redisCache) Set(ctx context.Context, model, message, answer string) error {
	encoded := snappy.Encode(nil, []byte(answer))
	return c.client.Set(ctx, redisKeyPrefix+Key(model, message), encoded, c.ttl).Err()
}
