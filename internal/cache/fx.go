package cache

import (
	"context"
	"fmt"

	"github.com/lexorahq/lexora/internal/clock"
	"github.com/lexorahq/lexora/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Clock     clock.Clock
	Log       *zap.Logger
}

func New(p Params) (ResponseCache, error) {
	log := p.Log.Named("cache")
	switch p.Config.CacheBackend {
	case "memory", "":
		log.Info("using in-memory response cache",
			zap.Int("max_size", p.Config.CacheMaxSize),
			zap.Duration("ttl", p.Config.CacheTTL),
		)
		return NewMemoryCache(p.Config.CacheMaxSize, p.Config.CacheTTL, p.Clock), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     p.Config.RedisAddr,
			Password: p.Config.RedisPassword,
			DB:       p.Config.RedisDB,
		})
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		log.Info("using redis response cache", zap.String("addr", p.Config.RedisAddr))
		return NewRedisCache(client, p.Config.CacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", p.Config.CacheBackend)
	}
}
