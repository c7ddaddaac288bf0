package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/eragon/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(
		provideRedisClient,
		provideStore,
		config.NewCacheTTLHolder,
		NewReadThrough,
	),
)

// provideRedisClient returns nil unless the redis driver is configured.
func provideRedisClient(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.Cache.Driver != config.CacheDriverRedis {
		return nil
	}
	client := NewRedisClient(cfg)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis unreachable at startup, cache reads will fall through", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

func provideStore(cfg config.Config, client *redis.Client, log *zap.Logger) Cache {
	log.Info("cache store selected", zap.String("driver", cfg.Cache.Driver))
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		return NewMemoryCache()
	case config.CacheDriverNone:
		return NoopCache{}
	default:
		return NewRedisCache(client, cfg.Cache.KeyPrefix)
	}
}
