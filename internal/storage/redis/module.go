package redis

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const poolSize = 10

// Module provides the optional correlation cache.
var Module = fx.Provide(newCache)

type cacheParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

type cacheResult struct {
	fx.Out

	Cache repository.CorrelationStore `name:"correlation_cache"`
}

// newCache yields a nil store when no Redis address is configured.
func newCache(p cacheParams) (cacheResult, error) {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("correlation cache disabled")
		return cacheResult{}, nil
	}

	cache, err := Dial(p.Config.RedisAddr, poolSize, p.Logger)
	if err != nil {
		return cacheResult{}, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return cache.Close()
		},
	})
	p.Logger.Info("correlation cache enabled", slog.String("addr", p.Config.RedisAddr))
	return cacheResult{Cache: cache}, nil
}
