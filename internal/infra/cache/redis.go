// Package cache holds the Redis-backed session revocation cache.
package cache

import (
	"context"
	"log/slog"
	"strings"

	"sso/config"
	"sso/internal/domain/lifecycle"
	"sso/internal/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// Connect builds a client from either a redis:// URL or a host:port address.
func Connect(cfg *config.RedisConfig) (*redis.Client, error) {
	if strings.HasPrefix(cfg.URL, "redis://") || strings.HasPrefix(cfg.URL, "rediss://") {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse redis url")
		}
		if cfg.Password != "" {
			opt.Password = cfg.Password
		}

		return redis.NewClient(opt), nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), nil
}

// NewRevocationCache returns the Redis cache when configured and a no-op cache otherwise.
func NewRevocationCache(params Params) (*RevocationCache, error) {
	cfg := params.Config.Redis
	if cfg == nil || cfg.URL == "" {
		params.Logger.Info("Redis not configured, session revocation cache disabled")

		return NewRevocationCacheWithClient(nil, params.Logger), nil
	}

	client, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping Redis")
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return NewRevocationCacheWithClient(client, params.Logger), nil
}
