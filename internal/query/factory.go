package query

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/infrastructure/config"
)

// NewFromConfig builds the query cache selected by configuration.
//
// "memory" keeps everything in the in-process LRU layer. "redis" adds a
// remote layer behind it so confirmed values survive restarts; the LRU
// layer stays in front in both modes because callers rely on getting the
// decoded value back without a round trip.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Cache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return New(cfg.Cache.MaxEntries, WithLogger(logger))
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}

		return New(cfg.Cache.MaxEntries,
			WithRemote(NewRedisRemote(client)),
			WithLogger(logger),
		)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q", cfg.Cache.Backend)
	}
}
