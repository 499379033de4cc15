package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bobmcallan/milhas/internal/common"
)

// Backend type constants.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// NewStore creates a cache store based on the configuration.
// Supported backends: "memory" (default), "redis".
func NewStore(ctx context.Context, logger *common.Logger, config common.CacheConfig) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(config.Backend))
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		logger.Info().Str("backend", backend).Msg("Cache initialised")
		return NewMemoryStore(), nil

	case BackendRedis:
		store := NewRedisStore(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		}, config.KeyPrefix)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.RedisAddr, err)
		}
		logger.Info().Str("backend", backend).Str("addr", config.RedisAddr).Msg("Cache initialised")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: memory, redis)", backend)
	}
}
