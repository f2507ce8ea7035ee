// ABOUTME: Cache substrate selection for the deck refresh service
// ABOUTME: Builds memory, Redis, RedisJSON or SQLite storage from configuration

package main

import (
	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/infrastructure/cache/memory"
	"deckthumb-cache/infrastructure/cache/redis"
	"deckthumb-cache/infrastructure/cache/redisjson"
	"deckthumb-cache/infrastructure/cache/sqlite"
	"deckthumb-cache/pkg/config"
)

// buildCache returns the configured substrate and a close function.
// Network substrates fall back to memory when unreachable.
func buildCache(cfg config.CacheConfig, logger interfaces.Logger) (interfaces.Cache, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Type {
	case config.CacheTypeRedis:
		redisCache, err := redis.NewRedisCache(cfg.Redis)
		if err != nil {
			logger.Error("Failed to create Redis cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCacheWithConfig(cfg.Memory), noop, nil
		}
		logger.Info("Using Redis cache", map[string]interface{}{
			"address": cfg.Redis.Address,
		})
		return redisCache, redisCache.Close, nil

	case config.CacheTypeRedisJSON:
		jsonCache, err := redisjson.NewJSONCache(cfg.Redis)
		if err != nil {
			logger.Error("Failed to create RedisJSON cache, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			return memory.NewMemoryCacheWithConfig(cfg.Memory), noop, nil
		}
		logger.Info("Using RedisJSON cache", map[string]interface{}{
			"address": cfg.Redis.Address,
		})
		return jsonCache, jsonCache.Close, nil

	case config.CacheTypeSQLite:
		sqliteCache, err := sqlite.NewSQLiteCache(cfg.SQLite.Path, sqlite.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using SQLite cache", map[string]interface{}{
			"path": cfg.SQLite.Path,
		})
		return sqliteCache, sqliteCache.Close, nil

	default:
		logger.Info("Using memory cache", nil)
		return memory.NewMemoryCacheWithConfig(cfg.Memory), noop, nil
	}
}
