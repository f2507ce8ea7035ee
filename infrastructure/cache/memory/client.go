// ABOUTME: In-memory cache implementation backed by patrickmn/go-cache
// ABOUTME: Provides a process-local substrate with TTL support and periodic cleanup

package memory

import (
	"context"
	"time"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/pkg/config"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements the Cache interface using in-memory storage
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new in-memory cache whose entries never expire by default
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithConfig(config.MemoryConfig{CleanupInterval: 10 * time.Minute})
}

// NewMemoryCacheWithConfig creates a new in-memory cache from configuration
func NewMemoryCacheWithConfig(cfg config.MemoryConfig) *MemoryCache {
	expiration := cfg.DefaultExpiration
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	return &MemoryCache{cache: gocache.New(expiration, cfg.CleanupInterval)}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, found := c.cache.Get(key)
	if !found {
		return nil, &coreerrors.NotFoundError{Resource: "cache key", ID: key}
	}

	stored, ok := value.([]byte)
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "cache key", ID: key}
	}

	// Return a copy of the value
	result := make([]byte, len(stored))
	copy(result, stored)
	return result, nil
}

// Set stores a value in the cache with the given TTL; 0 uses the default expiration
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, valueCopy, ttl)
	return nil
}

// Delete removes a key from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.cache.Delete(key)
	return nil
}

// Count returns the number of stored entries, including expired ones not yet cleaned up
func (c *MemoryCache) Count() int {
	return c.cache.ItemCount()
}
