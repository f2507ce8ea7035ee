// Package interfaces defines the contracts between the refresh engine and its host.
// Storage substrates, upstream access, logging and scheduling are all injected
// through these interfaces so the core stays testable in isolation.
package interfaces

import (
	"context"
	"time"
)

// Cache defines the interface for cache operations.
// The deck cache store persists its JSON blobs through it; implementations
// can be Redis, SQLite, in-memory, or any other key-value substrate.
//
// Example usage:
//
//	cache := someCache // implements Cache interface
//	
//	// Store a value
//	err := cache.Set(ctx, "deck_info_cache", blob, 0)
//	
//	// Retrieve a value
//	data, err := cache.Get(ctx, "deck_info_cache")
//	if err != nil {
//		// missing keys are reported as a NotFoundError
//	}
//	
//	// Delete a value
//	err = cache.Delete(ctx, "deck_info_cache")
type Cache interface {
	// Get retrieves a value from the cache by key.
	// A missing key is reported as *errors.NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with the given key and TTL.
	// If ttl is 0, the value should be stored indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}