// ABOUTME: RedisJSON cache implementation using go-rejson over a go-redis client
// ABOUTME: Stores each persisted record as a JSON document so it can be inspected with JSON.GET

package redisjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/infrastructure/cache/redis"
	"deckthumb-cache/pkg/config"
	"github.com/nitishm/go-rejson/v4"
	goredis "github.com/redis/go-redis/v9"
)

// rootPath addresses the whole document
const rootPath = "."

// JSONCache implements the Cache interface with RedisJSON documents
type JSONCache struct {
	client  *goredis.Client
	handler *rejson.Handler
}

// NewJSONCache connects to Redis and prepares the ReJSON handler
func NewJSONCache(cfg config.RedisConfig) (*JSONCache, error) {
	client, err := redis.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return NewJSONCacheFromClient(client), nil
}

// NewJSONCacheFromClient wraps an existing client
func NewJSONCacheFromClient(client *goredis.Client) *JSONCache {
	handler := rejson.NewReJSONHandler()
	handler.SetGoRedisClient(client)
	return &JSONCache{client: client, handler: handler}
}

// Get returns the document stored under key as JSON bytes
func (c *JSONCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	val, err := c.handler.JSONGet(key, rootPath)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, &coreerrors.NotFoundError{Resource: "cache key", ID: key}
		}
		return nil, err
	}

	switch v := val.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case nil:
		return nil, &coreerrors.NotFoundError{Resource: "cache key", ID: key}
	default:
		return nil, fmt.Errorf("unexpected JSON.GET reply type %T for %s", val, key)
	}
}

// Set stores value, which must be valid JSON, as a document under key
func (c *JSONCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}

	if _, err := c.handler.JSONSet(key, rootPath, json.RawMessage(value)); err != nil {
		return err
	}

	if ttl > 0 {
		if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("failed to set expiration for %s: %w", key, err)
		}
	}
	return nil
}

// Delete removes the document under key
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := c.handler.JSONDel(key, rootPath)
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	return err
}

// Close closes the Redis connection
func (c *JSONCache) Close() error {
	return c.client.Close()
}
