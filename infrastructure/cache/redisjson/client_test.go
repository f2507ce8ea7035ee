package redisjson

import (
	"context"
	"os"
	"testing"

	"deckthumb-cache/core/cachestore"
	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests need Redis with the RedisJSON module; set REDISJSON_TEST=1 to run them.

func newTestCache(t *testing.T) *JSONCache {
	t.Helper()
	if os.Getenv("REDISJSON_TEST") != "1" {
		t.Skip("Skipping RedisJSON integration tests - set REDISJSON_TEST=1 to run")
	}
	addr := os.Getenv("REDIS_TEST_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}

	cache, err := NewJSONCache(config.RedisConfig{Address: addr})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestNewJSONCache_EmptyAddress(t *testing.T) {
	cache, err := NewJSONCache(config.RedisConfig{})

	assert.Error(t, err)
	assert.Nil(t, cache)
}

func TestJSONCache_RejectsInvalidJSONBeforeNetwork(t *testing.T) {
	c := &JSONCache{}

	err := c.Set(context.Background(), "deck_info_cache", []byte("{not json"), 0)

	assert.Error(t, err)
}

func TestJSONCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	key := "deckthumb-test:doc"
	defer cache.Delete(ctx, key)

	require.NoError(t, cache.Set(ctx, key, []byte(`{"1":"artifact"}`), 0))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"artifact"}`, string(got))

	require.NoError(t, cache.Delete(ctx, key))
	_, err = cache.Get(ctx, key)
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestJSONCache_BacksCacheStore(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	store := cachestore.NewStore(cache, cachestore.WithKeys(cachestore.PrefixedKeys("deckthumb-test")))
	keys := store.Keys()
	defer func() {
		cache.Delete(ctx, keys.Info)
		cache.Delete(ctx, keys.Thumbnails)
		cache.Delete(ctx, keys.Order)
	}()

	store.UpsertInfo(7, &domain.CachedDeckInfo{Name: "Seven", Hash: "abc"})
	store.UpsertThumbnail(7, "")
	store.SetOrder([]int{7})
	require.NoError(t, store.Save(ctx))

	reloaded := cachestore.NewStore(cache, cachestore.WithKeys(keys))
	reloaded.Load(ctx)

	require.NotNil(t, reloaded.Info(7))
	assert.Equal(t, "abc", reloaded.Info(7).Hash)
	artifact, ok := reloaded.Thumbnail(7)
	assert.True(t, ok)
	assert.Equal(t, "", artifact)
	assert.Equal(t, []int{7}, reloaded.Order())
}
