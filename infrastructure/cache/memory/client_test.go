package memory

import (
	"context"
	"testing"
	"time"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/pkg/config"
)

func TestNewMemoryCache(t *testing.T) {
	cache := NewMemoryCache()

	if cache == nil {
		t.Error("NewMemoryCache returned nil")
	}
}

func TestMemoryCache_Get_ExistingKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	key := "deck_info_cache"
	value := []byte(`{"1":{"id":1}}`)
	if err := cache.Set(ctx, key, value, 0); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Errorf("Get returned error: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get returned %s, want %s", string(got), string(value))
	}
}

func TestMemoryCache_Get_NonExistentKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	got, err := cache.Get(ctx, "non-existent")

	if !coreerrors.IsNotFound(err) {
		t.Errorf("Get should return a not found error, got %v", err)
	}
	if got != nil {
		t.Error("Get should return nil value for non-existent key")
	}
}

func TestMemoryCache_Get_ExpiredKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	got, err := cache.Get(ctx, "short")
	if !coreerrors.IsNotFound(err) {
		t.Errorf("Get should return not found for expired key, got %v", err)
	}
	if got != nil {
		t.Error("Get should return nil value for expired key")
	}
}

func TestMemoryCache_DefaultExpirationFromConfig(t *testing.T) {
	cache := NewMemoryCacheWithConfig(config.MemoryConfig{
		DefaultExpiration: 10 * time.Millisecond,
		CleanupInterval:   time.Minute,
	})
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := cache.Get(ctx, "key"); err == nil {
		t.Error("zero TTL should use the configured default expiration")
	}
}

func TestMemoryCache_Set_WithZeroTTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	got, err := cache.Get(ctx, "key")
	if err != nil {
		t.Errorf("Get returned error: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get returned %s, want value", string(got))
	}
}

func TestMemoryCache_ValueIsCopied(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	value := []byte("abc")
	if err := cache.Set(ctx, "key", value, 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	value[0] = 'z'

	got, _ := cache.Get(ctx, "key")
	got[1] = 'z'

	again, _ := cache.Get(ctx, "key")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated: %s", string(again))
	}
}

func TestMemoryCache_Set_UpdatesExisting(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value1"), time.Hour); err != nil {
		t.Fatalf("First set failed: %v", err)
	}
	if err := cache.Set(ctx, "key", []byte("value2"), time.Hour); err != nil {
		t.Fatalf("Second set failed: %v", err)
	}

	got, err := cache.Get(ctx, "key")
	if err != nil {
		t.Errorf("Get returned error: %v", err)
	}
	if string(got) != "value2" {
		t.Errorf("Get returned %s, want value2", string(got))
	}
	if cache.Count() != 1 {
		t.Errorf("Count = %d, want 1", cache.Count())
	}
}

func TestMemoryCache_Delete_RemovesKey(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cache.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete returned error: %v", err)
	}
	if err := cache.Delete(ctx, "non-existent"); err != nil {
		t.Errorf("Delete should return nil for non-existent key, got: %v", err)
	}

	if _, err := cache.Get(ctx, "key"); err == nil {
		t.Error("Get should return error for deleted key")
	}
}

func TestMemoryCache_CancelledContext(t *testing.T) {
	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "key", []byte("value"), 0); err != context.Canceled {
		t.Errorf("Set error = %v, want context.Canceled", err)
	}
	if _, err := cache.Get(ctx, "key"); err != context.Canceled {
		t.Errorf("Get error = %v, want context.Canceled", err)
	}
}
