package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInfo(id int, now time.Time) *domain.CachedDeckInfo {
	deck := &domain.DeckDetail{
		ID:    id,
		Name:  "Deck",
		Main:  []domain.CardRef{{ID: 1, InstanceID: 1, Quantity: 3}},
		Extra: []domain.CardRef{{ID: 2, InstanceID: 1, Quantity: 1}},
	}
	return domain.NewCachedDeckInfo(deck, "h1", now)
}

func TestStore_LoadMissingRecordsIsEmpty(t *testing.T) {
	logger := &recordingLogger{}
	store := NewStore(newMapCache(), WithLogger(logger))

	store.Load(context.Background())

	assert.Equal(t, 0, store.InfoCount())
	assert.Equal(t, 0, store.ThumbnailCount())
	assert.Empty(t, store.Order())
	assert.Equal(t, 0, logger.warnCount(), "missing records are not warnings")
}

func TestStore_LoadMalformedFallsBackToEmpty(t *testing.T) {
	cache := newMapCache()
	cache.data[InfoKey] = []byte("{not json")
	cache.data[ThumbnailsKey] = []byte(`["wrong", "shape"]`)
	cache.data[OrderKey] = []byte(`{"a": 1}`)
	logger := &recordingLogger{}
	store := NewStore(cache, WithLogger(logger))

	store.Load(context.Background())

	assert.Equal(t, 0, store.InfoCount())
	assert.Equal(t, 0, store.ThumbnailCount())
	assert.Empty(t, store.Order())
	assert.Equal(t, 3, logger.warnCount())

	// the store stays writable after a failed load
	store.UpsertThumbnail(1, "data:image/png;base64,AA")
	assert.Equal(t, 1, store.ThumbnailCount())
}

func TestStore_LoadNullRecordsStayWritable(t *testing.T) {
	cache := newMapCache()
	cache.data[InfoKey] = []byte("null")
	cache.data[ThumbnailsKey] = []byte("null")
	store := NewStore(cache)

	store.Load(context.Background())
	store.UpsertInfo(1, sampleInfo(1, time.Now()))
	store.UpsertThumbnail(1, "")

	assert.Equal(t, 1, store.InfoCount())
	assert.Equal(t, 1, store.ThumbnailCount())
}

func TestStore_LoadSubstrateErrorWarns(t *testing.T) {
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	logger := &recordingLogger{}
	store := NewStore(cache, WithLogger(logger))

	store.Load(context.Background())

	assert.Equal(t, 0, store.InfoCount())
	assert.Equal(t, 3, logger.warnCount())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	cache := newMapCache()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	thumbAt := now.Add(time.Hour)

	store := NewStore(cache)
	info := sampleInfo(7, now)
	info.LastThumbnailUpdate = &thumbAt
	store.UpsertInfo(7, info)
	store.UpsertInfo(8, sampleInfo(8, now))
	store.UpsertThumbnail(7, "data:image/webp;base64,xyz")
	store.UpsertThumbnail(8, "")
	store.SetOrder([]int{8, 7})
	require.NoError(t, store.Save(ctx))

	reloaded := NewStore(cache)
	reloaded.Load(ctx)

	assert.Equal(t, 2, reloaded.InfoCount())
	got := reloaded.Info(7)
	require.NotNil(t, got)
	assert.Equal(t, "h1", got.Hash)
	assert.True(t, got.LastUpdated.Equal(now))
	require.NotNil(t, got.LastThumbnailUpdate)
	assert.True(t, got.LastThumbnailUpdate.Equal(thumbAt))
	assert.Equal(t, domain.CardCount{Main: 3, Extra: 1}, *got.CardCount)
	assert.Equal(t, info.Main, got.Main)

	artifact, ok := reloaded.Thumbnail(7)
	assert.True(t, ok)
	assert.Equal(t, "data:image/webp;base64,xyz", artifact)

	empty, ok := reloaded.Thumbnail(8)
	assert.True(t, ok, "empty marker must survive a round trip")
	assert.Equal(t, "", empty)

	assert.Equal(t, []int{8, 7}, reloaded.Order())
}

func TestStore_PersistedLayout(t *testing.T) {
	cache := newMapCache()
	store := NewStore(cache)
	store.UpsertInfo(5, sampleInfo(5, time.Now()))
	store.UpsertThumbnail(5, "")
	store.SetOrder([]int{5})
	require.NoError(t, store.Save(context.Background()))

	var info map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(cache.data[InfoKey], &info))
	require.Contains(t, info, "5")
	assert.Equal(t, "h1", info["5"]["hash"])
	assert.Contains(t, info["5"], "cardCount")
	assert.Contains(t, info["5"], "lastUpdated")

	var thumbs map[string]string
	require.NoError(t, json.Unmarshal(cache.data[ThumbnailsKey], &thumbs))
	assert.Equal(t, map[string]string{"5": ""}, thumbs)

	assert.JSONEq(t, `[5]`, string(cache.data[OrderKey]))
}

func TestStore_LoadBackfillsCardCount(t *testing.T) {
	cache := newMapCache()
	cache.data[InfoKey] = []byte(`{
		"3": {"id": 3, "name": "Old", "hash": "abc", "lastUpdated": "2024-01-01T00:00:00Z",
		      "main": [{"id": 1, "instanceId": 1, "quantity": 2}, {"id": 2, "instanceId": 1, "quantity": 1}],
		      "extra": [], "side": [{"id": 5, "instanceId": 1, "quantity": 3}]},
		"4": {"id": 4, "name": "Wrong", "hash": "def", "lastUpdated": "2024-01-01T00:00:00Z",
		      "main": [{"id": 1, "instanceId": 1, "quantity": 1}], "cardCount": {"main": 9, "extra": 0, "side": 0}},
		"6": null
	}`)
	store := NewStore(cache)

	store.Load(context.Background())

	assert.Equal(t, 2, store.InfoCount())
	got := store.Info(3)
	require.NotNil(t, got)
	require.NotNil(t, got.CardCount)
	assert.Equal(t, domain.CardCount{Main: 3, Extra: 0, Side: 3}, *got.CardCount)

	wrong := store.Info(4)
	require.NotNil(t, wrong.CardCount)
	assert.Equal(t, 1, wrong.CardCount.Main)
}

func TestStore_SaveErrorIsPersistenceError(t *testing.T) {
	cache := newMapCache()
	cache.setErr = errors.New("read-only")
	store := NewStore(cache)

	err := store.Save(context.Background())

	require.Error(t, err)
	assert.True(t, coreerrors.IsPersistence(err))
}

func TestStore_AccessorsReturnCopies(t *testing.T) {
	store := NewStore(newMapCache())
	store.UpsertInfo(1, sampleInfo(1, time.Now()))
	store.SetOrder([]int{1, 2})

	got := store.Info(1)
	got.Hash = "mutated"
	got.Main[0].Quantity = 99
	order := store.Order()
	order[0] = 42

	assert.Equal(t, "h1", store.Info(1).Hash)
	assert.Equal(t, 3, store.Info(1).Main[0].Quantity)
	assert.Equal(t, []int{1, 2}, store.Order())
}

func TestStore_UpsertInfoFixesCardCountAndID(t *testing.T) {
	store := NewStore(newMapCache())
	info := sampleInfo(1, time.Now())
	info.CardCount = nil

	store.UpsertInfo(2, info)

	got := store.Info(2)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID)
	require.NotNil(t, got.CardCount)
	assert.Equal(t, 3, got.CardCount.Main)
	assert.Nil(t, store.Info(1))
}

func TestStore_TouchAndMarkChecked(t *testing.T) {
	store := NewStore(newMapCache())
	now := time.Now()
	store.UpsertInfo(1, sampleInfo(1, now))

	assert.True(t, store.TouchThumbnail(1, now))
	assert.True(t, store.MarkChecked(1, now.Add(time.Minute)))
	assert.False(t, store.TouchThumbnail(2, now))
	assert.False(t, store.MarkChecked(2, now))

	got := store.Info(1)
	require.NotNil(t, got.LastThumbnailUpdate)
	require.NotNil(t, got.LastChecked)
	assert.True(t, got.LastThumbnailUpdate.Equal(now))
	assert.True(t, got.LastChecked.Equal(now.Add(time.Minute)))
}

func TestPrefixedKeys(t *testing.T) {
	store := NewStore(newMapCache(), WithKeys(PrefixedKeys("user42")))

	assert.Equal(t, "user42:deck_info_cache", store.Keys().Info)
	assert.Equal(t, "user42:deck_thumbnails", store.Keys().Thumbnails)
	assert.Equal(t, "user42:deck_list_order", store.Keys().Order)
	assert.Equal(t, DefaultKeys(), PrefixedKeys(""))
}
