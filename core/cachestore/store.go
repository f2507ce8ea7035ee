// ABOUTME: Cache store owning the deck info, thumbnail and list order maps
// ABOUTME: Loads and saves each map as a JSON blob through the injected cache substrate

// Package cachestore owns all persisted deck cache state.
//
// Three independent records are kept under their own storage keys:
//
//	deck_info_cache  {id: CachedDeckInfo}
//	deck_thumbnails  {id: artifact or ""}
//	deck_list_order  [id, ...]
//
// Loading is tolerant: a missing or malformed record is logged and replaced
// by empty state. Saving is synchronous and reports substrate failures.
package cachestore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"deckthumb-cache/core/domain"
	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/interfaces"
)

const (
	// InfoKey is the storage key of the deck info map
	InfoKey = "deck_info_cache"

	// ThumbnailsKey is the storage key of the thumbnail map
	ThumbnailsKey = "deck_thumbnails"

	// OrderKey is the storage key of the last committed list order
	OrderKey = "deck_list_order"
)

// Keys names the three storage records
type Keys struct {
	Info       string
	Thumbnails string
	Order      string
}

// DefaultKeys returns the unprefixed storage keys
func DefaultKeys() Keys {
	return Keys{Info: InfoKey, Thumbnails: ThumbnailsKey, Order: OrderKey}
}

// PrefixedKeys namespaces the storage keys, e.g. per user on a shared substrate
func PrefixedKeys(prefix string) Keys {
	if prefix == "" {
		return DefaultKeys()
	}
	return Keys{
		Info:       prefix + ":" + InfoKey,
		Thumbnails: prefix + ":" + ThumbnailsKey,
		Order:      prefix + ":" + OrderKey,
	}
}

// Store owns the three cached maps
type Store struct {
	cache  interfaces.Cache
	logger interfaces.Logger
	keys   Keys

	mu         sync.RWMutex
	info       map[int]*domain.CachedDeckInfo
	thumbnails map[int]string
	order      []int
}

var _ interfaces.DeckCacheReader = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithKeys overrides the storage keys
func WithKeys(keys Keys) Option {
	return func(s *Store) {
		s.keys = keys
	}
}

// WithLogger sets the logger used for load warnings
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store over the given substrate
func NewStore(cache interfaces.Cache, opts ...Option) *Store {
	s := &Store{
		cache:      cache,
		logger:     interfaces.NopLogger{},
		keys:       DefaultKeys(),
		info:       make(map[int]*domain.CachedDeckInfo),
		thumbnails: make(map[int]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys returns the storage keys in use
func (s *Store) Keys() Keys {
	return s.keys
}

// Load reads all three records, falling back to empty state on any failure
func (s *Store) Load(ctx context.Context) {
	s.LoadInfo(ctx)
	s.LoadThumbnails(ctx)
	s.LoadOrder(ctx)
}

// Save writes all three records, stopping at the first failure
func (s *Store) Save(ctx context.Context) error {
	if err := s.SaveInfo(ctx); err != nil {
		return err
	}
	if err := s.SaveThumbnails(ctx); err != nil {
		return err
	}
	return s.SaveOrder(ctx)
}

// LoadInfo reads the deck info record and normalizes it
func (s *Store) LoadInfo(ctx context.Context) {
	loaded := make(map[int]*domain.CachedDeckInfo)
	if !s.read(ctx, s.keys.Info, &loaded) || loaded == nil {
		loaded = make(map[int]*domain.CachedDeckInfo)
	}

	if fixed := NormalizeInfo(loaded); fixed > 0 {
		s.logger.Debug("Backfilled card counts on load", map[string]interface{}{
			"key":   s.keys.Info,
			"fixed": fixed,
		})
	}

	s.mu.Lock()
	s.info = loaded
	s.mu.Unlock()
}

// LoadThumbnails reads the thumbnail record
func (s *Store) LoadThumbnails(ctx context.Context) {
	loaded := make(map[int]string)
	if !s.read(ctx, s.keys.Thumbnails, &loaded) || loaded == nil {
		loaded = make(map[int]string)
	}

	s.mu.Lock()
	s.thumbnails = loaded
	s.mu.Unlock()
}

// LoadOrder reads the order snapshot
func (s *Store) LoadOrder(ctx context.Context) {
	var loaded []int
	if !s.read(ctx, s.keys.Order, &loaded) {
		loaded = nil
	}

	s.mu.Lock()
	s.order = loaded
	s.mu.Unlock()
}

// SaveInfo writes the deck info record
func (s *Store) SaveInfo(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.Marshal(s.info)
	s.mu.RUnlock()
	if err != nil {
		return &coreerrors.PersistenceError{Key: s.keys.Info, Op: "encode", Cause: err}
	}
	return s.write(ctx, s.keys.Info, data)
}

// SaveThumbnails writes the thumbnail record
func (s *Store) SaveThumbnails(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.Marshal(s.thumbnails)
	s.mu.RUnlock()
	if err != nil {
		return &coreerrors.PersistenceError{Key: s.keys.Thumbnails, Op: "encode", Cause: err}
	}
	return s.write(ctx, s.keys.Thumbnails, data)
}

// SaveOrder writes the order snapshot
func (s *Store) SaveOrder(ctx context.Context) error {
	s.mu.RLock()
	order := s.order
	if order == nil {
		order = []int{}
	}
	data, err := json.Marshal(order)
	s.mu.RUnlock()
	if err != nil {
		return &coreerrors.PersistenceError{Key: s.keys.Order, Op: "encode", Cause: err}
	}
	return s.write(ctx, s.keys.Order, data)
}

// read decodes a record into dest; false means dest must be treated as empty
func (s *Store) read(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if coreerrors.IsNotFound(err) {
			s.logger.Debug("No persisted record, starting empty", map[string]interface{}{
				"key": key,
			})
		} else {
			s.logger.Warn("Failed to read persisted record, starting empty", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return false
	}
	if len(data) == 0 {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Malformed persisted record, starting empty", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

func (s *Store) write(ctx context.Context, key string, data []byte) error {
	if err := s.cache.Set(ctx, key, data, 0); err != nil {
		return &coreerrors.PersistenceError{Key: key, Op: "save", Cause: err}
	}
	return nil
}

// Info returns a copy of the cached info, or nil
func (s *Store) Info(id int) *domain.CachedDeckInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info[id].Clone()
}

// Thumbnail returns the cached artifact and whether an entry exists
func (s *Store) Thumbnail(id int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	artifact, ok := s.thumbnails[id]
	return artifact, ok
}

// Order returns a copy of the stored order snapshot
func (s *Store) Order() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.order...)
}

// InfoCount returns the number of cached info entries
func (s *Store) InfoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.info)
}

// ThumbnailCount returns the number of thumbnail entries, empty markers included
func (s *Store) ThumbnailCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.thumbnails)
}

// UpsertInfo stores a copy of info under id, fixing its card count
func (s *Store) UpsertInfo(id int, info *domain.CachedDeckInfo) {
	if info == nil {
		return
	}
	stored := info.Clone()
	stored.ID = id
	normalizeEntry(stored)

	s.mu.Lock()
	s.info[id] = stored
	s.mu.Unlock()
}

// UpsertThumbnail stores an artifact; "" marks a confirmed empty deck
func (s *Store) UpsertThumbnail(id int, artifact string) {
	s.mu.Lock()
	s.thumbnails[id] = artifact
	s.mu.Unlock()
}

// SetOrder replaces the order snapshot wholesale
func (s *Store) SetOrder(ids []int) {
	s.mu.Lock()
	s.order = append([]int(nil), ids...)
	s.mu.Unlock()
}

// TouchThumbnail records a thumbnail generation time; false when the deck is unknown
func (s *Store) TouchThumbnail(id int, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.info[id]
	if !ok {
		return false
	}
	t := at
	info.LastThumbnailUpdate = &t
	return true
}

// MarkChecked records a cooldown checkpoint; false when the deck is unknown
func (s *Store) MarkChecked(id int, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.info[id]
	if !ok {
		return false
	}
	t := at
	info.LastChecked = &t
	return true
}
