// ABOUTME: Post-load normalization of cached deck info
// ABOUTME: Backfills derived card counts so read paths never see them unset

package cachestore

import "deckthumb-cache/core/domain"

// NormalizeInfo drops null entries and backfills or corrects card counts.
// Returns the number of entries that were changed.
func NormalizeInfo(info map[int]*domain.CachedDeckInfo) int {
	fixed := 0
	for id, entry := range info {
		if entry == nil {
			delete(info, id)
			fixed++
			continue
		}
		if entry.ID == 0 {
			entry.ID = id
		}
		if normalizeEntry(entry) {
			fixed++
		}
	}
	return fixed
}

// normalizeEntry makes CardCount match the stored lists
func normalizeEntry(entry *domain.CachedDeckInfo) bool {
	computed := entry.ComputedCardCount()
	if entry.CardCount != nil && *entry.CardCount == computed {
		return false
	}
	entry.CardCount = &computed
	return true
}
