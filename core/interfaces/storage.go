// ABOUTME: Read-side contract of the deck cache store
// ABOUTME: Lets staleness checks consult cached state without owning it

package interfaces

import "deckthumb-cache/core/domain"

// DeckCacheReader is the read-only view of cached deck state.
// Returned values are copies; mutating them does not change the cache.
type DeckCacheReader interface {
	// Info returns the cached info for a deck, or nil when the deck was never seen
	Info(id int) *domain.CachedDeckInfo

	// Thumbnail returns the cached artifact and whether an entry exists.
	// An existing entry with an empty artifact is a confirmed empty deck.
	Thumbnail(id int) (string, bool)
}
