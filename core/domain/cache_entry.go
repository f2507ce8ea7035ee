// ABOUTME: Cached deck info model persisted by the cache store
// ABOUTME: Tracks content hash, content timestamps and thumbnail refresh bookkeeping

package domain

import "time"

// CachedDeckInfo is the persisted snapshot of a deck plus its bookkeeping
type CachedDeckInfo struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Main     []CardRef `json:"main"`
	Extra    []CardRef `json:"extra"`
	Side     []CardRef `json:"side"`

	// Hash is the content fingerprint of the deck at LastUpdated
	Hash string `json:"hash"`

	// LastUpdated is when the content last changed (or was first seen)
	LastUpdated time.Time `json:"lastUpdated"`

	// CardCount is backfilled on load when absent
	CardCount *CardCount `json:"cardCount,omitempty"`

	// LastThumbnailUpdate is when a thumbnail was last generated; drives the refresh cooldown
	LastThumbnailUpdate *time.Time `json:"lastThumbnailUpdate,omitempty"`

	// LastChecked is when a background pass last looked at the entry without regenerating it
	LastChecked *time.Time `json:"lastChecked,omitempty"`
}

// NewCachedDeckInfo builds a cache entry from freshly fetched detail
func NewCachedDeckInfo(d *DeckDetail, hash string, now time.Time) *CachedDeckInfo {
	count := d.CardCount()
	return &CachedDeckInfo{
		ID:          d.ID,
		Name:        d.Name,
		Category:    d.Category,
		Main:        cloneRefs(d.Main),
		Extra:       cloneRefs(d.Extra),
		Side:        cloneRefs(d.Side),
		Hash:        hash,
		LastUpdated: now,
		CardCount:   &count,
	}
}

// ComputedCardCount returns the card count derived from the stored lists
func (c *CachedDeckInfo) ComputedCardCount() CardCount {
	return CountCards(c.Main, c.Extra, c.Side)
}

// Clone returns a deep copy
func (c *CachedDeckInfo) Clone() *CachedDeckInfo {
	if c == nil {
		return nil
	}
	out := *c
	out.Main = cloneRefs(c.Main)
	out.Extra = cloneRefs(c.Extra)
	out.Side = cloneRefs(c.Side)
	if c.CardCount != nil {
		count := *c.CardCount
		out.CardCount = &count
	}
	if c.LastThumbnailUpdate != nil {
		t := *c.LastThumbnailUpdate
		out.LastThumbnailUpdate = &t
	}
	if c.LastChecked != nil {
		t := *c.LastChecked
		out.LastChecked = &t
	}
	return &out
}

func cloneRefs(refs []CardRef) []CardRef {
	if refs == nil {
		return nil
	}
	out := make([]CardRef, len(refs))
	copy(out, refs)
	return out
}

// RefreshConfig is the per-pass switch set read from the host configuration
type RefreshConfig struct {
	BackgroundRefreshEnabled   bool
	ThumbnailGenerationEnabled bool
}

// Enabled reports whether a background pass may run
func (c RefreshConfig) Enabled() bool {
	return c.BackgroundRefreshEnabled && c.ThumbnailGenerationEnabled
}
