// ABOUTME: Staleness detection deciding when a cached deck must be regenerated
// ABOUTME: Combines hash comparison, TTL expiry, missing thumbnails and the refresh cooldown

package staleness

import (
	"time"

	"deckthumb-cache/core/domain"
	"deckthumb-cache/core/fingerprint"
	"deckthumb-cache/core/interfaces"
)

const (
	// DefaultTTL forces a refresh even on a hash match, bounding undetected collisions
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultCooldown is the minimum gap between automatic regenerations of one deck
	DefaultCooldown = 24 * time.Hour
)

// Reason explains a verdict
type Reason string

const (
	ReasonNew              Reason = "new"
	ReasonHashMismatch     Reason = "hash_mismatch"
	ReasonExpired          Reason = "expired"
	ReasonMissingThumbnail Reason = "missing_thumbnail"
	ReasonFresh            Reason = "fresh"
)

// Verdict is the outcome of evaluating one deck
type Verdict struct {
	NeedsUpdate bool
	Reason      Reason
	Hash        string
}

// Detector evaluates cached decks against fresh detail
type Detector struct {
	ttl      time.Duration
	cooldown time.Duration
	now      func() time.Time
}

// Option configures a Detector
type Option func(*Detector)

// WithTTL sets the content TTL; non-positive values keep the default
func WithTTL(ttl time.Duration) Option {
	return func(d *Detector) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// WithCooldown sets the regeneration cooldown; non-positive values keep the default
func WithCooldown(cooldown time.Duration) Option {
	return func(d *Detector) {
		if cooldown > 0 {
			d.cooldown = cooldown
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDetector creates a detector with the default TTL and cooldown
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		ttl:      DefaultTTL,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// TTL returns the configured content TTL
func (d *Detector) TTL() time.Duration { return d.ttl }

// Cooldown returns the configured cooldown
func (d *Detector) Cooldown() time.Duration { return d.cooldown }

// NeedsRefresh is true when the deck was never cached or its fingerprint changed
func (d *Detector) NeedsRefresh(id int, fresh *domain.DeckDetail, store interfaces.DeckCacheReader) bool {
	cached := store.Info(id)
	if cached == nil {
		return true
	}
	return fingerprint.Fingerprint(fresh) != cached.Hash
}

// IsExpired is true when the cached content is older than ttl.
// A non-positive ttl means DefaultTTL.
func (d *Detector) IsExpired(cached *domain.CachedDeckInfo, ttl time.Duration) bool {
	if cached == nil {
		return true
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return d.now().Sub(cached.LastUpdated) > ttl
}

// MissingThumbnail is true when no thumbnail entry exists; an empty marker counts as present
func (d *Detector) MissingThumbnail(id int, store interfaces.DeckCacheReader) bool {
	_, ok := store.Thumbnail(id)
	return !ok
}

// InCooldown is true when a thumbnail was generated less than the cooldown ago.
// Only automatic background passes consult it.
func (d *Detector) InCooldown(cached *domain.CachedDeckInfo) bool {
	if cached == nil || cached.LastThumbnailUpdate == nil {
		return false
	}
	return d.now().Sub(*cached.LastThumbnailUpdate) < d.cooldown
}

// CachedFresh reports whether cached state alone proves the deck needs no work:
// an entry and a thumbnail exist and the content is within its TTL.
func (d *Detector) CachedFresh(id int, store interfaces.DeckCacheReader) bool {
	cached := store.Info(id)
	if cached == nil || d.MissingThumbnail(id, store) {
		return false
	}
	return !d.IsExpired(cached, d.ttl)
}

// Evaluate checks a freshly fetched deck against the cache
func (d *Detector) Evaluate(id int, fresh *domain.DeckDetail, store interfaces.DeckCacheReader) Verdict {
	hash := fingerprint.Fingerprint(fresh)
	cached := store.Info(id)

	switch {
	case cached == nil:
		return Verdict{NeedsUpdate: true, Reason: ReasonNew, Hash: hash}
	case hash != cached.Hash:
		return Verdict{NeedsUpdate: true, Reason: ReasonHashMismatch, Hash: hash}
	case d.IsExpired(cached, d.ttl):
		return Verdict{NeedsUpdate: true, Reason: ReasonExpired, Hash: hash}
	case d.MissingThumbnail(id, store):
		return Verdict{NeedsUpdate: true, Reason: ReasonMissingThumbnail, Hash: hash}
	default:
		return Verdict{NeedsUpdate: false, Reason: ReasonFresh, Hash: hash}
	}
}
