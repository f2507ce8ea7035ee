// ABOUTME: Collaborator interfaces consumed by the refresh engine
// ABOUTME: Fetching, thumbnail generation, configuration and idle scheduling are all injected

package interfaces

import (
	"context"

	"deckthumb-cache/core/domain"
)

// DeckFetcher loads full deck detail from the upstream source.
// Implementations own retries and backoff; a nil detail with a nil error
// means the deck no longer exists upstream.
type DeckFetcher interface {
	FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error)
}

// ThumbnailGenerator renders a deck into an encoded artifact (typically a data URI).
// A nil artifact means the deck has no visual representation and is cached as empty.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, deck *domain.DeckDetail, placementHints []int) (*string, error)
}

// ConfigReader exposes the host switches checked once at the start of every pass
type ConfigReader interface {
	ReadConfig(ctx context.Context) domain.RefreshConfig
}

// IdleYielder suspends until the host is idle enough to run the next regeneration
type IdleYielder interface {
	Yield(ctx context.Context) error
}

// DeckFetcherFunc adapts a function to DeckFetcher
type DeckFetcherFunc func(ctx context.Context, id int) (*domain.DeckDetail, error)

// FetchDeck calls f(ctx, id)
func (f DeckFetcherFunc) FetchDeck(ctx context.Context, id int) (*domain.DeckDetail, error) {
	return f(ctx, id)
}

// ThumbnailGeneratorFunc adapts a function to ThumbnailGenerator
type ThumbnailGeneratorFunc func(ctx context.Context, deck *domain.DeckDetail, placementHints []int) (*string, error)

// Generate calls f(ctx, deck, placementHints)
func (f ThumbnailGeneratorFunc) Generate(ctx context.Context, deck *domain.DeckDetail, placementHints []int) (*string, error) {
	return f(ctx, deck, placementHints)
}

// StaticConfig is a ConfigReader returning a fixed configuration
type StaticConfig domain.RefreshConfig

// ReadConfig returns the fixed configuration
func (c StaticConfig) ReadConfig(ctx context.Context) domain.RefreshConfig {
	return domain.RefreshConfig(c)
}
