// ABOUTME: Main client for the deckcache library keeping deck thumbnails fresh
// ABOUTME: Offers a clean API over the cache store, scheduler and background worker

// Package deckcache is the embeddable entry point of the thumbnail cache.
//
//	client, err := deckcache.NewClient(
//		deckcache.WithUpstream("https://decks.example", "https://render.example/render", nil, 2),
//		deckcache.WithCache(deckcache.DefaultMemoryCache()),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	result, err := client.Refresh(ctx, decks)
package deckcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"deckthumb-cache/core/cachestore"
	"deckthumb-cache/core/domain"
	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/scheduler"
	"deckthumb-cache/core/staleness"
	"deckthumb-cache/core/workers"
)

// Client is the main entry point for the deckcache library
type Client struct {
	store     *cachestore.Store
	scheduler *scheduler.Scheduler
	runner    *serialRunner

	// Worker for background passes
	refreshWorker *workers.RefreshWorker

	config Config
	closed atomic.Bool
}

// Config holds the configuration for the client
type Config struct {
	// Cache is the persistence substrate; defaults to an in-memory cache
	Cache interfaces.Cache

	// KeyPrefix namespaces the storage records
	KeyPrefix string

	// Logger configuration
	Logger interfaces.Logger

	// Upstream collaborators
	Fetcher   interfaces.DeckFetcher
	Generator interfaces.ThumbnailGenerator

	// Host hooks
	ConfigReader interfaces.ConfigReader
	Yielder      interfaces.IdleYielder

	// Pass tuning
	SchedulerConfig scheduler.Config
	TTL             time.Duration
	Cooldown        time.Duration

	// Worker configuration
	WorkerConfig workers.WorkerConfig

	// Enable background processing
	EnableBackgroundProcessing bool
}

// serialRunner keeps passes on one store from overlapping
type serialRunner struct {
	mu        sync.Mutex
	scheduler *scheduler.Scheduler
}

func (r *serialRunner) Run(ctx context.Context, req scheduler.PassRequest) (scheduler.PassResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scheduler.Run(ctx, req)
}

// NewClient creates a new client with the given options and loads the cached state
func NewClient(options ...Option) (*Client, error) {
	config := defaultConfig()

	for _, opt := range options {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	store := cachestore.NewStore(config.Cache,
		cachestore.WithKeys(cachestore.PrefixedKeys(config.KeyPrefix)),
		cachestore.WithLogger(config.Logger),
	)
	store.Load(context.Background())

	detector := staleness.NewDetector(
		staleness.WithTTL(config.TTL),
		staleness.WithCooldown(config.Cooldown),
	)

	sched := scheduler.New(store, config.Fetcher, config.Generator,
		scheduler.WithDetector(detector),
		scheduler.WithConfig(config.SchedulerConfig),
		scheduler.WithConfigReader(config.ConfigReader),
		scheduler.WithYielder(config.Yielder),
		scheduler.WithLogger(config.Logger),
	)

	client := &Client{
		store:     store,
		scheduler: sched,
		runner:    &serialRunner{scheduler: sched},
		config:    config,
	}

	if config.EnableBackgroundProcessing {
		client.refreshWorker = workers.NewRefreshWorker(client.runner, config.WorkerConfig, config.Logger)
		if err := client.refreshWorker.Start(); err != nil {
			return nil, wrapError(err, "failed to start refresh worker")
		}
	}

	config.Logger.Info("Deck cache client ready", map[string]interface{}{
		"cached_decks":      store.InfoCount(),
		"cached_thumbnails": store.ThumbnailCount(),
		"background":        config.EnableBackgroundProcessing,
	})

	return client, nil
}

// Close stops the background worker. Cached state is already persisted by each pass.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.refreshWorker != nil {
		return c.refreshWorker.Stop()
	}
	return nil
}

func buildRequest(decks []domain.DeckSummary, opts []RefreshOption) scheduler.PassRequest {
	req := scheduler.PassRequest{Decks: decks, CommitOrder: true}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Refresh runs one pass over decks and waits for it to finish.
// With background processing enabled the pass is queued behind any running pass.
func (c *Client) Refresh(ctx context.Context, decks []domain.DeckSummary, opts ...RefreshOption) (scheduler.PassResult, error) {
	if c.closed.Load() {
		return scheduler.PassResult{}, ErrClientClosed
	}
	req := buildRequest(decks, opts)

	if c.refreshWorker == nil {
		res, err := c.runner.Run(ctx, req)
		return res, wrapError(err, "refresh pass interrupted")
	}

	done, err := c.refreshWorker.Submit(ctx, req)
	if err != nil {
		return scheduler.PassResult{}, wrapError(err, "failed to queue refresh pass")
	}
	select {
	case outcome := <-done:
		return outcome.Result, wrapError(outcome.Err, "refresh pass interrupted")
	case <-ctx.Done():
		return scheduler.PassResult{}, wrapError(ctx.Err(), "refresh pass abandoned")
	}
}

// RefreshAsync queues a pass and returns immediately.
// The channel receives exactly one outcome.
func (c *Client) RefreshAsync(ctx context.Context, decks []domain.DeckSummary, opts ...RefreshOption) (<-chan workers.PassOutcome, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	if c.refreshWorker == nil {
		return nil, ErrBackgroundDisabled
	}
	done, err := c.refreshWorker.Submit(ctx, buildRequest(decks, opts))
	if err != nil {
		return nil, wrapError(err, "failed to queue refresh pass")
	}
	return done, nil
}

// ApplyDetail updates the cache from deck detail the caller already holds,
// e.g. right after the user saved the deck. Returns whether it was regenerated.
// It may run while a pass is in flight; the pass then leaves this deck alone.
func (c *Client) ApplyDetail(ctx context.Context, detail *domain.DeckDetail) (bool, error) {
	if c.closed.Load() {
		return false, ErrClientClosed
	}
	if detail == nil {
		return false, NewError(ErrorTypeValidation, "deck detail cannot be nil")
	}
	if err := detail.Validate(); err != nil {
		return false, NewError(ErrorTypeValidation, "invalid deck detail").WithCause(err).WithContext("deck_id", detail.ID)
	}
	regenerated, err := c.scheduler.ApplyDetail(ctx, detail)
	if err != nil {
		return regenerated, wrapError(err, "failed to apply deck detail")
	}
	return regenerated, nil
}

// Thumbnail returns the cached artifact for a deck.
// ok is false when the deck has no entry; an empty artifact with ok marks an empty deck.
func (c *Client) Thumbnail(id int) (artifact string, ok bool) {
	return c.store.Thumbnail(id)
}

// Info returns a copy of the cached info for a deck, or nil
func (c *Client) Info(id int) *domain.CachedDeckInfo {
	return c.store.Info(id)
}

// Stats returns the number of cached deck infos and thumbnails
func (c *Client) Stats() (infos, thumbnails int) {
	return c.store.InfoCount(), c.store.ThumbnailCount()
}
