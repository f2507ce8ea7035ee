// ABOUTME: Background scheduler running two-phase refresh passes over a batch of decks
// ABOUTME: Phase one classifies decks with minimal upstream calls, phase two regenerates at idle time

// Package scheduler keeps cached deck thumbnails in sync with the upstream source.
//
// A pass classifies a caller-chosen slice of the deck list in order. Decks in
// their refresh cooldown are skipped without any upstream call, decks whose
// relative list position and cached state prove them fresh are skipped too,
// and everything else is fetched (with jittered pauses between fetches) and
// checked for staleness. A run of consecutive skips ends the pass early.
// Decks that need work are then regenerated one at a time, yielding to the
// host between items.
//
// A Scheduler is not safe for concurrent passes over the same store; use
// workers.RefreshWorker to serialize them.
package scheduler

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"deckthumb-cache/core/cachestore"
	"deckthumb-cache/core/domain"
	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/ordering"
	"deckthumb-cache/core/staleness"
)

const (
	// DefaultBatchSize is the number of decks classified per pass
	DefaultBatchSize = 50

	// DefaultMaxConsecutiveSkips ends a pass after this many skips in a row
	DefaultMaxConsecutiveSkips = 5

	// DefaultJitterMin is the shortest pause between upstream fetches
	DefaultJitterMin = 500 * time.Millisecond

	// DefaultJitterMax is the longest pause between upstream fetches
	DefaultJitterMax = 2000 * time.Millisecond
)

// Config tunes a scheduler
type Config struct {
	BatchSize           int
	MaxConsecutiveSkips int
	JitterMin           time.Duration
	JitterMax           time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		BatchSize:           DefaultBatchSize,
		MaxConsecutiveSkips: DefaultMaxConsecutiveSkips,
		JitterMin:           DefaultJitterMin,
		JitterMax:           DefaultJitterMax,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = def.BatchSize
	}
	if c.MaxConsecutiveSkips <= 0 {
		c.MaxConsecutiveSkips = def.MaxConsecutiveSkips
	}
	if c.JitterMin < 0 {
		c.JitterMin = 0
	}
	if c.JitterMax < c.JitterMin {
		c.JitterMax = c.JitterMin
	}
	if c.JitterMin == 0 && c.JitterMax == 0 {
		c.JitterMin, c.JitterMax = def.JitterMin, def.JitterMax
	}
	return c
}

// PassRequest describes one background pass
type PassRequest struct {
	// Decks is the full current deck list in display order
	Decks []domain.DeckSummary

	// Start and Size select the batch within Decks; Size <= 0 uses the configured batch size
	Start int
	Size  int

	// Force is an explicit user refresh: no cooldown, no early exit, every fetched deck is regenerated
	Force bool

	// CommitOrder replaces the stored order snapshot with Decks at the end of the pass
	CommitOrder bool
}

// PassResult summarizes a pass
type PassResult struct {
	Classified       int
	Skipped          int
	Cooldown         int
	Fetched          int
	Failed           int
	Queued           int
	Regenerated      int
	GenerationFailed int
	Superseded       int
	EarlyExit        bool
	Disabled         bool
	Duration         time.Duration
}

// Scheduler runs refresh passes against one cache store
type Scheduler struct {
	store     *cachestore.Store
	detector  *staleness.Detector
	fetcher   interfaces.DeckFetcher
	generator interfaces.ThumbnailGenerator
	settings  interfaces.ConfigReader
	yielder   interfaces.IdleYielder
	logger    interfaces.Logger
	cfg       Config

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	randN func(n int64) int64

	// writeMu serializes per-deck writes between a pass and ApplyDetail
	writeMu sync.Mutex
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithConfig sets batch and pacing parameters
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = cfg.withDefaults()
	}
}

// WithDetector replaces the staleness detector. Without it the scheduler
// builds one sharing its clock.
func WithDetector(d *staleness.Detector) Option {
	return func(s *Scheduler) {
		if d != nil {
			s.detector = d
		}
	}
}

// WithConfigReader injects the host switches read at the start of every pass
func WithConfigReader(r interfaces.ConfigReader) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.settings = r
		}
	}
}

// WithYielder sets the idle yield used between regenerations
func WithYielder(y interfaces.IdleYielder) Option {
	return func(s *Scheduler) {
		if y != nil {
			s.yielder = y
		}
	}
}

// WithLogger sets the logger
func WithLogger(l interfaces.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper replaces the context-aware sleep used for fetch jitter
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithRand replaces the random source used for jitter
func WithRand(r *rand.Rand) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.randN = r.Int64N
		}
	}
}

// New creates a scheduler over store using the given collaborators
func New(store *cachestore.Store, fetcher interfaces.DeckFetcher, generator interfaces.ThumbnailGenerator, opts ...Option) *Scheduler {
	enabled := interfaces.StaticConfig{
		BackgroundRefreshEnabled:   true,
		ThumbnailGenerationEnabled: true,
	}
	s := &Scheduler{
		store:     store,
		fetcher:   fetcher,
		generator: generator,
		settings:  enabled,
		yielder:   NewTimerYielder(DefaultIdleFallback),
		logger:    interfaces.NopLogger{},
		cfg:       DefaultConfig(),
		now:       time.Now,
		sleep:     sleepContext,
		randN:     rand.Int64N,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector = staleness.NewDetector(staleness.WithClock(s.now))
	}
	return s
}

// Store returns the cache store the scheduler writes to
func (s *Scheduler) Store() *cachestore.Store {
	return s.store
}

// Run executes one pass. Per-deck failures are logged and counted, never returned;
// the only error is context cancellation.
func (s *Scheduler) Run(ctx context.Context, req PassRequest) (PassResult, error) {
	started := s.now()
	var res PassResult

	settings := s.settings.ReadConfig(ctx)
	if !settings.Enabled() {
		s.logger.Debug("Background refresh disabled, skipping pass", map[string]interface{}{
			"background_refresh":   settings.BackgroundRefreshEnabled,
			"thumbnail_generation": settings.ThumbnailGenerationEnabled,
		})
		res.Disabled = true
		return res, nil
	}

	batch := req.batch(s.cfg.BatchSize)
	tracker := ordering.NewTracker(s.store.Order(), domain.SummaryIDs(req.Decks))
	defer tracker.Reset()

	work, checkpointed, err := s.classify(ctx, batch, tracker, req.Force, &res)
	if checkpointed {
		s.saveInfo(ctx)
	}
	if err != nil {
		res.Duration = s.now().Sub(started)
		return res, err
	}

	if err := s.regenerate(ctx, work, &res); err != nil {
		res.Duration = s.now().Sub(started)
		return res, err
	}

	if req.CommitOrder {
		s.store.SetOrder(domain.SummaryIDs(req.Decks))
		if err := s.store.SaveOrder(ctx); err != nil {
			s.logger.Error("Failed to persist deck order", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	res.Duration = s.now().Sub(started)
	s.logger.Info("Deck refresh pass finished", map[string]interface{}{
		"classified":        res.Classified,
		"skipped":           res.Skipped,
		"cooldown":          res.Cooldown,
		"fetched":           res.Fetched,
		"failed":            res.Failed,
		"regenerated":       res.Regenerated,
		"generation_failed": res.GenerationFailed,
		"superseded":        res.Superseded,
		"early_exit":        res.EarlyExit,
		"force":             req.Force,
		"duration_ms":       res.Duration.Milliseconds(),
	})
	return res, nil
}

// batch returns the slice of decks the pass classifies
func (r PassRequest) batch(defaultSize int) []domain.DeckSummary {
	size := r.Size
	if size <= 0 {
		size = defaultSize
	}
	start := r.Start
	if start < 0 {
		start = 0
	}
	if start >= len(r.Decks) {
		return nil
	}
	end := start + size
	if end > len(r.Decks) {
		end = len(r.Decks)
	}
	return r.Decks[start:end]
}

func (s *Scheduler) saveInfo(ctx context.Context) {
	if err := s.store.SaveInfo(ctx); err != nil {
		s.logger.Error("Failed to persist deck info", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Scheduler) saveThumbnails(ctx context.Context) {
	if err := s.store.SaveThumbnails(ctx); err != nil {
		s.logger.Error("Failed to persist deck thumbnails", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
