// ABOUTME: Configuration options for the deckcache client
// ABOUTME: Provides functional options for substrates, collaborators and pass tuning

package deckcache

import (
	"time"

	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/scheduler"
	"deckthumb-cache/core/workers"
	"deckthumb-cache/infrastructure/upstream"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// WithCache sets the persistence substrate
func WithCache(cache interfaces.Cache) Option {
	return func(c *Config) error {
		if cache == nil {
			return NewError(ErrorTypeValidation, "cache cannot be nil")
		}
		c.Cache = cache
		return nil
	}
}

// WithKeyPrefix namespaces the storage records on a shared substrate
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) error {
		c.KeyPrefix = prefix
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithFetcher sets the deck fetch collaborator
func WithFetcher(fetcher interfaces.DeckFetcher) Option {
	return func(c *Config) error {
		c.Fetcher = fetcher
		return nil
	}
}

// WithGenerator sets the thumbnail generator
func WithGenerator(generator interfaces.ThumbnailGenerator) Option {
	return func(c *Config) error {
		c.Generator = generator
		return nil
	}
}

// WithUpstream wires the HTTP deck fetcher and render service generator.
// A nil client uses DefaultHTTPClient.
func WithUpstream(deckBaseURL, renderURL string, client interfaces.HTTPClient, requestsPerSecond float64) Option {
	return func(c *Config) error {
		if deckBaseURL == "" || renderURL == "" {
			return NewError(ErrorTypeValidation, "upstream URLs cannot be empty")
		}
		if client == nil {
			client = DefaultHTTPClient()
		}
		c.Fetcher = upstream.NewHTTPDeckFetcher(deckBaseURL, client, requestsPerSecond, 1)
		c.Generator = upstream.NewRemoteGenerator(renderURL, client)
		return nil
	}
}

// WithConfigReader sets the host switches consulted before every pass
func WithConfigReader(reader interfaces.ConfigReader) Option {
	return func(c *Config) error {
		c.ConfigReader = reader
		return nil
	}
}

// WithYielder sets the idle yield used between regenerations
func WithYielder(yielder interfaces.IdleYielder) Option {
	return func(c *Config) error {
		c.Yielder = yielder
		return nil
	}
}

// WithSchedulerConfig sets batch size, early exit and fetch jitter
func WithSchedulerConfig(cfg scheduler.Config) Option {
	return func(c *Config) error {
		c.SchedulerConfig = cfg
		return nil
	}
}

// WithTTL sets how long cached content is trusted
func WithTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		if ttl <= 0 {
			return NewError(ErrorTypeValidation, "ttl must be positive")
		}
		c.TTL = ttl
		return nil
	}
}

// WithCooldown sets the minimum time between automatic regenerations of a deck
func WithCooldown(cooldown time.Duration) Option {
	return func(c *Config) error {
		if cooldown <= 0 {
			return NewError(ErrorTypeValidation, "cooldown must be positive")
		}
		c.Cooldown = cooldown
		return nil
	}
}

// WithWorkerConfig sets the background queue configuration
func WithWorkerConfig(config workers.WorkerConfig) Option {
	return func(c *Config) error {
		c.WorkerConfig = config
		return nil
	}
}

// WithBackgroundProcessing enables or disables the background refresh worker
func WithBackgroundProcessing(enabled bool) Option {
	return func(c *Config) error {
		c.EnableBackgroundProcessing = enabled
		return nil
	}
}

// RefreshOption tunes a single pass
type RefreshOption func(*scheduler.PassRequest)

// WithForce runs an explicit user refresh: no cooldown, no early exit
func WithForce() RefreshOption {
	return func(r *scheduler.PassRequest) {
		r.Force = true
	}
}

// WithBatch selects the slice of the deck list the pass classifies
func WithBatch(start, size int) RefreshOption {
	return func(r *scheduler.PassRequest) {
		r.Start = start
		r.Size = size
	}
}

// WithCommitOrder controls whether the list order is stored at the end of the pass
func WithCommitOrder(commit bool) RefreshOption {
	return func(r *scheduler.PassRequest) {
		r.CommitOrder = commit
	}
}
