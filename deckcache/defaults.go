// ABOUTME: Default implementations for library dependencies
// ABOUTME: Provides factory functions for substrates, HTTP and logging

package deckcache

import (
	"os"
	"time"

	"deckthumb-cache/core/interfaces"
	"deckthumb-cache/core/scheduler"
	"deckthumb-cache/core/staleness"
	"deckthumb-cache/core/workers"
	"deckthumb-cache/infrastructure/cache/memory"
	"deckthumb-cache/infrastructure/cache/sqlite"
	httpInfra "deckthumb-cache/infrastructure/http/standard"
	loggerInfra "deckthumb-cache/infrastructure/logger/logrus"
)

// DefaultHTTPClient creates a default HTTP client with sensible timeouts
func DefaultHTTPClient() interfaces.HTTPClient {
	return httpInfra.NewStandardHTTPClient(30 * time.Second)
}

// DefaultMemoryCache creates a default in-memory cache
func DefaultMemoryCache() interfaces.Cache {
	return memory.NewMemoryCache()
}

// DefaultSQLiteCache creates a SQLite cache at the given file path
func DefaultSQLiteCache(filePath string) (*sqlite.Client, error) {
	return sqlite.NewSQLiteCache(filePath)
}

// DefaultLogger creates a text logger writing to stderr at info level
func DefaultLogger() interfaces.Logger {
	return loggerInfra.New(loggerInfra.Options{Level: "info", Format: "text", Output: os.Stderr})
}

// QuietLogger creates a logger that discards all output
func QuietLogger() interfaces.Logger {
	return interfaces.NopLogger{}
}

func defaultConfig() Config {
	return Config{
		Logger:                     QuietLogger(),
		SchedulerConfig:            scheduler.DefaultConfig(),
		TTL:                        staleness.DefaultTTL,
		Cooldown:                   staleness.DefaultCooldown,
		WorkerConfig:               workers.DefaultWorkerConfig(),
		EnableBackgroundProcessing: true,
	}
}

func validateConfig(c *Config) error {
	if c.Fetcher == nil {
		return ErrNoFetcher
	}
	if c.Generator == nil {
		return ErrNoGenerator
	}
	if c.Cache == nil {
		c.Cache = DefaultMemoryCache()
	}
	if c.Logger == nil {
		c.Logger = QuietLogger()
	}
	return nil
}
