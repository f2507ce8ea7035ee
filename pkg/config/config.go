// ABOUTME: Configuration management for the deck refresh service with environment variable support
// ABOUTME: Defines configuration structures for cache substrates, refresh pacing, upstream and logging

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"deckthumb-cache/pkg/utils/duration"
)

// Supported cache substrates
const (
	CacheTypeMemory    = "memory"
	CacheTypeRedis     = "redis"
	CacheTypeRedisJSON = "redisjson"
	CacheTypeSQLite    = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Server contains admin HTTP API configuration
	Server ServerConfig

	// Cache contains cache substrate configuration
	Cache CacheConfig

	// Refresh contains background pass configuration
	Refresh RefreshConfig

	// Upstream contains deck source and renderer configuration
	Upstream UpstreamConfig

	// Log contains logger configuration
	Log LogConfig
}

// ServerConfig holds admin HTTP API configuration
type ServerConfig struct {
	// Port is the port the admin API listens on; empty disables the API
	Port string

	// RateLimit is the number of requests allowed per client per window
	RateLimit int

	// RateWindow is the rate limit window
	RateWindow time.Duration
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (memory/redis/redisjson/sqlite)
	Type string

	// KeyPrefix namespaces the three persisted records
	KeyPrefix string

	// Redis contains Redis-specific configuration, shared by redis and redisjson
	Redis RedisConfig

	// Memory contains in-memory cache configuration
	Memory MemoryConfig

	// SQLite contains SQLite-specific configuration
	SQLite SQLiteConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// MemoryConfig holds in-memory cache configuration
type MemoryConfig struct {
	// DefaultExpiration is the default TTL for cache entries; 0 keeps entries forever
	DefaultExpiration time.Duration

	// CleanupInterval is how often expired entries are purged
	CleanupInterval time.Duration
}

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	// Path is the database file
	Path string
}

// RefreshConfig holds background pass configuration
type RefreshConfig struct {
	// Interval is the time between background passes
	Interval time.Duration

	BatchSize           int
	MaxConsecutiveSkips int
	TTL                 time.Duration
	Cooldown            time.Duration
	JitterMin           time.Duration
	JitterMax           time.Duration

	// IdleFallback is the pause before each regeneration
	IdleFallback time.Duration

	// RegenerationsPerSecond paces regenerations with a token bucket when positive
	RegenerationsPerSecond float64

	// QueueSize bounds pending pass requests
	QueueSize int
}

// UpstreamConfig holds deck source and renderer configuration
type UpstreamConfig struct {
	// DeckBaseURL serves GET /decks and GET /decks/{id}
	DeckBaseURL string

	// RenderURL receives POSTed decks and answers with a thumbnail
	RenderURL string

	// RequestsPerSecond throttles upstream fetches
	RequestsPerSecond float64

	// Burst is the fetch limiter burst
	Burst int

	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is one of debug/info/warn/error
	Level string

	// Format is text or json
	Format string

	// File enables a rotating log file instead of stdout when set
	File string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:       getEnvOrDefault("PORT", "8000"),
			RateLimit:  getEnvAsIntOrDefault("API_RATE_LIMIT", 100),
			RateWindow: getEnvAsDurationOrDefault("API_RATE_WINDOW", time.Minute),
		},
		Cache: CacheConfig{
			Type:      strings.ToLower(getEnvOrDefault("CACHE_TYPE", CacheTypeMemory)),
			KeyPrefix: getEnvOrDefault("CACHE_KEY_PREFIX", ""),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
			Memory: MemoryConfig{
				DefaultExpiration: getEnvAsDurationOrDefault("MEMORY_CACHE_EXPIRATION", 0),
				CleanupInterval:   getEnvAsDurationOrDefault("MEMORY_CACHE_CLEANUP", 10*time.Minute),
			},
			SQLite: SQLiteConfig{
				Path: getEnvOrDefault("SQLITE_PATH", "deckthumb.db"),
			},
		},
		Refresh: RefreshConfig{
			Interval:               getEnvAsDurationOrDefault("REFRESH_TIMER", time.Hour),
			BatchSize:              getEnvAsIntOrDefault("REFRESH_BATCH_SIZE", 50),
			MaxConsecutiveSkips:    getEnvAsIntOrDefault("REFRESH_MAX_CONSECUTIVE_SKIPS", 5),
			TTL:                    getEnvAsDurationOrDefault("REFRESH_TTL", 7*24*time.Hour),
			Cooldown:               getEnvAsDurationOrDefault("REFRESH_COOLDOWN", 24*time.Hour),
			JitterMin:              getEnvAsDurationOrDefault("REFRESH_JITTER_MIN", 500*time.Millisecond),
			JitterMax:              getEnvAsDurationOrDefault("REFRESH_JITTER_MAX", 2*time.Second),
			IdleFallback:           getEnvAsDurationOrDefault("REFRESH_IDLE_FALLBACK", 200*time.Millisecond),
			RegenerationsPerSecond: getEnvAsFloatOrDefault("REFRESH_REGENERATIONS_PER_SECOND", 0),
			QueueSize:              getEnvAsIntOrDefault("REFRESH_QUEUE_SIZE", 8),
		},
		Upstream: UpstreamConfig{
			DeckBaseURL:       strings.TrimRight(getEnvOrDefault("DECK_API_URL", "http://localhost:8080"), "/"),
			RenderURL:         getEnvOrDefault("RENDER_URL", "http://localhost:8081/render"),
			RequestsPerSecond: getEnvAsFloatOrDefault("UPSTREAM_RPS", 2),
			Burst:             getEnvAsIntOrDefault("UPSTREAM_BURST", 1),
			Timeout:           getEnvAsDurationOrDefault("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
			File:   getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault returns the environment variable as a duration or a default.
// Bare integers are read as seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := duration.Parse(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port != "" {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port: %s", c.Server.Port)
		}
		if c.Server.RateLimit < 0 || (c.Server.RateLimit > 0 && c.Server.RateWindow <= 0) {
			return errors.New("api rate limit needs a positive window")
		}
	}

	switch c.Cache.Type {
	case CacheTypeMemory:
	case CacheTypeRedis, CacheTypeRedisJSON:
		if c.Cache.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis cache")
		}
	case CacheTypeSQLite:
		if c.Cache.SQLite.Path == "" {
			return errors.New("sqlite path cannot be empty when using sqlite cache")
		}
	default:
		return fmt.Errorf("cache type must be one of %s, %s, %s or %s",
			CacheTypeMemory, CacheTypeRedis, CacheTypeRedisJSON, CacheTypeSQLite)
	}

	if c.Refresh.Interval < time.Second {
		return errors.New("refresh timer must be at least 1 second")
	}
	if c.Refresh.BatchSize < 1 {
		return errors.New("refresh batch size must be positive")
	}
	if c.Refresh.MaxConsecutiveSkips < 1 {
		return errors.New("max consecutive skips must be positive")
	}
	if c.Refresh.TTL <= 0 || c.Refresh.Cooldown <= 0 {
		return errors.New("refresh ttl and cooldown must be positive")
	}
	if c.Refresh.JitterMin < 0 || c.Refresh.JitterMax < c.Refresh.JitterMin {
		return errors.New("jitter bounds must satisfy 0 <= min <= max")
	}
	if c.Refresh.RegenerationsPerSecond < 0 {
		return errors.New("regenerations per second cannot be negative")
	}

	if c.Upstream.DeckBaseURL == "" {
		return errors.New("deck api url cannot be empty")
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return errors.New("upstream requests per second cannot be negative")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("log format must be 'text' or 'json'")
	}

	return nil
}
