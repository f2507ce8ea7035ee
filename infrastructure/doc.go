// Package infrastructure provides concrete implementations of the interfaces
// defined in the core package. These implementations handle external concerns
// such as storage substrates, HTTP communication, upstream services and logging.
//
// The infrastructure package is organized by technical concern:
//
// - cache/memory: in-process cache backed by patrickmn/go-cache
// - cache/redis: Redis string values via go-redis
// - cache/redisjson: RedisJSON documents via go-rejson
// - cache/sqlite: SQLite key-value table via go-sqlite3
// - http/standard: standard library HTTP client with retry logic
// - upstream: deck API fetcher and render service generator
// - logger/logrus: structured logger backed by logrus
//
// # Cache Implementations
//
// Every substrate reports a missing key as *errors.NotFoundError and treats
// a zero TTL as "keep forever".
//
//	cache := memory.NewMemoryCache()
//	err := cache.Set(ctx, "deck_info_cache", blob, 0)
//	value, err := cache.Get(ctx, "deck_info_cache")
//
//	cache, err := redis.NewRedisCache(config.RedisConfig{Address: "localhost:6379"})
//
//	cache, err := sqlite.NewSQLiteCache("deckthumb.db")
//	defer cache.Close()
//
// # HTTP Client
//
// The HTTP client retries network errors and 5xx replies:
//
//	client := standard.NewStandardHTTPClient(30 * time.Second)
//	resp, err := client.Get(ctx, "https://decks.example/decks/42")
//	if err != nil {
//	    // Handle error
//	}
//	defer resp.Body().Close()
//
// # Logger
//
//	logger := logrus.New(logrus.Options{Level: "debug", Format: "json"})
//	logger.Info("Regenerating deck thumbnail", map[string]interface{}{
//	    "deck_id": 42,
//	    "reason":  "hash_mismatch",
//	})
package infrastructure
