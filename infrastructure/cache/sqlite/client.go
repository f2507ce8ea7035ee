// ABOUTME: SQLite-based cache implementation for persistent caching
// ABOUTME: Provides a file-based substrate so the deck cache survives restarts

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	coreerrors "deckthumb-cache/core/errors"
	"deckthumb-cache/core/interfaces"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultCleanupInterval is how often expired records are purged
const DefaultCleanupInterval = 5 * time.Minute

// Client implements the Cache interface using SQLite
type Client struct {
	db       *sql.DB
	filePath string
	queries  *CacheQueryBuilder
	logger   interfaces.Logger
	now      func() time.Time
	cleanup  time.Duration
	stop     chan struct{}
	once     sync.Once
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used for key warnings and cleanup failures
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCleanupInterval sets the purge interval; non-positive disables the routine
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Client) {
		c.cleanup = d
	}
}

// WithClock replaces time.Now for expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewSQLiteCache creates a new SQLite cache client
func NewSQLiteCache(filePath string, opts ...Option) (*Client, error) {
	if filePath == "" {
		filePath = "deckthumb.db"
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	client := &Client{
		db:       db,
		filePath: filePath,
		queries:  NewCacheQueryBuilder(),
		logger:   interfaces.NopLogger{},
		now:      time.Now,
		cleanup:  DefaultCleanupInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(client)
	}

	if err := client.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if client.cleanup > 0 {
		go client.cleanupRoutine()
	}

	return client, nil
}

// initSchema creates the record table if it doesn't exist
func (c *Client) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			expiry INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_` + TableName + `_expiry ON ` + TableName + `(expiry);
	`

	_, err := c.db.Exec(query)
	return err
}

// Get retrieves a value from the cache
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key, c.logger); err != nil {
		return nil, err
	}

	query, params, err := c.queries.GetQuery(key, c.now().Unix())
	if err != nil {
		return nil, err
	}

	var value []byte
	err = c.db.QueryRowContext(ctx, query, params...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &coreerrors.NotFoundError{Resource: "cache key", ID: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}

	return value, nil
}

// Set stores a value with TTL; 0 never expires
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ValidateKey(key, c.logger); err != nil {
		return err
	}
	if err := ValidateValue(value); err != nil {
		return err
	}

	now := c.now()
	var expiry int64
	if ttl > 0 {
		expiry = now.Add(ttl).Unix()
	}

	query, params, err := c.queries.SetQuery(key, value, expiry, now.Unix())
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete removes a value from the cache
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key, c.logger); err != nil {
		return err
	}

	query, params, err := c.queries.DeleteQuery(key)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// cleanupRoutine periodically removes expired entries until Close
func (c *Client) cleanupRoutine() {
	ticker := time.NewTicker(c.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := c.Purge(context.Background()); err != nil {
				c.logger.Warn("SQLite cache cleanup failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		case <-c.stop:
			return
		}
	}
}

// Purge removes expired entries and returns how many were deleted
func (c *Client) Purge(ctx context.Context) (int64, error) {
	query, params, err := c.queries.CleanupQuery(c.now().Unix())
	if err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx, query, params...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close stops the cleanup routine and closes the database connection
func (c *Client) Close() error {
	c.once.Do(func() { close(c.stop) })
	return c.db.Close()
}

// Stats returns cache statistics
func (c *Client) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+TableName).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_entries"] = count

	var pageCount, pageSize int
	if err := c.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := c.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["db_size_bytes"] = pageCount * pageSize
		}
	}

	stats["file_path"] = c.filePath
	return stats, nil
}
