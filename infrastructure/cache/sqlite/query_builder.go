// ABOUTME: Safe SQL query builder for SQLite cache operations
// ABOUTME: Enforces parameterization and validates identifiers, keys and values

package sqlite

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"deckthumb-cache/core/interfaces"
)

// TableName is the table holding persisted records
const TableName = "deck_records"

// QueryBuilder provides a safe way to build SQL queries with automatic parameterization
type QueryBuilder struct {
	query  string
	params []interface{}
	err    error
}

// Condition is one column comparison inside a WHERE clause
type Condition struct {
	Column   string
	Operator string
	Value    interface{}
}

// Table and column name validation - only alphanumeric, underscore allowed
var (
	safeNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

	allowedOperators = map[string]bool{
		"=":  true,
		"!=": true,
		">":  true,
		"<":  true,
		">=": true,
		"<=": true,
	}

	// Maximum lengths to prevent abuse
	maxKeyLength = 255

	// MaxValueLength bounds a single record; the thumbnails record holds every artifact
	MaxValueLength = 64 * 1024 * 1024
)

// NewQueryBuilder creates a new query builder instance
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{
		params: make([]interface{}, 0),
	}
}

// validateName validates table/column names to prevent SQL injection
func validateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}

	if !safeNamePattern.MatchString(name) {
		return fmt.Errorf("invalid name: %s (only alphanumeric and underscore allowed)", name)
	}

	if len(name) > 64 {
		return fmt.Errorf("name too long: %s (max 64 characters)", name)
	}

	return nil
}

// fail records the first error; later calls are no-ops
func (qb *QueryBuilder) fail(err error) *QueryBuilder {
	if qb.err == nil {
		qb.err = err
	}
	return qb
}

// Select builds a SELECT query
func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	for _, col := range columns {
		if err := validateName(col); err != nil {
			return qb.fail(err)
		}
	}

	if len(columns) == 0 {
		qb.query = "SELECT * "
	} else {
		qb.query = "SELECT " + strings.Join(columns, ", ") + " "
	}
	return qb
}

// From adds FROM clause
func (qb *QueryBuilder) From(table string) *QueryBuilder {
	if err := validateName(table); err != nil {
		return qb.fail(err)
	}
	qb.query += "FROM " + table + " "
	return qb
}

// Where adds a parameterized condition, joined with AND
func (qb *QueryBuilder) Where(column string, operator string, value interface{}) *QueryBuilder {
	return qb.WhereAny(Condition{Column: column, Operator: operator, Value: value})
}

// WhereAny adds a parenthesised group of conditions joined with OR
func (qb *QueryBuilder) WhereAny(conds ...Condition) *QueryBuilder {
	if len(conds) == 0 {
		return qb
	}

	parts := make([]string, 0, len(conds))
	params := make([]interface{}, 0, len(conds))
	for _, c := range conds {
		if err := validateName(c.Column); err != nil {
			return qb.fail(err)
		}
		if !allowedOperators[c.Operator] {
			return qb.fail(fmt.Errorf("operator not allowed: %q", c.Operator))
		}
		parts = append(parts, c.Column+" "+c.Operator+" ?")
		params = append(params, c.Value)
	}

	if strings.Contains(qb.query, "WHERE") {
		qb.query += "AND "
	} else {
		qb.query += "WHERE "
	}

	clause := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		clause = "(" + clause + ")"
	}
	qb.query += clause + " "
	qb.params = append(qb.params, params...)
	return qb
}

// InsertOrReplace builds an INSERT OR REPLACE query
func (qb *QueryBuilder) InsertOrReplace(table string) *QueryBuilder {
	if err := validateName(table); err != nil {
		return qb.fail(err)
	}
	qb.query = "INSERT OR REPLACE INTO " + table + " "
	return qb
}

// Values adds VALUES clause
func (qb *QueryBuilder) Values(columns []string, values []interface{}) *QueryBuilder {
	if len(columns) != len(values) {
		return qb.fail(errors.New("column and value counts differ"))
	}
	if len(columns) == 0 {
		return qb.fail(errors.New("no columns given"))
	}

	for _, col := range columns {
		if err := validateName(col); err != nil {
			return qb.fail(err)
		}
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	qb.query += "(" + strings.Join(columns, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	qb.params = append(qb.params, values...)
	return qb
}

// Delete builds a DELETE query
func (qb *QueryBuilder) Delete(table string) *QueryBuilder {
	if err := validateName(table); err != nil {
		return qb.fail(err)
	}
	qb.query = "DELETE FROM " + table + " "
	return qb
}

// Build returns the built query and parameters, or the first validation error
func (qb *QueryBuilder) Build() (string, []interface{}, error) {
	if qb.err != nil {
		return "", nil, qb.err
	}
	return strings.TrimSpace(qb.query), qb.params, nil
}

// ValidateKey validates cache key to prevent injection and other issues
func ValidateKey(key string, logger interfaces.Logger) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("key too long: max %d characters", maxKeyLength)
	}

	// Check for null bytes which can cause issues
	if strings.Contains(key, "\x00") {
		return errors.New("key cannot contain null bytes")
	}

	// Parameterization handles these; they only earn a warning
	suspiciousPatterns := []string{"--", "/*", "*/", ";", "'", "\"", "\\", "\n", "\r", "\t"}

	for _, pattern := range suspiciousPatterns {
		if strings.Contains(key, pattern) && logger != nil {
			logger.Warn("Suspicious pattern detected in cache key", map[string]interface{}{
				"pattern":     pattern,
				"key_length":  len(key),
				"key_preview": truncateKey(key),
			})
		}
	}

	return nil
}

// truncateKey returns a safe preview of the key for logging
func truncateKey(key string) string {
	const maxPreview = 50
	if len(key) <= maxPreview {
		return key
	}
	return key[:maxPreview] + "..."
}

// ValidateValue validates cache value
func ValidateValue(value []byte) error {
	if len(value) == 0 {
		return errors.New("value cannot be empty")
	}

	if len(value) > MaxValueLength {
		return fmt.Errorf("value too large: max %d bytes", MaxValueLength)
	}

	return nil
}

// CacheQueryBuilder provides pre-built queries for cache operations
type CacheQueryBuilder struct {
	table string
}

// NewCacheQueryBuilder creates a cache-specific query builder
func NewCacheQueryBuilder() *CacheQueryBuilder {
	return &CacheQueryBuilder{table: TableName}
}

// GetQuery selects a live record; expiry 0 never expires
func (cq *CacheQueryBuilder) GetQuery(key string, now int64) (string, []interface{}, error) {
	return NewQueryBuilder().
		Select("value").
		From(cq.table).
		Where("key", "=", key).
		WhereAny(
			Condition{Column: "expiry", Operator: "=", Value: 0},
			Condition{Column: "expiry", Operator: ">", Value: now},
		).
		Build()
}

// SetQuery upserts a record
func (cq *CacheQueryBuilder) SetQuery(key string, value []byte, expiry, updatedAt int64) (string, []interface{}, error) {
	return NewQueryBuilder().
		InsertOrReplace(cq.table).
		Values([]string{"key", "value", "expiry", "updated_at"}, []interface{}{key, value, expiry, updatedAt}).
		Build()
}

// DeleteQuery removes one record
func (cq *CacheQueryBuilder) DeleteQuery(key string) (string, []interface{}, error) {
	return NewQueryBuilder().Delete(cq.table).Where("key", "=", key).Build()
}

// CleanupQuery removes expired records
func (cq *CacheQueryBuilder) CleanupQuery(now int64) (string, []interface{}, error) {
	return NewQueryBuilder().
		Delete(cq.table).
		Where("expiry", "!=", 0).
		Where("expiry", "<=", now).
		Build()
}
