// Package marketdata fetches per-company fundamentals from the
// upstream metrics API, with persistent cache-first behavior.
// Responses are stored as JSON blobs with expiration timestamps.
package marketdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Cache provides persistent storage for fetched metrics.
type Cache struct {
	db *sql.DB
}

// NewCache creates a new metrics cache.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// Init creates the cache table if it does not exist.
func (c *Cache) Init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS metrics_cache (
			ticker     TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create metrics_cache table: %w", err)
	}
	return nil
}

// Store saves data with expiration = now + ttl, upserting by ticker.
func (c *Cache) Store(ticker string, data interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO metrics_cache (ticker, data, expires_at) VALUES (?, ?, ?)",
		ticker, string(jsonData), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store metrics for %s: %w", ticker, err)
	}
	return nil
}

// GetIfFresh returns data only if expires_at > now, nil otherwise.
// Use Get() to retrieve stale data as a fallback when API calls fail.
func (c *Cache) GetIfFresh(ticker string) (json.RawMessage, error) {
	var data string
	err := c.db.QueryRow(
		"SELECT data FROM metrics_cache WHERE ticker = ? AND expires_at > ?",
		ticker, time.Now().Unix()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fresh metrics for %s: %w", ticker, err)
	}
	return json.RawMessage(data), nil
}

// Get returns cached data regardless of expiration. Stale data is
// better than no data when the upstream API is down.
func (c *Cache) Get(ticker string) (json.RawMessage, error) {
	var data string
	err := c.db.QueryRow(
		"SELECT data FROM metrics_cache WHERE ticker = ?", ticker).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics for %s: %w", ticker, err)
	}
	return json.RawMessage(data), nil
}

// CleanupExpired removes expired entries and returns how many were
// deleted.
func (c *Cache) CleanupExpired() (int64, error) {
	res, err := c.db.Exec("DELETE FROM metrics_cache WHERE expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics cache: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleaned cache rows: %w", err)
	}
	return deleted, nil
}
