package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkaravas/valuescreen/internal/domain"
)

// ErrTickerNotFound is returned when the upstream API has no data for
// a ticker.
var ErrTickerNotFound = errors.New("ticker not found upstream")

// Provider supplies fundamentals for a single ticker.
type Provider interface {
	FetchMetrics(ctx context.Context, ticker string) (*domain.StockMetrics, error)
}

// Client fetches fundamentals over HTTP with cache-first behavior.
// cache is optional - if nil, caching is disabled.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	cache   *Cache
	ttl     time.Duration
}

// NewClient creates a new metrics API client.
func NewClient(baseURL string, timeout, cacheTTL time.Duration, cache *Cache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "marketdata").Logger(),
		cache:   cache,
		ttl:     cacheTTL,
	}
}

// FetchMetrics returns fundamentals for a ticker.
// If the API fails, returns stale cached data if available.
func (c *Client) FetchMetrics(ctx context.Context, ticker string) (*domain.StockMetrics, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is empty")
	}

	// Check persistent cache for fresh data
	if c.cache != nil {
		data, err := c.cache.GetIfFresh(ticker)
		if err == nil && data != nil {
			var cached domain.StockMetrics
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("ticker", ticker).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/v1/metrics/%s", c.baseURL, ticker)
	c.log.Debug().Str("url", url).Msg("Fetching metrics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", ticker, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStaleFromCache(ticker); ok {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("API failed, using stale cached metrics")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleFromCache(ticker); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("ticker", ticker).
				Msg("API error, using stale cached metrics")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d for %s", resp.StatusCode, ticker)
	}

	var metrics domain.StockMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		if stale, ok := c.getStaleFromCache(ticker); ok {
			c.log.Warn().Err(err).Str("ticker", ticker).
				Msg("Failed to parse API response, using stale cached metrics")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse response for %s: %w", ticker, err)
	}
	metrics.Ticker = ticker

	if c.cache != nil {
		if err := c.cache.Store(ticker, &metrics, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache metrics")
		}
	}

	c.log.Info().Str("ticker", ticker).Float64("price", metrics.CurrentPrice).Msg("Fetched metrics")
	return &metrics, nil
}

// getStaleFromCache retrieves cached metrics even if expired.
func (c *Client) getStaleFromCache(ticker string) (*domain.StockMetrics, bool) {
	if c.cache == nil {
		return nil, false
	}

	data, err := c.cache.Get(ticker)
	if err != nil || data == nil {
		return nil, false
	}

	var cached domain.StockMetrics
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}
