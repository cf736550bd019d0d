// Package universe manages the ticker universe the nightly screen
// runs over.
package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Ticker is one entry of the screening universe.
type Ticker struct {
	Symbol  string    `json:"symbol"`
	Sector  string    `json:"sector,omitempty"`
	Active  bool      `json:"active"`
	AddedAt time.Time `json:"added_at"`
}

// tickersColumns is the column list for the tickers table. Explicit to
// avoid SELECT * breaking on schema changes.
const tickersColumns = `symbol, sector, active, added_at`

// Repository handles ticker universe database operations.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new universe repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "universe").Logger(),
	}
}

// Init creates the tickers table if it does not exist.
func (r *Repository) Init() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS tickers (
			symbol   TEXT PRIMARY KEY,
			sector   TEXT NOT NULL DEFAULT '',
			active   INTEGER NOT NULL DEFAULT 1,
			added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create tickers table: %w", err)
	}
	return nil
}

// Add inserts or updates a ticker. Symbols are normalized to upper
// case; re-adding an inactive ticker reactivates it.
func (r *Repository) Add(symbol, sector string) error {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return fmt.Errorf("ticker symbol is empty")
	}

	_, err := r.db.Exec(`
		INSERT INTO tickers (symbol, sector, active, added_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(symbol) DO UPDATE SET sector = excluded.sector, active = 1`,
		symbol, strings.ToUpper(strings.TrimSpace(sector)))
	if err != nil {
		return fmt.Errorf("failed to add ticker %s: %w", symbol, err)
	}
	return nil
}

// Deactivate removes a ticker from future screens without losing it.
func (r *Repository) Deactivate(symbol string) error {
	res, err := r.db.Exec(`UPDATE tickers SET active = 0 WHERE symbol = ?`, normalizeSymbol(symbol))
	if err != nil {
		return fmt.Errorf("failed to deactivate ticker %s: %w", symbol, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation of %s: %w", symbol, err)
	}
	if affected == 0 {
		return fmt.Errorf("ticker %s not found", normalizeSymbol(symbol))
	}
	return nil
}

// ListActive returns the active universe ordered by symbol for
// deterministic screen input.
func (r *Repository) ListActive() ([]Ticker, error) {
	rows, err := r.db.Query("SELECT " + tickersColumns + " FROM tickers WHERE active = 1 ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query active tickers: %w", err)
	}
	defer rows.Close()

	return scanTickers(rows)
}

// ListAll returns every ticker, active or not, ordered by symbol.
func (r *Repository) ListAll() ([]Ticker, error) {
	rows, err := r.db.Query("SELECT " + tickersColumns + " FROM tickers ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	return scanTickers(rows)
}

// Count returns the number of active tickers.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM tickers WHERE active = 1").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickers: %w", err)
	}
	return count, nil
}

// Seed inserts the default universe when the table is empty. Existing
// data is never touched.
func (r *Repository) Seed(defaults map[string]string) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for symbol, sector := range defaults {
		if err := r.Add(symbol, sector); err != nil {
			return err
		}
	}
	r.log.Info().Int("tickers", len(defaults)).Msg("Seeded default universe")
	return nil
}

// DefaultUniverse is the curated starter list of well-known large
// caps with their sector labels.
func DefaultUniverse() map[string]string {
	return map[string]string{
		"AAPL": "TECH_LARGE", "MSFT": "TECH_LARGE", "GOOGL": "TECH_LARGE", "NVDA": "TECH_LARGE",
		"AMZN": "TECH_GROWTH", "TSLA": "TECH_GROWTH", "AMD": "TECH_GROWTH", "INTC": "TECH_LARGE",
		"JNJ": "HEALTHCARE", "UNH": "HEALTHCARE", "ABT": "HEALTHCARE",
		"V": "NETWORK", "MA": "NETWORK", "PYPL": "FINTECH",
		"JPM": "FINANCIALS",
		"PG":  "CONSUMER", "KO": "CONSUMER", "PEP": "CONSUMER", "WMT": "CONSUMER", "MCD": "CONSUMER",
		"HD": "RETAIL", "NKE": "RETAIL", "SBUX": "RETAIL",
		"DIS": "MEDIA", "NFLX": "MEDIA", "META": "SOCIAL_MEDIA",
		"BA": "INDUSTRIALS", "IBM": "INDUSTRIALS",
		"T": "TELECOM", "VZ": "TELECOM",
	}
}

func scanTickers(rows *sql.Rows) ([]Ticker, error) {
	var tickers []Ticker
	for rows.Next() {
		var t Ticker
		if err := rows.Scan(&t.Symbol, &t.Sector, &t.Active, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickers: %w", err)
	}
	return tickers, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
