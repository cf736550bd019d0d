// Package results persists screen runs and their per-ticker outcomes.
package results

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mkaravas/valuescreen/internal/domain"
)

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = errors.New("screen run not found")

const runsColumns = `id, started_at, finished_at, result_count, skip_count,
	score_mean, score_stddev, score_min, score_max`

const resultsColumns = `ticker, price, fcf, fcf_per_share, fcf_yield, roe, roic,
	sector, growth_rate, wacc, intrinsic_value, mos_value,
	discount_percent, upside_percent, quality_tier, margin_of_safety,
	value_trap, rating, signal, score, warnings`

// Repository handles screen run persistence.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new results repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "results").Logger(),
	}
}

// Init creates the run history tables if they do not exist.
func (r *Repository) Init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS screen_runs (
			id           TEXT PRIMARY KEY,
			started_at   TIMESTAMP NOT NULL,
			finished_at  TIMESTAMP NOT NULL,
			result_count INTEGER NOT NULL,
			skip_count   INTEGER NOT NULL,
			score_mean   REAL NOT NULL,
			score_stddev REAL NOT NULL,
			score_min    REAL NOT NULL,
			score_max    REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS screen_results (
			run_id           TEXT NOT NULL REFERENCES screen_runs(id) ON DELETE CASCADE,
			rank             INTEGER NOT NULL,
			ticker           TEXT NOT NULL,
			price            REAL NOT NULL,
			fcf              REAL NOT NULL,
			fcf_per_share    REAL NOT NULL,
			fcf_yield        REAL NOT NULL,
			roe              REAL NOT NULL,
			roic             REAL NOT NULL,
			sector           TEXT NOT NULL,
			growth_rate      REAL NOT NULL,
			wacc             REAL NOT NULL,
			intrinsic_value  REAL NOT NULL,
			mos_value        REAL NOT NULL,
			discount_percent REAL NOT NULL,
			upside_percent   REAL NOT NULL,
			quality_tier     TEXT NOT NULL,
			margin_of_safety REAL NOT NULL,
			value_trap       INTEGER NOT NULL,
			rating           TEXT NOT NULL,
			signal           TEXT NOT NULL,
			score            REAL NOT NULL,
			warnings         TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE TABLE IF NOT EXISTS screen_skips (
			run_id TEXT NOT NULL REFERENCES screen_runs(id) ON DELETE CASCADE,
			ticker TEXT NOT NULL,
			reason TEXT NOT NULL,
			PRIMARY KEY (run_id, ticker)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_results_ticker ON screen_results(ticker)`,
		`CREATE INDEX IF NOT EXISTS idx_screen_runs_finished ON screen_runs(finished_at)`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create run history schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores a completed run with its ranked results and skips in
// a single transaction.
func (r *Repository) SaveRun(run *domain.ScreenRun) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO screen_runs (`+runsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt,
		len(run.Results), len(run.Skipped),
		run.Stats.Mean, run.Stats.StdDev, run.Stats.Min, run.Stats.Max)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	resultStmt, err := tx.Prepare(`
		INSERT INTO screen_results (run_id, rank, ` + resultsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer resultStmt.Close()

	for rank, res := range run.Results {
		_, err = resultStmt.Exec(
			run.ID, rank+1,
			res.Ticker, res.Price, res.FCF, res.FCFPerShare, res.FCFYield,
			res.ROE, res.ROIC, res.Sector, res.GrowthRate, res.WACC,
			res.IntrinsicValue, res.MOSValue, res.DiscountPercent, res.UpsidePercent,
			string(res.QualityTier), res.MarginOfSafety, res.ValueTrap,
			string(res.Rating), string(res.Signal), res.Score,
			encodeWarnings(res.Warnings))
		if err != nil {
			return fmt.Errorf("failed to insert result %s for run %s: %w", res.Ticker, run.ID, err)
		}
	}

	for _, skip := range run.Skipped {
		_, err = tx.Exec(`INSERT INTO screen_skips (run_id, ticker, reason) VALUES (?, ?, ?)`,
			run.ID, skip.Ticker, skip.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert skip %s for run %s: %w", skip.Ticker, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	r.log.Info().
		Str("run_id", run.ID).
		Int("results", len(run.Results)).
		Int("skipped", len(run.Skipped)).
		Msg("Saved screen run")
	return nil
}

// GetRun loads a run by id with its ranked results and skips.
func (r *Repository) GetRun(id string) (*domain.ScreenRun, error) {
	run := &domain.ScreenRun{ID: id}

	err := r.db.QueryRow(`
		SELECT started_at, finished_at, result_count,
		       score_mean, score_stddev, score_min, score_max
		FROM screen_runs WHERE id = ?`, id).Scan(
		&run.StartedAt, &run.FinishedAt, &run.Stats.Count,
		&run.Stats.Mean, &run.Stats.StdDev, &run.Stats.Min, &run.Stats.Max)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	run.Results, err = r.loadResults(id)
	if err != nil {
		return nil, err
	}
	run.Skipped, err = r.loadSkips(id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun loads the most recently finished run, or ErrRunNotFound
// when no run has been stored yet.
func (r *Repository) LatestRun() (*domain.ScreenRun, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM screen_runs ORDER BY finished_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}
	return r.GetRun(id)
}

// ListRuns returns run summaries newest first, without per-ticker rows.
func (r *Repository) ListRuns(limit int) ([]domain.ScreenRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT `+runsColumns+`
		FROM screen_runs ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ScreenRun
	for rows.Next() {
		var run domain.ScreenRun
		var skipCount int
		err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt,
			&run.Stats.Count, &skipCount,
			&run.Stats.Mean, &run.Stats.StdDev, &run.Stats.Min, &run.Stats.Max)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run summaries: %w", err)
	}
	return runs, nil
}

// PruneRuns deletes all but the newest keep runs. Cascades remove the
// per-ticker rows.
func (r *Repository) PruneRuns(keep int) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive, got %d", keep)
	}
	res, err := r.db.Exec(`
		DELETE FROM screen_runs WHERE id NOT IN (
			SELECT id FROM screen_runs ORDER BY finished_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned runs: %w", err)
	}
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Int("kept", keep).Msg("Pruned old screen runs")
	}
	return deleted, nil
}

func (r *Repository) loadResults(runID string) ([]domain.ValuationResult, error) {
	rows, err := r.db.Query(`
		SELECT `+resultsColumns+`
		FROM screen_results WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []domain.ValuationResult
	for rows.Next() {
		var res domain.ValuationResult
		var tier, rating, signal, warnings string
		err := rows.Scan(
			&res.Ticker, &res.Price, &res.FCF, &res.FCFPerShare, &res.FCFYield,
			&res.ROE, &res.ROIC, &res.Sector, &res.GrowthRate, &res.WACC,
			&res.IntrinsicValue, &res.MOSValue, &res.DiscountPercent, &res.UpsidePercent,
			&tier, &res.MarginOfSafety, &res.ValueTrap,
			&rating, &signal, &res.Score, &warnings)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result for run %s: %w", runID, err)
		}
		res.QualityTier = domain.QualityTier(tier)
		res.Rating = domain.Rating(rating)
		res.Signal = domain.Signal(signal)
		res.Warnings = decodeWarnings(warnings)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results for run %s: %w", runID, err)
	}
	return results, nil
}

func (r *Repository) loadSkips(runID string) ([]domain.SkippedTicker, error) {
	rows, err := r.db.Query(`
		SELECT ticker, reason FROM screen_skips WHERE run_id = ? ORDER BY ticker`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skips for run %s: %w", runID, err)
	}
	defer rows.Close()

	var skips []domain.SkippedTicker
	for rows.Next() {
		var skip domain.SkippedTicker
		if err := rows.Scan(&skip.Ticker, &skip.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan skip for run %s: %w", runID, err)
		}
		skips = append(skips, skip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate skips for run %s: %w", runID, err)
	}
	return skips, nil
}

// Warnings are stored comma-joined; none of the warning kinds contain
// commas.
func encodeWarnings(warnings []domain.WarningKind) string {
	if len(warnings) == 0 {
		return ""
	}
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = string(w)
	}
	return strings.Join(parts, ",")
}

func decodeWarnings(encoded string) []domain.WarningKind {
	if encoded == "" {
		return nil
	}
	parts := strings.Split(encoded, ",")
	warnings := make([]domain.WarningKind, len(parts))
	for i, p := range parts {
		warnings[i] = domain.WarningKind(p)
	}
	return warnings
}
