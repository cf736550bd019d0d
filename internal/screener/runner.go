package screener

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkaravas/valuescreen/internal/domain"
	"github.com/mkaravas/valuescreen/internal/export"
	"github.com/mkaravas/valuescreen/internal/marketdata"
	"github.com/mkaravas/valuescreen/internal/results"
	"github.com/mkaravas/valuescreen/internal/universe"
)

// keepRuns bounds the stored run history.
const keepRuns = 90

// Runner drives the full screen pipeline: load the active universe,
// fetch fundamentals, analyze, persist the ranked run. It implements
// the scheduler Job interface so it can run nightly as well as on
// demand.
type Runner struct {
	service  *Service
	provider marketdata.Provider
	universe *universe.Repository
	results  *results.Repository
	timeout  time.Duration
	topN     int
	log      zerolog.Logger
}

// NewRunner creates a screen pipeline runner. timeout bounds a whole
// run including fetches; topN caps the summary table logged after
// each run.
func NewRunner(service *Service, provider marketdata.Provider, uni *universe.Repository,
	res *results.Repository, timeout time.Duration, topN int, log zerolog.Logger) *Runner {
	return &Runner{
		service:  service,
		provider: provider,
		universe: uni,
		results:  res,
		timeout:  timeout,
		topN:     topN,
		log:      log.With().Str("component", "screen_runner").Logger(),
	}
}

// Name implements the scheduler Job interface.
func (r *Runner) Name() string {
	return "screen_universe"
}

// Run implements the scheduler Job interface.
func (r *Runner) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	_, err := r.RunScreen(ctx)
	return err
}

// RunScreen executes one full screen over the active universe and
// persists the result. Tickers whose fetch fails are recorded as
// skipped, never dropped silently.
func (r *Runner) RunScreen(ctx context.Context) (*domain.ScreenRun, error) {
	tickers, err := r.universe.ListActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load universe: %w", err)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe is empty")
	}
	return r.screen(ctx, tickers)
}

// RunScreenTickers screens an explicit symbol list instead of the
// stored universe. Symbols keep their universe sector label when they
// are part of it.
func (r *Runner) RunScreenTickers(ctx context.Context, symbols []string) (*domain.ScreenRun, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no tickers given")
	}

	known := make(map[string]string)
	if stored, err := r.universe.ListAll(); err == nil {
		for _, t := range stored {
			known[t.Symbol] = t.Sector
		}
	}

	tickers := make([]universe.Ticker, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		tickers = append(tickers, universe.Ticker{Symbol: s, Sector: known[s]})
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers given")
	}
	return r.screen(ctx, tickers)
}

func (r *Runner) screen(ctx context.Context, tickers []universe.Ticker) (*domain.ScreenRun, error) {
	r.log.Info().Int("tickers", len(tickers)).Msg("Starting screen")

	var metrics []domain.StockMetrics
	var fetchSkips []domain.SkippedTicker
	for _, t := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("screen cancelled during fetch: %w", err)
		}

		m, err := r.provider.FetchMetrics(ctx, t.Symbol)
		if err != nil {
			r.log.Warn().Err(err).Str("ticker", t.Symbol).Msg("Fetch failed, skipping")
			fetchSkips = append(fetchSkips, domain.SkippedTicker{
				Ticker: t.Symbol,
				Reason: "fetch_failed",
			})
			continue
		}
		// Universe sector labels override whatever upstream reports.
		if t.Sector != "" {
			m.Sector = t.Sector
		}
		metrics = append(metrics, *m)
	}

	run := r.service.Screen(ctx, metrics)
	run.Skipped = append(run.Skipped, fetchSkips...)

	if err := r.results.SaveRun(run); err != nil {
		return nil, fmt.Errorf("failed to persist run %s: %w", run.ID, err)
	}

	if _, err := r.results.PruneRuns(keepRuns); err != nil {
		r.log.Warn().Err(err).Msg("Failed to prune run history")
	}

	r.log.Info().
		Str("run_id", run.ID).
		Int("ranked", len(run.Results)).
		Int("skipped", len(run.Skipped)).
		Float64("top_score", topScore(run)).
		Msg("Screen finished")

	if len(run.Results) > 0 {
		var table bytes.Buffer
		if err := export.WriteTable(&table, run.Results, r.topN); err == nil {
			r.log.Info().Msg("Top picks:\n" + table.String())
		}
	}

	return run, nil
}

func topScore(run *domain.ScreenRun) float64 {
	if len(run.Results) == 0 {
		return 0
	}
	return run.Results[0].Score
}
