// Package screener runs the valuation engine over a ticker universe
// and produces a deterministically ranked result set.
package screener

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mkaravas/valuescreen/internal/domain"
	"github.com/mkaravas/valuescreen/internal/events"
	"github.com/mkaravas/valuescreen/internal/valuation"
)

// Service orchestrates per-ticker analysis. Each ticker is a pure
// function of its own metrics plus the immutable assumptions, so the
// batch fans out over a bounded worker pool with no shared mutable
// state between tickers.
type Service struct {
	analyzer *valuation.Analyzer
	bus      *events.Bus
	workers  int
	log      zerolog.Logger
}

// NewService creates a screener service. workers <= 0 selects
// min(8, NumCPU).
func NewService(analyzer *valuation.Analyzer, bus *events.Bus, workers int, log zerolog.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 8 {
			workers = 8
		}
	}
	return &Service{
		analyzer: analyzer,
		bus:      bus,
		workers:  workers,
		log:      log.With().Str("module", "screener").Logger(),
	}
}

// Screen analyzes every ticker in the input set, isolating per-ticker
// failures into the skipped list, and returns results ranked by score
// descending with discount percentage and ticker as tiebreakers.
//
// Cancelling the context stops scheduling further tickers; results
// already produced are complete and kept. Identical input always
// yields identically ordered output.
func (s *Service) Screen(ctx context.Context, metrics []domain.StockMetrics) *domain.ScreenRun {
	run := &domain.ScreenRun{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	s.log.Info().
		Str("run_id", run.ID).
		Int("tickers", len(metrics)).
		Int("workers", s.workers).
		Msg("Screen started")
	s.publish(events.ScreenStarted, events.ScreenStartedData{RunID: run.ID, Tickers: len(metrics)})

	// Slot-per-ticker collection: workers never contend and the
	// gather order is independent of scheduling.
	results := make([]*domain.ValuationResult, len(metrics))
	skips := make([]*domain.SkippedTicker, len(metrics))

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

scheduling:
	for i := range metrics {
		// Checked before the semaphore acquire: with both channels
		// ready, select alone would sometimes still schedule after
		// cancellation.
		if ctx.Err() != nil {
			s.log.Warn().Str("run_id", run.ID).Int("scheduled", i).Msg("Screen cancelled")
			break scheduling
		}

		select {
		case <-ctx.Done():
			s.log.Warn().Str("run_id", run.ID).Int("scheduled", i).Msg("Screen cancelled")
			break scheduling
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, m domain.StockMetrics) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := s.analyzer.Analyze(m)
			if err != nil {
				reason := valuation.SkipReason(err)
				skips[i] = &domain.SkippedTicker{Ticker: m.Ticker, Reason: reason}
				s.log.Debug().Str("ticker", m.Ticker).Str("reason", reason).Msg("Ticker skipped")
				s.publish(events.TickerSkipped, events.TickerSkippedData{
					RunID: run.ID, Ticker: m.Ticker, Reason: reason,
				})
				return
			}
			results[i] = res
			s.publish(events.TickerAnalyzed, events.TickerAnalyzedData{
				RunID: run.ID, Ticker: m.Ticker, Score: res.Score, Signal: string(res.Signal),
			})
		}(i, metrics[i])
	}
	wg.Wait()

	for i := range metrics {
		if results[i] != nil {
			run.Results = append(run.Results, *results[i])
		}
		if skips[i] != nil {
			run.Skipped = append(run.Skipped, *skips[i])
		}
	}

	rankResults(run.Results)
	run.Stats = scoreStats(run.Results)
	run.FinishedAt = time.Now().UTC()

	topScore := 0.0
	if len(run.Results) > 0 {
		topScore = run.Results[0].Score
	}
	s.log.Info().
		Str("run_id", run.ID).
		Int("analyzed", len(run.Results)).
		Int("skipped", len(run.Skipped)).
		Float64("top_score", topScore).
		Msg("Screen completed")
	s.publish(events.ScreenCompleted, events.ScreenCompletedData{
		RunID:    run.ID,
		Analyzed: len(run.Results),
		Skipped:  len(run.Skipped),
		TopScore: topScore,
	})

	return run
}

// rankResults orders by composite score descending, ties broken by
// discount percentage descending, then ticker ascending so reruns over
// identical input are byte-identical.
func rankResults(results []domain.ValuationResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DiscountPercent != b.DiscountPercent {
			return a.DiscountPercent > b.DiscountPercent
		}
		return a.Ticker < b.Ticker
	})
}

// scoreStats summarizes the score distribution of a completed run.
func scoreStats(results []domain.ValuationResult) domain.ScoreStats {
	if len(results) == 0 {
		return domain.ScoreStats{}
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	stats := domain.ScoreStats{
		Count: len(scores),
		Mean:  stat.Mean(scores, nil),
		Min:   floats.Min(scores),
		Max:   floats.Max(scores),
	}
	if len(scores) > 1 {
		stats.StdDev = stat.StdDev(scores, nil)
	}
	return stats
}

func (s *Service) publish(t events.EventType, data interface{}) {
	if s.bus != nil {
		s.bus.Publish(t, data)
	}
}
