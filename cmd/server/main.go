// Package main is the entry point for the valuescreen service. It
// screens a ticker universe nightly, ranks companies by DCF-implied
// undervaluation, and serves results plus live progress over HTTP.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkaravas/valuescreen/internal/config"
	"github.com/mkaravas/valuescreen/internal/database"
	"github.com/mkaravas/valuescreen/internal/events"
	"github.com/mkaravas/valuescreen/internal/marketdata"
	"github.com/mkaravas/valuescreen/internal/results"
	"github.com/mkaravas/valuescreen/internal/scheduler"
	"github.com/mkaravas/valuescreen/internal/screener"
	screenhandlers "github.com/mkaravas/valuescreen/internal/screener/handlers"
	"github.com/mkaravas/valuescreen/internal/server"
	"github.com/mkaravas/valuescreen/internal/universe"
	"github.com/mkaravas/valuescreen/internal/valuation"
	"github.com/mkaravas/valuescreen/pkg/logger"
)

// runTimeout bounds a whole scheduled screen including fetches.
const runTimeout = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting valuescreen")

	// Databases: durable universe and run history, ephemeral metrics cache
	universeDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "universe.db"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open universe database")
	}
	defer universeDB.Close()

	resultsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "results.db"),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	universeRepo := universe.NewRepository(universeDB.Conn(), log)
	if err := universeRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize universe schema")
	}
	if err := universeRepo.Seed(universe.DefaultUniverse()); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed universe")
	}

	resultsRepo := results.NewRepository(resultsDB.Conn(), log)
	if err := resultsRepo.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize results schema")
	}

	metricsCache := marketdata.NewCache(cacheDB.Conn())
	if err := metricsCache.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics cache schema")
	}
	provider := marketdata.NewClient(cfg.MarketDataBaseURL, cfg.FetchTimeout,
		cfg.MetricsCacheTTL, metricsCache, log)

	analyzer, err := valuation.NewAnalyzer(cfg.Assumptions,
		valuation.DefaultSectorTable(cfg.Assumptions.DefaultGrowthRate), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid valuation assumptions")
	}

	bus := events.NewBus()
	screenService := screener.NewService(analyzer, bus, cfg.Workers, log)
	runner := screener.NewRunner(screenService, provider, universeRepo, resultsRepo, runTimeout, cfg.TopN, log)

	// Nightly screen
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.ScreenSchedule, runner); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ScreenSchedule).Msg("Invalid screen schedule")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
		DataDir:          cfg.DataDir,
		Databases:        []*database.DB{universeDB, resultsDB, cacheDB},
		EventBus:         bus,
		ScreenHandler:    screenhandlers.NewHandler(runner, resultsRepo, log),
		UniverseHandlers: universe.NewHandlers(universeRepo, log),
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
