// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkaravas/valuescreen/internal/valuation"
)

// Config holds application configuration. Everything is read from
// environment variables (optionally via a .env file) so that model
// recalibration never requires a code change.
type Config struct {
	DataDir  string // Base directory for the sqlite databases
	Port     int
	LogLevel string
	DevMode  bool

	// Market data provider
	MarketDataBaseURL string
	FetchTimeout      time.Duration // per-ticker fetch timeout
	MetricsCacheTTL   time.Duration

	// Screening
	ScreenSchedule string // cron expression for the nightly universe screen
	Workers        int    // worker pool size, 0 = min(8, NumCPU)
	TopN           int    // default result cutoff for exports

	// Valuation assumptions (overridable without code changes)
	Assumptions valuation.Assumptions
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("VS_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("VS_PORT", 8080),
		LogLevel: getEnv("VS_LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("VS_DEV_MODE", false),

		MarketDataBaseURL: getEnv("VS_MARKETDATA_URL", "https://query1.finance.yahoo.com"),
		FetchTimeout:      getEnvAsDuration("VS_FETCH_TIMEOUT", 15*time.Second),
		MetricsCacheTTL:   getEnvAsDuration("VS_METRICS_CACHE_TTL", 24*time.Hour),

		ScreenSchedule: getEnv("VS_SCREEN_SCHEDULE", "30 6 * * *"),
		Workers:        getEnvAsInt("VS_WORKERS", 0),
		TopN:           getEnvAsInt("VS_TOP_N", 15),

		Assumptions: loadAssumptions(),
	}

	if err := cfg.Assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid valuation assumptions: %w", err)
	}

	return cfg, nil
}

// loadAssumptions starts from the documented defaults and applies any
// per-parameter environment overrides. The quality-tier ROE boundaries
// and margins take a comma-free simple form: one env var per band.
func loadAssumptions() valuation.Assumptions {
	a := valuation.DefaultAssumptions()

	a.ProjectionYears = getEnvAsInt("VS_PROJECTION_YEARS", a.ProjectionYears)
	a.TerminalGrowthRate = getEnvAsFloat("VS_TERMINAL_GROWTH", a.TerminalGrowthRate)
	a.RiskFreeRate = getEnvAsFloat("VS_RISK_FREE_RATE", a.RiskFreeRate)
	a.MarketRiskPremium = getEnvAsFloat("VS_MARKET_RISK_PREMIUM", a.MarketRiskPremium)
	a.Beta = getEnvAsFloat("VS_BETA", a.Beta)
	a.DefaultGrowthRate = getEnvAsFloat("VS_DEFAULT_GROWTH", a.DefaultGrowthRate)
	a.FairValueBand = getEnvAsFloat("VS_FAIR_VALUE_BAND", a.FairValueBand)
	a.ExceptionalHoldPremium = getEnvAsFloat("VS_EXCEPTIONAL_HOLD_PREMIUM", a.ExceptionalHoldPremium)
	a.TrapFCFYieldMin = getEnvAsFloat("VS_TRAP_FCF_YIELD", a.TrapFCFYieldMin)
	a.TrapROEMax = getEnvAsFloat("VS_TRAP_ROE", a.TrapROEMax)
	a.TrapScoreCap = getEnvAsFloat("VS_TRAP_SCORE_CAP", a.TrapScoreCap)

	for i := range a.QualityTable {
		band := &a.QualityTable[i]
		prefix := "VS_TIER_" + string(band.Tier)
		band.MinROE = getEnvAsFloat(prefix+"_MIN_ROE", band.MinROE)
		band.MarginOfSafety = getEnvAsFloat(prefix+"_MOS", band.MarginOfSafety)
	}

	return a
}

// getEnv retrieves an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as integer with a fallback
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvAsFloat retrieves an environment variable as float with a fallback
func getEnvAsFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

// getEnvAsBool retrieves an environment variable as boolean with a fallback
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvAsDuration retrieves an environment variable as duration with a fallback
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
