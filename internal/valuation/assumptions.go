package valuation

import (
	"fmt"
	"math"

	"github.com/mkaravas/valuescreen/internal/domain"
)

// QualityBand maps a minimum ROE to a quality tier and the margin of
// safety that tier warrants. Bands are evaluated top-down, so the
// slice must be sorted by MinROE descending with a final catch-all.
type QualityBand struct {
	MinROE         float64
	Tier           domain.QualityTier
	MarginOfSafety float64
}

// Assumptions is the immutable set of valuation parameters used for a
// run. Every computation receives it explicitly; there is no mutable
// package-level configuration, so parallel runs with different
// assumptions cannot interfere.
type Assumptions struct {
	// DCF parameters
	ProjectionYears    int
	TerminalGrowthRate float64
	RiskFreeRate       float64
	MarketRiskPremium  float64
	Beta               float64

	// Growth fallback when neither sector nor ticker resolves
	DefaultGrowthRate float64

	// Rating parameters
	FairValueBand          float64 // HOLD tolerance above intrinsic value
	ExceptionalHoldPremium float64 // HOLD tolerance for EXCEPTIONAL tier

	// Value-trap thresholds
	TrapFCFYieldMin float64 // yield strictly above this is suspicious
	TrapROEMax      float64 // ROE strictly below this is concerning

	// Composite score parameters
	ScoreDiscountSaturation float64 // discount % at which the component maxes out
	ScoreROESaturation      float64 // ROE fraction at which the component maxes out
	ScoreYieldSaturation    float64 // FCF yield fraction at which the component maxes out
	TrapScoreCap            float64 // hard cap applied when the trap flag is set

	// Quality tiers, best first, catch-all last
	QualityTable []QualityBand
}

// DefaultAssumptions returns the documented default parameter set:
// 10-year projection, 2.5% terminal growth, 4.5% risk-free rate,
// 5.5% market risk premium, market beta 1.0 (WACC 10%).
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ProjectionYears:    10,
		TerminalGrowthRate: 0.025,
		RiskFreeRate:       0.045,
		MarketRiskPremium:  0.055,
		Beta:               1.0,

		DefaultGrowthRate: 0.06,

		FairValueBand:          0.05,
		ExceptionalHoldPremium: 0.15,

		TrapFCFYieldMin: 0.10,
		TrapROEMax:      0.08,

		ScoreDiscountSaturation: 50.0,
		ScoreROESaturation:      0.25,
		ScoreYieldSaturation:    0.10,
		TrapScoreCap:            20.0,

		QualityTable: []QualityBand{
			{MinROE: 0.40, Tier: domain.TierExceptional, MarginOfSafety: 0.15},
			{MinROE: 0.20, Tier: domain.TierExcellent, MarginOfSafety: 0.20},
			{MinROE: 0.15, Tier: domain.TierGood, MarginOfSafety: 0.25},
			{MinROE: 0.10, Tier: domain.TierAdequate, MarginOfSafety: 0.35},
			{MinROE: 0.08, Tier: domain.TierPoor, MarginOfSafety: 0.50},
			{MinROE: math.Inf(-1), Tier: domain.TierWeak, MarginOfSafety: 0.65},
		},
	}
}

// WACC computes the cost of capital used as the DCF discount rate.
// Single-class approximation: risk-free rate plus beta-scaled equity
// premium, no separate debt term.
func (a Assumptions) WACC() float64 {
	return a.RiskFreeRate + a.Beta*a.MarketRiskPremium
}

// Validate checks the assumption set for internal consistency.
func (a Assumptions) Validate() error {
	if a.ProjectionYears <= 0 {
		return fmt.Errorf("projection years must be positive, got %d", a.ProjectionYears)
	}
	if a.TerminalGrowthRate <= 0 || a.TerminalGrowthRate >= 1 {
		return fmt.Errorf("terminal growth rate out of range: %.4f", a.TerminalGrowthRate)
	}
	if a.RiskFreeRate < 0 || a.MarketRiskPremium < 0 || a.Beta < 0 {
		return fmt.Errorf("cost of capital inputs must be non-negative")
	}
	if a.DefaultGrowthRate <= 0 || a.DefaultGrowthRate >= 1 {
		return fmt.Errorf("default growth rate out of range: %.4f", a.DefaultGrowthRate)
	}
	if a.FairValueBand < 0 || a.ExceptionalHoldPremium < a.FairValueBand {
		return fmt.Errorf("exceptional hold premium must be at least the fair value band")
	}
	if a.TrapFCFYieldMin <= 0 || a.TrapROEMax <= 0 {
		return fmt.Errorf("value-trap thresholds must be positive")
	}
	if len(a.QualityTable) == 0 {
		return fmt.Errorf("quality table is empty")
	}
	if !math.IsInf(a.QualityTable[len(a.QualityTable)-1].MinROE, -1) {
		return fmt.Errorf("quality table must end with a catch-all band")
	}
	for i := 1; i < len(a.QualityTable); i++ {
		prev, cur := a.QualityTable[i-1], a.QualityTable[i]
		if cur.MinROE >= prev.MinROE {
			return fmt.Errorf("quality table not sorted: band %d", i)
		}
		if cur.MarginOfSafety < prev.MarginOfSafety {
			return fmt.Errorf("margin of safety must not decrease as quality falls: band %d", i)
		}
	}
	return nil
}
