// Package domain provides core domain models and types.
package domain

import "time"

// QualityTier classifies business quality from return-on-equity.
// Ordering is from best to worst.
type QualityTier string

const (
	TierExceptional QualityTier = "EXCEPTIONAL"
	TierExcellent   QualityTier = "EXCELLENT"
	TierGood        QualityTier = "GOOD"
	TierAdequate    QualityTier = "ADEQUATE"
	TierPoor        QualityTier = "POOR"
	TierWeak        QualityTier = "WEAK"
)

// Rating classifies current price against calculated value.
type Rating string

const (
	RatingSignificantlyUndervalued Rating = "SIGNIFICANTLY_UNDERVALUED"
	RatingUndervalued              Rating = "UNDERVALUED"
	RatingFairlyValued             Rating = "FAIRLY_VALUED"
	RatingOvervalued               Rating = "OVERVALUED"
)

// Signal is the action recommendation derived from the rating.
type Signal string

const (
	SignalStrongBuy Signal = "STRONG_BUY"
	SignalBuy       Signal = "BUY"
	SignalHold      Signal = "HOLD"
	SignalAvoid     Signal = "AVOID"
	SignalValueTrap Signal = "VALUE_TRAP"
)

// WarningKind identifies a data-quality warning attached to a result.
// Warnings never fail an analysis; they travel with the result.
type WarningKind string

const (
	WarningCapexZero         WarningKind = "CAPEX_ZERO"
	WarningPossiblyQuarterly WarningKind = "POSSIBLY_QUARTERLY"
	WarningNonPositiveEquity WarningKind = "NON_POSITIVE_EQUITY"
)

// StockMetrics is the raw per-company input produced by the market data
// provider. Optional fields are pointers so that an absent value is
// distinguishable from a reported zero.
type StockMetrics struct {
	Ticker            string   `json:"ticker"`
	CurrentPrice      float64  `json:"current_price"`
	SharesOutstanding float64  `json:"shares_outstanding"`
	OperatingCashFlow *float64 `json:"operating_cash_flow,omitempty"`
	CapEx             *float64 `json:"capex,omitempty"`
	NetIncome         *float64 `json:"net_income,omitempty"`
	TotalEquity       *float64 `json:"total_equity,omitempty"`
	TotalDebt         *float64 `json:"total_debt,omitempty"`
	Cash              *float64 `json:"cash,omitempty"`
	Sector            string   `json:"sector,omitempty"`
}

// QualityAssessment captures the return metrics and the tier they map to.
// Computed fresh per analysis, never persisted.
type QualityAssessment struct {
	ROE            float64     `json:"roe"`
	ROIC           float64     `json:"roic"`
	Tier           QualityTier `json:"tier"`
	MarginOfSafety float64     `json:"margin_of_safety"`
}

// ValuationResult is the immutable output record for a single ticker.
type ValuationResult struct {
	Ticker          string        `json:"ticker"`
	Price           float64       `json:"price"`
	FCF             float64       `json:"fcf"`
	FCFPerShare     float64       `json:"fcf_per_share"`
	FCFYield        float64       `json:"fcf_yield"`
	ROE             float64       `json:"roe"`
	ROIC            float64       `json:"roic"`
	Sector          string        `json:"sector"`
	GrowthRate      float64       `json:"growth_rate"`
	WACC            float64       `json:"wacc"`
	IntrinsicValue  float64       `json:"intrinsic_value"`
	MOSValue        float64       `json:"mos_value"`
	DiscountPercent float64       `json:"discount_percent"`
	UpsidePercent   float64       `json:"upside_percent"`
	QualityTier     QualityTier   `json:"quality_tier"`
	MarginOfSafety  float64       `json:"margin_of_safety"`
	ValueTrap       bool          `json:"value_trap"`
	Rating          Rating        `json:"rating"`
	Signal          Signal        `json:"signal"`
	Score           float64       `json:"score"`
	Warnings        []WarningKind `json:"warnings,omitempty"`
}

// SkippedTicker records a ticker excluded from a run with a
// machine-readable reason.
type SkippedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// ScreenRun is a completed batch over a ticker universe.
type ScreenRun struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []ValuationResult `json:"results"`
	Skipped    []SkippedTicker   `json:"skipped"`
	Stats      ScoreStats        `json:"stats"`
}

// ScoreStats summarizes the score distribution of a run.
type ScoreStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Float64Ptr returns a pointer to v. Convenience for building
// StockMetrics literals.
func Float64Ptr(v float64) *float64 {
	return &v
}
