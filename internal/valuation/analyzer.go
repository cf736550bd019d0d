// Package valuation implements the DCF valuation and scoring engine:
// sector growth resolution, quality classification, value-trap
// detection, intrinsic value calculation, rating/signal derivation and
// the composite recommendation score.
package valuation

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/mkaravas/valuescreen/internal/domain"
)

// Analyzer runs the full valuation pipeline for a single company.
// It holds only immutable state (assumptions and the sector table),
// so a single instance is safe for concurrent use across tickers.
type Analyzer struct {
	assumptions Assumptions
	sectors     *SectorTable
	log         zerolog.Logger
}

// NewAnalyzer creates an analyzer. The assumptions are validated once
// here rather than on every Analyze call.
func NewAnalyzer(a Assumptions, sectors *SectorTable, log zerolog.Logger) (*Analyzer, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		assumptions: a,
		sectors:     sectors,
		log:         log.With().Str("component", "analyzer").Logger(),
	}, nil
}

// Assumptions returns the parameter set the analyzer was built with.
func (an *Analyzer) Assumptions() Assumptions {
	return an.assumptions
}

// Analyze produces a ValuationResult for one company, or a typed error
// (MissingMetricError, DegenerateWACCError) when the ticker must be
// skipped. Degraded-but-scorable inputs, such as non-positive equity,
// produce a result with warnings instead of an error.
func (an *Analyzer) Analyze(m domain.StockMetrics) (*domain.ValuationResult, error) {
	if err := validateRequired(m); err != nil {
		return nil, err
	}

	a := an.assumptions
	ocf := *m.OperatingCashFlow
	capex := *m.CapEx
	netIncome := *m.NetIncome
	equity := *m.TotalEquity

	warnings := collectWarnings(ocf, capex, netIncome, equity)

	quality := AssessQuality(a, netIncome, equity, m.TotalDebt, m.Cash)

	growthRate, sector := an.sectors.Resolve(m.Sector, m.Ticker)

	fcf := FreeCashFlow(ocf, capex)
	fcfPerShare := FCFPerShare(fcf, m.SharesOutstanding)
	fcfYield := fcfPerShare / m.CurrentPrice

	intrinsic, err := IntrinsicValue(a, fcfPerShare, growthRate)
	if err != nil {
		return nil, err
	}
	mosValue := MOSValue(intrinsic, quality.MarginOfSafety)

	discount, upside := priceGap(m.CurrentPrice, intrinsic)

	trap := IsValueTrap(a, fcfYield, quality.ROE)

	rating, signal := ClassifyValuation(a, RatingInput{
		Price:          m.CurrentPrice,
		IntrinsicValue: intrinsic,
		MOSValue:       mosValue,
		Tier:           quality.Tier,
		ValueTrap:      trap,
	})

	score := CompositeScore(a, ScoreInput{
		DiscountPercent: discount,
		ROE:             quality.ROE,
		FCFYield:        fcfYield,
		Signal:          signal,
		ValueTrap:       trap,
	})

	an.log.Debug().
		Str("ticker", m.Ticker).
		Float64("intrinsic", intrinsic).
		Str("tier", string(quality.Tier)).
		Str("signal", string(signal)).
		Float64("score", score).
		Msg("Analyzed")

	return &domain.ValuationResult{
		Ticker:          m.Ticker,
		Price:           m.CurrentPrice,
		FCF:             fcf,
		FCFPerShare:     fcfPerShare,
		FCFYield:        fcfYield,
		ROE:             quality.ROE,
		ROIC:            quality.ROIC,
		Sector:          sector,
		GrowthRate:      growthRate,
		WACC:            a.WACC(),
		IntrinsicValue:  intrinsic,
		MOSValue:        mosValue,
		DiscountPercent: discount,
		UpsidePercent:   upside,
		QualityTier:     quality.Tier,
		MarginOfSafety:  quality.MarginOfSafety,
		ValueTrap:       trap,
		Rating:          rating,
		Signal:          signal,
		Score:           score,
		Warnings:        warnings,
	}, nil
}

// validateRequired checks the fields without which no per-share value
// can be derived. Absence is a pointer nil, distinguishable from a
// reported zero.
func validateRequired(m domain.StockMetrics) error {
	switch {
	case m.Ticker == "":
		return MissingMetricError{Field: "ticker"}
	case m.CurrentPrice <= 0:
		return MissingMetricError{Field: "current_price"}
	case m.SharesOutstanding <= 0:
		return MissingMetricError{Field: "shares_outstanding"}
	case m.OperatingCashFlow == nil:
		return MissingMetricError{Field: "operating_cash_flow"}
	case m.CapEx == nil:
		return MissingMetricError{Field: "capex"}
	case m.NetIncome == nil:
		return MissingMetricError{Field: "net_income"}
	case m.TotalEquity == nil:
		return MissingMetricError{Field: "total_equity"}
	}
	return nil
}

// collectWarnings attaches data-quality flags that do not block the
// analysis: a capex of exactly zero usually means the statement line
// was missing, an annual operating cash flow far below net income
// usually means a quarterly figure slipped through, and non-positive
// equity is scorable but only as the lowest tier.
func collectWarnings(ocf, capex, netIncome, equity float64) []domain.WarningKind {
	var warnings []domain.WarningKind
	if capex == 0 {
		warnings = append(warnings, domain.WarningCapexZero)
	}
	if ocf != 0 && netIncome > 0 && math.Abs(ocf) < netIncome/2 {
		warnings = append(warnings, domain.WarningPossiblyQuarterly)
	}
	if equity <= 0 {
		warnings = append(warnings, domain.WarningNonPositiveEquity)
	}
	return warnings
}

// priceGap returns the discount and upside percentages of price
// against intrinsic value. With a non-positive intrinsic value there
// is no meaningful discount; both gaps read as fully unfavorable.
func priceGap(price, intrinsic float64) (discount, upside float64) {
	if intrinsic <= 0 {
		return 0, -100
	}
	discount = (1 - price/intrinsic) * 100
	upside = (intrinsic/price - 1) * 100
	return discount, upside
}
