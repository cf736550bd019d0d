package valuation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaravas/valuescreen/internal/domain"
)

func newTestAnalyzer(t *testing.T, a Assumptions) *Analyzer {
	t.Helper()
	an, err := NewAnalyzer(a, DefaultSectorTable(a.DefaultGrowthRate), zerolog.Nop())
	require.NoError(t, err)
	return an
}

func healthyMetrics() domain.StockMetrics {
	return domain.StockMetrics{
		Ticker:            "TEST",
		CurrentPrice:      150.0,
		SharesOutstanding: 1e6,
		OperatingCashFlow: domain.Float64Ptr(12e6),
		CapEx:             domain.Float64Ptr(2e6),
		NetIncome:         domain.Float64Ptr(4.27e6),
		TotalEquity:       domain.Float64Ptr(10e6),
		TotalDebt:         domain.Float64Ptr(3e6),
		Sector:            "TECH_LARGE",
	}
}

func TestAnalyze_ExceptionalStrongBuy(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	// ROE 42.7%, FCF per share $10, TECH_LARGE growth 8%.
	res, err := an.Analyze(healthyMetrics())
	require.NoError(t, err)

	assert.Equal(t, domain.TierExceptional, res.QualityTier)
	assert.Equal(t, 0.15, res.MarginOfSafety)
	assert.InDelta(t, 0.427, res.ROE, 1e-9)
	assert.InDelta(t, 10.0, res.FCFPerShare, 1e-9)
	assert.InDelta(t, 0.08, res.GrowthRate, 1e-12)
	assert.Equal(t, "TECH_LARGE", res.Sector)

	// Price sits below the margin-of-safety value, so the strongest
	// rating applies.
	require.Greater(t, res.MOSValue, res.Price)
	assert.Equal(t, domain.SignalStrongBuy, res.Signal)
	assert.Equal(t, domain.RatingSignificantlyUndervalued, res.Rating)
	assert.False(t, res.ValueTrap)
	assert.Greater(t, res.Score, 50.0)
	assert.Empty(t, res.Warnings)
}

func TestAnalyze_ValueTrapCapsScore(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	// FCF yield 22% with ROE 7.4%: flagged regardless of the nominal
	// discount the DCF produces.
	m := domain.StockMetrics{
		Ticker:            "TRAP",
		CurrentPrice:      10.0,
		SharesOutstanding: 1e6,
		OperatingCashFlow: domain.Float64Ptr(2.4e6),
		CapEx:             domain.Float64Ptr(0.2e6),
		NetIncome:         domain.Float64Ptr(0.74e6),
		TotalEquity:       domain.Float64Ptr(10e6),
		Sector:            "TELECOM",
	}
	res, err := an.Analyze(m)
	require.NoError(t, err)

	assert.InDelta(t, 0.22, res.FCFYield, 1e-9)
	assert.InDelta(t, 0.074, res.ROE, 1e-9)
	assert.True(t, res.ValueTrap)
	assert.Equal(t, domain.SignalValueTrap, res.Signal)
	assert.Equal(t, domain.RatingOvervalued, res.Rating)
	assert.LessOrEqual(t, res.Score, 20.0)
}

func TestAnalyze_NonPositiveEquityProducesWeakResult(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	m := healthyMetrics()
	m.TotalEquity = domain.Float64Ptr(-5e6)

	res, err := an.Analyze(m)
	require.NoError(t, err, "non-positive equity must not skip the ticker")

	assert.Equal(t, domain.TierWeak, res.QualityTier)
	assert.Equal(t, 0.0, res.ROE)
	assert.Contains(t, res.Warnings, domain.WarningNonPositiveEquity)
}

func TestAnalyze_MissingMetricSkips(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	tests := []struct {
		name       string
		mutate     func(*domain.StockMetrics)
		wantReason string
	}{
		{
			name:       "no operating cash flow",
			mutate:     func(m *domain.StockMetrics) { m.OperatingCashFlow = nil },
			wantReason: "missing_metric:operating_cash_flow",
		},
		{
			name:       "no capex",
			mutate:     func(m *domain.StockMetrics) { m.CapEx = nil },
			wantReason: "missing_metric:capex",
		},
		{
			name:       "no net income",
			mutate:     func(m *domain.StockMetrics) { m.NetIncome = nil },
			wantReason: "missing_metric:net_income",
		},
		{
			name:       "no equity",
			mutate:     func(m *domain.StockMetrics) { m.TotalEquity = nil },
			wantReason: "missing_metric:total_equity",
		},
		{
			name:       "zero shares outstanding",
			mutate:     func(m *domain.StockMetrics) { m.SharesOutstanding = 0 },
			wantReason: "missing_metric:shares_outstanding",
		},
		{
			name:       "zero price",
			mutate:     func(m *domain.StockMetrics) { m.CurrentPrice = 0 },
			wantReason: "missing_metric:current_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := healthyMetrics()
			tt.mutate(&m)

			res, err := an.Analyze(m)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.wantReason, SkipReason(err))
		})
	}
}

func TestAnalyze_ZeroValuesAreNotAbsence(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	// Capex reported as exactly zero is a present value: the analysis
	// proceeds but carries a data-quality warning.
	m := healthyMetrics()
	m.CapEx = domain.Float64Ptr(0)

	res, err := an.Analyze(m)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, domain.WarningCapexZero)
}

func TestAnalyze_QuarterlySuspicionWarning(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	// Annual OCF far below net income suggests a quarterly statement
	// slipped through the provider's annualization.
	m := healthyMetrics()
	m.OperatingCashFlow = domain.Float64Ptr(1e6)
	m.NetIncome = domain.Float64Ptr(3e6)

	res, err := an.Analyze(m)
	require.NoError(t, err)
	assert.Contains(t, res.Warnings, domain.WarningPossiblyQuarterly)
}

func TestAnalyze_DegenerateWACCSkips(t *testing.T) {
	a := DefaultAssumptions()
	a.RiskFreeRate = 0.01
	a.MarketRiskPremium = 0.01
	an := newTestAnalyzer(t, a)

	res, err := an.Analyze(healthyMetrics())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "degenerate_wacc", SkipReason(err))
}

func TestAnalyze_NegativeFCFReadsAsAvoid(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	m := healthyMetrics()
	m.OperatingCashFlow = domain.Float64Ptr(1e6)
	m.CapEx = domain.Float64Ptr(5e6)
	m.NetIncome = domain.Float64Ptr(2e6) // keep ROE solid; FCF is the problem

	res, err := an.Analyze(m)
	require.NoError(t, err)

	assert.Negative(t, res.IntrinsicValue)
	assert.Equal(t, domain.SignalAvoid, res.Signal)
	assert.Equal(t, domain.RatingOvervalued, res.Rating)
}

func TestAnalyze_Deterministic(t *testing.T) {
	an := newTestAnalyzer(t, DefaultAssumptions())

	first, err := an.Analyze(healthyMetrics())
	require.NoError(t, err)
	second, err := an.Analyze(healthyMetrics())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
