package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeCashFlow(t *testing.T) {
	assert.Equal(t, 800.0, FreeCashFlow(1000, 200))
	// Negative FCF passes through rather than being clamped; it reads
	// as AVOID downstream.
	assert.Equal(t, -100.0, FreeCashFlow(100, 200))
}

func TestWACC_Default(t *testing.T) {
	a := DefaultAssumptions()
	// 4.5% risk-free + 1.0 beta x 5.5% premium
	assert.InDelta(t, 0.10, a.WACC(), 1e-12)
}

func TestIntrinsicValue_ReferenceScenario(t *testing.T) {
	// $10B operating cash flow, $2B capex, 500M shares:
	// FCF $8B, $16.00 per share. Sector growth 8%, WACC 10%,
	// terminal growth 2.5%, 10-year horizon.
	a := DefaultAssumptions()
	fcfPerShare := FCFPerShare(FreeCashFlow(10e9, 2e9), 500e6)
	require.InDelta(t, 16.0, fcfPerShare, 1e-9)

	iv, err := IntrinsicValue(a, fcfPerShare, 0.08)
	require.NoError(t, err)
	assert.InDelta(t, 326.87, iv, 326.87*0.005)

	// Idempotence: identical inputs reproduce the identical value.
	again, err := IntrinsicValue(a, fcfPerShare, 0.08)
	require.NoError(t, err)
	assert.Equal(t, iv, again)
}

func TestIntrinsicValue_StrictlyIncreasingInGrowth(t *testing.T) {
	a := DefaultAssumptions()

	prev := 0.0
	for _, g := range []float64{0.02, 0.03, 0.05, 0.08, 0.10, 0.12} {
		iv, err := IntrinsicValue(a, 5.0, g)
		require.NoError(t, err)
		assert.Greater(t, iv, prev, "growth %.2f", g)
		prev = iv
	}
}

func TestIntrinsicValue_StrictlyDecreasingInWACC(t *testing.T) {
	a := DefaultAssumptions()

	prev := 1e18
	for _, rf := range []float64{0.03, 0.045, 0.06, 0.08} {
		a.RiskFreeRate = rf
		iv, err := IntrinsicValue(a, 5.0, 0.05)
		require.NoError(t, err)
		assert.Less(t, iv, prev, "risk-free %.3f", rf)
		prev = iv
	}
}

func TestIntrinsicValue_DegenerateWACC(t *testing.T) {
	a := DefaultAssumptions()
	a.RiskFreeRate = 0.01
	a.MarketRiskPremium = 0.01
	a.Beta = 1.0
	a.TerminalGrowthRate = 0.025 // WACC 2% <= terminal 2.5%

	_, err := IntrinsicValue(a, 5.0, 0.05)
	require.Error(t, err)
	var degenerate DegenerateWACCError
	require.ErrorAs(t, err, &degenerate)
	assert.Equal(t, "degenerate_wacc", SkipReason(err))
}

func TestIntrinsicValue_NegativeFCFGivesNegativeValue(t *testing.T) {
	a := DefaultAssumptions()

	iv, err := IntrinsicValue(a, -2.0, 0.05)
	require.NoError(t, err)
	assert.Negative(t, iv)
}

func TestIntrinsicValue_ZeroFCFIsZero(t *testing.T) {
	a := DefaultAssumptions()

	iv, err := IntrinsicValue(a, 0, 0.05)
	require.NoError(t, err)
	assert.Zero(t, iv)
}

func TestMOSValue(t *testing.T) {
	// Strictly below intrinsic whenever the fraction is positive.
	assert.InDelta(t, 85.0, MOSValue(100, 0.15), 1e-12)
	assert.InDelta(t, 35.0, MOSValue(100, 0.65), 1e-12)
	assert.Equal(t, 100.0, MOSValue(100, 0))

	// Non-positive intrinsic values pass through undiscounted.
	assert.Equal(t, -10.0, MOSValue(-10, 0.35))
	assert.Equal(t, 0.0, MOSValue(0, 0.35))
}

func TestMOSValue_NeverExceedsIntrinsic(t *testing.T) {
	a := DefaultAssumptions()
	for _, band := range a.QualityTable {
		got := MOSValue(250.0, band.MarginOfSafety)
		assert.LessOrEqual(t, got, 250.0, string(band.Tier))
		if band.MarginOfSafety > 0 {
			assert.Less(t, got, 250.0, string(band.Tier))
		}
	}
}
