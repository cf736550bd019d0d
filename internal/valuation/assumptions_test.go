package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAssumptions_Valid(t *testing.T) {
	require.NoError(t, DefaultAssumptions().Validate())
}

func TestAssumptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Assumptions)
	}{
		{name: "zero projection years", mutate: func(a *Assumptions) { a.ProjectionYears = 0 }},
		{name: "negative terminal growth", mutate: func(a *Assumptions) { a.TerminalGrowthRate = -0.01 }},
		{name: "terminal growth of one", mutate: func(a *Assumptions) { a.TerminalGrowthRate = 1.0 }},
		{name: "negative beta", mutate: func(a *Assumptions) { a.Beta = -0.5 }},
		{name: "zero default growth", mutate: func(a *Assumptions) { a.DefaultGrowthRate = 0 }},
		{name: "premium narrower than band", mutate: func(a *Assumptions) { a.ExceptionalHoldPremium = 0.01 }},
		{name: "zero trap yield threshold", mutate: func(a *Assumptions) { a.TrapFCFYieldMin = 0 }},
		{name: "empty quality table", mutate: func(a *Assumptions) { a.QualityTable = nil }},
		{name: "missing catch-all band", mutate: func(a *Assumptions) { a.QualityTable = a.QualityTable[:3] }},
		{
			name: "unsorted quality table",
			mutate: func(a *Assumptions) {
				a.QualityTable[0], a.QualityTable[1] = a.QualityTable[1], a.QualityTable[0]
			},
		},
		{
			name: "margin of safety decreasing with worse quality",
			mutate: func(a *Assumptions) {
				a.QualityTable[1].MarginOfSafety = 0.05 // smaller than the EXCEPTIONAL margin
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DefaultAssumptions()
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}
