package valuation

import "math"

// FreeCashFlow is operating cash flow minus capital expenditures.
// Negative FCF is allowed through: it produces a low or negative
// intrinsic value downstream, which reads as AVOID.
func FreeCashFlow(operatingCashFlow, capex float64) float64 {
	return operatingCashFlow - capex
}

// FCFPerShare divides free cash flow across shares outstanding.
// Callers must have validated shares > 0.
func FCFPerShare(fcf, sharesOutstanding float64) float64 {
	return fcf / sharesOutstanding
}

// IntrinsicValue projects FCF per share forward over the explicit
// horizon compounding at the sector growth rate, discounts each year
// at WACC, and adds the discounted perpetual-growth terminal value.
//
// A WACC at or below the terminal growth rate makes the terminal value
// undefined; that is reported as DegenerateWACCError instead of a
// nonsensical negative or infinite value.
func IntrinsicValue(a Assumptions, fcfPerShare, growthRate float64) (float64, error) {
	wacc := a.WACC()
	if wacc <= a.TerminalGrowthRate {
		return 0, DegenerateWACCError{WACC: wacc, TerminalGrowth: a.TerminalGrowthRate}
	}

	presentValue := 0.0
	projected := fcfPerShare
	for year := 1; year <= a.ProjectionYears; year++ {
		projected *= 1 + growthRate
		presentValue += projected / math.Pow(1+wacc, float64(year))
	}

	terminalFCF := projected * (1 + a.TerminalGrowthRate)
	terminalValue := terminalFCF / (wacc - a.TerminalGrowthRate)
	presentValue += terminalValue / math.Pow(1+wacc, float64(a.ProjectionYears))

	return presentValue, nil
}

// MOSValue applies the tier's margin-of-safety fraction to the
// intrinsic value to set a conservative entry price. A non-positive
// intrinsic value has no meaningful discount to apply and passes
// through unchanged.
func MOSValue(intrinsicValue, mosFraction float64) float64 {
	if intrinsicValue <= 0 {
		return intrinsicValue
	}
	return intrinsicValue * (1 - mosFraction)
}
