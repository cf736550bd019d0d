package valuation

import "github.com/mkaravas/valuescreen/internal/domain"

// ReturnOnEquity computes net income over shareholders' equity.
// A non-positive equity base cannot be scored favorably, so it yields
// zero (which classifies as the lowest tier) rather than an error.
func ReturnOnEquity(netIncome, equity float64) float64 {
	if equity <= 0 {
		return 0
	}
	return netIncome / equity
}

// InvestedCapital computes debt plus equity minus cash, degrading to
// equity-only when debt data is absent.
func InvestedCapital(equity float64, debt, cash *float64) float64 {
	capital := equity
	if debt != nil {
		capital += *debt
	}
	if cash != nil {
		capital -= *cash
	}
	return capital
}

// ReturnOnInvestedCapital computes NOPAT over invested capital. Net
// income stands in for NOPAT here; the data provider does not supply
// operating income. Reported informationally only, never a tier driver.
func ReturnOnInvestedCapital(nopat, investedCapital float64) float64 {
	if investedCapital <= 0 {
		return 0
	}
	return nopat / investedCapital
}

// ClassifyQuality walks the quality table top-down and returns the
// first band whose minimum ROE is met. Band boundaries are inclusive:
// an ROE of exactly 40% is EXCEPTIONAL.
func ClassifyQuality(a Assumptions, roe float64) (domain.QualityTier, float64) {
	for _, band := range a.QualityTable {
		if roe >= band.MinROE {
			return band.Tier, band.MarginOfSafety
		}
	}
	// Unreachable with a validated table (catch-all band), kept as a
	// hard floor.
	last := a.QualityTable[len(a.QualityTable)-1]
	return last.Tier, last.MarginOfSafety
}

// AssessQuality computes ROE and ROIC from raw metrics and classifies
// the business into a tier with its margin-of-safety fraction.
func AssessQuality(a Assumptions, netIncome, equity float64, debt, cash *float64) domain.QualityAssessment {
	roe := ReturnOnEquity(netIncome, equity)
	roic := ReturnOnInvestedCapital(netIncome, InvestedCapital(equity, debt, cash))
	tier, mos := ClassifyQuality(a, roe)
	return domain.QualityAssessment{
		ROE:            roe,
		ROIC:           roic,
		Tier:           tier,
		MarginOfSafety: mos,
	}
}
