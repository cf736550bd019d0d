package valuation

// IsValueTrap flags the combination of an abnormally high cash yield
// with poor capital efficiency. That pairing typically signals a
// structurally declining business whose cash generation is not
// sustainable, not genuine undervaluation.
//
// Both comparisons are strict: a yield of exactly the threshold is not
// flagged, nor is an ROE of exactly the floor.
func IsValueTrap(a Assumptions, fcfYield, roe float64) bool {
	return fcfYield > a.TrapFCFYieldMin && roe < a.TrapROEMax
}
