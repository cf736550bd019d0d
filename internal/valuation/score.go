package valuation

import "github.com/mkaravas/valuescreen/internal/domain"

// Component weights of the composite score. Fixed by design; the
// saturation points are part of Assumptions.
const (
	weightDiscount = 40.0
	weightROE      = 30.0
	weightFCFYield = 20.0
	weightSignal   = 10.0
)

// signalPoints maps signal strength to its score contribution out of
// the signal weight.
var signalPoints = map[domain.Signal]float64{
	domain.SignalStrongBuy: 10,
	domain.SignalBuy:       7,
	domain.SignalHold:      3,
	domain.SignalAvoid:     0,
	domain.SignalValueTrap: 0,
}

// ScoreInput carries the four scored factors plus the trap flag.
type ScoreInput struct {
	DiscountPercent float64
	ROE             float64
	FCFYield        float64
	Signal          domain.Signal
	ValueTrap       bool
}

// CompositeScore combines discount, quality, cash-yield sustainability
// and signal strength into a 0-100 recommendation score. Each factor
// ramps linearly to its saturation point, which keeps the score
// monotonically non-decreasing in discount and ROE. A set trap flag
// hard-caps the result regardless of the weighted sum.
func CompositeScore(a Assumptions, in ScoreInput) float64 {
	score := weightDiscount * ramp(in.DiscountPercent, a.ScoreDiscountSaturation)
	score += weightROE * ramp(in.ROE, a.ScoreROESaturation)
	score += weightFCFYield * ramp(in.FCFYield, a.ScoreYieldSaturation)
	score += signalPoints[in.Signal]

	if score > 100 {
		score = 100
	}
	if in.ValueTrap && score > a.TrapScoreCap {
		score = a.TrapScoreCap
	}
	return score
}

// ramp maps v linearly onto [0,1], saturating at sat. Negative values
// contribute nothing.
func ramp(v, sat float64) float64 {
	if v <= 0 {
		return 0
	}
	if v >= sat {
		return 1
	}
	return v / sat
}
