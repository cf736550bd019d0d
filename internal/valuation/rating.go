package valuation

import "github.com/mkaravas/valuescreen/internal/domain"

// RatingInput carries everything the rating decision table needs.
type RatingInput struct {
	Price          float64
	IntrinsicValue float64
	MOSValue       float64
	Tier           domain.QualityTier
	ValueTrap      bool
}

// ratingRule is one row of the decision table. Rules are evaluated in
// order; the first match wins.
type ratingRule struct {
	name   string
	match  func(a Assumptions, in RatingInput) bool
	rating domain.Rating
	signal domain.Signal
}

// ratingRules encodes the precedence explicitly: the trap override
// comes first, the margin-of-safety entry second, and the
// exceptional-quality allowance is folded into the HOLD band.
var ratingRules = []ratingRule{
	{
		name: "value_trap",
		match: func(a Assumptions, in RatingInput) bool {
			return in.ValueTrap
		},
		rating: domain.RatingOvervalued,
		signal: domain.SignalValueTrap,
	},
	{
		name: "below_mos",
		match: func(a Assumptions, in RatingInput) bool {
			return in.IntrinsicValue > 0 && in.Price < in.MOSValue
		},
		rating: domain.RatingSignificantlyUndervalued,
		signal: domain.SignalStrongBuy,
	},
	{
		name: "below_intrinsic",
		match: func(a Assumptions, in RatingInput) bool {
			return in.IntrinsicValue > 0 && in.Price < in.IntrinsicValue
		},
		rating: domain.RatingUndervalued,
		signal: domain.SignalBuy,
	},
	{
		name: "within_band",
		match: func(a Assumptions, in RatingInput) bool {
			return in.IntrinsicValue > 0 && in.Price <= in.IntrinsicValue*(1+holdBand(a, in.Tier))
		},
		rating: domain.RatingFairlyValued,
		signal: domain.SignalHold,
	},
}

// holdBand returns the tolerance above intrinsic value that still
// rates HOLD. EXCEPTIONAL businesses get a wider, explicitly bounded
// allowance: strict DCF undervalues durable-moat optionality, so they
// may trade modestly above calculated value without an AVOID.
func holdBand(a Assumptions, tier domain.QualityTier) float64 {
	if tier == domain.TierExceptional {
		return a.ExceptionalHoldPremium
	}
	return a.FairValueBand
}

// ClassifyValuation runs the rating decision table. When no rule
// matches (price well above value, or intrinsic value non-positive)
// the result is OVERVALUED/AVOID.
func ClassifyValuation(a Assumptions, in RatingInput) (domain.Rating, domain.Signal) {
	for _, rule := range ratingRules {
		if rule.match(a, in) {
			return rule.rating, rule.signal
		}
	}
	return domain.RatingOvervalued, domain.SignalAvoid
}
