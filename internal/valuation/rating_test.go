package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkaravas/valuescreen/internal/domain"
)

func TestClassifyValuation_DecisionTable(t *testing.T) {
	a := DefaultAssumptions()

	tests := []struct {
		name       string
		in         RatingInput
		wantRating domain.Rating
		wantSignal domain.Signal
	}{
		{
			name:       "price below MOS value",
			in:         RatingInput{Price: 50, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierGood},
			wantRating: domain.RatingSignificantlyUndervalued,
			wantSignal: domain.SignalStrongBuy,
		},
		{
			name:       "price between MOS and intrinsic",
			in:         RatingInput{Price: 80, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierGood},
			wantRating: domain.RatingUndervalued,
			wantSignal: domain.SignalBuy,
		},
		{
			name:       "price inside the 5% band",
			in:         RatingInput{Price: 104, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierGood},
			wantRating: domain.RatingFairlyValued,
			wantSignal: domain.SignalHold,
		},
		{
			name:       "price exactly at the band edge holds",
			in:         RatingInput{Price: 105, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierGood},
			wantRating: domain.RatingFairlyValued,
			wantSignal: domain.SignalHold,
		},
		{
			name:       "price just past the band avoids",
			in:         RatingInput{Price: 105.01, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierGood},
			wantRating: domain.RatingOvervalued,
			wantSignal: domain.SignalAvoid,
		},
		{
			name:       "trap overrides a deep discount",
			in:         RatingInput{Price: 20, IntrinsicValue: 100, MOSValue: 65, Tier: domain.TierWeak, ValueTrap: true},
			wantRating: domain.RatingOvervalued,
			wantSignal: domain.SignalValueTrap,
		},
		{
			name:       "non-positive intrinsic value avoids",
			in:         RatingInput{Price: 20, IntrinsicValue: -5, MOSValue: -5, Tier: domain.TierWeak},
			wantRating: domain.RatingOvervalued,
			wantSignal: domain.SignalAvoid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rating, signal := ClassifyValuation(a, tt.in)
			assert.Equal(t, tt.wantRating, rating)
			assert.Equal(t, tt.wantSignal, signal)
		})
	}
}

func TestClassifyValuation_ExceptionalHoldPremium(t *testing.T) {
	a := DefaultAssumptions()

	// 12% above intrinsic value: past the ordinary 5% band but inside
	// the bounded EXCEPTIONAL allowance of 15%.
	in := RatingInput{Price: 112, IntrinsicValue: 100, MOSValue: 85, Tier: domain.TierExceptional}
	rating, signal := ClassifyValuation(a, in)
	assert.Equal(t, domain.RatingFairlyValued, rating)
	assert.Equal(t, domain.SignalHold, signal)

	// The same price on a merely EXCELLENT name avoids.
	in.Tier = domain.TierExcellent
	rating, signal = ClassifyValuation(a, in)
	assert.Equal(t, domain.RatingOvervalued, rating)
	assert.Equal(t, domain.SignalAvoid, signal)

	// The allowance is bounded: past 15% even EXCEPTIONAL avoids.
	in.Tier = domain.TierExceptional
	in.Price = 115.01
	rating, signal = ClassifyValuation(a, in)
	assert.Equal(t, domain.RatingOvervalued, rating)
	assert.Equal(t, domain.SignalAvoid, signal)
}

func TestClassifyValuation_TrapPrecedesExceptional(t *testing.T) {
	a := DefaultAssumptions()

	// Rule order matters: the trap override outranks every other rule,
	// including the exceptional allowance.
	in := RatingInput{Price: 50, IntrinsicValue: 100, MOSValue: 85, Tier: domain.TierExceptional, ValueTrap: true}
	rating, signal := ClassifyValuation(a, in)
	assert.Equal(t, domain.RatingOvervalued, rating)
	assert.Equal(t, domain.SignalValueTrap, signal)
}
