package cfr

import (
	"fmt"
	"math"
)

// Variant selects the update a Trainer applies to every accumulator after
// each completed iteration.
type Variant int

const (
	// Vanilla applies no post-iteration update.
	Vanilla Variant = iota
	// CFRPlus floors negative cumulative regret to zero after every
	// iteration.
	CFRPlus
	// LinearCFR discounts cumulative regret and strategy weight by
	// t/(t+1) after iteration t, which weights iteration t's
	// contribution linearly in t.
	LinearCFR
	// DiscountedCFR applies the DiscountParams decay schedule after
	// every iteration.
	DiscountedCFR
)

// String implements fmt.Stringer.
func (v Variant) String() string {
	switch v {
	case Vanilla:
		return "vanilla"
	case CFRPlus:
		return "cfr+"
	case LinearCFR:
		return "linear"
	case DiscountedCFR:
		return "discounted"
	}

	return fmt.Sprintf("variant(%d)", int(v))
}

// DiscountParams are the shape parameters of the DiscountedCFR decay
// schedule. See: https://arxiv.org/pdf/1809.04040.pdf.
type DiscountParams struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultDiscountParams returns the published defaults: α=3/2, β=0, γ=2.
// Note that β=0 makes the negative-regret factor a constant 1/2 at every
// iteration; the schedule is applied exactly as parameterized.
func DefaultDiscountParams() DiscountParams {
	return DiscountParams{Alpha: 1.5, Beta: 0, Gamma: 2}
}

// DiscountFactors returns the multiplicative decay applied after iteration
// t to positive regret, negative regret, and cumulative strategy weight:
//
//	positive = t^α / (t^α + 1)
//	negative = t^β / (t^β + 1)
//	strategy = (t / (t+1))^γ
func (p DiscountParams) DiscountFactors(t int) (positive, negative, strategy float64) {
	x := math.Pow(float64(t), p.Alpha)
	positive = x / (x + 1)

	y := math.Pow(float64(t), p.Beta)
	negative = y / (y + 1)

	strategy = math.Pow(float64(t)/float64(t+1), p.Gamma)
	return positive, negative, strategy
}
