// Copyright 2020 Aleksandr Demakin. All rights reserved.

package crush

import (
	"math"

	mu "github.com/avdva/floatcrush/internal/mathutil"
)

// StepKind selects the function a Step uses to turn an index into a value.
type StepKind uint8

const (
	// MantissaStep subdivides a range from High down to Low, optionally warped by a bias.
	MantissaStep StepKind = iota
	// ExponentStep produces bias^(-index), ignoring the range.
	ExponentStep
)

// Step maps indices in [0, Len] onto a strictly decreasing sequence of values.
type Step struct {
	Kind StepKind
	Len  uint32
	Bias float64
}

// Mantissa returns a step function dividing a range into 'length' steps.
// bias > 1 concentrates values near the top of the range, 0 < bias < 1 near the bottom.
func Mantissa(length uint32, bias float64) Step {
	return Step{Kind: MantissaStep, Len: length, Bias: bias}
}

// Exponent returns a step function producing successive negative powers of 'base'.
// 'length' only bounds the number of indices searched.
func Exponent(length uint32, base float64) Step {
	return Step{Kind: ExponentStep, Len: length, Bias: base}
}

// Length returns the number of steps.
func (s Step) Length() uint32 {
	return s.Len
}

// Value returns the value for 'index' within r.
// Indices beyond Length() are not meaningful.
func (s Step) Value(index uint32, r Range) float64 {
	if s.Kind == ExponentStep {
		return math.Pow(s.Bias, -float64(index))
	}
	switch {
	case index == 0:
		return r.High
	case index >= s.Len:
		return r.Low
	}
	if mu.IsLinearBias(s.Bias) {
		step := r.Distance() / float64(s.Len)
		return r.High - step*float64(index)
	}
	m := float64(index) / float64(s.Len)
	return r.High - mu.Warp(m, s.Bias)*r.Distance()
}

func (k StepKind) String() string {
	switch k {
	case MantissaStep:
		return "mantissa"
	case ExponentStep:
		return "exponent"
	default:
		return "unknown"
	}
}
