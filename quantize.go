// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package crush quantizes samples in [-1, 1] onto the grid of an artificial
// floating-point format with configurable exponent and mantissa resolution.
// Grid values are produced by step functions, and the nearest ones are found by
// a binary search, so that quantization takes logarithmic time and never allocates.
// All functions are pure and safe to call from a real-time audio callback.
package crush

import (
	"math"
)

// Quantize maps the sample onto a grid of 'steps' subdivisions of r, warped with 'bias',
// choosing between adjacent grid values with p.
// Magnitudes below r.Low are quantized between 0 and r.Low,
// magnitudes above r.High are clipped to r.High. The sign of the sample is kept.
func Quantize(steps uint32, bias float64, r Range, sample float64, p Policy) float64 {
	if math.IsNaN(sample) {
		return sample
	}
	sign := Sign(sample)
	mag := math.Abs(sample)
	switch {
	case mag < r.Low:
		return p.Quantize(r.Low, 0, mag) * sign
	case mag > r.High:
		mag = r.High
	}
	if steps == 0 {
		if mag == r.High || mag == r.Low {
			return mag * sign
		}
		return p.Quantize(r.High, r.Low, mag) * sign
	}
	w, err := NewWindow(Mantissa(steps, bias), r, mag)
	if err != nil {
		panic(err) // unreachable: mag was clamped into r.
	}
	o := w.Run()
	if o.Kind == ExactMatch {
		return o.Value * sign
	}
	return p.Quantize(o.Upper, o.Lower, o.Value) * sign
}
