// Copyright 2020 Aleksandr Demakin. All rights reserved.

package crush

import "math"

// Sign returns -1 if x has its sign bit set, including -0 and negative NaNs, and 1 otherwise.
func Sign(x float64) float64 {
	if math.Signbit(x) {
		return -1
	}
	return 1
}

// Mix blends a dry and a wet signal: dry*dryGain + wet*wetGain.
// The result is not clamped.
func Mix(dry, dryGain, wet, wetGain float64) float64 {
	return dry*dryGain + wet*wetGain
}
