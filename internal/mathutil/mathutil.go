package mathutil

import (
	"math"
	"math/bits"
	"unsafe"
)

// linearBiasTolerance is the largest |ln(bias)| treated as a uniform warp.
const linearBiasTolerance = 1e-9

// BinaryDigits returns the number of bits needed to represent 'value'.
func BinaryDigits(value uint64) int {
	return int(8*unsafe.Sizeof(uint64(0))) - bits.LeadingZeros64(value)
}

// CeilLog2 returns ceil(log2(n)), and 0 for n <= 1.
func CeilLog2(n uint32) int {
	if n <= 1 {
		return 0
	}
	return BinaryDigits(uint64(n - 1))
}

func Int64Sign(v int64) int {
	if v == 0 {
		return 0
	}
	return [...]int{1, -1}[uint64(v)>>63]
}

// IsLinearBias reports whether a warp with the given bias degenerates into a straight line.
func IsLinearBias(bias float64) bool {
	return bias == 1 || math.Abs(math.Log(bias)) < linearBiasTolerance
}

// Warp maps m in [0, 1] through (bias^m - 1) / (bias - 1).
// The ratio is evaluated with Expm1, so biases close to 1 keep their precision.
func Warp(m, bias float64) float64 {
	if IsLinearBias(bias) {
		return m
	}
	lb := math.Log(bias)
	return math.Expm1(m*lb) / math.Expm1(lb)
}

// DBToGain converts decibels into a linear gain factor.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

func IsFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// InClosed reports whether f is a finite number in [lo, hi].
func InClosed(f, lo, hi float64) bool {
	return IsFinite(f) && lo <= f && f <= hi
}
