// Copyright 2020 Aleksandr Demakin. All rights reserved.

package crush

import "fmt"

// Range is a closed interval [Low, High] with High >= Low.
type Range struct {
	High, Low float64
}

// NewRange returns a range for an unordered pair of bounds.
func NewRange(a, b float64) Range {
	if a >= b {
		return Range{High: a, Low: b}
	}
	return Range{High: b, Low: a}
}

// Distance returns High - Low.
func (r Range) Distance() float64 {
	return r.High - r.Low
}

// Contains returns true if Low <= x <= High.
func (r Range) Contains(x float64) bool {
	return x >= r.Low && x <= r.High
}

// String returns debug string representation.
func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.Low, r.High)
}
