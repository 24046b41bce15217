// Copyright 2020 Aleksandr Demakin. All rights reserved.

package crush

import (
	"errors"
	"fmt"

	mu "github.com/avdva/floatcrush/internal/mathutil"
)

// ErrOutOfRange is returned, when a search target lies outside of its range.
var ErrOutOfRange = errors.New("target out of range")

// RangeError describes a search started with a target outside of its range.
type RangeError struct {
	Target float64
	Range  Range
}

func (re *RangeError) Error() string {
	return fmt.Sprintf("%v: %v not in %v", ErrOutOfRange, re.Target, re.Range)
}

func (re *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// OutcomeKind tells whether a search has finished, and how.
type OutcomeKind uint8

const (
	// CutHalf means the window was narrowed and the search continues.
	CutHalf OutcomeKind = iota
	// TwoLeft means the window holds a single pair of adjacent values, Upper and Lower.
	TwoLeft
	// ExactMatch means the target is a representable value.
	ExactMatch
)

// Outcome is the result of a single Cull call.
// For TwoLeft, Upper and Lower are the values bracketing Value.
// For ExactMatch, Value is the matched target.
type Outcome struct {
	Kind         OutcomeKind
	Upper, Lower float64
	Value        float64
}

// Done returns true for terminal outcomes.
func (o Outcome) Done() bool {
	return o.Kind != CutHalf
}

// Window is a binary search state over the indices of a step function.
// The value nearest to the target always stays within [start, start+length].
// A Window is not safe for concurrent use.
type Window struct {
	start, length uint32
	step          Step
	rng           Range
	target        float64
}

// NewWindow returns a search window for the target.
// Returns a *RangeError if r does not contain the target.
func NewWindow(step Step, r Range, target float64) (Window, error) {
	if !r.Contains(target) {
		return Window{}, &RangeError{Target: target, Range: r}
	}
	return Window{
		length: step.Length(),
		step:   step,
		rng:    r,
		target: target,
	}, nil
}

// Start returns the first index of the window.
func (w *Window) Start() uint32 {
	return w.start
}

// Len returns the number of steps left in the window.
func (w *Window) Len() uint32 {
	return w.length
}

// Center returns the index in the middle of the window.
func (w *Window) Center() uint32 {
	return w.start + w.length/2
}

// CenterValue returns the value at Center().
func (w *Window) CenterValue() float64 {
	return w.step.Value(w.Center(), w.rng)
}

// Cull narrows the window by a half, or reports a terminal outcome.
func (w *Window) Cull() Outcome {
	switch w.length {
	case 0:
		// a step function without steps brackets its whole range.
		return Outcome{Kind: TwoLeft, Upper: w.step.Value(w.start, w.rng), Lower: w.rng.Low, Value: w.target}
	case 1:
		upper := w.step.Value(w.start, w.rng)
		lower := w.step.Value(w.start+1, w.rng)
		if upper == w.target || lower == w.target {
			return Outcome{Kind: ExactMatch, Value: w.target}
		}
		return Outcome{Kind: TwoLeft, Upper: upper, Lower: lower, Value: w.target}
	}
	c := w.CenterValue()
	switch {
	case c == w.target:
		return Outcome{Kind: ExactMatch, Value: w.target}
	case c > w.target:
		// values decrease with the index, so the target is to the right.
		w.start = w.Center()
	}
	w.length -= w.length / 2
	return Outcome{Kind: CutHalf}
}

// Run culls the window until a terminal outcome.
func (w *Window) Run() Outcome {
	for {
		if o := w.Cull(); o.Done() {
			return o
		}
	}
}

// Search runs a binary search for the target over the values of the step function.
func Search(step Step, r Range, target float64) (Outcome, error) {
	w, err := NewWindow(step, r, target)
	if err != nil {
		return Outcome{}, err
	}
	return w.Run(), nil
}

// MaxCulls returns the maximum number of Cull calls a window of 'length' steps needs.
func MaxCulls(length uint32) int {
	return mu.CeilLog2(length) + 1
}

func (k OutcomeKind) String() string {
	switch k {
	case CutHalf:
		return "cut-half"
	case TwoLeft:
		return "two-left"
	case ExactMatch:
		return "exact-match"
	default:
		return "unknown"
	}
}
