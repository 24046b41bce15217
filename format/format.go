// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package format describes an artificial floating-point format: a number of
// exponent bins, each being a range between two successive negative powers of a base,
// and a number of mantissa steps subdividing every bin.
// Samples are quantized in two stages: an exponent search locates the bin,
// a mantissa search refines the value within it.
package format

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	crush "github.com/avdva/floatcrush"
	mu "github.com/avdva/floatcrush/internal/mathutil"
	"github.com/shopspring/decimal"
)

const (
	// MaxExponent is the largest number of exponent bins accepted by FromControls.
	MaxExponent = 8
	// MinExponentBias and MaxExponentBias limit the exponent bias control.
	// The exponent base is twice the bias.
	MinExponentBias = 0.5
	MaxExponentBias = 2
	// MaxMantissaBits limits the mantissa control. The number of steps is round(2^bits).
	MaxMantissaBits = 8
	// the mantissa bias control in [-1, 1] maps to mantissaBiasScale^control.
	mantissaBiasScale = 100
)

var (
	// ErrInvalidControl is returned for out of range control values.
	ErrInvalidControl = errors.New("invalid control value")
	// ErrInvalidFormat is returned for formats which do not describe a decreasing grid.
	ErrInvalidFormat = errors.New("invalid format")
)

// Format is a discretized floating-point format for values in [-1, 1].
type Format struct {
	// ExponentSteps is the number of exponent bins.
	// Bin i spans [ExponentBase^-(i+1), ExponentBase^-i].
	ExponentSteps uint32 `json:"exponent"`
	ExponentBase  float64 `json:"exponentBase"`
	// MantissaSteps is the number of subdivisions of every bin.
	MantissaSteps uint32 `json:"mantissa"`
	// MantissaBias warps the subdivisions, 1 means uniform.
	MantissaBias float64 `json:"mantissaBias"`
}

// Default returns a format with 8 binary exponents and 8 linear mantissa bits.
func Default() Format {
	return Format{
		ExponentSteps: 8,
		ExponentBase:  2,
		MantissaSteps: 256,
		MantissaBias:  1,
	}
}

// FromControls builds a format from user-facing controls:
//	exponent in [0, 8] is the number of exponent bins;
//	exponentBias in [0.5, 2] gives the exponent base 2*exponentBias;
//	mantissaBits in [0, 8] gives round(2^mantissaBits) mantissa steps;
//	mantissaBias in [-1, 1] gives the mantissa warp 100^mantissaBias.
func FromControls(exponent int, exponentBias, mantissaBits, mantissaBias float64) (Format, error) {
	if exponent < 0 || exponent > MaxExponent {
		return Format{}, fmt.Errorf("%w: exponent must be in [0, %d]: %d", ErrInvalidControl, MaxExponent, exponent)
	}
	if !mu.InClosed(exponentBias, MinExponentBias, MaxExponentBias) {
		return Format{}, fmt.Errorf("%w: exponent bias must be in [%g, %g]: %f",
			ErrInvalidControl, float64(MinExponentBias), float64(MaxExponentBias), exponentBias)
	}
	if !mu.InClosed(mantissaBits, 0, MaxMantissaBits) {
		return Format{}, fmt.Errorf("%w: mantissa bits must be in [0, %d]: %f", ErrInvalidControl, MaxMantissaBits, mantissaBits)
	}
	if !mu.InClosed(mantissaBias, -1, 1) {
		return Format{}, fmt.Errorf("%w: mantissa bias must be in [-1, 1]: %f", ErrInvalidControl, mantissaBias)
	}
	return Format{
		ExponentSteps: uint32(exponent),
		ExponentBase:  2 * exponentBias,
		MantissaSteps: uint32(math.Round(math.Exp2(mantissaBits))),
		MantissaBias:  math.Pow(mantissaBiasScale, mantissaBias),
	}, nil
}

// Validate checks that the format describes a decreasing grid.
func (f Format) Validate() error {
	if !mu.IsFinite(f.ExponentBase) || f.ExponentBase < 1 {
		return fmt.Errorf("%w: exponent base must be a finite number >= 1: %f", ErrInvalidFormat, f.ExponentBase)
	}
	if !mu.IsFinite(f.MantissaBias) || f.MantissaBias <= 0 {
		return fmt.Errorf("%w: mantissa bias must be a finite positive number: %f", ErrInvalidFormat, f.MantissaBias)
	}
	return nil
}

// Floor returns the smallest normal magnitude, ExponentBase^-ExponentSteps.
// Magnitudes below it are quantized linearly between 0 and Floor.
func (f Format) Floor() float64 {
	return f.exponent().Value(f.ExponentSteps, unitRange)
}

var unitRange = crush.NewRange(1, 0)

func (f Format) exponent() crush.Step {
	return crush.Exponent(f.ExponentSteps, f.ExponentBase)
}

// Quantize returns the representable value for the sample chosen by p.
// Samples with magnitudes of 1 or more are clipped to +-1.
// Quantize does not allocate.
func (f Format) Quantize(sample float64, p crush.Policy) float64 {
	if math.IsNaN(sample) {
		return sample
	}
	sign := crush.Sign(sample)
	mag := math.Abs(sample)
	if mag >= 1 {
		return sign
	}
	if f.ExponentSteps == 0 {
		return crush.Quantize(f.MantissaSteps, f.MantissaBias, unitRange, sample, p)
	}
	if floor := f.Floor(); mag < floor {
		return crush.Quantize(f.MantissaSteps, f.MantissaBias, crush.NewRange(floor, 0), sample, p)
	}
	w, err := crush.NewWindow(f.exponent(), unitRange, mag)
	if err != nil {
		panic(err) // unreachable: 0 <= mag < 1.
	}
	o := w.Run()
	if o.Kind == crush.ExactMatch {
		return sample
	}
	return crush.Quantize(f.MantissaSteps, f.MantissaBias, crush.NewRange(o.Upper, o.Lower), sample, p)
}

// Grid returns all non-negative representable values in ascending order.
func (f Format) Grid() []float64 {
	mant := crush.Mantissa(f.MantissaSteps, f.MantissaBias)
	values := make([]float64, 0, int(f.ExponentSteps+1)*int(f.MantissaSteps+1)+1)
	addBin := func(r crush.Range) {
		for i := uint32(0); i <= mant.Length(); i++ {
			values = append(values, mant.Value(i, r))
		}
		values = append(values, r.Low)
	}
	values = append(values, 0)
	if f.ExponentSteps == 0 {
		addBin(unitRange)
	} else {
		exp := f.exponent()
		for i := uint32(0); i < f.ExponentSteps; i++ {
			addBin(crush.NewRange(exp.Value(i, unitRange), exp.Value(i+1, unitRange)))
		}
		addBin(crush.NewRange(f.Floor(), 0))
	}
	sort.Float64s(values)
	result := values[:1]
	for _, v := range values[1:] {
		if v != result[len(result)-1] {
			result = append(result, v)
		}
	}
	return result
}

// WriteGrid writes the grid, one "index<TAB>value" line per value, with values
// formatted as exact decimals. If places >= 0, values are rounded to 'places' digits.
func (f Format) WriteGrid(w io.Writer, places int32) error {
	for i, v := range f.Grid() {
		d := decimal.NewFromFloat(v)
		s := d.String()
		if places >= 0 {
			s = d.StringFixed(places)
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\n", i, s); err != nil {
			return err
		}
	}
	return nil
}

// String returns the format in its text notation, see Parse.
func (f Format) String() string {
	return fmt.Sprintf("e%db%s:m%db%s", f.ExponentSteps, formatFloat(f.ExponentBase),
		f.MantissaSteps, formatFloat(f.MantissaBias))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON marshals the format as an object.
func (f Format) MarshalJSON() ([]byte, error) {
	type plain Format
	return json.Marshal(plain(f))
}

// UnmarshalJSON unmarshals an object, or a string in the text notation.
func (f *Format) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty json")
	}
	switch data[0] {
	case '{':
		type plain Format
		d := plain(Default())
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		if err := Format(d).Validate(); err != nil {
			return err
		}
		*f = Format(d)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return f.UnmarshalText([]byte(s))
	}
	return nil
}
