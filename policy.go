// Copyright 2020 Aleksandr Demakin. All rights reserved.

package crush

import (
	"fmt"
	"strings"

	mu "github.com/avdva/floatcrush/internal/mathutil"
)

// Policy chooses between two adjacent representable values.
type Policy int8

const (
	// RoundDown always picks the lower value.
	RoundDown Policy = -1
	// Nearest picks the value closest to the sample, ties go to the lower value.
	Nearest Policy = 0
	// RoundUp always picks the upper value.
	RoundUp Policy = 1
)

// PolicyFromControl maps a signed control value onto a policy:
// negative values round down, zero rounds to nearest, positive values round up.
func PolicyFromControl(control int) Policy {
	return Policy(mu.Int64Sign(int64(control)))
}

// ParsePolicy parses a policy name, as returned by String, or a signed control value.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down", "rounddown", "-1":
		return RoundDown, nil
	case "nearest", "0", "":
		return Nearest, nil
	case "up", "roundup", "1":
		return RoundUp, nil
	}
	return Nearest, fmt.Errorf("unknown rounding policy %q", s)
}

// Quantize picks upper or lower for the sample.
func (p Policy) Quantize(upper, lower, sample float64) float64 {
	switch p {
	case RoundUp:
		return upper
	case RoundDown:
		return lower
	default:
		if sample > (upper+lower)/2 {
			return upper
		}
		return lower
	}
}

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	default:
		return "nearest"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(data []byte) error {
	parsed, err := ParsePolicy(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
