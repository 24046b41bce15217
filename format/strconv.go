package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	fieldDelim = ':'
	biasMark   = 'b'
)

type posError struct {
	pos int
	err string
}

func newPosError(err string, pos int) *posError {
	return &posError{err: err, pos: pos}
}

func (pe posError) Error() string {
	return pe.err + fmt.Sprintf(" at pos %d", pe.pos)
}

func addPosErrorOffset(err error, offset int) error {
	var pe *posError
	if !errors.As(err, &pe) { // try to locate error position.
		return err
	}
	pe.pos += offset
	return pe
}

// Parse parses a format in the notation "e<bins>[b<base>]:m<steps>[b<bias>]",
// for example "e8b2:m256b1", as produced by Format.String.
// Both fields are optional, and can go in any order. Omitted values are taken from Default().
func Parse(s string) (Format, error) {
	s, offset := prepareString(s)
	if len(s) == 0 {
		return Format{}, fmt.Errorf("empty input")
	}
	f := Default()
	seen := map[byte]bool{}
	pos := 0
	for _, field := range strings.Split(s, string(fieldDelim)) {
		if err := parseField(field, &f, seen); err != nil {
			// add what we've trimmed before and add +1 to the offset to start indices from 1.
			return Format{}, fmt.Errorf("parsing failed: %w", addPosErrorOffset(err, offset+pos+1))
		}
		pos += len(field) + 1
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// prepareString cleans the string from " symbols and spaces.
func prepareString(s string) (prepared string, offset int) {
	if len(s) > 0 && s[0] == '"' {
		s = s[1:]
		offset++
	}
	if len(s) > 0 && s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	if trimmed := strings.TrimLeftFunc(s, unicode.IsSpace); len(trimmed) != len(s) {
		offset += len(s) - len(trimmed)
		s = trimmed
	}
	return strings.TrimRightFunc(s, unicode.IsSpace), offset
}

func parseField(field string, f *Format, seen map[byte]bool) error {
	if len(field) == 0 {
		return newPosError("empty field", 0)
	}
	kind := unicode.ToLower(rune(field[0]))
	if kind != 'e' && kind != 'm' {
		return newPosError(fmt.Sprintf("unexpected symbol %q", field[0]), 0)
	}
	if seen[byte(kind)] {
		return newPosError(fmt.Sprintf("duplicate field %q", kind), 0)
	}
	seen[byte(kind)] = true
	body := field[1:]
	stepsStr, biasStr := body, ""
	i := strings.IndexByte(body, biasMark)
	if i >= 0 {
		stepsStr, biasStr = body[:i], body[i+1:]
	}
	steps, err := strconv.ParseUint(stepsStr, 10, 32)
	if err != nil {
		return newPosError("error parsing steps: "+err.Error(), 1)
	}
	bias := 0.
	if i >= 0 {
		if bias, err = strconv.ParseFloat(biasStr, 64); err != nil {
			return newPosError("error parsing bias: "+err.Error(), len(stepsStr)+2)
		}
	}
	if kind == 'e' {
		f.ExponentSteps = uint32(steps)
		if i >= 0 {
			f.ExponentBase = bias
		}
	} else {
		f.MantissaSteps = uint32(steps)
		if i >= 0 {
			f.MantissaBias = bias
		}
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
