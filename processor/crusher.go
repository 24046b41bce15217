// Package processor implements a per-sample "float crush" effect: samples are driven,
// hard clipped, stored in a coarse artificial floating-point format, and mixed
// with the unprocessed signal.
package processor

import (
	"fmt"
	"math"

	crush "github.com/avdva/floatcrush"
	"github.com/avdva/floatcrush/format"
	mu "github.com/avdva/floatcrush/internal/mathutil"
)

// Crusher quantizes audio samples in [-1, 1] to a format.Format.
// The effect is stateless between samples, so one Crusher can serve any number of
// interleaved channels. A Crusher is not safe for concurrent use.
type Crusher struct {
	cfg    config
	format format.Format
	drive  float64
}

// New creates a crusher with optional configuration overrides.
// By default the drive is 0 dB, the format is format.Default(),
// the output is fully wet, and values are rounded to nearest.
func New(opts ...Option) (*Crusher, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	c := &Crusher{}
	if err := c.apply(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Set applies options to a running crusher.
// If any option fails, the crusher is left unchanged.
func (c *Crusher) Set(opts ...Option) error {
	cfg := c.cfg
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return err
		}
	}
	return c.apply(cfg)
}

func (c *Crusher) apply(cfg config) error {
	f, err := cfg.buildFormat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	c.cfg = cfg
	c.format = f
	c.drive = mu.DBToGain(cfg.driveDB)
	return nil
}

// SetDriveDB sets the input gain in dB, in [-12, 36].
func (c *Crusher) SetDriveDB(db float64) error {
	return c.Set(WithDriveDB(db))
}

// SetDry sets the dry gain, in [0, 1].
func (c *Crusher) SetDry(gain float64) error {
	return c.Set(WithDry(gain))
}

// SetWet sets the wet gain, in [0, 1].
func (c *Crusher) SetWet(gain float64) error {
	return c.Set(WithWet(gain))
}

// SetFormat replaces the quantization format.
func (c *Crusher) SetFormat(f format.Format) error {
	return c.Set(WithFormat(f))
}

// SetPolicy sets the rounding policy.
func (c *Crusher) SetPolicy(p crush.Policy) {
	c.cfg.policy = p
}

// DriveDB returns the input gain in dB.
func (c *Crusher) DriveDB() float64 { return c.cfg.driveDB }

// Dry returns the dry gain.
func (c *Crusher) Dry() float64 { return c.cfg.dry }

// Wet returns the wet gain.
func (c *Crusher) Wet() float64 { return c.cfg.wet }

// Format returns the quantization format.
func (c *Crusher) Format() format.Format { return c.format }

// Policy returns the rounding policy.
func (c *Crusher) Policy() crush.Policy { return c.cfg.policy }

// ProcessSample processes one sample.
func (c *Crusher) ProcessSample(input float32) float32 {
	return float32(c.process(float64(input)))
}

func (c *Crusher) process(dry float64) float64 {
	driven := dry * c.drive
	var wet float64
	if math.Abs(driven) >= 1 {
		wet = crush.Sign(driven)
	} else {
		wet = c.format.Quantize(driven, c.cfg.policy)
	}
	return crush.Mix(dry, c.cfg.dry, wet, c.cfg.wet)
}

// ProcessInPlace processes buf in place.
func (c *Crusher) ProcessInPlace(buf []float32) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// Process processes src into dst, and returns the number of processed samples,
// which is the minimum of len(dst) and len(src).
func (c *Crusher) Process(dst, src []float32) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = c.ProcessSample(src[i])
	}
	return n
}

// Process64 is Process for float64 samples.
func (c *Crusher) Process64(dst, src []float64) int {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = c.process(src[i])
	}
	return n
}
