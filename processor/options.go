package processor

import (
	"errors"
	"fmt"

	crush "github.com/avdva/floatcrush"
	"github.com/avdva/floatcrush/format"
	mu "github.com/avdva/floatcrush/internal/mathutil"
)

const (
	// MinDriveDB and MaxDriveDB limit the input drive.
	MinDriveDB = -12.0
	MaxDriveDB = 36.0

	defaultDriveDB = 0.0
	defaultDry     = 0.0
	defaultWet     = 1.0
)

// ErrInvalidOption is returned for out of range parameters.
var ErrInvalidOption = errors.New("invalid option")

// Option mutates Crusher construction parameters.
type Option func(*config) error

// config keeps the controls separately, so that the format can be rebuilt after every option.
type config struct {
	driveDB      float64
	exponent     int
	exponentBias float64
	mantissaBits float64
	mantissaBias float64
	dry, wet     float64
	policy       crush.Policy

	format    format.Format
	hasFormat bool
}

func defaultConfig() config {
	return config{
		driveDB:      defaultDriveDB,
		exponent:     format.MaxExponent,
		exponentBias: 1,
		mantissaBits: format.MaxMantissaBits,
		mantissaBias: 0,
		dry:          defaultDry,
		wet:          defaultWet,
		policy:       crush.Nearest,
	}
}

func (cfg *config) buildFormat() (format.Format, error) {
	if cfg.hasFormat {
		return cfg.format, cfg.format.Validate()
	}
	return format.FromControls(cfg.exponent, cfg.exponentBias, cfg.mantissaBits, cfg.mantissaBias)
}

// WithDriveDB sets the input gain in dB, in [-12, 36].
func WithDriveDB(db float64) Option {
	return func(cfg *config) error {
		if err := checkDrive(db); err != nil {
			return err
		}
		cfg.driveDB = db
		return nil
	}
}

// WithExponent sets the number of exponent bins, in [0, 8].
func WithExponent(exponent int) Option {
	return func(cfg *config) error {
		cfg.exponent = exponent
		cfg.hasFormat = false
		return nil
	}
}

// WithExponentBias sets the exponent bias, in [0.5, 2]. Bins are powers of 2*bias.
func WithExponentBias(bias float64) Option {
	return func(cfg *config) error {
		cfg.exponentBias = bias
		cfg.hasFormat = false
		return nil
	}
}

// WithMantissaBits sets the mantissa resolution in bits, in [0, 8].
// Fractional values are supported for smooth parameter sweeps.
func WithMantissaBits(bits float64) Option {
	return func(cfg *config) error {
		cfg.mantissaBits = bits
		cfg.hasFormat = false
		return nil
	}
}

// WithMantissaBias sets the mantissa warp control, in [-1, 1].
// Positive values concentrate mantissa steps near the top of each bin.
func WithMantissaBias(bias float64) Option {
	return func(cfg *config) error {
		cfg.mantissaBias = bias
		cfg.hasFormat = false
		return nil
	}
}

// WithFormat sets the format directly, overriding the format controls.
func WithFormat(f format.Format) Option {
	return func(cfg *config) error {
		cfg.format = f
		cfg.hasFormat = true
		return nil
	}
}

// WithDry sets the gain of the unprocessed signal, in [0, 1].
func WithDry(gain float64) Option {
	return func(cfg *config) error {
		if err := checkGain("dry", gain); err != nil {
			return err
		}
		cfg.dry = gain
		return nil
	}
}

// WithWet sets the gain of the quantized signal, in [0, 1].
func WithWet(gain float64) Option {
	return func(cfg *config) error {
		if err := checkGain("wet", gain); err != nil {
			return err
		}
		cfg.wet = gain
		return nil
	}
}

// WithRounding sets the rounding policy from a signed control:
// negative values round down, zero rounds to nearest, positive values round up.
func WithRounding(control int) Option {
	return func(cfg *config) error {
		cfg.policy = crush.PolicyFromControl(control)
		return nil
	}
}

// WithPolicy sets the rounding policy.
func WithPolicy(p crush.Policy) Option {
	return func(cfg *config) error {
		cfg.policy = p
		return nil
	}
}

func checkDrive(db float64) error {
	if !mu.InClosed(db, MinDriveDB, MaxDriveDB) {
		return fmt.Errorf("%w: drive must be in [%g, %g] dB: %f", ErrInvalidOption, MinDriveDB, MaxDriveDB, db)
	}
	return nil
}

func checkGain(name string, gain float64) error {
	if !mu.InClosed(gain, 0, 1) {
		return fmt.Errorf("%w: %s gain must be in [0, 1]: %f", ErrInvalidOption, name, gain)
	}
	return nil
}
