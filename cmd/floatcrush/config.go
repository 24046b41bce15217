package main

import (
	"errors"
	"fmt"
	"strings"

	crush "github.com/avdva/floatcrush"
	"github.com/avdva/floatcrush/format"
	"github.com/avdva/floatcrush/processor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings of a rendering run.
type Config struct {
	Input        string  `mapstructure:"input"`
	Output       string  `mapstructure:"output"`
	Grid         bool    `mapstructure:"grid"`
	GridPlaces   int32   `mapstructure:"grid_places"`
	Block        int     `mapstructure:"block"`
	Format       string  `mapstructure:"format"`
	DriveDB      float64 `mapstructure:"drive"`
	Exponent     int     `mapstructure:"exponent"`
	ExponentBias float64 `mapstructure:"exponent_bias"`
	Mantissa     float64 `mapstructure:"mantissa"`
	MantissaBias float64 `mapstructure:"mantissa_bias"`
	Dry          float64 `mapstructure:"dry"`
	Wet          float64 `mapstructure:"wet"`
	Rounding     string  `mapstructure:"rounding"`
	Verbose      bool    `mapstructure:"verbose"`
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "Path to the configuration file")
	fs.String("input", "-", "Raw little-endian float32 PCM input, - for stdin")
	fs.String("output", "-", "Raw little-endian float32 PCM output, - for stdout")
	fs.Bool("grid", false, "Print the representable values of the format and exit")
	fs.Int32("grid-places", -1, "Decimal places for --grid, -1 for exact values")
	fs.Int("block", 4096, "Number of samples processed per block")
	fs.String("format", "", `Format notation, like "e8b2:m256b1", overrides the format controls`)
	fs.Float64("drive", 0, "Input drive in dB, [-12, 36]")
	fs.Int("exponent", format.MaxExponent, "Number of exponent bins, [0, 8]")
	fs.Float64("exponent-bias", 1, "Exponent bias, [0.5, 2]")
	fs.Float64("mantissa", format.MaxMantissaBits, "Mantissa bits, [0, 8]")
	fs.Float64("mantissa-bias", 0, "Mantissa bias, [-1, 1]")
	fs.Float64("dry", 0, "Dry gain, [0, 1]")
	fs.Float64("wet", 1, "Wet gain, [0, 1]")
	fs.String("rounding", "nearest", "Rounding policy: down, nearest or up")
	fs.BoolP("verbose", "v", false, "Log the configuration and statistics")

	normalizeFunc := fs.GetNormalizeFunc()
	fs.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		name = strings.ReplaceAll(string(result), "-", "_")
		return pflag.NormalizedName(name)
	})
	return fs
}

// LoadConfig merges flags, FLOATCRUSH_* environment variables and an optional config file.
func LoadConfig(args []string) (Config, error) {
	fs := newFlagSet("floatcrush")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("FLOATCRUSH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("binding flags: %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		v.SetConfigName("floatcrush")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/floatcrush/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if cfg.Block <= 0 {
		return Config{}, fmt.Errorf("block must be positive: %d", cfg.Block)
	}
	return cfg, nil
}

// Options converts the configuration into crusher options.
func (cfg Config) Options() ([]processor.Option, error) {
	policy, err := crush.ParsePolicy(cfg.Rounding)
	if err != nil {
		return nil, err
	}
	opts := []processor.Option{
		processor.WithDriveDB(cfg.DriveDB),
		processor.WithExponent(cfg.Exponent),
		processor.WithExponentBias(cfg.ExponentBias),
		processor.WithMantissaBits(cfg.Mantissa),
		processor.WithMantissaBias(cfg.MantissaBias),
		processor.WithDry(cfg.Dry),
		processor.WithWet(cfg.Wet),
		processor.WithPolicy(policy),
	}
	if cfg.Format != "" {
		f, err := format.Parse(cfg.Format)
		if err != nil {
			return nil, fmt.Errorf("bad format: %w", err)
		}
		opts = append(opts, processor.WithFormat(f))
	}
	return opts, nil
}
