package processor

import (
	"errors"
	"fmt"
	"math"
	"testing"

	crush "github.com/avdva/floatcrush"
	"github.com/avdva/floatcrush/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	a := assert.New(t)
	c, err := New()
	require.NoError(t, err)
	a.Equal(0.0, c.DriveDB())
	a.Equal(0.0, c.Dry())
	a.Equal(1.0, c.Wet())
	a.Equal(format.Default(), c.Format())
	a.Equal(crush.Nearest, c.Policy())
}

func TestNewErrors(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		opt Option
		err string
	}{
		{WithDriveDB(40), "invalid option: drive must be in [-12, 36] dB: 40.000000"},
		{WithDriveDB(math.NaN()), "invalid option: drive must be in [-12, 36] dB: NaN"},
		{WithDry(-0.1), "invalid option: dry gain must be in [0, 1]: -0.100000"},
		{WithWet(2), "invalid option: wet gain must be in [0, 1]: 2.000000"},
		{WithExponent(9), "invalid option: invalid control value: exponent must be in [0, 8]: 9"},
		{WithExponentBias(3), "invalid option: invalid control value: exponent bias must be in [0.5, 2]: 3.000000"},
		{WithMantissaBits(-1), "invalid option: invalid control value: mantissa bits must be in [0, 8]: -1.000000"},
		{WithMantissaBias(2), "invalid option: invalid control value: mantissa bias must be in [-1, 1]: 2.000000"},
		{WithFormat(format.Format{ExponentBase: 0.5, MantissaBias: 1}),
			"invalid option: invalid format: exponent base must be a finite number >= 1: 0.500000"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			c, err := New(test.opt)
			a.Nil(c)
			a.EqualError(err, test.err)
			a.True(errors.Is(err, ErrInvalidOption))
		})
	}
}

func TestProcessSample(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		opts   []Option
		input  float32
		output float32
	}{
		{nil, 0.6, 0.599609375},
		{nil, -0.6, -0.599609375},
		{nil, 0, 0},
		{nil, 1.5, 1},
		{nil, -3, -1},
		{nil, 1, 1},
		{[]Option{WithRounding(1)}, 0.6, 0.6015625},
		{[]Option{WithPolicy(crush.RoundDown)}, 0.6015, 0.599609375},
		{[]Option{WithDriveDB(6)}, 0.3, 0.59765625},
		{[]Option{WithDriveDB(36)}, 0.1, 1},
		{[]Option{WithDry(1), WithWet(0)}, 0.3, 0.3},
		{[]Option{WithDry(0.5), WithWet(0.5)}, 0.6, float32(0.5*float64(float32(0.6)) + 0.5*0.599609375)},
		{[]Option{WithExponent(0), WithMantissaBits(1)}, 0.6, 0.5},
		{[]Option{WithExponent(0), WithMantissaBits(3)}, 0.6, 0.625},
		{[]Option{WithFormat(format.Format{ExponentSteps: 8, ExponentBase: 2, MantissaSteps: 0, MantissaBias: 1})}, 0.3, 0.25},
		{[]Option{WithFormat(format.Default()), WithMantissaBits(1), WithExponent(1)}, 0.6, 0.5},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			c, err := New(test.opts...)
			if a.NoError(err) {
				a.Equal(test.output, c.ProcessSample(test.input))
			}
		})
	}
}

func TestProcessNaN(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(c.ProcessSample(float32(math.NaN())))))
}

func TestSet(t *testing.T) {
	a := assert.New(t)
	c, err := New()
	require.NoError(t, err)

	a.NoError(c.SetDriveDB(-6))
	a.Equal(-6.0, c.DriveDB())
	a.NoError(c.SetDry(0.25))
	a.NoError(c.SetWet(0.75))
	a.Equal(0.25, c.Dry())
	a.Equal(0.75, c.Wet())

	f := format.Format{ExponentSteps: 2, ExponentBase: 2, MantissaSteps: 2, MantissaBias: 1}
	a.NoError(c.SetFormat(f))
	a.Equal(f, c.Format())

	c.SetPolicy(crush.RoundUp)
	a.Equal(crush.RoundUp, c.Policy())

	// failed updates leave the crusher unchanged.
	a.Error(c.Set(WithDry(0.5), WithWet(3)))
	a.Equal(0.25, c.Dry())
	a.Error(c.SetFormat(format.Format{}))
	a.Equal(f, c.Format())
	a.Error(c.SetDriveDB(100))
	a.Equal(-6.0, c.DriveDB())

	// switching back to controls.
	a.NoError(c.Set(WithMantissaBits(2), WithExponent(3)))
	a.Equal(format.Format{ExponentSteps: 3, ExponentBase: 2, MantissaSteps: 4, MantissaBias: 1}, c.Format())
}

func TestProcessMatchesSample(t *testing.T) {
	a := assert.New(t)
	c, err := New(WithDriveDB(12), WithExponent(4), WithMantissaBits(3.5), WithMantissaBias(0.3), WithDry(0.2))
	require.NoError(t, err)

	input := testSine(256)
	want := make([]float32, len(input))
	for i := range input {
		want[i] = c.ProcessSample(input[i])
	}

	got := make([]float32, len(input))
	a.Equal(len(input), c.Process(got, input))
	a.Equal(want, got)

	a.Equal(10, c.Process(got[:10], input))

	inPlace := append([]float32(nil), input...)
	c.ProcessInPlace(inPlace)
	a.Equal(want, inPlace)

	src64 := make([]float64, len(input))
	for i := range input {
		src64[i] = float64(input[i])
	}
	dst64 := make([]float64, len(input))
	a.Equal(len(input), c.Process64(dst64, src64))
	for i := range dst64 {
		a.Equal(want[i], float32(dst64[i]))
	}
}

func TestProcessBounded(t *testing.T) {
	c, err := New(WithDriveDB(36))
	require.NoError(t, err)
	buf := testSine(1024)
	c.ProcessInPlace(buf)
	for i, v := range buf {
		assert.LessOrEqual(t, math.Abs(float64(v)), 1.0, "sample %d", i)
	}
}

func TestProcessAllocs(t *testing.T) {
	c, err := New(WithMantissaBias(0.5))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	buf := testSine(960)
	allocs := testing.AllocsPerRun(200, func() {
		c.ProcessInPlace(buf)
	})
	if allocs != 0 {
		t.Fatalf("ProcessInPlace allocs/op = %.2f, want 0", allocs)
	}
}

func BenchmarkProcessInPlace(b *testing.B) {
	c, err := New()
	if err != nil {
		b.Fatal(err)
	}
	buf := testSine(960)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ProcessInPlace(buf)
	}
}

func testSine(samples int) []float32 {
	pcm := make([]float32, samples)
	for i := range pcm {
		pcm[i] = float32(0.8 * math.Sin(2*math.Pi*440*float64(i)/48000))
	}
	return pcm
}
