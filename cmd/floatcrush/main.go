// Command floatcrush renders raw float32 PCM through the float crush effect,
// or prints the representable values of a format.
//
// Usage:
//
//	floatcrush --exponent 4 --mantissa 3 < in.f32 > out.f32
//	floatcrush --format e2b2:m4b1 --grid
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/avdva/floatcrush/processor"
	"github.com/spf13/pflag"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("floatcrush: ")
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	c, err := processor.New(opts...)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.Printf("format %s, drive %g dB, dry %g, wet %g, rounding %s",
			c.Format(), c.DriveDB(), c.Dry(), c.Wet(), c.Policy())
	}

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	bw := bufio.NewWriter(out)

	if cfg.Grid {
		if err := c.Format().WriteGrid(bw, cfg.GridPlaces); err != nil {
			return fmt.Errorf("writing grid: %w", err)
		}
		return bw.Flush()
	}

	in, closeIn, err := openInput(cfg.Input, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	total, err := render(c, in, bw, cfg.Block)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		log.Printf("processed %d samples", total)
	}
	return bw.Flush()
}

func render(c *processor.Crusher, in io.Reader, out io.Writer, block int) (total int, err error) {
	pr, pw := newPCMReader(in, block), newPCMWriter(out, block)
	samples := make([]float32, block)
	for {
		n, readErr := pr.Read(samples)
		if n > 0 {
			c.ProcessInPlace(samples[:n])
			if err := pw.Write(samples[:n]); err != nil {
				return total, fmt.Errorf("writing samples: %w", err)
			}
			total += n
		}
		if errors.Is(readErr, io.EOF) {
			return total, nil
		}
		if readErr != nil {
			return total, fmt.Errorf("reading samples: %w", readErr)
		}
	}
}

func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "" || name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return bufio.NewReader(f), func() { f.Close() }, nil
}

func openOutput(name string, stdout io.Writer) (io.Writer, func(), error) {
	if name == "" || name == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Printf("closing %s: %v", name, err)
		}
	}, nil
}
