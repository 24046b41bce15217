package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const bytesPerSample = 4

// pcmReader reads raw little-endian float32 samples.
type pcmReader struct {
	r   io.Reader
	buf []byte
}

func newPCMReader(r io.Reader, block int) *pcmReader {
	return &pcmReader{r: r, buf: make([]byte, block*bytesPerSample)}
}

// Read fills samples and returns the number of samples read.
// A trailing partial sample is reported as an error,
// along with the complete samples before it.
func (pr *pcmReader) Read(samples []float32) (int, error) {
	n := len(samples) * bytesPerSample
	if n > len(pr.buf) {
		n = len(pr.buf)
	}
	read, err := io.ReadFull(pr.r, pr.buf[:n])
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	count := read / bytesPerSample
	for i := 0; i < count; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(pr.buf[i*bytesPerSample:]))
	}
	if tail := read % bytesPerSample; tail != 0 {
		return count, fmt.Errorf("truncated sample: %d trailing bytes", tail)
	}
	return count, err
}

// pcmWriter writes raw little-endian float32 samples.
type pcmWriter struct {
	w   io.Writer
	buf []byte
}

func newPCMWriter(w io.Writer, block int) *pcmWriter {
	return &pcmWriter{w: w, buf: make([]byte, block*bytesPerSample)}
}

func (pw *pcmWriter) Write(samples []float32) error {
	for len(samples) > 0 {
		n := len(samples)
		if limit := len(pw.buf) / bytesPerSample; n > limit {
			n = limit
		}
		for i, s := range samples[:n] {
			binary.LittleEndian.PutUint32(pw.buf[i*bytesPerSample:], math.Float32bits(s))
		}
		if _, err := pw.w.Write(pw.buf[:n*bytesPerSample]); err != nil {
			return err
		}
		samples = samples[n:]
	}
	return nil
}
