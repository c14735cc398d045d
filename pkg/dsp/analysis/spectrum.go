// Package analysis provides non-real-time inspection of the audio
// output, currently a magnitude spectrum fed from the process loop.
package analysis

import (
	"math"
	"sync/atomic"

	"github.com/ktye/fft"
)

// SpectrumSize is the FFT length. Must be a power of two.
const SpectrumSize = 1024

// NumBins is the number of magnitude bins Magnitudes produces.
const NumBins = SpectrumSize / 2

// Spectrum captures recent output samples and computes magnitude
// spectra on demand. Push is called from the audio thread and only
// writes the ring and bumps an atomic cursor; Transform runs on
// whatever thread calls Magnitudes.
type Spectrum struct {
	ring   [SpectrumSize]float32
	cursor atomic.Uint64

	f      fft.FFT
	ready  bool
	window [SpectrumSize]float64
	work   [SpectrumSize]complex128
}

// NewSpectrum creates a spectrum analyser.
func NewSpectrum() *Spectrum {
	s := &Spectrum{}
	f, err := fft.New(SpectrumSize)
	if err == nil {
		s.f = f
		s.ready = true
	}
	for i := range s.window {
		// Hann window
		s.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(SpectrumSize-1)))
	}
	return s
}

// Push records one stereo output frame. Safe to call from the audio
// thread; it never allocates or locks.
func (s *Spectrum) Push(left, right float32) {
	c := s.cursor.Load()
	s.ring[c%SpectrumSize] = 0.5 * (left + right)
	s.cursor.Store(c + 1)
}

// PushBlock records a whole block of stereo output.
func (s *Spectrum) PushBlock(left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	c := s.cursor.Load()
	for i := 0; i < n; i++ {
		s.ring[(c+uint64(i))%SpectrumSize] = 0.5 * (left[i] + right[i])
	}
	s.cursor.Store(c + uint64(n))
}

// Magnitudes computes the current magnitude spectrum into dst, reusing
// its capacity, and returns the filled slice of NumBins values. The
// ring may be written concurrently; a torn frame only blurs one
// display update, which is acceptable for telemetry.
func (s *Spectrum) Magnitudes(dst []float32) []float32 {
	dst = dst[:0]
	if !s.ready {
		return dst
	}

	c := s.cursor.Load()
	start := c // oldest sample is at cursor position in a full ring
	for i := 0; i < SpectrumSize; i++ {
		sample := float64(s.ring[(start+uint64(i))%SpectrumSize])
		s.work[i] = complex(sample*s.window[i], 0)
	}

	bins := s.f.Transform(s.work[:])

	scale := 2.0 / float64(SpectrumSize)
	for i := 0; i < NumBins; i++ {
		dst = append(dst, float32(cmplxAbs(bins[i])*scale))
	}
	return dst
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
