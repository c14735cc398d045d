// Package modulation provides low-frequency modulation sources.
package modulation

import (
	"math"
	"math/rand"
)

// Waveform selects the LFO shape.
type Waveform int

const (
	// WaveformSine produces a sine wave
	WaveformSine Waveform = iota
	// WaveformTriangle produces a piecewise-linear triangle wave
	WaveformTriangle
	// WaveformSquare produces a square wave (±1, split at phase 0.5)
	WaveformSquare
	// WaveformNoise produces a fresh random value every sample
	WaveformNoise
	// WaveformSteppedNoise holds a random value for one full cycle (sample & hold)
	WaveformSteppedNoise
)

// NumWaveforms is the number of selectable waveforms.
const NumWaveforms = 5

// LFO is a low-frequency oscillator producing a bipolar control signal.
// The phase accumulator lives in [0,1) and advances by frequency/sampleRate
// per sample.
type LFO struct {
	sampleRate float64
	phase      float64
	lastPhase  float64
	frequency  float64
	waveform   Waveform

	rng  *rand.Rand
	held float32
}

// NewLFO creates an LFO. The noise waveforms are seeded from the global
// entropy source; use SetSeed for deterministic output.
func NewLFO(sampleRate float64) *LFO {
	l := &LFO{
		sampleRate: sampleRate,
		frequency:  1.0,
		waveform:   WaveformSine,
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
	l.held = l.random()
	return l
}

// SetSeed reseeds the noise source for reproducible output.
func (l *LFO) SetSeed(seed int64) {
	l.rng = rand.New(rand.NewSource(seed))
	l.held = l.random()
}

// SetFrequency sets the oscillation rate in Hz, limited to the LFO range.
func (l *LFO) SetFrequency(hz float64) {
	l.frequency = math.Max(0.01, math.Min(20.0, hz))
}

// SetWaveform selects the output shape.
func (l *LFO) SetWaveform(wf Waveform) {
	if wf < WaveformSine || wf >= NumWaveforms {
		wf = WaveformSine
	}
	l.waveform = wf
}

// Process returns the value at the current phase and advances one sample.
// Output is in [-1, 1].
func (l *LFO) Process() float32 {
	var value float32

	switch l.waveform {
	case WaveformSine:
		value = float32(math.Sin(l.phase * 2.0 * math.Pi))

	case WaveformTriangle:
		switch {
		case l.phase < 0.25:
			value = float32(l.phase * 4.0)
		case l.phase < 0.75:
			value = float32(2.0 - l.phase*4.0)
		default:
			value = float32(l.phase*4.0 - 4.0)
		}

	case WaveformSquare:
		if l.phase < 0.5 {
			value = 1.0
		} else {
			value = -1.0
		}

	case WaveformNoise:
		value = l.random()

	case WaveformSteppedNoise:
		// A phase wrap marks the start of a new cycle.
		if l.phase < l.lastPhase {
			l.held = l.random()
		}
		value = l.held
	}

	l.lastPhase = l.phase
	l.advancePhase(1)
	return value
}

// Advance moves the phase forward by n samples without generating output.
// Stepped noise still redraws its held value when the phase wraps.
func (l *LFO) Advance(n int) {
	if n <= 0 {
		return
	}
	before := l.phase
	wrapped := l.advancePhase(n)
	if l.waveform == WaveformSteppedNoise && wrapped {
		l.held = l.random()
	}
	l.lastPhase = before
	if wrapped {
		// Subsequent wrap detection must not re-fire for this cycle.
		l.lastPhase = 0.0
	}
}

// Value returns the value at the current phase without advancing.
func (l *LFO) Value() float32 {
	switch l.waveform {
	case WaveformSine:
		return float32(math.Sin(l.phase * 2.0 * math.Pi))
	case WaveformTriangle:
		switch {
		case l.phase < 0.25:
			return float32(l.phase * 4.0)
		case l.phase < 0.75:
			return float32(2.0 - l.phase*4.0)
		default:
			return float32(l.phase*4.0 - 4.0)
		}
	case WaveformSquare:
		if l.phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveformNoise, WaveformSteppedNoise:
		return l.held
	}
	return 0.0
}

// Phase returns the current phase in [0,1).
func (l *LFO) Phase() float64 {
	return l.phase
}

// Reset rewinds the phase and draws a fresh held value.
func (l *LFO) Reset() {
	l.phase = 0.0
	l.lastPhase = 0.0
	l.held = l.random()
}

// advancePhase moves the phase by n samples and reports whether it wrapped.
func (l *LFO) advancePhase(n int) bool {
	l.phase += float64(n) * l.frequency / l.sampleRate
	if l.phase >= 1.0 {
		l.phase -= math.Floor(l.phase)
		return true
	}
	return false
}

func (l *LFO) random() float32 {
	return float32(l.rng.Float64()*2.0 - 1.0)
}
