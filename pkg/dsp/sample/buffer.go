// Package sample provides the read-only sample store the granular engine
// plays from.
package sample

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/palaceaudio/tapegrain/pkg/dsp/interpolation"
)

// Source is the contract the audio path reads through. Positions wrap
// around the loaded length, so reads never fail; an unloaded source
// returns silence.
type Source interface {
	IsLoaded() bool
	NumSamples() int
	NumChannels() int
	SampleRate() float64

	// Sample returns the raw sample at an integer position (wrapping).
	Sample(channel, position int) float32

	// SampleInterpolated returns a linearly interpolated sample at a
	// fractional position (wrapping).
	SampleInterpolated(channel int, position float64) float32
}

// store is an immutable snapshot of loaded audio. Readers obtain the
// whole snapshot through one atomic pointer load, so data and metadata
// can never be observed torn.
type store struct {
	data       [][]float32
	numSamples int
	sampleRate float64
}

var emptyStore = &store{}

// Buffer is a loadable sample store. Load and Clear run on a non-real-time
// thread; all Source methods are safe to call concurrently from the audio
// thread without locking.
type Buffer struct {
	mu  sync.Mutex // serializes loaders only
	cur atomic.Pointer[store]
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.cur.Store(emptyStore)
	return b
}

// Load replaces the buffer contents. The data is copied, so the caller
// keeps ownership of its slices. All channels must have equal length.
func (b *Buffer) Load(data [][]float32, sampleRate float64) error {
	if len(data) == 0 || len(data[0]) == 0 {
		return fmt.Errorf("sample: empty data")
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample: invalid sample rate %g", sampleRate)
	}
	length := len(data[0])
	for ch, c := range data {
		if len(c) != length {
			return fmt.Errorf("sample: channel %d has %d samples, want %d", ch, len(c), length)
		}
	}

	copied := make([][]float32, len(data))
	for ch := range data {
		copied[ch] = make([]float32, length)
		copy(copied[ch], data[ch])
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur.Store(&store{
		data:       copied,
		numSamples: length,
		sampleRate: sampleRate,
	})
	return nil
}

// Clear empties the buffer. Readers see silence afterwards.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cur.Store(emptyStore)
}

// IsLoaded reports whether audio is present.
func (b *Buffer) IsLoaded() bool {
	return b.cur.Load().numSamples > 0
}

// NumSamples returns the per-channel length.
func (b *Buffer) NumSamples() int {
	return b.cur.Load().numSamples
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.cur.Load().data)
}

// SampleRate returns the rate the audio was recorded at.
func (b *Buffer) SampleRate() float64 {
	return b.cur.Load().sampleRate
}

// Sample returns the raw sample at an integer position, wrapping the
// position into the loaded range.
func (b *Buffer) Sample(channel, position int) float32 {
	s := b.cur.Load()
	if s.numSamples == 0 || channel >= len(s.data) || channel < 0 {
		return 0
	}
	position %= s.numSamples
	if position < 0 {
		position += s.numSamples
	}
	return s.data[channel][position]
}

// SampleInterpolated returns a linearly interpolated sample at a
// fractional position, wrapping into the loaded range.
func (b *Buffer) SampleInterpolated(channel int, position float64) float32 {
	s := b.cur.Load()
	if s.numSamples == 0 || channel >= len(s.data) || channel < 0 {
		return 0
	}

	n := float64(s.numSamples)
	for position < 0 {
		position += n
	}
	for position >= n {
		position -= n
	}

	index0 := int(position)
	index1 := (index0 + 1) % s.numSamples
	frac := float32(position - float64(index0))

	return interpolation.Linear(s.data[channel][index0], s.data[channel][index1], frac)
}

// Channel returns a read-only view of one channel for visualization.
// The returned slice must not be mutated.
func (b *Buffer) Channel(channel int) []float32 {
	s := b.cur.Load()
	if channel < 0 || channel >= len(s.data) {
		return nil
	}
	return s.data[channel]
}
