package synth

import (
	"math"

	"github.com/palaceaudio/tapegrain/pkg/dsp/grain"
)

// Telemetry accessors for visualizers and control surfaces. All are
// advisory: they read the running engine without locking the audio
// thread, so values may be one block stale or momentarily torn between
// voices. That is acceptable for display.

// ActiveVoiceCount returns how many voices are sounding.
func (e *Engine) ActiveVoiceCount() int {
	return e.pool.ActiveCount()
}

// ActiveGrainCount returns the total sounding grains across all voices.
func (e *Engine) ActiveGrainCount() int {
	count := 0
	for _, v := range e.pool.Voices() {
		count += v.ActiveGrainCount()
	}
	return count
}

// ActiveGrains appends a snapshot of every sounding grain to dst and
// returns it.
func (e *Engine) ActiveGrains(dst []grain.GrainInfo) []grain.GrainInfo {
	dst = dst[:0]
	for _, v := range e.pool.Voices() {
		dst = v.ActiveGrainInfo(dst)
	}
	return dst
}

// PlaybackRegions appends the source span each sounding grain has
// touched to dst and returns it.
func (e *Engine) PlaybackRegions(dst []grain.PlaybackRegion) []grain.PlaybackRegion {
	dst = dst[:0]
	for _, v := range e.pool.Voices() {
		dst = v.ActivePlaybackRegions(dst)
	}
	return dst
}

// LifeMap copies the wear model's per-region life values into dst and
// returns it.
func (e *Engine) LifeMap(dst []float32) []float32 {
	return e.wear.LifeMap(dst)
}

// LFOValue returns the LFO value sampled during the last block.
func (e *Engine) LFOValue() float32 {
	return math.Float32frombits(e.lfoValue.Load())
}

// LFOPhase returns the LFO phase at the end of the last block.
func (e *Engine) LFOPhase() float64 {
	return math.Float64frombits(e.lfoPhase.Load())
}

// SpectrumMagnitudes computes the output magnitude spectrum into dst
// and returns it.
func (e *Engine) SpectrumMagnitudes(dst []float32) []float32 {
	return e.spectrum.Magnitudes(dst)
}
