// Package grain implements granular playback: short, independently
// enveloped read-windows over the sample store and the engine that
// schedules them.
package grain

import (
	"math"

	"github.com/palaceaudio/tapegrain/pkg/dsp/gain"
	"github.com/palaceaudio/tapegrain/pkg/dsp/sample"
	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

// Parameters describes one grain. Created fresh per trigger and
// immutable for the grain's lifetime.
type Parameters struct {
	StartPosition int     // sample offset in the source
	SizeInSamples int     // grain duration
	PitchRatio    float32 // playback speed (1.0 = original pitch)
	Pan           float32 // -1 (left) to 1 (right)
	Amplitude     float32 // grain volume
	AttackRatio   float32 // attack portion of the envelope (0-1)
	ReleaseRatio  float32 // release portion of the envelope (0-1)
	GainDB        float32 // per-grain sample gain
}

// Grain is one pool slot: a read-window over the source with its own
// envelope and position. Slots are reused; Start reactivates a slot
// without allocating.
type Grain struct {
	params     Parameters
	position   float64 // position within the grain, in source samples
	processed  int
	active     bool
	leftGain   float32
	rightGain  float32
	linearGain float32

	damage         *tape.DamageProcessor
	wear           *tape.DisintegrationEngine
	disintegration float32

	// Min/max absolute source positions visited, for diagnostics.
	// -1 until the first sample is read.
	minRead float64
	maxRead float64
}

// SetDamage attaches the slot's damage processor and the shared wear
// engine. Both are borrowed, never owned.
func (g *Grain) SetDamage(processor *tape.DamageProcessor, wear *tape.DisintegrationEngine) {
	g.damage = processor
	g.wear = wear
}

// SetDisintegrationAmount scales how strongly accumulated wear colors
// this grain (0-1).
func (g *Grain) SetDisintegrationAmount(amount float32) {
	g.disintegration = amount
}

// Start copies the parameters, rewinds the read head and activates the
// slot.
func (g *Grain) Start(p Parameters) {
	g.params = p
	g.position = 0
	g.processed = 0
	g.active = true
	g.minRead = -1
	g.maxRead = -1

	panAngle := float64(p.Pan+1.0) * 0.25 * math.Pi
	g.leftGain = float32(math.Cos(panAngle))
	g.rightGain = float32(math.Sin(panAngle))
	g.linearGain = gain.DbToLinear32(p.GainDB)

	if g.damage != nil {
		g.damage.Reset()
	}
}

// Stop deactivates immediately. No fade: the grain envelope has already
// handled the audible declick by construction.
func (g *Grain) Stop() {
	g.active = false
}

// IsActive reports whether the slot is in use.
func (g *Grain) IsActive() bool {
	return g.active
}

// Process renders up to len(outL) samples additively into the stereo
// output and returns whether the grain is still active. The outputs are
// not cleared here. Stereo sources are averaged to mono before panning.
func (g *Grain) Process(source sample.Source, outL, outR []float32) bool {
	if !g.active || !source.IsLoaded() {
		return false
	}

	n := len(outL)
	if len(outR) < n {
		n = len(outR)
	}

	for i := 0; i < n && g.active; i++ {
		if g.processed >= g.params.SizeInSamples {
			g.active = false
			break
		}

		sourcePos := float64(g.params.StartPosition) + g.position
		s := g.readMono(source, sourcePos)

		s *= g.linearGain

		if g.wear != nil && g.disintegration > 0.001 {
			index := int(sourcePos)
			g.wear.DecrementLife(index)
			damage := g.wear.DamageAt(index) * g.disintegration
			if g.damage != nil {
				s = g.damage.ProcessSample(s, damage)
			}
		}

		s *= g.envelopeValue()
		s *= g.params.Amplitude

		outL[i] += s * g.leftGain
		outR[i] += s * g.rightGain

		if g.minRead < 0 || sourcePos < g.minRead {
			g.minRead = sourcePos
		}
		if sourcePos > g.maxRead {
			g.maxRead = sourcePos
		}

		g.position += float64(g.params.PitchRatio)
		g.processed++
	}

	return g.active
}

// Progress returns how far through its duration the grain is (0-1).
func (g *Grain) Progress() float32 {
	if g.params.SizeInSamples <= 0 {
		return 0
	}
	return float32(g.processed) / float32(g.params.SizeInSamples)
}

// Params returns the parameters the grain was started with.
func (g *Grain) Params() Parameters {
	return g.params
}

// ReadRange returns the min/max absolute source positions visited so
// far, in whole samples. Both are -1 before the first read.
func (g *Grain) ReadRange() (start, end int) {
	if g.minRead < 0 {
		return -1, -1
	}
	return int(g.minRead), int(g.maxRead)
}

// envelopeValue evaluates the 3-segment grain envelope at the current
// progress: sine-ramp attack, flat sustain, cosine-ramp release. A zero
// attack or release ratio degenerates to flat 1.0 in that segment.
func (g *Grain) envelopeValue() float32 {
	progress := float32(g.processed) / float32(g.params.SizeInSamples)

	if progress < g.params.AttackRatio {
		if g.params.AttackRatio <= 0 {
			return 1.0
		}
		attackProgress := progress / g.params.AttackRatio
		return float32(math.Sin(float64(attackProgress) * math.Pi / 2.0))
	}

	releaseStart := 1.0 - g.params.ReleaseRatio
	if progress > releaseStart {
		if g.params.ReleaseRatio <= 0 {
			return 1.0
		}
		releaseProgress := (progress - releaseStart) / g.params.ReleaseRatio
		return float32(math.Cos(float64(releaseProgress) * math.Pi / 2.0))
	}

	return 1.0
}

// readMono draws an interpolated source sample, averaging multichannel
// sources down to mono.
func (g *Grain) readMono(source sample.Source, position float64) float32 {
	if source.NumChannels() == 1 {
		return source.SampleInterpolated(0, position)
	}
	left := source.SampleInterpolated(0, position)
	right := source.SampleInterpolated(1, position)
	return (left + right) * 0.5
}
