// Package voice couples ADSR envelope generation to granular playback
// and manages the fixed polyphonic pool.
package voice

import (
	"math"

	"github.com/palaceaudio/tapegrain/pkg/dsp/grain"
	"github.com/palaceaudio/tapegrain/pkg/dsp/sample"
	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

// Stage is the envelope state machine position.
type Stage int

const (
	// StageIdle means the voice is silent and available
	StageIdle Stage = iota
	// StageAttack ramps the envelope up to 1
	StageAttack
	// StageDecay ramps down to the sustain level
	StageDecay
	// StageSustain holds
	StageSustain
	// StageRelease ramps down to silence
	StageRelease
)

// baseNote is the MIDI note that plays the sample at original pitch.
const baseNote = 60

// Voice is one polyphonic note: a linear-rate ADSR envelope driving its
// own grain engine. Voices live in a fixed pool and are reset, never
// reallocated.
type Voice struct {
	engine *grain.Engine

	active    bool
	releasing bool
	note      int
	velocity  float32
	age       int

	stage        Stage
	value        float32
	attackRate   float32
	decayRate    float32
	sustainLevel float32
	releaseRate  float32

	sampleRate float64
	noteRatio  float32

	scratchL []float32
	scratchR []float32
}

// New creates an unprepared voice.
func New() *Voice {
	return &Voice{
		engine:       grain.NewEngine(),
		note:         -1,
		velocity:     1.0,
		attackRate:   0.001,
		decayRate:    0.001,
		sustainLevel: 0.8,
		releaseRate:  0.0001,
		sampleRate:   44100.0,
		noteRatio:    1.0,
	}
}

// Prepare sizes the voice for a sample rate and maximum block size.
// Scratch buffers are allocated here so Process never does.
func (v *Voice) Prepare(sampleRate float64, maxBlockSize int) {
	v.sampleRate = sampleRate
	v.engine.Prepare(sampleRate)
	v.scratchL = make([]float32, maxBlockSize)
	v.scratchR = make([]float32, maxBlockSize)
	v.Reset()
}

// Reset returns the voice to idle and stops all of its grains.
func (v *Voice) Reset() {
	v.active = false
	v.releasing = false
	v.note = -1
	v.stage = StageIdle
	v.value = 0
	v.age = 0
	v.engine.Reset()
}

// NoteOn starts (or retriggers) the voice. The envelope is forced into
// Attack and the grain engine restarts from silence.
func (v *Voice) NoteOn(note int, velocity float32) {
	v.note = note
	v.velocity = velocity
	v.active = true
	v.releasing = false
	v.age = 0

	v.noteRatio = float32(math.Pow(2.0, float64(note-baseNote)/12.0))

	v.stage = StageAttack
	v.engine.Reset()
}

// NoteOff forces the envelope into Release regardless of its stage.
func (v *Voice) NoteOff() {
	if !v.active {
		return
	}
	v.releasing = true
	v.stage = StageRelease
}

// Process advances the envelope sample by sample across the block, runs
// the grain engine into the voice's scratch buffers and adds
// envelope·velocity·scratch into the caller's output.
func (v *Voice) Process(source sample.Source, outL, outR []float32) {
	if !v.active {
		return
	}

	n := len(outL)
	if len(outR) < n {
		n = len(outR)
	}
	if n > len(v.scratchL) {
		n = len(v.scratchL)
	}

	v.updateEnvelope(n)

	if v.stage == StageIdle {
		v.Reset()
		return
	}

	scratchL := v.scratchL[:n]
	scratchR := v.scratchR[:n]
	for i := 0; i < n; i++ {
		scratchL[i] = 0
		scratchR[i] = 0
	}

	v.engine.Process(source, scratchL, scratchR, v.noteRatio)

	g := v.value * v.velocity
	for i := 0; i < n; i++ {
		outL[i] += scratchL[i] * g
		outR[i] += scratchR[i] * g
	}
}

// SetGrainParameters forwards the control snapshot to the grain engine.
func (v *Voice) SetGrainParameters(p grain.EngineParameters) {
	v.engine.SetParameters(p)
}

// SetADSR converts millisecond envelope times to per-sample linear
// rates. Zero times transition in a single sample. Sustain is a 0-100
// percentage.
func (v *Voice) SetADSR(attackMs, decayMs, sustainPct, releaseMs float32) {
	v.attackRate = msToRate(attackMs, v.sampleRate)
	v.decayRate = msToRate(decayMs, v.sampleRate)
	v.sustainLevel = sustainPct / 100.0
	v.releaseRate = msToRate(releaseMs, v.sampleRate)
}

// SetDisintegrationEngine forwards the shared wear model.
func (v *Voice) SetDisintegrationEngine(wear *tape.DisintegrationEngine) {
	v.engine.SetDisintegrationEngine(wear)
}

// SetDisintegrationAmount forwards the wear intensity.
func (v *Voice) SetDisintegrationAmount(amount float32) {
	v.engine.SetDisintegrationAmount(amount)
}

// SetSeed makes the voice's grain randomization deterministic.
func (v *Voice) SetSeed(seed int64) {
	v.engine.SetSeed(seed)
}

// IsActive reports whether the voice is sounding.
func (v *Voice) IsActive() bool { return v.active }

// IsReleasing reports whether the envelope is in Release.
func (v *Voice) IsReleasing() bool { return v.releasing }

// Note returns the MIDI note the voice is playing, or -1.
func (v *Voice) Note() int { return v.note }

// Age returns how many blocks the voice has been sounding.
func (v *Voice) Age() int { return v.age }

// IncrementAge bumps the block counter used by the stealing policy.
func (v *Voice) IncrementAge() { v.age++ }

// EnvelopeStage returns the current envelope stage.
func (v *Voice) EnvelopeStage() Stage { return v.stage }

// EnvelopeValue returns the current envelope level.
func (v *Voice) EnvelopeValue() float32 { return v.value }

// ActiveGrainInfo appends this voice's grain telemetry to dst.
func (v *Voice) ActiveGrainInfo(dst []grain.GrainInfo) []grain.GrainInfo {
	return v.engine.ActiveGrainInfo(dst)
}

// ActivePlaybackRegions appends this voice's playback-region telemetry
// to dst.
func (v *Voice) ActivePlaybackRegions(dst []grain.PlaybackRegion) []grain.PlaybackRegion {
	return v.engine.ActivePlaybackRegions(dst)
}

// ActiveGrainCount returns how many grains the voice is sounding.
func (v *Voice) ActiveGrainCount() int {
	return v.engine.ActiveGrainCount()
}

// updateEnvelope steps the state machine one sample at a time so stage
// transitions land sample-accurately within the block.
func (v *Voice) updateEnvelope(numSamples int) {
	for i := 0; i < numSamples; i++ {
		switch v.stage {
		case StageAttack:
			v.value += v.attackRate
			if v.value >= 1.0 {
				v.value = 1.0
				v.stage = StageDecay
			}

		case StageDecay:
			v.value -= v.decayRate
			if v.value <= v.sustainLevel {
				v.value = v.sustainLevel
				v.stage = StageSustain
			}

		case StageSustain:
			v.value = v.sustainLevel

		case StageRelease:
			v.value -= v.releaseRate
			if v.value <= 0 {
				v.value = 0
				v.stage = StageIdle
				return
			}

		case StageIdle:
			return
		}
	}
}

// msToRate converts an envelope segment time to a per-sample rate.
// Zero or negative times yield rate 1 (a one-sample transition).
func msToRate(ms float32, sampleRate float64) float32 {
	if ms <= 0 {
		return 1.0
	}
	return float32(1.0 / (float64(ms) * 0.001 * sampleRate))
}
