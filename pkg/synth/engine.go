// Package synth assembles the granular tape instrument: sample store,
// voice pool, wear model, LFO modulation, tape echo, and telemetry,
// driven by one block-oriented process call.
package synth

import (
	"io"
	"math"
	"sync/atomic"

	"github.com/palaceaudio/tapegrain/pkg/dsp/analysis"
	"github.com/palaceaudio/tapegrain/pkg/dsp/gain"
	"github.com/palaceaudio/tapegrain/pkg/dsp/grain"
	"github.com/palaceaudio/tapegrain/pkg/dsp/modulation"
	"github.com/palaceaudio/tapegrain/pkg/dsp/sample"
	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
	"github.com/palaceaudio/tapegrain/pkg/framework/debug"
	"github.com/palaceaudio/tapegrain/pkg/framework/param"
	"github.com/palaceaudio/tapegrain/pkg/framework/state"
	"github.com/palaceaudio/tapegrain/pkg/framework/voice"
	"github.com/palaceaudio/tapegrain/pkg/midi"
)

// feedbackScale keeps the master feedback loop below unity at 100%.
const feedbackScale = 0.85

// Engine is the complete instrument. ProcessBlock runs on the audio
// thread; every other method is safe to call from control threads
// concurrently with it.
type Engine struct {
	params *param.Registry
	buffer *sample.Buffer
	pool   *voice.Pool
	wear   *tape.DisintegrationEngine

	lfo      *modulation.LFO
	delay    *tape.Delay
	spectrum *analysis.Spectrum

	queue    *midi.Queue
	eventBuf []midi.Event

	feedbackL []float32
	feedbackR []float32

	sampleRate   float64
	maxBlockSize int

	modRouting [numParams]atomic.Bool

	lfoValue atomic.Uint32 // float32 bits, telemetry only
	lfoPhase atomic.Uint64 // float64 bits, telemetry only
}

// NewEngine creates an unprepared engine with default parameter values.
func NewEngine() *Engine {
	e := &Engine{
		params:   NewParameterRegistry(),
		buffer:   sample.NewBuffer(),
		pool:     voice.NewPool(),
		wear:     tape.NewDisintegrationEngine(),
		spectrum: analysis.NewSpectrum(),
		queue:    midi.NewQueue(),
		eventBuf: make([]midi.Event, 0, 64),
	}
	e.pool.SetDisintegrationEngine(e.wear)
	return e
}

// Prepare sizes the engine for a sample rate and maximum block size.
// Must be called before ProcessBlock, and again if either changes. All
// allocation happens here.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) {
	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize

	e.pool.Prepare(sampleRate, maxBlockSize)
	e.lfo = modulation.NewLFO(sampleRate)
	e.delay = tape.NewDelay(sampleRate)
	e.feedbackL = make([]float32, maxBlockSize)
	e.feedbackR = make([]float32, maxBlockSize)

	debug.Debug("engine prepared: %.0f Hz, %d-sample blocks", sampleRate, maxBlockSize)
}

// Reset silences all voices and clears the echo and feedback state.
// The sample, wear map and parameter values survive.
func (e *Engine) Reset() {
	e.pool.Reset()
	if e.delay != nil {
		e.delay.Reset()
	}
	if e.lfo != nil {
		e.lfo.Reset()
	}
	for i := range e.feedbackL {
		e.feedbackL[i] = 0
		e.feedbackR[i] = 0
	}
}

// SetSeed makes every random element of the engine deterministic:
// grain spray and pan, per-grain damage noise, LFO noise, and hiss.
func (e *Engine) SetSeed(seed int64) {
	for i, v := range e.pool.Voices() {
		v.SetSeed(seed + int64(i)*1000)
	}
	if e.lfo != nil {
		e.lfo.SetSeed(seed)
	}
	if e.delay != nil {
		e.delay.SetSeed(seed)
	}
}

// Parameters exposes the registry for control surfaces.
func (e *Engine) Parameters() *param.Registry {
	return e.params
}

// SaveTapeCondition writes the accumulated wear map so a worn tape can
// be restored in a later session.
func (e *Engine) SaveTapeCondition(w io.Writer) error {
	return state.NewManager(e.wear).Save(w)
}

// LoadTapeCondition restores a wear map written by SaveTapeCondition.
func (e *Engine) LoadTapeCondition(r io.Reader) error {
	return state.NewManager(e.wear).Load(r)
}

// LoadSample replaces the playing sample and restores the tape to
// pristine condition. Safe to call while audio runs.
func (e *Engine) LoadSample(data [][]float32, sampleRate float64) error {
	if err := e.buffer.Load(data, sampleRate); err != nil {
		return err
	}
	e.wear.Prepare(e.buffer.NumSamples())
	e.wear.Reset()
	debug.Info("sample loaded: %d samples, %d channels, %.0f Hz",
		e.buffer.NumSamples(), e.buffer.NumChannels(), sampleRate)
	return nil
}

// ClearSample removes the sample; voices fall silent on the next block.
func (e *Engine) ClearSample() {
	e.buffer.Clear()
	e.wear.Prepare(0)
}

// Sample exposes the store for waveform displays.
func (e *Engine) Sample() *sample.Buffer {
	return e.buffer
}

// NoteOn queues a note start for the next block.
func (e *Engine) NoteOn(note, velocity uint8) {
	e.queue.Push(midi.NoteOnEvent{NoteNumber: note, Velocity: velocity})
}

// NoteOff queues a note release for the next block.
func (e *Engine) NoteOff(note uint8) {
	e.queue.Push(midi.NoteOffEvent{NoteNumber: note})
}

// AllNotesOff queues a release of every sounding note.
func (e *Engine) AllNotesOff() {
	e.queue.Push(midi.AllNotesOffEvent{})
}

// SetLFOModulation routes (or unroutes) the LFO to a parameter.
// Returns false for parameters that cannot be modulated.
func (e *Engine) SetLFOModulation(id uint32, enabled bool) bool {
	if _, ok := modRange(id); !ok {
		return false
	}
	e.modRouting[id].Store(enabled)
	return true
}

// IsLFOModulated reports whether the LFO is routed to a parameter.
func (e *Engine) IsLFOModulated(id uint32) bool {
	if id >= numParams {
		return false
	}
	return e.modRouting[id].Load()
}

// ProcessBlock renders one stereo block. The buffers are overwritten.
// Blocks longer than the prepared maximum are truncated.
func (e *Engine) ProcessBlock(outL, outR []float32) {
	n := len(outL)
	if len(outR) < n {
		n = len(outR)
	}
	if n > e.maxBlockSize {
		n = e.maxBlockSize
	}
	if n == 0 {
		return
	}
	outL = outL[:n]
	outR = outR[:n]

	for i := 0; i < n; i++ {
		outL[i] = 0
		outR[i] = 0
	}

	// Block-rate LFO: sample the waveform once at the block midpoint and
	// hold it for the whole block.
	e.lfo.SetFrequency(e.params.Plain(ParamLFORate))
	e.lfo.SetWaveform(modulation.Waveform(int(e.params.Plain(ParamLFOWaveform) + 0.5)))
	mid := n / 2
	e.lfo.Advance(mid)
	lfoValue := e.lfo.Process()
	e.lfo.Advance(n - mid - 1)

	e.lfoValue.Store(math.Float32bits(lfoValue))
	e.lfoPhase.Store(math.Float64bits(e.lfo.Phase()))

	mod := lfoValue * float32(e.params.Plain(ParamLFOAmount)/100.0)
	e.updateVoiceParameters(mod)

	e.eventBuf = e.queue.Drain(e.eventBuf)
	for _, ev := range e.eventBuf {
		switch ev := ev.(type) {
		case midi.NoteOnEvent:
			if ev.Velocity == 0 {
				e.pool.NoteOff(int(ev.NoteNumber))
				continue
			}
			e.pool.NoteOn(int(ev.NoteNumber), float32(ev.Velocity)/127.0)
		case midi.NoteOffEvent:
			e.pool.NoteOff(int(ev.NoteNumber))
		case midi.AllNotesOffEvent:
			e.pool.AllNotesOff()
		}
	}

	e.pool.Process(e.buffer, outL, outR)

	// Master feedback: mix in the previous block's output, then store
	// the post-mix signal for the next block.
	fbGain := float32(e.params.Plain(ParamFeedback)) * feedbackScale / 100.0
	if fbGain >= 0.001 {
		for i := 0; i < n; i++ {
			outL[i] += e.feedbackL[i] * fbGain
			outR[i] += e.feedbackR[i] * fbGain
		}
		copy(e.feedbackL[:n], outL)
		copy(e.feedbackR[:n], outR)
	} else {
		for i := 0; i < n; i++ {
			e.feedbackL[i] = 0
			e.feedbackR[i] = 0
		}
	}

	e.delay.SetDelayTime(float32(e.params.Plain(ParamDelayTime)))
	e.delay.SetFeedback(float32(e.params.Plain(ParamDelayFeedback) / 100.0))
	e.delay.SetFlutter(float32(e.params.Plain(ParamFlutter) / 100.0))
	e.delay.SetHiss(float32(e.params.Plain(ParamHiss) / 100.0))
	e.delay.Process(outL, outR)

	outputGain := gain.DbToLinear32(float32(e.params.Plain(ParamOutput)))
	if outputGain != 1.0 {
		gain.Apply(outL, outputGain)
		gain.Apply(outR, outputGain)
	}

	e.spectrum.PushBlock(outL, outR)
}

// modulated returns a parameter's plain value with the LFO excursion
// applied when routed, clamped to the parameter's range.
func (e *Engine) modulated(id uint32, mod float32) float64 {
	plain := e.params.Plain(id)
	if mod == 0 || !e.modRouting[id].Load() {
		return plain
	}
	excursion, ok := modRange(id)
	if !ok {
		return plain
	}
	plain += float64(mod) * excursion

	if p := e.params.Get(id); p != nil {
		if plain < p.Min {
			plain = p.Min
		} else if plain > p.Max {
			plain = p.Max
		}
	}
	return plain
}

// updateVoiceParameters snapshots the registry (with modulation applied)
// into the voice pool, wear model, and envelope settings.
func (e *Engine) updateVoiceParameters(mod float32) {
	p := grain.EngineParameters{
		Position:       float32(e.modulated(ParamPosition, mod)),
		GrainSizeMs:    float32(e.modulated(ParamGrainSize, mod)),
		Density:        float32(e.modulated(ParamDensity, mod)),
		PitchSemitones: float32(e.modulated(ParamPitch, mod)),
		Spray:          float32(e.modulated(ParamSpray, mod) / 100.0),
		PanSpread:      float32(e.modulated(ParamPanSpread, mod) / 100.0),
		AttackRatio:    float32(e.modulated(ParamGrainAttack, mod) / 100.0),
		ReleaseRatio:   float32(e.modulated(ParamGrainRelease, mod) / 100.0),
		CropStart:      float32(e.params.Plain(ParamCropStart)),
		CropEnd:        float32(e.params.Plain(ParamCropEnd)),
		SampleGainDB:   float32(e.params.Plain(ParamSampleGain)),
	}
	e.pool.SetGrainParameters(p)

	e.pool.SetADSR(
		float32(e.modulated(ParamVoiceAttack, mod)),
		float32(e.modulated(ParamVoiceDecay, mod)),
		float32(e.modulated(ParamVoiceSustain, mod)),
		float32(e.modulated(ParamVoiceRelease, mod)),
	)

	damage := e.params.Plain(ParamDamage)
	e.wear.SetEnabled(damage > 0)
	e.wear.SetMaxLife(e.params.Plain(ParamTapeLife))
	e.pool.SetDisintegrationAmount(float32(damage / 100.0))
}
