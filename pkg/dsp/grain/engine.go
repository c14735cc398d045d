package grain

import (
	"math"
	"math/rand"

	"github.com/palaceaudio/tapegrain/pkg/dsp/sample"
	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

// MaxGrains is the fixed grain pool size per engine.
const MaxGrains = 128

// minGrainSamples is the floor on grain duration.
const minGrainSamples = 64

// EngineParameters is the per-block control snapshot driving grain
// triggering. Replaced wholesale each block.
type EngineParameters struct {
	Position       float32 // 0-1 normalized position in the sample
	GrainSizeMs    float32
	Density        float32 // grains per second
	PitchSemitones float32
	Spray          float32 // position randomization (0-1)
	PanSpread      float32 // pan randomization (0-1)
	AttackRatio    float32
	ReleaseRatio   float32
	CropStart      float32 // playback restricted to [CropStart, CropEnd]
	CropEnd        float32
	SampleGainDB   float32
}

// DefaultEngineParameters returns the engine's initial control values.
func DefaultEngineParameters() EngineParameters {
	return EngineParameters{
		GrainSizeMs:  100.0,
		Density:      10.0,
		PanSpread:    0.5,
		AttackRatio:  0.25,
		ReleaseRatio: 0.25,
		CropEnd:      1.0,
	}
}

// GrainInfo is a telemetry snapshot of one active grain.
type GrainInfo struct {
	Position      float32 // absolute sample position of the grain start
	Progress      float32 // 0-1 through the grain
	Pan           float32
	SizeInSamples int
}

// PlaybackRegion is the span of source samples an active grain has
// touched so far.
type PlaybackRegion struct {
	StartSample int
	EndSample   int
}

// Engine owns a fixed pool of grains and triggers new ones at a
// density-derived rate. Each slot has its own damage processor; the wear
// engine is shared across all engines by reference.
type Engine struct {
	grains [MaxGrains]Grain
	damage []tape.DamageProcessor

	params EngineParameters

	sampleRate float64

	samplesSinceLastGrain float64
	samplesPerGrain       float64

	rng *rand.Rand

	wear           *tape.DisintegrationEngine
	disintegration float32
}

// NewEngine creates an engine with randomized trigger jitter. Use
// SetSeed for deterministic triggering in tests.
func NewEngine() *Engine {
	return &Engine{
		params:          DefaultEngineParameters(),
		sampleRate:      44100.0,
		samplesPerGrain: 4410.0,
		rng:             rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetSeed reseeds the spray/pan randomizer and every slot's damage noise.
func (e *Engine) SetSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	for i := range e.damage {
		e.damage[i].SetSeed(seed + int64(i) + 1)
	}
}

// Prepare sizes the engine for a sample rate. Allocation happens here,
// never in Process.
func (e *Engine) Prepare(sampleRate float64) {
	e.sampleRate = sampleRate
	e.damage = make([]tape.DamageProcessor, MaxGrains)
	for i := range e.damage {
		e.damage[i] = *tape.NewDamageProcessor(sampleRate)
	}
	e.Reset()
}

// Reset stops every grain and restarts the trigger clock.
func (e *Engine) Reset() {
	for i := range e.grains {
		e.grains[i].Stop()
	}
	e.samplesSinceLastGrain = 0
}

// SetParameters replaces the control snapshot.
func (e *Engine) SetParameters(p EngineParameters) {
	e.params = p
}

// SetDisintegrationEngine attaches the shared wear model (may be nil to
// disable the damage path).
func (e *Engine) SetDisintegrationEngine(wear *tape.DisintegrationEngine) {
	e.wear = wear
}

// SetDisintegrationAmount sets how strongly wear colors new grains (0-1).
func (e *Engine) SetDisintegrationAmount(amount float32) {
	e.disintegration = amount
}

// Process advances the trigger clock over the block, starts grains as
// the density interval elapses, and renders all active grains additively
// into outL/outR. The caller must pre-clear the buffers.
func (e *Engine) Process(source sample.Source, outL, outR []float32, noteRatio float32) {
	if !source.IsLoaded() {
		return
	}

	n := len(outL)
	if len(outR) < n {
		n = len(outR)
	}

	density := e.params.Density
	if density < 0.1 {
		density = 0.1
	}
	e.samplesPerGrain = e.sampleRate / float64(density)

	for i := 0; i < n; i++ {
		e.samplesSinceLastGrain++
		if e.samplesSinceLastGrain >= e.samplesPerGrain {
			e.triggerGrain(source, noteRatio)
			e.samplesSinceLastGrain = 0
		}
	}

	for i := range e.grains {
		if e.grains[i].IsActive() {
			e.grains[i].Process(source, outL[:n], outR[:n])
		}
	}
}

// ActiveGrainCount returns how many slots are currently playing.
func (e *Engine) ActiveGrainCount() int {
	count := 0
	for i := range e.grains {
		if e.grains[i].IsActive() {
			count++
		}
	}
	return count
}

// ActiveGrainInfo appends a snapshot of every active grain to dst and
// returns it. Intended for the visualizer; values are advisory.
func (e *Engine) ActiveGrainInfo(dst []GrainInfo) []GrainInfo {
	for i := range e.grains {
		g := &e.grains[i]
		if !g.IsActive() {
			continue
		}
		p := g.Params()
		dst = append(dst, GrainInfo{
			Position:      float32(p.StartPosition),
			Progress:      g.Progress(),
			Pan:           p.Pan,
			SizeInSamples: p.SizeInSamples,
		})
	}
	return dst
}

// ActivePlaybackRegions appends the source span each active grain has
// touched to dst and returns it.
func (e *Engine) ActivePlaybackRegions(dst []PlaybackRegion) []PlaybackRegion {
	for i := range e.grains {
		g := &e.grains[i]
		if !g.IsActive() {
			continue
		}
		start, end := g.ReadRange()
		if start >= 0 && end >= start {
			dst = append(dst, PlaybackRegion{StartSample: start, EndSample: end})
		}
	}
	return dst
}

// triggerGrain derives fresh grain parameters from the control snapshot
// and starts a free slot. With the pool exhausted the trigger is dropped
// silently.
func (e *Engine) triggerGrain(source sample.Source, noteRatio float32) {
	free := e.findFreeGrain()
	if free < 0 {
		return
	}

	sourceSamples := source.NumSamples()
	if sourceSamples == 0 {
		return
	}

	cropStart := clampUnit(e.params.CropStart)
	cropEnd := clampUnit(e.params.CropEnd)
	if cropEnd < cropStart {
		cropEnd = cropStart
	}

	var p Parameters

	positionNorm := e.params.Position
	if e.params.Spray > 0 {
		positionNorm += e.bipolar() * e.params.Spray
	}
	positionNorm = clampRange(positionNorm, cropStart, cropEnd)
	p.StartPosition = int(positionNorm * float32(sourceSamples-1))

	p.SizeInSamples = int(float64(e.params.GrainSizeMs) * 0.001 * e.sampleRate)
	if p.SizeInSamples < minGrainSamples {
		p.SizeInSamples = minGrainSamples
	}

	pitchRatio := float32(math.Pow(2.0, float64(e.params.PitchSemitones)/12.0)) * noteRatio
	p.PitchRatio = pitchRatio

	// Shrink the grain so the read window stays inside the crop region
	// at the current pitch. Assumes a positive pitch ratio.
	cropEndSample := int(cropEnd * float32(sourceSamples-1))
	if pitchRatio > 0 {
		maxReadSamples := int(float32(cropEndSample-p.StartPosition) / pitchRatio)
		if maxReadSamples < minGrainSamples {
			maxReadSamples = minGrainSamples
		}
		if p.SizeInSamples > maxReadSamples {
			p.SizeInSamples = maxReadSamples
		}
	}

	if e.params.PanSpread > 0 {
		p.Pan = e.bipolar() * e.params.PanSpread
	}

	p.Amplitude = 1.0
	p.AttackRatio = e.params.AttackRatio
	p.ReleaseRatio = e.params.ReleaseRatio
	p.GainDB = e.params.SampleGainDB

	g := &e.grains[free]
	if e.damage != nil {
		g.SetDamage(&e.damage[free], e.wear)
	}
	g.SetDisintegrationAmount(e.disintegration)
	g.Start(p)
}

func (e *Engine) findFreeGrain() int {
	for i := range e.grains {
		if !e.grains[i].IsActive() {
			return i
		}
	}
	return -1
}

// bipolar draws a uniform value in [-1, 1).
func (e *Engine) bipolar() float32 {
	return float32(e.rng.Float64()*2.0 - 1.0)
}

func clampUnit(v float32) float32 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
