package voice

import (
	"github.com/palaceaudio/tapegrain/pkg/dsp/grain"
	"github.com/palaceaudio/tapegrain/pkg/dsp/sample"
	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

// NumVoices is the fixed polyphony.
const NumVoices = 8

// Pool is the allocation and stealing policy over the fixed voice array.
// At most one voice plays a given note at a time.
type Pool struct {
	voices [NumVoices]*Voice
}

// NewPool creates the voice array.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.voices {
		p.voices[i] = New()
	}
	return p
}

// Prepare prepares every voice.
func (p *Pool) Prepare(sampleRate float64, maxBlockSize int) {
	for _, v := range p.voices {
		v.Prepare(sampleRate, maxBlockSize)
	}
}

// Reset silences and resets every voice.
func (p *Pool) Reset() {
	for _, v := range p.voices {
		v.Reset()
	}
}

// NoteOn allocates a voice for the note: the voice already playing it
// (retrigger), else the first inactive voice, else a stolen one. A
// non-empty pool always yields a voice.
func (p *Pool) NoteOn(note int, velocity float32) *Voice {
	v := p.findForNote(note)
	if v == nil {
		v = p.findFree()
	}
	if v == nil {
		v = p.steal()
	}
	if v != nil {
		v.NoteOn(note, velocity)
	}
	return v
}

// NoteOff releases the voice playing the note, if any.
func (p *Pool) NoteOff(note int) {
	if v := p.findForNote(note); v != nil {
		v.NoteOff()
	}
}

// AllNotesOff releases every active voice.
func (p *Pool) AllNotesOff() {
	for _, v := range p.voices {
		v.NoteOff()
	}
}

// Process runs every active voice additively into the output and ages
// it by one block.
func (p *Pool) Process(source sample.Source, outL, outR []float32) {
	for _, v := range p.voices {
		if v.IsActive() {
			v.Process(source, outL, outR)
			v.IncrementAge()
		}
	}
}

// SetGrainParameters pushes the control snapshot to every voice.
func (p *Pool) SetGrainParameters(params grain.EngineParameters) {
	for _, v := range p.voices {
		v.SetGrainParameters(params)
	}
}

// SetADSR pushes envelope times to every voice.
func (p *Pool) SetADSR(attackMs, decayMs, sustainPct, releaseMs float32) {
	for _, v := range p.voices {
		v.SetADSR(attackMs, decayMs, sustainPct, releaseMs)
	}
}

// SetDisintegrationEngine attaches the shared wear model to every voice.
func (p *Pool) SetDisintegrationEngine(wear *tape.DisintegrationEngine) {
	for _, v := range p.voices {
		v.SetDisintegrationEngine(wear)
	}
}

// SetDisintegrationAmount pushes the wear intensity to every voice.
func (p *Pool) SetDisintegrationAmount(amount float32) {
	for _, v := range p.voices {
		v.SetDisintegrationAmount(amount)
	}
}

// ActiveCount returns how many voices are sounding.
func (p *Pool) ActiveCount() int {
	count := 0
	for _, v := range p.voices {
		if v.IsActive() {
			count++
		}
	}
	return count
}

// Voices exposes the fixed array for telemetry iteration.
func (p *Pool) Voices() []*Voice {
	return p.voices[:]
}

func (p *Pool) findForNote(note int) *Voice {
	for _, v := range p.voices {
		if v.IsActive() && v.Note() == note {
			return v
		}
	}
	return nil
}

func (p *Pool) findFree() *Voice {
	for _, v := range p.voices {
		if !v.IsActive() {
			return v
		}
	}
	return nil
}

// steal picks the victim: the releasing voice with the greatest age,
// else the oldest active voice. Pool order breaks ties.
func (p *Pool) steal() *Voice {
	var oldestReleasing *Voice
	maxReleasingAge := -1
	for _, v := range p.voices {
		if v.IsReleasing() && v.Age() > maxReleasingAge {
			maxReleasingAge = v.Age()
			oldestReleasing = v
		}
	}
	if oldestReleasing != nil {
		return oldestReleasing
	}

	var oldest *Voice
	maxAge := -1
	for _, v := range p.voices {
		if v.Age() > maxAge {
			maxAge = v.Age()
			oldest = v
		}
	}
	return oldest
}
