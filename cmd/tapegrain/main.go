// Command tapegrain runs the granular tape synthesizer as a live
// terminal instrument: the home row plays notes, a few keys tweak the
// tape, and audio streams through the default output device.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	"github.com/palaceaudio/tapegrain/pkg/framework/debug"
	"github.com/palaceaudio/tapegrain/pkg/synth"
)

const (
	sampleRate = 44100
	blockSize  = 512
	noteHoldMs = 400
)

// keyNotes maps the bottom two rows to a chromatic octave from C4.
var keyNotes = map[byte]uint8{
	'a': 60, 'w': 61, 's': 62, 'e': 63, 'd': 64, 'f': 65,
	't': 66, 'g': 67, 'y': 68, 'h': 69, 'u': 70, 'j': 71, 'k': 72,
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tapegrain:", err)
		os.Exit(1)
	}
}

func run() error {
	engine := synth.NewEngine()
	engine.Prepare(sampleRate, blockSize)

	if err := engine.LoadSample(makeSample(), sampleRate); err != nil {
		return err
	}

	stream := newStreamer(engine)

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(stream)
	player.Play()
	defer player.Close()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	fmt.Print("tapegrain\r\n")
	fmt.Print("  a w s e d f t g y h u j k   play notes (C4 up)\r\n")
	fmt.Print("  1-9  tape damage  0 pristine\r\n")
	fmt.Print("  [ ]  delay feedback down/up\r\n")
	fmt.Print("  q    quit\r\n\r\n")

	return keyboardLoop(engine)
}

// keyboardLoop reads raw keys until quit. Terminals report no key-up,
// so each press sounds the note for a fixed hold time.
func keyboardLoop(engine *synth.Engine) error {
	var mu sync.Mutex
	offTimers := map[uint8]*time.Timer{}

	params := engine.Parameters()
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		key := buf[0]

		switch {
		case key == 'q' || key == 0x1b || key == 0x03: // q, ESC, ctrl-C
			engine.AllNotesOff()
			return nil

		case key >= '1' && key <= '9':
			pct := float64(key-'0') * 100.0 / 9.0
			params.SetPlain(synth.ParamDamage, pct)
			debug.Info("tape damage %.0f%%", pct)

		case key == '0':
			params.SetPlain(synth.ParamDamage, 0)
			debug.Info("tape pristine")

		case key == '[':
			fb := params.Plain(synth.ParamDelayFeedback) - 10
			params.SetPlain(synth.ParamDelayFeedback, fb)

		case key == ']':
			fb := params.Plain(synth.ParamDelayFeedback) + 10
			params.SetPlain(synth.ParamDelayFeedback, fb)

		default:
			note, ok := keyNotes[key]
			if !ok {
				continue
			}
			engine.NoteOn(note, 100)

			mu.Lock()
			if t, exists := offTimers[note]; exists {
				t.Stop()
			}
			offTimers[note] = time.AfterFunc(noteHoldMs*time.Millisecond, func() {
				engine.NoteOff(note)
			})
			mu.Unlock()
		}
	}
}

// streamer adapts the engine's block renderer to the pull-based
// io.Reader the audio backend consumes: interleaved little-endian
// float32 stereo frames.
type streamer struct {
	engine  *synth.Engine
	left    []float32
	right   []float32
	pending []byte
}

func newStreamer(engine *synth.Engine) *streamer {
	return &streamer{
		engine:  engine,
		left:    make([]float32, blockSize),
		right:   make([]float32, blockSize),
		pending: make([]byte, 0, blockSize*8),
	}
}

func (s *streamer) Read(p []byte) (int, error) {
	for len(s.pending) < len(p) {
		s.engine.ProcessBlock(s.left, s.right)
		for i := 0; i < blockSize; i++ {
			s.pending = binary.LittleEndian.AppendUint32(s.pending, math.Float32bits(s.left[i]))
			s.pending = binary.LittleEndian.AppendUint32(s.pending, math.Float32bits(s.right[i]))
		}
	}
	n := copy(p, s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	return n, nil
}

// makeSample synthesizes two seconds of a slowly decaying harmonic pad
// so the instrument makes sound without any file on disk.
func makeSample() [][]float32 {
	n := sampleRate * 2
	left := make([]float32, n)
	right := make([]float32, n)

	partials := []struct {
		freq float64
		amp  float64
	}{
		{110.0, 0.5},
		{220.0, 0.3},
		{331.5, 0.15}, // slightly sharp third partial, tape-like
		{443.0, 0.08},
	}

	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		env := math.Exp(-t * 1.2)
		var v float64
		for _, p := range partials {
			v += p.amp * math.Sin(2*math.Pi*p.freq*t)
		}
		v *= env
		left[i] = float32(v)
		right[i] = float32(v * 0.97)
	}
	return [][]float32{left, right}
}
