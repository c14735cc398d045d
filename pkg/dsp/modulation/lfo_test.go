package modulation

import (
	"math"
	"testing"
)

func TestLFOSine(t *testing.T) {
	lfo := NewLFO(44100.0)
	lfo.SetFrequency(1.0)
	lfo.SetWaveform(WaveformSine)

	t.Run("StartsAtZero", func(t *testing.T) {
		lfo.Reset()
		if got := lfo.Process(); math.Abs(float64(got)) > 1e-6 {
			t.Errorf("sine at phase 0 = %f, want 0", got)
		}
	})

	t.Run("QuarterCyclePeak", func(t *testing.T) {
		lfo.Reset()
		lfo.Advance(44100 / 4)
		if got := lfo.Value(); math.Abs(float64(got)-1.0) > 1e-3 {
			t.Errorf("sine at quarter cycle = %f, want 1", got)
		}
	})

	t.Run("Bounded", func(t *testing.T) {
		lfo.Reset()
		for i := 0; i < 100000; i++ {
			v := lfo.Process()
			if v < -1.0 || v > 1.0 {
				t.Fatalf("sine out of range at sample %d: %f", i, v)
			}
		}
	})
}

func TestLFOTriangle(t *testing.T) {
	lfo := NewLFO(44100.0)
	lfo.SetFrequency(1.0)
	lfo.SetWaveform(WaveformTriangle)

	cases := []struct {
		samples int
		want    float64
	}{
		{0, 0},
		{44100 / 4, 1},
		{44100 / 2, 0},
		{3 * 44100 / 4, -1},
	}
	for _, c := range cases {
		lfo.Reset()
		lfo.Advance(c.samples)
		got := float64(lfo.Value())
		if math.Abs(got-c.want) > 1e-3 {
			t.Errorf("triangle after %d samples = %f, want %f", c.samples, got, c.want)
		}
	}
}

func TestLFOSquare(t *testing.T) {
	lfo := NewLFO(44100.0)
	lfo.SetFrequency(1.0)
	lfo.SetWaveform(WaveformSquare)

	lfo.Reset()
	if got := lfo.Value(); got != 1.0 {
		t.Errorf("square in first half = %f, want 1", got)
	}
	lfo.Advance(44100 / 2)
	if got := lfo.Value(); got != -1.0 {
		t.Errorf("square in second half = %f, want -1", got)
	}
}

func TestLFOSteppedNoise(t *testing.T) {
	lfo := NewLFO(1000.0)
	lfo.SetSeed(7)
	lfo.SetFrequency(10.0) // 100-sample cycle
	lfo.SetWaveform(WaveformSteppedNoise)
	lfo.Reset()

	t.Run("HoldsWithinCycle", func(t *testing.T) {
		first := lfo.Process()
		for i := 1; i < 99; i++ {
			if got := lfo.Process(); got != first {
				t.Fatalf("stepped noise changed mid-cycle at sample %d: %f vs %f", i, got, first)
			}
		}
	})

	t.Run("RedrawsOnWrap", func(t *testing.T) {
		lfo.Reset()
		first := lfo.Process()
		lfo.Advance(150) // past the wrap
		second := lfo.Process()
		if second == first {
			t.Errorf("stepped noise did not redraw after a phase wrap: %f", first)
		}
	})
}

func TestLFOFrequencyClamp(t *testing.T) {
	lfo := NewLFO(44100.0)

	lfo.SetFrequency(100.0)
	lfo.Reset()
	lfo.Advance(44100) // one second at the 20 Hz ceiling is 20 whole cycles
	if p := lfo.Phase(); math.Min(p, 1.0-p) > 1e-3 {
		t.Errorf("frequency not clamped to 20 Hz, phase after 1s = %f", p)
	}

	lfo.SetFrequency(0.0)
	lfo.Reset()
	lfo.Advance(44100)
	// One second at the 0.01 Hz floor advances the phase by 0.01.
	if p := lfo.Phase(); math.Abs(p-0.01) > 1e-6 {
		t.Errorf("frequency not clamped to 0.01 Hz, phase after 1s = %f", p)
	}
}

func TestLFOProcessAdvanceAgree(t *testing.T) {
	a := NewLFO(44100.0)
	b := NewLFO(44100.0)
	for _, l := range []*LFO{a, b} {
		l.SetSeed(3)
		l.SetFrequency(5.0)
		l.SetWaveform(WaveformSine)
		l.Reset()
	}

	for i := 0; i < 1000; i++ {
		a.Process()
	}
	b.Advance(1000)

	if math.Abs(a.Phase()-b.Phase()) > 1e-9 {
		t.Errorf("Process and Advance disagree on phase: %f vs %f", a.Phase(), b.Phase())
	}
}
