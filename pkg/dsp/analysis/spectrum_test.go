package analysis

import (
	"math"
	"testing"
)

func TestSpectrumSinePeak(t *testing.T) {
	s := NewSpectrum()

	// A sine exactly on bin 32 (32 cycles over the FFT length).
	const bin = 32
	for i := 0; i < SpectrumSize; i++ {
		v := float32(math.Sin(2 * math.Pi * bin * float64(i) / SpectrumSize))
		s.Push(v, v)
	}

	mags := s.Magnitudes(nil)
	if len(mags) != NumBins {
		t.Fatalf("got %d bins, want %d", len(mags), NumBins)
	}

	peak := 0
	for i, m := range mags {
		if m > mags[peak] {
			peak = i
		}
	}
	if peak != bin {
		t.Errorf("spectrum peak at bin %d, want %d", peak, bin)
	}

	// The Hann window halves the peak amplitude of a unit sine.
	if mags[peak] < 0.3 || mags[peak] > 0.7 {
		t.Errorf("peak magnitude = %f, want about 0.5", mags[peak])
	}
}

func TestSpectrumSilence(t *testing.T) {
	s := NewSpectrum()
	for i := 0; i < SpectrumSize; i++ {
		s.Push(0, 0)
	}

	for i, m := range s.Magnitudes(nil) {
		if m != 0 {
			t.Fatalf("bin %d of silence = %f, want 0", i, m)
		}
	}
}

func TestSpectrumStereoAveraging(t *testing.T) {
	s := NewSpectrum()
	// Opposite-phase channels cancel in the mono mix.
	for i := 0; i < SpectrumSize; i++ {
		v := float32(math.Sin(2 * math.Pi * 16 * float64(i) / SpectrumSize))
		s.Push(v, -v)
	}

	for i, m := range s.Magnitudes(nil) {
		if m > 1e-6 {
			t.Fatalf("bin %d of an out-of-phase pair = %f, want 0", i, m)
		}
	}
}

func TestSpectrumPushBlock(t *testing.T) {
	a := NewSpectrum()
	b := NewSpectrum()

	left := make([]float32, SpectrumSize)
	right := make([]float32, SpectrumSize)
	for i := range left {
		left[i] = float32(math.Sin(2 * math.Pi * 8 * float64(i) / SpectrumSize))
		right[i] = left[i]
	}

	b.PushBlock(left, right)
	for i := range left {
		a.Push(left[i], right[i])
	}

	magsA := a.Magnitudes(nil)
	magsB := b.Magnitudes(nil)
	for i := range magsA {
		if magsA[i] != magsB[i] {
			t.Fatalf("Push and PushBlock disagree at bin %d: %f vs %f", i, magsA[i], magsB[i])
		}
	}
}

func TestSpectrumReusesDst(t *testing.T) {
	s := NewSpectrum()
	dst := make([]float32, 0, NumBins)
	got := s.Magnitudes(dst)
	if cap(got) != cap(dst) {
		t.Error("Magnitudes should reuse the destination slice")
	}
}
