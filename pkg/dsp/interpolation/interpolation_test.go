package interpolation

import (
	"math"
	"testing"
)

func TestLinear(t *testing.T) {
	t.Run("Endpoints", func(t *testing.T) {
		if got := Linear(2, 6, 0); got != 2 {
			t.Errorf("Linear at frac 0 = %f, want 2", got)
		}
		if got := Linear(2, 6, 1); got != 6 {
			t.Errorf("Linear at frac 1 = %f, want 6", got)
		}
	})

	t.Run("Midpoint", func(t *testing.T) {
		if got := Linear(2, 6, 0.5); got != 4 {
			t.Errorf("Linear at frac 0.5 = %f, want 4", got)
		}
	})
}

func TestHermite(t *testing.T) {
	t.Run("PassesThroughKnots", func(t *testing.T) {
		if got := Hermite(0, 3, 7, 10, 0); math.Abs(float64(got-3)) > 1e-6 {
			t.Errorf("Hermite at frac 0 = %f, want 3", got)
		}
		if got := Hermite(0, 3, 7, 10, 1); math.Abs(float64(got-7)) > 1e-6 {
			t.Errorf("Hermite at frac 1 = %f, want 7", got)
		}
	})

	t.Run("ExactOnLinearData", func(t *testing.T) {
		// A cubic through equally spaced collinear points is the line itself.
		for _, frac := range []float32{0, 0.25, 0.5, 0.75, 1} {
			got := Hermite(1, 2, 3, 4, frac)
			want := 2 + frac
			if math.Abs(float64(got-want)) > 1e-6 {
				t.Errorf("Hermite on linear data at frac %f = %f, want %f", frac, got, want)
			}
		}
	})

	t.Run("StaysNearNeighbors", func(t *testing.T) {
		// Interpolating a smooth curve should not wildly overshoot.
		got := Hermite(0, 1, 1, 0, 0.5)
		if got < 0.9 || got > 1.2 {
			t.Errorf("Hermite midpoint of a smooth hump = %f, want near 1", got)
		}
	})
}
