package tape

import (
	"math"
	"testing"
)

func TestDisintegrationLife(t *testing.T) {
	e := NewDisintegrationEngine()
	e.Prepare(512 * 100) // 100 samples per region
	e.SetEnabled(true)
	e.SetMaxLife(100)

	t.Run("ExactDecrement", func(t *testing.T) {
		e.Reset()
		for i := 0; i < 25; i++ {
			e.DecrementLife(0)
		}
		want := float32(1.0) - 25.0/100.0
		if got := e.RegionLife(0); math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("life after 25 of 100 hits = %f, want %f", got, want)
		}
		if got := e.RegionHits(0); got != 25 {
			t.Errorf("hit counter = %d, want 25", got)
		}
	})

	t.Run("ClampsAtZero", func(t *testing.T) {
		e.Reset()
		for i := 0; i < 150; i++ {
			e.DecrementLife(0)
		}
		if got := e.RegionLife(0); got != 0 {
			t.Errorf("life after exhausting hits = %f, want 0", got)
		}
	})

	t.Run("DamageIsOneMinusLife", func(t *testing.T) {
		e.Reset()
		for i := 0; i < 40; i++ {
			e.DecrementLife(0)
		}
		life := e.RegionLife(0)
		damage := e.DamageAt(0)
		if math.Abs(float64(damage-(1.0-life))) > 1e-6 {
			t.Errorf("damage %f != 1 - life %f", damage, life)
		}
	})

	t.Run("OnlyTouchedRegionWears", func(t *testing.T) {
		e.Reset()
		e.DecrementLife(0)
		if got := e.RegionLife(1); got != 1.0 {
			t.Errorf("untouched region life = %f, want 1", got)
		}
	})
}

func TestDisintegrationDisabled(t *testing.T) {
	e := NewDisintegrationEngine()
	e.Prepare(1000)
	e.SetEnabled(false)
	e.SetMaxLife(100)

	e.DecrementLife(0)
	if got := e.RegionLife(0); got != 1.0 {
		t.Errorf("disabled engine should not wear, life = %f", got)
	}
	if got := e.DamageAt(0); got != 0 {
		t.Errorf("disabled engine should report no damage, got %f", got)
	}
}

func TestDisintegrationRegionMapping(t *testing.T) {
	e := NewDisintegrationEngine()
	e.Prepare(1024) // 2 samples per region
	e.SetEnabled(true)
	e.SetMaxLife(25)

	e.DecrementLife(0)
	e.DecrementLife(1)
	if got := e.RegionHits(0); got != 2 {
		t.Errorf("samples 0 and 1 should both land in region 0, hits = %d", got)
	}

	e.DecrementLife(2)
	if got := e.RegionHits(1); got != 1 {
		t.Errorf("sample 2 should land in region 1, hits = %d", got)
	}

	// Out-of-range indices clamp to the edge regions.
	e.DecrementLife(5000)
	if got := e.RegionHits(NumWearRegions - 1); got != 1 {
		t.Errorf("oversized index should clamp to the last region, hits = %d", got)
	}
	e.DecrementLife(-3)
	if got := e.RegionHits(0); got != 3 {
		t.Errorf("negative index should clamp to region 0, hits = %d", got)
	}
}

func TestDisintegrationMaxLifeClamp(t *testing.T) {
	e := NewDisintegrationEngine()
	e.Prepare(512)
	e.SetEnabled(true)

	e.SetMaxLife(1) // clamps up to 25
	e.DecrementLife(0)
	want := float32(1.0) - 1.0/25.0
	if got := e.RegionLife(0); math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("life after one hit at clamped max life = %f, want %f", got, want)
	}

	e.SetMaxLife(1e9) // clamps down to 1e6
	e.Reset()
	e.DecrementLife(0)
	want = float32(1.0) - 1.0/1e6
	if got := e.RegionLife(0); math.Abs(float64(got-want)) > 1e-7 {
		t.Errorf("life after one hit at clamped ceiling = %f, want %f", got, want)
	}
}

func TestDisintegrationStateAccess(t *testing.T) {
	e := NewDisintegrationEngine()
	e.Prepare(512)

	t.Run("SetRegionLife", func(t *testing.T) {
		e.SetRegionLife(3, 0.25)
		if got := e.RegionLife(3); got != 0.25 {
			t.Errorf("RegionLife(3) = %f, want 0.25", got)
		}
		e.SetRegionLife(3, -1)
		if got := e.RegionLife(3); got != 0 {
			t.Errorf("SetRegionLife should clamp to 0, got %f", got)
		}
		e.SetRegionLife(-1, 0.5) // ignored
		e.SetRegionLife(NumWearRegions, 0.5)
	})

	t.Run("LifeMap", func(t *testing.T) {
		e.Reset()
		e.SetRegionLife(10, 0.5)
		m := e.LifeMap(nil)
		if len(m) != NumWearRegions {
			t.Fatalf("LifeMap length = %d, want %d", len(m), NumWearRegions)
		}
		if m[10] != 0.5 {
			t.Errorf("LifeMap[10] = %f, want 0.5", m[10])
		}
		if m[0] != 1.0 {
			t.Errorf("LifeMap[0] = %f, want 1", m[0])
		}

		// Reuses the destination.
		m2 := e.LifeMap(m)
		if &m2[0] != &m[0] {
			t.Error("LifeMap should reuse the destination slice")
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		if got := e.RegionLife(-1); got != 1.0 {
			t.Errorf("RegionLife(-1) = %f, want 1", got)
		}
		if got := e.RegionHits(NumWearRegions); got != 0 {
			t.Errorf("RegionHits out of range = %d, want 0", got)
		}
	})
}
