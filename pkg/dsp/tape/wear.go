// Package tape simulates the physical medium: cumulative playback wear,
// per-grain damage synthesis, and a modulated echo.
package tape

import (
	"math"
	"sync/atomic"
)

// NumWearRegions is the fixed number of wear regions the loaded sample
// is partitioned into.
const NumWearRegions = 512

// wearRegion tracks one contiguous slice of the sample. Life is stored
// as float32 bits in a uint32 so the audio thread can write and the
// visualizer thread can read without locking.
type wearRegion struct {
	life atomic.Uint32
	hits atomic.Int64
}

// DisintegrationEngine models cumulative playback wear across the whole
// sample. Regions partition [0, totalSamples) into equal-width ranges;
// every read by an active grain chips away at the region it falls in.
//
// The engine is shared by reference between all grains. All methods are
// safe to call concurrently; writes are single-word atomic stores, so a
// concurrent reader may see a value one update stale, which is acceptable
// for both the audio path and the visualizer.
type DisintegrationEngine struct {
	totalSamples atomic.Int64
	maxLifeHits  atomic.Uint64 // float64 bits
	enabled      atomic.Bool
	regions      [NumWearRegions]wearRegion
}

// NewDisintegrationEngine creates a pristine wear engine.
func NewDisintegrationEngine() *DisintegrationEngine {
	e := &DisintegrationEngine{}
	e.maxLifeHits.Store(math.Float64bits(1000.0))
	e.Reset()
	return e
}

// Prepare tells the engine how many samples the regions span. Called by
// the sample loader, never from the audio thread.
func (e *DisintegrationEngine) Prepare(totalSamples int) {
	e.totalSamples.Store(int64(totalSamples))
}

// Reset restores every region to full life.
func (e *DisintegrationEngine) Reset() {
	full := math.Float32bits(1.0)
	for i := range e.regions {
		e.regions[i].life.Store(full)
		e.regions[i].hits.Store(0)
	}
}

// SetEnabled turns wear accumulation and damage queries on or off.
func (e *DisintegrationEngine) SetEnabled(enabled bool) {
	e.enabled.Store(enabled)
}

// Enabled reports whether the wear model is active.
func (e *DisintegrationEngine) Enabled() bool {
	return e.enabled.Load()
}

// SetMaxLife sets how many hits wear a region from pristine to dead,
// clamped into [25, 1e6].
func (e *DisintegrationEngine) SetMaxLife(hits float64) {
	hits = math.Max(25.0, math.Min(1000000.0, hits))
	e.maxLifeHits.Store(math.Float64bits(hits))
}

// DecrementLife subtracts one hit's worth of life from the region that
// owns sampleIndex. Called once per source read by an active grain.
func (e *DisintegrationEngine) DecrementLife(sampleIndex int) {
	if !e.enabled.Load() || e.totalSamples.Load() == 0 {
		return
	}
	region := e.regionFor(sampleIndex)
	if region < 0 {
		return
	}

	r := &e.regions[region]
	decrement := float32(1.0 / math.Float64frombits(e.maxLifeHits.Load()))
	life := math.Float32frombits(r.life.Load()) - decrement
	if life < 0 {
		life = 0
	}
	r.life.Store(math.Float32bits(life))
	r.hits.Add(1)
}

// DamageAt returns 1 - life for the region owning sampleIndex
// (0 = pristine, 1 = fully worn). Disabled engines report no damage.
func (e *DisintegrationEngine) DamageAt(sampleIndex int) float32 {
	if !e.enabled.Load() || e.totalSamples.Load() == 0 {
		return 0
	}
	region := e.regionFor(sampleIndex)
	if region < 0 {
		return 0
	}
	return 1.0 - math.Float32frombits(e.regions[region].life.Load())
}

// RegionLife returns the remaining life of one region, or 1 for an
// out-of-range index.
func (e *DisintegrationEngine) RegionLife(region int) float32 {
	if region < 0 || region >= NumWearRegions {
		return 1.0
	}
	return math.Float32frombits(e.regions[region].life.Load())
}

// SetRegionLife overwrites one region's life, clamped into [0,1].
// Out-of-range indices (e.g. from stored state) are ignored.
func (e *DisintegrationEngine) SetRegionLife(region int, life float32) {
	if region < 0 || region >= NumWearRegions {
		return
	}
	life = float32(math.Max(0, math.Min(1, float64(life))))
	e.regions[region].life.Store(math.Float32bits(life))
}

// RegionHits returns the diagnostic hit counter for one region.
func (e *DisintegrationEngine) RegionHits(region int) int64 {
	if region < 0 || region >= NumWearRegions {
		return 0
	}
	return e.regions[region].hits.Load()
}

// LifeMap copies all region life values into dst, which is grown as
// needed, and returns it. Intended for the visualizer thread.
func (e *DisintegrationEngine) LifeMap(dst []float32) []float32 {
	dst = dst[:0]
	for i := range e.regions {
		dst = append(dst, math.Float32frombits(e.regions[i].life.Load()))
	}
	return dst
}

// regionFor maps a sample index to its owning region, or -1 if the index
// falls outside the loaded range.
func (e *DisintegrationEngine) regionFor(sampleIndex int) int {
	total := e.totalSamples.Load()
	if total == 0 {
		return -1
	}
	region := int(int64(sampleIndex) * NumWearRegions / total)
	if region < 0 {
		return 0
	}
	if region >= NumWearRegions {
		return NumWearRegions - 1
	}
	return region
}
