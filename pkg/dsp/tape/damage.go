package tape

import (
	"math"
	"math/rand"
)

// Damage chain constants.
const (
	damageMinCutoff = 500.0   // Hz at maximum damage
	damageMaxCutoff = 20000.0 // Hz at no damage
)

// DamageProcessor is a per-grain filter chain simulating worn tape:
// high-frequency loss, added noise, and saturation. Each grain slot owns
// one instance so filter state never crosses grains.
//
// Flutter/wow position modulation is intentionally not applied here; the
// grain read position is left untouched.
type DamageProcessor struct {
	sampleRate  float64
	filterState float32
	rng         *rand.Rand
}

// NewDamageProcessor creates a processor seeded from the global entropy
// source. Use SetSeed for deterministic noise.
func NewDamageProcessor(sampleRate float64) *DamageProcessor {
	return &DamageProcessor{
		sampleRate: sampleRate,
		rng:        rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetSeed reseeds the noise generator.
func (d *DamageProcessor) SetSeed(seed int64) {
	d.rng = rand.New(rand.NewSource(seed))
}

// Reset clears the filter state.
func (d *DamageProcessor) Reset() {
	d.filterState = 0
}

// ProcessSample runs one sample through the damage chain.
// damageAmount is in [0,1]; below a small threshold the input passes
// through untouched.
func (d *DamageProcessor) ProcessSample(input, damageAmount float32) float32 {
	if damageAmount < 0.001 {
		return input
	}

	// High-frequency loss: single-pole lowpass with the cutoff sliding
	// from 20 kHz down to 500 Hz as damage increases.
	cutoff := damageMaxCutoff - float64(damageAmount)*(damageMaxCutoff-damageMinCutoff)
	coeff := float32(math.Exp(-2.0 * math.Pi * cutoff / d.sampleRate))
	d.filterState = coeff*d.filterState + (1.0-coeff)*input

	// Tape noise, mixed in proportion to its own level.
	noiseAmount := damageAmount * 0.0005
	noise := float32(d.rng.NormFloat64()) * noiseAmount
	withNoise := d.filterState*(1.0-noiseAmount) + noise

	// Saturation: drive rises from 1x to 5x with damage, compensated on
	// the way out.
	drive := 1.0 + damageAmount*4.0
	return float32(math.Tanh(float64(withNoise*drive))) / drive
}
