// Package param provides lock-free named float parameters for the
// control surface.
package param

import (
	"math"
	"sync/atomic"
)

// Parameter is one named control value. The value is stored normalized
// (0-1) in an atomic word so the audio thread can snapshot it without
// locking while a control thread writes it.
type Parameter struct {
	ID           uint32
	Name         string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64
	StepCount    int32

	value atomic.Uint64 // float64 bits
}

// Value returns the current normalized value (0-1).
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1.
func (p *Parameter) SetValue(value float64) {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	p.value.Store(math.Float64bits(value))
}

// PlainValue returns the current value mapped into [Min, Max].
func (p *Parameter) PlainValue() float64 {
	return p.Denormalize(p.Value())
}

// SetPlainValue sets the value from a plain (unit-range) number.
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// Normalize converts a plain value to 0-1, clamped.
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	normalized := (plain - p.Min) / (p.Max - p.Min)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Denormalize converts a normalized value to the plain range.
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

// Builder assembles a Parameter fluently.
type Builder struct {
	p *Parameter
}

// New starts building a parameter.
func New(id uint32, name string) *Builder {
	return &Builder{p: &Parameter{
		ID:   id,
		Name: name,
		Min:  0,
		Max:  1,
	}}
}

// Range sets the plain value range.
func (b *Builder) Range(min, max float64) *Builder {
	b.p.Min = min
	b.p.Max = max
	return b
}

// Default sets the default plain value.
func (b *Builder) Default(plain float64) *Builder {
	b.p.DefaultValue = plain
	return b
}

// Unit sets the display unit.
func (b *Builder) Unit(unit string) *Builder {
	b.p.Unit = unit
	return b
}

// Steps marks the parameter as discrete with the given step count.
func (b *Builder) Steps(count int32) *Builder {
	b.p.StepCount = count
	return b
}

// Build finalizes the parameter at its default value.
func (b *Builder) Build() *Parameter {
	b.p.SetPlainValue(b.p.DefaultValue)
	return b.p
}
