package param

import (
	"math"
	"testing"
)

func TestParameterBuilder(t *testing.T) {
	p := New(3, "Cutoff").
		Range(20, 20000).
		Default(1000).
		Unit("Hz").
		Build()

	if p.ID != 3 {
		t.Errorf("ID = %d, want 3", p.ID)
	}
	if p.Name != "Cutoff" {
		t.Errorf("Name = %q, want Cutoff", p.Name)
	}
	if p.Unit != "Hz" {
		t.Errorf("Unit = %q, want Hz", p.Unit)
	}
	if p.Min != 20 || p.Max != 20000 {
		t.Errorf("range = [%f, %f], want [20, 20000]", p.Min, p.Max)
	}
	if got := p.PlainValue(); math.Abs(got-1000) > 1e-9 {
		t.Errorf("built parameter should start at its default, got %f", got)
	}
}

func TestParameterValues(t *testing.T) {
	p := New(0, "Level").Range(-60, 6).Default(0).Build()

	t.Run("NormalizedClamping", func(t *testing.T) {
		p.SetValue(1.5)
		if got := p.Value(); got != 1.0 {
			t.Errorf("SetValue above 1 should clamp, got %f", got)
		}
		p.SetValue(-0.5)
		if got := p.Value(); got != 0.0 {
			t.Errorf("SetValue below 0 should clamp, got %f", got)
		}
	})

	t.Run("PlainRoundTrip", func(t *testing.T) {
		p.SetPlainValue(-30)
		if got := p.PlainValue(); math.Abs(got-(-30)) > 1e-9 {
			t.Errorf("plain round trip = %f, want -30", got)
		}
	})

	t.Run("PlainClamping", func(t *testing.T) {
		p.SetPlainValue(100)
		if got := p.PlainValue(); math.Abs(got-6) > 1e-9 {
			t.Errorf("plain value above range = %f, want 6", got)
		}
	})

	t.Run("NormalizeDegenerate", func(t *testing.T) {
		flat := New(1, "Flat").Range(5, 5).Build()
		if got := flat.Normalize(5); got != 0 {
			t.Errorf("degenerate range should normalize to 0, got %f", got)
		}
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add(
		New(0, "A").Range(0, 10).Default(5).Build(),
		New(1, "B").Range(0, 1).Default(0.5).Build(),
	)

	t.Run("Lookup", func(t *testing.T) {
		if r.Count() != 2 {
			t.Errorf("Count = %d, want 2", r.Count())
		}
		if r.Get(0) == nil || r.Get(1) == nil {
			t.Fatal("registered parameters should be retrievable")
		}
		if r.Get(42) != nil {
			t.Error("unknown ID should return nil")
		}
	})

	t.Run("DuplicateIgnored", func(t *testing.T) {
		r.Add(New(0, "Shadow").Range(0, 1).Build())
		if r.Count() != 2 {
			t.Errorf("Count after duplicate Add = %d, want 2", r.Count())
		}
		if r.Get(0).Name != "A" {
			t.Errorf("duplicate Add replaced the original: %q", r.Get(0).Name)
		}
	})

	t.Run("PlainAccess", func(t *testing.T) {
		r.SetPlain(0, 7)
		if got := r.Plain(0); math.Abs(got-7) > 1e-9 {
			t.Errorf("Plain(0) = %f, want 7", got)
		}
		if got := r.Plain(42); got != 0 {
			t.Errorf("Plain of unknown ID = %f, want 0", got)
		}
		r.SetPlain(42, 1) // no-op
	})

	t.Run("AllInOrder", func(t *testing.T) {
		all := r.All()
		if len(all) != 2 || all[0].ID != 0 || all[1].ID != 1 {
			t.Errorf("All() not in registration order: %v", all)
		}
	})
}
