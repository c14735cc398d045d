package state

import (
	"bytes"
	"testing"

	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

func TestStateRoundTrip(t *testing.T) {
	wear := tape.NewDisintegrationEngine()
	wear.Prepare(44100)
	wear.SetRegionLife(7, 0.25)
	wear.SetRegionLife(300, 0.5)
	wear.SetRegionLife(tape.NumWearRegions-1, 0)

	var buf bytes.Buffer
	if err := NewManager(wear).Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := tape.NewDisintegrationEngine()
	restored.Prepare(44100)
	if err := NewManager(restored).Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < tape.NumWearRegions; i++ {
		if got, want := restored.RegionLife(i), wear.RegionLife(i); got != want {
			t.Fatalf("region %d life = %f after round trip, want %f", i, got, want)
		}
	}
}

func TestStateRejectsGarbage(t *testing.T) {
	m := NewManager(tape.NewDisintegrationEngine())

	if err := m.Load(bytes.NewReader([]byte("NOPE1234"))); err == nil {
		t.Error("loading a stream with the wrong magic should fail")
	}
	if err := m.Load(bytes.NewReader([]byte("TG"))); err == nil {
		t.Error("loading a truncated stream should fail")
	}
	if err := m.Load(bytes.NewReader(nil)); err == nil {
		t.Error("loading an empty stream should fail")
	}
}

func TestStateRejectsNewerVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{0xFF, 0, 0, 0}) // version 255
	if err := NewManager(tape.NewDisintegrationEngine()).Load(&buf); err == nil {
		t.Error("loading a newer version should fail")
	}
}

func TestStateTruncatedRegions(t *testing.T) {
	wear := tape.NewDisintegrationEngine()
	var buf bytes.Buffer
	if err := NewManager(wear).Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cut := buf.Bytes()[:buf.Len()-2]
	if err := NewManager(wear).Load(bytes.NewReader(cut)); err == nil {
		t.Error("loading a truncated region list should fail")
	}
}
