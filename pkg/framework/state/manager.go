// Package state serializes the tape condition so a worn tape can be
// carried across sessions. Parameter values are deliberately not part
// of the stream; they belong to whatever control surface owns them.
package state

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/palaceaudio/tapegrain/pkg/dsp/tape"
)

// magic identifies a tapegrain condition stream.
var magic = []byte("TGRN")

const currentVersion uint32 = 1

// Manager saves and loads the wear map of one disintegration engine.
type Manager struct {
	version uint32
	wear    *tape.DisintegrationEngine
}

// NewManager creates a state manager over a wear engine.
func NewManager(wear *tape.DisintegrationEngine) *Manager {
	return &Manager{
		version: currentVersion,
		wear:    wear,
	}
}

// Save writes the per-region life values.
func (m *Manager) Save(w io.Writer) error {
	if _, err := w.Write(magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(tape.NumWearRegions)); err != nil {
		return err
	}
	for i := 0; i < tape.NumWearRegions; i++ {
		if err := binary.Write(w, binary.LittleEndian, m.wear.RegionLife(i)); err != nil {
			return err
		}
	}
	return nil
}

// Load restores a wear map written by Save. Streams from a build with
// a different region count load the regions both sides share; extras
// are read and dropped.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}
	if string(header) != string(magic) {
		return fmt.Errorf("state: not a tape condition stream")
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version > m.version {
		return fmt.Errorf("state: version %d is newer than supported %d", version, m.version)
	}

	var regionCount int32
	if err := binary.Read(r, binary.LittleEndian, &regionCount); err != nil {
		return err
	}
	for i := int32(0); i < regionCount; i++ {
		var life float32
		if err := binary.Read(r, binary.LittleEndian, &life); err != nil {
			return err
		}
		// SetRegionLife ignores indices beyond the current map.
		m.wear.SetRegionLife(int(i), life)
	}
	return nil
}
