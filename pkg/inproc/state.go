package inproc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/justyntemme/vst3host/pkg/param"
)

const stateMagic = "VST3GO"

// StateManager handles plugin state saving and loading
type StateManager struct {
	version  uint32
	registry *param.Registry
}

// NewStateManager creates a new state manager
func NewStateManager(registry *param.Registry) *StateManager {
	return &StateManager{
		version:  1,
		registry: registry,
	}
}

// Save writes magic, version, parameter count, id/value pairs and an empty
// custom-data marker.
func (m *StateManager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, stateMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	return binary.Write(w, binary.LittleEndian, uint32(0))
}

// Load reads state written by Save. Unknown parameter ids are ignored.
func (m *StateManager) Load(r io.Reader) error {
	header := make([]byte, len(stateMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return err
	}
	if string(header) != stateMagic {
		return fmt.Errorf("invalid state format")
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version > m.version {
		return fmt.Errorf("state version %d is newer than supported version %d", version, m.version)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("invalid parameter count %d", count)
	}

	// Decode fully before applying so a truncated blob changes nothing
	type entry struct {
		id    uint32
		value float64
	}
	entries := make([]entry, 0, min(count, 1024))
	for i := int32(0); i < count; i++ {
		var e entry
		if err := binary.Read(r, binary.LittleEndian, &e.id); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.value); err != nil {
			return err
		}
		entries = append(entries, e)
	}

	var custom uint32
	if err := binary.Read(r, binary.LittleEndian, &custom); err != nil {
		return err
	}
	if custom != 0 {
		return fmt.Errorf("custom state data not supported")
	}

	for _, e := range entries {
		if p := m.registry.Get(e.id); p != nil {
			p.SetValue(e.value)
		}
	}
	return nil
}
