package param

import (
	"sync"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Descriptor is the host-facing description of one parameter.
type Descriptor struct {
	ID    uint32
	Index int32
	Name  string
	// Value is normalized to [0,1].
	Value     float64
	Formatted string
	Flags     Flags
}

// IsZero reports whether d is the empty descriptor returned for unknown ids.
func (d Descriptor) IsZero() bool {
	return d == Descriptor{}
}

// Describe builds a descriptor from the controller's info, current value and
// display string.
func Describe(info vst3.ParameterInfo, index int32, value float64, formatted string) Descriptor {
	return Descriptor{
		ID:        info.ID,
		Index:     index,
		Name:      info.Title,
		Value:     value,
		Formatted: formatted,
		Flags:     Flags(uint32(info.Flags)),
	}
}

// IndexMap maps parameter ids to their declared index.
type IndexMap struct {
	mu      sync.RWMutex
	indices map[uint32]int32
}

// NewIndexMap creates an empty map
func NewIndexMap() *IndexMap {
	return &IndexMap{indices: make(map[uint32]int32)}
}

// Build replaces the contents from a controller's parameter list.
func (m *IndexMap) Build(ctrl vst3.IEditController) {
	n := ctrl.GetParameterCount()
	indices := make(map[uint32]int32, n)
	for i := int32(0); i < n; i++ {
		info, err := ctrl.GetParameterInfo(i)
		if err != nil {
			continue
		}
		indices[info.ID] = i
	}

	m.mu.Lock()
	m.indices = indices
	m.mu.Unlock()
}

// Set records the index of id.
func (m *IndexMap) Set(id uint32, index int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices[id] = index
}

// Lookup returns the index of id, or -1 if the id is unknown.
func (m *IndexMap) Lookup(id uint32) int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i, ok := m.indices[id]; ok {
		return i
	}
	return -1
}

// Len returns the number of known ids.
func (m *IndexMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.indices)
}
