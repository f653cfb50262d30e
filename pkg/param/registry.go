package param

import (
	"slices"
	"sync"
)

// Registry holds a plugin's parameters in declaration order. The index a
// parameter is declared at is the index the controller reports it under.
type Registry struct {
	mu   sync.RWMutex
	byID map[uint32]*Parameter
	list []*Parameter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Parameter)}
}

// Add appends params. An id that is already registered keeps its first
// declaration.
func (r *Registry) Add(params ...*Parameter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if r.byID[p.ID] != nil {
			continue
		}
		r.byID[p.ID] = p
		r.list = append(r.list, p)
	}
}

// Get returns the parameter with id, nil if unknown.
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	p := r.byID[id]
	r.mu.RUnlock()
	return p
}

// GetByIndex returns the parameter declared at index, nil if out of range.
func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || int(index) >= len(r.list) {
		return nil
	}
	return r.list[index]
}

func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int32(len(r.list))
}

// All returns a copy of the declaration-ordered list.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.list)
}

// Value returns the normalized value of id, 0 if unknown.
func (r *Registry) Value(id uint32) float64 {
	if p := r.Get(id); p != nil {
		return p.GetValue()
	}
	return 0
}

// Reset restores every parameter to its default.
func (r *Registry) Reset() {
	for _, p := range r.All() {
		p.SetValue(p.DefaultValue)
	}
}
