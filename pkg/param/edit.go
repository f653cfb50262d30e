package param

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/justyntemme/vst3host/pkg/event"
)

// EditState is one open UI gesture.
type EditState struct {
	ID       uint32
	Initial  float64
	Current  float64
	Finished bool
}

// EditSynchronizer tracks in-flight parameter gestures per id and forwards
// each step as a ParameterUpdate.
//
// The edit map is guarded by a single mutex held only for the
// lookup/mutate/erase step; notify is always called after unlocking.
type EditSynchronizer struct {
	mu      sync.Mutex
	edits   map[uint32]*EditState
	indices event.IndexLookup
	notify  func(event.PluginEvent)
}

// NewEditSynchronizer creates a synchronizer. indices may be nil, in which
// case every update carries index -1.
func NewEditSynchronizer(indices event.IndexLookup, notify func(event.PluginEvent)) *EditSynchronizer {
	if notify == nil {
		notify = func(event.PluginEvent) {}
	}
	return &EditSynchronizer{
		edits:   make(map[uint32]*EditState),
		indices: indices,
		notify:  notify,
	}
}

// BeginEdit is accepted and ignored; the first PerformEdit opens the gesture.
func (s *EditSynchronizer) BeginEdit(id uint32) error {
	return nil
}

// PerformEdit opens or updates the gesture for id.
func (s *EditSynchronizer) PerformEdit(id uint32, value float64) error {
	s.mu.Lock()
	st, ok := s.edits[id]
	if !ok {
		st = &EditState{ID: id, Initial: value}
		s.edits[id] = st
	}
	st.Current = value
	update := s.update(st, false)
	s.mu.Unlock()

	s.notify(update)
	return nil
}

// EndEdit closes the gesture for id. Without an open gesture it forwards a
// NaN update with EndEdit set and leaves the tracked edits untouched.
func (s *EditSynchronizer) EndEdit(id uint32) error {
	s.mu.Lock()
	var update event.ParameterUpdate
	if st, ok := s.edits[id]; ok {
		st.Finished = true
		update = s.update(st, true)
		delete(s.edits, id)
	} else {
		update = event.ParameterUpdate{
			ID:      id,
			Index:   s.lookup(id),
			Current: math.NaN(),
			Initial: math.NaN(),
			EndEdit: true,
		}
	}
	s.mu.Unlock()

	s.notify(update)
	return nil
}

// Mirror forwards a change that did not originate from a gesture, such as a
// host-issued value applied to the controller.
func (s *EditSynchronizer) Mirror(id uint32, value float64) {
	s.notify(event.ParameterUpdate{
		ID:      id,
		Index:   s.lookup(id),
		Current: value,
		Initial: math.NaN(),
	})
}

// Editing reports whether a gesture is open for id.
func (s *EditSynchronizer) Editing(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.edits[id]
	return ok
}

// Len returns the number of open gestures.
func (s *EditSynchronizer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edits)
}

// Snapshot returns a copy of the open gestures ordered by id.
func (s *EditSynchronizer) Snapshot() []EditState {
	s.mu.Lock()
	out := make([]EditState, 0, len(s.edits))
	for _, st := range s.edits {
		out = append(out, *st)
	}
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b EditState) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *EditSynchronizer) update(st *EditState, end bool) event.ParameterUpdate {
	return event.ParameterUpdate{
		ID:      st.ID,
		Index:   s.lookup(st.ID),
		Current: st.Current,
		Initial: st.Initial,
		EndEdit: end,
	}
}

func (s *EditSynchronizer) lookup(id uint32) int32 {
	if s.indices == nil {
		return -1
	}
	return s.indices.Lookup(id)
}
