package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/param"
)

// ParameterCount returns how many parameters the controller declares.
func (p *Plugin) ParameterCount() int32 {
	return p.controller.GetParameterCount()
}

// Parameter describes id. Unknown ids yield a zero Descriptor.
func (p *Plugin) Parameter(id uint32) param.Descriptor {
	index := p.indices.Lookup(id)
	if index < 0 {
		p.log.Debug("parameter lookup failed", zap.Error(errors.UnknownParameter(id)))
		return param.Descriptor{}
	}
	info, err := p.controller.GetParameterInfo(index)
	if err != nil {
		p.log.Debug("parameter info failed", zap.Uint32("param_id", id), zap.Int32("index", index), zap.Error(err))
		return param.Descriptor{}
	}
	value := p.controller.GetParamNormalized(id)
	formatted, err := p.controller.GetParamStringByValue(id, value)
	if err != nil {
		formatted = ""
	}
	return param.Describe(info, index, value, formatted)
}

// Parameters describes every declared parameter in index order.
func (p *Plugin) Parameters() []param.Descriptor {
	n := p.ParameterCount()
	out := make([]param.Descriptor, 0, n)
	for i := int32(0); i < n; i++ {
		info, err := p.controller.GetParameterInfo(i)
		if err != nil {
			continue
		}
		if d := p.Parameter(info.ID); !d.IsZero() {
			out = append(out, d)
		}
	}
	return out
}

// SetParameterFromUI schedules value for id at the start of the next block.
// It reports false when the pending queue is full.
func (p *Plugin) SetParameterFromUI(id uint32, value float64) bool {
	return p.pending.Add(event.SetParameter(id, value, 0)) == 1
}

// SetParameterInController sets the value the controller shows without
// automating the processor.
func (p *Plugin) SetParameterInController(id uint32, value float64) error {
	if err := p.controller.SetParamNormalized(id, value); err != nil {
		return errors.New(errors.PhaseParameter, errors.KindUnknownParameter).
			Value(id).Cause(err).Build()
	}
	return nil
}

// QueueEvents schedules host events for the next block and returns how many
// fit.
func (p *Plugin) QueueEvents(events ...event.HostEvent) int {
	n := p.pending.Add(events...)
	if n < len(events) {
		p.log.Warn("host events dropped, queue full", zap.Int("dropped", len(events)-n))
	}
	return n
}

// Events drains the plugin events received since the last call.
func (p *Plugin) Events() []event.PluginEvent {
	return p.outbox.Drain()
}

// Outbox exposes the plugin event channel for consumers that select on it.
func (p *Plugin) Outbox() *event.Outbox {
	return p.outbox
}

// Edits exposes the open edit gestures.
func (p *Plugin) Edits() *param.EditSynchronizer {
	return p.edits
}

// SyncController applies the parameter changes seen by the processor since
// the last call to the controller and returns how many were applied. Host
// issued changes are mirrored to the consumer as ParameterUpdate events;
// processor-side changes were already reported by Process.
//
// Call it from the UI thread.
func (p *Plugin) SyncController() int {
	updates := p.updates.take()
	for _, u := range updates {
		if err := p.controller.SetParamNormalized(u.id, u.value); err != nil {
			p.log.Warn("controller sync failed",
				zap.Uint32("param_id", u.id),
				zap.Float64("value", u.value),
				zap.Error(err),
			)
			continue
		}
		if u.mirror {
			p.edits.Mirror(u.id, u.value)
		}
	}
	return len(updates)
}

type controllerUpdate struct {
	id     uint32
	value  float64
	mirror bool
}

// updateQueue holds parameter values waiting for SyncController. push runs
// on the audio path and never grows the buffer beyond its capacity.
type updateQueue struct {
	mu      sync.Mutex
	items   []controllerUpdate
	spare   []controllerUpdate
	dropped uint64
}

func newUpdateQueue(capacity int) *updateQueue {
	if capacity <= 0 {
		capacity = event.DefaultQueueCapacity
	}
	return &updateQueue{
		items: make([]controllerUpdate, 0, capacity),
		spare: make([]controllerUpdate, 0, capacity),
	}
}

func (q *updateQueue) push(id uint32, value float64, mirror bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// A newer value for the same id replaces the pending one
	for i := range q.items {
		if q.items[i].id == id {
			q.items[i].value = value
			q.items[i].mirror = q.items[i].mirror || mirror
			return
		}
	}
	if len(q.items) == cap(q.items) {
		q.dropped++
		return
	}
	q.items = append(q.items, controllerUpdate{id: id, value: value, mirror: mirror})
}

// take swaps the pending buffer out. The returned slice is valid until the
// next take.
func (q *updateQueue) take() []controllerUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = q.spare[:0]
	q.spare = out
	return out
}
