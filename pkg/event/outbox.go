package event

import "sync/atomic"

// DefaultOutboxCapacity bounds the plugin events held between drains.
const DefaultOutboxCapacity = 512

// Outbox carries plugin events to a non-real-time consumer. Send never
// blocks; events that do not fit are counted and discarded.
type Outbox struct {
	ch      chan PluginEvent
	dropped atomic.Uint64
}

// NewOutbox creates an outbox holding up to capacity events.
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = DefaultOutboxCapacity
	}
	return &Outbox{ch: make(chan PluginEvent, capacity)}
}

// Send queues e and reports whether it fit.
func (o *Outbox) Send(e PluginEvent) bool {
	select {
	case o.ch <- e:
		return true
	default:
		o.dropped.Add(1)
		return false
	}
}

// Drain returns every event currently queued, oldest first.
func (o *Outbox) Drain() []PluginEvent {
	return o.DrainInto(nil)
}

// DrainInto appends every event currently queued to dst.
func (o *Outbox) DrainInto(dst []PluginEvent) []PluginEvent {
	for {
		select {
		case e := <-o.ch:
			dst = append(dst, e)
		default:
			return dst
		}
	}
}

// Events exposes the receive side for consumers that select on it.
func (o *Outbox) Events() <-chan PluginEvent {
	return o.ch
}

// Len returns the number of queued events.
func (o *Outbox) Len() int { return len(o.ch) }

// Dropped returns how many events were discarded because the outbox was full.
func (o *Outbox) Dropped() uint64 { return o.dropped.Load() }
