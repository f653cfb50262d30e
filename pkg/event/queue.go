package event

import (
	"cmp"
	"slices"
	"sync"
)

// DefaultQueueCapacity bounds the host events pending for the next block.
const DefaultQueueCapacity = 1024

// Queue holds host events enqueued from any thread until the next block
// takes them.
type Queue struct {
	mu       sync.Mutex
	events   []HostEvent
	capacity int
}

// NewQueue creates a queue holding up to capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		events:   make([]HostEvent, 0, min(capacity, 128)),
		capacity: capacity,
	}
}

// Add appends events and returns how many were accepted.
func (q *Queue) Add(events ...HostEvent) int {
	if len(events) == 0 {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	n := min(len(events), q.capacity-len(q.events))
	if n <= 0 {
		return 0
	}
	q.events = append(q.events, events[:n]...)
	return n
}

// TakeInto appends the pending events to dst ordered by block offset and
// empties the queue.
func (q *Queue) TakeInto(dst []HostEvent) []HostEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return dst
	}
	slices.SortStableFunc(q.events, func(a, b HostEvent) int {
		return cmp.Compare(a.BlockOffset, b.BlockOffset)
	})
	dst = append(dst, q.events...)
	q.events = q.events[:0]
	return dst
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Clear drops every pending event.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = q.events[:0]
}
