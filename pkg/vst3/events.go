package vst3

// EventType of a wire event.
type EventType uint16

const (
	EventTypeNoteOn  EventType = 0
	EventTypeNoteOff EventType = 1
)

// Event flags
const (
	EventIsLive uint16 = 1 << 0
)

// NoteOnEvent payload
type NoteOnEvent struct {
	Channel  int16
	Pitch    int16
	Tuning   float32
	Velocity float32
	Length   int32
	NoteID   int32
}

// NoteOffEvent payload
type NoteOffEvent struct {
	Channel  int16
	Pitch    int16
	Velocity float32
	NoteID   int32
	Tuning   float32
}

// Event is a note event as delivered to the processor.
type Event struct {
	BusIndex     int32
	SampleOffset int32
	PPQPosition  TQuarterNotes
	Flags        uint16
	Type         EventType

	NoteOn  NoteOnEvent
	NoteOff NoteOffEvent
}

// EventList is the host-provided IEventList.
type EventList struct {
	events []Event
}

// NewEventList creates an empty list.
func NewEventList() *EventList {
	return &EventList{events: make([]Event, 0, 128)}
}

// GetEventCount returns the number of events.
func (l *EventList) GetEventCount() int32 {
	return int32(len(l.events))
}

// GetEvent copies the event at index into e.
func (l *EventList) GetEvent(index int32, e *Event) error {
	if index < 0 || int(index) >= len(l.events) {
		return ResultInvalidArg
	}
	*e = l.events[index]
	return nil
}

// AddEvent appends an event.
func (l *EventList) AddEvent(e Event) error {
	l.events = append(l.events, e)
	return nil
}

// Clear empties the list, keeping its storage.
func (l *EventList) Clear() {
	l.events = l.events[:0]
}

// Events returns the events without copying.
func (l *EventList) Events() []Event {
	return l.events
}
