package event

import (
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// MIDI status nibbles
const (
	statusNoteOff = 0x80
	statusNoteOn  = 0x90
)

// EventBus is the event input bus MIDI is delivered to.
const EventBus = 0

// IndexLookup resolves a parameter id to its declared index, -1 if unknown.
type IndexLookup interface {
	Lookup(id uint32) int32
}

// ToWire converts a MIDI host event to a note event. Messages other than
// note-on and note-off are reported as not convertible.
func ToWire(e HostEvent) (vst3.Event, bool) {
	m, ok := e.Payload.(Midi)
	if !ok {
		return vst3.Event{}, false
	}

	evt := vst3.Event{
		BusIndex:     EventBus,
		SampleOffset: e.BlockOffset,
		PPQPosition:  e.PPQTime,
	}

	switch m.Data[0] & 0xF0 {
	case statusNoteOn:
		evt.Type = vst3.EventTypeNoteOn
		evt.NoteOn = vst3.NoteOnEvent{
			Channel:  0,
			Pitch:    int16(m.Data[1]),
			Tuning:   m.Detune,
			Velocity: float32(m.Data[2]),
			Length:   0,
			NoteID:   -1,
		}
	case statusNoteOff:
		evt.Type = vst3.EventTypeNoteOff
		evt.NoteOff = vst3.NoteOffEvent{
			Channel:  0,
			Pitch:    int16(m.Data[1]),
			Tuning:   m.Detune,
			Velocity: float32(m.Data[2]),
			NoteID:   -1,
		}
	default:
		return vst3.Event{}, false
	}
	return evt, true
}

// Stats counts what Translate did with a batch of host events.
type Stats struct {
	Notes   int
	Params  int
	Skipped int
	Dropped int
}

// Translate partitions events into note events appended to in and parameter
// automation written to changes. A nil in means the plugin has no event
// input and MIDI is skipped. Each parameter queue is cleared before its point
// is written, so only the last update per id in a batch takes effect.
// Updates that do not fit in changes are counted as dropped.
func Translate(events []HostEvent, in *vst3.EventList, changes *vst3.ParameterChanges) Stats {
	var st Stats

	for i := range events {
		switch p := events[i].Payload.(type) {
		case Midi:
			if in == nil {
				st.Skipped++
				continue
			}
			evt, ok := ToWire(events[i])
			if !ok {
				st.Skipped++
				continue
			}
			in.AddEvent(evt)
			st.Notes++
		case ParameterUpdate:
			q, _, err := changes.AddParameterData(p.ID)
			if err != nil {
				st.Dropped++
				continue
			}
			q.Clear()
			if _, err := q.AddPoint(events[i].BlockOffset, p.Current); err != nil {
				st.Dropped++
				continue
			}
			st.Params++
		default:
			st.Skipped++
		}
	}
	return st
}

// OutputUpdates reports the last point of every queue the processor filled
// as a ParameterUpdate and returns how many were emitted.
func OutputUpdates(changes *vst3.ParameterChanges, indices IndexLookup, emit func(PluginEvent)) int {
	n := 0
	for i := int32(0); i < changes.GetParameterCount(); i++ {
		q := changes.GetParameterData(i)
		if q == nil {
			continue
		}
		_, value, ok := q.Last()
		if !ok {
			continue
		}
		id := q.GetParameterID()
		emit(ParameterUpdate{
			ID:      id,
			Index:   indices.Lookup(id),
			Current: value,
			Initial: value,
		})
		n++
	}
	return n
}

// Restart maps IComponentHandler.RestartComponent flags to plugin events.
// latency is only called when the latency flag is set.
func Restart(flags vst3.RestartFlags, latency func() uint32) []PluginEvent {
	const display = vst3.RestartParamValuesChanged | vst3.RestartParamTitlesChanged

	var out []PluginEvent
	if flags&vst3.RestartLatencyChanged != 0 {
		out = append(out, LatencyChanged{Samples: latency()})
	}
	if flags&display != 0 {
		out = append(out, DisplayUpdate{})
	}
	if flags&^(vst3.RestartLatencyChanged|display) != 0 || flags == 0 {
		out = append(out, IOChanged{})
	}
	return out
}
