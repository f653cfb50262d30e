package event

import (
	"testing"

	"github.com/justyntemme/vst3host/pkg/vst3"
	"gitlab.com/gomidi/midi/v2"
)

type indexMap map[uint32]int32

func (m indexMap) Lookup(id uint32) int32 {
	if i, ok := m[id]; ok {
		return i
	}
	return -1
}

func TestToWireNoteOn(t *testing.T) {
	e := HostEvent{Payload: Midi{Data: [3]byte{0x90, 60, 100}, Detune: 0.25}, BlockOffset: 12, PPQTime: 1.5}

	evt, ok := ToWire(e)
	if !ok {
		t.Fatal("Expected note-on to convert")
	}
	if evt.Type != vst3.EventTypeNoteOn {
		t.Errorf("Expected note-on type, got %d", evt.Type)
	}
	if evt.NoteOn.Pitch != 60 || evt.NoteOn.Velocity != 100 {
		t.Errorf("Expected pitch 60 velocity 100, got %d %f", evt.NoteOn.Pitch, evt.NoteOn.Velocity)
	}
	if evt.NoteOn.Channel != 0 || evt.NoteOn.NoteID != -1 || evt.NoteOn.Length != 0 {
		t.Errorf("Expected channel 0, id -1, length 0, got %d %d %d", evt.NoteOn.Channel, evt.NoteOn.NoteID, evt.NoteOn.Length)
	}
	if evt.NoteOn.Tuning != 0.25 {
		t.Errorf("Expected detune 0.25 to pass through, got %f", evt.NoteOn.Tuning)
	}
	if evt.SampleOffset != 12 || evt.PPQPosition != 1.5 || evt.BusIndex != 0 {
		t.Errorf("Expected offset 12 ppq 1.5 bus 0, got %d %f %d", evt.SampleOffset, evt.PPQPosition, evt.BusIndex)
	}
}

func TestToWireNoteOff(t *testing.T) {
	evt, ok := ToWire(HostEvent{Payload: Midi{Data: [3]byte{0x80, 60, 100}}})
	if !ok {
		t.Fatal("Expected note-off to convert")
	}
	if evt.Type != vst3.EventTypeNoteOff {
		t.Errorf("Expected note-off type, got %d", evt.Type)
	}
	if evt.NoteOff.Pitch != 60 || evt.NoteOff.Velocity != 100 || evt.NoteOff.NoteID != -1 {
		t.Errorf("Unexpected note-off payload %+v", evt.NoteOff)
	}
}

func TestToWireChannelIgnored(t *testing.T) {
	evt, ok := ToWire(NewMidi(midi.NoteOn(5, 64, 90), 0, 0))
	if !ok {
		t.Fatal("Expected note-on on channel 5 to convert")
	}
	if evt.NoteOn.Channel != 0 {
		t.Errorf("Expected channel fixed at 0, got %d", evt.NoteOn.Channel)
	}
}

func TestToWireSkipsOtherMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
	}{
		{"control change", midi.ControlChange(0, 7, 100)},
		{"program change", midi.ProgramChange(0, 3)},
		{"pitch bend", midi.Pitchbend(0, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ToWire(NewMidi(tt.msg, 0, 0)); ok {
				t.Errorf("Expected %s to be skipped", tt.msg)
			}
		})
	}

	if _, ok := ToWire(SetParameter(1, 0.5, 0)); ok {
		t.Error("Expected parameter update not to convert to a note event")
	}
}

func TestTranslate(t *testing.T) {
	in := vst3.NewEventList()
	changes := vst3.NewParameterChanges(0)

	events := []HostEvent{
		NoteOn(60, 100, 0),
		SetParameter(1, 0.2, 4),
		NewMidi(midi.ControlChange(0, 1, 1), 8, 0),
		SetParameter(1, 0.7, 16),
		SetParameter(2, 0.3, 32),
		NoteOff(60, 64),
	}

	st := Translate(events, in, changes)

	if st.Notes != 2 || st.Params != 3 || st.Skipped != 1 || st.Dropped != 0 {
		t.Errorf("Unexpected stats %+v", st)
	}
	if in.GetEventCount() != 2 {
		t.Fatalf("Expected 2 note events, got %d", in.GetEventCount())
	}
	if changes.GetParameterCount() != 2 {
		t.Fatalf("Expected 2 parameter queues, got %d", changes.GetParameterCount())
	}

	q := changes.GetParameterData(0)
	if q.GetParameterID() != 1 {
		t.Fatalf("Expected queue for id 1, got %d", q.GetParameterID())
	}
	if q.GetPointCount() != 1 {
		t.Errorf("Expected a single point for id 1, got %d", q.GetPointCount())
	}
	offset, value, _ := q.GetPoint(0)
	if offset != 16 || value != 0.7 {
		t.Errorf("Expected last update (16, 0.7), got (%d, %f)", offset, value)
	}
}

func TestTranslateWithoutEventInput(t *testing.T) {
	changes := vst3.NewParameterChanges(0)
	st := Translate([]HostEvent{NoteOn(60, 100, 0), SetParameter(3, 1, 0)}, nil, changes)

	if st.Notes != 0 || st.Skipped != 1 || st.Params != 1 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestTranslateCapacity(t *testing.T) {
	changes := vst3.NewParameterChanges(1)
	st := Translate([]HostEvent{SetParameter(1, 0.1, 0), SetParameter(2, 0.2, 0)}, nil, changes)

	if st.Params != 1 || st.Dropped != 1 {
		t.Errorf("Expected one written and one dropped, got %+v", st)
	}
}

func TestOutputUpdates(t *testing.T) {
	changes := vst3.NewParameterChanges(0)
	q, _, _ := changes.AddParameterData(5)
	q.AddPoint(0, 0.1)
	q.AddPoint(10, 0.9)
	changes.AddParameterData(6) // empty queue is ignored
	q, _, _ = changes.AddParameterData(99)
	q.AddPoint(3, 0.5)

	var got []PluginEvent
	n := OutputUpdates(changes, indexMap{5: 2}, func(e PluginEvent) { got = append(got, e) })

	if n != 2 || len(got) != 2 {
		t.Fatalf("Expected 2 updates, got %d", n)
	}
	u := got[0].(ParameterUpdate)
	if u.ID != 5 || u.Index != 2 || u.Current != 0.9 || u.EndEdit {
		t.Errorf("Unexpected update %v", u)
	}
	if got[1].(ParameterUpdate).Index != -1 {
		t.Error("Expected index -1 for an unknown id")
	}
}

func TestRestart(t *testing.T) {
	latency := func() uint32 { return 256 }

	tests := []struct {
		name  string
		flags vst3.RestartFlags
		want  []PluginEvent
	}{
		{"latency", vst3.RestartLatencyChanged, []PluginEvent{LatencyChanged{Samples: 256}}},
		{"values", vst3.RestartParamValuesChanged, []PluginEvent{DisplayUpdate{}}},
		{"titles", vst3.RestartParamTitlesChanged, []PluginEvent{DisplayUpdate{}}},
		{"io", vst3.RestartIoChanged, []PluginEvent{IOChanged{}}},
		{"none", 0, []PluginEvent{IOChanged{}}},
		{"latency and io", vst3.RestartLatencyChanged | vst3.RestartIoChanged,
			[]PluginEvent{LatencyChanged{Samples: 256}, IOChanged{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Restart(tt.flags, latency)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Event %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}
