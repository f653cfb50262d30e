// Package event defines the events exchanged between the host and a plugin
// and translates them to and from the plugin's wire representation.
package event

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// HostPayload is the tagged payload of a HostEvent: Midi or ParameterUpdate.
type HostPayload interface {
	hostPayload()
}

// HostEvent is an event issued by the host for the next block.
type HostEvent struct {
	Payload HostPayload

	// BlockOffset is the sample offset inside the block.
	BlockOffset int32
	// PPQTime is the musical position in quarter notes.
	PPQTime float64
}

func (e HostEvent) String() string {
	return fmt.Sprintf("%v@%d", e.Payload, e.BlockOffset)
}

// Midi is a short MIDI message.
type Midi struct {
	Data   [3]byte
	Detune float32
}

func (Midi) hostPayload() {}

func (m Midi) String() string {
	return midi.Message(m.Data[:]).String()
}

// Status returns the status byte.
func (m Midi) Status() byte { return m.Data[0] }

// NewMidi creates a host event from a MIDI message. Only the first three
// bytes of msg are kept.
func NewMidi(msg midi.Message, offset int32, ppq float64) HostEvent {
	var m Midi
	copy(m.Data[:], msg)
	return HostEvent{Payload: m, BlockOffset: offset, PPQTime: ppq}
}

// NoteOn creates a note-on host event.
func NoteOn(key, velocity uint8, offset int32) HostEvent {
	return NewMidi(midi.NoteOn(0, key, velocity), offset, 0)
}

// NoteOff creates a note-off host event.
func NoteOff(key uint8, offset int32) HostEvent {
	return NewMidi(midi.NoteOff(0, key), offset, 0)
}

// ParameterUpdate is a parameter change. It travels in both directions: as a
// host event it automates the processor, as a plugin event it reports an edit
// or a processor-side change.
type ParameterUpdate struct {
	ID uint32
	// Index is the declared parameter index, -1 if the id is unknown.
	Index   int32
	Current float64
	Initial float64
	EndEdit bool
}

func (ParameterUpdate) hostPayload() {}
func (ParameterUpdate) pluginEvent() {}

func (p ParameterUpdate) String() string {
	return fmt.Sprintf("ParameterUpdate{id:%d, index:%d, current:%g, initial:%g, end:%v}",
		p.ID, p.Index, p.Current, p.Initial, p.EndEdit)
}

// SetParameter creates a host event automating id at offset.
func SetParameter(id uint32, value float64, offset int32) HostEvent {
	return HostEvent{
		Payload:     ParameterUpdate{ID: id, Index: -1, Current: value, Initial: value},
		BlockOffset: offset,
	}
}

// PluginEvent is a one-way notification from the plugin to the host:
// LatencyChanged, WindowResized, ParameterUpdate, DisplayUpdate or IOChanged.
type PluginEvent interface {
	pluginEvent()
	String() string
}

// LatencyChanged reports the processor's new latency.
type LatencyChanged struct {
	Samples uint32
}

func (LatencyChanged) pluginEvent() {}

func (e LatencyChanged) String() string {
	return fmt.Sprintf("LatencyChanged{samples:%d}", e.Samples)
}

// WindowResized reports the editor's new size.
type WindowResized struct {
	Width  int32
	Height int32
}

func (WindowResized) pluginEvent() {}

func (e WindowResized) String() string {
	return fmt.Sprintf("WindowResized{%dx%d}", e.Width, e.Height)
}

// DisplayUpdate hints that parameter values or titles should be re-read.
type DisplayUpdate struct{}

func (DisplayUpdate) pluginEvent() {}

func (DisplayUpdate) String() string { return "DisplayUpdate" }

// IOChanged asks the consumer to re-run bus negotiation.
type IOChanged struct{}

func (IOChanged) pluginEvent() {}

func (IOChanged) String() string { return "IOChanged" }
