package main

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/vst3host/pkg/event"
)

// noteSequence hands out the host events of consecutive blocks.
type noteSequence struct {
	blocks [][]event.HostEvent
	pos    int
}

// next returns the events of the next block, nil once exhausted.
func (s *noteSequence) next() []event.HostEvent {
	if s == nil || s.pos >= len(s.blocks) {
		return nil
	}
	evs := s.blocks[s.pos]
	s.pos++
	return evs
}

// chordSequence strikes a C major chord in the first block and releases it
// in the fourth, halfway through the block.
func chordSequence(blockSize int) *noteSequence {
	// gomidi numbers octaves from -1, so octave 5 holds middle C (key 60)
	chord := []uint8{uint8(midi.C(5)), uint8(midi.E(5)), uint8(midi.G(5))}
	release := int32(blockSize / 2)

	var on, off []event.HostEvent
	for i, key := range chord {
		on = append(on, event.NewMidi(midi.NoteOn(0, key, 100), int32(i), 0))
		off = append(off, event.NewMidi(midi.NoteOff(0, key), release, 0))
	}
	return &noteSequence{blocks: [][]event.HostEvent{on, nil, nil, off}}
}
