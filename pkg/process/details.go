// Package process describes the transport context of a processing block and
// derives the plugin-facing process context from it.
package process

import (
	"fmt"
	"math"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// PlayingState of the host transport.
type PlayingState int32

const (
	Stopped PlayingState = iota
	Playing
	Recording
	OfflineRendering
)

func (s PlayingState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	case OfflineRendering:
		return "offline"
	default:
		return fmt.Sprintf("PlayingState(%d)", int32(s))
	}
}

// IsPlaying reports whether the transport is running.
func (s PlayingState) IsPlaying() bool {
	return s != Stopped
}

// Details is the host's view of one processing block.
type Details struct {
	SampleRate float64
	BlockSize  int

	// Tempo in beats per minute.
	Tempo float64
	// PlayerTime is the transport position in quarter notes.
	PlayerTime float64

	TimeSigNumerator   int32
	TimeSigDenominator int32

	CycleEnabled bool
	CycleStart   float64
	CycleEnd     float64

	PlayingState PlayingState

	// BarStartPos is the quarter-note position of the current bar start.
	BarStartPos float64

	// Nanos is the wall-clock time of the block in nanoseconds.
	Nanos int64
}

// DefaultDetails returns a stopped transport at 44.1 kHz, 120 BPM, 4/4.
func DefaultDetails() Details {
	return Details{
		SampleRate:         44100,
		BlockSize:          512,
		Tempo:              120,
		TimeSigNumerator:   4,
		TimeSigDenominator: 4,
	}
}

// ProjectTimeSamples converts the quarter-note player time to samples as
// player_time / (tempo / 60) * sample_rate. A non-finite result (zero tempo)
// yields 0.
func (d *Details) ProjectTimeSamples() int64 {
	samples := d.PlayerTime / (d.Tempo / 60.0) * d.SampleRate
	if math.IsNaN(samples) || math.IsInf(samples, 0) {
		return 0
	}
	return int64(samples)
}

// Fill writes the transport fields and state bits into ctx and returns the
// process mode the block must run in.
//
// Bar position is always flagged valid even though the bar start is only as
// accurate as BarStartPos.
func (d *Details) Fill(ctx *vst3.ProcessContext) vst3.ProcessMode {
	var state uint32

	ctx.SampleRate = d.SampleRate

	ctx.Tempo = d.Tempo
	state |= vst3.StateTempoValid

	ctx.TimeSigNumerator = d.TimeSigNumerator
	ctx.TimeSigDenominator = d.TimeSigDenominator
	state |= vst3.StateTimeSigValid

	ctx.ProjectTimeMusic = d.PlayerTime
	ctx.ProjectTimeSamples = d.ProjectTimeSamples()

	ctx.BarPositionMusic = d.BarStartPos
	state |= vst3.StateBarPositionValid

	ctx.CycleStartMusic = d.CycleStart
	ctx.CycleEndMusic = d.CycleEnd
	state |= vst3.StateCycleValid

	ctx.SystemTime = d.Nanos
	state |= vst3.StateSystemTimeValid

	ctx.FrameRate = vst3.FrameRate{FramesPerSecond: 60}

	if d.CycleEnabled {
		state |= vst3.StateCycleActive
	}
	if d.PlayingState.IsPlaying() {
		state |= vst3.StatePlaying
	}
	if d.PlayingState == Recording {
		state |= vst3.StateRecording
	}

	ctx.State = state

	if d.PlayingState == OfflineRendering {
		return vst3.ProcessModeOffline
	}
	return vst3.ProcessModeRealtime
}
