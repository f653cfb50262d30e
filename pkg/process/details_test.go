package process

import (
	"math"
	"testing"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

func TestProjectTimeSamples(t *testing.T) {
	tests := []struct {
		name       string
		tempo      float64
		playerTime float64
		sampleRate float64
		want       int64
	}{
		{"two beats at 120", 120, 2.0, 48000, 48000},
		{"start", 120, 0, 44100, 0},
		{"one beat at 60", 60, 1.0, 44100, 44100},
		{"truncates", 120, 1.0, 44101, 22050},
		{"zero tempo", 0, 2.0, 48000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Details{Tempo: tt.tempo, PlayerTime: tt.playerTime, SampleRate: tt.sampleRate}
			if got := d.ProjectTimeSamples(); got != tt.want {
				t.Errorf("Expected %d samples, got %d", tt.want, got)
			}
		})
	}
}

func TestFillAlwaysValidBits(t *testing.T) {
	d := DefaultDetails()
	var ctx vst3.ProcessContext

	mode := d.Fill(&ctx)

	always := vst3.StateTempoValid | vst3.StateTimeSigValid | vst3.StateBarPositionValid |
		vst3.StateCycleValid | vst3.StateSystemTimeValid
	if ctx.State&always != always {
		t.Errorf("Expected valid bits %#x to be set, got %#x", always, ctx.State)
	}
	if ctx.State&(vst3.StatePlaying|vst3.StateRecording|vst3.StateCycleActive) != 0 {
		t.Errorf("Expected stopped transport without play bits, got %#x", ctx.State)
	}
	if mode != vst3.ProcessModeRealtime {
		t.Errorf("Expected realtime mode, got %v", mode)
	}
	if ctx.FrameRate.FramesPerSecond != 60 {
		t.Errorf("Expected 60 fps, got %d", ctx.FrameRate.FramesPerSecond)
	}
}

func TestFillPlayingStates(t *testing.T) {
	tests := []struct {
		state     PlayingState
		playing   bool
		recording bool
		mode      vst3.ProcessMode
	}{
		{Stopped, false, false, vst3.ProcessModeRealtime},
		{Playing, true, false, vst3.ProcessModeRealtime},
		{Recording, true, true, vst3.ProcessModeRealtime},
		{OfflineRendering, true, false, vst3.ProcessModeOffline},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			d := DefaultDetails()
			d.PlayingState = tt.state
			var ctx vst3.ProcessContext

			mode := d.Fill(&ctx)

			if got := ctx.State&vst3.StatePlaying != 0; got != tt.playing {
				t.Errorf("Expected playing=%v, got %v", tt.playing, got)
			}
			if got := ctx.State&vst3.StateRecording != 0; got != tt.recording {
				t.Errorf("Expected recording=%v, got %v", tt.recording, got)
			}
			if mode != tt.mode {
				t.Errorf("Expected mode %v, got %v", tt.mode, mode)
			}
		})
	}
}

func TestFillTransportFields(t *testing.T) {
	d := Details{
		SampleRate:         48000,
		Tempo:              120,
		PlayerTime:         2.0,
		TimeSigNumerator:   3,
		TimeSigDenominator: 8,
		CycleEnabled:       true,
		CycleStart:         4,
		CycleEnd:           8,
		BarStartPos:        1.5,
		Nanos:              123456789,
	}
	var ctx vst3.ProcessContext
	d.Fill(&ctx)

	if ctx.ProjectTimeSamples != 48000 {
		t.Errorf("Expected 48000 project samples, got %d", ctx.ProjectTimeSamples)
	}
	if ctx.ProjectTimeMusic != 2.0 {
		t.Errorf("Expected project music 2.0, got %f", ctx.ProjectTimeMusic)
	}
	if ctx.TimeSigNumerator != 3 || ctx.TimeSigDenominator != 8 {
		t.Errorf("Expected 3/8, got %d/%d", ctx.TimeSigNumerator, ctx.TimeSigDenominator)
	}
	if ctx.State&vst3.StateCycleActive == 0 {
		t.Error("Expected cycle active bit")
	}
	if ctx.CycleStartMusic != 4 || ctx.CycleEndMusic != 8 {
		t.Errorf("Expected cycle 4..8, got %f..%f", ctx.CycleStartMusic, ctx.CycleEndMusic)
	}
	if ctx.BarPositionMusic != 1.5 {
		t.Errorf("Expected bar position 1.5, got %f", ctx.BarPositionMusic)
	}
	if ctx.SystemTime != 123456789 {
		t.Errorf("Expected system time 123456789, got %d", ctx.SystemTime)
	}
	if ctx.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %f", ctx.SampleRate)
	}
}

func TestFillDoesNotLeakPreviousState(t *testing.T) {
	var ctx vst3.ProcessContext

	d := DefaultDetails()
	d.PlayingState = Recording
	d.CycleEnabled = true
	d.Fill(&ctx)

	d.PlayingState = Stopped
	d.CycleEnabled = false
	d.Fill(&ctx)

	if ctx.State&(vst3.StatePlaying|vst3.StateRecording|vst3.StateCycleActive) != 0 {
		t.Errorf("Expected play bits cleared, got %#x", ctx.State)
	}
}

func TestProjectTimeSamplesNaN(t *testing.T) {
	d := Details{Tempo: math.NaN(), PlayerTime: 1, SampleRate: 44100}
	if got := d.ProjectTimeSamples(); got != 0 {
		t.Errorf("Expected 0 for NaN tempo, got %d", got)
	}
}
