package main

import (
	"math"
	"time"

	"github.com/justyntemme/vst3host/pkg/debug"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/host"
	"github.com/justyntemme/vst3host/pkg/process"
)

const toneHz = 440.0

// session renders blocks through a plugin with a sine test tone on every
// input channel.
type session struct {
	plugin    *host.Plugin
	details   process.Details
	blockSize int
	phase     float64

	in, out  [][][]float32
	profiler *debug.BlockProfiler
	block    int
}

type blockResult struct {
	analysis debug.AnalysisResult
	events   []event.PluginEvent
}

func newSession(p *host.Plugin, sampleRate float64, blockSize int) *session {
	d := process.DefaultDetails()
	if sampleRate > 0 {
		d.SampleRate = sampleRate
	}
	d.BlockSize = blockSize
	d.PlayingState = process.Playing

	s := &session{
		plugin:    p,
		details:   d,
		blockSize: blockSize,
		profiler:  debug.NewBlockProfiler(d.SampleRate),
	}
	s.allocate()
	return s
}

func (s *session) allocate() {
	io := s.plugin.IOConfig()
	s.in = buffers(io.AudioInputs, s.blockSize)
	s.out = buffers(io.AudioOutputs, s.blockSize)
}

func buffers(channels []int32, n int) [][][]float32 {
	out := make([][][]float32, len(channels))
	for b, c := range channels {
		out[b] = make([][]float32, c)
		for ch := range out[b] {
			out[b][ch] = make([]float32, n)
		}
	}
	return out
}

// render processes one block and returns the main output analysis and the
// plugin events it produced.
func (s *session) render(events []event.HostEvent) (blockResult, error) {
	s.fillInput()

	s.details.Nanos = time.Now().UnixNano()
	stop := s.profiler.Start(s.blockSize)
	err := s.plugin.Process(s.details, s.in, s.out, events)
	stop()

	// Quarter notes advanced by one block
	s.details.PlayerTime += float64(s.blockSize) / s.details.SampleRate * s.details.Tempo / 60
	s.block++

	if err != nil {
		return blockResult{}, err
	}

	s.plugin.SyncController()
	res := blockResult{events: s.plugin.Events()}
	if len(s.out) > 0 {
		res.analysis = debug.AnalyzeBus(s.out[0])
	}

	for _, e := range res.events {
		if _, ok := e.(event.IOChanged); ok {
			wasProcessing := s.plugin.Lifecycle() == host.StateProcessing
			if wasProcessing {
				s.plugin.SetProcessing(false)
			}
			if _, err := s.plugin.RefreshIOConfig(); err == nil {
				s.allocate()
			}
			if wasProcessing {
				s.plugin.SetProcessing(true)
			}
			break
		}
	}
	return res, nil
}

func (s *session) fillInput() {
	step := 2 * math.Pi * toneHz / s.details.SampleRate
	for _, bus := range s.in {
		phase := s.phase
		for i := 0; i < s.blockSize; i++ {
			v := float32(0.5 * math.Sin(phase))
			for _, ch := range bus {
				ch[i] = v
			}
			phase += step
		}
	}
	s.phase = math.Mod(s.phase+step*float64(s.blockSize), 2*math.Pi)
}
