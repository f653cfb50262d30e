package inproc

import (
	"fmt"
	"math"

	"github.com/justyntemme/vst3host/pkg/bus"
	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/process"
)

// GainName is the registered name of the built-in gain plugin.
const GainName = "gain"

// Gain parameter ids
const (
	ParamGain = iota
	ParamBypass
	ParamMode
	ParamLevel
)

// Gain modes
const (
	ModeNormal = iota
	ModeInvert
	ModeMono
)

const minLevelDB = -60.0

func init() {
	Register(GainName, &GainPlugin{})
}

// GainPlugin is a stereo gain with bypass, a polarity/mono mode and an
// output meter.
type GainPlugin struct{}

// GetInfo implements Plugin.
func (g *GainPlugin) GetInfo() Info {
	return Info{
		ID:      "com.vst3host.gain",
		Name:    "Gain",
		Version: "1.0.0",
		Vendor:  "vst3host",
	}
}

// CreateProcessor implements Plugin.
func (g *GainPlugin) CreateProcessor() Processor {
	return NewGainProcessor()
}

// GainProcessor handles the audio processing
type GainProcessor struct {
	params *param.Registry
	buses  *bus.Configuration

	sampleRate float64

	// last level sent to the host, valid once reported is set
	lastLevel float64
	reported  bool
}

// NewGainProcessor creates the processor with its parameters and buses.
func NewGainProcessor() *GainProcessor {
	p := &GainProcessor{
		params: param.NewRegistry(),
		buses: bus.NewBuilder().
			WithAudioInput("Audio Input", 2).
			WithAudioOutput("Audio Output", 2).
			WithEventInput("Event Input").
			MustBuild(),
	}

	// Linear gain 0..2, unity at the normalized midpoint
	gain := param.New(ParamGain, "Gain", 0, 2, 0.5, param.CanAutomate)
	gain.SetFormatter(func(plain float64) string {
		if plain <= 0 {
			return "-inf dB"
		}
		return fmt.Sprintf("%.1f dB", 20*math.Log10(plain))
	})

	bypass := param.New(ParamBypass, "Bypass", 0, 1, 0, param.CanAutomate|param.Bypass)
	bypass.StepCount = 1
	bypass.SetFormatter(func(plain float64) string {
		if plain >= 0.5 {
			return "On"
		}
		return "Off"
	})

	mode := param.New(ParamMode, "Mode", 0, 2, 0, param.Hidden|param.WrapAround)
	mode.StepCount = 2

	level := param.New(ParamLevel, "Output Level", minLevelDB, 0, 0, param.ReadOnly)
	level.Unit = "dB"

	p.params.Add(gain, bypass, mode, level)
	return p
}

// Initialize implements Processor.
func (p *GainProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	p.sampleRate = sampleRate
	return nil
}

// ProcessAudio implements Processor.
func (p *GainProcessor) ProcessAudio(ctx *process.Context) {
	if ctx.Param(ParamBypass) >= 0.5 {
		ctx.PassThrough()
		p.report(ctx)
		return
	}

	gain := float32(ctx.Param(ParamGain) * 2)
	mode := int(math.Round(ctx.Param(ParamMode) * 2))
	if mode == ModeInvert {
		gain = -gain
	}

	ctx.ProcessChannels(func(_ int, input, output []float32) {
		for i := range output {
			output[i] = input[i] * gain
		}
	})

	if mode == ModeMono && len(ctx.Output) >= 2 {
		l, r := ctx.Output[0], ctx.Output[1]
		n := min(len(l), len(r), ctx.NumSamples())
		for i := 0; i < n; i++ {
			m := (l[i] + r[i]) * 0.5
			l[i], r[i] = m, m
		}
	}

	p.report(ctx)
}

// report publishes the block peak as the normalized output level on the
// first block and whenever it differs from the last one reported.
func (p *GainProcessor) report(ctx *process.Context) {
	var peak float32
	n := ctx.NumSamples()
	for _, ch := range ctx.Output {
		for _, s := range ch[:min(n, len(ch))] {
			if s < 0 {
				s = -s
			}
			peak = max(peak, s)
		}
	}

	level := p.params.Get(ParamLevel)
	db := minLevelDB
	if peak > 0 {
		db = max(20*math.Log10(float64(peak)), minLevelDB)
	}
	v := level.Normalize(db)
	level.SetValue(v)
	if p.reported && v == p.lastLevel {
		return
	}
	if ctx.ReportParam(ParamLevel, v) {
		p.lastLevel, p.reported = v, true
	}
}

// GetParameters implements Processor.
func (p *GainProcessor) GetParameters() *param.Registry {
	return p.params
}

// GetBuses implements Processor.
func (p *GainProcessor) GetBuses() *bus.Configuration {
	return p.buses
}

// SetActive implements Processor. Activation re-sends the level on the next
// block.
func (p *GainProcessor) SetActive(active bool) error {
	if active {
		p.reported = false
	}
	return nil
}

// GetLatencySamples implements Processor.
func (p *GainProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples implements Processor.
func (p *GainProcessor) GetTailSamples() int32 {
	return 0
}
