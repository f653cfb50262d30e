package bus

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// MaxBuses bounds the buses of one media type and direction.
const MaxBuses = 16

// Bus is one negotiated bus.
type Bus struct {
	Info        vst3.BusInfo
	Arrangement vst3.SpeakerArrangement
	Active      bool
}

// Buses is a fixed-capacity list of buses.
type Buses struct {
	items [MaxBuses]Bus
	n     int
}

// Append adds b, failing once MaxBuses buses are held.
func (bs *Buses) Append(b Bus) error {
	if bs.n == MaxBuses {
		return fmt.Errorf("bus capacity %d exceeded", MaxBuses)
	}
	bs.items[bs.n] = b
	bs.n++
	return nil
}

// Len returns the number of buses.
func (bs *Buses) Len() int { return bs.n }

// At returns bus i.
func (bs *Buses) At(i int) Bus { return bs.items[i] }

// Slice returns the buses without copying.
func (bs *Buses) Slice() []Bus { return bs.items[:bs.n] }

// ChannelCounts returns the channel count of every bus.
func (bs *Buses) ChannelCounts() []int32 {
	out := make([]int32, bs.n)
	for i := range out {
		out[i] = bs.items[i].Info.ChannelCount
	}
	return out
}

// Arrangements returns the speaker arrangement of every bus.
func (bs *Buses) Arrangements() []vst3.SpeakerArrangement {
	out := make([]vst3.SpeakerArrangement, bs.n)
	for i := range out {
		out[i] = bs.items[i].Arrangement
	}
	return out
}

// Layout is the negotiated bus layout of a plugin.
type Layout struct {
	AudioInputs  Buses
	AudioOutputs Buses
	EventInputs  Buses
	EventOutputs Buses
}

// IOConfig is the bus summary exposed to consumers.
type IOConfig struct {
	AudioInputs  []int32
	AudioOutputs []int32
	EventInputs  int
	EventOutputs int
}

// IOConfig returns per-bus channel counts and event bus counts.
func (l *Layout) IOConfig() IOConfig {
	return IOConfig{
		AudioInputs:  l.AudioInputs.ChannelCounts(),
		AudioOutputs: l.AudioOutputs.ChannelCounts(),
		EventInputs:  l.EventInputs.Len(),
		EventOutputs: l.EventOutputs.Len(),
	}
}

// Negotiate activates every bus the component declares, records the speaker
// arrangements of audio buses and submits them to the processor.
//
// Failures do not stop negotiation. The returned layout holds every bus that
// could be recorded and the error combines all failures.
func Negotiate(comp vst3.IComponent, proc vst3.IAudioProcessor) (Layout, error) {
	var l Layout
	var errs error

	kinds := []struct {
		media vst3.MediaType
		dir   vst3.BusDirection
		buses *Buses
	}{
		{vst3.MediaTypeAudio, vst3.BusDirectionInput, &l.AudioInputs},
		{vst3.MediaTypeAudio, vst3.BusDirectionOutput, &l.AudioOutputs},
		{vst3.MediaTypeEvent, vst3.BusDirectionInput, &l.EventInputs},
		{vst3.MediaTypeEvent, vst3.BusDirectionOutput, &l.EventOutputs},
	}

	for _, k := range kinds {
		errs = multierr.Append(errs, collect(comp, proc, k.media, k.dir, k.buses, true))
	}

	ins, outs := l.AudioInputs.Arrangements(), l.AudioOutputs.Arrangements()
	if err := proc.SetBusArrangements(ins, outs); err != nil {
		errs = multierr.Append(errs, errors.New(errors.PhaseBus, errors.KindArrangementRejected).
			Cause(err).
			Detail("inputs %v outputs %v", ins, outs).
			Build())
		refreshArrangements(proc, vst3.BusDirectionInput, &l.AudioInputs)
		refreshArrangements(proc, vst3.BusDirectionOutput, &l.AudioOutputs)
	}

	return l, errs
}

// Query re-reads the bus layout without activating anything.
func Query(comp vst3.IComponent, proc vst3.IAudioProcessor) (Layout, error) {
	var l Layout
	errs := multierr.Combine(
		collect(comp, proc, vst3.MediaTypeAudio, vst3.BusDirectionInput, &l.AudioInputs, false),
		collect(comp, proc, vst3.MediaTypeAudio, vst3.BusDirectionOutput, &l.AudioOutputs, false),
		collect(comp, proc, vst3.MediaTypeEvent, vst3.BusDirectionInput, &l.EventInputs, false),
		collect(comp, proc, vst3.MediaTypeEvent, vst3.BusDirectionOutput, &l.EventOutputs, false),
	)
	return l, errs
}

func collect(comp vst3.IComponent, proc vst3.IAudioProcessor, media vst3.MediaType, dir vst3.BusDirection, buses *Buses, activate bool) error {
	var errs error

	n := comp.GetBusCount(media, dir)
	if n > MaxBuses {
		errs = multierr.Append(errs, errors.New(errors.PhaseBus, errors.KindTooManyBuses).
			Value(n).
			Detail("%s %s buses: %d declared, keeping %d", media, dir, n, MaxBuses).
			Build())
		n = MaxBuses
	}

	for i := int32(0); i < n; i++ {
		info, err := comp.GetBusInfo(media, dir, i)
		if err != nil {
			errs = multierr.Append(errs, errors.Bus(errors.KindBusQueryFailed,
				fmt.Sprintf("%s %s bus %d", media, dir, i), err))
			// An inactive zero-channel slot keeps later buses at the plugin's indices
			buses.Append(Bus{Info: vst3.BusInfo{MediaType: media, Direction: dir}})
			continue
		}

		b := Bus{Info: info, Active: info.Flags&vst3.BusDefaultActive != 0}
		if activate {
			if err := comp.ActivateBus(media, dir, i, true); err != nil {
				errs = multierr.Append(errs, errors.Bus(errors.KindActivationFailed,
					fmt.Sprintf("%s %s bus %d", media, dir, i), err))
			} else {
				b.Active = true
			}
		}

		if media == vst3.MediaTypeAudio {
			b.Arrangement = arrangement(proc, dir, i, info.ChannelCount)
		}

		// n is capped above so Append cannot overflow
		buses.Append(b)
	}
	return errs
}

func arrangement(proc vst3.IAudioProcessor, dir vst3.BusDirection, index, channels int32) vst3.SpeakerArrangement {
	arr, err := proc.GetBusArrangement(dir, index)
	if err != nil {
		return ArrangementFor(channels)
	}
	return arr
}

func refreshArrangements(proc vst3.IAudioProcessor, dir vst3.BusDirection, buses *Buses) {
	for i := range buses.Slice() {
		b := &buses.items[i]
		b.Arrangement = arrangement(proc, dir, int32(i), b.Info.ChannelCount)
	}
}
