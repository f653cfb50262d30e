// Package bus negotiates the audio and event buses of a plugin and describes
// a plugin's own bus configuration.
package bus

import (
	"fmt"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Info is one bus as declared by a plugin.
type Info struct {
	vst3.BusInfo
	Arrangement vst3.SpeakerArrangement
	IsActive    bool
}

// Configuration is the bus set a plugin exposes.
type Configuration struct {
	audio  []Info
	events []Info
}

// Builder provides a fluent API for building bus configurations
type Builder struct {
	config *Configuration
}

// NewBuilder creates a new bus configuration builder
func NewBuilder() *Builder {
	return &Builder{config: &Configuration{}}
}

// WithAudioInput adds a main audio input bus
func (b *Builder) WithAudioInput(name string, channels int32) *Builder {
	return b.audio(name, vst3.BusDirectionInput, vst3.BusTypeMain, channels)
}

// WithAudioOutput adds a main audio output bus
func (b *Builder) WithAudioOutput(name string, channels int32) *Builder {
	return b.audio(name, vst3.BusDirectionOutput, vst3.BusTypeMain, channels)
}

// WithSidechain adds an auxiliary stereo input bus, inactive until the host
// activates it
func (b *Builder) WithSidechain(name string) *Builder {
	return b.audio(name, vst3.BusDirectionInput, vst3.BusTypeAux, 2)
}

// WithEventInput adds an event (MIDI) input bus
func (b *Builder) WithEventInput(name string) *Builder {
	return b.event(name, vst3.BusDirectionInput)
}

// WithEventOutput adds an event (MIDI) output bus
func (b *Builder) WithEventOutput(name string) *Builder {
	return b.event(name, vst3.BusDirectionOutput)
}

func (b *Builder) audio(name string, dir vst3.BusDirection, typ vst3.BusType, channels int32) *Builder {
	info := Info{
		BusInfo: vst3.BusInfo{
			MediaType:    vst3.MediaTypeAudio,
			Direction:    dir,
			ChannelCount: channels,
			Name:         name,
			BusType:      typ,
		},
		Arrangement: ArrangementFor(channels),
		IsActive:    typ == vst3.BusTypeMain,
	}
	if info.IsActive {
		info.Flags = vst3.BusDefaultActive
	}
	b.config.audio = append(b.config.audio, info)
	return b
}

func (b *Builder) event(name string, dir vst3.BusDirection) *Builder {
	b.config.events = append(b.config.events, Info{
		BusInfo: vst3.BusInfo{
			MediaType:    vst3.MediaTypeEvent,
			Direction:    dir,
			ChannelCount: 16,
			Name:         name,
			BusType:      vst3.BusTypeMain,
			Flags:        vst3.BusDefaultActive,
		},
		IsActive: true,
	})
	return b
}

// Build validates and returns the configuration
func (b *Builder) Build() (*Configuration, error) {
	for _, bus := range b.config.audio {
		if bus.ChannelCount <= 0 {
			return nil, fmt.Errorf("bus %q: channel count must be positive, got %d", bus.Name, bus.ChannelCount)
		}
	}
	return b.config, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Configuration {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// NewEffectStereo creates a standard stereo effect configuration
func NewEffectStereo() *Configuration {
	return NewBuilder().
		WithAudioInput("Stereo In", 2).
		WithAudioOutput("Stereo Out", 2).
		MustBuild()
}

// ArrangementFor returns the default speaker arrangement for a channel count.
func ArrangementFor(channels int32) vst3.SpeakerArrangement {
	switch channels {
	case 0:
		return vst3.SpeakerArrEmpty
	case 1:
		return vst3.SpeakerArrMono
	case 2:
		return vst3.SpeakerArrStereo
	default:
		return vst3.SpeakerArrangement(uint64(1)<<uint(channels) - 1)
	}
}

func (c *Configuration) buses(mediaType vst3.MediaType) []Info {
	if mediaType == vst3.MediaTypeEvent {
		return c.events
	}
	return c.audio
}

func (c *Configuration) find(mediaType vst3.MediaType, direction vst3.BusDirection, index int32) *Info {
	buses := c.buses(mediaType)
	n := int32(0)
	for i := range buses {
		if buses[i].Direction != direction {
			continue
		}
		if n == index {
			return &buses[i]
		}
		n++
	}
	return nil
}

// GetBusCount returns the number of buses for a given type and direction
func (c *Configuration) GetBusCount(mediaType vst3.MediaType, direction vst3.BusDirection) int32 {
	count := int32(0)
	for _, bus := range c.buses(mediaType) {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(mediaType vst3.MediaType, direction vst3.BusDirection, index int32) (vst3.BusInfo, error) {
	bus := c.find(mediaType, direction, index)
	if bus == nil {
		return vst3.BusInfo{}, vst3.ResultInvalidArg
	}
	return bus.BusInfo, nil
}

// Activate sets a bus active or inactive
func (c *Configuration) Activate(mediaType vst3.MediaType, direction vst3.BusDirection, index int32, state bool) error {
	bus := c.find(mediaType, direction, index)
	if bus == nil {
		return vst3.ResultInvalidArg
	}
	bus.IsActive = state
	return nil
}

// IsActive reports whether a bus is active
func (c *Configuration) IsActive(mediaType vst3.MediaType, direction vst3.BusDirection, index int32) bool {
	bus := c.find(mediaType, direction, index)
	return bus != nil && bus.IsActive
}

// Arrangement returns the speaker arrangement of an audio bus
func (c *Configuration) Arrangement(direction vst3.BusDirection, index int32) (vst3.SpeakerArrangement, error) {
	bus := c.find(vst3.MediaTypeAudio, direction, index)
	if bus == nil {
		return 0, vst3.ResultInvalidArg
	}
	return bus.Arrangement, nil
}

// SetArrangements accepts the host's arrangements only when every bus keeps
// its declared channel count.
func (c *Configuration) SetArrangements(inputs, outputs []vst3.SpeakerArrangement) error {
	check := func(dir vst3.BusDirection, arrs []vst3.SpeakerArrangement) bool {
		if int32(len(arrs)) != c.GetBusCount(vst3.MediaTypeAudio, dir) {
			return false
		}
		for i, a := range arrs {
			if int32(a.ChannelCount()) != c.find(vst3.MediaTypeAudio, dir, int32(i)).ChannelCount {
				return false
			}
		}
		return true
	}
	if !check(vst3.BusDirectionInput, inputs) || !check(vst3.BusDirectionOutput, outputs) {
		return vst3.ResultFalse
	}
	for i, a := range inputs {
		c.find(vst3.MediaTypeAudio, vst3.BusDirectionInput, int32(i)).Arrangement = a
	}
	for i, a := range outputs {
		c.find(vst3.MediaTypeAudio, vst3.BusDirectionOutput, int32(i)).Arrangement = a
	}
	return nil
}

// ChannelCounts returns the channel count of every audio bus in a direction
func (c *Configuration) ChannelCounts(direction vst3.BusDirection) []int32 {
	var out []int32
	for _, bus := range c.audio {
		if bus.Direction == direction {
			out = append(out, bus.ChannelCount)
		}
	}
	return out
}
