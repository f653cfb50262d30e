package inproc

import (
	"sync"
	"sync/atomic"

	"github.com/justyntemme/vst3host/pkg/bus"
	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/process"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Message ids exchanged between Component and Controller.
const (
	MessageLatency = "latency"
)

// Component is the processing half of an in-process plugin.
type Component struct {
	info      Info
	processor Processor
	params    *param.Registry
	buses     *bus.Configuration
	state     *StateManager

	ctx   *process.Context
	setup vst3.ProcessSetup

	active     atomic.Bool
	processing atomic.Bool
	notes      atomic.Int64

	// -1 until SetLatency overrides the processor's value
	latency atomic.Int64

	mu   sync.Mutex
	peer vst3.IConnectionPoint
	host vst3.IHostApplication
}

var (
	_ vst3.IComponent       = (*Component)(nil)
	_ vst3.IAudioProcessor  = (*Component)(nil)
	_ vst3.IConnectionPoint = (*Component)(nil)
)

// NewComponent wraps processor as a component.
func NewComponent(info Info, processor Processor) *Component {
	c := &Component{
		info:      info,
		processor: processor,
		params:    processor.GetParameters(),
		buses:     processor.GetBuses(),
	}
	if c.params == nil {
		c.params = param.NewRegistry()
	}
	if c.buses == nil {
		c.buses = bus.NewEffectStereo()
	}
	c.state = NewStateManager(c.params)
	c.latency.Store(-1)
	return c
}

// Initialize implements IPluginBase.
func (c *Component) Initialize(host vst3.IHostApplication) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = host
	return nil
}

// Terminate implements IPluginBase.
func (c *Component) Terminate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = nil
	c.peer = nil
	return nil
}

// HostName returns the name of the host that initialized the component.
func (c *Component) HostName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == nil {
		return ""
	}
	return c.host.GetName()
}

// GetControllerClassID implements IComponent.
func (c *Component) GetControllerClassID() vst3.TUID {
	return c.info.ControllerUID()
}

// SetIOMode implements IComponent.
func (c *Component) SetIOMode(mode vst3.IoMode) error {
	return nil
}

// GetBusCount implements IComponent.
func (c *Component) GetBusCount(mediaType vst3.MediaType, direction vst3.BusDirection) int32 {
	return c.buses.GetBusCount(mediaType, direction)
}

// GetBusInfo implements IComponent.
func (c *Component) GetBusInfo(mediaType vst3.MediaType, direction vst3.BusDirection, index int32) (vst3.BusInfo, error) {
	return c.buses.GetBusInfo(mediaType, direction, index)
}

// ActivateBus implements IComponent.
func (c *Component) ActivateBus(mediaType vst3.MediaType, direction vst3.BusDirection, index int32, state bool) error {
	return c.buses.Activate(mediaType, direction, index, state)
}

// SetActive implements IComponent.
func (c *Component) SetActive(state bool) error {
	if err := c.processor.SetActive(state); err != nil {
		return err
	}
	c.active.Store(state)
	if !state {
		c.processing.Store(false)
	}
	return nil
}

// SetState implements IComponent.
func (c *Component) SetState(state vst3.IBStream) error {
	return c.state.Load(state)
}

// GetState implements IComponent.
func (c *Component) GetState(state vst3.IBStream) error {
	return c.state.Save(state)
}

// SetBusArrangements implements IAudioProcessor.
func (c *Component) SetBusArrangements(inputs, outputs []vst3.SpeakerArrangement) error {
	return c.buses.SetArrangements(inputs, outputs)
}

// GetBusArrangement implements IAudioProcessor.
func (c *Component) GetBusArrangement(direction vst3.BusDirection, index int32) (vst3.SpeakerArrangement, error) {
	return c.buses.Arrangement(direction, index)
}

// CanProcessSampleSize implements IAudioProcessor. Only 32-bit is supported.
func (c *Component) CanProcessSampleSize(size vst3.SymbolicSampleSize) error {
	if size == vst3.SampleSize32 {
		return nil
	}
	return vst3.ResultFalse
}

// GetLatencySamples implements IAudioProcessor.
func (c *Component) GetLatencySamples() uint32 {
	if l := c.latency.Load(); l >= 0 {
		return uint32(l)
	}
	return uint32(max(c.processor.GetLatencySamples(), 0))
}

// SetLatency changes the reported latency and tells the controller, which
// asks the host to restart.
func (c *Component) SetLatency(samples uint32) {
	c.latency.Store(int64(samples))

	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()
	if peer != nil {
		peer.Notify(&vst3.Message{
			ID:         MessageLatency,
			Attributes: map[string]any{"samples": samples},
		})
	}
}

// SetupProcessing implements IAudioProcessor.
func (c *Component) SetupProcessing(setup *vst3.ProcessSetup) error {
	if setup == nil {
		return vst3.ResultInvalidArg
	}
	if setup.SymbolicSampleSize != vst3.SampleSize32 || setup.MaxSamplesPerBlock < 0 {
		return vst3.ResultFalse
	}
	if err := c.processor.Initialize(setup.SampleRate, setup.MaxSamplesPerBlock); err != nil {
		return err
	}
	c.setup = *setup
	c.ctx = process.NewContext(int(setup.MaxSamplesPerBlock), c.params)
	c.ctx.SampleRate = setup.SampleRate
	return nil
}

// SetProcessing implements IAudioProcessor.
func (c *Component) SetProcessing(state bool) error {
	if state && !c.active.Load() {
		return vst3.ResultNotInitialized
	}
	c.processing.Store(state)
	return nil
}

// IsProcessing reports the last SetProcessing state.
func (c *Component) IsProcessing() bool {
	return c.processing.Load()
}

// Process implements IAudioProcessor.
func (c *Component) Process(data *vst3.ProcessData) error {
	if !c.active.Load() || c.ctx == nil {
		return vst3.ResultNotInitialized
	}
	if data == nil {
		return vst3.ResultInvalidArg
	}

	// Block-accurate automation is not needed here; the last point wins
	if pc := data.InputParameterChanges; pc != nil {
		for i := int32(0); i < pc.GetParameterCount(); i++ {
			q := pc.GetParameterData(i)
			if q == nil {
				continue
			}
			if _, v, ok := q.Last(); ok {
				if p := c.params.Get(q.GetParameterID()); p != nil {
					p.SetValue(v)
				}
			}
		}
	}

	if data.InputEvents != nil {
		for _, e := range data.InputEvents.Events() {
			if e.Type == vst3.EventTypeNoteOn {
				c.notes.Add(1)
			}
		}
	}

	c.ctx.SampleRate = c.setup.SampleRate
	c.ctx.Bind(data)
	c.processor.ProcessAudio(c.ctx)
	return nil
}

// GetTailSamples implements IAudioProcessor.
func (c *Component) GetTailSamples() uint32 {
	return uint32(max(c.processor.GetTailSamples(), 0))
}

// NotesReceived counts note-on events seen by Process.
func (c *Component) NotesReceived() int64 {
	return c.notes.Load()
}

// Parameters returns the processor-side registry.
func (c *Component) Parameters() *param.Registry {
	return c.params
}

// Connect implements IConnectionPoint.
func (c *Component) Connect(other vst3.IConnectionPoint) error {
	if other == nil {
		return vst3.ResultInvalidArg
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peer = other
	return nil
}

// Disconnect implements IConnectionPoint.
func (c *Component) Disconnect(other vst3.IConnectionPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer != other {
		return vst3.ResultInvalidArg
	}
	c.peer = nil
	return nil
}

// Notify implements IConnectionPoint. The component ignores messages.
func (c *Component) Notify(message *vst3.Message) error {
	if message == nil {
		return vst3.ResultInvalidArg
	}
	return nil
}
