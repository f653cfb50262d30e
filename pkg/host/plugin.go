// Package host loads VST3 plugins and drives them: lifecycle, bus
// negotiation, block processing, state, parameters and the editor.
//
// A Plugin is used from two contexts. Process runs on the real-time audio
// path; everything else belongs to the control path. The only state both
// touch concurrently is the parameter edit tracking and the event queues,
// which are internally synchronized. Callers must not run control-path
// methods that reconfigure the plugin (SetState, RefreshIOConfig, Destroy)
// while a Process call is in flight.
package host

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/bus"
	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// LifecycleState of a loaded plugin.
type LifecycleState int32

const (
	StateUnloaded LifecycleState = iota
	StateLoaded
	StateBusesConfigured
	StateActive
	StateProcessing
)

func (s LifecycleState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateBusesConfigured:
		return "buses-configured"
	case StateActive:
		return "active"
	case StateProcessing:
		return "processing"
	default:
		return "unloaded"
	}
}

// Descriptor identifies a loaded plugin.
type Descriptor struct {
	Name    string
	Vendor  string
	Version string
	ID      string

	// Latency reported when the plugin was loaded
	Latency uint32
}

// Plugin is one loaded plugin instance.
type Plugin struct {
	path   string
	opts   Options
	log    *zap.Logger
	shared *SharedApplication
	app    *Application

	module     vst3.Module
	class      vst3.ClassInfo
	component  vst3.IComponent
	processor  vst3.IAudioProcessor
	controller vst3.IEditController
	separate   bool

	compPoint vst3.IConnectionPoint
	ctrlPoint vst3.IConnectionPoint

	handler *componentHandler
	edits   *param.EditSynchronizer
	indices *param.IndexMap
	outbox  *event.Outbox
	pending *event.Queue
	updates *updateQueue

	layout   bus.Layout
	data     *vst3.ProcessData
	eventsIn *vst3.EventList
	scratch  []event.HostEvent
	emitOut  func(event.PluginEvent)

	latency atomic.Uint32
	state   atomic.Int32
	// set while the outbox is rejecting events
	overflow atomic.Bool

	mu        sync.Mutex
	editor    *editor
	destroyed bool
}

// Load opens the module at path, instantiates its audio effect class, wires
// the controller and leaves the plugin active with its buses negotiated.
//
// Bus configuration failures are logged and do not fail the load. Any other
// failure releases what was acquired, in reverse order, and is returned as a
// load phase *errors.Error.
func Load(path string, opts ...Option) (_ *Plugin, err error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Application == nil {
		o.Application = DefaultApplication()
	}
	if o.Attacher == nil {
		o.Attacher = DefaultAttacher()
	}

	p := &Plugin{
		path:    path,
		opts:    o,
		log:     Logger().With(zap.String("plugin", path)),
		shared:  o.Application,
		indices: param.NewIndexMap(),
		outbox:  event.NewOutbox(o.OutboxCapacity),
		pending: event.NewQueue(o.QueueCapacity),
		updates: newUpdateQueue(o.QueueCapacity),
		scratch: make([]event.HostEvent, 0, o.QueueCapacity),
	}
	p.emitOut = p.outputUpdate

	var undo []func()
	defer func() {
		if err == nil {
			return
		}
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		p.log.Warn("plugin load failed", zap.Error(err))
	}()

	p.app = p.shared.Acquire()
	undo = append(undo, p.shared.Release)

	p.module, err = vst3.OpenModule(path)
	if err != nil {
		return nil, errors.Load(errors.KindModuleNotFound, path, err)
	}
	undo = append(undo, func() { p.module.Close() })

	factory := p.module.Factory()
	class, ok := vst3.FindClass(factory, vst3.CategoryAudioEffect)
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindNoProcessorClass).
			Path(path).
			Detail("no %q class in module", vst3.CategoryAudioEffect).
			Build()
	}
	p.class = class

	p.component, err = factory.CreateComponent(class.ID)
	if err != nil {
		return nil, errors.Load(errors.KindNoProcessorClass, path, err)
	}
	proc, ok := p.component.(vst3.IAudioProcessor)
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindNoProcessorClass).
			Path(path).
			Detail("class %s is not an audio processor", class.ID).
			Build()
	}
	p.processor = proc

	if err = p.component.Initialize(p.app); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInitializationFailed).
			Path(path).Cause(err).Detail("component").Build()
	}
	undo = append(undo, func() { p.component.Terminate() })

	if err = p.createController(factory); err != nil {
		return nil, err
	}
	if p.separate {
		undo = append(undo, func() { p.controller.Terminate() })
	}

	p.edits = param.NewEditSynchronizer(p.indices, p.notify)
	p.handler = &componentHandler{EditSynchronizer: p.edits, plugin: p}
	if err = p.controller.SetComponentHandler(p.handler); err != nil {
		p.log.Warn("controller refused component handler", zap.Error(err))
	}
	undo = append(undo, func() { p.controller.SetComponentHandler(nil) })

	p.connect()
	undo = append(undo, p.disconnect)

	p.syncComponentState()
	p.indices.Build(p.controller)
	p.state.Store(int32(StateLoaded))

	p.configure()
	p.latency.Store(p.processor.GetLatencySamples())

	if err = p.component.SetActive(true); err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindActivationFailed).
			Path(path).Cause(err).Build()
	}
	p.state.Store(int32(StateActive))

	p.log.Info("plugin loaded",
		zap.String("name", class.Name),
		zap.String("vendor", class.Vendor),
		zap.Int32("parameters", p.controller.GetParameterCount()),
		zap.Uint32("latency", p.latency.Load()),
	)
	return p, nil
}

// createController uses the component itself when it is also the edit
// controller, else instantiates the controller class it names.
func (p *Plugin) createController(factory vst3.PluginFactory) error {
	if ctrl, ok := p.component.(vst3.IEditController); ok {
		p.controller = ctrl
		return nil
	}

	ctrl, err := factory.CreateController(p.component.GetControllerClassID())
	if err != nil {
		return errors.New(errors.PhaseLoad, errors.KindInitializationFailed).
			Path(p.path).Cause(err).Detail("create controller").Build()
	}
	if err := ctrl.Initialize(p.app); err != nil {
		return errors.New(errors.PhaseLoad, errors.KindInitializationFailed).
			Path(p.path).Cause(err).Detail("controller").Build()
	}
	p.controller = ctrl
	p.separate = true
	return nil
}

// connect links processor and controller in both directions when both are
// connection points.
func (p *Plugin) connect() {
	if !p.separate {
		return
	}
	cp, ok1 := p.component.(vst3.IConnectionPoint)
	ctp, ok2 := p.controller.(vst3.IConnectionPoint)
	if !ok1 || !ok2 {
		return
	}
	if err := cp.Connect(ctp); err != nil {
		p.log.Warn("component refused connection", zap.Error(err))
		return
	}
	if err := ctp.Connect(cp); err != nil {
		p.log.Warn("controller refused connection", zap.Error(err))
		cp.Disconnect(ctp)
		return
	}
	p.compPoint, p.ctrlPoint = cp, ctp
}

func (p *Plugin) disconnect() {
	if p.compPoint == nil {
		return
	}
	p.compPoint.Disconnect(p.ctrlPoint)
	p.ctrlPoint.Disconnect(p.compPoint)
	p.compPoint, p.ctrlPoint = nil, nil
}

// syncComponentState copies the processor's state into the controller.
func (p *Plugin) syncComponentState() {
	s := vst3.NewMemoryStream(nil)
	if err := p.component.GetState(s); err != nil {
		p.log.Warn("failed to read initial component state", zap.Error(err))
		return
	}
	s.Rewind()
	if err := p.controller.SetComponentState(s); err != nil {
		p.log.Warn("failed to apply initial component state to controller", zap.Error(err))
	}
}

// configure negotiates buses, sets up processing and prepares the block
// structures. Failures are logged; the plugin stays usable.
func (p *Plugin) configure() {
	layout, err := bus.Negotiate(p.component, p.processor)
	if err != nil {
		p.log.Warn("bus configuration incomplete", zap.Error(err))
	}
	p.layout = layout
	p.state.Store(int32(StateBusesConfigured))

	setup := &vst3.ProcessSetup{
		ProcessMode:        vst3.ProcessModeRealtime,
		SymbolicSampleSize: vst3.SampleSize32,
		MaxSamplesPerBlock: p.opts.MaxBlockSize,
		SampleRate:         p.opts.SampleRate,
	}
	if err := p.processor.SetupProcessing(setup); err != nil {
		p.log.Warn("processing setup rejected",
			zap.Error(errors.Bus(errors.KindSetupRejected, "SetupProcessing", err)),
			zap.Float64("sample_rate", setup.SampleRate),
			zap.Int32("max_block_size", setup.MaxSamplesPerBlock),
		)
	}

	p.data = vst3.NewProcessData(
		p.layout.AudioInputs.ChannelCounts(),
		p.layout.AudioOutputs.ChannelCounts(),
		p.opts.ParamCapacity,
	)
	if p.layout.EventInputs.Len() == 0 {
		p.data.InputEvents = nil
	}
	if p.layout.EventOutputs.Len() == 0 {
		p.data.OutputEvents = nil
	}
	p.eventsIn = p.data.InputEvents
}

// Lifecycle returns the current lifecycle state.
func (p *Plugin) Lifecycle() LifecycleState {
	return LifecycleState(p.state.Load())
}

// Path returns the module path the plugin was loaded from.
func (p *Plugin) Path() string {
	return p.path
}

// Descriptor returns the plugin's identity.
func (p *Plugin) Descriptor() Descriptor {
	return Descriptor{
		Name:    p.class.Name,
		Vendor:  p.class.Vendor,
		Version: p.class.Version,
		ID:      p.class.ID.String(),
		Latency: p.latency.Load(),
	}
}

// Latency returns the most recent latency the plugin reported.
func (p *Plugin) Latency() uint32 {
	return p.processor.GetLatencySamples()
}

// IOConfig returns the negotiated bus summary.
func (p *Plugin) IOConfig() bus.IOConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout.IOConfig()
}

// RefreshIOConfig re-reads the plugin's buses after an IOChanged event and
// renegotiates when they differ from the current layout. It must not be
// called while processing.
func (p *Plugin) RefreshIOConfig() (bus.IOConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.Lifecycle() {
	case StateProcessing:
		return p.layout.IOConfig(), errors.ErrProcessingActive
	case StateUnloaded:
		return bus.IOConfig{}, errors.ErrReleased
	}

	current, err := bus.Query(p.component, p.processor)
	if err != nil {
		p.log.Warn("bus query failed", zap.Error(err))
	}
	if sameLayout(current.IOConfig(), p.layout.IOConfig()) {
		return p.layout.IOConfig(), nil
	}

	p.log.Info("bus layout changed, renegotiating")
	if err := p.component.SetActive(false); err != nil {
		p.log.Warn("deactivation before renegotiation failed", zap.Error(err))
	}
	p.configure()
	if err := p.component.SetActive(true); err != nil {
		return p.layout.IOConfig(), errors.New(errors.PhaseBus, errors.KindActivationFailed).
			Path(p.path).Cause(err).Build()
	}
	p.state.Store(int32(StateActive))
	return p.layout.IOConfig(), nil
}

func sameLayout(a, b bus.IOConfig) bool {
	if a.EventInputs != b.EventInputs || a.EventOutputs != b.EventOutputs {
		return false
	}
	if len(a.AudioInputs) != len(b.AudioInputs) || len(a.AudioOutputs) != len(b.AudioOutputs) {
		return false
	}
	for i := range a.AudioInputs {
		if a.AudioInputs[i] != b.AudioInputs[i] {
			return false
		}
	}
	for i := range a.AudioOutputs {
		if a.AudioOutputs[i] != b.AudioOutputs[i] {
			return false
		}
	}
	return true
}

// SetProcessing starts or stops processing. The plugin must be active.
func (p *Plugin) SetProcessing(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.Lifecycle()
	if st < StateActive {
		return errors.New(errors.PhaseProcess, errors.KindNotActive).
			Detail("plugin is %s", st).Build()
	}
	if on == (st == StateProcessing) {
		return nil
	}

	if err := p.processor.SetProcessing(on); err != nil {
		p.log.Warn("SetProcessing failed", zap.Bool("on", on), zap.Error(err))
		return errors.New(errors.PhaseProcess, errors.KindActivationFailed).
			Path(p.path).Cause(err).Build()
	}
	if on {
		p.state.Store(int32(StateProcessing))
	} else {
		p.state.Store(int32(StateActive))
	}
	return nil
}

// Destroy releases the plugin in reverse acquisition order. It is safe to
// call more than once.
func (p *Plugin) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroyed {
		return
	}
	p.destroyed = true

	p.hideEditor()

	if p.Lifecycle() == StateProcessing {
		if err := p.processor.SetProcessing(false); err != nil {
			p.log.Warn("stop processing failed", zap.Error(err))
		}
	}
	if p.Lifecycle() >= StateActive {
		if err := p.component.SetActive(false); err != nil {
			p.log.Warn("deactivation failed", zap.Error(err))
		}
	}
	p.state.Store(int32(StateUnloaded))

	p.disconnect()
	p.controller.SetComponentHandler(nil)
	if p.separate {
		if err := p.controller.Terminate(); err != nil {
			p.log.Warn("controller terminate failed", zap.Error(err))
		}
	}
	if err := p.component.Terminate(); err != nil {
		p.log.Warn("component terminate failed", zap.Error(err))
	}
	if err := p.module.Close(); err != nil {
		p.log.Warn("module close failed", zap.Error(err))
	}
	p.shared.Release()

	p.log.Info("plugin destroyed")
}
