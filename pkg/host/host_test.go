package host

import (
	"math"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/justyntemme/vst3host/pkg/bus"
	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/inproc"
	"github.com/justyntemme/vst3host/pkg/process"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

const gainPath = inproc.Scheme + inproc.GainName

// testLoader serves fake modules under a private scheme.
type testLoader struct {
	prefix  string
	factory vst3.PluginFactory
}

func (l testLoader) CanOpen(path string) bool { return strings.HasPrefix(path, l.prefix) }

func (l testLoader) Open(path string) (vst3.Module, error) {
	return &testModule{path: path, factory: l.factory}, nil
}

type testModule struct {
	path    string
	factory vst3.PluginFactory
	closed  bool
}

func (m *testModule) Path() string                { return m.path }
func (m *testModule) Factory() vst3.PluginFactory { return m.factory }
func (m *testModule) Close() error                { m.closed = true; return nil }

// emptyFactory exports only a controller class.
type emptyFactory struct{}

func (emptyFactory) ClassInfos() []vst3.ClassInfo {
	return []vst3.ClassInfo{{Name: "Lonely Controller", Category: vst3.CategoryComponentController}}
}

func (emptyFactory) CreateComponent(vst3.TUID) (vst3.IComponent, error) {
	return nil, vst3.ResultNoInterface
}

func (emptyFactory) CreateController(vst3.TUID) (vst3.IEditController, error) {
	return nil, vst3.ResultNoInterface
}

// flakyComponent fails Process while fail is set.
type flakyComponent struct {
	*inproc.Component
	fail  bool
	calls int
}

func (c *flakyComponent) Process(data *vst3.ProcessData) error {
	c.calls++
	if c.fail {
		return vst3.ResultInternalError
	}
	return c.Component.Process(data)
}

type flakyFactory struct {
	last *flakyComponent
}

func (f *flakyFactory) ClassInfos() []vst3.ClassInfo {
	return (&inproc.GainPlugin{}).GetInfo().ClassInfos()
}

func (f *flakyFactory) CreateComponent(vst3.TUID) (vst3.IComponent, error) {
	g := &inproc.GainPlugin{}
	f.last = &flakyComponent{Component: inproc.NewComponent(g.GetInfo(), g.CreateProcessor())}
	return f.last, nil
}

func (f *flakyFactory) CreateController(vst3.TUID) (vst3.IEditController, error) {
	return inproc.NewController(inproc.NewGainProcessor().GetParameters()), nil
}

var flaky = &flakyFactory{}

// growComponent adds a mono aux input while grow is set.
type growComponent struct {
	*inproc.Component
	grow  bool
	small *bus.Configuration
	large *bus.Configuration
}

func (c *growComponent) buses() *bus.Configuration {
	if c.grow {
		return c.large
	}
	return c.small
}

func (c *growComponent) GetBusCount(m vst3.MediaType, d vst3.BusDirection) int32 {
	return c.buses().GetBusCount(m, d)
}

func (c *growComponent) GetBusInfo(m vst3.MediaType, d vst3.BusDirection, i int32) (vst3.BusInfo, error) {
	return c.buses().GetBusInfo(m, d, i)
}

func (c *growComponent) ActivateBus(m vst3.MediaType, d vst3.BusDirection, i int32, state bool) error {
	return c.buses().Activate(m, d, i, state)
}

func (c *growComponent) GetBusArrangement(d vst3.BusDirection, i int32) (vst3.SpeakerArrangement, error) {
	return c.buses().Arrangement(d, i)
}

func (c *growComponent) SetBusArrangements(in, out []vst3.SpeakerArrangement) error {
	return c.buses().SetArrangements(in, out)
}

type growFactory struct {
	last *growComponent
}

func (f *growFactory) ClassInfos() []vst3.ClassInfo {
	return (&inproc.GainPlugin{}).GetInfo().ClassInfos()
}

func (f *growFactory) CreateComponent(vst3.TUID) (vst3.IComponent, error) {
	g := &inproc.GainPlugin{}
	f.last = &growComponent{
		Component: inproc.NewComponent(g.GetInfo(), g.CreateProcessor()),
		small: bus.NewBuilder().
			WithAudioInput("In", 2).
			WithAudioOutput("Out", 2).
			WithEventInput("Events").
			MustBuild(),
		large: bus.NewBuilder().
			WithAudioInput("In", 2).
			WithAudioInput("Aux", 1).
			WithAudioOutput("Out", 2).
			WithEventInput("Events").
			MustBuild(),
	}
	return f.last, nil
}

func (f *growFactory) CreateController(vst3.TUID) (vst3.IEditController, error) {
	return inproc.NewController(inproc.NewGainProcessor().GetParameters()), nil
}

var growing = &growFactory{}

func init() {
	vst3.RegisterLoader(testLoader{prefix: "test-empty://", factory: emptyFactory{}})
	vst3.RegisterLoader(testLoader{prefix: "test-flaky://", factory: flaky})
	vst3.RegisterLoader(testLoader{prefix: "test-grow://", factory: growing})
}

func loadGain(t *testing.T, opts ...Option) *Plugin {
	t.Helper()
	opts = append([]Option{WithApplication(NewSharedApplication(nil))}, opts...)
	p, err := Load(gainPath, opts...)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(p.Destroy)
	return p
}

func stereo(n int, value float32) [][][]float32 {
	l := make([]float32, n)
	r := make([]float32, n)
	for i := range l {
		l[i], r[i] = value, value
	}
	return [][][]float32{{l, r}}
}

func details(n int) process.Details {
	d := process.DefaultDetails()
	d.BlockSize = n
	return d
}

func TestLoadLifecycle(t *testing.T) {
	p := loadGain(t)

	if p.Lifecycle() != StateActive {
		t.Errorf("Expected active after load, got %s", p.Lifecycle())
	}

	d := p.Descriptor()
	if d.Name != "Gain" || d.Vendor != "vst3host" {
		t.Errorf("Unexpected descriptor %+v", d)
	}
	if len(d.ID) != 32 {
		t.Errorf("Expected 32 hex digit id, got %q", d.ID)
	}

	io := p.IOConfig()
	if len(io.AudioInputs) != 1 || io.AudioInputs[0] != 2 || io.AudioOutputs[0] != 2 {
		t.Errorf("Expected stereo in/out, got %+v", io)
	}
	if io.EventInputs != 1 {
		t.Errorf("Expected 1 event input, got %d", io.EventInputs)
	}

	if err := p.SetProcessing(true); err != nil {
		t.Fatalf("SetProcessing failed: %v", err)
	}
	if p.Lifecycle() != StateProcessing {
		t.Errorf("Expected processing, got %s", p.Lifecycle())
	}
	p.SetProcessing(false)
	if p.Lifecycle() != StateActive {
		t.Errorf("Expected active, got %s", p.Lifecycle())
	}
}

func TestSharedApplicationRefcount(t *testing.T) {
	app := NewSharedApplication(nil)

	a, err := Load(gainPath, WithApplication(app))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	b, err := Load(gainPath, WithApplication(app))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if app.Refs() != 2 {
		t.Errorf("Expected 2 references, got %d", app.Refs())
	}

	a.Destroy()
	if app.Refs() != 1 || !app.Live() {
		t.Errorf("Expected application to survive with 1 reference, got %d", app.Refs())
	}

	b.Destroy()
	b.Destroy()
	if app.Refs() != 0 || app.Live() {
		t.Errorf("Expected application torn down, got %d references", app.Refs())
	}
}

func TestLoadFailuresReleaseApplication(t *testing.T) {
	tests := []struct {
		path string
		kind errors.Kind
	}{
		{"inproc://missing", errors.KindModuleNotFound},
		{"/no/loader/for/this.vst3", errors.KindModuleNotFound},
		{"test-empty://x", errors.KindNoProcessorClass},
	}

	for _, tt := range tests {
		app := NewSharedApplication(nil)
		p, err := Load(tt.path, WithApplication(app))
		if err == nil {
			p.Destroy()
			t.Errorf("%s: expected error", tt.path)
			continue
		}
		if got := errors.KindOf(err); got != tt.kind {
			t.Errorf("%s: expected kind %s, got %s", tt.path, tt.kind, got)
		}
		if app.Refs() != 0 {
			t.Errorf("%s: expected application released, got %d references", tt.path, app.Refs())
		}
	}
}

func TestProcessAutomation(t *testing.T) {
	p := loadGain(t)
	p.SetProcessing(true)

	in := stereo(32, 0.25)
	out := stereo(32, 0)
	events := []event.HostEvent{event.SetParameter(inproc.ParamGain, 1.0, 0)}

	if err := p.Process(details(32), in, out, events); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out[0][0][5] != 0.5 || out[0][1][31] != 0.5 {
		t.Errorf("Expected 0.5 after x2 gain, got %f / %f", out[0][0][5], out[0][1][31])
	}

	var level *event.ParameterUpdate
	for _, e := range p.Events() {
		if u, ok := e.(event.ParameterUpdate); ok && u.ID == inproc.ParamLevel {
			level = &u
		}
	}
	if level == nil {
		t.Fatal("Expected a level update from the processor")
	}
	if level.Index != 3 {
		t.Errorf("Expected level index 3, got %d", level.Index)
	}
}

func TestProcessZeroBlock(t *testing.T) {
	p := loadGain(t)

	out := stereo(0, 0)
	left, right := out[0][0], out[0][1]
	if err := p.Process(details(0), stereo(0, 0), out, nil); err != nil {
		t.Errorf("Expected no error for empty block, got %v", err)
	}
	if len(out[0]) != 2 || len(out[0][0]) != 0 {
		t.Fatalf("Expected two empty output channels, got %v", out[0])
	}
	bound := p.data.Outputs[0].ChannelBuffers32
	if &bound[0] != &out[0][0] || cap(out[0][0]) != cap(left) || cap(out[0][1]) != cap(right) {
		t.Error("Expected output buffers bound by identity and left untouched")
	}
}

func TestProcessQueuedEventsAndNotes(t *testing.T) {
	p := loadGain(t)

	if n := p.QueueEvents(event.NoteOn(60, 100, 0), event.NoteOff(60, 16)); n != 2 {
		t.Fatalf("Expected 2 queued events, got %d", n)
	}
	if err := p.Process(details(32), stereo(32, 0), stereo(32, 0), []event.HostEvent{event.NoteOn(64, 90, 8)}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	comp := p.component.(*inproc.Component)
	if comp.NotesReceived() != 2 {
		t.Errorf("Expected 2 note-ons, got %d", comp.NotesReceived())
	}

	// Nothing is redelivered on the next block
	p.Process(details(32), stereo(32, 0), stereo(32, 0), nil)
	if comp.NotesReceived() != 2 {
		t.Errorf("Expected events cleared after the block, got %d note-ons", comp.NotesReceived())
	}
}

func TestProcessNotActive(t *testing.T) {
	p, err := Load(gainPath, WithApplication(NewSharedApplication(nil)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p.Destroy()

	err = p.Process(details(16), stereo(16, 0), stereo(16, 0), nil)
	if errors.KindOf(err) != errors.KindNotActive {
		t.Errorf("Expected not_active, got %v", err)
	}
}

func TestProcessFailureIsNotFatal(t *testing.T) {
	p, err := Load("test-flaky://gain", WithApplication(NewSharedApplication(nil)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer p.Destroy()

	comp := flaky.last
	comp.fail = true
	err = p.Process(details(16), stereo(16, 0.5), stereo(16, 0), []event.HostEvent{event.NoteOn(60, 100, 0)})
	if errors.KindOf(err) != errors.KindProcessFailed {
		t.Fatalf("Expected process_failed, got %v", err)
	}

	comp.fail = false
	out := stereo(16, 0)
	if err := p.Process(details(16), stereo(16, 0.5), out, nil); err != nil {
		t.Fatalf("Expected next block to succeed, got %v", err)
	}
	if out[0][0][0] != 0.5 {
		t.Errorf("Expected unity gain output 0.5, got %f", out[0][0][0])
	}
	if comp.NotesReceived() != 0 {
		t.Errorf("Expected failed block's events to be discarded, got %d notes", comp.NotesReceived())
	}
	if comp.calls != 2 {
		t.Errorf("Expected 2 process calls, got %d", comp.calls)
	}
}

func TestStateRoundTrip(t *testing.T) {
	p := loadGain(t)

	p.Process(details(16), stereo(16, 0.1), stereo(16, 0), []event.HostEvent{
		event.SetParameter(inproc.ParamGain, 0.8, 0),
		event.SetParameter(inproc.ParamMode, 1, 0),
	})
	p.SyncController()

	before := p.Parameters()

	blob, err := p.State()
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if blob.Len() == 0 {
		t.Fatal("Expected non-empty state")
	}
	if err := p.SetState(blob.Bytes()); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	blob.Release()
	if blob.Bytes() != nil {
		t.Error("Expected released blob to return nil")
	}

	after := p.Parameters()
	if len(after) != len(before) {
		t.Fatalf("Expected %d parameters, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Value != after[i].Value {
			t.Errorf("Parameter %d: expected %f, got %f", before[i].ID, before[i].Value, after[i].Value)
		}
	}
	if p.Parameter(inproc.ParamGain).Value != 0.8 {
		t.Errorf("Expected gain 0.8, got %f", p.Parameter(inproc.ParamGain).Value)
	}
}

func TestStateRefusedWhileProcessing(t *testing.T) {
	p := loadGain(t)
	p.SetProcessing(true)

	if _, err := p.State(); errors.KindOf(err) != errors.KindProcessingActive {
		t.Errorf("Expected processing_active, got %v", err)
	}
	if err := p.SetState([]byte("VST3GO")); errors.KindOf(err) != errors.KindProcessingActive {
		t.Errorf("Expected processing_active, got %v", err)
	}
}

func TestSetStateProcessorFailureLeavesController(t *testing.T) {
	p := loadGain(t)
	p.SetParameterInController(inproc.ParamGain, 0.3)

	err := p.SetState([]byte("not a state"))
	if errors.KindOf(err) != errors.KindWriteFailed {
		t.Fatalf("Expected write_failed, got %v", err)
	}
	if v := p.Parameter(inproc.ParamGain).Value; v != 0.3 {
		t.Errorf("Expected controller untouched at 0.3, got %f", v)
	}
}

func TestParameterLookup(t *testing.T) {
	p := loadGain(t)

	if p.ParameterCount() != 4 {
		t.Errorf("Expected 4 parameters, got %d", p.ParameterCount())
	}

	d := p.Parameter(inproc.ParamBypass)
	if d.Name != "Bypass" || d.Index != 1 {
		t.Errorf("Unexpected bypass descriptor %+v", d)
	}
	if !d.Flags.IsAutomatable() || d.Formatted != "Off" {
		t.Errorf("Expected automatable bypass showing Off, got %+v", d)
	}

	if d := p.Parameter(999); !d.IsZero() {
		t.Errorf("Expected zero descriptor for unknown id, got %+v", d)
	}
}

func TestSyncControllerMirrorsHostUpdates(t *testing.T) {
	p := loadGain(t)

	if !p.SetParameterFromUI(inproc.ParamGain, 0.25) {
		t.Fatal("Expected UI update to be queued")
	}
	p.Process(details(8), stereo(8, 0), stereo(8, 0), nil)
	p.Events()

	if n := p.SyncController(); n < 1 {
		t.Fatalf("Expected at least one controller update, got %d", n)
	}
	if v := p.Parameter(inproc.ParamGain).Value; v != 0.25 {
		t.Errorf("Expected controller gain 0.25, got %f", v)
	}

	mirrored := false
	for _, e := range p.Events() {
		if u, ok := e.(event.ParameterUpdate); ok && u.ID == inproc.ParamGain {
			mirrored = u.Current == 0.25 && math.IsNaN(u.Initial) && !u.EndEdit
		}
	}
	if !mirrored {
		t.Error("Expected mirrored gain update")
	}
}

func TestControllerGestureEvents(t *testing.T) {
	p := loadGain(t)
	ctrl := p.controller.(*inproc.Controller)

	if err := ctrl.Edit(inproc.ParamGain, 0.1, 0.2, 0.3); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	var ends []event.ParameterUpdate
	performs := 0
	for _, e := range p.Events() {
		u, ok := e.(event.ParameterUpdate)
		if !ok || u.ID != inproc.ParamGain {
			continue
		}
		if u.EndEdit {
			ends = append(ends, u)
		} else {
			performs++
		}
	}
	if performs != 3 {
		t.Errorf("Expected 3 perform updates, got %d", performs)
	}
	if len(ends) != 1 || ends[0].Current != 0.3 || ends[0].Initial != 0.1 {
		t.Errorf("Expected one end update (0.1 -> 0.3), got %+v", ends)
	}
	if p.Edits().Len() != 0 {
		t.Errorf("Expected no open gestures, got %d", p.Edits().Len())
	}
}

func TestRestartEvents(t *testing.T) {
	p := loadGain(t)
	comp := p.component.(*inproc.Component)
	ctrl := p.controller.(*inproc.Controller)

	comp.SetLatency(128)
	ctrl.RequestRestart(vst3.RestartParamValuesChanged | vst3.RestartIoChanged)

	events := p.Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %v", events)
	}
	if lc, ok := events[0].(event.LatencyChanged); !ok || lc.Samples != 128 {
		t.Errorf("Expected LatencyChanged{128}, got %v", events[0])
	}
	if _, ok := events[1].(event.DisplayUpdate); !ok {
		t.Errorf("Expected DisplayUpdate, got %v", events[1])
	}
	if _, ok := events[2].(event.IOChanged); !ok {
		t.Errorf("Expected IOChanged, got %v", events[2])
	}

	if p.Descriptor().Latency != 0 {
		t.Errorf("Expected descriptor to keep load-time latency 0, got %d", p.Descriptor().Latency)
	}
	if p.Latency() != 128 {
		t.Errorf("Expected current latency 128, got %d", p.Latency())
	}
}

func TestRefreshIOConfigUnchanged(t *testing.T) {
	p := loadGain(t)

	io, err := p.RefreshIOConfig()
	if err != nil {
		t.Fatalf("RefreshIOConfig failed: %v", err)
	}
	if len(io.AudioOutputs) != 1 || io.AudioOutputs[0] != 2 {
		t.Errorf("Expected stereo output, got %+v", io)
	}
	if p.Lifecycle() != StateActive {
		t.Errorf("Expected plugin to stay active, got %s", p.Lifecycle())
	}

	p.SetProcessing(true)
	if _, err := p.RefreshIOConfig(); errors.KindOf(err) != errors.KindProcessingActive {
		t.Errorf("Expected processing_active, got %v", err)
	}
}

func TestEditorShowResizeHide(t *testing.T) {
	p := loadGain(t, WithWindowAttacher(PlatformAttacher{Platform: vst3.PlatformTypeX11EmbedWindowID}))

	w, h, err := p.ShowEditor(0x1234)
	if err != nil {
		t.Fatalf("ShowEditor failed: %v", err)
	}
	if w != 400 || h != 300 {
		t.Errorf("Expected 400x300, got %dx%d", w, h)
	}

	view := p.controller.(*inproc.Controller).View()
	if err := view.ResizeTo(640, 480); err != nil {
		t.Fatalf("ResizeTo failed: %v", err)
	}
	events := p.Events()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %v", events)
	}
	if r, ok := events[0].(event.WindowResized); !ok || r.Width != 640 || r.Height != 480 {
		t.Errorf("Expected WindowResized{640, 480}, got %v", events[0])
	}

	// Showing again reports the new size without reattaching
	if w, h, _ := p.ShowEditor(0x1234); w != 640 || h != 480 {
		t.Errorf("Expected 640x480, got %dx%d", w, h)
	}

	p.HideEditor()
	if p.EditorOpen() || !view.IsReleased() {
		t.Error("Expected editor hidden and view released")
	}
}

func TestEditorUnsupportedPlatform(t *testing.T) {
	p := loadGain(t, WithWindowAttacher(PlatformAttacher{Platform: "Wayland"}))

	_, _, err := p.ShowEditor(1)
	if errors.KindOf(err) != errors.KindPlatformUnsupported {
		t.Errorf("Expected platform_unsupported, got %v", err)
	}
	if p.EditorOpen() {
		t.Error("Expected no open editor")
	}
}

func TestConcurrentEditsWithProcessing(t *testing.T) {
	const (
		editors = 8
		steps   = 50
	)
	p := loadGain(t, WithOutboxCapacity(editors*(steps+1)+4096))
	p.SetProcessing(true)

	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		in, out := stereo(64, 0.1), stereo(64, 0)
		for i := 0; i < 1000; i++ {
			select {
			case <-done:
				return
			default:
				p.Process(details(64), in, out, nil)
			}
		}
	}()

	var edits sync.WaitGroup
	for g := 0; g < editors; g++ {
		edits.Add(1)
		go func(id uint32) {
			defer edits.Done()
			p.handler.BeginEdit(id)
			for i := 1; i <= steps; i++ {
				p.handler.PerformEdit(id, float64(i)/steps)
			}
			p.handler.EndEdit(id)
		}(uint32(100 + g))
	}
	edits.Wait()
	close(done)
	wg.Wait()

	ends := make(map[uint32]int)
	performs := make(map[uint32]int)
	for _, e := range p.Events() {
		u, ok := e.(event.ParameterUpdate)
		if !ok || u.ID < 100 {
			continue
		}
		if u.EndEdit {
			ends[u.ID]++
			if u.Current != 1.0 {
				t.Errorf("Parameter %d: expected final value 1.0, got %f", u.ID, u.Current)
			}
		} else {
			performs[u.ID]++
		}
	}

	for g := 0; g < editors; g++ {
		id := uint32(100 + g)
		if ends[id] != 1 {
			t.Errorf("Parameter %d: expected exactly one end update, got %d", id, ends[id])
		}
		if performs[id] != steps {
			t.Errorf("Parameter %d: expected %d perform updates, got %d", id, steps, performs[id])
		}
	}
	if p.Edits().Len() != 0 {
		t.Errorf("Expected every gesture closed, got %d open", p.Edits().Len())
	}
	if p.Outbox().Dropped() != 0 {
		t.Errorf("Expected no dropped events, got %d", p.Outbox().Dropped())
	}
}

func TestRefreshIOConfigRenegotiates(t *testing.T) {
	p, err := Load("test-grow://gain", WithApplication(NewSharedApplication(nil)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer p.Destroy()

	if io := p.IOConfig(); len(io.AudioInputs) != 1 {
		t.Fatalf("Expected one input bus before the change, got %+v", io)
	}

	growing.last.grow = true
	io, err := p.RefreshIOConfig()
	if err != nil {
		t.Fatalf("RefreshIOConfig failed: %v", err)
	}
	if len(io.AudioInputs) != 2 || io.AudioInputs[0] != 2 || io.AudioInputs[1] != 1 {
		t.Errorf("Expected inputs [2 1], got %v", io.AudioInputs)
	}
	if p.Lifecycle() != StateActive {
		t.Errorf("Expected active after renegotiation, got %s", p.Lifecycle())
	}

	const n = 32
	inputs := append(stereo(n, 0.5), [][]float32{make([]float32, n)})
	outputs := stereo(n, 0)
	if err := p.Process(details(n), inputs, outputs, nil); err != nil {
		t.Fatalf("Process with the aux bus failed: %v", err)
	}
	if outputs[0][0][0] != 0.5 {
		t.Errorf("Expected unity gain output 0.5, got %f", outputs[0][0][0])
	}
}

func TestOutboxOverflowWarnsOncePerEpisode(t *testing.T) {
	prev := Logger()
	core, logs := observer.New(zap.WarnLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	p := loadGain(t, WithOutboxCapacity(4))

	const n = 16
	overflow := func() {
		for i := 0; i < 50; i++ {
			level := float32(0.25)
			if i%2 == 1 {
				level = 0.5
			}
			if err := p.Process(details(n), stereo(n, level), stereo(n, 0), nil); err != nil {
				t.Fatalf("Process failed: %v", err)
			}
		}
	}
	warnings := func() int {
		return logs.FilterMessage("plugin events dropped, outbox full").Len()
	}

	overflow()
	if got := warnings(); got != 1 {
		t.Errorf("Expected 1 overflow warning, got %d", got)
	}
	if p.Outbox().Dropped() == 0 {
		t.Error("Expected dropped events to be counted")
	}

	if got := len(p.Events()); got != 4 {
		t.Errorf("Expected 4 queued events, got %d", got)
	}
	overflow()
	if got := warnings(); got != 2 {
		t.Errorf("Expected a second warning after draining, got %d", got)
	}
}
