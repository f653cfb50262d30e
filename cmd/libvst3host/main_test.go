package main

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/host"
	"github.com/justyntemme/vst3host/pkg/inproc"
	"github.com/justyntemme/vst3host/pkg/process"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int32
	}{
		{nil, statusOK},
		{errors.ErrNotActive, statusNotActive},
		{errors.ErrProcessingActive, statusProcessingActive},
		{errors.ErrReleased, statusReleased},
		{errors.New(errors.PhaseProcess, errors.KindNotActive).Detail("plugin is %s", "loaded").Build(), statusNotActive},
		{fmt.Errorf("wrapped: %w", errors.ErrReleased), statusReleased},
		{errors.ErrProcessFailed, statusFailed},
		{fmt.Errorf("plain"), statusFailed},
	}

	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v): expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestHandleLifecycle(t *testing.T) {
	a := &instance{}
	b := &instance{}
	ha := registerInstance(a)
	hb := registerInstance(b)

	if ha == 0 || hb == 0 || ha == hb {
		t.Fatalf("Expected distinct non-zero handles, got %d and %d", ha, hb)
	}
	if getInstance(ha) != a || getInstance(hb) != b {
		t.Error("Expected handles to resolve to their instances")
	}
	if getInstance(0) != nil {
		t.Error("Expected handle 0 to resolve to nothing")
	}

	if got := a.fail(errors.ErrProcessingActive); got != statusProcessingActive {
		t.Errorf("Expected processing active status, got %d", got)
	}
	if a.lastError() == "" {
		t.Error("Expected fail to record the last error")
	}
	if b.lastError() != "" {
		t.Errorf("Expected no error on the other handle, got %q", b.lastError())
	}

	if unregisterInstance(ha) != a {
		t.Error("Expected unregister to return the instance")
	}
	if getInstance(ha) != nil {
		t.Error("Expected released handle to resolve to nothing")
	}
	if unregisterInstance(ha) != nil {
		t.Error("Expected second unregister to return nil")
	}
	unregisterInstance(hb)
}

func TestHostRecords(t *testing.T) {
	records := []hostRecord{
		{kind: hostEventMidi, blockOffset: 3, ppqTime: 1.5, midi: [3]byte{0x90, 60, 100}},
		{kind: hostEventParameter, blockOffset: 7, ppqTime: 2, paramID: 42, paramValue: 0.75},
		{kind: 9},
	}

	note, ok := records[0].hostEvent()
	if !ok {
		t.Fatal("Expected MIDI record to convert")
	}
	m, isMidi := note.Payload.(event.Midi)
	if !isMidi || m.Data != [3]byte{0x90, 60, 100} {
		t.Errorf("Expected note-on 60/100, got %v", note.Payload)
	}
	if note.BlockOffset != 3 || note.PPQTime != 1.5 {
		t.Errorf("Expected offset 3 at 1.5 ppq, got %d at %g", note.BlockOffset, note.PPQTime)
	}

	set, ok := records[1].hostEvent()
	if !ok {
		t.Fatal("Expected parameter record to convert")
	}
	u, isUpdate := set.Payload.(event.ParameterUpdate)
	if !isUpdate || u.ID != 42 || u.Current != 0.75 {
		t.Errorf("Expected parameter 42 at 0.75, got %v", set.Payload)
	}
	if set.BlockOffset != 7 || set.PPQTime != 2 {
		t.Errorf("Expected offset 7 at 2 ppq, got %d at %g", set.BlockOffset, set.PPQTime)
	}

	if _, ok := records[2].hostEvent(); ok {
		t.Error("Expected unknown kind to be rejected")
	}
}

func TestPluginRecords(t *testing.T) {
	tests := []struct {
		event event.PluginEvent
		want  pluginRecord
	}{
		{
			event.ParameterUpdate{ID: 5, Index: 2, Current: 0.3, Initial: 0.1, EndEdit: true},
			pluginRecord{kind: pluginEventParameter, paramID: 5, paramIndex: 2, currentValue: 0.3, initialValue: 0.1, endEdit: 1},
		},
		{event.LatencyChanged{Samples: 256}, pluginRecord{kind: pluginEventLatency, latency: 256}},
		{event.WindowResized{Width: 640, Height: 480}, pluginRecord{kind: pluginEventWindowResized, width: 640, height: 480}},
		{event.DisplayUpdate{}, pluginRecord{kind: pluginEventDisplayUpdate}},
		{event.IOChanged{}, pluginRecord{kind: pluginEventIOChanged}},
	}

	for _, tt := range tests {
		if got := recordOf(tt.event); got != tt.want {
			t.Errorf("recordOf(%s): expected %+v, got %+v", tt.event, tt.want, got)
		}
	}
}

// channels returns a bus array of channel pointers into bufs, laid out the
// way a C caller passes them.
func channels(bufs ...[]float32) []unsafe.Pointer {
	ptrs := make([]unsafe.Pointer, len(bufs))
	for i, b := range bufs {
		if b != nil {
			ptrs[i] = unsafe.Pointer(&b[0])
		}
	}
	return ptrs
}

func TestBindBuses(t *testing.T) {
	l, r := make([]float32, 8), make([]float32, 8)
	l[7] = 1
	bus := channels(l, r)
	buses := []unsafe.Pointer{unsafe.Pointer(&bus[0]), nil}

	dst, ok := bindBuses(nil, unsafe.Pointer(&buses[0]), len(buses), []int32{2, 1}, 8)
	if !ok {
		t.Fatal("Expected buses to bind")
	}
	if len(dst) != 2 || len(dst[0]) != 2 || len(dst[0][0]) != 8 {
		t.Fatalf("Unexpected bound shape %d buses", len(dst))
	}
	if dst[0][0][7] != 1 {
		t.Error("Expected bound channel to share caller memory")
	}
	if len(dst[1]) != 0 {
		t.Errorf("Expected NULL bus to stay unbound, got %d channels", len(dst[1]))
	}

	again, ok := bindBuses(dst, nil, 0, []int32{2}, 8)
	if !ok || len(again) != 0 {
		t.Errorf("Expected NULL array to bind nothing, got %d buses", len(again))
	}
}

func TestBindBusesRejectsNullChannel(t *testing.T) {
	l := make([]float32, 4)
	bus := channels(l, nil)
	buses := []unsafe.Pointer{unsafe.Pointer(&bus[0])}

	if _, ok := bindBuses(nil, unsafe.Pointer(&buses[0]), 1, []int32{2}, 4); ok {
		t.Error("Expected NULL channel pointer to be rejected")
	}
}

func TestEventRoundTrip(t *testing.T) {
	p, err := host.Load(inproc.Scheme+inproc.GainName, host.WithApplication(host.NewSharedApplication(nil)))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	h := registerInstance(&instance{plugin: p})
	defer func() {
		if inst := unregisterInstance(h); inst != nil {
			inst.plugin.Destroy()
		}
	}()
	inst := getInstance(h)

	const n = 32
	inL, inR := make([]float32, n), make([]float32, n)
	outL, outR := make([]float32, n), make([]float32, n)
	for i := range inL {
		inL[i], inR[i] = 0.5, 0.5
	}
	in, out := channels(inL, inR), channels(outL, outR)
	inBuses := []unsafe.Pointer{unsafe.Pointer(&in[0])}
	outBuses := []unsafe.Pointer{unsafe.Pointer(&out[0])}

	io := p.IOConfig()
	var ok bool
	if inst.inputs, ok = bindBuses(inst.inputs, unsafe.Pointer(&inBuses[0]), 1, io.AudioInputs, n); !ok {
		t.Fatal("Expected inputs to bind")
	}
	if inst.outputs, ok = bindBuses(inst.outputs, unsafe.Pointer(&outBuses[0]), 1, io.AudioOutputs, n); !ok {
		t.Fatal("Expected outputs to bind")
	}

	var events []event.HostEvent
	for _, r := range []hostRecord{
		{kind: hostEventParameter, paramID: inproc.ParamGain, paramValue: 0.25},
		{kind: hostEventMidi, midi: [3]byte{0x90, 60, 100}},
	} {
		e, _ := r.hostEvent()
		events = append(events, e)
	}

	d := process.DefaultDetails()
	d.BlockSize = n
	if got := inst.fail(p.Process(d, inst.inputs, inst.outputs, events)); got != statusOK {
		t.Fatalf("Process failed with status %d: %s", got, inst.lastError())
	}

	// Normalized 0.25 is a linear gain of 0.5
	if outL[0] != 0.25 || outR[n-1] != 0.25 {
		t.Errorf("Expected 0.25 in caller output, got %f and %f", outL[0], outR[n-1])
	}

	var level *pluginRecord
	for _, e := range p.Events() {
		r := recordOf(e)
		if r.kind == pluginEventParameter && r.paramID == inproc.ParamLevel {
			level = &r
		}
	}
	if level == nil {
		t.Fatal("Expected an output level record")
	}
	if level.paramIndex != 3 {
		t.Errorf("Expected level at index 3, got %d", level.paramIndex)
	}
}
