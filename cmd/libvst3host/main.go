// Command libvst3host builds the host as a C shared library:
//
//	go build -buildmode=c-shared -o libvst3host.so ./cmd/libvst3host
//
// Every string, array and state buffer handed out is allocated with malloc
// and owned by the caller, who must release it with the matching
// vst3host_free_* function.
package main

// #include <stdlib.h>
// #include <string.h>
// #include "vst3host.h"
import "C"
import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/config"
	"github.com/justyntemme/vst3host/pkg/debug"
	"github.com/justyntemme/vst3host/pkg/host"
	// registers the inproc:// module loader
	_ "github.com/justyntemme/vst3host/pkg/inproc"
)

var (
	setupOnce sync.Once
	options   host.Options

	loadErrMu sync.Mutex
	loadErr   string
)

// setup reads the user config once per process and installs its logger.
// Every handle shares the resulting options and with them one host
// application.
func setup() {
	setupOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
		log, logErr := debug.NewLogger(debug.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
		if logErr == nil {
			host.SetLogger(log.Named("libvst3host"))
		}
		if err != nil {
			host.Logger().Warn("config ignored", zap.Error(err))
		}
		options = cfg.HostOptions()
	})
}

// recoverPanic keeps a Go panic from unwinding into C code
func recoverPanic(operation string, status *C.int32_t) {
	if r := recover(); r != nil {
		host.Logger().Error("recovered panic", zap.String("operation", operation), zap.Any("panic", r))
		if status != nil {
			*status = statusFailed
		}
	}
}

//export vst3host_load
func vst3host_load(path *C.char) (handle C.vst3host_handle_t) {
	defer recoverPanic("load", nil)
	setup()

	if path == nil {
		setLoadError("nil path")
		return 0
	}
	p, err := host.Load(C.GoString(path), host.WithOptions(options))
	if err != nil {
		setLoadError(err.Error())
		return 0
	}
	return C.vst3host_handle_t(registerInstance(&instance{plugin: p}))
}

//export vst3host_unload
func vst3host_unload(handle C.vst3host_handle_t) {
	defer recoverPanic("unload", nil)

	inst := unregisterInstance(uintptr(handle))
	if inst == nil {
		return
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	inst.plugin.Destroy()
	inst.inputs, inst.outputs = nil, nil
}

// vst3host_last_error returns the last error recorded for handle, or the
// last load failure for handle 0. NULL when there is none.
//
//export vst3host_last_error
func vst3host_last_error(handle C.vst3host_handle_t) *C.char {
	var msg string
	if handle == 0 {
		loadErrMu.Lock()
		msg = loadErr
		loadErrMu.Unlock()
	} else if inst := getInstance(uintptr(handle)); inst != nil {
		msg = inst.lastError()
	}
	if msg == "" {
		return nil
	}
	return C.CString(msg)
}

//export vst3host_free_string
func vst3host_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

//export vst3host_show_editor
func vst3host_show_editor(handle C.vst3host_handle_t, window C.uintptr_t, width, height *C.int32_t) (status C.int32_t) {
	defer recoverPanic("show_editor", &status)

	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	w, h, err := inst.plugin.ShowEditor(uintptr(window))
	if err != nil {
		return C.int32_t(inst.fail(err))
	}
	if width != nil {
		*width = C.int32_t(w)
	}
	if height != nil {
		*height = C.int32_t(h)
	}
	return statusOK
}

//export vst3host_hide_editor
func vst3host_hide_editor(handle C.vst3host_handle_t) {
	defer recoverPanic("hide_editor", nil)

	if inst := getInstance(uintptr(handle)); inst != nil {
		inst.plugin.HideEditor()
	}
}

//export vst3host_descriptor
func vst3host_descriptor(handle C.vst3host_handle_t, out *C.vst3host_descriptor_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if out == nil {
		return statusInvalidArgument
	}
	d := inst.plugin.Descriptor()
	out.name = C.CString(d.Name)
	out.vendor = C.CString(d.Vendor)
	out.version = C.CString(d.Version)
	out.id = C.CString(d.ID)
	out.latency = C.uint32_t(d.Latency)
	return statusOK
}

//export vst3host_free_descriptor
func vst3host_free_descriptor(d *C.vst3host_descriptor_t) {
	if d == nil {
		return
	}
	C.free(unsafe.Pointer(d.name))
	C.free(unsafe.Pointer(d.vendor))
	C.free(unsafe.Pointer(d.version))
	C.free(unsafe.Pointer(d.id))
	*d = C.vst3host_descriptor_t{}
}

//export vst3host_io_config
func vst3host_io_config(handle C.vst3host_handle_t, out *C.vst3host_io_config_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if out == nil {
		return statusInvalidArgument
	}
	io := inst.plugin.IOConfig()
	out.audio_inputs, out.num_audio_inputs = cInt32s(io.AudioInputs)
	out.audio_outputs, out.num_audio_outputs = cInt32s(io.AudioOutputs)
	out.event_inputs = C.int32_t(io.EventInputs)
	out.event_outputs = C.int32_t(io.EventOutputs)
	return statusOK
}

//export vst3host_free_io_config
func vst3host_free_io_config(c *C.vst3host_io_config_t) {
	if c == nil {
		return
	}
	C.free(unsafe.Pointer(c.audio_inputs))
	C.free(unsafe.Pointer(c.audio_outputs))
	*c = C.vst3host_io_config_t{}
}

//export vst3host_parameter_count
func vst3host_parameter_count(handle C.vst3host_handle_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return 0
	}
	return C.int32_t(inst.plugin.ParameterCount())
}

// vst3host_parameter fills out for id. An id the plugin does not report
// yields a zeroed descriptor with empty strings and VST3HOST_OK.
//
//export vst3host_parameter
func vst3host_parameter(handle C.vst3host_handle_t, id C.uint32_t, out *C.vst3host_parameter_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if out == nil {
		return statusInvalidArgument
	}
	d := inst.plugin.Parameter(uint32(id))
	out.id = C.uint32_t(d.ID)
	out.index = C.int32_t(d.Index)
	out.name = C.CString(d.Name)
	out.value = C.double(d.Value)
	out.formatted = C.CString(d.Formatted)
	out.flags = C.uint32_t(d.Flags)
	return statusOK
}

//export vst3host_free_parameter
func vst3host_free_parameter(p *C.vst3host_parameter_t) {
	if p == nil {
		return
	}
	C.free(unsafe.Pointer(p.name))
	C.free(unsafe.Pointer(p.formatted))
	*p = C.vst3host_parameter_t{}
}

// vst3host_set_param_from_ui queues a value for the processor's next block.
// Returns 0 when the queue is full.
//
//export vst3host_set_param_from_ui
func vst3host_set_param_from_ui(handle C.vst3host_handle_t, id C.uint32_t, value C.double) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return 0
	}
	if inst.plugin.SetParameterFromUI(uint32(id), float64(value)) {
		return 1
	}
	return 0
}

//export vst3host_set_param_in_controller
func vst3host_set_param_in_controller(handle C.vst3host_handle_t, id C.uint32_t, value C.double) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	return C.int32_t(inst.fail(inst.plugin.SetParameterInController(uint32(id), float64(value))))
}

//export vst3host_get_state
func vst3host_get_state(handle C.vst3host_handle_t, data **C.uint8_t, size *C.size_t) (status C.int32_t) {
	defer recoverPanic("get_state", &status)

	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if data == nil || size == nil {
		return statusInvalidArgument
	}

	blob, err := inst.plugin.State()
	if err != nil {
		return C.int32_t(inst.fail(err))
	}
	defer blob.Release()

	*data = (*C.uint8_t)(C.CBytes(blob.Bytes()))
	*size = C.size_t(blob.Len())
	return statusOK
}

//export vst3host_free_state
func vst3host_free_state(data *C.uint8_t) {
	C.free(unsafe.Pointer(data))
}

//export vst3host_set_state
func vst3host_set_state(handle C.vst3host_handle_t, data *C.uint8_t, size C.size_t) (status C.int32_t) {
	defer recoverPanic("set_state", &status)

	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if data == nil && size > 0 {
		return statusInvalidArgument
	}
	return C.int32_t(inst.fail(inst.plugin.SetState(C.GoBytes(unsafe.Pointer(data), C.int(size)))))
}

//export vst3host_set_processing
func vst3host_set_processing(handle C.vst3host_handle_t, on C.int32_t) (status C.int32_t) {
	defer recoverPanic("set_processing", &status)

	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	return C.int32_t(inst.fail(inst.plugin.SetProcessing(on != 0)))
}

// vst3host_process runs one block. inputs and outputs hold one array of
// channel pointers per bus, with the channel counts of vst3host_io_config.
// A NULL bus array leaves that bus unbound.
//
//export vst3host_process
func vst3host_process(handle C.vst3host_handle_t, ctx *C.vst3host_context_t,
	inputs ***C.float, numInputs C.int32_t,
	outputs ***C.float, numOutputs C.int32_t,
	events *C.vst3host_host_event_t, numEvents C.int32_t) (status C.int32_t) {
	defer recoverPanic("process", &status)

	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if ctx == nil || ctx.block_size < 0 {
		return statusInvalidArgument
	}

	details := goDetails(ctx)
	io := inst.plugin.IOConfig()

	inst.mu.Lock()
	defer inst.mu.Unlock()

	var ok bool
	if inst.inputs, ok = bindBuses(inst.inputs, unsafe.Pointer(inputs), int(numInputs), io.AudioInputs, details.BlockSize); !ok {
		return statusInvalidArgument
	}
	if inst.outputs, ok = bindBuses(inst.outputs, unsafe.Pointer(outputs), int(numOutputs), io.AudioOutputs, details.BlockSize); !ok {
		return statusInvalidArgument
	}

	return C.int32_t(inst.fail(inst.plugin.Process(details, inst.inputs, inst.outputs, goHostEvents(events, numEvents))))
}

// vst3host_queue_event queues events for the next block and returns how
// many were accepted.
//
//export vst3host_queue_event
func vst3host_queue_event(handle C.vst3host_handle_t, events *C.vst3host_host_event_t, numEvents C.int32_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return 0
	}
	return C.int32_t(inst.plugin.QueueEvents(goHostEvents(events, numEvents)...))
}

// vst3host_poll_events drains every pending plugin event into a malloc'd
// array released with vst3host_free_events. *events is NULL when none are
// pending.
//
//export vst3host_poll_events
func vst3host_poll_events(handle C.vst3host_handle_t, events **C.vst3host_plugin_event_t, count *C.int32_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return statusInvalidHandle
	}
	if events == nil || count == nil {
		return statusInvalidArgument
	}
	*events, *count = cPluginEvents(inst.plugin.Events())
	return statusOK
}

//export vst3host_free_events
func vst3host_free_events(events *C.vst3host_plugin_event_t) {
	C.free(unsafe.Pointer(events))
}

//export vst3host_sync_controller
func vst3host_sync_controller(handle C.vst3host_handle_t) C.int32_t {
	inst := getInstance(uintptr(handle))
	if inst == nil {
		return 0
	}
	return C.int32_t(inst.plugin.SyncController())
}

func setLoadError(msg string) {
	loadErrMu.Lock()
	loadErr = msg
	loadErrMu.Unlock()
}

func main() {}
