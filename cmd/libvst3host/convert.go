package main

// #include <stdlib.h>
// #include "vst3host.h"
import "C"
import (
	"unsafe"

	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/process"
)

// cInt32s copies v into a malloc'd array.
func cInt32s(v []int32) (*C.int32_t, C.int32_t) {
	if len(v) == 0 {
		return nil, 0
	}
	p := (*C.int32_t)(C.malloc(C.size_t(len(v)) * C.size_t(unsafe.Sizeof(C.int32_t(0)))))
	copy(unsafe.Slice((*int32)(unsafe.Pointer(p)), len(v)), v)
	return p, C.int32_t(len(v))
}

func goDetails(ctx *C.vst3host_context_t) process.Details {
	return process.Details{
		SampleRate:         float64(ctx.sample_rate),
		BlockSize:          int(ctx.block_size),
		Tempo:              float64(ctx.tempo),
		PlayerTime:         float64(ctx.player_time),
		TimeSigNumerator:   int32(ctx.time_sig_numerator),
		TimeSigDenominator: int32(ctx.time_sig_denominator),
		CycleEnabled:       ctx.cycle_enabled != 0,
		CycleStart:         float64(ctx.cycle_start),
		CycleEnd:           float64(ctx.cycle_end),
		PlayingState:       process.PlayingState(ctx.playing_state),
		BarStartPos:        float64(ctx.bar_start_pos),
		Nanos:              int64(ctx.nanos),
	}
}

func goHostEvents(events *C.vst3host_host_event_t, n C.int32_t) []event.HostEvent {
	if events == nil || n <= 0 {
		return nil
	}
	out := make([]event.HostEvent, 0, n)
	for _, e := range unsafe.Slice(events, int(n)) {
		r := hostRecord{
			kind:        int32(e.kind),
			blockOffset: int32(e.block_offset),
			ppqTime:     float64(e.ppq_time),
			midi:        [3]byte{byte(e.midi[0]), byte(e.midi[1]), byte(e.midi[2])},
			paramID:     uint32(e.param_id),
			paramValue:  float64(e.param_value),
		}
		if he, ok := r.hostEvent(); ok {
			out = append(out, he)
		}
	}
	return out
}

// cPluginEvents copies events into a malloc'd array.
func cPluginEvents(events []event.PluginEvent) (*C.vst3host_plugin_event_t, C.int32_t) {
	if len(events) == 0 {
		return nil, 0
	}
	size := C.size_t(len(events)) * C.size_t(unsafe.Sizeof(C.vst3host_plugin_event_t{}))
	p := (*C.vst3host_plugin_event_t)(C.malloc(size))
	out := unsafe.Slice(p, len(events))

	for i, e := range events {
		r := recordOf(e)
		out[i] = C.vst3host_plugin_event_t{
			kind:          C.int32_t(r.kind),
			param_id:      C.uint32_t(r.paramID),
			param_index:   C.int32_t(r.paramIndex),
			current_value: C.double(r.currentValue),
			initial_value: C.double(r.initialValue),
			end_edit:      C.int32_t(r.endEdit),
			latency:       C.uint32_t(r.latency),
			width:         C.int32_t(r.width),
			height:        C.int32_t(r.height),
		}
	}
	return p, C.int32_t(len(events))
}
