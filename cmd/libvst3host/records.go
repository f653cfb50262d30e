package main

import (
	"unsafe"

	"gitlab.com/gomidi/midi/v2"

	"github.com/justyntemme/vst3host/pkg/event"
)

// Host event kinds, mirrored by VST3HOST_HOST_EVENT_*
const (
	hostEventMidi      = 0
	hostEventParameter = 1
)

// Plugin event kinds, mirrored by VST3HOST_EVENT_*
const (
	pluginEventParameter     = 0
	pluginEventLatency       = 1
	pluginEventWindowResized = 2
	pluginEventDisplayUpdate = 3
	pluginEventIOChanged     = 4
)

// hostRecord is the Go view of a vst3host_host_event_t.
type hostRecord struct {
	kind        int32
	blockOffset int32
	ppqTime     float64
	midi        [3]byte
	paramID     uint32
	paramValue  float64
}

// hostEvent converts r, reporting false for an unknown kind.
func (r hostRecord) hostEvent() (event.HostEvent, bool) {
	switch r.kind {
	case hostEventMidi:
		return event.NewMidi(midi.Message(r.midi[:]), r.blockOffset, r.ppqTime), true
	case hostEventParameter:
		e := event.SetParameter(r.paramID, r.paramValue, r.blockOffset)
		e.PPQTime = r.ppqTime
		return e, true
	}
	return event.HostEvent{}, false
}

// pluginRecord is the Go view of a vst3host_plugin_event_t.
type pluginRecord struct {
	kind         int32
	paramID      uint32
	paramIndex   int32
	currentValue float64
	initialValue float64
	endEdit      int32
	latency      uint32
	width        int32
	height       int32
}

func recordOf(e event.PluginEvent) pluginRecord {
	var r pluginRecord
	switch e := e.(type) {
	case event.ParameterUpdate:
		r.kind = pluginEventParameter
		r.paramID = e.ID
		r.paramIndex = e.Index
		r.currentValue = e.Current
		r.initialValue = e.Initial
		if e.EndEdit {
			r.endEdit = 1
		}
	case event.LatencyChanged:
		r.kind = pluginEventLatency
		r.latency = e.Samples
	case event.WindowResized:
		r.kind = pluginEventWindowResized
		r.width = e.Width
		r.height = e.Height
	case event.DisplayUpdate:
		r.kind = pluginEventDisplayUpdate
	case event.IOChanged:
		r.kind = pluginEventIOChanged
	}
	return r
}

// bindBuses points dst at caller memory without copying samples. src is a
// C array of numBuses bus pointers, each an array of channel pointers with
// the counts in channels. Bus headers are reused between calls. A NULL bus
// is left unbound, a NULL channel pointer on a present bus is rejected.
func bindBuses(dst [][][]float32, src unsafe.Pointer, numBuses int, channels []int32, n int) ([][][]float32, bool) {
	count := min(numBuses, len(channels))
	if src == nil || count <= 0 {
		return dst[:0], true
	}

	if cap(dst) < count {
		dst = make([][][]float32, count)
	}
	dst = dst[:count]

	buses := unsafe.Slice((*unsafe.Pointer)(src), count)
	for b := range dst {
		if buses[b] == nil {
			dst[b] = dst[b][:0]
			continue
		}
		chans := int(channels[b])
		if cap(dst[b]) < chans {
			dst[b] = make([][]float32, chans)
		}
		dst[b] = dst[b][:chans]

		ptrs := unsafe.Slice((*unsafe.Pointer)(buses[b]), chans)
		for c := range dst[b] {
			if ptrs[c] == nil {
				return dst, false
			}
			dst[b][c] = unsafe.Slice((*float32)(ptrs[c]), n)
		}
	}
	return dst, true
}
