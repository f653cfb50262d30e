// Package vst3 describes the binary boundary between the host and a VST3
// plugin: result codes, bus and speaker constants, the per-block process
// structures and the interfaces each side implements.
package vst3

import (
	"encoding/hex"
	"fmt"
)

// Result mirrors Steinberg::tresult.
type Result int32

// Result codes
const (
	ResultOK             Result = 0
	ResultTrue           Result = ResultOK
	ResultFalse          Result = 1
	ResultInvalidArg     Result = 2
	ResultNotImplemented Result = 3
	ResultInternalError  Result = 4
	ResultNotInitialized Result = 5
	ResultOutOfMemory    Result = 6
	ResultNoInterface    Result = -1
)

func (r Result) Error() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultFalse:
		return "false"
	case ResultInvalidArg:
		return "invalid argument"
	case ResultNotImplemented:
		return "not implemented"
	case ResultInternalError:
		return "internal error"
	case ResultNotInitialized:
		return "not initialized"
	case ResultOutOfMemory:
		return "out of memory"
	case ResultNoInterface:
		return "no interface"
	default:
		return fmt.Sprintf("result %d", int32(r))
	}
}

// Err returns nil for ResultOK and r otherwise.
func (r Result) Err() error {
	if r == ResultOK {
		return nil
	}
	return r
}

// Basic type aliases
type (
	ParamID       = uint32
	ParamValue    = float64
	Sample32      = float32
	TSamples      = int64
	TQuarterNotes = float64
)

// TUID is a 16 byte class or interface identifier.
type TUID [16]byte

// String returns the identifier as upper-case hex, the way class ids are
// printed by the SDK.
func (t TUID) String() string {
	buf := make([]byte, hex.EncodedLen(len(t)))
	hex.Encode(buf, t[:])
	for i, c := range buf {
		if c >= 'a' && c <= 'f' {
			buf[i] = c - 'a' + 'A'
		}
	}
	return string(buf)
}

// Class categories
const (
	CategoryAudioEffect         = "Audio Module Class"
	CategoryComponentController = "Component Controller Class"
)

// MediaType selects audio or event buses.
type MediaType int32

const (
	MediaTypeAudio MediaType = 0
	MediaTypeEvent MediaType = 1
)

func (m MediaType) String() string {
	if m == MediaTypeEvent {
		return "event"
	}
	return "audio"
}

// BusDirection selects input or output buses.
type BusDirection int32

const (
	BusDirectionInput  BusDirection = 0
	BusDirectionOutput BusDirection = 1
)

func (d BusDirection) String() string {
	if d == BusDirectionOutput {
		return "output"
	}
	return "input"
}

// BusType distinguishes main from auxiliary buses.
type BusType int32

const (
	BusTypeMain BusType = 0
	BusTypeAux  BusType = 1
)

// BusFlags
const (
	BusDefaultActive    uint32 = 1 << 0
	BusIsControlVoltage uint32 = 1 << 1
)

// SpeakerArrangement is a bitset of speakers.
type SpeakerArrangement uint64

// Common arrangements
const (
	SpeakerArrEmpty  SpeakerArrangement = 0
	SpeakerArrMono   SpeakerArrangement = 1 << 19
	SpeakerArrStereo SpeakerArrangement = 1<<0 | 1<<1
)

// ChannelCount returns the number of speakers set in the arrangement.
func (a SpeakerArrangement) ChannelCount() int {
	n := 0
	for v := uint64(a); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// ProcessMode of the per-block call.
type ProcessMode int32

const (
	ProcessModeRealtime ProcessMode = 0
	ProcessModePrefetch ProcessMode = 1
	ProcessModeOffline  ProcessMode = 2
)

func (m ProcessMode) String() string {
	switch m {
	case ProcessModeOffline:
		return "offline"
	case ProcessModePrefetch:
		return "prefetch"
	default:
		return "realtime"
	}
}

// SymbolicSampleSize selects 32 or 64 bit processing.
type SymbolicSampleSize int32

const (
	SampleSize32 SymbolicSampleSize = 0
	SampleSize64 SymbolicSampleSize = 1
)

// IoMode of the component.
type IoMode int32

const (
	IoModeSimple   IoMode = 0
	IoModeAdvanced IoMode = 1
)

// ProcessContext state bits
const (
	StatePlaying               uint32 = 1 << 1
	StateCycleActive           uint32 = 1 << 2
	StateRecording             uint32 = 1 << 3
	StateSystemTimeValid       uint32 = 1 << 8
	StateProjectTimeMusicValid uint32 = 1 << 9
	StateTempoValid            uint32 = 1 << 10
	StateBarPositionValid      uint32 = 1 << 11
	StateCycleValid            uint32 = 1 << 12
	StateTimeSigValid          uint32 = 1 << 13
	StateSmpteValid            uint32 = 1 << 14
	StateClockValid            uint32 = 1 << 15
	StateContTimeValid         uint32 = 1 << 17
	StateChordValid            uint32 = 1 << 18
)

// Parameter flags
const (
	ParameterCanAutomate     int32 = 1 << 0
	ParameterIsReadOnly      int32 = 1 << 1
	ParameterIsWrapAround    int32 = 1 << 2
	ParameterIsList          int32 = 1 << 3
	ParameterIsHidden        int32 = 1 << 4
	ParameterIsProgramChange int32 = 1 << 15
	ParameterIsBypass        int32 = 1 << 16
)

// RestartFlags passed to IComponentHandler.RestartComponent.
type RestartFlags int32

const (
	RestartReloadComponent            RestartFlags = 1 << 0
	RestartIoChanged                  RestartFlags = 1 << 1
	RestartParamValuesChanged         RestartFlags = 1 << 2
	RestartLatencyChanged             RestartFlags = 1 << 3
	RestartParamTitlesChanged         RestartFlags = 1 << 4
	RestartMidiCCAssignmentChanged    RestartFlags = 1 << 5
	RestartNoteExpressionChanged      RestartFlags = 1 << 6
	RestartIoTitlesChanged            RestartFlags = 1 << 7
	RestartPrefetchableSupportChanged RestartFlags = 1 << 8
	RestartRoutingInfoChanged         RestartFlags = 1 << 9
	RestartKeyswitchChanged           RestartFlags = 1 << 10
)

// PlatformType names the native window handle kind an editor view attaches to.
type PlatformType string

const (
	PlatformTypeHWND             PlatformType = "HWND"
	PlatformTypeNSView           PlatformType = "NSView"
	PlatformTypeX11EmbedWindowID PlatformType = "X11EmbedWindowID"
)

// Editor view names
const (
	ViewTypeEditor = "editor"
)
