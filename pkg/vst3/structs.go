package vst3

// ProcessSetup contains audio processing configuration
type ProcessSetup struct {
	ProcessMode        ProcessMode
	SymbolicSampleSize SymbolicSampleSize
	MaxSamplesPerBlock int32
	SampleRate         float64
}

// ParameterInfo describes a parameter
type ParameterInfo struct {
	ID           ParamID
	Title        string
	ShortTitle   string
	Units        string
	StepCount    int32
	DefaultValue float64
	UnitID       int32
	Flags        int32
}

// BusInfo describes a bus
type BusInfo struct {
	MediaType    MediaType
	Direction    BusDirection
	ChannelCount int32
	Name         string
	BusType      BusType
	Flags        uint32
}

// ClassInfo describes one class exported by a plugin factory.
type ClassInfo struct {
	ID            TUID
	Name          string
	Category      string
	Vendor        string
	Version       string
	SubCategories string
}

// ViewRect is an editor view rectangle in pixels.
type ViewRect struct {
	Left, Top, Right, Bottom int32
}

// Width of the rectangle
func (r ViewRect) Width() int32 { return r.Right - r.Left }

// Height of the rectangle
func (r ViewRect) Height() int32 { return r.Bottom - r.Top }

// Chord information carried by the process context.
type Chord struct {
	KeyNote   uint8
	RootNote  uint8
	ChordMask int16
}

// ProcessContext carries transport information for one block.
type ProcessContext struct {
	State uint32

	SampleRate           float64
	ProjectTimeSamples   TSamples
	SystemTime           int64
	ContinousTimeSamples TSamples

	ProjectTimeMusic TQuarterNotes
	BarPositionMusic TQuarterNotes
	CycleStartMusic  TQuarterNotes
	CycleEndMusic    TQuarterNotes

	Tempo              float64
	TimeSigNumerator   int32
	TimeSigDenominator int32

	Chord Chord

	SmpteOffsetSubframes int32
	FrameRate            FrameRate
	SamplesToNextClock   int32
}

// FrameRate of the SMPTE offset.
type FrameRate struct {
	FramesPerSecond uint32
	Flags           uint32
}

// AudioBusBuffers binds one bus to the caller's channel slices for a block.
type AudioBusBuffers struct {
	NumChannels      int32
	SilenceFlags     uint64
	ChannelBuffers32 [][]float32
}
