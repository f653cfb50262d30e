package vst3

import "io"

// IBStream is the byte stream used for state transfer.
type IBStream interface {
	io.Reader
	io.Writer
	io.Seeker
}

// IHostApplication is implemented by the host and passed to Initialize.
type IHostApplication interface {
	GetName() string
}

// IPluginBase is the common base of component and controller.
type IPluginBase interface {
	Initialize(context IHostApplication) error
	Terminate() error
}

// IComponent represents the main plugin component interface
type IComponent interface {
	IPluginBase

	GetControllerClassID() TUID
	SetIOMode(mode IoMode) error
	GetBusCount(mediaType MediaType, direction BusDirection) int32
	GetBusInfo(mediaType MediaType, direction BusDirection, index int32) (BusInfo, error)
	ActivateBus(mediaType MediaType, direction BusDirection, index int32, state bool) error
	SetActive(state bool) error
	SetState(state IBStream) error
	GetState(state IBStream) error
}

// IAudioProcessor represents the audio processing interface
type IAudioProcessor interface {
	SetBusArrangements(inputs, outputs []SpeakerArrangement) error
	GetBusArrangement(direction BusDirection, index int32) (SpeakerArrangement, error)
	CanProcessSampleSize(size SymbolicSampleSize) error
	GetLatencySamples() uint32
	SetupProcessing(setup *ProcessSetup) error
	SetProcessing(state bool) error
	Process(data *ProcessData) error
	GetTailSamples() uint32
}

// IEditController represents the parameter control interface
type IEditController interface {
	IPluginBase

	SetComponentState(state IBStream) error
	SetState(state IBStream) error
	GetState(state IBStream) error
	GetParameterCount() int32
	GetParameterInfo(index int32) (ParameterInfo, error)
	GetParamStringByValue(id ParamID, value ParamValue) (string, error)
	GetParamValueByString(id ParamID, str string) (ParamValue, error)
	NormalizedParamToPlain(id ParamID, normalized ParamValue) ParamValue
	PlainParamToNormalized(id ParamID, plain ParamValue) ParamValue
	GetParamNormalized(id ParamID) ParamValue
	SetParamNormalized(id ParamID, value ParamValue) error
	SetComponentHandler(handler IComponentHandler) error
	CreateView(name string) IPlugView
}

// IComponentHandler is implemented by the host and receives edit gestures
// and restart requests from the controller.
type IComponentHandler interface {
	BeginEdit(id ParamID) error
	PerformEdit(id ParamID, valueNormalized ParamValue) error
	EndEdit(id ParamID) error
	RestartComponent(flags RestartFlags) error
}

// Message passed between connection points.
type Message struct {
	ID         string
	Attributes map[string]any
}

// IConnectionPoint links processor and controller of a split plugin.
type IConnectionPoint interface {
	Connect(other IConnectionPoint) error
	Disconnect(other IConnectionPoint) error
	Notify(message *Message) error
}

// IPlugView is the plugin's editor view.
type IPlugView interface {
	IsPlatformTypeSupported(t PlatformType) error
	Attached(parent uintptr, t PlatformType) error
	Removed() error
	GetSize() (ViewRect, error)
	OnSize(rect ViewRect) error
	SetFrame(frame IPlugFrame) error
	Release()
}

// IPlugFrame is implemented by the host; the view calls ResizeView when it
// wants a new size.
type IPlugFrame interface {
	ResizeView(view IPlugView, rect ViewRect) error
}
