package vst3

// ProcessData is everything handed to IAudioProcessor.Process for one block.
// The host keeps one instance per plugin and rebinds the buffers every call.
type ProcessData struct {
	ProcessMode        ProcessMode
	SymbolicSampleSize SymbolicSampleSize
	NumSamples         int32

	Inputs  []AudioBusBuffers
	Outputs []AudioBusBuffers

	InputParameterChanges  *ParameterChanges
	OutputParameterChanges *ParameterChanges

	InputEvents  *EventList
	OutputEvents *EventList

	ProcessContext *ProcessContext
}

// NewProcessData allocates bus bindings for the given channel counts.
func NewProcessData(inputChannels, outputChannels []int32, paramCapacity int) *ProcessData {
	d := &ProcessData{
		SymbolicSampleSize:     SampleSize32,
		Inputs:                 make([]AudioBusBuffers, len(inputChannels)),
		Outputs:                make([]AudioBusBuffers, len(outputChannels)),
		InputParameterChanges:  NewParameterChanges(paramCapacity),
		OutputParameterChanges: NewParameterChanges(paramCapacity),
		InputEvents:            NewEventList(),
		OutputEvents:           NewEventList(),
		ProcessContext:         &ProcessContext{},
	}
	for i, n := range inputChannels {
		d.Inputs[i].NumChannels = n
	}
	for i, n := range outputChannels {
		d.Outputs[i].NumChannels = n
	}
	return d
}

// Bind points every bus at the caller's slices for this block. Buses the
// caller did not supply are bound to nil so no stale slice from a previous
// block survives.
func (d *ProcessData) Bind(inputs, outputs [][][]float32, numSamples int32) {
	d.NumSamples = numSamples
	bindBuses(d.Inputs, inputs)
	bindBuses(d.Outputs, outputs)
}

func bindBuses(buses []AudioBusBuffers, bufs [][][]float32) {
	for i := range buses {
		if i < len(bufs) {
			buses[i].ChannelBuffers32 = bufs[i]
		} else {
			buses[i].ChannelBuffers32 = nil
		}
	}
}

// Channel returns a channel slice of a bus or nil when out of range.
func (b *AudioBusBuffers) Channel(index int) []float32 {
	if index < 0 || index >= len(b.ChannelBuffers32) {
		return nil
	}
	return b.ChannelBuffers32[index]
}
