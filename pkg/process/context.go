package process

import "github.com/justyntemme/vst3host/pkg/vst3"

// ParamSource resolves normalized parameter values.
type ParamSource interface {
	Value(id uint32) float64
}

// Context is the plugin-side view of one block: the main bus channels, the
// transport and the parameter values, with zero allocations per block.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64
	Transport  *vst3.ProcessContext
	Events     []vst3.Event

	numSamples int
	workBuffer []float32
	params     ParamSource
	outParams  *vst3.ParameterChanges
}

// NewContext creates a context with a pre-allocated work buffer
func NewContext(maxBlockSize int, params ParamSource) *Context {
	return &Context{
		workBuffer: make([]float32, maxBlockSize),
		params:     params,
	}
}

// Bind points the context at bus 0 of data.
func (c *Context) Bind(data *vst3.ProcessData) {
	c.Input, c.Output = nil, nil
	if len(data.Inputs) > 0 {
		c.Input = data.Inputs[0].ChannelBuffers32
	}
	if len(data.Outputs) > 0 {
		c.Output = data.Outputs[0].ChannelBuffers32
	}
	c.numSamples = int(data.NumSamples)
	c.Transport = data.ProcessContext
	if c.Transport != nil && c.Transport.SampleRate > 0 {
		c.SampleRate = c.Transport.SampleRate
	}
	c.Events = nil
	if data.InputEvents != nil {
		c.Events = data.InputEvents.Events()
	}
	c.outParams = data.OutputParameterChanges
}

// ReportParam writes a processor-side parameter change for the host at the
// start of the block. It reports false when the host offers no room.
func (c *Context) ReportParam(id uint32, value float64) bool {
	if c.outParams == nil {
		return false
	}
	q, _, err := c.outParams.AddParameterData(id)
	if err != nil {
		return false
	}
	_, err = q.AddPoint(0, value)
	return err == nil
}

// Param returns the current value of a parameter (0-1 normalized)
func (c *Context) Param(id uint32) float64 {
	if c.params == nil {
		return 0
	}
	return c.params.Value(id)
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	return c.numSamples
}

// IsPlaying reports whether the host transport is running.
func (c *Context) IsPlaying() bool {
	return c.Transport != nil && c.Transport.State&vst3.StatePlaying != 0
}

// WorkBuffer returns the pre-allocated work buffer sized to the block
func (c *Context) WorkBuffer() []float32 {
	n := c.numSamples
	if n > len(c.workBuffer) {
		n = len(c.workBuffer)
	}
	return c.workBuffer[:n]
}

// ProcessChannels processes all available channels with the given function
func (c *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	for ch := 0; ch < c.NumChannels(); ch++ {
		n := min(c.numSamples, len(c.Input[ch]), len(c.Output[ch]))
		fn(ch, c.Input[ch][:n], c.Output[ch][:n])
	}
}

// NumChannels returns the minimum of input and output channels
func (c *Context) NumChannels() int {
	return min(len(c.Input), len(c.Output))
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	c.ProcessChannels(func(_ int, input, output []float32) {
		copy(output, input)
	})
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		clear(c.Output[ch][:min(c.numSamples, len(c.Output[ch]))])
	}
}
