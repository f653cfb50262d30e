package inproc

import (
	"sync"

	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// Controller is the edit half of an in-process plugin. It keeps its own
// parameter registry, mirrored from the component's state by the host.
type Controller struct {
	params *param.Registry
	state  *StateManager

	mu      sync.Mutex
	handler vst3.IComponentHandler
	peer    vst3.IConnectionPoint
	view    *View
}

var (
	_ vst3.IEditController  = (*Controller)(nil)
	_ vst3.IConnectionPoint = (*Controller)(nil)
)

// NewController creates a controller over params.
func NewController(params *param.Registry) *Controller {
	if params == nil {
		params = param.NewRegistry()
	}
	return &Controller{
		params: params,
		state:  NewStateManager(params),
	}
}

// Initialize implements IPluginBase.
func (c *Controller) Initialize(host vst3.IHostApplication) error {
	return nil
}

// Terminate implements IPluginBase.
func (c *Controller) Terminate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = nil
	c.peer = nil
	return nil
}

// SetComponentState implements IEditController.
func (c *Controller) SetComponentState(state vst3.IBStream) error {
	return c.state.Load(state)
}

// SetState implements IEditController. The controller has no state of its own.
func (c *Controller) SetState(state vst3.IBStream) error {
	return nil
}

// GetState implements IEditController.
func (c *Controller) GetState(state vst3.IBStream) error {
	return nil
}

// GetParameterCount implements IEditController.
func (c *Controller) GetParameterCount() int32 {
	return c.params.Count()
}

// GetParameterInfo implements IEditController.
func (c *Controller) GetParameterInfo(index int32) (vst3.ParameterInfo, error) {
	p := c.params.GetByIndex(index)
	if p == nil {
		return vst3.ParameterInfo{}, vst3.ResultInvalidArg
	}
	return p.Info(), nil
}

// GetParamStringByValue implements IEditController.
func (c *Controller) GetParamStringByValue(id vst3.ParamID, value vst3.ParamValue) (string, error) {
	p := c.params.Get(id)
	if p == nil {
		return "", vst3.ResultInvalidArg
	}
	return p.FormatValue(value), nil
}

// GetParamValueByString implements IEditController.
func (c *Controller) GetParamValueByString(id vst3.ParamID, str string) (vst3.ParamValue, error) {
	p := c.params.Get(id)
	if p == nil {
		return 0, vst3.ResultInvalidArg
	}
	return p.ParseValue(str)
}

// NormalizedParamToPlain implements IEditController.
func (c *Controller) NormalizedParamToPlain(id vst3.ParamID, normalized vst3.ParamValue) vst3.ParamValue {
	if p := c.params.Get(id); p != nil {
		return p.Denormalize(normalized)
	}
	return normalized
}

// PlainParamToNormalized implements IEditController.
func (c *Controller) PlainParamToNormalized(id vst3.ParamID, plain vst3.ParamValue) vst3.ParamValue {
	if p := c.params.Get(id); p != nil {
		return p.Normalize(plain)
	}
	return plain
}

// GetParamNormalized implements IEditController.
func (c *Controller) GetParamNormalized(id vst3.ParamID) vst3.ParamValue {
	return c.params.Value(id)
}

// SetParamNormalized implements IEditController.
func (c *Controller) SetParamNormalized(id vst3.ParamID, value vst3.ParamValue) error {
	p := c.params.Get(id)
	if p == nil {
		return vst3.ResultInvalidArg
	}
	p.SetValue(value)
	return nil
}

// SetComponentHandler implements IEditController.
func (c *Controller) SetComponentHandler(handler vst3.IComponentHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
	return nil
}

func (c *Controller) componentHandler() vst3.IComponentHandler {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler
}

// CreateView implements IEditController. Only the editor view exists.
func (c *Controller) CreateView(name string) vst3.IPlugView {
	if name != vst3.ViewTypeEditor {
		return nil
	}
	v := NewView(400, 300)
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	return v
}

// View returns the last view created, nil before CreateView.
func (c *Controller) View() *View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Edit performs a complete gesture on id as a user moving a control would:
// begin, one perform per value, end.
func (c *Controller) Edit(id vst3.ParamID, values ...vst3.ParamValue) error {
	h := c.componentHandler()
	if h == nil {
		return vst3.ResultNotInitialized
	}
	if c.params.Get(id) == nil {
		return vst3.ResultInvalidArg
	}

	if err := h.BeginEdit(id); err != nil {
		return err
	}
	for _, v := range values {
		if err := c.SetParamNormalized(id, v); err != nil {
			return err
		}
		if err := h.PerformEdit(id, c.params.Value(id)); err != nil {
			return err
		}
	}
	return h.EndEdit(id)
}

// RequestRestart forwards flags to the host.
func (c *Controller) RequestRestart(flags vst3.RestartFlags) error {
	h := c.componentHandler()
	if h == nil {
		return vst3.ResultNotInitialized
	}
	return h.RestartComponent(flags)
}

// Connect implements IConnectionPoint.
func (c *Controller) Connect(other vst3.IConnectionPoint) error {
	if other == nil {
		return vst3.ResultInvalidArg
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peer = other
	return nil
}

// Disconnect implements IConnectionPoint.
func (c *Controller) Disconnect(other vst3.IConnectionPoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer != other {
		return vst3.ResultInvalidArg
	}
	c.peer = nil
	return nil
}

// Notify implements IConnectionPoint.
func (c *Controller) Notify(message *vst3.Message) error {
	if message == nil {
		return vst3.ResultInvalidArg
	}
	switch message.ID {
	case MessageLatency:
		return c.RequestRestart(vst3.RestartLatencyChanged)
	}
	return nil
}
