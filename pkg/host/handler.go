package host

import (
	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/param"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// componentHandler is the IComponentHandler installed on the controller.
// Edit gestures go through the embedded synchronizer; restart requests are
// mapped to plugin events.
type componentHandler struct {
	*param.EditSynchronizer
	plugin *Plugin
}

var _ vst3.IComponentHandler = (*componentHandler)(nil)

// RestartComponent implements vst3.IComponentHandler.
func (h *componentHandler) RestartComponent(flags vst3.RestartFlags) error {
	for _, e := range event.Restart(flags, h.plugin.processor.GetLatencySamples) {
		h.plugin.notify(e)
	}
	return nil
}

// notify hands a plugin event to the outbox. A full outbox drops the event.
// Only the first drop of an overflow is logged; Outbox.Dropped carries the
// running count.
func (p *Plugin) notify(e event.PluginEvent) {
	if p.outbox.Send(e) {
		p.overflow.Store(false)
		return
	}
	if p.overflow.CompareAndSwap(false, true) {
		p.log.Warn("plugin events dropped, outbox full",
			zap.Int("capacity", cap(p.outbox.Events())),
			zap.Uint64("dropped", p.outbox.Dropped()),
		)
	}
}
