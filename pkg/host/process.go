package host

import (
	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/process"
)

// Process runs one block. inputs and outputs are per bus, per channel sample
// slices of details.BlockSize samples; outputs are written in place. Events
// queued with QueueEvents are delivered ahead of events.
//
// A failed block is logged and returned as a process phase error; the next
// call proceeds normally.
func (p *Plugin) Process(details process.Details, inputs, outputs [][][]float32, events []event.HostEvent) error {
	if p.Lifecycle() < StateBusesConfigured || p.data == nil {
		return errors.New(errors.PhaseProcess, errors.KindNotActive).
			Detail("plugin is %s", p.Lifecycle()).Build()
	}
	data := p.data

	data.Bind(inputs, outputs, int32(details.BlockSize))
	data.ProcessMode = details.Fill(data.ProcessContext)

	p.scratch = p.pending.TakeInto(p.scratch[:0])
	p.scratch = append(p.scratch, events...)

	st := event.Translate(p.scratch, p.eventsIn, data.InputParameterChanges)
	if st.Dropped > 0 {
		p.log.Warn("parameter automation dropped, no room in parameter changes",
			zap.Int("dropped", st.Dropped),
			zap.Int("capacity", data.InputParameterChanges.Capacity()),
		)
	}
	if st.Params > 0 {
		for i := range p.scratch {
			if u, ok := p.scratch[i].Payload.(event.ParameterUpdate); ok {
				p.updates.push(u.ID, u.Current, true)
			}
		}
	}

	data.OutputParameterChanges.Clear()
	if data.OutputEvents != nil {
		data.OutputEvents.Clear()
	}

	err := p.processor.Process(data)

	if p.eventsIn != nil {
		p.eventsIn.Clear()
	}
	data.InputParameterChanges.Clear()
	clear(p.scratch)
	p.scratch = p.scratch[:0]

	if err != nil {
		perr := errors.New(errors.PhaseProcess, errors.KindProcessFailed).
			Path(p.path).Cause(err).Build()
		p.log.Warn("process call failed", zap.Error(perr), zap.Int("block_size", details.BlockSize))
		return perr
	}

	event.OutputUpdates(data.OutputParameterChanges, p.indices, p.emitOut)
	return nil
}

// outputUpdate forwards a processor-side parameter change to the consumer
// and schedules it for the controller.
func (p *Plugin) outputUpdate(e event.PluginEvent) {
	if u, ok := e.(event.ParameterUpdate); ok {
		p.updates.push(u.ID, u.Current, false)
	}
	p.notify(e)
}
