package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

var streamPool = sync.Pool{
	New: func() any {
		return vst3.NewMemoryStream(make([]byte, 0, 4096))
	},
}

// Blob is a state buffer owned by the caller until Release.
type Blob struct {
	stream *vst3.MemoryStream
}

// Bytes returns the state. The slice is only valid until Release.
func (b *Blob) Bytes() []byte {
	if b == nil || b.stream == nil {
		return nil
	}
	return b.stream.Bytes()
}

// Len returns the state size in bytes.
func (b *Blob) Len() int {
	if b == nil || b.stream == nil {
		return 0
	}
	return b.stream.Len()
}

// Release returns the buffer to the pool. Bytes returns nil afterwards.
func (b *Blob) Release() {
	if b == nil || b.stream == nil {
		return
	}
	b.stream.Reset()
	streamPool.Put(b.stream)
	b.stream = nil
}

func (p *Plugin) checkStateAccess() error {
	switch p.Lifecycle() {
	case StateUnloaded:
		return errors.ErrReleased
	case StateProcessing:
		return errors.ErrProcessingActive
	}
	return nil
}

// State reads the processor state.
func (p *Plugin) State() (*Blob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkStateAccess(); err != nil {
		return nil, err
	}

	s := streamPool.Get().(*vst3.MemoryStream)
	s.Reset()
	if err := p.component.GetState(s); err != nil {
		s.Reset()
		streamPool.Put(s)
		serr := errors.State(errors.KindReadFailed, "processor", err)
		p.log.Warn("get state failed", zap.Error(serr))
		return nil, serr
	}
	return &Blob{stream: s}, nil
}

// SetState restores a state read by State. The processor is written first;
// the controller is updated from the same bytes only when that succeeds.
//
// A controller failure after a successful processor write is returned but
// not rolled back, so the controller may show stale values until the next
// successful SetState.
func (p *Plugin) SetState(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkStateAccess(); err != nil {
		return err
	}

	s := vst3.NewMemoryStream(data)
	if err := p.component.SetState(s); err != nil {
		serr := errors.State(errors.KindWriteFailed, "processor", err)
		p.log.Warn("set state failed", zap.Error(serr), zap.Int("size", len(data)))
		return serr
	}

	s.Rewind()
	if err := p.controller.SetComponentState(s); err != nil {
		serr := errors.State(errors.KindWriteFailed, "controller", err)
		p.log.Warn("processor state applied but controller rejected it",
			zap.Error(serr), zap.Int("size", len(data)))
		return serr
	}

	p.notify(event.DisplayUpdate{})
	return nil
}
