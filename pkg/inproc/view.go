package inproc

import (
	"sync"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

// View is a headless editor. It accepts every platform type and tracks its
// size and attachment so hosts can be exercised without a window system.
type View struct {
	mu       sync.Mutex
	rect     vst3.ViewRect
	frame    vst3.IPlugFrame
	parent   uintptr
	attached bool
	released bool
}

var _ vst3.IPlugView = (*View)(nil)

// NewView creates a view of the given size.
func NewView(width, height int32) *View {
	return &View{rect: vst3.ViewRect{Right: width, Bottom: height}}
}

// IsPlatformTypeSupported implements IPlugView.
func (v *View) IsPlatformTypeSupported(t vst3.PlatformType) error {
	switch t {
	case vst3.PlatformTypeHWND, vst3.PlatformTypeNSView, vst3.PlatformTypeX11EmbedWindowID:
		return nil
	}
	return vst3.ResultFalse
}

// Attached implements IPlugView.
func (v *View) Attached(parent uintptr, t vst3.PlatformType) error {
	if err := v.IsPlatformTypeSupported(t); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.attached || v.released {
		return vst3.ResultFalse
	}
	v.parent = parent
	v.attached = true
	return nil
}

// Removed implements IPlugView.
func (v *View) Removed() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.attached {
		return vst3.ResultFalse
	}
	v.attached = false
	v.parent = 0
	return nil
}

// IsAttached reports whether the view is in a window.
func (v *View) IsAttached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attached
}

// GetSize implements IPlugView.
func (v *View) GetSize() (vst3.ViewRect, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rect, nil
}

// OnSize implements IPlugView.
func (v *View) OnSize(rect vst3.ViewRect) error {
	if rect.Width() < 0 || rect.Height() < 0 {
		return vst3.ResultInvalidArg
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rect = rect
	return nil
}

// SetFrame implements IPlugView.
func (v *View) SetFrame(frame vst3.IPlugFrame) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame = frame
	return nil
}

// Release implements IPlugView.
func (v *View) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.released = true
	v.attached = false
	v.frame = nil
}

// IsReleased reports whether the host released the view.
func (v *View) IsReleased() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released
}

// ResizeTo asks the frame for a new size, as a plugin resizing its own
// window would. The view takes the size once the frame accepts it.
func (v *View) ResizeTo(width, height int32) error {
	v.mu.Lock()
	frame := v.frame
	rect := vst3.ViewRect{Left: v.rect.Left, Top: v.rect.Top}
	v.mu.Unlock()

	rect.Right = rect.Left + width
	rect.Bottom = rect.Top + height
	if frame == nil {
		return vst3.ResultNotInitialized
	}
	if err := frame.ResizeView(v, rect); err != nil {
		return err
	}
	return v.OnSize(rect)
}
