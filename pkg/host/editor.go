package host

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/justyntemme/vst3host/pkg/errors"
	"github.com/justyntemme/vst3host/pkg/event"
	"github.com/justyntemme/vst3host/pkg/vst3"
)

// WindowAttacher embeds editor views into native windows.
type WindowAttacher interface {
	Attach(view vst3.IPlugView, window uintptr) (width, height int, err error)
	Detach(view vst3.IPlugView) error
}

// PlatformAttacher attaches views with a fixed platform type.
type PlatformAttacher struct {
	Platform vst3.PlatformType
}

// DefaultAttacher returns the attacher for the running OS.
func DefaultAttacher() WindowAttacher {
	switch runtime.GOOS {
	case "windows":
		return PlatformAttacher{Platform: vst3.PlatformTypeHWND}
	case "darwin":
		return PlatformAttacher{Platform: vst3.PlatformTypeNSView}
	default:
		return PlatformAttacher{Platform: vst3.PlatformTypeX11EmbedWindowID}
	}
}

// Attach implements WindowAttacher.
func (a PlatformAttacher) Attach(view vst3.IPlugView, window uintptr) (int, int, error) {
	if err := view.IsPlatformTypeSupported(a.Platform); err != nil {
		return 0, 0, errors.New(errors.PhaseEditor, errors.KindPlatformUnsupported).
			Value(a.Platform).Cause(err).Build()
	}
	if err := view.Attached(window, a.Platform); err != nil {
		return 0, 0, errors.Editor(errors.KindAttachFailed, err)
	}
	rect, err := view.GetSize()
	if err != nil {
		return 0, 0, errors.Editor(errors.KindAttachFailed, err)
	}
	return int(rect.Width()), int(rect.Height()), nil
}

// Detach implements WindowAttacher.
func (a PlatformAttacher) Detach(view vst3.IPlugView) error {
	return view.Removed()
}

// editor is the open view and the frame it resizes through.
type editor struct {
	view     vst3.IPlugView
	frame    *editorFrame
	attached bool
}

// editorFrame accepts every resize the view asks for and reports it.
type editorFrame struct {
	plugin *Plugin
}

// ResizeView implements vst3.IPlugFrame.
func (f *editorFrame) ResizeView(view vst3.IPlugView, rect vst3.ViewRect) error {
	if err := view.OnSize(rect); err != nil {
		return err
	}
	f.plugin.notify(event.WindowResized{Width: rect.Width(), Height: rect.Height()})
	return nil
}

// ShowEditor opens the plugin editor inside window and returns its size.
// The view is created on first use; showing an open editor returns its
// current size.
func (p *Plugin) ShowEditor(window uintptr) (width, height int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Lifecycle() == StateUnloaded {
		return 0, 0, errors.ErrReleased
	}

	if p.editor == nil {
		view := p.controller.CreateView(vst3.ViewTypeEditor)
		if view == nil {
			return 0, 0, errors.New(errors.PhaseEditor, errors.KindNoView).Path(p.path).Build()
		}
		ed := &editor{view: view, frame: &editorFrame{plugin: p}}
		if err := view.SetFrame(ed.frame); err != nil {
			p.log.Warn("view refused frame", zap.Error(err))
		}
		p.editor = ed
	}

	if p.editor.attached {
		rect, err := p.editor.view.GetSize()
		if err != nil {
			return 0, 0, errors.Editor(errors.KindAttachFailed, err)
		}
		return int(rect.Width()), int(rect.Height()), nil
	}

	width, height, err = p.opts.Attacher.Attach(p.editor.view, window)
	if err != nil {
		p.log.Warn("editor attach failed", zap.Error(err))
		p.releaseEditor()
		return 0, 0, err
	}
	p.editor.attached = true
	return width, height, nil
}

// HideEditor detaches and releases the editor view.
func (p *Plugin) HideEditor() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hideEditor()
}

func (p *Plugin) hideEditor() {
	if p.editor == nil {
		return
	}
	if p.editor.attached {
		if err := p.opts.Attacher.Detach(p.editor.view); err != nil {
			p.log.Warn("editor detach failed", zap.Error(err))
		}
	}
	p.releaseEditor()
}

func (p *Plugin) releaseEditor() {
	p.editor.view.SetFrame(nil)
	p.editor.view.Release()
	p.editor = nil
}

// EditorOpen reports whether an editor view is attached.
func (p *Plugin) EditorOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editor != nil && p.editor.attached
}
