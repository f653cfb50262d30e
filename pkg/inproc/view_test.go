package inproc

import (
	"testing"

	"github.com/justyntemme/vst3host/pkg/vst3"
)

type fakeFrame struct {
	rects []vst3.ViewRect
}

func (f *fakeFrame) ResizeView(view vst3.IPlugView, rect vst3.ViewRect) error {
	f.rects = append(f.rects, rect)
	return view.OnSize(rect)
}

func TestViewLifecycle(t *testing.T) {
	v := NewView(400, 300)

	for _, pt := range []vst3.PlatformType{vst3.PlatformTypeHWND, vst3.PlatformTypeNSView, vst3.PlatformTypeX11EmbedWindowID} {
		if err := v.IsPlatformTypeSupported(pt); err != nil {
			t.Errorf("Expected %s to be supported, got %v", pt, err)
		}
	}
	if err := v.IsPlatformTypeSupported("Wayland"); err == nil {
		t.Error("Expected unknown platform to be rejected")
	}

	if err := v.Attached(1, vst3.PlatformTypeX11EmbedWindowID); err != nil {
		t.Fatalf("Attached failed: %v", err)
	}
	if err := v.Attached(1, vst3.PlatformTypeX11EmbedWindowID); err == nil {
		t.Error("Expected second attach to fail")
	}
	if err := v.Removed(); err != nil {
		t.Errorf("Removed failed: %v", err)
	}
	if v.IsAttached() {
		t.Error("Expected view to be detached")
	}
}

func TestViewResizeTo(t *testing.T) {
	v := NewView(400, 300)

	if err := v.ResizeTo(800, 600); err != vst3.ResultNotInitialized {
		t.Errorf("Expected ResultNotInitialized without frame, got %v", err)
	}

	f := &fakeFrame{}
	v.SetFrame(f)
	if err := v.ResizeTo(800, 600); err != nil {
		t.Fatalf("ResizeTo failed: %v", err)
	}
	if len(f.rects) != 1 || f.rects[0].Width() != 800 || f.rects[0].Height() != 600 {
		t.Errorf("Expected frame asked for 800x600, got %v", f.rects)
	}
	r, _ := v.GetSize()
	if r.Width() != 800 || r.Height() != 600 {
		t.Errorf("Expected view size 800x600, got %dx%d", r.Width(), r.Height())
	}
}
