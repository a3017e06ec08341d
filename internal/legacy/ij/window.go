package ij

import (
	"context"
	"sync"
)

// ImageWindow is the window of a shown image.
type ImageWindow struct {
	imp *ImagePlus

	mu       sync.Mutex
	visible  bool
	closed   bool
	repaints int
}

// ImagePlus returns the window's image.
func (w *ImageWindow) ImagePlus() *ImagePlus { return w.imp }

func (w *ImageWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.visible
}

func (w *ImageWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.closed
}

// Repaints returns how many times the window was repainted.
func (w *ImageWindow) Repaints() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.repaints
}

// SetVisible shows or hides the window.
func (w *ImageWindow) SetVisible(ctx context.Context, visible bool) {
	w.imp.engine.invoke(ctx, OpWindowSetVisible, w, []any{visible}, func() any {
		w.setVisible(visible)
		return nil
	})
}

// Show makes the window visible.
func (w *ImageWindow) Show(ctx context.Context) {
	w.imp.engine.invoke(ctx, OpWindowShow, w, nil, func() any {
		w.setVisible(true)
		return nil
	})
}

// Close disposes of the window and detaches it from its image.
func (w *ImageWindow) Close(ctx context.Context) {
	w.imp.engine.invoke(ctx, OpWindowClose, w, nil, func() any {
		w.mu.Lock()
		w.visible, w.closed = false, true
		w.mu.Unlock()

		w.imp.detach(w)
		w.imp.engine.windows.remove(w)

		return nil
	})
}

func (w *ImageWindow) setVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *ImageWindow) repaint() {
	w.mu.Lock()
	w.repaints++
	w.mu.Unlock()
}

// WindowManager tracks the engine's current window.
type WindowManager struct {
	mu      sync.Mutex
	current *ImageWindow
}

// SetCurrentWindow makes w the current window.
func (m *WindowManager) SetCurrentWindow(w *ImageWindow) {
	m.mu.Lock()
	m.current = w
	m.mu.Unlock()
}

// CurrentWindow returns the current window, or nil.
func (m *WindowManager) CurrentWindow() *ImageWindow {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// CurrentImage returns the image of the current window, or nil.
func (m *WindowManager) CurrentImage() *ImagePlus {
	if w := m.CurrentWindow(); w != nil {
		return w.imp
	}

	return nil
}

func (m *WindowManager) remove(w *ImageWindow) {
	m.mu.Lock()
	if m.current == w {
		m.current = nil
	}
	m.mu.Unlock()
}
