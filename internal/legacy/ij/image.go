package ij

import (
	"context"
	"fmt"
	"sync"
)

// ImagePlus is an image known to the engine: a processor, a title, a
// calibration and, while shown, a window.
type ImagePlus struct {
	engine *Engine
	id     int

	mu      sync.Mutex
	title   string
	proc    Processor
	cal     *Calibration
	win     *ImageWindow
	changes bool
	draws   int
}

// ID returns the engine-assigned image id. Ids are negative.
func (imp *ImagePlus) ID() int { return imp.id }

// Engine returns the engine that owns the image.
func (imp *ImagePlus) Engine() *Engine { return imp.engine }

func (imp *ImagePlus) Title() string {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.title
}

func (imp *ImagePlus) SetTitle(title string) {
	imp.mu.Lock()
	imp.title = title
	imp.mu.Unlock()
}

func (imp *ImagePlus) Processor() Processor {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.proc
}

// IsProcessor reports whether the image has a processor.
func (imp *ImagePlus) IsProcessor() bool {
	return imp.Processor() != nil
}

func (imp *ImagePlus) Calibration() *Calibration {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.cal
}

func (imp *ImagePlus) SetCalibration(cal *Calibration) {
	imp.mu.Lock()
	imp.cal = cal
	imp.mu.Unlock()
}

// Window returns the image's window, or nil when it is not shown.
func (imp *ImagePlus) Window() *ImageWindow {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.win
}

// Draws returns how many times the image was drawn.
func (imp *ImagePlus) Draws() int {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.draws
}

// Changed reports whether a command modified the pixels.
func (imp *ImagePlus) Changed() bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	return imp.changes
}

func (imp *ImagePlus) markChanged() {
	imp.mu.Lock()
	imp.changes = true
	imp.mu.Unlock()
}

// UpdateAndDraw redraws the image after its pixels changed.
func (imp *ImagePlus) UpdateAndDraw(ctx context.Context) {
	imp.engine.invoke(ctx, OpImageUpdateAndDraw, imp, nil, func() any {
		imp.mu.Lock()
		imp.draws++
		imp.mu.Unlock()

		return nil
	})
}

// RepaintWindow repaints the image's window, if any.
func (imp *ImagePlus) RepaintWindow(ctx context.Context) {
	imp.engine.invoke(ctx, OpImageRepaintWindow, imp, nil, func() any {
		if win := imp.Window(); win != nil {
			win.repaint()
		}

		return nil
	})
}

// Show opens a window for the image, with message in the status bar.
func (imp *ImagePlus) Show(ctx context.Context, message string) {
	imp.engine.invoke(ctx, OpImageShow, imp, []any{message}, func() any {
		imp.mu.Lock()
		if imp.win == nil {
			imp.win = &ImageWindow{imp: imp}
		}
		win := imp.win
		imp.mu.Unlock()

		win.setVisible(true)

		return nil
	})
}

// Hide makes the image's window invisible without closing it.
func (imp *ImagePlus) Hide(ctx context.Context) {
	imp.engine.invoke(ctx, OpImageHide, imp, nil, func() any {
		if win := imp.Window(); win != nil {
			win.setVisible(false)
		}

		return nil
	})
}

// Close closes the image's window and releases it.
func (imp *ImagePlus) Close(ctx context.Context) {
	imp.engine.invoke(ctx, OpImageClose, imp, nil, func() any {
		if win := imp.Window(); win != nil {
			win.Close(ctx)
		}

		return nil
	})
}

func (imp *ImagePlus) detach(win *ImageWindow) {
	imp.mu.Lock()
	if imp.win == win {
		imp.win = nil
	}
	imp.mu.Unlock()
}

func (imp *ImagePlus) String() string {
	return fmt.Sprintf("ImagePlus[%s, id=%d]", imp.Title(), imp.id)
}
