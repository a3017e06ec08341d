package patches

import (
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/patch"
)

func receiverWindow(c *patch.Call) *ij.ImageWindow {
	w, _ := patch.ReceiverAs[*ij.ImageWindow](c)
	return w
}

// setWindowVisible replaces the window's own display: a window made visible
// is registered with the host and becomes the current window.
func setWindowVisible(c *patch.Call) {
	w := receiverWindow(c)
	if w == nil {
		return
	}

	if visible, _ := patch.Arg[bool](c, 0); !visible {
		return
	}

	exposeWindow(c, w)
}

func showWindow(c *patch.Call) {
	w := receiverWindow(c)
	if w == nil || c.Bridge.IsLegacyMode() {
		return
	}

	exposeWindow(c, w)
}

func exposeWindow(c *patch.Call, w *ij.ImageWindow) {
	imp := w.ImagePlus()

	if !c.Skip() {
		c.Bridge.Debug("ImageWindow.SetVisible(true): " + imp.String())
		register(c, imp)
	}

	imp.Engine().Windows().SetCurrentWindow(w)
}

// closeWindow records the window's image as closed before the window goes.
func closeWindow(c *patch.Call) {
	w := receiverWindow(c)
	if w == nil {
		return
	}

	if !c.Bridge.IsLegacyMode() && !c.OnLegacyThread() {
		return
	}

	if imp := w.ImagePlus(); imp != nil {
		imp.Engine().Outputs().AddClosed(imp)
	}
}
