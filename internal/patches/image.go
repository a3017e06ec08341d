package patches

import (
	"errors"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/patch"
)

func register(c *patch.Call, imp *ij.ImagePlus) {
	if err := c.Bridge.RegisterLegacyImage(imp); err != nil && !errors.Is(err, bridge.ErrUnsupported) {
		c.Bridge.Error(err)
	}
}

func unregister(c *patch.Call, imp *ij.ImagePlus) {
	if err := c.Bridge.UnregisterLegacyImage(imp); err != nil && !errors.Is(err, bridge.ErrUnsupported) {
		c.Bridge.Error(err)
	}
}

func receiverImage(c *patch.Call) *ij.ImagePlus {
	imp, _ := patch.ReceiverAs[*ij.ImagePlus](c)
	return imp
}

// updateAndDraw registers a shown image whose pixels changed.
func updateAndDraw(c *patch.Call) {
	imp := receiverImage(c)
	if imp == nil || !imp.IsProcessor() || imp.Window() == nil || c.Skip() {
		return
	}

	c.Bridge.Debug("ImagePlus.UpdateAndDraw(): " + imp.String())
	register(c, imp)
}

func repaintWindow(c *patch.Call) {
	imp := receiverImage(c)
	if imp == nil || imp.Window() == nil || c.Skip() {
		return
	}

	c.Bridge.Debug("ImagePlus.RepaintWindow(): " + imp.String())
	register(c, imp)
}

// showImage registers the image and makes its window current.
func showImage(c *patch.Call) {
	imp := receiverImage(c)
	if imp == nil {
		return
	}

	if !c.Skip() {
		c.Bridge.Debug("ImagePlus.Show(): " + imp.String())
		register(c, imp)
	}

	imp.Engine().Windows().SetCurrentWindow(imp.Window())
}

// hideImage drops the image from the host registry and the engine's outputs.
func hideImage(c *patch.Call) {
	imp := receiverImage(c)
	if imp == nil || c.Skip() {
		return
	}

	c.Bridge.Debug("ImagePlus.Hide(): " + imp.String())
	imp.Engine().Outputs().Remove(imp)
	unregister(c, imp)
}

// closeImage records the image as closed. The record is legacy state, so
// it is kept in legacy mode too.
func closeImage(c *patch.Call) {
	imp := receiverImage(c)
	if imp == nil {
		return
	}

	if !c.Bridge.IsLegacyMode() && !c.OnLegacyThread() {
		return
	}

	imp.Engine().Outputs().AddClosed(imp)
}
