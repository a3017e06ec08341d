package host

import (
	"go.uber.org/zap"

	"legacy-bridge/internal/bridge"
)

// Bridge is the HostBridge of a session.
type Bridge struct {
	session *Session
}

var _ bridge.HostBridge = (*Bridge)(nil)

// NewBridge returns the bridge the legacy engine of session calls back through.
func NewBridge(session *Session) *Bridge {
	return &Bridge{session: session}
}

func (b *Bridge) IsLegacyMode() bool { return b.session.LegacyMode() }

func (b *Bridge) IsInitialized() bool { return b.session.Initialized() }

// Dispose disposes of the whole session.
func (b *Bridge) Dispose() { b.session.Dispose() }

func (b *Bridge) ShowProgress(current, final int) {
	b.session.Status().ShowProgress(current, final)
}

func (b *Bridge) ShowStatus(text string) {
	b.session.Status().ShowStatus(text)
}

// RegisterLegacyImage adds image to the session's image registry. Headless
// sessions return bridge.ErrUnsupported.
func (b *Bridge) RegisterLegacyImage(image any) error {
	images := b.session.Images()
	if images == nil {
		return bridge.ErrUnsupported
	}

	return images.Register(image)
}

// UnregisterLegacyImage removes image from the session's image registry.
func (b *Bridge) UnregisterLegacyImage(image any) error {
	images := b.session.Images()
	if images == nil {
		return bridge.ErrUnsupported
	}

	return images.Unregister(image)
}

func (b *Bridge) Debug(text string) {
	b.session.Logger().Debug(text)
}

func (b *Bridge) Error(err error) {
	b.session.Logger().Error("legacy engine error", zap.Error(err))
}
