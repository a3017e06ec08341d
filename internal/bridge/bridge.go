package bridge

import (
	"context"
	"errors"
	"reflect"
)

// EntryPoint is the glue class name the legacy engine instantiates, through its
// plugin invocation convention, to hand the live LegacyBridge to the host.
const EntryPoint = "legacy.bridge.Entry"

// ErrUnsupported is returned by host operations the current session cannot
// serve, e.g. image registration in a headless session.
var ErrUnsupported = errors.New("operation not supported by this session")

// HostBridge is implemented by the host session and called by the legacy engine.
type HostBridge interface {
	// IsLegacyMode reports whether the engine runs without a host session to notify.
	IsLegacyMode() bool
	// IsInitialized reports whether the host session finished booting the engine.
	IsInitialized() bool
	// Dispose tears down the hosting session.
	Dispose()
	ShowProgress(current, final int)
	ShowStatus(text string)
	// RegisterLegacyImage adds an opaque legacy image handle to the host image
	// registry. Returns ErrUnsupported if the session has none.
	RegisterLegacyImage(image any) error
	// UnregisterLegacyImage removes an opaque legacy image handle from the host
	// image registry. Returns ErrUnsupported if the session has none.
	UnregisterLegacyImage(image any) error
	Debug(text string)
	Error(err error)
}

// LegacyBridge is implemented on the legacy side and called by the host.
type LegacyBridge interface {
	// Map translates an instance of a type defined outside the legacy loader
	// into the legacy loader's definition of the same-named type.
	Map(data any) (any, error)
	// Run executes a legacy command against an image.
	Run(ctx context.Context, image any, command, options string) error
	// EvalMacro evaluates macro code inside the legacy engine and returns its output.
	EvalMacro(ctx context.Context, code, argument string) (string, error)
}

// ContractTypes returns the interface types shared by identity across the boundary.
func ContractTypes() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[HostBridge](),
		reflect.TypeFor[LegacyBridge](),
	}
}
