package patch

import (
	"context"

	"legacy-bridge/internal/affinity"
	"legacy-bridge/internal/bridge"
)

// Op identifies one intercepted operation.
type Op struct {
	// Owner is the class name of the receiver, e.g. "ij.ImagePlus".
	Owner string
	// Signature is the method name with parameter types, e.g. "Show(string)".
	Signature string
}

func (o Op) String() string {
	return o.Owner + "." + o.Signature
}

// Routine is the behavior injected into an intercepted operation.
type Routine func(call *Call)

// Call carries one interception to its routines.
type Call struct {
	Ctx      context.Context
	Op       Op
	Bridge   bridge.HostBridge
	Receiver any
	Args     []any
	// Result is the original body's result for Append routines, and what a
	// Replace routine wants the operation to return.
	Result any
}

// OnLegacyThread reports whether the call runs on the legacy-owned goroutine.
func (c *Call) OnLegacyThread() bool {
	return affinity.IsLegacy(c.Ctx)
}

// Skip is the guard shared by routines that touch host state: with no host
// session to notify (legacy mode), or off the legacy-owned goroutine, they
// must not act.
func (c *Call) Skip() bool {
	if c.Bridge.IsLegacyMode() {
		return true
	}

	return !c.OnLegacyThread()
}

// Arg returns argument i as a T.
func Arg[T any](c *Call, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(c.Args) {
		return zero, false
	}

	v, ok := c.Args[i].(T)

	return v, ok
}

// ReceiverAs returns the receiver as a T.
func ReceiverAs[T any](c *Call) (T, bool) {
	v, ok := c.Receiver.(T)
	return v, ok
}
