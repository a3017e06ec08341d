package patch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/logging"
)

var (
	// ErrDuplicateBinding reports a second routine for the same (Op, Mode).
	ErrDuplicateBinding = errors.New("duplicate patch binding")
	// ErrActive reports a change to a table that is already active.
	ErrActive = errors.New("patch table already active")
)

// Binding is one routine bound to an operation.
type Binding struct {
	Op      Op
	Mode    Mode
	Routine Routine
}

type slot [modeCount]Routine

// Table binds routines to intercepted operations.
type Table struct {
	log *zap.Logger

	mu       sync.RWMutex
	bindings map[Op]*slot
	bridge   bridge.HostBridge
}

// NewTable creates an empty, inactive table.
func NewTable(logger *zap.Logger) *Table {
	return &Table{
		log:      logging.OrNop(logger).Named("patch"),
		bindings: make(map[Op]*slot),
	}
}

// Bind registers r for (op, mode).
func (t *Table) Bind(op Op, mode Mode, r Routine) error {
	if !mode.IsValid() {
		return fmt.Errorf("bind %s: invalid mode %d", op, mode)
	}

	if r == nil {
		return fmt.Errorf("bind %s: nil routine", op)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bridge != nil {
		return fmt.Errorf("bind %s: %w", op, ErrActive)
	}

	s, ok := t.bindings[op]
	if !ok {
		s = &slot{}
		t.bindings[op] = s
	}

	if s[mode] != nil {
		return fmt.Errorf("bind %s (%s): %w", op, mode, ErrDuplicateBinding)
	}

	s[mode] = r

	return nil
}

// Activate attaches the host bridge. A table is activated exactly once.
func (t *Table) Activate(b bridge.HostBridge) error {
	if b == nil {
		return errors.New("activate patch table: nil bridge")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bridge != nil {
		return ErrActive
	}

	t.bridge = b
	t.log.Debug("patch table active", zap.Int("operations", len(t.bindings)))

	return nil
}

// Active reports whether the table was activated.
func (t *Table) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.bridge != nil
}

// Lookup returns the routine bound to (op, mode).
func (t *Table) Lookup(op Op, mode Mode) (Routine, bool) {
	if !mode.IsValid() {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.bindings[op]
	if !ok || s[mode] == nil {
		return nil, false
	}

	return s[mode], true
}

// Bindings returns every binding ordered by operation and mode.
func (t *Table) Bindings() []Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Binding

	for op, s := range t.bindings {
		for m, r := range s {
			if r != nil {
				out = append(out, Binding{Op: op, Mode: Mode(m), Routine: r})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Op != out[j].Op {
			return out[i].Op.String() < out[j].Op.String()
		}

		return out[i].Mode < out[j].Mode
	})

	return out
}

// Invoke runs an intercepted operation: the Prepend routine, then the Replace
// routine or the original body, then the Append routine. It returns the
// call's result. Routine panics are reported through the bridge and never
// reach the caller.
func (t *Table) Invoke(ctx context.Context, op Op, receiver any, args []any, original func() any) any {
	t.mu.RLock()
	s := t.bindings[op]
	b := t.bridge
	t.mu.RUnlock()

	if b == nil || s == nil {
		if original == nil {
			return nil
		}

		return original()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	call := &Call{Ctx: ctx, Op: op, Bridge: b, Receiver: receiver, Args: args}

	t.run(call, Prepend, s[Prepend])

	if r := s[Replace]; r != nil {
		t.run(call, Replace, r)
	} else if original != nil {
		call.Result = original()
	}

	t.run(call, Append, s[Append])

	return call.Result
}

func (t *Table) run(call *Call, mode Mode, r Routine) {
	if r == nil {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("patch %s (%s) panicked: %v", call.Op, mode, p)
			t.log.Error("patch routine failed", zap.Error(err))
			call.Bridge.Error(err)
		}
	}()

	r(call)
}
