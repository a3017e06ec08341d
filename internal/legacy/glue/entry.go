package glue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/diagnostic"
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/loader"
	"legacy-bridge/internal/mapping"
)

// ErrNotSetUp reports a bridge used before the engine ran it as a plugin.
var ErrNotSetUp = errors.New("legacy bridge not set up")

// Entry is the LegacyBridge living inside the engine. The engine creates it
// through RunPlugIn; its argument is the unresolved type policy.
type Entry struct {
	mu       sync.RWMutex
	engine   *ij.Engine
	registry *mapping.Registry
}

var (
	_ bridge.LegacyBridge = (*Entry)(nil)
	_ ij.PlugIn           = (*Entry)(nil)
)

// Setup implements ij.PlugIn.
func (e *Entry) Setup(_ context.Context, engine *ij.Engine, arg string) error {
	local, ok := engine.Classes().(loader.Resolver)
	if !ok {
		return fmt.Errorf("engine classes %T cannot resolve names", engine.Classes())
	}

	policy, err := mapping.ParsePolicy(arg)
	if err != nil {
		return err
	}

	mf, err := Mappings()
	if err != nil {
		return err
	}

	reg := mapping.NewRegistry(local, mapping.WithPolicy(policy), mapping.WithLogger(engine.Logger()))
	if err := reg.Apply(mf); err != nil {
		return err
	}

	e.mu.Lock()
	e.engine, e.registry = engine, reg
	e.mu.Unlock()

	return nil
}

func (e *Entry) state() (*ij.Engine, *mapping.Registry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.engine == nil {
		return nil, nil, ErrNotSetUp
	}

	return e.engine, e.registry, nil
}

// Registry returns the mapping registry, or nil before Setup.
func (e *Entry) Registry() *mapping.Registry {
	_, reg, _ := e.state()
	return reg
}

// Map implements bridge.LegacyBridge.
func (e *Entry) Map(data any) (any, error) {
	_, reg, err := e.state()
	if err != nil {
		return nil, err
	}

	return reg.Map(data)
}

// Run implements bridge.LegacyBridge. image may be a legacy image, a legacy
// processor, a host object mapped to a processor, or nil for the current
// image.
func (e *Entry) Run(ctx context.Context, image any, command, options string) error {
	engine, reg, err := e.state()
	if err != nil {
		return err
	}

	imp, err := legacyImage(engine, reg, image)
	if err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}

	return engine.Do(ctx, func(ctx context.Context) error {
		return engine.RunCommand(ctx, imp, command, options)
	})
}

func legacyImage(engine *ij.Engine, reg *mapping.Registry, image any) (*ij.ImagePlus, error) {
	switch v := image.(type) {
	case nil:
		return engine.Windows().CurrentImage(), nil
	case *ij.ImagePlus:
		return v, nil
	case ij.Processor:
		return engine.NewImage("Untitled", v), nil
	}

	mapped, err := reg.Map(image)
	if err != nil {
		return nil, err
	}

	proc, ok := mapped.(ij.Processor)
	if !ok {
		return nil, fmt.Errorf("%T does not map to a processor", image)
	}

	return engine.NewImage("Untitled", proc), nil
}

// EvalMacro implements bridge.LegacyBridge.
func (e *Entry) EvalMacro(ctx context.Context, code, argument string) (string, error) {
	engine, _, err := e.state()
	if err != nil {
		return "", err
	}

	var out string

	err = engine.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = engine.RunMacro(ctx, code, argument)

		return err
	})

	return out, err
}

// Verify compares the mapped types with their host definitions.
func (e *Entry) Verify(host loader.Resolver) diagnostic.Diagnostics {
	_, reg, err := e.state()
	if err != nil {
		var d diagnostic.Diagnostics
		d.AddError(diagnostic.CodeUnresolved, err.Error(), "", "")

		return d
	}

	return reg.Verify(host)
}
