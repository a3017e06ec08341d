// Package legacy boots a legacy engine inside a host session: it builds the
// isolation loader, installs the patch routines, starts the engine and obtains
// the LegacyBridge from it.
package legacy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/config"
	"legacy-bridge/internal/host"
	"legacy-bridge/internal/legacy/glue"
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/loader"
	"legacy-bridge/internal/logging"
	"legacy-bridge/internal/patch"
	"legacy-bridge/internal/patches"
)

// ErrDisposed reports a boot into a session that is already disposed.
var ErrDisposed = errors.New("host session disposed")

// Options configures Boot.
type Options struct {
	Config *config.Config
	Logger *zap.Logger
}

// Runtime is a booted legacy engine. It is torn down by disposing the session.
type Runtime struct {
	Session     *host.Session
	HostClasses *loader.ClassPath
	Loader      *loader.Loader
	Engine      *ij.Engine
	Bridge      bridge.LegacyBridge
	Routines    *patches.Routines
	// Plugins is the engine's plugin class loader, nil without a plugins dir.
	Plugins *ij.PluginClassLoader
}

// Boot starts a legacy engine for session. On failure nothing is left
// running.
func Boot(ctx context.Context, session *host.Session, opts Options) (_ *Runtime, err error) {
	if session.Disposed() {
		return nil, ErrDisposed
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{Unresolved: "fail"}
	}

	log := logging.OrNop(opts.Logger).With(zap.String("session", session.ID().String()))

	hostCP, err := host.ClassPath()
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	table := patch.NewTable(log)

	routines, err := patches.Install(table, patches.Options{
		LogFile: config.NewSetting(cfg.LogFile),
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	defer func() {
		if err != nil {
			_ = routines.Close()
		}
	}()

	parent, err := loader.DetermineParent(hostCP, ij.AnchorClass)
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	shared, err := host.Contracts(hostCP)
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	ld, err := loader.New(loader.Options{
		Name:       "legacy-" + session.ID().String()[:8],
		Parent:     parent,
		Shared:     shared,
		Archive:    glue.Archive(),
		GluePrefix: glue.Prefix,
		Resources:  glue.Resources(),
		Linker:     glue.Linker(),
		Hooks:      table,
		Bridge:     host.NewBridge(session),
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	engine := ij.NewEngine(ij.Options{
		Name:    ld.Name(),
		Classes: ld,
		Hooks:   table,
		Logger:  log,
	})
	engine.Start()

	defer func() {
		if err != nil {
			engine.Stop()
			ld.Release()
		}
	}()

	rt := &Runtime{
		Session:     session,
		HostClasses: hostCP,
		Loader:      ld,
		Engine:      engine,
		Routines:    routines,
	}

	var inst any

	err = engine.Do(ctx, func(ctx context.Context) error {
		var err error
		if inst, err = engine.RunPlugIn(ctx, bridge.EntryPoint, cfg.Unresolved); err != nil {
			return err
		}

		if cfg.PluginsDir != "" {
			rt.Plugins = engine.NewPluginClassLoader(ctx, cfg.PluginsDir)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boot: %w", err)
	}

	lb, ok := inst.(bridge.LegacyBridge)
	if !ok {
		return nil, fmt.Errorf("boot: %s is %T, not a legacy bridge", bridge.EntryPoint, inst)
	}

	rt.Bridge = lb

	if entry, ok := inst.(*glue.Entry); ok {
		d := entry.Verify(hostCP)
		if err = d.Err(); err != nil {
			return nil, fmt.Errorf("boot: host types diverge: %w", err)
		}

		for _, w := range d.Warnings {
			log.Warn("mapping check", zap.Stringer("finding", w))
		}
	}

	session.OnDispose(func() {
		engine.Stop()
		ld.Release()

		if err := routines.Close(); err != nil {
			log.Warn("close log mirror", zap.Error(err))
		}
	})
	session.SetInitialized()

	log.Info("legacy engine booted",
		zap.String("loader", ld.Name()),
		zap.Strings("defined", ld.Defined()))

	return rt, nil
}
