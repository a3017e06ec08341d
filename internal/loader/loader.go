package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/logging"
	"legacy-bridge/internal/patch"
)

// Archive is the legacy engine's own set of compiled types, keyed by class name.
type Archive map[string]Symbol

// Options configures a Loader.
type Options struct {
	// Name identifies the loader in errors and logs.
	Name string
	// Parent is consulted first for every non-shared, non-glue name.
	// Use DetermineParent to pick it.
	Parent Resolver
	// Shared lists host classes visible by identity inside the loader.
	Shared []*Class
	// Archive holds the legacy engine's classes.
	Archive Archive
	// GluePrefix selects names defined from Resources.
	GluePrefix string
	// Resources holds one descriptor per glue class (see ResourcePath).
	Resources fs.FS
	// Linker maps descriptor symbols to compiled glue types.
	Linker map[string]Symbol
	// Hooks is the dispatch table intercepting the engine's operations.
	// It is activated with Bridge when the loader is constructed.
	Hooks *patch.Table
	// Bridge is the host side of the boundary.
	Bridge bridge.HostBridge
	Logger *zap.Logger
}

// Loader is the isolation context of one legacy engine. One Loader exists per
// engine bootstrap and lives until Release.
type Loader struct {
	name       string
	parent     Resolver
	shared     map[string]*Class
	archive    Archive
	gluePrefix string
	resources  fs.FS
	linker     map[string]Symbol
	hooks      *patch.Table
	log        *zap.Logger

	group    singleflight.Group
	mu       sync.RWMutex
	defined  map[string]*Class
	released bool
}

// New creates a loader and activates its dispatch table.
func New(opts Options) (*Loader, error) {
	if opts.Name == "" {
		opts.Name = "legacy"
	}

	l := &Loader{
		name:       opts.Name,
		parent:     opts.Parent,
		shared:     make(map[string]*Class, len(opts.Shared)),
		archive:    opts.Archive,
		gluePrefix: opts.GluePrefix,
		resources:  opts.Resources,
		linker:     opts.Linker,
		hooks:      opts.Hooks,
		log:        logging.OrNop(opts.Logger).Named("loader"),
		defined:    make(map[string]*Class),
	}

	for _, c := range opts.Shared {
		if c == nil {
			return nil, errors.New("new loader: nil shared class")
		}

		l.shared[c.Name()] = c
	}

	if l.hooks != nil && opts.Bridge != nil {
		if err := l.hooks.Activate(opts.Bridge); err != nil {
			return nil, fmt.Errorf("new loader: %w", err)
		}
	}

	return l, nil
}

// Name implements Resolver.
func (l *Loader) Name() string {
	return l.name
}

// Parent implements Resolver.
func (l *Loader) Parent() Resolver {
	return l.parent
}

// Hooks returns the dispatch table owned by the loader.
func (l *Loader) Hooks() *patch.Table {
	return l.hooks
}

// LoadClass implements Resolver.
func (l *Loader) LoadClass(name string) (*Class, error) {
	if c, ok := l.shared[name]; ok {
		return c, nil
	}

	if c, ok, err := l.cached(name); ok || err != nil {
		return c, err
	}

	if l.isGlue(name) {
		return l.define(name, l.defineGlue)
	}

	if c, err := loadFromParent(l.parent, name); c != nil || err != nil {
		return c, err
	}

	if sym, ok := l.archive[name]; ok {
		return l.define(name, func(string) (*Class, error) {
			return &Class{name: name, typ: sym.Type, owner: l, newFn: sym.New}, nil
		})
	}

	return nil, notFound(name, l.name)
}

// Instantiate loads name and creates an instance of it.
func (l *Loader) Instantiate(name string) (any, error) {
	c, err := l.LoadClass(name)
	if err != nil {
		return nil, err
	}

	return c.New()
}

// Defined returns the sorted names of the classes this loader defined.
func (l *Loader) Defined() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.defined))
	for n := range l.defined {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// Release drops every class the loader defined. Later lookups fail.
func (l *Loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.released = true
	l.defined = make(map[string]*Class)
}

func (l *Loader) isGlue(name string) bool {
	return l.gluePrefix != "" && strings.HasPrefix(name, l.gluePrefix)
}

func (l *Loader) cached(name string) (*Class, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.released {
		return nil, false, &ClassResolutionError{Name: name, Loader: l.name, Err: ErrReleased}
	}

	c, ok := l.defined[name]

	return c, ok, nil
}

// define serializes definitions per name and caches successful results only.
func (l *Loader) define(name string, fn func(string) (*Class, error)) (*Class, error) {
	v, err, _ := l.group.Do(name, func() (any, error) {
		if c, ok, err := l.cached(name); ok || err != nil {
			return c, err
		}

		l.log.Debug("defining class", zap.String("class", name))

		c, err := fn(name)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		defer l.mu.Unlock()

		if l.released {
			return nil, &ClassResolutionError{Name: name, Loader: l.name, Err: ErrReleased}
		}

		l.defined[name] = c

		return c, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Class), nil
}
