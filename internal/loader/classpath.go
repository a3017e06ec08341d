package loader

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Resolver is a link in a class resolution chain.
type Resolver interface {
	Name() string
	Parent() Resolver
	LoadClass(name string) (*Class, error)
}

// ClassPath is a plain resolver: parent first, then its own table.
type ClassPath struct {
	name   string
	parent Resolver

	mu      sync.RWMutex
	classes map[string]*Class
}

// NewClassPath creates an empty class path delegating to parent (may be nil).
func NewClassPath(name string, parent Resolver) *ClassPath {
	return &ClassPath{
		name:    name,
		parent:  parent,
		classes: make(map[string]*Class),
	}
}

// Name implements Resolver.
func (cp *ClassPath) Name() string {
	return cp.name
}

// Parent implements Resolver.
func (cp *ClassPath) Parent() Resolver {
	return cp.parent
}

// Define adds a class named after the symbol's type.
func (cp *ClassPath) Define(sym Symbol) (*Class, error) {
	return cp.DefineAs(NameOf(sym.Type), sym)
}

// DefineAs adds a class under an explicit name. Defining a name twice fails.
func (cp *ClassPath) DefineAs(name string, sym Symbol) (*Class, error) {
	if name == "" || sym.Type == nil {
		return nil, fmt.Errorf("define on %s: empty class name or type", cp.name)
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	if _, ok := cp.classes[name]; ok {
		return nil, fmt.Errorf("define on %s: class %s already defined", cp.name, name)
	}

	c := &Class{name: name, typ: sym.Type, owner: cp, newFn: sym.New}
	cp.classes[name] = c

	return c, nil
}

// FindClass looks up a class defined by this class path only.
func (cp *ClassPath) FindClass(name string) (*Class, bool) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	c, ok := cp.classes[name]

	return c, ok
}

// LoadClass implements Resolver.
func (cp *ClassPath) LoadClass(name string) (*Class, error) {
	if c, err := loadFromParent(cp.parent, name); c != nil || err != nil {
		return c, err
	}

	if c, ok := cp.FindClass(name); ok {
		return c, nil
	}

	return nil, notFound(name, cp.name)
}

// Names returns the sorted names defined by this class path.
func (cp *ClassPath) Names() []string {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	names := make([]string, 0, len(cp.classes))
	for n := range cp.classes {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// loadFromParent returns (nil, nil) when the parent chain does not know name.
func loadFromParent(parent Resolver, name string) (*Class, error) {
	if isNil(parent) {
		return nil, nil
	}

	c, err := parent.LoadClass(name)
	if err == nil {
		return c, nil
	}

	if errors.Is(err, ErrClassNotFound) {
		return nil, nil
	}

	return nil, err
}

// DetermineParent ascends from start until it reaches a resolver that cannot
// see anchor. That resolver is the parent for an isolation loader hosting the
// anchor's engine: nothing above it can shadow the engine's own classes.
func DetermineParent(start Resolver, anchor string) (Resolver, error) {
	if isNil(start) {
		return nil, errors.New("determine parent: no start resolver")
	}

	for r := start; !isNil(r); r = r.Parent() {
		if _, err := r.LoadClass(anchor); err != nil {
			if errors.Is(err, ErrClassNotFound) {
				return r, nil
			}

			return nil, err
		}
	}

	return nil, fmt.Errorf("cannot find a resolver without %s above %s", anchor, start.Name())
}

func isNil(r Resolver) bool {
	if r == nil {
		return true
	}

	v := reflect.ValueOf(r)

	return v.Kind() == reflect.Pointer && v.IsNil()
}
