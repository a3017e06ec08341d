package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// DescriptorExt is the extension of glue class descriptor resources.
const DescriptorExt = ".yaml"

// glueDescriptor is the embedded resource that defines one glue class.
//
//	name: legacy.bridge.Entry
//	symbol: entry
//	implements:
//	  - bridge.LegacyBridge
type glueDescriptor struct {
	Name       string   `yaml:"name"`
	Symbol     string   `yaml:"symbol"`
	Implements []string `yaml:"implements,omitempty"`
}

// ResourcePath returns the resource path of a glue class descriptor.
func ResourcePath(name string) string {
	return strings.ReplaceAll(name, ".", "/") + DescriptorExt
}

func parseDescriptor(data []byte) (*glueDescriptor, error) {
	var d glueDescriptor

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}

	return &d, nil
}

// defineGlue reads and links the descriptor of name. It does not touch the
// loader's cache; the caller stores the class only on success.
func (l *Loader) defineGlue(name string) (*Class, error) {
	fail := func(err error) (*Class, error) {
		return nil, &ClassResolutionError{Name: name, Loader: l.name, Err: err}
	}

	if l.resources == nil {
		return fail(ErrClassNotFound)
	}

	path := ResourcePath(name)

	data, err := fs.ReadFile(l.resources, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(fmt.Errorf("%w: no resource %s", ErrClassNotFound, path))
		}

		return fail(fmt.Errorf("read %s: %w", path, err))
	}

	desc, err := parseDescriptor(data)
	if err != nil {
		return fail(err)
	}

	if desc.Name != name {
		return fail(fmt.Errorf("resource %s defines %q", path, desc.Name))
	}

	sym, ok := l.linker[desc.Symbol]
	if !ok || sym.Type == nil {
		return fail(fmt.Errorf("unlinked symbol %q", desc.Symbol))
	}

	for _, contract := range desc.Implements {
		shared, ok := l.shared[contract]
		if !ok {
			return fail(fmt.Errorf("%s is not a shared contract", contract))
		}

		if shared.Type().Kind() != reflect.Interface || !implements(sym.Type, shared.Type()) {
			return fail(fmt.Errorf("%s does not implement %s", sym.Type, contract))
		}
	}

	return &Class{name: name, typ: sym.Type, owner: l, newFn: sym.New}, nil
}

// implements reports whether t, or *t for the values New allocates, implements iface.
func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}

	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}
