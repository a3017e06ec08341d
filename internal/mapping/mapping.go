package mapping

import (
	"fmt"
	"reflect"
	"sync"
)

// FieldMapping is the registered schema of one legacy type.
type FieldMapping struct {
	name    string
	target  reflect.Type
	newFn   func() (any, error)
	fields  []FieldSpec
	backRef []int
	rules   rules

	mu      sync.Mutex
	foreign map[reflect.Type][][]int
}

// Name returns the class name the mapping is registered under.
func (m *FieldMapping) Name() string {
	return m.name
}

// Type returns the legacy struct type instances are mapped into.
func (m *FieldMapping) Type() reflect.Type {
	return m.target
}

// Fields returns the ordered schema.
func (m *FieldMapping) Fields() []FieldSpec {
	return append([]FieldSpec(nil), m.fields...)
}

// HasBackRef reports whether mapped instances point back at their original.
func (m *FieldMapping) HasBackRef() bool {
	return m.backRef != nil
}

// foreignIndex returns the field indexes of src matching the schema, in
// schema order, resolving them once per foreign type.
func (m *FieldMapping) foreignIndex(src reflect.Type) ([][]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.foreign[src]; ok {
		return idx, nil
	}

	idx := make([][]int, len(m.fields))

	for i, f := range m.fields {
		fi, ft, ok := fieldByPath(src, f.Name)
		if !ok {
			return nil, &MappingError{Type: m.name, Field: f.Name, Err: fmt.Errorf("%w: not declared by %s", ErrField, src)}
		}

		if k := kindOf(ft); k != f.Kind {
			return nil, &MappingError{Type: m.name, Field: f.Name, Err: fmt.Errorf("%w: %s is %s, want %s", ErrIncompatible, src, k, f.Kind)}
		}

		idx[i] = fi
	}

	m.foreign[src] = idx

	return idx, nil
}

// instantiate allocates a new *target.
func (m *FieldMapping) instantiate() (reflect.Value, error) {
	if m.newFn == nil {
		return reflect.New(m.target), nil
	}

	v, err := m.newFn()
	if err != nil {
		return reflect.Value{}, &MappingError{Type: m.name, Err: fmt.Errorf("%w: %w", ErrInstantiation, err)}
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(m.target) || rv.IsNil() {
		return reflect.Value{}, &MappingError{Type: m.name, Err: fmt.Errorf("%w: got %T, want *%s", ErrNoConstructor, v, m.target)}
	}

	return rv, nil
}
