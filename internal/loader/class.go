package loader

import (
	"fmt"
	"reflect"

	"legacy-bridge/internal/common"
)

// Class is one loaded definition of a named type.
type Class struct {
	name  string
	typ   reflect.Type
	owner Resolver
	newFn func() any
}

// Name returns the cross-boundary name of the class.
func (c *Class) Name() string {
	return c.name
}

// Type returns the reflect type backing the class.
func (c *Class) Type() reflect.Type {
	return c.typ
}

// Loader returns the resolver that defined the class.
func (c *Class) Loader() Resolver {
	return c.owner
}

// New creates an instance. Without a constructor, struct classes are
// allocated as a pointer to their zero value.
func (c *Class) New() (any, error) {
	if c.newFn != nil {
		return c.newFn(), nil
	}

	if c.typ == nil || c.typ.Kind() == reflect.Interface {
		return nil, &ClassResolutionError{Name: c.name, Loader: c.ownerName(), Err: ErrNotInstantiable}
	}

	return reflect.New(c.typ).Interface(), nil
}

func (c *Class) String() string {
	return fmt.Sprintf("class %s (%s)", c.name, c.ownerName())
}

func (c *Class) ownerName() string {
	if c.owner == nil {
		return "<none>"
	}

	return c.owner.Name()
}

// Symbol is a compiled type that a loader can turn into a Class.
type Symbol struct {
	Type reflect.Type
	New  func() any
}

// SymbolOf returns the symbol of T, allocating new values with new(T).
func SymbolOf[T any]() Symbol {
	return Symbol{
		Type: reflect.TypeFor[T](),
		New:  func() any { return new(T) },
	}
}

// ContractSymbol returns a non-instantiable symbol for an interface type.
func ContractSymbol(t reflect.Type) Symbol {
	return Symbol{Type: t}
}

// ClassNamer lets a type choose its cross-boundary name.
type ClassNamer interface {
	ClassName() string
}

var classNamerType = reflect.TypeFor[ClassNamer]()

// NameOf returns the cross-boundary name of t: ClassName() when t implements
// ClassNamer, otherwise "<package name>.<type name>". Pointers are dereferenced.
func NameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Interface &&
		(t.Implements(classNamerType) || reflect.PointerTo(t).Implements(classNamerType)) {
		if n, ok := reflect.New(t).Interface().(ClassNamer); ok {
			return n.ClassName()
		}
	}

	if t.Name() == "" {
		return t.String()
	}

	return common.QualifiedName(t.PkgPath(), t.Name())
}
