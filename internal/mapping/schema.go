package mapping

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unsafe"

	"legacy-bridge/internal/diagnostic"
	"legacy-bridge/internal/loader"
)

const (
	// DefaultBackRef is the field that receives the original instance.
	DefaultBackRef = "bridged"
	// DefaultExcluded is the native buffer field that is never copied.
	DefaultExcluded = "snapshotPixels"
	// TagKey is the struct tag consulted for exclusions.
	TagKey = "bridge"
)

// FieldSpec is one entry of a schema.
type FieldSpec struct {
	// Name is the field path; fields of embedded structs are prefixed with
	// the embedded type name, e.g. "ImageProcessor.width".
	Name string
	// Kind describes the field type independently of its defining package,
	// e.g. "int", "[]uint8", "*ij.Calibration".
	Kind string

	index []int
}

// rules are the exclusions applied while building a schema.
type rules struct {
	backRef  string
	excluded map[string]bool
}

func (r rules) skip(f reflect.StructField) bool {
	if f.Name == "_" {
		return true
	}

	switch f.Tag.Get(TagKey) {
	case "-", "final":
		return true
	}

	return r.excluded[f.Name]
}

// buildSchema flattens t into its ordered field list. It returns the index
// of the top-level back-reference field, or nil when t has none.
func buildSchema(t reflect.Type, r rules) ([]FieldSpec, []int) {
	var (
		fields  []FieldSpec
		backRef []int
	)

	var walk func(t reflect.Type, prefix string, index []int)
	walk = func(t reflect.Type, prefix string, index []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			idx := append(append([]int(nil), index...), i)

			if prefix == "" && f.Name == r.backRef && r.backRef != "" {
				backRef = idx
				continue
			}

			if r.skip(f) {
				continue
			}

			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+f.Name+".", idx)
				continue
			}

			fields = append(fields, FieldSpec{Name: prefix + f.Name, Kind: kindOf(f.Type), index: idx})
		}
	}

	walk(t, "", nil)

	return fields, backRef
}

// kindOf describes t so that the host and legacy definitions of a type
// compare equal when they are structurally the same.
func kindOf(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + kindOf(t.Elem())
	case reflect.Slice:
		return "[]" + kindOf(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + kindOf(t.Elem())
	case reflect.Struct:
		if t.Name() == "" {
			return "struct"
		}

		return loader.NameOf(t)
	default:
		return t.Kind().String()
	}
}

// compareSchemas reports every positional disagreement between the local
// and foreign schemas of class.
func compareSchemas(class string, local, foreign []FieldSpec) diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	if len(local) != len(foreign) {
		d.AddError(diagnostic.CodeFieldCount,
			fmt.Sprintf("legacy definition has %d fields, host definition has %d", len(local), len(foreign)),
			class, "")
	}

	for i := 0; i < min(len(local), len(foreign)); i++ {
		l, f := local[i], foreign[i]

		if l.Name != f.Name {
			d.AddError(diagnostic.CodeFieldName,
				fmt.Sprintf("field %d is %s on the host side", i, f.Name), class, l.Name)

			continue
		}

		if l.Kind != f.Kind {
			d.AddError(diagnostic.CodeFieldKind,
				fmt.Sprintf("kind %s, host kind %s", l.Kind, f.Kind), class, l.Name)
		}
	}

	return d
}

// fieldByPath finds the field named by a schema path in t, walking embedded
// structs by their type name.
func fieldByPath(t reflect.Type, path string) ([]int, reflect.Type, bool) {
	var index []int

	for _, part := range strings.Split(path, ".") {
		if t.Kind() != reflect.Struct {
			return nil, nil, false
		}

		f, ok := directField(t, part)
		if !ok {
			return nil, nil, false
		}

		index = append(index, f.Index...)
		t = f.Type
	}

	return index, t, true
}

// directField looks name up among t's own fields, ignoring promoted ones.
func directField(t reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.Name == name {
			return f, true
		}
	}

	return reflect.StructField{}, false
}

// fieldAt returns a settable view of the field at index in the addressable
// struct v, unexported fields included.
func fieldAt(v reflect.Value, index []int) reflect.Value {
	f := v.FieldByIndex(index)
	if f.CanSet() {
		return f
	}

	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}
