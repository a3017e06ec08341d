package analyze

import (
	"go/types"
	"reflect"

	"legacy-bridge/internal/common"
)

// TypeID identifies a named type by import path and name.
type TypeID struct {
	PkgPath string // e.g., "legacy-bridge/internal/legacy/ij"
	Name    string // e.g., "ByteProcessor"
}

func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind classifies a TypeInfo.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindBasic
	TypeKindStruct
	TypeKindPointer
	TypeKindSlice
	TypeKindArray
	// TypeKindAlias is a named type over a non-struct type of an analyzed package.
	TypeKindAlias
	// TypeKindExternal is a named non-struct type of a package that was not loaded.
	TypeKindExternal
	TypeKindMap
	TypeKindInterface
	TypeKindFunc
	TypeKindChan
)

var kindNames = [...]string{
	TypeKindUnknown:   common.UnknownStr,
	TypeKindBasic:     "basic",
	TypeKindStruct:    "struct",
	TypeKindPointer:   "pointer",
	TypeKindSlice:     "slice",
	TypeKindArray:     "array",
	TypeKindAlias:     "alias",
	TypeKindExternal:  "external",
	TypeKindMap:       "map",
	TypeKindInterface: "interface",
	TypeKindFunc:      "func",
	TypeKindChan:      "chan",
}

func (k TypeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return common.UnknownStr
	}

	return kindNames[k]
}

// TypeInfo describes one type of the graph. Named types carry their ID.
type TypeInfo struct {
	ID   TypeID
	Kind TypeKind
	// Underlying is set for aliases.
	Underlying *TypeInfo
	// ElemType is set for pointers, slices and arrays.
	ElemType *TypeInfo
	// Len is the length of an array.
	Len    int64
	Fields []FieldInfo
	GoType types.Type
}

// IsNamed reports whether the type has a TypeID.
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// FieldInfo describes a struct field in declaration order.
type FieldInfo struct {
	Name     string
	Exported bool
	Type     *TypeInfo
	Tag      reflect.StructTag
	Embedded bool
	// Index is the position among all declared fields, including skipped
	// unexported ones.
	Index int
}

// TagValue returns the value of the struct tag key.
func (f *FieldInfo) TagValue(key string) string {
	return f.Tag.Get(key)
}

// FlatField is a field reached through zero or more embedded structs.
type FlatField struct {
	// Path is the dotted field path, e.g. "ImageProcessor.width".
	Path  string
	Field FieldInfo
	// Depth is the number of embedded structs crossed.
	Depth int
}

// Flatten lists the fields of a struct type in declaration order, descending
// into embedded structs instead of listing them. keep, when set, filters
// fields before they are listed or descended into.
func (t *TypeInfo) Flatten(keep func(FlatField) bool) []FlatField {
	var out []FlatField

	var walk func(info *TypeInfo, prefix string, depth int)
	walk = func(info *TypeInfo, prefix string, depth int) {
		for _, f := range info.Fields {
			ff := FlatField{Path: prefix + f.Name, Field: f, Depth: depth}
			if keep != nil && !keep(ff) {
				continue
			}

			if f.Embedded && f.Type != nil && f.Type.Kind == TypeKindStruct {
				walk(f.Type, ff.Path+".", depth+1)
				continue
			}

			out = append(out, ff)
		}
	}

	walk(t, "", 0)

	return out
}

// TypeGraph holds the named types of the loaded packages.
type TypeGraph struct {
	Types    map[TypeID]*TypeInfo
	Packages map[string]*PackageInfo
}

func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the type with id, or nil.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// PackageInfo is one loaded package.
type PackageInfo struct {
	Path  string
	Name  string
	Types []TypeID
}
