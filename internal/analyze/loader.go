package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/packages"
)

// LoadMode type-checks the patterns from source.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer builds a TypeGraph from source.
type Analyzer struct {
	// Unexported includes unexported struct fields in the graph. Bridged
	// types keep most of their state in unexported fields.
	Unexported bool

	graph *TypeGraph
	seen  map[types.Type]*TypeInfo
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
		seen:  make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads patterns and adds their exported named types to the
// graph. Every pattern is registered before any type is analyzed, so types
// of one pattern referencing another are not external.
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	pkgs, err := packages.Load(&packages.Config{Mode: LoadMode}, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var errs []error

	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Errorf("%s: %w", pkg.PkgPath, e))
		}
	})

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, pkg := range pkgs {
		a.graph.Packages[pkg.PkgPath] = &PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	}

	for _, pkg := range pkgs {
		a.addPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the graph built so far.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

func (a *Analyzer) addPackage(pkg *packages.Package) {
	info := a.graph.Packages[pkg.PkgPath]
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !tn.Exported() || tn.IsAlias() {
			continue
		}

		ti := a.typeInfo(tn.Type())
		a.graph.Types[ti.ID] = ti
		info.Types = append(info.Types, ti.ID)
	}
}

func (a *Analyzer) typeInfo(t types.Type) *TypeInfo {
	t = types.Unalias(t)

	if ti, ok := a.seen[t]; ok {
		return ti
	}

	ti := &TypeInfo{GoType: t}
	a.seen[t] = ti

	switch tt := t.(type) {
	case *types.Named:
		a.named(tt, ti)
	case *types.Struct:
		ti.Kind = TypeKindStruct
		ti.Fields = a.fields(tt)
	default:
		a.unnamed(t, ti)
	}

	return ti
}

func (a *Analyzer) named(n *types.Named, ti *TypeInfo) {
	obj := n.Obj()
	if obj.Pkg() != nil {
		ti.ID = TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
	} else {
		ti.ID = TypeID{Name: obj.Name()}
	}

	switch ut := n.Underlying().(type) {
	case *types.Struct:
		ti.Kind = TypeKindStruct
		ti.Fields = a.fields(ut)
	case *types.Interface:
		ti.Kind = TypeKindInterface
	default:
		if _, loaded := a.graph.Packages[ti.ID.PkgPath]; loaded {
			ti.Kind = TypeKindAlias
			ti.Underlying = a.typeInfo(ut)
		} else {
			ti.Kind = TypeKindExternal
		}
	}
}

func (a *Analyzer) unnamed(t types.Type, ti *TypeInfo) {
	switch tt := t.(type) {
	case *types.Basic:
		ti.Kind = TypeKindBasic
	case *types.Pointer:
		ti.Kind = TypeKindPointer
		ti.ElemType = a.typeInfo(tt.Elem())
	case *types.Slice:
		ti.Kind = TypeKindSlice
		ti.ElemType = a.typeInfo(tt.Elem())
	case *types.Array:
		ti.Kind = TypeKindArray
		ti.Len = tt.Len()
		ti.ElemType = a.typeInfo(tt.Elem())
	case *types.Map:
		ti.Kind = TypeKindMap
	case *types.Interface:
		ti.Kind = TypeKindInterface
	case *types.Signature:
		ti.Kind = TypeKindFunc
	case *types.Chan:
		ti.Kind = TypeKindChan
	default:
		ti.Kind = TypeKindUnknown
	}
}

func (a *Analyzer) fields(st *types.Struct) []FieldInfo {
	var out []FieldInfo

	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Exported() && !a.Unexported {
			continue
		}

		out = append(out, FieldInfo{
			Name:     f.Name(),
			Exported: f.Exported(),
			Type:     a.typeInfo(f.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: f.Embedded(),
			Index:    i,
		})
	}

	return out
}

// Struct returns the named struct pkgPath.name.
func (a *Analyzer) Struct(pkgPath, name string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: name}

	ti := a.graph.GetType(id)
	if ti == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}

	if ti.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is %s, not a struct", id, ti.Kind)
	}

	return ti, nil
}
