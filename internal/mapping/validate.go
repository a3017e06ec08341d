package mapping

import (
	"fmt"
	"go/types"
	"strconv"
	"strings"

	"legacy-bridge/internal/analyze"
	"legacy-bridge/internal/common"
	"legacy-bridge/internal/diagnostic"
)

// ValidateGraph checks, without running any code, that every type of mf is
// declared the same way in legacyPkg and hostPkg. Types missing from hostPkg
// are reported as infos; types missing from legacyPkg are errors.
func ValidateGraph(mf *MappingFile, graph *analyze.TypeGraph, legacyPkg, hostPkg string) *diagnostic.Diagnostics {
	d := &diagnostic.Diagnostics{}

	for _, t := range mf.Types {
		typeName := t.Name
		if i := strings.LastIndexByte(typeName, '.'); i >= 0 {
			typeName = typeName[i+1:]
		}

		legacy := graph.GetType(analyze.TypeID{PkgPath: legacyPkg, Name: typeName})
		if legacy == nil {
			d.AddError(diagnostic.CodeMissingType, "not declared in "+legacyPkg, t.Name, "")
			continue
		}

		if legacy.Kind != analyze.TypeKindStruct {
			d.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("legacy definition is %s", legacy.Kind), t.Name, "")
			continue
		}

		host := graph.GetType(analyze.TypeID{PkgPath: hostPkg, Name: typeName})
		if host == nil {
			d.AddInfo(diagnostic.CodeMissingType, "not declared in "+hostPkg, t.Name, "")
			continue
		}

		if host.Kind != analyze.TypeKindStruct {
			d.AddError(diagnostic.CodeNotStruct, fmt.Sprintf("host definition is %s", host.Kind), t.Name, "")
			continue
		}

		rl := specRules(t)
		d.Merge(compareSchemas(t.Name, graphSchema(legacy, rl), graphSchema(host, rl)))
	}

	return d
}

func specRules(t TypeSpec) rules {
	rl := rules{backRef: DefaultBackRef, excluded: map[string]bool{DefaultExcluded: true}}
	if t.BackRef != "" {
		rl.backRef = t.BackRef
	}

	for _, n := range t.Exclude {
		rl.excluded[n] = true
	}

	return rl
}

// graphSchema is buildSchema over a type graph entry.
func graphSchema(info *analyze.TypeInfo, rl rules) []FieldSpec {
	flat := info.Flatten(func(f analyze.FlatField) bool {
		if f.Depth == 0 && f.Field.Name == rl.backRef {
			return false
		}

		if f.Field.Name == "_" || rl.excluded[f.Field.Name] {
			return false
		}

		tag := f.Field.TagValue(TagKey)

		return tag != "-" && tag != "final"
	})

	fields := make([]FieldSpec, 0, len(flat))
	for _, f := range flat {
		fields = append(fields, FieldSpec{Name: f.Path, Kind: graphKind(f.Field.Type)})
	}

	return fields
}

// graphKind is kindOf over a type graph entry.
func graphKind(info *analyze.TypeInfo) string {
	switch info.Kind {
	case analyze.TypeKindBasic:
		if b, ok := info.GoType.Underlying().(*types.Basic); ok {
			return types.Typ[b.Kind()].Name()
		}
	case analyze.TypeKindAlias:
		if info.Underlying != nil {
			return graphKind(info.Underlying)
		}
	case analyze.TypeKindPointer:
		return "*" + graphKind(info.ElemType)
	case analyze.TypeKindSlice:
		return "[]" + graphKind(info.ElemType)
	case analyze.TypeKindArray:
		return "[" + strconv.FormatInt(info.Len, 10) + "]" + graphKind(info.ElemType)
	case analyze.TypeKindStruct, analyze.TypeKindExternal:
		if info.IsNamed() {
			return common.QualifiedName(info.ID.PkgPath, info.ID.Name)
		}

		return "struct"
	case analyze.TypeKindMap, analyze.TypeKindInterface, analyze.TypeKindFunc, analyze.TypeKindChan:
		return info.Kind.String()
	}

	return common.UnknownStr
}
