package match

import (
	"reflect"

	"legacy-bridge/internal/common"
)

// TypeCompatibility represents how a value of one field type can be stored
// into the corresponding field of the other definition.
type TypeCompatibility int

const (
	// TypeIncompatible means the value cannot cross.
	TypeIncompatible TypeCompatibility = iota
	// TypeConvertible means the value crosses through a same-kind conversion.
	TypeConvertible
	// TypeAssignable means the value can be assigned directly.
	TypeAssignable
	// TypeIdentical means both fields have the same type.
	TypeIdentical
)

var compatibilityNames = [...]string{
	TypeIncompatible: "incompatible",
	TypeConvertible:  "convertible",
	TypeAssignable:   "assignable",
	TypeIdentical:    "identical",
}

func (c TypeCompatibility) String() string {
	if c < 0 || int(c) >= len(compatibilityNames) {
		return common.UnknownStr
	}

	return compatibilityNames[c]
}

// CanCopy reports whether a value can be transferred at this level.
func (c TypeCompatibility) CanCopy() bool {
	return c > TypeIncompatible
}

// TypeCompatibilityResult is the verdict of ScoreKindCompatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string
}

// ScoreKindCompatibility determines how a source field value can be stored
// into a target field. Conversions are accepted only between types of the
// same kind: a named int of one definition may become the named int of the
// other, but an int never silently becomes a float.
func ScoreKindCompatibility(source, target reflect.Type) TypeCompatibilityResult {
	var res TypeCompatibilityResult

	switch {
	case source == target:
		res.Compatibility = TypeIdentical
		res.Reason = "types are identical"
	case source.AssignableTo(target):
		res.Compatibility = TypeAssignable
		res.Reason = "source is assignable to target"
	case source.Kind() == target.Kind() && source.ConvertibleTo(target):
		res.Compatibility = TypeConvertible
		res.Reason = "source converts to target of the same kind"
	default:
		res.Compatibility = TypeIncompatible
		res.Reason = "kinds differ or types are not convertible"
	}

	return res
}
