package mapping

import (
	"errors"
	"strings"
)

var (
	// ErrUnresolvedType reports a type name with no registered mapping.
	ErrUnresolvedType = errors.New("unresolved type")
	// ErrNoConstructor reports a constructor that did not yield a *T.
	ErrNoConstructor = errors.New("no usable constructor")
	// ErrField reports a field missing from the foreign definition.
	ErrField = errors.New("inaccessible field")
	// ErrInstantiation reports a failure creating the target instance.
	ErrInstantiation = errors.New("instantiation failed")
	// ErrIncompatible reports a value that cannot be stored into its target field.
	ErrIncompatible = errors.New("incompatible field")
	// ErrStructure reports definitions that disagree on field order or kinds.
	ErrStructure = errors.New("structural mismatch")
)

// MappingError is returned by every failing registry call. It never leaves
// the registry in a changed state.
type MappingError struct {
	Type  string
	Field string
	Err   error
	// Suggestions holds registered names close to Type.
	Suggestions []string
}

func (e *MappingError) Error() string {
	var b strings.Builder

	b.WriteString("map ")
	b.WriteString(e.Type)

	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString(" (did you mean ")
		b.WriteString(strings.Join(e.Suggestions, ", "))
		b.WriteString("?)")
	}

	return b.String()
}

func (e *MappingError) Unwrap() error {
	return e.Err
}
