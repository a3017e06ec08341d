package mapping

import (
	"fmt"
	"strings"

	"legacy-bridge/internal/common"
)

// Policy decides what Map does with an instance whose type has no mapping.
type Policy int

const (
	// FailUnresolved returns a MappingError wrapping ErrUnresolvedType.
	FailUnresolved Policy = iota
	// SkipUnresolved returns nil without error and logs at debug level.
	SkipUnresolved
)

func (p Policy) String() string {
	switch p {
	case FailUnresolved:
		return "fail"
	case SkipUnresolved:
		return "skip"
	default:
		return common.UnknownStr
	}
}

// ParsePolicy parses "fail" or "skip". The empty string is FailUnresolved.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail":
		return FailUnresolved, nil
	case "skip":
		return SkipUnresolved, nil
	default:
		return FailUnresolved, fmt.Errorf("unknown unresolved policy %q", s)
	}
}
