package patch

import "legacy-bridge/internal/common"

// Mode is how a routine composes with the original body.
type Mode int

const (
	Replace Mode = iota
	Prepend
	Append

	modeCount
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case Replace:
		return "replace"
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	default:
		return common.UnknownStr
	}
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m >= Replace && m < modeCount
}
