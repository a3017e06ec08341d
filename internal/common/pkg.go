package common

import "path"

// UnknownStr is the String() value of enum values outside their known range.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// QualifiedName joins a package path alias and a type name into the
// "<pkg>.<Name>" form used to identify a type on either side of the boundary.
func QualifiedName(pkgPath, name string) string {
	alias := PkgAlias(pkgPath)
	if alias == "" {
		return name
	}

	return alias + "." + name
}
