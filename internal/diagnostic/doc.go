// Package diagnostic collects structural findings about types that cross the
// legacy boundary: field order drift, kind mismatches, unresolved names.
//
// Findings carry a stable code so callers and tests can match on them without
// parsing messages.
package diagnostic
