// Package analyze type-checks Go packages from source and records their
// named types, without running any of their code.
//
// The mapping check uses it to compare the host and legacy declarations of
// a bridged type field by field. Bridged types keep most of their state
// unexported, so the Analyzer can include unexported fields; Flatten lists
// fields through embedded structs in the order a mapping copies them.
package analyze
