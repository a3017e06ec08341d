// Package mapping copies objects whose type is defined on the host side of
// the legacy boundary into instances of the same-named type defined inside
// the legacy engine's loader.
//
// The two definitions must agree field by field: same names in the same
// declaration order, same kinds. A Registry remembers one FieldMapping per
// legacy type, resolves foreign instances to it by class name, and copies
// every field positionally. The mapped object points back at the original
// through its back-reference field (default "bridged").
//
// Fields excluded from a schema:
//   - blank fields and fields tagged `bridge:"-"` or `bridge:"final"`
//   - the back-reference field
//   - the native buffer field (default "snapshotPixels")
//
// Mapping files list the types to register:
//
//	version: "1"
//	types:
//	  - name: ij.ByteProcessor
//	  - name: ij.Calibration
//	    back_ref: owner
//	    exclude: [cache]
package mapping
