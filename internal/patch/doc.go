// Package patch provides the dispatch table through which the legacy engine
// routes its intercepted operations.
//
// Every intercepted operation is identified by an Op (owner type name plus
// signature). A Table binds at most one Routine per (Op, Mode):
//
//   - Replace: the routine runs instead of the original body.
//   - Prepend: the routine runs before the original body (or its replacement).
//   - Append: the routine runs after it and sees its result.
//
// Bindings are made before the table is activated with the host bridge;
// activation happens once, when the isolation loader is constructed. Before
// activation Invoke runs the original body only.
package patch
