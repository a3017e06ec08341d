// Package patches holds the routines injected into the legacy engine's
// intercepted operations, and Install, which binds all of them to a
// dispatch table.
//
// Routines never propagate errors into the engine. Failures are reported
// through the host bridge or the logger, and the engine continues.
package patches
