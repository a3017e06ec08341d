// Package bridge defines the two contracts that are allowed to cross the
// isolation boundary between the host session and the legacy engine.
//
// Both interfaces are loaded once, on the host side, and shared by identity
// with the legacy loader. Only primitives, strings and opaque legacy
// references may be passed through them directly; structured legacy data has
// to be translated by the mapping registry first.
//
//   - HostBridge: calls from the legacy engine into the host session.
//   - LegacyBridge: calls from the host session into the legacy engine.
package bridge
