// Package ij is the legacy imaging engine: processors, images, windows and
// the engine that owns them.
//
// The engine keeps process-wide state (status, progress, log window, current
// window) and is not safe to drive from arbitrary goroutines: work that must
// happen on the engine's thread goes through Engine.Do, which runs it on the
// engine's single worker goroutine.
//
// Every intercepted operation asks the engine's Hooks before and after (or
// instead of) its own body. Without hooks the engine behaves as a standalone
// program.
package ij
