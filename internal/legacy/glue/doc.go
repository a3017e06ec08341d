// Package glue is the code that runs inside the legacy engine's loader on
// behalf of the host: the bridge entry class, the engine's class archive and
// the descriptors the loader defines glue classes from.
package glue
