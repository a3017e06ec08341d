// Package loader implements the isolation boundary that hosts the legacy
// engine's types privately.
//
// A Loader resolves class names in three steps:
//
//  1. Shared contract names resolve to the host's own Class objects, so both
//     sides hold the identical type and can call each other through it.
//  2. Names in the glue namespace are defined by the loader itself from
//     embedded descriptor resources, linked against compiled glue symbols,
//     and cached.
//  3. Everything else goes parent-first through the resolver chain and then
//     to the legacy engine's own archive.
//
// Classes are matched across the boundary by name (see NameOf), never by
// reflect.Type identity. A class, once defined, lives until the Loader is
// released as a whole.
package loader
