// Package host is the modern side of the legacy boundary: the session that
// owns the image registry and the status channel, and the HostBridge the
// legacy engine calls back through.
package host
