// Package ij holds the host's own definitions of the imaging data types the
// legacy engine also defines. Field names, order and kinds match the legacy
// definitions so instances can be mapped across the boundary.
package ij
