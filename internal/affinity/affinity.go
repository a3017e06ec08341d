// Package affinity classifies the caller of a patch routine as running on
// the legacy-owned goroutine or not.
//
// Go does not expose goroutine identity, so the classification travels on the
// context: the legacy engine tags the context of every task it runs on its
// worker goroutine, and patch routines check the tag.
package affinity

import "context"

// Tag identifies one legacy-owned goroutine. Each engine owns exactly one.
type Tag struct {
	name string
}

type tagKey struct{}

// NewTag creates a tag for the named legacy worker.
func NewTag(name string) *Tag {
	return &Tag{name: name}
}

// Name returns the worker name.
func (t *Tag) Name() string {
	return t.name
}

// Bind returns a copy of ctx carrying the tag.
func (t *Tag) Bind(ctx context.Context) context.Context {
	return context.WithValue(ctx, tagKey{}, t)
}

// Owns reports whether ctx was bound to this tag.
func (t *Tag) Owns(ctx context.Context) bool {
	return From(ctx) == t
}

// From returns the tag carried by ctx, or nil.
func From(ctx context.Context) *Tag {
	if ctx == nil {
		return nil
	}

	t, _ := ctx.Value(tagKey{}).(*Tag)

	return t
}

// IsLegacy reports whether ctx belongs to any legacy-owned goroutine.
func IsLegacy(ctx context.Context) bool {
	return From(ctx) != nil
}
