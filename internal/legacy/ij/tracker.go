package ij

import "sync"

// OutputTracker remembers the images the engine produced and which of them
// were closed.
type OutputTracker struct {
	mu      sync.Mutex
	outputs []*ImagePlus
	closed  map[*ImagePlus]struct{}
}

func newOutputTracker() *OutputTracker {
	return &OutputTracker{closed: make(map[*ImagePlus]struct{})}
}

// Add tracks imp as an output. Adding twice is a no-op.
func (t *OutputTracker) Add(imp *ImagePlus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, o := range t.outputs {
		if o == imp {
			return
		}
	}

	t.outputs = append(t.outputs, imp)
}

// Remove stops tracking imp as an output.
func (t *OutputTracker) Remove(imp *ImagePlus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, o := range t.outputs {
		if o == imp {
			t.outputs = append(t.outputs[:i], t.outputs[i+1:]...)
			return
		}
	}
}

// Outputs returns the tracked outputs in creation order.
func (t *OutputTracker) Outputs() []*ImagePlus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]*ImagePlus(nil), t.outputs...)
}

// AddClosed records imp as closed.
func (t *OutputTracker) AddClosed(imp *ImagePlus) {
	t.mu.Lock()
	t.closed[imp] = struct{}{}
	t.mu.Unlock()
}

// IsClosed reports whether imp was recorded as closed.
func (t *OutputTracker) IsClosed(imp *ImagePlus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.closed[imp]

	return ok
}
