package host

import (
	"fmt"
	"reflect"
	"sync"
)

// ImageMap is the host's registry of images shown by the legacy engine.
// Images are opaque handles compared by identity.
type ImageMap struct {
	mu     sync.RWMutex
	images map[any]int
	order  []any
	seq    int
}

func NewImageMap() *ImageMap {
	return &ImageMap{images: make(map[any]int)}
}

// Register adds image. Registering an image twice is a no-op.
func (m *ImageMap) Register(image any) error {
	if err := checkHandle(image); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.images[image]; ok {
		return nil
	}

	m.seq++
	m.images[image] = m.seq
	m.order = append(m.order, image)

	return nil
}

// Unregister removes image. Unknown images are ignored.
func (m *ImageMap) Unregister(image any) error {
	if err := checkHandle(image); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.images[image]; !ok {
		return nil
	}

	delete(m.images, image)

	for i, h := range m.order {
		if h == image {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	return nil
}

// Contains reports whether image is registered.
func (m *ImageMap) Contains(image any) bool {
	if checkHandle(image) != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.images[image]

	return ok
}

// Images returns the registered images in registration order.
func (m *ImageMap) Images() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]any(nil), m.order...)
}

func (m *ImageMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.images)
}

func checkHandle(image any) error {
	if image == nil {
		return fmt.Errorf("image handle is nil")
	}

	if t := reflect.TypeOf(image); !t.Comparable() {
		return fmt.Errorf("image handle %s is not comparable", t)
	}

	return nil
}
