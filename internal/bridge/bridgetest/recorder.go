// Package bridgetest provides an in-memory HostBridge for tests.
package bridgetest

import (
	"sync"

	"legacy-bridge/internal/bridge"
)

// Progress is one ShowProgress call.
type Progress struct {
	Current, Final int
}

// Recorder is a HostBridge that records every call.
type Recorder struct {
	mu sync.Mutex

	LegacyMode  bool
	Initialized bool
	// Headless makes image registration fail with bridge.ErrUnsupported.
	Headless bool

	Progress     []Progress
	Statuses     []string
	Debugs       []string
	Errors       []error
	Registered   []any
	Unregistered []any
	Disposed     int
}

var _ bridge.HostBridge = (*Recorder)(nil)

// NewRecorder returns an initialized, non-legacy recorder.
func NewRecorder() *Recorder {
	return &Recorder{Initialized: true}
}

func (r *Recorder) IsLegacyMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.LegacyMode
}

func (r *Recorder) IsInitialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Initialized
}

func (r *Recorder) Dispose() {
	r.mu.Lock()
	r.Disposed++
	r.mu.Unlock()
}

func (r *Recorder) ShowProgress(current, final int) {
	r.mu.Lock()
	r.Progress = append(r.Progress, Progress{Current: current, Final: final})
	r.mu.Unlock()
}

func (r *Recorder) ShowStatus(text string) {
	r.mu.Lock()
	r.Statuses = append(r.Statuses, text)
	r.mu.Unlock()
}

func (r *Recorder) RegisterLegacyImage(image any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Headless {
		return bridge.ErrUnsupported
	}

	r.Registered = append(r.Registered, image)

	return nil
}

func (r *Recorder) UnregisterLegacyImage(image any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Headless {
		return bridge.ErrUnsupported
	}

	r.Unregistered = append(r.Unregistered, image)

	return nil
}

func (r *Recorder) Debug(text string) {
	r.mu.Lock()
	r.Debugs = append(r.Debugs, text)
	r.mu.Unlock()
}

func (r *Recorder) Error(err error) {
	r.mu.Lock()
	r.Errors = append(r.Errors, err)
	r.mu.Unlock()
}

// Mutations returns the number of host image registry changes.
func (r *Recorder) Mutations() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.Registered) + len(r.Unregistered)
}

// SetLegacyMode switches legacy mode.
func (r *Recorder) SetLegacyMode(v bool) {
	r.mu.Lock()
	r.LegacyMode = v
	r.mu.Unlock()
}

// SetInitialized switches the initialized flag.
func (r *Recorder) SetInitialized(v bool) {
	r.mu.Lock()
	r.Initialized = v
	r.mu.Unlock()
}
