package host

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"legacy-bridge/internal/logging"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// Headless sessions have no image registry.
	Headless bool
	// LegacyMode sessions never receive notifications from the engine.
	LegacyMode bool
	Logger     *zap.Logger
}

// Session is one host application context.
type Session struct {
	id         uuid.UUID
	log        *zap.Logger
	status     *StatusChannel
	images     *ImageMap
	legacyMode atomic.Bool
	ready      atomic.Bool

	mu        sync.Mutex
	onDispose []func()
	disposed  bool
}

// NewSession creates a session that is not yet initialized.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		id:     uuid.New(),
		status: NewStatusChannel(),
	}

	s.log = logging.OrNop(opts.Logger).Named("host").With(zap.String("session", s.id.String()))

	if !opts.Headless {
		s.images = NewImageMap()
	}

	s.legacyMode.Store(opts.LegacyMode)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Logger() *zap.Logger { return s.log }

// Status returns the session's status channel.
func (s *Session) Status() *StatusChannel { return s.status }

// Images returns the image registry, or nil in a headless session.
func (s *Session) Images() *ImageMap { return s.images }

func (s *Session) LegacyMode() bool { return s.legacyMode.Load() }

// SetLegacyMode switches the session in or out of legacy mode.
func (s *Session) SetLegacyMode(on bool) { s.legacyMode.Store(on) }

// Initialized reports whether the session finished starting up.
func (s *Session) Initialized() bool { return s.ready.Load() }

func (s *Session) SetInitialized() { s.ready.Store(true) }

// OnDispose registers fn to run when the session is disposed. Hooks run in
// reverse registration order. Registering on a disposed session runs fn now.
func (s *Session) OnDispose(fn func()) {
	s.mu.Lock()
	if !s.disposed {
		s.onDispose = append(s.onDispose, fn)
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	fn()
}

// Dispose runs the dispose hooks once.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}

	s.disposed = true
	hooks := s.onDispose
	s.onDispose = nil
	s.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}

	s.ready.Store(false)
	s.status.Close()
	s.log.Info("session disposed", zap.Int("hooks", len(hooks)))
}

// Disposed reports whether Dispose ran.
func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.disposed
}
