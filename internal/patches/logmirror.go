package patches

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"legacy-bridge/internal/config"
	"legacy-bridge/internal/patch"
)

// LogMirror appends every legacy log message to the file named by its
// setting. The file is opened on the first message. After any I/O failure
// the mirror stops and clears the setting. Writes are serialized.
type LogMirror struct {
	setting *config.Setting
	log     *zap.Logger
	open    func(path string) (io.WriteCloser, error)
	now     func() time.Time

	mu   sync.Mutex
	file io.WriteCloser
	w    *bufio.Writer
}

// NewLogMirror creates a mirror writing to the file named by setting.
func NewLogMirror(setting *config.Setting, logger *zap.Logger) *LogMirror {
	return &LogMirror{
		setting: setting,
		log:     logger,
		open:    openAppend,
		now:     time.Now,
	}
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Log is the routine bound to the engine's log operation.
func (m *LogMirror) Log(c *patch.Call) {
	if msg, ok := patch.Arg[string](c, 0); ok {
		m.Write(msg)
	}
}

// Write mirrors one message, adding the trailing newline if it is missing.
func (m *LogMirror) Write(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path, ok := m.setting.Get()
	if !ok {
		return
	}

	if m.w == nil {
		f, err := m.open(path)
		if err != nil {
			m.fail(path, err)
			return
		}

		m.file = f
		m.w = bufio.NewWriter(f)

		if _, err := m.w.WriteString("Started new log on " + m.now().Format(time.UnixDate) + "\n"); err != nil {
			m.fail(path, err)
			return
		}
	}

	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	if _, err := m.w.WriteString(message); err != nil {
		m.fail(path, err)
		return
	}

	if err := m.w.Flush(); err != nil {
		m.fail(path, err)
	}
}

func (m *LogMirror) fail(path string, err error) {
	m.log.Error("log mirror disabled", zap.String("file", path), zap.Error(err))

	if m.file != nil {
		_ = m.file.Close()
	}

	m.file, m.w = nil, nil
	m.setting.Clear()
}

// Close flushes and closes the file, if one is open.
func (m *LogMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file == nil {
		return nil
	}

	err := m.w.Flush()
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}

	m.file, m.w = nil, nil

	return err
}
