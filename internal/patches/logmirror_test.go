package patches

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"legacy-bridge/internal/bridge/bridgetest"
	"legacy-bridge/internal/config"
)

var started = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

func header() string {
	return "Started new log on " + started.Format(time.UnixDate) + "\n"
}

func newMirror(t *testing.T, path string) (*LogMirror, *config.Setting, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.ErrorLevel)
	setting := config.NewSetting(path)

	m := NewLogMirror(setting, zap.New(core))
	m.now = func() time.Time { return started }
	t.Cleanup(func() { _ = m.Close() })

	return m, setting, logs
}

func TestLogMirror_AppendsMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ij.log")
	require.NoError(t, os.WriteFile(path, []byte("previous session\n"), 0o644))

	m, _, logs := newMirror(t, path)
	m.Write("first")
	m.Write("second\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous session\n"+header()+"first\nsecond\n", string(data))
	assert.Zero(t, logs.Len())
}

func TestLogMirror_Unset(t *testing.T) {
	m, _, _ := newMirror(t, "")
	m.open = func(string) (io.WriteCloser, error) {
		t.Fatal("opened without a log file")
		return nil, nil
	}

	m.Write("dropped")
}

// flakyFile fails every write after the first n.
type flakyFile struct {
	n      int
	writes int
	data   []byte
	closed bool
}

func (f *flakyFile) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.n {
		return 0, errors.New("disk full")
	}

	f.data = append(f.data, p...)

	return len(p), nil
}

func (f *flakyFile) Close() error {
	f.closed = true
	return nil
}

func TestLogMirror_FailureDisablesMirror(t *testing.T) {
	m, setting, logs := newMirror(t, "ij.log")

	file := &flakyFile{n: 2}
	opens := 0
	m.open = func(string) (io.WriteCloser, error) {
		opens++
		return file, nil
	}

	m.Write("one")
	m.Write("two")
	m.Write("three")
	m.Write("four")

	assert.Equal(t, header()+"one\ntwo\n", string(file.data))
	assert.True(t, file.closed)
	assert.Equal(t, 1, opens)
	assert.Equal(t, 1, logs.FilterMessage("log mirror disabled").Len())

	_, ok := setting.Get()
	assert.False(t, ok)
}

func TestLogMirror_OpenFailure(t *testing.T) {
	m, setting, logs := newMirror(t, filepath.Join(t.TempDir(), "missing", "ij.log"))

	m.Write("one")
	m.Write("two")

	_, ok := setting.Get()
	assert.False(t, ok)
	assert.Equal(t, 1, logs.Len())
}

func TestLogMirror_EngineLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ij.log")
	rec := bridgetest.NewRecorder()
	e, rs := newEngine(t, rec, Options{LogFile: config.NewSetting(path)})
	rs.Mirror.now = func() time.Time { return started }

	e.Log(context.Background(), "Hello, world!")
	require.NoError(t, rs.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header()+"Hello, world!\n", string(data))
	assert.Equal(t, []string{"Hello, world!"}, e.LogLines())
}
