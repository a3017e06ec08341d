package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/loader"
)

func TestSession_DisposeRunsHooksOnce(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.SetInitialized()

	var order []string
	s.OnDispose(func() { order = append(order, "engine") })
	s.OnDispose(func() { order = append(order, "loader") })

	b := NewBridge(s)
	b.Dispose()
	b.Dispose()

	assert.Equal(t, []string{"loader", "engine"}, order)
	assert.True(t, s.Disposed())
	assert.False(t, s.Initialized())

	s.OnDispose(func() { order = append(order, "late") })
	assert.Equal(t, []string{"loader", "engine", "late"}, order)
}

func TestSession_IDsAreUnique(t *testing.T) {
	a := NewSession(SessionOptions{})
	b := NewSession(SessionOptions{})

	assert.NotEqual(t, a.ID(), b.ID())
}

func TestBridge_Flags(t *testing.T) {
	s := NewSession(SessionOptions{LegacyMode: true})
	b := NewBridge(s)

	assert.True(t, b.IsLegacyMode())
	assert.False(t, b.IsInitialized())

	s.SetLegacyMode(false)
	s.SetInitialized()

	assert.False(t, b.IsLegacyMode())
	assert.True(t, b.IsInitialized())
}

func TestBridge_ImageRegistry(t *testing.T) {
	s := NewSession(SessionOptions{})
	b := NewBridge(s)

	first, second := new(int), new(int)

	require.NoError(t, b.RegisterLegacyImage(first))
	require.NoError(t, b.RegisterLegacyImage(second))
	require.NoError(t, b.RegisterLegacyImage(first))
	assert.Equal(t, []any{first, second}, s.Images().Images())

	require.NoError(t, b.UnregisterLegacyImage(first))
	require.NoError(t, b.UnregisterLegacyImage(first))
	assert.False(t, s.Images().Contains(first))
	assert.Equal(t, 1, s.Images().Len())

	require.Error(t, b.RegisterLegacyImage(nil))
	require.Error(t, b.RegisterLegacyImage([]int{1}))
	assert.False(t, s.Images().Contains([]int{1}))
}

func TestBridge_Headless(t *testing.T) {
	b := NewBridge(NewSession(SessionOptions{Headless: true}))

	require.ErrorIs(t, b.RegisterLegacyImage(new(int)), bridge.ErrUnsupported)
	require.ErrorIs(t, b.UnregisterLegacyImage(new(int)), bridge.ErrUnsupported)
}

func TestBridge_StatusAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSession(SessionOptions{Logger: zap.New(core)})
	b := NewBridge(s)

	var events []StatusEvent
	cancel := s.Status().Subscribe(func(ev StatusEvent) { events = append(events, ev) })

	b.ShowStatus("Invert")
	b.ShowProgress(500, 1000)
	cancel()
	b.ShowStatus("unheard")

	assert.Equal(t, []StatusEvent{
		{Text: "Invert"},
		{Progress: 500, Maximum: 1000, IsProgress: true},
	}, events)
	assert.Equal(t, "unheard", s.Status().Text())

	current, maximum := s.Status().Progress()
	assert.Equal(t, 500, current)
	assert.Equal(t, 1000, maximum)

	b.Debug("ImagePlus.Show(): blobs")
	b.Error(assert.AnError)

	assert.Equal(t, 1, logs.FilterMessage("ImagePlus.Show(): blobs").Len())
	assert.Equal(t, 1, logs.FilterMessage("legacy engine error").Len())
}

func TestStatusChannel_Close(t *testing.T) {
	c := NewStatusChannel()
	called := 0
	c.Subscribe(func(StatusEvent) { called++ })

	c.Close()
	c.ShowStatus("after close")
	c.Subscribe(func(StatusEvent) { called++ })()

	assert.Zero(t, called)
	assert.Empty(t, c.Text())
}

func TestClassPath(t *testing.T) {
	cp, err := ClassPath()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bridge.HostBridge",
		"bridge.LegacyBridge",
		"ij.ByteProcessor",
		"ij.Calibration",
		"ij.FloatProcessor",
		"ij.ImageProcessor",
	}, cp.Names())

	parent, err := loader.DetermineParent(cp, "ij.ImageProcessor")
	require.NoError(t, err)
	assert.Equal(t, "platform", parent.Name())

	contracts, err := Contracts(cp)
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	again, err := cp.LoadClass("bridge.LegacyBridge")
	require.NoError(t, err)
	assert.Same(t, contracts[1], again)
}
