package legacy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"legacy-bridge/internal/config"
	"legacy-bridge/internal/host"
	hostij "legacy-bridge/internal/host/ij"
	"legacy-bridge/internal/legacy/ij"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func boot(t *testing.T, sopts host.SessionOptions, cfg *config.Config) *Runtime {
	t.Helper()

	session := host.NewSession(sopts)
	t.Cleanup(session.Dispose)

	rt, err := Boot(context.Background(), session, Options{Config: cfg})
	require.NoError(t, err)

	return rt
}

func TestBoot(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ij.log")
	rt := boot(t, host.SessionOptions{}, &config.Config{LogFile: logFile, Unresolved: "fail"})
	ctx := context.Background()

	assert.True(t, rt.Session.Initialized())
	assert.True(t, rt.Loader.Hooks().Active())
	assert.Nil(t, rt.Plugins)
	assert.Contains(t, rt.Loader.Defined(), "legacy.bridge.Entry")

	out, err := rt.Bridge.EvalMacro(ctx, `ShowStatus("busy"); Print("Hello, " + GetArgument())`, "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world\n", out)
	assert.Equal(t, "busy", rt.Session.Status().Text())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Started new log on ")
	assert.Contains(t, string(data), "Hello, world\n")

	src := hostij.NewByteProcessor(1, 1, []byte{10})
	mapped, err := rt.Bridge.Map(src)
	require.NoError(t, err)

	bp, ok := mapped.(*ij.ByteProcessor)
	require.True(t, ok)
	assert.Same(t, src, bp.Bridged())

	imp := rt.Engine.NewImage("blobs", bp)
	require.NoError(t, rt.Bridge.Run(ctx, imp, "Show", ""))
	assert.True(t, rt.Session.Images().Contains(imp))
	assert.Same(t, imp, rt.Engine.Windows().CurrentImage())

	require.NoError(t, rt.Bridge.Run(ctx, nil, "Invert", ""))
	assert.Equal(t, []byte{245}, src.Pixels())

	require.NoError(t, rt.Engine.Do(ctx, func(ctx context.Context) error {
		imp.Hide(ctx)
		return nil
	}))
	assert.False(t, rt.Session.Images().Contains(imp))
	assert.NotContains(t, rt.Engine.Outputs().Outputs(), imp)

	require.NoError(t, rt.Bridge.Run(ctx, imp, "Close", ""))
	assert.Nil(t, imp.Window())
	assert.True(t, rt.Engine.Outputs().IsClosed(imp))
}

func TestBoot_LegacyModeKeepsHostUntouched(t *testing.T) {
	rt := boot(t, host.SessionOptions{LegacyMode: true}, nil)
	ctx := context.Background()

	imp := rt.Engine.NewImage("blobs", ij.NewByteProcessor(1, 1))
	require.NoError(t, rt.Bridge.Run(ctx, imp, "Show", ""))

	_, err := rt.Bridge.EvalMacro(ctx, `ShowStatus("quiet")`, "")
	require.NoError(t, err)

	assert.Zero(t, rt.Session.Images().Len())
	assert.Empty(t, rt.Session.Status().Text())
	assert.Equal(t, "quiet", rt.Engine.Status())
}

func TestBoot_Headless(t *testing.T) {
	rt := boot(t, host.SessionOptions{Headless: true}, nil)

	imp := rt.Engine.NewImage("blobs", ij.NewByteProcessor(1, 1))
	require.NoError(t, rt.Bridge.Run(context.Background(), imp, "Show", ""))
	assert.Nil(t, rt.Session.Images())
}

func TestBoot_PluginsDir(t *testing.T) {
	root := t.TempDir()
	plugins := filepath.Join(root, "plugins")
	jars := filepath.Join(root, "jars", "bio-formats")

	require.NoError(t, os.MkdirAll(plugins, 0o755))
	require.NoError(t, os.MkdirAll(jars, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jars, "formats-api.jar"), nil, 0o600))

	rt := boot(t, host.SessionOptions{}, &config.Config{Unresolved: "skip", PluginsDir: plugins})

	require.NotNil(t, rt.Plugins)
	assert.Contains(t, rt.Plugins.URLs(), ij.FileURL(filepath.Join(jars, "formats-api.jar")))

	out, err := rt.Bridge.Map(struct{ A int }{A: 1})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestBoot_DisposeTearsDown(t *testing.T) {
	session := host.NewSession(host.SessionOptions{})

	rt, err := Boot(context.Background(), session, Options{})
	require.NoError(t, err)

	session.Dispose()

	_, err = rt.Bridge.EvalMacro(context.Background(), `Print("late")`, "")
	require.ErrorIs(t, err, ij.ErrStopped)
	assert.Empty(t, rt.Loader.Defined())

	_, err = Boot(context.Background(), session, Options{})
	require.ErrorIs(t, err, ErrDisposed)
}

func TestBoot_DisposeFromLegacyThread(t *testing.T) {
	session := host.NewSession(host.SessionOptions{})

	rt, err := Boot(context.Background(), session, Options{})
	require.NoError(t, err)

	errc := make(chan error, 1)

	go func() {
		errc <- rt.Engine.Do(context.Background(), func(context.Context) error {
			host.NewBridge(session).Dispose()
			return nil
		})
	}()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispose on the legacy goroutine did not return")
	}

	select {
	case <-rt.Engine.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("legacy worker did not exit")
	}

	assert.True(t, session.Disposed())
	assert.Empty(t, rt.Loader.Defined())

	_, err = rt.Bridge.EvalMacro(context.Background(), `Print("late")`, "")
	require.ErrorIs(t, err, ij.ErrStopped)
}

func TestBoot_FailureLeavesNothingRunning(t *testing.T) {
	session := host.NewSession(host.SessionOptions{})
	defer session.Dispose()

	_, err := Boot(context.Background(), session, Options{Config: &config.Config{Unresolved: "ignore"}})
	require.Error(t, err)
	assert.False(t, session.Initialized())
}
