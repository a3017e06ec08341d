package glue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/bridge/bridgetest"
	"legacy-bridge/internal/host"
	hostij "legacy-bridge/internal/host/ij"
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/loader"
	"legacy-bridge/internal/mapping"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type unknownThing struct {
	A int
}

type namesOnly struct{}

func (namesOnly) Instantiate(string) (any, error) { return &Entry{}, nil }

type pathSource struct {
	*loader.ClassPath
}

func (p pathSource) Instantiate(name string) (any, error) {
	c, err := p.LoadClass(name)
	if err != nil {
		return nil, err
	}

	return c.New()
}

func bootEntry(t *testing.T, policy string) (*ij.Engine, *Entry, *loader.ClassPath) {
	t.Helper()

	hostCP, err := host.ClassPath()
	require.NoError(t, err)

	parent, err := loader.DetermineParent(hostCP, ij.AnchorClass)
	require.NoError(t, err)

	shared, err := host.Contracts(hostCP)
	require.NoError(t, err)

	ld, err := loader.New(loader.Options{
		Name:       "glue-test",
		Parent:     parent,
		Shared:     shared,
		Archive:    Archive(),
		GluePrefix: Prefix,
		Resources:  Resources(),
		Linker:     Linker(),
		Bridge:     bridgetest.NewRecorder(),
	})
	require.NoError(t, err)
	t.Cleanup(ld.Release)

	engine := ij.NewEngine(ij.Options{Name: "glue-test", Classes: ld})
	engine.Start()
	t.Cleanup(engine.Stop)

	var inst any

	require.NoError(t, engine.Do(context.Background(), func(ctx context.Context) error {
		var err error
		inst, err = engine.RunPlugIn(ctx, bridge.EntryPoint, policy)

		return err
	}))

	entry, ok := inst.(*Entry)
	require.True(t, ok, "entry point is %T", inst)

	return engine, entry, hostCP
}

func TestArchive(t *testing.T) {
	a := Archive()

	for _, name := range []string{"ij.ImageProcessor", "ij.ByteProcessor", "ij.ImagePlus", "ij.Processor", "ij.PluginClassLoader"} {
		assert.Contains(t, a, name)
	}

	assert.NotContains(t, a, bridge.EntryPoint)
}

func TestMappings(t *testing.T) {
	mf, err := Mappings()
	require.NoError(t, err)

	names := make([]string, 0, len(mf.Types))
	for _, ts := range mf.Types {
		names = append(names, ts.Name)
	}

	assert.Equal(t, []string{"ij.ByteProcessor", "ij.FloatProcessor", "ij.Calibration"}, names)
}

func TestEntry_NotSetUp(t *testing.T) {
	var e Entry

	_, err := e.Map(unknownThing{})
	require.ErrorIs(t, err, ErrNotSetUp)

	require.ErrorIs(t, e.Run(context.Background(), nil, "Invert", ""), ErrNotSetUp)

	_, err = e.EvalMacro(context.Background(), `Print("x")`, "")
	require.ErrorIs(t, err, ErrNotSetUp)

	d := e.Verify(loader.NewClassPath("empty", nil))
	assert.True(t, d.HasErrors())
	assert.Nil(t, e.Registry())
}

func TestEntry_SetupNeedsResolver(t *testing.T) {
	engine := ij.NewEngine(ij.Options{Classes: namesOnly{}})

	err := (&Entry{}).Setup(context.Background(), engine, "fail")
	require.Error(t, err)
}

func TestEntry_SetupRejectsPolicy(t *testing.T) {
	hostCP, err := host.ClassPath()
	require.NoError(t, err)

	engine := ij.NewEngine(ij.Options{Classes: pathSource{hostCP}})

	err = (&Entry{}).Setup(context.Background(), engine, "ignore")
	require.Error(t, err)
}

func TestEntry_DefinedFromDescriptor(t *testing.T) {
	_, entry, hostCP := bootEntry(t, "fail")

	assert.ElementsMatch(t, []string{"ij.ByteProcessor", "ij.Calibration", "ij.FloatProcessor"}, entry.Registry().Names())

	d := entry.Verify(hostCP)
	assert.False(t, d.HasErrors(), d.Err())
}

func TestEntry_Map(t *testing.T) {
	_, entry, _ := bootEntry(t, "fail")

	src := hostij.NewByteProcessor(2, 1, []byte{1, 200})

	out, err := entry.Map(src)
	require.NoError(t, err)

	bp, ok := out.(*ij.ByteProcessor)
	require.True(t, ok, "mapped to %T", out)
	assert.Same(t, src, bp.Bridged())
	assert.Equal(t, 2, bp.Width())
	assert.Equal(t, 200, bp.Get(1, 0))

	_, err = entry.Map(unknownThing{A: 1})
	require.ErrorIs(t, err, mapping.ErrUnresolvedType)
}

func TestEntry_MapSkipsUnresolved(t *testing.T) {
	_, entry, _ := bootEntry(t, "skip")

	out, err := entry.Map(&unknownThing{A: 1})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEntry_RunOnHostProcessor(t *testing.T) {
	engine, entry, _ := bootEntry(t, "fail")

	src := hostij.NewByteProcessor(2, 1, []byte{0, 55})

	require.NoError(t, entry.Run(context.Background(), src, "Invert", ""))
	assert.Equal(t, []byte{255, 200}, src.Pixels(), "pixels are shared with the mapped processor")
	assert.Equal(t, "Invert", engine.Status())

	outputs := engine.Outputs().Outputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, "Untitled", outputs[0].Title())
}

func TestEntry_RunOnLegacyImage(t *testing.T) {
	engine, entry, _ := bootEntry(t, "fail")
	ctx := context.Background()

	imp := engine.NewImage("blobs", ij.NewByteProcessor(1, 1))

	require.NoError(t, entry.Run(ctx, imp, "Rename...", "title=[dots]"))
	assert.Equal(t, "dots", imp.Title())

	require.NoError(t, entry.Run(ctx, imp, "Show", ""))
	require.NotNil(t, imp.Window())
	assert.True(t, imp.Window().Visible())

	engine.Windows().SetCurrentWindow(imp.Window())

	require.NoError(t, entry.Run(ctx, nil, "Rename...", "title=current"))
	assert.Equal(t, "current", imp.Title())

	require.ErrorIs(t, entry.Run(ctx, imp, "Gaussian Blur...", ""), ij.ErrUnknownCommand)
	require.Error(t, entry.Run(ctx, &unknownThing{}, "Invert", ""))
}

func TestEntry_EvalMacro(t *testing.T) {
	engine, entry, _ := bootEntry(t, "fail")

	out, err := entry.EvalMacro(context.Background(), `Print("Hello, " + GetArgument())`, "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world\n", out)
	assert.Equal(t, []string{"Hello, world"}, engine.LogLines())

	_, err = entry.EvalMacro(context.Background(), `Print(`, "")
	require.Error(t, err)
}
