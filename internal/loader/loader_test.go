package loader

import (
	"context"
	"fmt"
	"io/fs"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacy-bridge/internal/bridge"
	"legacy-bridge/internal/bridge/bridgetest"
	"legacy-bridge/internal/patch"
)

type hostProcessor struct{ Width int }

func (hostProcessor) ClassName() string { return "ij.ByteProcessor" }

type legacyProcessor struct{ Width int }

func (*legacyProcessor) ClassName() string { return "ij.ByteProcessor" }

type legacyEngine struct{}

func (legacyEngine) ClassName() string { return "ij.IJ" }

type entry struct{}

func (entry) Map(data any) (any, error)                                 { return data, nil }
func (entry) Run(context.Context, any, string, string) error            { return nil }
func (entry) EvalMacro(context.Context, string, string) (string, error) { return "", nil }

const entryDescriptor = `
name: legacy.bridge.Entry
symbol: entry
implements:
  - bridge.LegacyBridge
`

type fixture struct {
	platform *ClassPath
	host     *ClassPath
	contract *Class
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	platform := NewClassPath("platform", nil)
	host := NewClassPath("host", platform)

	contract, err := host.Define(ContractSymbol(reflect.TypeFor[bridge.LegacyBridge]()))
	require.NoError(t, err)

	_, err = host.Define(SymbolOf[hostProcessor]())
	require.NoError(t, err)

	_, err = host.Define(SymbolOf[legacyEngine]())
	require.NoError(t, err)

	return &fixture{platform: platform, host: host, contract: contract}
}

func (f *fixture) newLoader(t *testing.T, resources fs.FS) *Loader {
	t.Helper()

	parent, err := DetermineParent(f.host, "ij.IJ")
	require.NoError(t, err)

	l, err := New(Options{
		Name:       "legacy",
		Parent:     parent,
		Shared:     []*Class{f.contract},
		Archive:    Archive{"ij.ByteProcessor": SymbolOf[legacyProcessor](), "ij.IJ": SymbolOf[legacyEngine]()},
		GluePrefix: "legacy.bridge.",
		Resources:  resources,
		Linker:     map[string]Symbol{"entry": SymbolOf[entry]()},
	})
	require.NoError(t, err)

	return l
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "ij.ByteProcessor", NameOf(reflect.TypeFor[hostProcessor]()))
	assert.Equal(t, "ij.ByteProcessor", NameOf(reflect.TypeFor[*legacyProcessor]()))
	assert.Equal(t, "bridge.HostBridge", NameOf(reflect.TypeFor[bridge.HostBridge]()))
	assert.Equal(t, "loader.fixture", NameOf(reflect.TypeFor[fixture]()))
	assert.Equal(t, "[]int", NameOf(reflect.TypeFor[[]int]()))
	assert.Empty(t, NameOf(nil))
}

func TestDetermineParent(t *testing.T) {
	f := newFixture(t)

	parent, err := DetermineParent(f.host, "ij.IJ")
	require.NoError(t, err)
	assert.Same(t, f.platform, parent)

	_, err = f.platform.DefineAs("ij.IJ", SymbolOf[legacyEngine]())
	require.NoError(t, err)

	_, err = DetermineParent(f.host, "ij.IJ")
	require.Error(t, err)
}

func TestSharedContractIdentity(t *testing.T) {
	f := newFixture(t)
	l := f.newLoader(t, nil)

	fromHost, err := f.host.LoadClass("bridge.LegacyBridge")
	require.NoError(t, err)

	fromLegacy, err := l.LoadClass("bridge.LegacyBridge")
	require.NoError(t, err)

	assert.Same(t, fromHost, fromLegacy)
	assert.Same(t, f.host, fromLegacy.Loader())

	_, err = fromLegacy.New()
	require.ErrorIs(t, err, ErrNotInstantiable)
}

func TestArchiveClassesArePrivate(t *testing.T) {
	f := newFixture(t)
	l := f.newLoader(t, nil)

	hostClass, err := f.host.LoadClass("ij.ByteProcessor")
	require.NoError(t, err)

	legacyClass, err := l.LoadClass("ij.ByteProcessor")
	require.NoError(t, err)

	assert.NotSame(t, hostClass, legacyClass)
	assert.Equal(t, hostClass.Name(), legacyClass.Name())
	assert.Same(t, l, legacyClass.Loader())
	assert.Equal(t, reflect.TypeFor[legacyProcessor](), legacyClass.Type())

	again, err := l.LoadClass("ij.ByteProcessor")
	require.NoError(t, err)
	assert.Same(t, legacyClass, again)

	v, err := l.Instantiate("ij.ByteProcessor")
	require.NoError(t, err)
	assert.IsType(t, &legacyProcessor{}, v)
}

func TestUnknownClass(t *testing.T) {
	f := newFixture(t)
	l := f.newLoader(t, nil)

	_, err := l.LoadClass("ij.Missing")
	require.ErrorIs(t, err, ErrClassNotFound)

	var cre *ClassResolutionError
	require.ErrorAs(t, err, &cre)
	assert.Equal(t, "ij.Missing", cre.Name)
	assert.Equal(t, "legacy", cre.Loader)
}

func TestDefineGlue(t *testing.T) {
	f := newFixture(t)
	l := f.newLoader(t, fstest.MapFS{
		"legacy/bridge/Entry.yaml": {Data: []byte(entryDescriptor)},
	})

	c, err := l.LoadClass(bridge.EntryPoint)
	require.NoError(t, err)
	assert.Same(t, l, c.Loader())
	assert.Equal(t, []string{bridge.EntryPoint}, l.Defined())

	v, err := c.New()
	require.NoError(t, err)

	_, ok := v.(bridge.LegacyBridge)
	assert.True(t, ok)

	again, err := l.LoadClass(bridge.EntryPoint)
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestDefineGlueFailures(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		errSub   string
	}{
		{name: "missing resource", resource: "", errSub: "class not found"},
		{name: "invalid yaml", resource: "name: [", errSub: "failed to parse descriptor"},
		{name: "unknown key", resource: "name: legacy.bridge.Entry\nbody: x\n", errSub: "failed to parse descriptor"},
		{name: "wrong name", resource: "name: legacy.bridge.Other\nsymbol: entry\n", errSub: "defines"},
		{name: "unlinked symbol", resource: "name: legacy.bridge.Entry\nsymbol: nope\n", errSub: "unlinked symbol"},
		{
			name:     "contract not shared",
			resource: "name: legacy.bridge.Entry\nsymbol: entry\nimplements: [bridge.HostBridge]\n",
			errSub:   "not a shared contract",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resources := fstest.MapFS{}
			if tt.resource != "" {
				resources["legacy/bridge/Entry.yaml"] = &fstest.MapFile{Data: []byte(tt.resource)}
			}

			f := newFixture(t)
			l := f.newLoader(t, resources)

			_, err := l.LoadClass(bridge.EntryPoint)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)

			var cre *ClassResolutionError
			require.ErrorAs(t, err, &cre)
			assert.Empty(t, l.Defined(), "no partial state")
		})
	}
}

func TestDefineGlueNotImplemented(t *testing.T) {
	f := newFixture(t)

	l, err := New(Options{
		Parent:     f.platform,
		Shared:     []*Class{f.contract},
		GluePrefix: "legacy.bridge.",
		Resources: fstest.MapFS{
			"legacy/bridge/Entry.yaml": {Data: []byte(entryDescriptor)},
		},
		Linker: map[string]Symbol{"entry": SymbolOf[legacyEngine]()},
	})
	require.NoError(t, err)

	_, err = l.LoadClass(bridge.EntryPoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not implement")
}

type countingFS struct {
	fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

func TestConcurrentDefinitionIsSerialized(t *testing.T) {
	resources := &countingFS{FS: fstest.MapFS{
		"legacy/bridge/Entry.yaml": {Data: []byte(entryDescriptor)},
	}}

	f := newFixture(t)
	l := f.newLoader(t, resources)

	const workers = 16

	classes := make([]*Class, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			c, err := l.LoadClass(bridge.EntryPoint)
			if err != nil {
				panic(fmt.Sprintf("load: %v", err))
			}

			classes[i] = c
		}()
	}

	wg.Wait()

	for _, c := range classes {
		assert.Same(t, classes[0], c)
	}

	assert.Equal(t, int32(1), resources.opens.Load())
}

func TestRelease(t *testing.T) {
	f := newFixture(t)
	l := f.newLoader(t, nil)

	_, err := l.LoadClass("ij.ByteProcessor")
	require.NoError(t, err)

	l.Release()

	assert.Empty(t, l.Defined())

	_, err = l.LoadClass("ij.ByteProcessor")
	require.ErrorIs(t, err, ErrReleased)
}

func TestNewActivatesHooks(t *testing.T) {
	table := patch.NewTable(nil)

	_, err := New(Options{Hooks: table, Bridge: bridgetest.NewRecorder()})
	require.NoError(t, err)
	assert.True(t, table.Active())

	_, err = New(Options{Hooks: table, Bridge: bridgetest.NewRecorder()})
	require.ErrorIs(t, err, patch.ErrActive)
}

func TestClassPathDefineTwice(t *testing.T) {
	cp := NewClassPath("cp", nil)

	_, err := cp.Define(SymbolOf[hostProcessor]())
	require.NoError(t, err)

	_, err = cp.Define(SymbolOf[hostProcessor]())
	require.Error(t, err)

	_, err = cp.DefineAs("", Symbol{})
	require.Error(t, err)

	assert.Equal(t, []string{"ij.ByteProcessor"}, cp.Names())
}
