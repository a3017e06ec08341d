package patches

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/patch"
)

const (
	// PluginsDir is the directory name that triggers jar discovery.
	PluginsDir = "plugins"
	// JarsDir is the sibling of PluginsDir searched for jars.
	JarsDir = "jars"
)

// ErrAccessor reports that the plugin loader's URL list cannot be reached.
var ErrAccessor = errors.New("plugin class path accessor unavailable")

// ClassPathAugmenter adds the jars next to a plugins directory to the
// engine's plugin class loader. The loader keeps its URL list unexported;
// the augmenter reaches it through a field accessor resolved once.
type ClassPathAugmenter struct {
	field string

	once  sync.Once
	index []int
	err   error
}

// NewClassPathAugmenter returns an augmenter for ij.PluginClassLoader.
func NewClassPathAugmenter() *ClassPathAugmenter {
	return &ClassPathAugmenter{field: "urls"}
}

// Init is the routine bound after the plugin loader's Init(path).
func (a *ClassPathAugmenter) Init(c *patch.Call) {
	l, ok := patch.ReceiverAs[*ij.PluginClassLoader](c)
	if !ok || l == nil {
		return
	}

	path, _ := patch.Arg[string](c, 0)
	if path == "" {
		return
	}

	dir := filepath.Clean(path)
	if filepath.Base(dir) != PluginsDir {
		return
	}

	a.addJars(c, l, filepath.Join(filepath.Dir(dir), JarsDir))
}

// addJars adds every .jar below dir, depth first in name order.
func (a *ClassPathAugmenter) addJars(c *patch.Call, l *ij.PluginClassLoader, dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return true
	}

	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if !a.addJars(c, l, p) {
				return false
			}

			continue
		}

		if !strings.HasSuffix(entry.Name(), ".jar") {
			continue
		}

		if err := a.addURL(l, ij.FileURL(p)); err != nil {
			c.Bridge.Error(err)
			return false
		}
	}

	return true
}

func (a *ClassPathAugmenter) addURL(l *ij.PluginClassLoader, u string) error {
	a.once.Do(a.resolve)

	if a.err != nil {
		return a.err
	}

	f := reflect.ValueOf(l).Elem().FieldByIndex(a.index)
	urls := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	urls.Set(reflect.Append(urls, reflect.ValueOf(u)))

	return nil
}

func (a *ClassPathAugmenter) resolve() {
	f, ok := reflect.TypeFor[ij.PluginClassLoader]().FieldByName(a.field)
	if !ok || f.Type != reflect.TypeFor[[]string]() {
		a.err = fmt.Errorf("%w: %s.%s", ErrAccessor, ij.OwnerPluginClassLoader, a.field)
		return
	}

	a.index = f.Index
}
