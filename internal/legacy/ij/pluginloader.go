package ij

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PluginClassLoader holds the class path the engine loads plugins from.
type PluginClassLoader struct {
	engine *Engine

	mu   sync.Mutex
	path string
	urls []string
}

// NewPluginClassLoader creates a loader for the plugins directory path.
func (e *Engine) NewPluginClassLoader(ctx context.Context, path string) *PluginClassLoader {
	l := &PluginClassLoader{engine: e}
	l.Init(ctx, path)

	return l
}

// Init points the loader at the plugins directory path: the directory
// itself and the .jar files directly inside it.
func (l *PluginClassLoader) Init(ctx context.Context, path string) {
	l.engine.invoke(ctx, OpPluginLoaderInit, l, []any{path}, func() any {
		l.init(path)
		return nil
	})
}

func (l *PluginClassLoader) init(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.path = path
	if path == "" {
		return
	}

	l.urls = append(l.urls, FileURL(path)+"/")

	entries, err := os.ReadDir(path)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jar") {
			l.urls = append(l.urls, FileURL(filepath.Join(path, entry.Name())))
		}
	}
}

// Path returns the plugins directory.
func (l *PluginClassLoader) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.path
}

// URLs returns the class path entries in search order.
func (l *PluginClassLoader) URLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.urls...)
}

// FileURL returns the file: URL of path, made absolute.
func FileURL(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
