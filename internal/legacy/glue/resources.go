package glue

import (
	"embed"
	"fmt"
	"io/fs"
	"reflect"

	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/loader"
	"legacy-bridge/internal/mapping"
)

// Prefix is the namespace of glue class names.
const Prefix = "legacy.bridge."

//go:embed resources
var resources embed.FS

// Resources returns the glue class descriptors, rooted for the loader.
func Resources() fs.FS {
	sub, err := fs.Sub(resources, "resources")
	if err != nil {
		panic(err)
	}

	return sub
}

// Linker maps descriptor symbols to the compiled glue types.
func Linker() map[string]loader.Symbol {
	return map[string]loader.Symbol{
		"entry": loader.SymbolOf[Entry](),
	}
}

// Archive returns the legacy engine's classes.
func Archive() loader.Archive {
	syms := []loader.Symbol{
		loader.SymbolOf[ij.ImageProcessor](),
		loader.SymbolOf[ij.ByteProcessor](),
		loader.SymbolOf[ij.FloatProcessor](),
		loader.SymbolOf[ij.Calibration](),
		loader.SymbolOf[ij.ImagePlus](),
		loader.SymbolOf[ij.ImageWindow](),
		loader.SymbolOf[ij.PluginClassLoader](),
		{Type: reflect.TypeFor[ij.Processor]()},
	}

	a := make(loader.Archive, len(syms))
	for _, s := range syms {
		a[loader.NameOf(s.Type)] = s
	}

	return a
}

// Mappings returns the mapping file of the types the bridge maps.
func Mappings() (*mapping.MappingFile, error) {
	data, err := resources.ReadFile("resources/mappings.yaml")
	if err != nil {
		return nil, fmt.Errorf("read mappings: %w", err)
	}

	return mapping.Parse(data)
}
