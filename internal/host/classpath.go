package host

import (
	"fmt"

	"legacy-bridge/internal/bridge"
	hostij "legacy-bridge/internal/host/ij"
	"legacy-bridge/internal/loader"
)

// ClassPath returns the host class path: the bridge contracts and the
// host's imaging types, on top of an empty platform class path.
func ClassPath() (*loader.ClassPath, error) {
	platform := loader.NewClassPath("platform", nil)
	cp := loader.NewClassPath("host", platform)

	symbols := []loader.Symbol{
		loader.SymbolOf[hostij.ImageProcessor](),
		loader.SymbolOf[hostij.ByteProcessor](),
		loader.SymbolOf[hostij.FloatProcessor](),
		loader.SymbolOf[hostij.Calibration](),
	}

	for _, t := range bridge.ContractTypes() {
		symbols = append(symbols, loader.ContractSymbol(t))
	}

	for _, sym := range symbols {
		if _, err := cp.Define(sym); err != nil {
			return nil, fmt.Errorf("host class path: %w", err)
		}
	}

	return cp, nil
}

// Contracts loads the bridge contracts from cp, for sharing with a legacy
// loader.
func Contracts(cp loader.Resolver) ([]*loader.Class, error) {
	types := bridge.ContractTypes()
	out := make([]*loader.Class, 0, len(types))

	for _, t := range types {
		c, err := cp.LoadClass(loader.NameOf(t))
		if err != nil {
			return nil, fmt.Errorf("load contract: %w", err)
		}

		if c.Type() != t {
			return nil, fmt.Errorf("contract %s resolves to %s", loader.NameOf(t), c.Type())
		}

		out = append(out, c)
	}

	return out, nil
}
