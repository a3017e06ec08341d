package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"legacy-bridge/internal/analyze"
	"legacy-bridge/internal/diagnostic"
	"legacy-bridge/internal/legacy/glue"
	"legacy-bridge/internal/mapping"
)

const (
	defaultLegacyPkg = "legacy-bridge/internal/legacy/ij"
	defaultHostPkg   = "legacy-bridge/internal/host/ij"
)

type checkOptions struct {
	mappings  string
	legacyPkg string
	hostPkg   string
}

func newCheckCmd() *cobra.Command {
	var o checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that mapped types are declared alike on both sides",
		Long: `Loads the legacy and host packages from source and compares the field
order and kinds of every type in the mapping file, without running the engine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.mappings, "mappings", "m", "", "mapping file (default: the bridge's own)")
	f.StringVar(&o.legacyPkg, "legacy-pkg", defaultLegacyPkg, "package of the legacy types")
	f.StringVar(&o.hostPkg, "host-pkg", defaultHostPkg, "package of the host types")

	return cmd
}

func runCheck(cmd *cobra.Command, o checkOptions) error {
	var (
		mf  *mapping.MappingFile
		err error
	)

	if o.mappings != "" {
		mf, err = mapping.LoadFile(o.mappings)
	} else {
		mf, err = glue.Mappings()
	}

	if err != nil {
		return err
	}

	analyzer := analyze.NewAnalyzer()
	analyzer.Unexported = true

	graph, err := analyzer.LoadPackages(o.legacyPkg, o.hostPkg)
	if err != nil {
		return err
	}

	d := mapping.ValidateGraph(mf, graph, o.legacyPkg, o.hostPkg)

	out := cmd.OutOrStdout()
	for _, group := range [][]diagnostic.Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, x := range group {
			fmt.Fprintf(out, "%s: %s\n", x.Severity, x)
		}
	}

	if err := d.Err(); err != nil {
		return fmt.Errorf("%d type(s) diverge: %w", len(d.Errors), err)
	}

	fmt.Fprintf(out, "ok: %d type(s) checked\n", len(mf.Types))

	return nil
}
