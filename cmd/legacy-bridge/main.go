// Package main is the legacy-bridge command: it boots the legacy engine
// inside a host session and checks the bridge's type mappings.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legacy-bridge/internal/config"
	"legacy-bridge/internal/logging"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "legacy-bridge",
	Short: "Host a legacy ImageJ engine in an isolated loader",
	Long: `legacy-bridge runs the legacy imaging engine behind an isolation loader,
forwarding its status, log and image events to a host session.

Configuration comes from the environment:
  IJ_LOG_FILE                mirror legacy log messages to this file
  IJ_PLUGINS_DIR             plugins directory of the engine
  LEGACY_BRIDGE_DEBUG        debug logging
  LEGACY_BRIDGE_LEGACY_MODE  run without host notifications
  LEGACY_BRIDGE_UNRESOLVED   fail or skip unmapped types`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Debug || verbose)

		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(newHeadlessCmd(), newCheckCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
