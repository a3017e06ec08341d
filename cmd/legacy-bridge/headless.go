package main

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"legacy-bridge/internal/config"
	"legacy-bridge/internal/host"
	hostij "legacy-bridge/internal/host/ij"
	"legacy-bridge/internal/legacy"
)

type headlessOptions struct {
	macro    string
	argument string
	command  string
	options  string
	width    int
	height   int
	dump     bool
}

func newHeadlessCmd() *cobra.Command {
	var o headlessOptions

	cmd := &cobra.Command{
		Use:   "headless [macro-file]",
		Short: "Boot the engine without an image registry and run a macro",
		Long: `Boots the legacy engine in a headless host session, evaluates a macro
(from a file or --eval) and runs a command on a host image mapped into the engine.

Example:
  legacy-bridge headless --eval 'Print("Hello, " + GetArgument())' --arg world
  legacy-bridge headless --command Invert --dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read macro: %w", err)
				}

				o.macro = string(data)
			}

			return runHeadless(cmd, cfg, logger, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.macro, "eval", "e", "", "macro code to evaluate")
	f.StringVar(&o.argument, "arg", "", "macro argument")
	f.StringVar(&o.command, "command", "", "command to run on a mapped host image")
	f.StringVar(&o.options, "options", "", "command options, e.g. \"title=[blobs]\"")
	f.IntVar(&o.width, "width", 4, "width of the host image")
	f.IntVar(&o.height, "height", 2, "height of the host image")
	f.BoolVar(&o.dump, "dump", false, "dump the host image after the command")

	return cmd
}

func runHeadless(cmd *cobra.Command, cfg *config.Config, log *zap.Logger, o headlessOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	session := host.NewSession(host.SessionOptions{
		Headless:   true,
		LegacyMode: cfg.LegacyMode,
		Logger:     log,
	})
	defer session.Dispose()

	cancel := session.Status().Subscribe(func(ev host.StatusEvent) {
		if ev.Text != "" {
			log.Info("status", zap.String("text", ev.Text))
		}
	})
	defer cancel()

	rt, err := legacy.Boot(ctx, session, legacy.Options{Config: cfg, Logger: log})
	if err != nil {
		return err
	}

	if o.macro != "" {
		printed, err := rt.Bridge.EvalMacro(ctx, o.macro, o.argument)
		if err != nil {
			return fmt.Errorf("macro: %w", err)
		}

		_, _ = io.WriteString(out, printed)
	}

	if o.command == "" {
		return nil
	}

	img := gradient(o.width, o.height)
	if err := rt.Bridge.Run(ctx, img, o.command, o.options); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %v\n", o.command, img.Pixels())

	if o.dump {
		spew.Fdump(out, img)
	}

	return nil
}

// gradient returns a host image whose pixels ramp from 0 to 255.
func gradient(width, height int) *hostij.ByteProcessor {
	width, height = max(width, 1), max(height, 1)

	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte(i * 255 / max(len(pixels)-1, 1))
	}

	return hostij.NewByteProcessor(width, height, pixels)
}
