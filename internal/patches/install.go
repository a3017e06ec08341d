package patches

import (
	"fmt"

	"go.uber.org/zap"

	"legacy-bridge/internal/config"
	"legacy-bridge/internal/legacy/ij"
	"legacy-bridge/internal/logging"
	"legacy-bridge/internal/patch"
)

// Options configures the routines.
type Options struct {
	// LogFile names the file legacy log messages are mirrored to.
	LogFile *config.Setting
	Logger  *zap.Logger
}

// Routines are the stateful routines of one engine.
type Routines struct {
	Mirror    *LogMirror
	ClassPath *ClassPathAugmenter
}

// Install binds every routine to t. It fails if t already has any of them.
func Install(t *patch.Table, opts Options) (*Routines, error) {
	log := logging.OrNop(opts.Logger).Named("patches")

	setting := opts.LogFile
	if setting == nil {
		setting = &config.Setting{}
	}

	rs := &Routines{
		Mirror:    NewLogMirror(setting, log),
		ClassPath: NewClassPathAugmenter(),
	}

	for _, b := range rs.bindings() {
		if err := t.Bind(b.Op, b.Mode, b.Routine); err != nil {
			return nil, fmt.Errorf("install patches: %w", err)
		}
	}

	log.Debug("patches installed", zap.Int("bindings", len(rs.bindings())))

	return rs, nil
}

// Close releases the log mirror's file.
func (rs *Routines) Close() error {
	return rs.Mirror.Close()
}

func (rs *Routines) bindings() []patch.Binding {
	return []patch.Binding{
		{Op: ij.OpShowProgress, Mode: patch.Prepend, Routine: showProgress},
		{Op: ij.OpShowProgressRatio, Mode: patch.Prepend, Routine: showProgressRatio},
		{Op: ij.OpShowStatus, Mode: patch.Prepend, Routine: showStatus},
		{Op: ij.OpLog, Mode: patch.Append, Routine: rs.Mirror.Log},

		{Op: ij.OpImageUpdateAndDraw, Mode: patch.Append, Routine: updateAndDraw},
		{Op: ij.OpImageRepaintWindow, Mode: patch.Append, Routine: repaintWindow},
		{Op: ij.OpImageShow, Mode: patch.Append, Routine: showImage},
		{Op: ij.OpImageHide, Mode: patch.Append, Routine: hideImage},
		{Op: ij.OpImageClose, Mode: patch.Append, Routine: closeImage},

		{Op: ij.OpWindowSetVisible, Mode: patch.Replace, Routine: setWindowVisible},
		{Op: ij.OpWindowShow, Mode: patch.Replace, Routine: showWindow},
		{Op: ij.OpWindowClose, Mode: patch.Prepend, Routine: closeWindow},

		{Op: ij.OpPluginLoaderInit, Mode: patch.Append, Routine: rs.ClassPath.Init},
	}
}
