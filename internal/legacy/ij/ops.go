package ij

import (
	"context"

	"legacy-bridge/internal/patch"
)

// Owners of the intercepted operations.
const (
	OwnerIJ                = "ij.IJ"
	OwnerImagePlus         = "ij.ImagePlus"
	OwnerImageWindow       = "ij.ImageWindow"
	OwnerPluginClassLoader = "ij.PluginClassLoader"
)

// Intercepted operations.
var (
	OpShowProgress      = patch.Op{Owner: OwnerIJ, Signature: "ShowProgress(float64)"}
	OpShowProgressRatio = patch.Op{Owner: OwnerIJ, Signature: "ShowProgress(int,int)"}
	OpShowStatus        = patch.Op{Owner: OwnerIJ, Signature: "ShowStatus(string)"}
	OpLog               = patch.Op{Owner: OwnerIJ, Signature: "Log(string)"}

	OpImageUpdateAndDraw = patch.Op{Owner: OwnerImagePlus, Signature: "UpdateAndDraw()"}
	OpImageRepaintWindow = patch.Op{Owner: OwnerImagePlus, Signature: "RepaintWindow()"}
	OpImageShow          = patch.Op{Owner: OwnerImagePlus, Signature: "Show(string)"}
	OpImageHide          = patch.Op{Owner: OwnerImagePlus, Signature: "Hide()"}
	OpImageClose         = patch.Op{Owner: OwnerImagePlus, Signature: "Close()"}

	OpWindowSetVisible = patch.Op{Owner: OwnerImageWindow, Signature: "SetVisible(bool)"}
	OpWindowShow       = patch.Op{Owner: OwnerImageWindow, Signature: "Show()"}
	OpWindowClose      = patch.Op{Owner: OwnerImageWindow, Signature: "Close()"}

	OpPluginLoaderInit = patch.Op{Owner: OwnerPluginClassLoader, Signature: "Init(string)"}
)

// Hooks intercepts the engine's operations. *patch.Table implements it.
type Hooks interface {
	Invoke(ctx context.Context, op patch.Op, receiver any, args []any, original func() any) any
}

func (e *Engine) invoke(ctx context.Context, op patch.Op, receiver any, args []any, original func() any) any {
	if e.hooks == nil {
		return original()
	}

	return e.hooks.Invoke(ctx, op, receiver, args, original)
}
