package ij

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"go.uber.org/zap"
)

// macroPkg is the import path of the macro function library.
const macroPkg = "ijmacro"

// macroPrelude exposes the library to macro code under unqualified names.
const macroPrelude = `package main

import m "ijmacro"

func Print(s string)              { m.Print(s) }
func GetArgument() string         { return m.GetArgument() }
func ShowStatus(s string)         { m.ShowStatus(s) }
func ShowProgress(p float64)      { m.ShowProgress(p) }
func Run(command, options string) { m.Run(command, options) }
func GetTitle() string            { return m.GetTitle() }

func RunMacro() {
`

// RunMacro evaluates macro code with arg as its argument and returns what
// the macro printed. Printed lines also go to the log window. Commands run
// by the macro act on the current image.
func (e *Engine) RunMacro(ctx context.Context, code, arg string) (string, error) {
	var (
		out    strings.Builder
		runErr error
	)

	current := func() *ImagePlus { return e.windows.CurrentImage() }

	library := map[string]reflect.Value{
		"Print": reflect.ValueOf(func(s string) {
			out.WriteString(s)
			out.WriteByte('\n')
			e.Log(ctx, s)
		}),
		"GetArgument":  reflect.ValueOf(func() string { return arg }),
		"ShowStatus":   reflect.ValueOf(func(s string) { e.ShowStatus(ctx, s) }),
		"ShowProgress": reflect.ValueOf(func(p float64) { e.ShowProgress(ctx, p) }),
		"Run": reflect.ValueOf(func(command, options string) {
			if runErr == nil {
				runErr = e.RunCommand(ctx, current(), command, options)
			}
		}),
		"GetTitle": reflect.ValueOf(func() string {
			if imp := current(); imp != nil {
				return imp.Title()
			}

			return ""
		}),
	}

	i := interp.New(interp.Options{})
	if err := i.Use(interp.Exports{macroPkg + "/" + macroPkg: library}); err != nil {
		return "", fmt.Errorf("macro library: %w", err)
	}

	if _, err := i.EvalWithContext(ctx, macroPrelude+code+"\n}\n"); err != nil {
		return out.String(), fmt.Errorf("macro: %w", err)
	}

	v, err := i.EvalWithContext(ctx, "main.RunMacro")
	if err != nil {
		return out.String(), fmt.Errorf("macro entry: %w", err)
	}

	run, ok := v.Interface().(func())
	if !ok {
		return out.String(), fmt.Errorf("macro entry has type %s", v.Type())
	}

	if err := callMacro(run); err != nil {
		return out.String(), err
	}

	if runErr != nil {
		return out.String(), fmt.Errorf("macro: %w", runErr)
	}

	e.log.Debug("macro finished", zap.Int("bytes", out.Len()))

	return out.String(), nil
}

func callMacro(run func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("macro panicked: %v", p)
		}
	}()

	run()

	return nil
}
