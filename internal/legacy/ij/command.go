package ij

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Command is a menu command run on an image with a macro options string.
type Command func(ctx context.Context, imp *ImagePlus, options string) error

var errNoImage = errors.New("no image")

func registerBuiltins(e *Engine) {
	e.RegisterCommand("Invert", invert)
	e.RegisterCommand("Rename...", rename)
	e.RegisterCommand("Show", func(ctx context.Context, imp *ImagePlus, _ string) error {
		if imp == nil {
			return errNoImage
		}

		imp.Show(ctx, "")

		return nil
	})
	e.RegisterCommand("Close", func(ctx context.Context, imp *ImagePlus, _ string) error {
		if imp == nil {
			return errNoImage
		}

		imp.Close(ctx)

		return nil
	})
}

type inverter interface {
	Invert()
}

func invert(ctx context.Context, imp *ImagePlus, _ string) error {
	if imp == nil {
		return errNoImage
	}

	ip, ok := imp.Processor().(inverter)
	if !ok {
		return fmt.Errorf("cannot invert %T", imp.Processor())
	}

	ip.Invert()
	imp.markChanged()
	imp.engine.ShowStatus(ctx, "Invert")

	return nil
}

func rename(_ context.Context, imp *ImagePlus, options string) error {
	if imp == nil {
		return errNoImage
	}

	title, ok := Option(options, "title")
	if !ok || title == "" {
		return errors.New("missing title")
	}

	imp.SetTitle(title)

	return nil
}

// Option returns the value of key in a macro options string such as
// "title=[My Image] radius=2". Keys are matched case-sensitively.
func Option(options, key string) (string, bool) {
	prefix := key + "="
	rest := options

	for rest != "" {
		rest = strings.TrimLeft(rest, " ")

		i := strings.IndexByte(rest, '=')
		if i < 0 {
			return "", false
		}

		name := rest[:i]
		rest = rest[i+1:]

		var value string
		if strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				value, rest = rest[1:], ""
			} else {
				value, rest = rest[1:end], rest[end+1:]
			}
		} else if sp := strings.IndexByte(rest, ' '); sp >= 0 {
			value, rest = rest[:sp], rest[sp:]
		} else {
			value, rest = rest, ""
		}

		if name+"=" == prefix {
			return value, true
		}
	}

	return "", false
}
