package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"legacy-bridge/internal/common"
)

// Codes reported by the mapping checks.
const (
	CodeFieldCount    = "field-count"
	CodeFieldName     = "field-name"
	CodeFieldKind     = "field-kind"
	CodeMissingType   = "missing-type"
	CodeNotStruct     = "not-struct"
	CodeUnresolved    = "unresolved-type"
	CodeExcludedField = "excluded-field"
)

// Diagnostics holds every finding of one check.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity
	// Code is one of the Code constants.
	Code    string
	Message string
	// Class is the cross-boundary type name the finding is about.
	Class string
	// Field is the dotted field path, if any.
	Field string
	// Suggestions are close names the caller may have meant.
	Suggestions []string
}

// Severity of a Diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

func (d *Diagnostics) add(sev Severity, code, message, class, field string) *Diagnostic {
	diag := Diagnostic{Severity: sev, Code: code, Message: message, Class: class, Field: field}

	switch sev {
	case SeverityError:
		d.Errors = append(d.Errors, diag)
		return &d.Errors[len(d.Errors)-1]
	case SeverityWarning:
		d.Warnings = append(d.Warnings, diag)
		return &d.Warnings[len(d.Warnings)-1]
	default:
		d.Infos = append(d.Infos, diag)
		return &d.Infos[len(d.Infos)-1]
	}
}

// AddError records an error and returns it so suggestions can be attached.
func (d *Diagnostics) AddError(code, message, class, field string) *Diagnostic {
	return d.add(SeverityError, code, message, class, field)
}

// AddWarning records a warning.
func (d *Diagnostics) AddWarning(code, message, class, field string) *Diagnostic {
	return d.add(SeverityWarning, code, message, class, field)
}

// AddInfo records an informational finding.
func (d *Diagnostics) AddInfo(code, message, class, field string) *Diagnostic {
	return d.add(SeverityInfo, code, message, class, field)
}

// HasErrors reports whether any error was recorded.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge appends other's findings.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// Codes returns the codes of every error, in order.
func (d *Diagnostics) Codes() []string {
	codes := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		codes = append(codes, e.Code)
	}

	return codes
}

// Err joins the error findings into one error, or returns nil.
func (d *Diagnostics) Err() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

func (d Diagnostic) String() string {
	var prefix []string
	if d.Class != "" {
		prefix = append(prefix, "["+d.Class+"]")
	}

	if d.Field != "" {
		prefix = append(prefix, d.Field)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
