// Package diagnostics defines StarBird diagnostic types for lex/parse/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	ELex       = "E_LEX"
	EParse     = "E_PARSE"
	EType      = "E_TYPE"
	EUndefined = "E_UNDEFINED"
	EIO        = "E_IO"
	EConfig    = "E_CONFIG"
)

// Diagnostic is one entry on the diagnostic channel: a source line, the
// context the error was found in (" at 'x'", " at end" or empty) and a message.
type Diagnostic struct {
	Code    string `json:"code"`
	Line    int    `json:"line"`
	Where   string `json:"where,omitempty"`
	Message string `json:"message"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code string, line int, where, message string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Line:    line,
		Where:   where,
		Message: message,
	}
}

// IsCompileTime reports whether code is raised before execution starts.
// A driver skips execution entirely when any compile-time diagnostic is present.
func IsCompileTime(code string) bool {
	return code == ELex || code == EParse
}

// IsRuntime reports whether code is raised by the evaluator.
func IsRuntime(code string) bool {
	return code == EType || code == EUndefined
}

// List is an ordered collection of diagnostics.
type List []Diagnostic

// HasCompileErrors reports whether any lexical or parse error was recorded.
func (l List) HasCompileErrors() bool {
	for _, d := range l {
		if IsCompileTime(d.Code) {
			return true
		}
	}
	return false
}

// HasRuntimeError reports whether a runtime error was recorded.
func (l List) HasRuntimeError() bool {
	for _, d := range l {
		if IsRuntime(d.Code) {
			return true
		}
	}
	return false
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	if d.Line <= 0 {
		return fmt.Sprintf("Error%s: %s (%s)", d.Where, d.Message, d.Code)
	}
	return fmt.Sprintf("[line %d] Error%s: %s (%s)", d.Line, d.Where, d.Message, d.Code)
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n")
}
