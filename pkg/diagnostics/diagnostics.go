// Package diagnostics defines AgentLisp diagnostic types for parse and
// evaluation errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/t0yv0/agentlisp/pkg/ast"
)

// Diagnostic code constants. The first three are parse-time codes; a
// program that produces one never reaches the evaluator. E_UNBOUND,
// E_UNKNOWN_FN, E_ARITY and E_STEP are step-time codes and are fatal to
// the run. The remaining codes are driver-side and never originate in the
// core evaluator.
const (
	ELex     = "E_LEX"
	EParse   = "E_PARSE"
	EProgram = "E_PROGRAM"

	EUnbound   = "E_UNBOUND"
	EUnknownFn = "E_UNKNOWN_FN"
	EArity     = "E_ARITY"
	EStep      = "E_STEP"

	EPolicy = "E_POLICY"
	EBudget = "E_BUDGET"
	EIO     = "E_IO"
)

// Diagnostic represents a parse, evaluation, or driver diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
