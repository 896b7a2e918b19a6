package diagnostics_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
)

func TestFormatDiagnosticJSON(t *testing.T) {
	span := &ast.Span{File: "prog.lisp", StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 9}
	d := diagnostics.MakeDiag(diagnostics.EUnbound, "undefined variable: x", span, "")

	out := diagnostics.FormatDiagnostic(d, false)
	var parsed diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed.Code != diagnostics.EUnbound {
		t.Errorf("code: got %q", parsed.Code)
	}
	if parsed.Span == nil || parsed.Span.StartLine != 2 {
		t.Errorf("span not preserved: %+v", parsed.Span)
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "prog.lisp", StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 4}
	d := diagnostics.MakeDiag(diagnostics.EParse, "expected ')'", span, "close the form")

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "error[E_PARSE]") {
		t.Errorf("missing code: %s", out)
	}
	if !strings.Contains(out, "prog.lisp:3:1") {
		t.Errorf("missing location: %s", out)
	}
	if !strings.Contains(out, "hint: close the form") {
		t.Errorf("missing hint: %s", out)
	}
}

func TestFormatDiagnosticPrettyNoSpan(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EIO, "file not found", nil, "")
	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "<unknown>") {
		t.Errorf("expected unknown location: %s", out)
	}
}

func TestFormatDiagnostics(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EUnbound, "undefined variable: a", nil, ""),
		diagnostics.MakeDiag(diagnostics.EArity, "function f expects 2 arguments, got 1", nil, ""),
	}

	jsonOut := diagnostics.FormatDiagnostics(diags, false)
	var parsed []diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(jsonOut), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(parsed))
	}

	prettyOut := diagnostics.FormatDiagnostics(diags, true)
	if !strings.Contains(prettyOut, "E_UNBOUND") || !strings.Contains(prettyOut, "E_ARITY") {
		t.Errorf("pretty output missing codes: %s", prettyOut)
	}
}
