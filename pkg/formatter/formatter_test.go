package formatter_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/formatter"
	"github.com/t0yv0/agentlisp/pkg/parser"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.lisp")
	if len(diags) > 0 {
		t.Fatalf("parse failed: %v", diags)
	}
	return prog
}

func format(t *testing.T, source string) string {
	t.Helper()
	return formatter.Format(mustParse(t, source))
}

func TestFormatSimpleDefun(t *testing.T) {
	got := format(t, "(defun   main  ()   42)")
	want := "(defun main () 42)\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatPreservesOrder(t *testing.T) {
	got := format(t, `(defun b () 2)(defun a () 1)(defun main () (a))`)
	bIdx := strings.Index(got, "defun b")
	aIdx := strings.Index(got, "defun a")
	if bIdx < 0 || aIdx < 0 || bIdx > aIdx {
		t.Errorf("definitions out of order:\n%s", got)
	}
}

func TestFormatBlankLineBetweenDefuns(t *testing.T) {
	got := format(t, `(defun a () 1)(defun main () (a))`)
	if !strings.Contains(got, ")\n\n(defun main") {
		t.Errorf("expected blank line between definitions:\n%s", got)
	}
}

func TestFormatStringEscapes(t *testing.T) {
	got := format(t, `(defun main () (write "a\"b\\c\nd\te"))`)
	if !strings.Contains(got, `"a\"b\\c\nd\te"`) {
		t.Errorf("escapes not preserved:\n%s", got)
	}
}

func TestFormatBreaksLongForms(t *testing.T) {
	src := `(defun main () (if (read) (write "a very long string that will not fit on one line at all") (write "another long string pushing this form past the limit")))`
	got := format(t, src)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 100 {
			t.Errorf("line too long (%d): %s", len(line), line)
		}
	}
	if !strings.Contains(got, "\n") {
		t.Error("expected multi-line output")
	}
}

func TestFormatDropsComments(t *testing.T) {
	got := format(t, "; leading comment\n(defun main () 1) ; trailing")
	if strings.Contains(got, ";") {
		t.Errorf("comments should not survive formatting:\n%s", got)
	}
}

func TestFormatExpr(t *testing.T) {
	prog := mustParse(t, `(defun main () (let ((x 1)) (write x)))`)
	got := formatter.FormatExpr(prog.Main().Body)
	want := `(let ((x 1)) (write x))`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Formatting is canonical: parse(format(p)) equals p up to spans.
func TestFormatRoundTrip(t *testing.T) {
	sources := []string{
		`(defun main () 42)`,
		`(defun main () -7)`,
		`(defun main () "hi there")`,
		`(defun main () (if 1 "a" "b"))`,
		`(defun main () (let ((x 1) (y "2")) (if x y "fallback")))`,
		`(defun main () (write (read)))`,
		`(defun main () (tell "ctx"))`,
		`(defun main () (ask "Q?"))`,
		`(defun f (a b) (if a b (f b a)))
(defun main () (f 1 2))`,
		`(defun main () (let ((greeting "a rather long greeting string for the occasion")) (if (read) (write greeting) (tell "nobody home, leaving a note instead of writing"))))`,
	}

	for _, src := range sources {
		first := mustParse(t, src)
		formatted := formatter.Format(first)
		second, diags := parser.Parse(formatted, "test.lisp")
		if len(diags) > 0 {
			t.Errorf("formatted output does not parse: %v\n%s", diags, formatted)
			continue
		}
		if !equalPrograms(first, second) {
			t.Errorf("round trip changed the program:\n%s", formatted)
		}
		// Formatting is idempotent.
		if again := formatter.Format(second); again != formatted {
			t.Errorf("formatting is not idempotent:\n%s\nvs\n%s", formatted, again)
		}
	}
}

// equalPrograms compares two programs structurally, ignoring spans.
func equalPrograms(a, b *ast.Program) bool {
	if !reflect.DeepEqual(a.Order, b.Order) {
		return false
	}
	for _, name := range a.Order {
		fa, fb := a.Funcs[name], b.Funcs[name]
		if !reflect.DeepEqual(fa.Params, fb.Params) {
			return false
		}
		if !equalExprs(fa.Body, fb.Body) {
			return false
		}
	}
	return true
}

func equalExprs(a, b ast.Expr) bool {
	switch ea := a.(type) {
	case *ast.IntLiteral:
		eb, ok := b.(*ast.IntLiteral)
		return ok && ea.Value == eb.Value
	case *ast.StrLiteral:
		eb, ok := b.(*ast.StrLiteral)
		return ok && ea.Value == eb.Value
	case *ast.VarExpr:
		eb, ok := b.(*ast.VarExpr)
		return ok && ea.Name == eb.Name
	case *ast.IfExpr:
		eb, ok := b.(*ast.IfExpr)
		return ok && equalExprs(ea.Cond, eb.Cond) && equalExprs(ea.Then, eb.Then) && equalExprs(ea.Else, eb.Else)
	case *ast.LetExpr:
		eb, ok := b.(*ast.LetExpr)
		if !ok || len(ea.Bindings) != len(eb.Bindings) {
			return false
		}
		for i := range ea.Bindings {
			if ea.Bindings[i].Name != eb.Bindings[i].Name {
				return false
			}
			if !equalExprs(ea.Bindings[i].Init, eb.Bindings[i].Init) {
				return false
			}
		}
		return equalExprs(ea.Body, eb.Body)
	case *ast.WriteExpr:
		eb, ok := b.(*ast.WriteExpr)
		return ok && equalExprs(ea.Arg, eb.Arg)
	case *ast.ReadExpr:
		_, ok := b.(*ast.ReadExpr)
		return ok
	case *ast.TellExpr:
		eb, ok := b.(*ast.TellExpr)
		return ok && equalExprs(ea.Arg, eb.Arg)
	case *ast.AskExpr:
		eb, ok := b.(*ast.AskExpr)
		return ok && equalExprs(ea.Arg, eb.Arg)
	case *ast.CallExpr:
		eb, ok := b.(*ast.CallExpr)
		if !ok || ea.Name != eb.Name || len(ea.Args) != len(eb.Args) {
			return false
		}
		for i := range ea.Args {
			if !equalExprs(ea.Args[i], eb.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}
