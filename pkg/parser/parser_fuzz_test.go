package parser_test

import (
	"testing"

	"github.com/t0yv0/agentlisp/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; invalid input yields diagnostics.
func FuzzParse(f *testing.F) {
	// Seed corpus with valid and edge-case programs
	seeds := []string{
		// Minimal valid program
		`(defun main () 42)`,
		// Hello world
		`(defun main () (let ((g "Hello")) (write g)))`,
		// Conditional
		`(defun main () (if 0 "a" "b"))`,
		// Primitives
		`(defun main () (write (read)))`,
		`(defun main () (ask "Q?"))`,
		`(defun main () (tell "context"))`,
		// User calls
		`(defun f (a b) a)
(defun main () (f 1 2))`,
		// Nested let
		`(defun main () (let ((x 1)) (let ((y 2)) y)))`,
		// Comment
		"; greeting\n(defun main () 1)",
		// Malformed inputs
		`(((`,
		`)))`,
		`(defun main`,
		`(defun main () (let`,
		`(defun 42 () 1)`,
		`(defun main () (write))`,
		``,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, source string) {
		prog, diags := parser.Parse(source, "fuzz.lisp")
		if prog == nil && len(diags) == 0 {
			t.Fatal("parse returned neither a program nor diagnostics")
		}
		if prog != nil && len(diags) > 0 {
			t.Fatal("parse returned both a program and diagnostics")
		}
		if prog != nil {
			if prog.Main() == nil {
				t.Fatal("accepted program has no main")
			}
			if len(prog.Main().Params) != 0 {
				t.Fatal("accepted program has main with parameters")
			}
		}
	})
}
