// Package validator implements static checking of AgentLisp programs.
//
// The language has no closures: a function body sees exactly its
// parameters plus enclosing let bindings. Scoping is therefore fully
// static, and unbound variables, unknown call targets, and call arity
// mismatches can all be reported before a single evaluation step. The
// evaluator still enforces the same errors at step time; this pass exists
// so that `agentlisp check` can reject a program without running it.
package validator

import (
	"fmt"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	prog  *ast.Program
	diags []diagnostics.Diagnostic
}

// Check validates every function body of the program and returns the
// collected diagnostics. An empty result means the program cannot fail
// with E_UNBOUND, E_UNKNOWN_FN, or E_ARITY at run time.
func Check(prog *ast.Program) []diagnostics.Diagnostic {
	v := &validator{prog: prog}
	for _, name := range prog.Order {
		fn := prog.Funcs[name]
		sc := newScope(nil)
		for _, param := range fn.Params {
			sc.add(param)
		}
		v.checkExpr(fn.Body, sc)
	}
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

func (v *validator) checkExpr(expr ast.Expr, sc *scope) {
	switch e := expr.(type) {
	case *ast.IntLiteral, *ast.StrLiteral, *ast.ReadExpr:
		// Nothing to check.

	case *ast.VarExpr:
		if !sc.has(e.Name) {
			v.addDiag(diagnostics.EUnbound, fmt.Sprintf("undefined variable: %s", e.Name), e.Span)
		}

	case *ast.IfExpr:
		v.checkExpr(e.Cond, sc)
		v.checkExpr(e.Then, sc)
		v.checkExpr(e.Else, sc)

	case *ast.LetExpr:
		// Inits are checked in the enclosing scope: bindings are visible
		// only in the body, not in each other's inits.
		for _, b := range e.Bindings {
			v.checkExpr(b.Init, sc)
		}
		body := newScope(sc)
		for _, b := range e.Bindings {
			body.add(b.Name)
		}
		v.checkExpr(e.Body, body)

	case *ast.WriteExpr:
		v.checkExpr(e.Arg, sc)

	case *ast.TellExpr:
		v.checkExpr(e.Arg, sc)

	case *ast.AskExpr:
		v.checkExpr(e.Arg, sc)

	case *ast.CallExpr:
		fn, ok := v.prog.Funcs[e.Name]
		if !ok {
			v.addDiag(diagnostics.EUnknownFn, fmt.Sprintf("undefined function: %s", e.Name), e.Span)
		} else if len(e.Args) != len(fn.Params) {
			v.addDiag(diagnostics.EArity,
				fmt.Sprintf("function %s expects %d arguments, got %d", e.Name, len(fn.Params), len(e.Args)),
				e.Span)
		}
		for _, arg := range e.Args {
			v.checkExpr(arg, sc)
		}
	}
}
