package evaluator

import (
	"fmt"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
)

// EvalError represents a fatal evaluation error. The evaluator never
// retries or recovers from one; the run is over and the driver decides
// how to report it.
type EvalError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *EvalError) Error() string {
	return e.Message
}

// Diagnostic converts the error into a displayable diagnostic.
func (e *EvalError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// NewState constructs the initial Computing state for main() with the
// empty environment. The parser guarantees a zero-parameter main exists;
// the checks here guard against hand-built programs.
func NewState(prog *ast.Program) (State, error) {
	main := prog.Main()
	if main == nil {
		return nil, &EvalError{
			Code:    diagnostics.EUnknownFn,
			Message: "program has no 'main' function",
		}
	}
	if len(main.Params) != 0 {
		return nil, &EvalError{
			Code:    diagnostics.EArity,
			Message: "'main' must take no parameters",
			Span:    &main.Span,
		}
	}
	return &Computing{Env: nil, Expr: main.Body, kont: nil}, nil
}

// Step applies exactly one reduction rule to st and returns the successor
// state. A Done state and an Interop state make no progress and are
// returned unchanged; an Interop state advances only through Resume.
// Step performs no I/O: effects surface as returned Interop states.
func Step(prog *ast.Program, st State) (State, error) {
	s, ok := st.(*Computing)
	if !ok {
		return st, nil
	}

	if v, isValue := exprValue(s.Expr); isValue {
		return plug(prog, v, s.kont)
	}

	switch expr := s.Expr.(type) {
	case *ast.VarExpr:
		v, found := s.Env.Get(expr.Name)
		if !found {
			return nil, &EvalError{
				Code:    diagnostics.EUnbound,
				Message: fmt.Sprintf("undefined variable: %s", expr.Name),
				Span:    &expr.Span,
			}
		}
		return plug(prog, v, s.kont)

	case *ast.IfExpr:
		k := push(&ifFrame{env: s.Env, then: expr.Then, els: expr.Else}, s.kont)
		return &Computing{Env: s.Env, Expr: expr.Cond, kont: k}, nil

	case *ast.LetExpr:
		if len(expr.Bindings) == 0 {
			// Rejected at parse time; tolerate hand-built ASTs.
			return &Computing{Env: s.Env, Expr: expr.Body, kont: s.kont}, nil
		}
		first := expr.Bindings[0]
		k := push(&letFrame{
			env:   s.Env,
			names: []string{first.Name},
			rest:  expr.Bindings[1:],
			body:  expr.Body,
		}, s.kont)
		return &Computing{Env: s.Env, Expr: first.Init, kont: k}, nil

	case *ast.ReadExpr:
		return &Interop{Call: ReadCall{}, env: s.Env, span: expr.Span, kont: s.kont}, nil

	case *ast.WriteExpr:
		k := push(&writeFrame{env: s.Env, span: expr.Span}, s.kont)
		return &Computing{Env: s.Env, Expr: expr.Arg, kont: k}, nil

	case *ast.TellExpr:
		k := push(&tellFrame{env: s.Env, span: expr.Span}, s.kont)
		return &Computing{Env: s.Env, Expr: expr.Arg, kont: k}, nil

	case *ast.AskExpr:
		k := push(&askFrame{env: s.Env, span: expr.Span}, s.kont)
		return &Computing{Env: s.Env, Expr: expr.Arg, kont: k}, nil

	case *ast.CallExpr:
		if len(expr.Args) == 0 {
			return invoke(prog, expr.Name, expr.Span, nil, s.kont)
		}
		k := push(&callFrame{
			env:  s.Env,
			name: expr.Name,
			span: expr.Span,
			rest: expr.Args[1:],
		}, s.kont)
		return &Computing{Env: s.Env, Expr: expr.Args[0], kont: k}, nil
	}

	return nil, &EvalError{
		Code:    diagnostics.EStep,
		Message: fmt.Sprintf("cannot reduce expression of kind %s", s.Expr.Kind()),
	}
}

// Resume advances an Interop state using the externally supplied result.
// For read and ask the result becomes the value of the originating
// expression; write and tell always resume to the empty string. The
// successor is a Computing state carrying the plugged value.
func Resume(st State, result string) (State, error) {
	s, ok := st.(*Interop)
	if !ok {
		return nil, &EvalError{
			Code:    diagnostics.EStep,
			Message: "resume requires a state pending on a system call",
		}
	}

	var value string
	switch s.Call.(type) {
	case ReadCall, AskCall:
		value = result
	default:
		value = ""
	}

	return &Computing{
		Env:  s.env,
		Expr: &ast.StrLiteral{Span: s.span, Value: value},
		kont: s.kont,
	}, nil
}

// exprValue converts an expression to a value if it is a literal.
func exprValue(expr ast.Expr) (Value, bool) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return NewInt(e.Value), true
	case *ast.StrLiteral:
		return NewStr(e.Value), true
	}
	return nil, false
}

// plug hands a reduced value to the topmost frame of the continuation,
// or finishes the run when no frames remain.
func plug(prog *ast.Program, v Value, k *kont) (State, error) {
	if k == nil {
		return &Done{Value: v}, nil
	}

	switch f := k.frame.(type) {
	case *ifFrame:
		branch := f.els
		if Truthy(v) {
			branch = f.then
		}
		return &Computing{Env: f.env, Expr: branch, kont: k.next}, nil

	case *letFrame:
		vals := appendValue(f.vals, v)
		if len(f.rest) == 0 {
			body := f.env.Extend(f.names, vals)
			return &Computing{Env: body, Expr: f.body, kont: k.next}, nil
		}
		next := f.rest[0]
		nk := push(&letFrame{
			env:   f.env,
			names: appendName(f.names, next.Name),
			vals:  vals,
			rest:  f.rest[1:],
			body:  f.body,
		}, k.next)
		return &Computing{Env: f.env, Expr: next.Init, kont: nk}, nil

	case *callFrame:
		done := appendValue(f.done, v)
		if len(f.rest) == 0 {
			return invoke(prog, f.name, f.span, done, k.next)
		}
		nk := push(&callFrame{
			env:  f.env,
			name: f.name,
			span: f.span,
			done: done,
			rest: f.rest[1:],
		}, k.next)
		return &Computing{Env: f.env, Expr: f.rest[0], kont: nk}, nil

	case *writeFrame:
		return &Interop{Call: WriteCall{Text: Text(v)}, env: f.env, span: f.span, kont: k.next}, nil

	case *tellFrame:
		return &Interop{Call: TellCall{Text: Text(v)}, env: f.env, span: f.span, kont: k.next}, nil

	case *askFrame:
		return &Interop{Call: AskCall{Question: Text(v)}, env: f.env, span: f.span, kont: k.next}, nil
	}

	return nil, &EvalError{
		Code:    diagnostics.EStep,
		Message: "unknown continuation frame",
	}
}

// invoke applies a user-defined function to fully reduced arguments. The
// callee's body is evaluated in a fresh environment binding only its
// parameters: user functions do not close over the caller's scope.
func invoke(prog *ast.Program, name string, span ast.Span, args []Value, k *kont) (State, error) {
	fn, ok := prog.Funcs[name]
	if !ok {
		return nil, &EvalError{
			Code:    diagnostics.EUnknownFn,
			Message: fmt.Sprintf("undefined function: %s", name),
			Span:    &span,
		}
	}
	if len(args) != len(fn.Params) {
		return nil, &EvalError{
			Code:    diagnostics.EArity,
			Message: fmt.Sprintf("function %s expects %d arguments, got %d", name, len(fn.Params), len(args)),
			Span:    &span,
		}
	}

	var empty *Env
	callee := empty.Extend(fn.Params, args)
	return &Computing{Env: callee, Expr: fn.Body, kont: k}, nil
}
