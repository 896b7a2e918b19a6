package evaluator

import (
	"github.com/t0yv0/agentlisp/pkg/ast"
)

// State is the interface for machine states. A state is an immutable
// snapshot: stepping it produces a new state and leaves the old one
// valid, so a caller may retain, replay, or branch from any prior state.
// Drivers inspect states with a type switch over the three variants.
type State interface {
	state() // sealed marker
}

// Computing is a state with an expression still to be reduced.
type Computing struct {
	Env  *Env
	Expr ast.Expr
	kont *kont
}

func (*Computing) state() {}

// Interop is a state suspended on a pending system call. Call identifies
// the effect the driver must perform; the rest of the state is the
// continuation that resumes once the call's result is supplied.
type Interop struct {
	Call SysCall
	env  *Env
	span ast.Span
	kont *kont
}

func (*Interop) state() {}

// Span returns the source location of the primitive form that raised the
// pending call.
func (s *Interop) Span() ast.Span {
	return s.span
}

// Done is a terminal state holding the program's final value.
type Done struct {
	Value Value
}

func (*Done) state() {}

// kont is a persistent stack of evaluation frames. Pushing allocates a
// new cell; cells are never written after construction.
type kont struct {
	frame frame
	next  *kont
}

func push(f frame, k *kont) *kont {
	return &kont{frame: f, next: k}
}

// frame is one suspended evaluation context: the part of an enclosing
// expression still waiting for the value of the subexpression currently
// being reduced. Each frame carries the environment its resumption must
// run in, so returning from a function call restores the caller's scope.
type frame interface {
	frameNode() // sealed marker
}

// ifFrame awaits the condition value of an if form.
type ifFrame struct {
	env  *Env
	then ast.Expr
	els  ast.Expr
}

func (*ifFrame) frameNode() {}

// letFrame awaits the value of one let initializer. names and vals hold
// the bindings evaluated so far, rest the initializers still to go. env is
// the enclosing environment: every initializer is evaluated there, and the
// body environment is built from it once all bindings are reduced, so the
// bound names are visible only in the body.
type letFrame struct {
	env   *Env
	names []string
	vals  []Value
	rest  []ast.LetBinding
	body  ast.Expr
}

func (*letFrame) frameNode() {}

// callFrame awaits the value of one argument of a user function call.
type callFrame struct {
	env  *Env
	name string
	span ast.Span
	done []Value
	rest []ast.Expr
}

func (*callFrame) frameNode() {}

// writeFrame awaits the argument value of a write form.
type writeFrame struct {
	env  *Env
	span ast.Span
}

func (*writeFrame) frameNode() {}

// tellFrame awaits the argument value of a tell form.
type tellFrame struct {
	env  *Env
	span ast.Span
}

func (*tellFrame) frameNode() {}

// askFrame awaits the question value of an ask form.
type askFrame struct {
	env  *Env
	span ast.Span
}

func (*askFrame) frameNode() {}

// appendValue copies vs before appending so that frames sharing a
// backing array are never clobbered when two successors are derived from
// the same retained state.
func appendValue(vs []Value, v Value) []Value {
	out := make([]Value, len(vs)+1)
	copy(out, vs)
	out[len(vs)] = v
	return out
}

// appendName is appendValue for binding-name slices.
func appendName(ns []string, n string) []string {
	out := make([]string, len(ns)+1)
	copy(out, ns)
	out[len(ns)] = n
	return out
}
