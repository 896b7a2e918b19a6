// Package runtime provides the external driver for AgentLisp programs.
//
// The core evaluator only ever returns states; this package owns the loop
// that steps a state to completion, performing the pending system call
// through a Handler whenever the evaluator suspends. Timeouts, retries,
// policy, and budgets all live here, never in the core.
package runtime

import (
	"context"
	"fmt"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/capabilities"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
	"github.com/t0yv0/agentlisp/pkg/evaluator"
	"github.com/t0yv0/agentlisp/pkg/parser"
	"github.com/t0yv0/agentlisp/pkg/validator"
)

// Handler is the single capability the driver supplies to a run: given a
// pending system call, eventually produce its string result. A Handler
// error aborts the run as a driver failure; it never surfaces as a core
// evaluation error.
type Handler interface {
	Handle(ctx context.Context, call evaluator.SysCall) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, call evaluator.SysCall) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, call evaluator.SysCall) (string, error) {
	return f(ctx, call)
}

// DiagnosticError carries structured diagnostics out of a run.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "unknown error"
	}
	return e.Diagnostics[0].Message
}

// BlockedError reports that a run reached a system call with no handler
// configured to serve it.
type BlockedError struct {
	Call evaluator.SysCall
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked on %s system call: no handler configured", e.Call.CallKind())
}

// Result holds the outcome of a completed run.
type Result struct {
	Value    evaluator.Value
	Steps    int64
	Syscalls int64
}

// Runtime wires the parser, validator, and evaluator into a run loop.
type Runtime struct {
	handler Handler
	policy  *capabilities.Policy
	budget  Budget
	trace   func(event TraceEvent)
	runID   string
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithHandler sets the system call handler.
func WithHandler(h Handler) Option {
	return func(rt *Runtime) {
		rt.handler = h
	}
}

// WithPolicy sets the syscall policy.
func WithPolicy(p *capabilities.Policy) Option {
	return func(rt *Runtime) {
		rt.policy = p
	}
}

// WithBudget sets the run budget.
func WithBudget(b Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithMaxSteps caps the number of evaluation steps for a run.
func WithMaxSteps(n int64) Option {
	return func(rt *Runtime) {
		rt.budget.MaxSteps = &n
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithRunID sets the run ID attached to trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// New creates a Runtime. By default there is no handler (any system call
// blocks the run), the policy allows every call kind, and the budget is
// unlimited.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		policy: capabilities.AllowAll(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses, validates, and executes source to completion.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	prog, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if diags := validator.Check(prog); len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return rt.RunProgram(ctx, prog)
}

// RunProgram executes an already-parsed program to completion.
func (rt *Runtime) RunProgram(ctx context.Context, prog *ast.Program) (*Result, error) {
	st, err := evaluator.NewState(prog)
	if err != nil {
		return nil, err
	}

	rt.emit(TraceRunStart, nil, nil)

	var tracker BudgetTracker
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch s := st.(type) {
		case *evaluator.Done:
			rt.emit(TraceRunEnd, nil, map[string]string{"value": evaluator.Text(s.Value)})
			return &Result{Value: s.Value, Steps: tracker.Steps, Syscalls: tracker.Syscalls}, nil

		case *evaluator.Interop:
			next, err := rt.serve(ctx, s, &tracker)
			if err != nil {
				return nil, err
			}
			st = next

		case *evaluator.Computing:
			if err := rt.checkStepBudget(&tracker, s.Expr.NodeSpan()); err != nil {
				return nil, err
			}
			next, err := evaluator.Step(prog, st)
			if err != nil {
				return nil, err
			}
			tracker.Steps++
			rt.emit(TraceStep, spanOf(s.Expr), map[string]string{"expr": s.Expr.Kind()})
			st = next
		}
	}
}

// serve performs one pending system call and resumes the state.
func (rt *Runtime) serve(ctx context.Context, s *evaluator.Interop, tracker *BudgetTracker) (evaluator.State, error) {
	kind := s.Call.CallKind()
	span := s.Span()

	if !rt.policy.IsAllowed(kind) {
		diag := diagnostics.MakeDiag(diagnostics.EPolicy,
			fmt.Sprintf("system call '%s' denied by policy", kind), &span, "")
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{diag}}
	}

	if rt.budget.MaxSyscalls != nil && tracker.Syscalls >= *rt.budget.MaxSyscalls {
		rt.emit(TraceBudgetExceeded, &span, map[string]string{"budget": "maxSyscalls"})
		diag := diagnostics.MakeDiag(diagnostics.EBudget,
			fmt.Sprintf("system call budget exceeded (%d)", *rt.budget.MaxSyscalls), &span, "")
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{diag}}
	}

	if rt.handler == nil {
		return nil, &BlockedError{Call: s.Call}
	}

	rt.emit(TraceSyscallStart, &span, syscallData(s.Call))
	result, err := rt.handler.Handle(ctx, s.Call)
	if err != nil {
		return nil, fmt.Errorf("%s handler: %w", kind, err)
	}
	rt.emit(TraceSyscallEnd, &span, map[string]string{"kind": kind, "result": result})
	tracker.Syscalls++

	return evaluator.Resume(s, result)
}

func (rt *Runtime) checkStepBudget(tracker *BudgetTracker, span ast.Span) error {
	if rt.budget.MaxSteps == nil || tracker.Steps < *rt.budget.MaxSteps {
		return nil
	}
	rt.emit(TraceBudgetExceeded, &span, map[string]string{"budget": "maxSteps"})
	diag := diagnostics.MakeDiag(diagnostics.EBudget,
		fmt.Sprintf("step budget exceeded (%d)", *rt.budget.MaxSteps), &span, "")
	return &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{diag}}
}

func spanOf(expr ast.Expr) *ast.Span {
	span := expr.NodeSpan()
	return &span
}

func syscallData(call evaluator.SysCall) map[string]string {
	data := map[string]string{"kind": call.CallKind()}
	switch c := call.(type) {
	case evaluator.WriteCall:
		data["text"] = c.Text
	case evaluator.TellCall:
		data["text"] = c.Text
	case evaluator.AskCall:
		data["question"] = c.Question
	}
	return data
}
