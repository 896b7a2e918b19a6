package runtime

import (
	"time"

	"github.com/t0yv0/agentlisp/pkg/ast"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceStep           TraceEventType = "step"
	TraceSyscallStart   TraceEventType = "syscall_start"
	TraceSyscallEnd     TraceEventType = "syscall_end"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during a run.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func (rt *Runtime) emit(event TraceEventType, span *ast.Span, data map[string]string) {
	if rt.trace == nil {
		return
	}
	rt.trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     rt.runID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}
