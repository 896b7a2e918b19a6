// Package testutil provides shared test helpers for AgentLisp tests.
package testutil

import (
	"context"
	"fmt"

	"github.com/t0yv0/agentlisp/pkg/evaluator"
)

// ScriptHandler is a runtime handler driven by a canned list of replies.
// Every system call is recorded in Calls; read and ask consume the next
// reply in order, write and tell resume with the empty string. Running
// out of replies is an error so a test fails instead of hanging on an
// unexpected read or ask.
type ScriptHandler struct {
	Replies []string
	Calls   []evaluator.SysCall
	next    int
}

func (h *ScriptHandler) Handle(_ context.Context, call evaluator.SysCall) (string, error) {
	h.Calls = append(h.Calls, call)
	switch call.(type) {
	case evaluator.ReadCall, evaluator.AskCall:
		if h.next >= len(h.Replies) {
			return "", fmt.Errorf("script exhausted: no reply for %s call #%d", call.CallKind(), h.next+1)
		}
		reply := h.Replies[h.next]
		h.next++
		return reply, nil
	default:
		return "", nil
	}
}

// Transcript returns the recorded calls as (kind, payload) pairs for
// comparison against scenario expectations.
func (h *ScriptHandler) Transcript() []RecordedCall {
	out := make([]RecordedCall, len(h.Calls))
	for i, call := range h.Calls {
		rec := RecordedCall{Kind: call.CallKind()}
		switch c := call.(type) {
		case evaluator.WriteCall:
			rec.Text = c.Text
		case evaluator.TellCall:
			rec.Text = c.Text
		case evaluator.AskCall:
			rec.Text = c.Question
		}
		out[i] = rec
	}
	return out
}

// RecordedCall is one entry of a syscall transcript.
type RecordedCall struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}
