package main

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/t0yv0/agentlisp/internal/testutil"
	"github.com/t0yv0/agentlisp/pkg/evaluator"
	"github.com/t0yv0/agentlisp/pkg/runtime"
)

// TestConformance runs every scenario under testdata/scenarios. Each
// scenario is a directory with a program, a scripted list of replies for
// read and ask calls, and the expected outcome: either a final value plus
// the full syscall transcript, or an error code.
func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(filepath.Join("testdata", "scenarios"))
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatal(err)
			}
			source, filename, err := testutil.ReadProgram(dir, scenario)
			if err != nil {
				t.Fatal(err)
			}

			handler := &testutil.ScriptHandler{Replies: scenario.Replies}
			rt := runtime.New(runtime.WithHandler(handler))
			result, runErr := rt.Run(context.Background(), source, filename)

			if scenario.Expect.ErrorCode != "" {
				checkErrorCode(t, runErr, scenario.Expect.ErrorCode)
				return
			}

			if runErr != nil {
				t.Fatalf("run failed: %v", runErr)
			}
			checkValue(t, result.Value, scenario.Expect.Value)
			if scenario.Expect.Syscalls != nil {
				got := handler.Transcript()
				if got == nil {
					got = []testutil.RecordedCall{}
				}
				if !reflect.DeepEqual(got, scenario.Expect.Syscalls) {
					t.Errorf("syscall transcript:\ngot  %v\nwant %v", got, scenario.Expect.Syscalls)
				}
			}
		})
	}
}

func checkErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, run succeeded", code)
	}
	var de *runtime.DiagnosticError
	if errors.As(err, &de) {
		for _, d := range de.Diagnostics {
			if d.Code == code {
				return
			}
		}
		t.Fatalf("no diagnostic with code %s in %v", code, de.Diagnostics)
	}
	var ee *evaluator.EvalError
	if errors.As(err, &ee) {
		if ee.Code != code {
			t.Fatalf("got error code %s, want %s", ee.Code, code)
		}
		return
	}
	t.Fatalf("unexpected error type %T: %v", err, err)
}

func checkValue(t *testing.T, got evaluator.Value, want json.RawMessage) {
	t.Helper()
	var wantRaw any
	if err := json.Unmarshal(want, &wantRaw); err != nil {
		t.Fatalf("bad expected value %s: %v", want, err)
	}
	gotJSON, err := evaluator.ValueToJSON(got)
	if err != nil {
		t.Fatal(err)
	}
	var gotRaw any
	if err := json.Unmarshal(gotJSON, &gotRaw); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotRaw, wantRaw) {
		t.Errorf("final value: got %s, want %s", gotJSON, want)
	}
}
