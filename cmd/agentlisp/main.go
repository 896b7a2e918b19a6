// Command agentlisp is the AgentLisp CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/t0yv0/agentlisp/pkg/capabilities"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
	"github.com/t0yv0/agentlisp/pkg/evaluator"
	"github.com/t0yv0/agentlisp/pkg/formatter"
	"github.com/t0yv0/agentlisp/pkg/parser"
	"github.com/t0yv0/agentlisp/pkg/runtime"
	"github.com/t0yv0/agentlisp/pkg/validator"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: agentlisp <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, help")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "help", "--help", "-h":
		printHelp()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`agentlisp - a program-guided chatbot interpreter

usage: agentlisp <command> [options]

commands:
  run <file>    Run a program, driving its system calls interactively.
                  --pretty         human-readable diagnostics
                  --trace          emit trace events as JSON lines on stderr
                  --max-steps <n>  abort after n evaluation steps
                  --answers <file> serve ask answers from a file, one per line
  check <file>  Parse and statically validate a program.
                  --pretty         human-readable diagnostics
  fmt <file>    Reprint a program in canonical form.
                  --write          rewrite the file in place
  help          Show this message.`)
}

func cmdRun(args []string) int {
	var file string
	pretty := false
	traceEnabled := false
	answersPath := ""
	var maxSteps int64

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--trace":
			traceEnabled = true
		case "--answers":
			if i+1 < len(args) {
				i++
				answersPath = args[i]
			}
		case "--max-steps":
			if i+1 < len(args) {
				i++
				n, err := strconv.ParseInt(args[i], 10, 64)
				if err != nil {
					fmt.Fprintf(os.Stderr, "invalid --max-steps value: %s\n", args[i])
					return 1
				}
				maxSteps = n
			}
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: agentlisp run <file> [--pretty] [--trace] [--max-steps <n>] [--answers <file>]")
		return 1
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	handler := &stdioHandler{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		err: os.Stderr,
	}
	if answersPath != "" {
		data, err := os.ReadFile(answersPath)
		if err != nil {
			printDiag(diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, ""), pretty)
			return 4
		}
		handler.answers = splitLines(string(data))
	}

	policy, _ := capabilities.LoadPolicy(filepath.Dir(file))

	opts := []runtime.Option{
		runtime.WithHandler(handler),
		runtime.WithPolicy(policy),
	}
	if maxSteps > 0 {
		opts = append(opts, runtime.WithMaxSteps(maxSteps))
	}
	if traceEnabled {
		opts = append(opts, runtime.WithTrace(func(event runtime.TraceEvent) {
			b, _ := json.Marshal(event)
			fmt.Fprintln(os.Stderr, string(b))
		}))
	}

	rt := runtime.New(opts...)
	result, err := rt.Run(context.Background(), source, file)
	if err != nil {
		return reportRunError(err, pretty)
	}

	fmt.Println(evaluator.ValueToJSONString(result.Value))
	return 0
}

func reportRunError(err error, pretty bool) int {
	if diagErr, ok := err.(*runtime.DiagnosticError); ok {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
		return 2
	}
	if evalErr, ok := err.(*evaluator.EvalError); ok {
		printDiag(evalErr.Diagnostic(), pretty)
		return 3
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 4
}

func cmdCheck(args []string) int {
	var file string
	pretty := false

	for _, arg := range args {
		switch arg {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: agentlisp check <file> [--pretty]")
		return 1
	}

	source, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	prog, diags := parser.Parse(source, file)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}
	if diags := validator.Check(prog); len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	fmt.Println("ok")
	return 0
}

func cmdFmt(args []string) int {
	var file string
	write := false

	for _, arg := range args {
		switch arg {
		case "--write":
			write = true
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: agentlisp fmt <file> [--write]")
		return 1
	}

	source, exitCode := readSource(file, false)
	if exitCode != 0 {
		return exitCode
	}

	prog, diags := parser.Parse(source, file)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, true))
		return 2
	}

	out := formatter.Format(prog)
	if write {
		if err := os.WriteFile(file, []byte(out), 0o644); err != nil {
			printDiag(diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, ""), false)
			return 4
		}
		return 0
	}
	fmt.Print(out)
	return 0
}

func readSource(file string, pretty bool) (string, int) {
	data, err := os.ReadFile(file)
	if err != nil {
		printDiag(diagnostics.MakeDiag(diagnostics.EIO, err.Error(), nil, ""), pretty)
		return "", 4
	}
	return string(data), 0
}

func printDiag(d diagnostics.Diagnostic, pretty bool) {
	fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostic(d, pretty))
}

func splitLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, strings.TrimRight(line, "\r"))
	}
	return out
}

// stdioHandler serves system calls from the terminal: read and ask prompt
// on stdin, write goes to stdout, tell is appended to the conversation
// transcript. Prompts and transcript echoes go to stderr so program
// output on stdout stays clean.
type stdioHandler struct {
	in         *bufio.Reader
	out        io.Writer
	err        io.Writer
	transcript []string
	answers    []string
	answerIdx  int
}

func (h *stdioHandler) Handle(_ context.Context, call evaluator.SysCall) (string, error) {
	switch c := call.(type) {
	case evaluator.ReadCall:
		fmt.Fprint(h.err, "> ")
		return h.readLine()

	case evaluator.WriteCall:
		fmt.Fprintln(h.out, c.Text)
		return "", nil

	case evaluator.TellCall:
		h.transcript = append(h.transcript, c.Text)
		fmt.Fprintf(h.err, "[tell] %s\n", c.Text)
		return "", nil

	case evaluator.AskCall:
		h.transcript = append(h.transcript, c.Question)
		fmt.Fprintf(h.err, "[ask] %s\n", c.Question)
		if h.answerIdx < len(h.answers) {
			answer := h.answers[h.answerIdx]
			h.answerIdx++
			h.transcript = append(h.transcript, answer)
			fmt.Fprintf(h.err, "[answer] %s\n", answer)
			return answer, nil
		}
		fmt.Fprint(h.err, "answer> ")
		answer, err := h.readLine()
		if err != nil {
			return "", err
		}
		h.transcript = append(h.transcript, answer)
		return answer, nil
	}
	return "", fmt.Errorf("unsupported system call: %s", call.CallKind())
}

func (h *stdioHandler) readLine() (string, error) {
	line, err := h.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
