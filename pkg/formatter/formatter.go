// Package formatter implements the AgentLisp source code formatter.
//
// Formatting is canonical: parsing the output yields the same program
// (up to spans), and formatting is a pure function of the AST, so
// comments are not preserved.
package formatter

import (
	"strconv"
	"strings"

	"github.com/t0yv0/agentlisp/pkg/ast"
)

const indent = "  "

// maxInline is the longest rendered form kept on a single line.
const maxInline = 72

// Format pretty-prints a program back to source code. Definitions appear
// in declaration order, separated by blank lines.
func Format(prog *ast.Program) string {
	var parts []string
	for _, name := range prog.Order {
		parts = append(parts, formatDefun(prog.Funcs[name]))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// FormatExpr renders a single expression. Used by trace output.
func FormatExpr(expr ast.Expr) string {
	return inline(expr)
}

func formatDefun(fn *ast.FuncDef) string {
	head := "(defun " + fn.Name + " (" + strings.Join(fn.Params, " ") + ")"
	body := formatExpr(fn.Body, 1)
	if !strings.Contains(body, "\n") && len(head)+len(body)+2 <= maxInline {
		return head + " " + body + ")"
	}
	return head + "\n" + indent + body + ")"
}

// formatExpr renders expr at the given indent depth, breaking composite
// forms across lines once the inline rendering grows too wide.
func formatExpr(expr ast.Expr, depth int) string {
	line := inline(expr)
	if len(line)+depth*len(indent) <= maxInline {
		return line
	}

	pad := strings.Repeat(indent, depth+1)

	switch e := expr.(type) {
	case *ast.IfExpr:
		return "(if " + inline(e.Cond) + "\n" +
			pad + formatExpr(e.Then, depth+1) + "\n" +
			pad + formatExpr(e.Else, depth+1) + ")"

	case *ast.LetExpr:
		var b strings.Builder
		b.WriteString("(let (")
		for i, bind := range e.Bindings {
			if i > 0 {
				b.WriteString("\n" + pad + "    ")
			}
			b.WriteString("(" + bind.Name + " " + formatExpr(bind.Init, depth+2) + ")")
		}
		b.WriteString(")\n")
		b.WriteString(pad + formatExpr(e.Body, depth+1) + ")")
		return b.String()

	case *ast.WriteExpr:
		return "(write\n" + pad + formatExpr(e.Arg, depth+1) + ")"

	case *ast.TellExpr:
		return "(tell\n" + pad + formatExpr(e.Arg, depth+1) + ")"

	case *ast.AskExpr:
		return "(ask\n" + pad + formatExpr(e.Arg, depth+1) + ")"

	case *ast.CallExpr:
		var b strings.Builder
		b.WriteString("(" + e.Name)
		for _, arg := range e.Args {
			b.WriteString("\n" + pad + formatExpr(arg, depth+1))
		}
		b.WriteString(")")
		return b.String()
	}

	return line
}

// inline renders an expression on a single line.
func inline(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(e.Value, 10)

	case *ast.StrLiteral:
		return quote(e.Value)

	case *ast.VarExpr:
		return e.Name

	case *ast.IfExpr:
		return "(if " + inline(e.Cond) + " " + inline(e.Then) + " " + inline(e.Else) + ")"

	case *ast.LetExpr:
		var b strings.Builder
		b.WriteString("(let (")
		for i, bind := range e.Bindings {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("(" + bind.Name + " " + inline(bind.Init) + ")")
		}
		b.WriteString(") " + inline(e.Body) + ")")
		return b.String()

	case *ast.WriteExpr:
		return "(write " + inline(e.Arg) + ")"

	case *ast.ReadExpr:
		return "(read)"

	case *ast.TellExpr:
		return "(tell " + inline(e.Arg) + ")"

	case *ast.AskExpr:
		return "(ask " + inline(e.Arg) + ")"

	case *ast.CallExpr:
		var b strings.Builder
		b.WriteString("(" + e.Name)
		for _, arg := range e.Args {
			b.WriteString(" " + inline(arg))
		}
		b.WriteString(")")
		return b.String()
	}

	return ""
}

// quote renders a string literal with the escapes the lexer understands.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
