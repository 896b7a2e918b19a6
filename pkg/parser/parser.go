// Package parser implements the AgentLisp parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/t0yv0/agentlisp/pkg/ast"
	"github.com/t0yv0/agentlisp/pkg/diagnostics"
	"github.com/t0yv0/agentlisp/pkg/lexer"
)

// reserved holds the keywords that cannot be used as function, parameter,
// or variable names.
var reserved = map[string]bool{
	"defun": true,
	"if":    true,
	"let":   true,
	"write": true,
	"read":  true,
	"tell":  true,
	"ask":   true,
}

// IsReserved reports whether name is a reserved keyword.
func IsReserved(name string) bool {
	return reserved[name]
}

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into a Program. On failure the
// program is nil and at least one diagnostic is returned.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType, what string) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", what, tokenText(tok)), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) addProgramError(msg string, span *ast.Span, hint string) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EProgram, msg, span, hint))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenText(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of file"
	}
	return tok.Value
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span

	funcs := make(map[string]*ast.FuncDef)
	var order []string

	for p.peek() != lexer.TokEOF {
		def := p.parseDefun()
		if def == nil {
			return nil
		}
		if _, dup := funcs[def.Name]; dup {
			p.addProgramError(fmt.Sprintf("function '%s' is declared more than once", def.Name), &def.Span, "")
			return nil
		}
		funcs[def.Name] = def
		order = append(order, def.Name)
	}

	main, ok := funcs["main"]
	if !ok {
		p.addProgramError("program must declare a function named 'main'", &startSpan, "add (defun main () ...)")
		return nil
	}
	if len(main.Params) != 0 {
		p.addProgramError("'main' must take no parameters", &main.Span, "")
		return nil
	}

	end := p.current().Span
	return &ast.Program{
		Span:  p.spanFromTo(startSpan, end),
		Funcs: funcs,
		Order: order,
	}
}

// --- Definitions ---

func (p *parser) parseDefun() *ast.FuncDef {
	open, ok := p.expect(lexer.TokLParen, "'('")
	if !ok {
		return nil
	}

	head := p.current()
	if head.Type != lexer.TokSymbol || head.Value != "defun" {
		p.addError(fmt.Sprintf("expected 'defun', got '%s'", tokenText(head)), &head.Span)
		return nil
	}
	p.advance()

	nameTok, ok := p.expect(lexer.TokSymbol, "function name")
	if !ok {
		return nil
	}
	if reserved[nameTok.Value] {
		p.addProgramError(fmt.Sprintf("'%s' is a reserved word and cannot name a function", nameTok.Value), &nameTok.Span, "")
		return nil
	}
	if _, err := strconv.ParseInt(nameTok.Value, 10, 64); err == nil {
		p.addError(fmt.Sprintf("function name cannot be a number: '%s'", nameTok.Value), &nameTok.Span)
		return nil
	}

	if _, ok := p.expect(lexer.TokLParen, "'(' before parameter list"); !ok {
		return nil
	}
	var params []string
	seen := make(map[string]bool)
	for p.peek() != lexer.TokRParen {
		paramTok, ok := p.expect(lexer.TokSymbol, "parameter name")
		if !ok {
			return nil
		}
		if reserved[paramTok.Value] {
			p.addProgramError(fmt.Sprintf("'%s' is a reserved word and cannot name a parameter", paramTok.Value), &paramTok.Span, "")
			return nil
		}
		if seen[paramTok.Value] {
			p.addProgramError(fmt.Sprintf("duplicate parameter name '%s'", paramTok.Value), &paramTok.Span, "")
			return nil
		}
		seen[paramTok.Value] = true
		params = append(params, paramTok.Value)
	}
	p.advance() // consume ')'

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	closeTok, ok := p.expect(lexer.TokRParen, "')' after function body")
	if !ok {
		return nil
	}

	return &ast.FuncDef{
		Span:   p.spanFromTo(open.Span, closeTok.Span),
		Name:   nameTok.Value,
		Params: params,
		Body:   body,
	}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	tok := p.current()

	switch tok.Type {
	case lexer.TokStringLit:
		p.advance()
		return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokSymbol:
		p.advance()
		if n, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
			return &ast.IntLiteral{Span: tok.Span, Value: n}
		}
		if reserved[tok.Value] {
			p.addError(fmt.Sprintf("'%s' is a reserved word and cannot be used as a variable", tok.Value), &tok.Span)
			return nil
		}
		return &ast.VarExpr{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		return p.parseForm()

	case lexer.TokRParen:
		p.addError("unexpected ')'", &tok.Span)
		return nil

	default:
		p.addError(fmt.Sprintf("expected expression, got '%s'", tokenText(tok)), &tok.Span)
		return nil
	}
}

// parseForm parses a parenthesized form: a special form, a primitive form,
// or a user function call. Primitive forms are resolved into distinct node
// kinds here, so the evaluator never has to compare call names against the
// reserved set.
func (p *parser) parseForm() ast.Expr {
	open := p.advance() // consume '('

	head := p.current()
	if head.Type != lexer.TokSymbol {
		p.addError(fmt.Sprintf("expected form head, got '%s'", tokenText(head)), &head.Span)
		return nil
	}

	switch head.Value {
	case "defun":
		p.addError("'defun' is only allowed at the top level", &head.Span)
		return nil

	case "if":
		p.advance()
		cond := p.parseExpr()
		if cond == nil {
			return nil
		}
		thenExpr := p.parseExpr()
		if thenExpr == nil {
			return nil
		}
		elseExpr := p.parseExpr()
		if elseExpr == nil {
			return nil
		}
		closeTok, ok := p.expect(lexer.TokRParen, "')' after if form")
		if !ok {
			return nil
		}
		return &ast.IfExpr{
			Span: p.spanFromTo(open.Span, closeTok.Span),
			Cond: cond,
			Then: thenExpr,
			Else: elseExpr,
		}

	case "let":
		p.advance()
		return p.parseLetTail(open.Span)

	case "write":
		p.advance()
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		closeTok, ok := p.expect(lexer.TokRParen, "')' after write form")
		if !ok {
			return nil
		}
		return &ast.WriteExpr{Span: p.spanFromTo(open.Span, closeTok.Span), Arg: arg}

	case "read":
		p.advance()
		closeTok, ok := p.expect(lexer.TokRParen, "')' after read form")
		if !ok {
			return nil
		}
		return &ast.ReadExpr{Span: p.spanFromTo(open.Span, closeTok.Span)}

	case "tell":
		p.advance()
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		closeTok, ok := p.expect(lexer.TokRParen, "')' after tell form")
		if !ok {
			return nil
		}
		return &ast.TellExpr{Span: p.spanFromTo(open.Span, closeTok.Span), Arg: arg}

	case "ask":
		p.advance()
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		closeTok, ok := p.expect(lexer.TokRParen, "')' after ask form")
		if !ok {
			return nil
		}
		return &ast.AskExpr{Span: p.spanFromTo(open.Span, closeTok.Span), Arg: arg}
	}

	// User function call
	if _, err := strconv.ParseInt(head.Value, 10, 64); err == nil {
		p.addError(fmt.Sprintf("call target cannot be a number: '%s'", head.Value), &head.Span)
		return nil
	}
	p.advance()

	var args []ast.Expr
	for p.peek() != lexer.TokRParen {
		if p.peek() == lexer.TokEOF {
			p.addError("unterminated call form", &open.Span)
			return nil
		}
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	closeTok := p.advance() // consume ')'

	return &ast.CallExpr{
		Span: p.spanFromTo(open.Span, closeTok.Span),
		Name: head.Value,
		Args: args,
	}
}

// parseLetTail parses the remainder of a let form after the 'let' keyword:
// a non-empty binding list followed by a single body expression.
func (p *parser) parseLetTail(openSpan ast.Span) ast.Expr {
	if _, ok := p.expect(lexer.TokLParen, "'(' before let bindings"); !ok {
		return nil
	}

	var bindings []ast.LetBinding
	seen := make(map[string]bool)
	for p.peek() != lexer.TokRParen {
		bindOpen, ok := p.expect(lexer.TokLParen, "'(' before let binding")
		if !ok {
			return nil
		}
		nameTok, ok := p.expect(lexer.TokSymbol, "binding name")
		if !ok {
			return nil
		}
		if reserved[nameTok.Value] {
			p.addError(fmt.Sprintf("'%s' is a reserved word and cannot name a binding", nameTok.Value), &nameTok.Span)
			return nil
		}
		if _, err := strconv.ParseInt(nameTok.Value, 10, 64); err == nil {
			p.addError(fmt.Sprintf("binding name cannot be a number: '%s'", nameTok.Value), &nameTok.Span)
			return nil
		}
		if seen[nameTok.Value] {
			p.addError(fmt.Sprintf("duplicate binding name '%s' in let", nameTok.Value), &nameTok.Span)
			return nil
		}
		seen[nameTok.Value] = true

		init := p.parseExpr()
		if init == nil {
			return nil
		}
		bindClose, ok := p.expect(lexer.TokRParen, "')' after let binding")
		if !ok {
			return nil
		}
		bindings = append(bindings, ast.LetBinding{
			Span: p.spanFromTo(bindOpen.Span, bindClose.Span),
			Name: nameTok.Value,
			Init: init,
		})
	}
	bindingsClose := p.advance() // consume ')'

	if len(bindings) == 0 {
		p.addError("let requires at least one binding", &bindingsClose.Span)
		return nil
	}

	body := p.parseExpr()
	if body == nil {
		return nil
	}

	closeTok, ok := p.expect(lexer.TokRParen, "')' after let body")
	if !ok {
		return nil
	}

	return &ast.LetExpr{
		Span:     p.spanFromTo(openSpan, closeTok.Span),
		Bindings: bindings,
		Body:     body,
	}
}
