// Package ast defines the AgentLisp AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}

// --- Variables ---

type VarExpr struct {
	Span Span
	Name string
}

func (n *VarExpr) Kind() string   { return "VarExpr" }
func (n *VarExpr) NodeSpan() Span { return n.Span }
func (n *VarExpr) exprNode()      {}

// --- Control Flow ---

type IfExpr struct {
	Span Span
	Cond Expr
	Then Expr
	Else Expr
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}

// LetBinding is a single (name init) pair in a let expression.
type LetBinding struct {
	Span Span
	Name string
	Init Expr
}

func (n *LetBinding) Kind() string   { return "LetBinding" }
func (n *LetBinding) NodeSpan() Span { return n.Span }

// LetExpr binds names for the duration of its body. Init expressions are
// evaluated in the enclosing environment; the bound names become visible
// only in the body, not in each other's inits.
type LetExpr struct {
	Span     Span
	Bindings []LetBinding
	Body     Expr
}

func (n *LetExpr) Kind() string   { return "LetExpr" }
func (n *LetExpr) NodeSpan() Span { return n.Span }
func (n *LetExpr) exprNode()      {}

// --- Calls ---

// CallExpr is a call to a user-defined function. The four primitive forms
// are resolved into their own node kinds at parse time, so Name is never
// a reserved word.
type CallExpr struct {
	Span Span
	Name string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// --- Primitive Forms ---

type WriteExpr struct {
	Span Span
	Arg  Expr
}

func (n *WriteExpr) Kind() string   { return "WriteExpr" }
func (n *WriteExpr) NodeSpan() Span { return n.Span }
func (n *WriteExpr) exprNode()      {}

type ReadExpr struct {
	Span Span
}

func (n *ReadExpr) Kind() string   { return "ReadExpr" }
func (n *ReadExpr) NodeSpan() Span { return n.Span }
func (n *ReadExpr) exprNode()      {}

type TellExpr struct {
	Span Span
	Arg  Expr
}

func (n *TellExpr) Kind() string   { return "TellExpr" }
func (n *TellExpr) NodeSpan() Span { return n.Span }
func (n *TellExpr) exprNode()      {}

type AskExpr struct {
	Span Span
	Arg  Expr
}

func (n *AskExpr) Kind() string   { return "AskExpr" }
func (n *AskExpr) NodeSpan() Span { return n.Span }
func (n *AskExpr) exprNode()      {}

// --- Definitions ---

type FuncDef struct {
	Span   Span
	Name   string
	Params []string
	Body   Expr
}

func (n *FuncDef) Kind() string   { return "FuncDef" }
func (n *FuncDef) NodeSpan() Span { return n.Span }

// --- Program ---

// Program is a set of function definitions keyed by name. Order preserves
// declaration order for formatting.
type Program struct {
	Span  Span
	Funcs map[string]*FuncDef
	Order []string
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }

// Main returns the main function definition, or nil if absent.
func (n *Program) Main() *FuncDef {
	return n.Funcs["main"]
}
