// Package ast defines the tree produced by pkg/parser (spec.md section 3) and consumed,
// in turn and in place, by each of the three semantic passes in pkg/sema before being lowered
// by pkg/ir. Each tree is a tagged tree: a shared marker interface per node category and one
// struct per concrete variant, the same shape the teacher uses for jack.Statement and
// jack.Expression in pkg/jack/jack.go, rather than a class hierarchy with double dispatch
// (spec.md section 9).
package ast

import "github.com/nanocc/nanocc/pkg/token"

// Program is an ordered sequence of function declarations (spec.md section 3).
type Program []FuncDecl

// FuncDecl is a function declaration: a name, an ordered parameter list, and an optional body.
// A nil Body means a prototype; a non-nil Body means a definition.
type FuncDecl struct {
	Name   string
	Params []string
	Body   *Block
}

// Block is an ordered sequence of block items.
type Block []BlockItem

// BlockItem is either a declaration (VarDecl or a nested FuncDecl prototype) or a Stmt.
// Left as a bare interface{}, matching jack.Statement/jack.Expression, and dispatched on with
// a type switch in each pass.
type BlockItem interface{}

// VarDecl declares a local variable, with an optional initializer expression.
type VarDecl struct {
	Name string
	Init Expr // nil if uninitialized
}

// ----------------------------------------------------------------------------
// Statements

// Stmt is the marker interface for every statement variant.
type Stmt interface{}

type ReturnStmt struct{ Expr Expr }

type ExprStmt struct{ Expr Expr }

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else branch
}

// CompoundStmt is a nested block ({ ... }), introducing a new lexical scope.
type CompoundStmt struct{ Block Block }

// BreakStmt and ContinueStmt carry no identifiers from the parser; Label is populated by the
// loop labeller pass (spec.md section 4.5) with the enclosing loop's synthesized label.
type BreakStmt struct{ Label string }
type ContinueStmt struct{ Label string }

// WhileStmt, DoWhileStmt and ForStmt carry a Label field populated by the loop labeller with
// this loop's own fresh label (spec.md section 4.5); it is empty until that pass runs.
type WhileStmt struct {
	Cond  Expr
	Body  Stmt
	Label string
}

type DoWhileStmt struct {
	Body  Stmt
	Cond  Expr
	Label string
}

// ForInit is either a *VarDecl or an optional Expr (nil meaning no init clause); left as
// interface{} like BlockItem since the grammar production ("for-init") is itself a choice.
type ForInit interface{}

type ForStmt struct {
	Init  ForInit // *VarDecl, Expr, or nil
	Cond  Expr    // nil means "always true"
	Post  Expr    // nil means no post-expression
	Body  Stmt
	Label string
}

// NullStmt is the empty statement (";").
type NullStmt struct{}

// ----------------------------------------------------------------------------
// Expressions

// Expr is the marker interface for every expression variant.
type Expr interface{}

type ConstExpr struct{ Value int64 }

type VarExpr struct{ Name string }

// UnaryExpr applies one of '~', '-', '!' to Operand.
type UnaryExpr struct {
	Op      token.Kind
	Operand Expr
}

// BinaryExpr combines Left and Right with a non-assignment binary operator.
type BinaryExpr struct {
	Op    token.Kind
	Left  Expr
	Right Expr
}

// AssignExpr is "Target = Value"; Target must be a *VarExpr (spec.md section 4.3's lvalue rule
// is enforced by pkg/sema, not by the parser, since the parser only needs to shape the tree).
type AssignExpr struct {
	Target Expr
	Value  Expr
}

// ConditionalExpr is the "cond ? then : else" ternary.
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// CallExpr invokes a named function with the given arguments.
type CallExpr struct {
	Callee string
	Args   []Expr
}
