package sema

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/ast"
)

// TypeChecker runs spec.md section 4.4 over an already-resolved program: it builds the
// process-wide TypeTable (spec.md section 3), rejects arity mismatches and conflicting
// redefinitions, and records whether a function is merely declared or actually defined.
type TypeChecker struct {
	table TypeTable
}

// NewTypeChecker returns a TypeChecker with an empty TypeTable.
func NewTypeChecker() *TypeChecker {
	return &TypeChecker{table: TypeTable{}}
}

// Table returns the TypeTable built by the last call to Check. The emitter (pkg/asm) reads this
// to tag calls to undefined functions for PLT linkage (spec.md section 3).
func (tc *TypeChecker) Table() TypeTable { return tc.table }

// Check type-checks the whole program, returning the same Program value for symmetry with the
// other two passes.
func (tc *TypeChecker) Check(prog ast.Program) (ast.Program, error) {
	for i := range prog {
		if err := tc.checkFuncDecl(&prog[i]); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (tc *TypeChecker) checkFuncDecl(fn *ast.FuncDecl) error {
	hasBody := fn.Body != nil
	if err := tc.declareFunc(fn.Name, len(fn.Params), hasBody); err != nil {
		return err
	}

	for _, param := range fn.Params {
		tc.table[param] = TypeEntry{Tag: TagInt}
	}

	if !hasBody {
		return nil
	}
	return tc.checkBlock(*fn.Body)
}

// declareFunc records a function's arity and definedness, rejecting arity mismatches against a
// prior declaration and rejecting a second definition (spec.md section 4.4).
func (tc *TypeChecker) declareFunc(name string, paramCount int, defined bool) error {
	existing, ok := tc.table[name]
	if !ok {
		tc.table[name] = TypeEntry{Tag: TagFunc, ParamCount: paramCount, Defined: defined}
		return nil
	}

	if existing.Tag != TagFunc {
		return &Error{Kind: TypeMismatch, Name: name, Detail: "used as both a function and a variable"}
	}
	if existing.ParamCount != paramCount {
		return &Error{Kind: ArityMismatch, Name: name, Detail: "conflicting parameter counts across declarations"}
	}
	if existing.Defined && defined {
		return &Error{Kind: Redefinition, Name: name, Detail: "function already has a body"}
	}

	existing.Defined = existing.Defined || defined
	tc.table[name] = existing
	return nil
}

func (tc *TypeChecker) checkBlock(block ast.Block) error {
	for _, item := range block {
		if err := tc.checkBlockItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TypeChecker) checkBlockItem(item ast.BlockItem) error {
	switch node := item.(type) {
	case *ast.VarDecl:
		if node.Init != nil {
			if err := tc.checkExpr(node.Init); err != nil {
				return err
			}
		}
		tc.table[node.Name] = TypeEntry{Tag: TagInt}
		return nil

	case ast.FuncDecl:
		return tc.declareFunc(node.Name, len(node.Params), false)

	case ast.Stmt:
		return tc.checkStmt(node)

	default:
		panic(fmt.Sprintf("sema: checkBlockItem: unrecognized block item %T", item))
	}
}

func (tc *TypeChecker) checkStmt(stmt ast.Stmt) error {
	switch node := stmt.(type) {
	case *ast.ReturnStmt:
		return tc.checkExpr(node.Expr)

	case *ast.ExprStmt:
		return tc.checkExpr(node.Expr)

	case *ast.NullStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return nil

	case *ast.CompoundStmt:
		return tc.checkBlock(node.Block)

	case *ast.IfStmt:
		if err := tc.checkExpr(node.Cond); err != nil {
			return err
		}
		if err := tc.checkStmt(node.Then); err != nil {
			return err
		}
		if node.Else != nil {
			return tc.checkStmt(node.Else)
		}
		return nil

	case *ast.WhileStmt:
		if err := tc.checkExpr(node.Cond); err != nil {
			return err
		}
		return tc.checkStmt(node.Body)

	case *ast.DoWhileStmt:
		if err := tc.checkStmt(node.Body); err != nil {
			return err
		}
		return tc.checkExpr(node.Cond)

	case *ast.ForStmt:
		switch init := node.Init.(type) {
		case *ast.VarDecl:
			if err := tc.checkBlockItem(init); err != nil {
				return err
			}
		case ast.Expr:
			if err := tc.checkExpr(init); err != nil {
				return err
			}
		}
		if node.Cond != nil {
			if err := tc.checkExpr(node.Cond); err != nil {
				return err
			}
		}
		if node.Post != nil {
			if err := tc.checkExpr(node.Post); err != nil {
				return err
			}
		}
		return tc.checkStmt(node.Body)

	default:
		panic(fmt.Sprintf("sema: checkStmt: unrecognized statement %T", stmt))
	}
}

func (tc *TypeChecker) checkExpr(expr ast.Expr) error {
	switch node := expr.(type) {
	case nil, *ast.ConstExpr:
		return nil

	case *ast.VarExpr:
		if entry, ok := tc.table[node.Name]; ok && entry.Tag == TagFunc {
			return &Error{Kind: TypeMismatch, Name: node.Name, Detail: "function used as a variable"}
		}
		return nil

	case *ast.UnaryExpr:
		return tc.checkExpr(node.Operand)

	case *ast.BinaryExpr:
		if err := tc.checkExpr(node.Left); err != nil {
			return err
		}
		return tc.checkExpr(node.Right)

	case *ast.AssignExpr:
		if err := tc.checkExpr(node.Target); err != nil {
			return err
		}
		return tc.checkExpr(node.Value)

	case *ast.ConditionalExpr:
		if err := tc.checkExpr(node.Cond); err != nil {
			return err
		}
		if err := tc.checkExpr(node.Then); err != nil {
			return err
		}
		return tc.checkExpr(node.Else)

	case *ast.CallExpr:
		entry, ok := tc.table[node.Callee]
		if !ok || entry.Tag != TagFunc {
			return &Error{Kind: TypeMismatch, Name: node.Callee, Detail: "called object is not a function"}
		}
		if entry.ParamCount != len(node.Args) {
			return &Error{Kind: ArityMismatch, Name: node.Callee, Detail: "wrong number of arguments in call"}
		}
		for _, arg := range node.Args {
			if err := tc.checkExpr(arg); err != nil {
				return err
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("sema: checkExpr: unrecognized expression %T", expr))
	}
}
