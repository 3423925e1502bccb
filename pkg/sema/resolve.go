// Package sema implements the three semantic passes of spec.md section 4.3/4.4/4.5:
// identifier resolution, type checking, and loop labelling. Each pass is a function from one
// AST to another (spec.md section 9), threaded through a *Resolver/*TypeChecker/*LoopLabeller
// that carries the process-wide counters and tables spec.md section 9 says must be explicit
// fields rather than function-local statics.
package sema

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/utils"
)

// identEntry is one identifier-map value (spec.md section 3's "Identifier map").
type identEntry struct {
	UniqueName       string
	FromCurrentScope bool
	ExternalLinkage  bool
}

type scope map[string]identEntry

// Resolver α-renames locals, rejects redeclarations, and validates lvalues (spec.md section
// 4.3). It carries the identifier-map stack (one frame per lexical scope, copy-on-push the way
// jack.ScopeTable pushes/pops named scopes) and the monotonic variable-name counter.
type Resolver struct {
	scopes     utils.Stack[scope]
	varCounter int
}

// NewResolver returns a Resolver with its counters reset to zero, ready for one compilation
// (spec.md section 9: counters are injected fields, not function-local statics).
func NewResolver() *Resolver {
	r := &Resolver{}
	r.scopes.Push(scope{})
	return r
}

// Resolve runs identifier resolution over the whole program, renaming locals in place and
// returning the same Program value (mutation is visible through the pointer-typed Stmt/Expr
// nodes the parser produces) for symmetry with the other two passes.
func (r *Resolver) Resolve(prog ast.Program) (ast.Program, error) {
	for i := range prog {
		if err := r.resolveTopLevelFunc(&prog[i]); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (r *Resolver) pushScope() {
	parent, _ := r.scopes.Top()
	child := make(scope, len(parent))
	for name, entry := range parent {
		entry.FromCurrentScope = false
		child[name] = entry
	}
	r.scopes.Push(child)
}

func (r *Resolver) popScope() { r.scopes.Pop() }

func (r *Resolver) declareVar(name string) (string, error) {
	top, _ := r.scopes.Top()
	if existing, ok := top[name]; ok && existing.FromCurrentScope {
		return "", &Error{Kind: Redeclaration, Name: name, Detail: "variable already declared in this scope"}
	}

	r.varCounter++
	unique := fmt.Sprintf("%s.%d", name, r.varCounter)
	top[name] = identEntry{UniqueName: unique, FromCurrentScope: true}
	return unique, nil
}

// declareFunc registers a function name with external linkage: it is never renamed, and
// redeclaring it at the same scope is legal as long as the prior entry also has external
// linkage (spec.md section 4.3).
func (r *Resolver) declareFunc(name string) error {
	top, _ := r.scopes.Top()
	if existing, ok := top[name]; ok && existing.FromCurrentScope && !existing.ExternalLinkage {
		return &Error{Kind: Redeclaration, Name: name, Detail: "name already declared as a variable in this scope"}
	}
	top[name] = identEntry{UniqueName: name, FromCurrentScope: true, ExternalLinkage: true}
	return nil
}

func (r *Resolver) resolveVar(name string) (string, error) {
	top, _ := r.scopes.Top()
	entry, ok := top[name]
	if !ok {
		return "", &Error{Kind: Undeclared, Name: name, Detail: "reference to undeclared identifier"}
	}
	return entry.UniqueName, nil
}

// resolveTopLevelFunc resolves one top-level function declaration. Parameters share the
// function-body scope (spec.md section 4.3: "Function-body scope includes parameters"), so a
// parameter clashing with a later top-scope local is a redeclaration.
func (r *Resolver) resolveTopLevelFunc(fn *ast.FuncDecl) error {
	if err := r.declareFunc(fn.Name); err != nil {
		return err
	}
	if fn.Body == nil {
		return nil
	}

	r.pushScope()
	defer r.popScope()

	renamedParams := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		unique, err := r.declareVar(param)
		if err != nil {
			return err
		}
		renamedParams[i] = unique
	}
	fn.Params = renamedParams

	return r.resolveBlock(*fn.Body, false)
}

// resolveBlock resolves every item of a block. inNewScope is false for a function body (whose
// scope was already pushed by the caller to include parameters) and true for a nested compound
// statement.
func (r *Resolver) resolveBlock(block ast.Block, inNewScope bool) error {
	if inNewScope {
		r.pushScope()
		defer r.popScope()
	}

	for _, item := range block {
		if err := r.resolveBlockItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) resolveBlockItem(item ast.BlockItem) error {
	switch node := item.(type) {
	case *ast.VarDecl:
		return r.resolveVarDecl(node)

	case ast.FuncDecl:
		if node.Body != nil {
			return &Error{Kind: Redeclaration, Name: node.Name, Detail: "function definitions are not allowed inside a block"}
		}
		return r.declareFunc(node.Name)

	case ast.Stmt:
		return r.resolveStmt(node)

	default:
		panic(fmt.Sprintf("sema: resolveBlockItem: unrecognized block item %T", item))
	}
}

func (r *Resolver) resolveVarDecl(decl *ast.VarDecl) error {
	if decl.Init != nil {
		if err := r.resolveExpr(decl.Init); err != nil {
			return err
		}
	}
	unique, err := r.declareVar(decl.Name)
	if err != nil {
		return err
	}
	decl.Name = unique
	return nil
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) error {
	switch node := stmt.(type) {
	case *ast.ReturnStmt:
		return r.resolveExpr(node.Expr)

	case *ast.ExprStmt:
		return r.resolveExpr(node.Expr)

	case *ast.NullStmt:
		return nil

	case *ast.CompoundStmt:
		return r.resolveBlock(node.Block, true)

	case *ast.IfStmt:
		if err := r.resolveExpr(node.Cond); err != nil {
			return err
		}
		if err := r.resolveStmt(node.Then); err != nil {
			return err
		}
		if node.Else != nil {
			return r.resolveStmt(node.Else)
		}
		return nil

	case *ast.BreakStmt, *ast.ContinueStmt:
		return nil // pass-throughs: no identifiers to resolve (spec.md section 4.3)

	case *ast.WhileStmt:
		if err := r.resolveExpr(node.Cond); err != nil {
			return err
		}
		return r.resolveStmt(node.Body)

	case *ast.DoWhileStmt:
		if err := r.resolveStmt(node.Body); err != nil {
			return err
		}
		return r.resolveExpr(node.Cond)

	case *ast.ForStmt:
		return r.resolveForStmt(node)

	default:
		panic(fmt.Sprintf("sema: resolveStmt: unrecognized statement %T", stmt))
	}
}

// resolveForStmt gives the init-clause its own scope (it may declare a loop variable) that
// encloses the condition, post-expression and body.
func (r *Resolver) resolveForStmt(node *ast.ForStmt) error {
	r.pushScope()
	defer r.popScope()

	switch init := node.Init.(type) {
	case *ast.VarDecl:
		if err := r.resolveVarDecl(init); err != nil {
			return err
		}
	case ast.Expr:
		if err := r.resolveExpr(init); err != nil {
			return err
		}
	case nil:
		// no init clause
	default:
		panic(fmt.Sprintf("sema: resolveForStmt: unrecognized for-init %T", init))
	}

	if node.Cond != nil {
		if err := r.resolveExpr(node.Cond); err != nil {
			return err
		}
	}
	if node.Post != nil {
		if err := r.resolveExpr(node.Post); err != nil {
			return err
		}
	}
	return r.resolveStmt(node.Body)
}

func (r *Resolver) resolveExpr(expr ast.Expr) error {
	switch node := expr.(type) {
	case nil:
		return nil

	case *ast.ConstExpr:
		return nil

	case *ast.VarExpr:
		unique, err := r.resolveVar(node.Name)
		if err != nil {
			return err
		}
		node.Name = unique
		return nil

	case *ast.UnaryExpr:
		if _, isAssign := node.Operand.(*ast.AssignExpr); isAssign {
			return &Error{Kind: InvalidLvalue, Detail: "unary operator cannot apply to an assignment"}
		}
		return r.resolveExpr(node.Operand)

	case *ast.BinaryExpr:
		if err := r.resolveExpr(node.Left); err != nil {
			return err
		}
		return r.resolveExpr(node.Right)

	case *ast.AssignExpr:
		if _, isVar := node.Target.(*ast.VarExpr); !isVar {
			return &Error{Kind: InvalidLvalue, Detail: "left-hand side of assignment must be a variable"}
		}
		if err := r.resolveExpr(node.Value); err != nil {
			return err
		}
		return r.resolveExpr(node.Target)

	case *ast.ConditionalExpr:
		if err := r.resolveExpr(node.Cond); err != nil {
			return err
		}
		if err := r.resolveExpr(node.Then); err != nil {
			return err
		}
		return r.resolveExpr(node.Else)

	case *ast.CallExpr:
		for _, arg := range node.Args {
			if err := r.resolveExpr(arg); err != nil {
				return err
			}
		}
		return nil

	default:
		panic(fmt.Sprintf("sema: resolveExpr: unrecognized expression %T", expr))
	}
}
