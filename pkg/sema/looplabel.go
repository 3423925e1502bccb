package sema

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/ast"
)

// LoopLabeller runs spec.md section 4.5: every while/do-while/for loop gets a unique label, and
// every break/continue is rewritten to carry the label of its nearest enclosing loop (or
// rejected as an OrphanJump if there is none).
type LoopLabeller struct {
	labelCounter int
	enclosing    []string // stack of enclosing loop labels, innermost last
}

// NewLoopLabeller returns a LoopLabeller with its counter reset to zero.
func NewLoopLabeller() *LoopLabeller {
	return &LoopLabeller{}
}

// Label runs loop labelling over the whole program.
func (ll *LoopLabeller) Label(prog ast.Program) (ast.Program, error) {
	for i := range prog {
		if prog[i].Body == nil {
			continue
		}
		if err := ll.labelBlock(*prog[i].Body); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

func (ll *LoopLabeller) newLabel(prefix string) string {
	ll.labelCounter++
	return fmt.Sprintf("%s.%d", prefix, ll.labelCounter)
}

func (ll *LoopLabeller) pushLoop(label string) { ll.enclosing = append(ll.enclosing, label) }
func (ll *LoopLabeller) popLoop()              { ll.enclosing = ll.enclosing[:len(ll.enclosing)-1] }

func (ll *LoopLabeller) currentLoop() (string, bool) {
	if len(ll.enclosing) == 0 {
		return "", false
	}
	return ll.enclosing[len(ll.enclosing)-1], true
}

func (ll *LoopLabeller) labelBlock(block ast.Block) error {
	for _, item := range block {
		switch item.(type) {
		case *ast.VarDecl, ast.FuncDecl:
			continue // VarDecl / nested FuncDecl: no statements to label
		}
		if err := ll.labelStmt(item); err != nil {
			return err
		}
	}
	return nil
}

func (ll *LoopLabeller) labelStmt(stmt ast.Stmt) error {
	switch node := stmt.(type) {
	case *ast.ReturnStmt, *ast.ExprStmt, *ast.NullStmt:
		return nil

	case *ast.CompoundStmt:
		return ll.labelBlock(node.Block)

	case *ast.IfStmt:
		if err := ll.labelStmt(node.Then); err != nil {
			return err
		}
		if node.Else != nil {
			return ll.labelStmt(node.Else)
		}
		return nil

	case *ast.BreakStmt:
		label, ok := ll.currentLoop()
		if !ok {
			return &Error{Kind: OrphanJump, Detail: "break statement not within a loop"}
		}
		node.Label = label
		return nil

	case *ast.ContinueStmt:
		label, ok := ll.currentLoop()
		if !ok {
			return &Error{Kind: OrphanJump, Detail: "continue statement not within a loop"}
		}
		node.Label = label
		return nil

	case *ast.WhileStmt:
		label := ll.newLabel("while")
		node.Label = label
		ll.pushLoop(label)
		defer ll.popLoop()
		return ll.labelStmt(node.Body)

	case *ast.DoWhileStmt:
		label := ll.newLabel("do_while")
		node.Label = label
		ll.pushLoop(label)
		defer ll.popLoop()
		return ll.labelStmt(node.Body)

	case *ast.ForStmt:
		label := ll.newLabel("for")
		node.Label = label
		ll.pushLoop(label)
		defer ll.popLoop()
		return ll.labelStmt(node.Body)

	default:
		panic(fmt.Sprintf("sema: labelStmt: unrecognized statement %T", stmt))
	}
}
