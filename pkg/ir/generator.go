package ir

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/token"
)

// Generator lowers a resolved AST into IR (spec.md section 4.6). It owns the two process-wide
// monotonic counters (temp names, label names) as explicit fields, injected per compilation
// rather than function-local statics (spec.md section 9).
type Generator struct {
	tmpCounter   int
	labelCounter int
}

// New returns a Generator with both counters reset to zero.
func New() *Generator {
	return &Generator{}
}

func (g *Generator) newTemp() Variable {
	g.tmpCounter++
	return Variable{Name: fmt.Sprintf("tmp.%d", g.tmpCounter)}
}

func (g *Generator) newLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf("%s.%d", prefix, g.labelCounter)
}

// Generate lowers an entire program. Function prototypes (nil Body) contribute nothing: only
// definitions produce an ir.Function.
func (g *Generator) Generate(prog ast.Program) Program {
	var out Program
	for _, fn := range prog {
		if fn.Body == nil {
			continue
		}
		out = append(out, g.genFunction(fn))
	}
	return out
}

func (g *Generator) genFunction(fn ast.FuncDecl) Function {
	var body []Instruction
	for _, item := range *fn.Body {
		body = g.genBlockItem(item, body)
	}
	// Every function body is post-pended with a synthetic return 0 (spec.md section 4.6), covering
	// the fall-off-the-end-of-a-void-returning-path case.
	body = append(body, Return{Value: Const{Value: 0}})

	return Function{Name: fn.Name, Params: fn.Params, Body: body}
}

func (g *Generator) genBlockItem(item ast.BlockItem, body []Instruction) []Instruction {
	switch node := item.(type) {
	case *ast.VarDecl:
		if node.Init == nil {
			return body
		}
		var val Value
		body, val = g.genExpr(node.Init, body)
		body = append(body, Copy{Src: val, Dest: Variable{Name: node.Name}})
		return body

	case ast.FuncDecl:
		return body // nested prototype: nothing to lower

	case ast.Stmt:
		return g.genStmt(node, body)

	default:
		panic(fmt.Sprintf("ir: genBlockItem: unrecognized block item %T", item))
	}
}

func (g *Generator) genStmt(stmt ast.Stmt, body []Instruction) []Instruction {
	switch node := stmt.(type) {
	case *ast.ReturnStmt:
		var val Value
		body, val = g.genExpr(node.Expr, body)
		return append(body, Return{Value: val})

	case *ast.ExprStmt:
		body, _ = g.genExpr(node.Expr, body)
		return body

	case *ast.NullStmt:
		return body

	case *ast.CompoundStmt:
		for _, item := range node.Block {
			body = g.genBlockItem(item, body)
		}
		return body

	case *ast.IfStmt:
		return g.genIfStmt(node, body)

	case *ast.BreakStmt:
		return append(body, Jump{Target: "break_" + node.Label})

	case *ast.ContinueStmt:
		return append(body, Jump{Target: "continue_" + node.Label})

	case *ast.WhileStmt:
		return g.genWhileStmt(node, body)

	case *ast.DoWhileStmt:
		return g.genDoWhileStmt(node, body)

	case *ast.ForStmt:
		return g.genForStmt(node, body)

	default:
		panic(fmt.Sprintf("ir: genStmt: unrecognized statement %T", stmt))
	}
}

func (g *Generator) genIfStmt(node *ast.IfStmt, body []Instruction) []Instruction {
	var cond Value
	body, cond = g.genExpr(node.Cond, body)

	if node.Else == nil {
		end := g.newLabel("if_end")
		body = append(body, JumpIfZero{Cond: cond, Target: end})
		body = g.genStmt(node.Then, body)
		return append(body, Label{Name: end})
	}

	elseLabel := g.newLabel("if_else")
	end := g.newLabel("if_end")
	body = append(body, JumpIfZero{Cond: cond, Target: elseLabel})
	body = g.genStmt(node.Then, body)
	body = append(body, Jump{Target: end}, Label{Name: elseLabel})
	body = g.genStmt(node.Else, body)
	return append(body, Label{Name: end})
}

// genWhileStmt follows spec.md section 4.6: continue_<label> sits right before the condition
// re-check, break_<label> follows the loop entirely.
func (g *Generator) genWhileStmt(node *ast.WhileStmt, body []Instruction) []Instruction {
	continueLabel := "continue_" + node.Label
	breakLabel := "break_" + node.Label

	body = append(body, Label{Name: continueLabel})
	var cond Value
	body, cond = g.genExpr(node.Cond, body)
	body = append(body, JumpIfZero{Cond: cond, Target: breakLabel})
	body = g.genStmt(node.Body, body)
	body = append(body, Jump{Target: continueLabel})
	return append(body, Label{Name: breakLabel})
}

func (g *Generator) genDoWhileStmt(node *ast.DoWhileStmt, body []Instruction) []Instruction {
	startLabel := "start_" + node.Label
	continueLabel := "continue_" + node.Label
	breakLabel := "break_" + node.Label

	body = append(body, Label{Name: startLabel})
	body = g.genStmt(node.Body, body)
	body = append(body, Label{Name: continueLabel})
	var cond Value
	body, cond = g.genExpr(node.Cond, body)
	body = append(body, JumpIfNotZero{Cond: cond, Target: startLabel})
	return append(body, Label{Name: breakLabel})
}

// genForStmt targets continue_<label> at the post-step, so a continue still runs it
// (spec.md section 4.6: "A for's continue targets the post-step").
func (g *Generator) genForStmt(node *ast.ForStmt, body []Instruction) []Instruction {
	switch init := node.Init.(type) {
	case *ast.VarDecl:
		body = g.genBlockItem(init, body)
	case ast.Expr:
		body, _ = g.genExpr(init, body)
	}

	startLabel := "start_" + node.Label
	continueLabel := "continue_" + node.Label
	breakLabel := "break_" + node.Label

	body = append(body, Label{Name: startLabel})
	if node.Cond != nil {
		var cond Value
		body, cond = g.genExpr(node.Cond, body)
		body = append(body, JumpIfZero{Cond: cond, Target: breakLabel})
	}
	body = g.genStmt(node.Body, body)
	body = append(body, Label{Name: continueLabel})
	if node.Post != nil {
		body, _ = g.genExpr(node.Post, body)
	}
	body = append(body, Jump{Target: startLabel})
	return append(body, Label{Name: breakLabel})
}

// genExpr lowers expr, appending instructions to body, and returns the updated instruction list
// along with the expression's result Value (spec.md section 4.6).
func (g *Generator) genExpr(expr ast.Expr, body []Instruction) ([]Instruction, Value) {
	switch node := expr.(type) {
	case *ast.ConstExpr:
		return body, Const{Value: node.Value}

	case *ast.VarExpr:
		return body, Variable{Name: node.Name}

	case *ast.UnaryExpr:
		return g.genUnaryExpr(node, body)

	case *ast.BinaryExpr:
		return g.genBinaryExpr(node, body)

	case *ast.AssignExpr:
		return g.genAssignExpr(node, body)

	case *ast.ConditionalExpr:
		return g.genConditionalExpr(node, body)

	case *ast.CallExpr:
		return g.genCallExpr(node, body)

	default:
		panic(fmt.Sprintf("ir: genExpr: unrecognized expression %T", expr))
	}
}

func (g *Generator) genUnaryExpr(node *ast.UnaryExpr, body []Instruction) ([]Instruction, Value) {
	var src Value
	body, src = g.genExpr(node.Operand, body)
	dest := g.newTemp()
	body = append(body, Unary{Op: node.Op, Src: src, Dest: dest})
	return body, dest
}

func (g *Generator) genBinaryExpr(node *ast.BinaryExpr, body []Instruction) ([]Instruction, Value) {
	if node.Op == token.AmpAmp || node.Op == token.PipePipe {
		return g.genShortCircuit(node, body)
	}

	var left, right Value
	body, left = g.genExpr(node.Left, body)
	body, right = g.genExpr(node.Right, body)
	dest := g.newTemp()
	body = append(body, Binary{Op: node.Op, Src1: left, Src2: right, Dest: dest})
	return body, dest
}

// genShortCircuit implements spec.md section 4.6's "Logical && / ||" lowering, preserving C's
// short-circuit evaluation order.
func (g *Generator) genShortCircuit(node *ast.BinaryExpr, body []Instruction) ([]Instruction, Value) {
	isAnd := node.Op == token.AmpAmp
	shortcutLabel := g.newLabel("and_false")
	endLabel := g.newLabel("and_end")
	shortcutValue, fallthroughValue := int64(0), int64(1)
	if !isAnd {
		shortcutLabel = g.newLabel("or_true")
		endLabel = g.newLabel("or_end")
		shortcutValue, fallthroughValue = int64(1), int64(0)
	}

	var left Value
	body, left = g.genExpr(node.Left, body)
	if isAnd {
		body = append(body, JumpIfZero{Cond: left, Target: shortcutLabel})
	} else {
		body = append(body, JumpIfNotZero{Cond: left, Target: shortcutLabel})
	}

	var right Value
	body, right = g.genExpr(node.Right, body)
	if isAnd {
		body = append(body, JumpIfZero{Cond: right, Target: shortcutLabel})
	} else {
		body = append(body, JumpIfNotZero{Cond: right, Target: shortcutLabel})
	}

	dest := g.newTemp()
	body = append(body,
		Copy{Src: Const{Value: fallthroughValue}, Dest: dest},
		Jump{Target: endLabel},
		Label{Name: shortcutLabel},
		Copy{Src: Const{Value: shortcutValue}, Dest: dest},
		Label{Name: endLabel},
	)
	return body, dest
}

func (g *Generator) genAssignExpr(node *ast.AssignExpr, body []Instruction) ([]Instruction, Value) {
	target := node.Target.(*ast.VarExpr)
	var val Value
	body, val = g.genExpr(node.Value, body)
	dest := Variable{Name: target.Name}
	body = append(body, Copy{Src: val, Dest: dest})
	return body, dest
}

func (g *Generator) genConditionalExpr(node *ast.ConditionalExpr, body []Instruction) ([]Instruction, Value) {
	var cond Value
	body, cond = g.genExpr(node.Cond, body)

	elseLabel := g.newLabel("cond_else")
	endLabel := g.newLabel("cond_end")
	dest := g.newTemp()

	body = append(body, JumpIfZero{Cond: cond, Target: elseLabel})
	var thenVal Value
	body, thenVal = g.genExpr(node.Then, body)
	body = append(body, Copy{Src: thenVal, Dest: dest}, Jump{Target: endLabel}, Label{Name: elseLabel})
	var elseVal Value
	body, elseVal = g.genExpr(node.Else, body)
	body = append(body, Copy{Src: elseVal, Dest: dest}, Label{Name: endLabel})
	return body, dest
}

func (g *Generator) genCallExpr(node *ast.CallExpr, body []Instruction) ([]Instruction, Value) {
	args := make([]Value, len(node.Args))
	for i, arg := range node.Args {
		body, args[i] = g.genExpr(arg, body)
	}
	dest := g.newTemp()
	body = append(body, Call{Name: node.Callee, Args: args, Dest: dest})
	return body, dest
}
