package asm

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/ir"
	"github.com/nanocc/nanocc/pkg/token"
)

// Lowerer is Backend Stage A (spec.md section 4.7): it takes an ir.Program and produces its
// pre-fixup asm.Program counterpart, one IR instruction at a time, the same DFS-over-a-flat-list
// shape as the teacher's asm.Lowerer walking a Module one vm.Operation at a time.
type Lowerer struct{ program ir.Program }

// NewLowerer returns a Lowerer over p.
func NewLowerer(p ir.Program) Lowerer {
	return Lowerer{program: p}
}

// Lower runs Stage A over every function in the program.
func (l *Lowerer) Lower() (Program, error) {
	out := make(Program, 0, len(l.program))
	for _, fn := range l.program {
		lowered, err := l.lowerFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("lowering function %q: %w", fn.Name, err)
		}
		out = append(out, lowered)
	}
	return out, nil
}

// lowerFunction emits the parameter-passing prologue described in spec.md section 4.7, then
// lowers the body instruction by instruction.
func (l *Lowerer) lowerFunction(fn ir.Function) (Function, error) {
	var body []Instruction

	for i, param := range fn.Params {
		dest := Operand(Pseudo{Name: param})
		if i < len(ArgRegisters) {
			body = append(body, Mov{Src: Register{Reg: ArgRegisters[i]}, Dest: dest})
		} else {
			offset := 16 + 8*(i-len(ArgRegisters))
			body = append(body, Mov{Src: Stack{Offset: offset}, Dest: dest})
		}
	}

	for _, inst := range fn.Body {
		lowered, err := l.lowerInstruction(inst)
		if err != nil {
			return Function{}, err
		}
		body = append(body, lowered...)
	}

	return Function{Name: fn.Name, Body: body}, nil
}

func (l *Lowerer) lowerInstruction(inst ir.Instruction) ([]Instruction, error) {
	switch n := inst.(type) {
	case ir.Return:
		return l.HandleReturn(n)
	case ir.Unary:
		return l.HandleUnary(n)
	case ir.Binary:
		return l.HandleBinary(n)
	case ir.Copy:
		return []Instruction{Mov{Src: l.lowerValue(n.Src), Dest: l.lowerValue(n.Dest)}}, nil
	case ir.Jump:
		return []Instruction{Jmp{Target: n.Target}}, nil
	case ir.JumpIfZero:
		return []Instruction{
			Cmp{Src1: Imm{Value: 0}, Src2: l.lowerValue(n.Cond)},
			JmpCC{Cond: E, Target: n.Target},
		}, nil
	case ir.JumpIfNotZero:
		return []Instruction{
			Cmp{Src1: Imm{Value: 0}, Src2: l.lowerValue(n.Cond)},
			JmpCC{Cond: NE, Target: n.Target},
		}, nil
	case ir.Label:
		return []Instruction{Label{Name: n.Name}}, nil
	case ir.Call:
		return l.HandleCall(n)
	default:
		return nil, fmt.Errorf("unrecognized IR instruction %T", inst)
	}
}

func (l *Lowerer) lowerValue(v ir.Value) Operand {
	switch n := v.(type) {
	case ir.Const:
		return Imm{Value: n.Value}
	case ir.Variable:
		return Pseudo{Name: n.Name}
	default:
		panic(fmt.Sprintf("asm: lowerValue: unrecognized IR value %T", v))
	}
}

// HandleReturn lowers `Return v` to `Mov(v, %eax); Ret` (spec.md section 4.7).
func (l *Lowerer) HandleReturn(n ir.Return) ([]Instruction, error) {
	return []Instruction{
		Mov{Src: l.lowerValue(n.Value), Dest: Register{Reg: AX}},
		Ret{},
	}, nil
}

// HandleUnary lowers `!` via compare-to-zero, and `~`/`-` via in-place unary op
// (spec.md section 4.7).
func (l *Lowerer) HandleUnary(n ir.Unary) ([]Instruction, error) {
	src, dest := l.lowerValue(n.Src), Operand(Pseudo{Name: n.Dest.Name})

	if n.Op == token.Bang {
		return []Instruction{
			Cmp{Src1: Imm{Value: 0}, Src2: src},
			Mov{Src: Imm{Value: 0}, Dest: dest},
			SetCC{Cond: E, Dest: dest},
		}, nil
	}

	if n.Op != token.Tilde && n.Op != token.Minus {
		return nil, fmt.Errorf("unrecognized unary operator %q", n.Op)
	}
	return []Instruction{
		Mov{Src: src, Dest: dest},
		Unary{Op: n.Op, Operand: dest},
	}, nil
}

var relopConds = map[token.Kind]CondCode{
	token.EqualEqual:   E,
	token.BangEqual:    NE,
	token.Less:         L,
	token.LessEqual:    LE,
	token.Greater:      G,
	token.GreaterEqual: GE,
}

// HandleBinary dispatches each IR binary operator to its Stage A shape (spec.md section 4.7):
// division/modulo through Idiv+Cdq, +/-/* via an in-place Binary, relational operators via
// Cmp+SetCC.
func (l *Lowerer) HandleBinary(n ir.Binary) ([]Instruction, error) {
	left, right, dest := l.lowerValue(n.Src1), l.lowerValue(n.Src2), Operand(Pseudo{Name: n.Dest.Name})

	switch n.Op {
	case token.Slash, token.Percent:
		resultReg := AX
		if n.Op == token.Percent {
			resultReg = DX
		}
		return []Instruction{
			Mov{Src: left, Dest: Register{Reg: AX}},
			Cdq{},
			Idiv{Divisor: right},
			Mov{Src: Register{Reg: resultReg}, Dest: dest},
		}, nil

	case token.Plus, token.Minus, token.Star:
		return []Instruction{
			Mov{Src: left, Dest: dest},
			Binary{Op: n.Op, Src: right, Dest: dest},
		}, nil

	default:
		cond, ok := relopConds[n.Op]
		if !ok {
			return nil, fmt.Errorf("unrecognized binary operator %q", n.Op)
		}
		return []Instruction{
			Cmp{Src1: right, Src2: left},
			Mov{Src: Imm{Value: 0}, Dest: dest},
			SetCC{Cond: cond, Dest: dest},
		}, nil
	}
}

// HandleCall lowers a call per spec.md section 4.7: register args, then stack args pushed in
// reverse (with 8 bytes of padding first if that would misalign the stack at the Call), the
// call itself, then teardown and a move of %eax into the destination.
func (l *Lowerer) HandleCall(n ir.Call) ([]Instruction, error) {
	var out []Instruction

	regArgs, stackArgs := n.Args, []ir.Value(nil)
	if len(n.Args) > len(ArgRegisters) {
		regArgs, stackArgs = n.Args[:len(ArgRegisters)], n.Args[len(ArgRegisters):]
	}

	padding := 0
	if len(stackArgs)%2 != 0 {
		padding = 8
		out = append(out, AllocateStack{Bytes: padding})
	}

	for i, arg := range regArgs {
		out = append(out, Mov{Src: l.lowerValue(arg), Dest: Register{Reg: ArgRegisters[i]}})
	}

	// Stack arguments are pushed in reverse order so they land in left-to-right order on the
	// callee's frame (spec.md section 4.7).
	for i := len(stackArgs) - 1; i >= 0; i-- {
		operand := l.lowerValue(stackArgs[i])
		if isMemoryOperand(operand) {
			out = append(out, Mov{Src: operand, Dest: Register{Reg: R10}}, Push{Operand: Register{Reg: R10}})
		} else {
			out = append(out, Push{Operand: operand})
		}
	}

	out = append(out, Call{Name: n.Name})

	teardown := padding + 8*len(stackArgs)
	if teardown > 0 {
		out = append(out, DeallocateStack{Bytes: teardown})
	}

	out = append(out, Mov{Src: Register{Reg: AX}, Dest: Operand(Pseudo{Name: n.Dest.Name})})
	return out, nil
}

func isMemoryOperand(op Operand) bool {
	switch op.(type) {
	case Stack, Pseudo:
		return true
	default:
		return false
	}
}
