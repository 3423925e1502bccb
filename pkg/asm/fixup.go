package asm

import (
	"fmt"

	"github.com/nanocc/nanocc/pkg/token"
)

// roundUp16 rounds n up to the nearest multiple of 16, for the AllocateStack byte count
// spec.md section 3's post-Stage-B invariant requires.
func roundUp16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// Fixup runs Backend Stage B (spec.md section 4.8) over every function: first allocating a
// frame slot for every Pseudo operand, then legalizing illegal operand combinations.
func Fixup(prog Program) (Program, error) {
	out := make(Program, 0, len(prog))
	for _, fn := range prog {
		fixed, err := fixupFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("fixing up function %q: %w", fn.Name, err)
		}
		out = append(out, fixed)
	}
	return out, nil
}

func fixupFunction(fn Function) (Function, error) {
	allocated, frameSize := allocateFrame(fn.Body)

	body := make([]Instruction, 0, len(allocated)+1)
	body = append(body, AllocateStack{Bytes: roundUp16(frameSize)})
	for _, inst := range allocated {
		body = append(body, legalize(inst)...)
	}

	return Function{Name: fn.Name, Body: body}, nil
}

// frameAllocator assigns each distinct Pseudo name a 4-byte-per-slot negative offset from %rbp,
// on first sight, and reuses it on every subsequent reference (spec.md section 4.8).
type frameAllocator struct {
	slots map[string]int
	size  int
}

func newFrameAllocator() *frameAllocator {
	return &frameAllocator{slots: map[string]int{}}
}

func (a *frameAllocator) resolve(name string) Stack {
	if offset, ok := a.slots[name]; ok {
		return Stack{Offset: -offset}
	}
	a.size += 4
	a.slots[name] = a.size
	return Stack{Offset: -a.size}
}

func (a *frameAllocator) resolveOperand(op Operand) Operand {
	pseudo, ok := op.(Pseudo)
	if !ok {
		return op
	}
	return a.resolve(pseudo.Name)
}

// allocateFrame walks body replacing every Pseudo operand with a Stack slot, returning the
// rewritten instructions and the raw (pre-roundup) frame size in bytes.
func allocateFrame(body []Instruction) ([]Instruction, int) {
	a := newFrameAllocator()
	out := make([]Instruction, len(body))

	for i, inst := range body {
		switch n := inst.(type) {
		case Mov:
			out[i] = Mov{Src: a.resolveOperand(n.Src), Dest: a.resolveOperand(n.Dest)}
		case Unary:
			out[i] = Unary{Op: n.Op, Operand: a.resolveOperand(n.Operand)}
		case Binary:
			out[i] = Binary{Op: n.Op, Src: a.resolveOperand(n.Src), Dest: a.resolveOperand(n.Dest)}
		case Cmp:
			out[i] = Cmp{Src1: a.resolveOperand(n.Src1), Src2: a.resolveOperand(n.Src2)}
		case Idiv:
			out[i] = Idiv{Divisor: a.resolveOperand(n.Divisor)}
		case SetCC:
			out[i] = SetCC{Cond: n.Cond, Dest: a.resolveOperand(n.Dest)}
		case Push:
			out[i] = Push{Operand: a.resolveOperand(n.Operand)}
		default:
			out[i] = inst // Cdq, Jmp, JmpCC, Label, AllocateStack, DeallocateStack, Call, Ret: no operands
		}
	}

	return out, a.size
}

func isStack(op Operand) bool {
	_, ok := op.(Stack)
	return ok
}

func isImm(op Operand) bool {
	_, ok := op.(Imm)
	return ok
}

// legalize rewrites one instruction into one or more legal instructions, materializing illegal
// operand combinations through the scratch registers r10d/r11d (spec.md section 4.8's table).
func legalize(inst Instruction) []Instruction {
	switch n := inst.(type) {
	case Mov:
		if isStack(n.Src) && isStack(n.Dest) {
			return []Instruction{
				Mov{Src: n.Src, Dest: Register{Reg: R10}},
				Mov{Src: Register{Reg: R10}, Dest: n.Dest},
			}
		}
		return []Instruction{n}

	case Binary:
		if (n.Op == token.Plus || n.Op == token.Minus) && isStack(n.Src) && isStack(n.Dest) {
			return []Instruction{
				Mov{Src: n.Src, Dest: Register{Reg: R10}},
				Binary{Op: n.Op, Src: Register{Reg: R10}, Dest: n.Dest},
			}
		}
		if n.Op == token.Star && isStack(n.Dest) {
			return []Instruction{
				Mov{Src: n.Dest, Dest: Register{Reg: R11}},
				Binary{Op: n.Op, Src: n.Src, Dest: Register{Reg: R11}},
				Mov{Src: Register{Reg: R11}, Dest: n.Dest},
			}
		}
		return []Instruction{n}

	case Idiv:
		if isImm(n.Divisor) {
			return []Instruction{
				Mov{Src: n.Divisor, Dest: Register{Reg: R10}},
				Idiv{Divisor: Register{Reg: R10}},
			}
		}
		return []Instruction{n}

	case Cmp:
		if isStack(n.Src1) && isStack(n.Src2) {
			return []Instruction{
				Mov{Src: n.Src1, Dest: Register{Reg: R10}},
				Cmp{Src1: Register{Reg: R10}, Src2: n.Src2},
			}
		}
		if isImm(n.Src2) {
			return []Instruction{
				Mov{Src: n.Src2, Dest: Register{Reg: R10}},
				Cmp{Src1: n.Src1, Src2: Register{Reg: R10}},
			}
		}
		return []Instruction{n}

	default:
		return []Instruction{n}
	}
}
