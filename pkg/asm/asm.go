// Package asm models the x86-64 assembly trees of spec.md section 3 (pre- and post-fixup share
// the same shape) and implements the two-tier backend of spec.md sections 4.7/4.8: Stage A
// lowers ir.Program into this tree with Pseudo operands still present, Stage B allocates a stack
// slot for every Pseudo and legalizes illegal operand combinations. The split mirrors the
// teacher's asm.Lowerer/hack.CodeGenerator two-tier pipeline (asm.Statement -> hack.Instruction
// -> text), generalized to three tiers because x86-64 needs the extra legalization pass the
// Hack 16-bit ISA does not.
package asm

import "github.com/nanocc/nanocc/pkg/token"

// Program is the whole compilation unit: an ordered list of assembly functions.
type Program []Function

// Function carries a name and its instruction list. Unlike ir.Function it no longer carries a
// parameter list: Stage A's prologue has already turned parameters into Pseudo moves.
type Function struct {
	Name string
	Body []Instruction
}

// Instruction is the marker interface for every assembly operation variant (spec.md section 3).
type Instruction interface{}

// Operand is one of Imm, Register, Pseudo, or Stack.
type Operand interface{}

type Imm struct{ Value int64 }

// Reg names a physical x86-64 register, independent of the width it's referenced at (the
// emitter picks the right width suffix per spec.md section 4.9).
type Reg string

const (
	AX  Reg = "ax"
	CX  Reg = "cx"
	DX  Reg = "dx"
	DI  Reg = "di"
	SI  Reg = "si"
	R8  Reg = "r8"
	R9  Reg = "r9"
	R10 Reg = "r10"
	R11 Reg = "r11"
)

// ArgRegisters lists the System V AMD64 integer argument registers in order (spec.md section
// 4.7).
var ArgRegisters = []Reg{DI, SI, DX, CX, R8, R9}

type Register struct{ Reg Reg }

// Pseudo is a not-yet-allocated symbolic location, named after the IR variable it came from.
// None survive Stage B (spec.md section 3's post-fixup invariant).
type Pseudo struct{ Name string }

// Stack is a concrete %rbp-relative frame slot. Stage A never produces one directly for locals
// (those start as Pseudo); Stage A does use positive offsets directly for 7th+ parameters,
// per spec.md section 4.7.
type Stack struct{ Offset int }

// UnaryOp and BinaryOp reuse token.Kind so the backend doesn't need its own operator enum;
// only the subset spec.md section 4 actually lowers is ever constructed.
type UnaryOp = token.Kind
type BinaryOp = token.Kind

// CondCode is one of the six x86-64 condition codes the backend emits (spec.md section 4.7/4.8).
type CondCode string

const (
	E  CondCode = "e"
	NE CondCode = "ne"
	L  CondCode = "l"
	LE CondCode = "le"
	G  CondCode = "g"
	GE CondCode = "ge"
)

type Mov struct{ Src, Dest Operand }

type Unary struct {
	Op      UnaryOp
	Operand Operand
}

type Binary struct {
	Op        BinaryOp
	Src, Dest Operand
}

type Cmp struct{ Src1, Src2 Operand }

type Idiv struct{ Divisor Operand }

type Cdq struct{}

type Jmp struct{ Target string }

type JmpCC struct {
	Cond   CondCode
	Target string
}

type SetCC struct {
	Cond CondCode
	Dest Operand
}

type Label struct{ Name string }

type AllocateStack struct{ Bytes int }

type DeallocateStack struct{ Bytes int }

type Push struct{ Operand Operand }

// Call emits a `call` to Name. Whether it gets a @PLT suffix is decided by the emitter
// (spec.md section 4.9), not recorded here, since that's purely a linking concern read off the
// type table at emission time.
type Call struct{ Name string }

type Ret struct{}
