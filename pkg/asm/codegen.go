package asm

import (
	"fmt"
	"strings"

	"github.com/nanocc/nanocc/pkg/sema"
)

// Emitter walks a legalized asm.Program and writes AT&T-syntax text (spec.md section 4.9).
// A single type switch (emitInstruction) turns each instruction into its textual line(s),
// returning an error for an unrecognized instruction kind.
type Emitter struct {
	types sema.TypeTable
}

// NewEmitter returns an Emitter that consults types to decide which calls need a @PLT suffix
// (spec.md section 3: calls to a function whose table entry has defined=false are external).
func NewEmitter(types sema.TypeTable) Emitter {
	return Emitter{types: types}
}

// Emit renders the whole program, appending the non-executable-stack note spec.md section 4.9
// mandates.
func (e Emitter) Emit(prog Program) (string, error) {
	var b strings.Builder
	for _, fn := range prog {
		if err := e.emitFunction(&b, fn); err != nil {
			return "", fmt.Errorf("emitting function %q: %w", fn.Name, err)
		}
	}
	b.WriteString(`.section .note.GNU-stack,"",@progbits` + "\n")
	return b.String(), nil
}

func (e *Emitter) emitFunction(b *strings.Builder, fn Function) error {
	fmt.Fprintf(b, ".globl %s\n", fn.Name)
	fmt.Fprintf(b, "%s:\n", fn.Name)
	b.WriteString("    pushq %rbp\n")
	b.WriteString("    movq %rsp, %rbp\n")

	for _, inst := range fn.Body {
		line, err := e.emitInstruction(inst)
		if err != nil {
			return err
		}
		b.WriteString(line)
	}
	return nil
}

func (e *Emitter) emitInstruction(inst Instruction) (string, error) {
	switch n := inst.(type) {
	case Mov:
		return fmt.Sprintf("    movl %s, %s\n", e.operand32(n.Src), e.operand32(n.Dest)), nil
	case Unary:
		return fmt.Sprintf("    %s %s\n", unaryMnemonic(n.Op), e.operand32(n.Operand)), nil
	case Binary:
		return fmt.Sprintf("    %s %s, %s\n", binaryMnemonic(n.Op), e.operand32(n.Src), e.operand32(n.Dest)), nil
	case Cmp:
		return fmt.Sprintf("    cmpl %s, %s\n", e.operand32(n.Src1), e.operand32(n.Src2)), nil
	case Idiv:
		return fmt.Sprintf("    idivl %s\n", e.operand32(n.Divisor)), nil
	case Cdq:
		return "    cdq\n", nil
	case Jmp:
		return fmt.Sprintf("    jmp %s\n", n.Target), nil
	case JmpCC:
		return fmt.Sprintf("    j%s %s\n", n.Cond, n.Target), nil
	case SetCC:
		return fmt.Sprintf("    set%s %s\n", n.Cond, e.operand8(n.Dest)), nil
	case Label:
		return fmt.Sprintf("  %s:\n", n.Name), nil
	case AllocateStack:
		if n.Bytes == 0 {
			return "", nil
		}
		return fmt.Sprintf("    subq $%d, %%rsp\n", n.Bytes), nil
	case DeallocateStack:
		if n.Bytes == 0 {
			return "", nil
		}
		return fmt.Sprintf("    addq $%d, %%rsp\n", n.Bytes), nil
	case Push:
		return fmt.Sprintf("    pushq %s\n", e.operand64(n.Operand)), nil
	case Call:
		return fmt.Sprintf("    call %s\n", e.callTarget(n.Name)), nil
	case Ret:
		return "    movq %rbp, %rsp\n    popq %rbp\n    ret\n", nil
	default:
		return "", fmt.Errorf("unrecognized assembly instruction %T", inst)
	}
}

// callTarget suffixes a call to an external (undefined) function with @PLT (spec.md section
// 4.9). A callee absent from the type table is necessarily external too, so a missing entry and
// an explicit defined=false entry are treated the same.
func (e *Emitter) callTarget(name string) string {
	if entry, ok := e.types[name]; ok && entry.Tag == sema.TagFunc && entry.Defined {
		return name
	}
	return name + "@PLT"
}

func unaryMnemonic(op UnaryOp) string {
	switch op {
	case "~":
		return "notl"
	case "-":
		return "negl"
	default:
		panic(fmt.Sprintf("asm: unaryMnemonic: unrecognized operator %q", op))
	}
}

func binaryMnemonic(op BinaryOp) string {
	switch op {
	case "+":
		return "addl"
	case "-":
		return "subl"
	case "*":
		return "imull"
	default:
		panic(fmt.Sprintf("asm: binaryMnemonic: unrecognized operator %q", op))
	}
}

var reg32Names = map[Reg]string{
	AX: "eax", CX: "ecx", DX: "edx", DI: "edi", SI: "esi",
	R8: "r8d", R9: "r9d", R10: "r10d", R11: "r11d",
}

var reg64Names = map[Reg]string{
	AX: "rax", CX: "rcx", DX: "rdx", DI: "rdi", SI: "rsi",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11",
}

var reg8Names = map[Reg]string{
	AX: "al", CX: "cl", DX: "dl", DI: "dil", SI: "sil",
	R8: "r8b", R9: "r9b", R10: "r10b", R11: "r11b",
}

func (e *Emitter) operand32(op Operand) string { return e.operand(op, reg32Names) }
func (e *Emitter) operand64(op Operand) string { return e.operand(op, reg64Names) }
func (e *Emitter) operand8(op Operand) string  { return e.operand(op, reg8Names) }

func (e *Emitter) operand(op Operand, names map[Reg]string) string {
	switch n := op.(type) {
	case Imm:
		return fmt.Sprintf("$%d", n.Value)
	case Register:
		return "%" + names[n.Reg]
	case Stack:
		return fmt.Sprintf("%d(%%rbp)", n.Offset)
	case Pseudo:
		panic(fmt.Sprintf("asm: operand: unresolved Pseudo %q reached the emitter", n.Name))
	default:
		panic(fmt.Sprintf("asm: operand: unrecognized operand %T", op))
	}
}
