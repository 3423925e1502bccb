package asm

import (
	"fmt"
	"strings"
)

// String renders prog in a plain-text shape similar to ir.Program.String, as a debugging aid.
// The --dump-asm flag does not use it (that flag goes through pkg/asmdump).
func (prog Program) String() string {
	var b strings.Builder
	for i, fn := range prog {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "function %s:\n", fn.Name)
		for _, inst := range fn.Body {
			fmt.Fprintf(&b, "    %s\n", describeInstruction(inst))
		}
	}
	return b.String()
}

func describeInstruction(inst Instruction) string {
	switch n := inst.(type) {
	case Mov:
		return fmt.Sprintf("mov %s, %s", describeOperand(n.Src), describeOperand(n.Dest))
	case Unary:
		return fmt.Sprintf("%s %s", n.Op, describeOperand(n.Operand))
	case Binary:
		return fmt.Sprintf("%s %s, %s", n.Op, describeOperand(n.Src), describeOperand(n.Dest))
	case Cmp:
		return fmt.Sprintf("cmp %s, %s", describeOperand(n.Src1), describeOperand(n.Src2))
	case Idiv:
		return fmt.Sprintf("idiv %s", describeOperand(n.Divisor))
	case Cdq:
		return "cdq"
	case Jmp:
		return fmt.Sprintf("jmp %s", n.Target)
	case JmpCC:
		return fmt.Sprintf("j%s %s", n.Cond, n.Target)
	case SetCC:
		return fmt.Sprintf("set%s %s", n.Cond, describeOperand(n.Dest))
	case Label:
		return fmt.Sprintf("%s:", n.Name)
	case AllocateStack:
		return fmt.Sprintf("allocate_stack %d", n.Bytes)
	case DeallocateStack:
		return fmt.Sprintf("deallocate_stack %d", n.Bytes)
	case Push:
		return fmt.Sprintf("push %s", describeOperand(n.Operand))
	case Call:
		return fmt.Sprintf("call %s", n.Name)
	case Ret:
		return "ret"
	default:
		panic(fmt.Sprintf("asm: describeInstruction: unrecognized instruction %T", inst))
	}
}

func describeOperand(op Operand) string {
	switch n := op.(type) {
	case Imm:
		return fmt.Sprintf("$%d", n.Value)
	case Register:
		return "%" + string(n.Reg)
	case Pseudo:
		return n.Name
	case Stack:
		return fmt.Sprintf("%d(%%rbp)", n.Offset)
	default:
		panic(fmt.Sprintf("asm: describeOperand: unrecognized operand %T", op))
	}
}
