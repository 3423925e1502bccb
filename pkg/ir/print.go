package ir

import (
	"fmt"
	"strings"
)

// String renders prog in a human-readable form, modeled on lib/IR/IRDump.cpp's debug dump in the
// original implementation this package was distilled from. Used by --dump-ir.
func (prog Program) String() string {
	var b strings.Builder
	for i, fn := range prog {
		if i > 0 {
			b.WriteString("\n")
		}
		fn.writeTo(&b)
	}
	return b.String()
}

func (fn Function) writeTo(b *strings.Builder) {
	fmt.Fprintf(b, "function %s(%s):\n", fn.Name, strings.Join(fn.Params, ", "))
	for _, inst := range fn.Body {
		writeInstruction(b, inst)
	}
}

func writeInstruction(b *strings.Builder, inst Instruction) {
	switch n := inst.(type) {
	case Return:
		fmt.Fprintf(b, "    return %s\n", formatValue(n.Value))
	case Unary:
		fmt.Fprintf(b, "    %s = %s%s\n", formatValue(n.Dest), n.Op, formatValue(n.Src))
	case Binary:
		fmt.Fprintf(b, "    %s = %s %s %s\n", formatValue(n.Dest), formatValue(n.Src1), n.Op, formatValue(n.Src2))
	case Copy:
		fmt.Fprintf(b, "    %s = %s\n", formatValue(n.Dest), formatValue(n.Src))
	case Jump:
		fmt.Fprintf(b, "    jump %s\n", n.Target)
	case JumpIfZero:
		fmt.Fprintf(b, "    jz %s, %s\n", formatValue(n.Cond), n.Target)
	case JumpIfNotZero:
		fmt.Fprintf(b, "    jnz %s, %s\n", formatValue(n.Cond), n.Target)
	case Label:
		fmt.Fprintf(b, "  %s:\n", n.Name)
	case Call:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = formatValue(a)
		}
		fmt.Fprintf(b, "    %s = call %s(%s)\n", formatValue(n.Dest), n.Name, strings.Join(args, ", "))
	default:
		panic(fmt.Sprintf("ir: writeInstruction: unrecognized instruction %T", inst))
	}
}

func formatValue(v Value) string {
	switch n := v.(type) {
	case nil:
		return ""
	case Const:
		return fmt.Sprintf("%d", n.Value)
	case Variable:
		return n.Name
	default:
		panic(fmt.Sprintf("ir: formatValue: unrecognized value %T", v))
	}
}
