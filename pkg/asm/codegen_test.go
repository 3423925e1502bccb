package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/asm"
	"github.com/nanocc/nanocc/pkg/ir"
	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/parser"
	"github.com/nanocc/nanocc/pkg/sema"
)

func emitSource(t *testing.T, src string) (string, sema.TypeTable) {
	t.Helper()
	tokens, err := lexer.New(src).Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	result, err := sema.Analyze(prog)
	require.NoError(t, err)

	lowerer := asm.NewLowerer(ir.New().Generate(result.Program))
	asmProgram, err := lowerer.Lower()
	require.NoError(t, err)
	asmProgram, err = asm.Fixup(asmProgram)
	require.NoError(t, err)

	text, err := asm.NewEmitter(result.Types).Emit(asmProgram)
	require.NoError(t, err)
	return text, result.Types
}

func TestEmitFunctionHasGloblDirectiveAndPrologue(t *testing.T) {
	text, _ := emitSource(t, "int f(void) { return 0; }")
	assert.Contains(t, text, ".globl f\n")
	assert.Contains(t, text, "f:\n")
	assert.Contains(t, text, "pushq %rbp\n")
	assert.Contains(t, text, "movq %rsp, %rbp\n")
}

func TestEmitEveryFunctionEndsInRet(t *testing.T) {
	text, _ := emitSource(t, "int f(void) { return 1; } int g(void) { return 2; }")
	// Each function has its explicit return plus the synthetic trailing return 0.
	assert.Equal(t, 4, strings.Count(text, "    ret\n"))
}

func TestEmitCallToUndefinedFunctionGetsPLTSuffix(t *testing.T) {
	text, _ := emitSource(t, "int external(void); int f(void) { return external(); }")
	assert.Contains(t, text, "call external@PLT\n")
}

func TestEmitCallToDefinedFunctionHasNoSuffix(t *testing.T) {
	text, _ := emitSource(t, "int g(void) { return 1; } int f(void) { return g(); }")
	assert.Contains(t, text, "call g\n")
	assert.NotContains(t, text, "call g@PLT\n")
}

func TestEmitEndsWithNonExecutableStackNote(t *testing.T) {
	text, _ := emitSource(t, "int f(void) { return 0; }")
	assert.True(t, strings.HasSuffix(text, `.section .note.GNU-stack,"",@progbits`+"\n"))
}

func TestEmitUnaryNotUsesNotlMnemonic(t *testing.T) {
	text, _ := emitSource(t, "int f(void) { return ~1; }")
	assert.Contains(t, text, "notl ")
}

func TestEmitLogicalNotUsesSete(t *testing.T) {
	text, _ := emitSource(t, "int f(void) { return !1; }")
	assert.Contains(t, text, "sete ")
}
