package asmdump_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/asm"
	"github.com/nanocc/nanocc/pkg/asmdump"
	"github.com/nanocc/nanocc/pkg/ir"
	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/parser"
	"github.com/nanocc/nanocc/pkg/sema"
)

func emittedText(t *testing.T, src string) string {
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
	return text
}

func TestReadParsesFunctionNamesInOrder(t *testing.T) {
	text := emittedText(t, "int f(void) { return 1; } int g(void) { return 2; }")
	reader := asmdump.NewReader(strings.NewReader(text))
	listing, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"f", "g"}, listing.FunctionNames())
}

func TestReadReportsEveryFunctionEndsInRet(t *testing.T) {
	text := emittedText(t, "int f(void) { return 1; } int g(void) { return 2; }")
	reader := asmdump.NewReader(strings.NewReader(text))
	listing, err := reader.Read()
	require.NoError(t, err)
	assert.True(t, listing.EndsEachFunctionInRet())
}

func TestReadCollectsPLTCallTargets(t *testing.T) {
	text := emittedText(t, "int external(void); int f(void) { return external(); }")
	reader := asmdump.NewReader(strings.NewReader(text))
	listing, err := reader.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"external"}, listing.PLTCallTargets())
}

func TestReadParsesLocalLabelsAndDirectives(t *testing.T) {
	text := emittedText(t, "int f(void) { while (1) { break; } return 0; }")
	reader := asmdump.NewReader(strings.NewReader(text))
	listing, err := reader.Read()
	require.NoError(t, err)

	var sawLocalLabel, sawDirective bool
	for _, node := range listing {
		switch node.(type) {
		case asmdump.LocalLabel:
			sawLocalLabel = true
		case asmdump.Directive:
			sawDirective = true
		}
	}
	assert.True(t, sawLocalLabel)
	assert.True(t, sawDirective)
}
