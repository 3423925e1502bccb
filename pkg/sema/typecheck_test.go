package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/sema"
)

func analyze(t *testing.T, src string) (sema.Result, error) {
	t.Helper()
	prog := parseProgram(t, src)
	return sema.Analyze(prog)
}

func TestTypeCheckBuildsFuncTableEntry(t *testing.T) {
	result, err := analyze(t, "int add(int a, int b) { return a + b; }")
	require.NoError(t, err)

	entry, ok := result.Types["add"]
	require.True(t, ok)
	assert.Equal(t, sema.TagFunc, entry.Tag)
	assert.Equal(t, 2, entry.ParamCount)
	assert.True(t, entry.Defined)
}

func TestTypeCheckAllowsPrototypeThenDefinition(t *testing.T) {
	result, err := analyze(t, "int f(void); int f(void) { return 0; }")
	require.NoError(t, err)
	entry := result.Types["f"]
	assert.True(t, entry.Defined)
}

func TestTypeCheckRejectsSecondDefinition(t *testing.T) {
	_, err := analyze(t, "int f(void) { return 0; } int f(void) { return 1; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.Redefinition, semaErr.Kind)
}

func TestTypeCheckRejectsArityMismatchAcrossDeclarations(t *testing.T) {
	_, err := analyze(t, "int f(int a); int f(void) { return 0; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.ArityMismatch, semaErr.Kind)
}

func TestTypeCheckRejectsWrongArgumentCountAtCallSite(t *testing.T) {
	_, err := analyze(t, "int add(int a, int b) { return a + b; } int main(void) { return add(1); }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.ArityMismatch, semaErr.Kind)
}

func TestTypeCheckRejectsCallToUndeclaredFunction(t *testing.T) {
	_, err := analyze(t, "int main(void) { return missing(); }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.TypeMismatch, semaErr.Kind)
}

func TestTypeCheckRejectsVariableUsedAsFunction(t *testing.T) {
	_, err := analyze(t, "int main(void) { int f = 0; return f(); }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.TypeMismatch, semaErr.Kind)
}
