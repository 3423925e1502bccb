package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/parser"
	"github.com/nanocc/nanocc/pkg/sema"
)

func parseProgram(t *testing.T, src string) ast.Program {
	t.Helper()
	tokens, err := lexer.New(src).Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	return prog
}

func resolve(t *testing.T, src string) (ast.Program, error) {
	t.Helper()
	prog := parseProgram(t, src)
	return sema.NewResolver().Resolve(prog)
}

func TestResolveRenamesLocalVariables(t *testing.T) {
	prog, err := resolve(t, "int f(void) { int x = 0; return x; }")
	require.NoError(t, err)

	decl := (*prog[0].Body)[0].(*ast.VarDecl)
	assert.Equal(t, "x.1", decl.Name)

	ret := (*prog[0].Body)[1].(*ast.ReturnStmt)
	varExpr := ret.Expr.(*ast.VarExpr)
	assert.Equal(t, "x.1", varExpr.Name)
}

func TestResolveRejectsRedeclarationInSameScope(t *testing.T) {
	_, err := resolve(t, "int f(void) { int x = 0; int x = 1; return x; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.Redeclaration, semaErr.Kind)
}

func TestResolveAllowsShadowingInNestedScope(t *testing.T) {
	prog, err := resolve(t, "int f(void) { int x = 0; { int x = 1; } return x; }")
	require.NoError(t, err)

	outer := (*prog[0].Body)[0].(*ast.VarDecl)
	assert.Equal(t, "x.1", outer.Name)

	inner := (*prog[0].Body)[1].(*ast.CompoundStmt)
	innerDecl := inner.Block[0].(*ast.VarDecl)
	assert.Equal(t, "x.2", innerDecl.Name)
	assert.NotEqual(t, outer.Name, innerDecl.Name)
}

func TestResolveRejectsUndeclaredVariable(t *testing.T) {
	_, err := resolve(t, "int f(void) { return y; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.Undeclared, semaErr.Kind)
}

func TestResolveRejectsAssignmentToNonVariable(t *testing.T) {
	_, err := resolve(t, "int f(void) { 1 = 2; return 0; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.InvalidLvalue, semaErr.Kind)
}

func TestResolveParametersShareFunctionBodyScope(t *testing.T) {
	prog, err := resolve(t, "int f(int a) { int a = 1; return a; }")
	require.Error(t, err)
	_ = prog
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.Redeclaration, semaErr.Kind)
}

func TestResolveRejectsNestedFunctionDefinition(t *testing.T) {
	_, err := resolve(t, "int f(void) { int g(void) { return 0; } return 0; }")
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.Redeclaration, semaErr.Kind)
}

func TestResolveAllowsNestedFunctionPrototype(t *testing.T) {
	_, err := resolve(t, "int f(void) { int g(void); return g(); }")
	require.NoError(t, err)
}
