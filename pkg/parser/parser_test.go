package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/parser"
	"github.com/nanocc/nanocc/pkg/token"
)

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	tokens, err := lexer.New("int f(void){return " + src + ";}").Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	require.Len(t, prog, 1)
	require.Len(t, *prog[0].Body, 1)
	ret, ok := (*prog[0].Body)[0].(*ast.ReturnStmt)
	require.True(t, ok)
	return ret.Expr
}

func TestParsePrecedenceMultiplicationBindsTighterThanAddition(t *testing.T) {
	expr := parseExpr(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Plus, bin.Op)

	right, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Star, right.Op)
}

func TestParseAdditionIsLeftAssociative(t *testing.T) {
	expr := parseExpr(t, "1 - 2 - 3")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Minus, bin.Op)

	left, ok := bin.Left.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Minus, left.Op)

	_, leftIsConst := left.Left.(*ast.ConstExpr)
	assert.True(t, leftIsConst)
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	expr := parseExpr(t, "a = b = 3")
	assign, ok := expr.(*ast.AssignExpr)
	require.True(t, ok)

	_, targetIsVar := assign.Target.(*ast.VarExpr)
	assert.True(t, targetIsVar)

	inner, ok := assign.Value.(*ast.AssignExpr)
	require.True(t, ok)
	_, innerTargetIsVar := inner.Target.(*ast.VarExpr)
	assert.True(t, innerTargetIsVar)
}

func TestParseConditionalIsRightAssociativeAndLowerThanLogicalOr(t *testing.T) {
	expr := parseExpr(t, "a || b ? 1 : 2")
	cond, ok := expr.(*ast.ConditionalExpr)
	require.True(t, ok)

	_, condIsOr := cond.Cond.(*ast.BinaryExpr)
	assert.True(t, condIsOr)

	nested, ok := parseExpr(t, "a ? 1 : b ? 2 : 3").(*ast.ConditionalExpr)
	require.True(t, ok)
	_, elseIsConditional := nested.Else.(*ast.ConditionalExpr)
	assert.True(t, elseIsConditional)
}

func TestParseLogicalOperatorsBindLooserThanRelational(t *testing.T) {
	expr := parseExpr(t, "a < b && c > d")
	bin, ok := expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.AmpAmp, bin.Op)

	_, leftIsRelational := bin.Left.(*ast.BinaryExpr)
	assert.True(t, leftIsRelational)
	_, rightIsRelational := bin.Right.(*ast.BinaryExpr)
	assert.True(t, rightIsRelational)
}

func TestParseUnaryOperatorsNestOverFactor(t *testing.T) {
	expr := parseExpr(t, "-~!a")
	outer, ok := expr.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Minus, outer.Op)

	mid, ok := outer.Operand.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Tilde, mid.Op)

	inner, ok := mid.Operand.(*ast.UnaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.Bang, inner.Op)
}

func TestParseCallExprWithArgs(t *testing.T) {
	expr := parseExpr(t, "add(1, 2 + 3)")
	call, ok := expr.(*ast.CallExpr)
	require.True(t, ok)
	assert.Equal(t, "add", call.Callee)
	require.Len(t, call.Args, 2)
	_, firstIsConst := call.Args[0].(*ast.ConstExpr)
	assert.True(t, firstIsConst)
	_, secondIsBinary := call.Args[1].(*ast.BinaryExpr)
	assert.True(t, secondIsBinary)
}

func TestParseFunctionWithParamsAndBody(t *testing.T) {
	tokens, err := lexer.New("int add(int a, int b) { return a + b; }").Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, "add", prog[0].Name)
	assert.Equal(t, []string{"a", "b"}, prog[0].Params)
	require.NotNil(t, prog[0].Body)
	require.Len(t, *prog[0].Body, 1)
}

func TestParseFunctionPrototypeHasNilBody(t *testing.T) {
	tokens, err := lexer.New("int f(void);").Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Nil(t, prog[0].Body)
}

func TestParseForLoopWithAllClauses(t *testing.T) {
	tokens, err := lexer.New("int f(void){ for (int i = 0; i < 10; i = i + 1) ; }").Lex()
	require.NoError(t, err)
	prog, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	require.Len(t, *prog[0].Body, 1)

	forStmt, ok := (*prog[0].Body)[0].(*ast.ForStmt)
	require.True(t, ok)

	init, ok := forStmt.Init.(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "i", init.Name)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)
}

func TestParseDecrementOperatorIsRejectedAtParseTime(t *testing.T) {
	tokens, err := lexer.New("int f(void){ return a--; }").Lex()
	require.NoError(t, err)

	_, err = parser.New(tokens).Parse()
	require.Error(t, err)
	var synErr *parser.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseMissingSemicolonIsSyntaxError(t *testing.T) {
	tokens, err := lexer.New("int f(void){ return 1 }").Lex()
	require.NoError(t, err)

	_, err = parser.New(tokens).Parse()
	require.Error(t, err)
	var synErr *parser.SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, token.Semi, tokenKindOf(synErr.Expected))
}

// tokenKindOf is a small helper converting a SyntaxError.Expected string back for comparison
// against token.Kind, since SyntaxError stores the expected kind as its string form.
func tokenKindOf(expected string) token.Kind { return token.Kind(expected) }

func TestParseUnexpectedTokenInFactorPositionIsSyntaxError(t *testing.T) {
	tokens, err := lexer.New("int f(void){ return ; }").Lex()
	require.NoError(t, err)

	_, err = parser.New(tokens).Parse()
	require.Error(t, err)
	var synErr *parser.SyntaxError
	require.ErrorAs(t, err, &synErr)
}
