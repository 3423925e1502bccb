package sema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/ast"
	"github.com/nanocc/nanocc/pkg/sema"
)

func TestLoopLabelAssignsDistinctLabelsToEachLoop(t *testing.T) {
	prog := parseProgram(t, "int f(void) { while (1) { } while (1) { } return 0; }")
	prog, err := sema.NewLoopLabeller().Label(prog)
	require.NoError(t, err)

	first := (*prog[0].Body)[0].(*ast.WhileStmt)
	second := (*prog[0].Body)[1].(*ast.WhileStmt)
	assert.NotEmpty(t, first.Label)
	assert.NotEmpty(t, second.Label)
	assert.NotEqual(t, first.Label, second.Label)
}

func TestLoopLabelPropagatesToBreakAndContinue(t *testing.T) {
	prog := parseProgram(t, "int f(void) { while (1) { break; continue; } return 0; }")
	prog, err := sema.NewLoopLabeller().Label(prog)
	require.NoError(t, err)

	loop := (*prog[0].Body)[0].(*ast.WhileStmt)
	body := loop.Body.(*ast.CompoundStmt)
	brk := body.Block[0].(*ast.BreakStmt)
	cont := body.Block[1].(*ast.ContinueStmt)
	assert.Equal(t, loop.Label, brk.Label)
	assert.Equal(t, loop.Label, cont.Label)
}

func TestLoopLabelInnerLoopShadowsOuterForBreak(t *testing.T) {
	prog := parseProgram(t, "int f(void) { while (1) { while (2) { break; } } return 0; }")
	prog, err := sema.NewLoopLabeller().Label(prog)
	require.NoError(t, err)

	outer := (*prog[0].Body)[0].(*ast.WhileStmt)
	inner := outer.Body.(*ast.CompoundStmt).Block[0].(*ast.WhileStmt)
	innerBody := inner.Body.(*ast.CompoundStmt)
	brk := innerBody.Block[0].(*ast.BreakStmt)
	assert.Equal(t, inner.Label, brk.Label)
	assert.NotEqual(t, outer.Label, brk.Label)
}

func TestLoopLabelRejectsOrphanBreak(t *testing.T) {
	prog := parseProgram(t, "int f(void) { break; return 0; }")
	_, err := sema.NewLoopLabeller().Label(prog)
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.OrphanJump, semaErr.Kind)
}

func TestLoopLabelRejectsOrphanContinue(t *testing.T) {
	prog := parseProgram(t, "int f(void) { if (1) continue; return 0; }")
	_, err := sema.NewLoopLabeller().Label(prog)
	require.Error(t, err)
	var semaErr *sema.Error
	require.ErrorAs(t, err, &semaErr)
	assert.Equal(t, sema.OrphanJump, semaErr.Kind)
}

func TestLoopLabelLabelsForLoop(t *testing.T) {
	prog := parseProgram(t, "int f(void) { for (;;) { break; } return 0; }")
	prog, err := sema.NewLoopLabeller().Label(prog)
	require.NoError(t, err)

	loop := (*prog[0].Body)[0].(*ast.ForStmt)
	assert.NotEmpty(t, loop.Label)
}
