package sema

import "github.com/nanocc/nanocc/pkg/ast"

// Result bundles the output of all three passes: the rewritten, fully annotated program and the
// TypeTable the backend needs for PLT tagging (spec.md section 3).
type Result struct {
	Program ast.Program
	Types   TypeTable
}

// Analyze runs identifier resolution, type checking, and loop labelling over prog, in that
// order (spec.md section 4: each pass consumes the previous pass's output tree). It aborts and
// returns the first error raised by any pass, per spec.md section 7's "no diagnostic recovery"
// rule.
func Analyze(prog ast.Program) (Result, error) {
	prog, err := NewResolver().Resolve(prog)
	if err != nil {
		return Result{}, err
	}

	tc := NewTypeChecker()
	prog, err = tc.Check(prog)
	if err != nil {
		return Result{}, err
	}

	prog, err = NewLoopLabeller().Label(prog)
	if err != nil {
		return Result{}, err
	}

	return Result{Program: prog, Types: tc.Table()}, nil
}
