// Package asmdump is a debug/round-trip reader: it parses the AT&T assembly text pkg/asm emits
// back into a structured Listing, using github.com/prataprc/goparsec the same two-phase way the
// teacher's pkg/vm/parsing.go and pkg/jack/parsing.go parse their own source languages (a set of
// parser combinators builds a generic, traversable pc.Queryable tree via FromSource, then FromAST
// walks that tree with one Handle* method per node kind). cmd/nanocc exposes this behind a
// --dump-asm debug flag, parallel to the teacher's PARSEC_DEBUG/EXPORT_AST env-var feature
// flags, and the test suite uses it to assert structural properties of emitted output (e.g.
// "every function body ends in ret") without brittle full-text matching.
package asmdump

import (
	"fmt"
	"io"
	"os"

	pc "github.com/prataprc/goparsec"
)

// Listing is the whole parsed assembly text: an ordered sequence of top-level nodes.
type Listing []Node

// Node is the marker interface for every node kind a Listing can contain.
type Node interface{}

// Directive is an assembler directive line (".globl foo", ".section ...").
type Directive struct {
	Name string
	Args string
}

// FuncLabel is a function entry label (no leading indentation, e.g. "main:").
type FuncLabel struct{ Name string }

// LocalLabel is an indented local label (e.g. "  while.1:").
type LocalLabel struct{ Name string }

// Instruction is one mnemonic line with its raw operand text, left unparsed (this reader only
// needs to validate shape, not re-derive the operand tree the emitter already built).
type Instruction struct {
	Mnemonic string
	Operands string
}

// ----------------------------------------------------------------------------
// Parser combinators

var ast = pc.NewAST("asm_dump", 100)

var (
	pListing = ast.ManyUntil("listing", nil, pLine, pc.End())
	pLine    = ast.OrdChoice("line", nil, pDirective, pFuncLabel, pLocalLabel, pInstruction)

	pDirective = ast.And("directive", nil,
		pc.Token(`\.[A-Za-z_][A-Za-z0-9_]*`, "DIRECTIVE_NAME"),
		pc.Token(`[^\n]*`, "DIRECTIVE_ARGS"),
	)

	pFuncLabel = ast.And("func_label", nil, pc.Token(`[A-Za-z_.][A-Za-z0-9_.]*:`, "FUNC_LABEL"))

	pLocalLabel = ast.And("local_label", nil, pc.Token(`  [A-Za-z_.][A-Za-z0-9_.]*:`, "LOCAL_LABEL"))

	pInstruction = ast.And("instruction", nil,
		pc.Token(`    [a-z][a-zA-Z0-9]*`, "MNEMONIC"),
		pc.Token(`[^\n]*`, "OPERANDS"),
	)
)

// ----------------------------------------------------------------------------
// Reader

// Reader parses AT&T assembly text produced by pkg/asm.Emitter.
type Reader struct{ reader io.Reader }

// NewReader returns a Reader over r.
func NewReader(r io.Reader) Reader {
	return Reader{reader: r}
}

// Read parses the whole input into a Listing.
func (r *Reader) Read() (Listing, error) {
	content, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("asmdump: cannot read input: %w", err)
	}

	root, ok := r.FromSource(content)
	if !ok {
		return nil, fmt.Errorf("asmdump: failed to parse assembly text")
	}
	return r.FromAST(root)
}

// FromSource scans the textual input and returns a traversable AST, mirroring the teacher's
// Parser.FromSource.
func (r *Reader) FromSource(source []byte) (pc.Queryable, bool) {
	if os.Getenv("PARSEC_DEBUG") != "" {
		ast.SetDebug()
	}
	root, _ := ast.Parsewith(pListing, pc.NewScanner(source))
	return root, root != nil
}

// FromAST walks the generic AST and produces a typed Listing, one Handle* dispatch per node
// kind, mirroring the teacher's Parser.FromAST.
func (r *Reader) FromAST(root pc.Queryable) (Listing, error) {
	if root.GetName() != "listing" {
		return nil, fmt.Errorf("asmdump: expected node 'listing', found %s", root.GetName())
	}

	var listing Listing
	for _, line := range root.GetChildren() {
		for _, child := range line.GetChildren() {
			node, err := r.dispatch(child)
			if err != nil {
				return nil, err
			}
			listing = append(listing, node)
		}
	}
	return listing, nil
}

func (r *Reader) dispatch(node pc.Queryable) (Node, error) {
	switch node.GetName() {
	case "directive":
		return r.HandleDirective(node)
	case "func_label":
		return r.HandleFuncLabel(node)
	case "local_label":
		return r.HandleLocalLabel(node)
	case "instruction":
		return r.HandleInstruction(node)
	default:
		return nil, fmt.Errorf("asmdump: unrecognized node %q", node.GetName())
	}
}

// HandleDirective converts a "directive" node to a Directive.
func (Reader) HandleDirective(node pc.Queryable) (Node, error) {
	children := node.GetChildren()
	if len(children) != 2 {
		return nil, fmt.Errorf("asmdump: expected node 'directive' with 2 leaves, got %d", len(children))
	}
	return Directive{Name: children[0].GetValue(), Args: children[1].GetValue()}, nil
}

// HandleFuncLabel converts a "func_label" node to a FuncLabel.
func (Reader) HandleFuncLabel(node pc.Queryable) (Node, error) {
	children := node.GetChildren()
	if len(children) != 1 {
		return nil, fmt.Errorf("asmdump: expected node 'func_label' with 1 leaf, got %d", len(children))
	}
	name := children[0].GetValue()
	return FuncLabel{Name: name[:len(name)-1]}, nil
}

// HandleLocalLabel converts a "local_label" node to a LocalLabel.
func (Reader) HandleLocalLabel(node pc.Queryable) (Node, error) {
	children := node.GetChildren()
	if len(children) != 1 {
		return nil, fmt.Errorf("asmdump: expected node 'local_label' with 1 leaf, got %d", len(children))
	}
	name := children[0].GetValue()
	return LocalLabel{Name: name[2 : len(name)-1]}, nil
}

// HandleInstruction converts an "instruction" node to an Instruction.
func (Reader) HandleInstruction(node pc.Queryable) (Node, error) {
	children := node.GetChildren()
	if len(children) != 2 {
		return nil, fmt.Errorf("asmdump: expected node 'instruction' with 2 leaves, got %d", len(children))
	}
	return Instruction{Mnemonic: children[0].GetValue(), Operands: children[1].GetValue()}, nil
}
