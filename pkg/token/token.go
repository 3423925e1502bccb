// Package token defines the lexical units produced by pkg/lexer and consumed by pkg/parser.
package token

import "fmt"

// Kind identifies the lexical category of a Token. It is string-based (rather than an int
// iota) so that diagnostics can print it directly, the same convention the teacher uses for
// its own small enums (e.g. vm.SegmentType, vm.ArithOpType in pkg/vm/vm.go).
type Kind string

const (
	// Keywords
	Int      Kind = "int"
	Void     Kind = "void"
	Return   Kind = "return"
	If       Kind = "if"
	Else     Kind = "else"
	Do       Kind = "do"
	While    Kind = "while"
	For      Kind = "for"
	Break    Kind = "break"
	Continue Kind = "continue"

	// Punctuators
	LParen    Kind = "("
	RParen    Kind = ")"
	LBrace    Kind = "{"
	RBrace    Kind = "}"
	Semi      Kind = ";"
	Comma     Kind = ","
	Question  Kind = "?"
	Colon     Kind = ":"

	// Operators
	Tilde       Kind = "~"
	Bang        Kind = "!"
	Minus       Kind = "-"
	Plus        Kind = "+"
	Star        Kind = "*"
	Slash       Kind = "/"
	Percent     Kind = "%"
	AmpAmp      Kind = "&&"
	PipePipe    Kind = "||"
	EqualEqual  Kind = "=="
	BangEqual   Kind = "!="
	Less        Kind = "<"
	LessEqual   Kind = "<="
	Greater     Kind = ">"
	GreaterEqual Kind = ">="
	Equal       Kind = "="
	MinusMinus  Kind = "--"

	// Leaves
	Identifier Kind = "identifier"
	Constant   Kind = "constant"

	// Sentinel
	EOF Kind = "eof"
)

// Keywords maps the reserved-word spelling to its Kind, used by the lexer to tell a keyword
// from a plain identifier once the longest match has been found (spec.md section 4.1).
var Keywords = map[string]Kind{
	"int": Int, "void": Void, "return": Return,
	"if": If, "else": Else, "do": Do, "while": While, "for": For,
	"break": Break, "continue": Continue,
}

// Token is the unit produced by the lexer and consumed by the parser. Pos is the byte offset
// of the token's first rune in the source, carried so that pkg/lexer.LexError and
// pkg/parser.SyntaxError can report precise locations (spec.md section 7).
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    int
}

func (t Token) String() string {
	if t.Kind == Identifier || t.Kind == Constant {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
	}
	return string(t.Kind)
}
