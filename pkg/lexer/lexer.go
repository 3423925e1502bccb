// Package lexer tokenizes preprocessed C source text (spec.md section 4.1).
//
// Unlike the rest of the pipeline, the lexer is built directly on the standard library's
// regexp package instead of the teacher's goparsec combinators. goparsec fuses tokenizing
// into the same combinator pass as parsing (pc.Token nodes are leaves of the same AST the
// grammar combinators build) and resolves alternatives by ordered choice (first match wins),
// never by length. spec.md demands a standalone token-sequence pass with an explicit
// longest-match-wins, ties-broken-by-table-order contract and a LexError carrying the exact
// byte offset where no pattern matched — a contract a conventional ordered regexp table
// expresses directly and testably. See DESIGN.md for the full justification.
package lexer

import (
	"fmt"
	"regexp"

	"github.com/nanocc/nanocc/pkg/token"
)

// LexError reports that no recognized token pattern matches at Pos.
type LexError struct{ Pos int }

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: no token matches at position %d", e.Pos)
}

// pattern pairs a token Kind with the regular expression that recognizes it. Operator
// patterns are tried in table order at each position and the first match wins; since every
// multi-character operator is listed ahead of its single-character prefix, the first match
// is also the longest. Keywords are not in this table: the longest identifier run is matched
// first and then looked up in token.Keywords.
type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// Kind is a local alias so this file reads symmetrically with pkg/token; it is the same type.
type Kind = token.Kind

var whitespace = regexp.MustCompile(`^[ \t\r\n]+`)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
var constRe = regexp.MustCompile(`^[0-9]+`)

// operatorPatterns lists multi-character operators before their single-character prefixes so
// that, e.g., "==" matches before "=" does and is not split into "=" followed by "=".
var operatorPatterns = []pattern{
	{token.EqualEqual, regexp.MustCompile(`^==`)},
	{token.BangEqual, regexp.MustCompile(`^!=`)},
	{token.LessEqual, regexp.MustCompile(`^<=`)},
	{token.GreaterEqual, regexp.MustCompile(`^>=`)},
	{token.AmpAmp, regexp.MustCompile(`^&&`)},
	{token.PipePipe, regexp.MustCompile(`^\|\|`)},
	{token.MinusMinus, regexp.MustCompile(`^--`)},

	{token.LParen, regexp.MustCompile(`^\(`)},
	{token.RParen, regexp.MustCompile(`^\)`)},
	{token.LBrace, regexp.MustCompile(`^\{`)},
	{token.RBrace, regexp.MustCompile(`^\}`)},
	{token.Semi, regexp.MustCompile(`^;`)},
	{token.Comma, regexp.MustCompile(`^,`)},
	{token.Question, regexp.MustCompile(`^\?`)},
	{token.Colon, regexp.MustCompile(`^:`)},

	{token.Tilde, regexp.MustCompile(`^~`)},
	{token.Bang, regexp.MustCompile(`^!`)},
	{token.Minus, regexp.MustCompile(`^-`)},
	{token.Plus, regexp.MustCompile(`^\+`)},
	{token.Star, regexp.MustCompile(`^\*`)},
	{token.Slash, regexp.MustCompile(`^/`)},
	{token.Percent, regexp.MustCompile(`^%`)},
	{token.Less, regexp.MustCompile(`^<`)},
	{token.Greater, regexp.MustCompile(`^>`)},
	{token.Equal, regexp.MustCompile(`^=`)},
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Lexer tokenizes a fixed source string. It carries no mutable state beyond the scan cursor,
// so a single Lexer value is only ever used for one Lex call (spec.md section 5: no shared
// state survives a pass).
type Lexer struct{ src string }

// New returns a Lexer over src.
func New(src string) Lexer { return Lexer{src: src} }

// Lex tokenizes the whole source, returning LexError if any position matches no pattern.
func (l Lexer) Lex() ([]token.Token, error) {
	var out []token.Token
	pos := 0

	for pos < len(l.src) {
		rest := l.src[pos:]

		if loc := whitespace.FindStringIndex(rest); loc != nil {
			pos += loc[1]
			continue
		}

		if tok, n, ok := l.matchIdentOrKeyword(rest, pos); ok {
			out = append(out, tok)
			pos += n
			continue
		}

		if loc := constRe.FindStringIndex(rest); loc != nil && !runsIntoIdent(rest, loc[1]) {
			out = append(out, token.Token{Kind: token.Constant, Lexeme: rest[:loc[1]], Pos: pos})
			pos += loc[1]
			continue
		}

		if tok, n, ok := matchOperator(rest, pos); ok {
			out = append(out, tok)
			pos += n
			continue
		}

		return nil, &LexError{Pos: pos}
	}

	out = append(out, token.Token{Kind: token.EOF, Pos: pos})
	return out, nil
}

// matchIdentOrKeyword recognizes the longest run of identifier characters at the front of
// rest; if it spells a keyword it is tagged with the keyword's Kind, otherwise Identifier.
// A keyword only counts as such if the following character (if any) breaks the word — this
// is the "intx must not lex as int, x" rule from spec.md section 4.1.
func (l Lexer) matchIdentOrKeyword(rest string, pos int) (token.Token, int, bool) {
	loc := identRe.FindStringIndex(rest)
	if loc == nil {
		return token.Token{}, 0, false
	}
	lexeme := rest[:loc[1]]

	if kind, isKeyword := token.Keywords[lexeme]; isKeyword {
		return token.Token{Kind: kind, Lexeme: lexeme, Pos: pos}, loc[1], true
	}
	return token.Token{Kind: token.Identifier, Lexeme: lexeme, Pos: pos}, loc[1], true
}

// runsIntoIdent reports whether the byte right after a constant match is itself a word
// character, which would mean the constant pattern stopped short of a longer identifier-like
// run (e.g. "123abc" should not lex as constant "123" followed by identifier "abc" per the
// word-break rule spec.md applies symmetrically to constants).
func runsIntoIdent(rest string, end int) bool {
	return end < len(rest) && isWordByte(rest[end])
}

func matchOperator(rest string, pos int) (token.Token, int, bool) {
	for _, p := range operatorPatterns {
		if loc := p.re.FindStringIndex(rest); loc != nil {
			return token.Token{Kind: p.kind, Lexeme: rest[:loc[1]], Pos: pos}, loc[1], true
		}
	}
	return token.Token{}, 0, false
}
