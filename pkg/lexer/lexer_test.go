package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanocc/nanocc/pkg/lexer"
	"github.com/nanocc/nanocc/pkg/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestLexKeywordsVsIdentifiers(t *testing.T) {
	tokens, err := lexer.New("int intx void").Lex()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Int, token.Identifier, token.Void, token.EOF}, kinds(tokens))
	assert.Equal(t, "intx", tokens[1].Lexeme)
}

func TestLexMultiCharOperatorsBeatPrefixes(t *testing.T) {
	tokens, err := lexer.New("a == b != c <= d >= e && f || g").Lex()
	require.NoError(t, err)
	got := kinds(tokens)
	want := []token.Kind{
		token.Identifier, token.EqualEqual, token.Identifier, token.BangEqual, token.Identifier,
		token.LessEqual, token.Identifier, token.GreaterEqual, token.Identifier, token.AmpAmp,
		token.Identifier, token.PipePipe, token.Identifier, token.EOF,
	}
	assert.Equal(t, want, got)
}

func TestLexDecrementOperatorIsTokenized(t *testing.T) {
	// Lexing "--" succeeds; spec.md section 9 says the parser, not the lexer, rejects it.
	tokens, err := lexer.New("a--b").Lex()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Identifier, token.MinusMinus, token.Identifier, token.EOF}, kinds(tokens))
}

func TestLexConstantMustNotRunIntoIdentifier(t *testing.T) {
	_, err := lexer.New("1x").Lex()
	require.Error(t, err)
	var lexErr *lexer.LexError
	require.ErrorAs(t, err, &lexErr)
}

func TestLexWhitespaceIsSkipped(t *testing.T) {
	tokens, err := lexer.New("  int \t main  \n ( ) ").Lex()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{token.Int, token.Identifier, token.LParen, token.RParen, token.EOF}, kinds(tokens))
}

func TestLexFailsOnUnrecognizedCharacter(t *testing.T) {
	_, err := lexer.New("int x = 1 @ 2;").Lex()
	require.Error(t, err)
	var lexErr *lexer.LexError
	require.ErrorAs(t, err, &lexErr)
}
