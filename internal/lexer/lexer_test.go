package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loomc/internal/diag"
	"loomc/internal/lexer"
	"loomc/internal/source"
	"loomc/internal/token"
)

func lexAll(t *testing.T, content string) ([]token.Token, *diag.Sink) {
	t.Helper()
	f := source.NewFile("t.loom", "main", content)
	sink := diag.NewSink()
	l := lexer.New(f, sink)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.End {
			break
		}
	}
	return toks, sink
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerSimpleDef(t *testing.T) {
	toks, sink := lexAll(t, "def a = 1")
	require.False(t, sink.HasErrors())
	assert.Equal(t, []token.Kind{
		token.KeywordDef, token.Identifier, token.Equals, token.IntLiteral, token.End,
	}, kinds(toks))
}

func TestLexerIndentDedent(t *testing.T) {
	src := "def a =\n  def b = 1\n  b\ndef c = 2"
	toks, sink := lexAll(t, src)
	require.False(t, sink.HasErrors())
	assert.Equal(t, []token.Kind{
		token.KeywordDef, token.Identifier, token.Equals, token.EndOfLine,
		token.Indent,
		token.KeywordDef, token.Identifier, token.Equals, token.IntLiteral, token.EndOfLine,
		token.Identifier,
		token.Dedent,
		token.KeywordDef, token.Identifier, token.Equals, token.IntLiteral,
		token.End,
	}, kinds(toks))
}

func TestLexerCapitalizedIdentifier(t *testing.T) {
	toks, sink := lexAll(t, "Cons")
	require.False(t, sink.HasErrors())
	require.Len(t, toks, 2)
	assert.True(t, toks[0].Capitalized)
	assert.Equal(t, "Cons", toks[0].Text)
}

func TestLexerNumberBases(t *testing.T) {
	toks, sink := lexAll(t, "0xFF 0b101 3.14 2e3")
	require.False(t, sink.HasErrors())
	require.Len(t, toks, 5)
	assert.Equal(t, int64(255), toks[0].Int.Int64())
	assert.Equal(t, int64(5), toks[1].Int.Int64())
	assert.Equal(t, token.FloatLiteral, toks[2].Kind)
	assert.Equal(t, token.FloatLiteral, toks[3].Kind)
}

func TestLexerCommentAndBlankLinesIgnored(t *testing.T) {
	src := "# a comment\n\ndef a = 1  # trailing\n"
	toks, sink := lexAll(t, src)
	require.False(t, sink.HasErrors())
	assert.Equal(t, []token.Kind{
		token.KeywordDef, token.Identifier, token.Equals, token.IntLiteral, token.End,
	}, kinds(toks))
}

func TestLexerInconsistentIndentationReported(t *testing.T) {
	src := "def a =\n  def b = 1\n def c = 2"
	_, sink := lexAll(t, src)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.LexError, sink.Diagnostics()[0].Kind)
}

func TestLexerReservedCharacterReported(t *testing.T) {
	_, sink := lexAll(t, "def a = {1}")
	require.True(t, sink.HasErrors())
}

func TestLexerOperatorRun(t *testing.T) {
	toks, sink := lexAll(t, "a ++ b")
	require.False(t, sink.HasErrors())
	require.Len(t, toks, 4)
	assert.Equal(t, token.Operator, toks[1].Kind)
	assert.Equal(t, "++", toks[1].Text)
}
