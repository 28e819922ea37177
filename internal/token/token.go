// Package token defines the lexer's output vocabulary.
package token

import (
	"math/big"

	"loomc/internal/source"
)

type Kind int

const (
	Identifier Kind = iota
	Operator
	IntLiteral
	FloatLiteral
	StringLiteral
	CharLiteral
	KeywordDef
	KeywordGlobal
	KeywordPublish
	KeywordSubscribe
	KeywordPrim
	KeywordIf
	KeywordThen
	KeywordElse
	KeywordHere
	KeywordMemoize
	Equals
	LParen
	RParen
	Backslash
	Dot
	EndOfLine
	Indent
	Dedent
	End
	Error
)

var Keywords = map[string]Kind{
	"def":       KeywordDef,
	"global":    KeywordGlobal,
	"publish":   KeywordPublish,
	"subscribe": KeywordSubscribe,
	"prim":      KeywordPrim,
	"if":        KeywordIf,
	"then":      KeywordThen,
	"else":      KeywordElse,
	"here":      KeywordHere,
	"memoize":   KeywordMemoize,
}

// Token is a single lexical unit. Text carries the literal spelling for
// identifiers/operators; Int/Float/Str/Char carry decoded literal payloads.
// Capitalized is set for identifiers whose first rune is uppercase, letting
// the parser distinguish constructor names from bindable variable names
// without a symbol table (see DESIGN.md).
type Token struct {
	Kind        Kind
	Location    source.Location
	Text        string
	Int         *big.Int
	Float       float64
	Str         string
	Char        rune
	Capitalized bool
}

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifier"
	case Operator:
		return "operator"
	case IntLiteral, FloatLiteral, StringLiteral, CharLiteral:
		return "literal"
	case Equals:
		return "'='"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Backslash:
		return "'\\'"
	case Dot:
		return "'.'"
	case EndOfLine:
		return "end-of-line"
	case Indent:
		return "indent"
	case Dedent:
		return "dedent"
	case End:
		return "end of input"
	case Error:
		return "error"
	default:
		return "keyword"
	}
}
