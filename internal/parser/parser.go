// Package parser implements a recursive-descent surface parser. Layout
// (indent/dedent/end-of-line) is explicit in the token stream, produced by
// internal/lexer; expression parsing uses a shunting-yard style precedence
// climb over a simple first-character-keyed precedence table rather than a
// declared-infix table.
package parser

import (
	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/lexer"
	"loomc/internal/source"
	"loomc/internal/token"
)

type Parser struct {
	lex  *lexer.Lexer
	sink *diag.Sink
	tok  token.Token
	fail bool
}

func New(lex *lexer.Lexer, sink *diag.Sink) *Parser {
	p := &Parser{lex: lex, sink: sink}
	p.advance()
	return p
}

func (p *Parser) advance() { p.tok = p.lex.Next() }

func (p *Parser) at(k token.Kind) bool { return p.tok.Kind == k }

func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.tok.Kind != k {
		p.errorf("expected %s, found %s", k, p.tok.Kind)
		return p.tok, false
	}
	t := p.tok
	p.advance()
	return t, true
}

func (p *Parser) errorf(format string, args ...any) {
	p.fail = true
	p.sink.Errorf(diag.ParseError, p.tok.Location, format, args...)
}

// Failed reports whether any parse error was recorded.
func (p *Parser) Failed() bool { return p.fail }

// ParseFile parses one source file into a top-level DefMap: a flat
// sequence of definitions and publish contributions, terminated by end of
// input. The root Top later wraps one of these per file.
func ParseFile(f *source.File, sink *diag.Sink) *ast.DefMap {
	l := lexer.New(f, sink)
	p := New(l, sink)
	start := p.tok.Location
	defs, pubs := p.parseDefBlock(false)
	end := p.tok.Location
	return &ast.DefMap{
		Location: nodeLoc(start, end),
		Defs:     defs,
		Pubs:     pubs,
		Body:     unitLiteral(end),
	}
}

func nodeLoc(a, b source.Location) source.Location { return a.Span(b) }

func unitLiteral(loc source.Location) ast.Expr {
	return &ast.Literal{Kind: ast.LitUnit, Location: loc}
}

// parseDefBlock parses a sequence of `def`/`global def`/`publish`
// statements separated by end-of-line, until dedent (if nested) or End (if
// top-level). It does not parse a trailing tail expression — callers that
// need one (nested DefMap bodies, see parseIndentedDefMap) parse it afterward.
func (p *Parser) parseDefBlock(nested bool) (ast.Defs, ast.Pubs) {
	var defs ast.Defs
	var pubs ast.Pubs
	for {
		for p.at(token.EndOfLine) {
			p.advance()
		}
		if nested && p.at(token.Dedent) {
			break
		}
		if !nested && p.at(token.End) {
			break
		}
		if p.at(token.KeywordPublish) {
			pubs.Add(p.parsePublish())
		} else if p.at(token.KeywordGlobal) || p.at(token.KeywordDef) || p.at(token.KeywordMemoize) {
			defs.Add(p.parseDef())
		} else {
			break
		}
		if !p.at(token.EndOfLine) && !p.at(token.End) && !p.at(token.Dedent) {
			p.errorf("expected end of definition, found %s", p.tok.Kind)
			p.resync()
		}
	}
	return defs, pubs
}

// resync skips tokens up to the next end-of-line/dedent/end so parsing can
// continue after an error instead of aborting the whole file.
func (p *Parser) resync() {
	for !p.at(token.EndOfLine) && !p.at(token.Dedent) && !p.at(token.End) {
		p.advance()
	}
}

func (p *Parser) parseDef() ast.DefEntry {
	start := p.tok.Location
	memoize := false
	global := false
	if p.at(token.KeywordMemoize) {
		memoize = true
		p.advance()
	}
	if p.at(token.KeywordGlobal) {
		global = true
		p.advance()
	}
	if _, ok := p.expect(token.KeywordDef); !ok {
		p.resync()
		return ast.DefEntry{Location: start}
	}
	nameTok, ok := p.expect(token.Identifier)
	if !ok {
		p.resync()
		return ast.DefEntry{Location: start}
	}
	name := ast.Identifier(nameTok.Text)

	var params []ast.Identifier
	for p.at(token.Identifier) {
		params = append(params, ast.Identifier(p.tok.Text))
		p.advance()
	}

	if _, ok := p.expect(token.Equals); !ok {
		p.resync()
		return ast.DefEntry{Location: start, Name: name, Global: global, Memoize: memoize}
	}
	body := p.parseExprBody()
	for i := len(params) - 1; i >= 0; i-- {
		body = &ast.Lambda{Location: start.Span(body.Loc()), Param: params[i], Body: body}
	}
	return ast.DefEntry{Location: start.Span(body.Loc()), Name: name, Global: global, Memoize: memoize, Body: body}
}

func (p *Parser) parsePublish() ast.PubEntry {
	start := p.tok.Location
	p.advance() // 'publish'
	nameTok, ok := p.expect(token.Identifier)
	if !ok {
		p.resync()
		return ast.PubEntry{Location: start}
	}
	if _, ok := p.expect(token.Equals); !ok {
		p.resync()
		return ast.PubEntry{Location: start, Name: ast.Identifier(nameTok.Text)}
	}
	body := p.parseExprBody()
	return ast.PubEntry{Location: start.Span(body.Loc()), Name: ast.Identifier(nameTok.Text), Contribute: body}
}

// parseExprBody parses the right-hand side of `= `: either a single
// expression on the same line, or (if the next token is Indent) a nested
// DefMap block followed by a trailing tail expression.
func (p *Parser) parseExprBody() ast.Expr {
	if p.at(token.Indent) {
		return p.parseIndentedDefMap()
	}
	return p.parseExpr(0)
}

func (p *Parser) parseIndentedDefMap() ast.Expr {
	start := p.tok.Location
	p.advance() // indent
	defs, pubs := p.parseDefBlock(true)
	var tail ast.Expr
	if !p.at(token.Dedent) {
		tail = p.parseExpr(0)
		for p.at(token.EndOfLine) {
			p.advance()
		}
	} else {
		tail = unitLiteral(p.tok.Location)
	}
	end := p.tok.Location
	if _, ok := p.expect(token.Dedent); !ok {
		p.resync()
	}
	return &ast.DefMap{Location: start.Span(end), Defs: defs, Pubs: pubs, Body: tail}
}
