package parser

import (
	"loomc/internal/ast"
	"loomc/internal/source"
	"loomc/internal/token"
)

// precedence returns the binding power of an operator keyed by its first
// character; `,` is right-associative and binds loosest.
func precedence(op string) (prec int, rightAssoc bool) {
	if op == "" {
		return 0, false
	}
	switch op[0] {
	case ',':
		return 1, true
	case '|':
		return 2, false
	case '&':
		return 3, false
	case '<', '>', '=', '!':
		return 4, false
	case '+', '-':
		return 5, false
	case '*', '/', '%':
		return 6, false
	case '^':
		return 7, true
	case '~':
		return 8, false
	case '$':
		return 9, true
	case '.':
		return 10, false
	default:
		return 5, false
	}
}

// parseExpr parses an expression using precedence climbing over
// application-level terms; binary operators desugar directly into nested
// App nodes applying the operator as an ordinary two-argument function.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseApp()
	for p.at(token.Operator) {
		op := p.tok.Text
		prec, rightAssoc := precedence(op)
		if prec < minPrec {
			break
		}
		opLoc := p.tok.Location
		p.advance()
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		right := p.parseExpr(nextMin)
		opRef := &ast.VarRef{Location: opLoc, Name: ast.Identifier(op)}
		applied := &ast.App{Location: left.Loc().Span(opRef.Loc()), Fn: opRef, Arg: left}
		left = &ast.App{Location: applied.Loc().Span(right.Loc()), Fn: applied, Arg: right}
	}
	return left
}

// parseApp parses left-associative application by juxtaposition of atoms.
func (p *Parser) parseApp() ast.Expr {
	fn := p.parseAtom()
	for p.startsAtom() {
		arg := p.parseAtom()
		fn = &ast.App{Location: fn.Loc().Span(arg.Loc()), Fn: fn, Arg: arg}
	}
	return fn
}

func (p *Parser) startsAtom() bool {
	switch p.tok.Kind {
	case token.LParen, token.Backslash, token.Identifier, token.IntLiteral,
		token.FloatLiteral, token.StringLiteral, token.CharLiteral,
		token.KeywordIf, token.KeywordHere, token.KeywordPrim,
		token.KeywordSubscribe:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() ast.Expr {
	switch p.tok.Kind {
	case token.LParen:
		start := p.tok.Location
		p.advance()
		if p.at(token.Operator) {
			// (op) — infix operator used as a value, e.g. `(+)`.
			op := p.tok.Text
			p.advance()
			end := p.tok.Location
			if _, ok := p.expect(token.RParen); !ok {
				p.resync()
			}
			return &ast.VarRef{Location: start.Span(end), Name: ast.Identifier(op)}
		}
		inner := p.parseExpr(0)
		if _, ok := p.expect(token.RParen); !ok {
			p.resync()
		}
		return inner
	case token.Backslash:
		return p.parseLambda()
	case token.Identifier:
		loc := p.tok.Location
		name := ast.Identifier(p.tok.Text)
		capitalized := p.tok.Capitalized
		p.advance()
		if capitalized {
			return p.maybeApplyConstructor(loc, name)
		}
		if name == "match" {
			return p.parseMatch(loc)
		}
		return &ast.VarRef{Location: loc, Name: name}
	case token.IntLiteral:
		t := p.tok
		p.advance()
		return &ast.Literal{Location: t.Location, Kind: ast.LitInt, Int: t.Int}
	case token.FloatLiteral:
		t := p.tok
		p.advance()
		return &ast.Literal{Location: t.Location, Kind: ast.LitFloat, Float: t.Float}
	case token.StringLiteral:
		t := p.tok
		p.advance()
		return &ast.Literal{Location: t.Location, Kind: ast.LitString, String: t.Str}
	case token.CharLiteral:
		t := p.tok
		p.advance()
		return &ast.Literal{Location: t.Location, Kind: ast.LitChar, Char: t.Char}
	case token.KeywordHere:
		loc := p.tok.Location
		p.advance()
		return &ast.Here{Location: loc}
	case token.KeywordPrim:
		start := p.tok.Location
		p.advance()
		t, ok := p.expect(token.StringLiteral)
		if !ok {
			p.resync()
			return &ast.Prim{Location: start}
		}
		return &ast.Prim{Location: start.Span(t.Location), Name: t.Str}
	case token.KeywordSubscribe:
		start := p.tok.Location
		p.advance()
		t, ok := p.expect(token.Identifier)
		if !ok {
			p.resync()
			return &ast.Subscribe{Location: start}
		}
		return &ast.Subscribe{Location: start.Span(t.Location), Name: ast.Identifier(t.Text)}
	case token.KeywordIf:
		return p.parseIf()
	default:
		p.errorf("unexpected token %s in expression", p.tok.Kind)
		loc := p.tok.Location
		p.advance()
		return &ast.Literal{Location: loc, Kind: ast.LitUnit}
	}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.tok.Location
	p.advance() // backslash
	nameTok, ok := p.expect(token.Identifier)
	if !ok {
		p.resync()
		return &ast.Literal{Location: start, Kind: ast.LitUnit}
	}
	if _, ok := p.expect(token.Dot); !ok {
		p.resync()
		return &ast.Literal{Location: start, Kind: ast.LitUnit}
	}
	body := p.parseExpr(0)
	return &ast.Lambda{Location: start.Span(body.Loc()), Param: ast.Identifier(nameTok.Text), Body: body}
}

func (p *Parser) parseIf() ast.Expr {
	start := p.tok.Location
	p.advance() // if
	cond := p.parseExpr(0)
	if _, ok := p.expect(token.KeywordThen); !ok {
		p.resync()
	}
	then := p.parseExpr(0)
	if _, ok := p.expect(token.KeywordElse); !ok {
		p.resync()
	}
	els := p.parseExpr(0)
	// Represented directly as a two-arm Match over True/False so later
	// passes only ever see one dispatch construct.
	return &ast.Match{
		Location: start.Span(els.Loc()),
		Args:     []ast.Expr{cond},
		Arms: []ast.MatchArm{
			{Location: then.Loc(), Patterns: []ast.Pattern{&ast.PConstructor{Name: "True"}}, Body: then},
			{Location: els.Loc(), Patterns: []ast.Pattern{&ast.PConstructor{Name: "False"}}, Body: els},
		},
	}
}

// maybeApplyConstructor handles a capitalized identifier used as a bare
// constructor reference (e.g. `Nil`); its arguments, if any, are picked up
// as ordinary application by the caller (parseApp), which juxtaposes atoms.
func (p *Parser) maybeApplyConstructor(loc source.Location, name ast.Identifier) ast.Expr {
	return &ast.VarRef{Location: loc, Name: name}
}

func (p *Parser) parseMatch(start source.Location) ast.Expr {
	var args []ast.Expr
	for p.startsAtom() {
		args = append(args, p.parseAtom())
	}
	var arms []ast.MatchArm
	if p.at(token.Indent) {
		p.advance()
		for !p.at(token.Dedent) {
			for p.at(token.EndOfLine) {
				p.advance()
			}
			if p.at(token.Dedent) {
				break
			}
			arms = append(arms, p.parseMatchArm())
			for p.at(token.EndOfLine) {
				p.advance()
			}
		}
		p.expect(token.Dedent)
	} else {
		arms = append(arms, p.parseMatchArm())
	}
	end := start
	if len(arms) > 0 {
		end = arms[len(arms)-1].Body.Loc()
	}
	return &ast.Match{Location: start.Span(end), Args: args, Arms: arms}
}

func (p *Parser) parseMatchArm() ast.MatchArm {
	start := p.tok.Location
	var pats []ast.Pattern
	for !p.at(token.Equals) && !p.at(token.KeywordIf) && !p.at(token.End) && !p.at(token.EndOfLine) {
		pats = append(pats, p.parsePattern())
	}
	var guard ast.Expr
	if p.at(token.KeywordIf) {
		p.advance()
		guard = p.parseExpr(0)
	}
	if _, ok := p.expect(token.Equals); !ok {
		p.resync()
		return ast.MatchArm{Location: start, Patterns: pats, Guard: guard}
	}
	body := p.parseExprBody()
	return ast.MatchArm{Location: start.Span(body.Loc()), Patterns: pats, Guard: guard, Body: body}
}

func (p *Parser) parsePattern() ast.Pattern {
	switch p.tok.Kind {
	case token.Identifier:
		loc := p.tok.Location
		text := p.tok.Text
		capitalized := p.tok.Capitalized
		p.advance()
		if text == "_" {
			return &ast.PWildcard{Location: loc}
		}
		if capitalized {
			var args []ast.Pattern
			for p.startsPattern() {
				args = append(args, p.parsePattern())
			}
			return &ast.PConstructor{Location: loc, Name: ast.Identifier(text), Args: args}
		}
		return &ast.PVar{Location: loc, Name: ast.Identifier(text)}
	case token.LParen:
		p.advance()
		inner := p.parsePattern()
		p.expect(token.RParen)
		return inner
	case token.IntLiteral:
		t := p.tok
		p.advance()
		return &ast.PLiteral{Location: t.Location, Kind: ast.LitInt, Int: t.Int}
	case token.FloatLiteral:
		t := p.tok
		p.advance()
		return &ast.PLiteral{Location: t.Location, Kind: ast.LitFloat, Float: t.Float}
	case token.StringLiteral:
		t := p.tok
		p.advance()
		return &ast.PLiteral{Location: t.Location, Kind: ast.LitString, String: t.Str}
	case token.CharLiteral:
		t := p.tok
		p.advance()
		return &ast.PLiteral{Location: t.Location, Kind: ast.LitChar, Char: t.Char}
	default:
		p.errorf("unexpected token %s in pattern", p.tok.Kind)
		loc := p.tok.Location
		p.advance()
		return &ast.PWildcard{Location: loc}
	}
}

func (p *Parser) startsPattern() bool {
	switch p.tok.Kind {
	case token.Identifier, token.LParen, token.IntLiteral, token.FloatLiteral,
		token.StringLiteral, token.CharLiteral:
		return true
	default:
		return false
	}
}

