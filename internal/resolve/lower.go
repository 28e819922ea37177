package resolve

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

// LowerConstructors rewrites capitalized-identifier application spines
// (`Nil`, `True`, `Cons a b`) into Construct nodes, using sums as the table
// of known nominal types. Constructor names are never subject to scope
// shadowing, so this runs over the surface tree before Fracture, rather
// than through the ordinary name-resolution table: by the time Fracture
// walks the tree, capitalized identifiers have already become Construct
// nodes and Fracture's resolver never needs an entry for them.
func LowerConstructors(top *ast.Top, sums map[ast.Identifier]*ast.Sum, sink *diag.Sink) *ast.Top {
	l := &ctorLowerer{sums: sums, sink: sink}
	files := make([]*ast.DefMap, len(top.Files))
	for i, f := range top.Files {
		files[i] = l.lowerDefMap(f)
	}
	return &ast.Top{Location: top.Location, Files: files, FilePrefixes: top.FilePrefixes, Globals: top.Globals}
}

type ctorLowerer struct {
	sums map[ast.Identifier]*ast.Sum
	sink *diag.Sink
}

func isCapitalized(name ast.Identifier) bool {
	r, _ := utf8.DecodeRuneInString(string(name))
	return unicode.IsUpper(r)
}

func (l *ctorLowerer) lowerExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.VarRef:
		if !isCapitalized(n.Name) {
			return n
		}
		sum, ok := l.sums[n.Name]
		if !ok {
			l.sink.Errorf(diag.ReferenceError, n.Location, "unknown constructor %q", n.Name)
			return n
		}
		ctor, _ := sum.Constructor(n.Name)
		return buildConstructorValue(n.Location, sum, ctor, nil)
	case *ast.App:
		head, args := flattenSpine(n)
		if v, ok := head.(*ast.VarRef); ok && isCapitalized(v.Name) {
			sum, ok := l.sums[v.Name]
			if !ok {
				l.sink.Errorf(diag.ReferenceError, v.Location, "unknown constructor %q", v.Name)
				return n
			}
			ctor, _ := sum.Constructor(v.Name)
			lowered := make([]ast.Expr, len(args))
			for i, a := range args {
				lowered[i] = l.lowerExpr(a)
			}
			if len(lowered) > ctor.Arity {
				l.sink.Errorf(diag.ResolutionError, n.Location, "constructor %s takes %d argument(s), applied to %d", ctor.Name, ctor.Arity, len(lowered))
				lowered = lowered[:ctor.Arity]
			}
			return buildConstructorValue(n.Location, sum, ctor, lowered)
		}
		return &ast.App{Location: n.Location, Fn: l.lowerExpr(n.Fn), Arg: l.lowerExpr(n.Arg)}
	case *ast.Lambda:
		return &ast.Lambda{Location: n.Location, Param: n.Param, Body: l.lowerExpr(n.Body)}
	case *ast.Match:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = l.lowerExpr(a)
		}
		arms := make([]ast.MatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			var guard ast.Expr
			if arm.Guard != nil {
				guard = l.lowerExpr(arm.Guard)
			}
			arms[i] = ast.MatchArm{Location: arm.Location, Patterns: arm.Patterns, Guard: guard, Body: l.lowerExpr(arm.Body)}
		}
		return &ast.Match{Location: n.Location, Args: args, Arms: arms}
	case *ast.DefMap:
		return l.lowerDefMap(n)
	case *ast.Literal, *ast.Prim, *ast.Here, *ast.Subscribe:
		return n
	default:
		diag.Fail("resolve: unexpected surface expression node %T", e)
		return nil
	}
}

func (l *ctorLowerer) lowerDefMap(dm *ast.DefMap) *ast.DefMap {
	var defs ast.Defs
	for _, d := range dm.Defs.Items() {
		defs.Add(ast.DefEntry{Location: d.Location, Name: d.Name, Global: d.Global, Memoize: d.Memoize, Body: l.lowerExpr(d.Body)})
	}
	var pubs ast.Pubs
	for _, name := range dm.Pubs.Names() {
		for _, contrib := range dm.Pubs.Contributions(name) {
			pubs.Add(ast.PubEntry{Location: contrib.Location, Name: contrib.Name, Contribute: l.lowerExpr(contrib.Contribute)})
		}
	}
	return &ast.DefMap{Location: dm.Location, Defs: defs, Pubs: pubs, Body: l.lowerExpr(dm.Body)}
}

// flattenSpine unwinds a left-associated chain of App nodes into its head
// and ordered argument list.
func flattenSpine(e ast.Expr) (ast.Expr, []ast.Expr) {
	var args []ast.Expr
	cur := e
	for {
		app, ok := cur.(*ast.App)
		if !ok {
			break
		}
		args = append([]ast.Expr{app.Arg}, args...)
		cur = app.Fn
	}
	return cur, args
}

// buildConstructorValue produces a Construct node directly when args
// already fills the constructor's arity, or a curried lambda chain
// collecting the remaining arguments otherwise — a bare `Cons` used as a
// value is a two-argument function like any other.
func buildConstructorValue(loc source.Location, sum *ast.Sum, ctor ast.Constructor, args []ast.Expr) ast.Expr {
	if len(args) >= ctor.Arity {
		return &ast.Construct{Location: loc, Sum: sum, Index: ctor.Index, Args: args[:ctor.Arity]}
	}
	missing := ctor.Arity - len(args)
	params := make([]ast.Identifier, missing)
	for i := range params {
		params[i] = ast.Identifier(fmt.Sprintf("$ctorarg%d", i))
	}
	full := append([]ast.Expr{}, args...)
	for _, p := range params {
		full = append(full, &ast.VarRef{Location: loc, Name: p})
	}
	body := ast.Expr(&ast.Construct{Location: loc, Sum: sum, Index: ctor.Index, Args: full})
	for i := len(params) - 1; i >= 0; i-- {
		body = &ast.Lambda{Location: loc, Param: params[i], Body: body}
	}
	return body
}
