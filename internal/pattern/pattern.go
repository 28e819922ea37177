// Package pattern compiles Match nodes into nested Destruct dispatch,
// following Maranget's column-oriented decision-tree construction: at each
// step the leftmost column is either stripped (every pattern in it is
// irrefutable) or used to fan out one branch per constructor of its sum,
// specializing the remaining rows into each branch and recursing. Guards
// and literal columns fall back to a chain of Boolean-equality tests.
package pattern

import (
	"fmt"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

// Compiler compiles Match nodes against a fixed table of known sums.
type Compiler struct {
	sums    map[ast.Identifier]*ast.Sum
	boolSum *ast.Sum
	sink    *diag.Sink
	fresh   int
}

func NewCompiler(sums map[ast.Identifier]*ast.Sum, sink *diag.Sink) *Compiler {
	return &Compiler{sums: sums, boolSum: sums["True"], sink: sink}
}

func (c *Compiler) freshName(tag string) ast.Identifier {
	c.fresh++
	return ast.Identifier(fmt.Sprintf("$%s%d", tag, c.fresh))
}

// row is one clause of a matrix being specialized down toward a decision
// tree. origin tracks which surface Arm it descends from, for
// unreachability reporting.
type row struct {
	pats   []ast.Pattern
	guard  ast.Expr
	body   ast.Expr
	origin int
}

// Compile lowers a Match into a DefBinding that names each scrutinee once
// and a Destruct-dispatch decision tree over those names, reporting
// non-exhaustiveness and unreachable-arm diagnostics along the way.
func (c *Compiler) Compile(m *ast.Match) ast.Expr {
	scrutVars := make([]ast.Identifier, len(m.Args))
	var vals []ast.ValueBinding
	order := map[ast.Identifier]int{}
	for i, arg := range m.Args {
		v := c.freshName("scrut")
		scrutVars[i] = v
		order[v] = i
		vals = append(vals, ast.ValueBinding{Location: arg.Loc(), Name: v, Index: i, Body: arg})
	}

	matrix := make([]row, len(m.Arms))
	for i, arm := range m.Arms {
		matrix[i] = row{pats: arm.Patterns, guard: arm.Guard, body: arm.Body, origin: i}
	}

	used := make([]bool, len(m.Arms))
	tree := c.compileRows(scrutVars, matrix, m.Location, used)
	for i, arm := range m.Arms {
		if !used[i] {
			c.sink.Errorf(diag.PatternError, arm.Location, "unreachable match arm")
		}
	}

	if len(vals) == 0 {
		return tree
	}
	return &ast.DefBinding{Location: m.Location, Order: order, Vals: vals, Body: tree}
}

// nonExhaustive builds the placeholder terminal reached when no arm covers
// a case; the primitive table is expected to bind this name to a runtime
// failure raiser.
func nonExhaustive(loc source.Location) ast.Expr {
	return &ast.Prim{Location: loc, Name: "matchFailure"}
}

func (c *Compiler) compileRows(scrutVars []ast.Identifier, matrix []row, loc source.Location, used []bool) ast.Expr {
	if len(matrix) == 0 {
		c.sink.Errorf(diag.PatternError, loc, "non-exhaustive match")
		return nonExhaustive(loc)
	}
	if len(scrutVars) == 0 {
		return c.compileGuardChain(matrix, loc, used)
	}

	col := scrutVars[0]
	if allIrrefutable(matrix, 0) {
		next := make([]row, len(matrix))
		for i, r := range matrix {
			next[i] = row{
				pats:   r.pats[1:],
				guard:  bindPatternVar(r.pats[0], col, r.guard),
				body:   bindPatternVar(r.pats[0], col, r.body),
				origin: r.origin,
			}
		}
		return c.compileRows(scrutVars[1:], next, loc, used)
	}

	sum, isLiteral := c.columnSum(matrix, 0)
	if isLiteral {
		return c.compileLiteralColumn(scrutVars, matrix, loc, used)
	}
	if sum == nil {
		c.sink.Errorf(diag.PatternError, loc, "unknown constructor in pattern column")
		return nonExhaustive(loc)
	}

	var conts []ast.Expr
	for _, ctor := range sum.Constructors {
		specialized := c.specializeConstructor(matrix, 0, col, ctor)
		fieldVars := make([]ast.Identifier, ctor.Arity)
		for i := range fieldVars {
			fieldVars[i] = c.freshName("field")
		}
		self := c.freshName("self")
		branch := c.compileRows(append(fieldVars, scrutVars[1:]...), specialized, loc, used)
		if len(specialized) == 0 {
			c.sink.Errorf(diag.PatternError, loc, "non-exhaustive match: missing case %s", ctor.Name)
		}
		cont := ast.Expr(branch)
		for i := len(fieldVars) - 1; i >= 0; i-- {
			cont = &ast.Lambda{Location: loc, Param: fieldVars[i], Body: cont}
		}
		cont = &ast.Lambda{Location: loc, Param: self, Body: cont}
		conts = append(conts, cont)
	}

	dispatch := ast.Expr(&ast.Destruct{Location: loc, Sum: sum})
	for _, cont := range conts {
		dispatch = &ast.App{Location: loc, Fn: dispatch, Arg: cont}
	}
	return &ast.App{Location: loc, Fn: dispatch, Arg: &ast.VarRef{Location: loc, Name: col}}
}

// compileGuardChain handles the zero-column base case: try each row's
// guard (if any) in order, falling through to the next row on failure. A
// guard's false branch continues into the remaining rows; once those run
// out the match is non-exhaustive.
func (c *Compiler) compileGuardChain(matrix []row, loc source.Location, used []bool) ast.Expr {
	if len(matrix) == 0 {
		c.sink.Errorf(diag.PatternError, loc, "non-exhaustive match")
		return nonExhaustive(loc)
	}
	r := matrix[0]
	if r.guard == nil {
		used[r.origin] = true
		return r.body
	}
	boolSum := c.boolSum
	self1 := ast.Identifier("$guard_self_t")
	self2 := ast.Identifier("$guard_self_f")
	used[r.origin] = true
	trueCont := &ast.Lambda{Location: loc, Param: self1, Body: r.body}
	falseCont := &ast.Lambda{Location: loc, Param: self2, Body: c.compileGuardChain(matrix[1:], loc, used)}
	dispatch := ast.Expr(&ast.Destruct{Location: loc, Sum: boolSum})
	dispatch = &ast.App{Location: loc, Fn: dispatch, Arg: trueCont}
	dispatch = &ast.App{Location: loc, Fn: dispatch, Arg: falseCont}
	return &ast.App{Location: loc, Fn: dispatch, Arg: r.guard}
}

func allIrrefutable(matrix []row, colIdx int) bool {
	for _, r := range matrix {
		switch r.pats[colIdx].(type) {
		case *ast.PWildcard, *ast.PVar:
		default:
			return false
		}
	}
	return true
}

func bindPatternVar(p ast.Pattern, valueVar ast.Identifier, expr ast.Expr) ast.Expr {
	pv, ok := p.(*ast.PVar)
	if !ok || expr == nil {
		return expr
	}
	return &ast.DefBinding{
		Location: p.PatLoc(),
		Order:    map[ast.Identifier]int{pv.Name: 0},
		Vals:     []ast.ValueBinding{{Location: p.PatLoc(), Name: pv.Name, Index: 0, Body: &ast.VarRef{Location: p.PatLoc(), Name: valueVar}}},
		Body:     expr,
	}
}

// columnSum returns the sum a constructor column dispatches over, or
// (nil, true) if the column is a literal column instead.
func (c *Compiler) columnSum(matrix []row, colIdx int) (*ast.Sum, bool) {
	for _, r := range matrix {
		switch p := r.pats[colIdx].(type) {
		case *ast.PConstructor:
			return c.sums[p.Name], false
		case *ast.PLiteral:
			return nil, true
		}
	}
	return nil, true
}

func (c *Compiler) specializeConstructor(matrix []row, colIdx int, col ast.Identifier, ctor ast.Constructor) []row {
	var out []row
	for _, r := range matrix {
		switch p := r.pats[colIdx].(type) {
		case *ast.PConstructor:
			if p.Name != ctor.Name {
				continue
			}
			if len(p.Args) != ctor.Arity {
				c.sink.Errorf(diag.PatternError, p.Location, "constructor %s expects %d argument(s), got %d", ctor.Name, ctor.Arity, len(p.Args))
				continue
			}
			newPats := append(append([]ast.Pattern{}, p.Args...), r.pats[colIdx+1:]...)
			out = append(out, row{pats: newPats, guard: r.guard, body: r.body, origin: r.origin})
		case *ast.PWildcard:
			newPats := append(wildcards(ctor.Arity, p.Location), r.pats[colIdx+1:]...)
			out = append(out, row{pats: newPats, guard: r.guard, body: r.body, origin: r.origin})
		case *ast.PVar:
			guard := bindPatternVar(p, col, r.guard)
			body := bindPatternVar(p, col, r.body)
			newPats := append(wildcards(ctor.Arity, p.Location), r.pats[colIdx+1:]...)
			out = append(out, row{pats: newPats, guard: guard, body: body, origin: r.origin})
		default:
			// literal pattern in a constructor-typed column never matches
		}
	}
	return out
}

func wildcards(n int, loc source.Location) []ast.Pattern {
	out := make([]ast.Pattern, n)
	for i := range out {
		out[i] = &ast.PWildcard{Location: loc}
	}
	return out
}

// compileLiteralColumn handles a column of literal patterns (Int/Float/
// String/Char) via a chain of `==`-then-Bool-destruct tests, since
// literals have no finite constructor set to fan out over.
func (c *Compiler) compileLiteralColumn(scrutVars []ast.Identifier, matrix []row, loc source.Location, used []bool) ast.Expr {
	col := scrutVars[0]
	rest := scrutVars[1:]

	var pick func(rows []row) ast.Expr
	pick = func(rows []row) ast.Expr {
		if len(rows) == 0 {
			c.sink.Errorf(diag.PatternError, loc, "non-exhaustive match over literal values")
			return nonExhaustive(loc)
		}
		r := rows[0]
		lit, ok := r.pats[0].(*ast.PLiteral)
		if !ok {
			// wildcard/var fallback: irrefutable at this point
			guard := bindPatternVar(r.pats[0], col, r.guard)
			body := bindPatternVar(r.pats[0], col, r.body)
			next := row{pats: r.pats[1:], guard: guard, body: body, origin: r.origin}
			return c.compileRows(rest, append([]row{next}, specializeSkip(rows[1:], col)...), loc, used)
		}
		eq := &ast.App{Location: loc, Fn: &ast.App{Location: loc, Fn: &ast.VarRef{Location: loc, Name: "=="}, Arg: literalExpr(lit)}, Arg: &ast.VarRef{Location: loc, Name: col}}
		matchRow := row{pats: r.pats[1:], guard: r.guard, body: r.body, origin: r.origin}
		trueBranch := c.compileRows(rest, []row{matchRow}, loc, used)
		falseBranch := pick(rows[1:])

		self1, self2 := c.freshName("self"), c.freshName("self")
		trueCont := &ast.Lambda{Location: loc, Param: self1, Body: trueBranch}
		falseCont := &ast.Lambda{Location: loc, Param: self2, Body: falseBranch}
		dispatch := ast.Expr(&ast.Destruct{Location: loc, Sum: c.boolSum})
		dispatch = &ast.App{Location: loc, Fn: dispatch, Arg: trueCont}
		dispatch = &ast.App{Location: loc, Fn: dispatch, Arg: falseCont}
		return &ast.App{Location: loc, Fn: dispatch, Arg: eq}
	}
	return pick(matrix)
}

// specializeSkip drops the first column from every row without any
// constructor test, used only when a literal column's leading row was
// itself irrefutable.
func specializeSkip(rows []row, col ast.Identifier) []row {
	out := make([]row, len(rows))
	for i, r := range rows {
		out[i] = row{pats: r.pats[1:], guard: bindPatternVar(r.pats[0], col, r.guard), body: bindPatternVar(r.pats[0], col, r.body), origin: r.origin}
	}
	return out
}

func literalExpr(p *ast.PLiteral) ast.Expr {
	return &ast.Literal{Location: p.Location, Kind: p.Kind, Int: p.Int, Float: p.Float, String: p.String, Char: p.Char}
}
