package resolve

import (
	"fmt"
	"strings"

	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

// Fracture resolves every name reference in top, folds publish/subscribe
// chains, and layers each scope's own definitions into DefBinding nodes via
// level assignment and per-level SCC extraction. It returns one resolved
// Expr per file, in the same order as top.Files. sums supplies the List
// sum's Nil constructor, which publish/subscribe folding falls back to
// when a chain bottoms out without an enclosing publisher.
func Fracture(top *ast.Top, sums map[ast.Identifier]*ast.Sum, sink *diag.Sink) []ast.Expr {
	r := NewResolver(sink)
	r.nilSum = sums["Nil"]

	// Register every declared-global name's canonical owner up front, so a
	// reference in one file to a global declared in another resolves
	// regardless of the order files are fractured in.
	for name, owner := range top.Globals {
		r.globals[name] = ast.Identifier(fmt.Sprintf("%s.%s", top.FilePrefixes[owner], name))
	}

	out := make([]ast.Expr, len(top.Files))
	for i, file := range top.Files {
		out[i] = r.fractureDefMap(file, top.FilePrefixes[i])
	}
	return out
}

// fractureExpr resolves e structurally, replacing VarRef/Subscribe names
// with canonical keys and DefMap nodes with their layered DefBinding form.
func (r *Resolver) fractureExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.VarRef:
		if key, ok := r.resolveName(n.Name); ok {
			return &ast.VarRef{Location: n.Location, Name: key}
		}
		r.sink.Errorf(diag.ReferenceError, n.Location, "undefined name %q", n.Name)
		return n
	case *ast.Subscribe:
		return r.resolveSubscribe(n.Name)
	case *ast.Literal:
		return n
	case *ast.Prim:
		return n
	case *ast.Here:
		return n
	case *ast.App:
		return &ast.App{Location: n.Location, Fn: r.fractureExpr(n.Fn), Arg: r.fractureExpr(n.Arg)}
	case *ast.Lambda:
		r.pushScope("")
		key := r.declare(n.Location, n.Param, false)
		body := r.fractureExpr(n.Body)
		r.popScope()
		return &ast.Lambda{Location: n.Location, Param: key, Body: body}
	case *ast.Match:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = r.fractureExpr(a)
		}
		arms := make([]ast.MatchArm, len(n.Arms))
		for i, arm := range n.Arms {
			arms[i] = r.fractureMatchArm(arm)
		}
		return &ast.Match{Location: n.Location, Args: args, Arms: arms}
	case *ast.Construct:
		args := make([]ast.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = r.fractureExpr(a)
		}
		return &ast.Construct{Location: n.Location, Sum: n.Sum, Index: n.Index, Args: args}
	case *ast.DefMap:
		return r.fractureDefMap(n, "")
	default:
		diag.Fail("resolve: unexpected expression node %T", e)
		return nil
	}
}

// fractureMatchArm resolves one match arm's pattern-bound variables into a
// tiny scope covering the guard and body; pattern-bound names live in
// their own namespace and never shadow canonical keys of the enclosing
// scope's own definitions.
func (r *Resolver) fractureMatchArm(arm ast.MatchArm) ast.MatchArm {
	r.pushScope("")
	patterns := make([]ast.Pattern, len(arm.Patterns))
	for i, p := range arm.Patterns {
		patterns[i] = r.fracturePattern(p)
	}
	var guard ast.Expr
	if arm.Guard != nil {
		guard = r.fractureExpr(arm.Guard)
	}
	body := r.fractureExpr(arm.Body)
	r.popScope()
	return ast.MatchArm{Location: arm.Location, Patterns: patterns, Guard: guard, Body: body}
}

func (r *Resolver) fracturePattern(p ast.Pattern) ast.Pattern {
	switch n := p.(type) {
	case *ast.PWildcard:
		return n
	case *ast.PVar:
		key := r.declare(n.Location, n.Name, false)
		return &ast.PVar{Location: n.Location, Name: key}
	case *ast.PConstructor:
		args := make([]ast.Pattern, len(n.Args))
		for i, a := range n.Args {
			args[i] = r.fracturePattern(a)
		}
		return &ast.PConstructor{Location: n.Location, Name: n.Name, Args: args}
	case *ast.PLiteral:
		return n
	default:
		diag.Fail("resolve: unexpected pattern node %T", p)
		return nil
	}
}

// resolveSubscribe resolves a `subscribe name` occurring anywhere within a
// scope's own body, walking from the current innermost scope outward.
func (r *Resolver) resolveSubscribe(name ast.Identifier) ast.Expr {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if key, ok := r.scopes[i].publishHeads[name]; ok {
			return &ast.VarRef{Name: key}
		}
	}
	return r.nilValue(source.EmptyLocation)
}

// nilValue builds the empty-list constructor directly rather than through
// a name lookup: Nil is nominal, not a scope-declared binding, and by the
// time Fracture runs, LowerConstructors has already turned every surface
// reference to it into the same Construct shape.
func (r *Resolver) nilValue(loc source.Location) ast.Expr {
	return &ast.Construct{Location: loc, Sum: r.nilSum, Index: 0}
}

// synthPrefix tags canonical keys minted by the publish-chain folder, whose
// bodies are already fully resolved by construction and need no further
// fracturing.
const synthPrefix = "publish#"

func isPublishSynthetic(key ast.Identifier) bool {
	return strings.HasPrefix(string(key), synthPrefix)
}

// localDef is one member of a scope's dependency graph, in declaration
// order.
type localDef struct {
	key      ast.Identifier
	body     ast.Expr
	isLambda bool
}

// fractureDefMap resolves dm as a scope: it declares every local
// definition (raw and publish-synthesized), fractures every body, builds
// the local dependency graph, assigns Bellman-Ford levels, extracts
// per-level Tarjan SCCs among lambda-bodied definitions, and returns the
// resulting chain of DefBinding nodes wrapping the fractured tail body.
func (r *Resolver) fractureDefMap(dm *ast.DefMap, prefix string) ast.Expr {
	s := r.pushScope(prefix)
	defer r.popScope()

	var defs []*localDef
	declOrder := map[ast.Identifier]int{}
	seenNames := map[ast.Identifier]bool{}

	for _, entry := range dm.Defs.Items() {
		key := r.declare(entry.Location, entry.Name, entry.Global)
		if seenNames[entry.Name] {
			// declare has already reported the duplicate; keep only the
			// first binding so defs/declOrder never carry two entries
			// under the same canonical key.
			continue
		}
		seenNames[entry.Name] = true
		declOrder[key] = len(declOrder)
		defs = append(defs, &localDef{key: key, body: entry.Body})
	}

	// Publish/subscribe folding: contribution k's cons cell references
	// contribution k-1's, ending at whatever the enclosing scope publishes
	// (or Nil). The last-declared contribution ends up as the head of the
	// resulting list. `++` is resolved in this scope like any other name.
	appendOp := ast.Identifier("++")
	if key, ok := r.resolveName(appendOp); ok {
		appendOp = key
	}
	for _, name := range dm.Pubs.Names() {
		contributions := dm.Pubs.Contributions(name)
		acc := r.resolveOuterSubscribe(dm.Location, name)
		for k, contrib := range contributions {
			fractured := r.fractureExpr(contrib.Contribute)
			key := ast.Identifier(fmt.Sprintf("%s%d.%s.%d", synthPrefix, s.id, name, k))
			r.declareSynthetic(key, key)
			declOrder[key] = len(declOrder)
			cons := &ast.App{
				Location: contrib.Location,
				Fn:       &ast.App{Location: contrib.Location, Fn: &ast.VarRef{Location: contrib.Location, Name: appendOp}, Arg: fractured},
				Arg:      acc,
			}
			defs = append(defs, &localDef{key: key, body: cons})
			acc = &ast.VarRef{Location: contrib.Location, Name: key}
		}
		if len(contributions) > 0 {
			if v, ok := acc.(*ast.VarRef); ok {
				s.publishHeads[name] = v.Name
			}
		}
	}

	// Fracture every raw definition's body now that the whole scope's names
	// (including publish-chain synthetics) are declared, so forward and
	// mutually-recursive references resolve.
	for _, d := range defs {
		if !isPublishSynthetic(d.key) {
			d.body = r.fractureExpr(d.body)
		}
		_, d.isLambda = d.body.(*ast.Lambda)
	}

	body := r.fractureExpr(dm.Body)

	if len(defs) == 0 {
		return body
	}

	localKeys := map[ast.Identifier]bool{}
	names := make([]ast.Identifier, len(defs))
	byKey := map[ast.Identifier]*localDef{}
	for i, d := range defs {
		localKeys[d.key] = true
		names[i] = d.key
		byKey[d.key] = d
	}

	var edges []localEdge
	for _, d := range defs {
		free := map[ast.Identifier]bool{}
		collectFreeVars(d.body, localKeys, free)
		weight := 1
		if d.isLambda {
			weight = 0
		}
		for to := range free {
			if to == d.key {
				continue // self-recursion never forces a level increase
			}
			edges = append(edges, localEdge{from: d.key, to: to, weight: weight})
		}
	}

	levels, cyclic := level(names, edges)
	if cyclic {
		r.sink.Errorf(diag.ResolutionError, dm.Location, "cyclic dependency among non-function definitions")
	}

	maxLevel := 0
	for _, lv := range levels {
		if lv > maxLevel {
			maxLevel = lv
		}
	}

	acc := body
	for lv := maxLevel; lv >= 0; lv-- {
		var members []ast.Identifier
		for _, name := range names {
			if levels[name] == lv {
				members = append(members, name)
			}
		}
		if len(members) == 0 {
			continue
		}
		acc = buildDefBinding(dm.Location, members, byKey, declOrder, edges, acc)
	}
	return acc
}

// buildDefBinding turns one Bellman-Ford level's member set into a single
// DefBinding, splitting members into values and lambdas and extracting
// Tarjan SCCs among the lambdas using only intra-level, weight-0 edges.
func buildDefBinding(loc source.Location, members []ast.Identifier, byKey map[ast.Identifier]*localDef, declOrder map[ast.Identifier]int, edges []localEdge, tail ast.Expr) ast.Expr {
	memberSet := map[ast.Identifier]bool{}
	for _, m := range members {
		memberSet[m] = true
	}

	var lambdaNames []ast.Identifier
	adj := map[ast.Identifier][]ast.Identifier{}
	for _, m := range members {
		if byKey[m].isLambda {
			lambdaNames = append(lambdaNames, m)
		}
	}
	lambdaSet := map[ast.Identifier]bool{}
	for _, n := range lambdaNames {
		lambdaSet[n] = true
	}
	for _, e := range edges {
		if e.weight == 0 && lambdaSet[e.from] && lambdaSet[e.to] && memberSet[e.from] && memberSet[e.to] {
			adj[e.from] = append(adj[e.from], e.to)
		}
	}
	comps := tarjan(lambdaNames, adj)

	sccID := map[ast.Identifier]int{}
	for _, comp := range comps {
		earliest := comp[0]
		for _, m := range comp {
			if declOrder[m] < declOrder[earliest] {
				earliest = m
			}
		}
		id := declOrder[earliest]
		for _, m := range comp {
			sccID[m] = id
		}
	}

	// Members are laid out in declaration order so the earliest-declared
	// definition in a level keeps the lowest index within its own list —
	// values before functions, each list densely indexed from 0, so every
	// ValueBinding.Index stays below len(Vals) and every FuncBinding.Index
	// stays below len(Funs).
	sortedMembers := append([]ast.Identifier(nil), members...)
	sortByDeclOrder(sortedMembers, declOrder)

	var vals []ast.ValueBinding
	var funs []ast.FuncBinding
	for _, m := range sortedMembers {
		d := byKey[m]
		if d.isLambda {
			continue
		}
		vals = append(vals, ast.ValueBinding{Location: d.body.Loc(), Name: m, Index: len(vals), Body: d.body})
	}
	for _, m := range sortedMembers {
		d := byKey[m]
		if !d.isLambda {
			continue
		}
		funs = append(funs, ast.FuncBinding{Location: d.body.Loc(), Name: m, Index: len(funs), SCCID: sccID[m], Body: d.body})
	}

	order := map[ast.Identifier]int{}
	idx := 0
	for _, v := range vals {
		order[v.Name] = idx
		idx++
	}
	for _, f := range funs {
		order[f.Name] = idx
		idx++
	}

	return &ast.DefBinding{Location: loc, Order: order, Vals: vals, Funs: funs, Body: tail}
}

func sortByDeclOrder(names []ast.Identifier, declOrder map[ast.Identifier]int) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && declOrder[names[j-1]] > declOrder[names[j]]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}
