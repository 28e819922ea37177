package types

import (
	"loomc/internal/ast"
	"loomc/internal/diag"
	"loomc/internal/source"
)

// PrimCheck is the minimal shape the inferencer needs from a primitive's
// registration: how many curried arguments it takes, and a predicate run
// once the whole program has been unified to validate the resolved
// argument/result shapes. Kept minimal (rather than importing the
// primitive package's richer Descriptor) so this package never depends on
// its own primitive registry consumer.
type PrimCheck struct {
	Arity int
	Check func(args []*Node, result *Node) bool
}

// PrimTable resolves a `prim "name"` reference, without this package
// needing to import whatever concrete registry backs it.
type PrimTable interface {
	Lookup(name string) (PrimCheck, bool)
}

type pendingPrim struct {
	name   string
	loc    source.Location
	params []int
	result int
	check  func(args []*Node, result *Node) bool
}

// binding is one name's entry in the inferencer's environment. A negative
// Watermark means the type variable is still being solved (a lambda
// parameter, or a letrec group's own members while their bodies are being
// inferred) and must be unified with directly, never cloned. A
// non-negative Watermark is the generalization boundary passed to Clone on
// every later reference.
type binding struct {
	v         int
	watermark int
}

// Inferencer walks a fractured, pattern-compiled expression tree, filling
// in info with every node's type and reporting mismatches to sink.
type Inferencer struct {
	arena *Arena
	info  *Info
	sink  *diag.Sink
	prims   PrimTable
	env     map[ast.Identifier]binding
	pending []pendingPrim
}

func NewInferencer(a *Arena, info *Info, sink *diag.Sink, prims PrimTable) *Inferencer {
	return &Inferencer{arena: a, info: info, sink: sink, prims: prims, env: map[ast.Identifier]binding{}}
}

// Finish validates every primitive application site's inferred signature
// against its registered check, once the whole tree has been walked and
// the arena's union-find structure has settled as far as it will. Callers
// must call this exactly once after the last Infer call in a compilation
// unit.
func (inf *Inferencer) Finish() {
	for _, p := range inf.pending {
		args := make([]*Node, len(p.params))
		for i, v := range p.params {
			args[i] = inf.arena.Node(v)
		}
		if !p.check(args, inf.arena.Node(p.result)) {
			inf.sink.Errorf(diag.TypeError, p.loc, "primitive %q does not accept the inferred signature", p.name)
		}
	}
}

// Infer returns the arena index of e's type, recording it in info.
func (inf *Inferencer) Infer(e ast.Expr) int {
	var t int
	switch n := e.(type) {
	case *ast.Literal:
		t = inf.inferLiteral(n)
	case *ast.VarRef:
		t = inf.inferVarRef(n)
	case *ast.Prim:
		t = inf.inferPrim(n)
	case *ast.Here:
		t = inf.arena.Con(n.Location, "SourceLocation")
	case *ast.App:
		t = inf.inferApp(n)
	case *ast.Lambda:
		t = inf.inferLambda(n)
	case *ast.Construct:
		t = inf.inferConstruct(n)
	case *ast.Destruct:
		t = inf.inferDestruct(n)
	case *ast.DefBinding:
		t = inf.inferDefBinding(n)
	case *ast.Match:
		t = inf.inferMatch(n)
	default:
		diag.Fail("types: unexpected expression node %T", e)
	}
	inf.info.Set(e, t)
	return t
}

func (inf *Inferencer) inferLiteral(n *ast.Literal) int {
	switch n.Kind {
	case ast.LitInt:
		return inf.arena.Fresh(n.Location, ConstraintNumber)
	case ast.LitFloat:
		return inf.arena.Con(n.Location, "Float")
	case ast.LitString:
		return inf.arena.Con(n.Location, "String")
	case ast.LitChar:
		return inf.arena.Con(n.Location, "Char")
	default:
		return inf.arena.Con(n.Location, "Unit")
	}
}

func (inf *Inferencer) inferVarRef(n *ast.VarRef) int {
	b, ok := inf.env[n.Name]
	if !ok {
		inf.sink.Errorf(diag.ReferenceError, n.Location, "unbound name %q during inference", n.Name)
		return inf.arena.Fresh(n.Location, NoConstraint)
	}
	if b.watermark < 0 {
		return b.v
	}
	return Clone(inf.arena, b.v, b.watermark)
}

func (inf *Inferencer) inferPrim(n *ast.Prim) int {
	if inf.prims == nil {
		diag.Fail("types: inferencer has no primitive table")
	}
	sig, ok := inf.prims.Lookup(n.Name)
	if !ok {
		inf.sink.Errorf(diag.ReferenceError, n.Location, "unknown primitive %q", n.Name)
		return inf.arena.Fresh(n.Location, NoConstraint)
	}
	params := make([]int, sig.Arity)
	for i := range params {
		params[i] = inf.arena.Fresh(n.Location, NoConstraint)
	}
	result := inf.arena.Fresh(n.Location, NoConstraint)
	inf.pending = append(inf.pending, pendingPrim{name: n.Name, loc: n.Location, params: params, result: result, check: sig.Check})
	return inf.arena.Func(n.Location, params, result)
}

func (inf *Inferencer) inferApp(n *ast.App) int {
	fnT := inf.Infer(n.Fn)
	argT := inf.Infer(n.Arg)
	resT := inf.arena.Fresh(n.Location, NoConstraint)
	funcT := inf.arena.Func(n.Location, []int{argT}, resT)
	Unify(inf.arena, fnT, funcT, Message{Kind: MsgApply, Loc: n.Location}, inf.sink)
	return resT
}

func (inf *Inferencer) inferLambda(n *ast.Lambda) int {
	paramT := inf.arena.Fresh(n.Location, NoConstraint)
	prev, hadPrev := inf.env[n.Param]
	inf.env[n.Param] = binding{v: paramT, watermark: -1}
	bodyT := inf.Infer(n.Body)
	if hadPrev {
		inf.env[n.Param] = prev
	} else {
		delete(inf.env, n.Param)
	}
	return inf.arena.Func(n.Location, []int{paramT}, bodyT)
}

// inferConstruct types a sum's constructor application nominally: fields
// are inferred for their own internal consistency, but (absent any
// surface syntax for declaring field type signatures — see DESIGN.md) are
// not unified against a declared field shape. The expression's type is
// always the sum's own nominal type, freshly instantiated per occurrence.
func (inf *Inferencer) inferConstruct(n *ast.Construct) int {
	for _, a := range n.Args {
		inf.Infer(a)
	}
	return inf.instantiateSum(n.Location, n.Sum)
}

func (inf *Inferencer) instantiateSum(loc source.Location, sum *ast.Sum) int {
	params := make([]int, len(sum.TypeParams))
	for i := range params {
		params[i] = inf.arena.Fresh(loc, NoConstraint)
	}
	return inf.arena.Con(loc, string(sum.Name), params...)
}

// inferDestruct builds the schematic eliminator type documented on
// ast.Destruct: one continuation per constructor, each curried as
// self -> field_0 -> ... -> field_{arity-1} -> result, followed by the
// scrutinee, producing the shared result type.
func (inf *Inferencer) inferDestruct(n *ast.Destruct) int {
	sumT := inf.instantiateSum(n.Location, n.Sum)
	resultT := inf.arena.Fresh(n.Location, NoConstraint)
	contTypes := make([]int, len(n.Sum.Constructors))
	for i, ctor := range n.Sum.Constructors {
		fields := make([]int, ctor.Arity)
		for j := range fields {
			fields[j] = inf.arena.Fresh(n.Location, NoConstraint)
		}
		contTypes[i] = inf.arena.Func(n.Location, append([]int{sumT}, fields...), resultT)
	}
	return inf.arena.Func(n.Location, contTypes, inf.arena.Func(n.Location, []int{sumT}, resultT))
}

// inferDefBinding infers each level's members with self/mutual references
// held monomorphic during solving (correct letrec behavior), then
// generalizes the whole group at the arena's new generation before
// inferring the body, implementing let-generalization's binding side.
func (inf *Inferencer) inferDefBinding(n *ast.DefBinding) int {
	newGen := inf.arena.Generation() + 1
	inf.arena.EnterGeneration()

	saved := map[ast.Identifier]binding{}
	restore := func(name ast.Identifier) {
		if prev, ok := saved[name]; ok {
			inf.env[name] = prev
		} else {
			delete(inf.env, name)
		}
	}
	remember := func(name ast.Identifier) {
		if prev, ok := inf.env[name]; ok {
			saved[name] = prev
		}
	}

	for _, v := range n.Vals {
		remember(v.Name)
		inf.env[v.Name] = binding{v: inf.arena.Fresh(v.Location, NoConstraint), watermark: -1}
	}
	for _, f := range n.Funs {
		remember(f.Name)
		inf.env[f.Name] = binding{v: inf.arena.Fresh(f.Location, NoConstraint), watermark: -1}
	}

	for _, f := range n.Funs {
		bodyT := inf.Infer(f.Body)
		Unify(inf.arena, inf.env[f.Name].v, bodyT, Message{Kind: MsgLet, Loc: f.Location, Note: string(f.Name)}, inf.sink)
	}
	for _, v := range n.Vals {
		bodyT := inf.Infer(v.Body)
		Unify(inf.arena, inf.env[v.Name].v, bodyT, Message{Kind: MsgLet, Loc: v.Location, Note: string(v.Name)}, inf.sink)
	}

	for _, v := range n.Vals {
		b := inf.env[v.Name]
		inf.env[v.Name] = binding{v: b.v, watermark: newGen}
	}
	for _, f := range n.Funs {
		b := inf.env[f.Name]
		inf.env[f.Name] = binding{v: b.v, watermark: newGen}
	}

	bodyT := inf.Infer(n.Body)

	for _, v := range n.Vals {
		restore(v.Name)
	}
	for _, f := range n.Funs {
		restore(f.Name)
	}
	return bodyT
}

// inferMatch handles a Match node encountered before pattern compilation
// (e.g. in isolation in a test): every arm's guard must be Bool, every
// arm's body must agree on a single result type.
func (inf *Inferencer) inferMatch(n *ast.Match) int {
	for _, a := range n.Args {
		inf.Infer(a)
	}
	resultT := inf.arena.Fresh(n.Location, NoConstraint)
	boolT := inf.arena.Con(n.Location, "Bool")
	for _, arm := range n.Arms {
		if arm.Guard != nil {
			guardT := inf.Infer(arm.Guard)
			Unify(inf.arena, guardT, boolT, Message{Kind: MsgMatch, Loc: arm.Location}, inf.sink)
		}
		bodyT := inf.Infer(arm.Body)
		Unify(inf.arena, bodyT, resultT, Message{Kind: MsgMatch, Loc: arm.Location}, inf.sink)
	}
	return resultT
}
